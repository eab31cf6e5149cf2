package jni

const (
	// PolyglotOption selects the polyglot runtime image instead of the
	// standalone one.
	PolyglotOption = "--polyglot"

	// StandardLauncherOption is set by the standard java launcher.
	StandardLauncherOption = "-Dsun.java.launcher=SUN_STANDARD"
)

// LaunchFlags are the options CreateJavaVM consumes itself.
type LaunchFlags struct {
	Polyglot         bool
	StandardLauncher bool
}

// Scan inspects the option strings for the mode switch and the launcher
// marker. Options are left in place. A nil receiver yields zero flags.
func (a *InitArgs) Scan() LaunchFlags {
	var f LaunchFlags
	if a == nil {
		return f
	}
	for _, opt := range a.Options {
		switch opt.OptionString {
		case PolyglotOption:
			f.Polyglot = true
		case StandardLauncherOption:
			f.StandardLauncher = true
		}
	}
	return f
}

// OptionStrings returns the option strings in order.
func (a *InitArgs) OptionStrings() []string {
	if a == nil {
		return nil
	}
	out := make([]string, len(a.Options))
	for i, opt := range a.Options {
		out[i] = opt.OptionString
	}
	return out
}

// NewInitArgs builds InitArgs from plain option strings.
func NewInitArgs(version int32, ignoreUnrecognized bool, options ...string) *InitArgs {
	opts := make([]Option, len(options))
	for i, s := range options {
		opts[i] = Option{OptionString: s}
	}
	return &InitArgs{
		Version:            version,
		Options:            opts,
		IgnoreUnrecognized: ignoreUnrecognized,
	}
}
