package jni

import "testing"

func TestInitArgs_Scan(t *testing.T) {
	tests := []struct {
		name    string
		options []string
		want    LaunchFlags
	}{
		{"empty", nil, LaunchFlags{}},
		{"plain options", []string{"-Xmx1g", "-Dfoo=bar"}, LaunchFlags{}},
		{"polyglot", []string{"-Xss2m", PolyglotOption}, LaunchFlags{Polyglot: true}},
		{"launcher", []string{StandardLauncherOption}, LaunchFlags{StandardLauncher: true}},
		{"both", []string{StandardLauncherOption, "-ea", PolyglotOption}, LaunchFlags{Polyglot: true, StandardLauncher: true}},
		{"prefix is not a match", []string{"--polyglot=true", "-Dsun.java.launcher=OTHER"}, LaunchFlags{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewInitArgs(Version1_8, false, tt.options...).Scan()
			if got != tt.want {
				t.Errorf("Scan() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestInitArgs_ScanNil(t *testing.T) {
	var args *InitArgs
	if got := args.Scan(); got != (LaunchFlags{}) {
		t.Errorf("nil Scan() = %+v", got)
	}
	if got := args.OptionStrings(); got != nil {
		t.Errorf("nil OptionStrings() = %v", got)
	}
}

func TestInitArgs_OptionsPassThrough(t *testing.T) {
	args := NewInitArgs(Version21, true, PolyglotOption, "-Xmx64m")
	args.Scan()

	got := args.OptionStrings()
	if len(got) != 2 || got[0] != PolyglotOption || got[1] != "-Xmx64m" {
		t.Errorf("options changed by Scan: %v", got)
	}
	if !args.IgnoreUnrecognized || args.Version != Version21 {
		t.Errorf("unexpected header: %+v", args)
	}
}

func TestCode_String(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{OK, "JNI_OK"},
		{ERR, "JNI_ERR"},
		{EDETACHED, "JNI_EDETACHED"},
		{ENOMEM, "JNI_ENOMEM"},
		{Code(-42), "JNI_-42"},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("Code(%d).String() = %q, want %q", int32(tt.code), got, tt.want)
		}
	}
}
