package loader

import (
	"fmt"
	"strings"

	"github.com/wippyai/mokapot/jni"
)

// Mode selects which runtime image backs the guest VM.
type Mode uint8

const (
	ModeStandalone Mode = iota
	ModePolyglot
)

func (m Mode) String() string {
	switch m {
	case ModeStandalone:
		return "standalone"
	case ModePolyglot:
		return "polyglot"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// ModeFor picks the mode requested by the scanned launch options.
func ModeFor(f jni.LaunchFlags) Mode {
	if f.Polyglot {
		return ModePolyglot
	}
	return ModeStandalone
}

// RelPath returns the library location relative to the install root,
// using '/' separators.
func (m Mode) RelPath(goos string) string {
	switch m {
	case ModePolyglot:
		return "lib/polyglot/" + LibName(goos, "polyglot")
	default:
		return "languages/java/lib/" + LibName(goos, "espresso")
	}
}

// LibName applies the platform's shared library naming convention.
func LibName(goos, name string) string {
	switch goos {
	case "windows":
		return name + ".dll"
	case "darwin", "ios":
		return "lib" + name + ".dylib"
	default:
		return "lib" + name + ".so"
	}
}

func separator(goos string) string {
	if goos == "windows" {
		return `\`
	}
	return "/"
}

func libDir(goos string) string {
	if goos == "windows" {
		return "bin"
	}
	return "lib"
}

// ResolveHome derives the install root from the shim's own path:
//
//	<home>/lib/truffle/libjvm.so
//	<home>/lib/<arch>/truffle/libjvm.so
//
// The returned root keeps its trailing separator.
func ResolveHome(shimPath, goos string) (string, error) {
	sep := separator(goos)
	lib := libDir(goos)

	// strip file name and the truffle directory
	dir, _, ok := cutLast(shimPath, sep)
	if !ok {
		return "", layoutError(shimPath, "no directory component")
	}
	dir, _, ok = cutLast(dir, sep)
	if !ok {
		return "", layoutError(shimPath, "shim is not inside a library directory")
	}

	parent, name, ok := cutLast(dir, sep)
	if ok && name == lib {
		return parent + sep, nil
	}
	// one more level for lib/<arch>
	if ok {
		parent, name, ok = cutLast(parent, sep)
		if ok && name == lib {
			return parent + sep, nil
		}
	}
	return "", layoutError(shimPath, fmt.Sprintf("expected .../%s/truffle/ or .../%s/<arch>/truffle/", lib, lib))
}

func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}
