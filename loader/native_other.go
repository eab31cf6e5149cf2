//go:build !(darwin || freebsd || linux)

package loader

import (
	"unsafe"

	"github.com/wippyai/mokapot/errors"
	"github.com/wippyai/mokapot/guest"
)

// NativeOpener is unavailable on this platform.
func NativeOpener(path string) (guest.Library, error) {
	err := errors.Unsupported(errors.PhaseLoad, "dynamic loading on this platform")
	err.Path = path
	return nil, err
}

// NativeVM is unavailable on this platform.
func NativeVM(unsafe.Pointer) guest.Invoker {
	return nil
}

// NativePointer is unavailable on this platform.
func NativePointer(guest.Invoker) unsafe.Pointer {
	return nil
}
