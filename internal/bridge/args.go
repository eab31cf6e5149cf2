//go:build darwin || freebsd || linux

package bridge

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/wippyai/mokapot/jni"
)

// JavaVMOption
type vmOption struct {
	optionString *byte
	extraInfo    unsafe.Pointer
}

// JavaVMInitArgs
type initArgs struct {
	version            int32
	nOptions           int32
	options            *vmOption
	ignoreUnrecognized uint8
}

// JavaVMAttachArgs
type attachArgs struct {
	version int32
	name    *byte
	group   unsafe.Pointer
}

// InitArgsAt reads the JavaVMInitArgs at p. The result keeps p as
// Native so a native guest receives the caller's struct unchanged.
func InitArgsAt(p unsafe.Pointer) *jni.InitArgs {
	if p == nil {
		return nil
	}
	a := (*initArgs)(p)
	args := &jni.InitArgs{
		Version:            a.version,
		IgnoreUnrecognized: a.ignoreUnrecognized != 0,
		Native:             uintptr(p),
	}
	if a.options != nil && a.nOptions > 0 {
		for _, o := range unsafe.Slice(a.options, a.nOptions) {
			args.Options = append(args.Options, jni.Option{
				OptionString: unix.BytePtrToString(o.optionString),
				ExtraInfo:    uintptr(o.extraInfo),
			})
		}
	}
	return args
}

// AttachArgsAt reads the JavaVMAttachArgs at p.
func AttachArgsAt(p unsafe.Pointer) *jni.AttachArgs {
	if p == nil {
		return nil
	}
	a := (*attachArgs)(p)
	return &jni.AttachArgs{
		Version: a.version,
		Name:    unix.BytePtrToString(a.name),
		Group:   uintptr(a.group),
	}
}
