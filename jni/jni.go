package jni

import "fmt"

// Code is a JNI return code (jint).
type Code int32

const (
	OK        Code = 0
	ERR       Code = -1
	EDETACHED Code = -2
	EVERSION  Code = -3
	ENOMEM    Code = -4
	EEXIST    Code = -5
	EINVAL    Code = -6
)

func (c Code) String() string {
	switch c {
	case OK:
		return "JNI_OK"
	case ERR:
		return "JNI_ERR"
	case EDETACHED:
		return "JNI_EDETACHED"
	case EVERSION:
		return "JNI_EVERSION"
	case ENOMEM:
		return "JNI_ENOMEM"
	case EEXIST:
		return "JNI_EEXIST"
	case EINVAL:
		return "JNI_EINVAL"
	default:
		return fmt.Sprintf("JNI_%d", int32(c))
	}
}

// JNI interface versions as passed to GetEnv and in InitArgs.Version.
const (
	Version1_1 int32 = 0x00010001
	Version1_2 int32 = 0x00010002
	Version1_4 int32 = 0x00010004
	Version1_6 int32 = 0x00010006
	Version1_8 int32 = 0x00010008
	Version9   int32 = 0x00090000
	Version10  int32 = 0x000a0000
	Version19  int32 = 0x00130000
	Version20  int32 = 0x00140000
	Version21  int32 = 0x00150000
)

// Env is an opaque JNIEnv* belonging to the guest VM.
type Env uintptr

// Option mirrors JavaVMOption.
type Option struct {
	OptionString string
	ExtraInfo    uintptr
}

// InitArgs mirrors JavaVMInitArgs.
//
// Native holds the address of the caller's original JavaVMInitArgs when the
// call came through the C entry point. Backends that talk to a native guest
// pass it through verbatim instead of re-marshalling Options.
type InitArgs struct {
	Options            []Option
	Native             uintptr
	Version            int32
	IgnoreUnrecognized bool
}

// AttachArgs mirrors JavaVMAttachArgs. A nil *AttachArgs is valid and means
// "no arguments", as with a NULL pointer in C.
type AttachArgs struct {
	Name    string
	Group   uintptr
	Version int32
}
