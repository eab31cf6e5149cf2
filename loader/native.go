//go:build darwin || freebsd || linux

package loader

import (
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/wippyai/mokapot/errors"
	"github.com/wippyai/mokapot/guest"
	"github.com/wippyai/mokapot/jni"
)

// indices into nativeLibrary.fns, in guest.Symbols order
const (
	fnCreateIsolate = iota
	fnAttachThread
	fnDetachThread
	fnGetCurrentThread
	fnTearDownIsolate
	fnDetachAllAndTearDown
	fnCreateJavaVM
	fnEnterContext
	fnLeaveContext
	fnReleaseContext
	fnCloseContext
	fnExit
	fnCount
)

// graal_create_isolate_params_t, version 0 prefix
type isolateParams struct {
	version                  int32
	_                        int32
	reservedAddressSpaceSize uintptr
	auxiliaryImagePath       uintptr
	auxiliaryImageReserved   uintptr
}

// JavaVMOption
type cOption struct {
	optionString uintptr
	extraInfo    uintptr
}

// JavaVMInitArgs
type cInitArgs struct {
	version            int32
	nOptions           int32
	options            uintptr
	ignoreUnrecognized uint8
}

// JavaVMAttachArgs
type cAttachArgs struct {
	version int32
	name    uintptr
	group   uintptr
}

// JNIInvokeInterface_ slot indices
const (
	slotDestroyJavaVM               = 3
	slotAttachCurrentThread         = 4
	slotDetachCurrentThread         = 5
	slotGetEnv                      = 6
	slotAttachCurrentThreadAsDaemon = 7
)

type nativeLibrary struct {
	path   string
	handle uintptr
	fns    [fnCount]uintptr
}

// NativeOpener opens path with dlopen and binds every symbol in
// guest.Symbols. A missing symbol closes the handle and fails.
func NativeOpener(path string) (guest.Library, error) {
	h, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, errors.LibraryMissing(path, err)
	}
	lib := &nativeLibrary{path: path, handle: h}
	for i, sym := range guest.Symbols {
		fn, err := purego.Dlsym(h, sym)
		if err != nil || fn == 0 {
			_ = purego.Dlclose(h)
			return nil, errors.SymbolMissing(path, sym)
		}
		lib.fns[i] = fn
	}
	return lib, nil
}

func (l *nativeLibrary) Path() string { return l.path }

func (l *nativeLibrary) call(fn int, args ...uintptr) int32 {
	r1, _, _ := purego.SyscallN(l.fns[fn], args...)
	return int32(r1)
}

func (l *nativeLibrary) CreateIsolate(params *guest.IsolateParams) (guest.Isolate, guest.Thread, error) {
	p := &isolateParams{}
	if params != nil {
		p.version = params.Version
		p.reservedAddressSpaceSize = uintptr(params.ReservedAddressSpace)
	}
	out := new([2]uintptr)

	var pin runtime.Pinner
	pin.Pin(p)
	pin.Pin(out)
	defer pin.Unpin()

	status := l.call(fnCreateIsolate,
		uintptr(unsafe.Pointer(p)),
		uintptr(unsafe.Pointer(&out[0])),
		uintptr(unsafe.Pointer(&out[1])))
	if err := isolateStatus(guest.SymCreateIsolate, status); err != nil {
		return 0, 0, err
	}
	return guest.Isolate(out[0]), guest.Thread(out[1]), nil
}

func (l *nativeLibrary) AttachThread(iso guest.Isolate) (guest.Thread, error) {
	out := new(uintptr)
	var pin runtime.Pinner
	pin.Pin(out)
	defer pin.Unpin()

	status := l.call(fnAttachThread, uintptr(iso), uintptr(unsafe.Pointer(out)))
	if err := isolateStatus(guest.SymAttachThread, status); err != nil {
		return 0, err
	}
	return guest.Thread(*out), nil
}

func (l *nativeLibrary) DetachThread(th guest.Thread) error {
	return isolateStatus(guest.SymDetachThread, l.call(fnDetachThread, uintptr(th)))
}

func (l *nativeLibrary) CurrentThread(iso guest.Isolate) guest.Thread {
	r1, _, _ := purego.SyscallN(l.fns[fnGetCurrentThread], uintptr(iso))
	return guest.Thread(r1)
}

func (l *nativeLibrary) TearDownIsolate(th guest.Thread) error {
	return isolateStatus(guest.SymTearDownIsolate, l.call(fnTearDownIsolate, uintptr(th)))
}

func (l *nativeLibrary) DetachAllThreadsAndTearDownIsolate(th guest.Thread) error {
	return isolateStatus(guest.SymDetachAllAndTearDown, l.call(fnDetachAllAndTearDown, uintptr(th)))
}

func (l *nativeLibrary) CreateJavaVM(th guest.Thread, args *jni.InitArgs) (guest.Invoker, jni.Env, error) {
	var pin runtime.Pinner
	defer pin.Unpin()

	vm := new(unsafe.Pointer)
	env := new(uintptr)
	pin.Pin(vm)
	pin.Pin(env)

	status := l.call(fnCreateJavaVM,
		uintptr(th),
		uintptr(unsafe.Pointer(vm)),
		uintptr(unsafe.Pointer(env)),
		marshalInitArgs(&pin, args))
	if err := guestStatus(guest.SymCreateJavaVM, status); err != nil {
		return nil, 0, err
	}
	return &nativeVM{vm: *vm}, jni.Env(*env), nil
}

func (l *nativeLibrary) contextCall(fn int, op string, th guest.Thread, inv guest.Invoker) error {
	vm, ok := inv.(*nativeVM)
	if !ok {
		return errors.FromCode(phaseOf(op), errors.KindGuest, op, jni.EINVAL)
	}
	return guestStatus(op, l.call(fn, uintptr(th), uintptr(vm.vm)))
}

func (l *nativeLibrary) EnterContext(th guest.Thread, vm guest.Invoker) error {
	return l.contextCall(fnEnterContext, guest.SymEnterContext, th, vm)
}

func (l *nativeLibrary) LeaveContext(th guest.Thread, vm guest.Invoker) error {
	return l.contextCall(fnLeaveContext, guest.SymLeaveContext, th, vm)
}

func (l *nativeLibrary) ReleaseContext(th guest.Thread, vm guest.Invoker) error {
	return l.contextCall(fnReleaseContext, guest.SymReleaseContext, th, vm)
}

func (l *nativeLibrary) CloseContext(th guest.Thread, vm guest.Invoker) error {
	return l.contextCall(fnCloseContext, guest.SymCloseContext, th, vm)
}

func (l *nativeLibrary) Exit(th guest.Thread, vm guest.Invoker) error {
	_ = l.contextCall(fnExit, guest.SymExit, th, vm)
	return errors.FromCode(phaseOf(guest.SymExit), errors.KindGuest, guest.SymExit, jni.ERR)
}

// marshalInitArgs returns args.Native when the caller came from C, and a
// pinned JavaVMInitArgs copy otherwise.
func marshalInitArgs(pin *runtime.Pinner, args *jni.InitArgs) uintptr {
	if args == nil {
		return 0
	}
	if args.Native != 0 {
		return args.Native
	}
	c := &cInitArgs{
		version:  args.Version,
		nOptions: int32(len(args.Options)),
	}
	if args.IgnoreUnrecognized {
		c.ignoreUnrecognized = 1
	}
	if len(args.Options) > 0 {
		opts := make([]cOption, len(args.Options))
		for i, o := range args.Options {
			opts[i] = cOption{
				optionString: cString(pin, o.OptionString),
				extraInfo:    o.ExtraInfo,
			}
		}
		pin.Pin(&opts[0])
		c.options = uintptr(unsafe.Pointer(&opts[0]))
	}
	pin.Pin(c)
	return uintptr(unsafe.Pointer(c))
}

func marshalAttachArgs(pin *runtime.Pinner, args *jni.AttachArgs) uintptr {
	if args == nil {
		return 0
	}
	c := &cAttachArgs{
		version: args.Version,
		group:   args.Group,
	}
	if args.Name != "" {
		c.name = cString(pin, args.Name)
	}
	pin.Pin(c)
	return uintptr(unsafe.Pointer(c))
}

func cString(pin *runtime.Pinner, s string) uintptr {
	b := make([]byte, len(s)+1)
	copy(b, s)
	pin.Pin(&b[0])
	return uintptr(unsafe.Pointer(&b[0]))
}

// nativeVM is a guest JavaVM*.
type nativeVM struct {
	vm unsafe.Pointer
}

// slot reads entry i of the JNIInvokeInterface_ table the VM points at.
func (v *nativeVM) slot(i uintptr) uintptr {
	table := *(*unsafe.Pointer)(v.vm)
	return *(*uintptr)(unsafe.Add(table, i*unsafe.Sizeof(uintptr(0))))
}

func (v *nativeVM) invoke(slot uintptr, args ...uintptr) jni.Code {
	r1, _, _ := purego.SyscallN(v.slot(slot), append([]uintptr{uintptr(v.vm)}, args...)...)
	return jni.Code(int32(r1))
}

func (v *nativeVM) DestroyJavaVM() error {
	return guestStatus("DestroyJavaVM", int32(v.invoke(slotDestroyJavaVM)))
}

func (v *nativeVM) attach(slot uintptr, op string, args *jni.AttachArgs) (jni.Env, error) {
	var pin runtime.Pinner
	defer pin.Unpin()

	env := new(uintptr)
	pin.Pin(env)
	code := v.invoke(slot, uintptr(unsafe.Pointer(env)), marshalAttachArgs(&pin, args))
	if err := guestStatus(op, int32(code)); err != nil {
		return 0, err
	}
	return jni.Env(*env), nil
}

func (v *nativeVM) AttachCurrentThread(args *jni.AttachArgs) (jni.Env, error) {
	return v.attach(slotAttachCurrentThread, "AttachCurrentThread", args)
}

func (v *nativeVM) AttachCurrentThreadAsDaemon(args *jni.AttachArgs) (jni.Env, error) {
	return v.attach(slotAttachCurrentThreadAsDaemon, "AttachCurrentThreadAsDaemon", args)
}

func (v *nativeVM) DetachCurrentThread() error {
	return guestStatus("DetachCurrentThread", int32(v.invoke(slotDetachCurrentThread)))
}

func (v *nativeVM) GetEnv(version int32) (jni.Env, error) {
	var pin runtime.Pinner
	defer pin.Unpin()

	env := new(uintptr)
	pin.Pin(env)
	code := v.invoke(slotGetEnv, uintptr(unsafe.Pointer(env)), uintptr(uint32(version)))
	if err := guestStatus("GetEnv", int32(code)); err != nil {
		return 0, err
	}
	return jni.Env(*env), nil
}

// NativeVM wraps a guest JavaVM* obtained outside the loader, such as one
// handed to an embedded context by the guest's own bootstrap.
func NativeVM(vm unsafe.Pointer) guest.Invoker {
	return &nativeVM{vm: vm}
}

// NativePointer returns the JavaVM* behind an invoker made by this package,
// or nil for any other invoker.
func NativePointer(inv guest.Invoker) unsafe.Pointer {
	if v, ok := inv.(*nativeVM); ok {
		return v.vm
	}
	return nil
}
