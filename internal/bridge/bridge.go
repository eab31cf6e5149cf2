package bridge

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/mokapot/errors"
	"github.com/wippyai/mokapot/guest"
	"github.com/wippyai/mokapot/internal/handle"
	"github.com/wippyai/mokapot/javavm"
	"github.com/wippyai/mokapot/jni"
	"github.com/wippyai/mokapot/loader"
)

// Natives maps guest invokers to the JavaVM* the guest handed out, and
// back.
type Natives interface {
	Pointer(inv guest.Invoker) unsafe.Pointer
	Invoker(vm unsafe.Pointer) guest.Invoker
}

type loaderNatives struct{}

func (loaderNatives) Pointer(inv guest.Invoker) unsafe.Pointer { return loader.NativePointer(inv) }

func (loaderNatives) Invoker(vm unsafe.Pointer) guest.Invoker { return loader.NativeVM(vm) }

// Allocator builds the C JavaVM that carries h. It returns nil when
// memory is exhausted.
type Allocator func(h handle.Handle) unsafe.Pointer

// Bridge binds a shim to the native JavaVM pointers of its VMs.
type Bridge struct {
	shim     *javavm.Shim
	natives  Natives
	vms      *handle.Table[*javavm.Wrapper]
	contexts *handle.Table[*javavm.Context]
	log      *zap.Logger
}

type Option func(*Bridge)

// WithNatives replaces the loader's native invoker mapping.
func WithNatives(n Natives) Option {
	return func(b *Bridge) { b.natives = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(b *Bridge) { b.log = l }
}

// New creates a bridge for shim.
func New(shim *javavm.Shim, opts ...Option) *Bridge {
	b := &Bridge{
		shim:     shim,
		natives:  loaderNatives{},
		vms:      handle.New[*javavm.Wrapper](),
		contexts: handle.New[*javavm.Context](),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bridge) Shim() *javavm.Shim { return b.shim }

// CreateJavaVM creates a wrapper VM, gives it a handle and binds it to
// the C JavaVM alloc builds for that handle.
func (b *Bridge) CreateJavaVM(args *jni.InitArgs, alloc Allocator) (unsafe.Pointer, jni.Env, error) {
	vm, env, err := b.shim.CreateJavaVM(args)
	if err != nil {
		return nil, 0, err
	}

	h, err := b.vms.Insert(vm)
	if err != nil {
		b.log.Error("cannot allocate JavaVM handle", zap.Error(err))
		_ = vm.DestroyJavaVM()
		return nil, 0, errors.New(errors.PhaseCreate, errors.KindAllocation).
			Detail("JavaVM handle").
			Code(jni.ERR).
			Cause(err).
			Build()
	}

	p := alloc(h)
	if p == nil {
		b.vms.Remove(h)
		_ = vm.DestroyJavaVM()
		return nil, 0, errors.OutOfMemory(errors.PhaseCreate, "native JavaVM")
	}
	b.vms.Bind(h, p)
	b.log.Debug("JavaVM bound", zap.Stringer("vm", vm.ID()), zap.Stringer("handle", h))
	return p, env, nil
}

// Resolve returns the wrapper a C JavaVM's handle refers to. Unknown and
// stale handles resolve to nil, which every shim operation rejects.
func (b *Bridge) Resolve(h uint64) javavm.JavaVM {
	w, ok := b.vms.Get(handle.Handle(h))
	if !ok {
		return nil
	}
	return w
}

// DestroyJavaVM destroys the wrapper behind h. Once it is torn down the
// handle is released, so a stale JavaVM* resolves to nothing.
func (b *Bridge) DestroyJavaVM(h uint64) error {
	target := b.Resolve(h)
	err := b.shim.DestroyJavaVM(target)
	if w, ok := target.(*javavm.Wrapper); ok && w.Destroyed() {
		b.vms.Remove(handle.Handle(h))
	}
	return err
}

func (b *Bridge) AttachCurrentThread(h uint64, args *jni.AttachArgs, daemon bool) (jni.Env, error) {
	if daemon {
		return b.shim.AttachCurrentThreadAsDaemon(b.Resolve(h), args)
	}
	return b.shim.AttachCurrentThread(b.Resolve(h), args)
}

func (b *Bridge) DetachCurrentThread(h uint64) error {
	return b.shim.DetachCurrentThread(b.Resolve(h))
}

func (b *Bridge) GetEnv(h uint64, version int32) (jni.Env, error) {
	return b.shim.GetEnv(b.Resolve(h), version)
}

// GetCreatedJavaVMs writes the JavaVM* of every visible VM to the bufLen
// slots at vmBuf and stores the count in nVMs. Wrappers that are not yet
// bound to a C JavaVM are skipped.
func (b *Bridge) GetCreatedJavaVMs(vmBuf *unsafe.Pointer, bufLen int32, nVMs *int32) error {
	if nVMs == nil || bufLen < 0 || (vmBuf == nil && bufLen > 0) {
		return errors.InvalidInput(errors.PhaseDiscover, "bad JNI_GetCreatedJavaVMs arguments")
	}

	buf := make([]javavm.JavaVM, bufLen)
	n, err := b.shim.GetCreatedJavaVMs(buf)
	if err != nil {
		return err
	}

	written := 0
	if bufLen > 0 {
		out := unsafe.Slice(vmBuf, bufLen)
		for _, vm := range buf[:n] {
			p := b.Pointer(vm)
			if p == nil {
				continue
			}
			out[written] = p
			written++
		}
	}
	*nVMs = int32(written)
	return nil
}

// Pointer returns the JavaVM* native callers know vm by, or nil.
func (b *Bridge) Pointer(vm javavm.JavaVM) unsafe.Pointer {
	switch v := vm.(type) {
	case *javavm.Wrapper:
		h, ok := b.vms.Lookup(v)
		if !ok {
			return nil
		}
		p, _ := b.vms.Native(h)
		return p
	case *javavm.Standalone:
		return b.natives.Pointer(v.Invoker())
	default:
		return nil
	}
}

// StoreEnv writes env to the JNIEnv** slot at penv.
func StoreEnv(penv unsafe.Pointer, env jni.Env) {
	*(*uintptr)(penv) = uintptr(env)
}
