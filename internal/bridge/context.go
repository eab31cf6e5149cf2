package bridge

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/mokapot/internal/handle"
	"github.com/wippyai/mokapot/javavm"
)

// Enumerator runs the guest's own JNI_GetCreatedJavaVMs with room for n
// VMs. It passes the first min(total, n) pointers the guest wrote to
// classify before releasing the buffer, and returns the guest's total.
type Enumerator func(n int, classify func(raw []unsafe.Pointer)) (int, error)

// OpenContext activates the embedded VM whose JavaVM* is self and
// returns the handle to store in it. enumerate may be nil when the guest
// cannot list its VMs.
func (b *Bridge) OpenContext(self unsafe.Pointer, enumerate Enumerator) (handle.Handle, error) {
	var created javavm.CreatedVMsFunc
	if enumerate != nil {
		created = func(buf []javavm.JavaVM) (int, error) {
			return enumerate(len(buf), func(raw []unsafe.Pointer) {
				for i, p := range raw {
					if i >= len(buf) {
						break
					}
					buf[i] = b.Classify(p)
				}
			})
		}
	}

	ctx := b.shim.InitializeContext(b.natives.Invoker(self), created)
	h, err := b.contexts.Insert(ctx)
	if err != nil {
		b.log.Error("cannot allocate context handle", zap.Error(err))
		b.shim.DisposeContext(ctx)
		return 0, err
	}
	b.contexts.Bind(h, self)
	return h, nil
}

// CloseContext deactivates the context behind h.
func (b *Bridge) CloseContext(h uint64) bool {
	ctx, _, ok := b.contexts.Remove(handle.Handle(h))
	if ok {
		b.shim.DisposeContext(ctx)
	}
	return ok
}

// Classify maps a JavaVM* reported by the guest to the shim's view of
// it: the active context's own VM, the Guest behind a registered
// wrapper, or a standalone VM.
//
// Guests are matched against the registry rather than the handle table,
// since a wrapper is registered before its C JavaVM is bound.
func (b *Bridge) Classify(p unsafe.Pointer) javavm.JavaVM {
	if p == nil {
		return nil
	}
	if ctx := b.shim.ActiveContext(); ctx != nil && b.natives.Pointer(ctx.VM().Invoker()) == p {
		return ctx.VM()
	}

	var found *javavm.Guest
	b.shim.Registry().Each(func(w *javavm.Wrapper) bool {
		if b.natives.Pointer(w.Guest().Invoker()) == p {
			found = w.Guest()
			return false
		}
		return true
	})
	if found != nil {
		return found
	}
	return javavm.NewStandalone(b.natives.Invoker(p))
}
