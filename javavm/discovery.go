package javavm

import (
	"go.uber.org/zap"

	"github.com/wippyai/mokapot/errors"
	"github.com/wippyai/mokapot/guest"
)

// CreatedVMsFunc reports the VMs a guest runtime knows about, the way its
// own JNI_GetCreatedJavaVMs does: it fills buf and returns the total count,
// which may exceed len(buf).
type CreatedVMsFunc func(buf []JavaVM) (int, error)

// Context is an embedded environment: a guest VM that was booted by the
// guest runtime's own bootstrap and loaded the shim natively.
type Context struct {
	vm      *Standalone
	created CreatedVMsFunc
}

// VM returns the context's standalone handle.
func (c *Context) VM() *Standalone { return c.vm }

// InitializeContext registers a guest VM booted outside CreateJavaVM and
// makes it the active environment consulted by GetCreatedJavaVMs. created
// may be nil when the guest cannot enumerate its VMs.
func (s *Shim) InitializeContext(inv guest.Invoker, created CreatedVMsFunc) *Context {
	ctx := &Context{
		vm:      NewStandalone(inv),
		created: created,
	}
	if prev := s.active.Swap(ctx); prev != nil {
		s.log.Debug("replacing active embedded context")
	}
	return ctx
}

// DisposeContext deactivates ctx if it is still the active environment.
func (s *Shim) DisposeContext(ctx *Context) {
	if !s.active.CompareAndSwap(ctx, nil) {
		s.log.Debug("disposed context was not active")
	}
}

// ActiveContext returns the active embedded environment, or nil.
func (s *Shim) ActiveContext() *Context {
	return s.active.Load()
}

// GetCreatedJavaVMs fills buf with the live JavaVMs visible to native
// callers and returns how many were written.
//
// VMs reported by the active context come first, with Guest handles
// removed since their Wrapper represents them; registered Wrappers follow
// in the remaining space. A context reporting more VMs than buf holds is
// a BufferTooSmall error.
//
// Registered Wrappers that do not fit are dropped without an error, so a
// full buf does not prove every VM was reported. Callers that need the
// complete set retry with a larger buf until the count is below len(buf).
func (s *Shim) GetCreatedJavaVMs(buf []JavaVM) (int, error) {
	n := 0
	if ctx := s.active.Load(); ctx != nil && ctx.created != nil {
		got, err := ctx.created(buf)
		if err != nil {
			s.log.Error("embedded GetCreatedJavaVMs failed", zap.Error(err))
			return 0, s.fail(err)
		}
		if got > len(buf) {
			return 0, s.fail(errors.BufferTooSmall(errors.PhaseDiscover, len(buf), got))
		}
		n = filterGuests(buf[:got])
		clear(buf[n:got])
	}

	rest := make([]*Wrapper, len(buf)-n)
	m := s.registry.Gather(rest)
	for i, w := range rest[:m] {
		buf[n+i] = w
	}
	return n + m, nil
}

// filterGuests compacts vms in place, dropping Guest and nil handles while
// keeping order, and returns the new length.
func filterGuests(vms []JavaVM) int {
	w := 0
	for _, vm := range vms {
		if vm == nil || vm.Kind() == KindGuest {
			continue
		}
		vms[w] = vm
		w++
	}
	return w
}
