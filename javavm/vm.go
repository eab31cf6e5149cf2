package javavm

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/wippyai/mokapot/guest"
	"github.com/wippyai/mokapot/jni"
	"github.com/wippyai/mokapot/loader"
)

// JavaVM is a JNI JavaVM handle: its invocation interface plus its kind.
type JavaVM interface {
	guest.Invoker
	Kind() Kind
}

var (
	_ JavaVM = (*Standalone)(nil)
	_ JavaVM = (*Guest)(nil)
	_ JavaVM = (*Wrapper)(nil)
)

// Standalone is a guest VM booted by the guest runtime itself.
type Standalone struct {
	inv guest.Invoker
}

// NewStandalone wraps a guest VM that was not created through a Shim.
func NewStandalone(inv guest.Invoker) *Standalone {
	return &Standalone{inv: inv}
}

func (s *Standalone) Kind() Kind { return KindStandalone }

// Invoker returns the guest invocation interface behind s.
func (s *Standalone) Invoker() guest.Invoker { return s.inv }

func (s *Standalone) DestroyJavaVM() error { return s.inv.DestroyJavaVM() }

func (s *Standalone) AttachCurrentThread(args *jni.AttachArgs) (jni.Env, error) {
	return s.inv.AttachCurrentThread(args)
}

func (s *Standalone) AttachCurrentThreadAsDaemon(args *jni.AttachArgs) (jni.Env, error) {
	return s.inv.AttachCurrentThreadAsDaemon(args)
}

func (s *Standalone) DetachCurrentThread() error { return s.inv.DetachCurrentThread() }

func (s *Standalone) GetEnv(version int32) (jni.Env, error) { return s.inv.GetEnv(version) }

// Guest is a guest VM that a Wrapper re-exposes. Its invocation methods go
// straight to the guest and are only meaningful inside the guest context.
type Guest struct {
	inv     guest.Invoker
	wrapper atomic.Pointer[Wrapper]
}

func (g *Guest) Kind() Kind { return KindGuest }

// Wrapper returns the wrapper VM this guest belongs to.
func (g *Guest) Wrapper() *Wrapper { return g.wrapper.Load() }

// Invoker returns the guest's own invocation interface.
func (g *Guest) Invoker() guest.Invoker { return g.inv }

func (g *Guest) DestroyJavaVM() error { return g.inv.DestroyJavaVM() }

func (g *Guest) AttachCurrentThread(args *jni.AttachArgs) (jni.Env, error) {
	return g.inv.AttachCurrentThread(args)
}

func (g *Guest) AttachCurrentThreadAsDaemon(args *jni.AttachArgs) (jni.Env, error) {
	return g.inv.AttachCurrentThreadAsDaemon(args)
}

func (g *Guest) DetachCurrentThread() error { return g.inv.DetachCurrentThread() }

func (g *Guest) GetEnv(version int32) (jni.Env, error) { return g.inv.GetEnv(version) }

// isolateBinding ties a wrapper to the library and isolate it created.
type isolateBinding struct {
	lib              guest.Library
	isolate          guest.Isolate
	mode             loader.Mode
	standardLauncher bool
}

// Wrapper is the JavaVM handed to CreateJavaVM callers. It is owned by that
// caller and becomes unusable after DestroyJavaVM.
type Wrapper struct {
	shim    *Shim
	guest   *Guest
	binding atomic.Pointer[isolateBinding]
	id      uuid.UUID
}

func (w *Wrapper) Kind() Kind { return KindWrapper }

// ID identifies the wrapper in logs.
func (w *Wrapper) ID() uuid.UUID { return w.id }

// Guest returns the guest VM this wrapper re-exposes.
func (w *Wrapper) Guest() *Guest { return w.guest }

// Destroyed reports whether DestroyJavaVM has run.
func (w *Wrapper) Destroyed() bool { return w.binding.Load() == nil }

// Isolate returns the backing isolate, or 0 once destroyed.
func (w *Wrapper) Isolate() guest.Isolate {
	if b := w.binding.Load(); b != nil {
		return b.isolate
	}
	return 0
}

// Mode returns the runtime image the wrapper was created with.
func (w *Wrapper) Mode() loader.Mode {
	if b := w.binding.Load(); b != nil {
		return b.mode
	}
	return loader.ModeStandalone
}

func (w *Wrapper) DestroyJavaVM() error { return w.shim.DestroyJavaVM(w) }

func (w *Wrapper) AttachCurrentThread(args *jni.AttachArgs) (jni.Env, error) {
	return w.shim.AttachCurrentThread(w, args)
}

func (w *Wrapper) AttachCurrentThreadAsDaemon(args *jni.AttachArgs) (jni.Env, error) {
	return w.shim.AttachCurrentThreadAsDaemon(w, args)
}

func (w *Wrapper) DetachCurrentThread() error { return w.shim.DetachCurrentThread(w) }

func (w *Wrapper) GetEnv(version int32) (jni.Env, error) { return w.shim.GetEnv(w, version) }
