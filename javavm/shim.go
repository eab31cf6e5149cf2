package javavm

import (
	"runtime"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/wippyai/mokapot/errors"
	"github.com/wippyai/mokapot/guest"
	"github.com/wippyai/mokapot/jni"
	"github.com/wippyai/mokapot/loader"
	"github.com/wippyai/mokapot/registry"
)

// LibraryLoader provides the backing library for a mode.
type LibraryLoader interface {
	Load(mode loader.Mode) (guest.Library, error)
}

// Shim implements the JNI Invocation API over a backing library.
// It is safe for concurrent use.
type Shim struct {
	loader   LibraryLoader
	registry *registry.Registry[Wrapper]
	log      *zap.Logger
	metrics  *instruments
	active   atomic.Pointer[Context]
	params   guest.IsolateParams
}

// Option configures a Shim.
type Option func(*shimConfig)

type shimConfig struct {
	registry *registry.Registry[Wrapper]
	log      *zap.Logger
	meter    metric.MeterProvider
	params   guest.IsolateParams
}

// WithRegistry sets the registry wrappers are published in.
// The default is DefaultRegistry().
func WithRegistry(r *registry.Registry[Wrapper]) Option {
	return func(c *shimConfig) { c.registry = r }
}

// WithLogger sets the shim's logger. The default is Logger().
func WithLogger(l *zap.Logger) Option {
	return func(c *shimConfig) { c.log = l }
}

// WithMeterProvider sets the provider for shim metrics.
// The default is the global otel provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *shimConfig) { c.meter = mp }
}

// WithIsolateParams sets the parameters for every isolate the shim creates.
func WithIsolateParams(p guest.IsolateParams) Option {
	return func(c *shimConfig) { c.params = p }
}

// NewShim creates a shim that loads backing libraries through l.
func NewShim(l LibraryLoader, opts ...Option) *Shim {
	var c shimConfig
	for _, opt := range opts {
		opt(&c)
	}
	if c.registry == nil {
		c.registry = DefaultRegistry()
	}
	if c.log == nil {
		c.log = Logger()
	}
	if c.meter == nil {
		c.meter = otel.GetMeterProvider()
	}
	return &Shim{
		loader:   l,
		registry: c.registry,
		log:      c.log,
		metrics:  newInstruments(c.meter, c.registry, c.log),
		params:   c.params,
	}
}

// Registry returns the registry wrappers are published in.
func (s *Shim) Registry() *registry.Registry[Wrapper] {
	return s.registry
}

// CreateJavaVM boots a guest VM in a new isolate and returns the wrapper
// JavaVM together with the guest JNIEnv of the calling thread.
//
// Options are forwarded to the guest unchanged. "--polyglot" selects the
// polyglot image; "-Dsun.java.launcher=SUN_STANDARD" marks the standard
// launcher, whose VMs exit the guest on destroy instead of closing it.
func (s *Shim) CreateJavaVM(args *jni.InitArgs) (*Wrapper, jni.Env, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if args == nil {
		return nil, 0, s.fail(errors.InvalidInput(errors.PhaseCreate, "nil JavaVMInitArgs"))
	}

	flags := args.Scan()
	mode := loader.ModeFor(flags)
	lib, err := s.loader.Load(mode)
	if err != nil {
		return nil, 0, s.fail(err)
	}

	params := s.params
	iso, th, err := lib.CreateIsolate(&params)
	if err != nil {
		return nil, 0, s.fail(errors.New(errors.PhaseCreate, errors.KindIsolate).
			Op(guest.SymCreateIsolate).
			Path(lib.Path()).
			Code(jni.ERR).
			Cause(err).
			Build())
	}

	inv, env, err := lib.CreateJavaVM(th, args)
	if err != nil {
		s.tearDownFailed(lib, th)
		return nil, 0, s.fail(err)
	}

	g := &Guest{inv: inv}

	id, err := uuid.NewRandom()
	if err != nil {
		s.tearDownFailed(lib, th)
		oom := errors.OutOfMemory(errors.PhaseCreate, "wrapper JavaVM")
		oom.Cause = err
		return nil, 0, s.fail(oom)
	}
	w := &Wrapper{shim: s, guest: g, id: id}
	w.binding.Store(&isolateBinding{
		lib:              lib,
		isolate:          iso,
		mode:             mode,
		standardLauncher: flags.StandardLauncher,
	})
	g.wrapper.Store(w)

	// Publish only after both links are in place.
	s.registry.Add(w)

	add(s.metrics.created, "CreateJavaVM")
	s.log.Debug("JavaVM created",
		zap.Stringer("vm", id),
		zap.Stringer("mode", mode),
		zap.String("library", lib.Path()),
		zap.Bool("standard_launcher", flags.StandardLauncher))
	return w, env, nil
}

func (s *Shim) tearDownFailed(lib guest.Library, th guest.Thread) {
	if err := lib.DetachAllThreadsAndTearDownIsolate(th); err != nil {
		s.log.Warn("isolate teardown after failed create",
			zap.String("library", lib.Path()),
			zap.Error(err))
	}
}

// wrapper checks that vm is a live Wrapper.
func (s *Shim) wrapper(phase errors.Phase, op string, vm JavaVM) (*Wrapper, *isolateBinding, error) {
	w, ok := vm.(*Wrapper)
	if ok && w != nil {
		if b := w.binding.Load(); b != nil {
			return w, b, nil
		}
	}

	got := "nil"
	switch {
	case ok && w != nil:
		got = "destroyed wrapper"
	case vm != nil && !ok:
		got = vm.Kind().String()
	}
	add(s.metrics.rejected, op)
	s.log.Error(op+": not a wrapper JavaVM", zap.String("kind", got))
	return nil, nil, errors.WrongKind(phase, got)
}

func (s *Shim) fail(err error) error {
	add(s.metrics.failed, string(phaseOf(err)))
	return err
}

func phaseOf(err error) errors.Phase {
	if e, ok := errors.First(err).(*errors.Error); ok {
		return e.Phase
	}
	return ""
}

// AttachCurrentThread attaches the calling OS thread to the wrapper's
// isolate, enters the guest context and attaches the thread to the guest.
func (s *Shim) AttachCurrentThread(vm JavaVM, args *jni.AttachArgs) (jni.Env, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	w, b, err := s.wrapper(errors.PhaseAttach, "AttachCurrentThread", vm)
	if err != nil {
		return 0, err
	}
	return s.attach(w, b, args, false)
}

// AttachCurrentThreadAsDaemon is AttachCurrentThread for daemon threads.
func (s *Shim) AttachCurrentThreadAsDaemon(vm JavaVM, args *jni.AttachArgs) (jni.Env, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	w, b, err := s.wrapper(errors.PhaseAttach, "AttachCurrentThreadAsDaemon", vm)
	if err != nil {
		return 0, err
	}
	return s.attach(w, b, args, true)
}

func (s *Shim) attach(w *Wrapper, b *isolateBinding, args *jni.AttachArgs, daemon bool) (jni.Env, error) {
	log := s.log.With(zap.Stringer("vm", w.id), zap.Bool("daemon", daemon))

	th, err := b.lib.AttachThread(b.isolate)
	if err != nil {
		log.Error("failed to attach to isolate", zap.Error(err))
		return 0, s.fail(errors.New(errors.PhaseAttach, errors.KindIsolate).
			Op(guest.SymAttachThread).
			Code(jni.ERR).
			Cause(err).
			Build())
	}

	// The guest's invocation functions only work inside its context.
	if err := b.lib.EnterContext(th, w.guest.inv); err != nil {
		log.Error("failed to enter guest context", zap.Error(err))
		if derr := b.lib.DetachThread(th); derr != nil {
			log.Warn("isolate detach after failed attach", zap.Error(derr))
		}
		return 0, s.fail(err)
	}

	attach := w.guest.inv.AttachCurrentThread
	if daemon {
		attach = w.guest.inv.AttachCurrentThreadAsDaemon
	}
	env, err := attach(args)
	if err != nil {
		log.Error("failed to attach to guest VM", zap.Error(err))
		if lerr := b.lib.LeaveContext(th, w.guest.inv); lerr != nil {
			log.Warn("leave context after failed attach", zap.Error(lerr))
		}
		if derr := b.lib.DetachThread(th); derr != nil {
			log.Warn("isolate detach after failed attach", zap.Error(derr))
		}
		return 0, s.fail(err)
	}

	add(s.metrics.attached, "AttachCurrentThread")
	return env, nil
}

// DetachCurrentThread detaches the calling thread from the guest, leaves
// the context and detaches it from the isolate. A thread that is not
// attached succeeds trivially. Every step runs; the first failure is
// reported by errors.Code.
func (s *Shim) DetachCurrentThread(vm JavaVM) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	w, b, err := s.wrapper(errors.PhaseDetach, "DetachCurrentThread", vm)
	if err != nil {
		return err
	}

	th := b.lib.CurrentThread(b.isolate)
	if th == 0 {
		return nil
	}

	var errs error
	errs = errors.Append(errs, w.guest.inv.DetachCurrentThread())
	errs = errors.Append(errs, b.lib.LeaveContext(th, w.guest.inv))
	if err := b.lib.DetachThread(th); err != nil {
		errs = errors.Append(errs, errors.New(errors.PhaseDetach, errors.KindIsolate).
			Op(guest.SymDetachThread).
			Code(jni.ERR).
			Cause(err).
			Build())
	}
	if errs != nil {
		s.log.Error("DetachCurrentThread", zap.Stringer("vm", w.id), zap.Error(errs))
		return s.fail(errs)
	}
	return nil
}

// DestroyJavaVM destroys the guest VM, unpublishes the wrapper, closes the
// guest context (or exits the guest for the standard launcher) and tears
// down the isolate. The calling thread is attached first if needed.
// Every teardown step runs; the first failure is reported by errors.Code.
// The wrapper is unusable afterwards.
func (s *Shim) DestroyJavaVM(vm JavaVM) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	w, b, err := s.wrapper(errors.PhaseDestroy, "DestroyJavaVM", vm)
	if err != nil {
		return err
	}
	log := s.log.With(zap.Stringer("vm", w.id))

	th := b.lib.CurrentThread(b.isolate)
	if th == 0 {
		args := &jni.AttachArgs{Version: jni.Version1_2, Name: "Destroy VM"}
		if _, err := s.attach(w, b, args, false); err != nil {
			return err
		}
		th = b.lib.CurrentThread(b.isolate)
	}

	// Only one destroy may proceed past this point.
	if !w.binding.CompareAndSwap(b, nil) {
		_, _, err := s.wrapper(errors.PhaseDestroy, "DestroyJavaVM", vm)
		return err
	}

	var errs error
	errs = errors.Append(errs, w.guest.inv.DestroyJavaVM())

	if err := s.registry.Remove(w); err != nil {
		log.Warn("wrapper was not registered", zap.Error(err))
	}

	if b.standardLauncher {
		err := b.lib.Exit(th, w.guest.inv)
		if err == nil {
			err = errors.New(errors.PhaseDestroy, errors.KindGuest).
				Op(guest.SymExit).
				Code(jni.ERR).
				Detail("guest exit returned").
				Build()
		}
		errs = errors.Append(errs, err)
	} else {
		errs = errors.Append(errs, b.lib.CloseContext(th, w.guest.inv))
	}

	if err := b.lib.TearDownIsolate(th); err != nil {
		errs = errors.Append(errs, errors.New(errors.PhaseDestroy, errors.KindIsolate).
			Op(guest.SymTearDownIsolate).
			Code(jni.ERR).
			Cause(err).
			Build())
	}

	add(s.metrics.destroyed, "DestroyJavaVM")
	if errs != nil {
		log.Error("DestroyJavaVM", zap.Error(errs))
		return s.fail(errs)
	}
	log.Debug("JavaVM destroyed")
	return nil
}

// GetEnv returns the guest JNIEnv of the calling thread, or a JNI_EDETACHED
// error when the thread is not attached to the isolate.
func (s *Shim) GetEnv(vm JavaVM, version int32) (jni.Env, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	w, b, err := s.wrapper(errors.PhaseEnv, "GetEnv", vm)
	if err != nil {
		return 0, err
	}
	if b.lib.CurrentThread(b.isolate) == 0 {
		return 0, errors.NotAttached(errors.PhaseEnv)
	}
	return w.guest.inv.GetEnv(version)
}
