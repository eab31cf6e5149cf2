package javavm

import (
	"errors"
	"runtime"
	"sync"
	"testing"

	mkerrors "github.com/wippyai/mokapot/errors"
	"github.com/wippyai/mokapot/guest"
	"github.com/wippyai/mokapot/guest/guesttest"
	"github.com/wippyai/mokapot/jni"
	"github.com/wippyai/mokapot/loader"
	"github.com/wippyai/mokapot/registry"
)

const home = "/opt/graal"

type fixture struct {
	shim   *Shim
	reg    *registry.Registry[Wrapper]
	mu     sync.Mutex
	libs   map[string]*guesttest.Library
	opened []string
	absent bool
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{libs: make(map[string]*guesttest.Library)}
	f.reg = registry.New[Wrapper]()
	l := loader.New(f.open, loader.WithHome(home))
	f.shim = NewShim(l, WithRegistry(f.reg))
	return f
}

func (f *fixture) open(path string) (guest.Library, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, path)
	if f.absent {
		return nil, errors.New("cannot open shared object file")
	}
	lib := guesttest.New(path)
	f.libs[path] = lib
	return lib, nil
}

func (f *fixture) lib(t *testing.T, mode loader.Mode) *guesttest.Library {
	t.Helper()
	l := loader.New(nil, loader.WithHome(home))
	path, err := l.Path(mode)
	if err != nil {
		t.Fatal(err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	lib, ok := f.libs[path]
	if !ok {
		t.Fatalf("library %s was never opened (opened: %v)", path, f.opened)
	}
	return lib
}

func (f *fixture) create(t *testing.T, options ...string) *Wrapper {
	t.Helper()
	vm, env, err := f.shim.CreateJavaVM(jni.NewInitArgs(jni.Version21, false, options...))
	if err != nil {
		t.Fatalf("CreateJavaVM: %v", err)
	}
	if env == 0 {
		t.Fatal("CreateJavaVM returned no JNIEnv")
	}
	return vm
}

func guestVM(t *testing.T, w *Wrapper) *guesttest.VM {
	t.Helper()
	vm, ok := w.Guest().Invoker().(*guesttest.VM)
	if !ok {
		t.Fatalf("guest invoker is %T", w.Guest().Invoker())
	}
	return vm
}

// onThread runs fn on a fresh, locked OS thread.
func onThread(fn func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		fn()
	}()
	<-done
}

func gather(t *testing.T, s *Shim, size int) []JavaVM {
	t.Helper()
	buf := make([]JavaVM, size)
	n, err := s.GetCreatedJavaVMs(buf)
	if err != nil {
		t.Fatalf("GetCreatedJavaVMs: %v", err)
	}
	return buf[:n]
}

func TestCreateJavaVM_VisibleAsWrapper(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	f := newFixture(t)
	vm := f.create(t)

	vms := gather(t, f.shim, 4)
	if len(vms) != 1 {
		t.Fatalf("GetCreatedJavaVMs returned %d VMs, want 1", len(vms))
	}
	if vms[0] != JavaVM(vm) {
		t.Errorf("GetCreatedJavaVMs()[0] = %v, want %v", vms[0], vm)
	}
	if vms[0].Kind() != KindWrapper {
		t.Errorf("Kind = %v, want wrapper", vms[0].Kind())
	}
	if vm.Guest().Kind() != KindGuest {
		t.Errorf("guest Kind = %v", vm.Guest().Kind())
	}
	if vm.Guest().Wrapper() != vm {
		t.Error("guest does not point back at its wrapper")
	}
	if vm.Destroyed() || vm.Isolate() == 0 {
		t.Error("fresh wrapper has no isolate")
	}
}

func TestCreateJavaVM_ModeSelectsLibrary(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	tests := []struct {
		name    string
		options []string
		mode    loader.Mode
	}{
		{"standalone", []string{"-Xmx64m"}, loader.ModeStandalone},
		{"polyglot", []string{"-Xmx64m", jni.PolyglotOption}, loader.ModePolyglot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			vm := f.create(t, tt.options...)

			want, _ := loader.New(nil, loader.WithHome(home)).Path(tt.mode)
			if len(f.opened) != 1 || f.opened[0] != want {
				t.Errorf("opened %v, want [%s]", f.opened, want)
			}
			if vm.Mode() != tt.mode {
				t.Errorf("Mode = %v, want %v", vm.Mode(), tt.mode)
			}

			lib := f.lib(t, tt.mode)
			args := lib.InitArgs()
			if len(args) != 1 {
				t.Fatalf("guest saw %d CreateJavaVM calls", len(args))
			}
			got := args[0].OptionStrings()
			if len(got) != len(tt.options) {
				t.Errorf("guest options = %v, want %v", got, tt.options)
			}
			for i := range got {
				if got[i] != tt.options[i] {
					t.Errorf("guest option %d = %q, want %q", i, got[i], tt.options[i])
				}
			}
		})
	}
}

func TestCreateJavaVM_LibraryCachedAcrossVMs(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	f := newFixture(t)
	f.create(t)
	f.create(t)

	if len(f.opened) != 1 {
		t.Errorf("library opened %d times, want 1", len(f.opened))
	}
	if got := f.lib(t, loader.ModeStandalone).IsolatesCreated(); got != 2 {
		t.Errorf("isolates created = %d, want 2", got)
	}
}

func TestCreateJavaVM_LibraryAbsent(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for _, opts := range [][]string{nil, {jni.PolyglotOption}} {
		f := newFixture(t)
		f.absent = true

		vm, _, err := f.shim.CreateJavaVM(jni.NewInitArgs(jni.Version21, false, opts...))
		if err == nil {
			t.Fatalf("CreateJavaVM(%v) = %v, want error", opts, vm)
		}
		if code := mkerrors.Code(err); code != jni.ERR {
			t.Errorf("Code = %v, want JNI_ERR", code)
		}
		if f.reg.Len() != 0 {
			t.Errorf("registry has %d entries", f.reg.Len())
		}
		if len(f.libs) != 0 {
			t.Error("a library was handed out")
		}
	}
}

func TestCreateJavaVM_NilArgs(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.shim.CreateJavaVM(nil)
	if code := mkerrors.Code(err); code != jni.EINVAL {
		t.Errorf("Code = %v, want JNI_EINVAL", code)
	}
	if len(f.opened) != 0 {
		t.Error("nil args should not load a library")
	}
}

func TestCreateJavaVM_IsolateFailure(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	f := newFixture(t)
	f.create(t) // opens the library
	lib := f.lib(t, loader.ModeStandalone)
	lib.FailOn(guest.SymCreateIsolate, errors.New("no address space"))

	_, _, err := f.shim.CreateJavaVM(jni.NewInitArgs(jni.Version21, false))
	if code := mkerrors.Code(err); code != jni.ERR {
		t.Errorf("Code = %v, want JNI_ERR", code)
	}
	if f.reg.Len() != 1 {
		t.Errorf("registry has %d entries, want 1", f.reg.Len())
	}
}

func TestCreateJavaVM_GuestFailureTearsDown(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	f := newFixture(t)
	f.create(t)
	lib := f.lib(t, loader.ModeStandalone)
	lib.FailOn(guest.SymCreateJavaVM, mkerrors.FromCode("", mkerrors.KindGuest, guest.SymCreateJavaVM, jni.EVERSION))

	_, _, err := f.shim.CreateJavaVM(jni.NewInitArgs(jni.Version21, false))
	if code := mkerrors.Code(err); code != jni.EVERSION {
		t.Errorf("Code = %v, want JNI_EVERSION", code)
	}
	if lib.Called(guest.SymDetachAllAndTearDown) != 1 {
		t.Error("isolate was not torn down")
	}
	if lib.LiveIsolates() != 1 {
		t.Errorf("live isolates = %d, want 1", lib.LiveIsolates())
	}
	if f.reg.Len() != 1 {
		t.Errorf("registry has %d entries, want 1", f.reg.Len())
	}
}

func TestInvocation_RejectsNonWrapper(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	f := newFixture(t)
	live := f.create(t)
	lib := f.lib(t, loader.ModeStandalone)

	destroyed := f.create(t)
	if err := destroyed.DestroyJavaVM(); err != nil {
		t.Fatalf("DestroyJavaVM: %v", err)
	}

	ctx := f.shim.InitializeContext(guestVM(t, live), nil)
	defer f.shim.DisposeContext(ctx)

	handles := map[string]JavaVM{
		"nil":        nil,
		"guest":      live.Guest(),
		"standalone": ctx.VM(),
		"destroyed":  destroyed,
	}

	for name, vm := range handles {
		t.Run(name, func(t *testing.T) {
			before := len(lib.Calls())
			regBefore := f.reg.Len()

			checks := map[string]error{}
			_, checks["attach"] = f.shim.AttachCurrentThread(vm, nil)
			_, checks["attach daemon"] = f.shim.AttachCurrentThreadAsDaemon(vm, nil)
			checks["detach"] = f.shim.DetachCurrentThread(vm)
			_, checks["getenv"] = f.shim.GetEnv(vm, jni.Version1_8)
			checks["destroy"] = f.shim.DestroyJavaVM(vm)

			for op, err := range checks {
				if code := mkerrors.Code(err); code != jni.ERR {
					t.Errorf("%s: Code = %v, want JNI_ERR", op, code)
				}
				if !errors.Is(err, mkerrors.ErrWrongKind) {
					t.Errorf("%s: %v is not a wrong-kind error", op, err)
				}
			}
			if after := len(lib.Calls()); after != before {
				t.Errorf("rejected calls reached the library: %v", lib.Calls()[before:])
			}
			if f.reg.Len() != regBefore {
				t.Error("rejected calls changed the registry")
			}
		})
	}
}

func TestAttachDetach_RoundTrip(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	f := newFixture(t)
	vm := f.create(t)
	lib := f.lib(t, loader.ModeStandalone)
	g := guestVM(t, vm)

	onThread(func() {
		if lib.CurrentThread(vm.Isolate()) != 0 {
			t.Error("new thread already attached")
			return
		}

		env, err := vm.AttachCurrentThread(&jni.AttachArgs{Version: jni.Version1_8, Name: "worker"})
		if err != nil {
			t.Errorf("AttachCurrentThread: %v", err)
			return
		}
		if env != g.Env() {
			t.Errorf("env = %#x, want %#x", env, g.Env())
		}
		if lib.CurrentThread(vm.Isolate()) == 0 || !g.Entered() || !g.Attached() {
			t.Error("thread not fully attached")
		}

		got, err := vm.GetEnv(jni.Version1_8)
		if err != nil || got != env {
			t.Errorf("GetEnv = %#x, %v", got, err)
		}

		if err := vm.DetachCurrentThread(); err != nil {
			t.Errorf("DetachCurrentThread: %v", err)
			return
		}
		if lib.CurrentThread(vm.Isolate()) != 0 || g.Entered() || g.Attached() {
			t.Error("thread state not restored after detach")
		}
	})

	if lib.Attached(vm.Isolate()) != 1 {
		t.Errorf("attached threads = %d, want only the creator", lib.Attached(vm.Isolate()))
	}
}

func TestAttachCurrentThreadAsDaemon(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	f := newFixture(t)
	vm := f.create(t)
	g := guestVM(t, vm)

	onThread(func() {
		if _, err := vm.AttachCurrentThreadAsDaemon(nil); err != nil {
			t.Errorf("AttachCurrentThreadAsDaemon: %v", err)
			return
		}
		if !g.Daemon() {
			t.Error("guest attach was not a daemon attach")
		}
		if err := vm.DetachCurrentThread(); err != nil {
			t.Errorf("DetachCurrentThread: %v", err)
			return
		}
	})
}

func TestAttach_GuestFailureLeavesNoState(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	f := newFixture(t)
	vm := f.create(t)
	lib := f.lib(t, loader.ModeStandalone)
	g := guestVM(t, vm)
	lib.FailOn(guesttest.OpAttachCurrentThread, mkerrors.FromCode("", mkerrors.KindGuest, "AttachCurrentThread", jni.ENOMEM))

	onThread(func() {
		_, err := vm.AttachCurrentThread(nil)
		if code := mkerrors.Code(err); code != jni.ENOMEM {
			t.Errorf("Code = %v, want JNI_ENOMEM", code)
		}
		if lib.CurrentThread(vm.Isolate()) != 0 {
			t.Error("isolate thread left attached")
		}
		if g.Entered() {
			t.Error("guest context left entered")
		}
	})
}

func TestAttach_EnterContextFailure(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	f := newFixture(t)
	vm := f.create(t)
	lib := f.lib(t, loader.ModeStandalone)
	lib.FailOn(guest.SymEnterContext, mkerrors.FromCode("", mkerrors.KindGuest, guest.SymEnterContext, jni.ERR))

	onThread(func() {
		if _, err := vm.AttachCurrentThread(nil); err == nil {
			t.Error("expected error")
			return
		}
		if lib.CurrentThread(vm.Isolate()) != 0 {
			t.Error("isolate thread left attached")
		}
		if lib.Called(guesttest.OpAttachCurrentThread) != 0 {
			t.Error("guest attach called outside the context")
		}
	})
}

func TestAttach_IsolateFailure(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	f := newFixture(t)
	vm := f.create(t)
	lib := f.lib(t, loader.ModeStandalone)
	lib.FailOn(guest.SymAttachThread, errors.New("thread limit"))

	onThread(func() {
		_, err := vm.AttachCurrentThread(nil)
		if code := mkerrors.Code(err); code != jni.ERR {
			t.Errorf("Code = %v, want JNI_ERR", code)
		}
		if lib.Called(guest.SymEnterContext) != 0 {
			t.Error("context entered without an isolate thread")
		}
	})
}

func TestGetEnv_NotAttached(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	f := newFixture(t)
	vm := f.create(t)
	lib := f.lib(t, loader.ModeStandalone)

	onThread(func() {
		_, err := vm.GetEnv(jni.Version1_8)
		if code := mkerrors.Code(err); code != jni.EDETACHED {
			t.Errorf("Code = %v, want JNI_EDETACHED", code)
		}
		if !errors.Is(err, mkerrors.ErrNotAttached) {
			t.Errorf("%v is not a not-attached error", err)
		}
	})
	if lib.Called(guesttest.OpGetEnv) != 0 {
		t.Error("guest GetEnv called for a detached thread")
	}

	// creating thread is attached
	if _, err := vm.GetEnv(jni.Version1_8); err != nil {
		t.Errorf("GetEnv on creating thread: %v", err)
	}
}

func TestDetach_NotAttachedSucceeds(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	f := newFixture(t)
	vm := f.create(t)
	lib := f.lib(t, loader.ModeStandalone)
	before := len(lib.Calls())

	onThread(func() {
		if err := vm.DetachCurrentThread(); err != nil {
			t.Errorf("DetachCurrentThread: %v", err)
		}
	})
	if len(lib.Calls()) != before {
		t.Errorf("unexpected calls %v", lib.Calls()[before:])
	}
}

func TestDetach_FirstErrorWinsAndContinues(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	f := newFixture(t)
	vm := f.create(t)
	lib := f.lib(t, loader.ModeStandalone)

	onThread(func() {
		if _, err := vm.AttachCurrentThread(nil); err != nil {
			t.Error(err)
			return
		}
		lib.FailOn(guesttest.OpDetachCurrentThread, mkerrors.FromCode("", mkerrors.KindGuest, "DetachCurrentThread", jni.EVERSION))
		lib.FailOn(guest.SymLeaveContext, mkerrors.FromCode("", mkerrors.KindGuest, guest.SymLeaveContext, jni.EINVAL))

		err := vm.DetachCurrentThread()
		if code := mkerrors.Code(err); code != jni.EVERSION {
			t.Errorf("Code = %v, want JNI_EVERSION", code)
		}
		if lib.CurrentThread(vm.Isolate()) != 0 {
			t.Error("isolate detach skipped after earlier failures")
		}
	})
}

func TestDestroy_RemovesFromDiscovery(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	f := newFixture(t)
	a := f.create(t)
	b := f.create(t)
	lib := f.lib(t, loader.ModeStandalone)
	ga := guestVM(t, a)

	if err := a.DestroyJavaVM(); err != nil {
		t.Fatalf("DestroyJavaVM: %v", err)
	}

	vms := gather(t, f.shim, 4)
	if len(vms) != 1 || vms[0] != JavaVM(b) {
		t.Errorf("GetCreatedJavaVMs = %v, want [%v]", vms, b)
	}
	if !a.Destroyed() || a.Isolate() != 0 {
		t.Error("wrapper still bound after destroy")
	}
	if !ga.Destroyed() || !ga.Closed() || ga.Exited() {
		t.Errorf("guest destroyed=%v closed=%v exited=%v", ga.Destroyed(), ga.Closed(), ga.Exited())
	}
	if lib.LiveIsolates() != 1 {
		t.Errorf("live isolates = %d, want 1", lib.LiveIsolates())
	}

	if err := b.DestroyJavaVM(); err != nil {
		t.Fatalf("DestroyJavaVM: %v", err)
	}
	if n := len(gather(t, f.shim, 4)); n != 0 {
		t.Errorf("%d VMs visible after destroying all", n)
	}
	if lib.LiveIsolates() != 0 {
		t.Errorf("live isolates = %d, want 0", lib.LiveIsolates())
	}
}

func TestDestroy_OrderOfTeardown(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	f := newFixture(t)
	vm := f.create(t)
	lib := f.lib(t, loader.ModeStandalone)
	before := len(lib.Calls())

	if err := vm.DestroyJavaVM(); err != nil {
		t.Fatal(err)
	}

	want := []string{guesttest.OpDestroyJavaVM, guest.SymCloseContext, guest.SymTearDownIsolate}
	got := lib.Calls()[before:]
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestDestroy_FromUnattachedThread(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	f := newFixture(t)
	vm := f.create(t)
	lib := f.lib(t, loader.ModeStandalone)

	onThread(func() {
		if err := vm.DestroyJavaVM(); err != nil {
			t.Errorf("DestroyJavaVM: %v", err)
		}
	})
	if lib.Called(guest.SymAttachThread) != 1 || lib.Called(guesttest.OpAttachCurrentThread) != 1 {
		t.Errorf("destroying thread was not attached first: %v", lib.Calls())
	}
	if lib.LiveIsolates() != 0 || f.reg.Len() != 0 {
		t.Error("VM not torn down")
	}
}

func TestDestroy_ContinuesAfterFailures(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	f := newFixture(t)
	vm := f.create(t)
	lib := f.lib(t, loader.ModeStandalone)
	lib.FailOn(guesttest.OpDestroyJavaVM, mkerrors.FromCode("", mkerrors.KindGuest, "DestroyJavaVM", jni.EINVAL))
	lib.FailOn(guest.SymCloseContext, mkerrors.FromCode("", mkerrors.KindGuest, guest.SymCloseContext, jni.EVERSION))

	err := vm.DestroyJavaVM()
	if code := mkerrors.Code(err); code != jni.EINVAL {
		t.Errorf("Code = %v, want JNI_EINVAL", code)
	}
	if lib.LiveIsolates() != 0 {
		t.Error("isolate teardown skipped after earlier failures")
	}
	if f.reg.Len() != 0 {
		t.Error("wrapper still registered")
	}
	if !vm.Destroyed() {
		t.Error("wrapper still usable")
	}
}

func TestDestroy_StandardLauncherExitsGuest(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	f := newFixture(t)
	vm := f.create(t, jni.StandardLauncherOption)
	lib := f.lib(t, loader.ModeStandalone)
	g := guestVM(t, vm)

	err := vm.DestroyJavaVM()
	// the fake exit returns, which is a failure
	if code := mkerrors.Code(err); code != jni.ERR {
		t.Errorf("Code = %v, want JNI_ERR", code)
	}
	if !g.Exited() || g.Closed() {
		t.Errorf("exited=%v closed=%v, want exit without close", g.Exited(), g.Closed())
	}
	if lib.LiveIsolates() != 0 {
		t.Error("isolate not torn down")
	}
}

func TestDestroy_Twice(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	f := newFixture(t)
	vm := f.create(t)
	lib := f.lib(t, loader.ModeStandalone)

	if err := vm.DestroyJavaVM(); err != nil {
		t.Fatal(err)
	}
	before := len(lib.Calls())
	if err := vm.DestroyJavaVM(); mkerrors.Code(err) != jni.ERR {
		t.Errorf("second destroy = %v, want JNI_ERR", err)
	}
	if len(lib.Calls()) != before {
		t.Error("second destroy reached the library")
	}
}

func TestCreateDestroy_Concurrent(t *testing.T) {
	const workers = 8
	f := newFixture(t)

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()

			vm, _, err := f.shim.CreateJavaVM(jni.NewInitArgs(jni.Version21, false))
			if err != nil {
				errs <- err
				return
			}
			errs <- vm.DestroyJavaVM()
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("create/destroy: %v", err)
		}
	}
	if f.reg.Len() != 0 {
		t.Errorf("registry has %d entries", f.reg.Len())
	}
	if lib := f.lib(t, loader.ModeStandalone); lib.LiveIsolates() != 0 {
		t.Errorf("leaked %d isolates", lib.LiveIsolates())
	}
}

func TestDefaultRegistry(t *testing.T) {
	if DefaultRegistry() != DefaultRegistry() {
		t.Error("DefaultRegistry is not a singleton")
	}
	s := NewShim(loader.New(nil))
	if s.Registry() != DefaultRegistry() {
		t.Error("shim does not default to the process registry")
	}
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindStandalone, "standalone"},
		{KindWrapper, "wrapper"},
		{KindGuest, "guest"},
		{Kind(9), "kind(9)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestConfigureDefaultRegistry(t *testing.T) {
	DefaultRegistry()
	if ConfigureDefaultRegistry(registry.WithInitialCapacity(64)) {
		t.Error("replaced an existing default registry")
	}
}
