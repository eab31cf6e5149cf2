// Package guesttest provides an in-memory guest.Library for tests.
//
// The fake tracks isolates, isolate threads keyed by OS thread, entered
// contexts and guest-level attachment, and records every entry point call
// in order. Failures are injected per entry point with FailOn.
//
// Tests that attach threads must hold runtime.LockOSThread.
package guesttest

import (
	"sync"

	"github.com/wippyai/mokapot/errors"
	"github.com/wippyai/mokapot/guest"
	"github.com/wippyai/mokapot/internal/osthread"
	"github.com/wippyai/mokapot/jni"
)

// Guest invocation entry point names, as recorded by Calls.
const (
	OpDestroyJavaVM               = "JavaVM.DestroyJavaVM"
	OpAttachCurrentThread         = "JavaVM.AttachCurrentThread"
	OpAttachCurrentThreadAsDaemon = "JavaVM.AttachCurrentThreadAsDaemon"
	OpDetachCurrentThread         = "JavaVM.DetachCurrentThread"
	OpGetEnv                      = "JavaVM.GetEnv"
)

// Library is a fake backing library.
type Library struct {
	fail     map[string]error
	isolates map[guest.Isolate]*isolate
	threads  map[guest.Thread]*isolate
	path     string
	calls    []string
	vms      []*VM
	args     []*jni.InitArgs
	next     uintptr
	created  int
	mu       sync.Mutex
}

type isolate struct {
	attached map[osthread.ID]guest.Thread
	id       guest.Isolate
}

// New creates a fake library that reports path as its origin.
func New(path string) *Library {
	return &Library{
		path:     path,
		fail:     make(map[string]error),
		isolates: make(map[guest.Isolate]*isolate),
		threads:  make(map[guest.Thread]*isolate),
		next:     0x1000,
	}
}

// FailOn makes every later call to op return err. A nil err clears it.
func (l *Library) FailOn(op string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err == nil {
		delete(l.fail, op)
		return
	}
	l.fail[op] = err
}

// Calls returns the entry points called so far, in order.
func (l *Library) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// Called reports how many times op was called.
func (l *Library) Called(op string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, c := range l.calls {
		if c == op {
			n++
		}
	}
	return n
}

// LiveIsolates returns the number of isolates not yet torn down.
func (l *Library) LiveIsolates() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.isolates)
}

// IsolatesCreated returns how many isolates were ever created.
func (l *Library) IsolatesCreated() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.created
}

// VMs returns every guest VM created so far.
func (l *Library) VMs() []*VM {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*VM(nil), l.vms...)
}

// InitArgs returns the arguments passed to each CreateJavaVM call.
func (l *Library) InitArgs() []*jni.InitArgs {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*jni.InitArgs(nil), l.args...)
}

// enter records a call and returns the injected failure for op, if any.
// Callers hold l.mu.
func (l *Library) enter(op string) error {
	l.calls = append(l.calls, op)
	return l.fail[op]
}

func (l *Library) handle() uintptr {
	l.next += 0x10
	return l.next
}

func failure(op string, code jni.Code) error {
	return &errors.Error{Kind: errors.KindGuest, Op: op, Code: code}
}

func (l *Library) Path() string { return l.path }

func (l *Library) CreateIsolate(params *guest.IsolateParams) (guest.Isolate, guest.Thread, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enter(guest.SymCreateIsolate); err != nil {
		return 0, 0, err
	}
	iso := &isolate{
		id:       guest.Isolate(l.handle()),
		attached: make(map[osthread.ID]guest.Thread),
	}
	th := guest.Thread(l.handle())
	iso.attached[osthread.Current()] = th
	l.isolates[iso.id] = iso
	l.threads[th] = iso
	l.created++
	return iso.id, th, nil
}

func (l *Library) AttachThread(id guest.Isolate) (guest.Thread, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enter(guest.SymAttachThread); err != nil {
		return 0, err
	}
	iso, ok := l.isolates[id]
	if !ok {
		return 0, failure(guest.SymAttachThread, jni.ERR)
	}
	self := osthread.Current()
	if th, ok := iso.attached[self]; ok {
		return th, nil
	}
	th := guest.Thread(l.handle())
	iso.attached[self] = th
	l.threads[th] = iso
	return th, nil
}

func (l *Library) DetachThread(th guest.Thread) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enter(guest.SymDetachThread); err != nil {
		return err
	}
	iso, ok := l.threads[th]
	if !ok {
		return failure(guest.SymDetachThread, jni.ERR)
	}
	for os, t := range iso.attached {
		if t == th {
			delete(iso.attached, os)
		}
	}
	delete(l.threads, th)
	return nil
}

// CurrentThread is not recorded in Calls; the shim polls it freely.
func (l *Library) CurrentThread(id guest.Isolate) guest.Thread {
	l.mu.Lock()
	defer l.mu.Unlock()
	iso, ok := l.isolates[id]
	if !ok {
		return 0
	}
	return iso.attached[osthread.Current()]
}

// Attached reports how many threads are attached to the isolate.
func (l *Library) Attached(id guest.Isolate) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	iso, ok := l.isolates[id]
	if !ok {
		return 0
	}
	return len(iso.attached)
}

func (l *Library) tearDown(op string, th guest.Thread) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enter(op); err != nil {
		return err
	}
	iso, ok := l.threads[th]
	if !ok {
		// graal_tear_down_isolate needs an attached thread
		return failure(op, jni.ERR)
	}
	for _, t := range iso.attached {
		delete(l.threads, t)
	}
	delete(l.threads, th)
	delete(l.isolates, iso.id)
	return nil
}

func (l *Library) TearDownIsolate(th guest.Thread) error {
	return l.tearDown(guest.SymTearDownIsolate, th)
}

func (l *Library) DetachAllThreadsAndTearDownIsolate(th guest.Thread) error {
	return l.tearDown(guest.SymDetachAllAndTearDown, th)
}

func (l *Library) CreateJavaVM(th guest.Thread, args *jni.InitArgs) (guest.Invoker, jni.Env, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enter(guest.SymCreateJavaVM); err != nil {
		return nil, 0, err
	}
	if _, ok := l.threads[th]; !ok {
		return nil, 0, failure(guest.SymCreateJavaVM, jni.EDETACHED)
	}
	vm := &VM{
		lib:      l,
		env:      jni.Env(l.handle()),
		entered:  make(map[osthread.ID]bool),
		attached: make(map[osthread.ID]bool),
		daemon:   make(map[osthread.ID]bool),
	}
	// The creating thread is entered and attached, as with a real launch.
	self := osthread.Current()
	vm.entered[self] = true
	vm.attached[self] = true
	l.vms = append(l.vms, vm)
	l.args = append(l.args, args)
	return vm, vm.env, nil
}

func (l *Library) context(op string, th guest.Thread, inv guest.Invoker, fn func(*VM)) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enter(op); err != nil {
		return err
	}
	vm, ok := inv.(*VM)
	if !ok {
		return failure(op, jni.EINVAL)
	}
	if _, ok := l.threads[th]; !ok {
		return failure(op, jni.EDETACHED)
	}
	fn(vm)
	return nil
}

func (l *Library) EnterContext(th guest.Thread, inv guest.Invoker) error {
	return l.context(guest.SymEnterContext, th, inv, func(vm *VM) {
		vm.entered[osthread.Current()] = true
	})
}

func (l *Library) LeaveContext(th guest.Thread, inv guest.Invoker) error {
	return l.context(guest.SymLeaveContext, th, inv, func(vm *VM) {
		delete(vm.entered, osthread.Current())
	})
}

func (l *Library) ReleaseContext(th guest.Thread, inv guest.Invoker) error {
	return l.context(guest.SymReleaseContext, th, inv, func(vm *VM) {
		delete(vm.entered, osthread.Current())
	})
}

func (l *Library) CloseContext(th guest.Thread, inv guest.Invoker) error {
	return l.context(guest.SymCloseContext, th, inv, func(vm *VM) {
		vm.closed = true
	})
}

// Exit marks the guest as exited and returns, which a real library never does.
func (l *Library) Exit(th guest.Thread, inv guest.Invoker) error {
	return l.context(guest.SymExit, th, inv, func(vm *VM) {
		vm.exited = true
	})
}

// VM is a fake guest VM invocation interface.
type VM struct {
	lib       *Library
	entered   map[osthread.ID]bool
	attached  map[osthread.ID]bool
	daemon    map[osthread.ID]bool
	env       jni.Env
	destroyed bool
	closed    bool
	exited    bool
}

// Env is the JNIEnv the guest hands out.
func (v *VM) Env() jni.Env { return v.env }

// Attached reports whether the calling thread is attached at guest level.
func (v *VM) Attached() bool {
	v.lib.mu.Lock()
	defer v.lib.mu.Unlock()
	return v.attached[osthread.Current()]
}

// Daemon reports whether the calling thread attached as a daemon.
func (v *VM) Daemon() bool {
	v.lib.mu.Lock()
	defer v.lib.mu.Unlock()
	return v.daemon[osthread.Current()]
}

// Entered reports whether the calling thread has entered the context.
func (v *VM) Entered() bool {
	v.lib.mu.Lock()
	defer v.lib.mu.Unlock()
	return v.entered[osthread.Current()]
}

func (v *VM) Destroyed() bool {
	v.lib.mu.Lock()
	defer v.lib.mu.Unlock()
	return v.destroyed
}

func (v *VM) Closed() bool {
	v.lib.mu.Lock()
	defer v.lib.mu.Unlock()
	return v.closed
}

func (v *VM) Exited() bool {
	v.lib.mu.Lock()
	defer v.lib.mu.Unlock()
	return v.exited
}

func (v *VM) DestroyJavaVM() error {
	v.lib.mu.Lock()
	defer v.lib.mu.Unlock()
	if err := v.lib.enter(OpDestroyJavaVM); err != nil {
		return err
	}
	v.destroyed = true
	return nil
}

func (v *VM) attach(op string, daemon bool) (jni.Env, error) {
	v.lib.mu.Lock()
	defer v.lib.mu.Unlock()
	if err := v.lib.enter(op); err != nil {
		return 0, err
	}
	self := osthread.Current()
	if !v.entered[self] {
		// the guest's invocation closures only work inside the context
		return 0, failure(op, jni.ERR)
	}
	v.attached[self] = true
	if daemon {
		v.daemon[self] = true
	}
	return v.env, nil
}

func (v *VM) AttachCurrentThread(*jni.AttachArgs) (jni.Env, error) {
	return v.attach(OpAttachCurrentThread, false)
}

func (v *VM) AttachCurrentThreadAsDaemon(*jni.AttachArgs) (jni.Env, error) {
	return v.attach(OpAttachCurrentThreadAsDaemon, true)
}

func (v *VM) DetachCurrentThread() error {
	v.lib.mu.Lock()
	defer v.lib.mu.Unlock()
	if err := v.lib.enter(OpDetachCurrentThread); err != nil {
		return err
	}
	self := osthread.Current()
	delete(v.attached, self)
	delete(v.daemon, self)
	return nil
}

func (v *VM) GetEnv(version int32) (jni.Env, error) {
	v.lib.mu.Lock()
	defer v.lib.mu.Unlock()
	if err := v.lib.enter(OpGetEnv); err != nil {
		return 0, err
	}
	if !v.attached[osthread.Current()] {
		return 0, failure(OpGetEnv, jni.EDETACHED)
	}
	return v.env, nil
}
