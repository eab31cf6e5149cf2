package guest

import "github.com/wippyai/mokapot/jni"

// Isolate is an opaque graal_isolate_t*.
type Isolate uintptr

// Thread is an opaque graal_isolatethread_t*. Zero means "not attached".
type Thread uintptr

// IsolateParams mirrors graal_create_isolate_params_t.
type IsolateParams struct {
	Version              int32
	ReservedAddressSpace int64
}

// Required symbol names, in binding order.
const (
	SymCreateIsolate        = "graal_create_isolate"
	SymAttachThread         = "graal_attach_thread"
	SymDetachThread         = "graal_detach_thread"
	SymGetCurrentThread     = "graal_get_current_thread"
	SymTearDownIsolate      = "graal_tear_down_isolate"
	SymDetachAllAndTearDown = "graal_detach_all_threads_and_tear_down_isolate"
	SymCreateJavaVM         = "Espresso_CreateJavaVM"
	SymEnterContext         = "Espresso_EnterContext"
	SymLeaveContext         = "Espresso_LeaveContext"
	SymReleaseContext       = "Espresso_ReleaseContext"
	SymCloseContext         = "Espresso_CloseContext"
	SymExit                 = "Espresso_Exit"
)

// Symbols lists every export a backing library must provide.
var Symbols = []string{
	SymCreateIsolate,
	SymAttachThread,
	SymDetachThread,
	SymGetCurrentThread,
	SymTearDownIsolate,
	SymDetachAllAndTearDown,
	SymCreateJavaVM,
	SymEnterContext,
	SymLeaveContext,
	SymReleaseContext,
	SymCloseContext,
	SymExit,
}

// Invoker is the guest VM's own invocation interface, i.e. the five
// function slots of its JNIInvokeInterface_.
type Invoker interface {
	DestroyJavaVM() error
	AttachCurrentThread(args *jni.AttachArgs) (jni.Env, error)
	AttachCurrentThreadAsDaemon(args *jni.AttachArgs) (jni.Env, error)
	DetachCurrentThread() error
	GetEnv(version int32) (jni.Env, error)
}

// Library is a loaded backing runtime library.
//
// Errors returned by entry points that report a jint carry that code
// (see errors.Code); isolate entry points report ERR.
type Library interface {
	// Path is the file the library was loaded from.
	Path() string

	CreateIsolate(params *IsolateParams) (Isolate, Thread, error)
	AttachThread(iso Isolate) (Thread, error)
	DetachThread(th Thread) error
	// CurrentThread returns the calling thread's isolate thread, or 0.
	CurrentThread(iso Isolate) Thread
	TearDownIsolate(th Thread) error
	DetachAllThreadsAndTearDownIsolate(th Thread) error

	// CreateJavaVM boots a guest VM inside the isolate th belongs to.
	CreateJavaVM(th Thread, args *jni.InitArgs) (Invoker, jni.Env, error)
	EnterContext(th Thread, vm Invoker) error
	LeaveContext(th Thread, vm Invoker) error
	ReleaseContext(th Thread, vm Invoker) error
	CloseContext(th Thread, vm Invoker) error
	// Exit terminates the guest and, for a real library, the process.
	// Returning at all is a failure.
	Exit(th Thread, vm Invoker) error
}
