// Package guest defines the contract between the invocation shim and the
// backing runtime library that hosts the guest JVM.
//
// A backing library exports two groups of entry points:
//
//	isolate API      graal_create_isolate, graal_attach_thread,
//	                 graal_detach_thread, graal_get_current_thread,
//	                 graal_tear_down_isolate,
//	                 graal_detach_all_threads_and_tear_down_isolate
//	VM lifecycle     Espresso_CreateJavaVM, Espresso_EnterContext,
//	                 Espresso_LeaveContext, Espresso_ReleaseContext,
//	                 Espresso_CloseContext, Espresso_Exit
//
// Library is the Go view of that table. Implementations either bind the
// symbols from a shared object (package loader) or simulate them
// (package guesttest).
//
// Every entry point that depends on "the current thread" refers to the
// calling OS thread; Go callers must hold runtime.LockOSThread.
package guest
