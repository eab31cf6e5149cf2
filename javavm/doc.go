// Package javavm implements the JNI Invocation API on top of an embedded
// guest JVM.
//
// # Handle Kinds
//
// Three kinds of JavaVM handle exist:
//
//	Standalone  a guest VM booted by the guest's own native bootstrap;
//	            no outer wrapper
//	Wrapper     the handle returned by CreateJavaVM; owns the isolate and
//	            refers to the Guest it wraps
//	Guest       the guest VM as seen from its Wrapper; refers back to it
//
// A Wrapper and its Guest always point at each other, and the link is in
// place before the Wrapper becomes visible in the registry.
//
// # Lifecycle
//
//	shim := javavm.NewShim(loader.New(loader.NativeOpener, loader.WithHome(home)))
//
//	vm, env, err := shim.CreateJavaVM(jni.NewInitArgs(jni.Version21, false, "-Xmx1g"))
//	if err != nil {
//	    return errors.Code(err)
//	}
//
//	// on another OS thread
//	env, err := vm.AttachCurrentThread(nil)
//	...
//	err = vm.DetachCurrentThread()
//
//	err = vm.DestroyJavaVM()
//
// The invocation operations reject any handle that is not a live Wrapper
// with JNI_ERR and touch nothing else.
//
// # Threads
//
// Attachment is tracked per OS thread by the backing library. Every Shim
// operation locks the calling goroutine to its OS thread for its duration;
// callers that attach a thread must keep it locked (runtime.LockOSThread)
// until they detach.
//
// # Discovery
//
// GetCreatedJavaVMs merges the VMs reported by the active embedded context,
// minus Guest handles, with the Wrappers in the registry.
package javavm
