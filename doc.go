// Package mokapot is a JNI Invocation API shim over an embedded guest JVM.
//
// Native programs written against jni.h create and drive JVMs through
// JNI_CreateJavaVM, JNI_GetCreatedJavaVMs and the JavaVM function table.
// mokapot serves those calls from a GraalVM native image that hosts the
// guest JVM inside an isolate, so existing launchers and embedders work
// unchanged.
//
// # Architecture Overview
//
//	mokapot/
//	├── jni/            JNI constants, init and attach arguments
//	├── errors/         Structured errors carrying a JNI return code
//	├── registry/       Lock-free segmented registry of live JavaVMs
//	├── guest/          Contract of the backing library (isolates, VM lifecycle)
//	│   └── guesttest/  In-memory backing library for tests
//	├── loader/         Install layout, mode selection, dlopen of the backing library
//	├── javavm/         JavaVM handle kinds and the Invocation API shim
//	├── config/         Flags, MOKAPOT_* environment and config file
//	├── internal/       OS thread identity, native handle table
//	└── cmd/
//	    ├── libjvm/     c-shared build exporting the JNI entry points
//	    └── javavm/     Launcher that boots, exercises and destroys a VM
//
// # Quick Start
//
//	l := loader.New(loader.NativeOpener, loader.WithHome("/opt/graalvm"))
//	shim := javavm.NewShim(l)
//
//	runtime.LockOSThread()
//	vm, env, err := shim.CreateJavaVM(jni.NewInitArgs(jni.Version21, false, "-Xmx512m"))
//	if err != nil {
//	    return errors.Code(err)
//	}
//	defer vm.DestroyJavaVM()
//
// # Modes
//
// Options are forwarded to the guest unchanged. "--polyglot" selects the
// polyglot image under lib/polyglot instead of the standalone Java image
// under languages/java/lib.
//
// # Error Handling
//
// Every failure is an *errors.Error or a multierr of them. errors.Code
// reduces any returned error to the JNI status native callers expect:
//
//	if errors.Code(err) == jni.EDETACHED {
//	    // thread is not attached
//	}
package mokapot
