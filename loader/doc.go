// Package loader locates, opens and caches the backing runtime library.
//
// The shim is installed inside a GraalVM-style home and finds the guest
// runtime relative to its own location:
//
//	<home>/lib/truffle/libjvm.so            shim (or lib/<arch>/truffle/)
//	<home>/languages/java/lib/libespresso.so  standalone guest (ModeStandalone)
//	<home>/lib/polyglot/libpolyglot.so        polyglot guest (ModePolyglot)
//
// On Windows "lib" is "bin" for the shim directory and library names use
// the platform convention (espresso.dll, libespresso.dylib, ...).
//
// A Loader opens each mode at most once and caches the result. Opening is
// delegated to an Opener so tests can observe which path was requested;
// NativeOpener binds the real shared object through purego and fails fast
// when any required symbol is missing.
package loader
