// Package errors provides structured error types for the mokapot shim.
//
// Errors are categorized by Phase (which invocation-API step failed) and
// Kind (error category), and carry the JNI return code that the C entry
// points report to native callers.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseCreate, errors.KindIsolate).
//		Op("graal_create_isolate").
//		Code(jni.ERR).
//		Detail("isolate creation failed").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.SymbolMissing(path, "Espresso_CreateJavaVM")
//	err := errors.WrongKind(errors.PhaseAttach, "standalone")
//
// Teardown paths record every failure with Append and report the first one:
//
//	var err error
//	err = errors.Append(err, guestDestroy())
//	err = errors.Append(err, closeContext())
//	code := errors.Code(err) // code of the guest destroy failure, if any
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
