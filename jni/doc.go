// Package jni defines the Go-side vocabulary of the JNI Invocation API.
//
// It mirrors the parts of jni.h that the invocation shim needs: return
// codes, interface versions, JavaVMInitArgs/JavaVMOption and
// JavaVMAttachArgs. Native pointers (JNIEnv*, thread groups, the original
// JavaVMInitArgs*) are carried as uintptr and never dereferenced here.
//
// # Return Codes
//
//	OK         0   success
//	ERR       -1   unknown error
//	EDETACHED -2   thread detached from the VM
//	EVERSION  -3   JNI version error
//	ENOMEM    -4   not enough memory
//	EEXIST    -5   VM already created
//	EINVAL    -6   invalid arguments
//
// # Recognized Options
//
// CreateJavaVM inspects two option strings and forwards every option,
// including these, to the guest VM unchanged:
//
//	--polyglot                         load the polyglot runtime image
//	-Dsun.java.launcher=SUN_STANDARD   caller is the standard java launcher
package jni
