// Package osthread identifies the calling OS thread.
//
// JNI attachment is per OS thread. Go callers must hold
// runtime.LockOSThread for the identity to stay stable across calls.
package osthread

// ID identifies an OS thread within the process.
type ID int64
