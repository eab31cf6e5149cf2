// Package bridge is the Go side of the shim's C entry points.
//
// Native callers know a wrapper VM by the JavaVM* the entry points hand
// out, a small C object that stores a handle.Handle. The bridge resolves
// those handles, binds each wrapper to its C object, and maps the JavaVM*
// values a guest runtime reports back to shim VMs. Every native address
// crosses this package as an unsafe.Pointer; the cgo layer only allocates
// C memory and converts C structs.
package bridge
