// Package handle maps opaque integer cookies to Go values.
//
// Native code cannot hold Go pointers, so the C entry points hand out a
// Handle per JavaVM and resolve it on every call. A Handle carries its
// slot index and a generation; once removed, a handle never resolves
// again even after its slot is reused.
//
// Each entry may also carry one native address, the C object that
// stores the handle.
package handle
