// Package registry implements the process-wide list of live JavaVM handles.
//
// The registry is an append-only chain of fixed-capacity segments. Each
// segment holds a slice of atomic slots and an atomic link to the next,
// larger segment:
//
//	head -> [8 slots] -> [16 slots] -> [32 slots] -> nil
//
// Writers claim a slot by CAS from nil, readers walk the chain with acquire
// loads. Nothing is ever unlinked or resized, so walking needs no locks and
// Add, Remove and Gather can run concurrently from any number of threads.
//
// Removal nulls the slot that holds the value. Freed slots are reused by
// later Add calls. Gather produces a best-effort snapshot: entries added or
// removed while it runs may or may not appear.
package registry
