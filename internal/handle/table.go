package handle

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"
)

var (
	ErrClosed    = errors.New("handle table closed")
	ErrDuplicate = errors.New("value already has a handle")
)

// Handle is a non-zero cookie for a table entry. The low 32 bits are
// the slot index plus one, the high 32 bits the slot generation.
type Handle uint64

func makeHandle(slot int, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(uint32(slot+1)))
}

func (h Handle) slot() int { return int(uint32(h)) - 1 }

func (h Handle) gen() uint32 { return uint32(h >> 32) }

func (h Handle) String() string {
	return fmt.Sprintf("%d#%d", h.slot(), h.gen())
}

// Table is a concurrent handle table for comparable values.
type Table[T comparable] struct {
	entries  []entry[T]
	freeList []int
	index    map[T]Handle
	mu       sync.RWMutex
	closed   bool
}

type entry[T comparable] struct {
	value  T
	native unsafe.Pointer
	gen    uint32
	valid  bool
}

// New creates an empty table.
func New[T comparable]() *Table[T] {
	return &Table[T]{
		entries:  make([]entry[T], 0, 8),
		freeList: make([]int, 0, 8),
		index:    make(map[T]Handle),
	}
}

// Insert stores v and returns its handle.
func (t *Table[T]) Insert(v T) (Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, ErrClosed
	}
	if _, ok := t.index[v]; ok {
		return 0, ErrDuplicate
	}

	var slot int
	if n := len(t.freeList); n > 0 {
		slot = t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
	} else {
		t.entries = append(t.entries, entry[T]{})
		slot = len(t.entries) - 1
	}

	e := &t.entries[slot]
	e.gen++
	e.value = v
	e.native = nil
	e.valid = true

	h := makeHandle(slot, e.gen)
	t.index[v] = h
	return h, nil
}

// lookup returns the live entry for h. Callers hold t.mu.
func (t *Table[T]) lookup(h Handle) *entry[T] {
	if h == 0 {
		return nil
	}
	slot := h.slot()
	if slot < 0 || slot >= len(t.entries) {
		return nil
	}
	e := &t.entries[slot]
	if !e.valid || e.gen != h.gen() {
		return nil
	}
	return e
}

// Get returns the value for h.
func (t *Table[T]) Get(h Handle) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if e := t.lookup(h); e != nil {
		return e.value, true
	}
	var zero T
	return zero, false
}

// Lookup returns the handle of v.
func (t *Table[T]) Lookup(v T) (Handle, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	h, ok := t.index[v]
	return h, ok
}

// Bind records the native address of h's entry.
func (t *Table[T]) Bind(h Handle, native unsafe.Pointer) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.lookup(h)
	if e == nil {
		return false
	}
	e.native = native
	return true
}

// Native returns the native address bound to h.
func (t *Table[T]) Native(h Handle) (unsafe.Pointer, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if e := t.lookup(h); e != nil {
		return e.native, true
	}
	return nil, false
}

// Remove drops h and returns its value and native address.
func (t *Table[T]) Remove(h Handle) (T, unsafe.Pointer, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T
	e := t.lookup(h)
	if e == nil {
		return zero, nil, false
	}

	v, native := e.value, e.native
	delete(t.index, v)
	e.value = zero
	e.native = nil
	e.valid = false
	t.freeList = append(t.freeList, h.slot())
	return v, native, true
}

// Len returns the number of live entries.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.index)
}

// Each calls fn for every live entry until fn returns false.
// fn must not modify the table.
func (t *Table[T]) Each(fn func(Handle, T, unsafe.Pointer) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i := range t.entries {
		e := &t.entries[i]
		if e.valid {
			if !fn(makeHandle(i, e.gen), e.value, e.native) {
				break
			}
		}
	}
}

// Close drops every entry, passing each to release when non-nil, and
// rejects later inserts. release must not use the table.
func (t *Table[T]) Close(release func(Handle, T, unsafe.Pointer)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	t.closed = true

	for i := range t.entries {
		e := &t.entries[i]
		if e.valid && release != nil {
			release(makeHandle(i, e.gen), e.value, e.native)
		}
	}
	t.entries = nil
	t.freeList = nil
	t.index = make(map[T]Handle)
}
