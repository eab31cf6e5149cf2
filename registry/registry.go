package registry

import (
	"sync/atomic"

	"github.com/wippyai/mokapot/errors"
)

// DefaultCapacity is the slot count of the first segment.
const DefaultCapacity = 8

type segment[T any] struct {
	next  atomic.Pointer[segment[T]]
	slots []atomic.Pointer[T]
}

func newSegment[T any](capacity int, first *T) *segment[T] {
	s := &segment[T]{slots: make([]atomic.Pointer[T], capacity)}
	s.slots[0].Store(first)
	return s
}

// Registry is a lock-free set of *T compared by pointer identity.
// The zero value is ready to use with DefaultCapacity.
type Registry[T any] struct {
	head     atomic.Pointer[segment[T]]
	capacity int
}

// Option configures a Registry.
type Option func(*config)

type config struct {
	capacity int
}

// WithInitialCapacity sets the slot count of the first segment.
// Values below 1 are ignored.
func WithInitialCapacity(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// New creates an empty registry.
func New[T any](opts ...Option) *Registry[T] {
	c := config{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(&c)
	}
	return &Registry[T]{capacity: c.capacity}
}

func (r *Registry[T]) initialCapacity() int {
	if r.capacity > 0 {
		return r.capacity
	}
	return DefaultCapacity
}

// Add inserts v into the first free slot, growing the chain when every
// segment is full. v must not be nil.
func (r *Registry[T]) Add(v *T) {
	if v == nil {
		return
	}
	link := &r.head
	capacity := 0
	for {
		cur := link.Load()
		if cur == nil {
			newCap := r.initialCapacity()
			if capacity > 0 {
				newCap = capacity * 2
			}
			if link.CompareAndSwap(nil, newSegment(newCap, v)) {
				return
			}
			// Lost the race; the winner's segment is re-read above.
			continue
		}
		for i := range cur.slots {
			if cur.slots[i].CompareAndSwap(nil, v) {
				return
			}
		}
		capacity = len(cur.slots)
		link = &cur.next
	}
}

// Remove clears the slot holding v. It returns a not-found error when v is
// not registered.
func (r *Registry[T]) Remove(v *T) error {
	if v != nil {
		for cur := r.head.Load(); cur != nil; cur = cur.next.Load() {
			for i := range cur.slots {
				if cur.slots[i].CompareAndSwap(v, nil) {
					return nil
				}
			}
		}
	}
	return errors.NotFound(errors.PhaseRegistry, "JavaVM")
}

// Contains reports whether v is currently registered.
func (r *Registry[T]) Contains(v *T) bool {
	found := false
	r.Each(func(p *T) bool {
		found = p == v
		return !found
	})
	return found
}

// Gather copies registered values into buf in chain order and returns how
// many were written. It never writes more than len(buf).
func (r *Registry[T]) Gather(buf []*T) int {
	n := 0
	for cur := r.head.Load(); cur != nil; cur = cur.next.Load() {
		for i := range cur.slots {
			if n >= len(buf) {
				return n
			}
			if v := cur.slots[i].Load(); v != nil {
				buf[n] = v
				n++
			}
		}
	}
	return n
}

// Each calls fn for every registered value until fn returns false.
func (r *Registry[T]) Each(fn func(*T) bool) {
	for cur := r.head.Load(); cur != nil; cur = cur.next.Load() {
		for i := range cur.slots {
			if v := cur.slots[i].Load(); v != nil {
				if !fn(v) {
					return
				}
			}
		}
	}
}

// Len returns the number of registered values at the time of the walk.
func (r *Registry[T]) Len() int {
	n := 0
	r.Each(func(*T) bool {
		n++
		return true
	})
	return n
}

// Capacity returns the total slot count over all linked segments.
func (r *Registry[T]) Capacity() int {
	n := 0
	for cur := r.head.Load(); cur != nil; cur = cur.next.Load() {
		n += len(cur.slots)
	}
	return n
}

// Segments returns the number of linked segments.
func (r *Registry[T]) Segments() int {
	n := 0
	for cur := r.head.Load(); cur != nil; cur = cur.next.Load() {
		n++
	}
	return n
}
