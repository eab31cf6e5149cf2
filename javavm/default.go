package javavm

import (
	"sync/atomic"

	"github.com/wippyai/mokapot/registry"
)

var defaultRegistry atomic.Pointer[registry.Registry[Wrapper]]

// DefaultRegistry returns the process-wide wrapper registry, creating it
// on first use.
func DefaultRegistry() *registry.Registry[Wrapper] {
	if r := defaultRegistry.Load(); r != nil {
		return r
	}
	r := registry.New[Wrapper]()
	if defaultRegistry.CompareAndSwap(nil, r) {
		return r
	}
	return defaultRegistry.Load()
}

// ConfigureDefaultRegistry installs the process-wide registry built with
// opts. It reports false when the registry already exists.
func ConfigureDefaultRegistry(opts ...registry.Option) bool {
	return defaultRegistry.CompareAndSwap(nil, registry.New[Wrapper](opts...))
}
