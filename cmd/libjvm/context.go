//go:build cgo && (darwin || freebsd || linux)

package main

/*
#include <stdlib.h>
#include "mokapot.h"
*/
import "C"

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/mokapot/errors"
	"github.com/wippyai/mokapot/internal/bridge"
	"github.com/wippyai/mokapot/jni"
)

// initializeMokapotContext is called by a guest that booted itself and
// loaded the shim natively. fetch resolves the guest's invocation
// functions by name. The returned pointer is passed back to
// disposeMokapotContext.
//
//export initializeMokapotContext
func initializeMokapotContext(env unsafe.Pointer, fetch C.mokapot_fetch_fn) unsafe.Pointer {
	s, err := current()
	if err != nil {
		return nil
	}
	cctx := C.mokapot_new_context(fetch)
	if cctx == nil {
		s.log.Error("cannot allocate embedded context")
		return nil
	}

	h, err := s.OpenContext(unsafe.Pointer(&cctx.vm), enumerator(cctx))
	if err != nil {
		C.mokapot_free_context(cctx, nil)
		return nil
	}
	cctx.vm.handle = C.uint64_t(h)

	s.log.Debug("embedded context initialized", zap.Uintptr("env", uintptr(env)))
	return unsafe.Pointer(cctx)
}

//export disposeMokapotContext
func disposeMokapotContext(p unsafe.Pointer, release C.mokapot_release_fn) {
	if p == nil {
		return
	}
	cctx := (*C.mokapot_context)(p)
	if s, err := current(); err == nil {
		s.CloseContext(uint64(cctx.vm.handle))
	}
	C.mokapot_free_context(cctx, release)
}

// enumerator calls the guest's JNI_GetCreatedJavaVMs into a C buffer.
func enumerator(cctx *C.mokapot_context) bridge.Enumerator {
	return func(n int, classify func(raw []unsafe.Pointer)) (int, error) {
		var raw *unsafe.Pointer
		if n > 0 {
			raw = (*unsafe.Pointer)(C.calloc(C.size_t(n), C.size_t(unsafe.Sizeof(unsafe.Pointer(nil)))))
			if raw == nil {
				return 0, errors.OutOfMemory(errors.PhaseDiscover, "JavaVM buffer")
			}
			defer C.free(unsafe.Pointer(raw))
		}

		var got C.jsize
		code := jni.Code(C.mokapot_call_created(cctx.created, raw, C.jsize(n), &got))
		if code != jni.OK {
			return 0, errors.FromCode(errors.PhaseDiscover, errors.KindGuest, "JNI_GetCreatedJavaVMs", code)
		}
		if raw != nil && got > 0 {
			classify(unsafe.Slice(raw, min(int(got), n)))
		}
		return int(got), nil
	}
}
