//go:build cgo && (darwin || freebsd || linux)

package main

/*
#include "mokapot.h"
*/
import "C"

import (
	"unsafe"

	"github.com/wippyai/mokapot/errors"
	"github.com/wippyai/mokapot/internal/bridge"
	"github.com/wippyai/mokapot/internal/handle"
	"github.com/wippyai/mokapot/jni"
)

func status(err error) C.jint {
	return C.jint(errors.Code(err))
}

func handleOf(vm *C.mokapot_vm) uint64 {
	if vm == nil {
		return 0
	}
	return uint64(vm.handle)
}

func newVM(h handle.Handle) unsafe.Pointer {
	return unsafe.Pointer(C.mokapot_new_vm(C.uint64_t(h)))
}

//export JNI_CreateJavaVM
func JNI_CreateJavaVM(pvm **C.mokapot_vm, penv *unsafe.Pointer, args unsafe.Pointer) C.jint {
	s, err := current()
	if err != nil {
		return status(err)
	}
	if pvm == nil || penv == nil {
		return C.jint(jni.EINVAL)
	}

	vm, env, err := s.CreateJavaVM(bridge.InitArgsAt(args), newVM)
	if err != nil {
		return status(err)
	}
	*pvm = (*C.mokapot_vm)(vm)
	bridge.StoreEnv(unsafe.Pointer(penv), env)
	return C.jint(jni.OK)
}

//export JNI_GetCreatedJavaVMs
func JNI_GetCreatedJavaVMs(vmBuf *unsafe.Pointer, bufLen C.jsize, nVMs *C.jsize) C.jint {
	s, err := current()
	if err != nil {
		return status(err)
	}
	return status(s.GetCreatedJavaVMs(vmBuf, int32(bufLen), (*int32)(unsafe.Pointer(nVMs))))
}

// The mokapot_vm of a destroyed VM stays allocated so that a stale
// JavaVM* resolves to nothing instead of freed memory.
//
//export mokapot_DestroyJavaVM
func mokapot_DestroyJavaVM(vm *C.mokapot_vm) C.jint {
	s, err := current()
	if err != nil {
		return status(err)
	}
	return status(s.DestroyJavaVM(handleOf(vm)))
}

//export mokapot_AttachCurrentThread
func mokapot_AttachCurrentThread(vm *C.mokapot_vm, penv *unsafe.Pointer, args unsafe.Pointer) C.jint {
	return attach(vm, penv, args, false)
}

//export mokapot_AttachCurrentThreadAsDaemon
func mokapot_AttachCurrentThreadAsDaemon(vm *C.mokapot_vm, penv *unsafe.Pointer, args unsafe.Pointer) C.jint {
	return attach(vm, penv, args, true)
}

func attach(vm *C.mokapot_vm, penv *unsafe.Pointer, args unsafe.Pointer, daemon bool) C.jint {
	s, err := current()
	if err != nil {
		return status(err)
	}
	if penv == nil {
		return C.jint(jni.EINVAL)
	}

	env, err := s.AttachCurrentThread(handleOf(vm), bridge.AttachArgsAt(args), daemon)
	if err != nil {
		return status(err)
	}
	bridge.StoreEnv(unsafe.Pointer(penv), env)
	return C.jint(jni.OK)
}

//export mokapot_DetachCurrentThread
func mokapot_DetachCurrentThread(vm *C.mokapot_vm) C.jint {
	s, err := current()
	if err != nil {
		return status(err)
	}
	return status(s.DetachCurrentThread(handleOf(vm)))
}

//export mokapot_GetEnv
func mokapot_GetEnv(vm *C.mokapot_vm, penv *unsafe.Pointer, version C.jint) C.jint {
	s, err := current()
	if err != nil {
		return status(err)
	}
	if penv == nil {
		return C.jint(jni.EINVAL)
	}
	env, err := s.GetEnv(handleOf(vm), int32(version))
	if err != nil {
		bridge.StoreEnv(unsafe.Pointer(penv), 0)
		return status(err)
	}
	bridge.StoreEnv(unsafe.Pointer(penv), env)
	return C.jint(jni.OK)
}
