//go:build cgo && (darwin || freebsd || linux)

// Command libjvm builds the shim as a drop-in libjvm:
//
//	go build -buildmode=c-shared -o lib/truffle/libjvm.so ./cmd/libjvm
//
// Native launchers load it in place of HotSpot's libjvm and reach the
// guest JVM through the standard JNI Invocation API. The install root is
// derived from the library's own location unless MOKAPOT_HOME is set;
// other settings come from MOKAPOT_* variables (see package config).
package main

/*
#cgo linux LDFLAGS: -ldl
#include "mokapot.h"
*/
import "C"

import (
	"sync"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/mokapot/config"
	"github.com/wippyai/mokapot/errors"
	"github.com/wippyai/mokapot/internal/bridge"
	"github.com/wippyai/mokapot/javavm"
	"github.com/wippyai/mokapot/loader"
)

func main() {}

// shimState is the process-wide shim behind the exported entry points.
type shimState struct {
	*bridge.Bridge
	log *zap.Logger
}

var (
	state     *shimState
	stateErr  error
	stateOnce sync.Once
)

func current() (*shimState, error) {
	stateOnce.Do(func() {
		state, stateErr = boot()
	})
	return state, stateErr
}

func boot() (*shimState, error) {
	cfg, err := config.Load(nil)
	if err != nil {
		if log, lerr := zap.NewProduction(); lerr == nil {
			log.Error("invalid mokapot configuration", zap.Error(err))
		}
		return nil, err
	}

	log, err := cfg.Logger()
	if err != nil {
		return nil, err
	}
	javavm.SetLogger(log)
	loader.SetLogger(log)
	javavm.ConfigureDefaultRegistry(cfg.RegistryOptions()...)

	var opts []loader.Option
	if cfg.Home != "" {
		opts = append(opts, loader.WithHome(cfg.Home))
	} else {
		self, err := selfPath()
		if err != nil {
			log.Error("cannot locate the shim library", zap.Error(err))
			return nil, err
		}
		opts = append(opts, loader.WithShimPath(self))
	}
	l := loader.New(loader.NativeOpener, opts...)
	if home, err := l.Home(); err != nil {
		log.Error("cannot resolve install root", zap.Error(err))
	} else {
		log.Debug("shim initialized", zap.String("home", home))
	}

	shim := javavm.NewShim(l,
		javavm.WithLogger(log),
		javavm.WithIsolateParams(cfg.IsolateParams()))
	return &shimState{
		Bridge: bridge.New(shim, bridge.WithLogger(log)),
		log:    log,
	}, nil
}

func selfPath() (string, error) {
	buf := make([]byte, 4096)
	n := C.mokapot_self_path((*C.char)(unsafe.Pointer(&buf[0])), C.size_t(len(buf)))
	if n < 0 {
		return "", errors.Layout("", "dladdr found no path for the shim library")
	}
	return string(buf[:n]), nil
}
