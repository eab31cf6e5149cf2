//go:build !linux

package osthread

import (
	"bytes"
	"runtime"
	"strconv"
)

// Current returns the goroutine id of the caller. Callers lock the OS
// thread, so a goroutine maps to exactly one thread while it matters.
func Current() ID {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	// "goroutine 42 [running]:..."
	field := bytes.Fields(buf[:n])[1]
	id, _ := strconv.ParseInt(string(field), 10, 64)
	return ID(id)
}
