package osthread

import (
	"runtime"
	"testing"
)

func TestCurrent_StableOnLockedThread(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	a := Current()
	runtime.Gosched()
	b := Current()
	if a != b || a == 0 {
		t.Errorf("Current() = %d then %d", a, b)
	}
}

func TestCurrent_DistinctThreads(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	mine := Current()

	other := make(chan ID)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		other <- Current()
	}()

	if theirs := <-other; theirs == mine {
		t.Errorf("two locked threads share id %d", mine)
	}
}
