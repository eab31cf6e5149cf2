package loader

import (
	"github.com/wippyai/mokapot/errors"
	"github.com/wippyai/mokapot/guest"
	"github.com/wippyai/mokapot/jni"
)

// phases maps each backing library entry point to the invocation phase
// that calls it.
var phases = map[string]errors.Phase{
	guest.SymCreateIsolate:        errors.PhaseCreate,
	guest.SymAttachThread:         errors.PhaseAttach,
	guest.SymDetachThread:         errors.PhaseDetach,
	guest.SymGetCurrentThread:     errors.PhaseEnv,
	guest.SymTearDownIsolate:      errors.PhaseDestroy,
	guest.SymDetachAllAndTearDown: errors.PhaseDestroy,
	guest.SymCreateJavaVM:         errors.PhaseCreate,
	guest.SymEnterContext:         errors.PhaseAttach,
	guest.SymLeaveContext:         errors.PhaseDetach,
	guest.SymReleaseContext:       errors.PhaseDestroy,
	guest.SymCloseContext:         errors.PhaseDestroy,
	guest.SymExit:                 errors.PhaseDestroy,
	"DestroyJavaVM":               errors.PhaseDestroy,
	"AttachCurrentThread":         errors.PhaseAttach,
	"AttachCurrentThreadAsDaemon": errors.PhaseAttach,
	"DetachCurrentThread":         errors.PhaseDetach,
	"GetEnv":                      errors.PhaseEnv,
}

func phaseOf(op string) errors.Phase {
	return phases[op]
}

// isolateStatus converts the status of a graal_* entry point. Any
// non-zero status is ERR.
func isolateStatus(op string, status int32) error {
	if status == 0 {
		return nil
	}
	return errors.Isolate(phaseOf(op), op, int(status))
}

func guestStatus(op string, status int32) error {
	return errors.FromCode(phaseOf(op), errors.KindGuest, op, jni.Code(status))
}
