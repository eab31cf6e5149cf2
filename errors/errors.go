package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/wippyai/mokapot/jni"
)

// Phase indicates which invocation-API step produced the error
type Phase string

const (
	PhaseLoad     Phase = "load"     // backing library resolution
	PhaseCreate   Phase = "create"   // JNI_CreateJavaVM
	PhaseAttach   Phase = "attach"   // AttachCurrentThread[AsDaemon]
	PhaseDetach   Phase = "detach"   // DetachCurrentThread
	PhaseDestroy  Phase = "destroy"  // DestroyJavaVM
	PhaseEnv      Phase = "env"      // GetEnv
	PhaseDiscover Phase = "discover" // JNI_GetCreatedJavaVMs
	PhaseRegistry Phase = "registry" // VM registry bookkeeping
	PhaseConfig   Phase = "config"   // configuration parsing
)

// Kind categorizes the error
type Kind string

const (
	KindLibraryMissing Kind = "library_missing"
	KindSymbolMissing  Kind = "symbol_missing"
	KindLayout         Kind = "install_layout"
	KindIsolate        Kind = "isolate"
	KindGuest          Kind = "guest"
	KindAllocation     Kind = "allocation"
	KindWrongKind      Kind = "wrong_kind"
	KindNotAttached    Kind = "not_attached"
	KindNotFound       Kind = "not_found"
	KindBufferTooSmall Kind = "buffer_too_small"
	KindInvalidInput   Kind = "invalid_input"
	KindUnsupported    Kind = "unsupported"
)

// Sentinels for errors.Is checks that only care about the kind.
var (
	ErrWrongKind   = &Error{Kind: KindWrongKind}
	ErrNotAttached = &Error{Kind: KindNotAttached}
	ErrNotFound    = &Error{Kind: KindNotFound}
)

// Error is the structured error type used throughout the shim
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Op     string // failing entry point, e.g. "graal_attach_thread"
	Path   string // library path when relevant
	Detail string
	Code   jni.Code
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
	}

	if e.Path != "" {
		b.WriteString(" (")
		b.WriteString(e.Path)
		b.WriteByte(')')
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Code != jni.OK {
		b.WriteString(" [")
		b.WriteString(e.Code.String())
		b.WriteByte(']')
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target without a phase matches on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase == "" {
		return e.Kind == t.Kind
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Op sets the failing entry point
func (b *Builder) Op(op string) *Builder {
	b.err.Op = op
	return b
}

// Path sets the library path
func (b *Builder) Path(path string) *Builder {
	b.err.Path = path
	return b
}

// Code sets the JNI return code
func (b *Builder) Code(code jni.Code) *Builder {
	b.err.Code = code
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Code maps err to the JNI return code a native caller sees.
// nil is OK; for accumulated errors the first one decides; errors that
// carry no code map to ERR.
func Code(err error) jni.Code {
	if err == nil {
		return jni.OK
	}
	if errs := multierr.Errors(err); len(errs) > 1 {
		err = errs[0]
	}
	var e *Error
	if stderrors.As(err, &e) && e.Code != jni.OK {
		return e.Code
	}
	return jni.ERR
}

// Append records next after err. Both may be nil. The order is kept so that
// Code and First report the earliest failure.
func Append(err, next error) error {
	return multierr.Append(err, next)
}

// First returns the earliest error recorded by Append, or nil.
func First(err error) error {
	errs := multierr.Errors(err)
	if len(errs) == 0 {
		return nil
	}
	return errs[0]
}

// FromCode converts a non-OK return code from a guest or isolate entry
// point into an error. OK yields nil.
func FromCode(phase Phase, kind Kind, op string, code jni.Code) error {
	if code == jni.OK {
		return nil
	}
	return &Error{
		Phase: phase,
		Kind:  kind,
		Op:    op,
		Code:  code,
	}
}

// Convenience constructors for common error patterns

// LibraryMissing creates an error for a backing library that cannot be opened
func LibraryMissing(path string, cause error) *Error {
	return &Error{
		Phase: PhaseLoad,
		Kind:  KindLibraryMissing,
		Path:  path,
		Code:  jni.ERR,
		Cause: cause,
	}
}

// SymbolMissing creates an error for a required export absent from the library
func SymbolMissing(path, symbol string) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindSymbolMissing,
		Path:   path,
		Op:     symbol,
		Code:   jni.ERR,
		Detail: fmt.Sprintf("library does not contain the expected interface: missing %s", symbol),
	}
}

// Layout creates an error for a shim installed outside the expected directory layout
func Layout(path, detail string) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindLayout,
		Path:   path,
		Code:   jni.ERR,
		Detail: detail,
	}
}

// Isolate creates an isolate lifecycle error. Isolate entry points report
// plain non-zero status, which always surfaces as ERR.
func Isolate(phase Phase, op string, status int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindIsolate,
		Op:     op,
		Code:   jni.ERR,
		Detail: fmt.Sprintf("status %d", status),
	}
}

// OutOfMemory creates an allocation failure error
func OutOfMemory(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Code:   jni.ENOMEM,
		Detail: fmt.Sprintf("cannot allocate %s", what),
	}
}

// WrongKind creates a protocol misuse error for a handle that is not a wrapper VM
func WrongKind(phase Phase, got string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindWrongKind,
		Code:   jni.ERR,
		Detail: fmt.Sprintf("not a wrapper JavaVM (got %s)", got),
	}
}

// NotAttached creates an error for a thread that is not attached to the isolate
func NotAttached(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotAttached,
		Code:   jni.EDETACHED,
		Detail: "current thread is not attached",
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Code:   jni.ERR,
		Detail: fmt.Sprintf("%s not found", what),
	}
}

// BufferTooSmall creates an error for a discovery buffer that cannot hold every VM
func BufferTooSmall(phase Phase, have, need int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindBufferTooSmall,
		Code:   jni.ERR,
		Detail: fmt.Sprintf("buffer holds %d, need %d", have, need),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Code:   jni.EINVAL,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Code:   jni.ERR,
		Detail: what,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
