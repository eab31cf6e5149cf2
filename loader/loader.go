package loader

import (
	stderrors "errors"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/mokapot/errors"
	"github.com/wippyai/mokapot/guest"
)

// Opener opens the backing library at path.
type Opener func(path string) (guest.Library, error)

// Loader resolves and caches one backing library per Mode.
// It is safe for concurrent use.
type Loader struct {
	open    Opener
	libs    map[Mode]guest.Library
	homeErr error
	home    string
	goos    string
	mu      sync.Mutex
}

// Option configures a Loader.
type Option func(*Loader)

// WithHome sets the install root directly.
func WithHome(dir string) Option {
	return func(l *Loader) {
		l.home = dir
		l.homeErr = nil
	}
}

// WithShimPath derives the install root from the shim library's path.
func WithShimPath(path string) Option {
	return func(l *Loader) {
		l.home, l.homeErr = ResolveHome(path, l.goos)
	}
}

// WithGOOS overrides the platform used for naming and layout rules.
// It must precede WithShimPath.
func WithGOOS(goos string) Option {
	return func(l *Loader) {
		l.goos = goos
	}
}

// New creates a loader that opens libraries with open.
func New(open Opener, opts ...Option) *Loader {
	l := &Loader{
		open: open,
		libs: make(map[Mode]guest.Library, 2),
		goos: runtime.GOOS,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Home returns the resolved install root.
func (l *Loader) Home() (string, error) {
	if l.homeErr != nil {
		return "", l.homeErr
	}
	if l.home == "" {
		return "", layoutError("", "install root unknown")
	}
	return l.home, nil
}

// Path returns the file the given mode loads.
func (l *Loader) Path(mode Mode) (string, error) {
	home, err := l.Home()
	if err != nil {
		return "", err
	}
	rel := mode.RelPath(l.goos)
	if l.goos != runtime.GOOS {
		// foreign layout: keep the requested platform's separator
		sep := separator(l.goos)
		return strings.TrimSuffix(home, sep) + sep + strings.ReplaceAll(rel, "/", sep), nil
	}
	return filepath.Join(home, filepath.FromSlash(rel)), nil
}

// Load returns the library for mode, opening it on first use.
// Failed loads are not cached, so a later call retries.
func (l *Loader) Load(mode Mode) (guest.Library, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lib, ok := l.libs[mode]; ok {
		return lib, nil
	}

	path, err := l.Path(mode)
	if err != nil {
		Logger().Error("cannot locate backing library",
			zap.Stringer("mode", mode),
			zap.Error(err))
		return nil, err
	}

	lib, err := l.open(path)
	if err != nil {
		var e *errors.Error
		if !stderrors.As(err, &e) {
			err = errors.LibraryMissing(path, err)
		}
		Logger().Error("failed to open backing library",
			zap.String("path", path),
			zap.Stringer("mode", mode),
			zap.Error(err))
		return nil, err
	}

	Logger().Debug("backing library loaded",
		zap.String("path", path),
		zap.Stringer("mode", mode))
	l.libs[mode] = lib
	return lib, nil
}

func layoutError(path, detail string) error {
	return errors.Layout(path, detail)
}
