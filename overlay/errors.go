package overlay

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"

	"github.com/containerd/errdefs"
)

// UnknownMode is returned by Open when mode contains none of r/w/a, or any
// combination Open does not support (read mixed with write/append, "+").
// It is the only non-POSIX failure in the taxonomy: a programmer error, not
// a filesystem condition.
var UnknownMode = errors.New("overlay: unknown or unsupported open mode")

// ErrStateCollision is returned by overlaystack.Stack.Push when asked to
// push an overlay that is already installed but is not the top of that
// stack. Install itself returns no error.
var ErrStateCollision = errors.New("overlay: install state collision")

// ErrOrderViolation names an uninstall-ordering failure. No function in
// this module returns it: Uninstall and overlaystack.Stack.Pop perform no
// ordering check.
var ErrOrderViolation = errors.New("overlay: uninstall order violation")

func pathErr(op, path string, errno syscall.Errno) error {
	return &fs.PathError{Op: op, Path: path, Err: errno}
}

// classify wraps a *fs.PathError with the containerd/errdefs classification
// matching its errno, so callers already written against errdefs-style
// classification (errdefs.IsNotFound, etc.) compose with the overlay
// without change, alongside the plain errors.Is(err, fs.ErrNotExist) form.
func classify(pe *fs.PathError) error {
	var class error
	switch pe.Err {
	case syscall.ENOENT:
		class = errdefs.ErrNotFound
	case syscall.EEXIST:
		class = errdefs.ErrAlreadyExists
	case syscall.ENOTDIR, syscall.EISDIR, syscall.ENOTEMPTY:
		class = errdefs.ErrFailedPrecondition
	case syscall.EINVAL:
		class = errdefs.ErrInvalidArgument
	default:
		return pe
	}
	return fmt.Errorf("%w: %w", pe, class)
}

func errNotFound(op, path string) error {
	return classify(pathErr(op, path, syscall.ENOENT).(*fs.PathError))
}

func errExists(op, path string) error {
	return classify(pathErr(op, path, syscall.EEXIST).(*fs.PathError))
}

func errNotDir(op, path string) error {
	return classify(pathErr(op, path, syscall.ENOTDIR).(*fs.PathError))
}

func errIsDir(op, path string) error {
	return classify(pathErr(op, path, syscall.EISDIR).(*fs.PathError))
}

func errNotEmpty(op, path string) error {
	return classify(pathErr(op, path, syscall.ENOTEMPTY).(*fs.PathError))
}

func errInvalid(op, path string) error {
	return classify(pathErr(op, path, syscall.EINVAL).(*fs.PathError))
}

func errLoop(op, path string) error {
	return pathErr(op, path, syscall.ELOOP)
}
