package overlay

import (
	"io"
	"os"
	"sync/atomic"
	"syscall"
)

// translateFlags maps os.O_* open flags to the textual mode Open expects:
// RDONLY (the default zero value) becomes "r", WRONLY/RDWR become "w",
// and the append bit adds a "b" suffix rather than switching to append
// mode (so O_APPEND|O_RDONLY becomes "rb" and is still opened read-only).
func translateFlags(flags int) string {
	mode := "r"
	if flags&os.O_WRONLY != 0 || flags&os.O_RDWR != 0 {
		mode = "w"
	}
	if flags&os.O_APPEND != 0 {
		mode += "b"
	}
	return mode
}

// OsOpen overlays os.Open at the descriptor level: it translates flags to
// a textual mode, opens through Open, and allocates a synthetic
// descriptor. Descriptor identity is a monotonically increasing counter,
// since Go pointers are not stable, printable integers.
func (o *Overlay) OsOpen(p string, flags int, perm os.FileMode) (int64, error) {
	mode := translateFlags(flags)
	f, err := o.Open(p, mode)
	if err != nil {
		return 0, err
	}
	fd := atomic.AddInt64(&o.nextFd, 1)
	o.mu.Lock()
	o.descriptors[fd] = f
	o.mu.Unlock()
	return fd, nil
}

// OsFdopen overlays os.fdopen: a descriptor known to the overlay returns
// its existing stream; otherwise the call is delegated to a bare wrapper
// over the real file descriptor.
func (o *Overlay) OsFdopen(fd int64, mode string) (*OverlayFile, error) {
	o.mu.Lock()
	f, ok := o.descriptors[fd]
	o.mu.Unlock()
	if ok {
		return f, nil
	}
	real := os.NewFile(uintptr(fd), "")
	if real == nil {
		return nil, errInvalid("os_fdopen", "")
	}
	return &OverlayFile{o: o, delegate: real}, nil
}

// OsRead overlays os.read: a descriptor known to the overlay reads from
// its stream; otherwise the call is delegated to the real file descriptor.
func (o *Overlay) OsRead(fd int64, n int) ([]byte, error) {
	o.mu.Lock()
	f, ok := o.descriptors[fd]
	o.mu.Unlock()
	buf := make([]byte, n)
	if !ok {
		nr, err := syscall.Read(int(fd), buf)
		if err != nil {
			return nil, err
		}
		return buf[:nr], nil
	}
	nr, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return buf[:nr], nil
}

// OsWrite overlays os.write: a descriptor known to the overlay writes to
// its stream; otherwise the call is delegated to the real file descriptor.
func (o *Overlay) OsWrite(fd int64, p []byte) (int, error) {
	o.mu.Lock()
	f, ok := o.descriptors[fd]
	o.mu.Unlock()
	if !ok {
		return syscall.Write(int(fd), p)
	}
	return f.Write(p)
}

// OsClose overlays os.close: a descriptor known to the overlay is retired
// from the descriptor table and its stream closed (committing a pending
// write/append); otherwise the call is delegated to the real descriptor.
// A descriptor never explicitly closed leaks its stream until Uninstall.
func (o *Overlay) OsClose(fd int64) error {
	o.mu.Lock()
	f, ok := o.descriptors[fd]
	if ok {
		delete(o.descriptors, fd)
	}
	o.mu.Unlock()
	if !ok {
		return syscall.Close(int(fd))
	}
	return f.Close()
}
