package overlay

import (
	"bytes"
	"errors"
	"os"
)

// OverlayFile is the handle Open returns. It is a tagged variant: exactly
// one of its three backing stores is active for the life of the handle (a
// read-only buffer over a shadowed file's content, a write/append buffer
// that commits a new ShadowEntry on Close, or a delegated *os.File for
// passthrough and read-fallthrough opens), but all three present the same
// io.ReadCloser/io.Writer/io.Seeker surface so callers never need to know
// which one they hold.
//
// OverlayStream is an alias for the same type, naming the write/append
// case explicitly.
type OverlayFile struct {
	o    *Overlay
	path string

	readBuf  *bytes.Reader
	writeBuf *bytes.Buffer
	delegate *os.File

	closed bool
}

// OverlayStream is the write/append-mode identity of OverlayFile.
type OverlayStream = OverlayFile

var (
	errNotOpenForReading = errors.New("overlay: file not open for reading")
	errNotOpenForWriting = errors.New("overlay: file not open for writing")
	errNotSeekable       = errors.New("overlay: write stream does not support seek")
)

func (f *OverlayFile) Read(p []byte) (int, error) {
	switch {
	case f.delegate != nil:
		return f.delegate.Read(p)
	case f.readBuf != nil:
		return f.readBuf.Read(p)
	default:
		return 0, errNotOpenForReading
	}
}

func (f *OverlayFile) Write(p []byte) (int, error) {
	switch {
	case f.delegate != nil:
		return f.delegate.Write(p)
	case f.writeBuf != nil:
		return f.writeBuf.Write(p)
	default:
		return 0, errNotOpenForWriting
	}
}

func (f *OverlayFile) Seek(offset int64, whence int) (int64, error) {
	switch {
	case f.delegate != nil:
		return f.delegate.Seek(offset, whence)
	case f.readBuf != nil:
		return f.readBuf.Seek(offset, whence)
	default:
		return 0, errNotSeekable
	}
}

// Close commits a buffered write/append stream as a REGULAR ShadowEntry
// before releasing it. Closing an already-closed handle is a no-op,
// matching the scoped-release guarantee (close on every exit path).
func (f *OverlayFile) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	if f.delegate != nil {
		return f.delegate.Close()
	}
	if f.writeBuf != nil {
		f.o.addEntry(&ShadowEntry{
			Path:    f.path,
			Kind:    KindRegular,
			Content: append([]byte(nil), f.writeBuf.Bytes()...),
		})
	}
	return nil
}
