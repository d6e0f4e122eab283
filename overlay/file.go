package overlay

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"
)

// parseMode normalises and validates a textual open mode: no mode, "U",
// or "rU" means read; any combination of read with write/append, or any
// "+", is rejected; a mode containing none of r/w/a is rejected. Both
// rejections surface as UnknownMode, a programmer error rather than a
// filesystem condition.
func parseMode(mode string) (read, write, appendMode bool, err error) {
	if mode == "" || mode == "U" || mode == "rU" {
		return true, false, false, nil
	}
	hasR := strings.ContainsRune(mode, 'r')
	hasW := strings.ContainsRune(mode, 'w')
	hasA := strings.ContainsRune(mode, 'a')
	hasPlus := strings.ContainsRune(mode, '+')
	if (hasR && (hasW || hasA)) || hasPlus {
		return false, false, false, UnknownMode
	}
	if !hasR && !hasW && !hasA {
		return false, false, false, UnknownMode
	}
	return hasR, hasW, hasA, nil
}

func osOpenFlags(write, appendMode bool) int {
	switch {
	case write:
		return os.O_RDWR | os.O_CREATE | os.O_TRUNC
	case appendMode:
		return os.O_RDWR | os.O_CREATE | os.O_APPEND
	default:
		return os.O_RDONLY
	}
}

// Open is the central file-operations state machine: it normalises mode,
// dereferences the parent directory, honors passthrough, and otherwise
// branches into the read path (a scoped read-only stream over shadowed
// content, or a delegated real open) or the write/append path (a fresh or
// preloaded OverlayStream, committed on Close).
func (o *Overlay) Open(p string, mode string) (*OverlayFile, error) {
	read, write, appendMode, err := parseMode(mode)
	if err != nil {
		return nil, err
	}

	abs := o.Abs(p)
	head, tail := splitPath(abs)
	derefHead, err := o.deref(head, false)
	if err != nil {
		return nil, errNotFound("open", p)
	}
	composed := path.Join(derefHead, tail)

	if o.matchesPassthrough(composed) {
		delegate, ferr := os.OpenFile(composed, osOpenFlags(write, appendMode), 0o666)
		if ferr != nil {
			return nil, ferr
		}
		o.log.WithField("path", composed).Debug("overlay: passthrough open")
		return &OverlayFile{o: o, path: composed, delegate: delegate}, nil
	}

	hst, err := o.stat(derefHead)
	if err != nil || hst.Mode&fs.ModeDir == 0 {
		return nil, errNotFound("open", p)
	}

	if read {
		return o.openRead(composed, p)
	}
	return o.openWrite(composed, p, write, appendMode)
}

func (o *Overlay) openRead(composed, original string) (*OverlayFile, error) {
	derefed, err := o.deref(composed, false)
	if err != nil {
		return nil, errNotFound("open", original)
	}
	st, err := o.stat(derefed)
	if err != nil {
		return nil, errNotFound("open", original)
	}
	if st.Mode&fs.ModeDir != 0 {
		return nil, errIsDir("open", derefed)
	}
	if e, ok := o.entries[derefed]; ok {
		return &OverlayFile{o: o, path: derefed, readBuf: bytes.NewReader(e.Content)}, nil
	}
	if o.parent != nil {
		pf, perr := o.parent.Open(derefed, "r")
		if perr != nil {
			return nil, errNotFound("open", derefed)
		}
		data, rerr := io.ReadAll(pf)
		pf.Close()
		if rerr != nil {
			return nil, rerr
		}
		return &OverlayFile{o: o, path: derefed, readBuf: bytes.NewReader(data)}, nil
	}
	delegate, ferr := os.Open(derefed)
	if ferr != nil {
		return nil, errNotFound("open", derefed)
	}
	return &OverlayFile{o: o, path: derefed, delegate: delegate}, nil
}

func (o *Overlay) openWrite(composed, original string, write, appendMode bool) (*OverlayFile, error) {
	cur := composed
	for {
		head, tail := splitPath(cur)
		derefHead, err := o.deref(head, false)
		if err != nil {
			return nil, errNotFound("open", original)
		}
		cur = path.Join(derefHead, tail)
		st, err := o.lstat(cur)
		if err != nil {
			// Nothing there yet: force a plain write regardless of append.
			write, appendMode = true, false
			break
		}
		if st.Mode&fs.ModeSymlink != 0 {
			target, lerr := o.readLinkContent(cur, st)
			if lerr != nil {
				return nil, lerr
			}
			if path.IsAbs(target) {
				cur = path.Clean(target)
			} else {
				cur = path.Join(derefHead, target)
			}
			continue
		}
		if st.Mode&fs.ModeDir != 0 {
			return nil, errIsDir("open", cur)
		}
		break
	}

	if write {
		return &OverlayFile{o: o, path: cur, writeBuf: &bytes.Buffer{}}, nil
	}

	// append
	if e, ok := o.entries[cur]; ok && e.Kind != KindDeleted {
		return &OverlayFile{o: o, path: cur, writeBuf: bytes.NewBuffer(append([]byte(nil), e.Content...))}, nil
	}
	if o.parent != nil {
		if pf, perr := o.parent.Open(cur, "r"); perr == nil {
			data, _ := io.ReadAll(pf)
			pf.Close()
			return &OverlayFile{o: o, path: cur, writeBuf: bytes.NewBuffer(data)}, nil
		}
		return &OverlayFile{o: o, path: cur, writeBuf: &bytes.Buffer{}}, nil
	}
	data, rerr := os.ReadFile(cur)
	if rerr != nil {
		return &OverlayFile{o: o, path: cur, writeBuf: &bytes.Buffer{}}, nil
	}
	return &OverlayFile{o: o, path: cur, writeBuf: bytes.NewBuffer(data)}, nil
}

// Unlink overlays os.Unlink: p's parent is dereferenced, p itself must
// already resolve to something (lexists), and a DELETED entry is recorded.
func (o *Overlay) Unlink(p string) error {
	derefed, err := o.deref(p, true)
	if err != nil {
		return err
	}
	if _, err := o.lstat(derefed); err != nil {
		return errNotFound("unlink", derefed)
	}
	o.addEntry(&ShadowEntry{Path: derefed, Kind: KindDeleted})
	return nil
}

// Remove is an alias for Unlink, matching os.Remove/os.Unlink's historical
// duality.
func (o *Overlay) Remove(p string) error {
	return o.Unlink(p)
}
