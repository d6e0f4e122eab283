package overlay

import (
	"io/fs"
	"os"
	"path"
	"strings"
	"time"
)

// Stat is the Stat Resolver's projection: an eleven-field record with
// explicit field names in place of positional tuple access.
type Stat struct {
	Mode  fs.FileMode
	Size  int64
	Uid   uint32
	Gid   uint32
	Nlink uint64
	Ino   uint64
	Dev   uint64
	Atime time.Time
	Mtime time.Time
	Ctime time.Time
	// Overlay is true when this Stat was synthesised from a ShadowEntry
	// rather than read through to the real filesystem.
	Overlay bool
}

func (o *Overlay) realLstat(p string) (Stat, error) {
	if o.parent != nil {
		return o.parent.lstat(p)
	}
	fi, err := os.Lstat(p)
	if err != nil {
		return Stat{}, errNotFound("lstat", p)
	}
	return statFromFileInfo(fi), nil
}

// lstat assumes p's parent has already been dereferenced.
func (o *Overlay) lstat(p string) (Stat, error) {
	if e, ok := o.entries[p]; ok {
		if e.Kind == KindDeleted {
			return Stat{}, errNotFound("lstat", p)
		}
		return e.stat(), nil
	}
	return o.realLstat(p)
}

// stat assumes p's parent has already been dereferenced. If p itself names
// a symlink, it restarts on deref(p).
func (o *Overlay) stat(p string) (Stat, error) {
	st, err := o.lstat(p)
	if err != nil {
		return Stat{}, err
	}
	if st.Mode&fs.ModeSymlink != 0 {
		target, err := o.deref(p, false)
		if err != nil {
			return Stat{}, err
		}
		return o.stat(target)
	}
	return st, nil
}

// anystat is the exported wrapper shared by Lstat/Stat: it absolutises p,
// dereferences everything up to the final segment, verifies that prefix is
// a directory, then applies lstat or stat to the final segment.
func (o *Overlay) anystat(p string, link bool) (Stat, error) {
	p = o.Abs(p)
	head, tail := splitPath(p)
	derefHead, err := o.deref(head, false)
	if err != nil {
		return Stat{}, err
	}
	hst, err := o.stat(derefHead)
	if err != nil {
		return Stat{}, err
	}
	if hst.Mode&fs.ModeDir == 0 {
		return Stat{}, errNotDir("stat", p)
	}
	full := path.Join(derefHead, tail)
	if link {
		return o.lstat(full)
	}
	return o.stat(full)
}

// Lstat overlays os.Lstat: it does not follow a symlink named by the final
// path segment.
func (o *Overlay) Lstat(p string) (Stat, error) {
	return o.anystat(p, true)
}

// Stat overlays os.Stat, following a terminal symlink to its target.
func (o *Overlay) Stat(p string) (Stat, error) {
	return o.anystat(p, false)
}

// Exists reports whether p (fully dereferenced) resolves to anything.
func (o *Overlay) Exists(p string) bool {
	derefed, err := o.deref(p, false)
	if err != nil {
		return false
	}
	_, err = o.stat(derefed)
	return err == nil
}

// Lexists reports whether p (with only its parent dereferenced) resolves to
// anything, without following a terminal symlink.
func (o *Overlay) Lexists(p string) bool {
	derefed, err := o.deref(p, true)
	if err != nil {
		return false
	}
	_, err = o.lstat(derefed)
	return err == nil
}

// Access mode bits, matching os package semantics.
const (
	AccessExist = 0
	AccessRead  = 1 << 2
	AccessWrite = 1 << 1
	AccessExec  = 1 << 0
)

// Access overlays os.Access: it computes Stat(p) and reports false if any
// requested R/W/X bit is absent from the stat's permission bits.
func (o *Overlay) Access(p string, mode int) bool {
	st, err := o.Stat(p)
	if err != nil {
		return false
	}
	perm := st.Mode.Perm()
	if mode&AccessExec != 0 && perm&0o111 == 0 {
		return false
	}
	if mode&AccessWrite != 0 && perm&0o222 == 0 {
		return false
	}
	if mode&AccessRead != 0 && perm&0o444 == 0 {
		return false
	}
	return true
}

// splitPath is path.Split with the trailing slash on head trimmed and the
// root case normalised, matching os.path.split's behavior closely enough
// for the canonicaliser's purposes.
func splitPath(p string) (head, tail string) {
	head, tail = path.Split(p)
	head = strings.TrimSuffix(head, "/")
	if head == "" {
		head = "/"
	}
	return head, tail
}
