package overlay

import (
	"io/fs"
	"os"
	"strings"
)

// Kind identifies the type a ShadowEntry represents.
type Kind int

const (
	// KindRegular is an ordinary file; Content holds its body.
	KindRegular Kind = iota
	// KindDirectory is a directory; Content is always empty.
	KindDirectory
	// KindSymlink is a symbolic link; Content holds its uninterpreted target.
	KindSymlink
	// KindDeleted is a tombstone recording that a previously visible path
	// has been removed.
	KindDeleted
)

func (k Kind) String() string {
	switch k {
	case KindRegular:
		return "regular"
	case KindDirectory:
		return "directory"
	case KindSymlink:
		return "symlink"
	case KindDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// ShadowEntry is the atomic unit of the overlay: a single path's recorded
// addition, modification, deletion, or symlink.
type ShadowEntry struct {
	Path string
	Kind Kind
	// Content is the file body for KindRegular, the link target for
	// KindSymlink, and unused otherwise.
	Content []byte
	// OriginalKind is the kind observed on the real filesystem when this
	// entry was first created, or nil if there was nothing there. It drives
	// change classification and is never touched again once set.
	OriginalKind *Kind
}

// change renders the entry as a 4-char-tagged change string: add:/mod:/del:.
func (e *ShadowEntry) change() string {
	switch {
	case e.Kind == KindDeleted:
		return "del:" + e.Path
	case e.OriginalKind == nil:
		return "add:" + e.Path
	default:
		return "mod:" + e.Path
	}
}

// stat projects a ShadowEntry into the Stat Resolver's common shape.
func (e *ShadowEntry) stat() Stat {
	var mode fs.FileMode
	switch e.Kind {
	case KindDirectory:
		mode = fs.ModeDir | 0o700
	case KindSymlink:
		mode = fs.ModeSymlink | 0o600
	default:
		mode = 0o600
	}
	return Stat{
		Mode:    mode,
		Size:    int64(len(e.Content)),
		Overlay: true,
	}
}

// addEntry records entry in the shadow store: a new shadow over an
// already-shadowed path inherits the path's original kind; a delete of a
// path that was never real collapses to nothing; a brand-new shadow
// captures the real filesystem's kind (if any) as its OriginalKind.
func (o *Overlay) addEntry(entry *ShadowEntry) {
	if existing, ok := o.entries[entry.Path]; ok {
		entry.OriginalKind = existing.OriginalKind
		if entry.Kind == KindDeleted && entry.OriginalKind == nil {
			delete(o.entries, entry.Path)
			return
		}
	} else if st, err := o.realLstat(entry.Path); err == nil {
		k := kindFromStat(st)
		entry.OriginalKind = &k
	} else if entry.Kind == KindDeleted {
		return
	}
	o.entries[entry.Path] = entry
}

func kindFromStat(st Stat) Kind {
	switch {
	case st.Mode&fs.ModeSymlink != 0:
		return KindSymlink
	case st.Mode&fs.ModeDir != 0:
		return KindDirectory
	default:
		return KindRegular
	}
}

// listUnion computes the union directory listing for dir: the real
// directory's entries (empty if the real listing fails), overlaid with
// shadow entries directly inside dir, removing KindDeleted names and adding
// the rest.
func (o *Overlay) listUnion(dir string) []string {
	var names []string
	if o.parent != nil {
		if ns, err := o.parent.Listdir(dir); err == nil {
			names = ns
		}
	} else if real, err := os.ReadDir(dir); err == nil {
		for _, de := range real {
			names = append(names, de.Name())
		}
	}
	prefix := dir
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	for p, entry := range o.entries {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		sub := p[len(prefix):]
		if sub == "" || strings.Contains(sub, "/") {
			continue
		}
		if entry.Kind == KindDeleted {
			names = removeName(names, sub)
		} else if !containsName(names, sub) {
			names = append(names, sub)
		}
	}
	return names
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func removeName(names []string, name string) []string {
	for i, n := range names {
		if n == name {
			return append(names[:i], names[i+1:]...)
		}
	}
	return names
}
