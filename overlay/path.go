package overlay

import (
	"io/fs"
	"os"
	"path"
	"strings"
)

// maxSymlinkDepth bounds deref's recursion: without a cap, a cycle through
// overlay and real symlinks would recurse forever. 40 matches Linux's
// traditional MAXSYMLINKS.
const maxSymlinkDepth = 40

// Abs returns the absolute POSIX form of p. Only forward-slash paths are
// modeled; Windows path semantics are out of scope.
func (o *Overlay) Abs(p string) string {
	if path.IsAbs(p) {
		return path.Clean(p)
	}
	wd, err := os.Getwd()
	if err != nil {
		return path.Clean("/" + p)
	}
	return path.Clean(path.Join(wd, p))
}

// deref is the core symlink walker. With toParent it resolves only p's
// parent directory and rejoins the final segment unresolved; otherwise it
// walks every accumulated prefix of p, restarting the walk from the
// composed path whenever a prefix turns out to be a symlink. It consults
// the union view at every step, so a symlink shadowed in the overlay masks
// a real file (or the absence of one) at that name.
func (o *Overlay) deref(p string, toParent bool) (string, error) {
	return o.derefDepth(p, toParent, 0)
}

func (o *Overlay) derefDepth(p string, toParent bool, depth int) (string, error) {
	p = o.Abs(p)
	if toParent {
		head, tail := splitPath(p)
		derefHead, err := o.derefDepth(head, false, depth)
		if err != nil {
			return "", err
		}
		return path.Join(derefHead, tail), nil
	}
	if depth > maxSymlinkDepth {
		return "", errLoop("deref", p)
	}
	segments := strings.Split(strings.TrimPrefix(p, "/"), "/")
	cur := "/"
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		cur = path.Join(cur, seg)
		st, err := o.lstat(cur)
		if err != nil {
			// This prefix does not exist yet; nothing more to dereference
			// along this walk. The caller decides whether the final
			// non-existence is itself an error.
			continue
		}
		if st.Mode&fs.ModeSymlink != 0 {
			target, err := o.readLinkContent(cur, st)
			if err != nil {
				return "", err
			}
			rest := strings.Join(segments[i+1:], "/")
			// An absolute symlink target replaces the walk entirely rather
			// than being joined onto cur's directory.
			var composed string
			if path.IsAbs(target) {
				composed = path.Join(target, rest)
			} else {
				composed = path.Join(path.Dir(cur), target, rest)
			}
			return o.derefDepth(composed, false, depth+1)
		}
	}
	return p, nil
}

// readLinkContent returns the target a symlink at p (whose Stat st is
// already known to describe a symlink) points to, reading from this
// overlay's shadow entry when it has one, from the parent overlay when
// chained, and from the real filesystem otherwise.
func (o *Overlay) readLinkContent(p string, st Stat) (string, error) {
	if st.Overlay {
		if e, ok := o.entries[p]; ok {
			return string(e.Content), nil
		}
		if o.parent == nil {
			return "", errNotFound("readlink", p)
		}
	}
	if o.parent != nil {
		return o.parent.Readlink(p)
	}
	target, err := os.Readlink(p)
	if err != nil {
		return "", errNotFound("readlink", p)
	}
	return target, nil
}
