package overlay

import (
	"io/fs"
	"path"
	"sort"

	"github.com/pkg/errors"
)

// Mkdir overlays os.Mkdir: it fails with Exists if the path already exists
// (including as a dangling symlink), otherwise records a directory entry.
func (o *Overlay) Mkdir(p string) error {
	derefed, err := o.deref(p, true)
	if err != nil {
		return err
	}
	if _, err := o.lstat(derefed); err == nil {
		return errExists("mkdir", derefed)
	}
	o.addEntry(&ShadowEntry{Path: derefed, Kind: KindDirectory})
	return nil
}

// MkdirAll overlays os.MkdirAll: it walks every path segment from the root,
// creating any that do not yet exist, failing with Exists if the full path
// already names something, and NotADirectory if an intermediate segment
// exists but is not a directory.
func (o *Overlay) MkdirAll(p string) error {
	abs := o.Abs(p)
	segments := splitSegments(abs)
	cur := "/"
	for i, seg := range segments {
		cur = path.Join(cur, seg)
		st, err := o.Stat(cur)
		if err != nil {
			if mkErr := o.Mkdir(cur); mkErr != nil {
				return mkErr
			}
			continue
		}
		if i+1 == len(segments) {
			return errExists("makedirs", abs)
		}
		if st.Mode&fs.ModeDir == 0 {
			return errNotDir("makedirs", abs)
		}
	}
	return nil
}

func splitSegments(abs string) []string {
	var segs []string
	for _, s := range splitAll(abs) {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

func splitAll(p string) []string {
	var out []string
	cur := ""
	for _, r := range p {
		if r == '/' {
			out = append(out, cur)
			cur = ""
			continue
		}
		cur += string(r)
	}
	out = append(out, cur)
	return out
}

// Rmdir overlays os.Rmdir: p must name an empty directory, else it fails
// with NotADirectory or NotEmpty.
func (o *Overlay) Rmdir(p string) error {
	st, err := o.Lstat(p)
	if err != nil {
		return err
	}
	if st.Mode&fs.ModeDir == 0 {
		return errNotDir("rmdir", p)
	}
	derefed, err := o.deref(p, true)
	if err != nil {
		return err
	}
	if len(o.listUnion(derefed)) > 0 {
		return errNotEmpty("rmdir", derefed)
	}
	o.addEntry(&ShadowEntry{Path: derefed, Kind: KindDeleted})
	return nil
}

// Listdir overlays os.ReadDir/os.listdir: p is fully dereferenced and must
// name a directory; the returned names are the union of the real listing
// and the shadow store, in unspecified order.
func (o *Overlay) Listdir(p string) ([]string, error) {
	derefed, err := o.deref(p, false)
	if err != nil {
		return nil, err
	}
	st, err := o.stat(derefed)
	if err != nil {
		return nil, errNotDir("listdir", p)
	}
	if st.Mode&fs.ModeDir == 0 {
		return nil, errNotDir("listdir", p)
	}
	return o.listUnion(derefed), nil
}

// OnError is the callback RemoveAll routes per-step failures through,
// mirroring shutil.rmtree's onerror(function, path, excinfo) triple with
// the offending operation's name in place of the function object.
type OnError func(op string, path string, err error)

// RemoveAll overlays shutil.rmtree: it refuses to operate on a symlink,
// recurses into subdirectories, unlinks leaves and symlinks, and finally
// removes the now-empty directory. Every failure is routed to onerror (or
// swallowed if ignoreErrors is true); rmtree is the only operation in the
// package that does not simply propagate its first error.
func (o *Overlay) RemoveAll(p string, ignoreErrors bool, onerror OnError) {
	if ignoreErrors {
		onerror = func(string, string, error) {}
	} else if onerror == nil {
		onerror = func(op, path string, err error) { panic(err) }
	}
	o.removeAll(p, onerror)
}

func (o *Overlay) removeAll(p string, onerror OnError) {
	if o.IsLink(p) {
		onerror("islink", p, errors.Wrap(errInvalid("rmtree", p), "refusing to descend into symlink"))
		return
	}
	names, err := o.Listdir(p)
	if err != nil {
		onerror("listdir", p, errors.Wrapf(err, "listing %s", p))
		names = nil
	}
	sort.Strings(names)
	for _, name := range names {
		full := path.Join(p, name)
		st, err := o.Lstat(full)
		isDir := err == nil && st.Mode&fs.ModeDir != 0
		if isDir {
			o.removeAll(full, onerror)
			continue
		}
		if err := o.Remove(full); err != nil {
			onerror("remove", full, errors.Wrapf(err, "removing %s", full))
		}
	}
	if err := o.Rmdir(p); err != nil {
		onerror("rmdir", p, errors.Wrapf(err, "removing directory %s", p))
	}
}
