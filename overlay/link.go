package overlay

import "io/fs"

// Symlink overlays os.Symlink: it fails with Exists if linkpath already
// resolves to anything (following any existing link at that name),
// otherwise records a symlink entry with content = target, stored verbatim
// and never resolved at creation time.
func (o *Overlay) Symlink(target, linkpath string) error {
	derefed, err := o.deref(linkpath, true)
	if err != nil {
		return err
	}
	if _, err := o.stat(derefed); err == nil {
		return errExists("symlink", derefed)
	}
	o.addEntry(&ShadowEntry{Path: derefed, Kind: KindSymlink, Content: []byte(target)})
	return nil
}

// Readlink overlays os.Readlink: p's parent is dereferenced, then p itself
// must lstat as a symlink (else InvalidArgument). The target is returned
// verbatim from the shadow entry if overlaid, or read through otherwise.
func (o *Overlay) Readlink(p string) (string, error) {
	derefed, err := o.deref(p, true)
	if err != nil {
		return "", err
	}
	st, err := o.lstat(derefed)
	if err != nil {
		return "", err
	}
	if st.Mode&fs.ModeSymlink == 0 {
		return "", errInvalid("readlink", derefed)
	}
	return o.readLinkContent(derefed, st)
}

// IsLink overlays os.path.islink: true iff p's lstat succeeds and names a
// symlink.
func (o *Overlay) IsLink(p string) bool {
	st, err := o.Lstat(p)
	if err != nil {
		return false
	}
	return st.Mode&fs.ModeSymlink != 0
}
