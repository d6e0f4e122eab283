package overlay

import (
	"io"
	"io/fs"
	"path"
	"time"
)

// Sub returns an fs.FS (also satisfying fs.ReadDirFS and fs.StatFS) rooted
// at dir, letting overlaid trees be handed to any io/fs-consuming API
// (fs.WalkDir, http.FileServer(http.FS(...)), archive walkers) without that
// consumer knowing about the overlay at all. It is a thin read-only view
// over Open/Listdir/Stat; it adds no new shadow-store semantics.
func (o *Overlay) Sub(dir string) fs.FS {
	return &fsView{o: o, root: o.Abs(dir)}
}

type fsView struct {
	o    *Overlay
	root string
}

func (v *fsView) resolve(name string) (string, error) {
	if !fs.ValidPath(name) {
		return "", &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	if name == "." {
		return v.root, nil
	}
	return path.Join(v.root, name), nil
}

func (v *fsView) Open(name string) (fs.File, error) {
	full, err := v.resolve(name)
	if err != nil {
		return nil, err
	}
	st, err := v.o.Stat(full)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	if st.Mode.IsDir() {
		names, err := v.o.Listdir(full)
		if err != nil {
			return nil, &fs.PathError{Op: "open", Path: name, Err: err}
		}
		return &fsDir{v: v, name: name, full: full, st: st, names: names}, nil
	}
	f, err := v.o.Open(full, "r")
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return &fsFile{OverlayFile: f, name: name, st: st}, nil
}

func (v *fsView) ReadDir(name string) ([]fs.DirEntry, error) {
	full, err := v.resolve(name)
	if err != nil {
		return nil, err
	}
	names, err := v.o.Listdir(full)
	if err != nil {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: err}
	}
	entries := make([]fs.DirEntry, 0, len(names))
	for _, n := range names {
		st, err := v.o.Lstat(path.Join(full, n))
		if err != nil {
			continue
		}
		entries = append(entries, fsDirEntry{name: n, st: st})
	}
	return entries, nil
}

func (v *fsView) Stat(name string) (fs.FileInfo, error) {
	full, err := v.resolve(name)
	if err != nil {
		return nil, err
	}
	st, err := v.o.Stat(full)
	if err != nil {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: err}
	}
	return fsFileInfo{name: path.Base(full), st: st}, nil
}

type fsFileInfo struct {
	name string
	st   Stat
}

func (i fsFileInfo) Name() string       { return i.name }
func (i fsFileInfo) Size() int64        { return i.st.Size }
func (i fsFileInfo) Mode() fs.FileMode  { return i.st.Mode }
func (i fsFileInfo) ModTime() time.Time { return i.st.Mtime }
func (i fsFileInfo) IsDir() bool        { return i.st.Mode.IsDir() }
func (i fsFileInfo) Sys() any           { return i.st }

type fsDirEntry struct {
	name string
	st   Stat
}

func (e fsDirEntry) Name() string               { return e.name }
func (e fsDirEntry) IsDir() bool                { return e.st.Mode.IsDir() }
func (e fsDirEntry) Type() fs.FileMode          { return e.st.Mode.Type() }
func (e fsDirEntry) Info() (fs.FileInfo, error) { return fsFileInfo{name: e.name, st: e.st}, nil }

type fsFile struct {
	*OverlayFile
	name string
	st   Stat
}

func (f *fsFile) Stat() (fs.FileInfo, error) {
	return fsFileInfo{name: path.Base(f.name), st: f.st}, nil
}

type fsDir struct {
	v     *fsView
	name  string
	full  string
	st    Stat
	names []string
	pos   int
}

func (d *fsDir) Stat() (fs.FileInfo, error) {
	return fsFileInfo{name: path.Base(d.full), st: d.st}, nil
}

func (d *fsDir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.name, Err: fs.ErrInvalid}
}

func (d *fsDir) Close() error { return nil }

func (d *fsDir) ReadDir(n int) ([]fs.DirEntry, error) {
	if n <= 0 {
		var out []fs.DirEntry
		for ; d.pos < len(d.names); d.pos++ {
			st, err := d.v.o.Lstat(path.Join(d.full, d.names[d.pos]))
			if err != nil {
				continue
			}
			out = append(out, fsDirEntry{name: d.names[d.pos], st: st})
		}
		return out, nil
	}
	var out []fs.DirEntry
	for len(out) < n && d.pos < len(d.names) {
		name := d.names[d.pos]
		d.pos++
		st, err := d.v.o.Lstat(path.Join(d.full, name))
		if err != nil {
			continue
		}
		out = append(out, fsDirEntry{name: name, st: st})
	}
	if len(out) == 0 && n > 0 {
		return nil, io.EOF
	}
	return out, nil
}
