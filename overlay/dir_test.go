package overlay

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"
)

func TestMkdirAllCreatesEveryMissingSegment(t *testing.T) {
	dir := t.TempDir()
	o := NewOverlay()
	target := filepath.Join(dir, "a", "b", "c")

	assert.NilError(t, o.MkdirAll(target))

	st, err := o.Stat(target)
	assert.NilError(t, err)
	assert.Check(t, st.Mode&fs.ModeDir != 0)
}

func TestMkdirAllFailsOnNonDirectoryParent(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	o := NewOverlay()
	err := o.MkdirAll(filepath.Join(file, "child"))
	if err == nil {
		t.Fatal("expected NotADirectory, got nil")
	}
}

func TestRmdirFailsWhenNotEmpty(t *testing.T) {
	dir := t.TempDir()
	o := NewOverlay()
	d := filepath.Join(dir, "d")
	assert.NilError(t, o.Mkdir(d))
	assert.NilError(t, o.Symlink("target", filepath.Join(d, "l")))

	err := o.Rmdir(d)
	if err == nil {
		t.Fatal("expected NotEmpty, got nil")
	}
}

func TestRemoveAllRefusesSymlink(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "realdir")
	if err := os.Mkdir(real, 0o755); err != nil {
		t.Fatal(err)
	}
	o := NewOverlay()
	link := filepath.Join(dir, "link")
	assert.NilError(t, o.Symlink(real, link))

	var hit bool
	o.RemoveAll(link, false, func(op, path string, err error) {
		hit = true
	})
	assert.Check(t, hit)
	assert.Check(t, o.IsLink(link))
}

func TestRemoveAllDeletesTreeRecursively(t *testing.T) {
	dir := t.TempDir()
	o := NewOverlay()
	root := filepath.Join(dir, "root")
	assert.NilError(t, o.MkdirAll(filepath.Join(root, "sub")))

	f, err := o.Open(filepath.Join(root, "sub", "leaf"), "w")
	assert.NilError(t, err)
	_, err = f.Write([]byte("x"))
	assert.NilError(t, err)
	assert.NilError(t, f.Close())

	o.RemoveAll(root, false, nil)
	assert.Check(t, !o.Exists(root))
}

func TestListdirUnionsRealAndShadow(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "real.txt"), []byte("r"), 0o644); err != nil {
		t.Fatal(err)
	}
	o := NewOverlay()
	f, err := o.Open(filepath.Join(dir, "shadow.txt"), "w")
	assert.NilError(t, err)
	_, err = f.Write([]byte("s"))
	assert.NilError(t, err)
	assert.NilError(t, f.Close())

	names, err := o.Listdir(dir)
	assert.NilError(t, err)
	assert.Check(t, containsName(names, "real.txt"))
	assert.Check(t, containsName(names, "shadow.txt"))
}

func TestListdirHidesUnlinkedRealFile(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "real.txt")
	if err := os.WriteFile(real, []byte("r"), 0o644); err != nil {
		t.Fatal(err)
	}
	o := NewOverlay()
	assert.NilError(t, o.Unlink(real))

	names, err := o.Listdir(dir)
	assert.NilError(t, err)
	assert.Check(t, !containsName(names, "real.txt"))
}
