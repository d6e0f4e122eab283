package overlay

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"
)

func TestOpenAppendOnMissingPathBehavesAsWrite(t *testing.T) {
	dir := t.TempDir()
	o := NewOverlay()
	target := filepath.Join(dir, "new")

	f, err := o.Open(target, "a")
	assert.NilError(t, err)
	_, err = f.Write([]byte("fresh"))
	assert.NilError(t, err)
	assert.NilError(t, f.Close())

	rf, err := o.Open(target, "r")
	assert.NilError(t, err)
	data, err := io.ReadAll(rf)
	assert.NilError(t, err)
	assert.Equal(t, string(data), "fresh")
	assert.NilError(t, rf.Close())
}

func TestOpenUnknownModeIsRejected(t *testing.T) {
	o := NewOverlay()
	_, err := o.Open("/whatever", "q")
	if err != UnknownMode {
		t.Fatalf("expected UnknownMode, got %v", err)
	}
}

func TestOpenReadWriteComboIsRejected(t *testing.T) {
	o := NewOverlay()
	_, err := o.Open("/whatever", "rw")
	if err != UnknownMode {
		t.Fatalf("expected UnknownMode, got %v", err)
	}
}

func TestOpenReadOnDirectoryFailsEISDIR(t *testing.T) {
	dir := t.TempDir()
	o := NewOverlay()
	assert.NilError(t, o.Mkdir(filepath.Join(dir, "d")))

	_, err := o.Open(filepath.Join(dir, "d"), "r")
	if err == nil {
		t.Fatal("expected IsADirectory, got nil")
	}
}

func TestOpenWriteChasesSymlinkToRealFile(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "real")
	if err := os.WriteFile(real, []byte("orig"), 0o644); err != nil {
		t.Fatal(err)
	}
	o := NewOverlay()
	link := filepath.Join(dir, "link")
	assert.NilError(t, o.Symlink(real, link))

	f, err := o.Open(link, "w")
	assert.NilError(t, err)
	_, err = f.Write([]byte("new"))
	assert.NilError(t, err)
	assert.NilError(t, f.Close())

	rf, err := o.Open(real, "r")
	assert.NilError(t, err)
	data, err := io.ReadAll(rf)
	assert.NilError(t, err)
	assert.Equal(t, string(data), "new")
	assert.NilError(t, rf.Close())

	// the real file on disk is untouched: the write only lives in the shadow.
	raw, err := os.ReadFile(real)
	assert.NilError(t, err)
	assert.Equal(t, string(raw), "orig")
}

func TestUnlinkMissingPathFailsNotFound(t *testing.T) {
	dir := t.TempDir()
	o := NewOverlay()
	err := o.Unlink(filepath.Join(dir, "missing"))
	if err == nil {
		t.Fatal("expected NotFound, got nil")
	}
}

func TestOsOpenReadWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	o := NewOverlay()
	target := filepath.Join(dir, "fd")

	fd, err := o.OsOpen(target, os.O_WRONLY|os.O_CREATE, 0o644)
	assert.NilError(t, err)
	n, err := o.OsWrite(fd, []byte("payload"))
	assert.NilError(t, err)
	assert.Equal(t, n, len("payload"))
	assert.NilError(t, o.OsClose(fd))

	rfd, err := o.OsOpen(target, os.O_RDONLY, 0)
	assert.NilError(t, err)
	got, err := o.OsRead(rfd, 32)
	assert.NilError(t, err)
	assert.Equal(t, string(got), "payload")
	assert.NilError(t, o.OsClose(rfd))
}
