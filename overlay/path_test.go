package overlay

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDerefFollowsOverlaySymlinkOverReal(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "real")
	if err := os.Mkdir(real, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(real, "f"), []byte("r"), 0o644); err != nil {
		t.Fatal(err)
	}

	o := NewOverlay()
	link := filepath.Join(dir, "link")
	if err := o.Symlink(real, link); err != nil {
		t.Fatal(err)
	}

	got, err := o.deref(filepath.Join(link, "f"), false)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(real, "f")
	if got != want {
		t.Fatalf("deref = %q, want %q", got, want)
	}
}

func TestDerefDepthCapReturnsELOOP(t *testing.T) {
	dir := t.TempDir()
	o := NewOverlay()

	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	if err := o.Symlink(b, a); err != nil {
		t.Fatal(err)
	}
	if err := o.Symlink(a, b); err != nil {
		t.Fatal(err)
	}

	if _, err := o.deref(a, false); err == nil {
		t.Fatal("expected an error from a symlink cycle, got nil")
	}
}

func TestAbsIsIdempotentOnAbsolutePaths(t *testing.T) {
	o := NewOverlay()
	got := o.Abs("/a/b/../c")
	if got != "/a/c" {
		t.Fatalf("Abs = %q, want /a/c", got)
	}
}
