package overlaystack

import (
	"path/filepath"
	"testing"

	"github.com/dmcgowan/fso/overlay"
	"gotest.tools/v3/assert"
)

func TestPushPopOrdering(t *testing.T) {
	dir := t.TempDir()
	var s Stack

	outer := overlay.NewOverlay()
	inner := overlay.NewOverlay()

	_, err := s.Push(outer)
	assert.NilError(t, err)
	_, err = s.Push(inner)
	assert.NilError(t, err)
	assert.Equal(t, s.Len(), 2)

	top, err := s.Peek()
	assert.NilError(t, err)
	assert.Check(t, top == inner)

	a := filepath.Join(dir, "a")
	f, err := outer.Open(a, "w")
	assert.NilError(t, err)
	_, err = f.Write([]byte("x"))
	assert.NilError(t, err)
	assert.NilError(t, f.Close())
	assert.Check(t, inner.Exists(a))

	assert.NilError(t, inner.Unlink(a))
	assert.Check(t, !inner.Exists(a))

	s.Pop()
	assert.Equal(t, s.Len(), 1)
	assert.Check(t, outer.Exists(a))

	s.Pop()
	assert.Equal(t, s.Len(), 0)
}

func TestPopOnEmptyStackPanics(t *testing.T) {
	var s Stack
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected Pop on empty stack to panic")
		}
	}()
	s.Pop()
}

func TestPushRejectsForeignInstall(t *testing.T) {
	var s Stack
	foreign := overlay.NewOverlay()
	foreign.Install()

	_, err := s.Push(foreign)
	if err != overlay.ErrStateCollision {
		t.Fatalf("expected ErrStateCollision, got %v", err)
	}
}
