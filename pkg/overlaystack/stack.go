// Package overlaystack provides an explicit, non-global LIFO of installed
// overlays for tests that need to nest one overlay inside another. Callers
// that never nest never need this package; a bare *overlay.Overlay is
// sufficient on its own.
package overlaystack

import (
	"errors"

	"github.com/dmcgowan/fso/overlay"
)

// ErrEmpty is returned by Peek on an empty stack; Pop panics instead,
// since popping an empty stack is a programmer error, not a recoverable
// condition.
var ErrEmpty = errors.New("overlaystack: stack is empty")

// Stack is a LIFO of installed overlays. The zero value is an empty,
// ready-to-use stack. It is an explicit value the caller threads through
// their own test setup, rather than a single process-wide global list.
type Stack struct {
	layers []*overlay.Overlay
}

// Push installs fso (if not already installed) and pushes it onto the
// stack. Pushing an overlay that is installed but is not already the top
// of this stack is a state collision: it means some other mechanism
// installed it, and stacking on top would silently orphan that install.
func (s *Stack) Push(fso *overlay.Overlay) (*overlay.Overlay, error) {
	if fso.Installed() {
		if len(s.layers) == 0 || s.layers[len(s.layers)-1] != fso {
			return nil, overlay.ErrStateCollision
		}
		return fso, nil
	}
	if len(s.layers) > 0 {
		fso.Chain(s.layers[len(s.layers)-1])
	}
	fso.Install()
	s.layers = append(s.layers, fso)
	return fso, nil
}

// Pop uninstalls and removes the top of the stack. Popping an empty stack
// panics: it is a programmer error to unbalance push/pop.
func (s *Stack) Pop() map[string]*overlay.ShadowEntry {
	if len(s.layers) == 0 {
		panic(ErrEmpty)
	}
	top := s.layers[len(s.layers)-1]
	s.layers = s.layers[:len(s.layers)-1]
	return top.Uninstall().Vaporized()
}

// Peek returns the top of the stack without modifying it.
func (s *Stack) Peek() (*overlay.Overlay, error) {
	if len(s.layers) == 0 {
		return nil, ErrEmpty
	}
	return s.layers[len(s.layers)-1], nil
}

// Len reports the current depth of the stack.
func (s *Stack) Len() int {
	return len(s.layers)
}
