// Package overlay implements an in-process, copy-on-write virtual
// filesystem overlay for unit tests. An *Overlay records additions,
// modifications, deletions, and symlinks in memory; reads see the union of
// the overlay and the real filesystem, with the overlay winning. Nothing is
// ever written back to disk.
package overlay

import (
	"regexp"
	"sync"

	"github.com/sirupsen/logrus"
)

// Overlay is the top-level container: the shadow store plus lifecycle and
// descriptor-table state. The zero value is not usable; construct one with
// NewOverlay.
type Overlay struct {
	// nextFd must stay first: sync/atomic requires 64-bit alignment of the
	// word it operates on, which is only guaranteed for the first field of
	// an allocated struct on 32-bit platforms.
	nextFd int64

	mu sync.Mutex

	entries     map[string]*ShadowEntry
	installed   bool
	vaporized   map[string]*ShadowEntry
	descriptors map[int64]*OverlayFile

	passthru []*regexp.Regexp

	// parent, when set, is consulted wherever this overlay would otherwise
	// read through to the real filesystem: a lstat/listdir/open miss in
	// entries falls through to parent's own union view instead of the raw
	// OS. This is how two overlays nest: the inner overlay is explicitly
	// constructed with Chain(outer), so it observes the outer overlay's
	// shadow state without a process-wide interceptor.
	parent *Overlay

	log *logrus.Entry
}

// Option configures an Overlay at construction time.
type Option func(*Overlay)

// WithPassthrough routes an Open whose path (parent directory dereferenced,
// final segment as given) matches one of the given regular expressions
// directly to the real filesystem, bypassing the shadow store entirely.
// Operations other than Open do not consult the patterns.
func WithPassthrough(patterns ...string) Option {
	return func(o *Overlay) {
		for _, p := range patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				o.log.WithError(err).WithField("pattern", p).Warn("overlay: ignoring invalid passthrough pattern")
				continue
			}
			o.passthru = append(o.passthru, re)
		}
	}
}

// WithInstall installs the overlay immediately upon construction.
func WithInstall() Option {
	return func(o *Overlay) {
		o.Install()
	}
}

// NewOverlay constructs an uninstalled Overlay with empty shadow state.
func NewOverlay(opts ...Option) *Overlay {
	o := &Overlay{
		entries:     make(map[string]*ShadowEntry),
		descriptors: make(map[int64]*OverlayFile),
		nextFd:      1 << 30,
		log:         logrus.WithField("component", "overlay"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Installed reports whether Install has been called without a matching
// Uninstall.
func (o *Overlay) Installed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.installed
}

// Active reports whether the overlay is installed. There is no
// process-wide interceptor slot to be displaced from: a lone,
// directly-held *Overlay cannot be pre-empted by anything except an
// overlaystack.Stack layered on top of it, so Active is simply Installed
// for a bare Overlay. overlaystack.Stack verifies true ordering for nested
// overlays.
func (o *Overlay) Active() bool {
	return o.Installed()
}

// Install marks the overlay installed. It is idempotent: calling Install
// again while already installed is a no-op.
func (o *Overlay) Install() *Overlay {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.installed {
		return o
	}
	o.installed = true
	o.log.Debug("overlay installed")
	return o
}

// Uninstall clears the overlay's shadow state and descriptor table,
// snapshotting entries into Vaporized() before clearing them. Calling
// Uninstall when not installed is a no-op that returns the overlay
// unchanged.
func (o *Overlay) Uninstall() *Overlay {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.installed {
		return o
	}
	if len(o.descriptors) > 0 {
		o.log.WithField("leaked", len(o.descriptors)).Warn("overlay: uninstalling with open descriptors; leaked streams will not be flushed")
	}
	o.installed = false
	snapshot := make(map[string]*ShadowEntry, len(o.entries))
	for k, v := range o.entries {
		snapshot[k] = v
	}
	o.vaporized = snapshot
	o.entries = make(map[string]*ShadowEntry)
	o.descriptors = make(map[int64]*OverlayFile)
	o.log.Debug("overlay uninstalled")
	return o
}

// Vaporized returns the snapshot of shadow entries captured at the last
// Uninstall, or nil if the overlay has never been uninstalled.
func (o *Overlay) Vaporized() map[string]*ShadowEntry {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.vaporized == nil {
		return nil
	}
	out := make(map[string]*ShadowEntry, len(o.vaporized))
	for k, v := range o.vaporized {
		out[k] = v
	}
	return out
}

// Scoped installs the overlay, invokes fn, and guarantees Uninstall runs
// on every exit path, including a panic from fn.
func (o *Overlay) Scoped(fn func(o *Overlay) error) (err error) {
	o.Install()
	defer o.Uninstall()
	return fn(o)
}

// Chain sets parent as the overlay this one reads through to in place of
// the real filesystem: a miss in this overlay's own shadow store falls
// through to parent's union view (its own shadow store, and whatever it in
// turn chains to) instead of hitting disk directly. overlaystack.Stack
// calls this automatically when pushing one overlay on top of another
// already on the stack, so nested overlays see each other without a
// process-wide interceptor. Chain is exported so a chained pair can also
// be built directly, without going through a Stack.
func (o *Overlay) Chain(parent *Overlay) *Overlay {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.parent = parent
	return o
}

func (o *Overlay) matchesPassthrough(p string) bool {
	for _, re := range o.passthru {
		if re.MatchString(p) {
			return true
		}
	}
	return false
}
