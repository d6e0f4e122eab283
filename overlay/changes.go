package overlay

import (
	"sort"
	"strings"
)

// Changes returns the sorted change log: every shadow entry's path
// rendered with its "add:"/"mod:"/"del:" tag, sorted by path.
func (o *Overlay) Changes() []string {
	paths := make([]string, 0, len(o.entries))
	for p := range o.entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = o.entries[p].change()
	}
	return out
}

// ChangesUnder filters the change log to root and (when recurse is true)
// everything under root/, optionally stripping the root prefix while
// preserving each entry's 4-character tag. With recurse=false it reports
// only root's own entry: (change, true) if root is itself a shadowed path,
// or (nil, false) if it is absent from the store, letting the caller
// distinguish "not found" from "found, empty".
func (o *Overlay) ChangesUnder(root string, recurse, relative bool) ([]string, bool) {
	root = o.Abs(root)
	if !recurse {
		entry, ok := o.entries[root]
		if !ok {
			return nil, false
		}
		change := entry.change()
		if relative {
			change = change[:4]
		}
		return []string{change}, true
	}
	var out []string
	paths := make([]string, 0, len(o.entries))
	for p := range o.entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	prefix := root + "/"
	for _, p := range paths {
		if p != root && !strings.HasPrefix(p, prefix) {
			continue
		}
		change := o.entries[p].change()
		if relative {
			if p == root {
				change = change[:4]
			} else {
				change = change[:4] + change[4+len(root)+1:]
			}
		}
		out = append(out, change)
	}
	return out, true
}
