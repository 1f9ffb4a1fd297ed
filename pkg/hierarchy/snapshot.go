package hierarchy

import (
	"strings"

	"github.com/devicelab-dev/uiquery/pkg/core"
)

// Window is one top-level root in a snapshot, with its identity.
type Window struct {
	Title   string
	Package string
	Active  bool
	Root    *Element
}

// Snapshot is an atomically captured set of windows. Nodes belong to the
// snapshot that produced them; a refreshed snapshot invalidates all
// previously returned nodes.
type Snapshot struct {
	Windows []*Window
}

// NewSnapshot assembles a snapshot, linking every element back to its
// window so Package and WindowTitle resolve.
func NewSnapshot(windows ...*Window) *Snapshot {
	s := &Snapshot{Windows: windows}
	for _, w := range windows {
		linkWindow(w.Root, w, nil)
	}
	return s
}

func linkWindow(e *Element, w *Window, parent *Element) {
	if e == nil {
		return
	}
	e.window = w
	e.parent = parent
	for _, c := range e.Children {
		linkWindow(c, w, e)
	}
}

// Roots returns candidate root nodes in search order: with no hint, the
// active window first, then the rest in snapshot order; with a hint,
// only windows whose title contains it (case-insensitive).
func (s *Snapshot) Roots(windowHint string) []core.Node {
	var out []core.Node

	if windowHint != "" {
		hint := strings.ToLower(windowHint)
		for _, w := range s.Windows {
			if w.Root != nil && strings.Contains(strings.ToLower(w.Title), hint) {
				out = append(out, w.Root)
			}
		}
		return out
	}

	for _, w := range s.Windows {
		if w.Active && w.Root != nil {
			out = append(out, w.Root)
		}
	}
	for _, w := range s.Windows {
		if !w.Active && w.Root != nil {
			out = append(out, w.Root)
		}
	}
	return out
}
