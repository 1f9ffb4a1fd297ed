// Package core holds the shared types of the query engine: the read-only
// node abstraction supplied by the platform, element bounds, and the
// error taxonomy.
package core

// Well-known node attribute names. Platforms may expose additional
// attributes; these are the ones the selector predicates understand.
const (
	AttrText       = "text"
	AttrID         = "resource-id"
	AttrClass      = "class"
	AttrDesc       = "content-desc"
	AttrPackage    = "package"
	AttrEnabled    = "enabled"
	AttrChecked    = "checked"
	AttrSelected   = "selected"
	AttrFocused    = "focused"
	AttrClickable  = "clickable"
	AttrScrollable = "scrollable"
)

// Node is the read-only view of a single element in a UI accessibility
// tree. Implementations are owned by the tree provider; the engine never
// retains a Node beyond the search call that produced it, because the
// platform invalidates nodes whenever the tree is refreshed.
type Node interface {
	// Attribute returns the named attribute value. The second return is
	// false when the node does not carry the attribute at all.
	Attribute(name string) (string, bool)

	// ChildCount returns the number of child slots. Individual slots may
	// still hold nil (inconsistent dumps do happen); callers must check.
	ChildCount() int

	// ChildAt returns the i-th child, or nil for an inconsistent slot.
	ChildAt(i int) Node

	// Parent returns the parent node, or nil at a window root.
	Parent() Node

	// Visible reports whether the node is displayed. Invisible nodes are
	// never matched and never descended into.
	Visible() bool

	// Package returns the application package owning the node, if known.
	Package() string

	// WindowTitle returns the title of the window the node belongs to,
	// if known.
	WindowTitle() string
}

// Bounds represents element position and size.
type Bounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Center returns the center point of the bounds.
func (b Bounds) Center() (int, int) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// Contains checks if a point is within the bounds.
func (b Bounds) Contains(x, y int) bool {
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}
