// Package hierarchy provides the host-side tree snapshot: UI hierarchy
// XML dumps parsed into an in-memory element tree implementing core.Node.
package hierarchy

import (
	"fmt"
	"strconv"

	"github.com/devicelab-dev/uiquery/pkg/core"
)

// Element is one node of a parsed UI hierarchy.
type Element struct {
	Text        string
	ResourceID  string
	ContentDesc string
	HintText    string // hint attribute for EditText fields
	ClassName   string
	Pkg         string
	Bounds      core.Bounds
	Enabled     bool
	Checked     bool
	Selected    bool
	Focused     bool
	Displayed   bool
	Clickable   bool
	Scrollable  bool

	// Children entries may be nil: inconsistent dumps leave holes, and
	// the walkers are required to skip them rather than stop.
	Children []*Element

	parent *Element
	window *Window
}

// NewElement builds a standalone element from attribute values. Used by
// tests and by programmatic tree construction; parsed trees come from
// Parse.
func NewElement(attrs map[string]string) *Element {
	e := &Element{Displayed: true, Enabled: true}
	for k, v := range attrs {
		e.setAttribute(k, v)
	}
	return e
}

func (e *Element) setAttribute(name, value string) {
	switch name {
	case core.AttrText:
		e.Text = value
	case core.AttrID:
		e.ResourceID = value
	case core.AttrDesc:
		e.ContentDesc = value
	case "hint":
		e.HintText = value
	case core.AttrClass:
		e.ClassName = value
	case core.AttrPackage:
		e.Pkg = value
	case "bounds":
		e.Bounds = parseBounds(value)
	case core.AttrEnabled:
		e.Enabled = value == "true"
	case core.AttrChecked:
		e.Checked = value == "true"
	case core.AttrSelected:
		e.Selected = value == "true"
	case core.AttrFocused:
		e.Focused = value == "true"
	case "displayed", "visible-to-user":
		e.Displayed = value != "false"
	case core.AttrClickable:
		e.Clickable = value == "true"
	case core.AttrScrollable:
		e.Scrollable = value == "true"
	}
}

// AddChild appends a child and links its parent pointer. A nil child is
// accepted deliberately so tests can model inconsistent dumps.
func (e *Element) AddChild(c *Element) *Element {
	if c != nil {
		c.parent = e
	}
	e.Children = append(e.Children, c)
	return e
}

// Attribute implements core.Node.
func (e *Element) Attribute(name string) (string, bool) {
	switch name {
	case core.AttrText:
		return e.Text, true
	case core.AttrID:
		return e.ResourceID, true
	case core.AttrDesc:
		return e.ContentDesc, true
	case "hint":
		return e.HintText, true
	case core.AttrClass:
		return e.ClassName, true
	case core.AttrPackage:
		return e.Pkg, true
	case core.AttrEnabled:
		return strconv.FormatBool(e.Enabled), true
	case core.AttrChecked:
		return strconv.FormatBool(e.Checked), true
	case core.AttrSelected:
		return strconv.FormatBool(e.Selected), true
	case core.AttrFocused:
		return strconv.FormatBool(e.Focused), true
	case core.AttrClickable:
		return strconv.FormatBool(e.Clickable), true
	case core.AttrScrollable:
		return strconv.FormatBool(e.Scrollable), true
	default:
		return "", false
	}
}

// ChildCount implements core.Node.
func (e *Element) ChildCount() int {
	return len(e.Children)
}

// ChildAt implements core.Node. Inconsistent slots come back as nil.
func (e *Element) ChildAt(i int) core.Node {
	if i < 0 || i >= len(e.Children) {
		return nil
	}
	c := e.Children[i]
	if c == nil {
		return nil
	}
	return c
}

// Parent implements core.Node.
func (e *Element) Parent() core.Node {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

// Visible implements core.Node.
func (e *Element) Visible() bool {
	return e.Displayed
}

// Package implements core.Node.
func (e *Element) Package() string {
	if e.Pkg != "" {
		return e.Pkg
	}
	if e.window != nil {
		return e.window.Package
	}
	return ""
}

// WindowTitle implements core.Node.
func (e *Element) WindowTitle() string {
	if e.window != nil {
		return e.window.Title
	}
	return ""
}

// String renders a short description of the element for diagnostics.
func (e *Element) String() string {
	label := e.Text
	if label == "" {
		label = e.ContentDesc
	}
	return fmt.Sprintf("%s{text=%q id=%q bounds=[%d,%d][%d,%d]}",
		e.ClassName, label, e.ResourceID,
		e.Bounds.X, e.Bounds.Y, e.Bounds.X+e.Bounds.Width, e.Bounds.Y+e.Bounds.Height)
}
