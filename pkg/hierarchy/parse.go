package hierarchy

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/devicelab-dev/uiquery/pkg/core"
)

// Parse parses a UI hierarchy XML dump into a snapshot. Both common
// formats are supported:
// - uiautomator dump: <node> elements under <hierarchy>
// - Appium page source: class name used as the element tag
// Each top-level element becomes one window; the focused one (or the
// first, when none is marked) is the active window.
func Parse(r io.Reader) (*Snapshot, error) {
	decoder := xml.NewDecoder(r)

	var roots []*Element
	foundHierarchy := false
	var parseElement func() (*Element, error)

	parseElement = func() (*Element, error) {
		for {
			token, err := decoder.Token()
			if err != nil {
				return nil, err
			}

			switch t := token.(type) {
			case xml.StartElement:
				// The hierarchy wrapper itself is not an element.
				if t.Name.Local == "hierarchy" {
					foundHierarchy = true
					continue
				}

				elem := &Element{
					ClassName: t.Name.Local, // class name is the element tag
					Displayed: true,
				}
				for _, attr := range t.Attr {
					elem.setAttribute(attr.Name.Local, attr.Value)
				}

				for {
					child, err := parseElement()
					if err != nil || child == nil {
						break
					}
					elem.AddChild(child)
				}

				return elem, nil

			case xml.EndElement:
				return nil, nil // end of current element
			}
		}
	}

	var parseErr error
	for {
		elem, err := parseElement()
		if err != nil {
			if err != io.EOF {
				parseErr = err
			}
			break
		}
		if elem != nil {
			roots = append(roots, elem)
		}
	}

	if parseErr != nil && len(roots) == 0 {
		return nil, parseErr
	}
	if !foundHierarchy && len(roots) == 0 {
		return nil, fmt.Errorf("invalid page source: no hierarchy element found")
	}

	windows := make([]*Window, 0, len(roots))
	activeSeen := false
	for _, root := range roots {
		w := &Window{
			Title:   windowTitle(root),
			Package: root.Pkg,
			Active:  root.Focused,
			Root:    root,
		}
		if w.Active {
			activeSeen = true
		}
		windows = append(windows, w)
	}
	if !activeSeen && len(windows) > 0 {
		windows[0].Active = true
	}

	return NewSnapshot(windows...), nil
}

// ParseString parses a hierarchy dump held in memory.
func ParseString(s string) (*Snapshot, error) {
	return Parse(strings.NewReader(s))
}

// windowTitle derives a window title from the root element: the text
// label when present, the content description otherwise.
func windowTitle(root *Element) string {
	if root.Text != "" {
		return root.Text
	}
	return root.ContentDesc
}

// parseBounds parses an Android bounds string "[x1,y1][x2,y2]".
func parseBounds(s string) core.Bounds {
	s = strings.ReplaceAll(s, "][", ",")
	s = strings.Trim(s, "[]")
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return core.Bounds{}
	}

	x1, _ := strconv.Atoi(parts[0])
	y1, _ := strconv.Atoi(parts[1])
	x2, _ := strconv.Atoi(parts[2])
	y2, _ := strconv.Atoi(parts[3])

	return core.Bounds{
		X:      x1,
		Y:      y1,
		Width:  x2 - x1,
		Height: y2 - y1,
	}
}

// Walk visits every non-nil element of the tree depth-first, reporting
// its depth. Used by the CLI inspect command.
func Walk(root *Element, fn func(e *Element, depth int)) {
	var visit func(e *Element, depth int)
	visit = func(e *Element, depth int) {
		if e == nil {
			return
		}
		fn(e, depth)
		for _, c := range e.Children {
			visit(c, depth+1)
		}
	}
	visit(root, 0)
}
