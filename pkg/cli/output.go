package cli

import (
	"fmt"
	"os"

	"github.com/devicelab-dev/uiquery/pkg/core"
	"github.com/devicelab-dev/uiquery/pkg/hierarchy"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// colorsEnabled determines if ANSI colors should be used
var colorsEnabled = true

func init() {
	// Respect NO_COLOR environment variable
	if os.Getenv("NO_COLOR") != "" {
		colorsEnabled = false
		return
	}
	// Check if stdout is a terminal
	if fileInfo, err := os.Stdout.Stat(); err == nil {
		if (fileInfo.Mode() & os.ModeCharDevice) == 0 {
			colorsEnabled = false
		}
	}
}

// color returns the color code if colors are enabled, empty string otherwise
func color(c string) string {
	if colorsEnabled {
		return c
	}
	return ""
}

// printableAttrs is the order attributes are shown in for a matched node.
var printableAttrs = []string{
	core.AttrText,
	core.AttrID,
	core.AttrClass,
	core.AttrDesc,
	core.AttrPackage,
	core.AttrEnabled,
	core.AttrChecked,
	core.AttrSelected,
	core.AttrFocused,
	core.AttrClickable,
	core.AttrScrollable,
}

// nodeAttrs collects the attributes a node actually carries.
func nodeAttrs(n core.Node) map[string]string {
	attrs := make(map[string]string)
	for _, name := range printableAttrs {
		if v, ok := n.Attribute(name); ok && v != "" {
			attrs[name] = v
		}
	}
	return attrs
}

// printNode prints a matched node in human-readable form.
func printNode(n core.Node) {
	fmt.Printf("  %s✓ Match found%s\n", color(colorGreen), color(colorReset))
	if title := n.WindowTitle(); title != "" {
		fmt.Printf("    %swindow:%s %s\n", color(colorGray), color(colorReset), title)
	}
	attrs := nodeAttrs(n)
	for _, name := range printableAttrs {
		if v, ok := attrs[name]; ok {
			fmt.Printf("    %s%s:%s %s\n", color(colorGray), name, color(colorReset), v)
		}
	}
	if el, ok := n.(*hierarchy.Element); ok {
		cx, cy := el.Bounds.Center()
		fmt.Printf("    %sbounds:%s [%d,%d][%d,%d] center=(%d,%d)\n",
			color(colorGray), color(colorReset),
			el.Bounds.X, el.Bounds.Y,
			el.Bounds.X+el.Bounds.Width, el.Bounds.Y+el.Bounds.Height,
			cx, cy)
	}
}
