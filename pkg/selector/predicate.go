// Package selector defines the declarative element selector model: ordered
// attribute predicates plus the structural links (child, parent, container,
// pattern, before, after) that build compound selectors.
package selector

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/devicelab-dev/uiquery/pkg/core"
)

// Match is the comparison mode of a predicate.
type Match string

// Comparison modes
const (
	MatchEquals     Match = "equals"     // exact, case-sensitive
	MatchContains   Match = "contains"   // substring, case-insensitive
	MatchStartsWith Match = "startsWith" // prefix, case-insensitive
	MatchRegex      Match = "regex"      // regular expression
)

// PropIndex is the pseudo-property matched against a node's positional
// index among its siblings rather than an attribute.
const PropIndex = "index"

// Predicate is a single (property, expected value, comparison mode) check
// evaluated against a node and its sibling index.
type Predicate struct {
	Property string `yaml:"property"`
	Value    string `yaml:"value"`
	Mode     Match  `yaml:"mode"`
}

// MatchString reports whether the predicate's expected value matches the
// given attribute value under the predicate's comparison mode. An invalid
// regular expression never matches; Selector.Validate reports it up front.
func (p Predicate) MatchString(s string) bool {
	switch p.Mode {
	case MatchEquals:
		return s == p.Value
	case MatchStartsWith:
		return strings.HasPrefix(strings.ToLower(s), strings.ToLower(p.Value))
	case MatchRegex:
		re, err := regexp.Compile(p.Value)
		if err != nil {
			return false
		}
		// Dumps flatten multi-line labels inconsistently; try both forms.
		if re.MatchString(s) {
			return true
		}
		return re.MatchString(strings.ReplaceAll(s, "\n", " "))
	default: // MatchContains and the zero value
		return strings.Contains(strings.ToLower(s), strings.ToLower(p.Value))
	}
}

// Matches evaluates the predicate against a node. siblingIndex is the
// node's position among its parent's children.
func (p Predicate) Matches(n core.Node, siblingIndex int) bool {
	if p.Property == PropIndex {
		want, err := strconv.Atoi(p.Value)
		if err != nil {
			return false
		}
		return siblingIndex == want
	}
	attr, ok := n.Attribute(p.Property)
	if !ok {
		return false
	}
	return p.MatchString(attr)
}

// String renders the predicate as property="value" for diagnostics.
func (p Predicate) String() string {
	if p.Mode != "" && p.Mode != MatchContains {
		return p.Property + "~" + string(p.Mode) + "=\"" + p.Value + "\""
	}
	return p.Property + "=\"" + p.Value + "\""
}
