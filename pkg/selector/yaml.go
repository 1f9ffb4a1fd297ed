package selector

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/uiquery/pkg/core"
)

// selectorRaw is the YAML shape of a selector frame.
type selectorRaw struct {
	Text        string `yaml:"text"`
	TextMatches string `yaml:"textMatches"`
	TextExact   string `yaml:"textExact"`
	ID          string `yaml:"id"`
	IDMatches   string `yaml:"idMatches"`
	Class       string `yaml:"class"`
	Desc        string `yaml:"desc"`
	Package     string `yaml:"package"`
	Index       *int   `yaml:"index"`

	// State filters
	Enabled    *bool `yaml:"enabled"`
	Checked    *bool `yaml:"checked"`
	Selected   *bool `yaml:"selected"`
	Focused    *bool `yaml:"focused"`
	Clickable  *bool `yaml:"clickable"`
	Scrollable *bool `yaml:"scrollable"`

	// Structural links
	Child     *Selector `yaml:"child"`
	Parent    *Selector `yaml:"parent"`
	Container *Selector `yaml:"container"`
	Pattern   *Selector `yaml:"pattern"`
	Instance  int       `yaml:"instance"`
	Before    *Selector `yaml:"before"`
	After     *Selector `yaml:"after"`
}

// UnmarshalYAML allows a selector to be written either as a bare string
// (shorthand for a text predicate) or as a mapping.
func (s *Selector) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var text string
		if err := node.Decode(&text); err != nil {
			return err
		}
		s.Predicates = []Predicate{{Property: core.AttrText, Value: text, Mode: MatchContains}}
		return nil
	}

	var raw selectorRaw
	if err := node.Decode(&raw); err != nil {
		return err
	}

	add := func(property, value string, mode Match) {
		s.Predicates = append(s.Predicates, Predicate{Property: property, Value: value, Mode: mode})
	}
	if raw.Text != "" {
		add(core.AttrText, raw.Text, MatchContains)
	}
	if raw.TextMatches != "" {
		add(core.AttrText, raw.TextMatches, MatchRegex)
	}
	if raw.TextExact != "" {
		add(core.AttrText, raw.TextExact, MatchEquals)
	}
	if raw.ID != "" {
		add(core.AttrID, raw.ID, MatchContains)
	}
	if raw.IDMatches != "" {
		add(core.AttrID, raw.IDMatches, MatchRegex)
	}
	if raw.Class != "" {
		add(core.AttrClass, raw.Class, MatchEquals)
	}
	if raw.Desc != "" {
		add(core.AttrDesc, raw.Desc, MatchContains)
	}
	if raw.Package != "" {
		add(core.AttrPackage, raw.Package, MatchEquals)
	}
	if raw.Index != nil {
		add(PropIndex, strconv.Itoa(*raw.Index), MatchEquals)
	}

	states := []struct {
		property string
		value    *bool
	}{
		{core.AttrEnabled, raw.Enabled},
		{core.AttrChecked, raw.Checked},
		{core.AttrSelected, raw.Selected},
		{core.AttrFocused, raw.Focused},
		{core.AttrClickable, raw.Clickable},
		{core.AttrScrollable, raw.Scrollable},
	}
	for _, st := range states {
		if st.value != nil {
			add(st.property, strconv.FormatBool(*st.value), MatchEquals)
		}
	}

	s.Child = raw.Child
	s.Parent = raw.Parent
	s.Container = raw.Container
	s.Pattern = raw.Pattern
	s.Instance = raw.Instance
	s.Before = raw.Before
	s.After = raw.After

	return nil
}

// Parse parses a YAML selector document and validates it.
func Parse(data []byte) (*Selector, error) {
	var s Selector
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse selector: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and parses a selector file.
func Load(path string) (*Selector, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided selector file
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
