package selector

import (
	"errors"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/uiquery/pkg/core"
)

// fakeNode is a minimal core.Node for predicate evaluation tests.
type fakeNode struct {
	attrs map[string]string
}

func (f *fakeNode) Attribute(name string) (string, bool) {
	v, ok := f.attrs[name]
	return v, ok
}
func (f *fakeNode) ChildCount() int       { return 0 }
func (f *fakeNode) ChildAt(int) core.Node { return nil }
func (f *fakeNode) Parent() core.Node     { return nil }
func (f *fakeNode) Visible() bool         { return true }
func (f *fakeNode) Package() string       { return "" }
func (f *fakeNode) WindowTitle() string   { return "" }

func TestSelectorUnmarshalYAMLScalar(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		expected string
	}{
		{"simple text", `"Login"`, "Login"},
		{"text with spaces", `"Sign Up Now"`, "Sign Up Now"},
		{"unquoted text", `Submit`, "Submit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Selector
			if err := yaml.Unmarshal([]byte(tt.yaml), &s); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(s.Predicates) != 1 {
				t.Fatalf("expected 1 predicate, got %d", len(s.Predicates))
			}
			p := s.Predicates[0]
			if p.Property != core.AttrText || p.Value != tt.expected || p.Mode != MatchContains {
				t.Errorf("got %+v, want text contains %q", p, tt.expected)
			}
		})
	}
}

func TestSelectorUnmarshalYAMLStruct(t *testing.T) {
	doc := `
container:
  id: list
pattern:
  text: item
  child:
    class: android.widget.TextView
instance: 2
after:
  text: Header
`
	var s Selector
	if err := yaml.Unmarshal([]byte(doc), &s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Container == nil || len(s.Container.Predicates) != 1 {
		t.Fatal("expected container with one predicate")
	}
	if s.Pattern == nil || s.Pattern.Child == nil {
		t.Fatal("expected pattern body with child link")
	}
	if s.Instance != 2 {
		t.Errorf("got instance %d, want 2", s.Instance)
	}
	if s.After == nil {
		t.Error("expected after sub-selector")
	}
}

func TestSelectorUnmarshalYAMLStateFilters(t *testing.T) {
	doc := `
text: Login
enabled: true
checked: false
index: 1
`
	var s Selector
	if err := yaml.Unmarshal([]byte(doc), &s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Predicates) != 4 {
		t.Fatalf("expected 4 predicates, got %d: %v", len(s.Predicates), s.Predicates)
	}

	n := &fakeNode{attrs: map[string]string{
		core.AttrText:    "Login",
		core.AttrEnabled: "true",
		core.AttrChecked: "false",
	}}
	if !s.MatchesNode(n, 1) {
		t.Error("expected node at index 1 to match")
	}
	if s.MatchesNode(n, 0) {
		t.Error("expected node at index 0 to fail the index predicate")
	}
}

func TestParseValidates(t *testing.T) {
	if _, err := Parse([]byte("text: Login")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Pattern link without a body is a construction defect.
	_, err := Parse([]byte("pattern: {}"))
	if !errors.Is(err, core.ErrMalformedSelector) {
		t.Errorf("expected ErrMalformedSelector, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		sel     *Selector
		wantErr bool
	}{
		{"empty", New(), false},
		{"plain text", ByText("x"), false},
		{"pattern with body", New().WithPattern(ByText("item"), 0), false},
		{"pattern without body", New().WithPattern(New(), 0), true},
		{"negative instance", New().WithPattern(ByText("item"), -1), true},
		{"instance without pattern", &Selector{Instance: 1}, true},
		{"child and parent on one frame", ByText("x").WithChild(ByText("y")).FromParent(ByText("z")), true},
		{"bad regex", New().TextMatches("("), true},
		{"nested container", ByText("x").InContainer(ByText("a").InContainer(ByText("b"))), false},
		{"container below top frame", ByText("x").WithChild(ByText("y").InContainer(ByText("c"))), true},
		{"range with plain bounds", ByText("x").BoundedAfter(ByText("a")).BoundedBefore(ByText("b")), false},
		{"range in container scope", ByText("x").BoundedAfter(ByText("a")).InContainer(ByID("panel")), false},
		{"child link on range frame", ByText("row").WithChild(ByText("wanted")).BoundedAfter(ByText("mark")), true},
		{"parent link on range frame", ByText("row").FromParent(ByText("list")).BoundedBefore(ByText("mark")), true},
		{"pattern with range bounds", New().WithPattern(ByText("item"), 0).BoundedAfter(ByText("mark")), true},
		{"child link inside after bound", ByText("x").BoundedAfter(ByText("mark").WithChild(ByText("y"))), true},
		{"child link inside before bound", ByText("x").BoundedBefore(ByText("mark").WithChild(ByText("y"))), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sel.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.wantErr && !errors.Is(err, core.ErrMalformedSelector) {
				t.Errorf("expected ErrMalformedSelector, got %v", err)
			}
		})
	}
}

func TestClone(t *testing.T) {
	orig := ByText("Login").
		InContainer(ByID("panel")).
		WithPattern(ByText("item").WithChild(ByText("label")), 3)

	clone := orig.Clone()

	// Deep copy: mutating the clone must not touch the original.
	clone.Pattern.Child.Predicates[0].Value = "changed"
	clone.Predicates = append(clone.Predicates, Predicate{Property: core.AttrID, Value: "x"})

	if orig.Pattern.Child.Predicates[0].Value != "label" {
		t.Error("clone shares pattern body predicates with the original")
	}
	if len(orig.Predicates) != 1 {
		t.Error("clone shares the predicate slice with the original")
	}
	if clone.Instance != 3 {
		t.Errorf("got instance %d, want 3", clone.Instance)
	}

	var nilSel *Selector
	if nilSel.Clone() != nil {
		t.Error("cloning nil should yield nil")
	}
}

func TestPredicateModes(t *testing.T) {
	tests := []struct {
		name string
		p    Predicate
		s    string
		want bool
	}{
		{"contains hit", Predicate{Value: "log", Mode: MatchContains}, "Login", true},
		{"contains miss", Predicate{Value: "logout", Mode: MatchContains}, "Login", false},
		{"contains default mode", Predicate{Value: "LOGIN"}, "login button", true},
		{"equals hit", Predicate{Value: "Login", Mode: MatchEquals}, "Login", true},
		{"equals case miss", Predicate{Value: "login", Mode: MatchEquals}, "Login", false},
		{"startsWith hit", Predicate{Value: "log", Mode: MatchStartsWith}, "Login", true},
		{"startsWith miss", Predicate{Value: "gin", Mode: MatchStartsWith}, "Login", false},
		{"regex hit", Predicate{Value: "^Log.n$", Mode: MatchRegex}, "Login", true},
		{"regex newline stripped", Predicate{Value: "^Sign Up$", Mode: MatchRegex}, "Sign\nUp", true},
		{"regex miss", Predicate{Value: "^x$", Mode: MatchRegex}, "Login", false},
		{"invalid regex never matches", Predicate{Value: "(", Mode: MatchRegex}, "(", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.MatchString(tt.s); got != tt.want {
				t.Errorf("MatchString(%q) = %v, want %v", tt.s, got, tt.want)
			}
		})
	}
}

func TestPredicateMissingAttribute(t *testing.T) {
	n := &fakeNode{attrs: map[string]string{core.AttrText: "Login"}}
	p := Predicate{Property: core.AttrDesc, Value: "anything", Mode: MatchContains}
	if p.Matches(n, 0) {
		t.Error("predicate on an absent attribute must not match")
	}
}

func TestDescribe(t *testing.T) {
	s := ByText("Login").InContainer(ByID("panel")).WithPattern(ByText("item"), 1)
	d := s.Describe()
	for _, want := range []string{`text="Login"`, `container(`, `pattern[1](`} {
		if !contains(d, want) {
			t.Errorf("Describe() = %q, missing %q", d, want)
		}
	}

	if New().Describe() != "*" {
		t.Errorf("empty selector should describe as *, got %q", New().Describe())
	}
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
