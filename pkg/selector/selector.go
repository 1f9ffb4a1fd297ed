package selector

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/devicelab-dev/uiquery/pkg/core"
)

// Selector is one frame of a compound selector: an ordered set of
// attribute predicates plus optional structural links. A selector is
// immutable during a search; the engine clones it up front and advances
// through the links with local cursors, never rewriting the caller's
// structure.
type Selector struct {
	Predicates []Predicate

	// Structural links. Child and Parent extend the predicate chain
	// downward and upward; Container scopes the search to a subtree;
	// Pattern selects the Instance-th occurrence of a repeated body;
	// Before and After bound the primary match in document order.
	Child     *Selector
	Parent    *Selector
	Container *Selector
	Pattern   *Selector
	Instance  int
	Before    *Selector
	After     *Selector
}

// New returns an empty selector. A selector with no predicates matches
// any node, which is useful as a scope for pure pattern searches.
func New() *Selector {
	return &Selector{}
}

// ByText returns a selector matching nodes whose text contains v.
func ByText(v string) *Selector {
	return New().Text(v)
}

// ByID returns a selector matching nodes whose resource id contains v.
func ByID(v string) *Selector {
	return New().ID(v)
}

func (s *Selector) add(property, value string, mode Match) *Selector {
	s.Predicates = append(s.Predicates, Predicate{Property: property, Value: value, Mode: mode})
	return s
}

// Text adds a case-insensitive contains predicate on the text attribute.
func (s *Selector) Text(v string) *Selector { return s.add(core.AttrText, v, MatchContains) }

// TextMatches adds a regular-expression predicate on the text attribute.
func (s *Selector) TextMatches(expr string) *Selector { return s.add(core.AttrText, expr, MatchRegex) }

// TextExact adds an exact predicate on the text attribute.
func (s *Selector) TextExact(v string) *Selector { return s.add(core.AttrText, v, MatchEquals) }

// ID adds a contains predicate on the resource id attribute.
func (s *Selector) ID(v string) *Selector { return s.add(core.AttrID, v, MatchContains) }

// Class adds an exact predicate on the class attribute.
func (s *Selector) Class(v string) *Selector { return s.add(core.AttrClass, v, MatchEquals) }

// Desc adds a contains predicate on the content description attribute.
func (s *Selector) Desc(v string) *Selector { return s.add(core.AttrDesc, v, MatchContains) }

// Pkg adds an exact predicate on the package attribute.
func (s *Selector) Pkg(v string) *Selector { return s.add(core.AttrPackage, v, MatchEquals) }

// Index adds a sibling-index predicate.
func (s *Selector) Index(i int) *Selector { return s.add(PropIndex, strconv.Itoa(i), MatchEquals) }

// State adds an exact predicate on a boolean attribute such as enabled,
// checked or selected.
func (s *Selector) State(property string, v bool) *Selector {
	return s.add(property, strconv.FormatBool(v), MatchEquals)
}

// WithChild links a child selector that must match among descendants of
// a node matched by this frame.
func (s *Selector) WithChild(c *Selector) *Selector {
	s.Child = c
	return s
}

// FromParent links a parent selector resolved starting at the matched
// node's parent.
func (s *Selector) FromParent(p *Selector) *Selector {
	s.Parent = p
	return s
}

// InContainer scopes the search to the subtree rooted at the container's
// match. The container itself is never the result.
func (s *Selector) InContainer(c *Selector) *Selector {
	s.Container = c
	return s
}

// WithPattern links a repeated-group body and the zero-based instance of
// it to select.
func (s *Selector) WithPattern(body *Selector, instance int) *Selector {
	s.Pattern = body
	s.Instance = instance
	return s
}

// BoundedBefore requires the primary match to appear before a node
// matching b in document order.
func (s *Selector) BoundedBefore(b *Selector) *Selector {
	s.Before = b
	return s
}

// BoundedAfter requires the primary match to appear after a node
// matching a in document order.
func (s *Selector) BoundedAfter(a *Selector) *Selector {
	s.After = a
	return s
}

// MatchesNode evaluates this frame's predicates (only) against a node.
// Structural links are the engine's concern.
func (s *Selector) MatchesNode(n core.Node, siblingIndex int) bool {
	for _, p := range s.Predicates {
		if !p.Matches(n, siblingIndex) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the selector, including all linked
// sub-selectors. The engine clones before every search so in-progress
// traversal can never corrupt the caller's selector.
func (s *Selector) Clone() *Selector {
	if s == nil {
		return nil
	}
	out := &Selector{Instance: s.Instance}
	if len(s.Predicates) > 0 {
		out.Predicates = make([]Predicate, len(s.Predicates))
		copy(out.Predicates, s.Predicates)
	}
	out.Child = s.Child.Clone()
	out.Parent = s.Parent.Clone()
	out.Container = s.Container.Clone()
	out.Pattern = s.Pattern.Clone()
	out.Before = s.Before.Clone()
	out.After = s.After.Clone()
	return out
}

// hasStructure reports whether the selector carries any structural link.
func (s *Selector) hasStructure() bool {
	return s.Child != nil ||
		s.Parent != nil ||
		s.Container != nil ||
		s.Pattern != nil ||
		s.Before != nil ||
		s.After != nil
}

// isEmpty reports whether the selector carries neither predicates nor
// structural links.
func (s *Selector) isEmpty() bool {
	return len(s.Predicates) == 0 &&
		s.Child == nil &&
		s.Parent == nil &&
		s.Container == nil &&
		s.Pattern == nil &&
		s.Before == nil &&
		s.After == nil
}

// Validate checks the selector for construction defects: a pattern link
// with an empty body, a negative instance, conflicting child and parent
// links on one frame, structural links on a range-bounded frame or
// inside a range bound, or an uncompilable regex predicate. These are
// caller defects, reported distinctly from "no match found".
func (s *Selector) Validate() error {
	return s.validate(true)
}

func (s *Selector) validate(root bool) error {
	if s == nil {
		return nil
	}
	if s.Pattern != nil && s.Pattern.isEmpty() {
		return core.ErrMalformedSelector.WithMessage("pattern link without a body")
	}
	if s.Pattern == nil && s.Instance != 0 {
		return core.ErrMalformedSelector.WithMessage("instance set without a pattern link")
	}
	if s.Instance < 0 {
		return core.ErrMalformedSelector.WithMessage("negative pattern instance")
	}
	if s.Child != nil && s.Parent != nil {
		return core.ErrMalformedSelector.WithMessage("child and parent links on the same frame")
	}
	if s.Before != nil || s.After != nil {
		// The range scan evaluates the primary and its bounds per node,
		// predicates only; structural links there would be dead weight.
		if s.Child != nil || s.Parent != nil {
			return core.ErrMalformedSelector.WithMessage("child or parent link on a range-bounded frame")
		}
		if s.Pattern != nil {
			return core.ErrMalformedSelector.WithMessage("pattern combined with range bounds")
		}
		for _, gate := range []*Selector{s.Before, s.After} {
			if gate != nil && gate.hasStructure() {
				return core.ErrMalformedSelector.WithMessage("range bound must be a plain predicate frame")
			}
		}
	}
	if !root && s.Container != nil {
		// Containers nest only through other containers.
		return core.ErrMalformedSelector.WithMessage("container link below the top frame")
	}
	for _, p := range s.Predicates {
		if p.Mode == MatchRegex {
			if _, err := regexp.Compile(p.Value); err != nil {
				return core.ErrMalformedSelector.WithMessage("invalid regex predicate").WithCause(err)
			}
		}
		if p.Property == PropIndex {
			if _, err := strconv.Atoi(p.Value); err != nil {
				return core.ErrMalformedSelector.WithMessage("non-numeric index predicate").WithCause(err)
			}
		}
	}
	for _, sub := range []*Selector{s.Child, s.Parent, s.Pattern, s.Before, s.After} {
		if err := sub.validate(false); err != nil {
			return err
		}
	}
	// Container chains validate as fresh top frames.
	if err := s.Container.validate(true); err != nil {
		return err
	}
	return nil
}

// Describe returns a human-readable rendering of the compound selector.
func (s *Selector) Describe() string {
	if s == nil {
		return ""
	}
	var parts []string
	for _, p := range s.Predicates {
		parts = append(parts, p.String())
	}
	if s.Container != nil {
		parts = append(parts, "container("+s.Container.Describe()+")")
	}
	if s.Pattern != nil {
		parts = append(parts, "pattern["+strconv.Itoa(s.Instance)+"]("+s.Pattern.Describe()+")")
	}
	if s.Child != nil {
		parts = append(parts, "child("+s.Child.Describe()+")")
	}
	if s.Parent != nil {
		parts = append(parts, "parent("+s.Parent.Describe()+")")
	}
	if s.After != nil {
		parts = append(parts, "after("+s.After.Describe()+")")
	}
	if s.Before != nil {
		parts = append(parts, "before("+s.Before.Describe()+")")
	}
	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

// String implements fmt.Stringer.
func (s *Selector) String() string {
	return s.Describe()
}
