// Package query implements selector resolution over a UI accessibility
// tree: compound-selector decomposition, plain and pattern matching with
// counting and instance selection, and before/after range-bounded search.
package query

import (
	"context"
	"sync"

	"github.com/devicelab-dev/uiquery/pkg/core"
	"github.com/devicelab-dev/uiquery/pkg/logger"
	"github.com/devicelab-dev/uiquery/pkg/roots"
	"github.com/devicelab-dev/uiquery/pkg/selector"
)

// DefaultMaxEvents bounds the recorded event text cache.
const DefaultMaxEvents = 64

// ScanMode selects which recorded event texts an occurrence scan
// considers. There is no default on purpose: callers choose explicitly.
type ScanMode int

const (
	// ScanAll scans every recorded occurrence.
	ScanAll ScanMode = iota
	// ScanLatest scans only the most recently recorded occurrence.
	ScanLatest
)

// Engine resolves selectors against trees supplied by a root supplier.
// One engine serves one search at a time: a single lock serializes
// searches against event delivery, so per-search state is never observed
// half-updated. The traversal state itself is a per-call value threaded
// through the recursion, so the engine carries no match counters between
// calls.
type Engine struct {
	supplier roots.Supplier

	mu        sync.Mutex
	events    []string
	maxEvents int
}

// New creates an engine over the given root supplier. A nil supplier is
// allowed for callers that only ever use the SearchFrom/CountFrom entry
// points; the acquisition paths then report ErrInvalidConfig.
func New(supplier roots.Supplier) *Engine {
	return &Engine{
		supplier:  supplier,
		maxEvents: DefaultMaxEvents,
	}
}

// Search resolves the selector against the supplier's candidate roots
// and returns the first match. A selector that matches nothing yields
// ErrElementNotFound; a construction defect yields ErrMalformedSelector;
// acquisition exhaustion yields ErrTreeUnavailable. All three behave as
// "no match" but stay distinguishable for diagnostics.
func (e *Engine) Search(ctx context.Context, sel *selector.Selector, windowHint string) (core.Node, error) {
	work, err := e.prepare(sel)
	if err != nil {
		return nil, err
	}
	if e.supplier == nil {
		return nil, core.ErrInvalidConfig.WithMessage("engine has no root supplier")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	candidates, err := e.supplier.Roots(ctx, windowHint)
	if err != nil {
		return nil, err
	}

	for _, root := range candidates {
		f := &frame{}
		if found := e.resolveCompound(work, root, f, false); found != nil {
			return found, nil
		}
	}
	logger.Debug("selector %s matched nothing across %d root(s)", work.Describe(), len(candidates))
	return nil, core.ErrElementNotFound
}

// SearchFrom resolves the selector against an explicit root node,
// bypassing root acquisition.
func (e *Engine) SearchFrom(sel *selector.Selector, root core.Node) (core.Node, error) {
	work, err := e.prepare(sel)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, core.ErrNoRoots
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	f := &frame{}
	if found := e.resolveCompound(work, root, f, false); found != nil {
		return found, nil
	}
	return nil, core.ErrElementNotFound
}

// Count counts occurrences of the selector's pattern body under the
// first candidate root. A selector without a pattern link is counted as
// if it were the pattern body itself, scoped by its container. Range
// bounds have no counting semantics and are rejected.
func (e *Engine) Count(ctx context.Context, sel *selector.Selector, windowHint string) (int, error) {
	work, err := e.prepareCount(sel)
	if err != nil {
		return 0, err
	}
	if e.supplier == nil {
		return 0, core.ErrInvalidConfig.WithMessage("engine has no root supplier")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	candidates, err := e.supplier.Roots(ctx, windowHint)
	if err != nil {
		return 0, err
	}
	if len(candidates) == 0 {
		return 0, core.ErrNoRoots
	}

	// Counting never terminates early, so scanning every candidate root
	// would double-count overlapping windows; the first (active) root is
	// the counting scope.
	return e.countFrom(work, candidates[0]), nil
}

// CountFrom counts occurrences under an explicit root node.
func (e *Engine) CountFrom(sel *selector.Selector, root core.Node) (int, error) {
	work, err := e.prepareCount(sel)
	if err != nil {
		return 0, err
	}
	if root == nil {
		return 0, core.ErrNoRoots
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.countFrom(work, root), nil
}

func (e *Engine) countFrom(work *selector.Selector, root core.Node) int {
	counted := work
	if counted.Pattern == nil {
		// Treat the whole selector as the repeated body.
		body := counted.Clone()
		body.Container = nil
		counted = &selector.Selector{
			Container: counted.Container,
			Pattern:   body,
		}
	}
	f := &frame{}
	e.resolveCompound(counted, root, f, true)
	return f.counter
}

// prepare validates the caller's selector and clones it so in-progress
// traversal can never touch the caller's structure.
func (e *Engine) prepare(sel *selector.Selector) (*selector.Selector, error) {
	if sel == nil {
		return nil, core.ErrMalformedSelector.WithMessage("nil selector")
	}
	if err := sel.Validate(); err != nil {
		logger.Warn("rejected selector %s: %v", sel.Describe(), err)
		return nil, err
	}
	return sel.Clone(), nil
}

// prepareCount is prepare plus the counting-only restriction: a
// before/after bound cannot scope a count, because the pattern walk has
// no document-order gate to honor it with.
func (e *Engine) prepareCount(sel *selector.Selector) (*selector.Selector, error) {
	work, err := e.prepare(sel)
	if err != nil {
		return nil, err
	}
	if work.Before != nil || work.After != nil {
		return nil, core.ErrMalformedSelector.WithMessage("range bounds cannot be counted")
	}
	return work, nil
}

// RecordEvent records an event text delivered by the platform listener
// plumbing. Shares the engine lock with searches, so a search in
// progress never observes a half-updated cache.
func (e *Engine) RecordEvent(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.events = append(e.events, text)
	if len(e.events) > e.maxEvents {
		e.events = e.events[len(e.events)-e.maxEvents:]
	}
}

// LastTraversedText returns the most recently recorded event text.
func (e *Engine) LastTraversedText() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.events) == 0 {
		return ""
	}
	return e.events[len(e.events)-1]
}

// EventOccurrences counts recorded event texts matching the predicate.
// The mode is explicit: ScanAll considers every cached occurrence,
// ScanLatest only the newest.
func (e *Engine) EventOccurrences(p selector.Predicate, mode ScanMode) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.events) == 0 {
		return 0
	}

	scan := e.events
	if mode == ScanLatest {
		scan = e.events[len(e.events)-1:]
	}
	count := 0
	for _, text := range scan {
		if p.MatchString(text) {
			count++
		}
	}
	return count
}
