package query

import (
	"github.com/devicelab-dev/uiquery/pkg/core"
	"github.com/devicelab-dev/uiquery/pkg/logger"
	"github.com/devicelab-dev/uiquery/pkg/selector"
)

// frame is the working state of one top-level resolution: the pattern
// match counter, the instance countdown, and the range-mode flags. It is
// created per search call and threaded through the recursion; nothing in
// it survives the call.
type frame struct {
	counter int       // pattern occurrences seen so far
	indexer int       // countdown to the requested instance; -1 counts forever
	started bool      // after-bound satisfied (or absent)
	ended   bool      // before-bound satisfied
	matched core.Node // current best range candidate
}

// resolveCompound decomposes a compound selector: container scope first,
// then pattern or range or regular matching, then residual child/parent
// refinement on top of a pattern match. Any stage producing nothing
// short-circuits the whole resolution.
func (e *Engine) resolveCompound(sel *selector.Selector, root core.Node, f *frame, counting bool) core.Node {
	if root == nil {
		return nil
	}

	scope := root
	if sel.Container != nil {
		scope = e.resolveContainer(sel.Container, scope)
		if scope == nil {
			logger.Debug("container %s matched nothing", sel.Container.Describe())
			return nil
		}
	}

	var found core.Node
	switch {
	case sel.Pattern != nil:
		f.counter = 0
		if counting {
			f.indexer = -1 // never reaches zero: stop only at tree exhaustion
		} else {
			f.indexer = sel.Instance
		}
		found = e.matchPattern(sel.Pattern, sel.Pattern, scope, siblingIndex(scope), 0, f)
		if counting {
			return nil // the counter is the output
		}
		if found != nil && (sel.Child != nil || sel.Parent != nil) {
			found = e.refine(sel, found)
		}
	case sel.Before != nil || sel.After != nil:
		found = e.matchRange(sel, scope, f)
	default:
		found = e.matchRegular(sel, scope, siblingIndex(scope), 0)
	}
	return found
}

// resolveContainer resolves a container chain, innermost scope first.
func (e *Engine) resolveContainer(c *selector.Selector, root core.Node) core.Node {
	if c.Container != nil {
		root = e.resolveContainer(c.Container, root)
		if root == nil {
			return nil
		}
	}
	return e.matchRegular(c, root, siblingIndex(root), 0)
}

// refine re-runs the regular matcher for child/parent links layered on
// top of an already-matched node.
func (e *Engine) refine(sel *selector.Selector, node core.Node) core.Node {
	if sel.Child != nil {
		nilLogged := false
		for i := 0; i < node.ChildCount(); i++ {
			child := node.ChildAt(i)
			if child == nil {
				nilLogged = logNilChild(nilLogged, 0)
				continue
			}
			if !child.Visible() {
				continue
			}
			if found := e.matchRegular(sel.Child, child, i, 1); found != nil {
				return found
			}
		}
		return nil
	}

	parent := node.Parent()
	if parent == nil {
		return nil
	}
	return e.matchRegular(sel.Parent, parent, siblingIndex(parent), 0)
}

// matchRegular is the plain depth-first matcher for a linear predicate
// chain. At a matching node the cursor advances along the chain's child
// or parent link; a node with no further link is the result. Invisible
// children are a hard prune; null child slots are skipped with a
// diagnostic.
func (e *Engine) matchRegular(sel *selector.Selector, node core.Node, index, depth int) core.Node {
	if sel == nil || node == nil {
		return nil
	}

	cur := sel
	if cur.MatchesNode(node, index) {
		switch {
		case cur.Child != nil:
			// The rest of the chain must match among descendants.
			cur = cur.Child
		case cur.Parent != nil:
			parent := node.Parent()
			if parent == nil {
				logger.Debug("parent link at depth %d: node has no parent", depth)
				return nil
			}
			return e.matchRegular(cur.Parent, parent, siblingIndex(parent), depth-1)
		default:
			return node
		}
	}

	nilLogged := false
	for i := 0; i < node.ChildCount(); i++ {
		child := node.ChildAt(i)
		if child == nil {
			nilLogged = logNilChild(nilLogged, depth)
			continue
		}
		if !child.Visible() {
			continue
		}
		if found := e.matchRegular(cur, child, i, depth+1); found != nil {
			return found
		}
	}
	return nil
}

// matchPattern walks like the regular matcher but treats a completed
// body match as one occurrence: either it is the requested instance, or
// the counter advances and the cursor resets to the start of the body so
// the next occurrence matches fresh.
func (e *Engine) matchPattern(pattern, cur *selector.Selector, node core.Node, index, depth int, f *frame) core.Node {
	if node == nil {
		return nil
	}

	if cur.MatchesNode(node, index) {
		switch {
		case cur.Child != nil:
			cur = cur.Child
		case cur.Parent != nil:
			parent := node.Parent()
			if parent == nil {
				return nil
			}
			return e.matchPattern(pattern, cur.Parent, parent, siblingIndex(parent), depth-1, f)
		default:
			if f.indexer == 0 {
				return node
			}
			f.counter++
			f.indexer--
			cur = pattern
		}
	}

	nilLogged := false
	for i := 0; i < node.ChildCount(); i++ {
		child := node.ChildAt(i)
		if child == nil {
			nilLogged = logNilChild(nilLogged, depth)
			continue
		}
		if !child.Visible() {
			continue
		}
		if found := e.matchPattern(pattern, cur, child, i, depth+1, f); found != nil {
			return found
		}
	}
	return nil
}

// matchRange scans the tree in document order under the range state
// machine and returns the candidate only when every configured bound was
// satisfied.
func (e *Engine) matchRange(sel *selector.Selector, root core.Node, f *frame) core.Node {
	e.walkRange(sel, root, siblingIndex(root), 0, f)

	if sel.After != nil && !f.started {
		logger.Debug("after bound %s never matched", sel.After.Describe())
		return nil
	}
	if sel.Before != nil && !f.ended {
		return nil
	}
	return f.matched
}

// walkRange visits one node of the document-order scan. Returns true
// once every configured bound is satisfied and a candidate is held, so
// the scan can stop early.
func (e *Engine) walkRange(sel *selector.Selector, node core.Node, index, depth int, f *frame) bool {
	if node == nil {
		return false
	}

	if sel.After != nil && !f.started {
		// Nothing counts until the after bound fires; the bound's own
		// node is never the candidate.
		if sel.After.MatchesNode(node, index) {
			f.started = true
		}
	} else {
		if sel.MatchesNode(node, index) {
			f.matched = node // last primary match wins
		}
		if f.matched != nil && sel.Before != nil && !f.ended {
			if node != f.matched && sel.Before.MatchesNode(node, index) {
				f.ended = true
			}
		}
	}

	if f.matched != nil &&
		(sel.After == nil || f.started) &&
		(sel.Before == nil || f.ended) {
		return true
	}

	nilLogged := false
	for i := 0; i < node.ChildCount(); i++ {
		child := node.ChildAt(i)
		if child == nil {
			nilLogged = logNilChild(nilLogged, depth)
			continue
		}
		if !child.Visible() {
			continue
		}
		if e.walkRange(sel, child, i, depth+1, f) {
			return true
		}
	}
	return false
}

// logNilChild records an inconsistent child slot, once per parent.
func logNilChild(already bool, depth int) bool {
	if !already {
		logger.Debug("null child slot at depth %d, continuing with remaining siblings", depth+1)
	}
	return true
}

// siblingIndex locates a node's position among its parent's children.
// Roots sit at index 0.
func siblingIndex(n core.Node) int {
	parent := n.Parent()
	if parent == nil {
		return 0
	}
	for i := 0; i < parent.ChildCount(); i++ {
		if parent.ChildAt(i) == n {
			return i
		}
	}
	return 0
}
