// Package roots supplies candidate root nodes to the query engine. The
// platform is momentarily not ready to deliver a tree more often than
// one would like, so acquisition retries transient failures a bounded
// number of times with a fixed interval before giving up.
package roots

import (
	"context"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/devicelab-dev/uiquery/pkg/core"
	"github.com/devicelab-dev/uiquery/pkg/hierarchy"
	"github.com/devicelab-dev/uiquery/pkg/logger"
)

// Retry defaults, matching the platform's usual settle time.
const (
	DefaultAttempts = 4
	DefaultInterval = 250 * time.Millisecond
)

// Supplier provides candidate root nodes in search order. The engine
// tries them in the returned order and accepts the first one yielding a
// match.
type Supplier interface {
	Roots(ctx context.Context, windowHint string) ([]core.Node, error)
}

// Source captures a fresh tree snapshot. Every call must re-acquire:
// nodes from an earlier snapshot are invalid once the tree refreshes.
type Source interface {
	Snapshot(ctx context.Context) (*hierarchy.Snapshot, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) (*hierarchy.Snapshot, error)

// Snapshot implements Source.
func (f SourceFunc) Snapshot(ctx context.Context) (*hierarchy.Snapshot, error) {
	return f(ctx)
}

// FileSource reads a hierarchy dump from disk, re-reading on every call.
type FileSource struct {
	Path string
}

// Snapshot implements Source.
func (s *FileSource) Snapshot(ctx context.Context) (*hierarchy.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path) //#nosec G304 -- user-provided dump file
	if err != nil {
		return nil, err
	}
	return hierarchy.ParseString(string(data))
}

// StaticSource serves a fixed snapshot. Test and tooling use.
type StaticSource struct {
	Snap *hierarchy.Snapshot
}

// Snapshot implements Source.
func (s *StaticSource) Snapshot(ctx context.Context) (*hierarchy.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Snap, nil
}

// SnapshotSupplier turns a Source into a Supplier with bounded,
// fixed-interval retry.
type SnapshotSupplier struct {
	source   Source
	attempts uint64
	interval time.Duration
}

// Option configures a SnapshotSupplier.
type Option func(*SnapshotSupplier)

// WithAttempts sets the number of retries after the initial attempt.
func WithAttempts(n int) Option {
	return func(s *SnapshotSupplier) {
		if n >= 0 {
			s.attempts = uint64(n)
		}
	}
}

// WithInterval sets the fixed wait between attempts.
func WithInterval(d time.Duration) Option {
	return func(s *SnapshotSupplier) {
		if d > 0 {
			s.interval = d
		}
	}
}

// NewSupplier creates a retrying supplier over the given source.
func NewSupplier(source Source, opts ...Option) *SnapshotSupplier {
	s := &SnapshotSupplier{
		source:   source,
		attempts: DefaultAttempts,
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Roots implements Supplier. Transient acquisition failures and empty
// snapshots are retried; exhaustion surfaces as ErrTreeUnavailable so
// callers can tell "platform never delivered" from an ordinary no-match.
func (s *SnapshotSupplier) Roots(ctx context.Context, windowHint string) ([]core.Node, error) {
	var nodes []core.Node

	attempt := 0
	op := func() error {
		attempt++
		snap, err := s.source.Snapshot(ctx)
		if err != nil {
			logger.Debug("snapshot attempt %d failed: %v", attempt, err)
			return err
		}
		nodes = snap.Roots(windowHint)
		if len(nodes) == 0 {
			logger.Debug("snapshot attempt %d yielded no roots (hint=%q)", attempt, windowHint)
			return core.ErrNoRoots
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.interval), s.attempts), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, core.ErrTreeUnavailable.WithCause(err)
	}
	return nodes, nil
}
