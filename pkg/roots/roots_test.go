package roots

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/devicelab-dev/uiquery/pkg/core"
	"github.com/devicelab-dev/uiquery/pkg/hierarchy"
)

func singleWindowSnapshot(text string) *hierarchy.Snapshot {
	root := hierarchy.NewElement(map[string]string{core.AttrText: text})
	return hierarchy.NewSnapshot(&hierarchy.Window{Title: text, Active: true, Root: root})
}

func TestSupplierFirstAttemptSucceeds(t *testing.T) {
	sup := NewSupplier(&StaticSource{Snap: singleWindowSnapshot("Home")})

	nodes, err := sup.Roots(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("expected 1 root, got %d", len(nodes))
	}
}

func TestSupplierRetriesTransientFailure(t *testing.T) {
	calls := 0
	src := SourceFunc(func(ctx context.Context) (*hierarchy.Snapshot, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("not ready")
		}
		return singleWindowSnapshot("Home"), nil
	})

	sup := NewSupplier(src, WithAttempts(4), WithInterval(time.Millisecond))
	nodes, err := sup.Roots(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
	if len(nodes) != 1 {
		t.Errorf("expected 1 root, got %d", len(nodes))
	}
}

func TestSupplierExhaustsRetries(t *testing.T) {
	calls := 0
	src := SourceFunc(func(ctx context.Context) (*hierarchy.Snapshot, error) {
		calls++
		return nil, errors.New("never ready")
	})

	sup := NewSupplier(src, WithAttempts(2), WithInterval(time.Millisecond))
	_, err := sup.Roots(context.Background(), "")
	if !errors.Is(err, core.ErrTreeUnavailable) {
		t.Fatalf("expected ErrTreeUnavailable, got %v", err)
	}
	if calls != 3 { // initial attempt + 2 retries
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestSupplierEmptySnapshotRetried(t *testing.T) {
	calls := 0
	src := SourceFunc(func(ctx context.Context) (*hierarchy.Snapshot, error) {
		calls++
		if calls == 1 {
			return hierarchy.NewSnapshot(), nil
		}
		return singleWindowSnapshot("Home"), nil
	})

	sup := NewSupplier(src, WithAttempts(2), WithInterval(time.Millisecond))
	nodes, err := sup.Roots(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
	if len(nodes) != 1 {
		t.Errorf("expected 1 root, got %d", len(nodes))
	}
}

func TestSupplierHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := SourceFunc(func(ctx context.Context) (*hierarchy.Snapshot, error) {
		return nil, errors.New("not ready")
	})
	sup := NewSupplier(src, WithAttempts(10), WithInterval(50*time.Millisecond))

	start := time.Now()
	_, err := sup.Roots(ctx, "")
	if err == nil {
		t.Fatal("expected error with cancelled context")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("cancelled acquisition took too long: %v", elapsed)
	}
}

func TestSupplierWindowHint(t *testing.T) {
	home := &hierarchy.Window{Title: "Home", Active: true,
		Root: hierarchy.NewElement(map[string]string{core.AttrText: "home"})}
	settings := &hierarchy.Window{Title: "Settings",
		Root: hierarchy.NewElement(map[string]string{core.AttrText: "settings"})}
	snap := hierarchy.NewSnapshot(home, settings)

	sup := NewSupplier(&StaticSource{Snap: snap}, WithAttempts(0))

	nodes, err := sup.Roots(context.Background(), "Settings")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 1 || nodes[0].WindowTitle() != "Settings" {
		t.Errorf("hinted roots = %v", nodes)
	}

	// Unmatched hint exhausts retries and reports the tree unavailable.
	_, err = sup.Roots(context.Background(), "NoSuchWindow")
	if !errors.Is(err, core.ErrTreeUnavailable) {
		t.Errorf("expected ErrTreeUnavailable, got %v", err)
	}
	if !errors.Is(err, core.ErrNoRoots) {
		t.Errorf("expected ErrNoRoots as cause, got %v", err)
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dump.xml")
	dump := `<hierarchy><node text="Home" class="android.widget.FrameLayout"/></hierarchy>`
	if err := os.WriteFile(path, []byte(dump), 0644); err != nil {
		t.Fatal(err)
	}

	src := &FileSource{Path: path}
	snap, err := src.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Windows) != 1 || snap.Windows[0].Root.Text != "Home" {
		t.Errorf("unexpected snapshot: %+v", snap.Windows)
	}

	if _, err := (&FileSource{Path: filepath.Join(dir, "missing.xml")}).Snapshot(context.Background()); err == nil {
		t.Error("expected error for a missing dump file")
	}
}
