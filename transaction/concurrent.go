package transaction

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dumbnose/treedb/change"
	"github.com/dumbnose/treedb/tree"
)

// Run is one independent transaction's script: apply every change in
// order against a fresh Transaction, then close it.
type Run struct {
	Changes []change.Change
}

// Result is one Run's outcome.
type Result struct {
	Outcome Outcome
	View    tree.Snapshot
}

// ApplyConcurrently runs each Run as its own Transaction against the same
// immutable baseline, concurrently. This is safe precisely because
// spec.md §5 makes the baseline Snapshot immutable and each Transaction's
// `view`/`detached` private to itself — there is no shared mutable state
// between runs, so no synchronization beyond waiting for completion is
// needed. Grounded on the teacher's calculateNodeIDsHelper, which fans
// independent subtree work out across goroutines via errgroup.Group.
func ApplyConcurrently(ctx context.Context, baseline tree.Snapshot, runs []Run) ([]Result, error) {
	results := make([]Result, len(runs))
	g, ctx := errgroup.WithContext(ctx)
	for i, run := range runs {
		i, run := i, run
		g.Go(func() error {
			txn := New(baseline)
			for _, c := range run.Changes {
				if txn.Apply(ctx, c) != Applied {
					break
				}
			}
			outcome, view := txn.Close(ctx)
			results[i] = Result{Outcome: outcome, View: view}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
