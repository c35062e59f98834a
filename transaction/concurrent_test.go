package transaction_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dumbnose/treedb/change"
	"github.com/dumbnose/treedb/ids"
	"github.com/dumbnose/treedb/maybe"
	"github.com/dumbnose/treedb/transaction"
	"github.com/dumbnose/treedb/tree"
)

// TestMain verifies the errgroup-based ApplyConcurrently leaves no
// goroutines running past test completion.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestApplyConcurrentlyIndependentRuns(t *testing.T) {
	root := ids.GenerateNodeID()
	baseline, err := tree.New(root, map[ids.NodeID]tree.SnapshotNode{
		root: {ID: root, Definition: "root", Traits: map[ids.TraitLabel][]ids.NodeID{"L": {}}, Payload: maybe.Nothing[[]byte]()},
	})
	require.NoError(t, err)

	const numRuns = 8
	runs := make([]transaction.Run, numRuns)
	for i := range runs {
		n := ids.GenerateNodeID()
		s := ids.GenerateDetachedSequenceID()
		runs[i] = transaction.Run{Changes: []change.Change{
			change.Build{Source: []change.EditNode{change.InlineNode(n, "D", nil, maybe.Nothing[[]byte]())}, Destination: s},
			change.Insert{Source: s, Destination: tree.StartOf(root, "L")},
		}}
	}

	results, err := transaction.ApplyConcurrently(context.Background(), baseline, runs)
	require.NoError(t, err)
	require.Len(t, results, numRuns)
	for _, r := range results {
		require.Equal(t, transaction.Applied, r.Outcome)
		require.Len(t, r.View.Trait(root, "L"), 1)
	}

	// The shared baseline is untouched by any run.
	require.Empty(t, baseline.Trait(root, "L"))
}
