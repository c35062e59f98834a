package transaction_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dumbnose/treedb/change"
	"github.com/dumbnose/treedb/ids"
	"github.com/dumbnose/treedb/maybe"
	"github.com/dumbnose/treedb/tree"
	"github.com/dumbnose/treedb/transaction"
)

func baseline(t *testing.T, root ids.NodeID, traitLabel ids.TraitLabel, children ...ids.NodeID) tree.Snapshot {
	t.Helper()
	nodes := map[ids.NodeID]tree.SnapshotNode{
		root: {ID: root, Definition: "root", Traits: map[ids.TraitLabel][]ids.NodeID{traitLabel: children}, Payload: maybe.Nothing[[]byte]()},
	}
	for _, c := range children {
		nodes[c] = tree.SnapshotNode{ID: c, Definition: "leaf", Traits: map[ids.TraitLabel][]ids.NodeID{}, Payload: maybe.Nothing[[]byte]()}
	}
	s, err := tree.New(root, nodes)
	require.NoError(t, err)
	return s
}

// (a) Build + Insert round trip.
func TestScenarioBuildInsertRoundTrip(t *testing.T) {
	root := ids.GenerateNodeID()
	view := baseline(t, root, "L")
	txn := transaction.New(view)
	ctx := context.Background()

	n := ids.GenerateNodeID()
	s := ids.GenerateDetachedSequenceID()

	require.Equal(t, transaction.Applied, txn.Apply(ctx, change.Build{
		Source:      []change.EditNode{change.InlineNode(n, "D", nil, maybe.Nothing[[]byte]())},
		Destination: s,
	}))
	require.Equal(t, transaction.Applied, txn.Apply(ctx, change.Insert{
		Source:      s,
		Destination: tree.StartOf(root, "L"),
	}))

	outcome, final := txn.Close(ctx)
	require.Equal(t, transaction.Applied, outcome)
	require.Equal(t, []ids.NodeID{n}, final.Trait(root, "L"))
	require.Equal(t, "D", final.GetSnapshotNode(n).Definition)
}

// (b) Unused detached is malformed.
func TestScenarioUnusedDetachedIsMalformedOnClose(t *testing.T) {
	root := ids.GenerateNodeID()
	view := baseline(t, root, "L")
	txn := transaction.New(view)
	ctx := context.Background()

	n := ids.GenerateNodeID()
	s := ids.GenerateDetachedSequenceID()
	require.Equal(t, transaction.Applied, txn.Apply(ctx, change.Build{
		Source:      []change.EditNode{change.InlineNode(n, "D", nil, maybe.Nothing[[]byte]())},
		Destination: s,
	}))

	outcome, _ := txn.Close(ctx)
	require.Equal(t, transaction.Malformed, outcome)
}

// (c) Duplicate id in build.
func TestScenarioDuplicateIDInBuildIsMalformed(t *testing.T) {
	root := ids.GenerateNodeID()
	view := baseline(t, root, "L")
	txn := transaction.New(view)
	ctx := context.Background()

	n := ids.GenerateNodeID()
	s := ids.GenerateDetachedSequenceID()
	outcome := txn.Apply(ctx, change.Build{
		Source: []change.EditNode{
			change.InlineNode(n, "D1", nil, maybe.Nothing[[]byte]()),
			change.InlineNode(n, "D2", nil, maybe.Nothing[[]byte]()),
		},
		Destination: s,
	})
	require.Equal(t, transaction.Malformed, outcome)
	require.False(t, txn.CurrentView().HasNode(n))
}

// (d) Detach without destination deletes.
func TestScenarioDetachWithoutDestinationDeletes(t *testing.T) {
	root := ids.GenerateNodeID()
	a, b, c := ids.GenerateNodeID(), ids.GenerateNodeID(), ids.GenerateNodeID()
	view := baseline(t, root, "L", a, b, c)
	txn := transaction.New(view)
	ctx := context.Background()

	outcome := txn.Apply(ctx, change.Detach{
		Source: tree.StableRange{Start: tree.AnchorPlace(b, tree.Before), End: tree.AnchorPlace(b, tree.After)},
	})
	require.Equal(t, transaction.Applied, outcome)
	require.False(t, txn.CurrentView().HasNode(b))
	require.Equal(t, []ids.NodeID{a, c}, txn.CurrentView().Trait(root, "L"))
}

// (e) Detach with destination preserves for reinsertion.
func TestScenarioDetachWithDestinationPreservesForReinsertion(t *testing.T) {
	root := ids.GenerateNodeID()
	a, b, c := ids.GenerateNodeID(), ids.GenerateNodeID(), ids.GenerateNodeID()
	view := baseline(t, root, "L", a, b, c)
	txn := transaction.New(view)
	ctx := context.Background()

	s := ids.GenerateDetachedSequenceID()
	require.Equal(t, transaction.Applied, txn.Apply(ctx, change.Detach{
		Source:      tree.StableRange{Start: tree.AnchorPlace(b, tree.Before), End: tree.AnchorPlace(b, tree.After)},
		Destination: maybe.Some(s),
	}))
	require.Equal(t, transaction.Applied, txn.Apply(ctx, change.Insert{
		Source:      s,
		Destination: tree.AnchorPlace(c, tree.After),
	}))

	outcome, final := txn.Close(ctx)
	require.Equal(t, transaction.Applied, outcome)
	require.Equal(t, []ids.NodeID{a, c, b}, final.Trait(root, "L"))
}

// (f) Constraint ValidRetry violation is non-fatal.
func TestScenarioConstraintValidRetryViolationIsNonFatal(t *testing.T) {
	root := ids.GenerateNodeID()
	a, b := ids.GenerateNodeID(), ids.GenerateNodeID()
	view := baseline(t, root, "L", a, b)
	txn := transaction.New(view)
	ctx := context.Background()

	outcome := txn.Apply(ctx, change.Constraint{
		ToConstrain: tree.StableRange{Start: tree.StartOf(root, "L"), End: tree.EndOf(root, "L")},
		Effect:      change.ValidRetry,
		Length:      maybe.Some(5),
	})
	require.Equal(t, transaction.Applied, outcome)
	require.Equal(t, transaction.Open, txn.Status())
	require.Equal(t, view.Trait(root, "L"), txn.CurrentView().Trait(root, "L"))
}

// (g) Constraint InvalidRetry violation returns Invalid.
func TestScenarioConstraintInvalidRetryViolationIsInvalid(t *testing.T) {
	root := ids.GenerateNodeID()
	a, b := ids.GenerateNodeID(), ids.GenerateNodeID()
	view := baseline(t, root, "L", a, b)
	txn := transaction.New(view)
	ctx := context.Background()

	outcome := txn.Apply(ctx, change.Constraint{
		ToConstrain: tree.StableRange{Start: tree.StartOf(root, "L"), End: tree.EndOf(root, "L")},
		Effect:      change.InvalidRetry,
		Length:      maybe.Some(5),
	})
	require.Equal(t, transaction.Invalid, outcome)
	require.Equal(t, transaction.Closed, txn.Status())
}

// (h) SetValue on absent node.
func TestScenarioSetValueOnAbsentNodeIsInvalid(t *testing.T) {
	root := ids.GenerateNodeID()
	view := baseline(t, root, "L")
	txn := transaction.New(view)
	ctx := context.Background()

	z := ids.GenerateNodeID()
	outcome := txn.Apply(ctx, change.SetValue{NodeToModify: z, Payload: maybe.Some([]byte("x"))})
	require.Equal(t, transaction.Invalid, outcome)
}

// (i) Insert from consumed detached is malformed.
func TestScenarioInsertFromConsumedDetachedIsMalformed(t *testing.T) {
	root := ids.GenerateNodeID()
	view := baseline(t, root, "L")
	txn := transaction.New(view)
	ctx := context.Background()

	n := ids.GenerateNodeID()
	s := ids.GenerateDetachedSequenceID()
	require.Equal(t, transaction.Applied, txn.Apply(ctx, change.Build{
		Source:      []change.EditNode{change.InlineNode(n, "D", nil, maybe.Nothing[[]byte]())},
		Destination: s,
	}))
	require.Equal(t, transaction.Applied, txn.Apply(ctx, change.Insert{
		Source:      s,
		Destination: tree.StartOf(root, "L"),
	}))
	outcome := txn.Apply(ctx, change.Insert{
		Source:      s,
		Destination: tree.EndOf(root, "L"),
	})
	require.Equal(t, transaction.Malformed, outcome)
}

func TestApplyAfterCloseIsNoop(t *testing.T) {
	root := ids.GenerateNodeID()
	view := baseline(t, root, "L")
	txn := transaction.New(view)
	ctx := context.Background()

	z := ids.GenerateNodeID()
	require.Equal(t, transaction.Invalid, txn.Apply(ctx, change.SetValue{NodeToModify: z, Payload: maybe.Some([]byte("x"))}))
	require.Equal(t, transaction.Invalid, txn.Apply(ctx, change.SetValue{NodeToModify: z, Payload: maybe.Some([]byte("x"))}))
}

func TestSetValueNullSentinelClearsPayload(t *testing.T) {
	root := ids.GenerateNodeID()
	a := ids.GenerateNodeID()
	view := baseline(t, root, "L", a)
	view, err := view.ReplaceNodeData(a, tree.SnapshotNode{
		ID: a, Definition: "leaf", Traits: map[ids.TraitLabel][]ids.NodeID{}, Payload: maybe.Some([]byte("v")),
	})
	require.NoError(t, err)

	txn := transaction.New(view)
	ctx := context.Background()
	require.Equal(t, transaction.Applied, txn.Apply(ctx, change.SetValue{NodeToModify: a, Payload: maybe.Nothing[[]byte]()}))
	require.False(t, txn.CurrentView().GetSnapshotNode(a).HasPayload())
}

func TestBaselineImmutableAcrossApply(t *testing.T) {
	root := ids.GenerateNodeID()
	a := ids.GenerateNodeID()
	view := baseline(t, root, "L", a)
	before := view.Trait(root, "L")

	txn := transaction.New(view)
	ctx := context.Background()
	n := ids.GenerateNodeID()
	s := ids.GenerateDetachedSequenceID()
	txn.Apply(ctx, change.Build{Source: []change.EditNode{change.InlineNode(n, "D", nil, maybe.Nothing[[]byte]())}, Destination: s})
	txn.Apply(ctx, change.Insert{Source: s, Destination: tree.StartOf(root, "L")})

	require.Equal(t, before, view.Trait(root, "L"))
}
