package store_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dumbnose/treedb/ids"
	"github.com/dumbnose/treedb/maybe"
	"github.com/dumbnose/treedb/store"
	"github.com/dumbnose/treedb/tree"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := store.Open(dir, nil)
	require.NoError(t, err)
	defer s.Close()

	root := ids.GenerateNodeID()
	child := ids.GenerateNodeID()
	snapshot, err := tree.New(root, map[ids.NodeID]tree.SnapshotNode{
		root:  {ID: root, Definition: "root", Traits: map[ids.TraitLabel][]ids.NodeID{"L": {child}}, Payload: maybe.Nothing[[]byte]()},
		child: {ID: child, Definition: "leaf", Traits: map[ids.TraitLabel][]ids.NodeID{}, Payload: maybe.Some([]byte("hello"))},
	})
	require.NoError(t, err)

	require.NoError(t, s.Save("baseline", snapshot))

	loaded, err := s.Load("baseline")
	require.NoError(t, err)
	require.Equal(t, root, loaded.Root())
	require.Equal(t, []ids.NodeID{child}, loaded.Trait(root, "L"))
	require.True(t, loaded.GetSnapshotNode(child).HasPayload())
	require.Equal(t, []byte("hello"), loaded.GetSnapshotNode(child).Payload.Value())

	names, err := s.Names()
	require.NoError(t, err)
	require.Contains(t, names, "baseline")
}

func TestLoadMissingReturnsErrNotFound(t *testing.T) {
	dir := t.TempDir()
	s, err := store.Open(dir, nil)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Load("missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}
