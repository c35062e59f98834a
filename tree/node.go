// Package tree implements spec.md's Component B (and the remainder of
// Component A): the immutable, structurally-shared Snapshot and the
// StablePlace/StableRange position types resolved against it.
//
// Snapshot's copy-on-write mutators are built on internal/pmap so that
// producing a new Snapshot shares every untouched node with the one it was
// derived from — generalizing the single-node clone() discipline in the
// teacher's x/merkledb/node.go to the whole node table.
package tree

import (
	"golang.org/x/exp/slices"

	"github.com/dumbnose/treedb/ids"
	"github.com/dumbnose/treedb/maybe"
)

// SnapshotNode is the per-node record stored in a Snapshot.
type SnapshotNode struct {
	ID         ids.NodeID
	Definition string
	Traits     map[ids.TraitLabel][]ids.NodeID
	Payload    maybe.Maybe[[]byte]
}

// Clone returns a deep-enough copy of n suitable for modification without
// aliasing n's trait slices or map.
func (n SnapshotNode) Clone() SnapshotNode {
	traits := make(map[ids.TraitLabel][]ids.NodeID, len(n.Traits))
	for label, children := range n.Traits {
		traits[label] = slices.Clone(children)
	}
	return SnapshotNode{
		ID:         n.ID,
		Definition: n.Definition,
		Traits:     traits,
		Payload:    n.Payload,
	}
}

// HasPayload reports whether n carries a payload (as opposed to having had
// it explicitly cleared, or never set).
func (n SnapshotNode) HasPayload() bool {
	return n.Payload.HasValue()
}
