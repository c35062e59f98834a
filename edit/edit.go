// Package edit implements spec.md's Component E: the pure structural
// operations (detach a resolved range out of its trait, insert an ordered
// node sequence into a resolved place) that Build/Insert/Detach changes
// compose to produce a new tree.Snapshot. Every function here takes an
// already-resolved validate.Range/validate.Place — classification is
// entirely validate's job, not this package's.
package edit

import (
	"github.com/dumbnose/treedb/ids"
	"github.com/dumbnose/treedb/tree"
	"github.com/dumbnose/treedb/validate"
)

// DetachRange removes the resolved range's nodes from their trait and
// returns the resulting snapshot together with the detached ids in their
// original left-to-right order. The node records themselves remain in the
// snapshot (unparented); callers that need to discard them call
// Snapshot.DeleteNodes separately, per spec.md's two-step Detach/dispose
// design.
func DetachRange(view tree.Snapshot, r validate.Range) (tree.Snapshot, []ids.NodeID, error) {
	parentNode := view.GetSnapshotNode(r.Parent).Clone()
	trait := parentNode.Traits[r.Label]

	detached := make([]ids.NodeID, r.Len())
	copy(detached, trait[r.Start:r.End])

	remaining := make([]ids.NodeID, 0, len(trait)-r.Len())
	remaining = append(remaining, trait[:r.Start]...)
	remaining = append(remaining, trait[r.End:]...)
	if len(remaining) == 0 {
		delete(parentNode.Traits, r.Label)
	} else {
		parentNode.Traits[r.Label] = remaining
	}

	next, err := view.ReplaceNodeData(r.Parent, parentNode)
	if err != nil {
		return tree.Snapshot{}, nil, err
	}
	return next, detached, nil
}

// InsertIntoTrait splices the given ids, in order, into place's trait at
// place's offset, and returns the resulting snapshot. The given ids must
// not already be parented anywhere in view (spec.md's detached-sequence
// discipline guarantees this at the call site: they come fresh from
// Build, or from a DetachedSequenceID a transaction is consuming exactly
// once).
func InsertIntoTrait(view tree.Snapshot, place validate.Place, newIDs []ids.NodeID) (tree.Snapshot, error) {
	if len(newIDs) == 0 {
		return view, nil
	}
	parentNode := view.GetSnapshotNode(place.Parent).Clone()
	trait := parentNode.Traits[place.Label]

	spliced := make([]ids.NodeID, 0, len(trait)+len(newIDs))
	spliced = append(spliced, trait[:place.Index]...)
	spliced = append(spliced, newIDs...)
	spliced = append(spliced, trait[place.Index:]...)
	if parentNode.Traits == nil {
		parentNode.Traits = map[ids.TraitLabel][]ids.NodeID{}
	}
	parentNode.Traits[place.Label] = spliced

	return view.ReplaceNodeData(place.Parent, parentNode)
}
