package transaction

import (
	"context"

	"github.com/dumbnose/treedb/change"
	"github.com/dumbnose/treedb/ids"
	"github.com/dumbnose/treedb/internal/defect"
	"github.com/dumbnose/treedb/tree"
)

// applyBuild implements spec.md §4.2. Reference resolution and duplicate
// detection happen together during a depth-first traversal of b.Source;
// per §4.1's atomicity requirement ("updates view and detached atomically
// on success"), consumed references are tracked in a draft copy of the
// detached registry and only committed if the whole build ends up Applied.
func (t *Transaction) applyBuild(_ context.Context, b change.Build) Outcome {
	if _, collides := t.detached[b.Destination]; collides {
		return Malformed
	}

	draft := make(map[ids.DetachedSequenceID][]ids.NodeID, len(t.detached))
	for k, v := range t.detached {
		draft[k] = v
	}

	newNodes := map[ids.NodeID]tree.SnapshotNode{}
	var malformed, invalid bool

	var resolve func(n change.EditNode) []ids.NodeID
	resolve = func(n change.EditNode) []ids.NodeID {
		if n.IsReference() {
			seqID := n.Reference.Value()
			seq, ok := draft[seqID]
			if !ok {
				malformed = true
				return nil
			}
			delete(draft, seqID)
			return seq
		}

		id := n.Identifier
		if _, dup := newNodes[id]; dup {
			malformed = true
		} else if t.view.HasNode(id) {
			invalid = true
		}

		resolvedTraits := make(map[ids.TraitLabel][]ids.NodeID, len(n.Traits))
		for label, children := range n.Traits {
			var childIDs []ids.NodeID
			for _, child := range children {
				childIDs = append(childIDs, resolve(child)...)
			}
			resolvedTraits[label] = childIDs
		}
		newNodes[id] = tree.SnapshotNode{
			ID:         id,
			Definition: n.Definition,
			Traits:     resolvedTraits,
			Payload:    n.Payload,
		}
		return []ids.NodeID{id}
	}

	var topLevel []ids.NodeID
	for _, n := range b.Source {
		topLevel = append(topLevel, resolve(n)...)
	}

	if malformed {
		return Malformed
	}
	if invalid {
		return Invalid
	}

	next, err := t.view.InsertSnapshotNodes(newNodes)
	if err != nil {
		defect.Raise("transaction.applyBuild", "insertSnapshotNodes failed after id-already-present check passed: %v", err)
	}

	draft[b.Destination] = topLevel
	t.view = next
	t.detached = draft
	return Applied
}
