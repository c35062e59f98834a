package tree

import (
	"errors"

	"github.com/dumbnose/treedb/ids"
	"github.com/dumbnose/treedb/internal/defect"
	"github.com/dumbnose/treedb/internal/pmap"
)

// ErrNodeNotFound is returned by operations whose precondition
// (hasNode(id)) the caller failed to satisfy.
var ErrNodeNotFound = errors.New("tree: node not found")

// ErrNodeAlreadyExists is returned by InsertSnapshotNodes when one of the
// given ids is already present in the snapshot.
var ErrNodeAlreadyExists = errors.New("tree: node already exists")

// ErrPlaceNotResolvable is returned by FindIndexWithinTrait when the place
// doesn't resolve against this snapshot (missing anchor/parent). Callers
// are expected to have validated the place first (see package validate);
// this is a low-level geometric helper, not a classifier.
var ErrPlaceNotResolvable = errors.New("tree: place does not resolve against this snapshot")

type parentInfo struct {
	parent ids.NodeID
	label  ids.TraitLabel
	index  int
}

// Snapshot is an immutable, structurally-shared labelled tree: a mapping
// from NodeID to SnapshotNode plus a designated root. Every mutator returns
// a new Snapshot; the receiver is never modified (spec.md §3/§5).
type Snapshot struct {
	root    ids.NodeID
	nodes   pmap.Map[SnapshotNode]
	parents pmap.Map[parentInfo]
}

func key(id ids.NodeID) pmap.Key { return pmap.Key(id) }

// New builds the initial baseline Snapshot from a complete node table and
// a designated root. The parent index is derived from each node's traits.
func New(root ids.NodeID, nodes map[ids.NodeID]SnapshotNode) (Snapshot, error) {
	if _, ok := nodes[root]; !ok {
		return Snapshot{}, ErrNodeNotFound
	}
	s := Snapshot{root: root}
	for id, n := range nodes {
		s.nodes = s.nodes.Put(key(id), n)
	}
	for id, n := range nodes {
		s.parents = setParentsForNode(s.parents, id, n.Traits)
	}
	return s, nil
}

func setParentsForNode(parents pmap.Map[parentInfo], parent ids.NodeID, traits map[ids.TraitLabel][]ids.NodeID) pmap.Map[parentInfo] {
	for label, children := range traits {
		for i, child := range children {
			parents = parents.Put(key(child), parentInfo{parent: parent, label: label, index: i})
		}
	}
	return parents
}

// Root returns the snapshot's root node id.
func (s Snapshot) Root() ids.NodeID {
	return s.root
}

// HasNode reports whether id is present in the snapshot.
func (s Snapshot) HasNode(id ids.NodeID) bool {
	return s.nodes.Has(key(id))
}

// TryNode returns the node for id, if present.
func (s Snapshot) TryNode(id ids.NodeID) (SnapshotNode, bool) {
	return s.nodes.Get(key(id))
}

// GetSnapshotNode returns the node for id. Precondition: HasNode(id). If
// violated, this is a defect (a caller bug), not a user-level outcome, and
// panics accordingly.
func (s Snapshot) GetSnapshotNode(id ids.NodeID) SnapshotNode {
	n, ok := s.nodes.Get(key(id))
	if !ok {
		defect.Raise("tree.Snapshot.GetSnapshotNode", "precondition violated: node %s absent", id)
	}
	return n
}

// ParentOf returns the parent, trait label, and index of id within that
// trait, if id currently has a parent in the snapshot. The root and any
// currently-detached node have no parent.
func (s Snapshot) ParentOf(id ids.NodeID) (parent ids.NodeID, label ids.TraitLabel, index int, ok bool) {
	info, found := s.parents.Get(key(id))
	if !found {
		return ids.NodeID{}, "", 0, false
	}
	return info.parent, info.label, info.index, true
}

// Trait returns the ordered child list of parent's label trait (empty if
// parent has no such trait).
func (s Snapshot) Trait(parent ids.NodeID, label ids.TraitLabel) []ids.NodeID {
	n, ok := s.nodes.Get(key(parent))
	if !ok {
		return nil
	}
	return n.Traits[label]
}

// FindIndexWithinTrait returns the integer offset of place within its
// containing trait. Callers are expected to have validated place first.
func (s Snapshot) FindIndexWithinTrait(place StablePlace) (int, error) {
	switch place.Kind {
	case PlaceStart:
		if !s.HasNode(place.Parent) {
			return 0, ErrPlaceNotResolvable
		}
		return 0, nil
	case PlaceEnd:
		if !s.HasNode(place.Parent) {
			return 0, ErrPlaceNotResolvable
		}
		return len(s.Trait(place.Parent, place.Label)), nil
	case PlaceAnchor:
		parent, _, index, ok := s.ParentOf(place.Anchor)
		if !ok {
			return 0, ErrPlaceNotResolvable
		}
		_ = parent
		if place.Side == Before {
			return index, nil
		}
		return index + 1, nil
	default:
		defect.Raise("tree.Snapshot.FindIndexWithinTrait", "unknown place kind %d", place.Kind)
		return 0, nil // unreachable
	}
}

// InsertSnapshotNodes returns a new Snapshot with the given nodes added.
// None of the given ids may already exist in the snapshot.
func (s Snapshot) InsertSnapshotNodes(nodes map[ids.NodeID]SnapshotNode) (Snapshot, error) {
	for id := range nodes {
		if s.HasNode(id) {
			return Snapshot{}, ErrNodeAlreadyExists
		}
	}
	next := s
	for id, n := range nodes {
		next.nodes = next.nodes.Put(key(id), n)
	}
	for id, n := range nodes {
		next.parents = setParentsForNode(next.parents, id, n.Traits)
	}
	return next, nil
}

// DeleteNodes returns a new Snapshot with exactly the given ids (and
// nothing else) removed. The removed nodes must have no remaining parent
// in the snapshot (they should already have been detached from any
// trait); any stale parent-index entries for them are cleared regardless.
func (s Snapshot) DeleteNodes(toDelete []ids.NodeID) Snapshot {
	next := s
	for _, id := range toDelete {
		next.parents = next.parents.Delete(key(id))
		next.nodes = next.nodes.Delete(key(id))
	}
	return next
}

// ReplaceNodeData returns a new Snapshot with the record for id replaced
// by node, updating the parent index to reflect any trait changes.
// Precondition: HasNode(id).
func (s Snapshot) ReplaceNodeData(id ids.NodeID, node SnapshotNode) (Snapshot, error) {
	old, ok := s.nodes.Get(key(id))
	if !ok {
		return Snapshot{}, ErrNodeNotFound
	}
	next := s
	next.nodes = next.nodes.Put(key(id), node)

	oldChildren := childSet(old.Traits)
	newChildren := childPositions(node.Traits)
	for child := range oldChildren {
		if _, stillPresent := newChildren[child]; !stillPresent {
			next.parents = next.parents.Delete(key(child))
		}
	}
	for child, pos := range newChildren {
		next.parents = next.parents.Put(key(child), parentInfo{parent: id, label: pos.label, index: pos.index})
	}
	return next, nil
}

func childSet(traits map[ids.TraitLabel][]ids.NodeID) map[ids.NodeID]struct{} {
	out := make(map[ids.NodeID]struct{})
	for _, children := range traits {
		for _, c := range children {
			out[c] = struct{}{}
		}
	}
	return out
}

type traitPosition struct {
	label ids.TraitLabel
	index int
}

func childPositions(traits map[ids.TraitLabel][]ids.NodeID) map[ids.NodeID]traitPosition {
	out := make(map[ids.NodeID]traitPosition)
	for label, children := range traits {
		for i, c := range children {
			out[c] = traitPosition{label: label, index: i}
		}
	}
	return out
}

// NodeCount returns the number of nodes in the snapshot.
func (s Snapshot) NodeCount() int {
	return s.nodes.Len()
}

// AllIDs returns every node id in the snapshot in a deterministic order.
func (s Snapshot) AllIDs() []ids.NodeID {
	keys := s.nodes.Keys()
	out := make([]ids.NodeID, len(keys))
	for i, k := range keys {
		out[i] = ids.NodeID(k)
	}
	return out
}

// Diff returns the node ids added, removed, and changed (present in both
// but with a different record) between a (the earlier snapshot) and s.
// Pure read.
func (s Snapshot) Diff(a Snapshot) (added, removed, changed []ids.NodeID) {
	for _, id := range s.AllIDs() {
		if !a.HasNode(id) {
			added = append(added, id)
			continue
		}
		if !nodesEqual(s.GetSnapshotNode(id), a.GetSnapshotNode(id)) {
			changed = append(changed, id)
		}
	}
	for _, id := range a.AllIDs() {
		if !s.HasNode(id) {
			removed = append(removed, id)
		}
	}
	return added, removed, changed
}

func nodesEqual(x, y SnapshotNode) bool {
	if x.ID != y.ID || x.Definition != y.Definition || x.Payload.HasValue() != y.Payload.HasValue() {
		return false
	}
	if x.Payload.HasValue() && string(x.Payload.Value()) != string(y.Payload.Value()) {
		return false
	}
	if len(x.Traits) != len(y.Traits) {
		return false
	}
	for label, xc := range x.Traits {
		yc, ok := y.Traits[label]
		if !ok || len(xc) != len(yc) {
			return false
		}
		for i := range xc {
			if xc[i] != yc[i] {
				return false
			}
		}
	}
	return true
}
