// Package change defines the on-wire Change schema: the five tagged
// variants spec.md's Transaction interpreter dispatches on (Build, Insert,
// Detach, Constraint, SetValue) and the EditNode input fragment Build
// consumes. These are plain data — no behavior lives here; Component F
// (package transaction) is the only place that interprets them.
package change

import (
	"github.com/dumbnose/treedb/ids"
	"github.com/dumbnose/treedb/maybe"
	"github.com/dumbnose/treedb/tree"
)

// EditNode is a recursive input fragment: either a reference to a
// previously produced detached sequence, or an inline node whose children
// are themselves EditNodes (possibly further references, expanded in
// place during Build).
type EditNode struct {
	// Reference holds the referenced sequence id when this EditNode names
	// a detached sequence rather than an inline node.
	Reference maybe.Maybe[ids.DetachedSequenceID]

	// The following are only meaningful when Reference.IsNothing().
	Identifier ids.NodeID
	Definition string
	Traits     map[ids.TraitLabel][]EditNode
	Payload    maybe.Maybe[[]byte]
}

// ReferenceNode builds an EditNode that expands to a previously produced
// detached sequence.
func ReferenceNode(seq ids.DetachedSequenceID) EditNode {
	return EditNode{Reference: maybe.Some(seq)}
}

// InlineNode builds an EditNode describing a fresh node to create.
func InlineNode(id ids.NodeID, definition string, traits map[ids.TraitLabel][]EditNode, payload maybe.Maybe[[]byte]) EditNode {
	return EditNode{
		Reference:  maybe.Nothing[ids.DetachedSequenceID](),
		Identifier: id,
		Definition: definition,
		Traits:     traits,
		Payload:    payload,
	}
}

// IsReference reports whether n is a detached-sequence reference rather
// than an inline node.
func (n EditNode) IsReference() bool {
	return n.Reference.HasValue()
}

// Change is the closed, five-member tagged variant a Transaction applies.
// Implementations are exhaustively switched over in package transaction;
// an unrecognized implementation is a defect, not a data-level outcome
// (spec.md §9, "Dynamic change dispatch").
type Change interface {
	isChange()
}

// Build produces fresh nodes from source (expanding any detached-sequence
// references inline) and stashes the resulting top-level id sequence under
// destination in the transaction's detached registry.
type Build struct {
	Source      []EditNode
	Destination ids.DetachedSequenceID
}

func (Build) isChange() {}

// Insert splices the node sequence held under source into destination,
// consuming source from the detached registry.
type Insert struct {
	Source      ids.DetachedSequenceID
	Destination tree.StablePlace
}

func (Insert) isChange() {}

// Detach removes source's nodes from their trait. If Destination carries a
// value, the removed sequence is stashed under it for later reinsertion;
// otherwise the nodes are permanently discarded.
type Detach struct {
	Source      tree.StableRange
	Destination maybe.Maybe[ids.DetachedSequenceID]
}

func (Detach) isChange() {}

// ConstraintEffect determines how a Constraint violation is classified.
type ConstraintEffect int

const (
	// InvalidRetry classifies a violation as Invalid (the caller retries
	// against a different baseline).
	InvalidRetry ConstraintEffect = iota
	// ValidRetry classifies a violation as Applied (advisory only — the
	// peer may use it to detect a non-semantic conflict).
	ValidRetry
)

func (e ConstraintEffect) String() string {
	switch e {
	case InvalidRetry:
		return "InvalidRetry"
	case ValidRetry:
		return "ValidRetry"
	default:
		return "ConstraintEffect(?)"
	}
}

// Constraint asserts properties about a range in the current view without
// mutating it.
type Constraint struct {
	ToConstrain tree.StableRange
	Effect      ConstraintEffect

	Length       maybe.Maybe[int]
	ParentNode   maybe.Maybe[ids.NodeID]
	Label        maybe.Maybe[ids.TraitLabel]
	IdentityHash maybe.Maybe[[]byte]
	ContentHash  maybe.Maybe[[]byte]
}

func (Constraint) isChange() {}

// SetValue replaces nodeToModify's payload. Payload.IsNothing() is the
// explicit-null sentinel ("clear"); Payload holding a value is "set". A
// SetValue change always carries one or the other — there is no
// "unchanged" representation at this layer (callers simply don't emit a
// SetValue when nothing should change).
type SetValue struct {
	NodeToModify ids.NodeID
	Payload      maybe.Maybe[[]byte]
}

func (SetValue) isChange() {}
