package transaction

import (
	"github.com/dumbnose/treedb/edit"
	"github.com/dumbnose/treedb/ids"
	"github.com/dumbnose/treedb/tree"
	"github.com/dumbnose/treedb/validate"
)

// Primitives is the narrow collaborator contract spec.md §6 requires the
// embedding host to provide: the pure, stateless validation and edit
// functions the interpreter composes. It exists so tests can substitute a
// mock and assert exactly how the interpreter calls into it, without
// exercising the real tree/validate/edit packages.
type Primitives interface {
	ValidateStablePlace(view tree.Snapshot, place tree.StablePlace) (validate.Place, validate.Outcome)
	ValidateStableRange(view tree.Snapshot, r tree.StableRange) (validate.Range, validate.Outcome)
	DetachRange(view tree.Snapshot, r validate.Range) (tree.Snapshot, []ids.NodeID, error)
	InsertIntoTrait(view tree.Snapshot, place validate.Place, newIDs []ids.NodeID) (tree.Snapshot, error)
}

// defaultPrimitives wires Primitives directly to the package tree's own
// validate/edit packages — the production implementation. A Transaction
// built via New uses this; WithPrimitives lets tests substitute a mock.
type defaultPrimitives struct{}

func (defaultPrimitives) ValidateStablePlace(view tree.Snapshot, place tree.StablePlace) (validate.Place, validate.Outcome) {
	return validate.StablePlace(view, place)
}

func (defaultPrimitives) ValidateStableRange(view tree.Snapshot, r tree.StableRange) (validate.Range, validate.Outcome) {
	return validate.StableRange(view, r)
}

func (defaultPrimitives) DetachRange(view tree.Snapshot, r validate.Range) (tree.Snapshot, []ids.NodeID, error) {
	return edit.DetachRange(view, r)
}

func (defaultPrimitives) InsertIntoTrait(view tree.Snapshot, place validate.Place, newIDs []ids.NodeID) (tree.Snapshot, error) {
	return edit.InsertIntoTrait(view, place, newIDs)
}

// WithPrimitives overrides the collaborator used for validation/edit
// primitives. Returns the receiver for chaining. Intended for tests; the
// zero-value Transaction from New already carries a working default.
func (t *Transaction) WithPrimitives(p Primitives) *Transaction {
	if p != nil {
		t.primitives = p
	}
	return t
}
