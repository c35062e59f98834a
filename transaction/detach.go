package transaction

import (
	"context"

	"github.com/dumbnose/treedb/change"
	"github.com/dumbnose/treedb/internal/defect"
	"github.com/dumbnose/treedb/validate"
)

// applyDetach implements spec.md §4.4.
func (t *Transaction) applyDetach(_ context.Context, d change.Detach) Outcome {
	r, outcome := t.primitives.ValidateStableRange(t.view, d.Source)
	if outcome != validate.Valid {
		return validateOutcomeToEditOutcome(outcome)
	}

	residual, detachedIDs, err := t.primitives.DetachRange(t.view, r)
	if err != nil {
		defect.Raise("transaction.applyDetach", "detachRange failed after range validated: %v", err)
	}

	if d.Destination.HasValue() {
		dest := d.Destination.Value()
		if _, collides := t.detached[dest]; collides {
			return Malformed
		}
		t.detached[dest] = detachedIDs
		t.view = residual
		return Applied
	}

	t.view = residual.DeleteNodes(detachedIDs)
	return Applied
}
