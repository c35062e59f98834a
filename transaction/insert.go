package transaction

import (
	"context"

	"github.com/dumbnose/treedb/change"
	"github.com/dumbnose/treedb/internal/defect"
	"github.com/dumbnose/treedb/validate"
)

// applyInsert implements spec.md §4.3.
func (t *Transaction) applyInsert(_ context.Context, in change.Insert) Outcome {
	seq, ok := t.detached[in.Source]
	if !ok {
		return Malformed
	}

	place, outcome := t.primitives.ValidateStablePlace(t.view, in.Destination)
	if outcome != validate.Valid {
		return validateOutcomeToEditOutcome(outcome)
	}

	next, err := t.primitives.InsertIntoTrait(t.view, place, seq)
	if err != nil {
		defect.Raise("transaction.applyInsert", "insertIntoTrait failed after place validated: %v", err)
	}

	delete(t.detached, in.Source)
	t.view = next
	return Applied
}
