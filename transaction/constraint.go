package transaction

import (
	"context"

	"github.com/dumbnose/treedb/change"
	"github.com/dumbnose/treedb/internal/defect"
	"github.com/dumbnose/treedb/validate"
)

// applyConstraint implements spec.md §4.5. identityHash/contentHash are
// acknowledged by the schema but have no implementation (spec.md's Non-goals
// and §9 design note); a Constraint naming either is a defect, not a
// data-level outcome, because a producer that emits one expects semantics
// this interpreter cannot provide.
func (t *Transaction) applyConstraint(_ context.Context, c change.Constraint) Outcome {
	if c.IdentityHash.HasValue() {
		defect.Raise("transaction.applyConstraint", "identityHash constraints are unimplemented")
	}
	if c.ContentHash.HasValue() {
		defect.Raise("transaction.applyConstraint", "contentHash constraints are unimplemented")
	}

	onViolation := Invalid
	if c.Effect == change.ValidRetry {
		onViolation = Applied
	}

	r, outcome := t.primitives.ValidateStableRange(t.view, c.ToConstrain)
	switch outcome {
	case validate.Malformed:
		return Malformed
	case validate.Invalid:
		return onViolation
	case validate.Valid:
		// fall through
	default:
		defect.Raise("transaction.applyConstraint", "unknown validate.Outcome %d", outcome)
	}

	if c.Length.HasValue() && c.Length.Value() != r.Len() {
		return onViolation
	}
	if c.ParentNode.HasValue() && c.ParentNode.Value() != r.Parent {
		return onViolation
	}
	if c.Label.HasValue() && c.Label.Value() != r.Label {
		return onViolation
	}

	return Applied
}
