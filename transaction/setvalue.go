package transaction

import (
	"context"

	"github.com/dumbnose/treedb/change"
	"github.com/dumbnose/treedb/internal/defect"
)

// applySetValue implements spec.md §4.6. Payload.IsNothing() is the
// explicit-null sentinel (clear the payload); a value present sets it.
func (t *Transaction) applySetValue(_ context.Context, sv change.SetValue) Outcome {
	node, ok := t.view.TryNode(sv.NodeToModify)
	if !ok {
		return Invalid
	}

	next := node.Clone()
	next.Payload = sv.Payload

	view, err := t.view.ReplaceNodeData(sv.NodeToModify, next)
	if err != nil {
		defect.Raise("transaction.applySetValue", "replaceNodeData failed after hasNode check passed: %v", err)
	}
	t.view = view
	return Applied
}
