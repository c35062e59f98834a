// Package transaction implements spec.md's Component F, the CORE
// transaction interpreter: a single-threaded, synchronous state machine
// that applies Change values against an evolving tree.Snapshot, enforcing
// the detached-sequence linear-resource discipline and classifying every
// outcome as Applied, Invalid, or Malformed.
package transaction

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/dumbnose/treedb/change"
	"github.com/dumbnose/treedb/ids"
	"github.com/dumbnose/treedb/internal/defect"
	"github.com/dumbnose/treedb/metrics"
	"github.com/dumbnose/treedb/tree"
	"github.com/dumbnose/treedb/validate"
)

var tracer = otel.Tracer("github.com/dumbnose/treedb/transaction")

// Outcome mirrors spec.md's EditResult: the terminal classification of a
// transaction (or of a single apply, before it's folded into the
// transaction's overall status).
type Outcome int

const (
	// Applied means the edit produced a valid resulting snapshot.
	Applied Outcome = iota
	// Invalid means the edit is well-formed but the current snapshot's
	// state prevents its application; a different baseline might accept it.
	Invalid
	// Malformed means the edit could not be interpreted against any
	// snapshot; a peer that receives it should reject it outright.
	Malformed
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "Applied"
	case Invalid:
		return "Invalid"
	case Malformed:
		return "Malformed"
	default:
		return "Outcome(?)"
	}
}

// Status is the transaction's lifecycle state.
type Status int

const (
	// Open accepts further apply calls.
	Open Status = iota
	// Closed no longer accepts apply calls; outcome is frozen.
	Closed
)

func (s Status) String() string {
	if s == Open {
		return "Open"
	}
	return "Closed"
}

// Transaction interprets a sequence of Change values against a baseline
// tree.Snapshot. It is not safe for concurrent use by multiple goroutines
// — spec.md §5 requires strictly sequential application within a single
// transaction; see ApplyConcurrently for running independent transactions
// against a shared baseline in parallel.
type Transaction struct {
	view       tree.Snapshot
	detached   map[ids.DetachedSequenceID][]ids.NodeID
	status     Status
	outcome    Outcome
	log        *zap.Logger
	primitives Primitives
}

// New constructs a Transaction over initial. Construction never fails:
// initial is trusted to already be a well-formed baseline Snapshot.
func New(initial tree.Snapshot) *Transaction {
	return &Transaction{
		view:       initial,
		detached:   map[ids.DetachedSequenceID][]ids.NodeID{},
		status:     Open,
		outcome:    Applied,
		log:        zap.NewNop(),
		primitives: defaultPrimitives{},
	}
}

// WithLogger attaches a structured logger used for per-apply diagnostics.
// Returns the receiver for chaining.
func (t *Transaction) WithLogger(log *zap.Logger) *Transaction {
	if log != nil {
		t.log = log
	}
	return t
}

// CurrentView returns the transaction's view at this point. Callers must
// treat a view observed mid-transaction as provisional: it is only final
// once Close has returned Applied.
func (t *Transaction) CurrentView() tree.Snapshot {
	return t.view
}

// Status reports whether the transaction still accepts Apply calls.
func (t *Transaction) Status() Status {
	return t.status
}

// Apply interprets one Change against the current view. Precondition:
// Status() == Open; once Closed, further calls are no-ops that return the
// already-frozen outcome (spec.md §4.1).
func (t *Transaction) Apply(ctx context.Context, c change.Change) Outcome {
	if t.status == Closed {
		return t.outcome
	}

	ctx, span := tracer.Start(ctx, "Transaction.Apply", trace.WithAttributes(
		attribute.String("treedb.change_kind", changeKindLabel(c)),
	))
	defer span.End()

	var result Outcome
	switch v := c.(type) {
	case change.Build:
		result = t.applyBuild(ctx, v)
	case change.Insert:
		result = t.applyInsert(ctx, v)
	case change.Detach:
		result = t.applyDetach(ctx, v)
	case change.Constraint:
		result = t.applyConstraint(ctx, v)
	case change.SetValue:
		result = t.applySetValue(ctx, v)
	default:
		defect.Raise("transaction.Apply", "unknown change kind %T", c)
	}

	metrics.ChangesApplied.WithLabelValues(changeKindLabel(c), result.String()).Inc()
	metrics.DetachedSequences.Set(float64(len(t.detached)))
	if result != Applied {
		t.status = Closed
		t.outcome = result
		span.SetAttributes(attribute.Bool("treedb.transaction_closed", true))
		t.log.Warn("change classified",
			zap.String("kind", changeKindLabel(c)),
			zap.Stringer("result", result),
		)
	}
	t.log.Debug("applied change",
		zap.String("kind", changeKindLabel(c)),
		zap.Stringer("result", result),
		zap.Stringer("status", t.status),
	)
	return result
}

// Close finalizes the transaction per spec.md §4.1's validateOnClose: a
// non-empty detached registry overrides outcome to Malformed (invariant 4
// — storing a detached sequence and never consuming it is a policy
// error). Idempotent: calling Close on an already-closed transaction just
// returns the frozen outcome and view again.
func (t *Transaction) Close(ctx context.Context) (Outcome, tree.Snapshot) {
	start := time.Now()
	_, span := tracer.Start(ctx, "Transaction.Close")
	defer span.End()

	if t.status == Open {
		if len(t.detached) > 0 {
			t.outcome = Malformed
			t.log.Warn("transaction closed with unconsumed detached sequences",
				zap.Int("detached_count", len(t.detached)),
			)
		}
		t.status = Closed
	}
	metrics.TransactionsClosed.WithLabelValues(t.outcome.String()).Inc()
	metrics.CloseLatency.Observe(time.Since(start).Seconds())
	return t.outcome, t.view
}

func changeKindLabel(c change.Change) string {
	switch c.(type) {
	case change.Build:
		return "Build"
	case change.Insert:
		return "Insert"
	case change.Detach:
		return "Detach"
	case change.Constraint:
		return "Constraint"
	case change.SetValue:
		return "SetValue"
	default:
		return "Unknown"
	}
}

func validateOutcomeToEditOutcome(o validate.Outcome) Outcome {
	switch o {
	case validate.Valid:
		return Applied
	case validate.Invalid:
		return Invalid
	case validate.Malformed:
		return Malformed
	default:
		defect.Raise("transaction.validateOutcomeToEditOutcome", "unknown validate.Outcome %d", o)
		return Malformed
	}
}
