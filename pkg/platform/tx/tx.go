// Package tx carries an undo journal through context so in-memory stores can
// take part in a RunInTx boundary.
package tx

import (
	"context"
	"sync"
)

type ctxKey struct{}

var journalKey = ctxKey{}

// Journal collects compensating actions recorded by in-memory stores.
type Journal struct {
	mu   sync.Mutex
	undo []func()
}

// Record registers a compensating action.
func (j *Journal) Record(undo func()) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.undo = append(j.undo, undo)
}

// Rollback runs the recorded actions newest first and clears the journal.
func (j *Journal) Rollback() {
	j.mu.Lock()
	undo := j.undo
	j.undo = nil
	j.mu.Unlock()
	for i := len(undo) - 1; i >= 0; i-- {
		undo[i]()
	}
}

// WithJournal stores a journal in context for downstream store usage.
func WithJournal(ctx context.Context, j *Journal) context.Context {
	if j == nil {
		return ctx
	}
	return context.WithValue(ctx, journalKey, j)
}

// From extracts the journal from context if present.
func From(ctx context.Context) (*Journal, bool) {
	j, ok := ctx.Value(journalKey).(*Journal)
	return j, ok
}

// RecordUndo registers undo on the context's journal; outside a transaction it is a no-op.
func RecordUndo(ctx context.Context, undo func()) {
	if j, ok := From(ctx); ok {
		j.Record(undo)
	}
}
