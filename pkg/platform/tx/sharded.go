package tx

import (
	"context"
	"sync"
	"time"

	dErrors "placement/pkg/domain-errors"
	"placement/pkg/requestcontext"
)

// numShards spreads callers over independent locks; the same caller always
// lands on the same shard so their lifecycle writes are serialized.
const numShards = 128

// defaultTimeout is the maximum duration for a transaction.
const defaultTimeout = 5 * time.Second

// Sharded is the in-memory transaction runner. It serializes transactions per
// caller email and rolls back recorded store writes when the callback fails.
type Sharded struct {
	shards  [numShards]sync.Mutex
	timeout time.Duration
}

// NewSharded builds a runner; a zero timeout uses the default.
func NewSharded(timeout time.Duration) *Sharded {
	return &Sharded{timeout: timeout}
}

func (t *Sharded) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shard := selectShard(ctx)
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	// Check again after acquiring lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	journal := &Journal{}
	if err := fn(WithJournal(ctx, journal)); err != nil {
		journal.Rollback()
		return err
	}
	return nil
}

// selectShard picks a shard from the caller email, or shard 0 when anonymous.
func selectShard(ctx context.Context) int {
	if email := requestcontext.Email(ctx); email != "" {
		return int(hashString(email) % numShards)
	}
	return 0
}

// hashString is FNV-1a.
func hashString(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}
