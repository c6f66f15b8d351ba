package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"

	dErrors "placement/pkg/domain-errors"
)

const defaultTxTimeout = 5 * time.Second

// TxRunner runs a callback inside a MongoDB session transaction. Stores pick up
// the session from the callback's context. With transactions disabled (standalone
// mongod) the callback runs directly and its writes are not atomic.
type TxRunner struct {
	client  *mongo.Client
	enabled bool
	timeout time.Duration
}

// NewTxRunner builds a runner over client.
func NewTxRunner(client *mongo.Client, enabled bool) *TxRunner {
	return &TxRunner{client: client, enabled: enabled, timeout: defaultTxTimeout}
}

func (t *TxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	if !t.enabled {
		return fn(ctx)
	}

	sess, err := t.client.StartSession()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to start session")
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc context.Context) (any, error) {
		return nil, fn(sc)
	})
	return err
}
