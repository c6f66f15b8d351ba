package tx

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "placement/pkg/domain-errors"
	"placement/pkg/requestcontext"
)

func TestSharded_RunInTx(t *testing.T) {
	ctx := requestcontext.WithPrincipal(context.Background(), "asha@college.edu", "Asha")

	t.Run("commit keeps writes", func(t *testing.T) {
		var state []string
		err := NewSharded(0).RunInTx(ctx, func(ctx context.Context) error {
			state = append(state, "applied")
			RecordUndo(ctx, func() { state = state[:0] })
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"applied"}, state)
	})

	t.Run("failure rolls back newest first", func(t *testing.T) {
		var order []string
		boom := errors.New("membership write failed")
		err := NewSharded(0).RunInTx(ctx, func(ctx context.Context) error {
			RecordUndo(ctx, func() { order = append(order, "posting") })
			RecordUndo(ctx, func() { order = append(order, "profile") })
			return boom
		})
		require.ErrorIs(t, err, boom)
		assert.Equal(t, []string{"profile", "posting"}, order)
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		called := false
		err := NewSharded(0).RunInTx(cctx, func(context.Context) error {
			called = true
			return nil
		})
		assert.False(t, called)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
	})

	t.Run("same caller is serialized", func(t *testing.T) {
		runner := NewSharded(time.Second)
		var mu sync.Mutex
		inFlight, maxInFlight := 0, 0
		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = runner.RunInTx(ctx, func(context.Context) error {
					mu.Lock()
					inFlight++
					if inFlight > maxInFlight {
						maxInFlight = inFlight
					}
					mu.Unlock()
					time.Sleep(time.Millisecond)
					mu.Lock()
					inFlight--
					mu.Unlock()
					return nil
				})
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, maxInFlight)
	})

	t.Run("undo outside a transaction is a no-op", func(t *testing.T) {
		assert.NotPanics(t, func() { RecordUndo(context.Background(), func() {}) })
	})
}
