package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"dealMintAPI/internal/drop"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (s *countingSweeper) ConfirmPendingDropClaims(ctx context.Context) (*drop.SweepResult, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return &drop.SweepResult{Processed: 1, Confirmed: 1}, nil
}

func TestConfirmationWorkerSweepsOnTicker(t *testing.T) {
	sweeper := &countingSweeper{}
	w := NewConfirmationWorker(sweeper, 10*time.Millisecond, zap.NewNop())

	w.Start(context.Background())
	assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	w.Stop()

	stopped := sweeper.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, sweeper.calls.Load())
}

func TestConfirmationWorkerKeepsRunningAfterError(t *testing.T) {
	sweeper := &countingSweeper{err: errors.New("rpc down")}
	w := NewConfirmationWorker(sweeper, 10*time.Millisecond, zap.NewNop())

	w.Start(context.Background())
	defer w.Stop()
	assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestConfirmationWorkerDisabled(t *testing.T) {
	sweeper := &countingSweeper{}
	w := NewConfirmationWorker(sweeper, 0, zap.NewNop())

	w.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	w.Stop()
	assert.Zero(t, sweeper.calls.Load())
}

func TestConfirmationWorkerStopsWithParentContext(t *testing.T) {
	sweeper := &countingSweeper{}
	w := NewConfirmationWorker(sweeper, 5*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	cancel()
	w.Stop()

	stopped := sweeper.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, sweeper.calls.Load())
}
