package workers

import (
	"context"
	"sync"
	"time"

	"dealMintAPI/internal/drop"

	"go.uber.org/zap"
)

// Sweeper confirms pending drop claims in one pass.
type Sweeper interface {
	ConfirmPendingDropClaims(ctx context.Context) (*drop.SweepResult, error)
}

// ConfirmationWorker runs the confirmation sweep on a ticker.
type ConfirmationWorker struct {
	sweeper  Sweeper
	interval time.Duration
	timeout  time.Duration
	log      *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewConfirmationWorker returns a worker that sweeps every interval. A zero
// interval disables it.
func NewConfirmationWorker(sweeper Sweeper, interval time.Duration, log *zap.Logger) *ConfirmationWorker {
	return &ConfirmationWorker{
		sweeper:  sweeper,
		interval: interval,
		timeout:  5 * time.Minute,
		log:      log,
	}
}

// Start launches the sweep loop. It returns immediately.
func (w *ConfirmationWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		w.log.Info("claim confirmation worker disabled")
		return
	}

	ctx, w.cancel = context.WithCancel(ctx)
	ticker := time.NewTicker(w.interval)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.runOnce(ctx)
			}
		}
	}()

	w.log.Info("claim confirmation worker started", zap.Duration("interval", w.interval))
}

// Stop cancels the loop and waits for an in-flight sweep to return.
func (w *ConfirmationWorker) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	w.wg.Wait()
}

func (w *ConfirmationWorker) runOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	result, err := w.sweeper.ConfirmPendingDropClaims(ctx)
	if err != nil {
		w.log.Error("claim confirmation sweep failed", zap.Error(err))
		return
	}
	if result.Processed > 0 {
		w.log.Info("claim confirmation sweep finished",
			zap.Int("processed", result.Processed),
			zap.Int("confirmed", result.Confirmed))
	}
}
