package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
)

// OrphanSweeperConfig holds configuration for the orphan sweeper
type OrphanSweeperConfig struct {
	Interval time.Duration

	// GracePeriod is how long an upload may wait for its bill record
	GracePeriod time.Duration
}

// DefaultOrphanSweeperConfig returns default configuration
func DefaultOrphanSweeperConfig() OrphanSweeperConfig {
	return OrphanSweeperConfig{
		Interval:    10 * time.Minute,
		GracePeriod: 24 * time.Hour,
	}
}

// OrphanSweeper periodically deletes attachments whose create phase
// succeeded but whose update never did
type OrphanSweeper struct {
	config  OrphanSweeperConfig
	cleaner port.OrphanCleaner
	logger  *zap.Logger
	now     func() time.Time

	mu           sync.Mutex
	cancel       context.CancelFunc
	done         chan struct{}
	isRunning    bool
	deletedCount int
	lastError    error
}

// NewOrphanSweeper creates a new orphan sweeper
func NewOrphanSweeper(config OrphanSweeperConfig, cleaner port.OrphanCleaner, logger *zap.Logger) *OrphanSweeper {
	return &OrphanSweeper{
		config:  config,
		cleaner: cleaner,
		logger:  logger,
		now:     time.Now,
	}
}

// Start begins the sweep loop
func (w *OrphanSweeper) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isRunning {
		return fmt.Errorf("orphan sweeper already running")
	}
	if w.config.Interval <= 0 {
		return fmt.Errorf("orphan sweeper interval must be positive")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.isRunning = true

	w.logger.Info("OrphanSweeper started",
		zap.Duration("interval", w.config.Interval),
		zap.Duration("grace_period", w.config.GracePeriod))

	go w.loop(loopCtx, w.done)
	return nil
}

// Stop cancels the loop and waits for the running sweep to return
func (w *OrphanSweeper) Stop() error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}
	w.isRunning = false
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	cancel()
	<-done

	w.logger.Info("OrphanSweeper stopped", zap.Int("deleted_count", w.DeletedCount()))
	return nil
}

// Name returns the worker name for identification
func (w *OrphanSweeper) Name() string {
	return "OrphanSweeper"
}

func (w *OrphanSweeper) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.SweepOnce(ctx)
		}
	}
}

// SweepOnce deletes the orphans older than the grace period and returns
// how many were removed
func (w *OrphanSweeper) SweepOnce(ctx context.Context) int {
	cutoff := w.now().Add(-w.config.GracePeriod)
	n, err := w.cleaner.DeleteOrphans(ctx, cutoff)

	w.mu.Lock()
	w.deletedCount += n
	w.lastError = err
	w.mu.Unlock()

	if err != nil {
		w.logger.Error("Orphan sweep failed", zap.Int("deleted", n), zap.Error(err))
		return n
	}
	if n > 0 {
		w.logger.Info("Orphan sweep completed", zap.Int("deleted", n), zap.Time("cutoff", cutoff))
	}
	return n
}

// DeletedCount returns how many orphans this worker has removed
func (w *OrphanSweeper) DeletedCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.deletedCount
}

// LastError returns the error of the latest sweep, nil if it succeeded
func (w *OrphanSweeper) LastError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastError
}
