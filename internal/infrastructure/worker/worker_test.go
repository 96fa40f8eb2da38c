package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockCleaner struct {
	mu      sync.Mutex
	cutoffs []time.Time
	n       int
	err     error
}

func (m *mockCleaner) DeleteOrphans(ctx context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cutoffs = append(m.cutoffs, cutoff)
	return m.n, m.err
}

func (m *mockCleaner) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cutoffs)
}

func TestOrphanSweeper_SweepOnce(t *testing.T) {
	cleaner := &mockCleaner{n: 3}
	w := NewOrphanSweeper(OrphanSweeperConfig{Interval: time.Hour, GracePeriod: 2 * time.Hour}, cleaner, zap.NewNop())
	now := time.Date(2004, 4, 4, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return now }

	assert.Equal(t, 3, w.SweepOnce(context.Background()))
	assert.Equal(t, []time.Time{now.Add(-2 * time.Hour)}, cleaner.cutoffs)
	assert.Equal(t, 3, w.DeletedCount())
	assert.NoError(t, w.LastError())

	cleaner.err = errors.New("disk full")
	cleaner.n = 1
	assert.Equal(t, 1, w.SweepOnce(context.Background()))
	assert.Equal(t, 4, w.DeletedCount())
	assert.ErrorIs(t, w.LastError(), cleaner.err)
}

func TestOrphanSweeper_Lifecycle(t *testing.T) {
	cleaner := &mockCleaner{}
	w := NewOrphanSweeper(OrphanSweeperConfig{Interval: 5 * time.Millisecond, GracePeriod: time.Hour}, cleaner, zap.NewNop())

	require.NoError(t, w.Start(context.Background()))
	assert.Error(t, w.Start(context.Background()), "already running")

	assert.Eventually(t, func() bool { return cleaner.calls() >= 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop(), "stop is idempotent")

	calls := cleaner.calls()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, cleaner.calls(), "no sweep after stop")
}

func TestOrphanSweeper_RejectsZeroInterval(t *testing.T) {
	w := NewOrphanSweeper(OrphanSweeperConfig{}, &mockCleaner{}, zap.NewNop())
	assert.Error(t, w.Start(context.Background()))
}

type fakeWorker struct {
	name     string
	startErr error
	started  bool
	stopped  bool
}

func (f *fakeWorker) Start(ctx context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.started = true
	return nil
}

func (f *fakeWorker) Stop() error {
	f.stopped = true
	return nil
}

func (f *fakeWorker) Name() string { return f.name }

func TestWorkerManager(t *testing.T) {
	m := NewWorkerManager(zap.NewNop())
	ok := &fakeWorker{name: "ok"}
	broken := &fakeWorker{name: "broken", startErr: errors.New("no")}
	m.Register(ok)
	m.Register(broken)
	assert.Equal(t, 2, m.GetWorkerCount())

	require.NoError(t, m.StartAll(context.Background()))
	assert.True(t, m.IsRunning())
	assert.True(t, ok.started)
	assert.Error(t, m.StartAll(context.Background()))

	require.NoError(t, m.StopAll())
	assert.False(t, m.IsRunning())
	assert.True(t, ok.stopped)
	require.NoError(t, m.StopAll())
}
