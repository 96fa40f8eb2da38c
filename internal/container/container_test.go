package container

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/garyjia/billed/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 5678, MaxUploadSize: 1 << 20},
		Database: config.DatabaseConfig{
			Path: filepath.Join(dir, "billed.db"),
		},
		Storage: config.StorageConfig{
			Driver:        config.StorageDriverLocal,
			BaseDir:       filepath.Join(dir, "files"),
			PublicBaseURL: "http://localhost:5678/files",
		},
		Worker: config.WorkerConfig{
			OrphanSweepInterval: time.Hour,
			OrphanGracePeriod:   time.Hour,
		},
	}
}

func TestNewContainer_Validation(t *testing.T) {
	_, err := NewContainer(nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewContainer(testConfig(t), nil)
	assert.Error(t, err)

	cfg := testConfig(t)
	cfg.Storage.Driver = "ftp"
	_, err = NewContainer(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestContainer_Lifecycle(t *testing.T) {
	c, err := NewContainer(testConfig(t), zap.NewNop())
	require.NoError(t, err)

	_, err = c.HTTPServer()
	assert.Error(t, err, "server needs a started container")

	require.NoError(t, c.Start(context.Background()))
	assert.True(t, c.Ready())
	assert.Error(t, c.Start(context.Background()), "already started")

	health := c.Health()
	assert.True(t, health.Overall, "%+v", health.Components)
	assert.True(t, health.Components["database"].Healthy)
	assert.Equal(t, 1, c.Workers().GetWorkerCount())
	assert.Len(t, c.Dispatcher().ListHandlers("bill.accepted"), 1)
	assert.Equal(t, "review handlers: 2", health.Components["dispatcher"].Message)

	srv, err := c.HTTPServer()
	require.NoError(t, err)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, c.Close())
	assert.False(t, c.Ready())
	assert.Error(t, c.Close())
	assert.Error(t, c.Start(context.Background()))
}

func TestZapLoggerAdapter(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	adapter := &zapLoggerAdapter{logger: zap.New(core)}

	adapter.Error("update failed", "bill_id", "b1", "error", errors.New("boom"), 42, "ignored", "dangling")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "b1", fields["bill_id"])
	assert.Equal(t, "boom", fields["error"])
	assert.Len(t, fields, 2)
}
