package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/homedash/internal/config"
	"github.com/dukerupert/homedash/internal/fault"
	"github.com/dukerupert/homedash/internal/service"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		DataDir:     filepath.Join(dir, "data"),
		BackupDir:   filepath.Join(dir, "backups"),
		LogLevel:    "info",
		MetricsFile: filepath.Join(dir, "homedash.prom"),
		BcryptCost:  bcrypt.MinCost,
	}
}

func TestWarmAndMetrics(t *testing.T) {
	cfg := testConfig(t)
	a := Open(cfg, nil, func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) })

	require.NoError(t, a.Warm(context.Background()))

	_, err := a.Auth.Register(service.RegisterInput{
		Username: "alice",
		Password: "Password1",
		Name:     "Alice",
		Email:    "alice@example.com",
	})
	require.NoError(t, err)

	require.NoError(t, a.Close())
	data, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `homedash_store_operations_total{collection="users",op="insert",result="ok"} 1`)
}

func TestWarmReportsBrokenCollection(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.DataDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.DataDir, "chores.json"), []byte("{nope"), 0o644))

	a := Open(cfg, nil, nil)
	err := a.Warm(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, fault.ParseError)
}

func TestCloseWithoutMetricsFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.MetricsFile = ""
	assert.NoError(t, Open(cfg, nil, nil).Close())
}
