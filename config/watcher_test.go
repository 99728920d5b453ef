package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWatcherRequiresPath(t *testing.T) {
	_, err := NewWatcher("", NewLoader())
	require.Error(t, err)
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  jwt_secret: s1\nlog:\n  level: info\n"), 0644))

	w, err := NewWatcher(path, NewLoader(), WithDebounce(50*time.Millisecond))
	require.NoError(t, err)

	reloaded := make(chan *Config, 1)
	w.OnChange(func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go func() { _ = w.Watch(ctx) }()
	defer w.Stop()

	// Give the watcher a moment to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  jwt_secret: s1\nlog:\n  level: debug\n"), 0644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "debug", cfg.Log.Level)
	case <-ctx.Done():
		t.Fatal("watcher did not reload config in time")
	}
}

func TestWatcherIgnoresInvalidReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  jwt_secret: s1\n"), 0644))

	w, err := NewWatcher(path, NewLoader(), WithDebounce(20*time.Millisecond))
	require.NoError(t, err)

	called := make(chan struct{}, 1)
	w.OnChange(func(*Config) { called <- struct{}{} })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Watch(ctx) }()
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)
	// Dropping the secret makes the config invalid; callback must not fire.
	require.NoError(t, os.WriteFile(path, []byte("auth: {}\n"), 0644))

	select {
	case <-called:
		t.Fatal("callback fired for invalid config")
	case <-time.After(300 * time.Millisecond):
	}
}
