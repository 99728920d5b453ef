package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatforge/chatforge/config"
	"github.com/chatforge/chatforge/pkg/api/handlers"
	"github.com/chatforge/chatforge/pkg/logger"
)

func TestHTTPServerStartShutdown(t *testing.T) {
	log := logger.New(&logger.Config{Level: logger.ErrorLevel, Format: "text", Output: "stderr"})
	cfg := config.DefaultConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0 // let the OS pick

	srv := NewHTTPServer(cfg, log, &Handlers{
		Health: handlers.NewHealthHandler(staticHealth{}),
		Authn:  nil,
	})
	require.NotNil(t, srv)

	done := make(chan error, 1)
	go func() {
		done <- srv.Start()
	}()

	// Give the listener a moment, then shut down cleanly.
	time.Sleep(100 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
