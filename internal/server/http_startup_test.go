package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeStopsOnCancel(t *testing.T) {
	s, h := newTestServer(t)
	hs := &http.Server{Addr: "127.0.0.1:0", Handler: h, ReadHeaderTimeout: time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.serve(ctx, hs) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestServeReportsListenerFailure(t *testing.T) {
	s, h := newTestServer(t)
	hs := &http.Server{Addr: "127.0.0.1:not-a-port", Handler: h, ReadHeaderTimeout: time.Second}

	err := s.serve(context.Background(), hs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http server")
}

func TestInitializeEngineKeepsInjected(t *testing.T) {
	s, _ := newTestServer(t)
	before := s.Engine()

	require.NoError(t, s.initializeEngine())
	assert.Same(t, before, s.Engine())
}
