package server

import (
	"context"
	"testing"
	"time"

	"github.com/muurk/msgwire/internal/checksum"
	"github.com/muurk/msgwire/internal/session"
)

func TestNewWebsocketRequiresHandler(t *testing.T) {
	if _, err := NewWebsocket(Config{Addr: "127.0.0.1:0"}); err == nil {
		t.Fatal("NewWebsocket() with no handler should fail")
	}
}

func TestWebsocketShutdownStopsStart(t *testing.T) {
	srv, err := NewWebsocket(Config{
		Addr:    "127.0.0.1:0",
		Session: &session.Options{Checksum: checksum.CRC32},
		Handler: func(remoteAddr string, msg []byte) error { return nil },
	})
	if err != nil {
		t.Fatalf("NewWebsocket() error = %v", err)
	}

	startErr := make(chan error, 1)
	go func() { startErr <- srv.Start() }()

	// Let Start reach its listen call before stopping it.
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	select {
	case err := <-startErr:
		if err != nil {
			t.Errorf("Start() after Shutdown = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not return after Shutdown")
	}
}
