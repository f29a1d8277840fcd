package server

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/muurk/msgwire/internal/checksum"
	"github.com/muurk/msgwire/internal/session"
)

func TestNewRequiresHandler(t *testing.T) {
	if _, err := New(Config{Addr: "127.0.0.1:0"}); err == nil {
		t.Fatal("New() with no handler should fail")
	}
}

func TestServerReceivesMessages(t *testing.T) {
	received := make(chan []byte, 4)
	srv, err := New(Config{
		Addr:    "127.0.0.1:0",
		Session: &session.Options{Checksum: checksum.CRC32},
		Handler: func(remoteAddr string, msg []byte) error {
			received <- append([]byte(nil), msg...)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	startErr := make(chan error, 1)
	go func() { startErr <- srv.Start() }()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	// Start binds the listener asynchronously.
	var addr string
	for i := 0; i < 100; i++ {
		if a := srv.Addr(); a != nil {
			addr = a.String()
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if addr == "" {
		t.Fatal("server never bound a listener")
	}

	sess, err := session.Dial(addr, &session.Options{Checksum: checksum.CRC32})
	if err != nil {
		t.Fatalf("Dial(%q) error = %v", addr, err)
	}
	defer sess.Close()

	want := bytes.Repeat([]byte("segmented"), 500)
	if err := sess.Send(want); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	select {
	case got := <-received:
		if !bytes.Equal(got, want) {
			t.Errorf("handler got %d bytes, want %d", len(got), len(want))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler never received the message")
	}

	select {
	case err := <-startErr:
		t.Fatalf("Start() returned early: %v", err)
	default:
	}
}
