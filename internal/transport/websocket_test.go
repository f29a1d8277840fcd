package transport

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

func TestWebSocketTransport(t *testing.T) {
	upgrader := websocket.Upgrader{}

	// Echo server: drain each binary message and write it back through
	// the same adapter the client side uses.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		tr := NewWebSocket(conn)
		defer tr.Close()

		buf := make([]byte, 64)
		for {
			n, err := tr.Read(buf)
			if err != nil {
				return
			}
			if _, err := tr.Write(buf[:n]); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, err := DialWebSocket(url)
	if err != nil {
		t.Fatalf("DialWebSocket() error = %v", err)
	}
	defer client.Close()

	t.Run("single message round trip", func(t *testing.T) {
		msg := []byte("hello over websocket")
		if _, err := client.Write(msg); err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		got := make([]byte, len(msg))
		if _, err := io.ReadFull(client, got); err != nil {
			t.Fatalf("ReadFull() error = %v", err)
		}
		if !bytes.Equal(got, msg) {
			t.Errorf("read %q, want %q", got, msg)
		}
	})

	t.Run("read spans message boundaries", func(t *testing.T) {
		// Two writes become two websocket messages; a single ReadFull
		// must drain across both.
		if _, err := client.Write([]byte("first-")); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if _, err := client.Write([]byte("second")); err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		got := make([]byte, len("first-second"))
		if _, err := io.ReadFull(client, got); err != nil {
			t.Fatalf("ReadFull() error = %v", err)
		}
		if string(got) != "first-second" {
			t.Errorf("read %q, want %q", got, "first-second")
		}
	})
}

func TestDialWebSocketError(t *testing.T) {
	if _, err := DialWebSocket("ws://127.0.0.1:1/nope"); err == nil {
		t.Error("DialWebSocket() to a closed port should fail")
	}
}
