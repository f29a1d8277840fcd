// Package transport defines the byte-stream contract the session layer
// runs over, plus adapters for concrete carriers (TCP, websocket).
//
// A Transport must behave like an already-established, ordered, lossless
// byte stream: writes deliver every byte or fail, reads block until data
// arrives or the stream ends. Deadlines and cancellation belong to the
// carrier; a deadline expiry surfaces here as an ordinary read/write error.
package transport

import (
	"fmt"
	"io"
	"net"
	"time"
)

// Transport is a reliable, ordered, bidirectional byte stream.
//
// The session layer reads with io.ReadFull semantics and relies on the
// io.Writer contract (a short write must return a non-nil error), so any
// net.Conn satisfies Transport directly.
type Transport interface {
	io.Reader
	io.Writer
	Close() error
}

// DefaultDialTimeout bounds how long Dial waits for the TCP handshake.
const DefaultDialTimeout = 10 * time.Second

// Dial opens a TCP connection to addr and returns it as a Transport.
func Dial(addr string) (Transport, error) {
	return DialTimeout(addr, DefaultDialTimeout)
}

// DialTimeout is Dial with an explicit handshake timeout.
func DialTimeout(addr string, timeout time.Duration) (Transport, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", addr, err)
	}
	return conn, nil
}
