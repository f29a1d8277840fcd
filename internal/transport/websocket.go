package transport

import (
	"fmt"
	"io"

	"github.com/gorilla/websocket"
)

// WebSocket adapts a *websocket.Conn to the Transport contract.
//
// Each Write becomes one binary websocket message; Read drains incoming
// binary messages as a continuous byte stream, carrying leftovers across
// calls so message boundaries on the websocket side are invisible to the
// session layer. Not safe for concurrent readers or writers, matching the
// underlying gorilla connection.
type WebSocket struct {
	conn *websocket.Conn
	cur  io.Reader // remainder of the message currently being drained
}

// NewWebSocket wraps an established websocket connection.
func NewWebSocket(conn *websocket.Conn) *WebSocket {
	return &WebSocket{conn: conn}
}

// DialWebSocket connects to a msgwire websocket endpoint (ws:// or wss://)
// and returns it as a Transport.
func DialWebSocket(url string) (*WebSocket, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: dial websocket %s: %w", url, err)
	}
	return NewWebSocket(conn), nil
}

func (t *WebSocket) Read(p []byte) (int, error) {
	for {
		if t.cur == nil {
			msgType, r, err := t.conn.NextReader()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return 0, io.EOF
				}
				return 0, err
			}
			if msgType != websocket.BinaryMessage {
				// Text/control payloads are not part of the stream.
				continue
			}
			t.cur = r
		}
		n, err := t.cur.Read(p)
		if err == io.EOF {
			t.cur = nil
			if n == 0 {
				continue
			}
			return n, nil
		}
		return n, err
	}
}

func (t *WebSocket) Write(p []byte) (int, error) {
	if err := t.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close sends a close frame and tears down the underlying connection.
func (t *WebSocket) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = t.conn.WriteMessage(websocket.CloseMessage, msg)
	return t.conn.Close()
}
