package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/msgwire/internal/logging"
	"github.com/muurk/msgwire/internal/session"
	"github.com/muurk/msgwire/internal/transport"
)

// WebsocketPath is the endpoint a websocket listener serves.
const WebsocketPath = "/msgwire"

// WebsocketServer serves the msgwire protocol over websocket connections.
type WebsocketServer struct {
	config   Config
	upgrader websocket.Upgrader
	httpSrv  *http.Server
}

// NewWebsocket creates a websocket listener with the same Config shape as
// the TCP server.
func NewWebsocket(config Config) (*WebsocketServer, error) {
	if config.Handler == nil {
		return nil, errEmptyHandler
	}
	s := &WebsocketServer{
		config: config,
		upgrader: websocket.Upgrader{
			// The listener is an explicit sink; any origin may connect.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc(WebsocketPath, s.handleUpgrade)
	s.httpSrv = &http.Server{Addr: config.Addr, Handler: mux}
	return s, nil
}

// Start serves HTTP on the configured address and blocks until the server
// fails or Shutdown stops it. A Shutdown-initiated stop returns nil.
func (s *WebsocketServer) Start() error {
	logging.Info("Websocket server listening",
		zap.String("addr", s.config.Addr),
		zap.String("path", WebsocketPath),
	)
	var err error
	if s.config.CertPath != "" || s.config.KeyPath != "" {
		err = s.httpSrv.ListenAndServeTLS(s.config.CertPath, s.config.KeyPath)
	} else {
		err = s.httpSrv.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting upgrades and waits for in-flight connections
// to drain or the context to expire.
func (s *WebsocketServer) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down websocket server...")
	return s.httpSrv.Shutdown(ctx)
}

func (s *WebsocketServer) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("Websocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}
	logging.LogConnection(r.RemoteAddr, "websocket_upgraded")

	sess := session.Wrap(transport.NewWebSocket(conn), s.config.Session)
	defer sess.Close()

	for {
		msg, err := sess.Receive()
		if err != nil {
			logging.LogConnection(r.RemoteAddr, "websocket_closed")
			return
		}
		logging.Info("Message received",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Int("bytes", len(msg)),
		)
		if err := s.config.Handler(r.RemoteAddr, msg); err != nil {
			logging.Error("Handler rejected message",
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err),
			)
			return
		}
	}
}
