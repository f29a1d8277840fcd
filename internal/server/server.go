package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/msgwire/internal/logging"
	"github.com/muurk/msgwire/internal/session"
)

// Handler consumes one reassembled message. remoteAddr identifies the
// sending connection; msg is only valid for the duration of the call.
type Handler func(remoteAddr string, msg []byte) error

// Config holds the listener configuration.
type Config struct {
	Addr     string           // listen address (host:port)
	CertPath string           // path to a TLS certificate (optional)
	KeyPath  string           // path to the TLS private key (optional)
	Session  *session.Options // options applied to every connection
	Handler  Handler          // receives every message; required
}

var errEmptyHandler = errors.New("server: handler is required")

// Server accepts msgwire connections and drains messages from them.
type Server struct {
	config      Config
	listener    net.Listener
	wg          sync.WaitGroup
	mu          sync.Mutex
	activeConns map[string]net.Conn
}

// New creates a Server. The handler must be set.
func New(config Config) (*Server, error) {
	if config.Handler == nil {
		return nil, errEmptyHandler
	}
	return &Server{
		config:      config,
		activeConns: make(map[string]net.Conn),
	}, nil
}

// Start begins accepting connections and blocks until the listener is
// closed by Shutdown or fails.
func (s *Server) Start() error {
	var (
		listener net.Listener
		err      error
	)
	if s.config.CertPath != "" || s.config.KeyPath != "" {
		tlsConfig, cfgErr := newTLSConfig(s.config.CertPath, s.config.KeyPath)
		if cfgErr != nil {
			return cfgErr
		}
		listener, err = tls.Listen("tcp", s.config.Addr, tlsConfig)
	} else {
		listener, err = net.Listen("tcp", s.config.Addr)
	}
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", s.config.Addr, err)
	}
	s.listener = listener

	logging.Info("Server listening for connections",
		zap.String("addr", listener.Addr().String()),
		zap.Bool("tls", s.config.CertPath != ""),
	)
	return s.acceptConnections()
}

// Addr returns the bound listener address, once Start has been called.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) acceptConnections() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			logging.Error("Failed to accept connection", zap.Error(err))
			continue
		}

		s.track(conn)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			s.handleConnection(conn)
		}()
	}
}

// handleConnection drains messages from one connection until the peer
// disconnects or the handler rejects a message.
func (s *Server) handleConnection(conn net.Conn) {
	remote := conn.RemoteAddr().String()
	logging.LogConnection(remote, "accepted")

	sess := session.Wrap(conn, s.config.Session)
	defer sess.Close()

	for {
		msg, err := sess.Receive()
		if err != nil {
			logging.LogConnection(remote, "closed")
			logging.Debug("Receive ended", zap.String("remote_addr", remote), zap.Error(err))
			return
		}
		logging.Info("Message received",
			zap.String("remote_addr", remote),
			zap.Int("bytes", len(msg)),
		)
		if err := s.config.Handler(remote, msg); err != nil {
			logging.Error("Handler rejected message",
				zap.String("remote_addr", remote),
				zap.Error(err),
			)
			return
		}
	}
}

// Shutdown stops accepting connections, closes active ones, and waits
// for handlers to drain or the context to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			logging.Error("Error closing listener", zap.Error(err))
		}
	}

	s.mu.Lock()
	for addr, conn := range s.activeConns {
		logging.Info("Closing active connection", zap.String("remote_addr", addr))
		_ = conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All connections closed gracefully")
		return nil
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
		return ctx.Err()
	case <-time.After(10 * time.Second):
		logging.Warn("Shutdown timeout, forcing close")
		return errors.New("server: shutdown timed out")
	}
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	s.activeConns[conn.RemoteAddr().String()] = conn
	s.mu.Unlock()
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.activeConns, conn.RemoteAddr().String())
	s.mu.Unlock()
}

// newTLSConfig loads a certificate pair for the listener.
func newTLSConfig(certPath, keyPath string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, fmt.Errorf("server: load TLS certificate: %w", err)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
