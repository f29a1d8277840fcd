// Msgwired is a standalone msgwire receiver daemon.
//
// It accepts connections on a TCP endpoint, a websocket endpoint, or
// both, reassembles incoming messages, and archives each one to disk.
// Unlike 'msgwire listen' it is meant to run unattended: it announces
// itself over mDNS, serves both transports at once, and drains active
// transfers on SIGTERM.
//
// Usage:
//
//	msgwired serve [flags]
//
// See 'msgwired serve --help' for available options.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/msgwire/internal/config"
	"github.com/muurk/msgwire/internal/discovery"
	"github.com/muurk/msgwire/internal/logging"
	"github.com/muurk/msgwire/internal/server"
	"github.com/muurk/msgwire/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "msgwired",
	Short: "Msgwire receiver daemon",
	Long: `A standalone daemon that receives msgwire messages and archives them
to disk. It can serve raw TCP and websocket endpoints simultaneously
and announces itself over mDNS so senders can discover it.

For interactive sending and receiving, use the 'msgwire' utility.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

var (
	configPath string
	tcpAddr    string
	wsAddr     string
	certPath   string
	keyPath    string
	spoolDir   string
	instance   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the receiver daemon",
	Long: `Start the msgwire receiver daemon.

Messages are written to the spool directory, one file per message.
When --ws-addr is given a websocket endpoint is served alongside the
TCP one. TLS applies to whichever endpoints are enabled.`,
	Example: `  # Receive on the default address, spool to ./spool
  msgwired serve --spool ./spool

  # TCP and websocket endpoints, announced as this host
  msgwired serve --addr :9555 --ws-addr :8080 --announce $(hostname)

  # TLS on both endpoints
  msgwired serve --ws-addr :8443 --cert fullchain.pem --key privkey.pem`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&configPath, "config", "", "Path to a profile file (YAML)")
	serveCmd.Flags().StringVar(&tcpAddr, "addr", "", "TCP listen address (defaults to the profile's listen_addr)")
	serveCmd.Flags().StringVar(&wsAddr, "ws-addr", "", "Websocket listen address (disabled if not specified)")
	serveCmd.Flags().StringVar(&certPath, "cert", "", "Path to TLS certificate file")
	serveCmd.Flags().StringVar(&keyPath, "key", "", "Path to TLS private key file")
	serveCmd.Flags().StringVar(&spoolDir, "spool", "spool", "Directory to write received messages to")
	serveCmd.Flags().StringVar(&instance, "announce", "", "Announce this instance name via mDNS")
}

func runServe(cmd *cobra.Command, args []string) error {
	if (certPath != "") != (keyPath != "") {
		return fmt.Errorf("both --cert and --key must be provided together, or neither")
	}

	profile := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		profile = loaded
	}
	if err := logging.Initialize(profile.LogLevel); err != nil {
		return err
	}

	addr := tcpAddr
	if addr == "" {
		addr = profile.ListenAddr
	}
	opts, err := profile.SessionOptions()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(spoolDir, 0755); err != nil {
		return fmt.Errorf("create spool directory: %w", err)
	}

	if instance != "" {
		_, portStr, err := net.SplitHostPort(addr)
		if err != nil {
			return fmt.Errorf("cannot announce %q: %w", addr, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("cannot announce %q: %w", addr, err)
		}
		shutdown, err := discovery.Announce(instance, port, map[string]string{
			"checksum": profile.Checksum,
		})
		if err != nil {
			return err
		}
		defer shutdown()
		logging.Info("Announced daemon", zap.String("instance", instance), zap.Int("port", port))
	}

	cfg := server.Config{
		Addr:     addr,
		CertPath: certPath,
		KeyPath:  keyPath,
		Session:  opts,
		Handler:  spoolHandler(spoolDir),
	}

	srv, err := server.New(cfg)
	if err != nil {
		return err
	}

	errCh := make(chan error, 2)
	go func() { errCh <- srv.Start() }()

	var wsSrv *server.WebsocketServer
	if wsAddr != "" {
		wsCfg := cfg
		wsCfg.Addr = wsAddr
		wsSrv, err = server.NewWebsocket(wsCfg)
		if err != nil {
			return err
		}
		go func() { errCh <- wsSrv.Start() }()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if wsSrv != nil {
			if err := wsSrv.Shutdown(ctx); err != nil {
				logging.Error("Websocket shutdown failed", zap.Error(err))
			}
		}
		return srv.Shutdown(ctx)
	case err := <-errCh:
		return err
	}
}

// spoolHandler archives each message under dir, named by arrival time.
// Handlers run concurrently, one per connection.
func spoolHandler(dir string) server.Handler {
	var seq atomic.Uint64
	return func(remoteAddr string, msg []byte) error {
		name := fmt.Sprintf("%s_%06d.bin", time.Now().UTC().Format("20060102T150405"), seq.Add(1))
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, msg, 0644); err != nil {
			return fmt.Errorf("spool message: %w", err)
		}
		logging.Info("Message spooled",
			zap.String("remote_addr", remoteAddr),
			zap.String("path", path),
			zap.Int("bytes", len(msg)),
		)
		return nil
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("msgwired %s (commit: %s)\n", version.Version, version.Commit)
	},
}
