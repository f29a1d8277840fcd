package main

import (
	"context"
	"fmt"
	"io"
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
	"github.com/muurk/msgwire/internal/session"
	"github.com/muurk/msgwire/internal/transport"
	"github.com/muurk/msgwire/internal/ui"
)

var (
	configPath  string
	listenAddr  string
	targetAddr  string
	wsURL       string
	wsServe     bool
	announce    string
	outDir      string
	tlsCert     string
	tlsKey      string
	discoverFor string
	pickPeer    bool
	scanTimeout int
	noProgress  bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a profile file (YAML)")

	rootCmd.AddCommand(listenCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(discoverCmd)
}

// loadProfile resolves the profile from --config or defaults, and brings
// logging up according to it.
func loadProfile() (*config.Profile, error) {
	profile := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		profile = loaded
	}
	if err := logging.Initialize(profile.LogLevel); err != nil {
		return nil, err
	}
	return profile, nil
}

// listenCmd receives messages from inbound connections.
var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Accept connections and receive messages",
	Long: `Listen for msgwire connections and receive messages.

Each received message is written to stdout, or to numbered files when
--out is given. With --ws the listener serves a websocket endpoint at
/msgwire instead of accepting raw TCP connections. With --announce the
listener registers itself via mDNS so senders can find it with
'msgwire discover'.`,
	Example: `  # Receive on the default address, messages to stdout
  msgwire listen

  # Receive to files, announced on the local network
  msgwire listen --addr :9555 --out ./inbox --announce $(hostname)

  # Serve a websocket endpoint
  msgwire listen --addr :8080 --ws`,
	RunE: runListen,
}

func init() {
	listenCmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address (defaults to the profile's listen_addr)")
	listenCmd.Flags().BoolVar(&wsServe, "ws", false, "Serve a websocket endpoint instead of raw TCP")
	listenCmd.Flags().StringVar(&announce, "announce", "", "Announce this instance name via mDNS")
	listenCmd.Flags().StringVar(&outDir, "out", "", "Write each message to a numbered file in this directory")
	listenCmd.Flags().StringVar(&tlsCert, "tls-cert", "", "Path to a TLS certificate")
	listenCmd.Flags().StringVar(&tlsKey, "tls-key", "", "Path to a TLS private key")
}

func runListen(cmd *cobra.Command, args []string) error {
	profile, err := loadProfile()
	if err != nil {
		return err
	}
	addr := listenAddr
	if addr == "" {
		addr = profile.ListenAddr
	}
	opts, err := profile.SessionOptions()
	if err != nil {
		return err
	}
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	if announce != "" {
		port, err := portOf(addr)
		if err != nil {
			return fmt.Errorf("cannot announce %q: %w", addr, err)
		}
		shutdown, err := discovery.Announce(announce, port, map[string]string{
			"checksum": profile.Checksum,
		})
		if err != nil {
			return err
		}
		defer shutdown()
		logging.Info("Announced listener", zap.String("instance", announce), zap.Int("port", port))
	}

	cfg := server.Config{
		Addr:     addr,
		CertPath: tlsCert,
		KeyPath:  tlsKey,
		Session:  opts,
		Handler:  storeMessage(),
	}

	if wsServe {
		srv, err := server.NewWebsocket(cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "listening on ws://%s%s\n", addr, server.WebsocketPath)
		return srv.Start()
	}

	srv, err := server.New(cfg)
	if err != nil {
		return err
	}

	// Stop on interrupt, draining in-flight transfers.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-sigCh:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	case err := <-errCh:
		return err
	}
}

// storeMessage returns a handler that writes each message to stdout, or
// to numbered files when --out is set. Handlers run concurrently, one per
// connection.
func storeMessage() server.Handler {
	var msgNum atomic.Uint64
	return func(remoteAddr string, msg []byte) error {
		if outDir == "" {
			_, err := os.Stdout.Write(msg)
			return err
		}
		path := filepath.Join(outDir, fmt.Sprintf("msg_%04d.bin", msgNum.Add(1)))
		return os.WriteFile(path, msg, 0644)
	}
}

// sendCmd delivers one message to a peer.
var sendCmd = &cobra.Command{
	Use:   "send [file]",
	Short: "Send a file (or stdin) as one message",
	Long: `Send the contents of a file, or stdin when no file is given, to a
msgwire listener as a single message. The transfer blocks until every
segment has been acknowledged.`,
	Example: `  # Send a file over TCP
  msgwire send --addr 192.168.1.20:9555 report.tar

  # Pipe stdin to a discovered peer
  tar cz ./logs | msgwire send --discover workstation

  # Send over websocket
  msgwire send --ws ws://192.168.1.20:8080/msgwire report.tar`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringVar(&targetAddr, "addr", "", "Peer TCP address")
	sendCmd.Flags().StringVar(&wsURL, "ws", "", "Peer websocket URL")
	sendCmd.Flags().StringVar(&discoverFor, "discover", "", "Find the peer by mDNS instance name")
	sendCmd.Flags().BoolVar(&pickPeer, "pick", false, "Choose the peer from an interactive list")
	sendCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress display")
}

func runSend(cmd *cobra.Command, args []string) error {
	profile, err := loadProfile()
	if err != nil {
		return err
	}
	opts, err := profile.SessionOptions()
	if err != nil {
		return err
	}

	label := "stdin"
	var data []byte
	if len(args) == 1 && args[0] != "-" {
		data, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		label = filepath.Base(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	}

	// The picker runs its own terminal program, so it has to finish
	// before the progress display starts.
	if pickPeer {
		scanner := discovery.NewScanner()
		targetAddr, err = ui.PickPeer(scanner.ScanForPeers)
		if err != nil {
			return err
		}
	}

	// Progress is captured when the session is created, so the display
	// has to exist before dialing.
	var transfer *ui.Transfer
	if !noProgress && ui.IsInteractive() {
		transfer = ui.NewTransfer(fmt.Sprintf("sending %s (%d bytes)", label, len(data)), uint64(len(data)))
		opts.Progress = transfer.Progress
		opts.OnRetry = transfer.Retry
	}

	sess, target, err := dialTarget(cmd, opts)
	if err != nil {
		if transfer != nil {
			transfer.Finish(err)
		}
		return err
	}
	defer sess.Close()

	err = sess.Send(data)
	if transfer != nil {
		transfer.Finish(err)
	}
	if err != nil {
		return err
	}
	if transfer == nil {
		fmt.Fprintf(os.Stderr, "sent %d bytes to %s\n", len(data), target)
	}
	return nil
}

// dialTarget resolves the peer from --ws, --discover, or --addr and
// opens a session to it.
func dialTarget(cmd *cobra.Command, opts *session.Options) (*session.Session, string, error) {
	switch {
	case wsURL != "":
		tr, err := transport.DialWebSocket(wsURL)
		if err != nil {
			return nil, "", err
		}
		return session.Wrap(tr, opts), wsURL, nil

	case discoverFor != "":
		scanner := discovery.NewScanner()
		peer, err := scanner.FindPeer(cmd.Context(), discoverFor)
		if err != nil {
			return nil, "", err
		}
		sess, err := session.Dial(peer.Addr(), opts)
		if err != nil {
			return nil, "", err
		}
		return sess, peer.String(), nil

	case targetAddr != "":
		sess, err := session.Dial(targetAddr, opts)
		if err != nil {
			return nil, "", err
		}
		return sess, targetAddr, nil

	default:
		return nil, "", fmt.Errorf("no peer: use --addr, --ws, or --discover")
	}
}

// discoverCmd lists announced listeners.
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List msgwire listeners on the local network",
	Long: `Browse mDNS for listeners started with 'msgwire listen --announce'
and print their instance names and addresses.`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&scanTimeout, "timeout", 5, "Scan timeout in seconds")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	if _, err := loadProfile(); err != nil {
		return err
	}

	scanner := discovery.NewScanner()
	scanner.Timeout = time.Duration(scanTimeout) * time.Second

	fmt.Printf("Scanning for msgwire listeners (timeout: %ds)...\n\n", scanTimeout)
	peers, err := scanner.ScanForPeers()
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(peers) == 0 {
		fmt.Println("No listeners found.")
		fmt.Println("\nListeners only appear here when started with --announce.")
		return nil
	}

	fmt.Printf("Found %d listener(s):\n\n", len(peers))
	for i, peer := range peers {
		fmt.Printf("%d. %s\n", i+1, peer.Instance)
		fmt.Printf("   Address: %s\n", peer.Addr())
		if cs := peer.Metadata["checksum"]; cs != "" {
			fmt.Printf("   Checksum: %s\n", cs)
		}
		fmt.Println()
	}
	fmt.Println("Use 'msgwire send --discover <name>' to send to a listener")
	return nil
}

func portOf(addr string) (int, error) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(portStr)
}
