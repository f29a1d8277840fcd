package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the mDNS service type msgwire listeners advertise.
	ServiceType = "_msgwire._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for peer discovery
	DefaultScanTimeout = 5 * time.Second
)

// Peer is a discovered msgwire listener on the network.
type Peer struct {
	// Instance is the advertised instance name (typically the hostname)
	Instance string

	// IP is the IPv4 address
	IP string

	// Port is the TCP port the listener accepts connections on
	Port int

	// Metadata contains additional mDNS TXT record data
	Metadata map[string]string
}

// String returns a human-readable representation of the peer
func (p *Peer) String() string {
	return fmt.Sprintf("%s at %s:%d", p.Instance, p.IP, p.Port)
}

// Addr returns the peer's dialable TCP address.
func (p *Peer) Addr() string {
	return fmt.Sprintf("%s:%d", p.IP, p.Port)
}

// Scanner handles mDNS peer discovery
type Scanner struct {
	// Timeout is the maximum time to wait for peer discovery
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// ScanForPeers discovers all msgwire listeners on the local network.
func (s *Scanner) ScanForPeers() ([]*Peer, error) {
	return s.ScanForPeersWithContext(context.Background())
}

// ScanForPeersWithContext discovers peers with a custom context
func (s *Scanner) ScanForPeersWithContext(ctx context.Context) ([]*Peer, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	peers := make([]*Peer, 0)
	done := make(chan struct{})

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		defer close(done)
		for entry := range entries {
			if peer := parseServiceEntry(entry); peer != nil {
				peers = append(peers, peer)
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	// Wait for the timeout and for the entry channel to drain.
	<-ctx.Done()
	<-done

	return peers, nil
}

// FindPeer waits for a peer with the given instance name.
func (s *Scanner) FindPeer(ctx context.Context, instance string) (*Peer, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	peerChan := make(chan *Peer, 1)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		for entry := range entries {
			if peer := parseServiceEntry(entry); peer != nil && peer.Instance == instance {
				peerChan <- peer
				cancel()
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case peer := <-peerChan:
		return peer, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("peer %q not found within timeout", instance)
	}
}

// Announce registers a listener instance on port with mDNS. The returned
// shutdown function withdraws the registration.
func Announce(instance string, port int, metadata map[string]string) (func(), error) {
	txt := make([]string, 0, len(metadata))
	for k, v := range metadata {
		txt = append(txt, fmt.Sprintf("%s=%s", k, v))
	}

	server, err := zeroconf.Register(instance, ServiceType, ServiceDomain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}
	return server.Shutdown, nil
}

// parseServiceEntry converts a zeroconf service entry to a Peer.
// Returns nil if the entry carries no usable address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Peer {
	if entry == nil || len(entry.AddrIPv4) == 0 {
		return nil
	}

	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		if k, v, ok := strings.Cut(txt, "="); ok {
			metadata[k] = v
		}
	}

	return &Peer{
		Instance: entry.Instance,
		IP:       entry.AddrIPv4[0].String(),
		Port:     entry.Port,
		Metadata: metadata,
	}
}
