package session

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/muurk/msgwire/internal/checksum"
	"github.com/muurk/msgwire/internal/logging"
	"github.com/muurk/msgwire/internal/segment"
	"github.com/muurk/msgwire/internal/transport"
)

// Default limits applied when Options leaves them zero.
const (
	DefaultMaxSegment = segment.DefaultMaxPayload
	DefaultMaxRetries = 8
	DefaultMaxMessage = 64 << 20 // 64 MiB
)

// Options configures a Session. The zero value is usable: it selects the
// no-op placeholder checksum and the default limits.
type Options struct {
	// Checksum verifies each segment's payload. When nil the no-op
	// placeholder is used: every segment passes verification, corruption
	// goes undetected, and the session reports itself unreliable.
	Checksum checksum.Func

	// MaxSegment bounds the payload carried by one segment. Messages
	// longer than this are split. Defaults to DefaultMaxSegment.
	MaxSegment int

	// MaxRetries bounds how many times one segment may be transmitted
	// (first attempt included) before the session gives up with
	// ErrLinkUnreliable. Defaults to DefaultMaxRetries.
	MaxRetries int

	// MaxMessage bounds the whole-message length Receive will accept.
	// Defaults to DefaultMaxMessage.
	MaxMessage uint64

	// Progress, when non-nil, is called after each acknowledged segment
	// with the count of delivered bytes and the message total.
	Progress func(done, total uint64)

	// OnRetry, when non-nil, is called each time a segment has to be
	// retransmitted.
	OnRetry func()

	// Logger receives the session's structured log events. Defaults to
	// the package-level logger from internal/logging.
	Logger *zap.Logger
}

// Payload is anything that can serialize itself for delivery.
type Payload interface {
	WireBytes() []byte
}

// Session drives the framing protocol over one transport. It owns the
// transport, the receive accumulator, and the header scratch state; see
// the package documentation for the concurrency contract.
type Session struct {
	tr       transport.Transport // nil when detached
	check    checksum.Func
	reliable bool

	maxSegment int
	maxRetries int
	maxMessage uint64
	progress   func(done, total uint64)
	onRetry    func()
	log        *zap.Logger

	sendHdr segment.Header
	recvHdr segment.Header
	recvBuf []byte
}

// Dial opens a TCP connection to addr and wraps it in a Session.
func Dial(addr string, opts *Options) (*Session, error) {
	tr, err := transport.Dial(addr)
	if err != nil {
		return nil, fmt.Errorf("session: connect: %w", err)
	}
	logging.LogConnection(addr, "connected")
	return Wrap(tr, opts), nil
}

// Wrap adopts an already-open transport. The Session takes ownership;
// Close closes the transport.
func Wrap(tr transport.Transport, opts *Options) *Session {
	if opts == nil {
		opts = &Options{}
	}
	s := &Session{
		tr:         tr,
		check:      opts.Checksum,
		reliable:   opts.Checksum != nil,
		maxSegment: opts.MaxSegment,
		maxRetries: opts.MaxRetries,
		maxMessage: opts.MaxMessage,
		progress:   opts.Progress,
		onRetry:    opts.OnRetry,
		log:        opts.Logger,
	}
	if s.log == nil {
		s.log = logging.GetLogger()
	}
	if s.check == nil {
		s.check = checksum.None
		s.log.Warn("Session using placeholder checksum; corruption will not be detected")
	}
	if s.maxSegment <= 0 {
		s.maxSegment = DefaultMaxSegment
	}
	if s.maxRetries <= 0 {
		s.maxRetries = DefaultMaxRetries
	}
	if s.maxMessage == 0 {
		s.maxMessage = DefaultMaxMessage
	}
	return s
}

// Reliable reports whether a real checksum function was configured. With
// the placeholder the protocol's retransmission machinery never fires and
// no integrity guarantee holds.
func (s *Session) Reliable() bool {
	return s.reliable
}

// Connected reports whether a transport is attached.
func (s *Session) Connected() bool {
	return s.tr != nil
}

// Send delivers msg to the peer, splitting it into segments and waiting
// for each acknowledgment. It blocks until the whole message is accepted
// or a fatal error occurs.
func (s *Session) Send(msg []byte) error {
	// Snapshot the transport: a concurrent Close detaches s.tr, and the
	// loop must see a closed stream error, not a nil interface.
	tr := s.tr
	if tr == nil {
		return ErrNotConnected
	}
	return s.sendLoop(tr, msg)
}

// SendPayload serializes p and delivers it like Send.
func (s *Session) SendPayload(p Payload) error {
	return s.Send(p.WireBytes())
}

// Receive reassembles one message from the peer into the Session's own
// accumulator, which is cleared first. The returned slice is a view of
// that accumulator and is only valid until the next Receive call; copy it
// to retain it.
func (s *Session) Receive() ([]byte, error) {
	tr := s.tr
	if tr == nil {
		return nil, ErrNotConnected
	}
	out, err := s.receiveLoop(tr, s.recvBuf[:0])
	s.recvBuf = out
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReceiveInto is Receive reassembling into the caller's buffer instead of
// the Session's. buf is truncated first and grown as needed; the possibly
// reallocated buffer is returned.
func (s *Session) ReceiveInto(buf []byte) ([]byte, error) {
	tr := s.tr
	if tr == nil {
		return nil, ErrNotConnected
	}
	out, err := s.receiveLoop(tr, buf[:0])
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) logSegment(direction string, hdr *segment.Header) {
	s.log.Debug("Segment",
		zap.String("direction", direction),
		zap.Uint64("begin", hdr.Begin),
		zap.Uint64("length", hdr.Length),
		zap.Uint64("whole_length", hdr.WholeLength),
	)
}

func (s *Session) logRetry(hdr *segment.Header, attempt int) {
	s.log.Warn("Segment retransmission",
		zap.Uint64("begin", hdr.Begin),
		zap.Uint64("length", hdr.Length),
		zap.Int("attempt", attempt),
	)
}

// Close detaches and closes the transport. Closing an already detached
// Session is a no-op.
func (s *Session) Close() error {
	if s.tr == nil {
		return nil
	}
	tr := s.tr
	s.tr = nil
	return tr.Close()
}
