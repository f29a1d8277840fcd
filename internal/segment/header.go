package segment

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Protocol constants
const (
	// Version is the protocol version written into every header.
	Version byte = 1

	// HeaderSize is the encoded size of a Header in bytes.
	HeaderSize = 32

	// DefaultMaxPayload is the default maximum payload carried by one
	// segment. Messages longer than this are split.
	DefaultMaxPayload = 1024
)

// Flag bits. Each flag is a single independent bit.
const (
	// FlagResponse marks an acknowledgment header (no payload follows).
	FlagResponse byte = 0x01
	// FlagSliced marks a segment belonging to a message that spans more
	// than one segment.
	FlagSliced byte = 0x02
	// FlagChecked is set by the receiver in an acknowledgment when the
	// segment's checksum matched.
	FlagChecked byte = 0x10
)

var (
	// ErrShortHeader is returned when the stream ends before a full
	// header could be read.
	ErrShortHeader = errors.New("segment: short header read")
	// ErrVersionMismatch is returned when a header carries an unknown
	// protocol version.
	ErrVersionMismatch = errors.New("segment: protocol version mismatch")
	// ErrMalformedHeader is returned when a header's offset and length
	// fields contradict each other.
	ErrMalformedHeader = errors.New("segment: malformed header")
)

// Header describes one segment of one logical message.
type Header struct {
	Version     byte
	Flags       byte
	Reserved    uint16
	Begin       uint64 // byte offset of this segment within the message
	Length      uint64 // payload length of this segment
	WholeLength uint64 // total length of the logical message
	Check       uint32 // checksum over this segment's payload
}

// New returns a Header with the current protocol version and all other
// fields zero.
func New() Header {
	return Header{Version: Version}
}

// IsResponse reports whether this header acknowledges a segment rather
// than announcing one.
func (h *Header) IsResponse() bool {
	return h.Flags&FlagResponse != 0
}

// IsSliced reports whether the logical message spans multiple segments.
func (h *Header) IsSliced() bool {
	return h.Flags&FlagSliced != 0
}

// IsChecked reports whether the receiver confirmed the segment checksum.
func (h *Header) IsChecked() bool {
	return h.Flags&FlagChecked != 0
}

// SetResponse marks the header as an acknowledgment.
func (h *Header) SetResponse() {
	h.Flags |= FlagResponse
}

// SetSliced marks the header's message as split across segments.
func (h *Header) SetSliced() {
	h.Flags |= FlagSliced
}

// SetChecked marks the segment's checksum as confirmed.
func (h *Header) SetChecked() {
	h.Flags |= FlagChecked
}

// Encode serializes the header into buf, which must be at least
// HeaderSize bytes.
func (h *Header) Encode(buf []byte) {
	buf[0] = h.Version
	buf[1] = h.Flags
	binary.BigEndian.PutUint16(buf[2:4], h.Reserved)
	binary.BigEndian.PutUint64(buf[4:12], h.Begin)
	binary.BigEndian.PutUint64(buf[12:20], h.Length)
	binary.BigEndian.PutUint64(buf[20:28], h.WholeLength)
	binary.BigEndian.PutUint32(buf[28:32], h.Check)
}

// Decode parses a header from buf, which must be at least HeaderSize
// bytes. Decode does not validate field consistency; see Validate.
func (h *Header) Decode(buf []byte) {
	h.Version = buf[0]
	h.Flags = buf[1]
	h.Reserved = binary.BigEndian.Uint16(buf[2:4])
	h.Begin = binary.BigEndian.Uint64(buf[4:12])
	h.Length = binary.BigEndian.Uint64(buf[12:20])
	h.WholeLength = binary.BigEndian.Uint64(buf[20:28])
	h.Check = binary.BigEndian.Uint32(buf[28:32])
}

// Validate checks internal consistency of a decoded header.
func (h *Header) Validate() error {
	if h.Version != Version {
		return fmt.Errorf("%w: got %d, want %d", ErrVersionMismatch, h.Version, Version)
	}
	if h.Begin+h.Length < h.Begin {
		return fmt.Errorf("%w: begin+length overflows", ErrMalformedHeader)
	}
	if h.Begin+h.Length > h.WholeLength {
		return fmt.Errorf("%w: begin %d + length %d exceeds whole length %d",
			ErrMalformedHeader, h.Begin, h.Length, h.WholeLength)
	}
	return nil
}

// ReadHeader reads and decodes one header from r. A stream that ends
// before HeaderSize bytes yields ErrShortHeader.
func ReadHeader(r io.Reader, h *Header) error {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: %v", ErrShortHeader, err)
		}
		return fmt.Errorf("segment: read header: %w", err)
	}
	h.Decode(buf[:])
	return nil
}

// WriteHeader encodes and writes h to w.
func WriteHeader(w io.Writer, h *Header) error {
	var buf [HeaderSize]byte
	h.Encode(buf[:])
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("segment: write header: %w", err)
	}
	return nil
}

// String returns a debug representation of the header.
func (h *Header) String() string {
	return fmt.Sprintf("Header{v=%d, flags=0x%02x, begin=%d, length=%d, whole=%d, check=0x%08x}",
		h.Version, h.Flags, h.Begin, h.Length, h.WholeLength, h.Check)
}
