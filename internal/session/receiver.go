package session

import (
	"fmt"
	"io"

	"github.com/muurk/msgwire/internal/segment"
	"github.com/muurk/msgwire/internal/transport"
)

// receiveLoop reads segments into buf until the final segment of the
// message has been accepted, acknowledging each one. On checksum mismatch
// it sends a bare response header, which the peer answers by resending the
// same segment.
func (s *Session) receiveLoop(tr transport.Transport, buf []byte) ([]byte, error) {
	hdr := &s.recvHdr
	*hdr = segment.Header{}

	var whole uint64
	first := true
	rejects := 0

	for {
		if err := segment.ReadHeader(tr, hdr); err != nil {
			return buf, fmt.Errorf("session: %w", err)
		}
		if err := hdr.Validate(); err != nil {
			return buf, fmt.Errorf("session: %w", err)
		}
		if hdr.IsResponse() {
			return buf, fmt.Errorf("%w: response header where data segment expected",
				segment.ErrMalformedHeader)
		}
		if hdr.WholeLength > s.maxMessage {
			return buf, fmt.Errorf("%w: announced length %d exceeds limit %d",
				ErrMessageTooLarge, hdr.WholeLength, s.maxMessage)
		}
		if first {
			whole = hdr.WholeLength
			first = false
		} else if hdr.WholeLength != whole {
			return buf, fmt.Errorf("%w: whole length changed mid-message (%d -> %d)",
				segment.ErrMalformedHeader, whole, hdr.WholeLength)
		}
		if hdr.Begin != uint64(len(buf)) {
			return buf, fmt.Errorf("%w: segment at offset %d, expected %d",
				segment.ErrMalformedHeader, hdr.Begin, len(buf))
		}

		// Read the payload into the accumulator's next window. A short
		// read here is a transport failure, never a retry case.
		start := len(buf)
		buf = append(buf, make([]byte, hdr.Length)...)
		window := buf[start:]
		if hdr.Length > 0 {
			if _, err := io.ReadFull(tr, window); err != nil {
				return buf[:start], fmt.Errorf("session: read payload: %w", err)
			}
		}
		s.logSegment("received", hdr)

		reply := segment.New()
		reply.SetResponse()
		reply.Begin = hdr.Begin
		reply.Length = hdr.Length

		if s.check(window) != hdr.Check {
			// Drop the bad payload and ask for the same segment again.
			// The nack goes out even on the exhausting reject: the peer's
			// sender is blocked on it, and its own retry bound only fires
			// once the ack arrives.
			buf = buf[:start]
			rejects++
			s.logRetry(hdr, rejects)
			if err := segment.WriteHeader(tr, &reply); err != nil {
				return buf, fmt.Errorf("session: send retransmit request: %w", err)
			}
			if rejects >= s.maxRetries {
				return buf, fmt.Errorf("%w: segment at offset %d failed verification %d times",
					ErrLinkUnreliable, hdr.Begin, rejects)
			}
			continue
		}

		rejects = 0
		reply.SetChecked()
		if err := segment.WriteHeader(tr, &reply); err != nil {
			return buf, fmt.Errorf("session: send acknowledgment: %w", err)
		}

		if hdr.Begin+hdr.Length == whole {
			return buf, nil
		}
	}
}
