package session

import (
	"fmt"

	"github.com/muurk/msgwire/internal/segment"
	"github.com/muurk/msgwire/internal/transport"
)

// sendLoop splits msg into segments and runs one stop-and-wait exchange
// per segment, resending a segment until the peer confirms its checksum.
// tr is the caller's snapshot of the transport, taken before a concurrent
// Close can detach it.
func (s *Session) sendLoop(tr transport.Transport, msg []byte) error {
	whole := uint64(len(msg))

	hdr := &s.sendHdr
	*hdr = segment.New()
	hdr.WholeLength = whole
	if whole > uint64(s.maxSegment) {
		hdr.SetSliced()
	}

	if whole == 0 {
		// An empty message still needs one header exchange, otherwise
		// the peer's receive loop would block on a header that never
		// comes.
		hdr.Begin = 0
		hdr.Length = 0
		if err := s.exchangeSegment(tr, hdr, nil); err != nil {
			return err
		}
		if s.progress != nil {
			s.progress(0, 0)
		}
		return nil
	}

	var cursor uint64
	for cursor < whole {
		length := uint64(s.maxSegment)
		if whole-cursor < length {
			length = whole - cursor
		}
		hdr.Begin = cursor
		hdr.Length = length

		if err := s.exchangeSegment(tr, hdr, msg[cursor:cursor+length]); err != nil {
			return err
		}

		cursor += length
		if s.progress != nil {
			s.progress(cursor, whole)
		}
	}
	return nil
}

// exchangeSegment writes one header+payload pair and blocks for the
// acknowledgment, retrying the same segment until it is confirmed or the
// retry limit is reached.
func (s *Session) exchangeSegment(tr transport.Transport, hdr *segment.Header, payload []byte) error {
	hdr.Check = s.check(payload)

	for attempt := 1; ; attempt++ {
		if err := segment.WriteHeader(tr, hdr); err != nil {
			return fmt.Errorf("session: send header: %w", err)
		}
		if len(payload) > 0 {
			if _, err := tr.Write(payload); err != nil {
				return fmt.Errorf("session: send payload: %w", err)
			}
		}
		s.logSegment("sent", hdr)

		var ack segment.Header
		if err := segment.ReadHeader(tr, &ack); err != nil {
			return fmt.Errorf("session: read acknowledgment: %w", err)
		}
		if ack.IsResponse() && ack.IsChecked() {
			return nil
		}

		s.logRetry(hdr, attempt)
		if s.onRetry != nil {
			s.onRetry()
		}
		if attempt >= s.maxRetries {
			return fmt.Errorf("%w: segment at offset %d rejected after %d attempts",
				ErrLinkUnreliable, hdr.Begin, attempt)
		}
	}
}
