// Package segment defines the wire format for one segment of a logical
// message.
//
// A logical message travels as a sequence of segments, each a fixed-size
// header followed by a payload slice. The header carries the slice's offset
// within the message, its length, the total message length, and a checksum
// over the payload. Acknowledgments reuse the same header record with the
// response flag set and no payload.
//
// # Wire Layout
//
// The header is exactly 32 bytes, big-endian, with explicit field widths:
//
//	offset  size  field
//	0       1     version
//	1       1     flags
//	2       2     reserved
//	4       8     begin
//	12      8     length
//	20      8     whole_length
//	28      4     check
//
// The in-memory Header struct is never written to the wire directly;
// Encode/Decode serialize field by field so the format is identical on
// every platform.
//
// # Flags
//
// Flags are independent bits:
//
//	0x01  response     acknowledgment rather than data
//	0x02  sliced       the logical message spans more than one segment
//	0x10  checked      receiver confirms the payload checksum matched
//
// Setting a flag never clears another; tests use a bitwise AND against the
// flag's own bit.
package segment
