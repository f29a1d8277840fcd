// Package session implements message-level delivery over a byte-stream
// transport.
//
// A Session owns one transport and imposes message boundaries on it: Send
// splits a message into bounded segments and drives a stop-and-wait
// acknowledgment exchange for each one; Receive reassembles the peer's
// segments, verifying a checksum per segment and requesting retransmission
// on mismatch. The checksum function is pluggable (see the checksum
// package) and must match on both ends of the connection.
//
// # Concurrency
//
// A Session is strictly half-duplex and synchronous: Send and Receive block
// until the whole message has been transferred or a fatal error occurs.
// A single Session must not be used from multiple goroutines at once;
// either serialize access externally or use one Session per connection.
// Independent Sessions are fully independent.
//
// There is no built-in timeout. A stalled transport blocks the calling
// goroutine until the transport itself fails; apply deadlines at the
// transport layer (e.g. net.Conn.SetDeadline) to bound waits.
package session
