// Package server runs a msgwire listener: it accepts TCP or websocket
// connections, wraps each one in a protocol session, and hands every
// reassembled message to a caller-supplied handler.
//
// The server handles connection lifecycle only; what to do with a
// received message (print it, store it, forward it) is the handler's
// business. Shutdown closes the listener and any active connections, then
// waits for in-flight handlers to drain.
package server
