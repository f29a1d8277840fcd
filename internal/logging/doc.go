// Package logging provides structured logging for msgwire.
//
// This package wraps zap with convenience functions for the logging
// patterns used throughout the protocol and the CLI tools. Logging is
// silent by default so library users and scripted CLI invocations see no
// unexpected output; set MSGWIRE_LOG_LEVEL to enable it.
//
// # Log Levels
//
//   - Debug: per-segment detail (offsets, lengths, checksums)
//   - Info: session lifecycle (connected, message delivered, closed)
//   - Warn: recoverable protocol events (checksum mismatch, retransmission)
//   - Error: fatal transport or protocol failures
//
// # Structured Logging
//
// All log functions use structured fields:
//
//	logging.Info("Message delivered",
//	    zap.String("remote_addr", "192.168.1.100:9000"),
//	    zap.Uint64("bytes", 11264),
//	    zap.Int("segments", 11),
//	)
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use.
package logging
