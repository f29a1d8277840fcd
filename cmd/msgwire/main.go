// Msgwire is a command-line tool for sending and receiving framed messages
// over TCP or websocket connections.
//
// It speaks the msgwire segment protocol: messages are split into
// checksummed segments delivered with a stop-and-wait acknowledgment
// exchange, so a whole message either arrives intact or the transfer
// fails loudly.
//
// Usage:
//
//	msgwire [command] [flags]
//
// See 'msgwire --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/msgwire/internal/logging"
	"github.com/muurk/msgwire/internal/version"
)

func main() {
	defer logging.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "msgwire",
	Short: "Framed message delivery over stream transports",
	Long: `Send and receive whole messages over TCP or websocket connections.

msgwire frames each message into checksummed segments and delivers them
one at a time, waiting for a per-segment acknowledgment and resending on
corruption. Both ends must use the same checksum algorithm (see the
--config profile; the default is crc32).`,
	Version: version.Version,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("msgwire %s\n", version.Full())
	},
}
