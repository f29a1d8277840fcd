package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette for the transfer display
var (
	SuccessColor   = lipgloss.Color("#43BF6D") // Green - completed transfer
	ErrorColor     = lipgloss.Color("#FF5555") // Red - failed transfer
	WarningColor   = lipgloss.Color("#FFA500") // Orange - retransmissions
	MutedColor     = lipgloss.Color("#626262") // Gray - secondary info
	HighlightColor = lipgloss.Color("#7D56F4") // Purple - selection
)

var (
	// LabelStyle is for the transfer description line
	LabelStyle = lipgloss.NewStyle().Bold(true)

	// CounterStyle is for byte and segment counters
	CounterStyle = lipgloss.NewStyle().Foreground(MutedColor)

	// RetryStyle is for the retransmission counter
	RetryStyle = lipgloss.NewStyle().Foreground(WarningColor)

	// DoneStyle is for the completion line
	DoneStyle = lipgloss.NewStyle().Foreground(SuccessColor)

	// FailStyle is for the failure line
	FailStyle = lipgloss.NewStyle().Foreground(ErrorColor)

	// TitleStyle is for screen titles in interactive views
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(HighlightColor)

	// SpinnerStyle is for the scan spinner
	SpinnerStyle = lipgloss.NewStyle().Foreground(HighlightColor)
)

// IsInteractive reports whether stdout is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// GetTerminalWidth returns the current terminal width, or a sensible
// default when it cannot be determined.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
