// Package ui renders the live transfer display for the msgwire CLI.
//
// The display is a Bubble Tea program fed from the session's progress
// callback: a progress bar, byte counters, and a retransmission counter.
// It is only used when stdout is a terminal; scripted invocations get
// plain output instead.
package ui
