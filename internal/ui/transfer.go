package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

// ProgressMsg reports delivered bytes out of the message total.
type ProgressMsg struct {
	Done  uint64
	Total uint64
}

// RetryMsg reports one segment retransmission.
type RetryMsg struct{}

// DoneMsg ends the display, carrying the transfer's final error if any.
type DoneMsg struct {
	Err error
}

// TransferModel is the Bubble Tea model for one transfer.
type TransferModel struct {
	label    string
	done     uint64
	total    uint64
	retries  int
	bar      progress.Model
	err      error
	finished bool
}

// NewTransferModel creates the model for a transfer of total bytes.
// A total of zero is valid (empty message).
func NewTransferModel(label string, total uint64) TransferModel {
	barWidth := GetTerminalWidth() - 30
	if barWidth < 20 {
		barWidth = 20
	}
	if barWidth > 60 {
		barWidth = 60
	}
	return TransferModel{
		label: label,
		total: total,
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(barWidth),
		),
	}
}

// Init implements tea.Model
func (m TransferModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m TransferModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ProgressMsg:
		m.done = msg.Done
		m.total = msg.Total
		return m, nil
	case RetryMsg:
		m.retries++
		return m, nil
	case DoneMsg:
		m.err = msg.Err
		m.finished = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model
func (m TransferModel) View() string {
	percent := 1.0
	if m.total > 0 {
		percent = float64(m.done) / float64(m.total)
	}

	line := fmt.Sprintf("%s\n%s %s",
		LabelStyle.Render(m.label),
		m.bar.ViewAs(percent),
		CounterStyle.Render(fmt.Sprintf("%d/%d bytes", m.done, m.total)),
	)
	if m.retries > 0 {
		line += " " + RetryStyle.Render(fmt.Sprintf("(%d retransmissions)", m.retries))
	}
	line += "\n"

	if m.finished {
		if m.err != nil {
			line += FailStyle.Render("transfer failed: "+m.err.Error()) + "\n"
		} else {
			line += DoneStyle.Render("transfer complete") + "\n"
		}
	}
	return line
}

// Transfer runs a TransferModel and exposes the session-facing callbacks.
type Transfer struct {
	prog *tea.Program
	errc chan error
}

// NewTransfer starts the display for a transfer of total bytes.
func NewTransfer(label string, total uint64) *Transfer {
	t := &Transfer{
		prog: tea.NewProgram(NewTransferModel(label, total), tea.WithOutput(os.Stdout)),
		errc: make(chan error, 1),
	}
	go func() {
		_, err := t.prog.Run()
		t.errc <- err
	}()
	return t
}

// Progress is shaped for session.Options.Progress.
func (t *Transfer) Progress(done, total uint64) {
	t.prog.Send(ProgressMsg{Done: done, Total: total})
}

// Retry records one retransmission on the display.
func (t *Transfer) Retry() {
	t.prog.Send(RetryMsg{})
}

// Finish ends the display and waits for it to shut down.
func (t *Transfer) Finish(err error) {
	t.prog.Send(DoneMsg{Err: err})
	<-t.errc
}
