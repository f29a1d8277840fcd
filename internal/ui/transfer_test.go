package ui

import (
	"errors"
	"strings"
	"testing"
)

func TestTransferModelUpdate(t *testing.T) {
	m := NewTransferModel("sending data.bin", 2048)

	next, _ := m.Update(ProgressMsg{Done: 1024, Total: 2048})
	m = next.(TransferModel)
	if m.done != 1024 || m.total != 2048 {
		t.Errorf("progress = %d/%d, want 1024/2048", m.done, m.total)
	}

	next, _ = m.Update(RetryMsg{})
	m = next.(TransferModel)
	if m.retries != 1 {
		t.Errorf("retries = %d, want 1", m.retries)
	}

	next, cmd := m.Update(DoneMsg{})
	m = next.(TransferModel)
	if !m.finished {
		t.Error("model should be finished after DoneMsg")
	}
	if cmd == nil {
		t.Error("DoneMsg should quit the program")
	}
}

func TestTransferModelView(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(m TransferModel) TransferModel
		contains []string
	}{
		{
			name:     "in-flight transfer",
			mutate:   func(m TransferModel) TransferModel { m.done = 512; return m },
			contains: []string{"sending data.bin", "512/2048 bytes"},
		},
		{
			name: "with retransmissions",
			mutate: func(m TransferModel) TransferModel {
				m.done = 512
				m.retries = 3
				return m
			},
			contains: []string{"3 retransmissions"},
		},
		{
			name: "completed",
			mutate: func(m TransferModel) TransferModel {
				m.done = 2048
				m.finished = true
				return m
			},
			contains: []string{"transfer complete"},
		},
		{
			name: "failed",
			mutate: func(m TransferModel) TransferModel {
				m.finished = true
				m.err = errors.New("link unreliable")
				return m
			},
			contains: []string{"transfer failed", "link unreliable"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.mutate(NewTransferModel("sending data.bin", 2048))
			view := m.View()
			for _, want := range tt.contains {
				if !strings.Contains(view, want) {
					t.Errorf("View() missing %q:\n%s", want, view)
				}
			}
		})
	}
}

func TestTransferModelViewEmptyMessage(t *testing.T) {
	m := NewTransferModel("sending nothing", 0)
	// Zero total must not divide by zero and should render as complete.
	if view := m.View(); !strings.Contains(view, "0/0 bytes") {
		t.Errorf("View() missing 0/0 counter:\n%s", view)
	}
}
