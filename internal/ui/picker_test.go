package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/msgwire/internal/discovery"
)

func testPeers() []*discovery.Peer {
	return []*discovery.Peer{
		{Instance: "workstation", IP: "192.168.1.20", Port: 9555, Metadata: map[string]string{"checksum": "crc32"}},
		{Instance: "laptop", IP: "192.168.1.30", Port: 9555},
	}
}

func TestPickerScanPopulatesList(t *testing.T) {
	m := NewPicker(nil)
	if !m.scanning {
		t.Error("picker should start in scanning state")
	}

	next, _ := m.Update(scanDoneMsg{peers: testPeers()})
	m = next.(PickerModel)
	if m.scanning {
		t.Error("scanning should end after scanDoneMsg")
	}
	if got := len(m.peerList.Items()); got != 2 {
		t.Fatalf("list has %d items, want 2", got)
	}
}

func TestPickerSelection(t *testing.T) {
	m := NewPicker(nil)
	next, _ := m.Update(scanDoneMsg{peers: testPeers()})
	m = next.(PickerModel)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(PickerModel)
	if m.ChosenAddr != "192.168.1.20:9555" {
		t.Errorf("ChosenAddr = %q, want %q", m.ChosenAddr, "192.168.1.20:9555")
	}
	if m.ChosenPeer == nil || m.ChosenPeer.Instance != "workstation" {
		t.Errorf("ChosenPeer = %+v, want workstation", m.ChosenPeer)
	}
	if cmd == nil {
		t.Error("selection should quit the program")
	}
}

func TestPickerCancel(t *testing.T) {
	m := NewPicker(nil)
	next, _ := m.Update(scanDoneMsg{})
	m = next.(PickerModel)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = next.(PickerModel)
	if !m.Cancelled {
		t.Error("q should cancel the picker")
	}
	if cmd == nil {
		t.Error("cancel should quit the program")
	}
}

func TestPickerManualEntry(t *testing.T) {
	m := NewPicker(nil)
	next, _ := m.Update(scanDoneMsg{})
	m = next.(PickerModel)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'m'}})
	m = next.(PickerModel)
	if !m.manualMode {
		t.Fatal("m should enter manual mode")
	}

	for _, r := range "10.0.0.5:9555" {
		next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(PickerModel)
	}
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(PickerModel)
	if m.ChosenAddr != "10.0.0.5:9555" {
		t.Errorf("ChosenAddr = %q, want %q", m.ChosenAddr, "10.0.0.5:9555")
	}
	if cmd == nil {
		t.Error("manual confirm should quit the program")
	}
}

func TestPickerView(t *testing.T) {
	m := NewPicker(nil)
	if view := m.View(); !strings.Contains(view, "Scanning") {
		t.Errorf("scanning view = %q, want scanning notice", view)
	}

	next, _ := m.Update(scanDoneMsg{})
	m = next.(PickerModel)
	if view := m.View(); !strings.Contains(view, "No listeners found") {
		t.Errorf("empty view = %q, want empty notice", view)
	}

	next, _ = m.Update(scanDoneMsg{err: errors.New("network down")})
	m = next.(PickerModel)
	if view := m.View(); !strings.Contains(view, "network down") {
		t.Errorf("error view = %q, want scan error", view)
	}
}
