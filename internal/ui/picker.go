package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/msgwire/internal/discovery"
)

// ErrPickerCancelled is returned when the user quits the picker without
// choosing a peer.
var ErrPickerCancelled = errors.New("ui: no peer selected")

// ScanFunc performs one discovery scan and returns the peers found.
type ScanFunc func() ([]*discovery.Peer, error)

type scanDoneMsg struct {
	peers []*discovery.Peer
	err   error
}

// peerItem wraps a Peer for use with bubbles/list.
type peerItem struct {
	peer *discovery.Peer
}

func (p peerItem) FilterValue() string { return p.peer.Instance + " " + p.peer.Addr() }

func (p peerItem) Title() string { return p.peer.Instance }

func (p peerItem) Description() string {
	if cs := p.peer.Metadata["checksum"]; cs != "" {
		return fmt.Sprintf("%s (checksum: %s)", p.peer.Addr(), cs)
	}
	return p.peer.Addr()
}

// pickerKeyMap defines key bindings for the peer list.
type pickerKeyMap struct {
	Select key.Binding
	Rescan key.Binding
	Manual key.Binding
	Quit   key.Binding
}

// PickerModel is the interactive peer selection screen. It scans for
// announced listeners, lists them, and lets the user choose one or type
// an address by hand.
type PickerModel struct {
	scan ScanFunc

	scanning   bool
	manualMode bool
	peerList   list.Model
	addrInput  textinput.Model
	spin       spinner.Model
	keys       pickerKeyMap
	err        error
	width      int

	// Result of the session, read after the program exits.
	ChosenAddr string
	ChosenPeer *discovery.Peer
	Cancelled  bool
}

// NewPicker creates the peer selection screen. scan is invoked on start
// and on each rescan.
func NewPicker(scan ScanFunc) PickerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	input := textinput.New()
	input.Placeholder = "192.168.1.20:9555"
	input.CharLimit = 64
	input.Width = 30

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(HighlightColor).BorderForeground(HighlightColor)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(MutedColor).BorderForeground(HighlightColor)

	peerList := list.New([]list.Item{}, delegate, 0, 0)
	peerList.Title = "Discovered Listeners"
	peerList.SetShowStatusBar(false)
	peerList.SetFilteringEnabled(true)
	peerList.Styles.Title = TitleStyle

	keys := pickerKeyMap{
		Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Rescan: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rescan")),
		Manual: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "manual address")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}

	return PickerModel{
		scan:      scan,
		scanning:  true,
		peerList:  peerList,
		addrInput: input,
		spin:      s,
		keys:      keys,
		width:     GetTerminalWidth(),
	}
}

func (m PickerModel) startScan() tea.Cmd {
	scan := m.scan
	return func() tea.Msg {
		peers, err := scan()
		return scanDoneMsg{peers: peers, err: err}
	}
}

func (m PickerModel) Init() tea.Cmd {
	return tea.Batch(m.startScan(), m.spin.Tick)
}

func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.manualMode {
			return m.updateManualMode(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.Cancelled = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Select):
			if item, ok := m.peerList.SelectedItem().(peerItem); ok {
				m.ChosenPeer = item.peer
				m.ChosenAddr = item.peer.Addr()
				return m, tea.Quit
			}

		case key.Matches(msg, m.keys.Rescan):
			if !m.scanning {
				m.scanning = true
				m.err = nil
				return m, tea.Batch(m.startScan(), m.spin.Tick)
			}

		case key.Matches(msg, m.keys.Manual):
			m.manualMode = true
			m.addrInput.Focus()
			return m, textinput.Blink
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.peerList.SetWidth(msg.Width - 4)
		m.peerList.SetHeight(msg.Height - 6)

	case scanDoneMsg:
		m.scanning = false
		m.err = msg.err
		items := make([]list.Item, len(msg.peers))
		for i, peer := range msg.peers {
			items[i] = peerItem{peer: peer}
		}
		m.peerList.SetItems(items)

	case spinner.TickMsg:
		if m.scanning {
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
	}

	if !m.manualMode && !m.scanning {
		m.peerList, cmd = m.peerList.Update(msg)
	}
	return m, cmd
}

func (m PickerModel) updateManualMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if addr := m.addrInput.Value(); addr != "" {
			m.ChosenAddr = addr
			return m, tea.Quit
		}
		return m, nil
	case "esc":
		m.manualMode = false
		m.addrInput.Blur()
		return m, nil
	case "ctrl+c":
		m.Cancelled = true
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.addrInput, cmd = m.addrInput.Update(msg)
	return m, cmd
}

func (m PickerModel) View() string {
	if m.manualMode {
		return fmt.Sprintf("\n  %s\n\n  %s\n\n  %s\n",
			TitleStyle.Render("Enter listener address"),
			m.addrInput.View(),
			CounterStyle.Render("enter confirm • esc back"),
		)
	}
	if m.scanning {
		return fmt.Sprintf("\n  %s Scanning for listeners...\n\n  %s\n",
			m.spin.View(),
			CounterStyle.Render("m manual address • q quit"),
		)
	}
	if m.err != nil {
		return fmt.Sprintf("\n  %s\n\n  %s\n",
			FailStyle.Render("scan failed: "+m.err.Error()),
			CounterStyle.Render("r rescan • m manual address • q quit"),
		)
	}
	if len(m.peerList.Items()) == 0 {
		return fmt.Sprintf("\n  %s\n\n  %s\n",
			LabelStyle.Render("No listeners found."),
			CounterStyle.Render("r rescan • m manual address • q quit"),
		)
	}
	return "\n" + m.peerList.View() + "\n  " +
		CounterStyle.Render("enter select • r rescan • m manual address • q quit") + "\n"
}

// PickPeer runs the picker and returns the chosen address. It returns
// ErrPickerCancelled when the user quits without choosing.
func PickPeer(scan ScanFunc) (string, error) {
	prog := tea.NewProgram(NewPicker(scan))
	final, err := prog.Run()
	if err != nil {
		return "", fmt.Errorf("ui: peer picker: %w", err)
	}
	m, ok := final.(PickerModel)
	if !ok || m.Cancelled || m.ChosenAddr == "" {
		return "", ErrPickerCancelled
	}
	return m.ChosenAddr, nil
}
