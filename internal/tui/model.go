// Package tui provides the interactive inbox view. It renders the
// synchronized notification list, mirrors the live connectivity state
// in the header, and drives mark-as-read from the keyboard.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/peoplekit/inbox-sync/internal/domain"
	"github.com/peoplekit/inbox-sync/internal/syncer"
)

const (
	defaultViewportWidth  = 80
	defaultViewportHeight = 20
	headerFooterLines     = 4
)

// Syncer is the engine surface consumed by the TUI.
type Syncer interface {
	Start(ctx context.Context)
	Stop()
	Status() syncer.Status
	Notifications() []domain.Notification
	Updates() <-chan struct{}
	MarkAsRead(ctx context.Context, id string) error
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	unreadStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	readStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	selectedStyle  = lipgloss.NewStyle().Reverse(true)
	liveBadge      = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("● live")
	offlineBadge   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Render("○ offline")
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusBarStyle = lipgloss.NewStyle().Faint(true)
)

// updateMsg signals that the engine published new state.
type updateMsg struct{}

// markReadMsg carries the outcome of a mark-as-read request.
type markReadMsg struct {
	id  string
	err error
}

// Model is the bubbletea model for the inbox view.
type Model struct {
	engine Syncer
	ctx    context.Context

	viewport viewport.Model
	width    int
	height   int
	cursor   int

	items    []domain.Notification
	status   syncer.Status
	lastErr  error
	quitting bool
}

// NewModel creates the inbox model over an already constructed engine.
// The engine is started on Init and stopped when the user quits.
func NewModel(ctx context.Context, engine Syncer) *Model {
	return &Model{
		engine:   engine,
		ctx:      ctx,
		viewport: viewport.New(defaultViewportWidth, defaultViewportHeight),
		width:    defaultViewportWidth,
		height:   defaultViewportHeight,
	}
}

// Init starts the engine and subscribes to its update signal.
func (m *Model) Init() tea.Cmd {
	m.engine.Start(m.ctx)
	m.refresh()
	return m.waitForUpdate()
}

// waitForUpdate blocks on the engine's coalesced update channel.
func (m *Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		<-m.engine.Updates()
		return updateMsg{}
	}
}

// refresh re-reads the full engine state.
func (m *Model) refresh() {
	m.items = m.engine.Notifications()
	m.status = m.engine.Status()
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Update handles key presses, window resizes, and engine signals.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Resize in place so the scroll position survives.
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - headerFooterLines
		return m, nil

	case updateMsg:
		m.refresh()
		return m, m.waitForUpdate()

	case markReadMsg:
		m.lastErr = msg.err
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		m.engine.Stop()
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "g":
		m.cursor = 0
	case "G":
		if len(m.items) > 0 {
			m.cursor = len(m.items) - 1
		}
	case "enter", "r":
		return m, m.markSelected()
	}
	return m, nil
}

// markSelected issues the pessimistic mark-as-read for the record under
// the cursor. Read records are skipped locally; the server call only
// happens for unread ones.
func (m *Model) markSelected() tea.Cmd {
	if m.cursor >= len(m.items) {
		return nil
	}
	n := m.items[m.cursor]
	if n.IsRead() {
		return nil
	}
	id := n.ID
	return func() tea.Msg {
		err := m.engine.MarkAsRead(m.ctx, id)
		return markReadMsg{id: id, err: err}
	}
}

// View renders header, list, and status bar.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	header := m.renderHeader()
	body := m.renderList()
	footer := statusBarStyle.Render("j/k: move  enter: mark read  q: quit")

	sections := []string{header, body}
	if m.lastErr != nil {
		sections = append(sections, errorStyle.Render(m.lastErr.Error()))
	}
	if m.status.Err != nil {
		sections = append(sections, errorStyle.Render(m.status.Err.Error()))
	}
	sections = append(sections, footer)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderHeader() string {
	badge := offlineBadge
	if m.status.Connected {
		badge = liveBadge
	}
	title := titleStyle.Render("Inbox")
	counts := statusBarStyle.Render(renderCounts(m.items))
	if m.status.Loading {
		counts = statusBarStyle.Render("loading...")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", badge, "  ", counts)
}

func (m *Model) renderList() string {
	if len(m.items) == 0 {
		if m.status.Loading {
			return statusBarStyle.Render("  fetching notifications...")
		}
		return statusBarStyle.Render("  inbox empty")
	}

	lines := make([]string, 0, len(m.items))
	for i, n := range m.items {
		line := renderItem(n)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, lines...))
	m.ensureCursorVisible()
	return m.viewport.View()
}

func renderItem(n domain.Notification) string {
	marker := "  "
	style := readStyle
	if !n.IsRead() {
		marker = "● "
		style = unreadStyle
	}
	line := marker + n.Title
	if n.CreatedAt != "" {
		line += "  " + n.CreatedAt
	}
	return style.Render(line)
}

func renderCounts(items []domain.Notification) string {
	unread := 0
	for i := range items {
		if !items[i].IsRead() {
			unread++
		}
	}
	return fmt.Sprintf("%d unread / %d total", unread, len(items))
}

func (m *Model) ensureCursorVisible() {
	offset := m.viewport.YOffset
	height := m.viewport.Height
	if m.cursor < offset {
		m.viewport.LineUp(offset - m.cursor)
	}
	if m.cursor >= offset+height {
		m.viewport.LineDown(m.cursor - (offset + height) + 1)
	}
}
