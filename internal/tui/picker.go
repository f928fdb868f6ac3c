// Package tui implements the full-screen session picker behind
// "tmuxup browse": a filterable list of the configured sessions that
// starts and attaches the selected one.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tmuxup/tmuxup/internal/tui/styles"
	"github.com/tmuxup/tmuxup/internal/util"
)

// Item is one selectable row: a configured session and its live state.
type Item struct {
	Name    string
	Root    string
	Windows int
	Running bool
}

// LoadFunc supplies the picker's items. It is called once at startup and
// again whenever the config directory changes on disk.
type LoadFunc func() ([]Item, error)

// itemsMsg delivers a (re)loaded item list to the model.
type itemsMsg struct {
	items []Item
	err   error
}

// refreshMsg asks the model to reload its items. The config-dir watcher
// emits one per change burst.
type refreshMsg struct{}

// Model is the Bubbletea model for the browse picker.
type Model struct {
	load    LoadFunc
	watcher *Watcher

	items   []Item
	visible []int // indexes into items, filter applied
	cursor  int
	offset  int // first visible row, for scrolling

	input  textinput.Model
	width  int
	height int

	err    error
	choice string
	loaded bool
}

// Option configures a Model.
type Option func(*Model)

// WithSize sets the initial frame size, used until the first
// WindowSizeMsg arrives.
func WithSize(width, height int) Option {
	return func(m *Model) {
		m.width = width
		m.height = height
	}
}

// WithWatcher wires a config-dir watcher into the model so the list
// refreshes when descriptor files change. The caller keeps ownership and
// closes the watcher after the program exits.
func WithWatcher(w *Watcher) Option {
	return func(m *Model) {
		m.watcher = w
	}
}

// New creates a picker over the items supplied by load.
func New(load LoadFunc, opts ...Option) Model {
	ti := textinput.New()
	ti.Prompt = "❯ "
	ti.PromptStyle = styles.FilterPrompt
	ti.Placeholder = "type to filter"
	ti.CharLimit = 64
	ti.Focus()

	m := Model{
		load:   load,
		input:  ti,
		width:  80,
		height: 24,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Choice returns the name of the selected session, or "" when the picker
// was quit without choosing.
func (m Model) Choice() string {
	return m.choice
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, loadItems(m.load), m.waitForChange())
}

// loadItems reads the item list off the UI loop.
func loadItems(load LoadFunc) tea.Cmd {
	return func() tea.Msg {
		items, err := load()
		return itemsMsg{items: items, err: err}
	}
}

// waitForChange blocks on the watcher until a descriptor file changes,
// then asks for a reload. Re-armed after every refresh.
func (m Model) waitForChange() tea.Cmd {
	w := m.watcher
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		if w.WaitForChange() {
			return refreshMsg{}
		}
		return nil
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampScroll()
		return m, nil

	case itemsMsg:
		m.items = msg.items
		m.err = msg.err
		m.loaded = true
		m.refilter()
		return m, nil

	case refreshMsg:
		return m, tea.Batch(loadItems(m.load), m.waitForChange())

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			if item, ok := m.Selected(); ok {
				m.choice = item.Name
				return m, tea.Quit
			}
			return m, nil

		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
				m.clampScroll()
			}
			return m, nil

		case "down", "ctrl+n":
			if m.cursor < len(m.visible)-1 {
				m.cursor++
				m.clampScroll()
			}
			return m, nil
		}

		var cmd tea.Cmd
		before := m.input.Value()
		m.input, cmd = m.input.Update(msg)
		if m.input.Value() != before {
			m.refilter()
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// Selected returns the item under the cursor.
func (m Model) Selected() (Item, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return Item{}, false
	}
	return m.items[m.visible[m.cursor]], true
}

// refilter recomputes the visible rows for the current query, keeping
// document order, and resets the cursor to the top.
func (m *Model) refilter() {
	query := strings.ToLower(strings.TrimSpace(m.input.Value()))
	m.visible = m.visible[:0]
	for i, item := range m.items {
		if query == "" || strings.Contains(strings.ToLower(item.Name), query) {
			m.visible = append(m.visible, i)
		}
	}
	m.cursor = 0
	m.offset = 0
}

// listHeight returns how many rows fit between the chrome lines.
func (m Model) listHeight() int {
	// Title block, filter line, blank line, help bar.
	h := m.height - 6
	if h < 1 {
		h = 1
	}
	return h
}

// clampScroll keeps the cursor inside the visible window.
func (m *Model) clampScroll() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("tmuxup sessions"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(styles.Error.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	case !m.loaded:
		b.WriteString(styles.Muted.Render("Loading..."))
		b.WriteString("\n")
	case len(m.items) == 0:
		b.WriteString(styles.Muted.Render("No session configs found. Create one with: tmuxup new <name>"))
		b.WriteString("\n")
	case len(m.visible) == 0:
		b.WriteString(styles.Muted.Render("No sessions match the filter"))
		b.WriteString("\n")
	default:
		h := m.listHeight()
		end := m.offset + h
		if end > len(m.visible) {
			end = len(m.visible)
		}
		for row := m.offset; row < end; row++ {
			b.WriteString(m.renderRow(row))
			b.WriteString("\n")
		}
	}

	b.WriteString(m.renderHelp())
	return b.String()
}

// renderRow renders one list row, truncated to the frame width.
func (m Model) renderRow(row int) string {
	item := m.items[m.visible[row]]

	marker := "  "
	if item.Running {
		marker = styles.RunningMarker.Render("●") + " "
	}

	detail := fmt.Sprintf("%d window", item.Windows)
	if item.Windows != 1 {
		detail += "s"
	}
	line := fmt.Sprintf("%s%-20s %s  %s", marker, item.Name,
		styles.Muted.Render(detail), styles.Muted.Render(item.Root))

	style := styles.Row
	if row == m.cursor {
		line = fmt.Sprintf("%s%-20s %s  %s", marker, item.Name, detail, item.Root)
		style = styles.RowSelected
	}
	return util.TruncateWidth(style.Render(line), m.width)
}

func (m Model) renderHelp() string {
	help := strings.Join([]string{
		styles.HelpKey.Render("↑/↓") + " move",
		styles.HelpKey.Render("enter") + " start",
		styles.HelpKey.Render("esc") + " quit",
	}, styles.Muted.Render(" · "))
	return styles.HelpBar.Render(help)
}
