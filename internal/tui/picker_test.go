package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func testItems() []Item {
	return []Item{
		{Name: "api", Root: "~/code/api", Windows: 2, Running: true},
		{Name: "blog", Root: "~/code/blog", Windows: 1},
		{Name: "batch", Root: "~/code/batch", Windows: 3},
	}
}

// loadedModel returns a picker that has already received its items.
func loadedModel(items []Item) Model {
	m := New(func() ([]Item, error) { return items, nil })
	next, _ := m.Update(itemsMsg{items: items})
	return next.(Model)
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestPickerShowsAllItemsInitially(t *testing.T) {
	m := loadedModel(testItems())

	if len(m.visible) != 3 {
		t.Errorf("visible rows = %d, want 3", len(m.visible))
	}
	item, ok := m.Selected()
	if !ok {
		t.Fatal("Selected() reported no selection")
	}
	if item.Name != "api" {
		t.Errorf("initial selection = %q, want %q", item.Name, "api")
	}
}

func TestPickerFiltersAsYouType(t *testing.T) {
	m := loadedModel(testItems())

	for _, r := range "b" {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	if len(m.visible) != 2 {
		t.Fatalf("after typing %q: visible rows = %d, want 2", "b", len(m.visible))
	}

	for _, r := range "at" {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	if len(m.visible) != 1 {
		t.Fatalf("after typing %q: visible rows = %d, want 1", "bat", len(m.visible))
	}
	item, _ := m.Selected()
	if item.Name != "batch" {
		t.Errorf("selection = %q, want %q", item.Name, "batch")
	}
}

func TestPickerFilterIsCaseInsensitive(t *testing.T) {
	m := loadedModel(testItems())

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'A'}})
	m = next.(Model)

	// "api", "batch" both contain an "a".
	if len(m.visible) != 2 {
		t.Errorf("visible rows = %d, want 2", len(m.visible))
	}
}

func TestPickerNavigationClampsAtEnds(t *testing.T) {
	m := loadedModel(testItems())

	next, _ := m.Update(keyMsg("up"))
	m = next.(Model)
	if m.cursor != 0 {
		t.Errorf("cursor after up at top = %d, want 0", m.cursor)
	}

	for i := 0; i < 5; i++ {
		next, _ := m.Update(keyMsg("down"))
		m = next.(Model)
	}
	if m.cursor != 2 {
		t.Errorf("cursor after repeated down = %d, want 2", m.cursor)
	}

	next, _ = m.Update(keyMsg("up"))
	m = next.(Model)
	if m.cursor != 1 {
		t.Errorf("cursor after up = %d, want 1", m.cursor)
	}
}

func TestPickerEnterSelects(t *testing.T) {
	m := loadedModel(testItems())

	next, _ := m.Update(keyMsg("down"))
	m = next.(Model)
	next, cmd := m.Update(keyMsg("enter"))
	m = next.(Model)

	if m.Choice() != "blog" {
		t.Errorf("Choice() = %q, want %q", m.Choice(), "blog")
	}
	if cmd == nil {
		t.Fatal("enter did not return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("enter did not quit the program")
	}
}

func TestPickerEnterWithNoMatchesDoesNothing(t *testing.T) {
	m := loadedModel(testItems())

	for _, r := range "zzz" {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	next, cmd := m.Update(keyMsg("enter"))
	m = next.(Model)

	if m.Choice() != "" {
		t.Errorf("Choice() = %q, want empty", m.Choice())
	}
	if cmd != nil {
		t.Error("enter with no matches should not return a command")
	}
}

func TestPickerEscQuitsWithoutChoice(t *testing.T) {
	m := loadedModel(testItems())

	next, cmd := m.Update(keyMsg("esc"))
	m = next.(Model)

	if m.Choice() != "" {
		t.Errorf("Choice() = %q, want empty", m.Choice())
	}
	if cmd == nil {
		t.Fatal("esc did not return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("esc did not quit the program")
	}
}

func TestPickerRefreshReloadsItems(t *testing.T) {
	loads := 0
	load := func() ([]Item, error) {
		loads++
		return []Item{{Name: "fresh"}}, nil
	}
	m := New(load)

	// No watcher, so the refresh batch collapses to the single load
	// command.
	next, cmd := m.Update(refreshMsg{})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("refresh did not return a command")
	}

	msg, ok := cmd().(itemsMsg)
	if !ok {
		t.Fatalf("refresh command returned %T, want itemsMsg", cmd())
	}
	if loads != 1 {
		t.Errorf("loads = %d, want 1", loads)
	}

	next, _ = m.Update(msg)
	m = next.(Model)
	if len(m.visible) != 1 {
		t.Fatalf("visible rows = %d, want 1", len(m.visible))
	}
	if item, _ := m.Selected(); item.Name != "fresh" {
		t.Errorf("selection = %q, want %q", item.Name, "fresh")
	}
}

func TestPickerViewStates(t *testing.T) {
	t.Run("running marker", func(t *testing.T) {
		view := loadedModel(testItems()).View()
		if !strings.Contains(view, "●") {
			t.Error("view does not mark the running session")
		}
		if !strings.Contains(view, "api") {
			t.Error("view does not list the sessions")
		}
	})

	t.Run("window counts", func(t *testing.T) {
		view := loadedModel(testItems()).View()
		if !strings.Contains(view, "2 windows") {
			t.Error("view does not show plural window count")
		}
		if !strings.Contains(view, "1 window") {
			t.Error("view does not show singular window count")
		}
	})

	t.Run("no configs", func(t *testing.T) {
		view := loadedModel(nil).View()
		if !strings.Contains(view, "No session configs found") {
			t.Errorf("empty view = %q", view)
		}
	})

	t.Run("no filter match", func(t *testing.T) {
		m := loadedModel(testItems())
		for _, r := range "zzz" {
			next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
			m = next.(Model)
		}
		if !strings.Contains(m.View(), "No sessions match") {
			t.Error("view does not report an empty filter result")
		}
	})

	t.Run("not yet loaded", func(t *testing.T) {
		m := New(func() ([]Item, error) { return nil, nil })
		if !strings.Contains(m.View(), "Loading") {
			t.Error("view does not show the loading state")
		}
	})
}

func TestPickerScrollFollowsCursor(t *testing.T) {
	items := make([]Item, 30)
	for i := range items {
		items[i] = Item{Name: strings.Repeat("x", i+1)}
	}
	m := loadedModel(items)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	m = next.(Model)

	for i := 0; i < 20; i++ {
		n, _ := m.Update(keyMsg("down"))
		m = n.(Model)
	}
	if m.cursor != 20 {
		t.Fatalf("cursor = %d, want 20", m.cursor)
	}
	if m.offset > m.cursor {
		t.Errorf("offset %d left the cursor above the window", m.offset)
	}
	if m.cursor >= m.offset+m.listHeight() {
		t.Errorf("offset %d left the cursor below the window (height %d)", m.offset, m.listHeight())
	}
}
