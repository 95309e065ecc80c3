package ui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/list"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/idlab-discover/FlagScan-cli/internal/apperr"
)

// flagItem is one flag key in the selector list.
type flagItem struct {
	key      string
	selected bool
}

func (i flagItem) Title() string {
	if i.selected {
		return Success.Render("[✓] ") + i.key
	}
	return Dim.Render("[ ] ") + i.key
}

func (i flagItem) Description() string { return "" }

func (i flagItem) FilterValue() string { return i.key }

// flagSelectorModel lets the user narrow a loaded flag list before an audit.
// The text input filters by substring; the list toggles selection.
type flagSelectorModel struct {
	textInput textinput.Model
	list      list.Model

	keys      []string
	selected  map[string]bool
	query     string
	confirmed bool
	quitting  bool
}

func newFlagSelector(keys []string) *flagSelectorModel {
	ti := textinput.New()
	ti.Placeholder = "Filter flags..."
	ti.CharLimit = 100
	ti.SetWidth(40)

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetHeight(1)
	delegate.SetSpacing(0)
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(ColorHighlight).
		BorderForeground(ColorPrimary)

	l := list.New(nil, delegate, 60, 16)
	l.Title = "Select flags to audit"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		Padding(0, 0, 1, 0)

	m := &flagSelectorModel{
		textInput: ti,
		list:      l,
		keys:      keys,
		selected:  make(map[string]bool, len(keys)),
	}
	for _, k := range keys {
		m.selected[k] = true
	}
	m.refresh()
	return m
}

// refresh rebuilds the visible items from the current query.
func (m *flagSelectorModel) refresh() {
	q := strings.ToLower(m.query)
	items := make([]list.Item, 0, len(m.keys))
	for _, k := range m.keys {
		if q == "" || strings.Contains(strings.ToLower(k), q) {
			items = append(items, flagItem{key: k, selected: m.selected[k]})
		}
	}
	m.list.SetItems(items)
}

func (m *flagSelectorModel) Init() tea.Cmd { return nil }

func (m *flagSelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.textInput.Focused() {
			switch msg.String() {
			case "ctrl+c", "esc":
				m.quitting = true
				return m, tea.Quit
			case "enter", "down", "up":
				m.textInput.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.textInput, cmd = m.textInput.Update(msg)
			if v := m.textInput.Value(); v != m.query {
				m.query = v
				m.refresh()
			}
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			m.confirmed = true
			m.quitting = true
			return m, tea.Quit
		case "space", " ", "s":
			if i, ok := m.list.SelectedItem().(flagItem); ok {
				m.selected[i.key] = !m.selected[i.key]
				m.refresh()
			}
			return m, nil
		case "a":
			all := len(m.Selected()) < len(m.keys)
			for _, k := range m.keys {
				m.selected[k] = all
			}
			m.refresh()
			return m, nil
		case "/":
			return m, m.textInput.Focus()
		}

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *flagSelectorModel) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}

	var b strings.Builder
	b.WriteString(Dim.Render("Filter: "))
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")
	b.WriteString(m.list.View())
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%s %s\n",
		Success.Render("Selected:"),
		Highlight.Render(fmt.Sprintf("%d/%d flag(s)", len(m.Selected()), len(m.keys)))))

	help := "space: toggle · a: toggle all · /: filter · enter: audit · esc: cancel"
	if m.textInput.Focused() {
		help = "enter: back to list · esc: cancel"
	}
	b.WriteString(Muted.Render(help))
	return tea.NewView(b.String())
}

// Selected returns the chosen keys in their original order.
func (m *flagSelectorModel) Selected() []string {
	var out []string
	for _, k := range m.keys {
		if m.selected[k] {
			out = append(out, k)
		}
	}
	return out
}

// RunFlagSelector lets the user pick which of keys to audit. Every key
// starts selected.
func RunFlagSelector(keys []string) ([]string, error) {
	p := tea.NewProgram(newFlagSelector(keys))
	m, err := p.Run()
	if err != nil {
		return nil, err
	}
	model := m.(*flagSelectorModel)
	if !model.confirmed {
		return nil, apperr.ErrCancelled
	}
	return model.Selected(), nil
}
