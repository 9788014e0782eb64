package prompt

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/jot/internal/apperr"
	"github.com/starford/jot/internal/ui"
)

const (
	listWidth     = 80
	maxListHeight = 20
)

// choice is one option in the list. index points back into the caller's slice
// because filtering reorders what is shown.
type choice struct {
	label string
	index int
}

func (c choice) Title() string       { return c.label }
func (c choice) Description() string { return "" }
func (c choice) FilterValue() string { return c.label }

// selector is the bubbletea model behind SelectOne and FuzzySelect.
type selector struct {
	list      list.Model
	init      tea.Cmd
	picked    int
	done      bool
	cancelled bool
}

func newSelector(prompt string, options []string, fuzzy bool) selector {
	items := make([]list.Item, len(options))
	for i, o := range options {
		items[i] = choice{label: o, index: i}
	}

	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	d.SetSpacing(0)
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.
		Foreground(ui.Accent.GetForeground()).
		BorderLeftForeground(ui.Accent.GetForeground())

	l := list.New(items, d, listWidth, min(len(options)+8, maxListHeight))
	l.Title = prompt
	l.Styles.Title = ui.Heading.Bold(true)
	l.SetShowStatusBar(fuzzy)
	l.SetFilteringEnabled(fuzzy)
	l.DisableQuitKeybindings()

	m := selector{list: l}
	if fuzzy {
		// Open with the filter focused, as if "/" had been pressed.
		m.list, m.init = m.list.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	}
	return m
}

func (m selector) Init() tea.Cmd { return m.init }

func (m selector) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(min(msg.Height, maxListHeight))
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m.cancel()
		}
		if m.list.FilterState() == list.Filtering {
			// Enter accepts the filter and picks the top match in one go.
			if msg.Type == tea.KeyEnter && len(m.list.VisibleItems()) == 0 {
				return m, nil
			}
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			if msg.Type == tea.KeyEnter {
				return m.pick()
			}
			return m, cmd
		}
		switch msg.String() {
		case "enter":
			return m.pick()
		case "q":
			return m.cancel()
		case "esc":
			if m.list.FilterState() != list.FilterApplied {
				return m.cancel()
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m selector) View() string {
	if m.done {
		return ""
	}
	return m.list.View()
}

func (m selector) pick() (tea.Model, tea.Cmd) {
	c, ok := m.list.SelectedItem().(choice)
	if !ok {
		// Nothing matches the filter; keep the list open.
		return m, nil
	}
	m.picked = c.index
	m.done = true
	return m, tea.Quit
}

func (m selector) cancel() (tea.Model, tea.Cmd) {
	m.cancelled = true
	m.done = true
	return m, tea.Quit
}

// result turns the final model into SelectOne's return values. A program
// that ended without a pick (input closed) counts as cancelled.
func (m selector) result() (int, error) {
	if m.cancelled || !m.done {
		return 0, apperr.ErrCancelled
	}
	return m.picked, nil
}
