package installer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Environments are the MCP clients the installer can configure.
var Environments = []string{
	"VS Code",
	"Claude Desktop",
	"Claude Code",
	"Cursor",
	"Windsurf",
}

// ErrCancelled is returned when the user leaves the picker without confirming.
var ErrCancelled = errors.New("installation cancelled")

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

type pickerKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	All     key.Binding
	Confirm key.Binding
	Quit    key.Binding
}

func (k pickerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.All, k.Confirm, k.Quit}
}

func (k pickerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var pickerKeys = pickerKeyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle:  key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
	All:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all/none")),
	Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
	Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "cancel")),
}

// EnvironmentPicker is a multi-select list of MCP clients. Everything starts selected.
type EnvironmentPicker struct {
	choices   []string
	selected  map[int]bool
	cursor    int
	keys      pickerKeyMap
	help      help.Model
	warning   string
	done      bool
	cancelled bool
}

// NewEnvironmentPicker creates a picker over choices.
func NewEnvironmentPicker(choices []string) EnvironmentPicker {
	selected := make(map[int]bool, len(choices))
	for i := range choices {
		selected[i] = true
	}
	return EnvironmentPicker{
		choices:  choices,
		selected: selected,
		keys:     pickerKeys,
		help:     help.New(),
	}
}

func (m EnvironmentPicker) Init() tea.Cmd { return nil }

func (m EnvironmentPicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.warning = ""

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.cancelled = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Toggle):
		m.selected = cloneSelection(m.selected)
		m.selected[m.cursor] = !m.selected[m.cursor]
	case key.Matches(keyMsg, m.keys.All):
		all := len(m.Selected()) < len(m.choices)
		m.selected = make(map[int]bool, len(m.choices))
		for i := range m.choices {
			m.selected[i] = all
		}
	case key.Matches(keyMsg, m.keys.Confirm):
		if len(m.Selected()) == 0 {
			m.warning = "Select at least one environment."
			return m, nil
		}
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func cloneSelection(in map[int]bool) map[int]bool {
	out := make(map[int]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (m EnvironmentPicker) View() string {
	if m.done || m.cancelled {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Select development environments to configure"))
	b.WriteString("\n\n")
	for i, choice := range m.choices {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}
		box := "[ ]"
		line := choice
		if m.selected[i] {
			box = "[x]"
			line = selectedStyle.Render(choice)
		}
		fmt.Fprintf(&b, "%s%s %s\n", cursor, box, line)
	}
	if m.warning != "" {
		b.WriteString("\n" + warnStyle.Render(m.warning) + "\n")
	}
	b.WriteString("\n" + m.help.View(m.keys) + "\n")
	return b.String()
}

// Selected returns the chosen environments in list order.
func (m EnvironmentPicker) Selected() []string {
	var out []string
	for i, choice := range m.choices {
		if m.selected[i] {
			out = append(out, choice)
		}
	}
	return out
}

// Cancelled reports whether the user quit without confirming.
func (m EnvironmentPicker) Cancelled() bool { return m.cancelled }

// PickEnvironments runs the picker on the given terminal streams.
func PickEnvironments(in io.Reader, out io.Writer) ([]string, error) {
	final, err := tea.NewProgram(NewEnvironmentPicker(Environments), tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		return nil, fmt.Errorf("environment picker failed: %w", err)
	}
	m := final.(EnvironmentPicker)
	if m.Cancelled() {
		return nil, ErrCancelled
	}
	return m.Selected(), nil
}
