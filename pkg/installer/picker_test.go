package installer

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func press(t *testing.T, m EnvironmentPicker, msgs ...tea.KeyMsg) (EnvironmentPicker, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(EnvironmentPicker)
	}
	return m, cmd
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestEnvironmentPicker_StartsWithEverythingSelected(t *testing.T) {
	m := NewEnvironmentPicker(Environments)
	assert.Equal(t, Environments, m.Selected())
	assert.Nil(t, m.Init())

	view := m.View()
	assert.Contains(t, view, "Select development environments")
	assert.Equal(t, len(Environments), strings.Count(view, "[x]"))
}

func TestEnvironmentPicker_ToggleAndConfirm(t *testing.T) {
	m := NewEnvironmentPicker(Environments)

	// Deselect "Claude Desktop" and "Cursor".
	m, cmd := press(t, m,
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeySpace},
		runeKey('j'), runeKey('j'),
		runeKey('x'),
	)
	assert.Nil(t, cmd)
	assert.Equal(t, []string{"VS Code", "Claude Code", "Windsurf"}, m.Selected())
	assert.Contains(t, m.View(), "[ ] Cursor")
	assert.Equal(t, 3, m.cursor)

	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.False(t, m.Cancelled())
	assert.Empty(t, m.View())
}

func TestEnvironmentPicker_CursorStaysInBounds(t *testing.T) {
	m := NewEnvironmentPicker([]string{"VS Code", "Cursor"})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyUp}, runeKey('k'))
	assert.Equal(t, 0, m.cursor)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.cursor)
}

func TestEnvironmentPicker_NothingSelected(t *testing.T) {
	m := NewEnvironmentPicker(Environments)
	m, _ = press(t, m, runeKey('a'))
	assert.Empty(t, m.Selected())

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd, "enter does not quit without a selection")
	assert.Contains(t, m.View(), "Select at least one environment.")

	m, _ = press(t, m, runeKey('a'))
	assert.Equal(t, Environments, m.Selected())
	assert.NotContains(t, m.View(), "Select at least one environment.")
}

func TestEnvironmentPicker_Cancel(t *testing.T) {
	for _, msg := range []tea.KeyMsg{{Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}, runeKey('q')} {
		t.Run(msg.String(), func(t *testing.T) {
			m, cmd := press(t, NewEnvironmentPicker(Environments), msg)
			require.NotNil(t, cmd)
			assert.True(t, m.Cancelled())
		})
	}
}

func TestEnvironmentPicker_IgnoresOtherMessages(t *testing.T) {
	m := NewEnvironmentPicker(Environments)
	next, cmd := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.Nil(t, cmd)
	assert.Equal(t, Environments, next.(EnvironmentPicker).Selected())
}
