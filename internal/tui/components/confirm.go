package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jakoblorz/go-mvnaudit/internal/tui"
)

// ConfirmModel asks a yes/no question about a list of pending actions.
// The cursor starts on "No".
type ConfirmModel struct {
	message   string
	details   []string
	cursor    int
	confirmed bool
	done      bool
}

// NewConfirm creates a confirmation prompt; details are listed under the message.
func NewConfirm(message string, details ...string) ConfirmModel {
	return ConfirmModel{
		message: message,
		details: details,
		cursor:  1,
	}
}

func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "left", "h":
		m.cursor = 0
	case "right", "l":
		m.cursor = 1
	case "tab":
		m.cursor = 1 - m.cursor
	case "enter", " ":
		return m.finish(m.cursor == 0)
	case "y", "Y":
		return m.finish(true)
	case "n", "N", "ctrl+c", "esc", "q":
		return m.finish(false)
	}
	return m, nil
}

func (m ConfirmModel) finish(confirmed bool) (tea.Model, tea.Cmd) {
	m.confirmed = confirmed
	m.done = true
	return m, tea.Quit
}

func (m ConfirmModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(tui.TitleStyle.Render(m.message))
	b.WriteString("\n")
	for _, d := range m.details {
		fmt.Fprintf(&b, "  %s\n", d)
	}
	b.WriteString("\n")

	yes, no := "  Yes", "  No"
	if m.cursor == 0 {
		yes = tui.SelectedStyle.Render("> Yes")
	} else {
		no = tui.SelectedStyle.Render("> No")
	}
	fmt.Fprintf(&b, "%s  %s\n", yes, no)
	b.WriteString(tui.HelpStyle.Render("←→ navigate • enter confirm • y/n quick select"))

	return b.String()
}

// IsConfirmed returns whether the user confirmed
func (m ConfirmModel) IsConfirmed() bool {
	return m.confirmed
}

// IsDone returns whether the user finished
func (m ConfirmModel) IsDone() bool {
	return m.done
}

// RunConfirm runs the prompt as a bubbletea program and reports the answer.
func RunConfirm(message string, details ...string) (bool, error) {
	final, err := tea.NewProgram(NewConfirm(message, details...)).Run()
	if err != nil {
		return false, fmt.Errorf("confirmation prompt failed: %w", err)
	}
	return final.(ConfirmModel).IsConfirmed(), nil
}
