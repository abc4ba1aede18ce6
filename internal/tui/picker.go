package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// PickRepositories lets the user choose which repositories to sync.
// preselected names start checked. A nil slice means the user aborted.
func PickRepositories(names, preselected []string) ([]string, error) {
	checked := make(map[string]bool, len(preselected))
	for _, name := range preselected {
		checked[name] = true
	}

	opts := make([]huh.Option[string], 0, len(names))
	for _, name := range names {
		opts = append(opts, huh.NewOption(name, name).Selected(checked[name]))
	}

	selected := make([]string, 0, len(names))

	keyMap := huh.NewDefaultKeyMap()
	keyMap.MultiSelect.Toggle.SetKeys(" ")
	keyMap.MultiSelect.Toggle.SetHelp("space", "toggle selection")
	keyMap.MultiSelect.Submit.SetKeys("enter")
	keyMap.MultiSelect.Submit.SetHelp("enter", "sync")

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Options(opts...).
				Filterable(true).
				Value(&selected),
		).
			Title("Repository Selection").
			Description("Select repositories to clone or fetch."),
	).
		WithTheme(NewHuhTheme()).
		WithShowHelp(true).
		WithProgramOptions(tea.WithAltScreen()).
		WithKeyMap(keyMap)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, nil
		}
		return nil, err
	}

	return selected, nil
}
