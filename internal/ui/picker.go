package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrPickCancelled is returned when the user quits the picker without choosing.
var ErrPickCancelled = errors.New("selection cancelled")

// PickerItem is one entry shown in the interactive picker.
type PickerItem struct {
	Label    string // e.g. "#0"
	SubLabel string // shown dimmed, e.g. the address
	Value    string // returned on selection
}

type pickerModel struct {
	title    string
	items    []PickerItem
	cursor   int
	selected *PickerItem
	quitting bool
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "enter", " ":
		item := m.items[m.cursor]
		m.selected = &item
		return m, tea.Quit
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n" + StyleTitle.Render("  "+m.title) + "\n\n")
	for i, item := range m.items {
		line := "    " + StyleValue.Render(item.Label)
		if i == m.cursor {
			line = "  ▸ " + item.Label
		}
		if item.SubLabel != "" {
			line += "  " + StyleMeta.Render(item.SubLabel)
		}
		if i == m.cursor {
			line = StyleSelected.Render(line)
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n" + StyleMeta.Render("  ↑↓/jk move · enter select · q cancel") + "\n")
	return sb.String()
}

// PickItem runs an interactive list picker and returns the chosen Value.
func PickItem(title string, items []PickerItem) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("no items to pick from")
	}

	final, err := tea.NewProgram(pickerModel{title: title, items: items}).Run()
	if err != nil {
		return "", fmt.Errorf("picker: %w", err)
	}
	fm := final.(pickerModel)
	if fm.selected == nil {
		return "", ErrPickCancelled
	}
	return fm.selected.Value, nil
}
