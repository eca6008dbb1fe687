package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/timestables/internal/ui/theme"
)

// MenuItem represents a single item in a navigation menu.
type MenuItem struct {
	Label    string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical navigation menu rendered as buttons.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu creates a new menu with the first enabled item selected.
func NewMenu(items []MenuItem) Menu {
	selected := 0
	for i, item := range items {
		if !item.Disabled {
			selected = i
			break
		}
	}
	return Menu{
		Items:    items,
		Selected: selected,
	}
}

// Update handles keyboard navigation.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch kmsg.String() {
	case "up", "k":
		for i := m.Selected - 1; i >= 0; i-- {
			if !m.Items[i].Disabled {
				m.Selected = i
				break
			}
		}
	case "down", "j":
		for i := m.Selected + 1; i < len(m.Items); i++ {
			if !m.Items[i].Disabled {
				m.Selected = i
				break
			}
		}
	case "enter":
		if m.Selected >= 0 && m.Selected < len(m.Items) {
			item := m.Items[m.Selected]
			if item.Action != nil && !item.Disabled {
				return m, item.Action()
			}
		}
	}

	return m, nil
}

// ButtonWidth is the fixed width of menu buttons.
const ButtonWidth = 24

// View renders the menu as a column of buttons centered in width.
func (m Menu) View(width int) string {
	disabled := theme.ButtonInactive.Foreground(theme.TextDim)

	buttons := make([]string, 0, len(m.Items))
	for i, item := range m.Items {
		switch {
		case item.Disabled:
			buttons = append(buttons, disabled.Width(ButtonWidth).Align(lipgloss.Center).Render(item.Label))
		case i == m.Selected:
			buttons = append(buttons, theme.ButtonActive.Width(ButtonWidth).Align(lipgloss.Center).Render("▸ "+item.Label))
		default:
			buttons = append(buttons, theme.ButtonInactive.Width(ButtonWidth).Align(lipgloss.Center).Render(item.Label))
		}
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(buttons, "\n"))
}
