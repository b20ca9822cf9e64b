package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/existflow/pmdesk/internal/model"
	"github.com/existflow/pmdesk/internal/view"
)

// Color palette
var (
	// Status colors
	StatusTodoColor       = lipgloss.Color("#FFE66D") // Yellow
	StatusInProgressColor = lipgloss.Color("#4ECDC4") // Teal
	StatusDoneColor       = lipgloss.Color("#95E1A3") // Green
	OverdueColor          = lipgloss.Color("#FF6B6B") // Red

	// UI colors
	Primary   = lipgloss.Color("#4ECDC4")
	Secondary = lipgloss.Color("#6C757D")
	Surface   = lipgloss.Color("#16213e")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
	Danger    = lipgloss.Color("#FF6B6B")
)

// Styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	ContentStyle = lipgloss.NewStyle().
			Padding(1, 2)

	ItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	ItemSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(Surface).
				Bold(true)

	DoneStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Strikethrough(true)

	OverdueStyle = lipgloss.NewStyle().
			Foreground(OverdueColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)
)

// FormatStatus renders a colored status badge
func FormatStatus(status string) string {
	switch status {
	case model.StatusTodo:
		return lipgloss.NewStyle().Foreground(StatusTodoColor).Render("todo")
	case model.StatusInProgress:
		return lipgloss.NewStyle().Foreground(StatusInProgressColor).Render("in progress")
	case model.StatusDone:
		return lipgloss.NewStyle().Foreground(StatusDoneColor).Render("done")
	default:
		return status
	}
}

// FormatAvatar renders the initials fallback with its deterministic
// background color
func FormatAvatar(name string) string {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(view.AvatarColor(name))).
		Foreground(lipgloss.Color("#FFFFFF")).
		Bold(true).
		Padding(0, 1).
		Render(view.Initials(name))
}
