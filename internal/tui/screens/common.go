package screens

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"connectorsync/internal/models"
)

// NavigateMsg is sent when navigation to another screen is requested
type NavigateMsg struct {
	Screen string
	UserID string
}

func Navigate(screen string) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Screen: screen}
	}
}

func NavigateWithUser(screen, userID string) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Screen: screen, UserID: userID}
	}
}

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginBottom(1)

	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	NormalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
)

// Avatar renders a user's initial in their avatar color.
func Avatar(u models.User) string {
	initial := "?"
	if u.Name != "" {
		initial = string([]rune(u.Name)[0])
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(u.AvatarColor)).
		Render("(" + initial + ")")
}

func StatusLabel(s models.TaskStatus) string {
	switch s {
	case models.StatusTodo:
		return "To do"
	case models.StatusInProgress:
		return "In progress"
	case models.StatusPaused:
		return "Paused"
	case models.StatusReview:
		return "In review"
	case models.StatusDone:
		return "Done"
	}
	return string(s)
}

func StatusStyle(s models.TaskStatus) lipgloss.Style {
	switch s {
	case models.StatusInProgress:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	case models.StatusPaused:
		return WarningStyle
	case models.StatusReview:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("178"))
	case models.StatusDone:
		return SuccessStyle
	}
	return DimStyle
}

func PriorityStyle(p models.TaskPriority) lipgloss.Style {
	switch p {
	case models.PriorityHigh:
		return ErrorStyle
	case models.PriorityMedium:
		return WarningStyle
	}
	return DimStyle
}

func PhaseLabel(p models.ProjectPhase) string {
	switch p {
	case models.PhaseRFQ:
		return "RFQ / concept"
	case models.PhaseDesign:
		return "Product design"
	case models.PhaseTooling:
		return "Tooling / process"
	case models.PhaseValidation:
		return "DV/PV validation"
	case models.PhaseSOP:
		return "Ramp to SOP"
	}
	return string(p)
}

func RoleLabel(r models.Role) string {
	if r == models.RoleAdmin {
		return "Admin"
	}
	return "Engineer"
}
