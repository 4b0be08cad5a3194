package screens

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"connectorsync/internal/models"
	"connectorsync/internal/store"
)

// Login is the identity-selection screen. There is no authentication;
// picking a user is logging in.
type Login struct {
	store  *store.Store
	width  int
	height int

	users  []models.User
	cursor int
}

func NewLogin(st *store.Store) *Login {
	return &Login{store: st}
}

func (l *Login) SetSize(width, height int) {
	l.width = width
	l.height = height
}

func (l *Login) Init() tea.Cmd {
	l.users = l.store.Snapshot().Users
	if l.cursor >= len(l.users) {
		l.cursor = max(0, len(l.users)-1)
	}
	return nil
}

func (l *Login) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if l.cursor > 0 {
			l.cursor--
		}
	case "down", "j":
		if l.cursor < len(l.users)-1 {
			l.cursor++
		}
	case "enter":
		if len(l.users) > 0 {
			return NavigateWithUser("dashboard", l.users[l.cursor].ID)
		}
	case "q", "esc":
		return tea.Quit
	}
	return nil
}

func (l *Login) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("CONNECTOR SYNC"))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render("Select your identity to sign in"))
	b.WriteString("\n\n")

	if len(l.users) == 0 {
		b.WriteString(DimStyle.Render("No users found."))
		b.WriteString("\n")
	}

	for i, u := range l.users {
		cursor := "  "
		style := NormalStyle
		if i == l.cursor {
			cursor = "> "
			style = SelectedStyle
		}
		line := fmt.Sprintf("%s%s %s  %s", cursor, Avatar(u), style.Render(u.Name),
			DimStyle.Render(fmt.Sprintf("%s · %s", u.EmployeeID, RoleLabel(u.Role))))
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render("[enter] Sign in  [q] Quit"))
	return b.String()
}
