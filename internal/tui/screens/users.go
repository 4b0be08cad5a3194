package screens

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"connectorsync/internal/models"
	"connectorsync/internal/store"
)

type usersMode int

const (
	usersModeList usersMode = iota
	usersModeAdd
	usersModeEdit
	usersModeDelete
)

// Users is the admin screen for managing team members.
type Users struct {
	store  *store.Store
	width  int
	height int

	users   []models.User
	cursor  int
	mode    usersMode
	inputs  []textinput.Model // name, employee id
	focus   int
	addRole models.Role
	message string
	warning string
	err     error
}

func NewUsers(st *store.Store) *Users {
	return &Users{store: st}
}

func (u *Users) SetSize(width, height int) {
	u.width = width
	u.height = height
}

func (u *Users) Init() tea.Cmd {
	u.mode = usersModeList
	u.message = ""
	u.err = nil
	u.refresh()
	return nil
}

func (u *Users) refresh() {
	u.users = u.store.Snapshot().Users
	if u.cursor >= len(u.users) {
		u.cursor = max(0, len(u.users)-1)
	}
}

func (u *Users) Update(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		return u.handleKey(keyMsg)
	}

	if u.mode == usersModeAdd || u.mode == usersModeEdit {
		return u.updateInputs(msg)
	}
	return nil
}

func (u *Users) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch u.mode {
	case usersModeList:
		return u.handleListKey(msg)
	case usersModeAdd:
		return u.handleAddKey(msg)
	case usersModeEdit:
		return u.handleEditKey(msg)
	case usersModeDelete:
		return u.handleDeleteKey(msg)
	}
	return nil
}

func (u *Users) handleListKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if u.cursor > 0 {
			u.cursor--
		}
	case "down", "j":
		if u.cursor < len(u.users)-1 {
			u.cursor++
		}
	case "a":
		name := textinput.New()
		name.Placeholder = "Name"
		name.Width = 40
		name.CharLimit = 100
		name.Focus()

		empID := textinput.New()
		empID.Placeholder = "Employee ID"
		empID.Width = 20
		empID.CharLimit = 40

		u.inputs = []textinput.Model{name, empID}
		u.focus = 0
		u.addRole = models.RoleEngineer
		u.mode = usersModeAdd
		return textinput.Blink
	case "e":
		if len(u.users) > 0 {
			name := textinput.New()
			name.Width = 40
			name.CharLimit = 100
			name.SetValue(u.users[u.cursor].Name)
			name.Focus()

			u.inputs = []textinput.Model{name}
			u.focus = 0
			u.mode = usersModeEdit
			return textinput.Blink
		}
	case "d":
		if len(u.users) > 0 {
			u.mode = usersModeDelete
		}
	case "q", "esc":
		return Navigate("dashboard")
	}
	return nil
}

func (u *Users) handleAddKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		u.mode = usersModeList
		return nil

	case "left", "right":
		// Role is the last field; toggle when it has focus.
		if u.focus == len(u.inputs) {
			if u.addRole == models.RoleEngineer {
				u.addRole = models.RoleAdmin
			} else {
				u.addRole = models.RoleEngineer
			}
			return nil
		}

	case "enter", "tab", "down", "shift+tab", "up":
		total := len(u.inputs) + 1
		if msg.String() == "enter" && u.focus == total-1 {
			name := strings.TrimSpace(u.inputs[0].Value())
			if name == "" {
				u.err = fmt.Errorf("name is required")
				return nil
			}
			user, err := u.store.AddUser(store.UserData{
				Name:       name,
				EmployeeID: strings.TrimSpace(u.inputs[1].Value()),
				Role:       u.addRole,
			})
			if err != nil {
				u.warning = fmt.Sprintf("Save failed: %v", err)
			}
			u.message = fmt.Sprintf("Added user: %s", user.Name)
			u.mode = usersModeList
			u.refresh()
			return nil
		}

		step := 1
		if msg.String() == "shift+tab" || msg.String() == "up" {
			step = total - 1
		}
		u.focus = (u.focus + step) % total
		for i := range u.inputs {
			if i == u.focus {
				u.inputs[i].Focus()
			} else {
				u.inputs[i].Blur()
			}
		}
		return textinput.Blink
	}

	return u.updateInputs(msg)
}

func (u *Users) handleEditKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		name := strings.TrimSpace(u.inputs[0].Value())
		if name != "" {
			if err := u.store.UpdateUser(u.users[u.cursor].ID, store.UserUpdate{Name: &name}); err != nil {
				u.warning = fmt.Sprintf("Save failed: %v", err)
			}
			u.message = fmt.Sprintf("Updated user: %s", name)
		}
		u.mode = usersModeList
		u.refresh()
		return nil
	case "esc":
		u.mode = usersModeList
		return nil
	}
	return u.updateInputs(msg)
}

func (u *Users) handleDeleteKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		user := u.users[u.cursor]
		if err := u.store.RemoveUser(user.ID); err != nil {
			u.warning = fmt.Sprintf("Save failed: %v", err)
		}
		u.message = fmt.Sprintf("Removed user: %s", user.Name)
		u.mode = usersModeList
		u.refresh()
	case "n", "N", "esc":
		u.mode = usersModeList
	}
	return nil
}

func (u *Users) updateInputs(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for i := range u.inputs {
		var cmd tea.Cmd
		u.inputs[i], cmd = u.inputs[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (u *Users) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("USERS"))
	b.WriteString("\n\n")

	if u.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", u.err)))
		b.WriteString("\n\n")
		u.err = nil
	}
	if u.warning != "" {
		b.WriteString(WarningStyle.Render(u.warning))
		b.WriteString("\n\n")
		u.warning = ""
	}
	if u.message != "" {
		b.WriteString(SuccessStyle.Render(u.message))
		b.WriteString("\n\n")
	}

	switch u.mode {
	case usersModeAdd:
		b.WriteString("New user:\n\n")
		b.WriteString(fmt.Sprintf("  %-12s %s\n", "Name", u.inputs[0].View()))
		b.WriteString(fmt.Sprintf("  %-12s %s\n", "Employee ID", u.inputs[1].View()))
		marker := "  "
		if u.focus == len(u.inputs) {
			marker = "> "
		}
		b.WriteString(fmt.Sprintf("%s%-12s < %s >\n", marker, "Role", RoleLabel(u.addRole)))
		b.WriteString("\n")
		b.WriteString(HelpStyle.Render("[tab] Next field  [←/→] Toggle role  [enter on role] Save  [esc] Cancel"))
		return b.String()

	case usersModeEdit:
		b.WriteString("Edit name:\n")
		b.WriteString(u.inputs[0].View())
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[enter] Save  [esc] Cancel"))
		return b.String()

	case usersModeDelete:
		b.WriteString(WarningStyle.Render(fmt.Sprintf(
			"Remove user '%s'? Their tasks are kept and keep pointing at them. (y/n)",
			u.users[u.cursor].Name,
		)))
		b.WriteString("\n")
		return b.String()
	}

	for i, user := range u.users {
		cursor := "  "
		style := NormalStyle
		if i == u.cursor {
			cursor = "> "
			style = SelectedStyle
		}
		b.WriteString(fmt.Sprintf("%s%s %s  %s\n", cursor, Avatar(user), style.Render(user.Name),
			DimStyle.Render(fmt.Sprintf("%s · %s", user.EmployeeID, RoleLabel(user.Role)))))
	}
	b.WriteString("\n")

	b.WriteString(HelpStyle.Render("[a] Add  [e] Edit  [d] Remove  [q] Back"))
	return b.String()
}
