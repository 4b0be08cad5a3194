package screens

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"connectorsync/internal/config"
	"connectorsync/internal/exchange"
	"connectorsync/internal/models"
	"connectorsync/internal/notify"
	"connectorsync/internal/store"
)

type dashboardMode int

const (
	dashboardModeView dashboardMode = iota
	dashboardModeImportPath
	dashboardModeImportConfirm
)

// Dashboard is the landing screen after sign-in: workload overview,
// notifications, and the export/import entry points.
type Dashboard struct {
	store  *store.Store
	cfg    *config.Config
	user   models.User
	width  int
	height int

	mode          dashboardMode
	input         textinput.Model
	staged        *exchange.Staged
	notifications []notify.Item
	snap          store.Snapshot
	message       string
	warning       string
	err           error
}

func NewDashboard(st *store.Store, cfg *config.Config) *Dashboard {
	ti := textinput.New()
	ti.Placeholder = "Path to exchange file"
	ti.CharLimit = 200
	ti.Width = 60

	return &Dashboard{
		store: st,
		cfg:   cfg,
		input: ti,
	}
}

func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
}

func (d *Dashboard) SetUser(u models.User) {
	d.user = u
}

func (d *Dashboard) Init() tea.Cmd {
	d.mode = dashboardModeView
	d.message = ""
	d.err = nil
	d.refresh()
	return nil
}

func (d *Dashboard) refresh() {
	d.snap = d.store.Snapshot()
	items := notify.Derive(d.snap.Tasks, d.snap.Users, time.Now(), d.cfg.DueSoonDays)
	d.notifications = notify.ForUser(items, d.user)
}

func (d *Dashboard) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return d.handleKey(msg)
	}

	if d.mode == dashboardModeImportPath {
		var cmd tea.Cmd
		d.input, cmd = d.input.Update(msg)
		return cmd
	}

	return nil
}

func (d *Dashboard) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch d.mode {
	case dashboardModeView:
		return d.handleViewKey(msg)
	case dashboardModeImportPath:
		return d.handleImportPathKey(msg)
	case dashboardModeImportConfirm:
		return d.handleImportConfirmKey(msg)
	}
	return nil
}

func (d *Dashboard) handleViewKey(msg tea.KeyMsg) tea.Cmd {
	isAdmin := d.user.Role == models.RoleAdmin

	switch msg.String() {
	case "t":
		return Navigate("tasks")
	case "u":
		if isAdmin {
			return Navigate("users")
		}
	case "c":
		if isAdmin {
			return Navigate("categories")
		}
	case "x":
		path, err := exchange.WriteFile(d.cfg.ExportsOutput, d.snap.Users, d.snap.Tasks, time.Now())
		if err != nil {
			d.err = err
		} else {
			d.message = fmt.Sprintf("Exported to %s", path)
		}
	case "i":
		if isAdmin {
			d.mode = dashboardModeImportPath
			d.input.SetValue("")
			d.input.Focus()
			return textinput.Blink
		}
	case "l":
		return Navigate("login")
	case "q", "esc":
		return tea.Quit
	}
	return nil
}

func (d *Dashboard) handleImportPathKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		path := strings.TrimSpace(d.input.Value())
		d.input.Blur()
		if path == "" {
			d.mode = dashboardModeView
			return nil
		}

		staged, err := exchange.ParseFile(path)
		if err != nil {
			d.err = err
			d.mode = dashboardModeView
			return nil
		}

		// A new staged payload replaces any previous one.
		d.staged = staged
		d.mode = dashboardModeImportConfirm
		return nil

	case "esc":
		d.mode = dashboardModeView
		d.input.Blur()
		return nil
	}

	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	return cmd
}

func (d *Dashboard) handleImportConfirmKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		if err := d.staged.Commit(d.store); err != nil {
			d.warning = fmt.Sprintf("Save failed: %v", err)
		} else {
			d.message = "Data imported."
		}
		d.staged = nil
		d.mode = dashboardModeView
		d.refresh()

	case "n", "N", "esc":
		d.staged.Discard()
		d.staged = nil
		d.mode = dashboardModeView
	}
	return nil
}

func (d *Dashboard) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("CONNECTOR SYNC"))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(fmt.Sprintf("Signed in as %s (%s)", d.user.Name, RoleLabel(d.user.Role))))
	b.WriteString("\n\n")

	if d.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", d.err)))
		b.WriteString("\n\n")
		d.err = nil
	}
	if d.warning != "" {
		b.WriteString(WarningStyle.Render(d.warning))
		b.WriteString("\n\n")
		d.warning = ""
	}
	if d.message != "" {
		b.WriteString(SuccessStyle.Render(d.message))
		b.WriteString("\n\n")
	}

	if d.mode == dashboardModeImportPath {
		b.WriteString("Import exchange file:\n")
		b.WriteString(d.input.View())
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[enter] Load  [esc] Cancel"))
		return b.String()
	}

	if d.mode == dashboardModeImportConfirm && d.staged != nil {
		b.WriteString(WarningStyle.Render(fmt.Sprintf(
			"Import %d users and %d tasks? This OVERWRITES all current members and tasks. (y/n)",
			d.staged.UserCount(), d.staged.TaskCount(),
		)))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(BoxStyle.Render(d.workloadSummary()))
	b.WriteString("\n\n")

	b.WriteString(SubtitleStyle.Render("Notifications"))
	b.WriteString("\n")
	if len(d.notifications) == 0 {
		b.WriteString(DimStyle.Render("  Nothing needs attention."))
		b.WriteString("\n")
	}
	for _, item := range d.notifications {
		b.WriteString("  ")
		b.WriteString(notificationStyle(item.Type).Render(item.Message))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	help := "[t] Tasks  [x] Export  [l] Sign out  [q] Quit"
	if d.user.Role == models.RoleAdmin {
		help = "[t] Tasks  [u] Users  [c] Categories  [x] Export  [i] Import  [l] Sign out  [q] Quit"
	}
	b.WriteString(HelpStyle.Render(help))

	return b.String()
}

func (d *Dashboard) workloadSummary() string {
	var b strings.Builder

	if d.user.Role == models.RoleAdmin {
		b.WriteString(fmt.Sprintf("Team: %d users, %d categories, %d tasks\n\n", len(d.snap.Users), len(d.snap.Categories), len(d.snap.Tasks)))
		for _, u := range d.snap.Users {
			open, done := 0, 0
			var actual float64
			for _, t := range d.snap.Tasks {
				if t.UserID != u.ID {
					continue
				}
				if t.Status == models.StatusDone {
					done++
				} else {
					open++
				}
				actual += t.ActualHours
			}
			b.WriteString(fmt.Sprintf("%s %-16s %d open, %d done, %.1fh logged\n", Avatar(u), u.Name, open, done, actual))
		}
		return strings.TrimRight(b.String(), "\n")
	}

	open, done := 0, 0
	var estimated, actual float64
	for _, t := range d.snap.Tasks {
		if t.UserID != d.user.ID {
			continue
		}
		if t.Status == models.StatusDone {
			done++
		} else {
			open++
		}
		estimated += t.EstimatedHours
		actual += t.ActualHours
	}
	b.WriteString(fmt.Sprintf("My tasks: %d open, %d done\n", open, done))
	b.WriteString(fmt.Sprintf("Hours: %.1f logged of %.1f estimated", actual, estimated))
	return b.String()
}

func notificationStyle(t notify.Type) lipgloss.Style {
	switch t {
	case notify.TypeOverdue:
		return ErrorStyle
	case notify.TypeDueSoon:
		return WarningStyle
	case notify.TypeReviewNeeded:
		return NormalStyle
	}
	return SuccessStyle
}
