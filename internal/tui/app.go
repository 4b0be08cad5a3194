package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"connectorsync/internal/config"
	"connectorsync/internal/store"
	"connectorsync/internal/tui/screens"
)

type Screen int

const (
	ScreenLogin Screen = iota
	ScreenDashboard
	ScreenTasks
	ScreenUsers
	ScreenCategories
)

type App struct {
	store         *store.Store
	cfg           *config.Config
	currentScreen Screen
	width         int
	height        int

	// Screen models
	login      *screens.Login
	dashboard  *screens.Dashboard
	tasks      *screens.Tasks
	users      *screens.Users
	categories *screens.Categories
}

func NewApp(st *store.Store, cfg *config.Config) *App {
	return &App{
		store:         st,
		cfg:           cfg,
		currentScreen: ScreenLogin,
	}
}

func (a *App) Init() tea.Cmd {
	a.login = screens.NewLogin(a.store)
	a.dashboard = screens.NewDashboard(a.store, a.cfg)
	a.tasks = screens.NewTasks(a.store)
	a.users = screens.NewUsers(a.store)
	a.categories = screens.NewCategories(a.store)

	return a.login.Init()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.login.SetSize(msg.Width, msg.Height)
		a.dashboard.SetSize(msg.Width, msg.Height)
		a.tasks.SetSize(msg.Width, msg.Height)
		a.users.SetSize(msg.Width, msg.Height)
		a.categories.SetSize(msg.Width, msg.Height)

	case screens.NavigateMsg:
		return a.handleNavigation(msg)
	}

	var cmd tea.Cmd
	switch a.currentScreen {
	case ScreenLogin:
		cmd = a.login.Update(msg)
	case ScreenDashboard:
		cmd = a.dashboard.Update(msg)
	case ScreenTasks:
		cmd = a.tasks.Update(msg)
	case ScreenUsers:
		cmd = a.users.Update(msg)
	case ScreenCategories:
		cmd = a.categories.Update(msg)
	}

	return a, cmd
}

func (a *App) handleNavigation(msg screens.NavigateMsg) (tea.Model, tea.Cmd) {
	switch msg.Screen {
	case "login":
		a.currentScreen = ScreenLogin
		return a, a.login.Init()
	case "dashboard":
		if msg.UserID != "" {
			user := a.store.UserByID(msg.UserID)
			if user == nil {
				// Stale selection; back to the login list.
				a.currentScreen = ScreenLogin
				return a, a.login.Init()
			}
			a.dashboard.SetUser(*user)
			a.tasks.SetUser(*user)
		}
		a.currentScreen = ScreenDashboard
		return a, a.dashboard.Init()
	case "tasks":
		a.currentScreen = ScreenTasks
		return a, a.tasks.Init()
	case "users":
		a.currentScreen = ScreenUsers
		return a, a.users.Init()
	case "categories":
		a.currentScreen = ScreenCategories
		return a, a.categories.Init()
	}
	return a, nil
}

func (a *App) View() string {
	var content string

	switch a.currentScreen {
	case ScreenLogin:
		content = a.login.View()
	case ScreenDashboard:
		content = a.dashboard.View()
	case ScreenTasks:
		content = a.tasks.View()
	case ScreenUsers:
		content = a.users.View()
	case ScreenCategories:
		content = a.categories.View()
	}

	return lipgloss.NewStyle().
		Width(a.width).
		Height(a.height).
		Render(content)
}

func Run(st *store.Store, cfg *config.Config) error {
	app := NewApp(st, cfg)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
