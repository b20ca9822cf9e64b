// Package tui is the interactive terminal frontend. It wires the session
// store, the API client, and the per-resource view controllers into a
// bubbletea program.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/existflow/pmdesk/internal/api"
	"github.com/existflow/pmdesk/internal/config"
	"github.com/existflow/pmdesk/internal/logger"
	"github.com/existflow/pmdesk/internal/session"
	"github.com/existflow/pmdesk/internal/view"
)

// Screen is the active resource view
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenDashboard
	ScreenProjects
	ScreenProjectDetail
	ScreenTasks
	ScreenTaskDetail
	ScreenUsers
)

func (s Screen) String() string {
	switch s {
	case ScreenLogin:
		return "Login"
	case ScreenDashboard:
		return "Dashboard"
	case ScreenProjects:
		return "Projects"
	case ScreenProjectDetail:
		return "Project"
	case ScreenTasks:
		return "Tasks"
	case ScreenTaskDetail:
		return "Task"
	case ScreenUsers:
		return "Users"
	default:
		return "?"
	}
}

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeInput
	ModeConfirm
	ModeHelp
)

// inputKind says what the input modal submits as
type inputKind int

const (
	inputNone inputKind = iota
	inputNewProject
	inputNewTask
	inputComment
	inputFilter
	inputLogHours
)

// Model is the main TUI model
type Model struct {
	client *api.Client
	store  *session.Store
	cfg    *config.Config

	screen Screen
	mode   Mode
	width  int
	height int
	cursor int

	// Resource views
	dashboard     *view.DashboardView
	projects      *view.ProjectsView
	projectDetail *view.ProjectDetailView
	tasks         *view.TasksView
	taskDetail    *view.TaskDetailView
	users         *view.UsersView

	// Login form
	emailInput    textinput.Model
	passwordInput textinput.Model
	loginFocus    int
	loginErr      string

	// Input modal
	input    textinput.Model
	inputFor inputKind

	// Confirm modal
	confirmPrompt string
	confirmID     int

	message string

	// per-screen request context, cancelled when the screen is torn down
	viewCtx    context.Context
	viewCancel context.CancelFunc

	// forced-logout signal from the session store, drained by a
	// long-running command
	expired chan struct{}
}

// NewModel builds the TUI model. The session store's expiry callback is
// registered here so a 401 anywhere lands the user back on the login
// screen.
func NewModel(client *api.Client, store *session.Store, cfg *config.Config) *Model {
	logger.Info("initializing TUI")

	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 128
	email.Width = 40
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.Width = 40
	password.EchoMode = textinput.EchoPassword

	input := textinput.New()
	input.CharLimit = 256
	input.Width = 50

	m := &Model{
		client:        client,
		store:         store,
		cfg:           cfg,
		screen:        ScreenLogin,
		emailInput:    email,
		passwordInput: password,
		input:         input,
		dashboard:     view.NewDashboardView(client),
		projects:      view.NewProjectsView(client, cfg.PageSize),
		tasks:         view.NewTasksView(client, cfg.PageSize),
		users:         view.NewUsersView(client, cfg.PageSize),
		expired:       make(chan struct{}, 1),
	}
	m.viewCtx, m.viewCancel = context.WithCancel(context.Background())

	store.OnSessionExpired(func() {
		select {
		case m.expired <- struct{}{}:
		default:
		}
	})

	if store.Authenticated() {
		m.screen = ScreenDashboard
	}
	return m
}

func (m *Model) currentUserID() int {
	if u := m.store.User(); u != nil {
		return u.ID
	}
	return 0
}
