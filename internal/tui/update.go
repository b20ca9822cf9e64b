package tui

import (
	"context"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/existflow/pmdesk/internal/api"
	"github.com/existflow/pmdesk/internal/logger"
	"github.com/existflow/pmdesk/internal/model"
	"github.com/existflow/pmdesk/internal/policy"
	"github.com/existflow/pmdesk/internal/view"
)

type loadedMsg struct {
	screen Screen
	err    error
}

type loginResultMsg struct {
	err error
}

type actionDoneMsg struct {
	err  error
	note string
}

type sessionExpiredMsg struct{}

// Init starts the forced-logout listener
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitExpiry()}
	if m.screen != ScreenLogin {
		cmds = append(cmds, m.load(m.screen))
	}
	return tea.Batch(cmds...)
}

// waitExpiry blocks until the session store reports a forced logout
func (m *Model) waitExpiry() tea.Cmd {
	return func() tea.Msg {
		<-m.expired
		return sessionExpiredMsg{}
	}
}

// load fetches the data behind a screen
func (m *Model) load(s Screen) tea.Cmd {
	ctx := m.viewCtx
	return func() tea.Msg {
		var err error
		switch s {
		case ScreenDashboard:
			err = m.dashboard.Load(ctx, m.currentUserID())
		case ScreenProjects:
			err = m.projects.Load(ctx)
		case ScreenProjectDetail:
			if m.projectDetail != nil {
				err = m.projectDetail.Load(ctx)
			}
		case ScreenTasks:
			err = m.tasks.Load(ctx)
		case ScreenTaskDetail:
			if m.taskDetail != nil {
				err = m.taskDetail.Load(ctx)
			}
		case ScreenUsers:
			err = m.users.Load(ctx)
		}
		return loadedMsg{screen: s, err: err}
	}
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case sessionExpiredMsg:
		logger.Info("session expired, returning to login")
		m.resetToLogin("Session expired, please sign in again")
		return m, m.waitExpiry()

	case loginResultMsg:
		if msg.err != nil {
			m.loginErr = api.Detail(msg.err, msg.err.Error())
			return m, nil
		}
		m.loginErr = ""
		m.passwordInput.SetValue("")
		return m, m.setScreen(ScreenDashboard)

	case loadedMsg:
		// errors are already captured in the view's phase; nothing to do
		// beyond a cursor clamp
		m.clampCursor()
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.message = api.Detail(msg.err, "Operation failed")
		} else {
			m.message = msg.note
		}
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) resetToLogin(notice string) {
	m.viewCancel()
	m.viewCtx, m.viewCancel = context.WithCancel(context.Background())
	m.screen = ScreenLogin
	m.mode = ModeNormal
	m.cursor = 0
	m.loginErr = notice
	m.emailInput.Focus()
	m.passwordInput.Blur()
	m.loginFocus = 0
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.screen == ScreenLogin {
		return m.handleLoginKey(msg)
	}

	switch m.mode {
	case ModeInput:
		return m.handleInputKey(msg)
	case ModeConfirm:
		return m.handleConfirmKey(msg)
	case ModeHelp:
		if key.Matches(msg, keys.Escape) || key.Matches(msg, keys.Help) || key.Matches(msg, keys.Quit) {
			m.mode = ModeNormal
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp
		return m, nil

	case key.Matches(msg, keys.Logout):
		m.store.Logout()
		m.resetToLogin("")
		return m, nil

	case key.Matches(msg, keys.Refresh):
		return m, m.load(m.screen)

	case key.Matches(msg, keys.Tab):
		return m, m.nextScreen()

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, keys.Down):
		if m.cursor < m.rowCount()-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, keys.Left):
		m.pagePrev()
		return m, nil

	case key.Matches(msg, keys.Right):
		m.pageNext()
		return m, nil

	case key.Matches(msg, keys.Back):
		return m.goBack()

	case key.Matches(msg, keys.Filter):
		m.openInput(inputFilter, "filter...")
		return m, nil
	}

	switch m.screen {
	case ScreenProjects:
		return m.handleProjectsKey(msg)
	case ScreenProjectDetail:
		return m.handleProjectDetailKey(msg)
	case ScreenTasks:
		return m.handleTasksKey(msg)
	case ScreenTaskDetail:
		return m.handleTaskDetailKey(msg)
	case ScreenUsers:
		return m.handleUsersKey(msg)
	}
	return m, nil
}

func (m *Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit) && msg.String() == "ctrl+c":
		return m, tea.Quit

	case msg.Type == tea.KeyTab, msg.Type == tea.KeyShiftTab:
		m.loginFocus = (m.loginFocus + 1) % 2
		if m.loginFocus == 0 {
			m.emailInput.Focus()
			m.passwordInput.Blur()
		} else {
			m.emailInput.Blur()
			m.passwordInput.Focus()
		}
		return m, nil

	case msg.Type == tea.KeyEnter:
		email, password := m.emailInput.Value(), m.passwordInput.Value()
		if email == "" || password == "" {
			m.loginErr = "Email and password are required"
			return m, nil
		}
		ctx := m.viewCtx
		return m, func() tea.Msg {
			_, err := m.store.Login(ctx, email, password)
			return loginResultMsg{err: err}
		}
	}

	var cmd tea.Cmd
	if m.loginFocus == 0 {
		m.emailInput, cmd = m.emailInput.Update(msg)
	} else {
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	}
	return m, cmd
}

// setScreen tears down the current screen, cancelling any of its requests
// still in flight, and enters s
func (m *Model) setScreen(s Screen) tea.Cmd {
	m.viewCancel()
	m.viewCtx, m.viewCancel = context.WithCancel(context.Background())
	m.screen = s
	m.cursor = 0
	m.message = ""
	return m.load(s)
}

// nextScreen cycles through the top-level screens, skipping any the
// current user may not enter
func (m *Model) nextScreen() tea.Cmd {
	order := []Screen{ScreenDashboard, ScreenProjects, ScreenTasks, ScreenUsers}
	idx := 0
	for i, s := range order {
		if s == m.screen {
			idx = i
			break
		}
	}
	for range order {
		idx = (idx + 1) % len(order)
		if m.canEnter(order[idx]) {
			return m.setScreen(order[idx])
		}
	}
	return nil
}

func (m *Model) goBack() (tea.Model, tea.Cmd) {
	switch m.screen {
	case ScreenProjectDetail:
		return m, m.setScreen(ScreenProjects)
	case ScreenTaskDetail:
		return m, m.setScreen(ScreenTasks)
	}
	return m, nil
}

func (m *Model) handleProjectsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	manage := policy.CanManage(m.roleOrZero())
	switch {
	case key.Matches(msg, keys.Enter):
		rows := m.projects.Visible()
		if m.cursor < len(rows) {
			m.projectDetail = view.NewProjectDetailView(m.client, rows[m.cursor].ID)
			return m, m.setScreen(ScreenProjectDetail)
		}

	case key.Matches(msg, keys.New) && manage:
		m.openInput(inputNewProject, "project title...")
		return m, nil

	case key.Matches(msg, keys.Delete) && manage:
		rows := m.projects.Visible()
		if m.cursor < len(rows) {
			m.confirm("Delete project "+rows[m.cursor].Title+"? (y/n)", rows[m.cursor].ID)
		}
		return m, nil

	case key.Matches(msg, keys.Archive) && manage:
		rows := m.projects.Visible()
		if m.cursor < len(rows) {
			p := rows[m.cursor]
			ctx := m.viewCtx
			return m, func() tea.Msg {
				err := m.projects.Archive(ctx, p.ID, !p.IsArchived)
				return actionDoneMsg{err: err, note: "Archived"}
			}
		}
	}
	return m, nil
}

func (m *Model) handleProjectDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := m.projectDetail
	if v == nil {
		return m, nil
	}
	d := v.Detail()
	if d == nil {
		return m, nil
	}
	switch {
	case key.Matches(msg, keys.Enter):
		if m.cursor < len(d.Tasks) {
			m.taskDetail = view.NewTaskDetailView(m.client, d.Tasks[m.cursor].ID)
			return m, m.setScreen(ScreenTaskDetail)
		}

	case key.Matches(msg, keys.New) && policy.CanManage(m.roleOrZero()):
		m.openInput(inputNewTask, "task title...")
		return m, nil

	case key.Matches(msg, keys.Status):
		if m.cursor < len(d.Tasks) {
			task := d.Tasks[m.cursor]
			if !policy.IsTaskActor(m.store.User(), &task) {
				m.message = "You can only act on tasks assigned to you"
				return m, nil
			}
			next := nextStatus(task.Status)
			ctx := m.viewCtx
			return m, func() tea.Msg {
				err := v.SetTaskStatus(ctx, task.ID, next)
				return actionDoneMsg{err: err}
			}
		}
	}
	return m, nil
}

func (m *Model) handleTasksKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Enter):
		rows := m.tasks.Visible()
		if m.cursor < len(rows) {
			m.taskDetail = view.NewTaskDetailView(m.client, rows[m.cursor].ID)
			return m, m.setScreen(ScreenTaskDetail)
		}

	case key.Matches(msg, keys.Delete) && policy.CanManage(m.roleOrZero()):
		rows := m.tasks.Visible()
		if m.cursor < len(rows) {
			m.confirm("Delete task "+rows[m.cursor].Title+"? (y/n)", rows[m.cursor].ID)
		}
		return m, nil

	case key.Matches(msg, keys.Status):
		rows := m.tasks.Visible()
		if m.cursor < len(rows) {
			task := rows[m.cursor]
			if !policy.IsTaskActor(m.store.User(), &task) {
				m.message = "You can only act on tasks assigned to you"
				return m, nil
			}
			next := nextStatus(task.Status)
			ctx := m.viewCtx
			return m, func() tea.Msg {
				err := m.tasks.SetStatus(ctx, task.ID, next)
				return actionDoneMsg{err: err}
			}
		}
	}
	return m, nil
}

func (m *Model) handleTaskDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := m.taskDetail
	if v == nil {
		return m, nil
	}
	task := v.Task()
	if task == nil {
		return m, nil
	}
	actor := policy.IsTaskActor(m.store.User(), task)
	switch {
	case key.Matches(msg, keys.Status):
		if !actor {
			m.message = "You can only act on tasks assigned to you"
			return m, nil
		}
		next := nextStatus(task.Status)
		ctx := m.viewCtx
		return m, func() tea.Msg {
			err := v.SetStatus(ctx, next)
			return actionDoneMsg{err: err}
		}

	case key.Matches(msg, keys.Comment):
		if !actor {
			m.message = "You can only act on tasks assigned to you"
			return m, nil
		}
		m.openInput(inputComment, "comment...")
		return m, nil

	case msg.String() == "w":
		if !actor {
			m.message = "You can only act on tasks assigned to you"
			return m, nil
		}
		m.openInput(inputLogHours, "hours, e.g. 1.5")
		return m, nil

	case msg.String() == "D":
		// delete own newest comment; the control only exists for the
		// author
		me := m.currentUserID()
		comments := v.Comments()
		for i := len(comments) - 1; i >= 0; i-- {
			if comments[i].DeletableBy(me) {
				id := comments[i].ID
				ctx := m.viewCtx
				return m, func() tea.Msg {
					err := v.DeleteComment(ctx, id)
					return actionDoneMsg{err: err, note: "Comment deleted"}
				}
			}
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleUsersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	isAdmin := m.roleOrZero().Is(model.RoleAdmin)
	switch {
	case key.Matches(msg, keys.Toggle) && isAdmin:
		rows := m.users.Visible()
		if m.cursor < len(rows) {
			id := rows[m.cursor].ID
			ctx := m.viewCtx
			return m, func() tea.Msg {
				err := m.users.ToggleActivation(ctx, id)
				return actionDoneMsg{err: err}
			}
		}

	case key.Matches(msg, keys.Delete) && isAdmin:
		rows := m.users.Visible()
		if m.cursor < len(rows) {
			m.confirm("Delete user "+rows[m.cursor].Name+"? (y/n)", rows[m.cursor].ID)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) openInput(kind inputKind, placeholder string) {
	m.mode = ModeInput
	m.inputFor = kind
	m.input.Placeholder = placeholder
	m.input.SetValue("")
	m.input.Focus()
}

func (m *Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil

	case msg.Type == tea.KeyEnter:
		value := m.input.Value()
		m.mode = ModeNormal
		m.input.Blur()
		return m, m.submitInput(value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submitInput(value string) tea.Cmd {
	ctx := m.viewCtx
	switch m.inputFor {
	case inputNewProject:
		if value == "" {
			m.message = "Title is required"
			return nil
		}
		return func() tea.Msg {
			err := m.projects.Create(ctx, model.ProjectCreate{Title: value})
			return actionDoneMsg{err: err, note: "Project created"}
		}

	case inputNewTask:
		if value == "" {
			m.message = "Title is required"
			return nil
		}
		v := m.projectDetail
		if v == nil {
			return nil
		}
		return func() tea.Msg {
			err := v.CreateTask(ctx, model.TaskCreate{Title: value})
			return actionDoneMsg{err: err, note: "Task created"}
		}

	case inputComment:
		v := m.taskDetail
		if v == nil {
			return nil
		}
		return func() tea.Msg {
			err := v.AddComment(ctx, value)
			return actionDoneMsg{err: err}
		}

	case inputLogHours:
		v := m.taskDetail
		if v == nil {
			return nil
		}
		hours, err := strconv.ParseFloat(value, 64)
		if err != nil || hours <= 0 {
			m.message = "Hours must be a positive number"
			return nil
		}
		return func() tea.Msg {
			err := v.LogWork(ctx, api.TimeLogCreate{Hours: hours})
			return actionDoneMsg{err: err, note: "Work logged"}
		}

	case inputFilter:
		m.applyFilter(value)
		m.cursor = 0
		return nil
	}
	return nil
}

func (m *Model) applyFilter(q string) {
	switch m.screen {
	case ScreenProjects:
		m.projects.FilterText(q)
	case ScreenTasks:
		m.tasks.FilterText(q)
	case ScreenUsers:
		m.users.FilterText(q)
	}
}

func (m *Model) confirm(prompt string, id int) {
	m.mode = ModeConfirm
	m.confirmPrompt = prompt
	m.confirmID = id
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.mode = ModeNormal
		id := m.confirmID
		ctx := m.viewCtx
		switch m.screen {
		case ScreenProjects:
			return m, func() tea.Msg {
				err := m.projects.Delete(ctx, id)
				return actionDoneMsg{err: err, note: "Project deleted"}
			}
		case ScreenTasks:
			return m, func() tea.Msg {
				err := m.tasks.Delete(ctx, id)
				return actionDoneMsg{err: err, note: "Task deleted"}
			}
		case ScreenUsers:
			return m, func() tea.Msg {
				err := m.users.Delete(ctx, id)
				return actionDoneMsg{err: err, note: "User deleted"}
			}
		}
		return m, nil
	case "n", "N", "esc":
		m.mode = ModeNormal
		return m, nil
	}
	return m, nil
}

func (m *Model) roleOrZero() model.Role {
	if u := m.store.User(); u != nil {
		return u.Role
	}
	return model.Role{}
}

// rowCount is the number of selectable rows on the current screen
func (m *Model) rowCount() int {
	switch m.screen {
	case ScreenProjects:
		return len(m.projects.Visible())
	case ScreenProjectDetail:
		if m.projectDetail != nil {
			if d := m.projectDetail.Detail(); d != nil {
				return len(d.Tasks)
			}
		}
	case ScreenTasks:
		return len(m.tasks.Visible())
	case ScreenUsers:
		return len(m.users.Visible())
	}
	return 0
}

func (m *Model) clampCursor() {
	if n := m.rowCount(); m.cursor >= n {
		m.cursor = 0
	}
}

func (m *Model) pageNext() {
	switch m.screen {
	case ScreenProjects:
		m.projects.NextPage()
	case ScreenTasks:
		m.tasks.NextPage()
	case ScreenUsers:
		m.users.NextPage()
	}
	m.cursor = 0
}

func (m *Model) pagePrev() {
	switch m.screen {
	case ScreenProjects:
		m.projects.PrevPage()
	case ScreenTasks:
		m.tasks.PrevPage()
	case ScreenUsers:
		m.users.PrevPage()
	}
	m.cursor = 0
}

// nextStatus cycles todo -> in_progress -> done -> todo; every edge is
// allowed
func nextStatus(status string) string {
	switch status {
	case model.StatusTodo:
		return model.StatusInProgress
	case model.StatusInProgress:
		return model.StatusDone
	default:
		return model.StatusTodo
	}
}
