package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/existflow/pmdesk/internal/model"
	"github.com/existflow/pmdesk/internal/policy"
	"github.com/existflow/pmdesk/internal/view"
)

// View renders the UI
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	if m.screen != ScreenLogin && !m.canEnter(m.screen) {
		denied := m.renderHeader(m.screen.String()) +
			ErrorStyle.Render("Access denied") + "\n" +
			HelpStyle.Render("You do not have permission to view this screen")
		return lipgloss.JoinVertical(lipgloss.Left, ContentStyle.Render(denied), m.renderStatusBar())
	}

	var content string
	switch m.screen {
	case ScreenLogin:
		content = m.renderLogin()
	case ScreenDashboard:
		content = m.renderDashboard()
	case ScreenProjects:
		content = m.renderProjects()
	case ScreenProjectDetail:
		content = m.renderProjectDetail()
	case ScreenTasks:
		content = m.renderTasks()
	case ScreenTaskDetail:
		content = m.renderTaskDetail()
	case ScreenUsers:
		content = m.renderUsers()
	}

	switch m.mode {
	case ModeInput:
		content = m.overlay(ModalStyle.Render(m.input.View()))
	case ModeConfirm:
		content = m.overlay(ModalStyle.Render(m.confirmPrompt))
	case ModeHelp:
		content = m.renderHelp()
	}

	return lipgloss.JoinVertical(lipgloss.Left, content, m.renderStatusBar())
}

func (m *Model) overlay(modal string) string {
	return lipgloss.Place(
		m.width, m.height-2,
		lipgloss.Center, lipgloss.Center,
		modal,
		lipgloss.WithWhitespaceChars(" "),
	)
}

func (m *Model) renderLogin() string {
	var s strings.Builder
	s.WriteString(HeaderStyle.Render("PMDesk") + "\n\n")
	s.WriteString("  " + m.emailInput.View() + "\n")
	s.WriteString("  " + m.passwordInput.View() + "\n\n")
	if m.loginErr != "" {
		s.WriteString("  " + ErrorStyle.Render(m.loginErr) + "\n\n")
	}
	s.WriteString(HelpStyle.Render("  tab switch field · enter sign in · ctrl+c quit"))
	return m.overlay(ModalStyle.Render(s.String()))
}

func (m *Model) renderDashboard() string {
	var s strings.Builder
	s.WriteString(m.renderHeader("Dashboard"))

	switch m.dashboard.Phase() {
	case view.Idle, view.Loading:
		s.WriteString("Loading...\n")
	case view.Errored:
		s.WriteString(ErrorStyle.Render(m.dashboard.Err()) + "\n")
	case view.Loaded, view.Mutating:
		if m.dashboard.Restricted() {
			s.WriteString("My tasks\n\n")
			if len(m.dashboard.MyTasks()) == 0 {
				s.WriteString(HelpStyle.Render("Nothing assigned to you right now") + "\n")
			}
			for _, t := range m.dashboard.MyTasks() {
				s.WriteString("  " + m.taskLine(t, false) + "\n")
			}
			if n := m.dashboard.OverdueCount(); n > 0 {
				s.WriteString("\n" + OverdueStyle.Render(fmt.Sprintf("%d overdue", n)) + "\n")
			}
		} else if sum := m.dashboard.Summary(); sum != nil {
			s.WriteString(fmt.Sprintf("  Projects   %d\n", sum.Totals.Projects))
			s.WriteString(fmt.Sprintf("  Tasks      %d  (%d done, %d overdue)\n",
				sum.Totals.Tasks, sum.CompletedTasks, sum.OverdueTasks))
			s.WriteString(fmt.Sprintf("  Users      %d\n", sum.Totals.Users))
			s.WriteString(fmt.Sprintf("  Progress   %.0f%%\n", sum.OverallProgressPercent))
		}
	}
	return ContentStyle.Width(m.width).Height(m.height - 2).Render(s.String())
}

func (m *Model) renderProjects() string {
	var s strings.Builder
	s.WriteString(m.renderHeader(fmt.Sprintf("Projects · page %d/%d", m.projects.Page(), m.projects.PageCount())))

	switch m.projects.Phase() {
	case view.Idle, view.Loading:
		s.WriteString("Loading...\n")
	case view.Errored:
		s.WriteString(ErrorStyle.Render(m.projects.Err()) + "\n")
	default:
		rows := m.projects.Visible()
		if len(rows) == 0 {
			s.WriteString(HelpStyle.Render("No projects") + "\n")
		}
		for i, p := range rows {
			line := fmt.Sprintf("%-24s", truncate(p.Title, 24))
			if progress, ok := m.projects.Progress(p.ID); ok {
				line += fmt.Sprintf("  %3.0f%%  %d/%d tasks",
					progress.CompletionPercent, progress.CompletedTasks, progress.TotalTasks)
			}
			if p.IsArchived {
				line += "  " + HelpStyle.Render("[archived]")
			}
			s.WriteString(m.row(i, line) + "\n")
		}
	}
	return ContentStyle.Width(m.width).Height(m.height - 2).Render(s.String())
}

func (m *Model) renderProjectDetail() string {
	var s strings.Builder
	v := m.projectDetail
	if v == nil {
		return ContentStyle.Render("No project selected")
	}
	switch v.Phase() {
	case view.Idle, view.Loading:
		return ContentStyle.Render("Loading...")
	case view.Errored:
		return ContentStyle.Render(ErrorStyle.Render(v.Err()))
	}

	d := v.Detail()
	if d == nil {
		return ContentStyle.Render("Loading...")
	}
	s.WriteString(m.renderHeader("Project · " + d.Title))
	if d.Description != "" {
		s.WriteString(HelpStyle.Render(d.Description) + "\n")
	}
	if p := v.Progress(); p != nil {
		s.WriteString(fmt.Sprintf("Progress: %.0f%% (%d/%d tasks done)\n",
			p.CompletionPercent, p.CompletedTasks, p.TotalTasks))
	}

	s.WriteString("\nMembers: ")
	if len(d.Members) == 0 {
		s.WriteString(HelpStyle.Render("none"))
	}
	for _, u := range d.Members {
		s.WriteString(FormatAvatar(u.Name) + " ")
	}
	s.WriteString("\n\nTasks\n")
	if len(d.Tasks) == 0 {
		s.WriteString(HelpStyle.Render("  No tasks yet") + "\n")
	}
	for i, t := range d.Tasks {
		s.WriteString(m.row(i, m.taskLine(t, true)) + "\n")
	}

	if hist := v.History(); len(hist) > 0 {
		s.WriteString("\nHistory\n")
		for _, h := range hist {
			s.WriteString(HelpStyle.Render(fmt.Sprintf("  %s  %s changed %s: %s -> %s",
				h.Timestamp.Format("Jan 02 15:04"), h.ActorName(), h.Field, h.OldValue, h.NewValue)) + "\n")
		}
	}
	return ContentStyle.Width(m.width).Height(m.height - 2).Render(s.String())
}

func (m *Model) renderTasks() string {
	var s strings.Builder
	s.WriteString(m.renderHeader(fmt.Sprintf("Tasks · page %d/%d", m.tasks.Page(), m.tasks.PageCount())))

	switch m.tasks.Phase() {
	case view.Idle, view.Loading:
		s.WriteString("Loading...\n")
	case view.Errored:
		s.WriteString(ErrorStyle.Render(m.tasks.Err()) + "\n")
	default:
		rows := m.tasks.Visible()
		if len(rows) == 0 {
			s.WriteString(HelpStyle.Render("No tasks") + "\n")
		}
		for i, t := range rows {
			s.WriteString(m.row(i, m.taskLine(t, true)) + "\n")
		}
	}
	return ContentStyle.Width(m.width).Height(m.height - 2).Render(s.String())
}

func (m *Model) renderTaskDetail() string {
	v := m.taskDetail
	if v == nil {
		return ContentStyle.Render("No task selected")
	}
	switch v.Phase() {
	case view.Idle, view.Loading:
		return ContentStyle.Render("Loading...")
	case view.Errored:
		return ContentStyle.Render(ErrorStyle.Render(v.Err()))
	}

	t := v.Task()
	if t == nil {
		return ContentStyle.Render("Loading...")
	}
	var s strings.Builder
	s.WriteString(m.renderHeader("Task · " + t.Title))
	s.WriteString("Status:   " + FormatStatus(t.Status))
	if t.IsOverdue() {
		s.WriteString("  " + OverdueStyle.Render("OVERDUE"))
	}
	s.WriteString("\n")
	s.WriteString("Assignee: " + t.AssigneeName() + "\n")
	s.WriteString("Project:  " + t.ProjectTitle() + "\n")
	if t.DueDate != nil {
		s.WriteString("Due:      " + t.DueDate.Format("2006-01-02") + "\n")
	}
	if t.EstimatedHours != nil {
		s.WriteString(fmt.Sprintf("Estimate: %.1fh", *t.EstimatedHours))
		if t.ActualHours != nil {
			s.WriteString(fmt.Sprintf("  logged %.1fh", *t.ActualHours))
		}
		s.WriteString("\n")
	} else if t.ActualHours != nil {
		s.WriteString(fmt.Sprintf("Logged:   %.1fh\n", *t.ActualHours))
	}
	if members := v.Members(); len(members) > 0 {
		chips := make([]string, 0, len(members))
		for _, u := range members {
			chips = append(chips, FormatAvatar(u.Name))
		}
		s.WriteString("Team:     " + strings.Join(chips, " ") + "\n")
	}

	actor := policy.IsTaskActor(m.store.User(), t)
	if !actor {
		// read-only rendition: the status editor and comment box are
		// replaced with plain text for non-actors
		s.WriteString("\n" + HelpStyle.Render("Read-only: this task is not assigned to you") + "\n")
	}

	s.WriteString("\nComments\n")
	comments := v.Comments()
	if len(comments) == 0 {
		s.WriteString(HelpStyle.Render("  No comments") + "\n")
	}
	me := m.currentUserID()
	for _, c := range comments {
		author := "?"
		if c.Author != nil {
			author = c.Author.Name
		}
		line := fmt.Sprintf("  %s %s: %s", FormatAvatar(author), author, c.Content)
		if c.DeletableBy(me) {
			line += "  " + HelpStyle.Render("(D to delete)")
		}
		s.WriteString(line + "\n")
	}

	if logs := v.TimeLogs(); len(logs) > 0 {
		s.WriteString("\nWork log\n")
		for _, e := range logs {
			who := "?"
			if e.User != nil {
				who = e.User.Name
			}
			s.WriteString(HelpStyle.Render(fmt.Sprintf("  %s  %.1fh  %s %s",
				e.LogDate.Format("Jan 02"), e.Hours, who, e.Description)) + "\n")
		}
	}

	if hist := v.History(); len(hist) > 0 {
		s.WriteString("\nHistory\n")
		for _, h := range hist {
			s.WriteString(HelpStyle.Render(fmt.Sprintf("  %s  %s changed %s: %s -> %s",
				h.Timestamp.Format("Jan 02 15:04"), h.ActorName(), h.Field, h.OldValue, h.NewValue)) + "\n")
		}
	}
	return ContentStyle.Width(m.width).Height(m.height - 2).Render(s.String())
}

func (m *Model) renderUsers() string {
	var s strings.Builder
	s.WriteString(m.renderHeader(fmt.Sprintf("Users · page %d/%d", m.users.Page(), m.users.PageCount())))

	switch m.users.Phase() {
	case view.Idle, view.Loading:
		s.WriteString("Loading...\n")
	case view.Errored:
		s.WriteString(ErrorStyle.Render(m.users.Err()) + "\n")
	default:
		for i, u := range m.users.Visible() {
			line := fmt.Sprintf("%s %-20s %-28s %-10s", FormatAvatar(u.Name),
				truncate(u.Name, 20), truncate(u.Email, 28), u.Role.Name)
			if !u.IsActive {
				line += ErrorStyle.Render(" inactive")
			}
			s.WriteString(m.row(i, line) + "\n")
		}
	}
	return ContentStyle.Width(m.width).Height(m.height - 2).Render(s.String())
}

func (m *Model) renderHelp() string {
	var s strings.Builder
	s.WriteString(HeaderStyle.Render("Keys") + "\n\n")
	bindings := []struct{ k, desc string }{
		{"tab", "next screen"},
		{"enter", "open selected"},
		{"backspace", "back to list"},
		{"↑/k ↓/j", "move cursor"},
		{"←/h →/l", "change page"},
		{"/", "filter"},
		{"n", "new project/task"},
		{"d", "delete (with confirm)"},
		{"x", "cycle task status"},
		{"c", "comment on task"},
		{"w", "log work hours"},
		{"A", "archive project"},
		{"t", "toggle user active"},
		{"R", "refresh"},
		{"L", "logout"},
		{"q", "quit"},
	}
	for _, b := range bindings {
		s.WriteString(fmt.Sprintf("  %-12s %s\n", b.k, b.desc))
	}
	s.WriteString("\n" + HelpStyle.Render("esc to close"))
	return m.overlay(ModalStyle.Render(s.String()))
}

func (m *Model) renderHeader(title string) string {
	return HeaderStyle.Render(title) + "\n\n"
}

func (m *Model) renderStatusBar() string {
	left := m.screen.String()
	if u := m.store.User(); u != nil {
		left += " · " + u.Name + " (" + u.Role.Name + ")"
	}
	if m.message != "" {
		left += " · " + m.message
	}
	right := "? help"
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}
	return StatusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m *Model) row(i int, line string) string {
	if i == m.cursor {
		return ItemSelectedStyle.Render("❯ " + line)
	}
	return ItemStyle.Render("  " + line)
}

func (m *Model) taskLine(t model.Task, withAssignee bool) string {
	title := truncate(t.Title, 30)
	if t.Status == model.StatusDone {
		title = DoneStyle.Render(title)
	}
	line := fmt.Sprintf("%-30s %s", title, FormatStatus(t.Status))
	if t.IsOverdue() {
		line += " " + OverdueStyle.Render("!")
	}
	if withAssignee {
		line += "  " + HelpStyle.Render(t.AssigneeName())
	}
	if t.DueDate != nil {
		line += "  " + HelpStyle.Render("due "+t.DueDate.Format("Jan 02"))
	}
	return line
}
