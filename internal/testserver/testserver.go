// Package testserver runs an in-memory fake of the project-management API
// for tests. It speaks the real wire shapes, hashes passwords, issues
// bearer tokens, and enforces the same role rules the real server does.
package testserver

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/existflow/pmdesk/internal/model"
	"github.com/existflow/pmdesk/internal/policy"
)

type userRecord struct {
	model.UserSummary
	passwordHash []byte
}

// Server is an in-memory project-management API
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	nextID   int
	users    map[int]*userRecord
	tokens   map[string]int
	projects map[int]*model.Project
	tasks    map[int]*model.Task
	comments map[int]*model.Comment
	timelogs map[int][]model.TimeLogEntry

	// history keeps the two wire shapes the real endpoints serve
	projectHistory map[int][]map[string]any
	taskHistory    map[int][]map[string]any
}

// New starts a fake API server. It is closed automatically when the
// test finishes.
func New(t *testing.T) *Server {
	t.Helper()

	s := &Server{
		nextID:         1,
		users:          make(map[int]*userRecord),
		tokens:         make(map[string]int),
		projects:       make(map[int]*model.Project),
		tasks:          make(map[int]*model.Task),
		comments:       make(map[int]*model.Comment),
		timelogs:       make(map[int][]model.TimeLogEntry),
		projectHistory: make(map[int][]map[string]any),
		taskHistory:    make(map[int][]map[string]any),
	}

	e := echo.New()
	e.HideBanner = true
	s.routes(e)

	s.Server = httptest.NewServer(e)
	t.Cleanup(s.Close)
	return s
}

func (s *Server) id() int {
	n := s.nextID
	s.nextID++
	return n
}

// AddUser creates a fixture account and returns its summary. role is one
// of "admin", "manager", "developer".
func (s *Server) AddUser(name, email, password, role string) model.UserSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	u := &userRecord{
		UserSummary: model.UserSummary{
			ID:        s.id(),
			Name:      name,
			Email:     email,
			Role:      model.Role{ID: roleID(role), Name: role},
			IsActive:  true,
			CreatedAt: time.Now().UTC(),
		},
		passwordHash: hash,
	}
	s.users[u.ID] = u
	return u.UserSummary
}

// Deactivate marks a fixture account inactive
func (s *Server) Deactivate(userID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.IsActive = false
	}
}

// AddProject creates a fixture project
func (s *Server) AddProject(title string, memberIDs ...int) model.Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := &model.Project{
		ID:        s.id(),
		Title:     title,
		CreatedAt: time.Now().UTC(),
		MemberIDs: memberIDs,
	}
	s.projects[p.ID] = p
	return *p
}

// AddTask creates a fixture task. assigneeID 0 leaves it unassigned.
func (s *Server) AddTask(projectID int, title, status string, assigneeID int) model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := &model.Task{
		ID:        s.id(),
		Title:     title,
		Status:    status,
		Priority:  model.PriorityMedium,
		ProjectID: projectID,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if u, ok := s.users[assigneeID]; ok {
		summary := u.UserSummary
		task.Assignee = &summary
	}
	if p, ok := s.projects[projectID]; ok {
		task.Project = &model.ProjectRef{ID: p.ID, Title: p.Title, Description: p.Description}
	}
	s.tasks[task.ID] = task
	return *task
}

// SetDueDate sets a fixture task's due date
func (s *Server) SetDueDate(taskID int, due time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if task, ok := s.tasks[taskID]; ok {
		task.DueDate = &due
	}
}

// TokenFor issues a bearer token for the user without going through login
func (s *Server) TokenFor(userID int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := uuid.NewString()
	s.tokens[token] = userID
	return token
}

// RevokeToken invalidates a token so later requests get a 401
func (s *Server) RevokeToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

func roleID(name string) int {
	switch name {
	case model.RoleAdmin:
		return 1
	case model.RoleManager:
		return 2
	default:
		return 3
	}
}

func fail(c echo.Context, code int, detail string) error {
	return c.JSON(code, map[string]string{"detail": detail})
}

// currentUser resolves the bearer token, writing the 401/400 response
// itself when the credential is missing, stale, or for an inactive account
func (s *Server) currentUser(c echo.Context) (*userRecord, error) {
	auth := c.Request().Header.Get("Authorization")
	token := strings.TrimPrefix(auth, "Bearer ")
	if auth == "" || token == auth {
		return nil, fail(c, http.StatusUnauthorized, "Not authenticated")
	}

	s.mu.Lock()
	userID, ok := s.tokens[token]
	user := s.users[userID]
	s.mu.Unlock()

	if !ok || user == nil {
		return nil, fail(c, http.StatusUnauthorized, "Could not validate credentials")
	}
	if !user.IsActive {
		return nil, fail(c, http.StatusBadRequest, "Inactive user")
	}
	return user, nil
}

// authed wraps a handler with token resolution
func (s *Server) authed(h func(echo.Context, *userRecord) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := s.currentUser(c)
		if user == nil {
			return err
		}
		return h(c, user)
	}
}

// restricted additionally requires one of the given roles
func (s *Server) restricted(h func(echo.Context, *userRecord) error, roles ...string) echo.HandlerFunc {
	return s.authed(func(c echo.Context, user *userRecord) error {
		if !policy.CanAccess(&user.UserSummary, roles...) {
			return fail(c, http.StatusForbidden, "Operation not permitted")
		}
		return h(c, user)
	})
}

func intParam(c echo.Context, name string) int {
	n, _ := strconv.Atoi(c.Param(name))
	return n
}

func (s *Server) routes(e *echo.Echo) {
	e.POST("/auth/token", s.handleLogin)
	e.POST("/auth/register", s.handleRegister)
	e.PUT("/auth/change-password", s.authed(s.handleChangePassword))

	e.GET("/users/me", s.authed(s.handleMe))
	e.PATCH("/users/me", s.authed(s.handleUpdateMe))
	e.GET("/users", s.restricted(s.handleUsers, model.RoleAdmin, model.RoleManager))
	e.GET("/users/:id", s.authed(s.handleUser))
	e.DELETE("/users/:id", s.restricted(s.handleDeleteUser, model.RoleAdmin))
	e.PATCH("/users/:id/toggle-activation", s.restricted(s.handleToggleActivation, model.RoleAdmin))
	e.GET("/users/:id/assigned-tasks", s.authed(s.handleUserTasks))
	e.GET("/users/:id/tasks", s.authed(s.handleUserTasks))
	e.POST("/users/:id/avatar", s.authed(s.handleUploadAvatar))
	e.DELETE("/users/:id/avatar", s.authed(s.handleDeleteAvatar))

	e.GET("/projects", s.authed(s.handleProjects))
	e.POST("/projects", s.restricted(s.handleCreateProject, model.RoleAdmin, model.RoleManager))
	e.GET("/projects/:id", s.authed(s.handleProjectDetail))
	e.PUT("/projects/:id", s.restricted(s.handleUpdateProject, model.RoleAdmin, model.RoleManager))
	e.DELETE("/projects/:id", s.restricted(s.handleDeleteProject, model.RoleAdmin))
	e.GET("/projects/:id/progress", s.authed(s.handleProgress))
	e.GET("/projects/:id/history", s.authed(s.handleProjectHistory))
	e.POST("/projects/:id/tasks", s.restricted(s.handleCreateProjectTask, model.RoleAdmin, model.RoleManager))
	e.POST("/projects/:id/add_members", s.restricted(s.handleAddMembers, model.RoleAdmin, model.RoleManager))
	e.POST("/projects/:id/remove_members", s.restricted(s.handleRemoveMembers, model.RoleAdmin, model.RoleManager))
	e.PUT("/projects/:id/archive", s.restricted(s.handleArchive, model.RoleAdmin, model.RoleManager))
	e.GET("/projects/:id/members", s.authed(s.handleProjectMembers))

	e.GET("/tasks", s.authed(s.handleTasks))
	e.POST("/tasks", s.restricted(s.handleCreateTask, model.RoleAdmin, model.RoleManager))
	e.GET("/tasks/:id", s.authed(s.handleTask))
	e.PUT("/tasks/:id", s.authed(s.handleUpdateTask))
	e.DELETE("/tasks/:id", s.restricted(s.handleDeleteTask, model.RoleAdmin, model.RoleManager))
	e.PUT("/tasks/:id/status", s.authed(s.handleSetStatus))
	e.GET("/tasks/:id/history", s.authed(s.handleTaskHistory))

	e.GET("/comments/task/:id", s.authed(s.handleTaskComments))
	e.POST("/comments", s.authed(s.handleCreateComment))
	e.DELETE("/comments/:id", s.authed(s.handleDeleteComment))
	e.GET("/timelogs/tasks/:id", s.authed(s.handleTimeLogs))
	e.POST("/timelogs/tasks/:id", s.authed(s.handleLogWork))

	e.GET("/reporting/summary", s.restricted(s.handleSummary, model.RoleAdmin, model.RoleManager))
	e.GET("/roles", s.authed(s.handleRoles))
}

func (s *Server) handleLogin(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	s.mu.Lock()
	var user *userRecord
	for _, u := range s.users {
		if u.Email == req.Email {
			user = u
			break
		}
	}
	s.mu.Unlock()

	if user == nil || bcrypt.CompareHashAndPassword(user.passwordHash, []byte(req.Password)) != nil {
		return fail(c, http.StatusUnauthorized, "Incorrect username or password")
	}
	if !user.IsActive {
		return fail(c, http.StatusBadRequest, "Inactive user")
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = user.ID
	s.mu.Unlock()

	return c.JSON(http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

func (s *Server) handleRegister(c echo.Context) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		RoleID   int    `json:"role_id"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	s.mu.Lock()
	for _, u := range s.users {
		if u.Email == req.Email {
			s.mu.Unlock()
			return fail(c, http.StatusBadRequest, "Email already registered")
		}
	}
	s.mu.Unlock()

	name := map[int]string{1: model.RoleAdmin, 2: model.RoleManager, 3: model.RoleDeveloper}[req.RoleID]
	if name == "" {
		return fail(c, http.StatusBadRequest, "Unknown role")
	}
	user := s.AddUser(req.Name, req.Email, req.Password, name)
	return c.JSON(http.StatusCreated, user)
}

func (s *Server) handleChangePassword(c echo.Context, user *userRecord) error {
	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if bcrypt.CompareHashAndPassword(user.passwordHash, []byte(req.OldPassword)) != nil {
		return fail(c, http.StatusBadRequest, "Incorrect password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.MinCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	user.passwordHash = hash
	s.mu.Unlock()
	return c.JSON(http.StatusOK, map[string]string{"detail": "Password updated"})
}

func (s *Server) handleMe(c echo.Context, user *userRecord) error {
	return c.JSON(http.StatusOK, user.UserSummary)
}

func (s *Server) handleUpdateMe(c echo.Context, user *userRecord) error {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	s.mu.Lock()
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	s.mu.Unlock()
	return c.JSON(http.StatusOK, user.UserSummary)
}

func (s *Server) handleUsers(c echo.Context, _ *userRecord) error {
	s.mu.Lock()
	out := make([]model.UserSummary, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.UserSummary)
	}
	s.mu.Unlock()
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleUser(c echo.Context, _ *userRecord) error {
	s.mu.Lock()
	u, ok := s.users[intParam(c, "id")]
	s.mu.Unlock()
	if !ok {
		return fail(c, http.StatusNotFound, "User not found")
	}
	return c.JSON(http.StatusOK, u.UserSummary)
}

func (s *Server) handleDeleteUser(c echo.Context, _ *userRecord) error {
	s.mu.Lock()
	delete(s.users, intParam(c, "id"))
	s.mu.Unlock()
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleToggleActivation(c echo.Context, _ *userRecord) error {
	s.mu.Lock()
	u, ok := s.users[intParam(c, "id")]
	if ok {
		u.IsActive = !u.IsActive
	}
	s.mu.Unlock()
	if !ok {
		return fail(c, http.StatusNotFound, "User not found")
	}
	return c.JSON(http.StatusOK, u.UserSummary)
}

func (s *Server) handleUserTasks(c echo.Context, _ *userRecord) error {
	userID := intParam(c, "id")
	s.mu.Lock()
	out := []model.Task{}
	for _, task := range s.tasks {
		if task.Assignee != nil && task.Assignee.ID == userID {
			out = append(out, *task)
		}
	}
	s.mu.Unlock()
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleUploadAvatar(c echo.Context, _ *userRecord) error {
	file, err := c.FormFile("file")
	if err != nil {
		return fail(c, http.StatusBadRequest, "file field required")
	}
	s.mu.Lock()
	u, ok := s.users[intParam(c, "id")]
	if ok {
		u.Avatar = "/static/avatars/" + file.Filename
	}
	s.mu.Unlock()
	if !ok {
		return fail(c, http.StatusNotFound, "User not found")
	}
	return c.JSON(http.StatusOK, u.UserSummary)
}

func (s *Server) handleDeleteAvatar(c echo.Context, _ *userRecord) error {
	s.mu.Lock()
	if u, ok := s.users[intParam(c, "id")]; ok {
		u.Avatar = ""
	}
	s.mu.Unlock()
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleProjects(c echo.Context, user *userRecord) error {
	s.mu.Lock()
	out := []model.Project{}
	for _, p := range s.projects {
		if user.Role.Is(model.RoleDeveloper) && !contains(p.MemberIDs, user.ID) {
			continue
		}
		out = append(out, *p)
	}
	s.mu.Unlock()
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleCreateProject(c echo.Context, user *userRecord) error {
	var req model.ProjectCreate
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Title == "" {
		return fail(c, http.StatusUnprocessableEntity, "title is required")
	}
	s.mu.Lock()
	p := &model.Project{
		ID:          s.id(),
		Title:       req.Title,
		Description: req.Description,
		CreatedAt:   time.Now().UTC(),
		MemberIDs:   req.MemberIDs,
	}
	s.projects[p.ID] = p
	s.mu.Unlock()
	return c.JSON(http.StatusCreated, *p)
}

func (s *Server) handleProjectDetail(c echo.Context, _ *userRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[intParam(c, "id")]
	if !ok {
		return fail(c, http.StatusNotFound, "Project not found")
	}
	detail := model.ProjectDetail{Project: *p, Members: []model.UserSummary{}, Tasks: []model.Task{}}
	for _, id := range p.MemberIDs {
		if u, ok := s.users[id]; ok {
			detail.Members = append(detail.Members, u.UserSummary)
		}
	}
	for _, task := range s.tasks {
		if task.ProjectID == p.ID {
			detail.Tasks = append(detail.Tasks, *task)
		}
	}
	return c.JSON(http.StatusOK, detail)
}

func (s *Server) handleUpdateProject(c echo.Context, user *userRecord) error {
	var req model.ProjectUpdate
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[intParam(c, "id")]
	if !ok {
		return fail(c, http.StatusNotFound, "Project not found")
	}
	if req.Title != "" && req.Title != p.Title {
		s.projectHistory[p.ID] = append(s.projectHistory[p.ID], map[string]any{
			"id": s.id(), "user": user.UserSummary, "action": "updated",
			"field": "title", "old_value": p.Title, "new_value": req.Title,
			"timestamp": time.Now().UTC(),
		})
		p.Title = req.Title
	}
	if req.Description != "" {
		p.Description = req.Description
	}
	if req.MemberIDs != nil {
		p.MemberIDs = req.MemberIDs
	}
	return c.JSON(http.StatusOK, *p)
}

func (s *Server) handleDeleteProject(c echo.Context, _ *userRecord) error {
	id := intParam(c, "id")
	s.mu.Lock()
	delete(s.projects, id)
	for taskID, task := range s.tasks {
		if task.ProjectID == id {
			delete(s.tasks, taskID)
		}
	}
	s.mu.Unlock()
	return c.NoContent(http.StatusNoContent)
}

// progressLocked computes the completion aggregate the client never
// derives locally
func (s *Server) progressLocked(projectID int) model.ProjectProgress {
	total, done := 0, 0
	for _, task := range s.tasks {
		if task.ProjectID != projectID {
			continue
		}
		total++
		if task.Status == model.StatusDone {
			done++
		}
	}
	progress := model.ProjectProgress{ProjectID: projectID, TotalTasks: total, CompletedTasks: done}
	if total > 0 {
		progress.CompletionPercent = float64(done) / float64(total) * 100
	}
	return progress
}

func (s *Server) handleProgress(c echo.Context, _ *userRecord) error {
	s.mu.Lock()
	progress := s.progressLocked(intParam(c, "id"))
	s.mu.Unlock()
	return c.JSON(http.StatusOK, progress)
}

func (s *Server) handleProjectHistory(c echo.Context, _ *userRecord) error {
	s.mu.Lock()
	history := s.projectHistory[intParam(c, "id")]
	s.mu.Unlock()
	if history == nil {
		history = []map[string]any{}
	}
	return c.JSON(http.StatusOK, history)
}

func (s *Server) handleCreateProjectTask(c echo.Context, user *userRecord) error {
	projectID := intParam(c, "id")
	var req model.TaskCreate
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	req.ProjectID = &projectID
	return s.createTask(c, user, req)
}

func (s *Server) createTask(c echo.Context, user *userRecord, req model.TaskCreate) error {
	if req.Title == "" {
		return fail(c, http.StatusUnprocessableEntity, "title is required")
	}
	if req.ProjectID == nil {
		return fail(c, http.StatusUnprocessableEntity, "project_id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[*req.ProjectID]
	if !ok {
		return fail(c, http.StatusNotFound, "Project not found")
	}

	creator := user.UserSummary
	task := &model.Task{
		ID:             s.id(),
		Title:          req.Title,
		Description:    req.Description,
		Status:         model.StatusTodo,
		Priority:       req.Priority,
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
		ProjectID:      p.ID,
		CreatedBy:      &creator,
		Project:        &model.ProjectRef{ID: p.ID, Title: p.Title, Description: p.Description},
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}
	if req.AssigneeID != nil {
		if u, ok := s.users[*req.AssigneeID]; ok {
			summary := u.UserSummary
			task.Assignee = &summary
		}
	}
	s.tasks[task.ID] = task
	return c.JSON(http.StatusCreated, *task)
}

func (s *Server) handleAddMembers(c echo.Context, _ *userRecord) error {
	return s.changeMembers(c, func(current, requested []int) []int {
		for _, id := range requested {
			if !contains(current, id) {
				current = append(current, id)
			}
		}
		return current
	})
}

func (s *Server) handleRemoveMembers(c echo.Context, _ *userRecord) error {
	return s.changeMembers(c, func(current, requested []int) []int {
		kept := current[:0]
		for _, id := range current {
			if !contains(requested, id) {
				kept = append(kept, id)
			}
		}
		return kept
	})
}

func (s *Server) changeMembers(c echo.Context, apply func(current, requested []int) []int) error {
	var req struct {
		MemberIDs []int `json:"member_ids"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[intParam(c, "id")]
	if !ok {
		return fail(c, http.StatusNotFound, "Project not found")
	}
	p.MemberIDs = apply(p.MemberIDs, req.MemberIDs)
	return c.JSON(http.StatusOK, *p)
}

func (s *Server) handleArchive(c echo.Context, _ *userRecord) error {
	archive := c.QueryParam("archive") == "true"
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[intParam(c, "id")]
	if !ok {
		return fail(c, http.StatusNotFound, "Project not found")
	}
	p.IsArchived = archive
	return c.JSON(http.StatusOK, *p)
}

func (s *Server) handleProjectMembers(c echo.Context, _ *userRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[intParam(c, "id")]
	if !ok {
		return fail(c, http.StatusNotFound, "Project not found")
	}
	members := []model.UserSummary{}
	for _, id := range p.MemberIDs {
		if u, ok := s.users[id]; ok {
			members = append(members, u.UserSummary)
		}
	}
	return c.JSON(http.StatusOK, members)
}

func (s *Server) handleTasks(c echo.Context, user *userRecord) error {
	s.mu.Lock()
	out := []model.Task{}
	for _, task := range s.tasks {
		if user.Role.Is(model.RoleDeveloper) {
			if task.Assignee == nil || task.Assignee.ID != user.ID {
				continue
			}
		}
		out = append(out, *task)
	}
	s.mu.Unlock()
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleCreateTask(c echo.Context, user *userRecord) error {
	var req model.TaskCreate
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	return s.createTask(c, user, req)
}

func (s *Server) handleTask(c echo.Context, _ *userRecord) error {
	s.mu.Lock()
	task, ok := s.tasks[intParam(c, "id")]
	s.mu.Unlock()
	if !ok {
		return fail(c, http.StatusNotFound, "Task not found")
	}
	return c.JSON(http.StatusOK, *task)
}

func (s *Server) handleUpdateTask(c echo.Context, user *userRecord) error {
	var req model.TaskUpdate
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[intParam(c, "id")]
	if !ok {
		return fail(c, http.StatusNotFound, "Task not found")
	}
	if !policy.IsTaskActor(&user.UserSummary, task) {
		return fail(c, http.StatusForbidden, "Not your task")
	}
	if req.Title != "" {
		task.Title = req.Title
	}
	if req.Description != "" {
		task.Description = req.Description
	}
	if req.Priority != "" {
		task.Priority = req.Priority
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.EstimatedHours != nil {
		task.EstimatedHours = req.EstimatedHours
	}
	if req.AssigneeID != nil {
		task.Assignee = nil
		if u, ok := s.users[*req.AssigneeID]; ok {
			summary := u.UserSummary
			task.Assignee = &summary
		}
	}
	task.UpdatedAt = time.Now().UTC()
	return c.JSON(http.StatusOK, *task)
}

func (s *Server) handleDeleteTask(c echo.Context, _ *userRecord) error {
	s.mu.Lock()
	delete(s.tasks, intParam(c, "id"))
	s.mu.Unlock()
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleSetStatus(c echo.Context, user *userRecord) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Status != model.StatusTodo && req.Status != model.StatusInProgress && req.Status != model.StatusDone {
		return fail(c, http.StatusUnprocessableEntity, "invalid status")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[intParam(c, "id")]
	if !ok {
		return fail(c, http.StatusNotFound, "Task not found")
	}
	if !policy.IsTaskActor(&user.UserSummary, task) {
		return fail(c, http.StatusForbidden, "Not your task")
	}

	s.taskHistory[task.ID] = append(s.taskHistory[task.ID], map[string]any{
		"id": s.id(), "user": user.UserSummary, "action": "updated",
		"field_name": "status", "old_value": task.Status, "new_value": req.Status,
		"created_at": time.Now().UTC(),
	})
	task.Status = req.Status
	task.UpdatedAt = time.Now().UTC()
	return c.JSON(http.StatusOK, *task)
}

func (s *Server) handleTaskHistory(c echo.Context, _ *userRecord) error {
	s.mu.Lock()
	history := s.taskHistory[intParam(c, "id")]
	s.mu.Unlock()
	if history == nil {
		history = []map[string]any{}
	}
	return c.JSON(http.StatusOK, history)
}

func (s *Server) handleTaskComments(c echo.Context, _ *userRecord) error {
	taskID := intParam(c, "id")
	s.mu.Lock()
	out := []model.Comment{}
	for _, comment := range s.comments {
		if comment.TaskID == taskID {
			out = append(out, *comment)
		}
	}
	s.mu.Unlock()
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleCreateComment(c echo.Context, user *userRecord) error {
	var req struct {
		Content string `json:"content"`
		TaskID  int    `json:"task_id"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Content == "" {
		return fail(c, http.StatusUnprocessableEntity, "content is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[req.TaskID]; !ok {
		return fail(c, http.StatusNotFound, "Task not found")
	}
	author := user.UserSummary
	comment := &model.Comment{
		ID:        s.id(),
		Content:   req.Content,
		Author:    &author,
		TaskID:    req.TaskID,
		CreatedAt: time.Now().UTC(),
	}
	s.comments[comment.ID] = comment
	return c.JSON(http.StatusCreated, *comment)
}

func (s *Server) handleDeleteComment(c echo.Context, user *userRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	comment, ok := s.comments[intParam(c, "id")]
	if !ok {
		return fail(c, http.StatusNotFound, "Comment not found")
	}
	if !comment.DeletableBy(user.ID) {
		return fail(c, http.StatusForbidden, "Not your comment")
	}
	delete(s.comments, comment.ID)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleTimeLogs(c echo.Context, _ *userRecord) error {
	s.mu.Lock()
	entries := s.timelogs[intParam(c, "id")]
	s.mu.Unlock()
	if entries == nil {
		entries = []model.TimeLogEntry{}
	}
	return c.JSON(http.StatusOK, entries)
}

func (s *Server) handleLogWork(c echo.Context, user *userRecord) error {
	taskID := intParam(c, "id")
	var req struct {
		Hours       float64 `json:"hours"`
		Description string  `json:"description"`
		LogDate     string  `json:"log_date"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Hours <= 0 {
		return fail(c, http.StatusUnprocessableEntity, "hours must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[taskID]
	if !ok {
		return fail(c, http.StatusNotFound, "Task not found")
	}

	logDate, err := time.Parse(time.RFC3339, req.LogDate)
	if err != nil {
		logDate, err = time.Parse("2006-01-02", req.LogDate)
	}
	if err != nil || logDate.IsZero() {
		logDate = time.Now().UTC()
	}
	author := user.UserSummary
	entry := model.TimeLogEntry{
		ID:          s.id(),
		TaskID:      taskID,
		User:        &author,
		Hours:       req.Hours,
		Description: req.Description,
		LogDate:     logDate,
		CreatedAt:   time.Now().UTC(),
	}
	s.timelogs[taskID] = append(s.timelogs[taskID], entry)

	// logged work rolls up into the task's actual hours
	total := 0.0
	for _, e := range s.timelogs[taskID] {
		total += e.Hours
	}
	task.ActualHours = &total

	return c.JSON(http.StatusCreated, entry)
}

func (s *Server) handleSummary(c echo.Context, _ *userRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var summary model.Summary
	summary.Totals.Projects = len(s.projects)
	summary.Totals.Tasks = len(s.tasks)
	summary.Totals.Users = len(s.users)
	now := time.Now()
	for _, task := range s.tasks {
		if task.Status == model.StatusDone {
			summary.CompletedTasks++
		} else if task.DueDate != nil && task.DueDate.Before(now) {
			summary.OverdueTasks++
		}
	}
	if summary.Totals.Tasks > 0 {
		summary.OverallProgressPercent = float64(summary.CompletedTasks) / float64(summary.Totals.Tasks) * 100
	}
	return c.JSON(http.StatusOK, summary)
}

func (s *Server) handleRoles(c echo.Context, _ *userRecord) error {
	return c.JSON(http.StatusOK, []model.Role{
		{ID: 1, Name: model.RoleAdmin},
		{ID: 2, Name: model.RoleManager},
		{ID: 3, Name: model.RoleDeveloper},
	})
}

func contains(ids []int, id int) bool {
	for _, n := range ids {
		if n == id {
			return true
		}
	}
	return false
}
