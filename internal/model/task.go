package model

import "time"

// Task status values. Every status is reachable from every other; nothing
// in the client blocks a transition.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// Task priority values
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task represents a single work item
type Task struct {
	ID             int          `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description,omitempty"`
	Status         string       `json:"status"`
	Priority       string       `json:"priority,omitempty"`
	DueDate        *time.Time   `json:"due_date,omitempty"`
	EstimatedHours *float64     `json:"estimated_hours,omitempty"`
	ActualHours    *float64     `json:"actual_hours,omitempty"`
	ProjectID      int          `json:"project_id"`
	Assignee       *UserSummary `json:"assignee,omitempty"`
	CreatedBy      *UserSummary `json:"createdBy,omitempty"`
	Project        *ProjectRef  `json:"project,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// IsOverdue returns true if the task has a due date strictly in the past and
// is not done. Tasks without a due date are never overdue.
func (t *Task) IsOverdue() bool {
	if t.DueDate == nil || t.Status == StatusDone {
		return false
	}
	return t.DueDate.Before(time.Now())
}

// AssigneeName returns the assignee's display name, or "Unassigned"
func (t *Task) AssigneeName() string {
	if t.Assignee == nil {
		return "Unassigned"
	}
	return t.Assignee.Name
}

// ProjectTitle returns the owning project's title, or "-" when the
// endpoint did not embed one
func (t *Task) ProjectTitle() string {
	if t.Project == nil {
		return "-"
	}
	return t.Project.Title
}

// StatusRank maps a status to its sort position (todo < in_progress < done).
// Unknown statuses sort last.
func StatusRank(status string) int {
	switch status {
	case StatusTodo:
		return 1
	case StatusInProgress:
		return 2
	case StatusDone:
		return 3
	default:
		return 99
	}
}

// TaskCreate is the request body for creating a task
type TaskCreate struct {
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	Priority       string     `json:"priority,omitempty"`
	EstimatedHours *float64   `json:"estimated_hours,omitempty"`
	AssigneeID     *int       `json:"assignee_id,omitempty"`
	ProjectID      *int       `json:"project_id,omitempty"`
}

// TaskUpdate is the request body for editing a task. actual_hours is
// intentionally absent: it is derived from time logs on the server and only
// ever changes through the log-work endpoint.
type TaskUpdate struct {
	Title          string     `json:"title,omitempty"`
	Description    string     `json:"description,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	Priority       string     `json:"priority,omitempty"`
	EstimatedHours *float64   `json:"estimated_hours,omitempty"`
	AssigneeID     *int       `json:"assignee_id,omitempty"`
}
