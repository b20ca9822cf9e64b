package model

import "time"

// Project represents a project as returned by the list endpoint
type Project struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	IsArchived  bool      `json:"is_archived,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	MemberIDs   []int     `json:"member_ids,omitempty"`
}

// ProjectDetail is the detail response: the project plus its members and tasks
type ProjectDetail struct {
	Project
	Members []UserSummary `json:"members"`
	Tasks   []Task        `json:"tasks"`
}

// ProjectRef is the brief project shape embedded in task detail responses
type ProjectRef struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// ProjectProgress is the server-computed completion aggregate. The client
// never derives this from task collections; it refetches after any mutation
// that could change it.
type ProjectProgress struct {
	ProjectID         int     `json:"project_id"`
	TotalTasks        int     `json:"total_tasks"`
	CompletedTasks    int     `json:"completed_tasks"`
	CompletionPercent float64 `json:"completion_percent"`
}

// ProjectCreate is the request body for creating a project
type ProjectCreate struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	MemberIDs   []int  `json:"member_ids"`
}

// ProjectUpdate is the request body for editing a project
type ProjectUpdate struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	MemberIDs   []int  `json:"member_ids,omitempty"`
}

// Summary is the admin/manager reporting rollup
type Summary struct {
	Totals struct {
		Projects int `json:"projects"`
		Tasks    int `json:"tasks"`
		Users    int `json:"users"`
	} `json:"totals"`
	CompletedTasks         int     `json:"completed_tasks"`
	OverdueTasks           int     `json:"overdue_tasks"`
	OverallProgressPercent float64 `json:"overall_progress_percent"`
}
