package model

import "time"

// Comment is a remark on a task. Comments belong to their author; only the
// author may delete one, so the delete control is hidden for everyone else.
type Comment struct {
	ID        int          `json:"id"`
	Content   string       `json:"content"`
	Author    *UserSummary `json:"author,omitempty"`
	TaskID    int          `json:"task_id"`
	CreatedAt time.Time    `json:"created_at"`
	CanDelete bool         `json:"can_delete,omitempty"`
}

// DeletableBy reports whether the given user may delete this comment
func (c *Comment) DeletableBy(userID int) bool {
	return c.Author != nil && c.Author.ID == userID
}

// TimeLogEntry records work done against a task. Entries are append-only:
// the API exposes no edit or delete for them.
type TimeLogEntry struct {
	ID          int          `json:"id"`
	TaskID      int          `json:"task_id"`
	User        *UserSummary `json:"user,omitempty"`
	Hours       float64      `json:"hours"`
	Description string       `json:"description,omitempty"`
	LogDate     time.Time    `json:"log_date"`
	CreatedAt   time.Time    `json:"created_at"`
}
