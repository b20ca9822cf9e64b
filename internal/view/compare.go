package view

import (
	"time"

	"github.com/existflow/pmdesk/internal/model"
)

// Sort keys accepted by the task and project views
const (
	SortByTitle    = "title"
	SortByStatus   = "status"
	SortByPriority = "priority"
	SortByDueDate  = "due_date"
	SortByCreated  = "created_at"
)

// dueTime maps an absent due date to the zero time, which sorts before
// every real date. Tasks without a due date therefore come first in
// ascending order. That ordering is inherited behavior and is kept as-is.
func dueTime(t model.Task) time.Time {
	if t.DueDate == nil {
		return time.Time{}
	}
	return *t.DueDate
}

// TaskLess returns a comparator for the given sort key. String fields
// compare case-sensitively; status compares by its fixed rank, not
// alphabetically.
func TaskLess(key string, ascending bool) func(a, b model.Task) bool {
	var less func(a, b model.Task) bool
	switch key {
	case SortByStatus:
		less = func(a, b model.Task) bool {
			return model.StatusRank(a.Status) < model.StatusRank(b.Status)
		}
	case SortByPriority:
		less = func(a, b model.Task) bool { return a.Priority < b.Priority }
	case SortByDueDate:
		less = func(a, b model.Task) bool { return dueTime(a).Before(dueTime(b)) }
	case SortByCreated:
		less = func(a, b model.Task) bool { return a.CreatedAt.Before(b.CreatedAt) }
	default:
		less = func(a, b model.Task) bool { return a.Title < b.Title }
	}
	if ascending {
		return less
	}
	return func(a, b model.Task) bool { return less(b, a) }
}

// ProjectLess returns a comparator for project lists
func ProjectLess(key string, ascending bool) func(a, b model.Project) bool {
	var less func(a, b model.Project) bool
	switch key {
	case SortByCreated:
		less = func(a, b model.Project) bool { return a.CreatedAt.Before(b.CreatedAt) }
	default:
		less = func(a, b model.Project) bool { return a.Title < b.Title }
	}
	if ascending {
		return less
	}
	return func(a, b model.Project) bool { return less(b, a) }
}
