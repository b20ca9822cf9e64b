package view

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/existflow/pmdesk/internal/model"
)

func taskWith(title, status string, due *time.Time) model.Task {
	return model.Task{Title: title, Status: status, DueDate: due}
}

func titles(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func TestStatusSortUsesRankNotAlphabet(t *testing.T) {
	tasks := []model.Task{
		taskWith("c", model.StatusDone, nil),
		taskWith("a", model.StatusInProgress, nil),
		taskWith("b", model.StatusTodo, nil),
	}
	less := TaskLess(SortByStatus, true)
	sort.SliceStable(tasks, func(i, j int) bool { return less(tasks[i], tasks[j]) })

	// alphabetical would give done < in_progress < todo
	assert.Equal(t, []string{"b", "a", "c"}, titles(tasks))
}

func TestAbsentDueDateSortsFirstAscending(t *testing.T) {
	yesterday := time.Now().Add(-24 * time.Hour)
	tomorrow := time.Now().Add(24 * time.Hour)
	tasks := []model.Task{
		taskWith("soon", model.StatusTodo, &yesterday),
		taskWith("later", model.StatusTodo, &tomorrow),
		taskWith("unscheduled", model.StatusTodo, nil),
	}

	less := TaskLess(SortByDueDate, true)
	sort.SliceStable(tasks, func(i, j int) bool { return less(tasks[i], tasks[j]) })
	assert.Equal(t, []string{"unscheduled", "soon", "later"}, titles(tasks))

	less = TaskLess(SortByDueDate, false)
	sort.SliceStable(tasks, func(i, j int) bool { return less(tasks[i], tasks[j]) })
	assert.Equal(t, []string{"later", "soon", "unscheduled"}, titles(tasks))
}

func TestTitleSortIsCaseSensitive(t *testing.T) {
	tasks := []model.Task{
		taskWith("apple", model.StatusTodo, nil),
		taskWith("Banana", model.StatusTodo, nil),
	}
	less := TaskLess(SortByTitle, true)
	sort.SliceStable(tasks, func(i, j int) bool { return less(tasks[i], tasks[j]) })

	// uppercase sorts before lowercase in natural byte order
	assert.Equal(t, []string{"Banana", "apple"}, titles(tasks))
}
