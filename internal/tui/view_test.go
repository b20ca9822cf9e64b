package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/existflow/pmdesk/internal/model"
)

func TestTaskLine(t *testing.T) {
	m := &Model{}
	due := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	task := model.Task{
		Title:    "Ship the release",
		Status:   model.StatusInProgress,
		DueDate:  &due,
		Assignee: &model.UserSummary{Name: "Alice"},
	}

	line := m.taskLine(task, true)
	assert.Contains(t, line, "Ship the release")
	assert.Contains(t, line, "Alice")
	assert.Contains(t, line, "due Mar 14")
}

func TestTaskLineStrikesDoneTitles(t *testing.T) {
	assert.True(t, DoneStyle.GetStrikethrough())

	m := &Model{}
	done := model.Task{Title: "Ship the release", Status: model.StatusDone}
	line := m.taskLine(done, false)
	assert.Contains(t, line, DoneStyle.Render("Ship the release"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 30))
	assert.Equal(t, "a long ...", truncate("a long task title", 10))
}
