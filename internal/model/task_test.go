package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsOverdue(t *testing.T) {
	yesterday := time.Now().Add(-24 * time.Hour)
	tomorrow := time.Now().Add(24 * time.Hour)

	tests := []struct {
		name   string
		due    *time.Time
		status string
		want   bool
	}{
		{"past due and open", &yesterday, StatusTodo, true},
		{"past due but done", &yesterday, StatusDone, false},
		{"no due date", nil, StatusTodo, false},
		{"due in the future", &tomorrow, StatusTodo, false},
		{"past due in progress", &yesterday, StatusInProgress, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := Task{Status: tt.status, DueDate: tt.due}
			assert.Equal(t, tt.want, task.IsOverdue())
		})
	}
}

func TestStatusRank(t *testing.T) {
	assert.Less(t, StatusRank(StatusTodo), StatusRank(StatusInProgress))
	assert.Less(t, StatusRank(StatusInProgress), StatusRank(StatusDone))
	assert.Greater(t, StatusRank("bogus"), StatusRank(StatusDone))
}

func TestTaskDecodesCreatedByCamelCase(t *testing.T) {
	raw := `{"id":7,"title":"x","status":"todo","project_id":1,"createdBy":{"id":2,"name":"Boss","role":"manager"}}`

	var task Task
	require.NoError(t, json.Unmarshal([]byte(raw), &task))
	require.NotNil(t, task.CreatedBy)
	assert.Equal(t, "Boss", task.CreatedBy.Name)
}

func TestAssigneeName(t *testing.T) {
	task := Task{}
	assert.Equal(t, "Unassigned", task.AssigneeName())

	task.Assignee = &UserSummary{Name: "Dev"}
	assert.Equal(t, "Dev", task.AssigneeName())
}
