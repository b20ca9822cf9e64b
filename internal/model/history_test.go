package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Project history uses field/timestamp, task history uses
// field_name/created_at. Both normalize to one record shape.
func TestHistoryRecordNormalizesBothShapes(t *testing.T) {
	projectShape := `{"id":1,"action":"updated","field":"title","old_value":"a","new_value":"b","timestamp":"2026-08-30T10:00:00Z"}`
	taskShape := `{"id":2,"action":"updated","field_name":"status","old_value":"todo","new_value":"done","created_at":"2026-08-30T11:00:00Z"}`

	var fromProject, fromTask HistoryRecord
	require.NoError(t, json.Unmarshal([]byte(projectShape), &fromProject))
	require.NoError(t, json.Unmarshal([]byte(taskShape), &fromTask))

	assert.Equal(t, "title", fromProject.Field)
	assert.Equal(t, "status", fromTask.Field)
	assert.False(t, fromProject.Timestamp.IsZero())
	assert.False(t, fromTask.Timestamp.IsZero())
	assert.True(t, fromProject.Timestamp.Before(fromTask.Timestamp))
}

func TestActorName(t *testing.T) {
	var h HistoryRecord
	assert.Equal(t, "System", h.ActorName())

	h.User = &UserSummary{Name: "Alice"}
	assert.Equal(t, "Alice", h.ActorName())
}
