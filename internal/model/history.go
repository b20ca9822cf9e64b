package model

import (
	"encoding/json"
	"time"
)

// HistoryRecord is one entry of a project or task audit trail. The two
// endpoints serve slightly different shapes (project history uses
// field/timestamp, task history uses field_name/created_at); both are
// normalized here at the ingestion boundary.
type HistoryRecord struct {
	ID        int
	User      *UserSummary
	Action    string
	Field     string
	OldValue  string
	NewValue  string
	Timestamp time.Time
}

func (h *HistoryRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        int          `json:"id"`
		User      *UserSummary `json:"user"`
		Action    string       `json:"action"`
		Field     string       `json:"field"`
		FieldName string       `json:"field_name"`
		OldValue  string       `json:"old_value"`
		NewValue  string       `json:"new_value"`
		Timestamp *time.Time   `json:"timestamp"`
		CreatedAt *time.Time   `json:"created_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	h.ID = raw.ID
	h.User = raw.User
	h.Action = raw.Action
	h.Field = raw.Field
	if h.Field == "" {
		h.Field = raw.FieldName
	}
	h.OldValue = raw.OldValue
	h.NewValue = raw.NewValue
	if raw.Timestamp != nil {
		h.Timestamp = *raw.Timestamp
	} else if raw.CreatedAt != nil {
		h.Timestamp = *raw.CreatedAt
	}
	return nil
}

// ActorName returns the acting user's display name, or "System" for
// server-generated entries
func (h *HistoryRecord) ActorName() string {
	if h.User == nil {
		return "System"
	}
	return h.User.Name
}
