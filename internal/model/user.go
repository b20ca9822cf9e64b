package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Role names used by the server. Comparison is always case-insensitive
// because historical data mixes casings.
const (
	RoleAdmin     = "admin"
	RoleManager   = "manager"
	RoleDeveloper = "developer"
)

// Role is a user's role as served by the API
type Role struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// UnmarshalJSON accepts both wire shapes for a role: some endpoints send the
// bare name ("admin"), others send {"id":1,"name":"admin"}. Payloads are
// normalized here so nothing downstream branches on shape.
func (r *Role) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*r = Role{Name: name}
		return nil
	}

	type plain Role
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Role(p)
	return nil
}

// Is reports whether the role has the given name, ignoring case
func (r Role) Is(name string) bool {
	return strings.EqualFold(r.Name, name)
}

// UserSummary represents a user as returned by the API
type UserSummary struct {
	ID        int          `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Role      Role         `json:"role"`
	IsActive  bool         `json:"is_active"`
	Avatar    string       `json:"avatar,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	Creator   *UserSummary `json:"creator,omitempty"`
}

// CreatorName returns the display name of whoever created the account,
// or "System" for seeded accounts
func (u *UserSummary) CreatorName() string {
	if u.Creator == nil {
		return "System"
	}
	return u.Creator.Name
}
