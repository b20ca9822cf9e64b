package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The server sends role sometimes as a bare string, sometimes as an
// object; both shapes must land in the same canonical form.
func TestRoleDecodesBothShapes(t *testing.T) {
	var fromString Role
	require.NoError(t, json.Unmarshal([]byte(`"admin"`), &fromString))
	assert.Equal(t, "admin", fromString.Name)

	var fromObject Role
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"name":"admin"}`), &fromObject))
	assert.Equal(t, 1, fromObject.ID)
	assert.Equal(t, "admin", fromObject.Name)

	assert.True(t, fromString.Is(fromObject.Name))
}

func TestRoleIsCaseInsensitive(t *testing.T) {
	r := Role{Name: "Admin"}
	assert.True(t, r.Is("admin"))
	assert.True(t, r.Is("ADMIN"))
	assert.False(t, r.Is("manager"))
}

func TestCreatorName(t *testing.T) {
	u := UserSummary{}
	assert.Equal(t, "System", u.CreatorName())

	u.Creator = &UserSummary{Name: "Root"}
	assert.Equal(t, "Root", u.CreatorName())
}
