package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/existflow/pmdesk/internal/model"
)

func userWithRole(id int, role string) *model.UserSummary {
	return &model.UserSummary{ID: id, Name: "u", Role: model.Role{Name: role}}
}

func TestCanManage(t *testing.T) {
	assert.True(t, CanManage(model.Role{Name: model.RoleAdmin}))
	assert.True(t, CanManage(model.Role{Name: model.RoleManager}))
	assert.False(t, CanManage(model.Role{Name: model.RoleDeveloper}))
	assert.False(t, CanManage(model.Role{}))
}

func TestCanAccess(t *testing.T) {
	admin := userWithRole(1, model.RoleAdmin)
	dev := userWithRole(2, model.RoleDeveloper)

	assert.False(t, CanAccess(nil))
	assert.True(t, CanAccess(dev), "no required roles means any signed-in user")
	assert.True(t, CanAccess(admin, model.RoleAdmin, model.RoleManager))
	assert.False(t, CanAccess(dev, model.RoleAdmin, model.RoleManager))
}

func TestAccountCreationRights(t *testing.T) {
	assert.True(t, CanCreateManagerAccount(model.Role{Name: model.RoleAdmin}))
	assert.False(t, CanCreateManagerAccount(model.Role{Name: model.RoleManager}))

	assert.True(t, CanCreateDeveloperAccount(model.Role{Name: model.RoleAdmin}))
	assert.True(t, CanCreateDeveloperAccount(model.Role{Name: model.RoleManager}))
	assert.False(t, CanCreateDeveloperAccount(model.Role{Name: model.RoleDeveloper}))
}

func TestIsTaskActor(t *testing.T) {
	assignee7 := &model.Task{Assignee: &model.UserSummary{ID: 7}}

	// developer 5 looking at a task assigned to user 7
	dev5 := userWithRole(5, model.RoleDeveloper)
	assert.False(t, IsTaskActor(dev5, assignee7))

	dev7 := userWithRole(7, model.RoleDeveloper)
	assert.True(t, IsTaskActor(dev7, assignee7))

	manager := userWithRole(9, model.RoleManager)
	assert.True(t, IsTaskActor(manager, assignee7))

	unassigned := &model.Task{}
	assert.False(t, IsTaskActor(dev5, unassigned))
	assert.True(t, IsTaskActor(manager, unassigned))

	assert.False(t, IsTaskActor(nil, assignee7))
	assert.False(t, IsTaskActor(manager, nil))
}

func TestAssignableRoles(t *testing.T) {
	roles := []model.Role{
		{ID: 1, Name: model.RoleAdmin},
		{ID: 2, Name: model.RoleManager},
		{ID: 3, Name: model.RoleDeveloper},
	}

	admin := userWithRole(1, model.RoleAdmin)
	got := AssignableRoles(admin, roles)
	assert.Len(t, got, 2, "admin hands out manager and developer, never admin")

	manager := userWithRole(2, model.RoleManager)
	got = AssignableRoles(manager, roles)
	if assert.Len(t, got, 1) {
		assert.Equal(t, model.RoleDeveloper, got[0].Name)
	}

	dev := userWithRole(3, model.RoleDeveloper)
	assert.Empty(t, AssignableRoles(dev, roles))
	assert.Empty(t, AssignableRoles(nil, roles))
}
