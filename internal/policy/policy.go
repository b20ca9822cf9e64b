// Package policy holds the pure role-based access predicates. Everything
// here is a function of the session user and the canonical role name;
// nothing touches the network or any store.
package policy

import "github.com/existflow/pmdesk/internal/model"

// CanAccess reports whether the user may enter a view guarded by the given
// roles. A nil user always fails. With no required roles any authenticated
// user passes.
func CanAccess(user *model.UserSummary, requiredRoles ...string) bool {
	if user == nil {
		return false
	}
	if len(requiredRoles) == 0 {
		return true
	}
	for _, r := range requiredRoles {
		if user.Role.Is(r) {
			return true
		}
	}
	return false
}

// CanManage reports whether the role may create, edit, and delete projects,
// tasks, and memberships
func CanManage(role model.Role) bool {
	return role.Is(model.RoleAdmin) || role.Is(model.RoleManager)
}

// CanCreateManagerAccount reports whether the role may create manager accounts
func CanCreateManagerAccount(role model.Role) bool {
	return role.Is(model.RoleAdmin)
}

// CanCreateDeveloperAccount reports whether the role may create developer
// accounts
func CanCreateDeveloperAccount(role model.Role) bool {
	return role.Is(model.RoleAdmin) || role.Is(model.RoleManager)
}

// IsTaskActor reports whether the user may act on a task (comment, change
// status, log work). Developers may act only on tasks assigned to them;
// admins and managers may act on any task.
func IsTaskActor(user *model.UserSummary, task *model.Task) bool {
	if user == nil || task == nil {
		return false
	}
	if !user.Role.Is(model.RoleDeveloper) {
		return true
	}
	return task.Assignee != nil && task.Assignee.ID == user.ID
}

// AssignableRoles filters the server's role list down to what the user may
// hand out when creating an account
func AssignableRoles(user *model.UserSummary, roles []model.Role) []model.Role {
	if user == nil {
		return nil
	}
	var out []model.Role
	for _, r := range roles {
		switch {
		case r.Is(model.RoleManager) && CanCreateManagerAccount(user.Role):
			out = append(out, r)
		case r.Is(model.RoleDeveloper) && CanCreateDeveloperAccount(user.Role):
			out = append(out, r)
		}
	}
	return out
}
