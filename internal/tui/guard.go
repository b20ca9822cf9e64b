package tui

import (
	"github.com/existflow/pmdesk/internal/model"
	"github.com/existflow/pmdesk/internal/policy"
)

// screenRoles maps each screen to the roles allowed in. Screens absent
// from the table admit any authenticated user.
var screenRoles = map[Screen][]string{
	ScreenUsers: {model.RoleAdmin, model.RoleManager},
}

// canEnter is the route guard: an unauthenticated user can only reach the
// login screen, and guarded screens check the role table. A denied screen
// renders an access-denied notice, never an error page.
func (m *Model) canEnter(s Screen) bool {
	if s == ScreenLogin {
		return true
	}
	return policy.CanAccess(m.store.User(), screenRoles[s]...)
}
