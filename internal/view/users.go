package view

import (
	"context"
	"strings"

	"github.com/existflow/pmdesk/internal/api"
	"github.com/existflow/pmdesk/internal/model"
)

// UsersView is the state for the user administration screen
type UsersView struct {
	viewState

	client *api.Client
	list   *List[model.UserSummary]

	roleFilter string
	textFilter string
}

// NewUsersView creates an idle user list view
func NewUsersView(client *api.Client, pageSize int) *UsersView {
	v := &UsersView{client: client, list: NewList[model.UserSummary](pageSize)}
	v.list.SetSort(func(a, b model.UserSummary) bool { return a.Name < b.Name })
	return v
}

// Visible returns the current page of users
func (v *UsersView) Visible() []model.UserSummary {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.list.Visible()
}

// Page returns the current page number
func (v *UsersView) Page() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.list.Page()
}

// PageCount returns the number of pages
func (v *UsersView) PageCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.list.PageCount()
}

// NextPage advances one page
func (v *UsersView) NextPage() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.list.NextPage()
}

// PrevPage goes back one page
func (v *UsersView) PrevPage() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.list.PrevPage()
}

// Len returns the filtered user count
func (v *UsersView) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.list.Len()
}

// Load fetches the user list. Developers get a 403 here; callers render
// that as an access-denied placeholder, not an error page.
func (v *UsersView) Load(ctx context.Context) error {
	gen := v.begin(Loading)
	users, err := v.client.Users(ctx)
	if err != nil {
		return v.fail(gen, err, "Failed to load users")
	}
	v.commit(gen, func() { v.list.SetItems(users) })
	return nil
}

// FilterRole keeps only users with the given role name; empty clears it
func (v *UsersView) FilterRole(role string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.roleFilter = role
	v.applyFilter()
}

// FilterText keeps users whose name or email contains q
func (v *UsersView) FilterText(q string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.textFilter = strings.ToLower(q)
	v.applyFilter()
}

func (v *UsersView) applyFilter() {
	role, text := v.roleFilter, v.textFilter
	if role == "" && text == "" {
		v.list.SetFilter(nil)
		return
	}
	v.list.SetFilter(func(u model.UserSummary) bool {
		if role != "" && !u.Role.Is(role) {
			return false
		}
		if text != "" &&
			!strings.Contains(strings.ToLower(u.Name), text) &&
			!strings.Contains(strings.ToLower(u.Email), text) {
			return false
		}
		return true
	})
}

// Register creates an account and refetches the list
func (v *UsersView) Register(ctx context.Context, req api.RegisterRequest) error {
	gen := v.begin(Mutating)
	if _, err := v.client.Register(ctx, req); err != nil {
		return v.fail(gen, err, "Failed to create account")
	}
	return v.Load(ctx)
}

// Delete removes an account and refetches the list
func (v *UsersView) Delete(ctx context.Context, userID int) error {
	gen := v.begin(Mutating)
	if err := v.client.DeleteUser(ctx, userID); err != nil {
		return v.fail(gen, err, "Failed to delete user")
	}
	return v.Load(ctx)
}

// ToggleActivation flips an account's active flag and splices the
// returned record in place
func (v *UsersView) ToggleActivation(ctx context.Context, userID int) error {
	gen := v.begin(Mutating)
	user, err := v.client.ToggleActivation(ctx, userID)
	if err != nil {
		return v.fail(gen, err, "Failed to update user")
	}
	v.commit(gen, func() {
		v.list.Patch(func(u model.UserSummary) bool { return u.ID == user.ID }, *user)
	})
	return nil
}
