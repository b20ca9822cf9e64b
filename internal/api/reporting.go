package api

import (
	"context"

	"github.com/existflow/pmdesk/internal/model"
)

// Summary returns the admin/manager dashboard rollup. Developers get a
// ForbiddenError, which the dashboard renders as a friendly restricted view.
func (c *Client) Summary(ctx context.Context) (*model.Summary, error) {
	var summary model.Summary
	if err := c.get(ctx, "/reporting/summary", &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Roles lists the assignable roles
func (c *Client) Roles(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	if err := c.get(ctx, "/roles", &roles); err != nil {
		return nil, err
	}
	return roles, nil
}
