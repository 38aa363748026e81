package trail

import (
	"context"

	"github.com/me/trailctl/pkg/model"
)

// ListUsers fetches one page of user accounts. Requires the admin role.
// Zero-valued options default to page 1 with DefaultUserPageSize entries.
func (c *Client) ListUsers(ctx context.Context, opts model.Page) (*model.Paginated[model.User], error) {
	var page model.Paginated[model.User]
	if err := c.get(ctx, "list users", "/users", pageQuery(opts, DefaultUserPageSize), &page); err != nil {
		return nil, err
	}
	return &page, nil
}
