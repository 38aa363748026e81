package trail

import (
	"context"

	"github.com/me/trailctl/pkg/model"
)

// MyAuditHistory fetches one page of the calling user's own audit trail.
// Zero-valued options default to page 1 with DefaultAuditPageSize entries.
func (c *Client) MyAuditHistory(ctx context.Context, opts model.Page) (*model.Paginated[model.AuditLog], error) {
	var page model.Paginated[model.AuditLog]
	if err := c.get(ctx, "audit history", "/audit/my-history", pageQuery(opts, DefaultAuditPageSize), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// AuditLogs fetches one page of the full audit trail. Requires the
// admin role; non-admin callers get a 403 back.
func (c *Client) AuditLogs(ctx context.Context, opts model.Page) (*model.Paginated[model.AuditLog], error) {
	var page model.Paginated[model.AuditLog]
	if err := c.get(ctx, "audit logs", "/audit/logs", pageQuery(opts, DefaultAuditPageSize), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// AuditStats fetches audit trail summary statistics.
func (c *Client) AuditStats(ctx context.Context) (*model.AuditStats, error) {
	var stats model.AuditStats
	if err := c.get(ctx, "audit stats", "/audit/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
