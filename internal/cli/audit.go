package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/me/trailctl/pkg/model"
)

func newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the audit trail",
	}
	cmd.AddCommand(
		newAuditHistoryCmd(),
		newAuditLogsCmd(),
		newAuditStatsCmd(),
	)
	return cmd
}

func newAuditHistoryCmd() *cobra.Command {
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show your own audit history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAuth(); err != nil {
				return err
			}
			resp, err := client.MyAuditHistory(cmd.Context(), model.Page{Page: page, PageSize: pageSize})
			if err != nil {
				return fmt.Errorf("audit history: %w", err)
			}
			printAuditPage(cmd, resp)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "Page number (1-based)")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Items per page")
	return cmd
}

func newAuditLogsCmd() *cobra.Command {
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the full audit log (admin only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAuth(); err != nil {
				return err
			}
			resp, err := client.AuditLogs(cmd.Context(), model.Page{Page: page, PageSize: pageSize})
			if err != nil {
				return fmt.Errorf("audit logs: %w", err)
			}
			printAuditPage(cmd, resp)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "Page number (1-based)")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Items per page")
	return cmd
}

func newAuditStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show audit trail statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAuth(); err != nil {
				return err
			}
			stats, err := client.AuditStats(cmd.Context())
			if err != nil {
				return fmt.Errorf("audit stats: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total entries: %d\n", stats.Total)
			if len(stats.ByAction) > 0 {
				fmt.Fprintln(out, "By action:")
				for action, n := range stats.ByAction {
					fmt.Fprintf(out, "  %-10s %d\n", action, n)
				}
			}
			if len(stats.ByStatus) > 0 {
				fmt.Fprintln(out, "By status:")
				for status, n := range stats.ByStatus {
					fmt.Fprintf(out, "  %-10s %d\n", status, n)
				}
			}
			if stats.LastEntry != nil {
				fmt.Fprintf(out, "Last entry: %s\n", humanize.Time(*stats.LastEntry))
			}
			return nil
		},
	}
}

func printAuditPage(cmd *cobra.Command, resp *model.Paginated[model.AuditLog]) {
	out := cmd.OutOrStdout()
	if len(resp.Items) == 0 {
		fmt.Fprintln(out, "No audit entries found.")
		return
	}

	fmt.Fprintf(out, "%-25s  %-10s  %-8s  %-20s  %s\n", "WHEN", "ACTION", "STATUS", "RESOURCE", "USER")
	fmt.Fprintf(out, "%-25s  %-10s  %-8s  %-20s  %s\n", "----", "------", "------", "--------", "----")
	for _, e := range resp.Items {
		resource := e.ResourceType
		if e.ResourceID != "" {
			resource += "/" + e.ResourceID
		}
		fmt.Fprintf(out, "%-25s  %-10s  %-8s  %-20s  %s\n",
			humanize.Time(e.CreatedAt), e.Action, e.Status, truncate(resource, 20), e.UserEmail)
	}
	if resp.HasMore() {
		fmt.Fprintf(out, "\n(%d of %d shown)\n", len(resp.Items), resp.Total)
	}
}
