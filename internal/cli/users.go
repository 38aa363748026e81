package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/me/trailctl/pkg/model"
)

func newUsersCmd() *cobra.Command {
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List registered users (admin only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAuth(); err != nil {
				return err
			}
			resp, err := client.ListUsers(cmd.Context(), model.Page{Page: page, PageSize: pageSize})
			if err != nil {
				return fmt.Errorf("list users: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(resp.Items) == 0 {
				fmt.Fprintln(out, "No users found.")
				return nil
			}

			fmt.Fprintf(out, "%-14s  %-30s  %-6s  %-8s  %s\n", "ID", "EMAIL", "ROLE", "ACTIVE", "LAST LOGIN")
			fmt.Fprintf(out, "%-14s  %-30s  %-6s  %-8s  %s\n", "--", "-----", "----", "------", "----------")
			for _, u := range resp.Items {
				lastLogin := "never"
				if u.LastLogin != nil {
					lastLogin = humanize.Time(*u.LastLogin)
				}
				fmt.Fprintf(out, "%-14s  %-30s  %-6s  %-8t  %s\n",
					u.ID, truncate(u.Email, 30), u.Role, u.IsActive, lastLogin)
			}
			if resp.HasMore() {
				fmt.Fprintf(out, "\n(%d of %d shown)\n", len(resp.Items), resp.Total)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "Page number (1-based)")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Items per page")
	return cmd
}
