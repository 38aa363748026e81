package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAuth(); err != nil {
				return err
			}
			u := session.User()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "User:    %s\n", u.Email)
			fmt.Fprintf(out, "  Name:    %s\n", u.FullName)
			fmt.Fprintf(out, "  Role:    %s\n", u.Role)
			fmt.Fprintf(out, "  ID:      %s\n", u.ID)
			fmt.Fprintf(out, "  Created: %s\n", humanize.Time(u.CreatedAt))
			if u.LastLogin != nil {
				fmt.Fprintf(out, "  Login:   %s\n", humanize.Time(*u.LastLogin))
			}
			return nil
		},
	}
}
