package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRegisterCmd() *cobra.Command {
	var email, password, fullName string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if email == "" {
				if email, err = promptLine(cmd, "Email: "); err != nil {
					return err
				}
			}
			if fullName == "" {
				if fullName, err = promptLine(cmd, "Full name: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = promptPassword(cmd, "Password: "); err != nil {
					return err
				}
				confirm, err := promptPassword(cmd, "Confirm password: ")
				if err != nil {
					return err
				}
				if confirm != password {
					return fmt.Errorf("passwords do not match")
				}
			}

			user, err := session.Register(cmd.Context(), email, password, fullName)
			if err != nil {
				return fmt.Errorf("register: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Account created. Logged in as %s (%s)\n", user.Email, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (prompted if omitted)")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted if omitted)")
	cmd.Flags().StringVar(&fullName, "full-name", "", "Full name (prompted if omitted)")
	return cmd
}
