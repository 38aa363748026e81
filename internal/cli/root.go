// Package cli implements the trailctl command line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/me/trailctl/internal/config"
	"github.com/me/trailctl/internal/logging"
	"github.com/me/trailctl/pkg/trail"
)

var (
	flagServer    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string
	flagCredsFile string

	logger  *slog.Logger
	client  *trail.Client
	session *trail.Session
)

// defaultServer returns the default API base URL, checking the
// TRAILCTL_SERVER env var first.
func defaultServer() string {
	if s := os.Getenv("TRAILCTL_SERVER"); s != "" {
		return s
	}
	if cfg, err := configFromFile(); err == nil && cfg.Server != "" {
		return cfg.Server
	}
	return trail.DefaultBaseURL
}

func configFromFile() (config.Config, error) {
	path, err := config.Path()
	if err != nil {
		return config.Default(), err
	}
	return config.Load(path)
}

func defaultCredentialsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".trailctl", "credentials.json")
}

// NewRootCmd creates the root cobra command for the trailctl CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "trailctl",
		Short: "trailctl — task management with a full audit trail",
		Long:  "trailctl manages tasks, users, and the audit trail of an Audit Trail & Task Management server.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.New(logging.ParseLevel(flagLogLevel), flagLogFormat)

			// serve runs the API server and never acts as a client.
			if cmd.Name() == "serve" {
				return nil
			}

			creds, err := trail.NewFileCredentialStore(flagCredsFile)
			if err != nil {
				return fmt.Errorf("open credential store: %w", err)
			}
			client = trail.NewClient(trail.DefaultConfig().WithBaseURL(flagServer), creds, logger)
			client.SetUnauthorizedHandler(func() {
				fmt.Fprintln(cmd.ErrOrStderr(), "Session expired. Run 'trailctl login' to sign in again.")
			})

			session = trail.NewSession(client, logger)
			session.Init(cmd.Context())
			return nil
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", defaultServer(), "API base URL (or TRAILCTL_SERVER env)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")
	root.PersistentFlags().StringVar(&flagCredsFile, "credentials-file", defaultCredentialsPath(), "Path to the stored credential file")

	root.AddCommand(
		newLoginCmd(),
		newRegisterCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newTaskCmd(),
		newAuditCmd(),
		newUsersCmd(),
		newServeCmd(),
	)

	return root
}

// requireAuth returns an error unless the session resolved to a signed-in
// user during startup.
func requireAuth() error {
	if !session.IsAuthenticated() {
		return fmt.Errorf("not logged in; run 'trailctl login' first: %w", trail.ErrNotAuthenticated)
	}
	return nil
}
