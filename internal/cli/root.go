// Package cli contains the planner command line: the HTTP server and the
// operator commands that share its configuration.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/commuteplanner/planner/internal/pkg/config"
	"github.com/commuteplanner/planner/pkg/logger"
)

var (
	cfg     *config.Config
	log     zerolog.Logger
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "planner",
	Short: "Commute planner server and operator tools",
	Long: `planner serves the commute planner web application and carries the
operator commands that work against the same stores.

Example usage:
  planner serve                          # Start the HTTP server
  planner groups create                  # Create the default groups
  planner groups create organization-42  # Create an organization group
  planner accounts create --email a@b.c  # Provision an account
  planner change-password --key <key>    # Change a password with an emailed key
  planner email info <transmission-id>   # Show a transmission's delivery state`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version reported by --version.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.AddCommand(serveCmd, groupsCmd, accountsCmd, changePasswordCmd, emailCmd)
}

func initConfig(cmd *cobra.Command) error {
	loaded, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}
	cfg = loaded
	log = logger.Init(logger.ForEnv(cfg.Env, cfg.LogLevel))
	return nil
}
