package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var emailCmd = &cobra.Command{
	Use:   "email",
	Short: "Inspect transactional email",
}

var emailInfoCmd = &cobra.Command{
	Use:   "info <transmission-id>",
	Short: "Show the provider's record of a transmission",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mailer, err := newMailer(cfg, log)
		if err != nil {
			return err
		}
		info, err := mailer.Info(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	},
}

func init() {
	emailCmd.AddCommand(emailInfoCmd)
}
