package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eransh/subtle/internal/settings"
)

// logoutCmd removes the stored credentials. Session tokens only live for
// one process run, so there is nothing remote to invalidate here.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored OpenSubtitles credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := settings.Credentials()
		if username == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No credentials stored.")
			return nil
		}

		settings.SetCredentials("", "")
		if err := settings.Save(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Removed stored credentials for %s.\n", username)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(logoutCmd)
}
