package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eransh/subtle/internal/settings"
)

var (
	loginUsername string
	loginPassword string
)

// loginCmd verifies credentials against the service and stores them in the
// settings file. Login is optional: searches work anonymously, but
// registered users get higher download limits.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store OpenSubtitles credentials",
	Long: `Verifies your OpenSubtitles username and password against the service and
stores them in the settings file for later commands. Without stored
credentials subtle uses anonymous sessions, which have a lower daily
download limit.`,
	RunE: runLogin,
}

func init() {
	RootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "OpenSubtitles username (prompted when omitted)")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "OpenSubtitles password (prompted when omitted)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	username := loginUsername
	password := loginPassword

	var err error
	if username == "" {
		if noInput {
			return fmt.Errorf("--username is required with --no-input")
		}
		if username, err = promptLine("Username: "); err != nil {
			return err
		}
	}
	if password == "" {
		if noInput {
			return fmt.Errorf("--password is required with --no-input")
		}
		if password, err = promptLine("Password: "); err != nil {
			return err
		}
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	err = withRetry("login", func() error {
		return client.Login(username, password, "en")
	})
	if err != nil {
		return fmt.Errorf("login verification failed: %w", err)
	}

	settings.SetCredentials(username, password)
	if err := settings.Save(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s. Credentials saved.\n", username)
	return nil
}
