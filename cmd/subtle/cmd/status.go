package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// statusCmd is a connectivity check against the service.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show OpenSubtitles service information",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()

		info, err := client.ServerInfo()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Service:        %s\n", info.Application)
		fmt.Fprintf(out, "XML-RPC:        %s (version %s)\n", info.XMLRPCURL, info.XMLRPCVersion)
		if info.SubsSubtitleFiles != "" {
			fmt.Fprintf(out, "Subtitle files: %s\n", info.SubsSubtitleFiles)
		}
		if info.SubsDownloads != "" {
			fmt.Fprintf(out, "Downloads:      %s\n", info.SubsDownloads)
		}
		if info.MoviesTotal != "" {
			fmt.Fprintf(out, "Movies:         %s\n", info.MoviesTotal)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(statusCmd)
}
