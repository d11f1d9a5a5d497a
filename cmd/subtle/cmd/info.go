package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eransh/subtle/pkg/core/metadata"
)

var infoJSON bool

// infoCmd shows what subtle knows about a video file before any remote
// call: parsed filename fields, hash and NFO-derived IMDb ID.
var infoCmd = &cobra.Command{
	Use:   "info <video-file>",
	Short: "Show extracted metadata for a video file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := metadata.Extract(args[0])
		if err != nil {
			return err
		}

		if infoJSON {
			data, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "File:      %s (%d bytes)\n", info.FileName, info.FileSize)
		fmt.Fprintf(out, "Title:     %s\n", info.Title)
		if info.Year > 0 {
			fmt.Fprintf(out, "Year:      %d\n", info.Year)
		}
		if info.IsEpisode() {
			fmt.Fprintf(out, "Episode:   S%02dE%02d\n", info.Season, info.Episode)
		}
		if info.Resolution != "" {
			fmt.Fprintf(out, "Video:     %s %s\n", info.Resolution, info.Source)
		}
		if info.ReleaseGroup != "" {
			fmt.Fprintf(out, "Group:     %s\n", info.ReleaseGroup)
		}
		if info.OSDbHash != "" {
			fmt.Fprintf(out, "OSDb hash: %s\n", info.OSDbHash)
		}
		if info.NFOIMDbID != "" {
			fmt.Fprintf(out, "IMDb (NFO): tt%s\n", info.NFOIMDbID)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(infoCmd)
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "output as JSON")
}
