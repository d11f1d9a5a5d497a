package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eransh/subtle/pkg/core/fileops"
)

// hashCmd prints the OSDb hash for files, mostly useful for debugging
// searches that match the wrong movie.
var hashCmd = &cobra.Command{
	Use:   "hash <video-file>...",
	Short: "Print the OSDb movie hash of video files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, path := range args {
			hash, size, err := fileops.CalculateOSDbHash(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %d  %s\n", hash, size, path)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(hashCmd)
}
