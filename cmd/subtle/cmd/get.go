package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eransh/subtle/internal/constants"
	"github.com/eransh/subtle/internal/httpclient"
	"github.com/eransh/subtle/internal/settings"
	"github.com/eransh/subtle/pkg/processor"
)

var (
	getLangs     string
	getMethods   string
	getIMDbID    string
	getOutputDir string
	getOverwrite bool
)

// getCmd is the main flow: find the best subtitle for a video and write it
// next to the file.
var getCmd = &cobra.Command{
	Use:   "get <video-file>...",
	Short: "Download the best matching subtitle for a video",
	Long: `Finds the best subtitle for each given video file and writes it next to
the video (or into --output-dir). The best match is chosen by hash match
first, then preferred-language order, then download count.

Examples:
  subtle get /movies/Inception.2010.1080p.mkv
  subtle get --lang ell,eng --overwrite /series/Show.S01E02.mkv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGet,
}

func init() {
	RootCmd.AddCommand(getCmd)

	getCmd.Flags().StringVarP(&getLangs, "lang", "l", "", "comma-separated language codes (default from settings)")
	getCmd.Flags().StringVarP(&getMethods, "methods", "m", "", "comma-separated search methods: hash,imdb,text (default from settings)")
	getCmd.Flags().StringVar(&getIMDbID, "imdbid", "", "IMDb ID override (e.g. tt1375666)")
	getCmd.Flags().StringVarP(&getOutputDir, "output-dir", "o", "", "write subtitles here instead of next to the video")
	getCmd.Flags().BoolVar(&getOverwrite, "overwrite", false, "replace existing subtitle files")
}

func runGet(cmd *cobra.Command, args []string) error {
	methods, err := resolveMethods(getMethods)
	if err != nil {
		return err
	}

	outputDir := getOutputDir
	if outputDir == "" {
		outputDir = settings.DownloadDir()
	}
	overwrite := getOverwrite || settings.Overwrite()

	client, err := openSession()
	if err != nil {
		return err
	}
	defer client.Close()

	proc := processor.New(client, httpclient.New(constants.DefaultUserAgent), processor.Options{
		Methods:     methods,
		Languages:   resolveLanguages(getLangs),
		DownloadDir: outputDir,
		Overwrite:   overwrite,
	})

	var failed int
	for _, videoPath := range args {
		var result *processor.Result
		err := withRetry(fmt.Sprintf("download for %s", videoPath), func() error {
			var err error
			result, err = proc.Process(cmd.Context(), videoPath, getIMDbID)
			return err
		})
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", videoPath, err)
			failed++
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s, matched by %s, %d candidates)\n",
			result.VideoPath, result.SubtitlePath, result.Language,
			result.MatchedBy, result.Candidates)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d downloads failed", failed, len(args))
	}
	return nil
}
