package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eransh/subtle/internal/constants"
	"github.com/eransh/subtle/internal/httpclient"
	"github.com/eransh/subtle/internal/settings"
	coreerrors "github.com/eransh/subtle/pkg/core/errors"
	"github.com/eransh/subtle/pkg/core/fileops"
	"github.com/eransh/subtle/pkg/core/queue"
	"github.com/eransh/subtle/pkg/processor"
)

var (
	scanLangs     string
	scanMethods   string
	scanOverwrite bool
	scanResume    bool
	scanDryRun    bool
	scanClear     bool
)

// scanCmd walks a directory for videos without subtitles, queues them and
// downloads a subtitle for each, one remote call at a time. The queue is
// persisted so an interrupted scan resumes where it stopped.
var scanCmd = &cobra.Command{
	Use:   "scan <directory>",
	Short: "Fetch subtitles for every video in a directory tree",
	Long: `Walks a directory tree, queues every video file that has no subtitle
next to it, and downloads the best match for each. Progress is persisted
under the config directory; use --resume to continue an interrupted run
without re-scanning.`,
	Args: cobra.RangeArgs(0, 1),
	RunE: runScan,
}

func init() {
	RootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVarP(&scanLangs, "lang", "l", "", "comma-separated language codes (default from settings)")
	scanCmd.Flags().StringVarP(&scanMethods, "methods", "m", "", "comma-separated search methods: hash,imdb,text (default from settings)")
	scanCmd.Flags().BoolVar(&scanOverwrite, "overwrite", false, "also fetch for videos that already have subtitles")
	scanCmd.Flags().BoolVar(&scanResume, "resume", false, "process the existing queue without scanning")
	scanCmd.Flags().BoolVar(&scanDryRun, "dry-run", false, "only queue, do not download")
	scanCmd.Flags().BoolVar(&scanClear, "clear", false, "drop all pending jobs and exit")
}

func runScan(cmd *cobra.Command, args []string) error {
	if !scanResume && !scanClear && len(args) == 0 {
		return fmt.Errorf("provide a directory to scan, or --resume/--clear for the existing queue")
	}

	configDir, err := settings.ConfigDir()
	if err != nil {
		return err
	}
	manager, err := queue.NewManager(configDir)
	if err != nil {
		return err
	}

	if scanClear {
		dropped := len(manager.Pending())
		if err := manager.Clear(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Dropped %d pending job(s) from the queue.\n", dropped)
		return nil
	}

	if len(args) == 1 {
		videos, err := fileops.FindVideoFiles(args[0])
		if err != nil {
			return err
		}
		var wanted []string
		for _, video := range videos {
			if !scanOverwrite && fileops.HasExistingSubtitle(video) {
				continue
			}
			wanted = append(wanted, video)
		}
		added, err := manager.Add(wanted...)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Scanned %s: %d video(s) found, %d queued.\n",
			args[0], len(videos), added)
	}

	pending := manager.Pending()
	if len(pending) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to do: queue is empty.")
		return nil
	}
	if scanDryRun {
		for _, job := range pending {
			fmt.Fprintf(cmd.OutOrStdout(), "queued: %s\n", job.VideoPath)
		}
		return nil
	}

	methods, err := resolveMethods(scanMethods)
	if err != nil {
		return err
	}

	client, err := openSession()
	if err != nil {
		return err
	}
	defer client.Close()

	proc := processor.New(client, httpclient.New(constants.DefaultUserAgent), processor.Options{
		Methods:   methods,
		Languages: resolveLanguages(scanLangs),
		Overwrite: scanOverwrite || settings.Overwrite(),
	})

	var done, skipped, failures int
	for _, job := range pending {
		if err := cmd.Context().Err(); err != nil {
			return err
		}

		result, err := proc.Process(cmd.Context(), job.VideoPath, "")
		switch {
		case err == nil:
			done++
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", job.VideoPath, result.SubtitlePath)
			if err := manager.Complete(job.VideoPath, queue.StatusDone, "", result.SubtitlePath, result.Language); err != nil {
				return err
			}
		case errors.Is(err, coreerrors.ErrNoResults):
			skipped++
			fmt.Fprintf(cmd.OutOrStdout(), "%s: no subtitles found\n", job.VideoPath)
			if err := manager.Complete(job.VideoPath, queue.StatusSkipped, "no results", "", ""); err != nil {
				return err
			}
		case errors.Is(err, coreerrors.ErrDownloadLimitReached):
			// Stop the run; remaining jobs stay queued for --resume.
			fmt.Fprintf(cmd.ErrOrStderr(), "Download limit reached; %d job(s) left queued. Re-run with --resume later.\n",
				len(pending)-done-skipped-failures)
			return err
		default:
			failures++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", job.VideoPath, err)
			if err := manager.Complete(job.VideoPath, queue.StatusFailed, err.Error(), "", ""); err != nil {
				return err
			}
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Scan complete: %d downloaded, %d without results, %d failed.\n",
		done, skipped, failures)
	if failures > 0 {
		return fmt.Errorf("%d job(s) failed", failures)
	}
	return nil
}
