package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/eransh/subtle/pkg/core/imdb"
)

var imdbRemote bool

// imdbCmd resolves a title to IMDb IDs, for feeding into `get --imdbid` or
// `search --imdbid` when hash and filename searches come up empty.
var imdbCmd = &cobra.Command{
	Use:   "imdb <title>",
	Short: "Look up IMDb IDs for a title",
	Long: `Looks up IMDb IDs matching a title, using the IMDb suggestion API
(or OpenSubtitles' own IMDb search with --remote). Useful when a video's
filename parses badly and you want to pin the search to an exact title.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIMDb,
}

func init() {
	RootCmd.AddCommand(imdbCmd)
	imdbCmd.Flags().BoolVar(&imdbRemote, "remote", false, "search through OpenSubtitles instead of the IMDb suggestion API")
}

func runIMDb(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	if imdbRemote {
		client, err := openSession()
		if err != nil {
			return err
		}
		defer client.Close()

		results, err := client.SearchMoviesOnIMDB(query)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Fprintln(out, "No titles found.")
			return nil
		}
		fmt.Fprintln(w, "ID\tTITLE")
		for _, m := range results {
			fmt.Fprintf(w, "tt%s\t%s\n", strings.TrimPrefix(m.ID, "tt"), m.Title)
		}
		return w.Flush()
	}

	suggestions, err := imdb.NewClient().Search(cmd.Context(), query)
	if err != nil {
		return err
	}
	if len(suggestions) == 0 {
		fmt.Fprintln(out, "No titles found.")
		return nil
	}
	fmt.Fprintln(w, "ID\tYEAR\tTITLE")
	for _, s := range suggestions {
		year := ""
		if s.Year > 0 {
			year = fmt.Sprintf("%d", s.Year)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.ID, year, s.Title)
	}
	return w.Flush()
}
