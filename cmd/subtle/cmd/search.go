package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/eransh/subtle/internal/settings"
	"github.com/eransh/subtle/pkg/core/opensubtitles"
	"github.com/eransh/subtle/pkg/core/search"
	"github.com/eransh/subtle/pkg/processor"
)

var (
	searchLangs   string
	searchMethods string
	searchIMDbID  string
	searchQuery   string
	searchSeason  int
	searchEpisode int
	searchLimit   int
)

// searchCmd lists matching subtitles without downloading anything.
var searchCmd = &cobra.Command{
	Use:   "search [video-file]",
	Short: "Search for subtitles",
	Long: `Searches OpenSubtitles for subtitles matching a video file (by hash,
IMDb ID and/or filename, depending on the enabled search methods) or, with
--query/--imdbid and no file, by title text or IMDb ID alone.

Examples:
  subtle search /movies/Inception.2010.1080p.mkv
  subtle search --query "Inception" --lang eng,ell
  subtle search --imdbid tt1375666 --lang eng`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	RootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVarP(&searchLangs, "lang", "l", "", "comma-separated language codes (default from settings)")
	searchCmd.Flags().StringVarP(&searchMethods, "methods", "m", "", "comma-separated search methods: hash,imdb,text (default from settings)")
	searchCmd.Flags().StringVar(&searchIMDbID, "imdbid", "", "IMDb ID (e.g. tt1375666)")
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "title text to search for (instead of a video file)")
	searchCmd.Flags().IntVarP(&searchSeason, "season", "s", 0, "season number (with --query)")
	searchCmd.Flags().IntVarP(&searchEpisode, "episode", "e", 0, "episode number (with --query)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "maximum number of results to show")
}

// resolveLanguages returns the effective preferred-language list: the --lang
// override when given, the settings otherwise.
func resolveLanguages(flagValue string) []string {
	if flagValue == "" {
		return settings.Languages()
	}
	var langs []string
	for _, code := range strings.Split(flagValue, ",") {
		if code = strings.TrimSpace(code); code != "" {
			langs = append(langs, code)
		}
	}
	return langs
}

// resolveMethods returns the effective search-method set.
func resolveMethods(flagValue string) (search.Method, error) {
	if flagValue == "" {
		return search.ParseMethods(settings.SearchMethods())
	}
	return search.ParseMethods(strings.Split(flagValue, ","))
}

func runSearch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && searchQuery == "" && searchIMDbID == "" {
		return fmt.Errorf("provide a video file, --query or --imdbid")
	}

	languages := resolveLanguages(searchLangs)
	methods, err := resolveMethods(searchMethods)
	if err != nil {
		return err
	}

	client, err := openSession()
	if err != nil {
		return err
	}
	defer client.Close()

	var results []opensubtitles.SubtitleResult
	if len(args) == 1 {
		proc := processor.New(client, nil, processor.Options{
			Methods:   methods,
			Languages: languages,
		})
		err = withRetry("search", func() error {
			_, results, err = proc.Search(cmd.Context(), args[0], searchIMDbID)
			return err
		})
	} else {
		query := opensubtitles.SearchQuery{
			Languages: search.LanguageList(languages),
			IMDBID:    strings.TrimPrefix(searchIMDbID, "tt"),
			Query:     searchQuery,
			Season:    searchSeason,
			Episode:   searchEpisode,
		}
		err = withRetry("search", func() error {
			var raw []opensubtitles.SubtitleResult
			raw, err = client.SearchSubtitles([]opensubtitles.SearchQuery{query})
			if err != nil {
				return err
			}
			results = search.Rank(raw, languages)
			return nil
		})
	}
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No subtitles found matching the criteria.")
		return nil
	}

	shown := results
	if searchLimit > 0 && len(shown) > searchLimit {
		shown = shown[:searchLimit]
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Found %d subtitles (showing %d):\n", len(results), len(shown))
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tLANG\tMATCH\tDOWNLOADS\tRATING\tFILE ID\tNAME")
	for i, sub := range shown {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%.1f\t%s\t%s\n",
			i+1, sub.SubLanguageID, sub.MatchedBy, sub.SubDownloadsCnt,
			sub.SubRating, sub.IDSubtitleFile, sub.SubFileName)
	}
	return w.Flush()
}
