package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/eransh/subtle/internal/settings"
)

var languagesAll bool

// languagesCmd shows or changes the preferred subtitle languages.
var languagesCmd = &cobra.Command{
	Use:   "languages [codes...]",
	Short: "Show or set preferred subtitle languages",
	Long: `Without arguments, shows the configured preferred languages (in order).
With language codes as arguments, replaces the preference list and saves it.
Codes are OpenSubtitles sublanguageids (ISO 639-2, e.g. eng, ell, fre).

Examples:
  subtle languages
  subtle languages ell eng
  subtle languages --all`,
	RunE: runLanguages,
}

func init() {
	RootCmd.AddCommand(languagesCmd)
	languagesCmd.Flags().BoolVar(&languagesAll, "all", false, "list all languages the service supports")
}

// displayName resolves a language code to its English display name, falling
// back to the code itself for anything x/text cannot parse.
func displayName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return code
}

func runLanguages(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if languagesAll {
		client, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()

		var langs []struct{ id, name, iso string }
		err = withRetry("language listing", func() error {
			remote, err := client.GetSubLanguages("en")
			if err != nil {
				return err
			}
			langs = langs[:0]
			for _, l := range remote {
				langs = append(langs, struct{ id, name, iso string }{l.SubLanguageID, l.LanguageName, l.ISO639})
			}
			return nil
		})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tISO\tNAME")
		for _, l := range langs {
			fmt.Fprintf(w, "%s\t%s\t%s\n", l.id, l.iso, l.name)
		}
		return w.Flush()
	}

	if len(args) > 0 {
		var codes []string
		for _, arg := range args {
			for _, code := range strings.Split(arg, ",") {
				if code = strings.TrimSpace(code); code != "" {
					codes = append(codes, strings.ToLower(code))
				}
			}
		}
		settings.SetLanguages(codes)
		if err := settings.Save(); err != nil {
			return err
		}
		fmt.Fprintf(out, "Preferred languages set to: %s\n", strings.Join(codes, ", "))
		return nil
	}

	codes := settings.Languages()
	if len(codes) == 0 {
		fmt.Fprintln(out, "No preferred languages configured (searches default to English).")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER\tCODE\tNAME")
	for i, code := range codes {
		fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, code, displayName(code))
	}
	return w.Flush()
}
