package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/VictorBaumgartner/detect-errors/internal/record"
	"github.com/VictorBaumgartner/detect-errors/pkg/platforms"
)

// linksCmd represents the links command
var linksCmd = &cobra.Command{
	Use:   "links <record.json>",
	Short: "List the URLs found in a record with their platform",
	Long: `Links walks the whole record and prints every URL it contains with
the platform its domain maps to. Unrecognized domains are kept and
labeled Unknown, which makes this the quickest way to see what a
record actually links to before running a full verification.

Examples:
  detect-errors links business.json
  detect-errors links business.json -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runLinks,
}

// discoveredLink pairs a URL with its classification for listing output.
type discoveredLink struct {
	URL      string         `json:"url"`
	Platform platforms.Kind `json:"platform"`
	Domain   string         `json:"domain,omitempty"`
}

func runLinks(cmd *cobra.Command, args []string) error {
	rec, err := record.Load(args[0])
	if err != nil {
		return err
	}

	classifier := platforms.NewClassifier()

	urls := record.ExtractURLs(rec)
	links := make([]discoveredLink, 0, len(urls))
	for _, u := range urls {
		links = append(links, discoveredLink{
			URL:      u,
			Platform: classifier.Classify(u),
			Domain:   platforms.RegistrableDomain(u),
		})
	}

	if output == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		encoder.SetEscapeHTML(false)
		return encoder.Encode(links)
	}

	if len(links) == 0 {
		fmt.Println("No URLs found in record.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PLATFORM\tDOMAIN\tURL")
	fmt.Fprintln(w, "--------\t------\t---")
	for _, link := range links {
		fmt.Fprintf(w, "%s\t%s\t%s\n", link.Platform, link.Domain, link.URL)
	}
	return w.Flush()
}

func init() {
	rootCmd.AddCommand(linksCmd)
}
