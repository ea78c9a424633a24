package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/VictorBaumgartner/detect-errors/pkg/platforms"
	"github.com/VictorBaumgartner/detect-errors/pkg/search"
	_ "github.com/VictorBaumgartner/detect-errors/pkg/search/duckduckgo" // Import for side effects (provider registration)
)

// sitesCmd represents the sites command
var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "Show the recognized platforms and search providers",
	Long: `Sites prints the registrable domains the classifier recognizes, the
platform each maps to, which of them are queried for replacement
suggestions, and the registered search providers.

Examples:
  detect-errors sites
  detect-errors sites -o json`,
	RunE: runSites,
}

func runSites(cmd *cobra.Command, args []string) error {
	classifier := platforms.NewClassifier()
	suggestionSites := platforms.SuggestionSites()

	suggested := make(map[string]bool, len(suggestionSites))
	for _, site := range suggestionSites {
		suggested[site] = true
	}

	if output == "json" {
		type siteInfo struct {
			Domain     string         `json:"domain"`
			Platform   platforms.Kind `json:"platform"`
			Suggestion bool           `json:"suggestion_site"`
		}

		domains := classifier.Domains()
		sites := make([]siteInfo, 0, len(domains))
		for _, domain := range domains {
			kind, _ := classifier.Lookup(domain)
			sites = append(sites, siteInfo{
				Domain:     domain,
				Platform:   kind,
				Suggestion: suggested[domain],
			})
		}

		payload := struct {
			Sites     []siteInfo `json:"sites"`
			Providers []string   `json:"providers"`
		}{
			Sites:     sites,
			Providers: search.Providers(),
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	}

	domains := classifier.Domains()
	sort.Strings(domains)

	fmt.Printf("Recognized Domains (%d):\n\n", len(domains))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DOMAIN\tPLATFORM\tSUGGESTIONS")
	fmt.Fprintln(w, "------\t--------\t-----------")
	for _, domain := range domains {
		kind, _ := classifier.Lookup(domain)
		mark := ""
		if suggested[domain] {
			mark = "✓"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", domain, kind, mark)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nSearch Providers: %v\n", search.Providers())
	return nil
}

func init() {
	rootCmd.AddCommand(sitesCmd)
}
