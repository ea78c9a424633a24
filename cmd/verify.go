package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/VictorBaumgartner/detect-errors/internal/record"
	"github.com/VictorBaumgartner/detect-errors/internal/verify"
	"github.com/VictorBaumgartner/detect-errors/pkg/platforms"
	"github.com/VictorBaumgartner/detect-errors/pkg/search"
	_ "github.com/VictorBaumgartner/detect-errors/pkg/search/duckduckgo" // Import for side effects (provider registration)
)

var (
	timeoutFlag   int
	workersFlag   int
	languageFlag  string
	policyFlag    string
	strategyFlag  string
	thresholdFlag float64
	retriesFlag   uint
	noSuggestFlag bool
	providerFlag  string
	outFileFlag   string
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <record.json>",
	Short: "Verify the social links of a business record",
	Long: `Verify extracts every URL from a business record, fetches the ones
pointing at known platforms, scores each page against the business
name, city and activity tags, and looks up replacement candidates for
platforms without a confirmed link.

Examples:
  detect-errors verify business.json
  detect-errors verify business.json --language fr-FR --workers 8
  detect-errors verify business.json -o json --out results.json
  detect-errors verify business.json --policy permissive --no-suggest`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	rec, err := record.Load(args[0])
	if err != nil {
		return err
	}

	var searcher search.Searcher
	if !noSuggestFlag {
		provider, ok := search.Get(providerFlag)
		if !ok {
			return fmt.Errorf("unknown search provider %q (available: %v)", providerFlag, search.Providers())
		}
		searcher = provider
	}

	options := verify.Options{
		Timeout:       time.Duration(timeoutFlag) * time.Second,
		Locale:        languageFlag,
		Workers:       workersFlag,
		Policy:        platforms.ParsePolicy(policyFlag),
		Strategy:      strategyFlag,
		Threshold:     thresholdFlag,
		RetryAttempts: retriesFlag,
		Suggestions:   !noSuggestFlag,
	}

	verifier, err := verify.New(options, searcher, logger)
	if err != nil {
		return err
	}

	verdicts, err := verifier.Run(context.Background(), rec)
	if err != nil {
		return fmt.Errorf("verification aborted: %w", err)
	}

	return outputVerdicts(verdicts)
}

func outputVerdicts(verdicts []verify.Verdict) error {
	if outFileFlag != "" {
		f, err := os.Create(outFileFlag)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()

		encoder := json.NewEncoder(f)
		encoder.SetIndent("", "  ")
		encoder.SetEscapeHTML(false)
		return encoder.Encode(verdicts)
	}

	switch output {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		encoder.SetEscapeHTML(false)
		return encoder.Encode(verdicts)
	case "human", "":
		outputHuman(verdicts)
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", output)
	}
}

func outputHuman(verdicts []verify.Verdict) {
	if len(verdicts) == 0 {
		fmt.Println("No platform links found.")
		return
	}

	for _, v := range verdicts {
		switch {
		case v.InitialURL == nil && v.SuggestedURL != nil:
			fmt.Printf("💡 %s: suggested %s\n", v.Platform, *v.SuggestedURL)
		case v.Relevant:
			fmt.Printf("✅ %s: %s (score %.2f)\n", v.Platform, derefOr(v.FinalURL, *v.InitialURL), v.Score)
		default:
			fmt.Printf("❌ %s: %s", v.Platform, *v.InitialURL)
			if v.Error != nil {
				fmt.Printf(" — %s", *v.Error)
			}
			fmt.Println()
			if v.SuggestedURL != nil {
				fmt.Printf("   💡 try %s\n", *v.SuggestedURL)
			}
		}
	}
}

func derefOr(s *string, fallback string) string {
	if s != nil && *s != "" {
		return *s
	}
	return fallback
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().IntVarP(&timeoutFlag, "timeout", "t", 10, "timeout in seconds for each fetch")
	verifyCmd.Flags().IntVarP(&workersFlag, "workers", "w", 4, "number of concurrent fetches")
	verifyCmd.Flags().StringVarP(&languageFlag, "language", "l", "fr-FR", "Accept-Language sent to target pages")
	verifyCmd.Flags().StringVar(&policyFlag, "policy", "strict", "unknown-domain policy (strict, permissive)")
	verifyCmd.Flags().StringVar(&strategyFlag, "strategy", "terms", "scoring strategy (terms, similarity)")
	verifyCmd.Flags().Float64Var(&thresholdFlag, "threshold", 0, "relevance threshold override (0 = strategy default)")
	verifyCmd.Flags().UintVar(&retriesFlag, "retries", 1, "fetch attempts per URL")
	verifyCmd.Flags().BoolVar(&noSuggestFlag, "no-suggest", false, "skip searching for replacement links")
	verifyCmd.Flags().StringVar(&providerFlag, "provider", "duckduckgo", "search provider for suggestions")
	verifyCmd.Flags().StringVar(&outFileFlag, "out", "", "write JSON results to a file")

	_ = viper.BindPFlag("verify.timeout", verifyCmd.Flags().Lookup("timeout"))
	_ = viper.BindPFlag("verify.workers", verifyCmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("verify.language", verifyCmd.Flags().Lookup("language"))
	_ = viper.BindPFlag("verify.threshold", verifyCmd.Flags().Lookup("threshold"))
}
