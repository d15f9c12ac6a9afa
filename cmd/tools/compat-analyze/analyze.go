package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"compatibility-workers/internal/common/auth"
	"compatibility-workers/internal/common/config"
	apperrors "compatibility-workers/internal/common/errors"
	"compatibility-workers/internal/common/logger"
	"compatibility-workers/internal/compatibility"
	"compatibility-workers/internal/scoring"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one candidate against one or more offers",
	Long:  "Runs one scoring call per offer concurrently and prints the analyses in the order the offers were given. The first failure cancels the remaining calls.",
	RunE:  runAnalyze,
}

var (
	analyzeConfigPath string
	analyzeCandidate  string
	analyzeOffers     []string
	analyzeOfferType  string
	analyzeTimeout    time.Duration
	analyzeJSON       bool
	analyzeLogLevel   string
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeConfigPath, "config", "c", "configs/config.yaml", "Path to the YAML configuration")
	analyzeCmd.Flags().StringVar(&analyzeCandidate, "candidate", "", "Candidate ID (required)")
	analyzeCmd.Flags().StringArrayVar(&analyzeOffers, "offer", nil, "Offer ID, repeatable (required)")
	analyzeCmd.Flags().StringVarP(&analyzeOfferType, "type", "t", "", "Offer type alias, e.g. emploi, consultation, financement (required)")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 0, "Per-analysis timeout (default: apis.scoring.timeout)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print analyses as JSON")
	analyzeCmd.Flags().StringVar(&analyzeLogLevel, "log-level", "warn", "Log level")

	for _, name := range []string{"candidate", "offer", "type"} {
		if err := analyzeCmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}

	rootCmd.AddCommand(analyzeCmd)
}

// Analyzer runs one compatibility analysis.
type Analyzer interface {
	Analyze(ctx context.Context, candidateID, offerID, offerTypeAlias string) (*compatibility.Analysis, error)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadScoring(analyzeConfigPath)
	if err != nil {
		return err
	}

	log := logger.NewStructured(analyzeLogLevel, "console", "stderr")

	var tokens auth.TokenSource
	if kc := cfg.Auth.Keycloak; kc.Enabled() {
		tokens = auth.NewKeycloakClient(kc.URL, kc.Realm, kc.ClientID, kc.ClientSecret)
	} else if cfg.APIs.Scoring.APIKey != "" {
		tokens = auth.StaticToken(cfg.APIs.Scoring.APIKey)
	}

	timeout := analyzeTimeout
	if timeout <= 0 {
		timeout = config.GetDuration(cfg.APIs.Scoring.Timeout)
	}

	client := scoring.NewClient(scoring.Config{
		BaseURL:     cfg.APIs.Scoring.BaseURL,
		AnalyzePath: cfg.APIs.Scoring.AnalyzePath,
		Timeout:     timeout,
	}, tokens, log)

	analyses, err := runAnalyses(cmd.Context(), compatibility.NewAnalyzer(client, log),
		analyzeCandidate, analyzeOffers, analyzeOfferType, timeout)
	if err != nil {
		return describeError(err)
	}

	if analyzeJSON {
		return printJSON(cmd.OutOrStdout(), analyses)
	}
	printText(cmd.OutOrStdout(), analyses)
	return nil
}

// runAnalyses analyzes every offer concurrently; results keep the order of offerIDs.
func runAnalyses(ctx context.Context, analyzer Analyzer, candidateID string, offerIDs []string, alias string, timeout time.Duration) ([]*compatibility.Analysis, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	results := make([]*compatibility.Analysis, len(offerIDs))
	g, gCtx := errgroup.WithContext(ctx)

	for i, offerID := range offerIDs {
		i, offerID := i, offerID
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gCtx, timeout)
			defer cancel()

			analysis, err := analyzer.Analyze(callCtx, candidateID, offerID, alias)
			if err != nil {
				return fmt.Errorf("offer %s: %w", offerID, err)
			}
			results[i] = analysis
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// describeError appends the user-facing hint of retryable failures, or the known
// kinds when the offer type was not recognized.
func describeError(err error) error {
	if apperrors.HasCode(err, apperrors.ErrCodeInvalidOfferType) {
		stdErr, _ := apperrors.AsStandardError(err)
		return fmt.Errorf("%w (offer type %q matches none of %s)", err, stdErr.Alias(), knownKinds())
	}
	if stdErr, ok := apperrors.AsStandardError(err); ok && stdErr.Hint() != "" {
		return fmt.Errorf("%w (%s)", err, stdErr.Hint())
	}
	return err
}

func knownKinds() string {
	names := make([]string, len(compatibility.OfferKinds))
	for i, kind := range compatibility.OfferKinds {
		names[i] = kind.String()
	}
	return strings.Join(names, ", ")
}

func printJSON(w io.Writer, analyses []*compatibility.Analysis) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(analyses)
}

func printText(w io.Writer, analyses []*compatibility.Analysis) {
	for i, a := range analyses {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "Offer %s (%s) for candidate %s\n", a.OfferID, a.OfferKind, a.CandidateID)
		fmt.Fprintf(w, "  Score: %.1f  %s [%s]\n", a.CompatibilityScore, a.Tier.Text, a.RecommendationCategory)
		if a.ServiceRecommendation != "" {
			fmt.Fprintf(w, "  Service recommendation: %s\n", a.ServiceRecommendation)
		}
		printScores(w, a)
		printList(w, "Strengths", a.Strengths)
		printList(w, "Weaknesses", a.Weaknesses)
		printList(w, "Recommendations", a.Recommendations)
	}
}

func printScores(w io.Writer, a *compatibility.Analysis) {
	keys := compatibility.DetailedKeys(a.OfferKind)
	if len(keys) == 0 {
		return
	}
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%.1f", key, a.DetailedScores[key]))
	}
	fmt.Fprintf(w, "  Detail: %s\n", strings.Join(parts, " "))
}

func printList(w io.Writer, title string, items []string) {
	fmt.Fprintf(w, "  %s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "    - %s\n", item)
	}
}
