package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/questionnaire-cli/internal/matcher"
	"github.com/sells-group/questionnaire-cli/internal/questionnaire"
	"github.com/sells-group/questionnaire-cli/pkg/anthropic"
)

var fillCmd = &cobra.Command{
	Use:   "fill REFERENCE UNANSWERED",
	Short: "Fill an unanswered questionnaire from a reference questionnaire",
	Long: `Reconciles two questionnaire files (.csv or .xlsx).

Every question in UNANSWERED is matched against REFERENCE, first by exact
normalized text (plus the override table), then semantically via Claude for
the remainder. Matched pairs with divergent answers are scored for
agreement in a second Claude call. The combined table annotates each row
with the matched reference question, its 1-based row, the copied reference
answer, and both scores; .xlsx output highlights scores below the accuracy
threshold for review.

Examples:
  # CSV in, styled Excel out
  questionnaire-cli fill data/reference.csv data/unanswered.csv --output combined.xlsx

  # Custom column names on the reference side
  questionnaire-cli fill ref.xlsx unans.csv --ref-question-col "Question - Full" --ref-answer-col "Answer - Full"

  # External override table and a stricter review threshold
  questionnaire-cli fill ref.csv unans.csv --overrides overrides.yaml --threshold 0.9`,
	Args: cobra.ExactArgs(2),
	RunE: runFill,
}

func init() {
	f := fillCmd.Flags()
	f.String("ref-question-col", "", "reference questionnaire question column (default from config)")
	f.String("ref-answer-col", "", "reference questionnaire answer column (default from config)")
	f.String("unans-question-col", "", "unanswered questionnaire question column (default from config)")
	f.String("unans-answer-col", "", "unanswered questionnaire answer column (default from config)")
	f.String("output", "combined_questionnaire.xlsx", "output file path (.xlsx for styling, anything else for CSV)")
	f.String("overrides", "", "YAML file mapping question rewordings to reference questions")
	f.Float64("threshold", 0, "accuracy threshold for flagging low scores (overrides config)")
	f.String("model", "", "Claude model (overrides config)")

	rootCmd.AddCommand(fillCmd)
}

func runFill(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate(); err != nil {
		return err
	}

	log := zap.L().With(
		zap.String("command", "fill"),
		zap.String("run_id", uuid.NewString()),
	)

	refPath, unansPath := args[0], args[1]
	outputPath, _ := cmd.Flags().GetString("output")
	overridesPath, _ := cmd.Flags().GetString("overrides")

	refCols := questionnaire.Columns{
		Question: flagOr(cmd, "ref-question-col", cfg.Columns.RefQuestion),
		Answer:   flagOr(cmd, "ref-answer-col", cfg.Columns.RefAnswer),
	}
	unansCols := questionnaire.Columns{
		Question: flagOr(cmd, "unans-question-col", cfg.Columns.UnansQuestion),
		Answer:   flagOr(cmd, "unans-answer-col", cfg.Columns.UnansAnswer),
	}

	matcherCfg := matcher.Config{
		Model:             flagOr(cmd, "model", cfg.Anthropic.Model),
		MatchMaxTokens:    cfg.Anthropic.MatchMaxTokens,
		ScoreMaxTokens:    cfg.Anthropic.ScoreMaxTokens,
		ConfidenceFloor:   cfg.Matcher.ConfidenceFloor,
		AccuracyThreshold: cfg.Matcher.AccuracyThreshold,
	}
	if v, _ := cmd.Flags().GetFloat64("threshold"); v > 0 {
		matcherCfg.AccuracyThreshold = v
	}

	if overridesPath == "" {
		overridesPath = cfg.Matcher.OverridesPath
	}
	overrides := matcher.Overrides(nil)
	if overridesPath != "" {
		var err error
		overrides, err = matcher.LoadOverrides(overridesPath)
		if err != nil {
			return err
		}
	}

	log.Info("loading questionnaires",
		zap.String("reference", refPath),
		zap.String("unanswered", unansPath),
	)

	ref, err := questionnaire.Load(refPath, questionnaire.RoleReference, refCols)
	if err != nil {
		return eris.Wrap(err, "fill: load reference")
	}
	unans, err := questionnaire.Load(unansPath, questionnaire.RoleUnanswered, unansCols)
	if err != nil {
		return eris.Wrap(err, "fill: load unanswered")
	}

	client := anthropic.NewClient(cfg.Anthropic.Key, cfg.Anthropic.Timeout())
	filler := matcher.NewFiller(ref, unans, client, matcherCfg, overrides)

	sum, err := filler.Run(ctx)
	if err != nil {
		return eris.Wrap(err, "fill: run pipeline")
	}

	rows := filler.Assemble()
	if err := matcher.WriteCombined(outputPath, rows, matcherCfg.AccuracyThreshold); err != nil {
		return eris.Wrap(err, "fill: write output")
	}

	printFillSummary(sum, outputPath)
	return nil
}

// flagOr returns the flag's value if set, otherwise the fallback.
func flagOr(cmd *cobra.Command, name, fallback string) string {
	if v, _ := cmd.Flags().GetString(name); v != "" {
		return v
	}
	return fallback
}

func printFillSummary(sum *matcher.Summary, outputPath string) {
	fmt.Printf("\n--- Summary ---\n")
	fmt.Printf("Total questions:      %d\n", sum.Total)
	fmt.Printf("Exact matches:        %d\n", sum.ExactMatched)
	fmt.Printf("Sent to matcher:      %d\n", sum.SemanticSent)
	fmt.Printf("Matched:              %d\n", sum.Matched)
	fmt.Printf("No match found:       %d\n", sum.NoMatch)
	fmt.Printf("Answer pairs scored:  %d of %d divergent\n", sum.AnswerScored, sum.AnswerPairs)
	if sum.Total > 0 {
		fmt.Printf("Match rate:           %.1f%%\n", float64(sum.Matched)/float64(sum.Total)*100)
	}
	fmt.Printf("Combined questionnaire saved to %s\n", outputPath)
}
