package matcher

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/questionnaire-cli/internal/questionnaire"
	"github.com/sells-group/questionnaire-cli/pkg/anthropic"
)

// Filler owns one reconciliation run: both stores, the LLM client, and the
// pipeline configuration. Stages run strictly in sequence, each mutating the
// unanswered store before the next reads it.
type Filler struct {
	ref       *questionnaire.Store
	unans     *questionnaire.Store
	client    anthropic.Client
	cfg       Config
	overrides Overrides
}

// Summary reports what a run did, for the end-of-run report.
type Summary struct {
	Total        int
	ExactMatched int
	SemanticSent int
	Matched      int
	NoMatch      int
	AnswerPairs  int
	AnswerScored int
}

// NewFiller builds a Filler. A nil overrides table falls back to the
// built-in default.
func NewFiller(ref, unans *questionnaire.Store, client anthropic.Client, cfg Config, overrides Overrides) *Filler {
	if overrides == nil {
		overrides = DefaultOverrides()
	}
	return &Filler{
		ref:       ref,
		unans:     unans,
		client:    client,
		cfg:       cfg,
		overrides: overrides,
	}
}

// Run executes the three stages: exact matching, semantic matching over the
// remainder, and answer-agreement scoring over matched pairs with divergent
// answers. Transport failures abort the run; unparseable collaborator
// responses degrade that stage to zero results.
func (f *Filler) Run(ctx context.Context) (*Summary, error) {
	sum := &Summary{Total: f.unans.Len()}

	remainingUnans, remainingRef := MatchExact(f.ref, f.unans, f.overrides)
	sum.ExactMatched = sum.Total - len(remainingUnans)
	sum.SemanticSent = len(remainingUnans)

	verdicts, err := MatchSemantic(ctx, f.client, f.cfg, remainingUnans, remainingRef)
	if err != nil {
		return nil, err
	}
	ApplyVerdicts(f.unans, verdicts)

	candidates := CollectAnswerCandidates(f.ref, f.unans)
	sum.AnswerPairs = len(candidates)

	results, err := ScoreAnswers(ctx, f.client, f.cfg, candidates)
	if err != nil {
		return nil, err
	}
	ApplyAnswerScores(f.unans, results)
	sum.AnswerScored = len(results)

	for _, rec := range f.unans.Records() {
		if rec.MatchedReference != "" {
			sum.Matched++
		} else {
			sum.NoMatch++
		}
	}

	zap.L().Info("matcher: run complete",
		zap.Int("total", sum.Total),
		zap.Int("exact_matched", sum.ExactMatched),
		zap.Int("matched", sum.Matched),
		zap.Int("no_match", sum.NoMatch),
		zap.Int("answer_pairs_scored_remotely", sum.AnswerScored),
	)

	return sum, nil
}

// Assemble joins the run's stores into the combined table.
func (f *Filler) Assemble() []Row {
	return Assemble(f.ref, f.unans)
}
