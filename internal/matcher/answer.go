package matcher

import (
	"context"
	"encoding/json"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/questionnaire-cli/internal/questionnaire"
	"github.com/sells-group/questionnaire-cli/pkg/anthropic"
)

const answerSystemPrompt = `You are AnswerMatcher. Given two answers to a question, you will return the answer match score. The answer match score is a number between 0 and 1, where 1 is the best match and 0 is the worst match. The answer match score is based on the similarity of the two answers to a question.`

const answerUserPrompt = `You will receive questions with answer pairs to score for semantic similarity.

CRITICAL: Return ONLY valid JSON with this exact structure. Ensure all strings are properly escaped:
{
    "results": [
        {
            "q": "question text",
            "s": 0.85
        }
    ]
}

IMPORTANT JSON RULES:
- Escape all quotes, backslashes, and special characters in question text
- Use proper JSON number format for scores (0.0 to 1.0)
- Ensure the JSON is complete and well-formed
- Do not truncate the response - include all items

Scoring:
1.0 same meaning; 0.9–0.99 tiny nuance; 0.7–0.89 same stance but weaker/hedged; 0.4–0.69 partial; 0.1–0.39 mostly different; 0.0 contradiction/different entity/empty.
Rules: Identity same=1.0 else 0.0; Yes/No yes↔yes=1.0, yes↔no=0.0, yes↔"not yet/working on it"≈0.25–0.40; Numbers equal=1.0, ±10%=0.9, ±25%=0.7, ±50%=0.45, >50%=0.1; scope/timeframe/polarity mismatch → low/0; multi-part needs both parts.

Score each question-answer pair based on semantic similarity of a1 vs a2 given the question context.`

// AnswerCandidate is one divergent question/answer pair headed for the
// scoring collaborator.
type AnswerCandidate struct {
	Question string `json:"q"`
	A1       string `json:"a1"`
	A2       string `json:"a2"`
}

// AnswerScoreResult is the collaborator's score for one pair.
type AnswerScoreResult struct {
	Question string  `json:"q"`
	Score    float64 `json:"s"`
}

// hasMeaningfulContent reports whether a value counts as a real answer:
// non-empty after trimming, not a textual null/NaN, and containing at least
// one alphanumeric character. Pure punctuation does not count.
func hasMeaningfulContent(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "", "nan", "none", "null":
		return false
	}
	for _, r := range strings.TrimSpace(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// CollectAnswerCandidates scans the unanswered store for records that have a
// reference match and a meaningful current answer. Pairs whose answers are
// identical after trimming are scored 1 in place and excluded; the divergent
// remainder is returned for the scoring collaborator.
func CollectAnswerCandidates(ref, unans *questionnaire.Store) []AnswerCandidate {
	var candidates []AnswerCandidate
	for _, rec := range unans.Records() {
		if rec.MatchedReference == "" || !hasMeaningfulContent(rec.Answer) {
			continue
		}

		refRec, ok := ref.Get(rec.MatchedReference)
		if !ok {
			// Override targets and model echoes may name a question the
			// reference file does not actually contain.
			zap.L().Debug("matcher: matched reference not in reference store, skipping answer scoring",
				zap.String("question", rec.Text),
				zap.String("matched_reference", rec.MatchedReference),
			)
			continue
		}

		if strings.TrimSpace(rec.Answer) == strings.TrimSpace(refRec.Answer) {
			rec.AnswerScore = 1
			continue
		}

		candidates = append(candidates, AnswerCandidate{
			Question: rec.Text,
			A1:       rec.Answer,
			A2:       refRec.Answer,
		})
	}
	return candidates
}

// ScoreAnswers sends all divergent answer pairs to the scoring collaborator
// in one request. A transport failure is fatal; an unparseable response
// yields zero results and is logged, leaving prior scores untouched.
func ScoreAnswers(ctx context.Context, client anthropic.Client, cfg Config, candidates []AnswerCandidate) ([]AnswerScoreResult, error) {
	if len(candidates) == 0 {
		zap.L().Info("matcher: no divergent answer pairs to score")
		return nil, nil
	}

	payload, err := json.Marshal(map[string][]AnswerCandidate{
		"questions": candidates,
	})
	if err != nil {
		return nil, eris.Wrap(err, "matcher: marshal answer payload")
	}

	temp := 0.0
	resp, err := client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       cfg.Model,
		MaxTokens:   cfg.ScoreMaxTokens,
		System:      anthropic.BuildCachedSystemBlocks(answerSystemPrompt),
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: "user", Content: answerUserPrompt},
			{Role: "user", Content: string(payload)},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "matcher: answer score request")
	}
	resp.Usage.LogCost(cfg.Model, "answer_score")

	text := extractText(resp)
	var parsed struct {
		Results []AnswerScoreResult `json:"results"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(text)), &parsed); err != nil {
		zap.L().Warn("matcher: answer score response is not valid JSON, discarding batch",
			zap.Error(err),
			zap.Int("content_len", len(text)),
			zap.String("preview", preview(text, 500)),
		)
		return nil, nil
	}

	zap.L().Info("matcher: answer scoring complete",
		zap.Int("sent", len(candidates)),
		zap.Int("scored", len(parsed.Results)),
	)
	return parsed.Results, nil
}

// ApplyAnswerScores writes collaborator scores back onto the unanswered
// store. Questions the collaborator did not return keep their prior score.
func ApplyAnswerScores(unans *questionnaire.Store, results []AnswerScoreResult) {
	for _, r := range results {
		rec, ok := unans.Get(questionnaire.Normalize(r.Question))
		if !ok {
			zap.L().Warn("matcher: answer score for unknown question",
				zap.String("question", r.Question),
			)
			continue
		}
		rec.AnswerScore = r.Score
	}
}
