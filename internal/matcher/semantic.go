package matcher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/questionnaire-cli/internal/questionnaire"
	"github.com/sells-group/questionnaire-cli/pkg/anthropic"
)

// Config holds the pipeline knobs shared by the two LLM stages.
type Config struct {
	Model             string
	MatchMaxTokens    int64
	ScoreMaxTokens    int64
	ConfidenceFloor   float64 // service-side cutoff interpolated into the prompt
	AccuracyThreshold float64 // caller-side display cutoff, used only for flagging
}

// semanticSystemPrompt instructs the matcher to pair questions only on same
// subject + attribute + scope. The confidence floor is interpolated as a
// percentage; below it the service is told to answer no_match.
const semanticSystemPrompt = `You are QuestionnaireMatcher. Given a new question + answered candidates, return MATCH if exactly same intent, else NO_MATCH. SAME intent = same subject + attribute + scope (timeframe, jurisdiction, quantity, polarity). Be conservative: prefer NO_MATCH if unsure. Do not match general vs. specific (dog≠pets, car≠vehicle), different timeframe/jurisdiction/thresholds, or opposite polarity. Paraphrases ok if identical meaning. Only MATCH if confidence≥%.0f. Steps: 1) Normalize/extract. 2) If hard conflict, NO_MATCH. 3) Else compute similarity; require explicit subject match. 4) If below the confidence floor, NO_MATCH else MATCH. Examples MATCH: "Do you have a cat?"↔"Check yes if you have a cat.", "Currently employed full-time?"↔"Have a full-time job right now?". Examples NO_MATCH: "Dog?"↔"Pets?", "Currently insured?"↔"Ever had insurance?", "Registered in CA?"↔"Registered?".`

const semanticUserPrompt = `You will receive:
1) A list of UNMATCHED questions for the unanswered questionnaire.
2) A list of REFERENCE_CATALOG of questions for the reference questionnaire.

TASK:
For each UNMATCHED question, select the best-matching question from REFERENCE_CATALOG.

Rules:
- CRITICAL: Return ONLY valid JSON with this exact structure. Ensure all strings are properly escaped:
{
    "matches": [
        {
            "unmatched_question": "string",
            "match": {
                "matched_question": "string",
                "similarity": 0.85,
                "justification": "string"
            },
            "no_match": false
        }
    ]
}

Constraints:
- Keep justification one sentence, no hedging.
- If no adequate match exists, set no_match=true and match=null.
- Be deterministic.
- similarity should be 0.00 to 1.00
- Must return valid JSON object with "matches" array

Evaluation hints: Decompose into subject/attribute/scope; require explicit subject match; reject hypernym/hyponym jumps; align timeframe/jurisdiction/thresholds/units; enforce same polarity; don't match general↔specific; require full alignment for multi-part questions; distinguish policy vs. practice and state vs. proof; treat data types distinctly (PII/PHI/telemetry). Hard NOs: opposite polarity, numeric or timeframe conflict, jurisdiction mismatch, storage vs. transport, collect vs. retain vs. delete. For ties, prefer exact scope and threshold matches, then fewer assumptions.`

// MatchVerdict is the semantic matcher's decision for one unmatched question.
type MatchVerdict struct {
	UnmatchedQuestion string        `json:"unmatched_question"`
	Match             *VerdictMatch `json:"match"`
	NoMatch           bool          `json:"no_match"`
}

// VerdictMatch is the matched half of a verdict.
type VerdictMatch struct {
	MatchedQuestion string  `json:"matched_question"`
	Similarity      float64 `json:"similarity"`
	Justification   string  `json:"justification"`
}

// MatchSemantic sends the remaining unanswered questions and the remaining
// reference catalog to the matching collaborator in one request and returns
// its verdicts. A transport failure is fatal; a response that cannot be
// parsed yields zero verdicts and is logged, leaving the whole remainder
// unmatched.
func MatchSemantic(ctx context.Context, client anthropic.Client, cfg Config, remainingUnans, remainingRef []string) ([]MatchVerdict, error) {
	if len(remainingUnans) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(map[string][]string{
		"unanswered_questions": remainingUnans,
		"reference_questions":  remainingRef,
	})
	if err != nil {
		return nil, eris.Wrap(err, "matcher: marshal semantic payload")
	}

	temp := 0.0
	system := fmt.Sprintf(semanticSystemPrompt, cfg.ConfidenceFloor*100)
	resp, err := client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       cfg.Model,
		MaxTokens:   cfg.MatchMaxTokens,
		System:      anthropic.BuildCachedSystemBlocks(system),
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: "user", Content: semanticUserPrompt},
			{Role: "user", Content: string(payload)},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "matcher: semantic match request")
	}
	resp.Usage.LogCost(cfg.Model, "semantic_match")

	text := extractText(resp)
	var parsed struct {
		Matches []MatchVerdict `json:"matches"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(text)), &parsed); err != nil {
		zap.L().Warn("matcher: semantic match response is not valid JSON, discarding batch",
			zap.Error(err),
			zap.String("preview", preview(text, 200)),
		)
		return nil, nil
	}

	zap.L().Info("matcher: semantic match complete",
		zap.Int("sent", len(remainingUnans)),
		zap.Int("verdicts", len(parsed.Matches)),
	)
	return parsed.Matches, nil
}

// ApplyVerdicts writes semantic match verdicts back onto the unanswered
// store. A null match clears any reference link and zeroes the score.
func ApplyVerdicts(unans *questionnaire.Store, verdicts []MatchVerdict) {
	for _, v := range verdicts {
		rec, ok := unans.Get(questionnaire.Normalize(v.UnmatchedQuestion))
		if !ok {
			zap.L().Warn("matcher: verdict for unknown question",
				zap.String("question", v.UnmatchedQuestion),
			)
			continue
		}

		if v.Match != nil {
			rec.MatchedReference = questionnaire.Normalize(v.Match.MatchedQuestion)
			rec.QuestionScore = v.Match.Similarity
		} else {
			rec.MatchedReference = ""
			rec.QuestionScore = 0
		}
	}
}

// extractText concatenates all text content blocks from a message response.
func extractText(resp *anthropic.MessageResponse) string {
	if resp == nil {
		return ""
	}
	var parts []string
	for _, block := range resp.Content {
		if block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// cleanJSON attempts to extract a JSON object from text that may contain
// markdown code fences or other wrapping.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	// Strip markdown code fences.
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	// Find first { and last }.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

// preview truncates text to at most n bytes, backing up to a rune boundary
// so log previews stay valid UTF-8.
func preview(text string, n int) string {
	if len(text) <= n {
		return text
	}
	for n > 0 && !utf8.RuneStart(text[n]) {
		n--
	}
	return text[:n]
}
