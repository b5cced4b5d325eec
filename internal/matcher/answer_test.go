package matcher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/questionnaire-cli/internal/questionnaire"
	"github.com/sells-group/questionnaire-cli/pkg/anthropic"
)

func TestHasMeaningfulContent(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"Yes", true},
		{"42", true},
		{"  padded  ", true},
		{"", false},
		{"   ", false},
		{"nan", false},
		{"NaN", false},
		{" nan ", false},
		{"none", false},
		{"null", false},
		{"!!!", false},
		{"- / -", false},
		{"n/a", true}, // contains letters; treated as a real answer
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, hasMeaningfulContent(tc.in), "input %q", tc.in)
	}
}

func TestCollectAnswerCandidates_IdenticalScoredLocally(t *testing.T) {
	ref := buildStore(questionnaire.RoleReference,
		[2]string{"What is your company name?", "Acme Corp"},
	)
	unans := buildStore(questionnaire.RoleUnanswered,
		[2]string{"What is your company name?", "  Acme Corp "},
	)
	rec, _ := unans.Get("What is your company name?")
	rec.MatchedReference = "What is your company name?"
	rec.QuestionScore = 1

	candidates := CollectAnswerCandidates(ref, unans)

	assert.Empty(t, candidates)
	assert.Equal(t, 1.0, rec.AnswerScore)
}

func TestCollectAnswerCandidates_DivergentForwarded(t *testing.T) {
	ref := buildStore(questionnaire.RoleReference,
		[2]string{"Do you encrypt data at rest?", "No"},
	)
	unans := buildStore(questionnaire.RoleUnanswered,
		[2]string{"Do you encrypt data at rest?", "Yes"},
	)
	rec, _ := unans.Get("Do you encrypt data at rest?")
	rec.MatchedReference = "Do you encrypt data at rest?"

	candidates := CollectAnswerCandidates(ref, unans)

	require.Len(t, candidates, 1)
	assert.Equal(t, AnswerCandidate{
		Question: "Do you encrypt data at rest?",
		A1:       "Yes",
		A2:       "No",
	}, candidates[0])
	assert.Equal(t, 0.0, rec.AnswerScore)
}

func TestCollectAnswerCandidates_SkipsUnmatchedAndMeaningless(t *testing.T) {
	ref := buildStore(questionnaire.RoleReference,
		[2]string{"r1", "Yes"},
	)
	unans := buildStore(questionnaire.RoleUnanswered,
		[2]string{"no match", "Yes"},
		[2]string{"empty answer", ""},
		[2]string{"nan answer", "nan"},
		[2]string{"whitespace answer", "   "},
	)
	for _, key := range []string{"empty answer", "nan answer", "whitespace answer"} {
		rec, _ := unans.Get(key)
		rec.MatchedReference = "r1"
	}

	candidates := CollectAnswerCandidates(ref, unans)

	assert.Empty(t, candidates)
	for _, rec := range unans.Records() {
		assert.Equal(t, 0.0, rec.AnswerScore, "record %q", rec.Text)
	}
}

func TestCollectAnswerCandidates_MatchedReferenceMissingFromStore(t *testing.T) {
	// Override targets may name a question the reference file lacks.
	ref := buildStore(questionnaire.RoleReference, [2]string{"r1", "x"})
	unans := buildStore(questionnaire.RoleUnanswered, [2]string{"u1", "Yes"})
	rec, _ := unans.Get("u1")
	rec.MatchedReference = "not in reference"

	assert.Empty(t, CollectAnswerCandidates(ref, unans))
	assert.Equal(t, 0.0, rec.AnswerScore)
}

func TestScoreAnswers_ParsesResults(t *testing.T) {
	ctx := context.Background()
	client := &mockAnthropicClient{}

	client.On("CreateMessage", ctx, mock.AnythingOfType("anthropic.MessageRequest")).
		Return(textResponse(`{"results": [{"q": "Do you encrypt data at rest?", "s": 0.35}]}`), nil).Once()

	results, err := ScoreAnswers(ctx, client, testConfig(), []AnswerCandidate{
		{Question: "Do you encrypt data at rest?", A1: "Yes", A2: "No"},
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 0.35, results[0].Score, 0.001)
	client.AssertExpectations(t)
}

func TestScoreAnswers_RequestCarriesPairs(t *testing.T) {
	ctx := context.Background()
	client := &mockAnthropicClient{}

	var captured anthropic.MessageRequest
	client.On("CreateMessage", ctx, mock.AnythingOfType("anthropic.MessageRequest")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(anthropic.MessageRequest)
		}).
		Return(textResponse(`{"results": []}`), nil).Once()

	_, err := ScoreAnswers(ctx, client, testConfig(), []AnswerCandidate{
		{Question: "q", A1: "Yes", A2: "No"},
	})
	require.NoError(t, err)

	require.Len(t, captured.Messages, 2)
	var payload struct {
		Questions []AnswerCandidate `json:"questions"`
	}
	require.NoError(t, json.Unmarshal([]byte(captured.Messages[1].Content), &payload))
	require.Len(t, payload.Questions, 1)
	assert.Equal(t, "No", payload.Questions[0].A2)
	assert.Equal(t, int64(16000), captured.MaxTokens)
}

func TestScoreAnswers_NoCandidatesSkipsRequest(t *testing.T) {
	client := &mockAnthropicClient{}

	results, err := ScoreAnswers(context.Background(), client, testConfig(), nil)

	require.NoError(t, err)
	assert.Empty(t, results)
	client.AssertNotCalled(t, "CreateMessage")
}

func TestScoreAnswers_MalformedResponseYieldsNoResults(t *testing.T) {
	ctx := context.Background()
	client := &mockAnthropicClient{}

	client.On("CreateMessage", ctx, mock.AnythingOfType("anthropic.MessageRequest")).
		Return(textResponse(`{"results": [{"q": truncated`), nil).Once()

	results, err := ScoreAnswers(ctx, client, testConfig(), []AnswerCandidate{
		{Question: "q", A1: "a", A2: "b"},
	})

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestScoreAnswers_TransportErrorIsFatal(t *testing.T) {
	ctx := context.Background()
	client := &mockAnthropicClient{}

	client.On("CreateMessage", ctx, mock.AnythingOfType("anthropic.MessageRequest")).
		Return(nil, errors.New("401 unauthorized")).Once()

	_, err := ScoreAnswers(ctx, client, testConfig(), []AnswerCandidate{
		{Question: "q", A1: "a", A2: "b"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "answer score request")
}

func TestApplyAnswerScores(t *testing.T) {
	unans := buildStore(questionnaire.RoleUnanswered,
		[2]string{"q1", "Yes"},
		[2]string{"q2", "No"},
	)

	ApplyAnswerScores(unans, []AnswerScoreResult{
		{Question: "q1", Score: 0.35},
		{Question: "unknown", Score: 0.9},
	})

	rec, _ := unans.Get("q1")
	assert.InDelta(t, 0.35, rec.AnswerScore, 0.001)

	// Unreturned questions keep the default score.
	rec, _ = unans.Get("q2")
	assert.Equal(t, 0.0, rec.AnswerScore)
}
