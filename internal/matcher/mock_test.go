package matcher

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/questionnaire-cli/internal/questionnaire"
	"github.com/sells-group/questionnaire-cli/pkg/anthropic"
)

// --- Anthropic Mock ---

type mockAnthropicClient struct {
	mock.Mock
}

func (m *mockAnthropicClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

var _ anthropic.Client = (*mockAnthropicClient)(nil)

// textResponse wraps a raw content string in a MessageResponse.
func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
		Usage:   anthropic.TokenUsage{InputTokens: 100, OutputTokens: 50},
	}
}

// buildStore is a test helper assembling a store from question/answer pairs
// in order.
func buildStore(role questionnaire.Role, pairs ...[2]string) *questionnaire.Store {
	s := questionnaire.NewStore(role)
	for i, p := range pairs {
		s.Add(p[0], p[1], i)
	}
	return s
}

func testConfig() Config {
	return Config{
		Model:             "claude-sonnet-4-5-20250929",
		MatchMaxTokens:    2000,
		ScoreMaxTokens:    16000,
		ConfidenceFloor:   0.49,
		AccuracyThreshold: 0.85,
	}
}
