package content

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient refines text with Claude. It does not accept media.
type AnthropicClient struct {
	apiKey  string
	model   anthropic.Model
	baseURL string
}

// NewAnthropicClient creates a Claude refiner.
func NewAnthropicClient(apiKey string) *AnthropicClient {
	return &AnthropicClient{
		apiKey: apiKey,
		model:  anthropic.ModelClaudeSonnet4_5_20250929,
	}
}

// Refine applies the instruction, with the editor role in the system prompt.
func (a *AnthropicClient) Refine(ctx context.Context, text, instruction string) (string, error) {
	if a.apiKey == "" {
		err := errors.New("ANTHROPIC_API_KEY is not set")
		return "", remoteError(OpRefine, err.Error(), err)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(a.apiKey),
		option.WithMaxRetries(0),
	}
	if a.baseURL != "" {
		opts = append(opts, option.WithBaseURL(a.baseURL))
	}

	client := anthropic.NewClient(opts...)

	params := anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: 8192,
		System: []anthropic.TextBlockParam{
			{Text: RefineSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(refineUserPrompt(text, instruction))),
		},
	}

	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		return "", remoteError(OpRefine, "", fmt.Errorf("failed to refine via Anthropic API: %w", err))
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			out.WriteString(tb.Text)
		}
	}

	if strings.TrimSpace(out.String()) == "" {
		return "", remoteError(OpRefine, NoTextMessage, nil)
	}

	return out.String(), nil
}
