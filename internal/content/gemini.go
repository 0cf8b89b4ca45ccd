package content

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiClient implements both operations against the Gemini API.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
}

// NewGeminiClient creates a Gemini client for the given model.
func NewGeminiClient(apiKey, model string) *GeminiClient {
	if model == "" {
		model = DefaultGeminiModel
	}

	return &GeminiClient{
		apiKey: apiKey,
		model:  model,
	}
}

// Transcribe sends the media inline together with the transcription prompt.
func (g *GeminiClient) Transcribe(ctx context.Context, data []byte, mimeType string) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromBytes(data, mimeType),
		genai.NewPartFromText(TranscribePrompt),
	}

	text, err := g.generate(ctx, parts)
	if err != nil {
		return "", remoteError(OpTranscribe, geminiMessage(err), err)
	}

	if strings.TrimSpace(text) == "" {
		return "", remoteError(OpTranscribe, NoTranscriptMessage, nil)
	}

	return text, nil
}

// Refine sends a single prompt embedding the text and the instruction.
func (g *GeminiClient) Refine(ctx context.Context, text, instruction string) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(RefinePrompt(text, instruction)),
	}

	out, err := g.generate(ctx, parts)
	if err != nil {
		return "", remoteError(OpRefine, geminiMessage(err), err)
	}

	if strings.TrimSpace(out) == "" {
		return "", remoteError(OpRefine, NoTextMessage, nil)
	}

	return out, nil
}

func (g *GeminiClient) generate(ctx context.Context, parts []*genai.Part) (string, error) {
	if g.apiKey == "" {
		return "", errors.New("GEMINI_API_KEY is not set")
	}

	cc := &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if g.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: g.baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	result, err := client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", nil
	}

	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" && !part.Thought {
			text.WriteString(part.Text)
		}
	}

	return text.String(), nil
}

// geminiMessage prefers the API's own message over the wrapped error text.
func geminiMessage(err error) string {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}

	var ptrErr *genai.APIError
	if errors.As(err, &ptrErr) && ptrErr.Message != "" {
		return ptrErr.Message
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "The request to the model timed out."
	}

	return err.Error()
}
