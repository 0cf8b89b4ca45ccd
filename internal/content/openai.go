package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient transcribes with Whisper and refines with chat completions.
type OpenAIClient struct {
	apiKey    string
	chatModel openai.ChatModel
	baseURL   string
}

// NewOpenAIClient creates an OpenAI client.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{
		apiKey:    apiKey,
		chatModel: openai.ChatModelGPT4oMini,
	}
}

func (o *OpenAIClient) client() (openai.Client, error) {
	if o.apiKey == "" {
		return openai.Client{}, errors.New("OPENAI_API_KEY is not set")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(o.apiKey),
		option.WithMaxRetries(0),
	}
	if o.baseURL != "" {
		opts = append(opts, option.WithBaseURL(o.baseURL))
	}

	return openai.NewClient(opts...), nil
}

// Transcribe uploads the payload to Whisper.
func (o *OpenAIClient) Transcribe(ctx context.Context, data []byte, mimeType string) (string, error) {
	client, err := o.client()
	if err != nil {
		return "", remoteError(OpTranscribe, err.Error(), err)
	}

	params := openai.AudioTranscriptionNewParams{
		File:  &namedReader{Reader: bytes.NewReader(data), mimeType: mimeType},
		Model: openai.AudioModelWhisper1,
	}

	resp, err := client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		err = fmt.Errorf("failed to create transcription via Whisper API: %w", err)
		return "", remoteError(OpTranscribe, openAIMessage(err), err)
	}

	if strings.TrimSpace(resp.Text) == "" {
		return "", remoteError(OpTranscribe, NoTranscriptMessage, nil)
	}

	return resp.Text, nil
}

// Refine asks the chat model to apply the instruction.
func (o *OpenAIClient) Refine(ctx context.Context, text, instruction string) (string, error) {
	client, err := o.client()
	if err != nil {
		return "", remoteError(OpRefine, err.Error(), err)
	}

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: o.chatModel,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(RefinePrompt(text, instruction)),
		},
	})
	if err != nil {
		err = fmt.Errorf("failed to refine via chat completions: %w", err)
		return "", remoteError(OpRefine, openAIMessage(err), err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", remoteError(OpRefine, NoTextMessage, nil)
	}

	return resp.Choices[0].Message.Content, nil
}

func openAIMessage(err error) string {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}

	return err.Error()
}

var whisperExtensions = map[string]string{
	"audio/mpeg":   ".mp3",
	"audio/mp3":    ".mp3",
	"audio/wav":    ".wav",
	"audio/x-wav":  ".wav",
	"audio/wave":   ".wav",
	"audio/flac":   ".flac",
	"audio/x-flac": ".flac",
	"audio/ogg":    ".ogg",
	"audio/webm":   ".webm",
	"audio/mp4":    ".m4a",
	"audio/x-m4a":  ".m4a",
	"video/mp4":    ".mp4",
	"video/webm":   ".webm",
	"video/mpeg":   ".mpeg",
}

// namedReader gives the multipart encoder a filename and content type so
// Whisper can infer the container format.
type namedReader struct {
	*bytes.Reader
	mimeType string
}

func (n *namedReader) Filename() string {
	base, _, _ := strings.Cut(n.mimeType, ";")
	if ext, ok := whisperExtensions[strings.TrimSpace(base)]; ok {
		return "audio" + ext
	}

	return "audio.mp3"
}

func (n *namedReader) ContentType() string {
	return n.mimeType
}
