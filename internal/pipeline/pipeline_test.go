package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alkime/audioscribe/internal/content"
	"github.com/alkime/audioscribe/internal/export"
	"github.com/alkime/audioscribe/internal/media"
	"github.com/alkime/audioscribe/internal/pipeline"
)

type fakeService struct {
	transcript    string
	transcribeErr error
	refineErr     error
	instructions  []string
}

func (f *fakeService) Transcribe(context.Context, []byte, string) (string, error) {
	return f.transcript, f.transcribeErr
}

func (f *fakeService) Refine(_ context.Context, text, instruction string) (string, error) {
	f.instructions = append(f.instructions, instruction)
	if f.refineErr != nil {
		return "", f.refineErr
	}
	return strings.ToUpper(text), nil
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	return path
}

func mp3(t *testing.T, name string) string {
	t.Helper()

	return writeFile(t, name, append([]byte("ID3\x03\x00\x00\x00\x00\x00\x00"), make([]byte, 64)...))
}

func TestRunner_Run(t *testing.T) {
	tests := []struct {
		name        string
		instruction string
		format      export.Format
		wantFiles   []string
		wantRemix   string
	}{
		{
			name:      "transcript only defaults to txt",
			wantFiles: []string{"standup.txt"},
		},
		{
			name:        "with remix",
			instruction: "shout",
			format:      export.TXT,
			wantFiles:   []string{"standup.txt", "standup_remix.txt"},
			wantRemix:   "HELLO TEAM",
		},
		{
			name:        "blank instruction skips refine",
			instruction: "   ",
			format:      export.DOCX,
			wantFiles:   []string{"standup.docx"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{transcript: "hello team"}
			out := t.TempDir()

			res, err := pipeline.NewRunner(svc, nil, 0).Run(context.Background(), pipeline.Request{
				Path:        mp3(t, "standup.2024.mp3"),
				Instruction: tt.instruction,
				Format:      tt.format,
				OutputDir:   out,
			})
			require.NoError(t, err)

			assert.Equal(t, "hello team", res.Transcript)
			assert.Equal(t, tt.wantRemix, res.Remix)
			require.Len(t, res.Paths, len(tt.wantFiles))
			for i, name := range tt.wantFiles {
				assert.Equal(t, filepath.Join(out, name), res.Paths[i])
				assert.FileExists(t, res.Paths[i])
			}
		})
	}
}

func TestRunner_TranscriptIsWrittenVerbatim(t *testing.T) {
	svc := &fakeService{transcript: "line one\nline two"}
	out := t.TempDir()

	res, err := pipeline.NewRunner(svc, nil, 0).Run(context.Background(), pipeline.Request{
		Path:      mp3(t, "memo.mp3"),
		OutputDir: out,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(res.Paths[0])
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", string(data))
}

func TestRunner_Errors(t *testing.T) {
	t.Run("not media", func(t *testing.T) {
		svc := &fakeService{transcript: "unused"}

		_, err := pipeline.NewRunner(svc, nil, 0).Run(context.Background(), pipeline.Request{
			Path:      writeFile(t, "notes.txt", []byte("just some words")),
			OutputDir: t.TempDir(),
		})

		var verr *media.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := pipeline.NewRunner(&fakeService{}, nil, 0).Run(context.Background(), pipeline.Request{
			Path: filepath.Join(t.TempDir(), "gone.mp3"),
		})
		assert.Error(t, err)
	})

	t.Run("transcription failure writes nothing", func(t *testing.T) {
		svc := &fakeService{transcribeErr: &content.RemoteServiceError{Op: content.OpTranscribe, Message: "quota exceeded"}}
		out := t.TempDir()

		_, err := pipeline.NewRunner(svc, nil, 0).Run(context.Background(), pipeline.Request{
			Path:      mp3(t, "memo.mp3"),
			OutputDir: out,
		})

		var rerr *content.RemoteServiceError
		require.ErrorAs(t, err, &rerr)
		assert.Equal(t, "quota exceeded", rerr.Message)

		entries, err := os.ReadDir(out)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("empty transcript", func(t *testing.T) {
		_, err := pipeline.NewRunner(&fakeService{}, nil, 0).Run(context.Background(), pipeline.Request{
			Path:      mp3(t, "memo.mp3"),
			OutputDir: t.TempDir(),
		})
		assert.ErrorContains(t, err, content.NoTranscriptMessage)
	})

	t.Run("refine failure keeps transcript file", func(t *testing.T) {
		svc := &fakeService{transcript: "hi", refineErr: errors.New("overloaded")}

		res, err := pipeline.NewRunner(svc, nil, 0).Run(context.Background(), pipeline.Request{
			Path:        mp3(t, "memo.mp3"),
			Instruction: "tidy",
			OutputDir:   t.TempDir(),
		})
		assert.ErrorContains(t, err, "overloaded")
		require.Len(t, res.Paths, 1)
		assert.FileExists(t, res.Paths[0])
		assert.Equal(t, []string{"tidy"}, svc.instructions)
	})
}
