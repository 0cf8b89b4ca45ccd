package media_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alkime/audioscribe/internal/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mimeType string
		ok       bool
	}{
		{name: "mp3", mimeType: "audio/mpeg", ok: true},
		{name: "wav", mimeType: "audio/wav", ok: true},
		{name: "mp4 video", mimeType: "video/mp4", ok: true},
		{name: "pdf", mimeType: "application/pdf", ok: false},
		{name: "text", mimeType: "text/plain", ok: false},
		{name: "empty", mimeType: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := media.Validate(media.FromBytes("x", tt.mimeType, []byte("data")))
			if tt.ok {
				require.NoError(t, err)
				return
			}

			var verr *media.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "Please upload a valid audio or video file.", err.Error())
		})
	}

	assert.ErrorIs(t, media.Validate(nil), media.ErrNoFile)
}

func TestBaseName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "meeting", media.BaseName("meeting.mp3"))
	assert.Equal(t, "my", media.BaseName("my.interview.wav"))
	assert.Equal(t, "noext", media.BaseName("noext"))
	assert.Equal(t, "transcription", media.BaseName(".hidden"))
	assert.Equal(t, "transcription", media.BaseName(""))
}

func TestSizeLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0.00 MB", media.SizeLabel(0))
	assert.Equal(t, "1.00 MB", media.SizeLabel(1024*1024))
	assert.Equal(t, "2.50 MB", media.FromBytes("a", "audio/mpeg", make([]byte, 5*1024*1024/2)).SizeLabel())
}

func TestFile_IsVideo(t *testing.T) {
	t.Parallel()

	assert.True(t, media.FromBytes("a.mp4", "video/mp4", nil).IsVideo())
	assert.False(t, media.FromBytes("a.mp3", "audio/mpeg", nil).IsVideo())
}

func TestFromPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	wavPath := filepath.Join(dir, "tone.wav")
	wav := makeWave(16000, 1, 0.1)
	require.NoError(t, os.WriteFile(wavPath, wav, 0o600))

	f, err := media.FromPath(wavPath)
	require.NoError(t, err)
	assert.Equal(t, "tone.wav", f.Name)
	assert.Equal(t, int64(len(wav)), f.Size)
	require.NoError(t, media.Validate(f))

	data, err := f.Bytes()
	require.NoError(t, err)
	assert.Equal(t, wav, data)

	txtPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("just some notes\n"), 0o600))

	f, err = media.FromPath(txtPath)
	require.NoError(t, err)
	require.Error(t, media.Validate(f))

	_, err = media.FromPath(filepath.Join(dir, "missing.wav"))
	require.Error(t, err)

	_, err = media.FromPath(dir)
	require.Error(t, err)
}

func TestFile_Release(t *testing.T) {
	t.Parallel()

	calls := 0
	f := media.NewFile("a.mp3", "audio/mpeg", 0, nil, func() error {
		calls++
		return nil
	})

	require.NoError(t, f.Release())
	require.NoError(t, f.Release())
	assert.Equal(t, 1, calls)

	_, err := f.Open()
	require.Error(t, err)
}
