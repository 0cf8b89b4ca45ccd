package keyring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"

	"github.com/alkime/audioscribe/internal/keyring"
)

func TestAPIKeyFromServiceName(t *testing.T) {
	tests := []struct {
		name    string
		want    keyring.APIKey
		wantErr bool
	}{
		{name: "gemini", want: keyring.Gemini},
		{name: "openai", want: keyring.OpenAI},
		{name: "anthropic", want: keyring.Anthropic},
		{name: "whisper", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := keyring.APIKeyFromServiceName(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.name, got.DisplayName())
		})
	}
}

func TestSetGetFill(t *testing.T) {
	gokeyring.MockInit()

	assert.False(t, keyring.IsSet(keyring.Gemini))
	value, err := keyring.Lookup(keyring.Gemini)
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, keyring.Set(keyring.Gemini, "g-key"))
	assert.True(t, keyring.IsSet(keyring.Gemini))

	got, err := keyring.Get(keyring.Gemini)
	require.NoError(t, err)
	assert.Equal(t, "g-key", got)

	gemini := ""
	openai := "from-env"
	keyring.Fill(map[keyring.APIKey]*string{
		keyring.Gemini: &gemini,
		keyring.OpenAI: &openai,
	})
	assert.Equal(t, "g-key", gemini)
	assert.Equal(t, "from-env", openai)
}
