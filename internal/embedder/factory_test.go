package embedder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectProvider(t *testing.T) {
	tests := []struct {
		name      string
		provider  string
		jinaKey   string
		openaiKey string
		want      string
	}{
		{"explicit", "Ollama", "", "", ProviderOllama},
		{"explicit wins over keys", "local", "jk", "ok", ProviderLocal},
		{"jina key", "", "jk", "ok", ProviderJina},
		{"openai key", "", "", "ok", ProviderOpenAI},
		{"fallback", "", "", "", ProviderLocal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvJinaAPIKey, tt.jinaKey)
			t.Setenv(EnvOpenAIAPIKey, tt.openaiKey)
			assert.Equal(t, tt.want, DetectProvider(Config{Provider: tt.provider}))
		})
	}
}

func TestNew(t *testing.T) {
	t.Setenv(EnvJinaAPIKey, "")
	t.Setenv(EnvOpenAIAPIKey, "")

	t.Run("local default", func(t *testing.T) {
		emb, err := New(Config{Dimension: 32})
		require.NoError(t, err)
		assert.Equal(t, ProviderLocal, emb.Provider())
		assert.Equal(t, 32, emb.Dimension())
	})

	t.Run("jina with key", func(t *testing.T) {
		emb, err := New(Config{Provider: "jina", APIKey: "k", Model: "custom"})
		require.NoError(t, err)
		assert.Equal(t, ProviderJina, emb.Provider())
		assert.Equal(t, "custom", emb.Model())
	})

	t.Run("openai without key", func(t *testing.T) {
		_, err := New(Config{Provider: "openai"})
		assert.ErrorIs(t, err, ErrNoProviderEnabled)
	})

	t.Run("ollama", func(t *testing.T) {
		emb, err := New(Config{Provider: "ollama", BaseURL: "localhost:11434"})
		require.NoError(t, err)
		assert.Equal(t, ProviderOllama, emb.Provider())
		assert.Equal(t, DefaultDimension, emb.Dimension())
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := New(Config{Provider: "bogus"})
		assert.ErrorIs(t, err, ErrUnsupportedModel)
	})
}
