package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "GROQ_API_KEY", cfg.LLM.KeyEnv)
	assert.Equal(t, ProviderOllama, cfg.EmbedLLM.Provider)
	assert.Equal(t, 1000, cfg.RAG.ChunkSize)
	assert.Equal(t, 200, cfg.RAG.Overlap())
	assert.Equal(t, 4, cfg.RAG.TopK)
	assert.Positive(t, cfg.RAG.Concurrency)
	assert.Equal(t, 5, cfg.Quiz.MinQuestions)
	assert.Equal(t, 30, cfg.Quiz.MaxQuestions)
	assert.Equal(t, "soffice", cfg.Converter.Command)
	assert.InDelta(t, 0.7, cfg.LLM.TemperatureOrDefault(), 1e-9)
}

func TestLoadConfig_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
llm:
  provider: gemini
  temperature: 0
embed_llm:
  provider: hash
rag:
  chunk_size: 500
  chunk_overlap: 50
  top_k: 8
quiz:
  min_questions: 1
  max_questions: 10
converter:
  disabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
	assert.Equal(t, "GEMINI_API_KEY", cfg.LLM.KeyEnv)
	assert.InDelta(t, 0.0, cfg.LLM.TemperatureOrDefault(), 1e-9)
	assert.Equal(t, 256, cfg.EmbedLLM.Dimension)
	assert.Equal(t, 500, cfg.RAG.ChunkSize)
	assert.Equal(t, 50, cfg.RAG.Overlap())
	assert.Equal(t, 8, cfg.RAG.TopK)
	assert.Equal(t, 1, cfg.Quiz.DefaultQuestions)
	assert.True(t, cfg.Converter.Disabled)
}

func TestLoadConfig_ZeroOverlapKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rag:\n  chunk_overlap: 0\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 0, cfg.RAG.Overlap())
	assert.Equal(t, 1000, cfg.RAG.ChunkSize)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [unclosed"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestAPIKey(t *testing.T) {
	t.Setenv("DOCQUIZ_TEST_KEY", "Bearer from-env")

	c := LLMConfig{KeyEnv: "DOCQUIZ_TEST_KEY"}
	assert.Equal(t, "from-env", c.APIKey())

	c.Key = "explicit"
	assert.Equal(t, "explicit", c.APIKey())

	assert.Equal(t, "", (&LLMConfig{}).APIKey())
}

func TestClampQuestions(t *testing.T) {
	q := QuizConfig{MinQuestions: 5, MaxQuestions: 30, DefaultQuestions: 5}

	tests := []struct {
		in, want int
	}{
		{0, 5},
		{3, 5},
		{12, 12},
		{31, 30},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, q.ClampQuestions(tc.in), "input %d", tc.in)
	}
}

func TestLoadEnv_MissingFileIsNotAnError(t *testing.T) {
	assert.NoError(t, LoadEnv(filepath.Join(t.TempDir(), ".env")))
}
