package config

import (
	"errors"
	"os"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI   = "openai"
	ProviderOllama   = "ollama"
	ProviderGoOpenAI = "go-openai"
	ProviderGemini   = "gemini"
	ProviderHash     = "hash"

	DefaultTemperature = 0.7
)

// LLMConfig configures one model endpoint, used for both generation and embedding
type LLMConfig struct {
	Provider    string   `yaml:"provider"`
	BaseURL     string   `yaml:"base_url"`
	Key         string   `yaml:"key"`
	KeyEnv      string   `yaml:"key_env"`
	Model       string   `yaml:"model"`
	Temperature *float64 `yaml:"temperature,omitempty"`
	Dimension   int      `yaml:"dimension"`
	TimeoutSecs int      `yaml:"timeout_secs"`
}

type RAGConfig struct {
	ChunkSize    int  `yaml:"chunk_size"`
	ChunkOverlap *int `yaml:"chunk_overlap,omitempty"`
	TopK         int  `yaml:"top_k"`
	Concurrency  int  `yaml:"concurrency"`
}

// QuizConfig bounds the question count accepted from the user
type QuizConfig struct {
	MinQuestions     int `yaml:"min_questions"`
	MaxQuestions     int `yaml:"max_questions"`
	DefaultQuestions int `yaml:"default_questions"`
}

type ConverterConfig struct {
	Command     string `yaml:"command"`
	Disabled    bool   `yaml:"disabled"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	EmbedLLM  LLMConfig       `yaml:"embed_llm"`
	RAG       RAGConfig       `yaml:"rag"`
	Quiz      QuizConfig      `yaml:"quiz"`
	Converter ConverterConfig `yaml:"converter"`
	TempDir   string          `yaml:"temp_dir"`
	LogLevel  string          `yaml:"log_level"`
}

// LoadConfig reads the YAML config at path. A missing file yields defaults.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// LoadEnv loads a .env file when present; real environment variables win.
func LoadEnv(paths ...string) error {
	err := godotenv.Load(paths...)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func ApplyDefaults(cfg *Config) {
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = ProviderOpenAI
	}
	if cfg.LLM.Provider == ProviderOpenAI || cfg.LLM.Provider == ProviderGoOpenAI {
		if cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = "https://api.groq.com/openai/v1"
		}
		if cfg.LLM.KeyEnv == "" {
			cfg.LLM.KeyEnv = "GROQ_API_KEY"
		}
		if cfg.LLM.Model == "" {
			cfg.LLM.Model = "llama3-70b-8192"
		}
	}
	if cfg.LLM.Provider == ProviderGemini {
		if cfg.LLM.KeyEnv == "" {
			cfg.LLM.KeyEnv = "GEMINI_API_KEY"
		}
		if cfg.LLM.Model == "" {
			cfg.LLM.Model = "gemini-2.0-flash"
		}
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = 120
	}

	if cfg.EmbedLLM.Provider == "" {
		cfg.EmbedLLM.Provider = ProviderOllama
	}
	switch cfg.EmbedLLM.Provider {
	case ProviderOllama:
		if cfg.EmbedLLM.BaseURL == "" {
			cfg.EmbedLLM.BaseURL = "http://localhost:11434"
		}
		if cfg.EmbedLLM.Model == "" {
			cfg.EmbedLLM.Model = "all-minilm"
		}
	case ProviderGemini:
		if cfg.EmbedLLM.KeyEnv == "" {
			cfg.EmbedLLM.KeyEnv = "GEMINI_API_KEY"
		}
		if cfg.EmbedLLM.Model == "" {
			cfg.EmbedLLM.Model = "text-embedding-004"
		}
	case ProviderOpenAI, ProviderGoOpenAI:
		if cfg.EmbedLLM.KeyEnv == "" {
			cfg.EmbedLLM.KeyEnv = "OPENAI_API_KEY"
		}
		if cfg.EmbedLLM.Model == "" {
			cfg.EmbedLLM.Model = "text-embedding-3-small"
		}
	case ProviderHash:
		if cfg.EmbedLLM.Dimension == 0 {
			cfg.EmbedLLM.Dimension = 256
		}
	}
	if cfg.EmbedLLM.TimeoutSecs == 0 {
		cfg.EmbedLLM.TimeoutSecs = 120
	}

	if cfg.RAG.ChunkSize <= 0 {
		cfg.RAG.ChunkSize = 1000
	}
	if cfg.RAG.ChunkOverlap == nil || *cfg.RAG.ChunkOverlap < 0 {
		overlap := 200
		cfg.RAG.ChunkOverlap = &overlap
	}
	if cfg.RAG.TopK <= 0 {
		cfg.RAG.TopK = 4
	}
	if cfg.RAG.Concurrency <= 0 {
		cfg.RAG.Concurrency = runtime.NumCPU()
	}

	if cfg.Quiz.MinQuestions <= 0 {
		cfg.Quiz.MinQuestions = 5
	}
	if cfg.Quiz.MaxQuestions < cfg.Quiz.MinQuestions {
		cfg.Quiz.MaxQuestions = 30
	}
	if cfg.Quiz.DefaultQuestions == 0 {
		cfg.Quiz.DefaultQuestions = cfg.Quiz.MinQuestions
	}

	if cfg.Converter.Command == "" {
		cfg.Converter.Command = "soffice"
	}
	if cfg.Converter.TimeoutSecs == 0 {
		cfg.Converter.TimeoutSecs = 120
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// APIKey returns the configured key, falling back to the KeyEnv variable.
func (c *LLMConfig) APIKey() string {
	if c.Key != "" {
		return strings.TrimPrefix(c.Key, "Bearer ")
	}
	if c.KeyEnv != "" {
		return strings.TrimPrefix(os.Getenv(c.KeyEnv), "Bearer ")
	}
	return ""
}

// Overlap returns the configured chunk overlap; zero is a valid setting.
func (r RAGConfig) Overlap() int {
	if r.ChunkOverlap == nil {
		return 200
	}
	return *r.ChunkOverlap
}

func (c *LLMConfig) TemperatureOrDefault() float64 {
	if c.Temperature == nil {
		return DefaultTemperature
	}
	return *c.Temperature
}

// ClampQuestions bounds n to the configured range; zero means the default.
func (q QuizConfig) ClampQuestions(n int) int {
	if n == 0 {
		n = q.DefaultQuestions
	}
	if n < q.MinQuestions {
		return q.MinQuestions
	}
	if n > q.MaxQuestions {
		return q.MaxQuestions
	}
	return n
}
