// Package embedding maps text to fixed-dimension vectors through a configurable provider.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	lcopenai "github.com/tmc/langchaingo/llms/openai"
	"google.golang.org/api/option"

	"document-quiz/internal/config"
	"document-quiz/internal/models"
)

var errEmptyVector = errors.New("provider returned an empty vector")

// Embedder maps one text to one vector. Implementations must return vectors
// of the same dimension for every input.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// NewEmbedder creates the embedder for the configured provider.
func NewEmbedder(cfg *config.LLMConfig) (Embedder, error) {
	log.Debug().Str("provider", cfg.Provider).Str("model", cfg.Model).Str("base_url", cfg.BaseURL).Msg("Creating embedder")

	switch cfg.Provider {
	case config.ProviderOpenAI:
		opts := []lcopenai.Option{
			lcopenai.WithToken(cfg.APIKey()),
			lcopenai.WithEmbeddingModel(cfg.Model),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, lcopenai.WithBaseURL(cfg.BaseURL))
		}
		llm, err := lcopenai.New(opts...)
		if err != nil {
			return nil, models.WrapProviderError(cfg.Provider, "init", err)
		}
		return newLangchainEmbedder(cfg.Provider, llm)

	case config.ProviderOllama:
		llm, err := ollama.New(
			ollama.WithServerURL(cfg.BaseURL),
			ollama.WithModel(cfg.Model),
		)
		if err != nil {
			return nil, models.WrapProviderError(cfg.Provider, "init", err)
		}
		return newLangchainEmbedder(cfg.Provider, llm)

	case config.ProviderGoOpenAI:
		clientCfg := openai.DefaultConfig(cfg.APIKey())
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
		return &openAIEmbedder{
			client:    openai.NewClientWithConfig(clientCfg),
			model:     cfg.Model,
			dimension: cfg.Dimension,
		}, nil

	case config.ProviderGemini:
		key := cfg.APIKey()
		if key == "" {
			return nil, models.WrapProviderError(cfg.Provider, "init", fmt.Errorf("%s environment variable not set", cfg.KeyEnv))
		}
		client, err := genai.NewClient(context.Background(), option.WithAPIKey(key))
		if err != nil {
			return nil, models.WrapProviderError(cfg.Provider, "init", err)
		}
		return &GeminiEmbedder{client: client, model: client.EmbeddingModel(cfg.Model)}, nil

	case config.ProviderHash:
		return NewHashEmbedder(cfg.Dimension), nil
	}
	return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
}

// GenerateEmbeddings embeds every chunk independently and checks that all
// vectors share one dimension.
func GenerateEmbeddings(ctx context.Context, embedder Embedder, chunks []models.Chunk) ([]models.ChunkEmbedding, error) {
	if len(chunks) == 0 {
		log.Info().Msg("No chunks to embed")
		return nil, nil
	}

	chunkEmbeddings := make([]models.ChunkEmbedding, 0, len(chunks))
	dimension := 0
	for _, chunk := range chunks {
		vector, err := Embed(ctx, embedder, chunk.Content)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d: %w", chunk.ChunkID, err)
		}
		if dimension == 0 {
			dimension = len(vector)
		} else if len(vector) != dimension {
			return nil, models.WrapProviderError("embedder", "embed",
				fmt.Errorf("dimension mismatch on chunk %d: expected %d, got %d", chunk.ChunkID, dimension, len(vector)))
		}
		chunkEmbeddings = append(chunkEmbeddings, models.ChunkEmbedding{Chunk: chunk, Embedding: vector})
	}

	log.Debug().Int("chunks", len(chunkEmbeddings)).Int("dimension", dimension).Msg("Generated embeddings")
	return chunkEmbeddings, nil
}

// Embed calls the embedder and rejects unusable results.
func Embed(ctx context.Context, embedder Embedder, text string) ([]float32, error) {
	vector, err := embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, models.WrapProviderError("embedder", "embed", err)
	}
	if len(vector) == 0 {
		return nil, models.WrapProviderError("embedder", "embed", errEmptyVector)
	}
	return vector, nil
}

// langchainEmbedder adapts langchaingo's EmbedderImpl, tagging errors with the provider.
type langchainEmbedder struct {
	provider string
	impl     *embeddings.EmbedderImpl
}

func newLangchainEmbedder(provider string, client embeddings.EmbedderClient) (*langchainEmbedder, error) {
	impl, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(false))
	if err != nil {
		return nil, models.WrapProviderError(provider, "init", err)
	}
	return &langchainEmbedder{provider: provider, impl: impl}, nil
}

func (e *langchainEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vector, err := e.impl.EmbedQuery(ctx, text)
	if err != nil {
		return nil, models.WrapProviderError(e.provider, "embed", err)
	}
	return vector, nil
}

type openAIEmbedder struct {
	client    *openai.Client
	model     string
	dimension int
}

func (e *openAIEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	req := openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: []string{text},
	}
	if e.dimension > 0 {
		req.Dimensions = e.dimension
	}
	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, models.WrapProviderError(config.ProviderGoOpenAI, "embed", err)
	}
	if len(resp.Data) == 0 {
		return nil, models.WrapProviderError(config.ProviderGoOpenAI, "embed", errEmptyVector)
	}
	return resp.Data[0].Embedding, nil
}

// GeminiEmbedder embeds through the Gemini embedding API. Close releases the client.
type GeminiEmbedder struct {
	client *genai.Client
	model  *genai.EmbeddingModel
}

func (e *GeminiEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.model.EmbedContent(ctx, genai.Text(strings.TrimSpace(text)))
	if err != nil {
		return nil, models.WrapProviderError(config.ProviderGemini, "embed", err)
	}
	if resp == nil || resp.Embedding == nil {
		return nil, models.WrapProviderError(config.ProviderGemini, "embed", errEmptyVector)
	}
	return resp.Embedding.Values, nil
}

func (e *GeminiEmbedder) Close() error {
	return e.client.Close()
}
