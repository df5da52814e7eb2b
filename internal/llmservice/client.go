// Package llmservice sends chat messages to a text-generation provider.
package llmservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	lcopenai "github.com/tmc/langchaingo/llms/openai"
	"google.golang.org/api/option"

	"document-quiz/internal/config"
	"document-quiz/internal/models"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var errEmptyResponse = errors.New("provider returned no content")

type Message struct {
	Role    string
	Content string
}

// Generator turns an ordered message list into one completion.
type Generator interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}

// NewGenerator creates the generator for the configured provider.
func NewGenerator(cfg *config.LLMConfig) (Generator, error) {
	log.Debug().Str("provider", cfg.Provider).Str("model", cfg.Model).Str("base_url", cfg.BaseURL).Msg("Creating generator")
	temperature := cfg.TemperatureOrDefault()

	switch cfg.Provider {
	case config.ProviderOpenAI:
		opts := []lcopenai.Option{
			lcopenai.WithToken(cfg.APIKey()),
			lcopenai.WithModel(cfg.Model),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, lcopenai.WithBaseURL(cfg.BaseURL))
		}
		llm, err := lcopenai.New(opts...)
		if err != nil {
			return nil, models.WrapProviderError(cfg.Provider, "init", err)
		}
		return &langchainGenerator{provider: cfg.Provider, model: llm, temperature: temperature}, nil

	case config.ProviderOllama:
		llm, err := ollama.New(
			ollama.WithServerURL(cfg.BaseURL),
			ollama.WithModel(cfg.Model),
		)
		if err != nil {
			return nil, models.WrapProviderError(cfg.Provider, "init", err)
		}
		return &langchainGenerator{provider: cfg.Provider, model: llm, temperature: temperature}, nil

	case config.ProviderGoOpenAI:
		clientCfg := openai.DefaultConfig(cfg.APIKey())
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
		return &openAIGenerator{
			client:      openai.NewClientWithConfig(clientCfg),
			model:       cfg.Model,
			temperature: temperature,
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
		return &GeminiGenerator{client: client, model: cfg.Model, temperature: float32(temperature)}, nil
	}
	return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
}

// langchainGenerator calls any langchaingo chat model.
type langchainGenerator struct {
	provider    string
	model       llms.Model
	temperature float64
}

func (g *langchainGenerator) Generate(ctx context.Context, messages []Message) (string, error) {
	res, err := g.model.GenerateContent(ctx, toMessageContent(messages), llms.WithTemperature(g.temperature))
	if err != nil {
		return "", models.WrapProviderError(g.provider, "generate", err)
	}
	if len(res.Choices) == 0 {
		return "", models.WrapProviderError(g.provider, "generate", errEmptyResponse)
	}
	return checkContent(g.provider, res.Choices[0].Content)
}

func toMessageContent(messages []Message) []llms.MessageContent {
	out := make([]llms.MessageContent, len(messages))
	for i, msg := range messages {
		out[i] = llms.TextParts(chatMessageType(msg.Role), msg.Content)
	}
	return out
}

func chatMessageType(role string) llms.ChatMessageType {
	switch role {
	case RoleSystem:
		return llms.ChatMessageTypeSystem
	case RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}

type openAIGenerator struct {
	client      *openai.Client
	model       string
	temperature float64
}

func (g *openAIGenerator) Generate(ctx context.Context, messages []Message) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: float32(g.temperature),
		Messages:    toChatCompletionMessages(messages),
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", models.WrapProviderError(config.ProviderGoOpenAI, "generate", err)
	}
	if len(resp.Choices) == 0 {
		return "", models.WrapProviderError(config.ProviderGoOpenAI, "generate", errEmptyResponse)
	}
	return checkContent(config.ProviderGoOpenAI, resp.Choices[0].Message.Content)
}

func toChatCompletionMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		out[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}
	return out
}

// GeminiGenerator calls Gemini. Close releases the client.
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
}

func (g *GeminiGenerator) Generate(ctx context.Context, messages []Message) (string, error) {
	system, history, last, err := splitForGemini(messages)
	if err != nil {
		return "", models.WrapProviderError(config.ProviderGemini, "generate", err)
	}

	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(g.temperature)
	if system != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(system))
	}
	session := model.StartChat()
	session.History = history

	resp, err := session.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return "", models.WrapProviderError(config.ProviderGemini, "generate", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", models.WrapProviderError(config.ProviderGemini, "generate", errEmptyResponse)
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return checkContent(config.ProviderGemini, b.String())
}

func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

// splitForGemini separates system text, prior turns and the final user
// message, the shape Gemini's chat session expects.
func splitForGemini(messages []Message) (system string, history []*genai.Content, last string, err error) {
	var systemParts []string
	var turns []Message
	for _, msg := range messages {
		if msg.Role == RoleSystem {
			systemParts = append(systemParts, msg.Content)
			continue
		}
		turns = append(turns, msg)
	}
	if len(turns) == 0 || turns[len(turns)-1].Role != RoleUser {
		return "", nil, "", errors.New("conversation must end with a user message")
	}

	for _, msg := range turns[:len(turns)-1] {
		role := "user"
		if msg.Role == RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(msg.Content)}})
	}
	return strings.Join(systemParts, "\n\n"), history, turns[len(turns)-1].Content, nil
}

func checkContent(provider, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", models.WrapProviderError(provider, "generate", errEmptyResponse)
	}
	return content, nil
}
