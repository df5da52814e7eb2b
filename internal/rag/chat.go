package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"document-quiz/internal/chromemdb"
	"document-quiz/internal/llmservice"
	"document-quiz/internal/models"
)

// ConversationalRetriever answers questions about the document using the
// prior turns as conversation memory. It never modifies the history.
type ConversationalRetriever struct {
	generator llmservice.Generator
	topK      int
}

func NewConversationalRetriever(generator llmservice.Generator, topK int) *ConversationalRetriever {
	if topK <= 0 {
		topK = chromemdb.DefaultTopK
	}
	return &ConversationalRetriever{generator: generator, topK: topK}
}

func (c *ConversationalRetriever) Answer(ctx context.Context, r Retriever, question string, history models.ChatHistory) (string, error) {
	if r == nil {
		return "", models.ErrNotReady
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return "", models.ErrEmptyQuestion
	}

	results, err := r.Search(ctx, question, c.topK)
	if err != nil {
		return "", err
	}

	messages := make([]llmservice.Message, 0, 2+2*len(history))
	messages = append(messages, llmservice.Message{Role: llmservice.RoleSystem, Content: models.ChatSystemPrompt})
	for _, turn := range history {
		messages = append(messages,
			llmservice.Message{Role: llmservice.RoleUser, Content: turn.Question},
			llmservice.Message{Role: llmservice.RoleAssistant, Content: turn.Answer},
		)
	}
	messages = append(messages, llmservice.Message{
		Role:    llmservice.RoleUser,
		Content: fmt.Sprintf(models.ContextPromptTemplate, buildContext(results), question),
	})

	answer, err := c.generator.Generate(ctx, messages)
	if err != nil {
		return "", err
	}
	log.Debug().Int("history_turns", len(history)).Int("context_chunks", len(results)).Msg("Answered question")
	return strings.TrimSpace(answer), nil
}
