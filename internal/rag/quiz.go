package rag

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"document-quiz/internal/chromemdb"
	"document-quiz/internal/llmservice"
	"document-quiz/internal/models"
)

// QuizGenerator writes multiple-choice questions grounded in retrieved chunks.
type QuizGenerator struct {
	generator llmservice.Generator
	topK      int
}

func NewQuizGenerator(generator llmservice.Generator, topK int) *QuizGenerator {
	if topK <= 0 {
		topK = chromemdb.DefaultTopK
	}
	return &QuizGenerator{generator: generator, topK: topK}
}

// QuizInstruction is the request sent for n questions; it doubles as the retrieval query.
func QuizInstruction(n int) string {
	return fmt.Sprintf(models.QuizPromptTemplate, n, n)
}

// Generate returns the model's quiz text unmodified.
func (g *QuizGenerator) Generate(ctx context.Context, r Retriever, n int) (string, error) {
	if r == nil {
		return "", models.ErrNotReady
	}
	if n < 1 {
		return "", fmt.Errorf("%w: got %d", models.ErrInvalidQuestionCount, n)
	}

	instruction := QuizInstruction(n)
	results, err := r.Search(ctx, instruction, g.topK)
	if err != nil {
		return "", err
	}

	messages := []llmservice.Message{
		{Role: llmservice.RoleSystem, Content: models.QuizSystemPrompt},
		{Role: llmservice.RoleUser, Content: fmt.Sprintf(models.ContextPromptTemplate, buildContext(results), instruction)},
	}
	quiz, err := g.generator.Generate(ctx, messages)
	if err != nil {
		return "", err
	}
	log.Debug().Int("questions", n).Int("context_chunks", len(results)).Msg("Generated quiz")
	return quiz, nil
}

var (
	questionLineRe = regexp.MustCompile(`^Câu hỏi\s*(\d+)\s*[:.]\s*(.*)$`)
	optionLineRe   = regexp.MustCompile(`^([A-D])\s*[.)]\s*(.+)$`)
	answerLineRe   = regexp.MustCompile(`^Đáp án đúng\s*:\s*\[?([A-D])\]?`)
)

// ParseQuiz reads questions in the quiz format back out of generated text.
// Lines outside the format are ignored, so a partial result means the model
// drifted from the requested layout.
func ParseQuiz(text string) []models.QuizQuestion {
	var questions []models.QuizQuestion
	var current *models.QuizQuestion

	flush := func() {
		if current != nil {
			questions = append(questions, *current)
			current = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.ReplaceAll(line, "*", ""))
		if line == "" {
			continue
		}
		if m := questionLineRe.FindStringSubmatch(line); m != nil {
			flush()
			num, _ := strconv.Atoi(m[1])
			current = &models.QuizQuestion{Number: num, Text: strings.TrimSpace(m[2]), Options: map[string]string{}}
			continue
		}
		if current == nil {
			continue
		}
		if m := answerLineRe.FindStringSubmatch(line); m != nil {
			current.Answer = m[1]
			continue
		}
		if m := optionLineRe.FindStringSubmatch(line); m != nil {
			current.Options[m[1]] = strings.TrimSpace(m[2])
			continue
		}
		if len(current.Options) == 0 {
			current.Text = strings.TrimSpace(current.Text + " " + line)
		}
	}
	flush()
	return questions
}

// Complete reports whether q has four options and a valid answer.
func Complete(q models.QuizQuestion) bool {
	if len(q.Options) != 4 {
		return false
	}
	_, ok := q.Options[q.Answer]
	return ok
}
