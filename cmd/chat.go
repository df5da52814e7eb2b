package main

import (
	"bufio"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"document-quiz/internal/rag"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions about a document interactively",
	Long: `Indexes the document, then reads one question per line from stdin.
Previous questions and answers are kept as conversation memory.
Type "exit" or send EOF to quit.`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, _ []string) error {
	doc, err := loadDocument(filePath)
	if err != nil {
		return describe(err)
	}
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := rag.NewSession()
	if err != nil {
		return err
	}
	if err := processDocument(cmd.Context(), a, s, doc); err != nil {
		return err
	}

	cmd.Println(headingStyle.Render("Chat: " + doc.Name))
	cmd.Println(mutedStyle.Render(`Ask a question, or type "exit" to quit.`))

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		answer, err := ask(cmd.Context(), s, a, question)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			log.Error().Err(err).Msg("Failed to answer")
			continue
		}
		cmd.Println(answer)
		cmd.Println()
	}
	return scanner.Err()
}

func ask(ctx context.Context, s *rag.Session, a *app, question string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.LLM.TimeoutSecs)*time.Second)
	defer cancel()

	answer, err := a.pipeline.Ask(ctx, s, question)
	if err != nil {
		return "", describe(err)
	}
	return answer, nil
}
