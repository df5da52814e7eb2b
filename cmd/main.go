package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"document-quiz/internal/config"
	"document-quiz/internal/embedding"
	"document-quiz/internal/helper"
	"document-quiz/internal/llmservice"
	"document-quiz/internal/models"
	"document-quiz/internal/parser"
	"document-quiz/internal/rag"
)

const defaultConfigPath = "./configs/config.yaml"

var (
	configPath   string
	verbose      bool
	filePath     string
	numQuestions int

	cfg *config.Config

	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
)

var rootCmd = &cobra.Command{
	Use:           "docquiz",
	Short:         "Generate quizzes and chat about PDF, PowerPoint and Word documents",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.LoadEnv(); err != nil {
			return fmt.Errorf("load .env: %w", err)
		}
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		setupLogging(cfg.LogLevel, verbose)
		log.Debug().Str("path", configPath).Msg("Loaded config")
		return nil
	},
}

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Generate a multiple-choice quiz from a document",
	RunE:  runQuiz,
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Print the redacted chunks of a document as JSON",
	RunE:  runExtract,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	for _, c := range []*cobra.Command{quizCmd, chatCmd, extractCmd} {
		c.Flags().StringVarP(&filePath, "file", "f", "", "path to a .pdf, .pptx, .ppt or .docx file")
		_ = c.MarkFlagRequired("file")
		rootCmd.AddCommand(c)
	}
	quizCmd.Flags().IntVarP(&numQuestions, "questions", "n", 0, "number of questions (bounded by quiz.min_questions and quiz.max_questions)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func setupLogging(level string, verbose bool) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	if verbose {
		lvl = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Caller().Logger()
}

// app holds the providers for one command run.
type app struct {
	pipeline *rag.Pipeline
	closers  []io.Closer
}

func newApp(withProviders bool) (*app, error) {
	dispatcher := parser.NewDispatcher(
		parser.WithTempDir(cfg.TempDir),
		parser.WithConverter(parser.DetectConverter(cfg.Converter)),
	)
	if !withProviders {
		return &app{pipeline: rag.NewPipeline(cfg, dispatcher, nil, nil)}, nil
	}

	a := &app{}
	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		return nil, fmt.Errorf("init embedder: %w", err)
	}
	a.track(embedder)

	generator, err := llmservice.NewGenerator(&cfg.LLM)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init generator: %w", err)
	}
	a.track(generator)

	a.pipeline = rag.NewPipeline(cfg, dispatcher, embedder, generator)
	return a, nil
}

func (a *app) track(v any) {
	if c, ok := v.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close provider client")
		}
	}
}

// loadDocument validates the extension before reading so unsupported input
// fails without touching any provider.
func loadDocument(path string) (models.Document, error) {
	if _, err := parser.DetectFormat(path); err != nil {
		return models.Document{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	return models.Document{Name: filepath.Base(path), Content: data}, nil
}

func processDocument(ctx context.Context, a *app, s *rag.Session, doc models.Document) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.EmbedLLM.TimeoutSecs)*time.Second)
	defer cancel()

	stats, err := a.pipeline.Process(ctx, s, doc)
	if err != nil {
		return describe(err)
	}
	log.Info().Str("document", stats.Document).Int("characters", stats.Characters).Int("chunks", stats.Chunks).Msg("Indexed document")
	return nil
}

// describe adds a user-facing hint to the well-known failure kinds.
func describe(err error) error {
	var pe *models.ProviderError
	switch {
	case errors.Is(err, models.ErrConverterUnavailable):
		return fmt.Errorf("%w (install LibreOffice or convert the file to .pptx)", err)
	case errors.Is(err, models.ErrUnsupportedFormat):
		return fmt.Errorf("%w (supported: .pdf, .pptx, .ppt, .docx)", err)
	case errors.Is(err, models.ErrEmptyContent):
		return fmt.Errorf("%w (the file may be scanned or image-only)", err)
	case errors.As(err, &pe):
		return fmt.Errorf("model provider %s failed: %w", pe.Provider, err)
	}
	return err
}

func runQuiz(cmd *cobra.Command, _ []string) error {
	doc, err := loadDocument(filePath)
	if err != nil {
		return describe(err)
	}
	n := cfg.Quiz.ClampQuestions(numQuestions)
	if numQuestions != 0 && n != numQuestions {
		log.Warn().Int("requested", numQuestions).Int("using", n).Msg("Question count out of range")
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

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(cfg.LLM.TimeoutSecs)*time.Second)
	defer cancel()
	quiz, err := a.pipeline.GenerateQuiz(ctx, s, n)
	if err != nil {
		return describe(err)
	}

	if parsed, incomplete := checkQuiz(quiz); len(parsed) != n || incomplete > 0 {
		log.Warn().Int("requested", n).Int("parsed", len(parsed)).Int("incomplete", incomplete).Msg("Quiz does not follow the requested format exactly")
	}

	cmd.Println(headingStyle.Render(fmt.Sprintf("Quiz: %s (%d questions)", doc.Name, n)))
	cmd.Println()
	cmd.Println(quiz)
	return nil
}

// checkQuiz parses generated quiz text and counts questions missing an
// option or a valid answer.
func checkQuiz(quiz string) ([]models.QuizQuestion, int) {
	parsed := rag.ParseQuiz(quiz)
	incomplete := 0
	for _, q := range parsed {
		if !rag.Complete(q) {
			incomplete++
		}
	}
	return parsed, incomplete
}

func runExtract(cmd *cobra.Command, _ []string) error {
	doc, err := loadDocument(filePath)
	if err != nil {
		return describe(err)
	}
	a, err := newApp(false)
	if err != nil {
		return err
	}

	chunks, err := a.pipeline.Chunks(cmd.Context(), doc)
	if err != nil {
		return describe(err)
	}
	log.Info().Str("document", doc.Name).Int("chunks", len(chunks)).Msg("Extracted document")
	return helper.PrettyPrint(cmd.OutOrStdout(), chunks)
}
