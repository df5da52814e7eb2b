// Package rag runs the document pipeline: extract, chunk, index, then quiz or chat.
package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"document-quiz/internal/chromemdb"
	"document-quiz/internal/chunker"
	"document-quiz/internal/config"
	"document-quiz/internal/embedding"
	"document-quiz/internal/llmservice"
	"document-quiz/internal/models"
)

// Retriever finds the chunks most similar to a query.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]models.SearchResult, error)
}

// Extractor turns an uploaded document into redacted text.
type Extractor interface {
	Extract(ctx context.Context, doc models.Document) (string, error)
}

type ProcessStats struct {
	Document   string
	Characters int
	Chunks     int
}

// Pipeline wires extraction, chunking, indexing and generation. It holds no
// per-document state; that lives in Session.
type Pipeline struct {
	extractor   Extractor
	embedder    embedding.Embedder
	chunkSize   int
	overlap     int
	concurrency int
	quiz        *QuizGenerator
	chat        *ConversationalRetriever
}

func NewPipeline(cfg *config.Config, extractor Extractor, embedder embedding.Embedder, generator llmservice.Generator) *Pipeline {
	return &Pipeline{
		extractor:   extractor,
		embedder:    embedder,
		chunkSize:   cfg.RAG.ChunkSize,
		overlap:     cfg.RAG.Overlap(),
		concurrency: cfg.RAG.Concurrency,
		quiz:        NewQuizGenerator(generator, cfg.RAG.TopK),
		chat:        NewConversationalRetriever(generator, cfg.RAG.TopK),
	}
}

// Chunks extracts doc and splits it without building an index.
func (p *Pipeline) Chunks(ctx context.Context, doc models.Document) ([]models.Chunk, error) {
	text, err := p.extractor.Extract(ctx, doc)
	if err != nil {
		return nil, err
	}
	return p.chunk(doc.Name, text)
}

func (p *Pipeline) chunk(source, text string) ([]models.Chunk, error) {
	c := chunker.New(
		chunker.WithChunkSize(p.chunkSize),
		chunker.WithChunkOverlap(p.overlap),
		chunker.WithSource(source),
	)
	chunks, err := c.Chunk(text)
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", source, err)
	}
	return chunks, nil
}

// Process replaces the session's document. On success the new index is
// installed and the chat history reset; on failure the session is cleared.
func (p *Pipeline) Process(ctx context.Context, s *Session, doc models.Document) (ProcessStats, error) {
	stats := ProcessStats{Document: doc.Name}

	idx, err := p.build(ctx, doc, &stats)
	if err != nil {
		s.Reset()
		log.Warn().Err(err).Str("session", s.ID).Str("document", doc.Name).Msg("Processing failed, session cleared")
		return stats, err
	}

	s.replace(idx, doc.Name)
	log.Info().Str("session", s.ID).Str("document", doc.Name).Int("chunks", stats.Chunks).Msg("Document processed")
	return stats, nil
}

func (p *Pipeline) build(ctx context.Context, doc models.Document, stats *ProcessStats) (*chromemdb.Index, error) {
	text, err := p.extractor.Extract(ctx, doc)
	if err != nil {
		return nil, err
	}
	stats.Characters = len([]rune(text))

	chunks, err := p.chunk(doc.Name, text)
	if err != nil {
		return nil, err
	}
	stats.Chunks = len(chunks)

	return chromemdb.Build(ctx, p.embedder, chunks, chromemdb.BuildOptions{Concurrency: p.concurrency})
}

// GenerateQuiz asks for n questions about the session's document.
func (p *Pipeline) GenerateQuiz(ctx context.Context, s *Session, n int) (string, error) {
	idx := s.Index()
	if idx == nil {
		return "", models.ErrNotReady
	}
	return p.quiz.Generate(ctx, idx, n)
}

// Ask answers question in the context of the session's history and records the turn.
func (p *Pipeline) Ask(ctx context.Context, s *Session, question string) (string, error) {
	idx, history, generation := s.snapshot()
	if idx == nil {
		return "", models.ErrNotReady
	}
	answer, err := p.chat.Answer(ctx, idx, question, history)
	if err != nil {
		return "", err
	}
	s.appendTurn(generation, models.ChatTurn{Question: strings.TrimSpace(question), Answer: answer})
	return answer, nil
}

// buildContext stuffs retrieved chunks into one block, most similar first.
func buildContext(results []models.SearchResult) string {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = r.Content
	}
	return strings.Join(parts, models.ContextSeparator)
}
