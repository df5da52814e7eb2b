// Package chromemdb holds a document's chunk vectors in a private in-memory chromem-go collection.
package chromemdb

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"document-quiz/internal/embedding"
	"document-quiz/internal/models"
)

const (
	collectionName = "document_chunks"

	metaChunkID = "chunk_id"
	metaSource  = "source"

	DefaultTopK = 4
)

type BuildOptions struct {
	// Concurrency for chromem-go AddDocuments; zero means runtime.NumCPU.
	Concurrency int
}

// Index is the vector index of one processed document. A nil *Index is not
// ready and every query on it fails with models.ErrNotReady.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   embedding.Embedder
	dimension  int
}

// Build embeds every chunk and stores it in a new in-memory collection.
func Build(ctx context.Context, embedder embedding.Embedder, chunks []models.Chunk, opts BuildOptions) (*Index, error) {
	if len(chunks) == 0 {
		return nil, models.ErrEmptyIndex
	}

	chunkEmbeddings, err := embedding.GenerateEmbeddings(ctx, embedder, chunks)
	if err != nil {
		return nil, err
	}

	db := chromem.NewDB()
	c, err := db.GetOrCreateCollection(collectionName, nil, embeddingFunc(embedder))
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}

	docs := make([]chromem.Document, len(chunkEmbeddings))
	for i, ce := range chunkEmbeddings {
		docs[i] = chromem.Document{
			ID:      strconv.Itoa(ce.ChunkID),
			Content: ce.Content,
			Metadata: map[string]string{
				metaChunkID: strconv.Itoa(ce.ChunkID),
				metaSource:  ce.Source,
			},
			Embedding: ce.Embedding,
		}
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	if err := c.AddDocuments(ctx, docs, concurrency); err != nil {
		return nil, fmt.Errorf("failed to add documents: %w", err)
	}

	log.Debug().Int("chunks", len(docs)).Int("dimension", len(chunkEmbeddings[0].Embedding)).Msg("Built vector index")
	return &Index{
		db:         db,
		collection: c,
		embedder:   embedder,
		dimension:  len(chunkEmbeddings[0].Embedding),
	}, nil
}

// embeddingFunc lets chromem-go embed on its own should a caller pass text
// without a vector.
func embeddingFunc(embedder embedding.Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return embedding.Embed(ctx, embedder, text)
	}
}

// Count returns the number of indexed chunks.
func (idx *Index) Count() int {
	if idx == nil {
		return 0
	}
	return idx.collection.Count()
}

func (idx *Index) Dimension() int {
	if idx == nil {
		return 0
	}
	return idx.dimension
}

// Search returns up to k chunks, most similar first. k <= 0 uses DefaultTopK
// and k is clamped to the number of indexed chunks.
func (idx *Index) Search(ctx context.Context, query string, k int) ([]models.SearchResult, error) {
	if idx == nil {
		return nil, models.ErrNotReady
	}
	if k <= 0 {
		k = DefaultTopK
	}
	if n := idx.collection.Count(); k > n {
		k = n
	}

	queryEmbedding, err := embedding.Embed(ctx, idx.embedder, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(queryEmbedding) != idx.dimension {
		return nil, models.WrapProviderError("embedder", "embed",
			fmt.Errorf("query dimension %d does not match index dimension %d", len(queryEmbedding), idx.dimension))
	}

	results, err := idx.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: queryEmbedding,
		NResults:       k,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	out := make([]models.SearchResult, len(results))
	for i, r := range results {
		id, _ := strconv.Atoi(r.Metadata[metaChunkID])
		out[i] = models.SearchResult{
			Chunk: models.Chunk{
				ChunkID: id,
				Content: r.Content,
				Source:  r.Metadata[metaSource],
			},
			Similarity: r.Similarity,
		}
	}
	log.Debug().Int("k", k).Int("results", len(out)).Msg("Searched vector index")
	return out, nil
}
