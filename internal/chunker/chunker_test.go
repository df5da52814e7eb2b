package chunker

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sharedOverlap returns the length of the longest prefix of next, at most
// maxRunes runes, that is also a suffix of prev.
func sharedOverlap(prev, next string, maxRunes int) int {
	best := 0
	runes := 0
	for i := range next {
		if i == 0 {
			continue
		}
		runes++
		if runes > maxRunes {
			break
		}
		if strings.HasSuffix(prev, next[:i]) {
			best = i
		}
	}
	return best
}

func numberedWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i)
	}
	return strings.Join(words, " ")
}

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c := New()
		assert.Equal(t, DefaultChunkSize, c.ChunkSize())
		assert.Equal(t, DefaultChunkOverlap, c.Overlap())
	})

	t.Run("custom values", func(t *testing.T) {
		c := New(WithChunkSize(500), WithChunkOverlap(50))
		assert.Equal(t, 500, c.ChunkSize())
		assert.Equal(t, 50, c.Overlap())
	})

	t.Run("overlap clamped below chunk size", func(t *testing.T) {
		c := New(WithChunkSize(100), WithChunkOverlap(150))
		assert.Less(t, c.Overlap(), c.ChunkSize())
	})

	t.Run("invalid values ignored", func(t *testing.T) {
		c := New(WithChunkSize(0), WithChunkOverlap(-1))
		assert.Equal(t, DefaultChunkSize, c.ChunkSize())
		assert.Equal(t, DefaultChunkOverlap, c.Overlap())
	})
}

func TestChunk_Empty(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\n\t"} {
		chunks, err := New().Chunk(in)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	}
}

func TestChunk_SingleSentence(t *testing.T) {
	sentence := "The capital of France is Paris."
	chunks, err := New(WithSource("france.pdf")).Chunk(sentence)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, sentence, chunks[0].Content)
	assert.Equal(t, 1, chunks[0].ChunkID)
	assert.Equal(t, "france.pdf", chunks[0].Source)
}

func TestChunk_BoundsAndOverlap(t *testing.T) {
	text := numberedWords(1200)
	c := New()

	chunks, err := c.Chunk(text)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 2)

	for i, chunk := range chunks {
		assert.Equal(t, i+1, chunk.ChunkID)
		assert.NotEmpty(t, strings.TrimSpace(chunk.Content))
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk.Content), DefaultChunkSize)
	}

	for i := 1; i < len(chunks); i++ {
		shared := sharedOverlap(chunks[i-1].Content, chunks[i].Content, DefaultChunkOverlap)
		assert.Positive(t, shared, "chunks %d and %d should overlap", i, i+1)
	}
}

func TestChunk_CoversEveryWord(t *testing.T) {
	text := numberedWords(900)
	chunks, err := New(WithChunkSize(300), WithChunkOverlap(60)).Chunk(text)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, chunk := range chunks {
		for _, w := range strings.Fields(chunk.Content) {
			seen[w] = true
		}
	}
	for _, w := range strings.Fields(text) {
		assert.True(t, seen[w], "word %q missing from chunks", w)
	}
}

func TestChunk_PrefersParagraphBreaks(t *testing.T) {
	para := strings.Repeat("alpha beta gamma ", 3)
	text := strings.TrimSpace(para) + "\n\n" + strings.TrimSpace(para) + "\n\n" + strings.TrimSpace(para)

	chunks, err := New(WithChunkSize(60), WithChunkOverlap(0)).Chunk(text)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	for _, chunk := range chunks {
		assert.Equal(t, strings.TrimSpace(para), chunk.Content)
	}
}

func TestChunk_LongTokenFallsBackToCharacters(t *testing.T) {
	text := strings.Repeat("a", 2500)
	chunks, err := New().Chunk(text)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 2)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk.Content), DefaultChunkSize)
	}
}

func TestChunk_CountsRunes(t *testing.T) {
	text := strings.Repeat("Đáp án đúng là câu trả lời chính xác. ", 80)
	chunks, err := New(WithChunkSize(200), WithChunkOverlap(40)).Chunk(text)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk.Content), 200)
		assert.True(t, utf8.ValidString(chunk.Content))
	}
}
