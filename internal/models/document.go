package models

// Document is an uploaded file: its original name and its bytes
type Document struct {
	Name    string
	Content []byte
}

// Chunk represents a window of extracted text with metadata
type Chunk struct {
	ChunkID int    `json:"chunk_id"`
	Content string `json:"content"`
	Source  string `json:"source,omitempty"`
}

// ChunkEmbedding pairs a chunk with its embedding vector
type ChunkEmbedding struct {
	Chunk
	Embedding []float32
}

// SearchResult is a chunk returned by similarity search
type SearchResult struct {
	Chunk
	Similarity float32
}

// ChatTurn is one question and the answer given to it
type ChatTurn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ChatHistory is the ordered list of turns in a session
type ChatHistory []ChatTurn

// QuizQuestion is a parsed multiple-choice question
type QuizQuestion struct {
	Number  int               `json:"number"`
	Text    string            `json:"text"`
	Options map[string]string `json:"options"`
	Answer  string            `json:"answer"`
}
