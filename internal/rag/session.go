package rag

import (
	"sync"

	"document-quiz/internal/chromemdb"
	"document-quiz/internal/helper"
	"document-quiz/internal/models"
)

// Session holds the state of one user's document: its index and chat
// history. Sessions share nothing with each other.
type Session struct {
	ID string

	mu         sync.Mutex
	index      *chromemdb.Index
	history    models.ChatHistory
	document   string
	generation int
}

func NewSession() (*Session, error) {
	id, err := helper.GenerateUUID()
	if err != nil {
		return nil, err
	}
	return &Session{ID: id}, nil
}

func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index != nil
}

// Index returns the current index, nil when no document is processed.
func (s *Session) Index() *chromemdb.Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

func (s *Session) Document() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.document
}

// History returns a copy of the chat turns so far.
func (s *Session) History() models.ChatHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(models.ChatHistory(nil), s.history...)
}

// Reset drops the index and history.
func (s *Session) Reset() {
	s.replace(nil, "")
}

func (s *Session) replace(idx *chromemdb.Index, document string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = idx
	s.document = document
	s.history = nil
	s.generation++
}

func (s *Session) snapshot() (*chromemdb.Index, models.ChatHistory, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index, append(models.ChatHistory(nil), s.history...), s.generation
}

// appendTurn records turn unless the document changed since generation.
func (s *Session) appendTurn(generation int, turn models.ChatTurn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return
	}
	s.history = append(s.history, turn)
}
