package models

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat indicates the file extension is not one of .pdf, .pptx, .ppt, .docx.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrConverterUnavailable indicates no office converter exists on this host.
	ErrConverterUnavailable = errors.New("office converter unavailable")

	// ErrEmptyContent indicates extraction produced no text after redaction.
	ErrEmptyContent = errors.New("no text extracted from document")

	// ErrEmptyIndex indicates an index build was attempted with no chunks.
	ErrEmptyIndex = errors.New("cannot build index from empty chunk set")

	// ErrNotReady indicates no document has been processed yet.
	ErrNotReady = errors.New("no document has been processed")

	ErrInvalidQuestionCount = errors.New("number of questions must be positive")
	ErrEmptyQuestion        = errors.New("question cannot be empty")
)

// ExtractionError reports a failure while turning a file into text.
type ExtractionError struct {
	Stage  string
	Format string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Format, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ProviderError reports a failed or unusable embedding/generation call.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// WrapProviderError attributes err to a provider call unless it already is one.
func WrapProviderError(provider, op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}
	return &ProviderError{Provider: provider, Op: op, Err: err}
}
