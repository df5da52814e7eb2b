// Package parser turns uploaded documents into redacted plain text.
package parser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"document-quiz/internal/helper"
	"document-quiz/internal/models"
)

// Extractor turns a file of one format into redacted text.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Dispatcher routes documents to the extractor for their format and owns
// the lifecycle of the temporary copy.
type Dispatcher struct {
	extractors map[Format]Extractor
	tempDir    string
}

type Option func(*Dispatcher)

// WithTempDir sets the parent directory for temporary copies. Empty means os.TempDir.
func WithTempDir(dir string) Option {
	return func(d *Dispatcher) {
		d.tempDir = dir
	}
}

// WithConverter enables .ppt input through the given converter.
func WithConverter(c Converter) Option {
	return func(d *Dispatcher) {
		d.extractors[FormatPPT] = NewPPTExtractor(c)
	}
}

// WithExtractor replaces the extractor for one format.
func WithExtractor(f Format, e Extractor) Option {
	return func(d *Dispatcher) {
		d.extractors[f] = e
	}
}

func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		extractors: map[Format]Extractor{
			FormatPDF:  PDFExtractor{},
			FormatPPTX: PPTXExtractor{},
			FormatPPT:  NewPPTExtractor(UnavailableConverter{}),
			FormatDOCX: DOCXExtractor{},
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Extract materializes doc to a temporary file, extracts its text and
// removes every temporary file before returning.
func (d *Dispatcher) Extract(ctx context.Context, doc models.Document) (string, error) {
	format, err := DetectFormat(doc.Name)
	if err != nil {
		return "", err
	}
	extractor, ok := d.extractors[format]
	if !ok {
		return "", fmt.Errorf("%w: %s", models.ErrUnsupportedFormat, format.Ext())
	}

	path, cleanup, err := helper.MaterializeTemp(d.tempDir, doc.Name, doc.Content)
	if err != nil {
		return "", &models.ExtractionError{Stage: "materialize", Format: string(format), Err: err}
	}
	defer cleanup()

	log.Debug().Str("format", string(format)).Int("bytes", len(doc.Content)).Msg("Extracting document")

	text, err := extractor.Extract(ctx, path)
	if err != nil {
		if errors.Is(err, models.ErrUnsupportedFormat) {
			return "", err
		}
		return "", &models.ExtractionError{Stage: "extract", Format: string(format), Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &models.ExtractionError{Stage: "extract", Format: string(format), Err: models.ErrEmptyContent}
	}
	return text, nil
}

// ExtractFile reads a document from disk and extracts it.
func (d *Dispatcher) ExtractFile(ctx context.Context, filePath string) (string, error) {
	if _, err := DetectFormat(filePath); err != nil {
		return "", err
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", &models.ExtractionError{Stage: "read", Err: err}
	}
	return d.Extract(ctx, models.Document{Name: filepath.Base(filePath), Content: data})
}
