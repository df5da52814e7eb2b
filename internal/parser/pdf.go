package parser

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"

	"document-quiz/internal/models"
	"document-quiz/internal/redact"
)

// pageSource abstracts a paged document so page-level recovery can be tested.
type pageSource interface {
	NumPage() int
	PageText(i int) (string, error)
}

type pdfPages struct {
	reader *pdf.Reader
}

func (p pdfPages) NumPage() int {
	return p.reader.NumPage()
}

// PageText returns the plain text of page i (1-based). Panics raised by the
// PDF decoder on malformed content streams are returned as errors.
func (p pdfPages) PageText(i int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decode page: %v", r)
		}
	}()
	page := p.reader.Page(i)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

// PDFExtractor extracts page text in order, redacting each page.
type PDFExtractor struct{}

func (PDFExtractor) Extract(ctx context.Context, filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", &models.ExtractionError{Stage: "open", Format: string(FormatPDF), Err: err}
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", &models.ExtractionError{Stage: "open", Format: string(FormatPDF), Err: err}
	}

	reader, err := newPDFReader(f, stat.Size())
	if err != nil {
		return "", &models.ExtractionError{Stage: "read", Format: string(FormatPDF), Err: err}
	}

	return extractPages(ctx, pdfPages{reader: reader})
}

func newPDFReader(f *os.File, size int64) (reader *pdf.Reader, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()
	return pdf.NewReader(f, size)
}

// extractPages joins redacted page texts. Unreadable pages are logged and
// skipped; the document fails only when nothing is left.
func extractPages(ctx context.Context, pages pageSource) (string, error) {
	numPages := pages.NumPage()
	texts := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		pageText, err := pages.PageText(i)
		if err != nil {
			log.Warn().Err(err).Int("page", i).Msg("Skipping unreadable PDF page")
			continue
		}
		texts = append(texts, redact.Redact(pageText))
	}

	text := strings.Join(texts, "\n")
	if strings.TrimSpace(text) == "" {
		return "", models.ErrEmptyContent
	}
	log.Debug().Int("pages", numPages).Int("chars", len(text)).Msg("Extracted PDF text")
	return text, nil
}
