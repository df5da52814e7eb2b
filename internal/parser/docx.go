package parser

import (
	"context"
	"encoding/xml"
	"strings"

	"github.com/nguyenthenguyen/docx"
	"github.com/rs/zerolog/log"

	"document-quiz/internal/models"
	"document-quiz/internal/redact"
)

type wordDocument struct {
	Body struct {
		Paragraphs []xmlParagraph `xml:"p"`
		Tables     []wordTable    `xml:"tbl"`
	} `xml:"body"`
}

type wordTable struct {
	Rows []struct {
		Cells []wordCell `xml:"tc"`
	} `xml:"tr"`
}

type wordCell struct {
	Paragraphs []xmlParagraph `xml:"p"`
}

func (c wordCell) text() string {
	lines := make([]string, len(c.Paragraphs))
	for i, p := range c.Paragraphs {
		lines[i] = p.Text
	}
	return strings.Join(lines, "\n")
}

// DOCXExtractor extracts body paragraphs followed by table cells, row-major.
type DOCXExtractor struct{}

func (DOCXExtractor) Extract(ctx context.Context, filePath string) (string, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return "", &models.ExtractionError{Stage: "open", Format: string(FormatDOCX), Err: err}
	}
	defer r.Close()

	var doc wordDocument
	if err := xml.Unmarshal([]byte(r.Editable().GetContent()), &doc); err != nil {
		return "", &models.ExtractionError{Stage: "read", Format: string(FormatDOCX), Err: err}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	parts := make([]string, 0, len(doc.Body.Paragraphs))
	for _, p := range doc.Body.Paragraphs {
		parts = append(parts, redact.Redact(p.Text))
	}
	for _, table := range doc.Body.Tables {
		for _, row := range table.Rows {
			for _, cell := range row.Cells {
				parts = append(parts, redact.Redact(cell.text()))
			}
		}
	}

	text := strings.Join(parts, "\n")
	if strings.TrimSpace(text) == "" {
		return "", models.ErrEmptyContent
	}
	log.Debug().Int("paragraphs", len(doc.Body.Paragraphs)).Int("tables", len(doc.Body.Tables)).Msg("Extracted DOCX text")
	return text, nil
}
