package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"document-quiz/internal/models"
)

// Format enumerates the supported document containers.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatPPTX Format = "pptx"
	FormatPPT  Format = "ppt"
	FormatDOCX Format = "docx"
)

// Formats lists every supported format in a stable order.
var Formats = []Format{FormatPDF, FormatPPTX, FormatPPT, FormatDOCX}

// Ext returns the canonical file extension, including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// DetectFormat resolves a format from the file name's extension, case-insensitively.
func DetectFormat(name string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(name))
	for _, f := range Formats {
		if ext == f.Ext() {
			return f, nil
		}
	}
	if ext == "" {
		return "", fmt.Errorf("%w: %q has no extension", models.ErrUnsupportedFormat, filepath.Base(name))
	}
	return "", fmt.Errorf("%w: %s", models.ErrUnsupportedFormat, ext)
}
