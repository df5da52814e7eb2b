package parser

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"document-quiz/internal/models"
	"document-quiz/internal/redact"
)

const (
	presentationPart = "ppt/presentation.xml"
	presentationRels = "ppt/_rels/presentation.xml.rels"
)

var slidePartRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

type presentationXML struct {
	SlideIDs []struct {
		RelID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sldIdLst>sldId"`
}

type relationshipsXML struct {
	Relationships []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

type slideXML struct {
	Shapes []struct {
		TextBody *struct {
			Paragraphs []xmlParagraph `xml:"p"`
		} `xml:"txBody"`
	} `xml:"cSld>spTree>sp"`
}

// PPTXExtractor extracts shape text slide by slide, marking each slide.
type PPTXExtractor struct{}

func (PPTXExtractor) Extract(ctx context.Context, filePath string) (string, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return "", &models.ExtractionError{Stage: "open", Format: string(FormatPPTX), Err: err}
	}
	defer zr.Close()

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	var blocks []string
	for i, name := range slideOrder(files) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		slideNum := i + 1
		texts, err := readSlide(files[name])
		if err != nil {
			log.Warn().Err(err).Int("slide", slideNum).Msg("Skipping unreadable slide")
			continue
		}
		if len(texts) == 0 {
			continue
		}
		blocks = append(blocks, fmt.Sprintf(models.SlideMarker, slideNum))
		blocks = append(blocks, texts...)
	}

	text := strings.Join(blocks, "\n")
	if strings.TrimSpace(text) == "" {
		return "", models.ErrEmptyContent
	}
	log.Debug().Int("blocks", len(blocks)).Int("chars", len(text)).Msg("Extracted PPTX text")
	return text, nil
}

// slideOrder returns slide part names in presentation order. When the
// presentation manifest cannot be used it falls back to slide file numbering.
func slideOrder(files map[string]*zip.File) []string {
	ordered, err := manifestOrder(files)
	if err == nil && len(ordered) > 0 {
		return ordered
	}
	if err != nil {
		log.Debug().Err(err).Msg("Presentation manifest unusable, ordering slides by file name")
	}

	type numbered struct {
		name string
		num  int
	}
	var slides []numbered
	for name := range files {
		m := slidePartRe.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		slides = append(slides, numbered{name: name, num: num})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	names := make([]string, len(slides))
	for i, s := range slides {
		names[i] = s.name
	}
	return names
}

func manifestOrder(files map[string]*zip.File) ([]string, error) {
	var pres presentationXML
	if err := decodePart(files[presentationPart], &pres); err != nil {
		return nil, err
	}
	var rels relationshipsXML
	if err := decodePart(files[presentationRels], &rels); err != nil {
		return nil, err
	}

	targets := make(map[string]string, len(rels.Relationships))
	for _, rel := range rels.Relationships {
		targets[rel.ID] = rel.Target
	}

	names := make([]string, 0, len(pres.SlideIDs))
	for _, id := range pres.SlideIDs {
		target, ok := targets[id.RelID]
		if !ok {
			return nil, fmt.Errorf("slide relationship %q not found", id.RelID)
		}
		names = append(names, resolvePartName("ppt", target))
	}
	return names, nil
}

func resolvePartName(base, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return path.Join(base, target)
}

// readSlide returns the redacted, non-blank text of each text-bearing shape.
func readSlide(f *zip.File) ([]string, error) {
	var slide slideXML
	if err := decodePart(f, &slide); err != nil {
		return nil, err
	}

	var texts []string
	for _, shape := range slide.Shapes {
		if shape.TextBody == nil {
			continue
		}
		lines := make([]string, len(shape.TextBody.Paragraphs))
		for i, p := range shape.TextBody.Paragraphs {
			lines[i] = p.Text
		}
		text := redact.Redact(strings.Join(lines, "\n"))
		if strings.TrimSpace(text) == "" {
			continue
		}
		texts = append(texts, text)
	}
	return texts, nil
}

var errPartMissing = errors.New("part missing")

func decodePart(f *zip.File, v any) error {
	if f == nil {
		return errPartMissing
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return err
	}
	if err := xml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", f.Name, err)
	}
	return nil
}
