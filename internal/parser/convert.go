package parser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"document-quiz/internal/config"
	"document-quiz/internal/models"
)

// Converter turns a legacy .ppt file into a .pptx file.
type Converter interface {
	Available() bool
	Convert(ctx context.Context, path string) (string, error)
}

// CommandRunner executes external commands.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// UnavailableConverter is used on hosts without an office suite.
type UnavailableConverter struct {
	Reason string
}

func (UnavailableConverter) Available() bool { return false }

func (u UnavailableConverter) Convert(context.Context, string) (string, error) {
	if u.Reason == "" {
		return "", models.ErrConverterUnavailable
	}
	return "", fmt.Errorf("%w: %s", models.ErrConverterUnavailable, u.Reason)
}

// SofficeConverter converts through a headless LibreOffice binary.
type SofficeConverter struct {
	command string
	timeout time.Duration
	runner  CommandRunner
}

func NewSofficeConverter(command string, timeout time.Duration, runner CommandRunner) *SofficeConverter {
	if runner == nil {
		runner = execRunner{}
	}
	return &SofficeConverter{command: command, timeout: timeout, runner: runner}
}

func (c *SofficeConverter) Available() bool { return true }

// Convert writes <name>.pptx next to the source file. The returned path is
// set whenever a converted file may exist, including on error, so the caller
// can remove it.
func (c *SofficeConverter) Convert(ctx context.Context, path string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	outDir := filepath.Dir(path)
	target := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+FormatPPTX.Ext())

	out, err := c.runner.Run(ctx, c.command, "--headless", "--convert-to", "pptx", "--outdir", outDir, path)
	if err != nil {
		return target, fmt.Errorf("%s: %w: %s", c.command, err, strings.TrimSpace(string(out)))
	}
	if _, err := os.Stat(target); err != nil {
		return "", fmt.Errorf("converted file missing: %w", err)
	}
	return target, nil
}

// DetectConverter returns a soffice converter when the binary is on PATH.
func DetectConverter(cfg config.ConverterConfig) Converter {
	if cfg.Disabled {
		return UnavailableConverter{Reason: "disabled in config"}
	}
	bin, err := exec.LookPath(cfg.Command)
	if err != nil {
		log.Debug().Err(err).Str("command", cfg.Command).Msg("Office converter not found, .ppt support disabled")
		return UnavailableConverter{Reason: cfg.Command + " not found"}
	}
	return NewSofficeConverter(bin, time.Duration(cfg.TimeoutSecs)*time.Second, nil)
}

// PPTExtractor converts to PPTX, extracts it, and removes the converted file.
type PPTExtractor struct {
	converter Converter
	pptx      Extractor
}

func NewPPTExtractor(converter Converter) *PPTExtractor {
	if converter == nil {
		converter = UnavailableConverter{}
	}
	return &PPTExtractor{converter: converter, pptx: PPTXExtractor{}}
}

func (e *PPTExtractor) Extract(ctx context.Context, filePath string) (string, error) {
	if !e.converter.Available() {
		_, err := e.converter.Convert(ctx, filePath)
		return "", fmt.Errorf("%w: .ppt requires an office converter: %w", models.ErrUnsupportedFormat, err)
	}

	converted, err := e.converter.Convert(ctx, filePath)
	if converted != "" {
		defer removeFile(converted)
	}
	if err != nil {
		return "", &models.ExtractionError{Stage: "convert", Format: string(FormatPPT), Err: err}
	}
	return e.pptx.Extract(ctx, converted)
}

func removeFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("Failed to remove converted file")
	}
}
