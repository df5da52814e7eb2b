// Package redact scrubs identifiers, e-mail addresses and bullet glyphs from extracted text.
package redact

import "regexp"

var (
	sensitivePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{9,12}\b`),
		regexp.MustCompile(`\b\d{10}\b`),
		regexp.MustCompile(`\b[\w.-]+@[\w.-]+\.\w+\b`),
	}

	bulletPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?m)^[ \t]*[\x{2022}\x{25E6}\x{26AB}][ \t]+`),
		regexp.MustCompile(`(?m)^[ \t]*[-•∙◦◎⦿⦾][ \t]+`),
	}
)

// Redact removes ID-like numbers, e-mail addresses and leading bullet markers.
// It is idempotent: the passes repeat until the text stops changing, which
// always terminates since every changing pass shortens the text.
func Redact(text string) string {
	for {
		next := redactOnce(text)
		if next == text {
			return next
		}
		text = next
	}
}

func redactOnce(text string) string {
	for _, re := range sensitivePatterns {
		text = re.ReplaceAllLiteralString(text, "")
	}
	for _, re := range bulletPatterns {
		text = re.ReplaceAllLiteralString(text, "")
	}
	return text
}
