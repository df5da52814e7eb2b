package redact

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedact(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "no sensitive content",
			input:    "The capital of France is Paris.",
			expected: "The capital of France is Paris.",
		},
		{
			name:     "ten digit phone number",
			input:    "Call 0912345678 today",
			expected: "Call  today",
		},
		{
			name:     "twelve digit id",
			input:    "ID: 123456789012.",
			expected: "ID: .",
		},
		{
			name:     "short numbers kept",
			input:    "Room 12345678 on floor 3",
			expected: "Room 12345678 on floor 3",
		},
		{
			name:     "long numbers kept",
			input:    "Serial 1234567890123",
			expected: "Serial 1234567890123",
		},
		{
			name:     "email",
			input:    "Contact jane.doe@example.com for details",
			expected: "Contact  for details",
		},
		{
			name:     "bullet glyph",
			input:    "• First item\n  ◦ Second item\nplain line",
			expected: "First item\nSecond item\nplain line",
		},
		{
			name:     "dash bullet",
			input:    "- apples\n- pears",
			expected: "apples\npears",
		},
		{
			name:     "bullet only at line start",
			input:    "a - b • c",
			expected: "a - b • c",
		},
		{
			name:     "blank lines preserved",
			input:    "intro\n\n• point",
			expected: "intro\n\npoint",
		},
		{
			name:     "stacked bullets",
			input:    "• • nested",
			expected: "nested",
		},
		{
			name:     "dashed rule of bullets",
			input:    strings.Repeat("- ", 20) + "item",
			expected: "item",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Redact(tc.input))
		})
	}
}

func TestRedact_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"• - ◦ item\n123456789.x@y.com\n0123456789",
		"mail a@b.com and b@c.org, phone 0987654321",
		"   \t• indented\n-\tdash tab",
		strings.Repeat("• 1234567890 a@b.io\n", 20),
		strings.Repeat("- ", 20) + "item",
		strings.Repeat("• ◦ ", 30) + "deep\n" + strings.Repeat("-", 40),
	}
	for _, in := range inputs {
		once := Redact(in)
		assert.Equal(t, once, Redact(once), "input %q", in)
	}
}

func TestRedact_RemainderUnchanged(t *testing.T) {
	in := "Total: 42 items, ref 0123456789, owner x@y.vn; done"
	out := Redact(in)
	assert.Equal(t, "Total: 42 items, ref , owner ; done", out)
	assert.NotContains(t, out, "0123456789")
	assert.NotContains(t, out, "@")
}
