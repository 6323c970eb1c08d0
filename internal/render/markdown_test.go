package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mi-examples/cs-helper/internal/analyzer"
)

// Test Plan for markdown rendering:
// - Results with no calls render a placeholder line
// - Structured calls render one table row per field with defaults joined in
// - Pipes and newlines in cell content are escaped
// - Textual-fallback calls render a fenced block plus their defaults

func TestMarkdown_EmptyResult(t *testing.T) {
	t.Parallel()

	out := Markdown(&analyzer.ExtractionResult{Entry: "/src/empty.ts"})
	assert.Contains(t, out, "# Parameters: /src/empty.ts")
	assert.Contains(t, out, "No parameter declarations found.")
}

func TestMarkdown_FieldTable(t *testing.T) {
	t.Parallel()

	result := &analyzer.ExtractionResult{
		Entry: "/src/job.ts",
		Calls: []analyzer.DeclarationCall{{
			File: "/src/job.ts",
			Line: 4,
			Fields: []analyzer.FieldRow{
				{Name: "host", Type: analyzer.KindString, Description: "Target host"},
				{Name: "mode", Type: analyzer.KindString, Optional: true, AcceptedValues: []string{"fast", "slow"}},
			},
			Defaults: []analyzer.DefaultValue{{Name: "host", Value: "'localhost'"}},
		}},
	}

	out := Markdown(result)
	assert.Contains(t, out, "## /src/job.ts:4")
	assert.Contains(t, out, "| Name | Type | Required | Default | Description | Example | Accepted values |")
	assert.Contains(t, out, "| host | string | yes | 'localhost' | Target host |  |  |")
	assert.Contains(t, out, "| mode | string | no |  |  |  | fast, slow |")
}

func TestMarkdown_CellEscaping(t *testing.T) {
	t.Parallel()

	result := &analyzer.ExtractionResult{
		Entry: "/src/job.ts",
		Calls: []analyzer.DeclarationCall{{
			File: "/src/job.ts",
			Line: 1,
			Fields: []analyzer.FieldRow{
				{Name: "v", Type: "number | string", Description: "multi\nline"},
			},
		}},
	}

	out := Markdown(result)
	assert.Contains(t, out, "number \\| string")
	assert.Contains(t, out, "multi line")
	assert.NotContains(t, out, "multi\nline")
}

func TestMarkdown_RawTypeFallback(t *testing.T) {
	t.Parallel()

	result := &analyzer.ExtractionResult{
		Entry: "/src/job.ts",
		Calls: []analyzer.DeclarationCall{{
			File:     "/src/job.ts",
			Line:     2,
			RawType:  "a: string\nb?: number",
			Defaults: []analyzer.DefaultValue{{Name: "a", Value: "'x'"}},
		}},
	}

	out := Markdown(result)
	assert.Contains(t, out, "```\na: string\nb?: number\n```")
	assert.Contains(t, out, "- `a`: 'x'")
	assert.False(t, strings.Contains(out, "| Name |"), "fallback calls must not render a table")
}
