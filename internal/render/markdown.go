// Package render turns extraction results into human-readable output.
package render

import (
	"fmt"
	"strings"

	"github.com/mi-examples/cs-helper/internal/analyzer"
)

var tableHeader = []string{"Name", "Type", "Required", "Default", "Description", "Example", "Accepted values"}

// Markdown renders an extraction result as a sequence of markdown sections,
// one per declaration call. Calls with structured fields become tables;
// textual-fallback calls render their raw type in a fenced code block.
func Markdown(result *analyzer.ExtractionResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Parameters: %s\n", result.Entry)

	if len(result.Calls) == 0 {
		b.WriteString("\nNo parameter declarations found.\n")
		return b.String()
	}

	for _, call := range result.Calls {
		fmt.Fprintf(&b, "\n## %s:%d\n\n", call.File, call.Line)
		writeCall(&b, call)
	}

	return b.String()
}

func writeCall(b *strings.Builder, call analyzer.DeclarationCall) {
	if len(call.Fields) == 0 {
		if call.RawType != "" {
			b.WriteString("```\n")
			b.WriteString(call.RawType)
			b.WriteString("\n```\n")
		} else {
			b.WriteString("No parameter shape available.\n")
		}
		writeUnmatchedDefaults(b, call)
		return
	}

	writeRow(b, tableHeader)
	writeRow(b, []string{"---", "---", "---", "---", "---", "---", "---"})

	for _, field := range call.Fields {
		def, _ := call.Default(field.Name)
		required := "yes"
		if field.Optional {
			required = "no"
		}
		writeRow(b, []string{
			escapeCell(field.Name),
			escapeCell(field.Type),
			required,
			escapeCell(def),
			escapeCell(field.Description),
			escapeCell(field.Example),
			escapeCell(strings.Join(field.AcceptedValues, ", ")),
		})
	}
}

// writeUnmatchedDefaults lists defaults for calls without structured
// fields, so the information is not silently dropped.
func writeUnmatchedDefaults(b *strings.Builder, call analyzer.DeclarationCall) {
	if len(call.Defaults) == 0 {
		return
	}
	b.WriteString("\nDefaults:\n\n")
	for _, d := range call.Defaults {
		fmt.Fprintf(b, "- `%s`: %s\n", d.Name, escapeCell(d.Value))
	}
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("| ")
	b.WriteString(strings.Join(cells, " | "))
	b.WriteString(" |\n")
}

// escapeCell keeps cell content on one table row.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
