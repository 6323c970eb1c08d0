// Package encode produces compact machine-readable parameter records,
// suitable for embedding in script manifests.
package encode

import (
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/mi-examples/cs-helper/internal/analyzer"
)

// indexRowPattern matches synthetic rows produced from index signatures,
// which have no concrete parameter name to encode.
var indexRowPattern = regexp.MustCompile(`^\[key: (string|number)\]$`)

// Record is one encodable parameter.
type Record struct {
	Name     string
	Type     string
	Optional bool
	Secret   bool
	Default  string
}

// Records flattens an extraction result into encodable records. Synthetic
// index-signature rows are dropped. When the same parameter name appears in
// multiple declaration calls, the last call wins.
func Records(result *analyzer.ExtractionResult) []Record {
	var records []Record
	index := make(map[string]int)

	for _, call := range result.Calls {
		for _, field := range call.Fields {
			if indexRowPattern.MatchString(field.Name) {
				continue
			}

			def, _ := call.Default(field.Name)
			rec := Record{
				Name:     field.Name,
				Type:     field.Type,
				Optional: field.Optional,
				Secret:   field.Type == analyzer.KindPassword,
				Default:  def,
			}

			if i, ok := index[rec.Name]; ok {
				records[i] = rec
				continue
			}
			index[rec.Name] = len(records)
			records = append(records, rec)
		}
	}

	return records
}

// Compact serializes records as newline-separated name=type[:flags]
// entries, base64url-encoded. Flags: "opt" for optional parameters,
// "secret" for sensitive ones. Defaults append as "=<value>" after the
// flags.
func Compact(records []Record) string {
	lines := make([]string, 0, len(records))
	for _, rec := range records {
		var b strings.Builder
		b.WriteString(rec.Name)
		b.WriteString("=")
		b.WriteString(rec.Type)

		var flags []string
		if rec.Optional {
			flags = append(flags, "opt")
		}
		if rec.Secret {
			flags = append(flags, "secret")
		}
		if len(flags) > 0 {
			b.WriteString(":")
			b.WriteString(strings.Join(flags, ","))
		}
		if rec.Default != "" {
			b.WriteString("=")
			b.WriteString(rec.Default)
		}
		lines = append(lines, b.String())
	}

	payload := strings.Join(lines, "\n")
	return base64.URLEncoding.EncodeToString([]byte(payload))
}

// EncodeResult is the one-call form: flatten, filter, and serialize.
func EncodeResult(result *analyzer.ExtractionResult) string {
	return Compact(Records(result))
}
