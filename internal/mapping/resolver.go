// Package mapping infers which spreadsheet header feeds each canonical field.
package mapping

import (
	"slices"
	"strings"
	"unicode"

	"github.com/AngelCh415/campaign-metrics/internal/models"
)

// Validation is the outcome of checking a mapping for required fields.
type Validation struct {
	Valid         bool           `json:"valid"`
	MissingFields []models.Field `json:"missingFields,omitempty"`
}

func normHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, "_", " ")
	return strings.Join(strings.Fields(h), " ")
}

func containsAny(h string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(h, m) {
			return true
		}
	}
	return false
}

// words splits a normalized header on anything that is not a letter, digit
// or percent sign.
func words(h string) []string {
	return strings.FieldsFunc(h, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '%'
	})
}

// containsWords reports whether the words of p appear consecutively in h.
func containsWords(h, p []string) bool {
	if len(p) == 0 {
		return false
	}
	for i := 0; i+len(p) <= len(h); i++ {
		if slices.Equal(h[i:i+len(p)], p) {
			return true
		}
	}
	return false
}

// excluded reports whether the normalized header h may not feed field f.
func excluded(f models.Field, h string) bool {
	if isCPAField(f) {
		return false
	}
	if containsAny(h, cpaMarkers) {
		return true
	}
	if fw := foreignWords[f]; len(fw) > 0 && slices.ContainsFunc(words(h), func(w string) bool {
		return slices.Contains(fw, w)
	}) {
		return true
	}
	return rawCountFields[f] && containsAny(h, derivedMarkers)
}

// AutoDetectColumns maps as many canonical fields as it can onto headers.
// Fields are resolved in models.Fields order and a header is claimed by at
// most one field; exact matches are tried before whole-word matches, so
// "bound" never claims "Inbound Calls".
func AutoDetectColumns(headers []string) models.ColumnMapping {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normHeader(h)
	}
	claimed := make([]bool, len(headers))
	out := make(models.ColumnMapping)

	find := func(f models.Field, match func(h, p string) bool) int {
		for _, p := range fieldPatterns[f] {
			for i, h := range normalized {
				if claimed[i] || h == "" || excluded(f, h) {
					continue
				}
				if match(h, p) {
					return i
				}
			}
		}
		return -1
	}

	for _, f := range models.Fields {
		idx := find(f, func(h, p string) bool { return h == p })
		if idx < 0 {
			idx = find(f, func(h, p string) bool { return containsWords(words(h), words(p)) })
		}
		if idx < 0 {
			continue
		}
		claimed[idx] = true
		out[f] = headers[idx]
	}
	return out
}

// ValidateMapping checks that every required field resolves to a header.
func ValidateMapping(m models.ColumnMapping) Validation {
	var missing []models.Field
	for _, f := range models.RequiredFields {
		if _, ok := m.Header(f); !ok {
			missing = append(missing, f)
		}
	}
	return Validation{Valid: len(missing) == 0, MissingFields: missing}
}

// Sanitize drops unknown fields and blank headers from an operator-supplied
// mapping.
func Sanitize(m models.ColumnMapping) models.ColumnMapping {
	known := make(map[models.Field]bool, len(models.Fields))
	for _, f := range models.Fields {
		known[f] = true
	}
	out := make(models.ColumnMapping, len(m))
	for f, h := range m {
		if !known[f] || strings.TrimSpace(h) == "" {
			continue
		}
		out[f] = h
	}
	return out
}

// Unresolved lists mapped fields whose header does not exist in headers. A
// mapping copied from another file can end up here; those fields simply stay
// unavailable.
func Unresolved(m models.ColumnMapping, headers []string) []models.Field {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}
	var out []models.Field
	for _, f := range models.Fields {
		if h, ok := m.Header(f); ok && !present[h] {
			out = append(out, f)
		}
	}
	return out
}
