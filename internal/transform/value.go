// Package transform coerces raw spreadsheet cells into dates, numbers and text,
// and guesses the most likely type and format of a column from samples.
package transform

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/AngelCh415/campaign-metrics/internal/models"
)

// Value is a successfully coerced cell.
type Value struct {
	Type   models.FieldType
	Date   time.Time
	Number float64
	Text   string
}

// Any returns the payload matching v.Type.
func (v Value) Any() any {
	switch v.Type {
	case models.TypeDate:
		return v.Date.Format("2006-01-02")
	case models.TypeNumber:
		return v.Number
	default:
		return v.Text
	}
}

// IsAbsent reports whether a cell carries no data: nil, blank, "n/a" or "-".
func IsAbsent(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "" || s == "n/a" || s == "-"
}

// CellString renders a raw cell as trimmed text.
func CellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format("2006-01-02")
	default:
		return ""
	}
}

// numericCell returns the value of cells that already hold a number.
func numericCell(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Apply coerces raw according to t. ok is false for absent cells and for
// values that do not parse under a date or number transformation.
func Apply(raw any, t models.FieldTransformation) (Value, bool) {
	if IsAbsent(raw) {
		return Value{}, false
	}
	format := t.Format
	if format == "" {
		format = models.FormatAuto
	}
	switch t.Type {
	case models.TypeDate:
		if d, ok := raw.(time.Time); ok {
			return Value{Type: models.TypeDate, Date: d}, true
		}
		s, ok := raw.(string)
		if !ok {
			return Value{}, false
		}
		d, ok := ParseDateWithFormat(s, format)
		if !ok {
			return Value{}, false
		}
		return Value{Type: models.TypeDate, Date: d}, true
	case models.TypeNumber:
		if f, ok := numericCell(raw); ok {
			return Value{Type: models.TypeNumber, Number: f}, true
		}
		s, ok := raw.(string)
		if !ok {
			return Value{}, false
		}
		f, ok := ParseNumberWithFormat(s, format)
		if !ok && format != models.FormatAuto {
			// a column detected as plain may still carry "$300" or "12%"
			f, ok = ParseNumberWithFormat(s, models.FormatAuto)
		}
		if !ok {
			return Value{}, false
		}
		return Value{Type: models.TypeNumber, Number: f}, true
	default:
		return Value{Type: models.TypeText, Text: CellString(raw)}, true
	}
}

// Supported reports whether t names a known type and a format that type
// understands.
func Supported(t models.FieldTransformation) bool {
	if t.Format == "" || t.Format == models.FormatAuto {
		return t.Type == models.TypeDate || t.Type == models.TypeNumber || t.Type == models.TypeText
	}
	switch t.Type {
	case models.TypeDate:
		return slices.Contains(DateFormats(), t.Format)
	case models.TypeNumber:
		return slices.Contains(NumberFormats, t.Format)
	default:
		return false
	}
}
