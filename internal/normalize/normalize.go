// Package normalize translates raw rows onto the canonical campaign schema.
package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/AngelCh415/campaign-metrics/internal/models"
	"github.com/AngelCh415/campaign-metrics/internal/transform"
)

var numericStrip = strings.NewReplacer("$", "", ",", "", "%", "", " ", "", "\t", "", "\u00a0", "")

// Normalizer applies a mapping and optional per-header transformations.
// Headers without a number transformation fall back to lenient parsing.
type Normalizer struct {
	Mapping    models.ColumnMapping
	Transforms models.TransformationConfig
}

func New(m models.ColumnMapping, t models.TransformationConfig) Normalizer {
	return Normalizer{Mapping: m, Transforms: t}
}

// NormalizeRow is the mapping-only form of Normalizer.Row.
func NormalizeRow(row models.RawRow, m models.ColumnMapping) (models.NormalizedRow, bool) {
	return New(m, nil).Row(row)
}

// NormalizeData normalizes every row and drops those without an entity.
func NormalizeData(rows []models.RawRow, m models.ColumnMapping) []models.NormalizedRow {
	return New(m, nil).Rows(rows)
}

func (n Normalizer) Rows(rows []models.RawRow) []models.NormalizedRow {
	out := make([]models.NormalizedRow, 0, len(rows))
	for _, r := range rows {
		if nr, ok := n.Row(r); ok {
			out = append(out, nr)
		}
	}
	return out
}

// Row translates one raw row. ok is false when the row has no entity value.
func (n Normalizer) Row(row models.RawRow) (models.NormalizedRow, bool) {
	h, ok := n.Mapping.Header(models.FieldEntity)
	if !ok {
		return models.NormalizedRow{}, false
	}
	v, ok := row.Cell(h)
	if !ok {
		return models.NormalizedRow{}, false
	}
	entity := transform.CellString(v)
	if entity == "" {
		return models.NormalizedRow{}, false
	}

	out := models.NormalizedRow{
		Entity: entity,
		Spend:  n.required(row, models.FieldSpend),
		Leads:  n.required(row, models.FieldLeads),
		Quotes: n.required(row, models.FieldQuotes),
		Sales:  n.required(row, models.FieldSales),

		Clicks:      n.optional(row, models.FieldClicks),
		Impressions: n.optional(row, models.FieldImpressions),
		Contacted:   n.optional(row, models.FieldContacted),
		Calls:       n.optional(row, models.FieldCalls),
		PolicyItems: n.optional(row, models.FieldPolicyItems),
		Premium:     n.optional(row, models.FieldPremium),
		QuoteCPA:    n.optional(row, models.FieldQuoteCPA),
		PolicyCPA:   n.optional(row, models.FieldPolicyCPA),
	}
	if h, ok := n.Mapping.Header(models.FieldDate); ok {
		if v, ok := row.Cell(h); ok {
			if d, ok := parseDate(v); ok {
				out.Date = &d
			}
		}
	}
	return out, true
}

func (n Normalizer) required(row models.RawRow, f models.Field) float64 {
	v, ok := n.number(row, f)
	if !ok {
		return 0
	}
	return v
}

func (n Normalizer) optional(row models.RawRow, f models.Field) *float64 {
	v, ok := n.number(row, f)
	if !ok {
		return nil
	}
	return &v
}

func (n Normalizer) number(row models.RawRow, f models.Field) (float64, bool) {
	h, ok := n.Mapping.Header(f)
	if !ok {
		return 0, false
	}
	v, ok := row.Cell(h)
	if !ok {
		return 0, false
	}
	if t, ok := n.Transforms[h]; ok && t.Type == models.TypeNumber && t.Format != "" && t.Format != models.FormatAuto {
		tv, ok := transform.Apply(v, t)
		return tv.Number, ok
	}
	return parseNumber(v)
}

// parseNumber strips currency and grouping characters before a float parse.
func parseNumber(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		s := numericStrip.Replace(strings.TrimSpace(t))
		if s == "" {
			return 0, false
		}
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseDate is deliberately permissive; dates only drive optional grouping.
func parseDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		s := strings.TrimSpace(t)
		if d, ok := transform.ParseLooseDate(s); ok {
			return d, true
		}
		return transform.ParseDateWithFormat(s, models.FormatAuto)
	default:
		return time.Time{}, false
	}
}
