package transform

import (
	"strings"

	"github.com/AngelCh415/campaign-metrics/internal/models"
)

const (
	maxSamples    = 20
	typeThreshold = 0.7
)

// Detection is the guessed type of a column.
type Detection struct {
	Type       models.FieldType `json:"type"`
	Confidence float64          `json:"confidence"`
	Format     string           `json:"format,omitempty"`
}

// FormatDetection is the best explicit format for a column.
type FormatDetection struct {
	Format     string  `json:"format"`
	Confidence float64 `json:"confidence"`
}

// Transformation turns a detection into the transformation applied to the column.
func (d Detection) Transformation() models.FieldTransformation {
	format := d.Format
	if format == "" {
		format = models.FormatAuto
	}
	return models.FieldTransformation{Type: d.Type, Format: format}
}

// samplesOf keeps the first maxSamples present values.
func samplesOf(values []any) []any {
	out := make([]any, 0, maxSamples)
	for _, v := range values {
		if IsAbsent(v) {
			continue
		}
		out = append(out, v)
		if len(out) == maxSamples {
			break
		}
	}
	return out
}

func isDateSample(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, ok = ParseDateWithFormat(s, models.FormatAuto)
	return ok
}

func isNumberSample(v any) bool {
	if _, ok := numericCell(v); ok {
		return true
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, ok = ParseNumberWithFormat(s, models.FormatAuto)
	return ok
}

// DetectFieldType classifies a column as date, number or text from a sample
// of its values. Dates win over numbers when both clear the threshold.
func DetectFieldType(values []any) Detection {
	samples := samplesOf(values)
	if len(samples) == 0 {
		return Detection{Type: models.TypeText}
	}
	var dates, numbers int
	for _, v := range samples {
		if isDateSample(v) {
			dates++
		}
		if isNumberSample(v) {
			numbers++
		}
	}
	n := float64(len(samples))
	if r := float64(dates) / n; r >= typeThreshold {
		return Detection{Type: models.TypeDate, Confidence: r, Format: DetectDateFormat(samples).Format}
	}
	if r := float64(numbers) / n; r >= typeThreshold {
		return Detection{Type: models.TypeNumber, Confidence: r, Format: DetectNumberFormat(samples).Format}
	}
	return Detection{Type: models.TypeText, Confidence: float64(len(samples)-max(dates, numbers)) / n}
}

// DetectDateFormat scores every explicit date format against the samples and
// returns the best one. Earlier formats win ties.
func DetectDateFormat(values []any) FormatDetection {
	samples := samplesOf(values)
	if len(samples) == 0 {
		return FormatDetection{Format: models.FormatAuto}
	}
	best, bestHits := "", 0
	for _, l := range dateLayouts {
		hits := 0
		for _, v := range samples {
			s, ok := v.(string)
			if !ok {
				continue
			}
			if _, ok := l.parse(s); ok {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = l.name, hits
		}
	}
	if bestHits == 0 {
		return FormatDetection{Format: models.FormatAuto}
	}
	return FormatDetection{Format: best, Confidence: float64(bestHits) / float64(len(samples))}
}

// DetectNumberFormat returns the most common number shape among the samples.
func DetectNumberFormat(values []any) FormatDetection {
	samples := samplesOf(values)
	if len(samples) == 0 {
		return FormatDetection{Format: models.FormatAuto}
	}
	hits := make(map[string]int, len(NumberFormats))
	ambiguous := 0
	for _, v := range samples {
		if _, ok := numericCell(v); ok {
			hits[NumberPlain]++
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if thousandsRe.MatchString(s) {
			ambiguous++
			continue
		}
		format := detectNumberFormat(s)
		if _, ok := ParseNumberWithFormat(s, format); ok {
			hits[format]++
		}
	}
	// "1,234" reads either way; it only counts as european next to values
	// that are unambiguously european.
	if hits[NumberEuropean] > 0 {
		hits[NumberEuropean] += ambiguous
	} else {
		hits[NumberPlain] += ambiguous
	}
	best, bestHits := "", 0
	for _, f := range NumberFormats {
		if hits[f] > bestHits {
			best, bestHits = f, hits[f]
		}
	}
	if bestHits == 0 {
		return FormatDetection{Format: models.FormatAuto}
	}
	return FormatDetection{Format: best, Confidence: float64(bestHits) / float64(len(samples))}
}

// DetectColumns samples every header and returns the transformation its
// detected type implies.
func DetectColumns(headers []string, rows []models.RawRow) models.TransformationConfig {
	out := make(models.TransformationConfig, len(headers))
	for _, h := range headers {
		values := make([]any, 0, maxSamples)
		for _, r := range rows {
			v, ok := r.Cell(h)
			if !ok || IsAbsent(v) {
				continue
			}
			values = append(values, v)
			if len(values) == maxSamples {
				break
			}
		}
		out[h] = DetectFieldType(values).Transformation()
	}
	return out
}
