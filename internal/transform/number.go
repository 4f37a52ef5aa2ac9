package transform

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/AngelCh415/campaign-metrics/internal/models"
)

// Explicit number formats understood by ParseNumberWithFormat.
const (
	NumberPlain      = "plain"
	NumberCurrency   = "currency"
	NumberPercentage = "percentage"
	NumberEuropean   = "european"
)

// NumberFormats lists the explicit formats in detection order.
var NumberFormats = []string{NumberEuropean, NumberCurrency, NumberPercentage, NumberPlain}

var (
	europeanRe   = regexp.MustCompile(`^\d{1,3}(\.\d{3})*,\d+$`)
	thousandsRe  = regexp.MustCompile(`^\d{1,3},\d{3}$`)
	currencyRe   = regexp.MustCompile(`^-?\s*[$€£]|[$€£]$`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	symbolStrip  = strings.NewReplacer("$", "", "€", "", "£", "", ",", "")
)

// ParseNumberWithFormat parses s with an explicit number format or "auto".
func ParseNumberWithFormat(s, format string) (float64, bool) {
	s = strings.TrimSpace(s)
	if IsAbsent(s) {
		return 0, false
	}
	switch format {
	case NumberPlain:
		return parseDecimal(strings.ReplaceAll(stripSpace(s), ",", ""))
	case NumberCurrency:
		return parseDecimal(symbolStrip.Replace(stripSpace(s)))
	case NumberPercentage:
		return parseDecimal(strings.ReplaceAll(strings.TrimSuffix(stripSpace(s), "%"), ",", ""))
	case NumberEuropean:
		return parseEuropean(stripSpace(s))
	case "", models.FormatAuto:
		return parseNumberAuto(s)
	default:
		return 0, false
	}
}

func parseNumberAuto(s string) (float64, bool) {
	switch detectNumberFormat(s) {
	case NumberEuropean:
		return parseEuropean(s)
	case NumberCurrency:
		return parseDecimal(symbolStrip.Replace(stripSpace(s)))
	case NumberPercentage:
		return parseDecimal(strings.ReplaceAll(strings.TrimSuffix(stripSpace(s), "%"), ",", ""))
	default:
		return parseDecimal(strings.ReplaceAll(stripSpace(s), ",", ""))
	}
}

// detectNumberFormat classifies one value by its surface shape.
func detectNumberFormat(s string) string {
	switch {
	case europeanRe.MatchString(s):
		return NumberEuropean
	case currencyRe.MatchString(s):
		return NumberCurrency
	case strings.HasSuffix(s, "%"):
		return NumberPercentage
	default:
		return NumberPlain
	}
}

// parseEuropean reads "1.234,56" as 1234.56.
func parseEuropean(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)
	return parseDecimal(s)
}

func stripSpace(s string) string { return whitespaceRe.ReplaceAllString(s, "") }

func parseDecimal(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	f := d.InexactFloat64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
