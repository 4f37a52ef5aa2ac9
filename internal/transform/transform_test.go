package transform

import (
	"testing"
	"time"

	"github.com/AngelCh415/campaign-metrics/internal/models"
)

func TestParseDateWithFormatRejectsImpossibleDates(t *testing.T) {
	if _, ok := ParseDateWithFormat("02/30/2024", DateUS); ok {
		t.Fatal("expected Feb 30 to be rejected")
	}
	d, ok := ParseDateWithFormat("02/28/2024", DateUS)
	if !ok {
		t.Fatal("expected Feb 28 to parse")
	}
	want := time.Date(2024, time.February, 28, 0, 0, 0, 0, time.UTC)
	if !d.Equal(want) {
		t.Fatalf("got %v want %v", d, want)
	}
	if _, ok := ParseDateWithFormat("02/29/2023", DateUS); ok {
		t.Fatal("2023 is not a leap year")
	}
	if _, ok := ParseDateWithFormat("02/29/2024", DateUS); !ok {
		t.Fatal("2024 is a leap year")
	}
}

func TestParseDateExplicitFormats(t *testing.T) {
	cases := []struct {
		in, format string
		y          int
		m          time.Month
		d          int
	}{
		{"2024-03-15", DateISO, 2024, time.March, 15},
		{"03/15/2024", DateUS, 2024, time.March, 15},
		{"15/03/2024", DateEU, 2024, time.March, 15},
		{"3/5/2024", DateUSShort, 2024, time.March, 5},
		{"3/5/24", DateUSTwoYear, 2024, time.March, 5},
		{"3/5/99", DateUSTwoYear, 1999, time.March, 5},
		{"03-15-2024", DateUSDash, 2024, time.March, 15},
		{"15-03-2024", DateEUDash, 2024, time.March, 15},
	}
	for _, c := range cases {
		got, ok := ParseDateWithFormat(c.in, c.format)
		if !ok {
			t.Errorf("%s (%s): expected ok", c.in, c.format)
			continue
		}
		if got.Year() != c.y || got.Month() != c.m || got.Day() != c.d {
			t.Errorf("%s (%s): got %v", c.in, c.format, got)
		}
	}
	if _, ok := ParseDateWithFormat("15/03/2024", DateUS); ok {
		t.Fatal("month 15 must not parse as MM/DD/YYYY")
	}
}

func TestParseDateAuto(t *testing.T) {
	d, ok := ParseDateWithFormat("2024-01-31", models.FormatAuto)
	if !ok || d.Month() != time.January || d.Day() != 31 {
		t.Fatalf("iso auto: got %v ok=%v", d, ok)
	}
	d, ok = ParseDateWithFormat("01/02/2024", models.FormatAuto)
	if !ok || d.Month() != time.January || d.Day() != 2 {
		t.Fatalf("US slash first: got %v ok=%v", d, ok)
	}
	d, ok = ParseDateWithFormat("25/12/2024", models.FormatAuto)
	if !ok || d.Month() != time.December || d.Day() != 25 {
		t.Fatalf("falls through to DD/MM: got %v ok=%v", d, ok)
	}
	d, ok = ParseDateWithFormat("Jan 5, 2024", models.FormatAuto)
	if !ok || d.Day() != 5 {
		t.Fatalf("generic fallback: got %v ok=%v", d, ok)
	}
	for _, s := range []string{"185", "2024", "42.5", "", "n/a", "-", "Campaign A"} {
		if _, ok := ParseDateWithFormat(s, models.FormatAuto); ok {
			t.Errorf("%q must not parse as a date", s)
		}
	}
}

func TestParseNumberFormats(t *testing.T) {
	cases := []struct {
		in, format string
		want       float64
	}{
		{"1234.5", NumberPlain, 1234.5},
		{"1,234.5", NumberPlain, 1234.5},
		{"$1,234.50", NumberCurrency, 1234.5},
		{"€ 99", NumberCurrency, 99},
		{"£12", NumberCurrency, 12},
		{"25%", NumberPercentage, 25},
		{"1.234,56", NumberEuropean, 1234.56},
		{"1.234,56", models.FormatAuto, 1234.56},
		{"12,5", models.FormatAuto, 12.5},
		{"$2,500", models.FormatAuto, 2500},
		{"100€", models.FormatAuto, 100},
		{"-$40", models.FormatAuto, -40},
		{"12.5%", models.FormatAuto, 12.5},
		{"1,000,000", models.FormatAuto, 1000000},
		{" 42 ", models.FormatAuto, 42},
	}
	for _, c := range cases {
		got, ok := ParseNumberWithFormat(c.in, c.format)
		if !ok {
			t.Errorf("%q (%s): expected ok", c.in, c.format)
			continue
		}
		if got != c.want {
			t.Errorf("%q (%s): got %v want %v", c.in, c.format, got, c.want)
		}
	}
	for _, s := range []string{"", "n/a", "-", "abc", "NaN", "Inf", "$"} {
		if _, ok := ParseNumberWithFormat(s, models.FormatAuto); ok {
			t.Errorf("%q must not parse", s)
		}
	}
}

func TestApplyAbsentValuesAreNull(t *testing.T) {
	for _, tt := range []models.FieldType{models.TypeDate, models.TypeNumber, models.TypeText} {
		for _, v := range []any{nil, "", "  ", "N/A", "-"} {
			if _, ok := Apply(v, models.FieldTransformation{Type: tt, Format: models.FormatAuto}); ok {
				t.Errorf("type %s value %q: expected null", tt, v)
			}
		}
	}
}

func TestApply(t *testing.T) {
	v, ok := Apply("$1,200", models.FieldTransformation{Type: models.TypeNumber, Format: NumberCurrency})
	if !ok || v.Number != 1200 {
		t.Fatalf("currency: %+v ok=%v", v, ok)
	}
	v, ok = Apply("$300", models.FieldTransformation{Type: models.TypeNumber, Format: NumberPlain})
	if !ok || v.Number != 300 {
		t.Fatalf("currency under plain: %+v ok=%v", v, ok)
	}
	v, ok = Apply(float64(7), models.FieldTransformation{Type: models.TypeNumber})
	if !ok || v.Number != 7 {
		t.Fatalf("numeric cell: %+v ok=%v", v, ok)
	}
	if _, ok := Apply("soon", models.FieldTransformation{Type: models.TypeNumber}); ok {
		t.Fatal("unparsable number must be null")
	}
	if _, ok := Apply(float64(185), models.FieldTransformation{Type: models.TypeDate}); ok {
		t.Fatal("numbers are never dates")
	}
	v, ok = Apply("  Campaign A ", models.FieldTransformation{Type: models.TypeText})
	if !ok || v.Text != "Campaign A" {
		t.Fatalf("text: %+v ok=%v", v, ok)
	}
}

func TestDetectFieldType(t *testing.T) {
	dates := []any{"2024-01-01", "2024-01-02", "2024-01-03", "n/a", ""}
	d := DetectFieldType(dates)
	if d.Type != models.TypeDate || d.Confidence != 1 || d.Format != DateISO {
		t.Fatalf("dates: %+v", d)
	}

	nums := []any{"$10", "$20", "$30", "oops"}
	d = DetectFieldType(nums)
	if d.Type != models.TypeNumber || d.Confidence != 0.75 || d.Format != NumberCurrency {
		t.Fatalf("numbers: %+v", d)
	}

	ints := []any{"185", "200", float64(12)}
	d = DetectFieldType(ints)
	if d.Type != models.TypeNumber {
		t.Fatalf("bare integers must be numbers, got %+v", d)
	}

	text := []any{"Google", "Meta", "12", "TikTok"}
	d = DetectFieldType(text)
	if d.Type != models.TypeText {
		t.Fatalf("text: %+v", d)
	}

	d = DetectFieldType([]any{"", "-", nil})
	if d.Type != models.TypeText || d.Confidence != 0 {
		t.Fatalf("empty: %+v", d)
	}
}

func TestDetectFieldTypeSamplesAtMostTwenty(t *testing.T) {
	vals := make([]any, 0, 40)
	for i := 0; i < 20; i++ {
		vals = append(vals, "100")
	}
	for i := 0; i < 20; i++ {
		vals = append(vals, "hello")
	}
	d := DetectFieldType(vals)
	if d.Type != models.TypeNumber || d.Confidence != 1 {
		t.Fatalf("expected only the first 20 samples to count, got %+v", d)
	}
}

func TestDetectDateFormat(t *testing.T) {
	fd := DetectDateFormat([]any{"13/01/2024", "14/01/2024", "15/01/2024", "01/02/2024"})
	if fd.Format != DateEU || fd.Confidence != 1 {
		t.Fatalf("expected DD/MM/YYYY with full confidence, got %+v", fd)
	}
	fd = DetectDateFormat([]any{"01/02/2024", "03/04/2024"})
	if fd.Format != DateUS {
		t.Fatalf("ambiguous values prefer MM/DD/YYYY, got %+v", fd)
	}
	fd = DetectDateFormat([]any{"3/4/2024", "10/12/2024"})
	if fd.Format != DateUSShort || fd.Confidence != 1 {
		t.Fatalf("single digit months, got %+v", fd)
	}
	fd = DetectDateFormat([]any{"hello", "world"})
	if fd.Format != models.FormatAuto || fd.Confidence != 0 {
		t.Fatalf("no matches, got %+v", fd)
	}
}

func TestDetectNumberFormat(t *testing.T) {
	fd := DetectNumberFormat([]any{"1.234,50", "2.000,00", "15,5", "$4"})
	if fd.Format != NumberEuropean || fd.Confidence != 0.75 {
		t.Fatalf("european: %+v", fd)
	}
	fd = DetectNumberFormat([]any{"12%", "40%"})
	if fd.Format != NumberPercentage {
		t.Fatalf("percentage: %+v", fd)
	}
	fd = DetectNumberFormat([]any{"x"})
	if fd.Format != models.FormatAuto || fd.Confidence != 0 {
		t.Fatalf("none: %+v", fd)
	}
}

func TestDetectColumns(t *testing.T) {
	rows := []models.RawRow{
		{"Day": "2024-01-01", "Spend": "$10", "Campaign": "A"},
		{"Day": "2024-01-02", "Spend": "$12", "Campaign": "B"},
		{"Day": "", "Spend": nil, "Campaign": "C"},
	}
	cfg := DetectColumns([]string{"Day", "Spend", "Campaign", "Empty"}, rows)
	if cfg["Day"] != (models.FieldTransformation{Type: models.TypeDate, Format: DateISO}) {
		t.Fatalf("day: %+v", cfg["Day"])
	}
	if cfg["Spend"] != (models.FieldTransformation{Type: models.TypeNumber, Format: NumberCurrency}) {
		t.Fatalf("spend: %+v", cfg["Spend"])
	}
	if cfg["Campaign"].Type != models.TypeText || cfg["Empty"].Type != models.TypeText {
		t.Fatalf("text: %+v", cfg)
	}
	if cfg["Empty"].Format != models.FormatAuto {
		t.Fatalf("empty column format: %+v", cfg["Empty"])
	}
}

func TestSupported(t *testing.T) {
	ok := []models.FieldTransformation{
		{Type: models.TypeText},
		{Type: models.TypeDate, Format: models.FormatAuto},
		{Type: models.TypeDate, Format: DateEU},
		{Type: models.TypeNumber, Format: NumberEuropean},
	}
	for _, tr := range ok {
		if !Supported(tr) {
			t.Errorf("%+v should be supported", tr)
		}
	}
	bad := []models.FieldTransformation{
		{Type: "currency"},
		{Type: models.TypeDate, Format: NumberPlain},
		{Type: models.TypeNumber, Format: DateISO},
		{Type: models.TypeText, Format: "upper"},
	}
	for _, tr := range bad {
		if Supported(tr) {
			t.Errorf("%+v should be rejected", tr)
		}
	}
}

func TestDetectNumberFormatCommaThousands(t *testing.T) {
	fd := DetectNumberFormat([]any{"1,234", "12,500", "800"})
	if fd.Format != NumberPlain || fd.Confidence != 1 {
		t.Fatalf("US thousands must detect as plain, got %+v", fd)
	}
	if v, ok := ParseNumberWithFormat("12,500", fd.Format); !ok || v != 12500 {
		t.Fatalf("plain parse: %v %v", v, ok)
	}
	fd = DetectNumberFormat([]any{"1,234", "2,5", "3,75"})
	if fd.Format != NumberEuropean || fd.Confidence != 1 {
		t.Fatalf("european neighbours keep the european reading, got %+v", fd)
	}
}
