// Package validate runs the transformation layer over whole datasets and
// reports data-quality findings without blocking metric computation.
package validate

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/AngelCh415/campaign-metrics/internal/mapping"
	"github.com/AngelCh415/campaign-metrics/internal/models"
	"github.com/AngelCh415/campaign-metrics/internal/normalize"
	"github.com/AngelCh415/campaign-metrics/internal/transform"
)

const (
	DefaultChunkSize = 500
	maxInvalidRows   = 100
)

// Options controls how a scan is split into chunks.
type Options struct {
	ChunkSize int
	// Yield runs between chunks; runtime.Gosched when nil.
	Yield func()
}

func (o Options) chunkSize() int {
	if o.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return o.ChunkSize
}

func (o Options) yield() {
	if o.Yield != nil {
		o.Yield()
		return
	}
	runtime.Gosched()
}

type cellState int

const (
	cellAbsent cellState = iota
	cellOK
	cellFailed
)

// checker classifies cells of one file under its transformation config.
type checker struct {
	headers    []string
	transforms models.TransformationConfig
	mapped     map[string]bool
	entity     string
}

func newChecker(f models.UploadedFile) checker {
	tc := f.Transforms
	if len(tc) == 0 {
		tc = transform.DetectColumns(f.Headers, f.Rows)
	}
	c := checker{headers: f.Headers, transforms: tc, mapped: map[string]bool{}}
	for _, h := range f.Mapping {
		if h != "" {
			c.mapped[h] = true
		}
	}
	c.entity, _ = f.Mapping.Header(models.FieldEntity)
	return c
}

func (c checker) transformation(h string) models.FieldTransformation {
	if t, ok := c.transforms[h]; ok {
		return t
	}
	return models.FieldTransformation{Type: models.TypeText, Format: models.FormatAuto}
}

func (c checker) cell(h string, row models.RawRow) (transform.Value, cellState) {
	raw, _ := row.Cell(h)
	if transform.IsAbsent(raw) {
		return transform.Value{}, cellAbsent
	}
	v, ok := transform.Apply(raw, c.transformation(h))
	if !ok {
		return transform.Value{}, cellFailed
	}
	return v, cellOK
}

// rowValid is false when the entity is missing or a mapped cell fails.
func (c checker) rowValid(row models.RawRow) bool {
	if c.entity == "" {
		return false
	}
	if _, st := c.cell(c.entity, row); st != cellOK {
		return false
	}
	for h := range c.mapped {
		if _, st := c.cell(h, row); st == cellFailed {
			return false
		}
	}
	return true
}

type fieldTally struct {
	checked, failed, empty int
}

// Validate scans every row of f in chunks, reporting progress from 0 to 100.
// It returns early with ctx's error when ctx is cancelled between chunks.
func Validate(ctx context.Context, f models.UploadedFile, opts Options, progress func(int)) (models.ValidationSummary, error) {
	if progress == nil {
		progress = func(int) {}
	}
	c := newChecker(f)
	norm := normalize.New(f.Mapping, f.Transforms)
	tallies := make([]fieldTally, len(c.headers))

	sum := models.ValidationSummary{TotalRows: len(f.Rows)}
	entityRows := map[string]int{}
	var entityOrder []string
	var normalized int
	var totals float64

	progress(0)
	size := opts.chunkSize()
	for start := 0; start < len(f.Rows); start += size {
		end := min(start+size, len(f.Rows))
		for i := start; i < end; i++ {
			row := f.Rows[i]
			for j, h := range c.headers {
				_, st := c.cell(h, row)
				switch st {
				case cellAbsent:
					tallies[j].empty++
				case cellOK:
					tallies[j].checked++
				case cellFailed:
					tallies[j].checked++
					tallies[j].failed++
				}
			}
			if c.rowValid(row) {
				sum.ValidRows++
			} else if len(sum.InvalidRows) < maxInvalidRows {
				sum.InvalidRows = append(sum.InvalidRows, i)
			}
			if nr, ok := norm.Row(row); ok {
				normalized++
				totals += abs(nr.Spend) + abs(nr.Leads) + abs(nr.Quotes) + abs(nr.Sales)
				if entityRows[nr.Entity] == 0 {
					entityOrder = append(entityOrder, nr.Entity)
				}
				entityRows[nr.Entity]++
			}
		}
		progress(end * 100 / len(f.Rows))
		if end < len(f.Rows) {
			opts.yield()
			if err := ctx.Err(); err != nil {
				return models.ValidationSummary{}, fmt.Errorf("validation of %s: %w", f.FileName, err)
			}
		}
	}

	for j, h := range c.headers {
		t := c.transformation(h)
		fi := models.FieldIssues{
			Header:  h,
			Checked: tallies[j].checked,
			Errors:  tallies[j].failed,
		}
		if c.mapped[h] {
			fi.Warnings = tallies[j].empty
		}
		fi.Message = columnMessage(h, t.Type, tallies[j])
		sum.Fields = append(sum.Fields, fi)
	}

	mv := mapping.ValidateMapping(f.Mapping)
	sum.MissingFields = mv.MissingFields
	if !mv.Valid {
		sum.Errors = append(sum.Errors, "required fields not mapped: "+joinFields(mv.MissingFields))
	}
	switch {
	case normalized == 0:
		sum.Errors = append(sum.Errors, "no rows with an entity value")
	case totals == 0:
		sum.Errors = append(sum.Errors, "spend, leads, quotes and sales total zero across all rows")
	}
	if dropped := len(f.Rows) - normalized; dropped > 0 && normalized > 0 {
		sum.Warnings = append(sum.Warnings, fmt.Sprintf("%d rows have no entity value and will be skipped", dropped))
	}
	sum.Warnings = append(sum.Warnings, entityWarnings(entityOrder, entityRows)...)
	sum.CompletedAt = time.Now().UTC()
	progress(100)
	return sum, nil
}

// columnMessage flags columns where most or all present values fail to
// convert. Text columns never fail.
func columnMessage(h string, t models.FieldType, ft fieldTally) string {
	if ft.checked == 0 || ft.failed == 0 {
		return ""
	}
	if ft.failed == ft.checked {
		return fmt.Sprintf("all %d values in %q could not be read as %s; check the column type or format", ft.checked, h, t)
	}
	if ft.failed*2 > ft.checked {
		pct := float64(ft.failed) * 100 / float64(ft.checked)
		return fmt.Sprintf("%.0f%% of values in %q could not be read as %s", pct, h, t)
	}
	return ""
}

// entityWarnings reports repeated entities, which are summed, and entities
// that differ only by case, which are not.
func entityWarnings(order []string, rows map[string]int) []string {
	var out []string
	repeated := 0
	for _, e := range order {
		if rows[e] > 1 {
			repeated++
		}
	}
	if repeated > 0 {
		out = append(out, fmt.Sprintf("%d entities appear on more than one row and will be summed", repeated))
	}
	folded := map[string]string{}
	for _, e := range order {
		k := strings.ToLower(e)
		if prev, ok := folded[k]; ok {
			out = append(out, fmt.Sprintf("%q and %q differ only by case and are reported separately", prev, e))
			continue
		}
		folded[k] = e
	}
	return out
}

func joinFields(fs []models.Field) string {
	s := make([]string, len(fs))
	for i, f := range fs {
		s[i] = string(f)
	}
	return strings.Join(s, ", ")
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
