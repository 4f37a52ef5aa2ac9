package validate

import (
	"github.com/AngelCh415/campaign-metrics/internal/models"
)

const DefaultPreviewRows = 10

// PreviewCell is one raw cell next to its transformed value. Absent cells
// have a nil Value and are still valid.
type PreviewCell struct {
	Raw   any  `json:"raw"`
	Value any  `json:"value"`
	Valid bool `json:"valid"`
}

type PreviewRow struct {
	Index int                    `json:"index"`
	Valid bool                   `json:"valid"`
	Cells map[string]PreviewCell `json:"cells"`
}

// Preview transforms the first limit rows of f.
func Preview(f models.UploadedFile, limit int) []PreviewRow {
	if limit <= 0 {
		limit = DefaultPreviewRows
	}
	limit = min(limit, len(f.Rows))
	c := newChecker(f)
	out := make([]PreviewRow, 0, limit)
	for i := 0; i < limit; i++ {
		row := f.Rows[i]
		pr := PreviewRow{Index: i, Valid: c.rowValid(row), Cells: make(map[string]PreviewCell, len(c.headers))}
		for _, h := range c.headers {
			raw, _ := row.Cell(h)
			v, st := c.cell(h, row)
			cell := PreviewCell{Raw: raw, Valid: st != cellFailed}
			if st == cellOK {
				cell.Value = v.Any()
			}
			pr.Cells[h] = cell
		}
		out = append(out, pr)
	}
	return out
}
