// Package coordinator combines the uploaded files into metric results,
// either as one merged dataset or one result per file.
package coordinator

import (
	"strings"

	"github.com/AngelCh415/campaign-metrics/internal/mapping"
	"github.com/AngelCh415/campaign-metrics/internal/metrics"
	"github.com/AngelCh415/campaign-metrics/internal/models"
	"github.com/AngelCh415/campaign-metrics/internal/normalize"
)

// MergedID identifies the combined result in merge mode.
const MergedID = "merged"

// FileResult is the metric set of one dataset.
type FileResult struct {
	FileID     string             `json:"fileId"`
	FileName   string             `json:"fileName"`
	RawRows    int                `json:"rawRows"`
	Rows       int                `json:"rows"`
	Dropped    int                `json:"dropped"`
	Mapping    mapping.Validation `json:"mapping"`
	Unresolved []models.Field     `json:"unresolved,omitempty"`
	Metrics    metrics.Result     `json:"metrics"`
}

// Outcome holds one FileResult in merge mode and one per file in compare mode.
type Outcome struct {
	Mode    models.MultiFileMode `json:"mode"`
	Results []FileResult         `json:"results"`
}

// Compute runs the pipeline for the given files under mode.
func Compute(files []models.UploadedFile, mode models.MultiFileMode) Outcome {
	out := Outcome{Mode: mode}
	if len(files) == 0 {
		return out
	}
	if mode == models.ModeCompare {
		out.Results = Compare(files)
		return out
	}
	out.Results = []FileResult{Merge(files)}
	return out
}

// MergedRows normalizes the rows of every file with the first file's mapping
// and transformations, in file order.
func MergedRows(files []models.UploadedFile) []models.NormalizedRow {
	if len(files) == 0 {
		return nil
	}
	n := normalize.New(files[0].Mapping, files[0].Transforms)
	var out []models.NormalizedRow
	for _, f := range files {
		out = append(out, n.Rows(f.Rows)...)
	}
	return out
}

// Merge aggregates every file as one dataset under the first file's mapping.
func Merge(files []models.UploadedFile) FileResult {
	if len(files) == 0 {
		return FileResult{FileID: MergedID}
	}
	canonical := files[0]
	raw := 0
	names := make([]string, 0, len(files))
	var unresolved []models.Field
	seen := map[models.Field]bool{}
	for _, f := range files {
		raw += len(f.Rows)
		names = append(names, f.FileName)
		for _, u := range mapping.Unresolved(canonical.Mapping, f.Headers) {
			if !seen[u] {
				seen[u] = true
				unresolved = append(unresolved, u)
			}
		}
	}
	rows := MergedRows(files)
	id := MergedID
	if len(files) == 1 {
		id = canonical.ID
	}
	return FileResult{
		FileID:     id,
		FileName:   strings.Join(names, " + "),
		RawRows:    raw,
		Rows:       len(rows),
		Dropped:    raw - len(rows),
		Mapping:    mapping.ValidateMapping(canonical.Mapping),
		Unresolved: unresolved,
		Metrics:    metrics.CalculateAllMetrics(rows),
	}
}

// Compare aggregates each file on its own with its own mapping.
func Compare(files []models.UploadedFile) []FileResult {
	out := make([]FileResult, 0, len(files))
	for _, f := range files {
		rows := normalize.New(f.Mapping, f.Transforms).Rows(f.Rows)
		out = append(out, FileResult{
			FileID:     f.ID,
			FileName:   f.FileName,
			RawRows:    len(f.Rows),
			Rows:       len(rows),
			Dropped:    len(f.Rows) - len(rows),
			Mapping:    mapping.ValidateMapping(f.Mapping),
			Unresolved: mapping.Unresolved(f.Mapping, f.Headers),
			Metrics:    metrics.CalculateAllMetrics(rows),
		})
	}
	return out
}
