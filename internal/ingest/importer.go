package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/AngelCh415/campaign-metrics/internal/config"
	"github.com/AngelCh415/campaign-metrics/internal/mapping"
	"github.com/AngelCh415/campaign-metrics/internal/models"
	"github.com/AngelCh415/campaign-metrics/internal/store"
	"github.com/AngelCh415/campaign-metrics/internal/telemetry"
	"github.com/AngelCh415/campaign-metrics/internal/transform"
	"github.com/AngelCh415/campaign-metrics/internal/utils"
)

// Importer turns uploaded or downloaded sheets into stored files with an
// auto-detected mapping and transformation config.
type Importer struct {
	c   HTTPClient
	st  *store.MemoryStore
	log *slog.Logger
	cfg config.Config
}

func NewImporter(c HTTPClient, st *store.MemoryStore, log *slog.Logger, cfg config.Config) *Importer {
	return &Importer{c: c, st: st, log: log, cfg: cfg}
}

// Import parses r as the file name and adds it to the session.
func (im *Importer) Import(ctx context.Context, name string, r io.Reader) (models.UploadedFile, error) {
	t, err := Parse(name, r, im.cfg.MaxUploadBytes)
	if err != nil {
		im.reject(err)
		return models.UploadedFile{}, err
	}
	return im.add(name, t)
}

// ImportURL downloads rawURL and imports it.
func (im *Importer) ImportURL(ctx context.Context, rawURL string) (models.UploadedFile, error) {
	b := utils.NewBackoff(200*time.Millisecond, im.cfg.ImportRetries)
	dl, err := Fetch(ctx, im.c, rawURL, im.cfg.MaxUploadBytes, b)
	if err != nil {
		im.reject(err)
		return models.UploadedFile{}, err
	}
	t, err := Parse(dl.Name, bytes.NewReader(dl.Data), 0)
	if err != nil {
		im.reject(err)
		return models.UploadedFile{}, err
	}
	return im.add(dl.Name, t)
}

func (im *Importer) add(name string, t Table) (models.UploadedFile, error) {
	m := mapping.AutoDetectColumns(t.Headers)
	f, err := im.st.AddFile(models.UploadedFile{
		FileName:   name,
		Headers:    t.Headers,
		Rows:       t.Rows,
		Mapping:    m,
		Transforms: transform.DetectColumns(t.Headers, t.Rows),
	})
	if err != nil {
		im.reject(err)
		return models.UploadedFile{}, fmt.Errorf("add %s: %w", name, err)
	}
	v := mapping.ValidateMapping(m)
	telemetry.FilesImported.Inc()
	telemetry.RowsImported.Add(float64(f.RowCount))
	im.log.Info("file imported",
		slog.String("file", f.ID),
		slog.String("name", name),
		slog.Int("rows", f.RowCount),
		slog.Int("headers", len(t.Headers)),
		slog.Int("mapped", len(m)),
		slog.Bool("mapping_valid", v.Valid))
	return f, nil
}

func (im *Importer) reject(err error) {
	reason := "invalid"
	switch {
	case errors.Is(err, ErrTooLarge):
		reason = "too_large"
	case errors.Is(err, ErrUnsupportedFormat):
		reason = "unsupported"
	case errors.Is(err, ErrEmptyFile):
		reason = "empty"
	case errors.Is(err, store.ErrFileLimit):
		reason = "file_limit"
	}
	telemetry.UploadsRejected.WithLabelValues(reason).Inc()
	im.log.Warn("import rejected", slog.String("reason", reason), slog.String("err", err.Error()))
}
