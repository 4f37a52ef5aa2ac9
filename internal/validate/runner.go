package validate

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/AngelCh415/campaign-metrics/internal/store"
	"github.com/AngelCh415/campaign-metrics/internal/telemetry"
)

// Runner validates stored files in the background. Starting a new scan for a
// file makes any scan still running for it stale; stale results are dropped.
type Runner struct {
	ctx  context.Context
	st   *store.MemoryStore
	log  *slog.Logger
	opts Options
	wg   sync.WaitGroup
}

// NewRunner ties scans to ctx so they stop when the server shuts down.
func NewRunner(ctx context.Context, st *store.MemoryStore, log *slog.Logger, opts Options) *Runner {
	return &Runner{ctx: ctx, st: st, log: log, opts: opts}
}

// Start launches a scan of file id and returns its generation.
func (r *Runner) Start(id string) (uint64, error) {
	gen, err := r.st.BeginValidation(id)
	if err != nil {
		return 0, err
	}
	f, ok := r.st.File(id)
	if !ok {
		return 0, store.ErrFileNotFound
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		sum, err := Validate(r.ctx, f, r.opts, func(p int) { r.st.ReportProgress(id, gen, p) })
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				telemetry.ValidationScans.WithLabelValues("cancelled").Inc()
			}
			r.log.Warn("validation aborted", slog.String("file", id), slog.String("err", err.Error()))
			return
		}
		if !r.st.CompleteValidation(id, gen, sum) {
			telemetry.ValidationScans.WithLabelValues("stale").Inc()
			r.log.Debug("stale validation discarded", slog.String("file", id), slog.Uint64("generation", gen))
			return
		}
		telemetry.ValidationScans.WithLabelValues("completed").Inc()
		r.log.Info("validation complete",
			slog.String("file", id),
			slog.Int("rows", sum.TotalRows),
			slog.Int("valid", sum.ValidRows),
			slog.Int("errors", len(sum.Errors)),
			slog.Int("warnings", len(sum.Warnings)))
	}()
	return gen, nil
}

// Wait blocks until every started scan has finished.
func (r *Runner) Wait() { r.wg.Wait() }
