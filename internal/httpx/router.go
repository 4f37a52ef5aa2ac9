package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AngelCh415/campaign-metrics/internal/config"
	"github.com/AngelCh415/campaign-metrics/internal/ingest"
	"github.com/AngelCh415/campaign-metrics/internal/metrics"
	"github.com/AngelCh415/campaign-metrics/internal/report"
	"github.com/AngelCh415/campaign-metrics/internal/store"
	"github.com/AngelCh415/campaign-metrics/internal/utils"
	"github.com/AngelCh415/campaign-metrics/internal/validate"
)

type server struct {
	log    *slog.Logger
	cfg    config.Config
	st     *store.MemoryStore
	im     *ingest.Importer
	runner *validate.Runner
	rep    *report.Service
}

func NewRouter(log *slog.Logger, cfg config.Config, st *store.MemoryStore, im *ingest.Importer, runner *validate.Runner, rep *report.Service) http.Handler {
	s := &server{log: log, cfg: cfg, st: st, im: im, runner: runner, rep: rep}
	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.Get("/definitions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Definitions())
	})

	mux.Route("/files", func(fr chi.Router) {
		fr.Get("/", s.listFiles)
		fr.Post("/", s.uploadFile)
		fr.Post("/import", s.importURL)
		fr.Route("/{id}", func(ir chi.Router) {
			ir.Get("/", s.getFile)
			ir.Delete("/", s.deleteFile)
			ir.Put("/mapping", s.putMapping)
			ir.Post("/mapping/copy", s.copyMapping)
			ir.Put("/transforms", s.putTransforms)
			ir.Get("/preview", s.preview)
			ir.Post("/validate", s.startValidation)
			ir.Get("/validation", s.validationStatus)
		})
	})

	mux.Get("/mode", s.getMode)
	mux.Put("/mode", s.putMode)
	mux.Get("/report", s.getReport)

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrFileNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrFileLimit):
		return http.StatusConflict
	case errors.Is(err, ingest.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ingest.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ingest.ErrEmptyFile),
		errors.Is(err, store.ErrInvalidMode),
		errors.Is(err, report.ErrUnknownMetric),
		errors.Is(err, report.ErrInvalidOrder):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= 500 {
		s.log.Error("request failed", slog.String("path", r.URL.Path), slog.String("rid", utils.RID(r.Context())), slog.String("err", err.Error()))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
