package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AngelCh415/campaign-metrics/internal/config"
	"github.com/AngelCh415/campaign-metrics/internal/httpx"
	"github.com/AngelCh415/campaign-metrics/internal/ingest"
	"github.com/AngelCh415/campaign-metrics/internal/report"
	"github.com/AngelCh415/campaign-metrics/internal/store"
	"github.com/AngelCh415/campaign-metrics/internal/validate"
)

func main() {
	cfg := config.FromEnv()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cl := ingest.NewHTTPClient(cfg.HTTPTimeout)
	st := store.NewMemoryStore()
	im := ingest.NewImporter(cl, st, logger, cfg)
	runner := validate.NewRunner(ctx, st, logger, validate.Options{ChunkSize: cfg.ValidationChunkSize})
	rep := report.NewService(st, logger, cfg.ReportCacheTTL)

	r := httpx.NewRouter(logger, cfg, st, im, runner, rep)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", slog.String("err", err.Error()))
		}
	}()

	logger.Info("starting server", slog.String("port", cfg.Port), slog.Int64("max_upload_bytes", cfg.MaxUploadBytes))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
	runner.Wait()
	logger.Info("server stopped")
}
