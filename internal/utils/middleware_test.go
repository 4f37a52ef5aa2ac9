package utils

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestRequestIDAndLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	mux := chi.NewRouter()
	mux.Use(RequestID)
	mux.Use(Logger(log))
	var seen string
	mux.Get("/files/{id}", func(w http.ResponseWriter, r *http.Request) {
		seen = RID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/files/abc", nil))
	rid := rr.Header().Get("X-Request-ID")
	if rid == "" || rid != seen {
		t.Fatalf("rid header %q, context %q", rid, seen)
	}
	line := buf.String()
	if !strings.Contains(line, `"status":418`) || !strings.Contains(line, `"rid":"`+rid+`"`) {
		t.Fatalf("log line: %s", line)
	}

	req := httptest.NewRequest(http.MethodGet, "/files/abc", nil)
	req.Header.Set("X-Request-ID", "upstream-1")
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Header().Get("X-Request-ID") != "upstream-1" {
		t.Fatalf("incoming id must be kept, got %q", rr.Header().Get("X-Request-ID"))
	}
}
