package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/AngelCh415/campaign-metrics/internal/ingest"
	"github.com/AngelCh415/campaign-metrics/internal/mapping"
	"github.com/AngelCh415/campaign-metrics/internal/models"
	"github.com/AngelCh415/campaign-metrics/internal/store"
	"github.com/AngelCh415/campaign-metrics/internal/transform"
	"github.com/AngelCh415/campaign-metrics/internal/validate"
)

const maxJSONBody = 1 << 20

// multipart framing on top of the file itself
const uploadOverhead = 1 << 20

type mappingResponse struct {
	FileID     string               `json:"fileId"`
	Mapping    models.ColumnMapping `json:"mapping"`
	Validation mapping.Validation   `json:"validation"`
	Unresolved []models.Field       `json:"unresolved,omitempty"`
}

type validationResponse struct {
	State   store.ValidationState     `json:"state"`
	Summary *models.ValidationSummary `json:"summary,omitempty"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid json body: %w", err)
	}
	return nil
}

func (s *server) listFiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.st.Files())
}

func (s *server) uploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+uploadOverhead)
	file, hdr, err := r.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			s.writeError(w, r, http.StatusRequestEntityTooLarge, ingest.ErrTooLarge)
			return
		}
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("multipart field \"file\" required: %w", err))
		return
	}
	defer file.Close()
	f, err := s.im.Import(r.Context(), hdr.Filename, file)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (s *server) importURL(w http.ResponseWriter, r *http.Request) {
	u := r.URL.Query().Get("url")
	if u == "" {
		s.writeError(w, r, http.StatusBadRequest, errors.New("url required"))
		return
	}
	f, err := s.im.ImportURL(r.Context(), u)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		s.writeError(w, r, status, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (s *server) getFile(w http.ResponseWriter, r *http.Request) {
	f, ok := s.st.File(chi.URLParam(r, "id"))
	if !ok {
		s.writeError(w, r, http.StatusNotFound, store.ErrFileNotFound)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *server) deleteFile(w http.ResponseWriter, r *http.Request) {
	if err := s.st.RemoveFile(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) putMapping(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var m models.ColumnMapping
	if err := decodeJSON(w, r, &m); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	m = mapping.Sanitize(m)
	if err := s.st.UpdateMapping(id, m); err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	f, _ := s.st.File(id)
	writeJSON(w, http.StatusOK, mappingResponse{
		FileID:     id,
		Mapping:    f.Mapping,
		Validation: mapping.ValidateMapping(f.Mapping),
		Unresolved: mapping.Unresolved(f.Mapping, f.Headers),
	})
}

func (s *server) copyMapping(w http.ResponseWriter, r *http.Request) {
	n, err := s.st.CopyMappingToAll(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": n})
}

func (s *server) putTransforms(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var tc models.TransformationConfig
	if err := decodeJSON(w, r, &tc); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	for h, t := range tc {
		if !transform.Supported(t) {
			s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("header %q: unsupported transformation %s/%s", h, t.Type, t.Format))
			return
		}
	}
	merged, err := s.st.MergeTransforms(id, tc)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, merged)
}

func (s *server) preview(w http.ResponseWriter, r *http.Request) {
	f, ok := s.st.File(chi.URLParam(r, "id"))
	if !ok {
		s.writeError(w, r, http.StatusNotFound, store.ErrFileNotFound)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	writeJSON(w, http.StatusOK, validate.Preview(f, limit))
}

func (s *server) startValidation(w http.ResponseWriter, r *http.Request) {
	gen, err := s.runner.Start(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]uint64{"generation": gen})
}

func (s *server) validationStatus(w http.ResponseWriter, r *http.Request) {
	state, sum, err := s.st.ValidationStatus(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, validationResponse{State: state, Summary: sum})
}

func (s *server) getMode(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]models.MultiFileMode{"mode": s.st.Mode()})
}

func (s *server) putMode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Mode models.MultiFileMode `json:"mode"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if err := s.st.SetMode(body.Mode); err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]models.MultiFileMode{"mode": s.st.Mode()})
}

func (s *server) getReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.rep.Report(r.URL.Query())
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
