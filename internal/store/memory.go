package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AngelCh415/campaign-metrics/internal/models"
)

var (
	ErrFileLimit    = errors.New("file limit reached")
	ErrFileNotFound = errors.New("file not found")
	ErrInvalidMode  = errors.New("invalid multi-file mode")
)

// ValidationState tracks the latest validation scan of one file. Only the
// scan holding the current Generation may report into it.
type ValidationState struct {
	Generation uint64    `json:"generation"`
	Running    bool      `json:"running"`
	Progress   int       `json:"progress"`
	StartedAt  time.Time `json:"startedAt"`
}

// Snapshot is a consistent read of the session.
type Snapshot struct {
	Files    []models.UploadedFile
	Mode     models.MultiFileMode
	Revision uint64
}

// MemoryStore owns the session: uploaded files, the multi-file mode and
// validation progress. Callers get copies; nested structures are only
// changed through the methods below.
type MemoryStore struct {
	mu         sync.RWMutex
	files      []*models.UploadedFile
	mode       models.MultiFileMode
	rev        uint64
	validation map[string]*ValidationState
	now        func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mode:       models.ModeMerge,
		validation: make(map[string]*ValidationState),
		now:        time.Now,
	}
}

func copyFile(f *models.UploadedFile) models.UploadedFile {
	out := *f
	out.Mapping = f.Mapping.Clone()
	out.Transforms = f.Transforms.Clone()
	return out
}

func (s *MemoryStore) find(id string) (int, *models.UploadedFile) {
	for i, f := range s.files {
		if f.ID == id {
			return i, f
		}
	}
	return -1, nil
}

// AddFile stores f under a fresh id. A full store rejects the file; nothing
// is evicted.
func (s *MemoryStore) AddFile(f models.UploadedFile) (models.UploadedFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.files) >= models.MaxFiles {
		return models.UploadedFile{}, ErrFileLimit
	}
	nf := f
	nf.ID = uuid.New().String()
	nf.RowCount = len(f.Rows)
	nf.UploadedAt = s.now()
	nf.Mapping = f.Mapping.Clone()
	nf.Transforms = f.Transforms.Clone()
	nf.Validation = nil
	s.files = append(s.files, &nf)
	s.rev++
	return copyFile(&nf), nil
}

func (s *MemoryStore) RemoveFile(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, _ := s.find(id)
	if i < 0 {
		return ErrFileNotFound
	}
	s.files = append(s.files[:i], s.files[i+1:]...)
	delete(s.validation, id)
	s.rev++
	return nil
}

func (s *MemoryStore) File(id string) (models.UploadedFile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, f := s.find(id)
	if f == nil {
		return models.UploadedFile{}, false
	}
	return copyFile(f), true
}

func (s *MemoryStore) Files() []models.UploadedFile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.UploadedFile, 0, len(s.files))
	for _, f := range s.files {
		out = append(out, copyFile(f))
	}
	return out
}

// invalidate discards the validation result of f. A scan still running was
// started under the old configuration and becomes stale.
func (s *MemoryStore) invalidate(f *models.UploadedFile) {
	f.Validation = nil
	if st, ok := s.validation[f.ID]; ok {
		st.Generation++
		st.Running = false
		st.Progress = 0
	}
}

func (s *MemoryStore) UpdateMapping(id string, m models.ColumnMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, f := s.find(id)
	if f == nil {
		return ErrFileNotFound
	}
	f.Mapping = m.Clone()
	s.invalidate(f)
	s.rev++
	return nil
}

// MergeTransforms lays overrides over the stored config of id, header by
// header, and returns the result.
func (s *MemoryStore) MergeTransforms(id string, overrides models.TransformationConfig) (models.TransformationConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, f := s.find(id)
	if f == nil {
		return nil, ErrFileNotFound
	}
	merged := make(models.TransformationConfig, len(f.Transforms)+len(overrides))
	for h, t := range f.Transforms {
		merged[h] = t
	}
	for h, t := range overrides {
		merged[h] = t
	}
	f.Transforms = merged
	s.invalidate(f)
	s.rev++
	return merged.Clone(), nil
}

// CopyMappingToAll copies the mapping of sourceID onto every other file
// without checking that the headers exist there. It returns how many files
// were updated.
func (s *MemoryStore) CopyMappingToAll(sourceID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, src := s.find(sourceID)
	if src == nil {
		return 0, ErrFileNotFound
	}
	n := 0
	for _, f := range s.files {
		if f.ID == sourceID {
			continue
		}
		f.Mapping = src.Mapping.Clone()
		s.invalidate(f)
		n++
	}
	if n > 0 {
		s.rev++
	}
	return n, nil
}

func (s *MemoryStore) SetMode(m models.MultiFileMode) error {
	if !m.Valid() {
		return ErrInvalidMode
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != m {
		s.mode = m
		s.rev++
	}
	return nil
}

func (s *MemoryStore) Mode() models.MultiFileMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// Revision changes whenever anything that feeds a report changes.
func (s *MemoryStore) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rev
}

func (s *MemoryStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	files := make([]models.UploadedFile, 0, len(s.files))
	for _, f := range s.files {
		files = append(files, copyFile(f))
	}
	return Snapshot{Files: files, Mode: s.mode, Revision: s.rev}
}

// BeginValidation starts a new scan generation for id; any scan still
// running for the file becomes stale.
func (s *MemoryStore) BeginValidation(id string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, f := s.find(id); f == nil {
		return 0, ErrFileNotFound
	}
	st, ok := s.validation[id]
	if !ok {
		st = &ValidationState{}
		s.validation[id] = st
	}
	st.Generation++
	st.Running = true
	st.Progress = 0
	st.StartedAt = s.now()
	return st.Generation, nil
}

// ReportProgress records progress for the current generation. Stale
// generations and backwards progress are ignored.
func (s *MemoryStore) ReportProgress(id string, gen uint64, pct int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.validation[id]
	if !ok || st.Generation != gen || !st.Running || pct < st.Progress {
		return false
	}
	st.Progress = min(pct, 100)
	return true
}

// CompleteValidation stores the summary if gen is still current.
func (s *MemoryStore) CompleteValidation(id string, gen uint64, sum models.ValidationSummary) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.validation[id]
	if !ok || st.Generation != gen {
		return false
	}
	_, f := s.find(id)
	if f == nil {
		return false
	}
	st.Running = false
	st.Progress = 100
	f.Validation = &sum
	return true
}

func (s *MemoryStore) ValidationStatus(id string) (ValidationState, *models.ValidationSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, f := s.find(id)
	if f == nil {
		return ValidationState{}, nil, ErrFileNotFound
	}
	var st ValidationState
	if v, ok := s.validation[id]; ok {
		st = *v
	}
	return st, f.Validation, nil
}
