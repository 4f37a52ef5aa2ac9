// Package report serves the metric outcome of the current session, ranked
// and paginated for the presentation layer.
package report

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/AngelCh415/campaign-metrics/internal/coordinator"
	"github.com/AngelCh415/campaign-metrics/internal/metrics"
	"github.com/AngelCh415/campaign-metrics/internal/models"
	"github.com/AngelCh415/campaign-metrics/internal/store"
	"github.com/AngelCh415/campaign-metrics/internal/telemetry"
)

var (
	ErrUnknownMetric = errors.New("unknown metric")
	ErrInvalidOrder  = errors.New("order must be asc or desc")
)

const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
	maxLimit  = 1000
)

// Report is the outcome of the current mode, possibly ranked and paged.
type Report struct {
	Mode     models.MultiFileMode     `json:"mode"`
	Revision uint64                   `json:"revision"`
	Sort     metrics.MetricID         `json:"sort,omitempty"`
	Order    string                   `json:"order,omitempty"`
	Results  []coordinator.FileResult `json:"results"`
}

// Service computes outcomes from the store, caching them per store revision.
type Service struct {
	st    *store.MemoryStore
	cache *cache.Cache
	log   *slog.Logger
}

func NewService(st *store.MemoryStore, log *slog.Logger, ttl time.Duration) *Service {
	return &Service{st: st, cache: cache.New(ttl, 2*ttl), log: log}
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func csvSet(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, p := range strings.Split(s, ",") {
		p = norm(p)
		if p != "" {
			out[p] = struct{}{}
		}
	}
	return out
}

// Outcome returns the coordinator outcome for the current store state.
func (s *Service) Outcome() (coordinator.Outcome, uint64) {
	snap := s.st.Snapshot()
	key := strconv.FormatUint(snap.Revision, 10)
	if v, ok := s.cache.Get(key); ok {
		telemetry.ReportCache.WithLabelValues("hit").Inc()
		return v.(coordinator.Outcome), snap.Revision
	}
	telemetry.ReportCache.WithLabelValues("miss").Inc()

	start := time.Now()
	out := coordinator.Compute(snap.Files, snap.Mode)
	dropped, entities := 0, 0
	for _, r := range out.Results {
		dropped += r.Dropped
		entities += len(r.Metrics.Entities)
	}
	telemetry.RowsDropped.Add(float64(dropped))
	s.log.Info("report computed",
		slog.String("mode", string(snap.Mode)),
		slog.Int("files", len(snap.Files)),
		slog.Int("entities", entities),
		slog.Int("dropped", dropped),
		slog.Duration("took", time.Since(start)))
	s.cache.Set(key, out, cache.DefaultExpiration)
	return out, snap.Revision
}

// Report builds the response for query v:
//
//	sort    metric id to rank entities by
//	order   asc or desc; defaults to the metric's better direction
//	entity  comma separated entity filter, case insensitive
//	limit   entities per result (default all, max 1000)
//	offset  entities to skip
func (s *Service) Report(v url.Values) (Report, error) {
	var def metrics.Definition
	sortBy := metrics.MetricID(strings.TrimSpace(v.Get("sort")))
	if sortBy != "" {
		d, ok := metrics.Lookup(sortBy)
		if !ok {
			return Report{}, fmt.Errorf("%w: %s", ErrUnknownMetric, sortBy)
		}
		def = d
	}
	order := norm(v.Get("order"))
	switch order {
	case "":
		if sortBy != "" {
			order = OrderDesc
			if def.LowerIsBetter {
				order = OrderAsc
			}
		}
	case OrderAsc, OrderDesc:
	default:
		return Report{}, ErrInvalidOrder
	}
	entSet := csvSet(v.Get("entity"))
	limit := atoiDef(v.Get("limit"), 0)
	offset := atoiDef(v.Get("offset"), 0)

	out, rev := s.Outcome()
	rep := Report{Mode: out.Mode, Revision: rev, Sort: sortBy, Order: order, Results: make([]coordinator.FileResult, 0, len(out.Results))}
	for _, r := range out.Results {
		ents := make([]models.EntityMetrics, 0, len(r.Metrics.Entities))
		for _, e := range r.Metrics.Entities {
			if len(entSet) > 0 {
				if _, ok := entSet[norm(e.Entity)]; !ok {
					continue
				}
			}
			ents = append(ents, e)
		}
		if sortBy != "" {
			rank(ents, sortBy, order == OrderAsc)
		}
		l, o := clampLimitOffset(limit, offset, len(ents))
		r.Metrics.Entities = paginate(ents, l, o)
		rep.Results = append(rep.Results, r)
	}
	return rep, nil
}

// rank orders entities by id. Entities without a value go last; ties keep
// first-seen order.
func rank(ents []models.EntityMetrics, id metrics.MetricID, asc bool) {
	sort.SliceStable(ents, func(i, j int) bool {
		a, aok := metrics.GetMetricValue(ents[i], id)
		b, bok := metrics.GetMetricValue(ents[j], id)
		if aok != bok {
			return aok
		}
		if asc {
			return a < b
		}
		return a > b
	})
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

func clampLimitOffset(limit, offset, n int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = n
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset > n {
		offset = n
	}
	return limit, offset
}
