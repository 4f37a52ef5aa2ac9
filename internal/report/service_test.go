package report

import (
	"errors"
	"io"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/AngelCh415/campaign-metrics/internal/models"
	"github.com/AngelCh415/campaign-metrics/internal/store"
)

func seed(t *testing.T) *store.MemoryStore {
	t.Helper()
	st := store.NewMemoryStore()
	_, err := st.AddFile(models.UploadedFile{
		FileName: "vendors.csv",
		Headers:  []string{"Vendor", "Cost", "Leads", "Quotes", "Sales", "Clicks"},
		Rows: []models.RawRow{
			{"Vendor": "Alpha", "Cost": "100", "Leads": "10", "Quotes": "5", "Sales": "1", "Clicks": "50"},
			{"Vendor": "Beta", "Cost": "100", "Leads": "20", "Quotes": "4", "Sales": "2"},
			{"Vendor": "Gamma", "Cost": "100", "Leads": "5", "Quotes": "1", "Sales": "0", "Clicks": "10"},
		},
		Mapping: models.ColumnMapping{
			models.FieldEntity: "Vendor",
			models.FieldSpend:  "Cost",
			models.FieldLeads:  "Leads",
			models.FieldQuotes: "Quotes",
			models.FieldSales:  "Sales",
			models.FieldClicks: "Clicks",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return st
}

func newService(st *store.MemoryStore) *Service {
	return NewService(st, slog.New(slog.NewTextHandler(io.Discard, nil)), time.Minute)
}

func names(r Report) []string {
	var out []string
	for _, e := range r.Results[0].Metrics.Entities {
		out = append(out, e.Entity)
	}
	return out
}

func TestReportDefaultKeepsFirstSeenOrder(t *testing.T) {
	svc := newService(seed(t))
	rep, err := svc.Report(url.Values{})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Mode != models.ModeMerge || len(rep.Results) != 1 {
		t.Fatalf("got %+v", rep)
	}
	if got := names(rep); len(got) != 3 || got[0] != "Alpha" || got[2] != "Gamma" {
		t.Fatalf("order: %v", got)
	}
	if rep.Results[0].Metrics.Global.Spend != 300 {
		t.Fatalf("global spend: %v", rep.Results[0].Metrics.Global.Spend)
	}
}

func TestReportSortUsesBetterDirection(t *testing.T) {
	svc := newService(seed(t))
	// cpl is a cost, so lowest first: Beta 5, Alpha 10, Gamma 20.
	rep, err := svc.Report(url.Values{"sort": {"cpl"}})
	if err != nil {
		t.Fatal(err)
	}
	if got := names(rep); got[0] != "Beta" || got[1] != "Alpha" || got[2] != "Gamma" {
		t.Fatalf("cpl asc: %v", got)
	}
	if rep.Order != OrderAsc {
		t.Fatalf("order: %s", rep.Order)
	}
	// quoteRate is a rate, so highest first: Alpha 50, Beta 20, Gamma 20.
	rep, _ = svc.Report(url.Values{"sort": {"quoteRate"}})
	if got := names(rep); got[0] != "Alpha" || got[1] != "Beta" || got[2] != "Gamma" {
		t.Fatalf("quoteRate desc: %v", got)
	}
}

func TestReportMissingValuesSortLast(t *testing.T) {
	svc := newService(seed(t))
	for _, order := range []string{"asc", "desc"} {
		rep, err := svc.Report(url.Values{"sort": {"cpc"}, "order": {order}})
		if err != nil {
			t.Fatal(err)
		}
		if got := names(rep); got[2] != "Beta" {
			t.Fatalf("%s: entity without clicks must sort last, got %v", order, got)
		}
	}
}

func TestReportFilterAndPaginate(t *testing.T) {
	svc := newService(seed(t))
	rep, _ := svc.Report(url.Values{"entity": {"alpha, GAMMA"}})
	if got := names(rep); len(got) != 2 || got[1] != "Gamma" {
		t.Fatalf("filter: %v", got)
	}
	rep, _ = svc.Report(url.Values{"limit": {"1"}, "offset": {"1"}})
	if got := names(rep); len(got) != 1 || got[0] != "Beta" {
		t.Fatalf("page: %v", got)
	}
	rep, _ = svc.Report(url.Values{"offset": {"9"}})
	if got := names(rep); len(got) != 0 {
		t.Fatalf("offset past end: %v", got)
	}
}

func TestReportRejectsBadQueries(t *testing.T) {
	svc := newService(seed(t))
	if _, err := svc.Report(url.Values{"sort": {"bogus"}}); !errors.Is(err, ErrUnknownMetric) {
		t.Fatalf("expected ErrUnknownMetric, got %v", err)
	}
	if _, err := svc.Report(url.Values{"sort": {"cpl"}, "order": {"up"}}); !errors.Is(err, ErrInvalidOrder) {
		t.Fatalf("expected ErrInvalidOrder, got %v", err)
	}
}

func TestOutcomeCachedPerRevision(t *testing.T) {
	st := seed(t)
	svc := newService(st)
	first, rev1 := svc.Outcome()
	// Ranking works on a copy and must not disturb the cached outcome.
	if _, err := svc.Report(url.Values{"sort": {"cpl"}}); err != nil {
		t.Fatal(err)
	}
	again, rev2 := svc.Outcome()
	if rev1 != rev2 || again.Results[0].Metrics.Entities[0].Entity != "Alpha" {
		t.Fatalf("cached outcome changed: %+v", again.Results[0].Metrics.Entities)
	}
	if err := st.SetMode(models.ModeCompare); err != nil {
		t.Fatal(err)
	}
	next, rev3 := svc.Outcome()
	if rev3 == rev1 || next.Mode != models.ModeCompare {
		t.Fatalf("expected recomputation after a store change, got mode %s", next.Mode)
	}
	if first.Mode != models.ModeMerge {
		t.Fatalf("first outcome mode: %s", first.Mode)
	}
}
