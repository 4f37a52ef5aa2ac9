package mapping

import (
	"testing"

	"github.com/AngelCh415/campaign-metrics/internal/models"
)

func TestAutoDetectExclusions(t *testing.T) {
	m := AutoDetectColumns([]string{"Leads", "Lead Conversion Rate", "Quote", "CPA"})
	if m[models.FieldLeads] != "Leads" {
		t.Fatalf("leads: got %q", m[models.FieldLeads])
	}
	if m[models.FieldQuotes] != "Quote" {
		t.Fatalf("quotes: got %q", m[models.FieldQuotes])
	}
	if m[models.FieldPolicyCPA] != "CPA" {
		t.Fatalf("policyCpa: got %q", m[models.FieldPolicyCPA])
	}
	if _, ok := m.Header(models.FieldSales); ok {
		t.Fatalf("sales must not claim %q", m[models.FieldSales])
	}
	if _, ok := m.Header(models.FieldSpend); ok {
		t.Fatalf("spend must not claim %q", m[models.FieldSpend])
	}
}

func TestAutoDetectTypicalExport(t *testing.T) {
	headers := []string{
		"Campaign Name", "Date", "Total Spend", "Leads", "Quote Rate %", "Quotes",
		"Policies Sold", "Clicks", "CTR", "Impressions", "Contacted", "Inbound Calls",
		"Policy Items", "Written Premium", "Cost Per Quote", "Cost Per Policy", "CPL",
	}
	m := AutoDetectColumns(headers)
	want := map[models.Field]string{
		models.FieldEntity:      "Campaign Name",
		models.FieldSpend:       "Total Spend",
		models.FieldLeads:       "Leads",
		models.FieldQuotes:      "Quotes",
		models.FieldSales:       "Policies Sold",
		models.FieldClicks:      "Clicks",
		models.FieldImpressions: "Impressions",
		models.FieldContacted:   "Contacted",
		models.FieldCalls:       "Inbound Calls",
		models.FieldPolicyItems: "Policy Items",
		models.FieldPremium:     "Written Premium",
		models.FieldDate:        "Date",
		models.FieldQuoteCPA:    "Cost Per Quote",
		models.FieldPolicyCPA:   "Cost Per Policy",
	}
	for f, h := range want {
		if m[f] != h {
			t.Errorf("%s: got %q want %q", f, m[f], h)
		}
	}
	if !ValidateMapping(m).Valid {
		t.Fatal("expected a valid mapping")
	}
}

func TestAutoDetectNeverDoubleMaps(t *testing.T) {
	lists := [][]string{
		{"Lead", "Leads", "Lead Source"},
		{"cost", "spend", "Spend Total", "Cost Per Lead"},
		{"Sales", "Sale", "sold", "closed"},
		{"quote", "quotes", "quote_count", "Quote CPA"},
		{"name"},
		{"A", "B", "C"},
	}
	for _, headers := range lists {
		m := AutoDetectColumns(headers)
		seen := map[string]models.Field{}
		for f, h := range m {
			if prev, ok := seen[h]; ok {
				t.Fatalf("%v: header %q mapped to %s and %s", headers, h, prev, f)
			}
			seen[h] = f
		}
	}
}

func TestAutoDetectPrefersExactOverContains(t *testing.T) {
	m := AutoDetectColumns([]string{"Lead Count Adjusted", "Leads"})
	if m[models.FieldLeads] != "Leads" {
		t.Fatalf("got %q", m[models.FieldLeads])
	}
}

func TestAutoDetectUnderscoreHeaders(t *testing.T) {
	m := AutoDetectColumns([]string{"lead_source", "total_spend", "leads", "quotes", "sales"})
	if m[models.FieldEntity] != "lead_source" || m[models.FieldSpend] != "total_spend" {
		t.Fatalf("got %+v", m)
	}
}

func TestValidateMapping(t *testing.T) {
	v := ValidateMapping(models.ColumnMapping{
		models.FieldEntity: "Campaign",
		models.FieldSpend:  " ",
		models.FieldLeads:  "Leads",
	})
	if v.Valid {
		t.Fatal("expected invalid")
	}
	want := []models.Field{models.FieldSpend, models.FieldQuotes, models.FieldSales}
	if len(v.MissingFields) != len(want) {
		t.Fatalf("missing: %v", v.MissingFields)
	}
	for i := range want {
		if v.MissingFields[i] != want[i] {
			t.Fatalf("missing[%d]: got %s want %s", i, v.MissingFields[i], want[i])
		}
	}
}

func TestSanitizeAndUnresolved(t *testing.T) {
	m := Sanitize(models.ColumnMapping{
		models.FieldEntity: "Campaign",
		"bogus":            "X",
		models.FieldClicks: "",
		models.FieldSpend:  "Cost",
	})
	if len(m) != 2 {
		t.Fatalf("sanitize: %+v", m)
	}
	un := Unresolved(m, []string{"Campaign"})
	if len(un) != 1 || un[0] != models.FieldSpend {
		t.Fatalf("unresolved: %v", un)
	}
}

func TestAutoDetectWholeWords(t *testing.T) {
	base := []string{"Campaign", "Spend", "Leads"}
	cases := []struct {
		extra []string
		want  map[models.Field]string
	}{
		{
			extra: []string{"Quotes", "Inbound Calls"},
			want:  map[models.Field]string{models.FieldSales: "", models.FieldCalls: "Inbound Calls"},
		},
		{
			extra: []string{"Quotes", "Closings", "Items Sold"},
			want:  map[models.Field]string{models.FieldSales: "Closings", models.FieldPolicyItems: "Items Sold"},
		},
		{
			extra: []string{"Quoted Premium", "Sales"},
			want:  map[models.Field]string{models.FieldQuotes: "", models.FieldPremium: "Quoted Premium", models.FieldSales: "Sales"},
		},
		{
			extra: []string{"Quotes", "Bound Policies"},
			want:  map[models.Field]string{models.FieldSales: "Bound Policies"},
		},
	}
	for _, c := range cases {
		m := AutoDetectColumns(append(append([]string(nil), base...), c.extra...))
		for f, h := range c.want {
			if m[f] != h {
				t.Errorf("%v: %s got %q want %q", c.extra, f, m[f], h)
			}
		}
	}
	m := AutoDetectColumns([]string{"Campaign", "Spend", "Leads", "Quotes", "Inbound Calls"})
	if ValidateMapping(m).Valid {
		t.Fatalf("a call count must not satisfy sales: %+v", m)
	}
}
