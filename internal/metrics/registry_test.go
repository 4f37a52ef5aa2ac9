package metrics

import (
	"encoding/json"
	"testing"

	"github.com/AngelCh415/campaign-metrics/internal/models"
)

func TestRegistryCoversEveryEntityMetricKey(t *testing.T) {
	all := models.EntityMetrics{
		CPI: f(1), CPC: f(1), ClickToLead: f(1), ClickToClose: f(1),
		ContactRate: f(1), InboundCallRate: f(1), CTR: f(1), ROAS: f(1),
	}
	b, _ := json.Marshal(all)
	var keys map[string]any
	if err := json.Unmarshal(b, &keys); err != nil {
		t.Fatal(err)
	}
	delete(keys, "entity")
	delete(keys, "rows")
	for k := range keys {
		if _, ok := Lookup(MetricID(k)); !ok {
			t.Errorf("json key %q has no definition", k)
		}
	}
	if len(Definitions()) != len(keys) {
		t.Fatalf("registry has %d entries, metrics have %d keys", len(Definitions()), len(keys))
	}
}

func TestLowerIsBetterOnlyForCosts(t *testing.T) {
	for _, d := range Definitions() {
		if d.LowerIsBetter != (d.Category == CategoryCost) {
			t.Errorf("%s: lowerIsBetter=%v category=%s", d.ID, d.LowerIsBetter, d.Category)
		}
	}
}

func TestGetMetricValue(t *testing.T) {
	m := models.EntityMetrics{CPL: 12, CTR: f(3.5)}
	if v, ok := GetMetricValue(m, MetricCPL); !ok || v != 12 {
		t.Fatalf("cpl: %v %v", v, ok)
	}
	if v, ok := GetMetricValue(m, MetricCTR); !ok || v != 3.5 {
		t.Fatalf("ctr: %v %v", v, ok)
	}
	if _, ok := GetMetricValue(m, MetricROAS); ok {
		t.Fatal("absent roas must report not applicable")
	}
	if _, ok := GetMetricValue(m, "bogus"); ok {
		t.Fatal("unknown id")
	}
}

func TestParseDefinitionsRejectsUnknownIDs(t *testing.T) {
	if _, err := parseDefinitions([]byte("- id: nope\n  format: number\n")); err == nil {
		t.Fatal("expected error")
	}
	if _, err := parseDefinitions([]byte("- id: cpl\n  format: weird\n")); err == nil {
		t.Fatal("expected error")
	}
}
