package metrics

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/AngelCh415/campaign-metrics/internal/models"
)

// MetricID names one metric; values match the json keys of models.EntityMetrics.
type MetricID string

const (
	MetricSpend           MetricID = "spend"
	MetricLeads           MetricID = "leads"
	MetricQuotes          MetricID = "quotes"
	MetricSales           MetricID = "sales"
	MetricClicks          MetricID = "clicks"
	MetricImpressions     MetricID = "impressions"
	MetricContacted       MetricID = "contacted"
	MetricCalls           MetricID = "calls"
	MetricPolicyItems     MetricID = "policyItems"
	MetricPremium         MetricID = "premium"
	MetricCPL             MetricID = "cpl"
	MetricCPQ             MetricID = "cpq"
	MetricCPA             MetricID = "cpa"
	MetricCPI             MetricID = "cpi"
	MetricCPC             MetricID = "cpc"
	MetricQuoteRate       MetricID = "quoteRate"
	MetricQuoteToClose    MetricID = "quoteToClose"
	MetricCloseRate       MetricID = "closeRate"
	MetricClickToLead     MetricID = "clickToLead"
	MetricClickToClose    MetricID = "clickToClose"
	MetricContactRate     MetricID = "contactRate"
	MetricInboundCallRate MetricID = "inboundCallRate"
	MetricCTR             MetricID = "ctr"
	MetricROAS            MetricID = "roas"
)

type Category string

const (
	CategoryVolume     Category = "volume"
	CategoryCost       Category = "cost"
	CategoryConversion Category = "conversion"
	CategoryEngagement Category = "engagement"
	CategoryBusiness   Category = "business"
)

type Format string

const (
	FormatCurrency   Format = "currency"
	FormatPercentage Format = "percentage"
	FormatNumber     Format = "number"
	FormatMultiplier Format = "multiplier"
)

// Definition is the display metadata of one metric.
type Definition struct {
	ID            MetricID `yaml:"id" json:"id"`
	Label         string   `yaml:"label" json:"label"`
	Category      Category `yaml:"category" json:"category"`
	Format        Format   `yaml:"format" json:"format"`
	LowerIsBetter bool     `yaml:"lowerIsBetter" json:"lowerIsBetter"`
}

//go:embed definitions.yaml
var definitionsYAML []byte

var (
	definitions []Definition
	byID        map[MetricID]Definition
)

func init() {
	defs, err := parseDefinitions(definitionsYAML)
	if err != nil {
		panic(err)
	}
	definitions = defs
	byID = make(map[MetricID]Definition, len(defs))
	for _, d := range defs {
		byID[d.ID] = d
	}
}

func parseDefinitions(b []byte) ([]Definition, error) {
	var defs []Definition
	if err := yaml.Unmarshal(b, &defs); err != nil {
		return nil, fmt.Errorf("metric definitions: %w", err)
	}
	for _, d := range defs {
		if _, ok := accessors[d.ID]; !ok {
			return nil, fmt.Errorf("metric definitions: unknown id %q", d.ID)
		}
		switch d.Format {
		case FormatCurrency, FormatPercentage, FormatNumber, FormatMultiplier:
		default:
			return nil, fmt.Errorf("metric definitions: %s has format %q", d.ID, d.Format)
		}
	}
	return defs, nil
}

// Definitions returns the registry in display order.
func Definitions() []Definition {
	return append([]Definition(nil), definitions...)
}

func Lookup(id MetricID) (Definition, bool) {
	d, ok := byID[id]
	return d, ok
}

func opt(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

func req(f float64) (float64, bool) { return f, true }

var accessors = map[MetricID]func(m models.EntityMetrics) (float64, bool){
	MetricSpend:           func(m models.EntityMetrics) (float64, bool) { return req(m.Spend) },
	MetricLeads:           func(m models.EntityMetrics) (float64, bool) { return req(m.Leads) },
	MetricQuotes:          func(m models.EntityMetrics) (float64, bool) { return req(m.Quotes) },
	MetricSales:           func(m models.EntityMetrics) (float64, bool) { return req(m.Sales) },
	MetricClicks:          func(m models.EntityMetrics) (float64, bool) { return req(m.Clicks) },
	MetricImpressions:     func(m models.EntityMetrics) (float64, bool) { return req(m.Impressions) },
	MetricContacted:       func(m models.EntityMetrics) (float64, bool) { return req(m.Contacted) },
	MetricCalls:           func(m models.EntityMetrics) (float64, bool) { return req(m.Calls) },
	MetricPolicyItems:     func(m models.EntityMetrics) (float64, bool) { return req(m.PolicyItems) },
	MetricPremium:         func(m models.EntityMetrics) (float64, bool) { return req(m.Premium) },
	MetricCPL:             func(m models.EntityMetrics) (float64, bool) { return req(m.CPL) },
	MetricCPQ:             func(m models.EntityMetrics) (float64, bool) { return req(m.CPQ) },
	MetricCPA:             func(m models.EntityMetrics) (float64, bool) { return req(m.CPA) },
	MetricCPI:             func(m models.EntityMetrics) (float64, bool) { return opt(m.CPI) },
	MetricCPC:             func(m models.EntityMetrics) (float64, bool) { return opt(m.CPC) },
	MetricQuoteRate:       func(m models.EntityMetrics) (float64, bool) { return req(m.QuoteRate) },
	MetricQuoteToClose:    func(m models.EntityMetrics) (float64, bool) { return req(m.QuoteToClose) },
	MetricCloseRate:       func(m models.EntityMetrics) (float64, bool) { return req(m.CloseRate) },
	MetricClickToLead:     func(m models.EntityMetrics) (float64, bool) { return opt(m.ClickToLead) },
	MetricClickToClose:    func(m models.EntityMetrics) (float64, bool) { return opt(m.ClickToClose) },
	MetricContactRate:     func(m models.EntityMetrics) (float64, bool) { return opt(m.ContactRate) },
	MetricInboundCallRate: func(m models.EntityMetrics) (float64, bool) { return opt(m.InboundCallRate) },
	MetricCTR:             func(m models.EntityMetrics) (float64, bool) { return opt(m.CTR) },
	MetricROAS:            func(m models.EntityMetrics) (float64, bool) { return opt(m.ROAS) },
}

// GetMetricValue reads a metric by id. ok is false for unknown ids and for
// metrics that do not apply to m.
func GetMetricValue(m models.EntityMetrics, id MetricID) (float64, bool) {
	fn, ok := accessors[id]
	if !ok {
		return 0, false
	}
	return fn(m)
}
