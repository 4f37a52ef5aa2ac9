// Package metrics aggregates normalized rows into per-entity campaign metrics.
package metrics

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/AngelCh415/campaign-metrics/internal/models"
)

// Result is one aggregation: the global total plus one entry per entity in
// first-seen order.
type Result struct {
	Global   models.EntityMetrics   `json:"global"`
	Entities []models.EntityMetrics `json:"entities"`
}

// SafeDivide returns 0 instead of NaN or Inf.
func SafeDivide(num, den float64) float64 {
	if den == 0 || math.IsNaN(den) || math.IsInf(den, 0) || math.IsNaN(num) || math.IsInf(num, 0) {
		return 0
	}
	r := num / den
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// pct scales before dividing so whole percentages stay exact, unless the
// scaled numerator would overflow.
func pct(num, den float64) float64 {
	if s := num * 100; !math.IsInf(s, 0) {
		return SafeDivide(s, den)
	}
	return finite(SafeDivide(num, den) * 100)
}

// finite clamps overflow to the largest float64 of the same sign. NaN is 0.
func finite(f float64) float64 {
	switch {
	case math.IsNaN(f):
		return 0
	case math.IsInf(f, 1):
		return math.MaxFloat64
	case math.IsInf(f, -1):
		return -math.MaxFloat64
	}
	return f
}

func ptr(f float64) *float64 { return &f }

// acc sums money through decimal so long columns of cents do not drift.
type acc struct {
	rows        int
	spend       decimal.Decimal
	premium     decimal.Decimal
	leads       float64
	quotes      float64
	sales       float64
	clicks      float64
	impressions float64
	contacted   float64
	calls       float64
	policyItems float64

	quoteCPASum  decimal.Decimal
	quoteCPAN    int
	policyCPASum decimal.Decimal
	policyCPAN   int
}

func val(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// dec converts to decimal, treating non-finite input as zero.
func dec(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

func (a *acc) add(r models.NormalizedRow) {
	a.rows++
	a.spend = a.spend.Add(dec(r.Spend))
	a.premium = a.premium.Add(dec(val(r.Premium)))
	a.leads = finite(a.leads + r.Leads)
	a.quotes = finite(a.quotes + r.Quotes)
	a.sales = finite(a.sales + r.Sales)
	a.clicks = finite(a.clicks + val(r.Clicks))
	a.impressions = finite(a.impressions + val(r.Impressions))
	a.contacted = finite(a.contacted + val(r.Contacted))
	a.calls = finite(a.calls + val(r.Calls))
	a.policyItems = finite(a.policyItems + val(r.PolicyItems))
	if r.QuoteCPA != nil {
		a.quoteCPASum = a.quoteCPASum.Add(dec(*r.QuoteCPA))
		a.quoteCPAN++
	}
	if r.PolicyCPA != nil {
		a.policyCPASum = a.policyCPASum.Add(dec(*r.PolicyCPA))
		a.policyCPAN++
	}
}

// average returns sum/n, with ok false when no row supplied a value.
func average(sum decimal.Decimal, n int) (float64, bool) {
	if n == 0 {
		return 0, false
	}
	f := sum.Div(decimal.NewFromInt(int64(n))).InexactFloat64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, true
	}
	return f, true
}

func (a *acc) metrics(entity string) models.EntityMetrics {
	spend := finite(a.spend.InexactFloat64())
	premium := finite(a.premium.InexactFloat64())
	m := models.EntityMetrics{
		Entity:      entity,
		Rows:        a.rows,
		Spend:       spend,
		Leads:       a.leads,
		Quotes:      a.quotes,
		Sales:       a.sales,
		Clicks:      a.clicks,
		Impressions: a.impressions,
		Contacted:   a.contacted,
		Calls:       a.calls,
		PolicyItems: a.policyItems,
		Premium:     premium,

		CPL:          SafeDivide(spend, a.leads),
		CPQ:          SafeDivide(spend, a.quotes),
		CPA:          SafeDivide(spend, a.sales),
		QuoteRate:    pct(a.quotes, a.leads),
		QuoteToClose: pct(a.sales, a.quotes),
		CloseRate:    pct(a.sales, a.leads),
	}
	// Supplied per-row costs replace the computed ratio for the whole group.
	if avg, ok := average(a.quoteCPASum, a.quoteCPAN); ok {
		m.CPQ = avg
	}
	if avg, ok := average(a.policyCPASum, a.policyCPAN); ok {
		m.CPA = avg
	}
	if a.policyItems > 0 {
		m.CPI = ptr(SafeDivide(spend, a.policyItems))
	}
	if a.clicks > 0 {
		m.CPC = ptr(SafeDivide(spend, a.clicks))
		m.ClickToLead = ptr(pct(a.leads, a.clicks))
		m.ClickToClose = ptr(pct(a.sales, a.clicks))
	}
	if a.contacted > 0 {
		m.ContactRate = ptr(pct(a.contacted, a.leads))
	}
	if a.calls > 0 {
		m.InboundCallRate = ptr(pct(a.calls, a.leads))
	}
	if a.impressions > 0 {
		m.CTR = ptr(pct(a.clicks, a.impressions))
	}
	if premium > 0 {
		m.ROAS = ptr(SafeDivide(premium, spend))
	}
	return m
}

// CalculateEntityMetrics aggregates rows under the given entity name. Rows are
// not filtered; callers pass the group they want summed.
func CalculateEntityMetrics(entity string, rows []models.NormalizedRow) models.EntityMetrics {
	var a acc
	for _, r := range rows {
		a.add(r)
	}
	return a.metrics(entity)
}

// CalculateAllMetrics groups rows by exact entity name and computes the
// global "Total" aggregate over every row.
func CalculateAllMetrics(rows []models.NormalizedRow) Result {
	order := make([]string, 0)
	groups := make(map[string]*acc)
	var global acc
	for _, r := range rows {
		g, ok := groups[r.Entity]
		if !ok {
			g = &acc{}
			groups[r.Entity] = g
			order = append(order, r.Entity)
		}
		g.add(r)
		global.add(r)
	}
	out := Result{
		Global:   global.metrics(models.TotalEntity),
		Entities: make([]models.EntityMetrics, 0, len(order)),
	}
	for _, e := range order {
		out.Entities = append(out.Entities, groups[e].metrics(e))
	}
	return out
}
