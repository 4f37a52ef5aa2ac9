package mapping

import "github.com/AngelCh415/campaign-metrics/internal/models"

// fieldPatterns lists candidate header spellings per field, most specific first.
var fieldPatterns = map[models.Field][]string{
	models.FieldEntity: {
		"campaign name", "campaign", "lead source", "source name", "source",
		"vendor name", "vendor", "entity", "channel", "partner", "name",
	},
	models.FieldSpend: {
		"total spend", "ad spend", "spend", "total cost", "cost", "amount spent",
		"investment", "budget",
	},
	models.FieldLeads: {
		"total leads", "lead count", "leads", "lead",
	},
	models.FieldQuotes: {
		"total quotes", "quote count", "quotes", "quoted", "quote",
	},
	models.FieldSales: {
		"total sales", "policies sold", "sales", "sold", "policies", "binds", "bound",
		"closed", "closings", "sale",
	},
	models.FieldClicks: {
		"total clicks", "clicks", "click",
	},
	models.FieldImpressions: {
		"total impressions", "impressions", "impr", "views",
	},
	models.FieldContacted: {
		"contacted", "contacts", "contact",
	},
	models.FieldCalls: {
		"inbound calls", "total calls", "calls", "call",
	},
	models.FieldPolicyItems: {
		"policy items", "policyitems", "items sold", "items",
	},
	models.FieldPremium: {
		"written premium", "total premium", "premium", "revenue",
	},
	models.FieldDate: {
		"date", "day", "week", "month", "period",
	},
	models.FieldQuoteCPA: {
		"quote cpa", "cost per quote", "cpq",
	},
	models.FieldPolicyCPA: {
		"policy cpa", "cost per policy", "cost per sale", "cost per acquisition", "cpa",
	},
}

// derivedMarkers identify computed columns that must never feed a raw count.
var derivedMarkers = []string{
	"cvr", "cpl", "cpc", "cpi", "rate", "ratio", "%", "percent", "conversion",
}

// cpaMarkers identify pre-computed acquisition costs; only the CPA override
// fields may claim them.
var cpaMarkers = []string{"cpa", "cpq", "cost per"}

// foreignWords keep a field off headers that name another field's quantity,
// e.g. "Items Sold" or "Quoted Premium". Matched as whole words.
var foreignWords = map[models.Field][]string{
	models.FieldQuotes: {"premium", "item", "items", "call", "calls"},
	models.FieldSales:  {"premium", "item", "items", "call", "calls"},
}

// rawCountFields are guarded by derivedMarkers.
var rawCountFields = map[models.Field]bool{
	models.FieldSpend:       true,
	models.FieldLeads:       true,
	models.FieldQuotes:      true,
	models.FieldSales:       true,
	models.FieldClicks:      true,
	models.FieldImpressions: true,
	models.FieldContacted:   true,
	models.FieldCalls:       true,
	models.FieldPolicyItems: true,
	models.FieldPremium:     true,
}

func isCPAField(f models.Field) bool {
	return f == models.FieldQuoteCPA || f == models.FieldPolicyCPA
}

// Patterns returns a copy of the candidate spellings for f.
func Patterns(f models.Field) []string {
	return append([]string(nil), fieldPatterns[f]...)
}
