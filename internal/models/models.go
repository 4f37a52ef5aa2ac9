package models

import (
	"strings"
	"time"
)

// Field is a canonical column of the campaign schema.
type Field string

const (
	FieldEntity      Field = "entity"
	FieldSpend       Field = "spend"
	FieldLeads       Field = "leads"
	FieldQuotes      Field = "quotes"
	FieldSales       Field = "sales"
	FieldClicks      Field = "clicks"
	FieldImpressions Field = "impressions"
	FieldContacted   Field = "contacted"
	FieldCalls       Field = "calls"
	FieldPolicyItems Field = "policyItems"
	FieldPremium     Field = "premium"
	FieldDate        Field = "date"
	FieldQuoteCPA    Field = "quoteCpa"
	FieldPolicyCPA   Field = "policyCpa"
)

// Fields lists every canonical field in resolution order.
var Fields = []Field{
	FieldEntity, FieldSpend, FieldLeads, FieldQuotes, FieldSales,
	FieldClicks, FieldImpressions, FieldContacted, FieldCalls, FieldPolicyItems,
	FieldPremium, FieldDate, FieldQuoteCPA, FieldPolicyCPA,
}

// RequiredFields must all be mapped before baseline metrics make sense.
var RequiredFields = []Field{FieldEntity, FieldSpend, FieldLeads, FieldQuotes, FieldSales}

func (f Field) Required() bool {
	for _, r := range RequiredFields {
		if r == f {
			return true
		}
	}
	return false
}

// RawRow is one parsed CSV record keyed by header. Cells hold string, float64,
// int, bool or nil.
type RawRow map[string]any

// Cell returns the raw value stored under header. ok is false when the header
// is absent from the row or holds nil.
func (r RawRow) Cell(header string) (any, bool) {
	v, ok := r[header]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// ColumnMapping maps canonical fields to raw header strings.
type ColumnMapping map[Field]string

// Header reports the header mapped to f. Unmapped and blank entries are
// reported as not mapped.
func (m ColumnMapping) Header(f Field) (string, bool) {
	h, ok := m[f]
	if !ok || strings.TrimSpace(h) == "" {
		return "", false
	}
	return h, true
}

func (m ColumnMapping) Clone() ColumnMapping {
	out := make(ColumnMapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// FieldType is the value type a column is coerced to.
type FieldType string

const (
	TypeDate   FieldType = "date"
	TypeNumber FieldType = "number"
	TypeText   FieldType = "text"
)

// FormatAuto lets the parser pick a format per value.
const FormatAuto = "auto"

// FieldTransformation says how cells of one raw header are coerced.
type FieldTransformation struct {
	Type   FieldType `json:"type"`
	Format string    `json:"format"`
}

// TransformationConfig is keyed by raw header, not canonical field.
type TransformationConfig map[string]FieldTransformation

func (c TransformationConfig) Clone() TransformationConfig {
	if c == nil {
		return nil
	}
	out := make(TransformationConfig, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// NormalizedRow is a raw row translated onto the canonical schema. Optional
// fields stay nil when unmapped or unparsable.
type NormalizedRow struct {
	Entity      string     `json:"entity"`
	Spend       float64    `json:"spend"`
	Leads       float64    `json:"leads"`
	Quotes      float64    `json:"quotes"`
	Sales       float64    `json:"sales"`
	Clicks      *float64   `json:"clicks,omitempty"`
	Impressions *float64   `json:"impressions,omitempty"`
	Contacted   *float64   `json:"contacted,omitempty"`
	Calls       *float64   `json:"calls,omitempty"`
	PolicyItems *float64   `json:"policyItems,omitempty"`
	Premium     *float64   `json:"premium,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	QuoteCPA    *float64   `json:"quoteCpa,omitempty"`
	PolicyCPA   *float64   `json:"policyCpa,omitempty"`
}

// TotalEntity is the entity name of the global aggregate.
const TotalEntity = "Total"

// EntityMetrics holds base totals and derived metrics for one entity. Derived
// pointer fields are nil when not applicable to the data.
type EntityMetrics struct {
	Entity      string  `json:"entity"`
	Rows        int     `json:"rows"`
	Spend       float64 `json:"spend"`
	Leads       float64 `json:"leads"`
	Quotes      float64 `json:"quotes"`
	Sales       float64 `json:"sales"`
	Clicks      float64 `json:"clicks"`
	Impressions float64 `json:"impressions"`
	Contacted   float64 `json:"contacted"`
	Calls       float64 `json:"calls"`
	PolicyItems float64 `json:"policyItems"`
	Premium     float64 `json:"premium"`

	CPL             float64  `json:"cpl"`
	CPQ             float64  `json:"cpq"`
	CPA             float64  `json:"cpa"`
	CPI             *float64 `json:"cpi,omitempty"`
	CPC             *float64 `json:"cpc,omitempty"`
	QuoteRate       float64  `json:"quoteRate"`
	QuoteToClose    float64  `json:"quoteToClose"`
	CloseRate       float64  `json:"closeRate"`
	ClickToLead     *float64 `json:"clickToLead,omitempty"`
	ClickToClose    *float64 `json:"clickToClose,omitempty"`
	ContactRate     *float64 `json:"contactRate,omitempty"`
	InboundCallRate *float64 `json:"inboundCallRate,omitempty"`
	CTR             *float64 `json:"ctr,omitempty"`
	ROAS            *float64 `json:"roas,omitempty"`
}

// MultiFileMode selects how several uploaded files are combined.
type MultiFileMode string

const (
	ModeMerge   MultiFileMode = "merge"
	ModeCompare MultiFileMode = "compare"
)

func (m MultiFileMode) Valid() bool { return m == ModeMerge || m == ModeCompare }

// MaxFiles caps the number of concurrently uploaded files.
const MaxFiles = 3

// UploadedFile is one user-submitted dataset.
type UploadedFile struct {
	ID         string               `json:"id"`
	FileName   string               `json:"fileName"`
	Headers    []string             `json:"headers"`
	Rows       []RawRow             `json:"-"`
	RowCount   int                  `json:"rowCount"`
	Mapping    ColumnMapping        `json:"mapping"`
	Transforms TransformationConfig `json:"transforms,omitempty"`
	Validation *ValidationSummary   `json:"validation,omitempty"`
	UploadedAt time.Time            `json:"uploadedAt"`
}

// FieldIssues counts problems found in one raw header.
type FieldIssues struct {
	Header   string `json:"header"`
	Checked  int    `json:"checked"`
	Errors   int    `json:"errors"`
	Warnings int    `json:"warnings"`
	Message  string `json:"message,omitempty"`
}

// ValidationSummary is the outcome of a full-dataset validation scan.
type ValidationSummary struct {
	TotalRows     int           `json:"totalRows"`
	ValidRows     int           `json:"validRows"`
	InvalidRows   []int         `json:"invalidRows,omitempty"`
	Fields        []FieldIssues `json:"fields"`
	MissingFields []Field       `json:"missingFields,omitempty"`
	Errors        []string      `json:"errors,omitempty"`
	Warnings      []string      `json:"warnings,omitempty"`
	CompletedAt   time.Time     `json:"completedAt"`
}
