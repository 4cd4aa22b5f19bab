package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/secmon-lab/riskreg/pkg/domain/types"
)

// StagingRow is one uploaded spreadsheet row waiting for approval
type StagingRow struct {
	ID         string            `json:"id"`
	SourceFile string            `json:"sourceFile"`
	RowNumber  int               `json:"rowNumber"`
	Raw        map[string]string `json:"rawRow"`
	Errors     []StagingError    `json:"errors,omitempty"`
	UploadedBy string            `json:"uploadedBy"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// Valid reports whether the row passed validation at upload time
func (r *StagingRow) Valid() bool {
	return len(r.Errors) == 0
}

// Copy returns a deep copy of the row
func (r *StagingRow) Copy() *StagingRow {
	copied := *r
	copied.Raw = make(map[string]string, len(r.Raw))
	for k, v := range r.Raw {
		copied.Raw[k] = v
	}
	copied.Errors = append([]StagingError(nil), r.Errors...)
	return &copied
}

// StagingError describes why a field of a staged row was rejected
type StagingError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// column aliases, already normalized with normalizeColumn
var columnAliases = map[string][]string{
	"riskTitle":            {"risk title", "title", "risk name", "name"},
	"riskType":             {"risk type", "type"},
	"riskCategory":         {"risk category", "category"},
	"businessUnit":         {"business unit", "unit", "bu"},
	"department":           {"department", "dept", "division"},
	"status":               {"status", "state"},
	"dateReported":         {"date reported", "reported date", "date"},
	"description":          {"risk description", "description", "desc"},
	"likelihood":           {"likelihood", "probability"},
	"impact":               {"impact", "severity", "level of impact"},
	"controlEffectiveness": {"control effectiveness", "control eff", "effectiveness"},
	"mitigationPlan":       {"mitigation plan", "mitigation", "action plan"},
	"riskOwner":            {"risk owner", "owner", "responsible"},
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02-Jan-2006",
}

func normalizeColumn(name string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return r == ' ' || r == '_' || r == '\t'
	}), " ")
}

func lookupColumn(row map[string]string, field string) (string, bool) {
	aliases := columnAliases[field]
	// alias order wins over column order
	normalized := make(map[string]string, len(row))
	for k, v := range row {
		normalized[normalizeColumn(k)] = v
	}
	for _, alias := range aliases {
		if v, ok := normalized[alias]; ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

// DraftFromRow maps a header keyed spreadsheet row onto a RiskDraft. All
// problems found are returned; the draft is only usable when errs is empty.
// now is used when the row has no report date.
func DraftFromRow(rowNumber int, row map[string]string, now time.Time) (*RiskDraft, []StagingError) {
	var errs []StagingError
	fail := func(field, msg, value string) {
		errs = append(errs, StagingError{Row: rowNumber, Field: field, Message: msg, Value: value})
	}

	draft := &RiskDraft{
		Status:       types.RiskStatusOpen,
		DateReported: now,
	}

	draft.Title, _ = lookupColumn(row, "riskTitle")
	draft.Description, _ = lookupColumn(row, "description")
	draft.MitigationPlan, _ = lookupColumn(row, "mitigationPlan")
	draft.OwnerID, _ = lookupColumn(row, "riskOwner")

	if v, ok := lookupColumn(row, "riskType"); ok {
		draft.RiskType = v
	} else {
		draft.RiskType = "Unknown"
	}
	if v, ok := lookupColumn(row, "riskCategory"); ok {
		draft.Category = v
	} else {
		draft.Category = "Operational"
	}
	if v, ok := lookupColumn(row, "businessUnit"); ok {
		draft.BusinessUnit = v
	} else {
		draft.BusinessUnit = "General"
	}

	if v, ok := lookupColumn(row, "department"); !ok {
		fail("department", "department is required", "")
	} else if dept, found := types.LookupDepartment(v); !found {
		fail("department", "unknown department", v)
	} else {
		draft.Department = dept.Name
	}

	if v, ok := lookupColumn(row, "status"); ok {
		status, err := types.ParseRiskStatus(v)
		if err != nil {
			fail("status", "invalid status", v)
		} else {
			draft.Status = status
		}
	}

	if v, ok := lookupColumn(row, "dateReported"); ok {
		date, err := parseDate(v)
		if err != nil {
			fail("dateReported", "unrecognized date", v)
		} else {
			draft.DateReported = date
		}
	}

	if v, ok := parsePercentageColumn(row, "likelihood", true, fail); ok {
		draft.Likelihood = v
	}
	if v, ok := parsePercentageColumn(row, "impact", true, fail); ok {
		draft.Impact = v
	}
	if v, ok := parsePercentageColumn(row, "controlEffectiveness", false, fail); ok {
		draft.ControlEffectiveness = &v
	}

	return draft, errs
}

func parsePercentageColumn(row map[string]string, field string, required bool, fail func(field, msg, value string)) (float64, bool) {
	raw, ok := lookupColumn(row, field)
	if !ok {
		if required {
			fail(field, field+" is required", "")
		}
		return 0, false
	}

	v, err := strconv.ParseFloat(strings.TrimSuffix(raw, "%"), 64)
	if err != nil {
		fail(field, field+" must be a number", raw)
		return 0, false
	}
	if err := validatePercentage(field, v); err != nil {
		fail(field, fmt.Sprintf("%s must be between 0 and 100", field), raw)
		return 0, false
	}
	return v, true
}

func parseDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
