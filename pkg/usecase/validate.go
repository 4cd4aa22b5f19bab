package usecase

import (
	"context"
	"fmt"
	"math"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskreg/pkg/domain/model"
	"github.com/secmon-lab/riskreg/pkg/domain/types"
)

// scoreTolerance absorbs rounding of score columns written by other tools
const scoreTolerance = 0.01

// ValidationIssue represents a single validation issue found during DB consistency check
type ValidationIssue struct {
	ID       int64
	RiskID   string
	Field    string
	Message  string
	Expected string
	Actual   string
}

// ValidationResult holds the results of DB validation
type ValidationResult struct {
	Checked int
	Issues  []ValidationIssue
}

// HasIssues returns true if there are any validation issues
func (r *ValidationResult) HasIssues() bool {
	return len(r.Issues) > 0
}

// AddIssue adds a validation issue to the result
func (r *ValidationResult) AddIssue(issue ValidationIssue) {
	r.Issues = append(r.Issues, issue)
}

// ValidateDB checks every live risk against the fixed tables: the
// department must be known, the risk ID must carry the department code and
// be unique, and the score snapshot must match its own inputs. It reports
// drift only and does NOT modify any data.
func (uc *UseCases) ValidateDB(ctx context.Context) (*ValidationResult, error) {
	risks, err := uc.repo.Risk().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risks")
	}

	result := &ValidationResult{Checked: len(risks)}
	seen := make(map[string]int64, len(risks))

	for _, r := range risks {
		issue := func(field, msg, expected, actual string) {
			result.AddIssue(ValidationIssue{
				ID:       r.ID,
				RiskID:   r.RiskID,
				Field:    field,
				Message:  msg,
				Expected: expected,
				Actual:   actual,
			})
		}

		if _, ok := types.LookupDepartment(r.Department); !ok {
			issue("department", "unknown department", "one of the fixed departments", r.Department)
		}

		code := types.DepartmentCodeFor(r.Department)
		if _, ok := model.ParseRiskIDSequence(r.RiskID, code); !ok {
			issue("riskId", "risk ID does not match department", code+"-NN", r.RiskID)
		}
		if other, dup := seen[r.RiskID]; dup {
			issue("riskId", fmt.Sprintf("risk ID also used by risk %d", other), "unique", r.RiskID)
		} else {
			seen[r.RiskID] = r.ID
		}

		scores, err := model.ComputeRiskScores(r.Assessment())
		if err != nil {
			issue("assessment", "scoring inputs are out of range",
				"0-100", fmt.Sprintf("likelihood=%v impact=%v", r.Likelihood, r.Impact))
			continue
		}

		if r.InherentMatrixValue != scores.InherentRisk.MatrixValue {
			issue("inherentMatrixValue", "matrix value does not match inputs",
				fmt.Sprint(scores.InherentRisk.MatrixValue), fmt.Sprint(r.InherentMatrixValue))
		}
		if r.InherentRating != scores.InherentRisk.Rating {
			issue("inherentRating", "inherent rating does not match inputs",
				scores.InherentRisk.Rating.String(), r.InherentRating.String())
		}
		if !scoreEqual(r.RiskScore, scores.RiskScore) {
			issue("riskScore", "risk score does not match inputs",
				fmt.Sprintf("%.2f", scores.RiskScore), fmt.Sprintf("%.2f", r.RiskScore))
		}
		if (r.ResidualRisk == nil) != (scores.ResidualRisk == nil) {
			issue("residualRisk", "residual risk presence does not match control effectiveness",
				fmt.Sprint(scores.ResidualRisk != nil), fmt.Sprint(r.ResidualRisk != nil))
		}
	}

	return result, nil
}

func scoreEqual(a, b float64) bool {
	return math.Abs(a-b) <= scoreTolerance
}
