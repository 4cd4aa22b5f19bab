package model

import (
	"math"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskreg/pkg/domain/types"
)

// ratingMatrix is the 5x5 likelihood (row) by impact (column) matrix.
// ratingMatrix[i][j] == 5*i + j.
var ratingMatrix = [5][5]int{
	{0, 1, 2, 3, 4},
	{5, 6, 7, 8, 9},
	{10, 11, 12, 13, 14},
	{15, 16, 17, 18, 19},
	{20, 21, 22, 23, 24},
}

const maxMatrixValue = 24

// RiskAssessment is the input of risk scoring. All values are on a 0-100
// scale. ControlEffectiveness is nil when no controls were assessed.
type RiskAssessment struct {
	Likelihood           float64  `json:"likelihood"`
	Impact               float64  `json:"impact"`
	ControlEffectiveness *float64 `json:"controlEffectiveness,omitempty"`
}

// InherentRisk is the risk before controls are considered.
type InherentRisk struct {
	Score       float64      `json:"score"`
	MatrixValue int          `json:"matrixValue"`
	Rating      types.Rating `json:"rating"`
}

// ResidualRisk is the risk left after discounting by control effectiveness.
type ResidualRisk struct {
	Score  float64      `json:"score"`
	Rating types.Rating `json:"rating"`
}

// RiskScoreResult is the full scoring outcome. RiskScore is the residual
// score when ResidualRisk is set and the inherent score otherwise.
type RiskScoreResult struct {
	InherentRisk InherentRisk  `json:"inherentRisk"`
	ResidualRisk *ResidualRisk `json:"residualRisk,omitempty"`
	RiskScore    float64       `json:"riskScore"`
}

// Rating returns the rating that goes with RiskScore.
func (r *RiskScoreResult) Rating() types.Rating {
	if r.ResidualRisk != nil {
		return r.ResidualRisk.Rating
	}
	return r.InherentRisk.Rating
}

// NewRiskAssessment builds an assessment from optional inputs as they come
// off the wire. Likelihood and impact are required; an absent value is
// rejected instead of being scored as 0.
func NewRiskAssessment(likelihood, impact, controlEffectiveness *float64) (RiskAssessment, error) {
	if likelihood == nil {
		return RiskAssessment{}, goerr.Wrap(ErrInvalidAssessment, "value is required", goerr.V(FieldKey, "likelihood"))
	}
	if impact == nil {
		return RiskAssessment{}, goerr.Wrap(ErrInvalidAssessment, "value is required", goerr.V(FieldKey, "impact"))
	}

	a := RiskAssessment{
		Likelihood:           *likelihood,
		Impact:               *impact,
		ControlEffectiveness: copyFloat(controlEffectiveness),
	}
	if err := a.Validate(); err != nil {
		return RiskAssessment{}, err
	}
	return a, nil
}

// Validate checks that every supplied value is a number within [0,100].
func (a RiskAssessment) Validate() error {
	if err := validatePercentage("likelihood", a.Likelihood); err != nil {
		return err
	}
	if err := validatePercentage("impact", a.Impact); err != nil {
		return err
	}
	if a.ControlEffectiveness != nil {
		if err := validatePercentage("controlEffectiveness", *a.ControlEffectiveness); err != nil {
			return err
		}
	}
	return nil
}

func validatePercentage(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return goerr.Wrap(ErrInvalidAssessment, "value must be a number",
			goerr.V(FieldKey, field), goerr.V(ValueKey, v))
	}
	if v < 0 || v > 100 {
		return goerr.Wrap(ErrInvalidAssessment, "value must be between 0 and 100",
			goerr.V(FieldKey, field), goerr.V(ValueKey, v))
	}
	return nil
}

// MatrixValue looks up the 0-24 matrix value for a likelihood and impact.
// Inputs must be within [0,100].
func MatrixValue(likelihood, impact float64) int {
	return ratingMatrix[types.ScoreBucket(likelihood)][types.ScoreBucket(impact)]
}

// CalculateInherentRisk maps likelihood and impact through the matrix. The
// rating comes from the matrix value bands, not from the percentage score.
func CalculateInherentRisk(likelihood, impact float64) InherentRisk {
	value := MatrixValue(likelihood, impact)
	return InherentRisk{
		Score:       float64(value) / maxMatrixValue * 100,
		MatrixValue: value,
		Rating:      types.RatingFromMatrixValue(value),
	}
}

// CalculateResidualRisk discounts an inherent score by control
// effectiveness. The rating is re-quantized from the residual score with
// the same buckets used for likelihood and impact.
func CalculateResidualRisk(inherentScore, controlEffectiveness float64) ResidualRisk {
	score := inherentScore * (1 - controlEffectiveness/100)
	return ResidualRisk{
		Score:  score,
		Rating: types.RatingFromScore(score),
	}
}

// ComputeRiskScores validates an assessment and computes all scores for it.
func ComputeRiskScores(a RiskAssessment) (*RiskScoreResult, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	result := &RiskScoreResult{
		InherentRisk: CalculateInherentRisk(a.Likelihood, a.Impact),
	}
	result.RiskScore = result.InherentRisk.Score

	if a.ControlEffectiveness != nil {
		residual := CalculateResidualRisk(result.InherentRisk.Score, *a.ControlEffectiveness)
		result.ResidualRisk = &residual
		result.RiskScore = residual.Score
	}

	return result, nil
}
