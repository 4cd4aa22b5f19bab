package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/secmon-lab/riskreg/pkg/domain/types"
)

// Risk is a record in the register. The score columns are a snapshot taken
// by ApplyScore at write time and are never re-derived implicitly.
type Risk struct {
	ID           int64            `json:"id"`
	RiskID       string           `json:"riskId"`
	Title        string           `json:"riskTitle"`
	RiskType     string           `json:"riskType"`
	Category     string           `json:"riskCategory"`
	BusinessUnit string           `json:"businessUnit"`
	Department   string           `json:"department"`
	Status       types.RiskStatus `json:"status"`
	OwnerID      string           `json:"ownerId,omitempty"`
	DateReported time.Time        `json:"dateReported"`

	Description    string `json:"description,omitempty"`
	MitigationPlan string `json:"mitigationPlan,omitempty"`

	Likelihood           float64  `json:"likelihood"`
	Impact               float64  `json:"impact"`
	ControlEffectiveness *float64 `json:"controlEffectiveness,omitempty"`

	InherentRisk        float64      `json:"inherentRisk"`
	InherentMatrixValue int          `json:"inherentMatrixValue"`
	InherentRating      types.Rating `json:"inherentRating"`
	ResidualRisk        *float64     `json:"residualRisk,omitempty"`
	ResidualRating      types.Rating `json:"residualRating,omitempty"`
	RiskScore           float64      `json:"riskScore"`

	Deleted   bool      `json:"-"`
	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GetDepartment implements DepartmentScoped
func (r *Risk) GetDepartment() string {
	return r.Department
}

// Assessment returns the scoring inputs held by the risk
func (r *Risk) Assessment() RiskAssessment {
	return RiskAssessment{
		Likelihood:           r.Likelihood,
		Impact:               r.Impact,
		ControlEffectiveness: copyFloat(r.ControlEffectiveness),
	}
}

// ApplyScore snapshots a scoring result into the risk's score columns.
func (r *Risk) ApplyScore(result *RiskScoreResult) {
	r.InherentRisk = result.InherentRisk.Score
	r.InherentMatrixValue = result.InherentRisk.MatrixValue
	r.InherentRating = result.InherentRisk.Rating
	r.RiskScore = result.RiskScore

	if result.ResidualRisk != nil {
		score := result.ResidualRisk.Score
		r.ResidualRisk = &score
		r.ResidualRating = result.ResidualRisk.Rating
	} else {
		r.ResidualRisk = nil
		r.ResidualRating = ""
	}
}

// Rating returns the rating of RiskScore: the residual rating when there
// is one, otherwise the inherent rating.
func (r *Risk) Rating() types.Rating {
	if r.ResidualRisk != nil && r.ResidualRating != "" {
		return r.ResidualRating
	}
	return r.InherentRating
}

// Copy returns a deep copy of the risk
func (r *Risk) Copy() *Risk {
	if r == nil {
		return nil
	}
	copied := *r
	copied.ControlEffectiveness = copyFloat(r.ControlEffectiveness)
	copied.ResidualRisk = copyFloat(r.ResidualRisk)
	return &copied
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// FormatRiskID renders a department scoped risk ID such as "CR-01".
func FormatRiskID(code string, seq int) string {
	return fmt.Sprintf("%s-%02d", code, seq)
}

// ParseRiskIDSequence extracts the sequence number of riskID when it
// belongs to code. It returns false for IDs of other departments and for
// malformed IDs.
func ParseRiskIDSequence(riskID, code string) (int, bool) {
	prefix, num, found := strings.Cut(riskID, "-")
	if !found || prefix != code || strings.Contains(num, "-") {
		return 0, false
	}
	n, err := strconv.Atoi(num)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
