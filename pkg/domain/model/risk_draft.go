package model

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskreg/pkg/domain/types"
)

// RiskDraft carries the user supplied fields of a new risk
type RiskDraft struct {
	Title                string           `json:"riskTitle"`
	RiskType             string           `json:"riskType"`
	Category             string           `json:"riskCategory"`
	BusinessUnit         string           `json:"businessUnit"`
	Department           string           `json:"department,omitempty"`
	Status               types.RiskStatus `json:"status,omitempty"`
	OwnerID              string           `json:"ownerId,omitempty"`
	DateReported         time.Time        `json:"dateReported"`
	Description          string           `json:"description,omitempty"`
	MitigationPlan       string           `json:"mitigationPlan,omitempty"`
	Likelihood           float64          `json:"likelihood"`
	Impact               float64          `json:"impact"`
	ControlEffectiveness *float64         `json:"controlEffectiveness,omitempty"`
}

// Assessment returns the scoring inputs of the draft
func (d *RiskDraft) Assessment() RiskAssessment {
	return RiskAssessment{
		Likelihood:           d.Likelihood,
		Impact:               d.Impact,
		ControlEffectiveness: copyFloat(d.ControlEffectiveness),
	}
}

// Validate checks required fields, status and scoring inputs
func (d *RiskDraft) Validate() error {
	if strings.TrimSpace(d.RiskType) == "" {
		return goerr.Wrap(ErrInvalidRisk, "risk type is required", goerr.V(FieldKey, "riskType"))
	}
	if strings.TrimSpace(d.Category) == "" {
		return goerr.Wrap(ErrInvalidRisk, "risk category is required", goerr.V(FieldKey, "riskCategory"))
	}
	if strings.TrimSpace(d.BusinessUnit) == "" {
		return goerr.Wrap(ErrInvalidRisk, "business unit is required", goerr.V(FieldKey, "businessUnit"))
	}
	if !d.Status.Normalize().IsValid() {
		return goerr.Wrap(ErrInvalidRisk, "invalid status", goerr.V(FieldKey, "status"), goerr.V(ValueKey, d.Status))
	}
	if err := d.Assessment().Validate(); err != nil {
		return err
	}
	return nil
}

// NewRisk builds an unsaved risk from the draft and a scoring result.
func (d *RiskDraft) NewRisk(result *RiskScoreResult) *Risk {
	risk := &Risk{
		Title:                d.Title,
		RiskType:             d.RiskType,
		Category:             d.Category,
		BusinessUnit:         d.BusinessUnit,
		Department:           d.Department,
		Status:               d.Status.Normalize(),
		OwnerID:              d.OwnerID,
		DateReported:         d.DateReported,
		Description:          d.Description,
		MitigationPlan:       d.MitigationPlan,
		Likelihood:           d.Likelihood,
		Impact:               d.Impact,
		ControlEffectiveness: copyFloat(d.ControlEffectiveness),
	}
	if risk.Title == "" {
		risk.Title = d.RiskType
	}
	risk.ApplyScore(result)
	return risk
}

// RiskPatch is a partial update. Nil fields are left untouched.
type RiskPatch struct {
	Title                *string           `json:"riskTitle,omitempty"`
	RiskType             *string           `json:"riskType,omitempty"`
	Category             *string           `json:"riskCategory,omitempty"`
	BusinessUnit         *string           `json:"businessUnit,omitempty"`
	Department           *string           `json:"department,omitempty"`
	Status               *types.RiskStatus `json:"status,omitempty"`
	OwnerID              *string           `json:"ownerId,omitempty"`
	DateReported         *time.Time        `json:"dateReported,omitempty"`
	Description          *string           `json:"description,omitempty"`
	MitigationPlan       *string           `json:"mitigationPlan,omitempty"`
	Likelihood           *float64          `json:"likelihood,omitempty"`
	Impact               *float64          `json:"impact,omitempty"`
	ControlEffectiveness *float64          `json:"controlEffectiveness,omitempty"`
	// ClearControlEffectiveness removes the control assessment.
	ClearControlEffectiveness bool `json:"clearControlEffectiveness,omitempty"`
}

// ChangesScore reports whether applying the patch changes a scoring input.
func (p *RiskPatch) ChangesScore() bool {
	return p.Likelihood != nil || p.Impact != nil || p.ControlEffectiveness != nil || p.ClearControlEffectiveness
}

// Apply returns a copy of risk with the patch applied. Score columns are
// not recomputed here.
func (p *RiskPatch) Apply(risk *Risk) *Risk {
	out := risk.Copy()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.RiskType != nil {
		out.RiskType = *p.RiskType
	}
	if p.Category != nil {
		out.Category = *p.Category
	}
	if p.BusinessUnit != nil {
		out.BusinessUnit = *p.BusinessUnit
	}
	if p.Department != nil {
		out.Department = *p.Department
	}
	if p.Status != nil {
		out.Status = p.Status.Normalize()
	}
	if p.OwnerID != nil {
		out.OwnerID = *p.OwnerID
	}
	if p.DateReported != nil {
		out.DateReported = *p.DateReported
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.MitigationPlan != nil {
		out.MitigationPlan = *p.MitigationPlan
	}
	if p.Likelihood != nil {
		out.Likelihood = *p.Likelihood
	}
	if p.Impact != nil {
		out.Impact = *p.Impact
	}
	if p.ClearControlEffectiveness {
		out.ControlEffectiveness = nil
	} else if p.ControlEffectiveness != nil {
		out.ControlEffectiveness = copyFloat(p.ControlEffectiveness)
	}
	return out
}
