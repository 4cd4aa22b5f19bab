package usecase

import (
	"context"
	"io"
	"math"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskreg/pkg/domain/model"
	"github.com/secmon-lab/riskreg/pkg/service/spreadsheet"
)

// exportHeaders are accepted back by the importer's column aliases
var exportHeaders = []string{
	"Risk ID",
	"Risk Title",
	"Risk Type",
	"Risk Category",
	"Business Unit",
	"Department",
	"Status",
	"Date Reported",
	"Risk Description",
	"Likelihood",
	"Impact",
	"Control Effectiveness",
	"Inherent Risk",
	"Inherent Rating",
	"Residual Risk",
	"Residual Rating",
	"Risk Score",
	"Mitigation Plan",
	"Risk Owner",
}

type ExportUseCase struct {
	risk *RiskUseCase
}

func NewExportUseCase(risk *RiskUseCase) *ExportUseCase {
	return &ExportUseCase{risk: risk}
}

// Export writes the risks visible to the user as an xlsx workbook
func (uc *ExportUseCase) Export(ctx context.Context, user model.UserContext, w io.Writer) error {
	risks, err := uc.risk.ListRisks(ctx, user)
	if err != nil {
		return err
	}

	sheet := spreadsheet.Sheet{
		Name:    "Risk Register",
		Headers: exportHeaders,
		Rows:    make([][]any, 0, len(risks)),
	}
	for _, r := range risks {
		sheet.Rows = append(sheet.Rows, exportRow(r))
	}

	if err := spreadsheet.Write(ctx, w, sheet); err != nil {
		return goerr.Wrap(err, "failed to export risks", goerr.V("count", len(risks)))
	}
	return nil
}

func exportRow(r *model.Risk) []any {
	var controlEffectiveness, residual any = "", ""
	if r.ControlEffectiveness != nil {
		controlEffectiveness = *r.ControlEffectiveness
	}
	if r.ResidualRisk != nil {
		residual = roundScore(*r.ResidualRisk)
	}

	return []any{
		r.RiskID,
		r.Title,
		r.RiskType,
		r.Category,
		r.BusinessUnit,
		r.Department,
		r.Status.String(),
		r.DateReported.Format("2006-01-02"),
		r.Description,
		r.Likelihood,
		r.Impact,
		controlEffectiveness,
		roundScore(r.InherentRisk),
		r.InherentRating.String(),
		residual,
		r.ResidualRating.String(),
		roundScore(r.RiskScore),
		r.MitigationPlan,
		r.OwnerID,
	}
}

// roundScore rounds to two decimals for presentation only
func roundScore(v float64) float64 {
	return math.Round(v*100) / 100
}
