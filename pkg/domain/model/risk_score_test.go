package model_test

import (
	"math"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskreg/pkg/domain/model"
	"github.com/secmon-lab/riskreg/pkg/domain/types"
)

func ptr[T any](v T) *T { return &v }

func near(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func TestMatrixValue(t *testing.T) {
	for l := 0.0; l <= 100; l += 2.5 {
		for i := 0.0; i <= 100; i += 2.5 {
			v := model.MatrixValue(l, i)
			gt.V(t, v).Equal(5*types.ScoreBucket(l) + types.ScoreBucket(i))
			gt.B(t, v >= 0 && v <= 24).True()
		}
	}
}

func TestMatrixValue_Monotonic(t *testing.T) {
	for fixed := 0.0; fixed <= 100; fixed += 5 {
		prevL, prevI := -1, -1
		prevScoreL, prevScoreI := -1.0, -1.0
		for x := 0.0; x <= 100; x += 0.5 {
			vl := model.MatrixValue(x, fixed)
			vi := model.MatrixValue(fixed, x)
			gt.B(t, vl >= prevL).True()
			gt.B(t, vi >= prevI).True()
			prevL, prevI = vl, vi

			sl := model.CalculateInherentRisk(x, fixed).Score
			si := model.CalculateInherentRisk(fixed, x).Score
			gt.B(t, sl >= prevScoreL).True()
			gt.B(t, si >= prevScoreI).True()
			prevScoreL, prevScoreI = sl, si
		}
	}
}

func TestComputeRiskScores(t *testing.T) {
	t.Run("lowest band boundary", func(t *testing.T) {
		res, err := model.ComputeRiskScores(model.RiskAssessment{Likelihood: 20, Impact: 20})
		gt.NoError(t, err).Required()
		gt.V(t, res.InherentRisk.MatrixValue).Equal(0)
		gt.V(t, res.InherentRisk.Rating).Equal(types.RatingVeryLow)
		gt.V(t, res.InherentRisk.Score).Equal(0.0)
	})

	t.Run("just above lowest band", func(t *testing.T) {
		res, err := model.ComputeRiskScores(model.RiskAssessment{Likelihood: 21, Impact: 21})
		gt.NoError(t, err).Required()
		gt.V(t, res.InherentRisk.MatrixValue).Equal(6)
		gt.V(t, res.InherentRisk.Rating).Equal(types.RatingLow)
	})

	t.Run("maximum", func(t *testing.T) {
		res, err := model.ComputeRiskScores(model.RiskAssessment{Likelihood: 100, Impact: 100})
		gt.NoError(t, err).Required()
		gt.V(t, res.InherentRisk.MatrixValue).Equal(24)
		gt.V(t, res.InherentRisk.Rating).Equal(types.RatingVeryHigh)
		gt.V(t, res.InherentRisk.Score).Equal(100.0)
		gt.V(t, res.RiskScore).Equal(100.0)
	})

	t.Run("residual composition", func(t *testing.T) {
		res, err := model.ComputeRiskScores(model.RiskAssessment{
			Likelihood:           80,
			Impact:               90,
			ControlEffectiveness: ptr(60.0),
		})
		gt.NoError(t, err).Required()
		gt.V(t, res.InherentRisk.MatrixValue).Equal(19)
		gt.B(t, near(res.InherentRisk.Score, 79.17)).True()
		gt.V(t, res.InherentRisk.Rating).Equal(types.RatingHigh)

		gt.V(t, res.ResidualRisk).NotNil()
		gt.B(t, near(res.ResidualRisk.Score, 31.67)).True()
		gt.V(t, res.ResidualRisk.Rating).Equal(types.RatingLow)
		gt.V(t, res.RiskScore).Equal(res.ResidualRisk.Score)
		gt.V(t, res.Rating()).Equal(types.RatingLow)
	})

	t.Run("no control effectiveness", func(t *testing.T) {
		res, err := model.ComputeRiskScores(model.RiskAssessment{Likelihood: 50, Impact: 50})
		gt.NoError(t, err).Required()
		gt.V(t, res.ResidualRisk).Nil()
		gt.V(t, res.RiskScore).Equal(res.InherentRisk.Score)
		gt.V(t, res.InherentRisk.MatrixValue).Equal(12)
		gt.V(t, res.Rating()).Equal(types.RatingMedium)
	})

	t.Run("zero control effectiveness still yields residual", func(t *testing.T) {
		res, err := model.ComputeRiskScores(model.RiskAssessment{Likelihood: 50, Impact: 50, ControlEffectiveness: ptr(0.0)})
		gt.NoError(t, err).Required()
		gt.V(t, res.ResidualRisk).NotNil()
		gt.V(t, res.ResidualRisk.Score).Equal(res.InherentRisk.Score)
	})

	t.Run("zero control effectiveness keeps the inherent rating", func(t *testing.T) {
		levels := []float64{10, 30, 50, 70, 90}
		for _, l := range levels {
			for _, i := range levels {
				res, err := model.ComputeRiskScores(model.RiskAssessment{Likelihood: l, Impact: i, ControlEffectiveness: ptr(0.0)})
				gt.NoError(t, err).Required()
				gt.V(t, res.ResidualRisk.Rating).Equal(res.InherentRisk.Rating)
			}
		}
	})

	t.Run("identical inputs give identical results", func(t *testing.T) {
		in := model.RiskAssessment{Likelihood: 33.3, Impact: 77.7, ControlEffectiveness: ptr(12.5)}
		a, err := model.ComputeRiskScores(in)
		gt.NoError(t, err).Required()
		b, err := model.ComputeRiskScores(in)
		gt.NoError(t, err).Required()
		gt.V(t, a).Equal(b)
		gt.V(t, math.Float64bits(a.RiskScore)).Equal(math.Float64bits(b.RiskScore))
	})
}

func TestComputeRiskScores_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input model.RiskAssessment
	}{
		{"negative likelihood", model.RiskAssessment{Likelihood: -1, Impact: 50}},
		{"likelihood above 100", model.RiskAssessment{Likelihood: 100.01, Impact: 50}},
		{"impact above 100", model.RiskAssessment{Likelihood: 50, Impact: 101}},
		{"NaN impact", model.RiskAssessment{Likelihood: 50, Impact: math.NaN()}},
		{"infinite likelihood", model.RiskAssessment{Likelihood: math.Inf(1), Impact: 50}},
		{"control effectiveness above 100", model.RiskAssessment{Likelihood: 50, Impact: 50, ControlEffectiveness: ptr(150.0)}},
		{"negative control effectiveness", model.RiskAssessment{Likelihood: 50, Impact: 50, ControlEffectiveness: ptr(-0.5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := model.ComputeRiskScores(tt.input)
			gt.Error(t, err).Is(model.ErrInvalidAssessment)
			gt.V(t, res).Nil()
		})
	}
}

func TestNewRiskAssessment(t *testing.T) {
	testCases := map[string]struct {
		likelihood *float64
		impact     *float64
		ce         *float64
		wantErr    bool
	}{
		"zero values are present": {likelihood: ptr(0.0), impact: ptr(0.0)},
		"with control":            {likelihood: ptr(80.0), impact: ptr(90.0), ce: ptr(60.0)},
		"missing likelihood":      {impact: ptr(50.0), wantErr: true},
		"missing impact":          {likelihood: ptr(50.0), wantErr: true},
		"missing both":            {wantErr: true},
		"out of range":            {likelihood: ptr(101.0), impact: ptr(50.0), wantErr: true},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			a, err := model.NewRiskAssessment(tc.likelihood, tc.impact, tc.ce)
			if tc.wantErr {
				gt.Error(t, err).Is(model.ErrInvalidAssessment)
				return
			}
			gt.NoError(t, err).Required()
			gt.V(t, a.Likelihood).Equal(*tc.likelihood)
			gt.V(t, a.Impact).Equal(*tc.impact)
			gt.V(t, a.ControlEffectiveness == nil).Equal(tc.ce == nil)
		})
	}

	t.Run("control effectiveness is copied", func(t *testing.T) {
		ce := 40.0
		a, err := model.NewRiskAssessment(ptr(10.0), ptr(10.0), &ce)
		gt.NoError(t, err).Required()
		ce = 90
		gt.V(t, *a.ControlEffectiveness).Equal(40.0)
	})
}

func TestCalculateResidualRisk(t *testing.T) {
	res := model.CalculateResidualRisk(100, 100)
	gt.V(t, res.Score).Equal(0.0)
	gt.V(t, res.Rating).Equal(types.RatingVeryLow)

	res = model.CalculateResidualRisk(100, 15)
	gt.V(t, res.Score).Equal(85.0)
	gt.V(t, res.Rating).Equal(types.RatingVeryHigh)
}
