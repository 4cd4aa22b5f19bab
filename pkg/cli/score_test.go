package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskreg/pkg/cli"
	"github.com/secmon-lab/riskreg/pkg/domain/model"
)

func TestPrintScore(t *testing.T) {
	color.NoColor = true
	ce := 60.0
	result, err := model.ComputeRiskScores(model.RiskAssessment{Likelihood: 80, Impact: 90, ControlEffectiveness: &ce})
	gt.NoError(t, err).Required()

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		gt.NoError(t, cli.PrintScore(&buf, result, false)).Required()

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		gt.A(t, lines).Length(3)
		gt.S(t, lines[0]).Contains("79.17")
		gt.S(t, lines[0]).Contains("matrix 19")
		gt.S(t, lines[0]).Contains("High")
		gt.S(t, lines[1]).Contains("31.67")
		gt.S(t, lines[1]).Contains("Low")
		gt.S(t, lines[2]).Contains("31.67")
	})

	t.Run("json keeps full precision", func(t *testing.T) {
		var buf bytes.Buffer
		gt.NoError(t, cli.PrintScore(&buf, result, true)).Required()

		var got model.RiskScoreResult
		gt.NoError(t, json.Unmarshal(buf.Bytes(), &got)).Required()
		gt.V(t, got.RiskScore).Equal(result.RiskScore)
		gt.V(t, got.InherentRisk.MatrixValue).Equal(19)
	})

	t.Run("no residual without control effectiveness", func(t *testing.T) {
		r, err := model.ComputeRiskScores(model.RiskAssessment{Likelihood: 50, Impact: 50})
		gt.NoError(t, err).Required()

		var buf bytes.Buffer
		gt.NoError(t, cli.PrintScore(&buf, r, false)).Required()
		gt.B(t, strings.Contains(buf.String(), "Residual")).False()
	})
}

func TestRun_ScoreCommand(t *testing.T) {
	ctx := context.Background()

	err := cli.Run(ctx, []string{"riskreg", "score", "--likelihood", "21", "--impact", "21"}, "test")
	gt.NoError(t, err)

	err = cli.Run(ctx, []string{"riskreg", "score", "--likelihood", "80", "--impact", "90", "--control-effectiveness", "60", "--json"}, "test")
	gt.NoError(t, err)

	err = cli.Run(ctx, []string{"riskreg", "score", "--likelihood", "101", "--impact", "50"}, "test")
	gt.Error(t, err).Is(model.ErrInvalidAssessment)

	err = cli.Run(ctx, []string{"riskreg", "score", "--likelihood", "50", "--impact", "50", "--control-effectiveness=-1"}, "test")
	gt.Error(t, err).Is(model.ErrInvalidAssessment)
}
