package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskreg/pkg/domain/model"
	"github.com/secmon-lab/riskreg/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

var ratingColors = map[types.Rating]*color.Color{
	types.RatingVeryLow:  color.New(color.FgGreen),
	types.RatingLow:      color.New(color.FgCyan),
	types.RatingMedium:   color.New(color.FgYellow),
	types.RatingHigh:     color.New(color.FgRed),
	types.RatingVeryHigh: color.New(color.FgRed, color.Bold),
}

func cmdScore() *cli.Command {
	var likelihood, impact, controlEffectiveness float64
	var asJSON bool

	return &cli.Command{
		Name:      "score",
		Usage:     "Compute inherent and residual risk without touching the register",
		UsageText: "riskreg score --likelihood 80 --impact 90 [--control-effectiveness 60]",
		Flags: []cli.Flag{
			&cli.Float64Flag{
				Name:        "likelihood",
				Aliases:     []string{"L"},
				Usage:       "Likelihood (0-100)",
				Required:    true,
				Destination: &likelihood,
			},
			&cli.Float64Flag{
				Name:        "impact",
				Aliases:     []string{"I"},
				Usage:       "Impact (0-100)",
				Required:    true,
				Destination: &impact,
			},
			&cli.Float64Flag{
				Name:        "control-effectiveness",
				Aliases:     []string{"C"},
				Usage:       "Control effectiveness (0-100); residual risk is computed only when set",
				Destination: &controlEffectiveness,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "Print the raw result as JSON",
				Destination: &asJSON,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			assessment := model.RiskAssessment{
				Likelihood: likelihood,
				Impact:     impact,
			}
			if c.IsSet("control-effectiveness") {
				ce := controlEffectiveness
				assessment.ControlEffectiveness = &ce
			}

			result, err := model.ComputeRiskScores(assessment)
			if err != nil {
				return goerr.Wrap(err, "failed to score risk")
			}

			return printScore(c.Root().Writer, result, asJSON)
		},
	}
}

// printScore renders a result. Scores are rounded to two decimals here and
// nowhere else.
func printScore(w io.Writer, result *model.RiskScoreResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return goerr.Wrap(err, "failed to encode score")
		}
		return nil
	}

	lines := []string{
		fmt.Sprintf("Inherent risk: %6.2f  matrix %2d  %s",
			result.InherentRisk.Score, result.InherentRisk.MatrixValue, colorRating(result.InherentRisk.Rating)),
	}
	if rr := result.ResidualRisk; rr != nil {
		lines = append(lines, fmt.Sprintf("Residual risk: %6.2f            %s", rr.Score, colorRating(rr.Rating)))
	}
	lines = append(lines, fmt.Sprintf("Risk score:    %6.2f            %s", result.RiskScore, colorRating(result.Rating())))

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return goerr.Wrap(err, "failed to write score")
		}
	}
	return nil
}

func colorRating(r types.Rating) string {
	if c, ok := ratingColors[r]; ok {
		return c.Sprint(r.String())
	}
	return r.String()
}
