package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskreg/pkg/cli/config"
	"github.com/secmon-lab/riskreg/pkg/domain/model"
	"github.com/secmon-lab/riskreg/pkg/service/spreadsheet"
	"github.com/secmon-lab/riskreg/pkg/usecase"
	"github.com/secmon-lab/riskreg/pkg/utils/logging"
	"github.com/secmon-lab/riskreg/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// actingUser resolves --user against the user directory. Commands run
// against the register with that user's permissions.
func actingUser(appCfg *config.AppConfig, userID string) (model.UserContext, error) {
	directory, err := appCfg.Configure()
	if err != nil {
		return model.UserContext{}, goerr.Wrap(err, "failed to load user directory")
	}
	user, err := directory.User(userID)
	if err != nil {
		return model.UserContext{}, err
	}
	return user.UserContext(), nil
}

func userFlag(dst *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "user",
		Aliases:     []string{"u"},
		Usage:       "ID of the user in the user directory to act as",
		Required:    true,
		Destination: dst,
	}
}

func cmdImport() *cli.Command {
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var userID string
	var path string
	var approve bool

	flags := []cli.Flag{
		userFlag(&userID),
		&cli.StringFlag{
			Name:        "file",
			Aliases:     []string{"f"},
			Usage:       "xlsx workbook to stage",
			Required:    true,
			Destination: &path,
		},
		&cli.BoolFlag{
			Name:        "approve",
			Usage:       "Approve the staging area right after the upload",
			Destination: &approve,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "import",
		Usage: "Stage risks from an xlsx workbook and optionally approve them",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			user, err := actingUser(&appCfg, userID)
			if err != nil {
				return err
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			// #nosec G304 - path is provided by CLI argument
			f, err := os.Open(path)
			if err != nil {
				return goerr.Wrap(err, "failed to open workbook", goerr.V("path", path))
			}
			defer safe.Close(ctx, f)

			rows, err := spreadsheet.Read(ctx, f)
			if err != nil {
				return goerr.Wrap(err, "failed to read workbook", goerr.V("path", path))
			}

			uc := usecase.New(repo)
			uploaded, err := uc.Import.Upload(ctx, user, filepath.Base(path), rows)
			if err != nil {
				return err
			}

			logger := logging.From(ctx)
			logger.Info("Staged rows", "valid", uploaded.Valid, "invalid", uploaded.Invalid)
			for _, row := range uploaded.Rows {
				for _, e := range row.Errors {
					logger.Warn("Invalid row", "row", e.Row, "field", e.Field, "message", e.Message, "value", e.Value)
				}
			}

			if !approve {
				return nil
			}

			approved, err := uc.Import.Approve(ctx, user)
			if err != nil {
				return err
			}
			logger.Info("Approved staging",
				"created", len(approved.Created),
				"skipped", len(approved.Skipped),
				"rejected", len(approved.Rejected))
			return nil
		},
	}
}

func cmdExport() *cli.Command {
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var userID string
	var path string

	flags := []cli.Flag{
		userFlag(&userID),
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Path of the xlsx workbook to write",
			Value:       "risk-register.xlsx",
			Destination: &path,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "export",
		Usage: "Export the risks visible to a user as an xlsx workbook",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			user, err := actingUser(&appCfg, userID)
			if err != nil {
				return err
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			// #nosec G304 - path is provided by CLI argument
			f, err := os.Create(path)
			if err != nil {
				return goerr.Wrap(err, "failed to create workbook", goerr.V("path", path))
			}
			defer safe.Close(ctx, f)

			uc := usecase.New(repo)
			if err := uc.Export.Export(ctx, user, f); err != nil {
				return err
			}

			logging.From(ctx).Info("Exported risk register", "path", path, "user_id", user.UserID)
			return nil
		},
	}
}
