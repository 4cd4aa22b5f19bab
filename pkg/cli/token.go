package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskreg/pkg/cli/config"
	"github.com/secmon-lab/riskreg/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdToken() *cli.Command {
	var appCfg config.AppConfig
	var authCfg config.Auth
	var userID string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user",
			Aliases:     []string{"u"},
			Usage:       "ID of a user in the user directory",
			Required:    true,
			Destination: &userID,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, authCfg.Flags()...)

	return &cli.Command{
		Name:  "token",
		Usage: "Issue an API token for a user of the user directory",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			directory, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load user directory")
			}

			user, err := directory.User(userID)
			if err != nil {
				return err
			}

			issuer, err := authCfg.Issuer()
			if err != nil {
				return err
			}

			token, err := issuer.Issue(user.UserContext())
			if err != nil {
				return goerr.Wrap(err, "failed to issue token", goerr.V("user_id", userID))
			}

			logging.Default().Info("Issued token",
				"user_id", user.ID,
				"role", user.Role,
				"department", user.Department,
				"auth", &authCfg)

			if _, err := fmt.Fprintln(c.Root().Writer, token); err != nil {
				return goerr.Wrap(err, "failed to write token")
			}
			return nil
		},
	}
}
