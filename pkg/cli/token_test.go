package cli_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskreg/pkg/cli"
	"github.com/secmon-lab/riskreg/pkg/cli/config"
)

func TestRun_TokenCommand(t *testing.T) {
	ctx := context.Background()
	configPath := writeFile(t, "users.toml", userDirectory)

	t.Run("issues token for known user", func(t *testing.T) {
		err := cli.Run(ctx, []string{
			"riskreg", "token",
			"--config", configPath,
			"--jwt-secret", "0123456789abcdef0123456789abcdef",
			"--user", "fin-admin",
		}, "test")
		gt.NoError(t, err)
	})

	t.Run("unknown user", func(t *testing.T) {
		err := cli.Run(ctx, []string{
			"riskreg", "token",
			"--config", configPath,
			"--jwt-secret", "0123456789abcdef0123456789abcdef",
			"--user", "mallory",
		}, "test")
		gt.Error(t, err).Is(config.ErrUserNotFound)
	})

	t.Run("secret is required", func(t *testing.T) {
		t.Setenv("RISKREG_JWT_SECRET", "")
		err := cli.Run(ctx, []string{
			"riskreg", "token",
			"--config", configPath,
			"--user", "fin-admin",
		}, "test")
		gt.Error(t, err).Is(config.ErrMissingSecret)
	})
}
