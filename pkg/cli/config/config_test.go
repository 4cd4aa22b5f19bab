package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskreg/pkg/cli/config"
	"github.com/secmon-lab/riskreg/pkg/domain/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()
	return path
}

func TestLoadAppConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name: "valid directory",
			content: `
[[user]]
id = "alice"
name = "Alice"
email = "alice@example.com"
role = "risk_admin"
department = "FO"

[[user]]
id = "bob"
role = "AUDITOR"
department = "internal audit"
`,
		},
		{
			name: "invalid role",
			content: `
[[user]]
id = "alice"
role = "owner"
department = "Finance Office"
`,
			wantErr: config.ErrInvalidRole,
		},
		{
			name: "unknown department",
			content: `
[[user]]
id = "alice"
role = "reviewer"
department = "Space Program"
`,
			wantErr: config.ErrUnknownDept,
		},
		{
			name: "duplicate user",
			content: `
[[user]]
id = "alice"
role = "reviewer"
department = "FO"

[[user]]
id = "alice"
role = "auditor"
department = "IA"
`,
			wantErr: config.ErrDuplicateUser,
		},
		{
			name: "missing id",
			content: `
[[user]]
role = "reviewer"
department = "FO"
`,
			wantErr: config.ErrMissingUserID,
		},
		{
			name:    "malformed TOML",
			content: `[[user]`,
			wantErr: config.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.LoadAppConfiguration(writeConfig(t, tt.content))
			if tt.wantErr != nil {
				gt.Error(t, err)
				gt.True(t, errors.Is(err, tt.wantErr))
				return
			}
			gt.NoError(t, err).Required()
			gt.A(t, cfg.Users).Length(2)
		})
	}
}

func TestAppConfig_CanonicalizesUsers(t *testing.T) {
	cfg, err := config.LoadAppConfiguration(writeConfig(t, `
[[user]]
id = "bob"
role = "AUDITOR"
department = "ia"
`))
	gt.NoError(t, err).Required()

	u, err := cfg.User("bob")
	gt.NoError(t, err).Required()
	gt.V(t, u.Role).Equal("auditor")
	gt.V(t, u.Department).Equal("Internal Audit")

	uc := u.UserContext()
	gt.V(t, uc.Role).Equal(types.RoleAuditor)
	gt.V(t, uc.UserID).Equal("bob")

	_, err = cfg.User("nobody")
	gt.True(t, errors.Is(err, config.ErrUserNotFound))
}

func TestAppConfig_Configure(t *testing.T) {
	t.Run("no path gives an empty directory", func(t *testing.T) {
		cfg, err := config.NewAppConfigForTest("").Configure()
		gt.NoError(t, err).Required()
		gt.A(t, cfg.Users).Length(0)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.NewAppConfigForTest(filepath.Join(t.TempDir(), "none.toml")).Configure()
		gt.Error(t, err)
	})
}
