package config

import (
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/riskreg/pkg/domain/model"
	"github.com/secmon-lab/riskreg/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// AppConfig represents the application configuration
type AppConfig struct {
	path string

	Users []User `toml:"user"`
}

// User is an entry of the user directory
type User struct {
	ID         string `toml:"id"`
	Name       string `toml:"name"`
	Email      string `toml:"email"`
	Role       string `toml:"role"`
	Department string `toml:"department"`
}

// Validate checks the user and canonicalizes its role and department
func (u *User) Validate() error {
	u.ID = strings.TrimSpace(u.ID)
	if u.ID == "" {
		return goerr.Wrap(ErrMissingUserID, "user without id")
	}

	role, err := types.ParseRole(u.Role)
	if err != nil {
		return goerr.Wrap(ErrInvalidRole, "user has an invalid role",
			goerr.V(UserIDKey, u.ID), goerr.V(RoleKey, u.Role))
	}
	u.Role = role.String()

	dept, ok := types.LookupDepartment(u.Department)
	if !ok {
		return goerr.Wrap(ErrUnknownDept, "user has an unknown department",
			goerr.V(UserIDKey, u.ID), goerr.V(DepartmentKey, u.Department))
	}
	u.Department = dept.Name
	return nil
}

// UserContext returns the access control view of the user
func (u *User) UserContext() model.UserContext {
	return model.UserContext{
		UserID:     u.ID,
		Role:       types.Role(u.Role),
		Department: u.Department,
	}
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	userIDs := make(map[string]bool)
	for i := range a.Users {
		if err := a.Users[i].Validate(); err != nil {
			return goerr.Wrap(err, "invalid user", goerr.V(UserIndexKey, i))
		}
		if userIDs[a.Users[i].ID] {
			return goerr.Wrap(ErrDuplicateUser, "duplicate user", goerr.V(UserIDKey, a.Users[i].ID))
		}
		userIDs[a.Users[i].ID] = true
	}
	return nil
}

// User looks up a user by ID
func (a *AppConfig) User(id string) (*User, error) {
	for i := range a.Users {
		if a.Users[i].ID == id {
			u := a.Users[i]
			return &u, nil
		}
	}
	return nil, goerr.Wrap(ErrUserNotFound, "no such user in directory", goerr.V(UserIDKey, id))
}

// Flags returns CLI flags for the user directory
func (a *AppConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the user directory TOML file",
			Sources:     cli.EnvVars("RISKREG_CONFIG"),
			Destination: &a.path,
		},
	}
}

// Configure loads the user directory. An unset path yields an empty one.
func (a *AppConfig) Configure() (*AppConfig, error) {
	if a.path == "" {
		return &AppConfig{}, nil
	}
	return LoadAppConfiguration(a.path)
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config",
			goerr.V(ConfigPathKey, path), goerr.V("cause", err.Error()))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	config.path = path
	return &config, nil
}
