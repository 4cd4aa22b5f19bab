package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrInvalidConfig  = goerr.New("invalid configuration")
	ErrDuplicateUser  = goerr.New("duplicate user ID")
	ErrInvalidRole    = goerr.New("invalid role")
	ErrUnknownDept    = goerr.New("unknown department")
	ErrMissingUserID  = goerr.New("user ID is required")
	ErrUserNotFound   = goerr.New("user not found")
	ErrMissingSecret  = goerr.New("JWT secret is required")
	ErrInvalidBackend = goerr.New("invalid repository backend")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	UserIDKey     = "user_id"
	UserIndexKey  = "user_index"
	RoleKey       = "role"
	DepartmentKey = "department"
	BackendKey    = "backend"
)
