package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrRiskNotFound = errors.New("risk not found")

	// Access control errors
	ErrAccessDenied = errors.New("access denied")

	// Input errors
	ErrInvalidInput = errors.New("invalid input")
	ErrStagingEmpty = errors.New("no staged rows to approve")

	// Authentication errors
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Context keys for error values
const (
	RiskIDKey     = "risk_id"
	UserIDKey     = "user_id"
	RoleKey       = "role"
	DepartmentKey = "department"
)
