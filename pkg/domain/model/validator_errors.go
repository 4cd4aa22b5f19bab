package model

import "github.com/m-mizutani/goerr/v2"

// Validation errors
var (
	ErrInvalidAssessment = goerr.New("invalid risk assessment")
	ErrInvalidRisk       = goerr.New("invalid risk")
)

// Context keys for error values
const (
	FieldKey      = "field"
	ValueKey      = "value"
	DepartmentKey = "department"
	RoleKey       = "role"
	RiskIDKey     = "risk_id"
)
