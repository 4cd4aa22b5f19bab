package interfaces

// ListRiskOption is a functional option for filtering risks in List
type ListRiskOption func(*listRiskConfig)

type listRiskConfig struct {
	department *string
}

// WithDepartment restricts the result to risks of department
func WithDepartment(department string) ListRiskOption {
	return func(c *listRiskConfig) {
		c.department = &department
	}
}

// BuildListRiskConfig builds a listRiskConfig from options
func BuildListRiskConfig(opts ...ListRiskOption) *listRiskConfig {
	cfg := &listRiskConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Department returns the department filter value, or nil if not set
func (c *listRiskConfig) Department() *string {
	return c.department
}

// Match reports whether a risk of department passes the filter
func (c *listRiskConfig) Match(department string) bool {
	return c.department == nil || *c.department == department
}
