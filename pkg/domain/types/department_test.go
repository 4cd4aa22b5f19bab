package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskreg/pkg/domain/types"
)

func TestDepartmentCodeFor(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"exact", "Finance Office", "FO"},
		{"exact with ampersand", "Information & IT Service", "IT"},
		{"case insensitive", "wholesale banking", "WS"},
		{"substring of table name", "Legal", "LS"},
		{"table name inside input", "Digital Banking Division", "DB"},
		{"fallback to first two letters", "xyz unit", "XY"},
		{"fallback single letter", "q", "Q"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.V(t, types.DepartmentCodeFor(tt.input)).Equal(tt.want)
		})
	}
}

func TestDepartments(t *testing.T) {
	deps := types.Departments()
	gt.A(t, deps).Length(16)

	codes := make(map[string]bool)
	for _, d := range deps {
		gt.B(t, codes[d.Code]).False()
		codes[d.Code] = true
		gt.V(t, types.DepartmentCodeFor(d.Name)).Equal(d.Code)
	}

	// mutating the returned slice does not affect the table
	deps[0].Code = "ZZ"
	gt.V(t, types.Departments()[0].Code).Equal("CR")
}

func TestLookupDepartment(t *testing.T) {
	d, ok := types.LookupDepartment("it")
	gt.B(t, ok).True()
	gt.V(t, d.Name).Equal("Information & IT Service")

	d, ok = types.LookupDepartment(" human capital ")
	gt.B(t, ok).True()
	gt.V(t, d.Code).Equal("HC")

	_, ok = types.LookupDepartment("General")
	gt.B(t, ok).False()
}
