package types

import "strings"

// Department is one of the fixed departments a risk or user belongs to
type Department struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var departments = [...]Department{
	{Code: "CR", Name: "Credit Management Office"},
	{Code: "CS", Name: "Corporate Strategy"},
	{Code: "DB", Name: "Digital Banking"},
	{Code: "FM", Name: "Facility Management"},
	{Code: "FO", Name: "Finance Office"},
	{Code: "HC", Name: "Human Capital"},
	{Code: "IF", Name: "IFB"},
	{Code: "IT", Name: "Information & IT Service"},
	{Code: "IA", Name: "Internal Audit"},
	{Code: "LS", Name: "Legal Service"},
	{Code: "MO", Name: "Marketing Office"},
	{Code: "RS", Name: "Retail & SME"},
	{Code: "RC", Name: "Risk & Compliance"},
	{Code: "TO", Name: "Transformation Office"},
	{Code: "TS", Name: "Trade Service"},
	{Code: "WS", Name: "Wholesale Banking"},
}

// Departments returns a copy of the department table in code order
func Departments() []Department {
	out := make([]Department, len(departments))
	copy(out, departments[:])
	return out
}

// DepartmentCodeFor returns the two letter code used in risk IDs for a
// department name. Lookup order: exact name, case-insensitive name,
// substring in either direction, and finally the first two letters of the
// name uppercased.
func DepartmentCodeFor(name string) string {
	for _, d := range departments {
		if d.Name == name {
			return d.Code
		}
	}

	lower := strings.ToLower(name)
	for _, d := range departments {
		if strings.ToLower(d.Name) == lower {
			return d.Code
		}
	}

	for _, d := range departments {
		key := strings.ToLower(d.Name)
		if strings.Contains(lower, key) || strings.Contains(key, lower) {
			return d.Code
		}
	}

	return strings.ToUpper(firstRunes(name, 2))
}

// LookupDepartment finds a department by name or code, ignoring case and
// surrounding whitespace.
func LookupDepartment(nameOrCode string) (Department, bool) {
	key := strings.TrimSpace(nameOrCode)
	for _, d := range departments {
		if strings.EqualFold(d.Name, key) || strings.EqualFold(d.Code, key) {
			return d, true
		}
	}
	return Department{}, false
}

func firstRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
