package model

import (
	"sort"
	"time"

	"github.com/secmon-lab/riskreg/pkg/domain/types"
)

const (
	trendMonths  = 12
	topRiskCount = 5
)

// RiskStatistics aggregates a set of visible risks for the dashboard
type RiskStatistics struct {
	Total                int                  `json:"total"`
	ByRating             map[types.Rating]int `json:"byRating"`
	ByStatus             map[string]int       `json:"byStatus"`
	ByCategory           map[string]int       `json:"byCategory"`
	ByDepartment         map[string]int       `json:"byDepartment,omitempty"`
	Trend                []TrendPoint         `json:"trend"`
	TopRisks             []TopRisk            `json:"topRisks"`
	ControlEffectiveness ControlSummary       `json:"controlEffectiveness"`
}

// TrendPoint is the count of risks reported in a month
type TrendPoint struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// TopRisk is an entry of the highest inherent risk list
type TopRisk struct {
	ID           int64        `json:"id"`
	RiskID       string       `json:"riskId"`
	Title        string       `json:"riskTitle"`
	Department   string       `json:"department"`
	InherentRisk float64      `json:"inherentRisk"`
	Rating       types.Rating `json:"rating"`
}

// ControlSummary is the mean control effectiveness of risks that have one
type ControlSummary struct {
	Average      float64            `json:"average"`
	ByDepartment map[string]float64 `json:"byDepartment,omitempty"`
}

// BuildStatistics aggregates risks. byDepartment breakdowns are included
// only when includeByDepartment is set, which callers tie to
// CanSeeAllStatistics. now anchors the monthly trend.
func BuildStatistics(risks []*Risk, now time.Time, includeByDepartment bool) *RiskStatistics {
	stats := &RiskStatistics{
		Total:      len(risks),
		ByRating:   make(map[types.Rating]int, 5),
		ByStatus:   make(map[string]int),
		ByCategory: make(map[string]int),
		Trend:      make([]TrendPoint, 0, trendMonths),
		TopRisks:   []TopRisk{},
	}
	for _, r := range types.AllRatings() {
		stats.ByRating[r] = 0
	}
	if includeByDepartment {
		stats.ByDepartment = make(map[string]int)
		stats.ControlEffectiveness.ByDepartment = make(map[string]float64)
	}

	type acc struct {
		total float64
		count int
	}
	var overall acc
	deptControls := make(map[string]*acc)

	for _, r := range risks {
		if rating := r.Rating(); rating.IsValid() {
			stats.ByRating[rating]++
		}
		stats.ByStatus[r.Status.Normalize().String()]++
		stats.ByCategory[r.Category]++
		if includeByDepartment {
			stats.ByDepartment[r.Department]++
		}

		if r.ControlEffectiveness != nil && *r.ControlEffectiveness > 0 {
			overall.total += *r.ControlEffectiveness
			overall.count++
			if includeByDepartment {
				a, ok := deptControls[r.Department]
				if !ok {
					a = &acc{}
					deptControls[r.Department] = a
				}
				a.total += *r.ControlEffectiveness
				a.count++
			}
		}
	}

	if overall.count > 0 {
		stats.ControlEffectiveness.Average = overall.total / float64(overall.count)
	}
	for dept, a := range deptControls {
		stats.ControlEffectiveness.ByDepartment[dept] = a.total / float64(a.count)
	}

	now = now.UTC()
	for i := trendMonths - 1; i >= 0; i-- {
		month := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		count := 0
		for _, r := range risks {
			reported := r.DateReported.UTC()
			if reported.Year() == month.Year() && reported.Month() == month.Month() {
				count++
			}
		}
		stats.Trend = append(stats.Trend, TrendPoint{Month: month.Format("Jan 06"), Count: count})
	}

	sorted := make([]*Risk, len(risks))
	copy(sorted, risks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].InherentRisk > sorted[j].InherentRisk
	})
	for i, r := range sorted {
		if i == topRiskCount {
			break
		}
		stats.TopRisks = append(stats.TopRisks, TopRisk{
			ID:           r.ID,
			RiskID:       r.RiskID,
			Title:        r.Title,
			Department:   r.Department,
			InherentRisk: r.InherentRisk,
			Rating:       r.InherentRating,
		})
	}

	return stats
}

// DashboardPoint is one risk placed on the likelihood/impact heat map
type DashboardPoint struct {
	ID                   int64        `json:"id"`
	RiskID               string       `json:"riskId"`
	Title                string       `json:"riskTitle"`
	Department           string       `json:"department"`
	Likelihood           float64      `json:"likelihood"`
	Impact               float64      `json:"impact"`
	InherentRisk         float64      `json:"inherentRisk"`
	ResidualRisk         *float64     `json:"residualRisk"`
	ControlEffectiveness *float64     `json:"controlEffectiveness"`
	RiskScore            float64      `json:"riskScore"`
	Rating               types.Rating `json:"rating"`
}

// DepartmentControl is the control effectiveness summary of a department
type DepartmentControl struct {
	Department              string  `json:"department"`
	AvgControlEffectiveness float64 `json:"avgControlEffectiveness"`
	RiskCount               int     `json:"riskCount"`
}

// Dashboard is the heat map view of the visible register
type Dashboard struct {
	Risks              []DashboardPoint    `json:"risks"`
	DepartmentControls []DepartmentControl `json:"departmentControls"`
}

// BuildDashboard projects risks onto heat map points and per department
// control summaries. Departments are sorted by name.
func BuildDashboard(risks []*Risk) *Dashboard {
	d := &Dashboard{
		Risks:              make([]DashboardPoint, 0, len(risks)),
		DepartmentControls: []DepartmentControl{},
	}

	type acc struct {
		total float64
		count int
		risks int
	}
	depts := make(map[string]*acc)

	for _, r := range risks {
		d.Risks = append(d.Risks, DashboardPoint{
			ID:                   r.ID,
			RiskID:               r.RiskID,
			Title:                r.Title,
			Department:           r.Department,
			Likelihood:           r.Likelihood,
			Impact:               r.Impact,
			InherentRisk:         r.InherentRisk,
			ResidualRisk:         copyFloat(r.ResidualRisk),
			ControlEffectiveness: copyFloat(r.ControlEffectiveness),
			RiskScore:            r.RiskScore,
			Rating:               r.Rating(),
		})

		a, ok := depts[r.Department]
		if !ok {
			a = &acc{}
			depts[r.Department] = a
		}
		a.risks++
		if r.ControlEffectiveness != nil && *r.ControlEffectiveness > 0 {
			a.total += *r.ControlEffectiveness
			a.count++
		}
	}

	for name, a := range depts {
		dc := DepartmentControl{Department: name, RiskCount: a.risks}
		if a.count > 0 {
			dc.AvgControlEffectiveness = a.total / float64(a.count)
		}
		d.DepartmentControls = append(d.DepartmentControls, dc)
	}
	sort.Slice(d.DepartmentControls, func(i, j int) bool {
		return d.DepartmentControls[i].Department < d.DepartmentControls[j].Department
	})

	return d
}
