package reports

import (
	"sort"
	"time"

	"github.com/pharmledger/pharmledger/internal/dispense"
	"github.com/pharmledger/pharmledger/internal/shared"
)

// TopN is how many entries the ranked breakdowns keep.
const TopN = 5

// UnknownDepartment labels records whose department is blank.
const UnknownDepartment = "Unknown"

// DepartmentTotal is one per-department line of the dispense summary.
type DepartmentTotal struct {
	Department string `json:"department"`
	Quantity   int64  `json:"quantity"`
	Count      int    `json:"count"`
}

// Summary aggregates a filtered set of dispense records.
type Summary struct {
	TotalQuantity int64             `json:"totalQuantity"`
	Count         int               `json:"count"`
	Departments   []DepartmentTotal `json:"departments"`
}

// Summarize totals the records and breaks them down per department.
// Departments appear in first-encountered order.
func Summarize(records []dispense.Record) Summary {
	s := Summary{Count: len(records), Departments: []DepartmentTotal{}}
	index := make(map[string]int)
	for _, rec := range records {
		s.TotalQuantity += rec.QuantityDispensed
		dept := rec.Department
		if dept == "" {
			dept = UnknownDepartment
		}
		i, ok := index[dept]
		if !ok {
			i = len(s.Departments)
			index[dept] = i
			s.Departments = append(s.Departments, DepartmentTotal{Department: dept})
		}
		s.Departments[i].Quantity += rec.QuantityDispensed
		s.Departments[i].Count++
	}
	return s
}

// RankedTotal is one line of a top-N breakdown.
type RankedTotal struct {
	Label    string `json:"label"`
	Quantity int64  `json:"quantity"`
}

// TopDrugs ranks drugs by total quantity dispensed, keeping the top TopN.
// Ties keep first-encountered order.
func TopDrugs(records []dispense.Record) []RankedTotal {
	return topBy(records, func(rec dispense.Record) string { return rec.DrugName })
}

// TopDepartments ranks departments by total quantity dispensed, keeping the
// top TopN. Blank departments count under UnknownDepartment.
func TopDepartments(records []dispense.Record) []RankedTotal {
	return topBy(records, func(rec dispense.Record) string {
		if rec.Department == "" {
			return UnknownDepartment
		}
		return rec.Department
	})
}

func topBy(records []dispense.Record, key func(dispense.Record) string) []RankedTotal {
	ranked := []RankedTotal{}
	index := make(map[string]int)
	for _, rec := range records {
		label := key(rec)
		i, ok := index[label]
		if !ok {
			i = len(ranked)
			index[label] = i
			ranked = append(ranked, RankedTotal{Label: label})
		}
		ranked[i].Quantity += rec.QuantityDispensed
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].Quantity > ranked[b].Quantity })
	if len(ranked) > TopN {
		ranked = ranked[:TopN]
	}
	return ranked
}

// PeriodTotal is the dispense activity inside one period shortcut.
type PeriodTotal struct {
	Period   string `json:"period"`
	Quantity int64  `json:"quantity"`
	Count    int    `json:"count"`
}

// PeriodTotals computes today, this-week and this-month dispense activity.
func PeriodTotals(records []dispense.Record, now time.Time) []PeriodTotal {
	periods := []string{shared.PeriodToday, shared.PeriodWeek, shared.PeriodMonth}
	totals := make([]PeriodTotal, 0, len(periods))
	for _, period := range periods {
		r, _ := shared.RangeForPeriod(period, now)
		total := PeriodTotal{Period: period}
		for _, rec := range records {
			if r.Contains(rec.DateDispensed) {
				total.Quantity += rec.QuantityDispensed
				total.Count++
			}
		}
		totals = append(totals, total)
	}
	return totals
}
