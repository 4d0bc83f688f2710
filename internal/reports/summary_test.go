package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pharmledger/pharmledger/internal/dispense"
)

func TestSummarize(t *testing.T) {
	records := []dispense.Record{
		{Department: "Pediatrics", QuantityDispensed: 5},
		{Department: "Surgery", QuantityDispensed: 12},
		{Department: "Pediatrics", QuantityDispensed: 3},
		{Department: "", QuantityDispensed: 7},
	}
	s := Summarize(records)
	require.Equal(t, int64(27), s.TotalQuantity)
	require.Equal(t, 4, s.Count)
	require.Equal(t, []DepartmentTotal{
		{Department: "Pediatrics", Quantity: 8, Count: 2},
		{Department: "Surgery", Quantity: 12, Count: 1},
		{Department: UnknownDepartment, Quantity: 7, Count: 1},
	}, s.Departments)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	require.Equal(t, int64(0), s.TotalQuantity)
	require.Equal(t, 0, s.Count)
	require.Empty(t, s.Departments)
	require.NotNil(t, s.Departments)
}

func TestTopDrugsKeepsFive(t *testing.T) {
	var records []dispense.Record
	names := []string{"A", "B", "C", "D", "E", "F", "G"}
	for i, name := range names {
		records = append(records, dispense.Record{DrugName: name, QuantityDispensed: int64(i + 1)})
	}
	top := TopDrugs(records)
	require.Len(t, top, TopN)
	require.Equal(t, RankedTotal{Label: "G", Quantity: 7}, top[0])
	require.Equal(t, RankedTotal{Label: "C", Quantity: 3}, top[4])
}

func TestTopDrugsTiesKeepFirstSeenOrder(t *testing.T) {
	records := []dispense.Record{
		{DrugName: "Paracetamol", QuantityDispensed: 5},
		{DrugName: "Ibuprofen", QuantityDispensed: 5},
		{DrugName: "Zinc", QuantityDispensed: 9},
	}
	top := TopDrugs(records)
	require.Equal(t, []RankedTotal{
		{Label: "Zinc", Quantity: 9},
		{Label: "Paracetamol", Quantity: 5},
		{Label: "Ibuprofen", Quantity: 5},
	}, top)
}

func TestTopDepartmentsLabelsUnknown(t *testing.T) {
	records := []dispense.Record{
		{Department: "", QuantityDispensed: 4},
		{Department: "ER", QuantityDispensed: 2},
	}
	top := TopDepartments(records)
	require.Equal(t, []RankedTotal{
		{Label: UnknownDepartment, Quantity: 4},
		{Label: "ER", Quantity: 2},
	}, top)
}

func TestPeriodTotals(t *testing.T) {
	now := time.Date(2025, time.June, 18, 12, 0, 0, 0, time.UTC) // a Wednesday
	day := func(d int) time.Time {
		return time.Date(2025, time.June, d, 9, 0, 0, 0, time.UTC)
	}
	records := []dispense.Record{
		{QuantityDispensed: 5, DateDispensed: day(18)},
		{QuantityDispensed: 3, DateDispensed: day(16)},
		{QuantityDispensed: 7, DateDispensed: day(2)},
		{QuantityDispensed: 1, DateDispensed: time.Date(2025, time.May, 30, 9, 0, 0, 0, time.UTC)},
	}
	totals := PeriodTotals(records, now)
	require.Len(t, totals, 3)
	require.Equal(t, PeriodTotal{Period: "today", Quantity: 5, Count: 1}, totals[0])
	require.Equal(t, PeriodTotal{Period: "week", Quantity: 8, Count: 2}, totals[1])
	require.Equal(t, PeriodTotal{Period: "month", Quantity: 15, Count: 3}, totals[2])
}
