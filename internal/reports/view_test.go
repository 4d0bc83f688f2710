package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pharmledger/pharmledger/internal/dispense"
	"github.com/pharmledger/pharmledger/internal/shared"
	"github.com/pharmledger/pharmledger/internal/stock"
)

var viewNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func testItems() []stock.Item {
	return []stock.Item{
		{ID: 1, Name: "Paracetamol", Classification: "Analgesic", Quantity: 50, CriticalLevel: 10, Expiry: "2026-01-01"},
		{ID: 2, Name: "amoxicillin", Classification: "Antibiotic", Quantity: 0, CriticalLevel: 5, Expiry: "2025-06-18"},
		{ID: 3, Name: "Ibuprofen", Classification: "Analgesic", Quantity: 8, CriticalLevel: 10, Expiry: "2025-06-10"},
		{ID: 4, Name: "Zinc", Classification: "Supplement", Quantity: 30, CriticalLevel: 5},
	}
}

func itemNames(items []stock.Item) []string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	return names
}

func TestFilterInventorySortsByName(t *testing.T) {
	filtered, err := FilterInventory(testItems(), InventoryFilter{}, viewNow)
	require.NoError(t, err)
	require.Equal(t, []string{"amoxicillin", "Ibuprofen", "Paracetamol", "Zinc"}, itemNames(filtered))
}

func TestFilterInventoryByNameAndClassification(t *testing.T) {
	filtered, err := FilterInventory(testItems(), InventoryFilter{Name: "PARA"}, viewNow)
	require.NoError(t, err)
	require.Equal(t, []string{"Paracetamol"}, itemNames(filtered))

	filtered, err = FilterInventory(testItems(), InventoryFilter{Classification: "analgesic"}, viewNow)
	require.NoError(t, err)
	require.Equal(t, []string{"Ibuprofen", "Paracetamol"}, itemNames(filtered))
}

func TestFilterInventoryStatusSelectors(t *testing.T) {
	cases := []struct {
		selector string
		want     []string
	}{
		{"all", []string{"amoxicillin", "Ibuprofen", "Paracetamol", "Zinc"}},
		{"ok", []string{"Paracetamol", "Zinc"}},
		{"out", []string{"amoxicillin"}},
		{"critical", []string{"Ibuprofen"}},
		{"critical-ok", []string{"Ibuprofen", "Paracetamol", "Zinc"}},
		{"critical-out", []string{"amoxicillin", "Ibuprofen"}},
		{"expired", []string{"Ibuprofen"}},
		{"near-expiry", []string{"amoxicillin"}},
		{"near-expiry-expired", []string{"amoxicillin", "Ibuprofen"}},
		{"not-expired", []string{"amoxicillin", "Paracetamol", "Zinc"}},
		{"not-expired-ok", []string{"Paracetamol", "Zinc"}},
		{"near-expiry-ok", []string{"amoxicillin", "Paracetamol", "Zinc"}},
	}
	for _, tc := range cases {
		t.Run(tc.selector, func(t *testing.T) {
			filtered, err := FilterInventory(testItems(), InventoryFilter{Status: tc.selector}, viewNow)
			require.NoError(t, err)
			require.Equal(t, tc.want, itemNames(filtered))
		})
	}
}

func TestFilterInventoryUnknownSelector(t *testing.T) {
	_, err := FilterInventory(testItems(), InventoryFilter{Status: "stale"}, viewNow)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestInventoryRowsSerialNumbers(t *testing.T) {
	filtered, err := FilterInventory(testItems(), InventoryFilter{}, viewNow)
	require.NoError(t, err)
	rows := InventoryRows(filtered[2:], viewNow, 2)
	require.Len(t, rows, 2)
	require.Equal(t, 3, rows[0].SN)
	require.Equal(t, "Paracetamol", rows[0].Name)
	require.Equal(t, stock.StatusOk, rows[0].Status)
}

func testRecords() []dispense.Record {
	day := func(d int) time.Time {
		return time.Date(2025, time.June, d, 10, 0, 0, 0, time.UTC)
	}
	return []dispense.Record{
		{ID: "a", DrugName: "Paracetamol", Department: "Pediatrics", QuantityDispensed: 5, DateDispensed: day(15)},
		{ID: "b", DrugName: "amoxicillin", Department: "Surgery", QuantityDispensed: 12, DateDispensed: day(9)},
		{ID: "c", DrugName: "Ibuprofen", Department: "Pediatrics", QuantityDispensed: 3, DateDispensed: day(14)},
		{ID: "d", DrugName: "Zinc", Department: "", QuantityDispensed: 7, DateDispensed: day(1)},
	}
}

func recordIDs(records []dispense.Record) []string {
	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}
	return ids
}

func TestFilterDispensesDefaultSortIsDateDesc(t *testing.T) {
	filtered, err := FilterDispenses(testRecords(), DispenseFilter{}, viewNow)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "c", "b", "d"}, recordIDs(filtered))
}

func TestFilterDispensesPeriods(t *testing.T) {
	filtered, err := FilterDispenses(testRecords(), DispenseFilter{Period: shared.PeriodToday}, viewNow)
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, recordIDs(filtered))

	// Week of 2025-06-15 (a Sunday) starts Monday 2025-06-09.
	filtered, err = FilterDispenses(testRecords(), DispenseFilter{Period: shared.PeriodWeek}, viewNow)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "c", "b"}, recordIDs(filtered))

	filtered, err = FilterDispenses(testRecords(), DispenseFilter{Period: shared.PeriodMonth}, viewNow)
	require.NoError(t, err)
	require.Len(t, filtered, 4)
}

func TestFilterDispensesCustomRange(t *testing.T) {
	filtered, err := FilterDispenses(testRecords(), DispenseFilter{
		Period: shared.PeriodCustom, From: "2025-06-09", To: "2025-06-14",
	}, viewNow)
	require.NoError(t, err)
	require.Equal(t, []string{"c", "b"}, recordIDs(filtered))

	_, err = FilterDispenses(testRecords(), DispenseFilter{Period: shared.PeriodCustom, From: "2025-06-09"}, viewNow)
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = FilterDispenses(testRecords(), DispenseFilter{Period: shared.PeriodCustom, From: "junk", To: "2025-06-14"}, viewNow)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestFilterDispensesByDepartment(t *testing.T) {
	filtered, err := FilterDispenses(testRecords(), DispenseFilter{Department: "pedia"}, viewNow)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "c"}, recordIDs(filtered))
}

func TestFilterDispensesSortKeys(t *testing.T) {
	cases := []struct {
		key  string
		want []string
	}{
		{SortDateAsc, []string{"d", "b", "c", "a"}},
		{SortDrugAsc, []string{"b", "c", "a", "d"}},
		{SortDrugDesc, []string{"d", "a", "c", "b"}},
		{SortQtyAsc, []string{"c", "a", "d", "b"}},
		{SortQtyDesc, []string{"b", "d", "a", "c"}},
		{SortDeptAsc, []string{"d", "a", "c", "b"}},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			filtered, err := FilterDispenses(testRecords(), DispenseFilter{Sort: tc.key}, viewNow)
			require.NoError(t, err)
			require.Equal(t, tc.want, recordIDs(filtered))
		})
	}

	_, err := FilterDispenses(testRecords(), DispenseFilter{Sort: "volume"}, viewNow)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestFilterDispensesUnknownPeriod(t *testing.T) {
	_, err := FilterDispenses(testRecords(), DispenseFilter{Period: "quarter"}, viewNow)
	require.ErrorIs(t, err, shared.ErrValidation)
}
