// Package reports computes filtered, sorted, paginated projections over the
// stock and dispense collections. The functions are pure: table rendering,
// CSV/XLSX export, and PDF row-sets all call the same projections so every
// surface agrees on content and ordering.
package reports

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/pharmledger/pharmledger/internal/dispense"
	"github.com/pharmledger/pharmledger/internal/shared"
	"github.com/pharmledger/pharmledger/internal/stock"
)

// InventoryFilter selects stock items for the inventory table.
type InventoryFilter struct {
	Name           string
	Classification string
	Status         string
}

// Status selector values combine the Out/Critical/Ok and
// Expired/NearExpiry/Safe derivations.
var inventoryStatusSelectors = map[string]struct{}{
	"":                    {},
	"all":                 {},
	"ok":                  {},
	"out":                 {},
	"critical":            {},
	"critical-ok":         {},
	"critical-out":        {},
	"expired":             {},
	"near-expiry":         {},
	"near-expiry-expired": {},
	"not-expired":         {},
	"not-expired-ok":      {},
	"near-expiry-ok":      {},
}

// FilterInventory sorts items alphabetically by name then applies the name,
// classification and status predicates. The input slice is not modified.
func FilterInventory(items []stock.Item, f InventoryFilter, now time.Time) ([]stock.Item, error) {
	if _, ok := inventoryStatusSelectors[f.Status]; !ok {
		return nil, fmt.Errorf("reports: unknown status selector %q: %w", f.Status, shared.ErrValidation)
	}
	sorted := make([]stock.Item, len(items))
	copy(sorted, items)
	stock.SortByName(sorted)

	name := strings.ToLower(f.Name)
	class := strings.ToLower(f.Classification)

	filtered := sorted[:0]
	for _, item := range sorted {
		if !strings.Contains(strings.ToLower(item.Name), name) {
			continue
		}
		if !strings.Contains(strings.ToLower(item.Classification), class) {
			continue
		}
		if !matchStatus(item, f.Status, now) {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered, nil
}

func matchStatus(item stock.Item, selector string, now time.Time) bool {
	st := item.Status()
	exp := item.ExpiryState(now)
	switch selector {
	case "ok":
		return st == stock.StatusOk
	case "out":
		return st == stock.StatusOut
	case "critical":
		return st == stock.StatusCritical
	case "critical-ok":
		return st == stock.StatusCritical || st == stock.StatusOk
	case "critical-out":
		return st == stock.StatusCritical || st == stock.StatusOut
	case "expired":
		return exp == stock.ExpiryExpired
	case "near-expiry":
		return exp == stock.ExpiryNear
	case "near-expiry-expired":
		return exp == stock.ExpiryNear || exp == stock.ExpiryExpired
	case "not-expired":
		return exp != stock.ExpiryExpired
	case "not-expired-ok":
		return exp != stock.ExpiryExpired && st == stock.StatusOk
	case "near-expiry-ok":
		return exp == stock.ExpiryNear || st == stock.StatusOk
	}
	return true
}

// InventoryRow is one rendered line of the inventory table or export.
type InventoryRow struct {
	SN int `json:"sn"`
	stock.Item
	Status      stock.Status      `json:"status"`
	ExpiryState stock.ExpiryState `json:"expiryState"`
}

// InventoryRows derives rendered rows with serial numbers starting at offset+1.
func InventoryRows(items []stock.Item, now time.Time, offset int) []InventoryRow {
	rows := make([]InventoryRow, 0, len(items))
	for i, item := range items {
		rows = append(rows, InventoryRow{
			SN:          offset + i + 1,
			Item:        item,
			Status:      item.Status(),
			ExpiryState: item.ExpiryState(now),
		})
	}
	return rows
}

// DispenseFilter selects and orders dispense records for reporting.
type DispenseFilter struct {
	Period     string
	From       string
	To         string
	Department string
	Sort       string
}

// Dispense sort keys. Ties keep the original order.
const (
	SortDateDesc = "date-desc"
	SortDateAsc  = "date-asc"
	SortDrugAsc  = "drug-asc"
	SortDrugDesc = "drug-desc"
	SortQtyAsc   = "qty-asc"
	SortQtyDesc  = "qty-desc"
	SortDeptAsc  = "dept-asc"
)

// FilterDispenses applies the date-range and department predicates, then
// sorts by the selected key. The input slice is not modified.
func FilterDispenses(records []dispense.Record, f DispenseFilter, now time.Time) ([]dispense.Record, error) {
	var dateRange *shared.DateRange
	switch f.Period {
	case "", "all":
	case shared.PeriodCustom:
		if f.From == "" || f.To == "" {
			return nil, fmt.Errorf("reports: custom period requires from and to dates: %w", shared.ErrValidation)
		}
		from, err := time.ParseInLocation(stock.ExpiryLayout, f.From, now.Location())
		if err != nil {
			return nil, fmt.Errorf("reports: invalid from date %q: %w", f.From, shared.ErrValidation)
		}
		to, err := time.ParseInLocation(stock.ExpiryLayout, f.To, now.Location())
		if err != nil {
			return nil, fmt.Errorf("reports: invalid to date %q: %w", f.To, shared.ErrValidation)
		}
		r := shared.CustomRange(from, to)
		dateRange = &r
	default:
		r, ok := shared.RangeForPeriod(f.Period, now)
		if !ok {
			return nil, fmt.Errorf("reports: unknown period %q: %w", f.Period, shared.ErrValidation)
		}
		dateRange = &r
	}

	dept := strings.ToLower(f.Department)
	filtered := make([]dispense.Record, 0, len(records))
	for _, rec := range records {
		if dateRange != nil && !dateRange.Contains(rec.DateDispensed) {
			continue
		}
		if !strings.Contains(strings.ToLower(rec.Department), dept) {
			continue
		}
		filtered = append(filtered, rec)
	}

	if err := sortDispenses(filtered, f.Sort); err != nil {
		return nil, err
	}
	return filtered, nil
}

func sortDispenses(records []dispense.Record, key string) error {
	c := collate.New(language.English, collate.IgnoreCase)
	var less func(a, b dispense.Record) bool
	switch key {
	case "", SortDateDesc:
		less = func(a, b dispense.Record) bool { return a.DateDispensed.After(b.DateDispensed) }
	case SortDateAsc:
		less = func(a, b dispense.Record) bool { return a.DateDispensed.Before(b.DateDispensed) }
	case SortDrugAsc:
		less = func(a, b dispense.Record) bool { return c.CompareString(a.DrugName, b.DrugName) < 0 }
	case SortDrugDesc:
		less = func(a, b dispense.Record) bool { return c.CompareString(b.DrugName, a.DrugName) < 0 }
	case SortQtyAsc:
		less = func(a, b dispense.Record) bool { return a.QuantityDispensed < b.QuantityDispensed }
	case SortQtyDesc:
		less = func(a, b dispense.Record) bool { return a.QuantityDispensed > b.QuantityDispensed }
	case SortDeptAsc:
		less = func(a, b dispense.Record) bool { return c.CompareString(a.Department, b.Department) < 0 }
	default:
		return fmt.Errorf("reports: unknown sort key %q: %w", key, shared.ErrValidation)
	}
	sort.SliceStable(records, func(a, b int) bool { return less(records[a], records[b]) })
	return nil
}

// DispenseRow is one rendered line of the dispense report table or export.
type DispenseRow struct {
	SN int `json:"sn"`
	dispense.Record
}

// DispenseRows derives rendered rows with serial numbers starting at offset+1.
func DispenseRows(records []dispense.Record, offset int) []DispenseRow {
	rows := make([]DispenseRow, 0, len(records))
	for i, rec := range records {
		rows = append(rows, DispenseRow{SN: offset + i + 1, Record: rec})
	}
	return rows
}
