package transfer

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/pharmledger/pharmledger/internal/reports"
)

// WriteInventoryXLSX renders inventory rows into a single-sheet workbook.
func WriteInventoryXLSX(w io.Writer, rows []reports.InventoryRow) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := setHeaderRow(f, sheet, inventoryHeader); err != nil {
		return err
	}
	for i, row := range rows {
		excelRow := []interface{}{
			row.SN,
			row.Name,
			row.Classification,
			orDash(row.SubClass),
			orDash(row.Expiry),
			orDash(row.PackSize),
			orDash(row.Unit),
			row.Quantity,
			row.CriticalLevel,
			string(row.Status),
		}
		if err := setDataRow(f, sheet, i+2, excelRow); err != nil {
			return err
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("transfer: write inventory workbook: %w", err)
	}
	return nil
}

// WriteReportXLSX renders the dispense report into a workbook with a data
// sheet and a per-department summary sheet.
func WriteReportXLSX(w io.Writer, rows []reports.DispenseRow, summary reports.Summary) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(sheet, "Dispenses"); err != nil {
		return fmt.Errorf("transfer: rename sheet: %w", err)
	}
	if err := setHeaderRow(f, "Dispenses", dispensesHeader); err != nil {
		return err
	}
	for i, row := range rows {
		excelRow := []interface{}{
			row.SN,
			row.DateDispensed.Format(DateLayout),
			row.DrugName,
			row.Classification,
			orDash(row.SubClass),
			orDash(row.Expiry),
			orDash(row.DrugUnit),
			row.QuantityDispensed,
			orDash(row.Department),
			orDash(row.ApprovedBy),
		}
		if err := setDataRow(f, "Dispenses", i+2, excelRow); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet("Summary"); err != nil {
		return fmt.Errorf("transfer: add summary sheet: %w", err)
	}
	if err := setHeaderRow(f, "Summary", []string{"Department", "Quantity", "Records"}); err != nil {
		return err
	}
	for i, dept := range summary.Departments {
		excelRow := []interface{}{dept.Department, dept.Quantity, dept.Count}
		if err := setDataRow(f, "Summary", i+2, excelRow); err != nil {
			return err
		}
	}
	totalRow := []interface{}{"Total", summary.TotalQuantity, summary.Count}
	if err := setDataRow(f, "Summary", len(summary.Departments)+2, totalRow); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("transfer: write report workbook: %w", err)
	}
	return nil
}

func setHeaderRow(f *excelize.File, sheet string, header []string) error {
	cells := make([]interface{}, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &cells); err != nil {
		return fmt.Errorf("transfer: write %s header: %w", sheet, err)
	}
	return nil
}

func setDataRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("transfer: cell for row %s: %w", strconv.Itoa(row), err)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("transfer: write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return missingValue
	}
	return s
}
