package transfer

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pharmledger/pharmledger/internal/dispense"
	"github.com/pharmledger/pharmledger/internal/reports"
	"github.com/pharmledger/pharmledger/internal/shared"
	"github.com/pharmledger/pharmledger/internal/stock"
)

// Placeholder rendered for blank values on export and stripped on import.
const missingValue = "—"

// DateLayout is the timestamp format used for dispense dates in CSV files.
const DateLayout = time.RFC3339

// Column headers are a literal, order-significant external contract.
var (
	inventoryHeader = []string{"S/N", "Name", "Classification", "SubClass", "Expiry", "PackSize", "Unit", "Quantity", "CriticalLevel", "Status"}
	dispensesHeader = []string{"S/N", "DateDispensed", "DrugName", "Classification", "SubClass", "Expiry", "DrugUnit", "QuantityDispensed", "Department", "ApprovedBy"}
)

const csvBufferSize = 32 * 1024

// csvWriter renders rows with every data field quote-wrapped and internal
// quotes doubled, matching files produced by earlier versions of the tool.
// encoding/csv is not used because it quotes only when necessary.
type csvWriter struct {
	buf *bufio.Writer
}

func newCSVWriter(w io.Writer) *csvWriter {
	return &csvWriter{buf: bufio.NewWriterSize(w, csvBufferSize)}
}

func (w *csvWriter) writeHeader(header []string) error {
	_, err := w.buf.WriteString(strings.Join(header, ",") + "\r\n")
	return err
}

func (w *csvWriter) writeRow(fields []string) error {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		if f == "" {
			f = missingValue
		}
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	_, err := w.buf.WriteString(strings.Join(quoted, ",") + "\r\n")
	return err
}

func (w *csvWriter) flush() error {
	return w.buf.Flush()
}

// WriteInventoryCSV renders inventory rows to CSV.
func WriteInventoryCSV(w io.Writer, rows []reports.InventoryRow) error {
	cw := newCSVWriter(w)
	if err := cw.writeHeader(inventoryHeader); err != nil {
		return fmt.Errorf("transfer: write inventory header: %w", err)
	}
	for _, row := range rows {
		fields := []string{
			strconv.Itoa(row.SN),
			row.Name,
			row.Classification,
			row.SubClass,
			row.Expiry,
			row.PackSize,
			row.Unit,
			strconv.FormatInt(row.Quantity, 10),
			strconv.FormatInt(row.CriticalLevel, 10),
			string(row.Status),
		}
		if err := cw.writeRow(fields); err != nil {
			return fmt.Errorf("transfer: write inventory row %d: %w", row.SN, err)
		}
	}
	return cw.flush()
}

// WriteDispensesCSV renders dispense report rows to CSV.
func WriteDispensesCSV(w io.Writer, rows []reports.DispenseRow) error {
	cw := newCSVWriter(w)
	if err := cw.writeHeader(dispensesHeader); err != nil {
		return fmt.Errorf("transfer: write dispenses header: %w", err)
	}
	for _, row := range rows {
		fields := []string{
			strconv.Itoa(row.SN),
			row.DateDispensed.Format(DateLayout),
			row.DrugName,
			row.Classification,
			row.SubClass,
			row.Expiry,
			row.DrugUnit,
			strconv.FormatInt(row.QuantityDispensed, 10),
			row.Department,
			row.ApprovedBy,
		}
		if err := cw.writeRow(fields); err != nil {
			return fmt.Errorf("transfer: write dispenses row %d: %w", row.SN, err)
		}
	}
	return cw.flush()
}

// splitCSV breaks the file into rows and fields. Lines split on newlines and
// fields on commas; embedded commas or newlines inside quoted fields are not
// supported. Files exported by this tool never contain them.
func splitCSV(data []byte) [][]string {
	var rows [][]string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, ",")
		fields := make([]string, len(parts))
		for i, p := range parts {
			fields[i] = unquoteField(p)
		}
		rows = append(rows, fields)
	}
	return rows
}

func unquoteField(f string) string {
	f = strings.TrimSpace(f)
	if len(f) >= 2 && strings.HasPrefix(f, `"`) && strings.HasSuffix(f, `"`) {
		f = strings.ReplaceAll(f[1:len(f)-1], `""`, `"`)
	}
	if f == missingValue {
		return ""
	}
	return f
}

func checkHeader(got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("transfer: expected header %q: %w", strings.Join(want, ","), shared.ErrSchema)
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("transfer: column %d is %q, expected %q: %w", i+1, got[i], want[i], shared.ErrSchema)
		}
	}
	return nil
}

// ParseInventoryCSV validates the header and maps data rows to stock items.
// The S/N and Status columns are positional only and are discarded; ids and
// timestamps are assigned on insert.
func ParseInventoryCSV(data []byte) ([]stock.Item, error) {
	rows := splitCSV(data)
	if len(rows) == 0 {
		return nil, fmt.Errorf("transfer: empty file: %w", shared.ErrSchema)
	}
	if err := checkHeader(rows[0], inventoryHeader); err != nil {
		return nil, err
	}
	items := make([]stock.Item, 0, len(rows)-1)
	for n, row := range rows[1:] {
		rowNum := n + 2
		if len(row) != len(inventoryHeader) {
			return nil, fmt.Errorf("transfer: row %d has %d columns, expected %d: %w", rowNum, len(row), len(inventoryHeader), shared.ErrFormat)
		}
		quantity, err := strconv.ParseInt(row[7], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("transfer: row %d: quantity %q is not a number: %w", rowNum, row[7], shared.ErrFormat)
		}
		criticalLevel, err := strconv.ParseInt(row[8], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("transfer: row %d: critical level %q is not a number: %w", rowNum, row[8], shared.ErrFormat)
		}
		if strings.TrimSpace(row[1]) == "" {
			return nil, fmt.Errorf("transfer: row %d: name is required: %w", rowNum, shared.ErrFormat)
		}
		items = append(items, stock.Item{
			Name:           strings.TrimSpace(row[1]),
			Classification: strings.TrimSpace(row[2]),
			SubClass:       strings.TrimSpace(row[3]),
			Expiry:         strings.TrimSpace(row[4]),
			PackSize:       strings.TrimSpace(row[5]),
			Unit:           strings.TrimSpace(row[6]),
			Quantity:       quantity,
			CriticalLevel:  criticalLevel,
		})
	}
	return items, nil
}

// ParseDispensesCSV validates the header and maps data rows to dispense
// records. Ids are assigned on insert; the drug reference is not recoverable
// from CSV and stays zero.
func ParseDispensesCSV(data []byte) ([]dispense.Record, error) {
	rows := splitCSV(data)
	if len(rows) == 0 {
		return nil, fmt.Errorf("transfer: empty file: %w", shared.ErrSchema)
	}
	if err := checkHeader(rows[0], dispensesHeader); err != nil {
		return nil, err
	}
	records := make([]dispense.Record, 0, len(rows)-1)
	for n, row := range rows[1:] {
		rowNum := n + 2
		if len(row) != len(dispensesHeader) {
			return nil, fmt.Errorf("transfer: row %d has %d columns, expected %d: %w", rowNum, len(row), len(dispensesHeader), shared.ErrFormat)
		}
		date, err := time.Parse(DateLayout, row[1])
		if err != nil {
			return nil, fmt.Errorf("transfer: row %d: date %q is not a timestamp: %w", rowNum, row[1], shared.ErrFormat)
		}
		quantity, err := strconv.ParseInt(row[7], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("transfer: row %d: quantity %q is not a number: %w", rowNum, row[7], shared.ErrFormat)
		}
		records = append(records, dispense.Record{
			DateDispensed:     date,
			DrugName:          strings.TrimSpace(row[2]),
			Classification:    strings.TrimSpace(row[3]),
			SubClass:          strings.TrimSpace(row[4]),
			Expiry:            strings.TrimSpace(row[5]),
			DrugUnit:          strings.TrimSpace(row[6]),
			QuantityDispensed: quantity,
			Department:        strings.TrimSpace(row[8]),
			ApprovedBy:        strings.TrimSpace(row[9]),
		})
	}
	return records, nil
}
