// Package transfer moves both record families in and out of the store as a
// unit: CSV import/export, the JSON backup document, and XLSX workbooks.
package transfer

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pharmledger/pharmledger/internal/dispense"
	"github.com/pharmledger/pharmledger/internal/platform/db"
	"github.com/pharmledger/pharmledger/internal/stock"
)

// Repository persists bulk writes for imports and restores.
type Repository struct {
	sdb *sqlx.DB
}

// NewRepository constructs Repository.
func NewRepository(sdb *sqlx.DB) *Repository {
	return &Repository{sdb: sdb}
}

// TxRepository exposes the bulk operations used by imports and restores.
// A full-mode clear and the subsequent inserts share one transaction so a
// failed import never leaves a half-replaced collection.
type TxRepository interface {
	ClearItems(ctx context.Context) error
	ClearRecords(ctx context.Context) error
	InsertItem(ctx context.Context, item stock.Item) error
	PutItem(ctx context.Context, item stock.Item) error
	PutRecord(ctx context.Context, rec dispense.Record) error
}

type txRepo struct {
	tx *sqlx.Tx
}

// WithTx executes the callback inside a single transaction spanning both
// collections.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.sdb, func(tx *sqlx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

// ListItems returns every stock item ordered by id.
func (r *Repository) ListItems(ctx context.Context) ([]stock.Item, error) {
	var items []stock.Item
	if err := r.sdb.SelectContext(ctx, &items, `SELECT * FROM stock_items ORDER BY id`); err != nil {
		return nil, fmt.Errorf("transfer: list items: %w", err)
	}
	return items, nil
}

// ListRecords returns every dispense record, newest first.
func (r *Repository) ListRecords(ctx context.Context) ([]dispense.Record, error) {
	var records []dispense.Record
	if err := r.sdb.SelectContext(ctx, &records, `SELECT * FROM dispense_records ORDER BY date_dispensed DESC`); err != nil {
		return nil, fmt.Errorf("transfer: list records: %w", err)
	}
	return records, nil
}

func (r *txRepo) ClearItems(ctx context.Context) error {
	if _, err := r.tx.ExecContext(ctx, `DELETE FROM stock_items`); err != nil {
		return fmt.Errorf("transfer: clear items: %w", err)
	}
	return nil
}

func (r *txRepo) ClearRecords(ctx context.Context) error {
	if _, err := r.tx.ExecContext(ctx, `DELETE FROM dispense_records`); err != nil {
		return fmt.Errorf("transfer: clear records: %w", err)
	}
	return nil
}

// InsertItem inserts a row without an id, letting the store assign one.
// CSV rows carry no ids.
func (r *txRepo) InsertItem(ctx context.Context, item stock.Item) error {
	_, err := r.tx.NamedExecContext(ctx, `
		INSERT INTO stock_items (name, classification, sub_class, expiry, pack_size, unit, quantity, critical_level, created_at, updated_at)
		VALUES (:name, :classification, :sub_class, :expiry, :pack_size, :unit, :quantity, :critical_level, :created_at, :updated_at)`, item)
	if err != nil {
		return fmt.Errorf("transfer: insert item %q: %w", item.Name, err)
	}
	return nil
}

// PutItem upserts a row under its backup-supplied id.
func (r *txRepo) PutItem(ctx context.Context, item stock.Item) error {
	_, err := r.tx.NamedExecContext(ctx, `
		INSERT INTO stock_items (id, name, classification, sub_class, expiry, pack_size, unit, quantity, critical_level, created_at, updated_at)
		VALUES (:id, :name, :classification, :sub_class, :expiry, :pack_size, :unit, :quantity, :critical_level, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name, classification = excluded.classification,
			sub_class = excluded.sub_class, expiry = excluded.expiry,
			pack_size = excluded.pack_size, unit = excluded.unit,
			quantity = excluded.quantity, critical_level = excluded.critical_level,
			updated_at = excluded.updated_at`, item)
	if err != nil {
		return fmt.Errorf("transfer: put item %d: %w", item.ID, err)
	}
	return nil
}

// PutRecord upserts a dispense record under its id.
func (r *txRepo) PutRecord(ctx context.Context, rec dispense.Record) error {
	_, err := r.tx.NamedExecContext(ctx, `
		INSERT INTO dispense_records (id, drug_id, drug_name, classification, sub_class, expiry, drug_unit, department, quantity_dispensed, date_dispensed, approved_by)
		VALUES (:id, :drug_id, :drug_name, :classification, :sub_class, :expiry, :drug_unit, :department, :quantity_dispensed, :date_dispensed, :approved_by)
		ON CONFLICT (id) DO UPDATE SET
			drug_id = excluded.drug_id, drug_name = excluded.drug_name,
			classification = excluded.classification, sub_class = excluded.sub_class,
			expiry = excluded.expiry, drug_unit = excluded.drug_unit,
			department = excluded.department,
			quantity_dispensed = excluded.quantity_dispensed,
			date_dispensed = excluded.date_dispensed,
			approved_by = excluded.approved_by`, rec)
	if err != nil {
		return fmt.Errorf("transfer: put record %s: %w", rec.ID, err)
	}
	return nil
}
