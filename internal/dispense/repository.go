package dispense

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pharmledger/pharmledger/internal/platform/db"
	"github.com/pharmledger/pharmledger/internal/shared"
	"github.com/pharmledger/pharmledger/internal/stock"
)

// Repository persists dispense records in the local SQLite store.
type Repository struct {
	sdb *sqlx.DB
}

// NewRepository constructs Repository.
func NewRepository(sdb *sqlx.DB) *Repository {
	return &Repository{sdb: sdb}
}

// TxRepository exposes the transactional operations used by the service: the
// stock deduction and the record insert run against the same transaction.
type TxRepository interface {
	GetItem(ctx context.Context, id int64) (stock.Item, error)
	UpdateItem(ctx context.Context, item stock.Item) error
	GetRecord(ctx context.Context, id string) (Record, error)
	InsertRecord(ctx context.Context, rec Record) error
	DeleteRecord(ctx context.Context, id string) error
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

// List returns every dispense record.
func (r *Repository) List(ctx context.Context) ([]Record, error) {
	var records []Record
	if err := r.sdb.SelectContext(ctx, &records, `SELECT * FROM dispense_records ORDER BY date_dispensed DESC`); err != nil {
		return nil, fmt.Errorf("dispense: list records: %w", err)
	}
	return records, nil
}

// Recent returns the most recently dispensed records, newest first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]Record, error) {
	var records []Record
	err := r.sdb.SelectContext(ctx, &records,
		`SELECT * FROM dispense_records ORDER BY date_dispensed DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("dispense: recent records: %w", err)
	}
	return records, nil
}

// ListItems returns every stock item, used for the dispense form options.
func (r *Repository) ListItems(ctx context.Context) ([]stock.Item, error) {
	var items []stock.Item
	if err := r.sdb.SelectContext(ctx, &items, `SELECT * FROM stock_items`); err != nil {
		return nil, fmt.Errorf("dispense: list items: %w", err)
	}
	return items, nil
}

func (r *txRepo) GetItem(ctx context.Context, id int64) (stock.Item, error) {
	var item stock.Item
	err := r.tx.GetContext(ctx, &item, `SELECT * FROM stock_items WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return stock.Item{}, fmt.Errorf("dispense: item %d: %w", id, shared.ErrNotFound)
		}
		return stock.Item{}, fmt.Errorf("dispense: get item %d: %w", id, err)
	}
	return item, nil
}

func (r *txRepo) UpdateItem(ctx context.Context, item stock.Item) error {
	_, err := r.tx.ExecContext(ctx,
		`UPDATE stock_items SET quantity = ?, updated_at = ? WHERE id = ?`,
		item.Quantity, item.UpdatedAt, item.ID)
	if err != nil {
		return fmt.Errorf("dispense: update item %d: %w", item.ID, err)
	}
	return nil
}

func (r *txRepo) GetRecord(ctx context.Context, id string) (Record, error) {
	var rec Record
	err := r.tx.GetContext(ctx, &rec, `SELECT * FROM dispense_records WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, fmt.Errorf("dispense: record %s: %w", id, shared.ErrNotFound)
		}
		return Record{}, fmt.Errorf("dispense: get record %s: %w", id, err)
	}
	return rec, nil
}

func (r *txRepo) InsertRecord(ctx context.Context, rec Record) error {
	_, err := r.tx.NamedExecContext(ctx, `
		INSERT INTO dispense_records (id, drug_id, drug_name, classification, sub_class, expiry, drug_unit, department, quantity_dispensed, date_dispensed, approved_by)
		VALUES (:id, :drug_id, :drug_name, :classification, :sub_class, :expiry, :drug_unit, :department, :quantity_dispensed, :date_dispensed, :approved_by)`, rec)
	if err != nil {
		return fmt.Errorf("dispense: insert record: %w", err)
	}
	return nil
}

func (r *txRepo) DeleteRecord(ctx context.Context, id string) error {
	res, err := r.tx.ExecContext(ctx, `DELETE FROM dispense_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("dispense: delete record %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("dispense: record %s: %w", id, shared.ErrNotFound)
	}
	return nil
}
