package stock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pharmledger/pharmledger/internal/platform/db"
	"github.com/pharmledger/pharmledger/internal/shared"
)

// Repository persists stock items in the local SQLite store.
type Repository struct {
	sdb *sqlx.DB
}

// NewRepository constructs Repository.
func NewRepository(sdb *sqlx.DB) *Repository {
	return &Repository{sdb: sdb}
}

// TxRepository exposes transactional operations used by the service.
type TxRepository interface {
	Get(ctx context.Context, id int64) (Item, error)
	Insert(ctx context.Context, item Item) (int64, error)
	Update(ctx context.Context, item Item) error
	Delete(ctx context.Context, id int64) error
}

type txRepo struct {
	tx *sqlx.Tx
}

// WithTx executes the callback inside a single transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.sdb, func(tx *sqlx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

// List returns every stock item.
func (r *Repository) List(ctx context.Context) ([]Item, error) {
	var items []Item
	if err := r.sdb.SelectContext(ctx, &items, `SELECT * FROM stock_items ORDER BY id`); err != nil {
		return nil, fmt.Errorf("stock: list items: %w", err)
	}
	return items, nil
}

// Get returns a single stock item by id.
func (r *Repository) Get(ctx context.Context, id int64) (Item, error) {
	return getItem(ctx, r.sdb, id)
}

func (r *txRepo) Get(ctx context.Context, id int64) (Item, error) {
	return getItem(ctx, r.tx, id)
}

func (r *txRepo) Insert(ctx context.Context, item Item) (int64, error) {
	res, err := r.tx.NamedExecContext(ctx, `
		INSERT INTO stock_items (name, classification, sub_class, expiry, pack_size, unit, quantity, critical_level, created_at, updated_at)
		VALUES (:name, :classification, :sub_class, :expiry, :pack_size, :unit, :quantity, :critical_level, :created_at, :updated_at)`, item)
	if err != nil {
		return 0, fmt.Errorf("stock: insert item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("stock: insert item id: %w", err)
	}
	return id, nil
}

func (r *txRepo) Update(ctx context.Context, item Item) error {
	res, err := r.tx.NamedExecContext(ctx, `
		UPDATE stock_items
		SET name = :name, classification = :classification, sub_class = :sub_class,
		    expiry = :expiry, pack_size = :pack_size, unit = :unit,
		    quantity = :quantity, critical_level = :critical_level, updated_at = :updated_at
		WHERE id = :id`, item)
	if err != nil {
		return fmt.Errorf("stock: update item %d: %w", item.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("stock: item %d: %w", item.ID, shared.ErrNotFound)
	}
	return nil
}

func (r *txRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.tx.ExecContext(ctx, `DELETE FROM stock_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("stock: delete item %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("stock: item %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func getItem(ctx context.Context, q sqlx.QueryerContext, id int64) (Item, error) {
	var item Item
	err := sqlx.GetContext(ctx, q, &item, `SELECT * FROM stock_items WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Item{}, fmt.Errorf("stock: item %d: %w", id, shared.ErrNotFound)
		}
		return Item{}, fmt.Errorf("stock: get item %d: %w", id, err)
	}
	return item, nil
}
