package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pharmledger/pharmledger/internal/dispense"
	"github.com/pharmledger/pharmledger/internal/reports"
	"github.com/pharmledger/pharmledger/internal/shared"
	"github.com/pharmledger/pharmledger/internal/stock"
)

// Import and restore modes. Merge upserts onto existing data; full clears the
// target collection first.
const (
	ModeMerge = "merge"
	ModeFull  = "full"
)

// ParseMode normalizes a mode parameter, defaulting to merge.
func ParseMode(mode string) (string, error) {
	switch mode {
	case "", ModeMerge:
		return ModeMerge, nil
	case ModeFull:
		return ModeFull, nil
	}
	return "", fmt.Errorf("transfer: unknown mode %q: %w", mode, shared.ErrValidation)
}

// RepositoryPort abstracts bulk persistence for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListItems(ctx context.Context) ([]stock.Item, error)
	ListRecords(ctx context.Context) ([]dispense.Record, error)
}

// SettingsPort carries the settings snapshot into and out of backups.
type SettingsPort interface {
	Snapshot(ctx context.Context) (pin, theme string, err error)
	Restore(ctx context.Context, pin, theme string) error
}

// Service implements bulk import, export, backup and restore.
type Service struct {
	repo     RepositoryPort
	settings SettingsPort
	now      func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, settings SettingsPort) *Service {
	return &Service{repo: repo, settings: settings, now: time.Now}
}

// InventoryRows produces the filtered inventory row-set shared by the CSV and
// XLSX exports. Exports always see the same content and order as the table.
func (s *Service) InventoryRows(ctx context.Context, filter reports.InventoryFilter) ([]reports.InventoryRow, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	filtered, err := reports.FilterInventory(items, filter, now)
	if err != nil {
		return nil, err
	}
	return reports.InventoryRows(filtered, now, 0), nil
}

// DispenseRows produces the filtered dispense row-set plus its summary.
func (s *Service) DispenseRows(ctx context.Context, filter reports.DispenseFilter) ([]reports.DispenseRow, reports.Summary, error) {
	records, err := s.repo.ListRecords(ctx)
	if err != nil {
		return nil, reports.Summary{}, err
	}
	filtered, err := reports.FilterDispenses(records, filter, s.now())
	if err != nil {
		return nil, reports.Summary{}, err
	}
	return reports.DispenseRows(filtered, 0), reports.Summarize(filtered), nil
}

// ImportInventory parses a CSV file and writes all rows in one transaction.
// A parse failure aborts before any write.
func (s *Service) ImportInventory(ctx context.Context, data []byte, mode string) (int, error) {
	mode, err := ParseMode(mode)
	if err != nil {
		return 0, err
	}
	items, err := ParseInventoryCSV(data)
	if err != nil {
		return 0, err
	}
	now := s.now().UTC()
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if mode == ModeFull {
			if err := tx.ClearItems(ctx); err != nil {
				return err
			}
		}
		for _, item := range items {
			item.CreatedAt = now
			item.UpdatedAt = now
			if err := tx.InsertItem(ctx, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// ImportDispenses parses a CSV file and writes all rows in one transaction.
// Rows get fresh ids; the CSV carries no drug reference to recover.
func (s *Service) ImportDispenses(ctx context.Context, data []byte, mode string) (int, error) {
	mode, err := ParseMode(mode)
	if err != nil {
		return 0, err
	}
	records, err := ParseDispensesCSV(data)
	if err != nil {
		return 0, err
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if mode == ModeFull {
			if err := tx.ClearRecords(ctx); err != nil {
				return err
			}
		}
		for _, rec := range records {
			rec.ID = uuid.NewString()
			if err := tx.PutRecord(ctx, rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// ExportBackup assembles the full-state backup document.
func (s *Service) ExportBackup(ctx context.Context) (Backup, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return Backup{}, err
	}
	records, err := s.repo.ListRecords(ctx)
	if err != nil {
		return Backup{}, err
	}
	pin, theme, err := s.settings.Snapshot(ctx)
	if err != nil {
		return Backup{}, err
	}
	return NewBackup(items, records, pin, theme, s.now().UTC()), nil
}

// RestoreResult reports how many rows a restore applied.
type RestoreResult struct {
	Items   int `json:"items"`
	Records int `json:"records"`
}

// Restore applies a backup document. Full mode clears both collections first
// and requires explicit confirmation; merge upserts by id. Settings apply
// after the collections commit.
func (s *Service) Restore(ctx context.Context, data []byte, mode string, confirm bool) (RestoreResult, error) {
	mode, err := ParseMode(mode)
	if err != nil {
		return RestoreResult{}, err
	}
	if mode == ModeFull && !confirm {
		return RestoreResult{}, fmt.Errorf("transfer: full restore replaces all data and must be confirmed: %w", shared.ErrValidation)
	}
	b, err := ParseBackup(data)
	if err != nil {
		return RestoreResult{}, err
	}
	items, records := *b.Drugs, *b.Dispenses
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if mode == ModeFull {
			if err := tx.ClearItems(ctx); err != nil {
				return err
			}
			if err := tx.ClearRecords(ctx); err != nil {
				return err
			}
		}
		for _, item := range items {
			if err := tx.PutItem(ctx, item); err != nil {
				return err
			}
		}
		for _, rec := range records {
			if rec.ID == "" {
				rec.ID = uuid.NewString()
			}
			if err := tx.PutRecord(ctx, rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return RestoreResult{}, err
	}
	if b.Settings != nil {
		if err := s.settings.Restore(ctx, b.Settings.PIN, b.Settings.Theme); err != nil {
			return RestoreResult{}, err
		}
	}
	return RestoreResult{Items: len(items), Records: len(records)}, nil
}
