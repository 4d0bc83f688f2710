package dispense

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pharmledger/pharmledger/internal/shared"
	"github.com/pharmledger/pharmledger/internal/stock"
)

// DefaultRecentLimit bounds Recent listings when no limit is given.
const DefaultRecentLimit = 20

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	List(ctx context.Context) ([]Record, error)
	Recent(ctx context.Context, limit int) ([]Record, error)
	ListItems(ctx context.Context) ([]stock.Item, error)
}

// Authorizer verifies an authorization code before destructive operations.
type Authorizer interface {
	VerifyAuthorization(ctx context.Context, code string) (bool, error)
}

// Service owns the append-only dispense log. Records are created only in
// lockstep with a stock deduction; both commit together or neither does.
type Service struct {
	repo RepositoryPort
	auth Authorizer
}

// NewService builds Service.
func NewService(repo RepositoryPort, auth Authorizer) *Service {
	return &Service{repo: repo, auth: auth}
}

// Input describes a dispense request.
type Input struct {
	DrugID     int64
	Department string
	Quantity   int64
	ApprovedBy string
}

// RecordDispense deducts the quantity from the referenced item and appends a
// record snapshotting the item's descriptive fields, atomically. State is
// re-read inside the transaction, so the stock check always runs against the
// current quantity.
func (s *Service) RecordDispense(ctx context.Context, input Input) (Record, error) {
	input.Department = strings.TrimSpace(input.Department)
	input.ApprovedBy = strings.TrimSpace(input.ApprovedBy)
	if input.Department == "" {
		return Record{}, fmt.Errorf("dispense: department is required: %w", shared.ErrValidation)
	}
	if input.ApprovedBy == "" {
		return Record{}, fmt.Errorf("dispense: approvedBy is required: %w", shared.ErrValidation)
	}
	if input.Quantity <= 0 {
		return Record{}, fmt.Errorf("dispense: quantity must be positive: %w", shared.ErrValidation)
	}

	var rec Record
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		item, err := tx.GetItem(ctx, input.DrugID)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := item.ApplyDispense(input.Quantity, now); err != nil {
			return err
		}
		if err := tx.UpdateItem(ctx, item); err != nil {
			return err
		}
		rec = Record{
			ID:                uuid.NewString(),
			DrugID:            item.ID,
			DrugName:          item.Name,
			Classification:    item.Classification,
			SubClass:          item.SubClass,
			Expiry:            item.Expiry,
			DrugUnit:          item.Unit,
			Department:        input.Department,
			QuantityDispensed: input.Quantity,
			DateDispensed:     now,
			ApprovedBy:        input.ApprovedBy,
		}
		return tx.InsertRecord(ctx, rec)
	})
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// DeleteDispense removes a record from the log. Deducted stock is not
// restored: deletion corrects the log, not inventory. Requires authorization.
func (s *Service) DeleteDispense(ctx context.Context, id, authCode string) error {
	ok, err := s.auth.VerifyAuthorization(ctx, authCode)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("dispense: %w", shared.ErrUnauthorized)
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetRecord(ctx, id); err != nil {
			return err
		}
		return tx.DeleteRecord(ctx, id)
	})
}

// Recent returns the limit most recently dispensed records, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return s.repo.Recent(ctx, limit)
}

// List returns every dispense record.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	return s.repo.List(ctx)
}

// Option is a stock item entry for the dispense form dropdown.
type Option struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

// Options lists every stock item alphabetically with its current quantity.
func (s *Service) Options(ctx context.Context) ([]Option, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	stock.SortByName(items)
	options := make([]Option, 0, len(items))
	for _, item := range items {
		options = append(options, Option{ID: item.ID, Name: item.Name, Quantity: item.Quantity})
	}
	return options, nil
}
