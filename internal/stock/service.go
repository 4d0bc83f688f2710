package stock

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pharmledger/pharmledger/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	List(ctx context.Context) ([]Item, error)
	Get(ctx context.Context, id int64) (Item, error)
}

// Authorizer verifies an authorization code before destructive operations.
type Authorizer interface {
	VerifyAuthorization(ctx context.Context, code string) (bool, error)
}

// Service owns stock item records and the non-negative quantity invariant.
type Service struct {
	repo RepositoryPort
	auth Authorizer
}

// NewService builds Service.
func NewService(repo RepositoryPort, auth Authorizer) *Service {
	return &Service{repo: repo, auth: auth}
}

// ItemInput carries the editable fields of a stock item.
type ItemInput struct {
	Name           string
	Classification string
	SubClass       string
	Expiry         string
	PackSize       string
	Unit           string
	Quantity       int64
	CriticalLevel  int64
}

func (in *ItemInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Classification = strings.TrimSpace(in.Classification)
	in.SubClass = strings.TrimSpace(in.SubClass)
	in.Expiry = strings.TrimSpace(in.Expiry)
	in.PackSize = strings.TrimSpace(in.PackSize)
	in.Unit = strings.TrimSpace(in.Unit)
	if in.Name == "" {
		return fmt.Errorf("stock: name is required: %w", shared.ErrValidation)
	}
	if in.Quantity < 0 {
		return fmt.Errorf("stock: quantity must not be negative: %w", shared.ErrValidation)
	}
	if in.CriticalLevel < 0 {
		return fmt.Errorf("stock: critical level must not be negative: %w", shared.ErrValidation)
	}
	if in.Expiry != "" {
		if _, err := time.Parse(ExpiryLayout, in.Expiry); err != nil {
			return fmt.Errorf("stock: expiry must be a %s date: %w", ExpiryLayout, shared.ErrValidation)
		}
	}
	return nil
}

// Create validates and stores a new item, assigning id and timestamps.
func (s *Service) Create(ctx context.Context, input ItemInput) (Item, error) {
	if err := input.normalize(); err != nil {
		return Item{}, err
	}
	now := time.Now().UTC()
	item := Item{
		Name:           input.Name,
		Classification: input.Classification,
		SubClass:       input.SubClass,
		Expiry:         input.Expiry,
		PackSize:       input.PackSize,
		Unit:           input.Unit,
		Quantity:       input.Quantity,
		CriticalLevel:  input.CriticalLevel,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.Insert(ctx, item)
		if err != nil {
			return err
		}
		item.ID = id
		return nil
	})
	if err != nil {
		return Item{}, err
	}
	return item, nil
}

// Edit overwrites every editable field of an existing item, preserving id
// and createdAt and refreshing updatedAt. Requires authorization.
func (s *Service) Edit(ctx context.Context, id int64, input ItemInput, authCode string) (Item, error) {
	if err := s.authorize(ctx, authCode); err != nil {
		return Item{}, err
	}
	if err := input.normalize(); err != nil {
		return Item{}, err
	}
	var updated Item
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		item, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}
		item.Name = input.Name
		item.Classification = input.Classification
		item.SubClass = input.SubClass
		item.Expiry = input.Expiry
		item.PackSize = input.PackSize
		item.Unit = input.Unit
		item.Quantity = input.Quantity
		item.CriticalLevel = input.CriticalLevel
		item.UpdatedAt = time.Now().UTC()
		if err := tx.Update(ctx, item); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return Item{}, err
	}
	return updated, nil
}

// Increment adds a positive amount to an item's quantity. Requires authorization.
func (s *Service) Increment(ctx context.Context, id, amount int64, authCode string) (Item, error) {
	if err := s.authorize(ctx, authCode); err != nil {
		return Item{}, err
	}
	if amount <= 0 {
		return Item{}, fmt.Errorf("stock: increment amount must be positive: %w", shared.ErrValidation)
	}
	var updated Item
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		item, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}
		item.Quantity += amount
		item.UpdatedAt = time.Now().UTC()
		if err := tx.Update(ctx, item); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return Item{}, err
	}
	return updated, nil
}

// Delete removes an item. Historical dispense records keep their snapshots
// and are not cascaded. Requires authorization.
func (s *Service) Delete(ctx context.Context, id int64, authCode string) error {
	if err := s.authorize(ctx, authCode); err != nil {
		return err
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.Get(ctx, id); err != nil {
			return err
		}
		return tx.Delete(ctx, id)
	})
}

// Get returns a single item.
func (s *Service) Get(ctx context.Context, id int64) (Item, error) {
	return s.repo.Get(ctx, id)
}

// List returns every item.
func (s *Service) List(ctx context.Context) ([]Item, error) {
	return s.repo.List(ctx)
}

func (s *Service) authorize(ctx context.Context, code string) error {
	ok, err := s.auth.VerifyAuthorization(ctx, code)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("stock: %w", shared.ErrUnauthorized)
	}
	return nil
}
