package stock

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pharmledger/pharmledger/internal/shared"
)

type memoryRepo struct {
	items  map[int64]Item
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: make(map[int64]Item)}
}

type memoryTx struct {
	repo *memoryRepo
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryTx{repo: r})
}

func (r *memoryRepo) List(ctx context.Context) ([]Item, error) {
	items := make([]Item, 0, len(r.items))
	for _, item := range r.items {
		items = append(items, item)
	}
	return items, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Item, error) {
	return (&memoryTx{repo: r}).Get(ctx, id)
}

func (tx *memoryTx) Get(ctx context.Context, id int64) (Item, error) {
	item, ok := tx.repo.items[id]
	if !ok {
		return Item{}, fmt.Errorf("stock: item %d: %w", id, shared.ErrNotFound)
	}
	return item, nil
}

func (tx *memoryTx) Insert(ctx context.Context, item Item) (int64, error) {
	tx.repo.nextID++
	item.ID = tx.repo.nextID
	tx.repo.items[item.ID] = item
	return item.ID, nil
}

func (tx *memoryTx) Update(ctx context.Context, item Item) error {
	if _, ok := tx.repo.items[item.ID]; !ok {
		return fmt.Errorf("stock: item %d: %w", item.ID, shared.ErrNotFound)
	}
	tx.repo.items[item.ID] = item
	return nil
}

func (tx *memoryTx) Delete(ctx context.Context, id int64) error {
	if _, ok := tx.repo.items[id]; !ok {
		return fmt.Errorf("stock: item %d: %w", id, shared.ErrNotFound)
	}
	delete(tx.repo.items, id)
	return nil
}

type staticAuthorizer struct {
	code string
}

func (a staticAuthorizer) VerifyAuthorization(ctx context.Context, code string) (bool, error) {
	return code == a.code, nil
}

func newTestService() (*Service, *memoryRepo) {
	repo := newMemoryRepo()
	return NewService(repo, staticAuthorizer{code: "4321"}), repo
}

func TestCreateAssignsIDAndTimestamps(t *testing.T) {
	svc, repo := newTestService()
	item, err := svc.Create(context.Background(), ItemInput{
		Name:          "  Paracetamol 500mg ",
		Quantity:      40,
		CriticalLevel: 10,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), item.ID)
	require.Equal(t, "Paracetamol 500mg", item.Name)
	require.False(t, item.CreatedAt.IsZero())
	require.Equal(t, item.CreatedAt, item.UpdatedAt)
	require.Len(t, repo.items, 1)
}

func TestCreateValidation(t *testing.T) {
	svc, repo := newTestService()
	cases := []struct {
		name  string
		input ItemInput
	}{
		{"blank name", ItemInput{Name: "   "}},
		{"negative quantity", ItemInput{Name: "X", Quantity: -1}},
		{"negative critical level", ItemInput{Name: "X", CriticalLevel: -1}},
		{"bad expiry", ItemInput{Name: "X", Expiry: "next week"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.input)
			require.ErrorIs(t, err, shared.ErrValidation)
		})
	}
	require.Empty(t, repo.items)
}

func TestEditRequiresAuthorization(t *testing.T) {
	svc, _ := newTestService()
	created, err := svc.Create(context.Background(), ItemInput{Name: "Ibuprofen", Quantity: 5})
	require.NoError(t, err)

	_, err = svc.Edit(context.Background(), created.ID, ItemInput{Name: "Ibuprofen 200mg", Quantity: 8}, "0000")
	require.ErrorIs(t, err, shared.ErrUnauthorized)

	updated, err := svc.Edit(context.Background(), created.ID, ItemInput{Name: "Ibuprofen 200mg", Quantity: 8}, "4321")
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, created.CreatedAt, updated.CreatedAt)
	require.Equal(t, "Ibuprofen 200mg", updated.Name)
	require.Equal(t, int64(8), updated.Quantity)
}

func TestEditMissingItem(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Edit(context.Background(), 42, ItemInput{Name: "Ghost"}, "4321")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestIncrement(t *testing.T) {
	svc, _ := newTestService()
	created, err := svc.Create(context.Background(), ItemInput{Name: "Gauze", Quantity: 3})
	require.NoError(t, err)

	updated, err := svc.Increment(context.Background(), created.ID, 7, "4321")
	require.NoError(t, err)
	require.Equal(t, int64(10), updated.Quantity)

	_, err = svc.Increment(context.Background(), created.ID, 0, "4321")
	require.ErrorIs(t, err, shared.ErrValidation)
	_, err = svc.Increment(context.Background(), created.ID, -4, "4321")
	require.ErrorIs(t, err, shared.ErrValidation)
	_, err = svc.Increment(context.Background(), created.ID, 5, "1111")
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestDelete(t *testing.T) {
	svc, repo := newTestService()
	created, err := svc.Create(context.Background(), ItemInput{Name: "Syringe", Quantity: 12})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(context.Background(), created.ID, "9998"), shared.ErrUnauthorized)
	require.Len(t, repo.items, 1)

	require.NoError(t, svc.Delete(context.Background(), created.ID, "4321"))
	require.Empty(t, repo.items)

	require.ErrorIs(t, svc.Delete(context.Background(), created.ID, "4321"), shared.ErrNotFound)
}
