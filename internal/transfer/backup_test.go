package transfer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pharmledger/pharmledger/internal/dispense"
	"github.com/pharmledger/pharmledger/internal/shared"
	"github.com/pharmledger/pharmledger/internal/stock"
)

// memoryRepo emulates transaction semantics: the callback mutates copies of
// both collections and the copies replace the originals only on success.
type memoryRepo struct {
	items   map[int64]stock.Item
	records map[string]dispense.Record
	nextID  int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: make(map[int64]stock.Item), records: make(map[string]dispense.Record)}
}

type memoryTx struct {
	repo    *memoryRepo
	items   map[int64]stock.Item
	records map[string]dispense.Record
	nextID  int64
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx := &memoryTx{
		repo:    r,
		items:   make(map[int64]stock.Item, len(r.items)),
		records: make(map[string]dispense.Record, len(r.records)),
		nextID:  r.nextID,
	}
	for id, item := range r.items {
		tx.items[id] = item
	}
	for id, rec := range r.records {
		tx.records[id] = rec
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	r.items = tx.items
	r.records = tx.records
	r.nextID = tx.nextID
	return nil
}

func (r *memoryRepo) ListItems(ctx context.Context) ([]stock.Item, error) {
	items := make([]stock.Item, 0, len(r.items))
	for _, item := range r.items {
		items = append(items, item)
	}
	return items, nil
}

func (r *memoryRepo) ListRecords(ctx context.Context) ([]dispense.Record, error) {
	records := make([]dispense.Record, 0, len(r.records))
	for _, rec := range r.records {
		records = append(records, rec)
	}
	return records, nil
}

func (tx *memoryTx) ClearItems(ctx context.Context) error {
	tx.items = make(map[int64]stock.Item)
	return nil
}

func (tx *memoryTx) ClearRecords(ctx context.Context) error {
	tx.records = make(map[string]dispense.Record)
	return nil
}

func (tx *memoryTx) InsertItem(ctx context.Context, item stock.Item) error {
	tx.nextID++
	item.ID = tx.nextID
	tx.items[item.ID] = item
	return nil
}

func (tx *memoryTx) PutItem(ctx context.Context, item stock.Item) error {
	if item.ID > tx.nextID {
		tx.nextID = item.ID
	}
	tx.items[item.ID] = item
	return nil
}

func (tx *memoryTx) PutRecord(ctx context.Context, rec dispense.Record) error {
	tx.records[rec.ID] = rec
	return nil
}

type memorySettings struct {
	pin   string
	theme string
}

func (s *memorySettings) Snapshot(ctx context.Context) (string, string, error) {
	return s.pin, s.theme, nil
}

func (s *memorySettings) Restore(ctx context.Context, pin, theme string) error {
	if pin != "" {
		s.pin = pin
	}
	if theme == "light" || theme == "dark" {
		s.theme = theme
	}
	return nil
}

func newTestService() (*Service, *memoryRepo, *memorySettings) {
	repo := newMemoryRepo()
	st := &memorySettings{pin: "4321", theme: "light"}
	svc := NewService(repo, st)
	svc.now = func() time.Time { return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC) }
	return svc, repo, st
}

func TestExportBackup(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.items[1] = stock.Item{ID: 1, Name: "Paracetamol", Quantity: 50}
	repo.records["r1"] = dispense.Record{ID: "r1", DrugName: "Paracetamol", QuantityDispensed: 5}

	b, err := svc.ExportBackup(context.Background())
	require.NoError(t, err)
	require.Equal(t, BackupVersion, b.Meta.Version)
	require.False(t, b.Meta.ExportedAt.IsZero())
	require.NotNil(t, b.Settings)
	require.Equal(t, "4321", b.Settings.PIN)
	require.Equal(t, "light", b.Settings.Theme)
	require.Len(t, *b.Drugs, 1)
	require.Len(t, *b.Dispenses, 1)
}

func TestParseBackupMissingCollections(t *testing.T) {
	_, err := ParseBackup([]byte(`not json`))
	require.ErrorIs(t, err, shared.ErrFormat)

	_, err = ParseBackup([]byte(`{"meta":{"version":"1.1.0"},"dispenses":[]}`))
	require.ErrorIs(t, err, shared.ErrFormat)

	_, err = ParseBackup([]byte(`{"meta":{"version":"1.1.0"},"drugs":[]}`))
	require.ErrorIs(t, err, shared.ErrFormat)

	b, err := ParseBackup([]byte(`{"meta":{"version":"1.1.0"},"drugs":[],"dispenses":[]}`))
	require.NoError(t, err)
	require.Empty(t, *b.Drugs)
	require.Empty(t, *b.Dispenses)
}

func backupJSON(t *testing.T, b Backup) []byte {
	t.Helper()
	data, err := json.Marshal(b)
	require.NoError(t, err)
	return data
}

func TestRestoreFullRequiresConfirmation(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.items[1] = stock.Item{ID: 1, Name: "Existing", Quantity: 3}

	items := []stock.Item{{ID: 9, Name: "Restored", Quantity: 7}}
	records := []dispense.Record{}
	data := backupJSON(t, NewBackup(items, records, "", "", time.Now()))

	_, err := svc.Restore(context.Background(), data, ModeFull, false)
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Contains(t, repo.items, int64(1))

	result, err := svc.Restore(context.Background(), data, ModeFull, true)
	require.NoError(t, err)
	require.Equal(t, 1, result.Items)
	require.NotContains(t, repo.items, int64(1))
	require.Equal(t, "Restored", repo.items[9].Name)
}

func TestRestoreMergeUpsertsByID(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.items[1] = stock.Item{ID: 1, Name: "Old name", Quantity: 3}
	repo.items[2] = stock.Item{ID: 2, Name: "Untouched", Quantity: 8}

	items := []stock.Item{
		{ID: 1, Name: "New name", Quantity: 5},
		{ID: 3, Name: "Added", Quantity: 2},
	}
	records := []dispense.Record{{ID: "r1", DrugName: "Added", QuantityDispensed: 1}}
	data := backupJSON(t, NewBackup(items, records, "", "", time.Now()))

	result, err := svc.Restore(context.Background(), data, ModeMerge, false)
	require.NoError(t, err)
	require.Equal(t, 2, result.Items)
	require.Equal(t, 1, result.Records)
	require.Len(t, repo.items, 3)
	require.Equal(t, "New name", repo.items[1].Name)
	require.Equal(t, "Untouched", repo.items[2].Name)
	require.Equal(t, "Added", repo.items[3].Name)
	require.Contains(t, repo.records, "r1")
}

func TestRestoreAppliesSettingsAfterCollections(t *testing.T) {
	svc, _, st := newTestService()
	data := backupJSON(t, NewBackup([]stock.Item{}, []dispense.Record{}, "8642", "dark", time.Now()))

	_, err := svc.Restore(context.Background(), data, ModeMerge, false)
	require.NoError(t, err)
	require.Equal(t, "8642", st.pin)
	require.Equal(t, "dark", st.theme)
}

func TestRestoreUnknownMode(t *testing.T) {
	svc, _, _ := newTestService()
	data := backupJSON(t, NewBackup([]stock.Item{}, []dispense.Record{}, "", "", time.Now()))
	_, err := svc.Restore(context.Background(), data, "replace", false)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestImportInventoryModes(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.items[1] = stock.Item{ID: 1, Name: "Existing", Quantity: 3}
	repo.nextID = 1

	csv := []byte("S/N,Name,Classification,SubClass,Expiry,PackSize,Unit,Quantity,CriticalLevel,Status\n" +
		`"1","Imported","—","—","—","—","—","12","2","Ok"` + "\n")

	n, err := svc.ImportInventory(context.Background(), csv, ModeMerge)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Len(t, repo.items, 2)

	n, err = svc.ImportInventory(context.Background(), csv, ModeFull)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Len(t, repo.items, 1)
	for _, item := range repo.items {
		require.Equal(t, "Imported", item.Name)
		require.False(t, item.CreatedAt.IsZero())
	}
}

func TestImportInventoryAbortsBeforeWrites(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.items[1] = stock.Item{ID: 1, Name: "Existing", Quantity: 3}

	bad := []byte("Name,Quantity\nGhost,1\n")
	_, err := svc.ImportInventory(context.Background(), bad, ModeFull)
	require.ErrorIs(t, err, shared.ErrSchema)
	require.Len(t, repo.items, 1)
	require.Equal(t, "Existing", repo.items[1].Name)
}
