package transfer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pharmledger/pharmledger/internal/dispense"
	"github.com/pharmledger/pharmledger/internal/shared"
	"github.com/pharmledger/pharmledger/internal/stock"
)

// BackupVersion is the current backup document format version.
const BackupVersion = "1.1.0"

// BackupMeta describes a backup document.
type BackupMeta struct {
	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exportedAt"`
}

// BackupSettings is the settings snapshot carried in a backup.
type BackupSettings struct {
	PIN   string `json:"pin"`
	Theme string `json:"theme"`
}

// Backup is the full-state JSON document. The collection fields are pointers
// so a restore can distinguish an absent collection from an empty one.
type Backup struct {
	Meta      BackupMeta         `json:"meta"`
	Settings  *BackupSettings    `json:"settings,omitempty"`
	Drugs     *[]stock.Item      `json:"drugs"`
	Dispenses *[]dispense.Record `json:"dispenses"`
}

// NewBackup assembles a backup document from current state.
func NewBackup(items []stock.Item, records []dispense.Record, pin, theme string, now time.Time) Backup {
	return Backup{
		Meta:      BackupMeta{Version: BackupVersion, ExportedAt: now},
		Settings:  &BackupSettings{PIN: pin, Theme: theme},
		Drugs:     &items,
		Dispenses: &records,
	}
}

// ParseBackup decodes and structurally validates a backup document. Both
// collections must be present; settings are optional.
func ParseBackup(data []byte) (Backup, error) {
	var b Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return Backup{}, fmt.Errorf("transfer: backup is not valid JSON: %w", shared.ErrFormat)
	}
	if b.Drugs == nil {
		return Backup{}, fmt.Errorf("transfer: backup is missing the drugs collection: %w", shared.ErrFormat)
	}
	if b.Dispenses == nil {
		return Backup{}, fmt.Errorf("transfer: backup is missing the dispenses collection: %w", shared.ErrFormat)
	}
	return b, nil
}
