package stock

import (
	"fmt"
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/pharmledger/pharmledger/internal/shared"
)

// ExpiryLayout is the calendar-date format stored for item expiry values.
// An empty string means no expiry is recorded.
const ExpiryLayout = "2006-01-02"

// NearExpiryDays is the window, in days, within which an item counts as near expiry.
const NearExpiryDays = 5

// Item is a tracked drug or supply entity with a quantity on hand.
type Item struct {
	ID             int64     `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Classification string    `db:"classification" json:"classification"`
	SubClass       string    `db:"sub_class" json:"subClass"`
	Expiry         string    `db:"expiry" json:"expiry"`
	PackSize       string    `db:"pack_size" json:"packSize"`
	Unit           string    `db:"unit" json:"unit"`
	Quantity       int64     `db:"quantity" json:"quantity"`
	CriticalLevel  int64     `db:"critical_level" json:"criticalLevel"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// Status classifies quantity on hand against the critical level.
type Status string

const (
	// StatusOut means the item is out of stock.
	StatusOut Status = "Out"
	// StatusCritical means stock is at or below the critical level.
	StatusCritical Status = "Critical"
	// StatusOk means stock is above the critical level.
	StatusOk Status = "Ok"
)

// Status derives the stock status from quantity and critical level.
func (i Item) Status() Status {
	switch {
	case i.Quantity == 0:
		return StatusOut
	case i.Quantity <= i.CriticalLevel:
		return StatusCritical
	default:
		return StatusOk
	}
}

// ExpiryState classifies an expiry date relative to a reference day.
type ExpiryState string

const (
	// ExpiryNone means no expiry date is recorded; excluded from expiry filters.
	ExpiryNone ExpiryState = ""
	// ExpiryExpired means the expiry date is before today.
	ExpiryExpired ExpiryState = "Expired"
	// ExpiryNear means the expiry date is within NearExpiryDays of today.
	ExpiryNear ExpiryState = "NearExpiry"
	// ExpirySafe means the expiry date is comfortably in the future.
	ExpirySafe ExpiryState = "Safe"
)

// ExpiryState derives the expiry classification as of now. Unparseable
// values behave like an absent expiry.
func (i Item) ExpiryState(now time.Time) ExpiryState {
	if i.Expiry == "" {
		return ExpiryNone
	}
	date, err := time.ParseInLocation(ExpiryLayout, i.Expiry, now.Location())
	if err != nil {
		return ExpiryNone
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if date.Before(today) {
		return ExpiryExpired
	}
	if days := int(date.Sub(today).Hours() / 24); days <= NearExpiryDays {
		return ExpiryNear
	}
	return ExpirySafe
}

// ApplyDispense deducts a dispensed amount from the quantity on hand. This is
// the only path besides an explicit edit by which quantity may decrease.
func (i *Item) ApplyDispense(amount int64, now time.Time) error {
	if amount <= 0 {
		return fmt.Errorf("stock: dispense quantity must be positive: %w", shared.ErrValidation)
	}
	if amount > i.Quantity {
		return fmt.Errorf("stock: requested %d of %q but only %d available: %w", amount, i.Name, i.Quantity, shared.ErrInsufficientStock)
	}
	i.Quantity -= amount
	i.UpdatedAt = now
	return nil
}

// SortByName orders items alphabetically by name, case-insensitively, in place.
func SortByName(items []Item) {
	c := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(items, func(a, b int) bool {
		return c.CompareString(items[a].Name, items[b].Name) < 0
	})
}
