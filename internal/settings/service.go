package settings

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/pharmledger/pharmledger/internal/shared"
)

// Persisted settings keys.
const (
	KeyPIN          = "pin"
	KeyTheme        = "theme"
	KeyFacilityName = "facilityName"
	KeyPreparedBy   = "preparedBy"
)

// Defaults applied when a key is absent.
const (
	DefaultPIN   = "4321"
	DefaultTheme = "light"
)

// Fixed override codes accepted regardless of the configured PIN.
var overrideCodes = []string{"9999", "1234"}

// MinPINLength is the minimum length for a newly configured PIN.
const MinPINLength = 4

// RepositoryPort abstracts the settings store.
type RepositoryPort interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
}

// Service owns key-scoped settings and the authorization gate consulted
// before every destructive or stock-level-changing action.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func (s *Service) get(ctx context.Context, key, fallback string) (string, error) {
	value, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return fallback, nil
		}
		return "", err
	}
	return value, nil
}

// CurrentPIN returns the configured PIN or the default.
func (s *Service) CurrentPIN(ctx context.Context) (string, error) {
	return s.get(ctx, KeyPIN, DefaultPIN)
}

// VerifyAuthorization reports whether code matches the configured PIN or one
// of the fixed override codes. The result carries no detail about which.
func (s *Service) VerifyAuthorization(ctx context.Context, code string) (bool, error) {
	pin, err := s.CurrentPIN(ctx)
	if err != nil {
		return false, err
	}
	ok := equalCode(code, pin)
	for _, override := range overrideCodes {
		ok = ok || equalCode(code, override)
	}
	return ok, nil
}

// ChangePIN replaces the configured PIN. The current PIN or an override code
// must be supplied, and the new code must be at least MinPINLength long.
func (s *Service) ChangePIN(ctx context.Context, currentCode, newPIN string) error {
	ok, err := s.VerifyAuthorization(ctx, currentCode)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("settings: %w", shared.ErrUnauthorized)
	}
	newPIN = strings.TrimSpace(newPIN)
	if len(newPIN) < MinPINLength {
		return fmt.Errorf("settings: new PIN must be at least %d characters: %w", MinPINLength, shared.ErrValidation)
	}
	return s.repo.Put(ctx, KeyPIN, newPIN)
}

// Theme returns the stored UI theme or the default.
func (s *Service) Theme(ctx context.Context) (string, error) {
	return s.get(ctx, KeyTheme, DefaultTheme)
}

// SetTheme stores the UI theme.
func (s *Service) SetTheme(ctx context.Context, theme string) error {
	if theme != "light" && theme != "dark" {
		return fmt.Errorf("settings: theme must be light or dark: %w", shared.ErrValidation)
	}
	return s.repo.Put(ctx, KeyTheme, theme)
}

// ReportInfo returns the facility name and prepared-by label, empty when unset.
func (s *Service) ReportInfo(ctx context.Context) (string, string, error) {
	facility, err := s.get(ctx, KeyFacilityName, "")
	if err != nil {
		return "", "", err
	}
	preparedBy, err := s.get(ctx, KeyPreparedBy, "")
	if err != nil {
		return "", "", err
	}
	return facility, preparedBy, nil
}

// SetReportInfo stores the facility name and prepared-by label.
func (s *Service) SetReportInfo(ctx context.Context, facility, preparedBy string) error {
	if err := s.repo.Put(ctx, KeyFacilityName, strings.TrimSpace(facility)); err != nil {
		return err
	}
	return s.repo.Put(ctx, KeyPreparedBy, strings.TrimSpace(preparedBy))
}

// Snapshot returns the PIN and theme for inclusion in a JSON backup.
func (s *Service) Snapshot(ctx context.Context) (pin, theme string, err error) {
	if pin, err = s.CurrentPIN(ctx); err != nil {
		return "", "", err
	}
	if theme, err = s.Theme(ctx); err != nil {
		return "", "", err
	}
	return pin, theme, nil
}

// Restore applies settings from a backup document. Empty values are skipped.
func (s *Service) Restore(ctx context.Context, pin, theme string) error {
	if pin != "" {
		if err := s.repo.Put(ctx, KeyPIN, pin); err != nil {
			return err
		}
	}
	if theme == "light" || theme == "dark" {
		if err := s.repo.Put(ctx, KeyTheme, theme); err != nil {
			return err
		}
	}
	return nil
}

func equalCode(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
