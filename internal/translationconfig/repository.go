// Package translationconfig persists the user adjustable collection settings
// and publishes changes to running services.
package translationconfig

import (
	"context"
	"errors"
	"slices"
	"strings"
)

// ErrSettingsNotFound indicates settings have not been stored yet.
var ErrSettingsNotFound = errors.New("translationconfig: settings not found")

// ErrInvalidMinColumnSize is returned for negative minimum sizes.
var ErrInvalidMinColumnSize = errors.New("translationconfig: min column size must not be negative")

// Settings override collection defaults. A zero MinColumnSize keeps the
// configured default. SkipColumns holds "subtype.column" or "column" glob
// patterns.
type Settings struct {
	MinColumnSize int      `toml:"min_column_size" json:"min_column_size"`
	SkipColumns   []string `toml:"skip_columns" json:"skip_columns"`
}

// Normalize trims, drops blank and duplicate patterns and sorts them.
func (s Settings) Normalize() Settings {
	var patterns []string
	for _, p := range s.SkipColumns {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	slices.Sort(patterns)
	return Settings{MinColumnSize: s.MinColumnSize, SkipColumns: slices.Compact(patterns)}
}

// Validate reports invalid values.
func (s Settings) Validate() error {
	if s.MinColumnSize < 0 {
		return ErrInvalidMinColumnSize
	}
	return nil
}

// Equal compares normalized settings.
func (s Settings) Equal(other Settings) bool {
	a, b := s.Normalize(), other.Normalize()
	return a.MinColumnSize == b.MinColumnSize && slices.Equal(a.SkipColumns, b.SkipColumns)
}

// Repository persists settings and emits change notifications.
type Repository interface {
	Get(ctx context.Context) (Settings, error)
	Upsert(ctx context.Context, settings Settings) (Settings, error)
	Delete(ctx context.Context) error
	Subscribe(ctx context.Context) (<-chan ChangeEvent, error)
}

// ChangeType enumerates settings change events.
type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// ChangeEvent reports a settings mutation.
type ChangeEvent struct {
	Type     ChangeType
	Settings Settings
}
