package staleness

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrRecordNotReady is returned when writing through a placeholder record.
	ErrRecordNotReady = errors.New("staleness: record not ready")
	// ErrRepositoryRequired is returned when the tracker has no repository.
	ErrRepositoryRequired = errors.New("staleness: repository required")
)

// Repository persists staleness records. Find returns *NotFoundError when no
// record exists for the key.
type Repository interface {
	Find(ctx context.Context, key Key) (*Record, error)
	Insert(ctx context.Context, key Key, sourceModified, translationModified int64) (*Record, error)
	UpdateTranslationTimestamp(ctx context.Context, id uuid.UUID, ts int64) error
	UpdateSourceTimestamp(ctx context.Context, id uuid.UUID, ts int64) error
	ListByField(ctx context.Context, sourceType string, itemID int64, fieldName string) ([]*Record, error)
}

// NotFoundError reports a missing record.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// IsNotFound reports whether err carries a *NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
