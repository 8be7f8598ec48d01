// Package staleness tracks when each field was last edited and last
// translated, per target language.
package staleness

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-autotranslate/internal/logging"
	"github.com/goliatone/go-autotranslate/pkg/interfaces"
)

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the clock used to stamp records.
func WithClock(clock func() time.Time) Option {
	return func(t *Tracker) {
		if clock != nil {
			t.now = clock
		}
	}
}

// WithLogger sets the tracker logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// Tracker answers whether a field needs a new translation.
type Tracker struct {
	repo   Repository
	now    func() time.Time
	logger interfaces.Logger
}

// NewTracker builds a tracker over repo.
func NewTracker(repo Repository, opts ...Option) *Tracker {
	t := &Tracker{
		repo:   repo,
		now:    time.Now,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Lookup returns the record for key, creating it with both timestamps set to
// now on first access. A blank target language yields a placeholder record
// (zero id and timestamps) without touching the repository.
func (t *Tracker) Lookup(ctx context.Context, key Key) (*Record, error) {
	key = key.normalized()
	if key.TargetLanguage == "" {
		return &Record{ItemID: key.ItemID, SourceType: key.SourceType, FieldName: key.FieldName}, nil
	}
	if t.repo == nil {
		return nil, ErrRepositoryRequired
	}

	record, err := t.repo.Find(ctx, key)
	if err == nil {
		return record, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	ts := t.now().Unix()
	record, err = t.repo.Insert(ctx, key, ts, ts)
	if err != nil {
		// A concurrent lookup may have created the same record.
		if existing, findErr := t.repo.Find(ctx, key); findErr == nil {
			return existing, nil
		}
		return nil, err
	}
	logging.WithFields(t.logger, map[string]any{"key": key.String()}).Debug("staleness.record.created")
	return record, nil
}

// MarkTranslated stamps the translation time of record with now.
func (t *Tracker) MarkTranslated(ctx context.Context, record *Record) error {
	if !record.Ready() {
		return ErrRecordNotReady
	}
	if t.repo == nil {
		return ErrRepositoryRequired
	}
	ts := t.now().Unix()
	if err := t.repo.UpdateTranslationTimestamp(ctx, record.ID, ts); err != nil {
		return err
	}
	record.TranslationLastModified = ts
	return nil
}

// MarkSourceModified records an edit of the source field for every tracked
// target language. It returns the number of records touched.
func (t *Tracker) MarkSourceModified(ctx context.Context, sourceType string, itemID int64, fieldName string) (int, error) {
	if t.repo == nil {
		return 0, ErrRepositoryRequired
	}
	if strings.TrimSpace(sourceType) == "" || strings.TrimSpace(fieldName) == "" {
		return 0, nil
	}
	records, err := t.repo.ListByField(ctx, sourceType, itemID, fieldName)
	if err != nil {
		return 0, err
	}
	ts := t.now().Unix()
	for _, record := range records {
		if err := t.repo.UpdateSourceTimestamp(ctx, record.ID, ts); err != nil {
			return 0, err
		}
	}
	return len(records), nil
}
