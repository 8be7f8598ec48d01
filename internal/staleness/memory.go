package staleness

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-autotranslate/internal/identity"
)

// NewMemoryRepository returns an in-memory repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		byID:  make(map[uuid.UUID]*Record),
		byKey: make(map[Key]uuid.UUID),
	}
}

type memoryRepository struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]*Record
	byKey map[Key]uuid.UUID
}

func (m *memoryRepository) Find(_ context.Context, key Key) (*Record, error) {
	key = key.normalized()
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byKey[key]
	if !ok {
		return nil, &NotFoundError{Resource: "staleness_record", Key: key.String()}
	}
	return cloneRecord(m.byID[id]), nil
}

func (m *memoryRepository) Insert(_ context.Context, key Key, sourceModified, translationModified int64) (*Record, error) {
	key = key.normalized()
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.byKey[key]; ok {
		return cloneRecord(m.byID[id]), nil
	}
	now := time.Now().UTC()
	record := &Record{
		ID:                      identity.StalenessUUID(key.SourceType, key.ItemID, key.FieldName, key.TargetLanguage),
		ItemID:                  key.ItemID,
		SourceType:              key.SourceType,
		FieldName:               key.FieldName,
		TargetLanguage:          key.TargetLanguage,
		SourceLastModified:      sourceModified,
		TranslationLastModified: translationModified,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	m.byID[record.ID] = record
	m.byKey[key] = record.ID
	return cloneRecord(record), nil
}

func (m *memoryRepository) UpdateTranslationTimestamp(_ context.Context, id uuid.UUID, ts int64) error {
	return m.update(id, func(r *Record) { r.TranslationLastModified = ts })
}

func (m *memoryRepository) UpdateSourceTimestamp(_ context.Context, id uuid.UUID, ts int64) error {
	return m.update(id, func(r *Record) { r.SourceLastModified = ts })
}

func (m *memoryRepository) ListByField(_ context.Context, sourceType string, itemID int64, fieldName string) ([]*Record, error) {
	probe := Key{ItemID: itemID, SourceType: sourceType, FieldName: fieldName}.normalized()
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Record
	for _, record := range m.byID {
		if record.ItemID == probe.ItemID && record.SourceType == probe.SourceType && record.FieldName == probe.FieldName {
			out = append(out, cloneRecord(record))
		}
	}
	slices.SortFunc(out, func(a, b *Record) int {
		return cmp.Compare(a.TargetLanguage, b.TargetLanguage)
	})
	return out, nil
}

func (m *memoryRepository) update(id uuid.UUID, apply func(*Record)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.byID[id]
	if !ok {
		return &NotFoundError{Resource: "staleness_record", Key: id.String()}
	}
	apply(record)
	record.UpdatedAt = time.Now().UTC()
	return nil
}
