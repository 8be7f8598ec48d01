package staleness

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-autotranslate/internal/identity"
)

const recordNamespace = "staleness_record"

// NewRecordRepository creates the generic bun repository for records.
func NewRecordRepository(db *bun.DB) repository.Repository[*Record] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Record]{
		NewRecord: func() *Record { return &Record{} },
		GetID: func(r *Record) uuid.UUID {
			return r.ID
		},
		SetID: func(r *Record, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(r *Record) string {
			return r.ID.String()
		},
	})
}

// BunRepository persists staleness records with optional caching.
type BunRepository struct {
	repo         repository.Repository[*Record]
	base         repository.Repository[*Record]
	cacheService cache.CacheService
	cachePrefix  string
}

// NewBunRepository creates a repository without caching.
func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

// NewBunRepositoryWithCache creates a repository backed by go-repository-cache.
// Writes invalidate the record namespace.
func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRepository {
	base := NewRecordRepository(db)
	repo := base
	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		repo = repositorycache.New(base, cacheService, serializer)
		svc = cacheService
	}
	prefix := ""
	if svc != nil {
		prefix = recordNamespace + cache.KeySeparator
	}
	return &BunRepository{repo: repo, base: base, cacheService: svc, cachePrefix: prefix}
}

var _ Repository = (*BunRepository)(nil)

// Find loads the record of key by its derived identifier, so cached
// lookups are keyed per record.
func (r *BunRepository) Find(ctx context.Context, key Key) (*Record, error) {
	key = key.normalized()
	id := identity.StalenessUUID(key.SourceType, key.ItemID, key.FieldName, key.TargetLanguage)
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, key.String())
	}
	return record, nil
}

func (r *BunRepository) Insert(ctx context.Context, key Key, sourceModified, translationModified int64) (*Record, error) {
	key = key.normalized()
	now := time.Now().UTC()
	record, err := r.repo.Create(ctx, &Record{
		ID:                      identity.StalenessUUID(key.SourceType, key.ItemID, key.FieldName, key.TargetLanguage),
		ItemID:                  key.ItemID,
		SourceType:              key.SourceType,
		FieldName:               key.FieldName,
		TargetLanguage:          key.TargetLanguage,
		SourceLastModified:      sourceModified,
		TranslationLastModified: translationModified,
		CreatedAt:               now,
		UpdatedAt:               now,
	})
	if err != nil {
		return nil, fmt.Errorf("%s repository error: %w", recordNamespace, err)
	}
	r.invalidate(ctx)
	return record, nil
}

func (r *BunRepository) UpdateTranslationTimestamp(ctx context.Context, id uuid.UUID, ts int64) error {
	return r.updateColumns(ctx, &Record{ID: id, TranslationLastModified: ts}, "translation_last_modified")
}

func (r *BunRepository) UpdateSourceTimestamp(ctx context.Context, id uuid.UUID, ts int64) error {
	return r.updateColumns(ctx, &Record{ID: id, SourceLastModified: ts}, "source_last_modified")
}

func (r *BunRepository) ListByField(ctx context.Context, sourceType string, itemID int64, fieldName string) ([]*Record, error) {
	key := Key{ItemID: itemID, SourceType: sourceType, FieldName: fieldName}.normalized()
	// Raw processors serialize to the same cache key, so field listings
	// bypass the cache decorator.
	records, _, err := r.base.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.item_id = ?", key.ItemID).
				Where("?TableAlias.source_type = ?", key.SourceType).
				Where("?TableAlias.field_name = ?", key.FieldName).
				OrderExpr("?TableAlias.target_language ASC")
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, key.String())
	}
	return records, nil
}

// InvalidateCache drops cached staleness lookups.
func (r *BunRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func (r *BunRepository) updateColumns(ctx context.Context, record *Record, column string) error {
	if _, err := r.GetByID(ctx, record.ID); err != nil {
		return err
	}
	record.UpdatedAt = time.Now().UTC()
	if _, err := r.repo.Update(ctx, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns(column, "updated_at"),
	); err != nil {
		return mapRepositoryError(err, record.ID.String())
	}
	r.invalidate(ctx)
	return nil
}

// GetByID loads a record by its identifier.
func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, id.String())
	}
	return record, nil
}

func (r *BunRepository) invalidate(ctx context.Context) {
	_ = r.InvalidateCache(ctx)
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: recordNamespace, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", recordNamespace, err)
}
