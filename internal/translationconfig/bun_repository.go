package translationconfig

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-autotranslate/internal/identity"
)

var errNoDatabase = errors.New("translationconfig: bun repository requires a database")

// settingsScope keys the single settings row.
const settingsScope = "collection"

// BunRepository stores settings in the autotranslate_settings table.
type BunRepository struct {
	db     *bun.DB
	events *broadcaster
}

// NewBunRepository constructs a bun backed repository.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db, events: newBroadcaster()}
}

func (r *BunRepository) Get(ctx context.Context) (Settings, error) {
	model, err := r.load(ctx)
	if err != nil {
		return Settings{}, err
	}
	return model.settings(), nil
}

func (r *BunRepository) Upsert(ctx context.Context, settings Settings) (Settings, error) {
	if r.db == nil {
		return Settings{}, errNoDatabase
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	settings = settings.Normalize()

	existing, err := r.load(ctx)
	created := errors.Is(err, ErrSettingsNotFound)
	if err != nil && !created {
		return Settings{}, err
	}

	model := newSettingsModel(settings)
	model.UpdatedAt = time.Now().UTC()
	if created {
		if _, err := r.db.NewInsert().Model(model).Exec(ctx); err != nil {
			return Settings{}, err
		}
		r.events.Publish(ChangeCreated, settings)
		return settings, nil
	}

	if existing.settings().Equal(settings) {
		return settings, nil
	}
	if _, err := r.db.NewUpdate().
		Model(model).
		Column("min_column_size", "skip_columns", "updated_at").
		WherePK().
		Exec(ctx); err != nil {
		return Settings{}, err
	}
	r.events.Publish(ChangeUpdated, settings)
	return settings, nil
}

func (r *BunRepository) Delete(ctx context.Context) error {
	model, err := r.load(ctx)
	if err != nil {
		return err
	}
	if _, err := r.db.NewDelete().Model(model).WherePK().Exec(ctx); err != nil {
		return err
	}
	r.events.Publish(ChangeDeleted, Settings{})
	return nil
}

func (r *BunRepository) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	return r.events.Subscribe(ctx)
}

func (r *BunRepository) load(ctx context.Context) (*SettingsModel, error) {
	if r.db == nil {
		return nil, errNoDatabase
	}
	model := &SettingsModel{}
	err := r.db.NewSelect().Model(model).Where("id = ?", identity.SettingsUUID(settingsScope)).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSettingsNotFound
		}
		return nil, err
	}
	return model, nil
}

// SettingsModel is the persisted row. SkipColumns is newline separated.
type SettingsModel struct {
	bun.BaseModel `bun:"table:autotranslate_settings"`

	ID            uuid.UUID `bun:",pk,type:varchar(36)"`
	MinColumnSize int       `bun:"min_column_size,notnull,default:0"`
	SkipColumns   string    `bun:"skip_columns,notnull,default:''"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,default:current_timestamp"`
}

func newSettingsModel(settings Settings) *SettingsModel {
	return &SettingsModel{
		ID:            identity.SettingsUUID(settingsScope),
		MinColumnSize: settings.MinColumnSize,
		SkipColumns:   strings.Join(settings.SkipColumns, "\n"),
	}
}

func (m *SettingsModel) settings() Settings {
	if m == nil {
		return Settings{}
	}
	var patterns []string
	if m.SkipColumns != "" {
		patterns = strings.Split(m.SkipColumns, "\n")
	}
	return Settings{MinColumnSize: m.MinColumnSize, SkipColumns: patterns}.Normalize()
}
