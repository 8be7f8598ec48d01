// Package autotranslate keeps multilingual text fields of a hierarchical
// content store in sync with a remote translation provider. It finds the
// eligible fields under a root item, tracks which translations are stale,
// and merges translated regions back into the stored multilang text.
package autotranslate

import (
	"context"
	"strings"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-autotranslate/internal/collector"
	translationcmd "github.com/goliatone/go-autotranslate/internal/commands/translation"
	"github.com/goliatone/go-autotranslate/internal/di"
	"github.com/goliatone/go-autotranslate/internal/storage"
	"github.com/goliatone/go-autotranslate/internal/translate"
	"github.com/goliatone/go-autotranslate/pkg/interfaces"
)

// Field is one translatable text value found by the collector.
type Field = collector.Field

// FieldKey identifies a field.
type FieldKey = collector.FieldKey

// Visitor extracts the sub-item fields of one leaf or question subtype.
type Visitor = collector.Visitor

// VisitorFunc adapts a function to Visitor.
type VisitorFunc = collector.VisitorFunc

// Walker is handed to visitors during a collection run.
type Walker = collector.Walker

// TranslateFieldsCommand translates and saves the fields under a root item.
type TranslateFieldsCommand = translationcmd.TranslateFieldsCommand

// SaveTranslationsCommand saves reviewed translations.
type SaveTranslationsCommand = translationcmd.SaveTranslationsCommand

// SaveItem is one entry of SaveTranslationsCommand.
type SaveItem = translationcmd.SaveItem

// MarkSourceModifiedCommand reports a source edit made outside the engine.
type MarkSourceModifiedCommand = translationcmd.MarkSourceModifiedCommand

// TranslateResult is the per-field outcome of a translate call.
type TranslateResult = translate.Result

// Option customises the container built by New.
type Option = di.Option

// Options re-exported from the container.
var (
	WithContentModel        = di.WithContentModel
	WithDisplayRewriter     = di.WithDisplayRewriter
	WithLoggerProvider      = di.WithLoggerProvider
	WithTranslationProvider = di.WithTranslationProvider
	WithStalenessRepository = di.WithStalenessRepository
	WithSettingsRepository  = di.WithSettingsRepository
	WithCommandRegistry     = di.WithCommandRegistry
	WithBunDB               = di.WithBunDB
	WithCache               = di.WithCache
	WithCronRegistrar       = di.WithCronRegistrar
	WithClock               = di.WithClock
)

// Module represents the top level runtime façade.
type Module struct {
	container *di.Container
	ownedDB   *bun.DB
}

// New constructs a module using the provided configuration and optional DI
// overrides. The caller supplies the database or content model.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Open connects to the configured database and builds a module over it.
// Close releases the connection.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	db, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	module, err := New(cfg, append([]Option{di.WithBunDB(db)}, opts...)...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	module.ownedDB = db
	return module, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Start follows stored user settings until ctx is done.
func (m *Module) Start(ctx context.Context) error {
	return m.container.Start(ctx)
}

// Close unsubscribes handlers and closes a database opened by Open.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	m.container.Close()
	if m.ownedDB != nil {
		err := m.ownedDB.Close()
		m.ownedDB = nil
		return err
	}
	return nil
}

// Collect lists the translatable fields under root in hierarchy order.
// targetLang selects staleness status and may be blank.
func (m *Module) Collect(ctx context.Context, rootType string, rootID int64, targetLang string) ([]Field, error) {
	return m.container.Collector().Collect(ctx, rootNode(rootType, rootID), collector.RunOptions{TargetLanguage: targetLang})
}

// Translate returns provider translations for fields without saving them.
func (m *Module) Translate(ctx context.Context, fields []Field, sourceLang, targetLang string, opts interfaces.TranslationOptions) ([]TranslateResult, error) {
	return m.container.Translator().Translate(ctx, fields, translate.BatchRequest{
		SourceLanguage: sourceLang,
		TargetLanguage: targetLang,
		Options:        opts,
	})
}

// TranslateFields runs the collect, translate and save workflow.
func (m *Module) TranslateFields(ctx context.Context, msg TranslateFieldsCommand) error {
	return m.container.Handlers().Translate.Execute(ctx, msg)
}

// SaveTranslations merges reviewed translations into the stored fields.
func (m *Module) SaveTranslations(ctx context.Context, msg SaveTranslationsCommand) error {
	return m.container.Handlers().Save.Execute(ctx, msg)
}

// MarkSourceModified flags every translation of a field as stale.
func (m *Module) MarkSourceModified(ctx context.Context, sourceType string, itemID int64, fieldName string) error {
	return m.container.Handlers().SourceModified.Execute(ctx, MarkSourceModifiedCommand{
		SourceType: sourceType,
		ItemID:     itemID,
		FieldName:  fieldName,
	})
}

// RegisterLeafVisitor adds or replaces the visitor of a leaf subtype.
func (m *Module) RegisterLeafVisitor(subtype string, visitor Visitor) error {
	return m.container.Collector().LeafVisitors().Register(subtype, visitor)
}

// RegisterQuestionVisitor adds or replaces the visitor of a question type.
func (m *Module) RegisterQuestionVisitor(subtype string, visitor Visitor) error {
	return m.container.Collector().QuestionVisitors().Register(subtype, visitor)
}

func rootNode(rootType string, rootID int64) interfaces.ContentNode {
	rootType = strings.TrimSpace(rootType)
	return interfaces.ContentNode{SourceType: rootType, ID: rootID, SubType: rootType}
}
