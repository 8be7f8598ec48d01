package translationcmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-autotranslate/internal/commands"
	"github.com/goliatone/go-autotranslate/pkg/interfaces"
)

// CommandRegistry is the registration contract used when wiring handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CronRegistrar matches the function signature used by go-command registries.
type CronRegistrar func(command.HandlerConfig, any) error

// HandlerSet groups the handlers built by RegisterTranslationCommands.
type HandlerSet struct {
	Translate      *TranslateFieldsHandler
	Save           *SaveTranslationsHandler
	SourceModified *MarkSourceModifiedHandler
}

// Dependencies are the collaborators shared by the handlers. Tracker may be
// nil when staleness is not persisted.
type Dependencies struct {
	Collector FieldCollector
	Workflow  Workflow
	Tracker   SourceTracker
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	translateOpts     []commands.HandlerOption[TranslateFieldsCommand]
	saveOpts          []commands.HandlerOption[SaveTranslationsCommand]
	sourceOpts        []commands.HandlerOption[MarkSourceModifiedCommand]
	translateObserver TranslateObserver
	saveObserver      SaveObserver
}

// WithTranslateHandlerOptions forwards options to the translate handler.
func WithTranslateHandlerOptions(opts ...commands.HandlerOption[TranslateFieldsCommand]) Option {
	return func(cfg *options) {
		cfg.translateOpts = append(cfg.translateOpts, opts...)
	}
}

// WithSaveHandlerOptions forwards options to the save handler.
func WithSaveHandlerOptions(opts ...commands.HandlerOption[SaveTranslationsCommand]) Option {
	return func(cfg *options) {
		cfg.saveOpts = append(cfg.saveOpts, opts...)
	}
}

// WithSourceModifiedHandlerOptions forwards options to the source edit handler.
func WithSourceModifiedHandlerOptions(opts ...commands.HandlerOption[MarkSourceModifiedCommand]) Option {
	return func(cfg *options) {
		cfg.sourceOpts = append(cfg.sourceOpts, opts...)
	}
}

// WithTranslateObserver receives per-field translate outcomes.
func WithTranslateObserver(fn TranslateObserver) Option {
	return func(cfg *options) {
		cfg.translateObserver = fn
	}
}

// WithSaveObserver receives per-field save outcomes.
func WithSaveObserver(fn SaveObserver) Option {
	return func(cfg *options) {
		cfg.saveObserver = fn
	}
}

// RegisterTranslationCommands builds the handlers and registers them with
// reg when it is not nil.
func RegisterTranslationCommands(reg CommandRegistry, deps Dependencies, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if deps.Collector == nil {
		return nil, errors.New("translation command registration: collector is nil")
	}
	if deps.Workflow == nil {
		return nil, errors.New("translation command registration: workflow is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.TranslationLogger(provider)
	set := &HandlerSet{
		Translate:      NewTranslateFieldsHandler(deps.Collector, deps.Workflow, logger, cfg.translateObserver, cfg.translateOpts...),
		Save:           NewSaveTranslationsHandler(deps.Workflow, logger, cfg.saveObserver, cfg.saveOpts...),
		SourceModified: NewMarkSourceModifiedHandler(deps.Tracker, logger, cfg.sourceOpts...),
	}

	if reg != nil {
		for _, handler := range []any{set.Translate, set.Save, set.SourceModified} {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

// RegisterTranslateCron schedules msg on the translate handler, for periodic
// synchronisation of stale fields.
func RegisterTranslateCron(reg CronRegistrar, handler *TranslateFieldsHandler, cfg command.HandlerConfig, msg TranslateFieldsCommand) error {
	if reg == nil || handler == nil {
		return nil
	}
	return reg(cfg, func() error {
		return handler.Execute(context.Background(), msg)
	})
}
