package di

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-autotranslate/internal/collector"
	"github.com/goliatone/go-autotranslate/internal/commands"
	translationcmd "github.com/goliatone/go-autotranslate/internal/commands/translation"
	"github.com/goliatone/go-autotranslate/internal/hostmodel"
	"github.com/goliatone/go-autotranslate/internal/logging"
	"github.com/goliatone/go-autotranslate/internal/logging/console"
	"github.com/goliatone/go-autotranslate/internal/logging/gologger"
	"github.com/goliatone/go-autotranslate/internal/provider"
	"github.com/goliatone/go-autotranslate/internal/provider/deepl"
	"github.com/goliatone/go-autotranslate/internal/provider/gemini"
	"github.com/goliatone/go-autotranslate/internal/runtimeconfig"
	"github.com/goliatone/go-autotranslate/internal/staleness"
	"github.com/goliatone/go-autotranslate/internal/storage"
	"github.com/goliatone/go-autotranslate/internal/tokenguard"
	"github.com/goliatone/go-autotranslate/internal/translate"
	"github.com/goliatone/go-autotranslate/internal/translationconfig"
	"github.com/goliatone/go-autotranslate/pkg/interfaces"
)

// ErrContentModelRequired is returned when neither a database nor a content
// model override is available.
var ErrContentModelRequired = errors.New("di: content model or bun database required")

// Container wires module dependencies.
type Container struct {
	Config runtimeconfig.Config

	bunDB         *bun.DB
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger

	model    interfaces.ContentModel
	rewriter interfaces.DisplayRewriter

	stalenessRepo staleness.Repository
	tracker       *staleness.Tracker
	clock         func() time.Time

	settingsRepo translationconfig.Repository
	settings     *translationconfig.State

	providers     *provider.Registry
	providerName  string
	providerError error

	collector  *collector.Collector
	translator *translate.Service

	commandRegistry translationcmd.CommandRegistry
	cronRegistrar   translationcmd.CronRegistrar
	handlers        *translationcmd.HandlerSet
	subscriptions   []interface{ Unsubscribe() }
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB backs the content model and the engine tables with db.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache service.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithLoggerProvider overrides the configured logging provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithContentModel replaces the bun content model.
func WithContentModel(model interfaces.ContentModel) Option {
	return func(c *Container) {
		c.model = model
	}
}

// WithDisplayRewriter sets the embedded file URL rewriter.
func WithDisplayRewriter(rewriter interfaces.DisplayRewriter) Option {
	return func(c *Container) {
		c.rewriter = rewriter
	}
}

// WithStalenessRepository replaces the staleness persistence.
func WithStalenessRepository(repo staleness.Repository) Option {
	return func(c *Container) {
		c.stalenessRepo = repo
	}
}

// WithClock sets the time source of the staleness tracker.
func WithClock(clock func() time.Time) Option {
	return func(c *Container) {
		c.clock = clock
	}
}

// WithSettingsRepository replaces the user settings persistence.
func WithSettingsRepository(repo translationconfig.Repository) Option {
	return func(c *Container) {
		c.settingsRepo = repo
	}
}

// WithTranslationProvider registers p under name. The provider selected by
// the configuration is looked up by name, so overrides win over built-ins.
func WithTranslationProvider(name string, p interfaces.TranslationProvider) Option {
	return func(c *Container) {
		if c.providers == nil {
			c.providers = provider.NewRegistry()
		}
		_ = c.providers.Register(name, p)
	}
}

// WithCommandRegistry registers the command handlers with reg.
func WithCommandRegistry(reg translationcmd.CommandRegistry) Option {
	return func(c *Container) {
		c.commandRegistry = reg
	}
}

// WithCronRegistrar schedules the stale field sync when enabled.
func WithCronRegistrar(reg translationcmd.CronRegistrar) Option {
	return func(c *Container) {
		c.cronRegistrar = reg
	}
}

// NewContainer validates cfg and wires every module.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTTL := cfg.Cache.DefaultTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	c := &Container{
		Config:   cfg,
		cacheTTL: cacheTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	c.logger = logging.ModuleLogger(c.loggerProvider, "autotranslate.di")

	c.configureCacheDefaults()
	if err := c.configureRepositories(); err != nil {
		return nil, err
	}
	if err := c.configureContentModel(); err != nil {
		return nil, err
	}
	c.configureProviders()
	if err := c.configureServices(); err != nil {
		return nil, err
	}
	if err := c.configureCommands(); err != nil {
		return nil, err
	}

	c.logger.Info("container.configured",
		"storage", runtimeconfig.NormalizeDriver(c.Config.Storage.Driver),
		"provider", c.providerName,
		"staleness", c.tracker != nil,
		"cache", c.cacheService != nil,
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return nil
	}
	logCfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(logCfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     logCfg.Level,
			Format:    logCfg.Format,
			AddSource: logCfg.AddSource,
			Focus:     logCfg.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		level := console.ParseLevel(logCfg.Level)
		c.loggerProvider = console.NewProvider(console.Options{MinLevel: &level})
	}
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		} else {
			c.logger.Warn("container.cache.disabled", "error", err)
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() error {
	if c.bunDB != nil && c.Config.Storage.AutoMigrate {
		if err := storage.EnsureSchema(context.Background(), c.bunDB); err != nil {
			return err
		}
	}

	if c.Config.Features.Staleness && c.stalenessRepo == nil {
		if c.bunDB != nil {
			if c.cacheService != nil {
				c.stalenessRepo = staleness.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
			} else {
				c.stalenessRepo = staleness.NewBunRepository(c.bunDB)
			}
		} else {
			c.stalenessRepo = staleness.NewMemoryRepository()
		}
	}
	if c.stalenessRepo != nil {
		trackerOpts := []staleness.Option{staleness.WithLogger(logging.StalenessLogger(c.loggerProvider))}
		if c.clock != nil {
			trackerOpts = append(trackerOpts, staleness.WithClock(c.clock))
		}
		c.tracker = staleness.NewTracker(c.stalenessRepo, trackerOpts...)
	}

	if c.Config.Features.Settings && c.settingsRepo == nil {
		if c.bunDB != nil {
			c.settingsRepo = translationconfig.NewBunRepository(c.bunDB)
		} else {
			c.settingsRepo = translationconfig.NewMemoryRepository()
		}
	}
	c.settings = translationconfig.NewState(translationconfig.Settings{})
	return nil
}

func (c *Container) configureContentModel() error {
	if c.model != nil {
		return nil
	}
	if c.bunDB == nil {
		return ErrContentModelRequired
	}
	model, err := hostmodel.NewBun(c.bunDB, c.Config.Layout,
		hostmodel.WithLogger(logging.ContentLogger(c.loggerProvider)))
	if err != nil {
		return err
	}
	c.model = model
	return nil
}

func (c *Container) configureProviders() {
	if c.providers == nil {
		c.providers = provider.NewRegistry()
	}
	cfg := c.Config.Provider

	if _, ok := c.providers.Get(deepl.Name); !ok && strings.TrimSpace(cfg.DeepL.APIKey) != "" {
		client, err := deepl.New(deepl.Config{
			APIKey:  cfg.DeepL.APIKey,
			BaseURL: cfg.DeepL.BaseURL,
			Timeout: cfg.DeepL.Timeout,
		}, deepl.WithLogger(logging.ProviderLogger(c.loggerProvider, deepl.Name)))
		if err != nil {
			c.logger.Warn("container.provider.unavailable", "provider", deepl.Name, "error", err)
		} else {
			_ = c.providers.Register(deepl.Name, client)
		}
	}

	if _, ok := c.providers.Get(gemini.Name); !ok && strings.TrimSpace(cfg.Gemini.APIKey) != "" {
		client, err := gemini.New(context.Background(), gemini.Config{
			APIKey: cfg.Gemini.APIKey,
			Model:  cfg.Gemini.Model,
		}, gemini.WithLogger(logging.ProviderLogger(c.loggerProvider, gemini.Name)))
		if err != nil {
			c.logger.Warn("container.provider.unavailable", "provider", gemini.Name, "error", err)
		} else {
			_ = c.providers.Register(gemini.Name, client)
		}
	}

	c.providerName = strings.ToLower(strings.TrimSpace(cfg.Name))
	if _, err := c.providers.Resolve(c.providerName); err != nil {
		c.providerError = errors.Join(err, c.Config.RequireCredentials())
		c.logger.Warn("container.provider.missing", "provider", c.providerName, "error", c.providerError)
	}
}

func (c *Container) activeProvider() interfaces.TranslationProvider {
	if p, ok := c.providers.Get(c.providerName); ok {
		return p
	}
	return provider.Unavailable(c.providerName, c.providerError)
}

func (c *Container) configureServices() error {
	eligibilityCfg := collector.DefaultEligibilityConfig()
	if c.Config.Eligibility.MinColumnSize > 0 {
		eligibilityCfg.MinColumnSize = c.Config.Eligibility.MinColumnSize
	}
	eligibilityCfg.User = append(eligibilityCfg.User, c.Config.Eligibility.SkipColumns...)
	eligibility, err := collector.NewEligibility(eligibilityCfg)
	if err != nil {
		return fmt.Errorf("di: eligibility: %w", err)
	}

	collectorOpts := []collector.Option{
		collector.WithEligibility(eligibility),
		collector.WithSettingsSource(c.settings),
		collector.WithDisplayCacheSize(c.Config.Cache.DisplaySize),
		collector.WithLogger(logging.CollectorLogger(c.loggerProvider)),
	}
	if c.tracker != nil {
		collectorOpts = append(collectorOpts, collector.WithTracker(c.tracker))
	}
	if c.rewriter != nil {
		collectorOpts = append(collectorOpts, collector.WithDisplayRewriter(c.rewriter))
	}
	if c.collector, err = collector.New(c.model, collectorOpts...); err != nil {
		return err
	}

	translateOpts := []translate.Option{
		translate.WithProvider(c.providerName, c.activeProvider()),
		translate.WithGuard(tokenguard.New(c.Config.Tokenizer)),
		translate.WithDefaultSourceLanguage(c.Config.DefaultSourceLanguage),
		translate.WithDefaultOptions(c.Config.Provider.Options),
		translate.WithLogger(logging.TranslateLogger(c.loggerProvider)),
	}
	if c.tracker != nil {
		translateOpts = append(translateOpts, translate.WithTracker(c.tracker))
	}
	c.translator, err = translate.New(c.model, translateOpts...)
	return err
}

func (c *Container) configureCommands() error {
	deps := translationcmd.Dependencies{
		Collector: c.collector,
		Workflow:  c.translator,
	}
	if c.tracker != nil {
		deps.Tracker = c.tracker
	}

	timeout := c.Config.Commands.Timeout
	set, err := translationcmd.RegisterTranslationCommands(c.commandRegistry, deps, c.loggerProvider,
		translationcmd.WithTranslateHandlerOptions(commands.WithTimeout[translationcmd.TranslateFieldsCommand](timeout)),
		translationcmd.WithSaveHandlerOptions(commands.WithTimeout[translationcmd.SaveTranslationsCommand](timeout)),
		translationcmd.WithSourceModifiedHandlerOptions(commands.WithTimeout[translationcmd.MarkSourceModifiedCommand](timeout)),
	)
	if err != nil {
		return err
	}
	c.handlers = set

	if c.Config.Commands.AutoRegisterDispatcher {
		c.subscriptions = append(c.subscriptions,
			dispatcher.SubscribeCommand(set.Translate),
			dispatcher.SubscribeCommand(set.Save),
			dispatcher.SubscribeCommand(set.SourceModified),
		)
	}

	if c.Config.Commands.AutoRegisterCron && c.cronRegistrar != nil {
		msg := translationcmd.TranslateFieldsCommand{
			RootType:       c.Config.Commands.SyncRootType,
			RootID:         c.Config.Commands.SyncRootID,
			TargetLanguage: c.Config.Commands.SyncTargetLanguage,
			StaleOnly:      true,
		}
		cronCfg := command.HandlerConfig{Expression: c.Config.Commands.SyncCron}
		if err := translationcmd.RegisterTranslateCron(c.cronRegistrar, set.Translate, cronCfg, msg); err != nil {
			return err
		}
	}
	return nil
}

// Start loads the stored user settings and follows their changes until ctx
// is done. It is a no-op when the settings feature is off.
func (c *Container) Start(ctx context.Context) error {
	if c.settingsRepo == nil {
		return nil
	}
	return translationconfig.Follow(ctx, c.settingsRepo, c.settings)
}

// Close unsubscribes dispatcher handlers. The database handle belongs to the
// caller.
func (c *Container) Close() {
	for _, sub := range c.subscriptions {
		sub.Unsubscribe()
	}
	c.subscriptions = nil
}

// BunDB exposes the configured database, if any.
func (c *Container) BunDB() *bun.DB {
	return c.bunDB
}

// LoggerProvider exposes the configured logging provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// ContentModel exposes the host content model.
func (c *Container) ContentModel() interfaces.ContentModel {
	return c.model
}

// Tracker returns the staleness tracker, nil when staleness is disabled.
func (c *Container) Tracker() *staleness.Tracker {
	return c.tracker
}

// SettingsRepository returns the user settings persistence, nil when the
// settings feature is off.
func (c *Container) SettingsRepository() translationconfig.Repository {
	return c.settingsRepo
}

// Settings returns the active user settings snapshot.
func (c *Container) Settings() *translationconfig.State {
	return c.settings
}

// Providers exposes the translation provider registry.
func (c *Container) Providers() *provider.Registry {
	return c.providers
}

// ProviderName is the configured provider name.
func (c *Container) ProviderName() string {
	return c.providerName
}

// ProviderError reports why the configured provider is unavailable.
func (c *Container) ProviderError() error {
	return c.providerError
}

// Collector returns the field collector.
func (c *Container) Collector() *collector.Collector {
	return c.collector
}

// Translator returns the translate and save workflow.
func (c *Container) Translator() *translate.Service {
	return c.translator
}

// Handlers returns the command handlers.
func (c *Container) Handlers() *translationcmd.HandlerSet {
	return c.handlers
}
