package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-autotranslate/internal/hostmodel"
	"github.com/goliatone/go-autotranslate/internal/mlang"
	"github.com/goliatone/go-autotranslate/internal/tokenguard"
	"github.com/goliatone/go-autotranslate/pkg/interfaces"
)

var ErrStorageDriverUnknown = errors.New("autotranslate config: storage driver is invalid")
var ErrStorageDSNRequired = errors.New("autotranslate config: storage dsn is required")
var ErrProviderRequired = errors.New("autotranslate config: translation provider is required")
var ErrProviderUnknown = errors.New("autotranslate config: translation provider is invalid")
var ErrProviderAPIKeyRequired = errors.New("autotranslate config: provider api key is required")
var ErrSourceLanguageInvalid = errors.New("autotranslate config: default source language is invalid")
var ErrMinColumnSizeInvalid = errors.New("autotranslate config: minimum column size must be zero or positive")
var ErrCommandsCronRequiresSchedule = errors.New("autotranslate config: command cron auto-registration requires a schedule and target language")
var ErrLoggingProviderRequired = errors.New("autotranslate config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("autotranslate config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("autotranslate config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("autotranslate config: logging format is invalid")

// Config aggregates feature flags and adapter bindings for the translation
// engine. Every section decodes from TOML.
type Config struct {
	// DefaultSourceLanguage is the region code assumed for untagged text.
	// Empty means the provider detects it.
	DefaultSourceLanguage string             `toml:"default_source_language"`
	Storage               StorageConfig      `toml:"storage"`
	Cache                 CacheConfig        `toml:"cache"`
	Layout                hostmodel.Layout   `toml:"layout"`
	Eligibility           EligibilityConfig  `toml:"eligibility"`
	Tokenizer             tokenguard.Options `toml:"tokenizer"`
	Provider              ProviderConfig     `toml:"provider"`
	Commands              CommandsConfig     `toml:"commands"`
	Features              Features           `toml:"features"`
	Logging               LoggingConfig      `toml:"logging"`
}

// StorageConfig selects the SQL driver backing the host content and the
// staleness records.
type StorageConfig struct {
	Driver       string `toml:"driver"`
	DSN          string `toml:"dsn"`
	MaxOpenConns int    `toml:"max_open_conns"`
	// AutoMigrate creates the engine tables on startup.
	AutoMigrate bool `toml:"auto_migrate"`
}

// CacheConfig captures repository and display cache behaviour.
type CacheConfig struct {
	Enabled    bool          `toml:"enabled"`
	DefaultTTL time.Duration `toml:"default_ttl"`
	// DisplaySize bounds the per-run display text cache.
	DisplaySize int `toml:"display_size"`
}

// EligibilityConfig seeds the column filter. Stored user settings override
// MinColumnSize and extend SkipColumns at run time.
type EligibilityConfig struct {
	MinColumnSize int      `toml:"min_column_size"`
	SkipColumns   []string `toml:"skip_columns"`
}

// ProviderConfig names the active translation provider and carries the
// credentials of each supported one.
type ProviderConfig struct {
	Name    string                        `toml:"name"`
	Options interfaces.TranslationOptions `toml:"options"`
	DeepL   DeepLConfig                   `toml:"deepl"`
	Gemini  GeminiConfig                  `toml:"gemini"`
}

// DeepLConfig configures the DeepL REST client.
type DeepLConfig struct {
	APIKey  string        `toml:"api_key"`
	BaseURL string        `toml:"base_url"`
	Timeout time.Duration `toml:"timeout"`
}

// GeminiConfig configures the Gemini client.
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// CommandsConfig captures optional command-layer behaviour.
type CommandsConfig struct {
	Timeout                time.Duration `toml:"timeout"`
	AutoRegisterDispatcher bool          `toml:"auto_register_dispatcher"`
	AutoRegisterCron       bool          `toml:"auto_register_cron"`
	// SyncCron is the schedule for the periodic stale field sync.
	SyncCron string `toml:"sync_cron"`
	// SyncRootType, SyncRootID and SyncTargetLanguage scope the periodic sync.
	SyncRootType       string `toml:"sync_root_type"`
	SyncRootID         int64  `toml:"sync_root_id"`
	SyncTargetLanguage string `toml:"sync_target_language"`
}

// Features toggles module functionality.
type Features struct {
	Staleness bool `toml:"staleness"`
	Settings  bool `toml:"settings"`
	Logger    bool `toml:"logger"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `toml:"provider"`
	Level     string   `toml:"level"`
	Format    string   `toml:"format"`
	AddSource bool     `toml:"add_source"`
	Focus     []string `toml:"focus"`
}

// DefaultConfig returns in-memory storage, staleness tracking on and the
// DeepL provider selected.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Driver:       "sqlite3",
			DSN:          "file:autotranslate?mode=memory&cache=shared",
			MaxOpenConns: 1,
			AutoMigrate:  true,
		},
		Cache: CacheConfig{
			Enabled:     true,
			DefaultTTL:  time.Minute,
			DisplaySize: 1024,
		},
		Layout: hostmodel.DefaultLayout(),
		Eligibility: EligibilityConfig{
			MinColumnSize: 254,
		},
		Tokenizer: tokenguard.Options{},
		Provider: ProviderConfig{
			Name: "deepl",
			Gemini: GeminiConfig{
				Model: "gemini-2.5-flash",
			},
			DeepL: DeepLConfig{
				Timeout: 30 * time.Second,
			},
		},
		Commands: CommandsConfig{
			Timeout: 2 * time.Minute,
		},
		Features: Features{
			Staleness: true,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks. Provider credentials are
// checked only when RequireCredentials is called.
func (cfg Config) Validate() error {
	switch NormalizeDriver(cfg.Storage.Driver) {
	case "sqlite3", "postgres", "mysql":
	default:
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
	}
	if strings.TrimSpace(cfg.Storage.DSN) == "" {
		return ErrStorageDSNRequired
	}
	if code := strings.TrimSpace(cfg.DefaultSourceLanguage); code != "" && !mlang.ValidCode(code) {
		return fmt.Errorf("%w: %s", ErrSourceLanguageInvalid, code)
	}
	if cfg.Eligibility.MinColumnSize < 0 {
		return ErrMinColumnSizeInvalid
	}
	if err := cfg.Layout.Validate(); err != nil {
		return err
	}

	provider := normalizeProvider(cfg.Provider.Name)
	if provider == "" {
		return ErrProviderRequired
	}
	if !isSupportedTranslationProvider(provider) {
		return fmt.Errorf("%w: %s", ErrProviderUnknown, provider)
	}

	if cfg.Commands.AutoRegisterCron {
		target := strings.TrimSpace(cfg.Commands.SyncTargetLanguage)
		if strings.TrimSpace(cfg.Commands.SyncCron) == "" || !mlang.ValidCode(target) || target == mlang.OtherCode {
			return ErrCommandsCronRequiresSchedule
		}
	}

	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

// RequireCredentials reports a missing API key for the active provider.
func (cfg Config) RequireCredentials() error {
	switch normalizeProvider(cfg.Provider.Name) {
	case "deepl":
		if strings.TrimSpace(cfg.Provider.DeepL.APIKey) == "" {
			return fmt.Errorf("%w: deepl", ErrProviderAPIKeyRequired)
		}
	case "gemini":
		if strings.TrimSpace(cfg.Provider.Gemini.APIKey) == "" {
			return fmt.Errorf("%w: gemini", ErrProviderAPIKeyRequired)
		}
	}
	return nil
}

// NormalizeDriver maps driver aliases to sqlite3, postgres or mysql.
func NormalizeDriver(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		return "sqlite3"
	case "postgres", "postgresql", "pgx", "pg":
		return "postgres"
	case "mysql", "mariadb":
		return "mysql"
	default:
		return ""
	}
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedTranslationProvider(provider string) bool {
	switch provider {
	case "deepl", "gemini":
		return true
	default:
		return false
	}
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
