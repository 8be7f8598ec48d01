package runtimeconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables applied by ApplyEnv.
const (
	EnvStorageDriver   = "AUTOTRANSLATE_DB_DRIVER"
	EnvStorageDSN      = "AUTOTRANSLATE_DB_DSN"
	EnvProvider        = "AUTOTRANSLATE_PROVIDER"
	EnvSourceLanguage  = "AUTOTRANSLATE_SOURCE_LANGUAGE"
	EnvMinColumnSize   = "AUTOTRANSLATE_MIN_COLUMN_SIZE"
	EnvLogLevel        = "AUTOTRANSLATE_LOG_LEVEL"
	EnvDeepLAPIKey     = "DEEPL_API_KEY"
	EnvDeepLBaseURL    = "DEEPL_BASE_URL"
	EnvGeminiAPIKey    = "GEMINI_API_KEY"
	EnvGeminiModel     = "GEMINI_MODEL"
)

// Load builds a config from DefaultConfig, the TOML file at path (skipped when
// path is empty), the optional .env files and the process environment, in
// that order. The result is validated.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("autotranslate config: decode %s: %w", path, err)
		}
	}
	if err := LoadEnvFiles(envFiles...); err != nil {
		return cfg, err
	}
	cfg = ApplyEnv(cfg, os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Decode parses TOML on top of DefaultConfig without validating.
func Decode(data string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.Decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("autotranslate config: decode: %w", err)
	}
	return cfg, nil
}

// LoadEnvFiles loads .env style files into the process environment without
// overriding variables already set. Missing files are ignored.
func LoadEnvFiles(files ...string) error {
	for _, file := range files {
		if strings.TrimSpace(file) == "" {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("autotranslate config: load env %s: %w", file, err)
		}
	}
	return nil
}

// ApplyEnv overlays environment values onto cfg. lookup is usually
// os.LookupEnv.
func ApplyEnv(cfg Config, lookup func(string) (string, bool)) Config {
	if lookup == nil {
		return cfg
	}
	set := func(key string, dst *string) {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			*dst = strings.TrimSpace(value)
		}
	}
	set(EnvStorageDriver, &cfg.Storage.Driver)
	set(EnvStorageDSN, &cfg.Storage.DSN)
	set(EnvProvider, &cfg.Provider.Name)
	set(EnvSourceLanguage, &cfg.DefaultSourceLanguage)
	set(EnvLogLevel, &cfg.Logging.Level)
	set(EnvDeepLAPIKey, &cfg.Provider.DeepL.APIKey)
	set(EnvDeepLBaseURL, &cfg.Provider.DeepL.BaseURL)
	set(EnvGeminiAPIKey, &cfg.Provider.Gemini.APIKey)
	set(EnvGeminiModel, &cfg.Provider.Gemini.Model)

	if value, ok := lookup(EnvMinColumnSize); ok {
		if size, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			cfg.Eligibility.MinColumnSize = size
		}
	}
	return cfg
}
