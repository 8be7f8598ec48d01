package autotranslate

import "github.com/goliatone/go-autotranslate/internal/runtimeconfig"

var (
	ErrStorageDriverUnknown         = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired           = runtimeconfig.ErrStorageDSNRequired
	ErrProviderRequired             = runtimeconfig.ErrProviderRequired
	ErrProviderUnknown              = runtimeconfig.ErrProviderUnknown
	ErrProviderAPIKeyRequired       = runtimeconfig.ErrProviderAPIKeyRequired
	ErrSourceLanguageInvalid        = runtimeconfig.ErrSourceLanguageInvalid
	ErrMinColumnSizeInvalid         = runtimeconfig.ErrMinColumnSizeInvalid
	ErrCommandsCronRequiresSchedule = runtimeconfig.ErrCommandsCronRequiresSchedule
	ErrLoggingProviderRequired      = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown       = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid          = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid         = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config            = runtimeconfig.Config
	StorageConfig     = runtimeconfig.StorageConfig
	CacheConfig       = runtimeconfig.CacheConfig
	EligibilityConfig = runtimeconfig.EligibilityConfig
	ProviderConfig    = runtimeconfig.ProviderConfig
	DeepLConfig       = runtimeconfig.DeepLConfig
	GeminiConfig      = runtimeconfig.GeminiConfig
	CommandsConfig    = runtimeconfig.CommandsConfig
	Features          = runtimeconfig.Features
	LoggingConfig     = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a TOML file, optional .env files and the environment on
// top of DefaultConfig.
func LoadConfig(path string, envFiles ...string) (Config, error) {
	return runtimeconfig.Load(path, envFiles...)
}
