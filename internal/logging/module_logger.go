package logging

import (
	"context"
	"strconv"
	"strings"

	"github.com/goliatone/go-autotranslate/pkg/interfaces"
)

const (
	rootModule      = "autotranslate"
	collectorModule = "autotranslate.collector"
	stalenessModule = "autotranslate.staleness"
	translateModule = "autotranslate.translate"
	providerModule  = "autotranslate.provider"
	contentModule   = "autotranslate.content"
)

const (
	fieldSourceType  = "source_type"
	fieldItemID      = "item_id"
	fieldFieldName   = "field"
	fieldTargetLang  = "target_lang"
	fieldContainerID = "container_id"
)

// ModuleLogger returns a logger scoped to module. A nil provider yields NoOp.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}
	return WithFields(logger, map[string]any{"module": module})
}

// CollectorLogger returns the logger used by content tree collection.
func CollectorLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, collectorModule)
}

// StalenessLogger returns the logger used by the staleness tracker.
func StalenessLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, stalenessModule)
}

// TranslateLogger returns the logger used by the translate and save workflow.
func TranslateLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, translateModule)
}

// ContentLogger returns the logger used by the host content model.
func ContentLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, contentModule)
}

// ProviderLogger returns the logger for a named translation provider adapter.
func ProviderLogger(provider interfaces.LoggerProvider, name string) interfaces.Logger {
	name = strings.TrimSpace(name)
	if name == "" {
		return ModuleLogger(provider, providerModule)
	}
	return ModuleLogger(provider, providerModule+"."+name)
}

// WithFieldContext annotates logger with the identity of a translatable field.
// Empty values are skipped.
func WithFieldContext(logger interfaces.Logger, sourceType string, itemID int64, field, targetLang string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(sourceType); trimmed != "" {
		fields[fieldSourceType] = trimmed
	}
	if itemID != 0 {
		fields[fieldItemID] = strconv.FormatInt(itemID, 10)
	}
	if trimmed := strings.TrimSpace(field); trimmed != "" {
		fields[fieldFieldName] = trimmed
	}
	if trimmed := strings.TrimSpace(targetLang); trimmed != "" {
		fields[fieldTargetLang] = trimmed
	}
	return WithFields(logger, fields)
}

// WithContainer annotates logger with the parent module id.
func WithContainer(logger interfaces.Logger, containerID int64) interfaces.Logger {
	if containerID == 0 {
		return logger
	}
	return WithFields(logger, map[string]any{fieldContainerID: containerID})
}

// NoOp returns a logger that drops everything.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
