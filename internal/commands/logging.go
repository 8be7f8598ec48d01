package commands

import (
	"strings"

	"github.com/goliatone/go-autotranslate/internal/logging"
	"github.com/goliatone/go-autotranslate/pkg/interfaces"
)

const (
	commandModuleRoot        = "autotranslate.commands"
	translationCommandModule = "translations"
)

// CommandLogger returns the logger of a command module. A blank module logs
// with the translation commands.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = translationCommandModule
	}
	logger := logging.ModuleLogger(provider, commandModuleRoot+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}

// TranslationLogger returns the logger shared by the translation handlers.
func TranslationLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return CommandLogger(provider, translationCommandModule)
}

// RootFields tags a command that walks the tree under one root item.
// A blank target language is left out.
func RootFields(rootType string, rootID int64, targetLang string) map[string]any {
	fields := map[string]any{
		"root_type": strings.TrimSpace(rootType),
		"root_id":   rootID,
	}
	if lang := strings.TrimSpace(targetLang); lang != "" {
		fields["target_lang"] = lang
	}
	return fields
}

// FieldFields tags a command aimed at one stored field.
func FieldFields(sourceType string, itemID int64, field string) map[string]any {
	return map[string]any{
		"source_type": strings.TrimSpace(sourceType),
		"item_id":     itemID,
		"field":       strings.TrimSpace(field),
	}
}
