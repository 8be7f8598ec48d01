package translationcmd

import (
	"context"
	"errors"
	"strconv"
	"strings"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-autotranslate/internal/collector"
	"github.com/goliatone/go-autotranslate/internal/commands"
	"github.com/goliatone/go-autotranslate/internal/logging"
	"github.com/goliatone/go-autotranslate/internal/translate"
	"github.com/goliatone/go-autotranslate/pkg/interfaces"
)

const (
	translateOperation      = "translations.translate"
	saveOperation           = "translations.save"
	sourceModifiedOperation = "translations.source_modified"
)

// ErrTrackerRequired is returned when source edits are reported without a
// staleness tracker.
var ErrTrackerRequired = errors.New("translation command: staleness tracker required")

var (
	_ command.Commander[TranslateFieldsCommand]    = (*TranslateFieldsHandler)(nil)
	_ command.Commander[SaveTranslationsCommand]   = (*SaveTranslationsHandler)(nil)
	_ command.Commander[MarkSourceModifiedCommand] = (*MarkSourceModifiedHandler)(nil)
)

// FieldCollector lists the translatable fields under a root node.
type FieldCollector interface {
	Collect(ctx context.Context, root interfaces.ContentNode, opts collector.RunOptions) ([]collector.Field, error)
}

// Workflow translates and saves fields.
type Workflow interface {
	Translate(ctx context.Context, fields []collector.Field, req translate.BatchRequest) ([]translate.Result, error)
	Save(ctx context.Context, requests []translate.SaveRequest) []translate.SaveResult
}

// SourceTracker receives source edit signals.
type SourceTracker interface {
	MarkSourceModified(ctx context.Context, sourceType string, itemID int64, fieldName string) (int, error)
}

// TranslateObserver receives the per-field outcome of a translate run.
// saved is nil for dry runs.
type TranslateObserver func(ctx context.Context, msg TranslateFieldsCommand, translated []translate.Result, saved []translate.SaveResult)

// SaveObserver receives the per-field outcome of a save run.
type SaveObserver func(ctx context.Context, msg SaveTranslationsCommand, saved []translate.SaveResult)

// TranslateFieldsHandler runs TranslateFieldsCommand.
type TranslateFieldsHandler struct {
	inner *commands.Handler[TranslateFieldsCommand]
}

// NewTranslateFieldsHandler binds the handler to its collaborators.
func NewTranslateFieldsHandler(fields FieldCollector, workflow Workflow, logger interfaces.Logger, observer TranslateObserver, opts ...commands.HandlerOption[TranslateFieldsCommand]) *TranslateFieldsHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg TranslateFieldsCommand) error {
		root := interfaces.ContentNode{SourceType: strings.TrimSpace(msg.RootType), ID: msg.RootID, SubType: strings.TrimSpace(msg.RootType)}
		collected, err := fields.Collect(ctx, root, collector.RunOptions{TargetLanguage: msg.TargetLanguage})
		if err != nil {
			return err
		}
		selected := selectFields(collected, msg.Fields, msg.StaleOnly)
		if len(selected) == 0 {
			baseLogger.Info("translations.command.translate.nothing_selected", "collected", len(collected))
			if observer != nil {
				observer(ctx, msg, nil, nil)
			}
			return nil
		}

		results, err := workflow.Translate(ctx, selected, translate.BatchRequest{
			SourceLanguage: msg.SourceLanguage,
			TargetLanguage: msg.TargetLanguage,
			Options:        msg.Options,
		})
		if err != nil {
			return err
		}

		var (
			failures []error
			requests []translate.SaveRequest
		)
		for _, res := range results {
			if res.Err != nil {
				failures = append(failures, res.Err)
				continue
			}
			requests = append(requests, translate.SaveRequest{
				Key:            res.Key,
				TargetLanguage: msg.TargetLanguage,
				Text:           res.Text,
				SourceCode:     res.SourceCode,
			})
		}

		var saved []translate.SaveResult
		if !msg.DryRun && len(requests) > 0 {
			saved = workflow.Save(ctx, requests)
			for _, res := range saved {
				if res.Err != nil {
					failures = append(failures, res.Err)
				}
			}
		}
		if observer != nil {
			observer(ctx, msg, results, saved)
		}

		logging.WithFields(baseLogger, map[string]any{
			"collected":  len(collected),
			"selected":   len(selected),
			"translated": len(requests),
			"saved":      countWritten(saved),
			"failed":     len(failures),
			"dry_run":    msg.DryRun,
		}).Info("translations.command.translate.completed")
		return commands.NewBatchError(translateOperation, len(selected), failures)
	}

	handlerOpts := []commands.HandlerOption[TranslateFieldsCommand]{
		commands.WithLogger[TranslateFieldsCommand](baseLogger),
		commands.WithOperation[TranslateFieldsCommand](translateOperation),
		commands.WithMessageFields(func(msg TranslateFieldsCommand) map[string]any {
			fields := commands.RootFields(msg.RootType, msg.RootID, msg.TargetLanguage)
			if len(msg.Fields) > 0 {
				fields["selected"] = len(msg.Fields)
			}
			if msg.StaleOnly {
				fields["stale_only"] = true
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[TranslateFieldsCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &TranslateFieldsHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[TranslateFieldsCommand].
func (h *TranslateFieldsHandler) Execute(ctx context.Context, msg TranslateFieldsCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SaveTranslationsHandler runs SaveTranslationsCommand.
type SaveTranslationsHandler struct {
	inner *commands.Handler[SaveTranslationsCommand]
}

// NewSaveTranslationsHandler binds the handler to the workflow.
func NewSaveTranslationsHandler(workflow Workflow, logger interfaces.Logger, observer SaveObserver, opts ...commands.HandlerOption[SaveTranslationsCommand]) *SaveTranslationsHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg SaveTranslationsCommand) error {
		requests := make([]translate.SaveRequest, 0, len(msg.Items))
		for _, item := range msg.Items {
			requests = append(requests, translate.SaveRequest{
				Key: collector.FieldKey{
					SourceType:  strings.TrimSpace(item.SourceType),
					ItemID:      item.ItemID,
					FieldName:   strings.TrimSpace(item.FieldName),
					ContainerID: item.ContainerID,
				},
				TargetLanguage: item.TargetLanguage,
				Text:           item.Text,
				SourceCode:     item.SourceCode,
				SourceText:     item.SourceText,
				ExpectedSource: item.ExpectedSource,
			})
		}
		saved := workflow.Save(ctx, requests)
		if observer != nil {
			observer(ctx, msg, saved)
		}
		var failures []error
		for _, res := range saved {
			if res.Err != nil {
				failures = append(failures, res.Err)
			}
		}
		baseLogger.Info("translations.command.save.completed", "items", len(requests), "saved", countWritten(saved), "failed", len(failures))
		return commands.NewBatchError(saveOperation, len(requests), failures)
	}

	handlerOpts := []commands.HandlerOption[SaveTranslationsCommand]{
		commands.WithLogger[SaveTranslationsCommand](baseLogger),
		commands.WithOperation[SaveTranslationsCommand](saveOperation),
		commands.WithMessageFields(func(msg SaveTranslationsCommand) map[string]any {
			return map[string]any{"items": len(msg.Items)}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[SaveTranslationsCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SaveTranslationsHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[SaveTranslationsCommand].
func (h *SaveTranslationsHandler) Execute(ctx context.Context, msg SaveTranslationsCommand) error {
	return h.inner.Execute(ctx, msg)
}

// MarkSourceModifiedHandler runs MarkSourceModifiedCommand.
type MarkSourceModifiedHandler struct {
	inner *commands.Handler[MarkSourceModifiedCommand]
}

// NewMarkSourceModifiedHandler binds the handler to the tracker.
func NewMarkSourceModifiedHandler(tracker SourceTracker, logger interfaces.Logger, opts ...commands.HandlerOption[MarkSourceModifiedCommand]) *MarkSourceModifiedHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg MarkSourceModifiedCommand) error {
		if tracker == nil {
			return ErrTrackerRequired
		}
		touched, err := tracker.MarkSourceModified(ctx, strings.TrimSpace(msg.SourceType), msg.ItemID, strings.TrimSpace(msg.FieldName))
		if err != nil {
			return err
		}
		baseLogger.Debug("translations.command.source_modified.completed", "records", touched)
		return nil
	}

	handlerOpts := []commands.HandlerOption[MarkSourceModifiedCommand]{
		commands.WithLogger[MarkSourceModifiedCommand](baseLogger),
		commands.WithOperation[MarkSourceModifiedCommand](sourceModifiedOperation),
		commands.WithMessageFields(func(msg MarkSourceModifiedCommand) map[string]any {
			return commands.FieldFields(msg.SourceType, msg.ItemID, msg.FieldName)
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &MarkSourceModifiedHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[MarkSourceModifiedCommand].
func (h *MarkSourceModifiedHandler) Execute(ctx context.Context, msg MarkSourceModifiedCommand) error {
	return h.inner.Execute(ctx, msg)
}

type fieldRef struct {
	sourceType string
	itemID     int64
	field      string
}

func parseReference(ref string) (fieldRef, bool) {
	parts := strings.Split(strings.TrimSpace(ref), ":")
	if len(parts) != 3 {
		return fieldRef{}, false
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || parts[0] == "" || parts[2] == "" {
		return fieldRef{}, false
	}
	return fieldRef{sourceType: parts[0], itemID: id, field: parts[2]}, true
}

func selectFields(fields []collector.Field, refs []string, staleOnly bool) []collector.Field {
	wanted := map[fieldRef]bool{}
	for _, ref := range refs {
		if parsed, ok := parseReference(ref); ok {
			wanted[parsed] = true
		}
	}
	var out []collector.Field
	for _, f := range fields {
		if len(wanted) > 0 && !wanted[fieldRef{sourceType: f.Key.SourceType, itemID: f.Key.ItemID, field: f.Key.FieldName}] {
			continue
		}
		if staleOnly && f.Status != nil && f.Status.Ready() && !f.NeedsUpdate() {
			continue
		}
		out = append(out, f)
	}
	return out
}

func countWritten(results []translate.SaveResult) int {
	n := 0
	for _, res := range results {
		if res.Written {
			n++
		}
	}
	return n
}
