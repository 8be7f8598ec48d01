package translate

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-autotranslate/internal/collector"
	"github.com/goliatone/go-autotranslate/internal/logging"
	"github.com/goliatone/go-autotranslate/internal/mlang"
	"github.com/goliatone/go-autotranslate/pkg/interfaces"
)

// SaveRequest merges a translation into one field.
//
// SourceCode names the region holding the source text and defaults to
// "other"; untagged stored text is wrapped under it before merging.
// SourceText, when set, replaces the source region whose inner text still
// equals ExpectedSource.
type SaveRequest struct {
	Key            collector.FieldKey
	TargetLanguage string
	Text           string
	SourceCode     string
	SourceText     string
	ExpectedSource string
}

// SaveResult is the outcome of one SaveRequest. Written is true once the
// host accepted the value; Err may still report a staleness failure after
// that point.
type SaveResult struct {
	Key     collector.FieldKey
	Value   string
	Written bool
	Err     error
}

// Save applies every request independently and returns one result per
// request in input order.
func (s *Service) Save(ctx context.Context, requests []SaveRequest) []SaveResult {
	results := make([]SaveResult, 0, len(requests))
	saved := 0
	for _, req := range requests {
		res := s.saveOne(ctx, req)
		if res.Written {
			saved++
		}
		results = append(results, res)
	}
	s.logger.Info("translate.save.completed", "items", len(requests), "written", saved)
	return results
}

func (s *Service) saveOne(ctx context.Context, req SaveRequest) SaveResult {
	key := req.Key
	res := SaveResult{Key: key}
	target := strings.TrimSpace(req.TargetLanguage)
	logger := logging.WithContainer(
		logging.WithFieldContext(s.logger, key.SourceType, key.ItemID, key.FieldName, target),
		key.ContainerID,
	)
	if !mlang.ValidCode(target) || target == mlang.OtherCode {
		res.Err = ErrInvalidLanguage
		return res
	}
	sourceCode := strings.TrimSpace(req.SourceCode)
	if sourceCode == "" {
		sourceCode = mlang.OtherCode
	}
	if !mlang.ValidCode(sourceCode) {
		res.Err = ErrInvalidLanguage
		return res
	}

	record, err := s.model.GetRecord(ctx, key.SourceType, key.ItemID)
	if err != nil {
		res.Err = s.writeError(key, 0, 0, err)
		logger.Warn("translate.save.read_failed", "error", err)
		return res
	}
	value := record.String(key.FieldName)
	if !mlang.HasTags(value) {
		// Wrap cannot fail on untagged text.
		value, _ = mlang.Wrap(value, sourceCode)
	}
	if req.SourceText != "" {
		value = mlang.ReplaceSourceSegment(value, sourceCode, req.ExpectedSource, req.SourceText)
	}
	value = mlang.UpdateOrAdd(value, target, req.Text)
	res.Value = value

	if limit := s.maxLength(ctx, key); limit > 0 {
		if actual := utf8.RuneCountInString(value); actual > limit {
			res.Err = s.writeError(key, actual, limit, nil)
			logger.Warn("translate.save.too_long", "length", actual, "max", limit)
			return res
		}
	}

	if err := s.model.UpdateField(ctx, key.SourceType, key.ItemID, key.FieldName, value); err != nil {
		res.Err = s.writeError(key, utf8.RuneCountInString(value), 0, err)
		logger.Warn("translate.save.write_failed", "error", err)
		return res
	}
	res.Written = true

	if s.tracker != nil {
		status, err := s.tracker.Lookup(ctx, key.StalenessKey(target))
		if err == nil {
			err = s.tracker.MarkTranslated(ctx, status)
		}
		if err != nil {
			res.Err = err
			logger.Error("translate.save.staleness_failed", "error", err)
			return res
		}
	}
	logger.Debug("translate.save.written", "length", utf8.RuneCountInString(value))
	return res
}

// maxLength returns the declared length of the field column, zero when
// unbounded or unknown.
func (s *Service) maxLength(ctx context.Context, key collector.FieldKey) int {
	cols, err := s.model.GetColumns(ctx, key.SourceType)
	if err != nil {
		return 0
	}
	for _, col := range cols {
		if col.Name == key.FieldName && col.Kind == interfaces.ColumnChar {
			return col.MaxLength
		}
	}
	return 0
}

func (s *Service) writeError(key collector.FieldKey, actual, limit int, err error) error {
	var werr *interfaces.WriteError
	if errors.As(err, &werr) {
		return werr
	}
	return &interfaces.WriteError{
		SourceType: key.SourceType,
		ID:         key.ItemID,
		Column:     key.FieldName,
		Actual:     actual,
		Max:        limit,
		Err:        err,
	}
}
