package translate_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-autotranslate/internal/collector"
	"github.com/goliatone/go-autotranslate/internal/hostmodel"
	"github.com/goliatone/go-autotranslate/internal/staleness"
	"github.com/goliatone/go-autotranslate/internal/tokenguard"
	"github.com/goliatone/go-autotranslate/internal/translate"
	"github.com/goliatone/go-autotranslate/pkg/interfaces"
)

type fakeProvider struct {
	requests []interfaces.TranslationRequest
	target   string
	opts     interfaces.TranslationOptions
	failKeys map[string]bool
	dropKeys map[string]bool
	err      error
}

func (p *fakeProvider) Translate(_ context.Context, items []interfaces.TranslationRequest, target string, opts interfaces.TranslationOptions) ([]interfaces.TranslationResult, error) {
	p.requests = append(p.requests, items...)
	p.target = target
	p.opts = opts
	if p.err != nil {
		return nil, p.err
	}
	var out []interfaces.TranslationResult
	for _, item := range items {
		switch {
		case p.dropKeys[item.Key]:
		case p.failKeys[item.Key]:
			out = append(out, interfaces.TranslationResult{Key: item.Key, Err: errors.New("unsupported")})
		default:
			out = append(out, interfaces.TranslationResult{Key: item.Key, TranslatedText: "[" + target + "] " + item.Text})
		}
	}
	return out, nil
}

type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func newPageModel(t *testing.T) *hostmodel.Memory {
	t.Helper()
	m := hostmodel.NewMemory()
	m.DefineTable("page",
		interfaces.Column{Name: "id", Kind: interfaces.ColumnInteger},
		interfaces.Column{Name: "name", Kind: interfaces.ColumnChar, MaxLength: 120},
		interfaces.Column{Name: "content", Kind: interfaces.ColumnText},
	)
	rows := []interfaces.ContentRecord{
		{"id": 1, "name": "Hello", "content": "Intro <pre class=\"x\">a < b</pre> end"},
		{"id": 2, "name": "{mlang other}Hi{mlang}{mlang en}Hey{mlang}", "content": "{mlang fr}Bonjour{mlang}{mlang es}Hola{mlang}"},
	}
	for _, row := range rows {
		if err := m.Put("page", row); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	return m
}

func field(sourceType string, id int64, name, raw string) collector.Field {
	return collector.Field{Key: collector.FieldKey{SourceType: sourceType, ItemID: id, FieldName: name}, Raw: raw}
}

func TestSourceText(t *testing.T) {
	cases := []struct {
		raw, lang, text, code string
	}{
		{"Plain", "en", "Plain", ""},
		{"{mlang other}A{mlang}{mlang en}B{mlang}", "en", "B", "en"},
		{"{mlang other}A{mlang}{mlang en}B{mlang}", "de", "A", "other"},
		{"{mlang fr}F{mlang}{mlang es}E{mlang}", "de", "F", "fr"},
		{"{mlang fr}F{mlang}{mlang es}E{mlang}", "", "F", "fr"},
	}
	for _, tc := range cases {
		text, code := translate.SourceText(tc.raw, tc.lang)
		if text != tc.text || code != tc.code {
			t.Fatalf("SourceText(%q, %q) = %q, %q; want %q, %q", tc.raw, tc.lang, text, code, tc.text, tc.code)
		}
	}
}

func TestTranslateProtectsTokensAndKeepsOrder(t *testing.T) {
	p := &fakeProvider{failKeys: map[string]bool{}, dropKeys: map[string]bool{}}
	svc, err := translate.New(newPageModel(t),
		translate.WithProvider("fake", p),
		translate.WithGuard(tokenguard.New(tokenguard.Options{Pretag: true, Latex: true})),
		translate.WithDefaultSourceLanguage("en"),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	fields := []collector.Field{
		field("page", 1, "name", "Hello"),
		field("page", 1, "content", "Intro <pre class=\"x\">a < b</pre> end"),
		field("page", 2, "name", "{mlang other}Hi{mlang}{mlang en}Hey{mlang}"),
		field("page", 2, "content", "{mlang fr}Bonjour{mlang}{mlang es}Hola{mlang}"),
		field("page", 3, "name", "{mlang en} {mlang}"),
	}
	p.failKeys[fields[3].Key.String()] = true

	results, err := svc.Translate(context.Background(), fields, translate.BatchRequest{
		TargetLanguage: "de",
		Options:        interfaces.TranslationOptions{TagHandling: "html"},
	})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if len(p.requests) != 4 || p.target != "de" || p.opts.TagHandling != "html" {
		t.Fatalf("expected one batch of four items, got %d to %q", len(p.requests), p.target)
	}
	if p.requests[1].Text != "Intro __PRETAG_0__ end" {
		t.Fatalf("expected protected text, got %q", p.requests[1].Text)
	}
	if p.requests[0].SourceLang != "en" || p.requests[2].SourceLang != "en" || p.requests[3].SourceLang != "fr" {
		t.Fatalf("unexpected source languages %+v", p.requests)
	}

	if results[0].Text != "[de] Hello" || results[0].SourceCode != "" {
		t.Fatalf("unexpected untagged result %+v", results[0])
	}
	if results[1].Text != "[de] Intro <pre class=\"x\">a < b</pre> end" {
		t.Fatalf("expected restored pre block, got %q", results[1].Text)
	}
	if results[2].Text != "[de] Hey" || results[2].SourceCode != "en" {
		t.Fatalf("expected en region to be used, got %+v", results[2])
	}
	var perr *interfaces.ProviderError
	if !errors.As(results[3].Err, &perr) || perr.Provider != "fake" {
		t.Fatalf("expected provider error on item 3, got %+v", results[3])
	}
	if !errors.Is(results[4].Err, translate.ErrEmptySource) || results[4].OK() {
		t.Fatalf("expected empty source error, got %+v", results[4])
	}
}

func TestTranslateReportsBatchFailurePerField(t *testing.T) {
	p := &fakeProvider{err: errors.New("timeout")}
	svc, err := translate.New(newPageModel(t), translate.WithProvider("fake", p))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	results, err := svc.Translate(context.Background(), []collector.Field{field("page", 1, "name", "Hello"), field("page", 1, "content", "Body")}, translate.BatchRequest{TargetLanguage: "fr"})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	for _, res := range results {
		if !errors.Is(res.Err, interfaces.ErrProviderFailed) || !strings.Contains(res.Err.Error(), "timeout") {
			t.Fatalf("expected provider failure per field, got %+v", res)
		}
	}
}

func TestTranslateReportsMissingResults(t *testing.T) {
	f := field("page", 1, "name", "Hello")
	p := &fakeProvider{dropKeys: map[string]bool{f.Key.String(): true}}
	svc, err := translate.New(newPageModel(t), translate.WithProvider("fake", p))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	results, err := svc.Translate(context.Background(), []collector.Field{f}, translate.BatchRequest{TargetLanguage: "fr"})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if !errors.Is(results[0].Err, translate.ErrMissingResult) {
		t.Fatalf("expected missing result error, got %+v", results[0])
	}
}

func TestTranslateValidation(t *testing.T) {
	if _, err := translate.New(nil); !errors.Is(err, translate.ErrModelRequired) {
		t.Fatalf("expected ErrModelRequired, got %v", err)
	}
	svc, err := translate.New(newPageModel(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := svc.Translate(context.Background(), nil, translate.BatchRequest{TargetLanguage: "de"}); !errors.Is(err, translate.ErrProviderRequired) {
		t.Fatalf("expected ErrProviderRequired, got %v", err)
	}
	svc, _ = translate.New(newPageModel(t), translate.WithProvider("fake", &fakeProvider{}))
	for _, lang := range []string{"", "other", "deu", "de-DE"} {
		if _, err := svc.Translate(context.Background(), nil, translate.BatchRequest{TargetLanguage: lang}); !errors.Is(err, translate.ErrInvalidLanguage) {
			t.Fatalf("expected ErrInvalidLanguage for %q, got %v", lang, err)
		}
	}
}

func TestTranslateFallsBackToDefaultOptions(t *testing.T) {
	p := &fakeProvider{}
	defaults := interfaces.TranslationOptions{Formality: "less", IgnoreTags: []string{"code"}}
	svc, err := translate.New(newPageModel(t), translate.WithProvider("fake", p), translate.WithDefaultOptions(defaults))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fields := []collector.Field{field("page", 1, "name", "Hello")}

	if _, err := svc.Translate(context.Background(), fields, translate.BatchRequest{TargetLanguage: "de"}); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if p.opts.Formality != "less" || len(p.opts.IgnoreTags) != 1 {
		t.Fatalf("expected default options, got %+v", p.opts)
	}

	explicit := interfaces.TranslationOptions{Formality: "more"}
	if _, err := svc.Translate(context.Background(), fields, translate.BatchRequest{TargetLanguage: "de", Options: explicit}); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if p.opts.Formality != "more" || len(p.opts.IgnoreTags) != 0 {
		t.Fatalf("expected request options to win, got %+v", p.opts)
	}
}

func TestSaveMergesAndStampsTracker(t *testing.T) {
	model := newPageModel(t)
	clock := &stepClock{now: time.Unix(1_700_000_000, 0)}
	repo := staleness.NewMemoryRepository()
	tracker := staleness.NewTracker(repo, staleness.WithClock(clock.Now))
	svc, err := translate.New(model, translate.WithTracker(tracker))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	nameKey := collector.FieldKey{SourceType: "page", ItemID: 1, FieldName: "name"}
	otherKey := collector.FieldKey{SourceType: "page", ItemID: 2, FieldName: "name"}
	results := svc.Save(context.Background(), []translate.SaveRequest{
		{Key: nameKey, TargetLanguage: "de", Text: "Hallo"},
		{Key: otherKey, TargetLanguage: "fr", Text: "Salut", SourceCode: "en", SourceText: "Hey there", ExpectedSource: "Hey"},
	})
	for _, res := range results {
		if res.Err != nil || !res.Written {
			t.Fatalf("unexpected save failure %+v", res)
		}
	}

	record, _ := model.GetRecord(context.Background(), "page", 1)
	if got := record.String("name"); got != "{mlang other}Hello{mlang}{mlang de}Hallo{mlang}" {
		t.Fatalf("unexpected merged value %q", got)
	}
	record, _ = model.GetRecord(context.Background(), "page", 2)
	if got := record.String("name"); got != "{mlang other}Hi{mlang}{mlang en}Hey there{mlang}{mlang fr}Salut{mlang}" {
		t.Fatalf("unexpected merged value %q", got)
	}

	status, err := tracker.Lookup(context.Background(), nameKey.StalenessKey("de"))
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if status.TranslationLastModified <= status.SourceLastModified || status.NeedsUpdate() {
		t.Fatalf("expected translation stamp after save, got %+v", status)
	}
}

func TestSaveRejectsOverlongValueWithoutStamping(t *testing.T) {
	model := newPageModel(t)
	repo := staleness.NewMemoryRepository()
	svc, err := translate.New(model, translate.WithTracker(staleness.NewTracker(repo)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	key := collector.FieldKey{SourceType: "page", ItemID: 1, FieldName: "name"}
	results := svc.Save(context.Background(), []translate.SaveRequest{{Key: key, TargetLanguage: "de", Text: strings.Repeat("x", 150)}})

	var werr *interfaces.WriteError
	if !errors.As(results[0].Err, &werr) || results[0].Written {
		t.Fatalf("expected write error, got %+v", results[0])
	}
	if werr.Max != 120 || werr.Actual <= 120 || !strings.Contains(werr.Error(), "exceeds column maximum 120") {
		t.Fatalf("unexpected write error %v", werr)
	}
	record, _ := model.GetRecord(context.Background(), "page", 1)
	if record.String("name") != "Hello" {
		t.Fatalf("expected stored value untouched, got %q", record.String("name"))
	}
	if _, err := repo.Find(context.Background(), key.StalenessKey("de")); !staleness.IsNotFound(err) {
		t.Fatalf("expected no staleness record after failed save, got %v", err)
	}
}

func TestSaveReportsMissingRecordAndBadLanguage(t *testing.T) {
	svc, err := translate.New(newPageModel(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	results := svc.Save(context.Background(), []translate.SaveRequest{
		{Key: collector.FieldKey{SourceType: "page", ItemID: 99, FieldName: "name"}, TargetLanguage: "de", Text: "x"},
		{Key: collector.FieldKey{SourceType: "page", ItemID: 1, FieldName: "name"}, TargetLanguage: "other", Text: "x"},
		{Key: collector.FieldKey{SourceType: "page", ItemID: 1, FieldName: "content"}, TargetLanguage: "de", Text: "Inhalt"},
	})
	if !errors.Is(results[0].Err, interfaces.ErrWriteFailed) || !errors.Is(results[0].Err, interfaces.ErrRecordNotFound) {
		t.Fatalf("expected write error for missing record, got %v", results[0].Err)
	}
	if !errors.Is(results[1].Err, translate.ErrInvalidLanguage) {
		t.Fatalf("expected ErrInvalidLanguage, got %v", results[1].Err)
	}
	if results[2].Err != nil || !strings.HasSuffix(results[2].Value, "{mlang de}Inhalt{mlang}") {
		t.Fatalf("expected third save to succeed independently, got %+v", results[2])
	}
}
