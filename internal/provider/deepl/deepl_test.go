package deepl_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-resty/resty/v2"

	"github.com/goliatone/go-autotranslate/internal/provider/deepl"
	"github.com/goliatone/go-autotranslate/pkg/interfaces"
)

type capturedRequest struct {
	Auth string
	Body map[string]any
}

func newServer(t *testing.T, handle func(w http.ResponseWriter, body map[string]any)) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var (
		mu       sync.Mutex
		captured []capturedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/translate" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		mu.Lock()
		captured = append(captured, capturedRequest{Auth: r.Header.Get("Authorization"), Body: body})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		handle(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func upperAll(w http.ResponseWriter, body map[string]any) {
	var translations []map[string]string
	for _, text := range body["text"].([]any) {
		translations = append(translations, map[string]string{"text": strings.ToUpper(text.(string))})
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"translations": translations})
}

func TestTranslateGroupsBySourceLanguage(t *testing.T) {
	srv, captured := newServer(t, upperAll)
	client, err := deepl.New(deepl.Config{APIKey: "secret", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	items := []interfaces.TranslationRequest{
		{Key: "a", Text: "hello", SourceLang: "en"},
		{Key: "b", Text: "hola", SourceLang: "es"},
		{Key: "c", Text: "world", SourceLang: "en"},
		{Key: "d", Text: "misc", SourceLang: "other"},
	}
	opts := interfaces.TranslationOptions{Formality: "more", TagHandling: "html", IgnoreTags: []string{"x"}, PreserveFormatting: boolPtr(true)}
	results, err := client.Translate(context.Background(), items, "pt_br", opts)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}

	want := map[string]string{"a": "HELLO", "b": "HOLA", "c": "WORLD", "d": "MISC"}
	for i, res := range results {
		if res.Key != items[i].Key || res.Err != nil || res.TranslatedText != want[res.Key] {
			t.Fatalf("unexpected result %d: %+v", i, res)
		}
	}

	reqs := *captured
	if len(reqs) != 3 {
		t.Fatalf("expected one request per source language, got %d", len(reqs))
	}
	first := reqs[0]
	if first.Auth != "DeepL-Auth-Key secret" {
		t.Fatalf("unexpected auth header %q", first.Auth)
	}
	if first.Body["source_lang"] != "EN" || first.Body["target_lang"] != "PT-BR" {
		t.Fatalf("unexpected languages %+v", first.Body)
	}
	if texts := first.Body["text"].([]any); len(texts) != 2 || texts[1] != "world" {
		t.Fatalf("expected en texts grouped in order, got %v", texts)
	}
	if first.Body["formality"] != "more" || first.Body["tag_handling"] != "html" || first.Body["preserve_formatting"] != true {
		t.Fatalf("expected options to pass through, got %+v", first.Body)
	}
	if _, ok := first.Body["outline_detection"]; ok {
		t.Fatalf("expected unset outline_detection to be omitted, got %+v", first.Body)
	}
	if _, ok := reqs[2].Body["source_lang"]; ok {
		t.Fatalf("expected other to omit source_lang, got %+v", reqs[2].Body)
	}
}

func TestTranslateSendsExplicitFalseOptions(t *testing.T) {
	srv, captured := newServer(t, upperAll)
	client, err := deepl.New(deepl.Config{APIKey: "secret", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	items := []interfaces.TranslationRequest{{Key: "a", Text: "<p>hello</p>", SourceLang: "en"}}
	opts := interfaces.TranslationOptions{TagHandling: "xml", OutlineDetection: boolPtr(false), PreserveFormatting: boolPtr(false)}
	if _, err := client.Translate(context.Background(), items, "de", opts); err != nil {
		t.Fatalf("Translate: %v", err)
	}

	reqs := *captured
	if len(reqs) != 1 {
		t.Fatalf("expected one request, got %d", len(reqs))
	}
	value, ok := reqs[0].Body["outline_detection"]
	if !ok || value != false {
		t.Fatalf("expected outline_detection=false to be sent, got %+v", reqs[0].Body)
	}
	if value, ok := reqs[0].Body["preserve_formatting"]; !ok || value != false {
		t.Fatalf("expected preserve_formatting=false to be sent, got %+v", reqs[0].Body)
	}
}

func boolPtr(value bool) *bool {
	return &value
}

func TestTranslateReportsPerItemErrors(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, body map[string]any) {
		if body["source_lang"] == "ES" {
			w.WriteHeader(456)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Quota exceeded"})
			return
		}
		upperAll(w, body)
	})
	client, err := deepl.New(deepl.Config{APIKey: "secret", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	results, err := client.Translate(context.Background(), []interfaces.TranslationRequest{
		{Key: "a", Text: "hello", SourceLang: "en"},
		{Key: "b", Text: "hola", SourceLang: "es"},
	}, "de", interfaces.TranslationOptions{})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if results[0].Err != nil || results[0].TranslatedText != "HELLO" {
		t.Fatalf("expected first item to succeed, got %+v", results[0])
	}
	var perr *interfaces.ProviderError
	if !errors.As(results[1].Err, &perr) {
		t.Fatalf("expected provider error, got %v", results[1].Err)
	}
	if perr.Status != 456 || perr.Message != "Quota exceeded" || perr.Key != "b" {
		t.Fatalf("unexpected provider error %+v", perr)
	}
}

func TestTranslateTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := deepl.New(deepl.Config{APIKey: "secret", BaseURL: url})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	results, err := client.Translate(context.Background(), []interfaces.TranslationRequest{{Key: "a", Text: "x"}}, "de", interfaces.TranslationOptions{})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if !errors.Is(results[0].Err, interfaces.ErrProviderFailed) {
		t.Fatalf("expected provider failure, got %+v", results[0])
	}
}

func TestNewAndTranslateValidation(t *testing.T) {
	if _, err := deepl.New(deepl.Config{}); !errors.Is(err, deepl.ErrAPIKeyRequired) {
		t.Fatalf("expected ErrAPIKeyRequired, got %v", err)
	}
	client, err := deepl.New(deepl.Config{APIKey: "k"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.Translate(context.Background(), nil, " ", interfaces.TranslationOptions{}); !errors.Is(err, deepl.ErrTargetRequired) {
		t.Fatalf("expected ErrTargetRequired, got %v", err)
	}
	for in, want := range map[string]string{"en": "EN", "pt_br": "PT-BR", "other": "", "": ""} {
		if got := deepl.LanguageCode(in); got != want {
			t.Fatalf("LanguageCode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWithRestyClientKeepsCustomHeaders(t *testing.T) {
	var agent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"translations": []map[string]string{{"text": "Hallo"}}})
	}))
	t.Cleanup(srv.Close)

	custom := resty.New().SetHeader("User-Agent", "autotranslate-test")
	client, err := deepl.New(deepl.Config{APIKey: "k", BaseURL: srv.URL}, deepl.WithRestyClient(custom))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	results, err := client.Translate(context.Background(), []interfaces.TranslationRequest{{Key: "a", Text: "Hello"}}, "de", interfaces.TranslationOptions{})
	if err != nil || len(results) != 1 || results[0].TranslatedText != "Hallo" {
		t.Fatalf("unexpected results %+v err=%v", results, err)
	}
	if agent != "autotranslate-test" {
		t.Fatalf("expected custom client headers, got %q", agent)
	}
}
