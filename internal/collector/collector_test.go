package collector_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/goliatone/go-autotranslate/internal/collector"
	"github.com/goliatone/go-autotranslate/internal/hostmodel"
	"github.com/goliatone/go-autotranslate/internal/staleness"
	"github.com/goliatone/go-autotranslate/internal/translationconfig"
	"github.com/goliatone/go-autotranslate/pkg/interfaces"
)

func keysOf(fields []collector.Field) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, fmt.Sprintf("%s:%d:%s", f.Key.SourceType, f.Key.ItemID, f.Key.FieldName))
	}
	return out
}

func assertKeys(t *testing.T, got []string, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d fields, got %d:\n%s", len(want), len(got), strings.Join(got, "\n"))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("field %d = %s, want %s\nall:\n%s", i, got[i], want[i], strings.Join(got, "\n"))
		}
	}
}

func TestCollectWalksHierarchyInOrder(t *testing.T) {
	c, err := collector.New(newCourseModel(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fields, err := c.Collect(context.Background(), courseRoot, collector.RunOptions{})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	assertKeys(t, keysOf(fields), []string{
		"course:1:fullname",
		"course:1:summary",
		"course_sections:10:summary",
		"course_sections:11:name",
		"quiz:7:name",
		"quiz:7:intro",
		"question:30:name",
		"question:30:questiontext",
		"question_hints:1:hint",
		"question_answers:301:answer",
		"question_answers:301:feedback",
		"question_answers:302:answer",
		"question:31:name",
		"question:31:questiontext",
		"question_answers:311:feedback",
		"question:32:name",
		"question:32:questiontext",
		"question_answers:321:feedback",
		"question:33:name",
		"question:33:questiontext",
		"qtype_match_subquestions:1:questiontext",
		"qtype_match_subquestions:1:answertext",
		"qtype_match_subquestions:2:answertext",
		"question:34:name",
		"question:34:questiontext",
		"qtype_ddimageortext_drags:1:label",
		"question:35:name",
		"question:35:questiontext",
		"book:8:name",
		"book_chapters:1:title",
		"book_chapters:1:content",
		"book_chapters:2:title",
		"lesson:9:name",
		"lesson:9:intro",
		"lesson_pages:1:title",
		"lesson_pages:1:contents",
		"lesson_answers:1:answer",
		"label:5:name",
		"label:5:intro",
	})

	depths := map[string]int{}
	for _, f := range fields {
		depths[fmt.Sprintf("%s:%d:%s", f.Key.SourceType, f.Key.ItemID, f.Key.FieldName)] = f.Depth
	}
	for key, want := range map[string]int{
		"course:1:fullname":             1,
		"course_sections:11:name":       2,
		"quiz:7:intro":                  3,
		"question:30:name":              4,
		"question_answers:301:feedback": 5,
		"question_hints:1:hint":         5,
		"book_chapters:1:title":         4,
		"lesson_answers:1:answer":       5,
	} {
		if depths[key] != want {
			t.Fatalf("depth of %s = %d, want %d", key, depths[key], want)
		}
	}

	for _, f := range fields {
		if f.Key.SourceType == "question_answers" && f.Key.ContainerID != 101 {
			t.Fatalf("expected answers grouped under quiz module, got %+v", f.Key)
		}
		if f.Status != nil {
			t.Fatalf("expected no status without tracker, got %+v", f.Status)
		}
	}
}

func TestCollectEligibilityThreshold(t *testing.T) {
	m := hostmodel.NewMemory()
	m.DefineTable("page",
		interfaces.Column{Name: "id", Kind: interfaces.ColumnInteger},
		interfaces.Column{Name: "short", Kind: interfaces.ColumnChar, MaxLength: 10},
		interfaces.Column{Name: "long", Kind: interfaces.ColumnChar, MaxLength: 1000},
	)
	if err := m.Put("page", interfaces.ContentRecord{"id": 1, "short": "tiny", "long": "  real content  "}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	c, err := collector.New(m)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fields, err := c.CollectLeaf(context.Background(), interfaces.ContentNode{SourceType: "page", ID: 1, SubType: "page"}, collector.RunOptions{})
	if err != nil {
		t.Fatalf("CollectLeaf: %v", err)
	}
	if len(fields) != 1 || fields[0].Key.FieldName != "long" {
		t.Fatalf("expected only the long column, got %v", keysOf(fields))
	}
	if fields[0].Raw != "  real content  " {
		t.Fatalf("expected raw text untouched, got %q", fields[0].Raw)
	}
	if fields[0].Format != collector.FormatPlain || fields[0].Format.IsRich() {
		t.Fatalf("expected char column without format to be plain, got %s", fields[0].Format)
	}
}

func TestCollectSkipsDeletedSubItems(t *testing.T) {
	m := newCourseModel(t)
	m.Delete("question", 33)
	m.Delete("question_answers", 311)

	c, err := collector.New(m)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fields, err := c.Collect(context.Background(), courseRoot, collector.RunOptions{})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	keys := strings.Join(keysOf(fields), ",")
	for _, gone := range []string{"question:33:name", "qtype_match_subquestions:1:questiontext", "question_answers:311:feedback"} {
		if strings.Contains(keys, gone) {
			t.Fatalf("expected %s to be skipped", gone)
		}
	}
	for _, kept := range []string{"question:34:name", "question:31:questiontext", "label:5:intro"} {
		if !strings.Contains(keys, kept) {
			t.Fatalf("expected %s after skipped items", kept)
		}
	}
}

func TestCollectFailsWhenContainerListingFails(t *testing.T) {
	model := &failingContainers{Memory: newCourseModel(t)}
	c, err := collector.New(model)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Collect(context.Background(), courseRoot, collector.RunOptions{}); !errors.Is(err, errListing) {
		t.Fatalf("expected listing error, got %v", err)
	}
}

func TestCollectAppliesSkipListsAndSettings(t *testing.T) {
	state := translationconfig.NewState(translationconfig.Settings{MinColumnSize: 2000, SkipColumns: []string{"intro", "question.questiontext"}})
	c, err := collector.New(newCourseModel(t), collector.WithSettingsSource(state))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fields, err := c.CollectLeaf(context.Background(), interfaces.ContentNode{SourceType: "quiz", ID: 7, SubType: "quiz", ContainerID: 101}, collector.RunOptions{})
	if err != nil {
		t.Fatalf("CollectLeaf: %v", err)
	}
	for _, f := range fields {
		switch {
		case f.Key.FieldName == "intro", f.Key.FieldName == "password":
			t.Fatalf("expected %s to be skipped", f.Key)
		case f.Key.SourceType == "question" && f.Key.FieldName == "questiontext":
			t.Fatalf("expected user pattern to skip %s", f.Key)
		case f.Column.Kind == interfaces.ColumnChar && f.Key.SourceType != "question_answers":
			t.Fatalf("expected char columns below 2000 to be ineligible, got %s", f.Key)
		}
	}
	if len(fields) == 0 {
		t.Fatal("expected text columns to remain")
	}
}

func TestDisplayTextRewrittenRenderedAndCached(t *testing.T) {
	rewriter := &countingRewriter{}
	c, err := collector.New(newCourseModel(t), collector.WithDisplayRewriter(rewriter))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cache, err := collector.NewDisplayCache(0)
	if err != nil {
		t.Fatalf("NewDisplayCache: %v", err)
	}

	fields, err := c.Collect(context.Background(), courseRoot, collector.RunOptions{Cache: cache})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	byKey := map[string]collector.Field{}
	for _, f := range fields {
		byKey[fmt.Sprintf("%s:%d:%s", f.Key.SourceType, f.Key.ItemID, f.Key.FieldName)] = f
	}

	summary := byKey["course:1:summary"]
	if summary.Display != "<p>Welcome https://lms.test/pluginfile/course/1/intro.png</p>" {
		t.Fatalf("unexpected summary display %q", summary.Display)
	}
	if summary.Raw != "<p>Welcome @@PLUGINFILE@@/intro.png</p>" {
		t.Fatalf("raw text must stay untouched, got %q", summary.Raw)
	}
	chapter := byKey["book_chapters:1:content"]
	if chapter.Format != collector.FormatMarkdown || chapter.Display != "<p>Body <strong>bold</strong></p>\n" {
		t.Fatalf("unexpected markdown display %q (%s)", chapter.Display, chapter.Format)
	}
	if cache.Len() != len(fields) {
		t.Fatalf("expected one cache entry per field, got %d for %d", cache.Len(), len(fields))
	}

	calls := rewriter.calls
	if _, err := c.Collect(context.Background(), courseRoot, collector.RunOptions{Cache: cache}); err != nil {
		t.Fatalf("second Collect: %v", err)
	}
	if rewriter.calls != calls {
		t.Fatalf("expected cached display strings to be reused, rewriter called %d more times", rewriter.calls-calls)
	}
	if _, err := c.Collect(context.Background(), courseRoot, collector.RunOptions{}); err != nil {
		t.Fatalf("third Collect: %v", err)
	}
	if rewriter.calls != calls*2 {
		t.Fatalf("expected a fresh cache per run without one supplied, calls=%d", rewriter.calls)
	}
}

func TestCollectAttachesStalenessStatus(t *testing.T) {
	tracker := staleness.NewTracker(staleness.NewMemoryRepository())
	c, err := collector.New(newCourseModel(t), collector.WithTracker(tracker))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fields, err := c.Collect(context.Background(), courseRoot, collector.RunOptions{TargetLanguage: "de"})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	for _, f := range fields {
		if !f.Status.Ready() || !f.NeedsUpdate() {
			t.Fatalf("expected new field %s to need an update, got %+v", f.Key, f.Status)
		}
		if f.Status.TargetLanguage != "de" || f.Status.FieldName != f.Key.FieldName {
			t.Fatalf("status does not match field %s: %+v", f.Key, f.Status)
		}
	}

	noLang, err := c.Collect(context.Background(), courseRoot, collector.RunOptions{})
	if err != nil {
		t.Fatalf("Collect without language: %v", err)
	}
	if noLang[0].Status == nil || noLang[0].Status.Ready() || noLang[0].NeedsUpdate() {
		t.Fatalf("expected placeholder status without target language, got %+v", noLang[0].Status)
	}
}

func TestRuntimeVisitorRegistration(t *testing.T) {
	m := newCourseModel(t)
	m.DefineTable("label_notes", interfaces.Column{Name: "id", Kind: interfaces.ColumnInteger}, interfaces.Column{Name: "labelid", Kind: interfaces.ColumnInteger}, interfaces.Column{Name: "note", Kind: interfaces.ColumnText})
	if err := m.Put("label_notes", interfaces.ContentRecord{"id": 1, "labelid": 5, "note": "Footnote"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	c, err := collector.New(m)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = c.LeafVisitors().Register("label", collector.VisitorFunc(func(ctx context.Context, w *collector.Walker, leaf interfaces.ContentNode, depth int) error {
		return w.ExtractTable(ctx, "label_notes", "labelid", leaf, depth)
	}))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := c.LeafVisitors().Register(" ", collector.VisitorFunc(nil)); !errors.Is(err, collector.ErrSubtypeRequired) {
		t.Fatalf("expected ErrSubtypeRequired, got %v", err)
	}

	fields, err := c.CollectLeaf(context.Background(), interfaces.ContentNode{SourceType: "label", ID: 5, SubType: "label", ContainerID: 104}, collector.RunOptions{})
	if err != nil {
		t.Fatalf("CollectLeaf: %v", err)
	}
	assertKeys(t, keysOf(fields), []string{"label:5:name", "label:5:intro", "label_notes:1:note"})
	if fields[2].Depth != 4 || fields[2].Key.ContainerID != 104 {
		t.Fatalf("unexpected sub field %+v", fields[2])
	}
}

func TestEligibilityPatterns(t *testing.T) {
	e, err := collector.NewEligibility(collector.EligibilityConfig{
		MinColumnSize: 254,
		Common:        []string{"displayoptions"},
		PerSubtype:    map[string][]string{"url": {"external*"}},
		User:          []string{"page.content", "*.secret"},
	})
	if err != nil {
		t.Fatalf("NewEligibility: %v", err)
	}
	text := func(name string) interfaces.Column {
		return interfaces.Column{Name: name, Kind: interfaces.ColumnText}
	}
	cases := []struct {
		subtype string
		column  interfaces.Column
		want    bool
	}{
		{"page", text("intro"), true},
		{"page", text("content"), false},
		{"book", text("content"), true},
		{"quiz", text("displayoptions"), false},
		{"url", text("externalurl"), false},
		{"page", text("externalurl"), true},
		{"lti", text("secret"), false},
		{"page", interfaces.Column{Name: "name", Kind: interfaces.ColumnChar, MaxLength: 254}, false},
		{"page", interfaces.Column{Name: "name", Kind: interfaces.ColumnChar, MaxLength: 255}, true},
		{"page", interfaces.Column{Name: "data", Kind: interfaces.ColumnBinary}, false},
	}
	for _, tc := range cases {
		if got := e.Eligible(tc.subtype, tc.column); got != tc.want {
			t.Fatalf("Eligible(%s, %s) = %v, want %v", tc.subtype, tc.column.Name, got, tc.want)
		}
	}

	overridden, err := e.WithOverrides(100, []string{"name"})
	if err != nil {
		t.Fatalf("WithOverrides: %v", err)
	}
	if overridden.MinColumnSize() != 100 || e.MinColumnSize() != 254 {
		t.Fatalf("unexpected thresholds %d/%d", overridden.MinColumnSize(), e.MinColumnSize())
	}
	if !overridden.Skipped("page", "content") || !overridden.Skipped("quiz", "name") || e.Skipped("quiz", "name") {
		t.Fatal("expected overrides to extend the configured skip list only on the copy")
	}
}

var errListing = errors.New("listing failed")

type failingContainers struct {
	*hostmodel.Memory
}

func (f *failingContainers) ListContainers(context.Context, interfaces.ContentNode) ([]interfaces.ContentNode, error) {
	return nil, errListing
}

type countingRewriter struct {
	calls int
}

func (r *countingRewriter) RewriteFileURLs(_ context.Context, node interfaces.ContentNode, _ string, text string) (string, error) {
	r.calls++
	return strings.ReplaceAll(text, "@@PLUGINFILE@@", fmt.Sprintf("https://lms.test/pluginfile/%s/%d", node.SourceType, node.ID)), nil
}
