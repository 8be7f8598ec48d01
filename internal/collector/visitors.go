package collector

import (
	"context"

	"github.com/goliatone/go-autotranslate/pkg/interfaces"
)

// Host tables read by the built-in visitors.
const (
	tableQuestionAnswers   = "question_answers"
	tableQuestionHints     = "question_hints"
	tableQuestionTrueFalse = "question_truefalse"
	tableMatchSubquestions = "qtype_match_subquestions"
	tableDDImageDrags      = "qtype_ddimageortext_drags"
	tableDDMarkerDrags     = "qtype_ddmarker_drags"
	tableBookChapters      = "book_chapters"
	tableLessonPages       = "lesson_pages"
	tableLessonAnswers     = "lesson_answers"
)

// DefaultLeafVisitors returns the built-in leaf visitors.
func DefaultLeafVisitors() *Registry {
	r := NewRegistry()
	r.MustRegister("quiz", VisitorFunc(visitQuiz))
	r.MustRegister("book", tableVisitor{table: tableBookChapters, parentColumn: "bookid"})
	r.MustRegister("lesson", VisitorFunc(visitLesson))
	return r
}

// DefaultQuestionVisitors returns the built-in question type visitors.
func DefaultQuestionVisitors() *Registry {
	r := NewRegistry()
	answers := answerVisitor{columns: []string{"answer", "feedback"}}
	feedbackOnly := answerVisitor{columns: []string{"feedback"}}
	r.MustRegister("multichoice", answers)
	r.MustRegister("multianswer", answers)
	r.MustRegister("truefalse", VisitorFunc(visitTrueFalse))
	r.MustRegister("shortanswer", feedbackOnly)
	r.MustRegister("numerical", feedbackOnly)
	r.MustRegister("match", tableVisitor{table: tableMatchSubquestions, parentColumn: "questionid"})
	r.MustRegister("ddimageortext", labelVisitor{table: tableDDImageDrags, parentColumn: "questionid", column: "label"})
	r.MustRegister("ddmarker", labelVisitor{table: tableDDMarkerDrags, parentColumn: "questionid", column: "label"})
	r.MustRegister("ddwtos", labelVisitor{table: tableQuestionAnswers, parentColumn: "question", column: "answer"})
	r.MustRegister("gapselect", labelVisitor{table: tableQuestionAnswers, parentColumn: "question", column: "answer"})
	return r
}

// visitQuiz collects every question, its hints and its type specific parts.
// A question that cannot be read is skipped.
func visitQuiz(ctx context.Context, w *Walker, leaf interfaces.ContentNode, depth int) error {
	questions, err := w.Model().ListSubItems(ctx, leaf)
	if err != nil {
		return err
	}
	for _, question := range questions {
		record, err := w.Model().GetRecord(ctx, question.SourceType, question.ID)
		if err != nil {
			w.Skip(question, err)
			continue
		}
		if err := w.ExtractRecord(ctx, question, record, depth); err != nil {
			w.Skip(question, err)
			continue
		}
		if err := w.ExtractTable(ctx, tableQuestionHints, "questionid", question, depth+1); err != nil {
			w.Skip(question, err)
		}
		if err := w.VisitQuestion(ctx, question, depth+1); err != nil {
			w.Skip(question, err)
		}
	}
	return nil
}

// visitLesson collects each page followed by its answers.
func visitLesson(ctx context.Context, w *Walker, leaf interfaces.ContentNode, depth int) error {
	pages, err := w.Model().ListRecords(ctx, tableLessonPages, "lessonid", leaf.ID)
	if err != nil {
		return err
	}
	for _, page := range pages {
		node := ChildNode(leaf, tableLessonPages, page)
		if err := w.ExtractRecord(ctx, node, page, depth); err != nil {
			w.Skip(node, err)
			continue
		}
		if err := w.ExtractTable(ctx, tableLessonAnswers, "pageid", node, depth+1); err != nil {
			w.Skip(node, err)
		}
	}
	return nil
}

// visitTrueFalse collects the feedback of the true and false answers. Either
// branch may be missing.
func visitTrueFalse(ctx context.Context, w *Walker, question interfaces.ContentNode, depth int) error {
	rows, err := w.Model().ListRecords(ctx, tableQuestionTrueFalse, "question", question.ID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	for _, branch := range []string{"trueanswer", "falseanswer"} {
		id := rows[0].Int64(branch)
		if id == 0 {
			continue
		}
		answer, err := w.Model().GetRecord(ctx, tableQuestionAnswers, id)
		if err != nil {
			w.Skip(interfaces.ContentNode{SourceType: tableQuestionAnswers, ID: id, ContainerID: question.ContainerID}, err)
			continue
		}
		node := ChildNode(question, tableQuestionAnswers, answer)
		if err := w.ExtractColumns(ctx, node, answer, depth, "feedback"); err != nil {
			w.Skip(node, err)
		}
	}
	return nil
}

// answerVisitor collects the given columns of every answer of a question.
type answerVisitor struct {
	columns []string
}

func (v answerVisitor) Visit(ctx context.Context, w *Walker, question interfaces.ContentNode, depth int) error {
	answers, err := w.Model().ListRecords(ctx, tableQuestionAnswers, "question", question.ID)
	if err != nil {
		return err
	}
	for _, answer := range answers {
		node := ChildNode(question, tableQuestionAnswers, answer)
		if err := w.ExtractColumns(ctx, node, answer, depth, v.columns...); err != nil {
			w.Skip(node, err)
		}
	}
	return nil
}

// tableVisitor collects eligible columns of the child rows in a side table.
type tableVisitor struct {
	table        string
	parentColumn string
}

func (v tableVisitor) Visit(ctx context.Context, w *Walker, node interfaces.ContentNode, depth int) error {
	return w.ExtractTable(ctx, v.table, v.parentColumn, node, depth)
}

// labelVisitor collects one label column per choice. Blank labels are
// skipped by the extractor.
type labelVisitor struct {
	table        string
	parentColumn string
	column       string
}

func (v labelVisitor) Visit(ctx context.Context, w *Walker, question interfaces.ContentNode, depth int) error {
	choices, err := w.Model().ListRecords(ctx, v.table, v.parentColumn, question.ID)
	if err != nil {
		return err
	}
	for _, choice := range choices {
		node := ChildNode(question, v.table, choice)
		if err := w.ExtractColumns(ctx, node, choice, depth, v.column); err != nil {
			w.Skip(node, err)
		}
	}
	return nil
}
