package collector_test

import (
	"testing"

	"github.com/goliatone/go-autotranslate/internal/hostmodel"
	"github.com/goliatone/go-autotranslate/pkg/interfaces"
)

func col(name string, kind interfaces.ColumnKind, size int) interfaces.Column {
	return interfaces.Column{Name: name, Kind: kind, MaxLength: size}
}

var (
	intCol = func(name string) interfaces.Column { return col(name, interfaces.ColumnInteger, 0) }
	txtCol = func(name string) interfaces.Column { return col(name, interfaces.ColumnText, 0) }
)

var courseRoot = interfaces.ContentNode{SourceType: "course", ID: 1, SubType: "course"}

// newCourseModel builds a course with one empty and one populated section.
// The populated section holds a quiz, a book, a lesson and a label.
func newCourseModel(t *testing.T) *hostmodel.Memory {
	t.Helper()
	m := hostmodel.NewMemory()

	m.DefineTable("course", intCol("id"), col("fullname", interfaces.ColumnChar, 1333), col("shortname", interfaces.ColumnChar, 100), txtCol("summary"), intCol("summaryformat"))
	m.DefineTable("course_sections", intCol("id"), intCol("course"), intCol("section"), col("name", interfaces.ColumnChar, 255), txtCol("summary"), intCol("summaryformat"))
	m.DefineTable("quiz", intCol("id"), col("name", interfaces.ColumnChar, 1333), txtCol("intro"), intCol("introformat"), col("password", interfaces.ColumnChar, 255))
	m.DefineTable("book", intCol("id"), col("name", interfaces.ColumnChar, 1333), txtCol("intro"))
	m.DefineTable("book_chapters", intCol("id"), intCol("bookid"), col("title", interfaces.ColumnChar, 1333), txtCol("content"), intCol("contentformat"))
	m.DefineTable("lesson", intCol("id"), col("name", interfaces.ColumnChar, 1333), txtCol("intro"))
	m.DefineTable("lesson_pages", intCol("id"), intCol("lessonid"), col("title", interfaces.ColumnChar, 1333), txtCol("contents"))
	m.DefineTable("lesson_answers", intCol("id"), intCol("pageid"), txtCol("answer"), txtCol("response"))
	m.DefineTable("label", intCol("id"), col("name", interfaces.ColumnChar, 1333), txtCol("intro"))
	m.DefineTable("question", intCol("id"), col("qtype", interfaces.ColumnChar, 20), col("name", interfaces.ColumnChar, 1333), txtCol("questiontext"), intCol("questiontextformat"), txtCol("generalfeedback"))
	m.DefineTable("question_hints", intCol("id"), intCol("questionid"), txtCol("hint"))
	m.DefineTable("question_answers", intCol("id"), intCol("question"), txtCol("answer"), txtCol("feedback"))
	m.DefineTable("question_truefalse", intCol("id"), intCol("question"), intCol("trueanswer"), intCol("falseanswer"))
	m.DefineTable("qtype_match_subquestions", intCol("id"), intCol("questionid"), txtCol("questiontext"), col("answertext", interfaces.ColumnChar, 255))
	m.DefineTable("qtype_ddimageortext_drags", intCol("id"), intCol("questionid"), txtCol("label"))

	put := func(table string, rows ...interfaces.ContentRecord) {
		for _, row := range rows {
			if err := m.Put(table, row); err != nil {
				t.Fatalf("put %s: %v", table, err)
			}
		}
	}

	put("course", interfaces.ContentRecord{"id": 1, "fullname": "Physics 101", "shortname": "PHY", "summary": "<p>Welcome @@PLUGINFILE@@/intro.png</p>", "summaryformat": 1})
	put("course_sections",
		interfaces.ContentRecord{"id": 10, "course": 1, "section": 0, "name": "", "summary": "General info", "summaryformat": 1},
		interfaces.ContentRecord{"id": 11, "course": 1, "section": 1, "name": "Week 1", "summary": "  ", "summaryformat": 1},
	)
	put("quiz", interfaces.ContentRecord{"id": 7, "name": "Quiz one", "intro": "Answer all", "introformat": 1, "password": "secret"})
	put("book", interfaces.ContentRecord{"id": 8, "name": "Handbook", "intro": ""})
	put("book_chapters",
		interfaces.ContentRecord{"id": 1, "bookid": 8, "title": "Ch1", "content": "Body **bold**", "contentformat": 4},
		interfaces.ContentRecord{"id": 2, "bookid": 8, "title": "Ch2", "content": "", "contentformat": 1},
	)
	put("lesson", interfaces.ContentRecord{"id": 9, "name": "Lesson", "intro": "Go"})
	put("lesson_pages", interfaces.ContentRecord{"id": 1, "lessonid": 9, "title": "P1", "contents": "Page body"})
	put("lesson_answers", interfaces.ContentRecord{"id": 1, "pageid": 1, "answer": "Yes", "response": ""})
	put("label", interfaces.ContentRecord{"id": 5, "name": "Note", "intro": "Hello"})

	put("question",
		interfaces.ContentRecord{"id": 30, "qtype": "multichoice", "name": "MC", "questiontext": "Pick one", "questiontextformat": 1, "generalfeedback": ""},
		interfaces.ContentRecord{"id": 31, "qtype": "truefalse", "name": "TF", "questiontext": "Sky is blue?", "questiontextformat": 1},
		interfaces.ContentRecord{"id": 32, "qtype": "shortanswer", "name": "SA", "questiontext": "Capital?", "questiontextformat": 1},
		interfaces.ContentRecord{"id": 33, "qtype": "match", "name": "Match", "questiontext": "Match them", "questiontextformat": 1},
		interfaces.ContentRecord{"id": 34, "qtype": "ddimageortext", "name": "DD", "questiontext": "Drag", "questiontextformat": 1},
		interfaces.ContentRecord{"id": 35, "qtype": "essayx", "name": "Essay", "questiontext": "Write", "questiontextformat": 1},
	)
	put("question_hints", interfaces.ContentRecord{"id": 1, "questionid": 30, "hint": "Think"})
	put("question_answers",
		interfaces.ContentRecord{"id": 301, "question": 30, "answer": "A", "feedback": "Right"},
		interfaces.ContentRecord{"id": 302, "question": 30, "answer": "B", "feedback": ""},
		interfaces.ContentRecord{"id": 311, "question": 31, "answer": "True", "feedback": "Correct"},
		interfaces.ContentRecord{"id": 321, "question": 32, "answer": "Paris", "feedback": "Yes"},
		interfaces.ContentRecord{"id": 322, "question": 32, "answer": "Lyon", "feedback": ""},
	)
	put("question_truefalse", interfaces.ContentRecord{"id": 1, "question": 31, "trueanswer": 311, "falseanswer": 399})
	put("qtype_match_subquestions",
		interfaces.ContentRecord{"id": 1, "questionid": 33, "questiontext": "Cat", "answertext": "Meow"},
		interfaces.ContentRecord{"id": 2, "questionid": 33, "questiontext": "", "answertext": "Woof"},
	)
	put("qtype_ddimageortext_drags",
		interfaces.ContentRecord{"id": 1, "questionid": 34, "label": "Sun"},
		interfaces.ContentRecord{"id": 2, "questionid": 34, "label": "  "},
	)

	general := interfaces.ContentNode{SourceType: "course_sections", ID: 10, SubType: "course_sections", ContainerID: 1, Section: 0}
	week := interfaces.ContentNode{SourceType: "course_sections", ID: 11, SubType: "course_sections", ContainerID: 1, Section: 1}
	m.AddContainer(courseRoot, general)
	m.AddContainer(courseRoot, week)

	quiz := interfaces.ContentNode{SourceType: "quiz", ID: 7, SubType: "quiz", ContainerID: 101, Section: 1}
	m.AddLeaf(week, quiz)
	m.AddLeaf(week, interfaces.ContentNode{SourceType: "book", ID: 8, SubType: "book", ContainerID: 102, Section: 1})
	m.AddLeaf(week, interfaces.ContentNode{SourceType: "lesson", ID: 9, SubType: "lesson", ContainerID: 103, Section: 1})
	m.AddLeaf(week, interfaces.ContentNode{SourceType: "label", ID: 5, SubType: "label", ContainerID: 104, Section: 1})

	for _, q := range []struct {
		id    int64
		qtype string
	}{{30, "multichoice"}, {31, "truefalse"}, {32, "shortanswer"}, {33, "match"}, {34, "ddimageortext"}, {35, "essayx"}, {36, "multichoice"}} {
		m.AddSubItem(quiz, interfaces.ContentNode{SourceType: "question", ID: q.id, SubType: q.qtype, ContainerID: quiz.ContainerID, Section: 1})
	}
	return m
}
