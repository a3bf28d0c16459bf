package review

import (
	"strings"
	"testing"
	"time"

	"github.com/abhisek/logiprep/internal/question"
	"github.com/abhisek/logiprep/internal/session"
	"github.com/abhisek/logiprep/internal/store"
	"github.com/abhisek/logiprep/internal/topic"
)

var t0 = time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

func testItems() []Item {
	q1 := question.New("q1", topic.Inference, "The plant closed in May.", "Did output fall?",
		[]string{"True", "False", "Cannot say"}, 2, "Closure alone says nothing about output.")
	q2 := question.New("q2", topic.Deduction, "", "All A are B. Is every B an A?",
		[]string{"Follows", "Does not follow"}, 1, "")
	return []Item{
		{Attempt: question.Attempt{QuestionID: "q1", Topic: topic.Inference, SelectedOption: "True", Correct: false}, Question: q1},
		{Attempt: question.Attempt{QuestionID: "q2", Topic: topic.Deduction, SelectedOption: "Does not follow", Correct: true}, Question: q2},
		{Attempt: question.Attempt{QuestionID: "gone", Topic: topic.Arguments, SelectedOption: "Strong", Correct: true}},
	}
}

func testRecord() store.SessionRecord {
	return store.SessionRecord{
		ID:             "s-42",
		Mode:           session.ModePractice,
		Outcome:        session.StateFinished,
		TotalQuestions: 3,
		Answered:       3,
		Correct:        2,
		Score:          67,
		StartedAt:      t0,
		EndedAt:        t0.Add(12 * time.Minute),
	}
}

func TestRender(t *testing.T) {
	out := Render(testRecord(), testItems(), false, 80)

	for _, want := range []string{
		"Session s-42",
		"Score: 2/3 (67%)",
		"Did output fall?",
		"Your answer: True",
		"Correct answer: Cannot say",
		"Closure alone says nothing about output.",
		"Your answer: Does not follow",
		"Question gone is no longer in the bank.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q:\n%s", want, out)
		}
	}
	// Correct answers do not repeat the answer key.
	if strings.Count(out, "Correct answer:") != 1 {
		t.Errorf("expected one correct-answer line:\n%s", out)
	}
}

func TestRender_OnlyWrong(t *testing.T) {
	out := Render(testRecord(), testItems(), true, 80)
	if !strings.Contains(out, "Did output fall?") {
		t.Errorf("wrong answer missing:\n%s", out)
	}
	if strings.Contains(out, "Is every B an A?") {
		t.Error("correct answers should be hidden")
	}

	allRight := testItems()[1:2]
	if out := Render(testRecord(), allRight, true, 80); !strings.Contains(out, "Every answer in this session was correct.") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestRender_NoAnswers(t *testing.T) {
	out := Render(testRecord(), nil, false, 80)
	if !strings.Contains(out, "No answers were recorded in this session.") {
		t.Errorf("unexpected output:\n%s", out)
	}
}
