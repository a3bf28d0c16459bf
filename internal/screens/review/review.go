// Package review renders a finished session question by question, with the
// answer given and the correct one.
package review

import (
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/logiprep/internal/question"
	"github.com/abhisek/logiprep/internal/store"
	"github.com/abhisek/logiprep/internal/ui/layout"
	"github.com/abhisek/logiprep/internal/ui/theme"
)

// Item is one answered question of the session. Question is the zero value
// when the question is no longer in the bank.
type Item struct {
	Attempt  question.Attempt
	Question question.Question
}

// Missing reports whether the question could not be loaded.
func (it Item) Missing() bool { return it.Question.ID == "" }

// Render returns the review of rec. onlyWrong limits it to incorrect answers.
func Render(rec store.SessionRecord, items []Item, onlyWrong bool, width int) string {
	textWidth := max(20, min(width-4, 76))

	var b strings.Builder
	b.WriteString(layout.Section(fmt.Sprintf("Session %s", rec.ID)))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%s %s, %s, %s",
		rec.StartedAt.Local().Format("2006-01-02 15:04"), rec.Mode, rec.Outcome, rec.Duration().Round(time.Second))))
	b.WriteString("\n")
	b.WriteString(theme.Accuracy(rec.Score).Render(fmt.Sprintf("Score: %d/%d (%d%%)", rec.Correct, rec.TotalQuestions, rec.Score)))
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("  %d answered", rec.Answered)))
	b.WriteString("\n")
	b.WriteString(layout.Rule(textWidth))
	b.WriteString("\n")

	shown := 0
	for i, it := range items {
		if onlyWrong && it.Attempt.Correct {
			continue
		}
		shown++
		b.WriteString("\n")
		b.WriteString(renderItem(i+1, it, textWidth))
	}
	if shown == 0 {
		b.WriteString("\n")
		if onlyWrong && len(items) > 0 {
			b.WriteString(theme.Correct.Render("Every answer in this session was correct."))
		} else {
			b.WriteString(theme.Subtitle.Render("No answers were recorded in this session."))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderItem(n int, it Item, width int) string {
	var b strings.Builder
	a := it.Attempt
	mark, style := "✓", theme.Correct
	if !a.Correct {
		mark, style = "✗", theme.Incorrect
	}
	b.WriteString(style.Render(fmt.Sprintf("%d. %s", n, mark)))
	b.WriteString(" ")
	b.WriteString(theme.Subtitle.Render(a.Topic.String()))
	b.WriteString("\n")

	if it.Missing() {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("Question %s is no longer in the bank.", a.QuestionID)))
		b.WriteString("\n")
		b.WriteString(theme.Body.Render("Your answer: " + a.SelectedOption))
		b.WriteString("\n")
		return b.String()
	}

	q := it.Question
	if q.HasPassage() {
		b.WriteString(theme.Passage.Width(width).Render(strings.TrimSpace(q.PassageText)))
		b.WriteString("\n")
	}
	b.WriteString(theme.Body.Bold(true).Width(width).Render(q.Prompt))
	b.WriteString("\n")
	b.WriteString(style.Render("Your answer: " + a.SelectedOption))
	b.WriteString("\n")
	if !a.Correct {
		b.WriteString(theme.Correct.Render("Correct answer: " + q.CorrectOption()))
		b.WriteString("\n")
	}
	if q.Explanation != "" {
		b.WriteString(theme.Subtitle.Width(width).Render(q.Explanation))
		b.WriteString("\n")
	}
	return b.String()
}
