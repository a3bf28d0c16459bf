package session

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/logiprep/internal/question"
	sess "github.com/abhisek/logiprep/internal/session"
	"github.com/abhisek/logiprep/internal/ui/layout"
	"github.com/abhisek/logiprep/internal/ui/theme"
)

// RenderResult renders the end-of-session summary: score, per-topic table
// and the questions answered incorrectly.
func RenderResult(r sess.Result, questions []question.Question, width int) string {
	var b strings.Builder
	switch r.Outcome {
	case sess.StateTimedOut:
		b.WriteString(theme.Warning.Render("Time is up."))
		b.WriteString("\n")
	case sess.StateAbandoned:
		b.WriteString(theme.Subtitle.Render("Session ended early."))
		b.WriteString("\n")
	}

	s := r.Summary
	b.WriteString(theme.Accuracy(s.Percentage).Render(
		fmt.Sprintf("Score: %d/%d (%d%%)", s.TotalCorrect, r.Questions, s.Percentage)))
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("  %d of %d answered in %s",
		s.TotalCount, r.Questions, r.Duration().Round(time.Second))))
	b.WriteString("\n")

	if len(s.Topics) > 0 {
		rows := make([][]string, 0, len(s.Topics))
		for _, ts := range s.Topics {
			rows = append(rows, []string{ts.Topic.String(), fmt.Sprintf("%d/%d", ts.Correct, ts.Total), fmt.Sprintf("%d%%", ts.Percentage)})
		}
		b.WriteString("\n")
		b.WriteString(layout.Table([]string{"Topic", "Correct", "Accuracy"}, rows, func(row, col int) lipgloss.Style {
			if col == 2 {
				return theme.Accuracy(s.Topics[row].Percentage)
			}
			return theme.Body
		}))
		b.WriteString("\n")
	}

	if len(s.Incorrect) == 0 {
		return b.String()
	}
	byID := make(map[string]question.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	textWidth := max(20, min(width-4, 76))
	b.WriteString("\n")
	b.WriteString(layout.Section("Review"))
	b.WriteString("\n")
	for _, rec := range s.Incorrect {
		q := byID[rec.QuestionID]
		b.WriteString("\n")
		b.WriteString(theme.Body.Bold(true).Width(textWidth).Render("- " + q.Prompt))
		b.WriteString("\n")
		b.WriteString(theme.Incorrect.Render("  Your answer: " + rec.SelectedOption))
		b.WriteString("\n")
		b.WriteString(theme.Correct.Render("  Correct answer: " + q.CorrectOption()))
		b.WriteString("\n")
		if q.Explanation != "" {
			b.WriteString(theme.Subtitle.Width(textWidth).PaddingLeft(2).Render(q.Explanation))
			b.WriteString("\n")
		}
	}
	return b.String()
}
