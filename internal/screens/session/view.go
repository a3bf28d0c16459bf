package session

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/logiprep/internal/question"
	"github.com/abhisek/logiprep/internal/ui/layout"
	"github.com/abhisek/logiprep/internal/ui/theme"
)

// content renders the whole screen as a string.
func (s *Screen) content() string {
	if s.m.State().Terminal() {
		return ""
	}
	if s.quitConfirm {
		return s.renderQuitConfirm()
	}

	var b strings.Builder
	b.WriteString(s.renderInfoLine())
	b.WriteString("\n")
	b.WriteString(layout.ProgressBar("", s.m.Progress(), s.width-4))
	b.WriteString("\n")
	b.WriteString(layout.Rule(s.width - 4))
	b.WriteString("\n\n")

	if s.m.AwaitingConfirmation() {
		b.WriteString(s.renderConfirm())
	} else {
		b.WriteString(s.renderQuestion())
	}

	if s.notice != "" {
		b.WriteString("\n")
		b.WriteString(theme.Warning.Render(s.notice))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(s.renderHelp())
	return b.String()
}

// renderInfoLine shows position and topic on the left, answered count and
// time left on the right.
func (s *Screen) renderInfoLine() string {
	idx, total := s.m.Position()
	q, _ := s.m.Current()

	left := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("Q %d/%d  %s", idx+1, total, q.Topic))

	right := theme.Subtitle.Render(fmt.Sprintf("%d answered", s.m.Answered()))
	if s.m.Timed() {
		right += "  " + lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(layout.Clock(s.m.Remaining()))
	}

	gap := s.width - 4 - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}
	return left + strings.Repeat(" ", gap) + right
}

func (s *Screen) textWidth() int {
	return max(20, min(s.width-4, 76))
}

func (s *Screen) renderQuestion() string {
	q, ok := s.m.Current()
	if !ok {
		return ""
	}
	var b strings.Builder
	if q.HasPassage() {
		b.WriteString(theme.Passage.Width(s.textWidth()).Render(strings.TrimSpace(q.PassageText)))
		b.WriteString("\n\n")
	}
	b.WriteString(theme.Body.Bold(true).Width(s.textWidth()).Render(q.Prompt))
	b.WriteString("\n\n")
	b.WriteString(s.renderOptions(q))

	if s.m.Revealed() {
		b.WriteString("\n")
		b.WriteString(s.renderFeedback(q))
	}
	return b.String()
}

// renderOptions marks the correct option and a wrong answer once the answer
// is revealed, and the committed or pending choice before that.
func (s *Screen) renderOptions(q question.Question) string {
	rec, answered := s.m.Answer(q.ID)
	pending, hasPending := s.m.Pending()
	revealed := s.m.Revealed()

	var b strings.Builder
	for i, opt := range q.Options {
		mark, style := " ", theme.Unselected
		switch {
		case revealed && i == q.CorrectIndex:
			mark, style = "✓", theme.Correct
		case revealed && answered && opt == rec.SelectedOption:
			mark, style = "✗", theme.Incorrect
		case answered && opt == rec.SelectedOption:
			mark, style = "●", theme.Selected
		case hasPending && opt == pending:
			mark, style = ">", theme.Selected
		case !answered && i == s.cursor:
			mark = "·"
		}
		b.WriteString(style.Render(fmt.Sprintf(" %s %s) %s", mark, optionLabel(i), opt)))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *Screen) renderFeedback(q question.Question) string {
	rec, _ := s.m.Answer(q.ID)
	var b strings.Builder
	if rec.Correct {
		b.WriteString(theme.Correct.Render("Correct."))
	} else {
		b.WriteString(theme.Incorrect.Render("Incorrect."))
		b.WriteString(" ")
		b.WriteString(theme.Subtitle.Render("The answer is " + q.CorrectOption() + "."))
	}
	b.WriteString("\n")
	if q.Explanation != "" {
		b.WriteString(theme.Body.Width(s.textWidth()).Render(q.Explanation))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *Screen) renderConfirm() string {
	_, total := s.m.Position()
	var b strings.Builder
	b.WriteString(theme.Title.Render("You have reached the end of the test."))
	b.WriteString("\n")
	b.WriteString(theme.Body.Render(fmt.Sprintf("Answered %d of %d.", s.m.Answered(), total)))
	b.WriteString("\n\n")
	b.WriteString(theme.Correct.Render("[enter] Submit the test"))
	b.WriteString("\n")
	b.WriteString(theme.Selected.Render("[←] Review your answers"))
	b.WriteString("\n")
	return b.String()
}

func (s *Screen) renderQuitConfirm() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Render("End session early?"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render("Answers so far will be saved."))
	b.WriteString("\n\n")
	b.WriteString(theme.Correct.Render("[Y] Yes, end session"))
	b.WriteString("\n")
	b.WriteString(theme.Selected.Render("[N] No, keep going"))
	b.WriteString("\n")
	return b.String()
}

func (s *Screen) renderHelp() string {
	if s.m.AwaitingConfirmation() {
		return s.help.ShortHelpView([]key.Binding{s.keys.Submit, s.keys.Prev, s.keys.Quit})
	}
	hints := []key.Binding{s.keys.Up, s.keys.Submit, s.keys.Quit, s.keys.Help}
	if s.allKeys {
		hints = []key.Binding{s.keys.Up, s.keys.Submit, s.keys.Next, s.keys.Prev, s.keys.Quit, s.keys.Help}
		return theme.Hint.Render("a-j or 1-0 pick an option") + "\n" + s.help.ShortHelpView(hints)
	}
	return s.help.ShortHelpView(hints)
}
