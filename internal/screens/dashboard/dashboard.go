// Package dashboard renders the progress overview printed by the stats
// command.
package dashboard

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/logiprep/internal/analytics"
	"github.com/abhisek/logiprep/internal/report"
	"github.com/abhisek/logiprep/internal/topic"
	"github.com/abhisek/logiprep/internal/ui/layout"
	"github.com/abhisek/logiprep/internal/ui/theme"
)

// Render returns the dashboard for d.
func Render(d report.Data, width int) string {
	if d.Overall.Total == 0 {
		return theme.Subtitle.Render("No answers recorded yet. Start with 'logiprep practice' or 'logiprep test'.")
	}

	var b strings.Builder
	b.WriteString(renderOverview(d))
	b.WriteString("\n")

	b.WriteString(layout.Section("Topics"))
	b.WriteString("\n")
	b.WriteString(renderTopics(d))
	b.WriteString("\n\n")

	b.WriteString(layout.Section("Study priorities"))
	b.WriteString("\n")
	b.WriteString(renderPriorities(d, width))
	b.WriteString("\n")

	if len(d.Sessions) > 0 {
		b.WriteString("\n")
		b.WriteString(layout.Section("Recent sessions"))
		b.WriteString("\n")
		b.WriteString(renderSessions(d))
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("Run 'logiprep review <session>' to go through a session's answers."))
		b.WriteString("\n")
	}
	return b.String()
}

func renderOverview(d report.Data) string {
	var b strings.Builder
	pct := d.Overall.Percent()
	b.WriteString(theme.Body.Render(fmt.Sprintf("Answered %d questions, ", d.Overall.Total)))
	b.WriteString(theme.Accuracy(pct).Render(fmt.Sprintf("%d%% correct", pct)))
	if d.Trend != 0 {
		style := theme.Correct
		if d.Trend < 0 {
			style = theme.Incorrect
		}
		b.WriteString(" ")
		b.WriteString(style.Render(fmt.Sprintf("(%+d points over your last %d)", d.Trend, analytics.DefaultTrendWindow)))
	}
	b.WriteString("\n")
	if d.HasExtremes {
		s, w := d.Extremes.Strongest, d.Extremes.Weakest
		b.WriteString(theme.Subtitle.Render("Strongest: "))
		b.WriteString(theme.Correct.Render(fmt.Sprintf("%s (%d%%)", s.Topic, s.Percentage)))
		b.WriteString(theme.Subtitle.Render("   Weakest: "))
		b.WriteString(theme.Incorrect.Render(fmt.Sprintf("%s (%d%%)", w.Topic, w.Percentage)))
		b.WriteString("\n")
	}
	return b.String()
}

func renderTopics(d report.Data) string {
	topics := topic.All()
	rows := make([][]string, 0, len(topics))
	for _, t := range topics {
		tally := d.Stats[t]
		rows = append(rows, []string{t.String(), fmt.Sprintf("%d/%d", tally.Correct, tally.Total), fmt.Sprintf("%d%%", tally.Percent())})
	}
	return layout.Table([]string{"Topic", "Correct", "Accuracy"}, rows, func(row, col int) lipgloss.Style {
		tally := d.Stats[topics[row]]
		if col == 2 && tally.Total > 0 {
			return theme.Accuracy(tally.Percent())
		}
		return theme.Body
	})
}

func renderPriorities(d report.Data, width int) string {
	if d.Ranking.Locked {
		p := d.Ranking.Progress
		return theme.Subtitle.Render(fmt.Sprintf("Unlocks after more practice in every topic: %d/%d", p.Completed, p.Required)) +
			"\n" + layout.ProgressBar("", p.Fraction(), min(width, 60))
	}
	rows := make([][]string, 0, len(d.Ranking.Items))
	for _, it := range d.Ranking.Items {
		rows = append(rows, []string{fmt.Sprint(it.Rank), it.Topic.String(), string(it.Band), it.Advice()})
	}
	return layout.Table([]string{"#", "Topic", "Priority", "Advice"}, rows, nil)
}

func renderSessions(d report.Data) string {
	rows := make([][]string, 0, len(d.Sessions))
	for _, s := range d.Sessions {
		rows = append(rows, []string{
			s.ID,
			s.StartedAt.Local().Format("2006-01-02 15:04"),
			string(s.Mode),
			s.Outcome.String(),
			fmt.Sprintf("%d%%", s.Score),
			fmt.Sprintf("%d/%d", s.Answered, s.TotalQuestions),
		})
	}
	return layout.Table([]string{"Session", "Started", "Mode", "Outcome", "Score", "Answered"}, rows, nil)
}
