// Package report gathers a user's analytics into one snapshot and exports
// it as an XLSX workbook.
package report

import (
	"time"

	"github.com/abhisek/logiprep/internal/analytics"
	"github.com/abhisek/logiprep/internal/question"
	"github.com/abhisek/logiprep/internal/store"
	"github.com/abhisek/logiprep/internal/topic"
)

// Data is everything the stats view and the workbook show.
type Data struct {
	UserID      string
	GeneratedAt time.Time

	Overall     analytics.Tally
	Stats       analytics.Stats
	Trend       int
	Extremes    analytics.Extremes
	HasExtremes bool
	Ranking     analytics.Ranking

	History  []question.Attempt
	Sessions []store.SessionRecord
}

// Build computes the snapshot from a chronological history and the user's
// recent sessions. threshold is the per-topic attempt count that unlocks the
// priority ranking; zero uses the default.
func Build(userID string, history []question.Attempt, sessions []store.SessionRecord, threshold int, now time.Time) Data {
	stats := analytics.TallyHistory(history)
	ext, ok := analytics.StrongestAndWeakest(stats)
	return Data{
		UserID:      userID,
		GeneratedAt: now,
		Overall:     analytics.Overall(history),
		Stats:       stats,
		Trend:       analytics.Trend(history, analytics.DefaultTrendWindow),
		Extremes:    ext,
		HasExtremes: ok,
		Ranking:     analytics.PriorityRanking(stats, topic.RealExamWeights(), threshold),
		History:     history,
		Sessions:    sessions,
	}
}
