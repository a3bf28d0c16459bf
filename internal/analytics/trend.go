package analytics

import "github.com/abhisek/logiprep/internal/question"

// DefaultTrendWindow is the number of attempts per trend window.
const DefaultTrendWindow = 50

// Trend compares the accuracy of the most recent window of attempts with
// the window just before it and returns the difference in percentage
// points. history is chronological, oldest first. The result is 0 when
// either window is empty. A non-positive window uses DefaultTrendWindow.
func Trend(history []question.Attempt, window int) int {
	if window <= 0 {
		window = DefaultTrendWindow
	}
	n := len(history)
	recentStart := max(n-window, 0)
	priorStart := max(recentStart-window, 0)

	recent := history[recentStart:]
	prior := history[priorStart:recentStart]
	if len(recent) == 0 || len(prior) == 0 {
		return 0
	}
	return Overall(recent).Percent() - Overall(prior).Percent()
}
