package analytics

import (
	"github.com/abhisek/logiprep/internal/question"
	"github.com/abhisek/logiprep/internal/topic"
)

// Tally counts correct answers out of a total.
type Tally struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Accuracy returns Correct/Total, or 0 when nothing was attempted.
func (t Tally) Accuracy() float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Correct) / float64(t.Total)
}

// Percent returns the accuracy as a rounded percentage.
func (t Tally) Percent() int {
	return Percent(t.Correct, t.Total)
}

// Stats holds a Tally per topic.
type Stats map[topic.Topic]Tally

// TallyHistory reduces an attempt history to per-topic counts.
func TallyHistory(history []question.Attempt) Stats {
	s := make(Stats)
	for _, a := range history {
		t := s[a.Topic]
		t.Total++
		if a.Correct {
			t.Correct++
		}
		s[a.Topic] = t
	}
	return s
}

// Overall returns the tally over the whole history.
func Overall(history []question.Attempt) Tally {
	var t Tally
	for _, a := range history {
		t.Total++
		if a.Correct {
			t.Correct++
		}
	}
	return t
}
