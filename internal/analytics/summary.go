// Package analytics turns answer records and attempt history into scores,
// trends and study priorities. Every function is pure.
package analytics

import (
	"math"

	"github.com/abhisek/logiprep/internal/question"
	"github.com/abhisek/logiprep/internal/topic"
)

// TopicScore is the per-topic breakdown of a session.
type TopicScore struct {
	Topic      topic.Topic `json:"topic"`
	Correct    int         `json:"correct"`
	Total      int         `json:"total"`
	Percentage int         `json:"percentage"`
}

// Summary aggregates the answers of one session.
type Summary struct {
	TotalCorrect int                     `json:"total_correct"`
	TotalCount   int                     `json:"total_count"`
	Percentage   int                     `json:"percentage"`
	Topics       []TopicScore            `json:"topics"`
	Incorrect    []question.AnswerRecord `json:"incorrect"`
}

// Percent returns round(100*correct/total), or 0 when total is 0.
func Percent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}

// Summarize scores a session's answers. Topics appear in canonical order and
// only when they have at least one answer.
func Summarize(answers []question.AnswerRecord) Summary {
	var s Summary
	stats := make(Stats)
	for _, a := range answers {
		s.TotalCount++
		t := stats[a.Topic]
		t.Total++
		if a.Correct {
			s.TotalCorrect++
			t.Correct++
		} else {
			s.Incorrect = append(s.Incorrect, a)
		}
		stats[a.Topic] = t
	}
	s.Percentage = Percent(s.TotalCorrect, s.TotalCount)

	for _, tp := range topic.All() {
		t, ok := stats[tp]
		if !ok {
			continue
		}
		s.Topics = append(s.Topics, TopicScore{
			Topic:      tp,
			Correct:    t.Correct,
			Total:      t.Total,
			Percentage: t.Percent(),
		})
	}
	return s
}
