package analytics

import "github.com/abhisek/logiprep/internal/topic"

// TopicAccuracy is a topic's rounded accuracy and attempt count.
type TopicAccuracy struct {
	Topic      topic.Topic `json:"topic"`
	Percentage int         `json:"percentage"`
	Total      int         `json:"total"`
}

// Extremes names the strongest and weakest topics.
type Extremes struct {
	Strongest TopicAccuracy `json:"strongest"`
	Weakest   TopicAccuracy `json:"weakest"`
}

// StrongestAndWeakest picks the topics with the highest and lowest rounded
// accuracy among those with attempts. Ties go to the topic earlier in
// canonical order. ok is false when fewer than two topics have attempts or
// when both picks are the same topic.
func StrongestAndWeakest(stats Stats) (Extremes, bool) {
	var seen []TopicAccuracy
	for _, tp := range topic.All() {
		t := stats[tp]
		if t.Total == 0 {
			continue
		}
		seen = append(seen, TopicAccuracy{Topic: tp, Percentage: t.Percent(), Total: t.Total})
	}
	if len(seen) < 2 {
		return Extremes{}, false
	}

	ext := Extremes{Strongest: seen[0], Weakest: seen[0]}
	for _, ta := range seen[1:] {
		if ta.Percentage > ext.Strongest.Percentage {
			ext.Strongest = ta
		}
		if ta.Percentage < ext.Weakest.Percentage {
			ext.Weakest = ta
		}
	}
	if ext.Strongest.Topic == ext.Weakest.Topic {
		return Extremes{}, false
	}
	return ext, true
}
