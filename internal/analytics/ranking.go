package analytics

import (
	"sort"

	"github.com/abhisek/logiprep/internal/topic"
)

// DefaultUnlockThreshold is the number of attempts every topic needs before
// the priority ranking is shown.
const DefaultUnlockThreshold = 20

// Band groups ranked topics for display.
type Band string

const (
	BandHigh   Band = "High Priority"
	BandMedium Band = "Medium"
	BandLow    Band = "Low Priority"
)

// PriorityItem is one ranked topic.
type PriorityItem struct {
	Topic            topic.Topic `json:"topic"`
	Accuracy         float64     `json:"accuracy"`
	AccuracyPct      int         `json:"accuracy_pct"`
	RealExamWeight   int         `json:"real_exam_weight"`
	NormalizedWeight float64     `json:"normalized_weight"`
	PriorityScore    float64     `json:"priority_score"`
	Rank             int         `json:"rank"`
	Band             Band        `json:"band"`
	AccuracyLabel    string      `json:"accuracy_label"`
	WeightLabel      string      `json:"weight_label"`
}

// UnlockProgress counts attempts toward unlocking the ranking. Each topic
// contributes at most the threshold.
type UnlockProgress struct {
	Completed int `json:"completed"`
	Required  int `json:"required"`
}

// Fraction returns Completed/Required in [0, 1].
func (p UnlockProgress) Fraction() float64 {
	if p.Required == 0 {
		return 1
	}
	return float64(p.Completed) / float64(p.Required)
}

// Ranking is the outcome of PriorityRanking. When Locked is true, Items is
// empty and Progress tells how far the user is from unlocking it.
type Ranking struct {
	Locked   bool           `json:"locked"`
	Progress UnlockProgress `json:"progress"`
	Items    []PriorityItem `json:"items,omitempty"`
}

// PriorityRanking orders topics by where more study pays off most on the
// real exam: priority = (1 - accuracy) * weight / sum(weights). The ranking
// stays locked until every topic has at least threshold attempts. Ties keep
// canonical topic order. A non-positive threshold uses
// DefaultUnlockThreshold.
func PriorityRanking(stats Stats, weights map[topic.Topic]int, threshold int) Ranking {
	if threshold <= 0 {
		threshold = DefaultUnlockThreshold
	}
	topics := topic.All()

	r := Ranking{Progress: UnlockProgress{Required: threshold * len(topics)}}
	for _, tp := range topics {
		n := stats[tp].Total
		r.Progress.Completed += min(n, threshold)
		if n < threshold {
			r.Locked = true
		}
	}
	if r.Locked {
		return r
	}

	weightSum := 0
	for _, tp := range topics {
		weightSum += weights[tp]
	}

	items := make([]PriorityItem, 0, len(topics))
	for _, tp := range topics {
		t := stats[tp]
		acc := t.Accuracy()
		var norm float64
		if weightSum > 0 {
			norm = float64(weights[tp]) / float64(weightSum)
		}
		items = append(items, PriorityItem{
			Topic:            tp,
			Accuracy:         acc,
			AccuracyPct:      t.Percent(),
			RealExamWeight:   weights[tp],
			NormalizedWeight: norm,
			PriorityScore:    (1 - acc) * norm,
			AccuracyLabel:    AccuracyLabel(t.Percent()),
			WeightLabel:      WeightLabel(weights[tp]),
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PriorityScore > items[j].PriorityScore
	})
	for i := range items {
		items[i].Rank = i + 1
		items[i].Band = BandForRank(i + 1)
	}
	r.Items = items
	return r
}

// BandForRank maps a 1-based rank to its display band.
func BandForRank(rank int) Band {
	switch {
	case rank <= 2:
		return BandHigh
	case rank == 3:
		return BandMedium
	default:
		return BandLow
	}
}

// AccuracyLabel describes a rounded accuracy percentage.
func AccuracyLabel(pct int) string {
	switch {
	case pct < 50:
		return "Low"
	case pct < 75:
		return "Moderate"
	default:
		return "High"
	}
}

// WeightLabel describes how much a topic counts on the real exam.
func WeightLabel(questions int) string {
	switch {
	case questions >= 10:
		return "heavily weighted"
	case questions >= 6:
		return "moderately weighted"
	default:
		return "lightly weighted"
	}
}

// Advice is the one-line study hint shown next to a ranked topic.
func (it PriorityItem) Advice() string {
	lead := it.AccuracyLabel + " accuracy on a " + it.WeightLabel + " section"
	switch it.Band {
	case BandHigh:
		return lead + ", focus here"
	case BandMedium:
		return lead + ", room to improve"
	default:
		return lead + ", looking solid"
	}
}
