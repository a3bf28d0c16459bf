// Package quota computes how many questions each topic contributes to a
// session.
package quota

import (
	"fmt"
	"strings"

	"github.com/abhisek/logiprep/internal/topic"
)

// InvalidQuotaError reports a quota request that cannot be planned.
type InvalidQuotaError struct {
	Total  int
	Reason string
}

func (e *InvalidQuotaError) Error() string {
	return fmt.Sprintf("invalid quota (total %d): %s", e.Total, e.Reason)
}

// Allocation is the question count assigned to one topic.
type Allocation struct {
	Topic topic.Topic
	Count int
}

// Quota maps topics to question counts, preserving the topic order it was
// planned with.
type Quota struct {
	allocs []Allocation
}

// Allocations returns the per-topic counts in planning order.
func (q Quota) Allocations() []Allocation {
	out := make([]Allocation, len(q.allocs))
	copy(out, q.allocs)
	return out
}

// Topics returns the planned topics in order.
func (q Quota) Topics() []topic.Topic {
	out := make([]topic.Topic, len(q.allocs))
	for i, a := range q.allocs {
		out[i] = a.Topic
	}
	return out
}

// Count returns the quota for t, or 0 when t was not planned.
func (q Quota) Count(t topic.Topic) int {
	for _, a := range q.allocs {
		if a.Topic == t {
			return a.Count
		}
	}
	return 0
}

// Total returns the sum of all counts.
func (q Quota) Total() int {
	n := 0
	for _, a := range q.allocs {
		n += a.Count
	}
	return n
}

func (q Quota) String() string {
	parts := make([]string, len(q.allocs))
	for i, a := range q.allocs {
		parts[i] = fmt.Sprintf("%s=%d", a.Topic, a.Count)
	}
	return strings.Join(parts, " ")
}

// Plan splits total across topics.
//
// Without weights the split is even and the remainder goes one unit at a
// time to the first topics in the given order. With weights the counts are
// taken as given and must sum to total; topics without a weight get zero.
func Plan(total int, topics []topic.Topic, weights map[topic.Topic]int) (Quota, error) {
	if total < 0 {
		return Quota{}, &InvalidQuotaError{Total: total, Reason: "total must not be negative"}
	}
	if len(topics) == 0 {
		return Quota{}, &InvalidQuotaError{Total: total, Reason: "no topics"}
	}
	seen := make(map[topic.Topic]bool, len(topics))
	for _, t := range topics {
		if !t.Valid() {
			return Quota{}, &InvalidQuotaError{Total: total, Reason: fmt.Sprintf("unknown topic %d", int(t))}
		}
		if seen[t] {
			return Quota{}, &InvalidQuotaError{Total: total, Reason: fmt.Sprintf("duplicate topic %s", t)}
		}
		seen[t] = true
	}

	if weights != nil {
		return planWeighted(total, topics, weights, seen)
	}

	base := total / len(topics)
	rem := total % len(topics)
	allocs := make([]Allocation, len(topics))
	for i, t := range topics {
		n := base
		if i < rem {
			n++
		}
		allocs[i] = Allocation{Topic: t, Count: n}
	}
	return Quota{allocs: allocs}, nil
}

func planWeighted(total int, topics []topic.Topic, weights map[topic.Topic]int, listed map[topic.Topic]bool) (Quota, error) {
	for t, w := range weights {
		if !listed[t] {
			return Quota{}, &InvalidQuotaError{Total: total, Reason: fmt.Sprintf("weight for unlisted topic %s", t)}
		}
		if w < 0 {
			return Quota{}, &InvalidQuotaError{Total: total, Reason: fmt.Sprintf("negative weight for %s", t)}
		}
	}

	sum := 0
	allocs := make([]Allocation, len(topics))
	for i, t := range topics {
		allocs[i] = Allocation{Topic: t, Count: weights[t]}
		sum += weights[t]
	}
	if sum != total {
		return Quota{}, &InvalidQuotaError{Total: total, Reason: fmt.Sprintf("weights sum to %d", sum)}
	}
	return Quota{allocs: allocs}, nil
}

// RealExam plans the fixed real-exam composition over every topic.
func RealExam() Quota {
	q, err := Plan(topic.RealExamTotal, topic.All(), topic.RealExamWeights())
	if err != nil {
		panic(err)
	}
	return q
}
