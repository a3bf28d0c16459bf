// Package topic defines the five question sections of the exam, their
// canonical order and the real exam's per-section question counts.
package topic

import (
	"fmt"
	"strings"
)

// Topic is one of the fixed question sections of the exam.
type Topic int

const (
	Inference Topic = iota + 1
	Deduction
	Assumptions
	Interpretation
	Arguments
)

// all holds every topic in canonical order. Canonical order is the
// tie-break order for planning, sampling and ranking.
var all = []Topic{Inference, Deduction, Assumptions, Interpretation, Arguments}

var names = map[Topic]string{
	Inference:      "Inference",
	Deduction:      "Deduction",
	Assumptions:    "Assumptions",
	Interpretation: "Interpretation",
	Arguments:      "Arguments",
}

// All returns every topic in canonical order.
func All() []Topic {
	out := make([]Topic, len(all))
	copy(out, all)
	return out
}

// String returns the display name of the topic.
func (t Topic) String() string {
	if n, ok := names[t]; ok {
		return n
	}
	return fmt.Sprintf("Topic(%d)", int(t))
}

// Valid reports whether t is a known topic.
func (t Topic) Valid() bool {
	_, ok := names[t]
	return ok
}

// Index returns the position of t in canonical order, or -1.
func (t Topic) Index() int {
	for i, x := range all {
		if x == t {
			return i
		}
	}
	return -1
}

// Parse resolves a topic name, case-insensitively.
func Parse(s string) (Topic, error) {
	s = strings.TrimSpace(s)
	for _, t := range all {
		if strings.EqualFold(names[t], s) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown topic %q", s)
}

// ParseList parses a comma-separated list of topic names.
// An empty string yields every topic.
func ParseList(s string) ([]Topic, error) {
	if strings.TrimSpace(s) == "" {
		return All(), nil
	}
	var out []Topic
	for _, part := range strings.Split(s, ",") {
		t, err := Parse(part)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// MarshalText implements encoding.TextMarshaler.
func (t Topic) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid topic %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Topic) UnmarshalText(b []byte) error {
	p, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = p
	return nil
}

// RealExamWeights returns the number of questions each topic contributes to
// the real 40-question exam.
func RealExamWeights() map[Topic]int {
	return map[Topic]int{
		Inference:      5,
		Deduction:      5,
		Assumptions:    12,
		Interpretation: 6,
		Arguments:      12,
	}
}

// RealExamTotal is the question count of the real exam.
const RealExamTotal = 40
