package quota

import (
	"errors"
	"slices"
	"testing"

	"github.com/abhisek/logiprep/internal/topic"
)

func TestPlan_EvenSplit(t *testing.T) {
	q, err := Plan(20, topic.All(), nil)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	for _, tp := range topic.All() {
		if got := q.Count(tp); got != 4 {
			t.Errorf("Count(%s) = %d, want 4", tp, got)
		}
	}
	if q.Total() != 20 {
		t.Errorf("Total() = %d, want 20", q.Total())
	}
}

func TestPlan_RemainderGoesToFirstTopics(t *testing.T) {
	topics := []topic.Topic{topic.Arguments, topic.Inference, topic.Deduction}
	q, err := Plan(11, topics, nil)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	want := []Allocation{
		{topic.Arguments, 4},
		{topic.Inference, 4},
		{topic.Deduction, 3},
	}
	if got := q.Allocations(); !slices.Equal(got, want) {
		t.Errorf("Allocations() = %v, want %v", got, want)
	}
	if got := q.Topics(); !slices.Equal(got, topics) {
		t.Errorf("Topics() = %v, want %v", got, topics)
	}
}

func TestPlan_SumAlwaysMatchesTotal(t *testing.T) {
	all := topic.All()
	for n := 1; n <= len(all); n++ {
		for total := 0; total <= 83; total++ {
			q, err := Plan(total, all[:n], nil)
			if err != nil {
				t.Fatalf("Plan(%d, %d topics): %v", total, n, err)
			}
			if q.Total() != total {
				t.Errorf("n=%d total=%d: Total() = %d", n, total, q.Total())
			}
		}
	}
}

func TestPlan_Weighted(t *testing.T) {
	q, err := Plan(40, topic.All(), topic.RealExamWeights())
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if got := q.Count(topic.Assumptions); got != 12 {
		t.Errorf("Assumptions = %d, want 12", got)
	}
	if got := q.Count(topic.Inference); got != 5 {
		t.Errorf("Inference = %d, want 5", got)
	}
	if q.Total() != 40 {
		t.Errorf("Total() = %d, want 40", q.Total())
	}
	if q.String() != RealExam().String() {
		t.Errorf("weighted plan %q differs from RealExam() %q", q, RealExam())
	}
}

func TestPlan_WeightedMissingTopicIsZero(t *testing.T) {
	topics := []topic.Topic{topic.Inference, topic.Deduction}
	q, err := Plan(3, topics, map[topic.Topic]int{topic.Inference: 3})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if got := q.Count(topic.Inference); got != 3 {
		t.Errorf("Inference = %d, want 3", got)
	}
	if got := q.Count(topic.Deduction); got != 0 {
		t.Errorf("Deduction = %d, want 0", got)
	}
	if got := len(q.Allocations()); got != 2 {
		t.Errorf("len(Allocations()) = %d, want 2", got)
	}
}

func TestPlan_Errors(t *testing.T) {
	tests := []struct {
		name    string
		total   int
		topics  []topic.Topic
		weights map[topic.Topic]int
	}{
		{"negative total", -1, topic.All(), nil},
		{"no topics", 10, nil, nil},
		{"duplicate topic", 4, []topic.Topic{topic.Inference, topic.Inference}, nil},
		{"unknown topic", 4, []topic.Topic{topic.Topic(42)}, nil},
		{"weighted sum mismatch", 41, topic.All(), topic.RealExamWeights()},
		{"weight for unlisted topic", 5, []topic.Topic{topic.Inference}, map[topic.Topic]int{topic.Inference: 3, topic.Arguments: 2}},
		{"negative weight", 1, []topic.Topic{topic.Inference, topic.Deduction}, map[topic.Topic]int{topic.Inference: 2, topic.Deduction: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Plan(tt.total, tt.topics, tt.weights)
			if err == nil {
				t.Fatal("expected an error")
			}
			var qe *InvalidQuotaError
			if !errors.As(err, &qe) {
				t.Errorf("error %v is not an *InvalidQuotaError", err)
			}
		})
	}
}

func TestPlan_ZeroTotal(t *testing.T) {
	q, err := Plan(0, topic.All(), nil)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if q.Total() != 0 {
		t.Errorf("Total() = %d, want 0", q.Total())
	}
}

func TestQuota_String(t *testing.T) {
	q, err := Plan(3, []topic.Topic{topic.Inference, topic.Arguments}, nil)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if got := q.String(); got != "Inference=2 Arguments=1" {
		t.Errorf("String() = %q", got)
	}
}
