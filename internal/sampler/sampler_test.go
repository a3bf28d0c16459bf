package sampler

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/logiprep/internal/question"
	"github.com/abhisek/logiprep/internal/quota"
	"github.com/abhisek/logiprep/internal/topic"
)

func mkq(id string, t topic.Topic, passage string) question.Question {
	return question.New(id, t, passage, "Prompt "+id, []string{"Yes", "No"}, 0, "")
}

func mustPlan(t *testing.T, total int, topics []topic.Topic, w map[topic.Topic]int) quota.Quota {
	t.Helper()
	q, err := quota.Plan(total, topics, w)
	require.NoError(t, err)
	return q
}

// randomPool builds n questions spread over the given topics and a handful
// of passages, with some standalone questions.
func randomPool(r *rand.Rand, n int) []question.Question {
	topics := topic.All()
	var pool []question.Question
	for i := 0; i < n; i++ {
		passage := ""
		if r.Intn(4) > 0 {
			passage = fmt.Sprintf("passage %d", r.Intn(8))
		}
		pool = append(pool, mkq(fmt.Sprintf("q%d", i), topics[r.Intn(len(topics))], passage))
	}
	return pool
}

func countByTopic(qs []question.Question) map[topic.Topic]int {
	m := make(map[topic.Topic]int)
	for _, q := range qs {
		m[q.Topic]++
	}
	return m
}

func TestSample_PassageCapScenario(t *testing.T) {
	pool := []question.Question{
		mkq("a1", topic.Inference, "P1"),
		mkq("a2", topic.Inference, "P1"),
		mkq("b1", topic.Deduction, "P2"),
		mkq("b2", topic.Deduction, "P2"),
		mkq("a3", topic.Inference, "P3"),
		mkq("b3", topic.Deduction, "P3"),
	}
	q := mustPlan(t, 4, []topic.Topic{topic.Inference, topic.Deduction}, nil)

	for seed := int64(0); seed < 50; seed++ {
		res := Sample(rand.New(rand.NewSource(seed)), pool, q, 1, nil)
		require.True(t, res.Complete(), "seed %d", seed)
		require.Len(t, res.Questions, 4)

		perTopicPassage := make(map[string]int)
		for _, qq := range res.Questions {
			perTopicPassage[qq.Topic.String()+"|"+qq.PassageText]++
		}
		for k, n := range perTopicPassage {
			assert.LessOrEqual(t, n, 1, "seed %d key %s", seed, k)
		}
		counts := countByTopic(res.Questions)
		assert.Equal(t, 2, counts[topic.Inference])
		assert.Equal(t, 2, counts[topic.Deduction])
	}
}

func TestSample_Properties(t *testing.T) {
	for seed := int64(1); seed <= 200; seed++ {
		r := rand.New(rand.NewSource(seed))
		pool := randomPool(r, 10+r.Intn(60))
		total := r.Intn(30)
		capN := r.Intn(4)
		q := mustPlan(t, total, topic.All(), nil)

		var attempted map[string]bool
		if seed%2 == 0 {
			attempted = make(map[string]bool)
			for _, qq := range pool {
				if r.Intn(2) == 0 {
					attempted[qq.ID] = true
				}
			}
		}

		res := Sample(r, pool, q, capN, attempted)

		seen := make(map[string]bool)
		for _, qq := range res.Questions {
			require.False(t, seen[qq.ID], "seed %d: duplicate %s", seed, qq.ID)
			seen[qq.ID] = true
		}
		assert.LessOrEqual(t, len(res.Questions), total, "seed %d", seed)

		if capN > 0 {
			perTopicGroup := make(map[string]int)
			for _, qq := range res.Questions {
				perTopicGroup[qq.Topic.String()+"|"+qq.GroupKey()]++
			}
			for k, n := range perTopicGroup {
				assert.LessOrEqual(t, n, capN, "seed %d key %s", seed, k)
			}
		}

		counts := countByTopic(res.Questions)
		short := make(map[topic.Topic]Shortfall)
		for _, s := range res.Underfilled {
			short[s.Topic] = s
		}
		for _, a := range q.Allocations() {
			assert.LessOrEqual(t, counts[a.Topic], a.Count, "seed %d", seed)
			if counts[a.Topic] < a.Count {
				s, ok := short[a.Topic]
				require.True(t, ok, "seed %d: %s underfilled but not reported", seed, a.Topic)
				assert.Equal(t, counts[a.Topic], s.Selected)
				assert.Equal(t, a.Count, s.Requested)
			}
		}
	}
}

func TestSample_PassagesStayAdjacent(t *testing.T) {
	for seed := int64(0); seed < 100; seed++ {
		r := rand.New(rand.NewSource(seed))
		pool := randomPool(r, 80)
		res := Sample(r, pool, mustPlan(t, 25, topic.All(), nil), NoPassageCap, nil)

		closed := make(map[string]bool)
		prev := ""
		for _, qq := range res.Questions {
			k := qq.GroupKey()
			if k != prev {
				require.False(t, closed[k], "seed %d: passage %s split", seed, k)
				if prev != "" {
					closed[prev] = true
				}
				prev = k
			}
		}

		var flat []question.Question
		for _, g := range res.Groups {
			flat = append(flat, g.Questions...)
		}
		assert.Equal(t, res.Questions, flat)
	}
}

func TestSample_AllAttemptedFallsBack(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	pool := randomPool(r, 60)
	attempted := make(map[string]bool)
	for _, qq := range pool {
		attempted[qq.ID] = true
	}
	q := mustPlan(t, 20, topic.All(), nil)

	withHistory := Sample(rand.New(rand.NewSource(3)), pool, q, NoPassageCap, attempted)
	without := Sample(rand.New(rand.NewSource(3)), pool, q, NoPassageCap, nil)

	available := countByTopic(pool)
	got := countByTopic(withHistory.Questions)
	for _, a := range q.Allocations() {
		assert.Equal(t, min(a.Count, available[a.Topic]), got[a.Topic], a.Topic.String())
	}
	assert.Len(t, withHistory.Questions, len(without.Questions))
}

func TestSample_PrefersFreshQuestions(t *testing.T) {
	var pool []question.Question
	attempted := make(map[string]bool)
	for i := 0; i < 10; i++ {
		qq := mkq(fmt.Sprintf("q%d", i), topic.Arguments, "")
		pool = append(pool, qq)
		if i < 7 {
			attempted[qq.ID] = true
		}
	}
	q := mustPlan(t, 5, []topic.Topic{topic.Arguments}, nil)

	for seed := int64(0); seed < 30; seed++ {
		res := Sample(rand.New(rand.NewSource(seed)), pool, q, 2, attempted)
		require.Len(t, res.Questions, 5)
		fresh := 0
		for _, qq := range res.Questions {
			if !attempted[qq.ID] {
				fresh++
			}
		}
		assert.Equal(t, 3, fresh, "all fresh questions must be used before attempted ones")
	}
}

func TestSample_UnderfillReported(t *testing.T) {
	pool := []question.Question{
		mkq("i1", topic.Inference, "P"),
		mkq("i2", topic.Inference, "P"),
		mkq("i3", topic.Inference, "P"),
		mkq("d1", topic.Deduction, ""),
	}
	q := mustPlan(t, 6, []topic.Topic{topic.Inference, topic.Deduction}, nil)

	res := Sample(rand.New(rand.NewSource(1)), pool, q, 2, nil)

	assert.False(t, res.Complete())
	assert.Len(t, res.Questions, 3)
	require.Len(t, res.Underfilled, 2)
	assert.Equal(t, Shortfall{Topic: topic.Inference, Requested: 3, Selected: 2}, res.Underfilled[0])
	assert.Equal(t, 1, res.Underfilled[0].Missing())
	assert.Equal(t, Shortfall{Topic: topic.Deduction, Requested: 3, Selected: 1}, res.Underfilled[1])
}

func TestSample_SharedPassageAcrossTopicsIsOneGroup(t *testing.T) {
	pool := []question.Question{
		mkq("i1", topic.Inference, "shared"),
		mkq("d1", topic.Deduction, "shared"),
	}
	q := mustPlan(t, 2, []topic.Topic{topic.Inference, topic.Deduction}, nil)

	res := Sample(rand.New(rand.NewSource(1)), pool, q, 1, nil)
	require.Len(t, res.Groups, 1)
	assert.Equal(t, "shared", res.Groups[0].PassageText)
	assert.Equal(t, []string{"i1", "d1"}, []string{res.Groups[0].Questions[0].ID, res.Groups[0].Questions[1].ID})
}

func TestSample_DuplicateIDsInPool(t *testing.T) {
	dup := mkq("x", topic.Assumptions, "")
	pool := []question.Question{dup, dup, dup}
	res := Sample(rand.New(rand.NewSource(1)), pool, mustPlan(t, 3, []topic.Topic{topic.Assumptions}, nil), NoPassageCap, nil)
	assert.Len(t, res.Questions, 1)
	require.Len(t, res.Underfilled, 1)
	assert.Equal(t, 1, res.Underfilled[0].Selected)
}

func TestSample_Reproducible(t *testing.T) {
	pool := randomPool(rand.New(rand.NewSource(99)), 70)
	q := mustPlan(t, 20, topic.All(), nil)

	a := Sample(rand.New(rand.NewSource(5)), pool, q, 2, nil)
	b := Sample(rand.New(rand.NewSource(5)), pool, q, 2, nil)
	assert.Equal(t, a, b)
}

func TestSample_EmptyInputs(t *testing.T) {
	res := Sample(rand.New(rand.NewSource(1)), nil, mustPlan(t, 0, topic.All(), nil), 3, nil)
	assert.Empty(t, res.Questions)
	assert.True(t, res.Complete())

	res = Sample(rand.New(rand.NewSource(1)), nil, mustPlan(t, 2, []topic.Topic{topic.Inference}, nil), 3, nil)
	assert.Empty(t, res.Questions)
	assert.Equal(t, []Shortfall{{Topic: topic.Inference, Requested: 2, Selected: 0}}, res.Underfilled)
}
