// Package sampler selects a passage-aware subset of questions that fills a
// per-topic quota.
package sampler

import (
	"github.com/abhisek/logiprep/internal/question"
	"github.com/abhisek/logiprep/internal/quota"
	"github.com/abhisek/logiprep/internal/topic"
)

// NoPassageCap disables the per-passage limit.
const NoPassageCap = 0

// Shuffler is the random source used for every shuffle. *rand.Rand
// satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// Group is a run of selected questions that share one passage.
type Group struct {
	Key         string
	PassageID   string
	PassageText string
	Questions   []question.Question
}

// Shortfall reports a topic whose quota could not be filled from the pool.
type Shortfall struct {
	Topic     topic.Topic
	Requested int
	Selected  int
}

// Missing returns how many questions the topic is short.
func (s Shortfall) Missing() int {
	return s.Requested - s.Selected
}

// Result is the outcome of one sampling run.
type Result struct {
	// Questions is the flattened sequence; questions of one passage are
	// always adjacent.
	Questions []question.Question

	// Groups is the same sequence split by passage.
	Groups []Group

	// Underfilled lists topics that got fewer questions than requested.
	Underfilled []Shortfall
}

// Complete reports whether every topic quota was met.
func (r Result) Complete() bool {
	return len(r.Underfilled) == 0
}

// candidate is one passage bucket restricted to a single topic.
type candidate struct {
	key   string
	items []question.Question
}

// Sample draws questions from pool to satisfy q.
//
// No question is drawn twice. For any one topic at most perPassageCap
// questions come from the same passage (NoPassageCap disables the limit).
// When attempted is non-nil, questions not in it are preferred and
// attempted ones only backfill what fresh questions cannot cover.
func Sample(rng Shuffler, pool []question.Question, q quota.Quota, perPassageCap int, attempted map[string]bool) Result {
	groups, order := partition(pool)

	selected := make(map[string]bool)
	picks := make(map[string][]question.Question)
	var pickOrder []string
	var result Result

	for _, alloc := range q.Allocations() {
		if alloc.Count <= 0 {
			continue
		}
		cands := candidatesFor(alloc.Topic, groups, order)
		rng.Shuffle(len(cands), func(i, j int) { cands[i], cands[j] = cands[j], cands[i] })
		for _, c := range cands {
			items := c.items
			rng.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
		}

		got := 0
		taken := make(map[string]int)
		walk := func(accept func(id string) bool) {
			for _, c := range cands {
				if got >= alloc.Count {
					return
				}
				limit := alloc.Count - got
				if perPassageCap > 0 {
					limit = min(limit, perPassageCap-taken[c.key])
				}
				for _, item := range c.items {
					if limit <= 0 {
						break
					}
					if selected[item.ID] || !accept(item.ID) {
						continue
					}
					selected[item.ID] = true
					if _, ok := picks[c.key]; !ok {
						pickOrder = append(pickOrder, c.key)
					}
					picks[c.key] = append(picks[c.key], item)
					taken[c.key]++
					got++
					limit--
				}
			}
		}

		if attempted == nil {
			walk(func(string) bool { return true })
		} else {
			walk(func(id string) bool { return !attempted[id] })
			walk(func(id string) bool { return attempted[id] })
		}

		if got < alloc.Count {
			result.Underfilled = append(result.Underfilled, Shortfall{
				Topic:     alloc.Topic,
				Requested: alloc.Count,
				Selected:  got,
			})
		}
	}

	rng.Shuffle(len(pickOrder), func(i, j int) { pickOrder[i], pickOrder[j] = pickOrder[j], pickOrder[i] })
	for _, key := range pickOrder {
		qs := picks[key]
		result.Groups = append(result.Groups, Group{
			Key:         key,
			PassageID:   qs[0].PassageID,
			PassageText: qs[0].PassageText,
			Questions:   qs,
		})
		result.Questions = append(result.Questions, qs...)
	}
	return result
}

// partition buckets the pool by passage, dropping repeated ids. order holds
// the bucket keys in first-seen order so results only depend on the pool
// and the random source.
func partition(pool []question.Question) (map[string][]question.Question, []string) {
	groups := make(map[string][]question.Question)
	var order []string
	seen := make(map[string]bool, len(pool))
	for _, q := range pool {
		if seen[q.ID] {
			continue
		}
		seen[q.ID] = true
		key := q.GroupKey()
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], q)
	}
	return groups, order
}

// candidatesFor returns a fresh copy of every bucket holding at least one
// question of t, restricted to those questions.
func candidatesFor(t topic.Topic, groups map[string][]question.Question, order []string) []candidate {
	var out []candidate
	for _, key := range order {
		var items []question.Question
		for _, q := range groups[key] {
			if q.Topic == t {
				items = append(items, q)
			}
		}
		if len(items) > 0 {
			out = append(out, candidate{key: key, items: items})
		}
	}
	return out
}
