// Package assembly builds the question sequence for a session: it plans the
// per-topic quota, fetches candidates for every topic concurrently and hands
// the merged pool to the passage-aware sampler.
package assembly

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/logiprep/internal/question"
	"github.com/abhisek/logiprep/internal/quota"
	"github.com/abhisek/logiprep/internal/sampler"
	"github.com/abhisek/logiprep/internal/session"
	"github.com/abhisek/logiprep/internal/topic"
)

// Over-fetch settings: each topic asks the source for OverFetchFactor times
// its quota, capped at MaxFetch, so the sampler has room to shuffle and to
// respect the per-passage cap.
const (
	OverFetchFactor = 4
	MaxFetch        = 200
)

// Source returns candidate questions of one topic.
type Source interface {
	FetchQuestions(ctx context.Context, t topic.Topic, limit int) ([]question.Question, error)
}

// FreshSource is a Source that sits in front of a slower store and can skip
// whatever it has already served. Sessions that exclude attempted questions
// fetch through FetchFresh so every such session draws a new random pool.
type FreshSource interface {
	Source
	FetchFresh(ctx context.Context, t topic.Topic, limit int) ([]question.Question, error)
}

// AttemptLog is the durable answer history of users.
type AttemptLog interface {
	// History returns every attempt of the user, oldest first.
	History(ctx context.Context, userID string) ([]question.Attempt, error)

	// AttemptedIDs returns the ids of every question the user has answered.
	AttemptedIDs(ctx context.Context, userID string) (map[string]bool, error)
}

// FetchLimit returns how many candidates to request for a topic quota.
func FetchLimit(quota int) int {
	return min(quota*OverFetchFactor, MaxFetch)
}

// Assembly is a sampled question sequence ready to start a session with.
type Assembly struct {
	Spec        session.Spec
	Quota       quota.Quota
	Questions   []question.Question
	Groups      []sampler.Group
	Underfilled []sampler.Shortfall
}

// Complete reports whether every topic quota was met.
func (a *Assembly) Complete() bool {
	return len(a.Underfilled) == 0
}

// Assembler assembles sessions from a Source.
type Assembler struct {
	source Source
	rng    sampler.Shuffler
	logger *slog.Logger
}

// New creates an Assembler. rng drives every shuffle; it is only used after
// all fetches have completed, so it needs no locking.
func New(source Source, rng sampler.Shuffler, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{source: source, rng: rng, logger: logger}
}

// Assemble plans, fetches and samples the questions for spec. attempted is
// only consulted when spec.ExcludePreviouslyAttempted is set.
//
// A failed fetch for any topic fails the whole assembly. If ctx is cancelled
// before every fetch completes, ctx.Err() is returned and nothing is sampled.
// A pool too small to fill the quota is not an error; see
// Assembly.Underfilled.
func (a *Assembler) Assemble(ctx context.Context, spec session.Spec, attempted map[string]bool) (*Assembly, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	q, err := quota.Plan(spec.TotalCount, spec.Topics, spec.Composition)
	if err != nil {
		return nil, err
	}

	fetch := a.source.FetchQuestions
	if fs, ok := a.source.(FreshSource); ok && spec.ExcludePreviouslyAttempted {
		fetch = fs.FetchFresh
	}

	allocs := q.Allocations()
	fetched := make([][]question.Question, len(allocs))
	g, gctx := errgroup.WithContext(ctx)
	for i, al := range allocs {
		if al.Count == 0 {
			continue
		}
		g.Go(func() error {
			qs, err := fetch(gctx, al.Topic, FetchLimit(al.Count))
			if err != nil {
				return fmt.Errorf("fetch %s questions: %w", al.Topic, err)
			}
			fetched[i] = qs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var pool []question.Question
	for _, qs := range fetched {
		pool = append(pool, qs...)
	}
	if !spec.ExcludePreviouslyAttempted {
		attempted = nil
	} else if attempted == nil {
		attempted = map[string]bool{}
	}

	res := sampler.Sample(a.rng, pool, q, spec.PerPassageCap, attempted)
	for _, s := range res.Underfilled {
		a.logger.Warn("topic quota underfilled",
			"topic", s.Topic.String(),
			"requested", s.Requested,
			"selected", s.Selected)
	}

	return &Assembly{
		Spec:        spec,
		Quota:       q,
		Questions:   res.Questions,
		Groups:      res.Groups,
		Underfilled: res.Underfilled,
	}, nil
}

// AssembleFor assembles a session for userID, loading the user's attempted
// question ids from log when the spec asks for fresh questions.
func (a *Assembler) AssembleFor(ctx context.Context, spec session.Spec, log AttemptLog, userID string) (*Assembly, error) {
	var attempted map[string]bool
	if spec.ExcludePreviouslyAttempted && log != nil {
		ids, err := log.AttemptedIDs(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load attempted questions: %w", err)
		}
		attempted = ids
	}
	return a.Assemble(ctx, spec, attempted)
}
