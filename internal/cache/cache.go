// Package cache keeps fetched candidate pools in Redis so repeated session
// assembly does not hit the question store for every topic.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abhisek/logiprep/internal/assembly"
	"github.com/abhisek/logiprep/internal/question"
	"github.com/abhisek/logiprep/internal/topic"
)

// DefaultTTL is how long a cached pool is served before it is refetched.
const DefaultTTL = 10 * time.Minute

const keyPrefix = "logiprep:pool:"

// kv is the subset of the Redis client used by Source.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// ParseURL validates a Redis connection URL.
func ParseURL(url string) (*redis.Options, error) {
	if url == "" {
		return nil, fmt.Errorf("cache URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid cache URL: %w", err)
	}
	return opts, nil
}

// Dial connects to Redis and verifies the connection.
func Dial(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging cache: %w", err)
	}
	return client, nil
}

// entry is the cached value for one topic. Limit is the size that was
// requested from the inner source; a shorter Questions slice means the topic
// holds no more than that.
type entry struct {
	Limit     int                 `json:"limit"`
	Questions []question.Question `json:"questions"`
}

// Source is an assembly.Source that serves candidate pools from Redis and
// falls back to the wrapped source on a miss. Cache failures are logged and
// never fail a fetch.
type Source struct {
	inner  assembly.Source
	kv     kv
	ttl    time.Duration
	logger *slog.Logger
}

var _ assembly.FreshSource = (*Source)(nil)

// New wraps inner with a Redis-backed cache. A ttl of zero uses DefaultTTL.
func New(inner assembly.Source, client *redis.Client, ttl time.Duration, logger *slog.Logger) *Source {
	return newSource(inner, client, ttl, logger)
}

func newSource(inner assembly.Source, c kv, ttl time.Duration, logger *slog.Logger) *Source {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{inner: inner, kv: c, ttl: ttl, logger: logger}
}

// Key returns the cache key of a topic's pool.
func Key(t topic.Topic) string {
	return keyPrefix + t.String()
}

func (s *Source) FetchQuestions(ctx context.Context, t topic.Topic, limit int) ([]question.Question, error) {
	if limit <= 0 {
		return nil, nil
	}

	if qs, ok := s.lookup(ctx, t, limit); ok {
		return qs, nil
	}
	return s.refresh(ctx, t, limit)
}

// FetchFresh always reads from the wrapped source and replaces the cached
// pool with the result.
func (s *Source) FetchFresh(ctx context.Context, t topic.Topic, limit int) ([]question.Question, error) {
	if limit <= 0 {
		return nil, nil
	}
	return s.refresh(ctx, t, limit)
}

func (s *Source) refresh(ctx context.Context, t topic.Topic, limit int) ([]question.Question, error) {
	qs, err := s.inner.FetchQuestions(ctx, t, limit)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(entry{Limit: limit, Questions: qs})
	if err != nil {
		return nil, fmt.Errorf("encode %s pool: %w", t, err)
	}
	if err := s.kv.Set(ctx, Key(t), raw, s.ttl).Err(); err != nil {
		s.logger.Warn("cache write failed", "topic", t.String(), "error", err)
	}
	return qs, nil
}

func (s *Source) lookup(ctx context.Context, t topic.Topic, limit int) ([]question.Question, bool) {
	raw, err := s.kv.Get(ctx, Key(t)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		s.logger.Warn("cache read failed", "topic", t.String(), "error", err)
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		s.logger.Warn("discarding corrupt cache entry", "topic", t.String(), "error", err)
		return nil, false
	}
	// A pool fetched with a smaller limit may be missing candidates, unless
	// it already came back short.
	if e.Limit < limit && len(e.Questions) >= e.Limit {
		return nil, false
	}
	if len(e.Questions) > limit {
		e.Questions = e.Questions[:limit]
	}
	return e.Questions, true
}

// Invalidate drops the cached pools of the given topics, or of every topic
// when none are given. Call it after the question bank changes.
func (s *Source) Invalidate(ctx context.Context, topics ...topic.Topic) error {
	if len(topics) == 0 {
		topics = topic.All()
	}
	keys := make([]string, len(topics))
	for i, t := range topics {
		keys[i] = Key(t)
	}
	if err := s.kv.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate cache: %w", err)
	}
	return nil
}
