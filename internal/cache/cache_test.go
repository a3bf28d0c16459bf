package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/logiprep/internal/question"
	"github.com/abhisek/logiprep/internal/topic"
)

type fakeKV struct {
	mu     sync.Mutex
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (f *fakeKV) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeKV) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	f.data[key] = string(value.([]byte))
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeKV) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

type countingSource struct {
	pool  map[topic.Topic][]question.Question
	calls int
	err   error
}

func (s *countingSource) FetchQuestions(_ context.Context, t topic.Topic, limit int) ([]question.Question, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	qs := s.pool[t]
	if len(qs) > limit {
		qs = qs[:limit]
	}
	return qs, nil
}

func makePool(t topic.Topic, n int) []question.Question {
	out := make([]question.Question, n)
	for i := range out {
		out[i] = question.New(fmt.Sprintf("%s-%d", t, i), t, "", "Prompt?", []string{"A", "B"}, 0, "")
	}
	return out
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid-redis", "redis://localhost:6379", false},
		{"valid-with-db", "redis://localhost:6379/0", false},
		{"empty", "", true},
		{"wrong scheme", "http://localhost:6379", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseURL() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDial_UnreachableHost(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping unreachable host test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := Dial(ctx, "redis://localhost:59999")
	if err == nil {
		t.Fatal("Dial() should return error for unreachable host")
	}
}

func TestFetch_MissThenHit(t *testing.T) {
	inner := &countingSource{pool: map[topic.Topic][]question.Question{topic.Inference: makePool(topic.Inference, 30)}}
	kv := newFakeKV()
	s := newSource(inner, kv, time.Minute, nil)
	ctx := context.Background()

	first, err := s.FetchQuestions(ctx, topic.Inference, 20)
	require.NoError(t, err)
	assert.Len(t, first, 20)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, time.Minute, kv.ttls[Key(topic.Inference)])

	second, err := s.FetchQuestions(ctx, topic.Inference, 20)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls, "second fetch should be served from cache")

	smaller, err := s.FetchQuestions(ctx, topic.Inference, 5)
	require.NoError(t, err)
	assert.Equal(t, first[:5], smaller)
	assert.Equal(t, 1, inner.calls)
}

func TestFetch_LargerLimitRefetches(t *testing.T) {
	inner := &countingSource{pool: map[topic.Topic][]question.Question{topic.Deduction: makePool(topic.Deduction, 30)}}
	s := newSource(inner, newFakeKV(), 0, nil)
	ctx := context.Background()

	_, err := s.FetchQuestions(ctx, topic.Deduction, 8)
	require.NoError(t, err)
	got, err := s.FetchQuestions(ctx, topic.Deduction, 20)
	require.NoError(t, err)
	assert.Len(t, got, 20)
	assert.Equal(t, 2, inner.calls)
}

func TestFetch_ShortPoolServesLargerLimit(t *testing.T) {
	inner := &countingSource{pool: map[topic.Topic][]question.Question{topic.Arguments: makePool(topic.Arguments, 3)}}
	s := newSource(inner, newFakeKV(), 0, nil)
	ctx := context.Background()

	_, err := s.FetchQuestions(ctx, topic.Arguments, 10)
	require.NoError(t, err)
	got, err := s.FetchQuestions(ctx, topic.Arguments, 40)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, 1, inner.calls)
}

func TestFetchFresh_ReplacesCachedPool(t *testing.T) {
	inner := &countingSource{pool: map[topic.Topic][]question.Question{topic.Inference: makePool(topic.Inference, 10)}}
	kv := newFakeKV()
	s := newSource(inner, kv, 0, nil)
	ctx := context.Background()

	first, err := s.FetchQuestions(ctx, topic.Inference, 5)
	require.NoError(t, err)

	// The store now returns a different random subset.
	inner.pool[topic.Inference] = inner.pool[topic.Inference][5:]
	fresh, err := s.FetchFresh(ctx, topic.Inference, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls, "fresh fetch must not be served from cache")
	assert.NotEqual(t, first, fresh)

	cached, err := s.FetchQuestions(ctx, topic.Inference, 5)
	require.NoError(t, err)
	assert.Equal(t, fresh, cached)
	assert.Equal(t, 2, inner.calls)

	none, err := s.FetchFresh(ctx, topic.Inference, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFetch_CacheErrorsFallBack(t *testing.T) {
	inner := &countingSource{pool: map[topic.Topic][]question.Question{topic.Inference: makePool(topic.Inference, 4)}}
	kv := newFakeKV()
	kv.getErr = errors.New("connection refused")
	kv.setErr = errors.New("connection refused")
	s := newSource(inner, kv, 0, nil)

	got, err := s.FetchQuestions(context.Background(), topic.Inference, 4)
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestFetch_CorruptEntryIgnored(t *testing.T) {
	inner := &countingSource{pool: map[topic.Topic][]question.Question{topic.Inference: makePool(topic.Inference, 4)}}
	kv := newFakeKV()
	kv.data[Key(topic.Inference)] = "{not json"
	s := newSource(inner, kv, 0, nil)

	got, err := s.FetchQuestions(context.Background(), topic.Inference, 4)
	require.NoError(t, err)
	assert.Len(t, got, 4)
	assert.Equal(t, 1, inner.calls)
}

func TestFetch_InnerErrorNotCached(t *testing.T) {
	inner := &countingSource{err: errors.New("db down")}
	kv := newFakeKV()
	s := newSource(inner, kv, 0, nil)

	_, err := s.FetchQuestions(context.Background(), topic.Inference, 4)
	assert.Error(t, err)
	assert.Empty(t, kv.data)
}

func TestInvalidate(t *testing.T) {
	inner := &countingSource{pool: map[topic.Topic][]question.Question{
		topic.Inference: makePool(topic.Inference, 4),
		topic.Deduction: makePool(topic.Deduction, 4),
	}}
	kv := newFakeKV()
	s := newSource(inner, kv, 0, nil)
	ctx := context.Background()

	for _, tp := range []topic.Topic{topic.Inference, topic.Deduction} {
		_, err := s.FetchQuestions(ctx, tp, 4)
		require.NoError(t, err)
	}
	require.NoError(t, s.Invalidate(ctx, topic.Inference))
	assert.NotContains(t, kv.data, Key(topic.Inference))
	assert.Contains(t, kv.data, Key(topic.Deduction))

	require.NoError(t, s.Invalidate(ctx))
	assert.Empty(t, kv.data)
}
