package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/logiprep/internal/analytics"
	"github.com/abhisek/logiprep/internal/question"
	"github.com/abhisek/logiprep/internal/session"
	"github.com/abhisek/logiprep/internal/topic"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	sent   []published
	err    error
	closed bool
}

func (c *fakeChannel) Publish(exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, published{exchange, key, msg})
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func sampleResult() session.Result {
	answers := []question.AnswerRecord{
		{QuestionID: "q1", Topic: topic.Inference, SelectedOption: "A", Correct: true, AnsweredAt: t0.Add(time.Minute)},
		{QuestionID: "q2", Topic: topic.Arguments, SelectedOption: "B", Correct: false, AnsweredAt: t0.Add(2 * time.Minute)},
	}
	return session.Result{
		SessionID: "s-1",
		UserID:    "u-1",
		Spec:      session.PracticeSpec([]topic.Topic{topic.Inference, topic.Arguments}, 4),
		Outcome:   session.StateTimedOut,
		Questions: 4,
		Answers:   answers,
		Summary:   analytics.Summarize(answers),
		StartedAt: t0,
		EndedAt:   t0.Add(5 * time.Minute),
	}
}

func TestSessionType(t *testing.T) {
	assert.Equal(t, "session.finished", SessionType(session.StateFinished))
	assert.Equal(t, "session.timed_out", SessionType(session.StateTimedOut))
	assert.Equal(t, "session.abandoned", SessionType(session.StateAbandoned))
}

func TestSessionMessage(t *testing.T) {
	key, msg, err := SessionMessage(sampleResult())
	require.NoError(t, err)
	assert.Equal(t, "session.timed_out", key)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "s-1", msg.MessageId)
	assert.Equal(t, key, msg.Type)

	var env struct {
		Type    string         `json:"type"`
		Payload SessionPayload `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(msg.Body, &env))
	assert.Equal(t, "session.timed_out", env.Type)
	p := env.Payload
	assert.Equal(t, "u-1", p.UserID)
	assert.Equal(t, session.ModePractice, p.Mode)
	assert.Equal(t, session.StateTimedOut, p.Outcome)
	assert.Equal(t, 4, p.Questions)
	assert.Equal(t, 2, p.Answered)
	assert.Equal(t, 1, p.Correct)
	assert.Equal(t, 50, p.Percentage)
	assert.Equal(t, int64(5*60*1000), p.DurationMS)
	assert.Equal(t, []topic.Topic{topic.Inference, topic.Arguments}, p.Topics)
	assert.Len(t, p.Breakdown, 2)
}

func TestAnswerMessage(t *testing.T) {
	ev := session.AnswerEvent{
		SessionID: "s-1",
		UserID:    "u-1",
		Mode:      session.ModeTest,
		Record:    question.AnswerRecord{QuestionID: "q9", Topic: topic.Deduction, SelectedOption: "C", Correct: true, AnsweredAt: t0},
	}
	key, msg, err := AnswerMessage(ev)
	require.NoError(t, err)
	assert.Equal(t, TypeAnswerCommitted, key)
	assert.Equal(t, "s-1/q9", msg.MessageId)
	assert.True(t, msg.Timestamp.Equal(t0))

	var env struct {
		Payload AnswerPayload `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(msg.Body, &env))
	assert.Equal(t, topic.Deduction, env.Payload.Topic)
	assert.Equal(t, "C", env.Payload.SelectedOption)
	assert.True(t, env.Payload.Correct)
}

func TestPublisher_RecordsToExchange(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, "prep", nil)
	ctx := context.Background()

	require.NoError(t, p.RecordSession(ctx, sampleResult()))
	require.NoError(t, p.RecordAnswer(ctx, session.AnswerEvent{SessionID: "s-1", Record: question.AnswerRecord{QuestionID: "q1"}}))

	require.Len(t, ch.sent, 2)
	assert.Equal(t, "prep", ch.sent[0].exchange)
	assert.Equal(t, "session.timed_out", ch.sent[0].key)
	assert.Equal(t, TypeAnswerCommitted, ch.sent[1].key)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestPublisher_Errors(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := newPublisher(ch, "prep", nil)

	err := p.RecordSession(context.Background(), sampleResult())
	assert.ErrorContains(t, err, "session.timed_out")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.RecordSession(ctx, sampleResult()), context.Canceled)
}

func TestPublisherAsHook(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, DefaultExchange, nil)
	hook := session.RecorderHook(context.Background(), session.MultiRecorder{p}, nil)
	hook(sampleResult())
	require.Len(t, ch.sent, 1)
	assert.Equal(t, DefaultExchange, ch.sent[0].exchange)
}

func TestDial_InvalidURL(t *testing.T) {
	_, err := Dial("", "", nil)
	assert.Error(t, err)
	_, err = Dial("http://localhost:5672", "", nil)
	assert.Error(t, err)
}
