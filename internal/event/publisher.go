// Package event publishes session lifecycle events to an AMQP topic
// exchange, so other services can react to finished sessions and answers.
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/abhisek/logiprep/internal/analytics"
	"github.com/abhisek/logiprep/internal/session"
	"github.com/abhisek/logiprep/internal/topic"
)

// DefaultExchange is used when no exchange name is configured.
const DefaultExchange = "logiprep.events"

// Routing keys.
const (
	TypeAnswerCommitted = "answer.committed"
	typeSessionPrefix   = "session."
)

// SessionType returns the routing key for a session outcome, such as
// "session.finished" or "session.timed_out".
func SessionType(outcome session.State) string {
	return typeSessionPrefix + outcome.String()
}

// Envelope wraps every published payload.
type Envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// SessionPayload is the body of a session.* event.
type SessionPayload struct {
	SessionID  string                 `json:"session_id"`
	UserID     string                 `json:"user_id,omitempty"`
	Mode       session.Mode           `json:"mode"`
	Topics     []topic.Topic          `json:"topics"`
	Outcome    session.State          `json:"outcome"`
	Questions  int                    `json:"questions"`
	Answered   int                    `json:"answered"`
	Correct    int                    `json:"correct"`
	Percentage int                    `json:"percentage"`
	Breakdown  []analytics.TopicScore `json:"breakdown"`
	StartedAt  time.Time              `json:"started_at"`
	EndedAt    time.Time              `json:"ended_at"`
	DurationMS int64                  `json:"duration_ms"`
}

// AnswerPayload is the body of an answer.committed event.
type AnswerPayload struct {
	SessionID      string       `json:"session_id"`
	UserID         string       `json:"user_id,omitempty"`
	Mode           session.Mode `json:"mode"`
	QuestionID     string       `json:"question_id"`
	Topic          topic.Topic  `json:"topic"`
	SelectedOption string       `json:"selected_option"`
	Correct        bool         `json:"correct"`
	AnsweredAt     time.Time    `json:"answered_at"`
}

// SessionMessage builds the routing key and message for a session result.
func SessionMessage(r session.Result) (string, amqp.Publishing, error) {
	p := SessionPayload{
		SessionID:  r.SessionID,
		UserID:     r.UserID,
		Mode:       r.Spec.Mode,
		Topics:     r.Spec.Topics,
		Outcome:    r.Outcome,
		Questions:  r.Questions,
		Answered:   r.Summary.TotalCount,
		Correct:    r.Summary.TotalCorrect,
		Percentage: r.Summary.Percentage,
		Breakdown:  r.Summary.Topics,
		StartedAt:  r.StartedAt,
		EndedAt:    r.EndedAt,
		DurationMS: r.Duration().Milliseconds(),
	}
	key := SessionType(r.Outcome)
	msg, err := message(key, r.SessionID, r.EndedAt, p)
	return key, msg, err
}

// AnswerMessage builds the routing key and message for a committed answer.
func AnswerMessage(ev session.AnswerEvent) (string, amqp.Publishing, error) {
	p := AnswerPayload{
		SessionID:      ev.SessionID,
		UserID:         ev.UserID,
		Mode:           ev.Mode,
		QuestionID:     ev.Record.QuestionID,
		Topic:          ev.Record.Topic,
		SelectedOption: ev.Record.SelectedOption,
		Correct:        ev.Record.Correct,
		AnsweredAt:     ev.Record.AnsweredAt,
	}
	id := ev.SessionID + "/" + ev.Record.QuestionID
	msg, err := message(TypeAnswerCommitted, id, ev.Record.AnsweredAt, p)
	return TypeAnswerCommitted, msg, err
}

func message(eventType, id string, at time.Time, payload any) (amqp.Publishing, error) {
	body, err := json.Marshal(Envelope{Type: eventType, OccurredAt: at, Payload: payload})
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode %s event: %w", eventType, err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    id,
		Timestamp:    at,
		Type:         eventType,
		Body:         body,
	}, nil
}

// channel is the subset of *amqp.Channel used by Publisher.
type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends session events to a topic exchange. It implements
// session.Recorder and session.AnswerRecorder.
type Publisher struct {
	conn     *amqp.Connection
	channel  channel
	exchange string
	logger   *slog.Logger
}

var (
	_ session.Recorder       = (*Publisher)(nil)
	_ session.AnswerRecorder = (*Publisher)(nil)
)

// Dial connects to the broker and declares a durable topic exchange.
func Dial(amqpURL, exchange string, logger *slog.Logger) (*Publisher, error) {
	if amqpURL == "" {
		return nil, fmt.Errorf("AMQP URL is empty")
	}
	if _, err := amqp.ParseURI(amqpURL); err != nil {
		return nil, fmt.Errorf("invalid AMQP URL: %w", err)
	}
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declaring exchange %s: %w", exchange, err)
	}

	p := newPublisher(ch, exchange, logger)
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, exchange string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{channel: ch, exchange: exchange, logger: logger}
}

// RecordSession publishes a session.* event for the result.
func (p *Publisher) RecordSession(ctx context.Context, r session.Result) error {
	key, msg, err := SessionMessage(r)
	if err != nil {
		return err
	}
	return p.publish(ctx, key, msg)
}

// RecordAnswer publishes an answer.committed event.
func (p *Publisher) RecordAnswer(ctx context.Context, ev session.AnswerEvent) error {
	key, msg, err := AnswerMessage(ev)
	if err != nil {
		return err
	}
	return p.publish(ctx, key, msg)
}

func (p *Publisher) publish(ctx context.Context, key string, msg amqp.Publishing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.channel.Publish(p.exchange, key, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	p.logger.Debug("event published", "type", key, "id", msg.MessageId)
	return nil
}

// Close closes the channel and the connection.
func (p *Publisher) Close() error {
	var err error
	if p.channel != nil {
		err = p.channel.Close()
	}
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
