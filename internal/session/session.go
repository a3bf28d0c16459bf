// Package session runs one user through an assembled question sequence:
// option selection, answer submission, navigation, the test-mode countdown
// and the terminal transitions.
//
// A Machine is not safe for concurrent use. One session belongs to one
// execution context; see Drive for a loop that serializes user input and
// clock ticks.
package session

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/logiprep/internal/analytics"
	"github.com/abhisek/logiprep/internal/question"
)

// Option configures a Machine.
type Option func(*Machine)

// WithClock injects the time source used for timestamps and countdown sync.
func WithClock(c Clock) Option {
	return func(m *Machine) { m.clock = c }
}

// WithHook registers the hook invoked on the terminal transition.
func WithHook(h Hook) Option {
	return func(m *Machine) { m.hook = h }
}

// WithAnswerHook registers the hook invoked on every committed answer.
func WithAnswerHook(h AnswerHook) Option {
	return func(m *Machine) { m.answerHook = h }
}

// WithSessionID sets the session id. A random UUID is used otherwise.
func WithSessionID(id string) Option {
	return func(m *Machine) { m.id = id }
}

// WithUserID tags the session with the user running it.
func WithUserID(id string) Option {
	return func(m *Machine) { m.userID = id }
}

// Machine is the session state machine.
type Machine struct {
	id         string
	userID     string
	clock      Clock
	hook       Hook
	answerHook AnswerHook

	state     State
	spec      Spec
	questions []question.Question
	cursor    int

	// pending is the selected but not yet submitted option.
	pending    string
	hasPending bool

	answers map[string]question.AnswerRecord
	order   []string

	awaitingConfirmation bool

	startedAt time.Time
	endedAt   time.Time
	lastSync  time.Time
	budget    time.Duration
	remaining time.Duration

	result *Result
}

// New creates a machine in StateNotStarted.
func New(opts ...Option) *Machine {
	m := &Machine{
		clock:   SystemClock,
		answers: make(map[string]question.AnswerRecord),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start loads the questions and moves to StateInProgress. Test sessions arm
// the countdown for the number of questions loaded, so an underfilled test
// gets a proportionally shorter budget.
func (m *Machine) Start(spec Spec, questions []question.Question) error {
	if m.state != StateNotStarted {
		return m.invalid("start", "already started")
	}
	if err := spec.Validate(); err != nil {
		return err
	}
	if len(questions) == 0 {
		return ErrEmptySession
	}
	seen := make(map[string]bool, len(questions))
	for _, q := range questions {
		if seen[q.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateQuestion, q.ID)
		}
		seen[q.ID] = true
		if err := q.Validate(); err != nil {
			return fmt.Errorf("session: question %s: %w", q.ID, err)
		}
	}

	if m.id == "" {
		m.id = uuid.NewString()
	}
	m.spec = cloneSpec(spec)
	m.questions = slices.Clone(questions)
	m.cursor = 0

	now := m.clock.Now()
	m.startedAt = now
	m.lastSync = now
	m.budget = spec.BudgetFor(len(questions))
	m.remaining = m.budget
	m.state = StateInProgress
	return nil
}

// SelectOption stores a pending choice for the current question. The choice
// can be changed freely until Submit; a committed question is locked.
func (m *Machine) SelectOption(option string) error {
	if m.state != StateInProgress {
		return m.invalid("select option", "")
	}
	q := m.questions[m.cursor]
	if _, done := m.answers[q.ID]; done {
		return m.invalid("select option", "question already answered")
	}
	if !q.HasOption(option) {
		return ErrUnknownOption
	}
	m.pending = option
	m.hasPending = true
	return nil
}

// Submit commits the pending choice. Test sessions advance in the same step;
// other modes stay on the question so its explanation can be shown.
//
// In a test session that is waiting for the final confirmation, Submit with
// nothing pending finishes the session.
func (m *Machine) Submit() error {
	if m.state != StateInProgress {
		return m.invalid("submit", "")
	}
	if !m.hasPending {
		if m.awaitingConfirmation {
			m.finish(StateFinished)
			return nil
		}
		return ErrNoSelection
	}

	q := m.questions[m.cursor]
	rec := question.Grade(q, m.pending, m.clock.Now())
	m.answers[q.ID] = rec
	m.order = append(m.order, q.ID)
	m.clearPending()

	if m.answerHook != nil {
		m.answerHook(AnswerEvent{SessionID: m.id, UserID: m.userID, Mode: m.spec.Mode, Record: rec})
	}

	if m.spec.Mode == ModeTest {
		m.step()
	}
	return nil
}

// Advance moves to the next question, discarding any pending choice.
// Unanswered questions may be skipped. Moving past the last question
// finishes an untimed session and asks for confirmation in a test session.
func (m *Machine) Advance() error {
	if m.state != StateInProgress {
		return m.invalid("advance", "")
	}
	m.clearPending()
	m.step()
	return nil
}

// Previous moves back one question. From the final confirmation prompt it
// only cancels the prompt. Committed answers are kept as they are.
func (m *Machine) Previous() error {
	if m.state != StateInProgress {
		return m.invalid("previous", "")
	}
	m.clearPending()
	if m.awaitingConfirmation {
		m.awaitingConfirmation = false
		return nil
	}
	if m.cursor > 0 {
		m.cursor--
	}
	return nil
}

// Tick spends elapsed time from the test countdown and times the session
// out when the budget is exhausted. It is a no-op outside an in-progress
// test session.
func (m *Machine) Tick(elapsed time.Duration) {
	if m.state != StateInProgress || m.budget == 0 || elapsed <= 0 {
		return
	}
	m.remaining -= elapsed
	if m.remaining <= 0 {
		m.remaining = 0
		m.finish(StateTimedOut)
	}
}

// Sync ticks the countdown by the clock time elapsed since the previous
// Sync or Start. Time spent while the caller was suspended still counts.
func (m *Machine) Sync() {
	if m.state != StateInProgress || m.budget == 0 {
		return
	}
	now := m.clock.Now()
	elapsed := now.Sub(m.lastSync)
	m.lastSync = now
	m.Tick(elapsed)
}

// Abandon ends a session that has not reached a terminal state. Answers
// committed so far are kept in the result.
func (m *Machine) Abandon() error {
	if m.state.Terminal() {
		return m.invalid("abandon", "")
	}
	if m.state == StateNotStarted {
		if m.id == "" {
			m.id = uuid.NewString()
		}
		m.startedAt = m.clock.Now()
	}
	m.finish(StateAbandoned)
	return nil
}

func (m *Machine) step() {
	if m.cursor < len(m.questions)-1 {
		m.cursor++
		return
	}
	if m.spec.Mode == ModeTest {
		m.awaitingConfirmation = true
		return
	}
	m.finish(StateFinished)
}

func (m *Machine) finish(outcome State) {
	m.state = outcome
	m.endedAt = m.clock.Now()
	m.awaitingConfirmation = false
	m.clearPending()

	answers := m.Answers()
	m.result = &Result{
		SessionID: m.id,
		UserID:    m.userID,
		Spec:      cloneSpec(m.spec),
		Outcome:   outcome,
		Questions: len(m.questions),
		Answers:   answers,
		Summary:   analytics.Summarize(answers),
		StartedAt: m.startedAt,
		EndedAt:   m.endedAt,
	}
	if m.hook != nil {
		m.hook(*m.result)
	}
}

func (m *Machine) clearPending() {
	m.pending = ""
	m.hasPending = false
}

func (m *Machine) invalid(op, reason string) error {
	return &InvalidStateTransitionError{Op: op, State: m.state, Reason: reason}
}

// ID returns the session id. It is empty until Start unless set with
// WithSessionID.
func (m *Machine) ID() string { return m.id }

// UserID returns the user the session belongs to.
func (m *Machine) UserID() string { return m.userID }

// Spec returns the session spec.
func (m *Machine) Spec() Spec { return cloneSpec(m.spec) }

// State returns the current lifecycle state.
func (m *Machine) State() State { return m.state }

// Current returns the question under the cursor while in progress.
func (m *Machine) Current() (question.Question, bool) {
	if m.state != StateInProgress {
		return question.Question{}, false
	}
	return m.questions[m.cursor], true
}

// Position returns the zero-based cursor and the number of questions.
func (m *Machine) Position() (index, total int) {
	return m.cursor, len(m.questions)
}

// Answered returns the number of committed answers.
func (m *Machine) Answered() int { return len(m.order) }

// Progress returns the fraction of questions answered.
func (m *Machine) Progress() float64 {
	if len(m.questions) == 0 {
		return 0
	}
	return float64(len(m.order)) / float64(len(m.questions))
}

// Timed reports whether the session runs against a countdown.
func (m *Machine) Timed() bool { return m.budget > 0 }

// Remaining returns the countdown time left as of the last Tick or Sync.
// Untimed sessions report zero.
func (m *Machine) Remaining() time.Duration { return m.remaining }

// Elapsed returns the time since Start, frozen at the terminal transition.
func (m *Machine) Elapsed() time.Duration {
	switch {
	case m.state == StateNotStarted:
		return 0
	case m.state.Terminal():
		return m.endedAt.Sub(m.startedAt)
	default:
		return m.clock.Now().Sub(m.startedAt)
	}
}

// Pending returns the selected but uncommitted option, if any.
func (m *Machine) Pending() (string, bool) {
	return m.pending, m.hasPending
}

// Answer returns the committed answer for a question id.
func (m *Machine) Answer(questionID string) (question.AnswerRecord, bool) {
	rec, ok := m.answers[questionID]
	return rec, ok
}

// Answers returns the committed answers in commit order.
func (m *Machine) Answers() []question.AnswerRecord {
	out := make([]question.AnswerRecord, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.answers[id])
	}
	return out
}

// Revealed reports whether the current question's correct option and
// explanation may be shown. Test sessions never reveal while in progress.
func (m *Machine) Revealed() bool {
	if m.state != StateInProgress || m.spec.Mode == ModeTest {
		return false
	}
	_, ok := m.answers[m.questions[m.cursor].ID]
	return ok
}

// AwaitingConfirmation reports whether a test session is waiting for the
// final Submit.
func (m *Machine) AwaitingConfirmation() bool { return m.awaitingConfirmation }

// Questions returns the session's question sequence.
func (m *Machine) Questions() []question.Question {
	return slices.Clone(m.questions)
}

// Result returns the session record once a terminal state is reached.
func (m *Machine) Result() (Result, bool) {
	if m.result == nil {
		return Result{}, false
	}
	return *m.result, true
}

func cloneSpec(s Spec) Spec {
	s.Topics = slices.Clone(s.Topics)
	s.Composition = maps.Clone(s.Composition)
	return s
}
