// Package session is the interactive terminal screen for a running
// practice, learn or test session. It feeds key presses into a
// session.Machine and keeps the test countdown ticking.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/logiprep/internal/question"
	sess "github.com/abhisek/logiprep/internal/session"
	"github.com/abhisek/logiprep/internal/ui/layout"
)

// optionLetters label the options on screen, one per question.MaxOptions.
const optionLetters = "abcdefghij"

// Screen is the Bubble Tea model for one session. It owns the machine for
// as long as the program runs.
type Screen struct {
	m    *sess.Machine
	keys keyMap
	help help.Model

	width       int
	cursor      int    // highlighted option
	shownID     string // question the cursor belongs to
	notice      string
	quitConfirm bool
	allKeys     bool
}

var _ tea.Model = (*Screen)(nil)

// New creates a screen for a started machine.
func New(m *sess.Machine) *Screen {
	s := &Screen{
		m:     m,
		keys:  newKeyMap(),
		help:  help.New(),
		width: layout.DefaultWidth,
	}
	s.syncCursor()
	return s
}

// Run shows the screen until the session reaches a terminal state, the
// user quits or ctx is cancelled.
func Run(ctx context.Context, m *sess.Machine, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(New(m),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func (s *Screen) Init() tea.Cmd {
	if s.m.Timed() {
		return tickCmd()
	}
	return nil
}

func (s *Screen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		return s, nil

	case timerTickMsg:
		s.m.Sync()
		if s.m.State().Terminal() {
			return s, tea.Quit
		}
		return s, tickCmd()

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *Screen) View() tea.View {
	v := tea.NewView(s.content())
	v.AltScreen = true
	return v
}

func (s *Screen) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	// Time spent on the key counts before the key does.
	s.m.Sync()
	if s.m.State().Terminal() {
		return s, tea.Quit
	}
	if key.Matches(msg, s.keys.Force) {
		_ = s.m.Abandon()
		return s, tea.Quit
	}
	s.notice = ""

	if s.quitConfirm {
		switch {
		case key.Matches(msg, s.keys.Yes):
			s.quitConfirm = false
			_ = s.m.Abandon()
			return s, tea.Quit
		case key.Matches(msg, s.keys.No):
			s.quitConfirm = false
		}
		return s, nil
	}

	switch {
	case key.Matches(msg, s.keys.Help):
		s.allKeys = !s.allKeys
		return s, nil
	case key.Matches(msg, s.keys.Quit):
		s.quitConfirm = true
		return s, nil
	}

	if s.m.AwaitingConfirmation() {
		var err error
		switch {
		case key.Matches(msg, s.keys.Submit):
			err = s.m.Submit()
		case key.Matches(msg, s.keys.Prev):
			err = s.m.Previous()
		}
		return s.after(err)
	}

	q, ok := s.m.Current()
	if !ok {
		return s, nil
	}
	var err error
	switch {
	case key.Matches(msg, s.keys.Up):
		err = s.move(q, -1)
	case key.Matches(msg, s.keys.Down):
		err = s.move(q, 1)
	case key.Matches(msg, s.keys.Submit):
		if s.m.Revealed() {
			err = s.m.Advance()
		} else {
			err = s.m.Submit()
		}
	case key.Matches(msg, s.keys.Next):
		err = s.m.Advance()
	case key.Matches(msg, s.keys.Prev):
		err = s.m.Previous()
	default:
		i, isOption := optionIndex(msg.String())
		if !isOption {
			return s, nil
		}
		if i >= len(q.Options) {
			s.notice = fmt.Sprintf("Choose one of %s.", optionRange(len(q.Options)))
			return s, nil
		}
		if err = s.m.SelectOption(q.Options[i]); err == nil {
			s.cursor = i
		}
	}
	return s.after(err)
}

// move shifts the highlight and makes it the pending choice. Committed
// questions keep their answer.
func (s *Screen) move(q question.Question, delta int) error {
	if _, answered := s.m.Answer(q.ID); answered {
		return nil
	}
	next := s.cursor + delta
	if next < 0 || next >= len(q.Options) {
		return nil
	}
	if err := s.m.SelectOption(q.Options[next]); err != nil {
		return err
	}
	s.cursor = next
	return nil
}

func (s *Screen) after(err error) (tea.Model, tea.Cmd) {
	if err != nil {
		s.notice = describeError(err)
	}
	if s.m.State().Terminal() {
		return s, tea.Quit
	}
	s.syncCursor()
	return s, nil
}

// syncCursor puts the highlight on the committed or pending option when
// the current question changes.
func (s *Screen) syncCursor() {
	q, ok := s.m.Current()
	if !ok || q.ID == s.shownID {
		return
	}
	s.shownID = q.ID
	s.cursor = 0
	choice, has := s.m.Pending()
	if rec, answered := s.m.Answer(q.ID); answered {
		choice, has = rec.SelectedOption, true
	}
	if !has {
		return
	}
	for i, o := range q.Options {
		if o == choice {
			s.cursor = i
			return
		}
	}
}

// optionIndex maps a key to a zero-based option index: letters a to j and
// digits 1 to 9, then 0 for the tenth.
func optionIndex(k string) (int, bool) {
	if len(k) != 1 {
		return 0, false
	}
	c := k[0]
	switch {
	case c >= 'a' && c < 'a'+byte(len(optionLetters)):
		return int(c - 'a'), true
	case c >= '1' && c <= '9':
		return int(c - '1'), true
	case c == '0':
		return 9, true
	}
	return 0, false
}

func optionLabel(i int) string {
	if i < len(optionLetters) {
		return string(optionLetters[i])
	}
	return fmt.Sprint(i + 1)
}

func optionRange(n int) string {
	if n <= 1 {
		return "a"
	}
	return "a-" + optionLabel(n-1)
}

func describeError(err error) string {
	var ist *sess.InvalidStateTransitionError
	switch {
	case errors.Is(err, sess.ErrNoSelection):
		return "Choose an option first."
	case errors.As(err, &ist) && ist.Reason == "question already answered":
		return "This question is already answered. Press → for the next one."
	}
	return err.Error()
}

// tickCmd returns a 1-second tick command.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg(t)
	})
}
