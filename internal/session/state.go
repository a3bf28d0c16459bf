package session

import (
	"fmt"
	"strings"
)

// State is the lifecycle phase of a session.
type State int

const (
	StateNotStarted State = iota // Created, no questions loaded
	StateInProgress              // Serving questions
	StateFinished                // Ran to completion
	StateTimedOut                // Test budget exhausted
	StateAbandoned               // Left before completion
)

var stateNames = [...]string{
	StateNotStarted: "not_started",
	StateInProgress: "in_progress",
	StateFinished:   "finished",
	StateTimedOut:   "timed_out",
	StateAbandoned:  "abandoned",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateFinished || s == StateTimedOut || s == StateAbandoned
}

// ParseState resolves a state name as produced by String.
func ParseState(s string) (State, error) {
	for i, n := range stateNames {
		if n == s {
			return State(i), nil
		}
	}
	return 0, fmt.Errorf("unknown session state %q", s)
}

// Mode selects how a session is run.
type Mode string

const (
	ModePractice Mode = "practice" // Untimed, explanation after each answer
	ModeTest     Mode = "test"     // Timed, answers revealed only at the end
	ModeLearn    Mode = "learn"    // Untimed, no per-passage cap
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModePractice, ModeTest, ModeLearn:
		return true
	}
	return false
}

// ParseMode resolves a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown session mode %q", s)
	}
	return m, nil
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	v, err := ParseState(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
