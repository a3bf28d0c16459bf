package session

import "time"

// timerTickMsg is sent every second while a timed session runs.
type timerTickMsg time.Time
