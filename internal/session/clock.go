package session

import "time"

// Clock supplies the current time. Readings from time.Now carry a monotonic
// component, so differences between them ignore wall-clock jumps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the real-time clock used when none is injected.
var SystemClock Clock = systemClock{}
