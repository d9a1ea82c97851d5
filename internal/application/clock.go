package application

import "time"

// Clock abstracts time.Now for tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the default Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// SessionIDLayout formats generated session ids, e.g. 20250114_093012.
const SessionIDLayout = "20060102_150405"

// NewSessionID derives a session id from the clock.
func NewSessionID(c Clock) string {
	return c.Now().Format(SessionIDLayout)
}
