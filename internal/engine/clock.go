package engine

import "time"

// Clock supplies wall-clock time to the coordinator. The production
// implementation is SystemClock; tests use a manually advanced clock so
// resume and drift paths can be driven without real time passing.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
