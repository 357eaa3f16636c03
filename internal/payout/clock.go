package payout

import "time"

// Clock is the single time source for a payout run. It is threaded
// explicitly into the pipeline instead of calling time.Now at arbitrary
// points, because the window boundary must be captured exactly once.
type Clock interface {
	Now() (time.Time, error)
}

// SystemClock reads the wall clock in UTC. It never fails.
type SystemClock struct{}

func (SystemClock) Now() (time.Time, error) {
	return time.Now().UTC(), nil
}
