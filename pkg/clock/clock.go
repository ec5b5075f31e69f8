package clock

import "time"

// Clock abstracts the time source so that price decay and expiry checks
// stay deterministic in tests.
type Clock interface {
	Now() time.Time
}

type System struct{}

func (System) Now() time.Time {
	return time.Now()
}
