package pipeline

import "time"

// SetClock replaces the clock used to stamp package records.
func (p *Pipeline) SetClock(now func() time.Time) {
	p.now = now
}
