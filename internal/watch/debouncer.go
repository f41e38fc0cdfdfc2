package watch

import "time"

// debouncer coalesces bursts of change notifications into single rebuild
// triggers: a rebuild fires only after a quiet window with no new changes,
// but never later than maxDelay after the first change of a burst.
type debouncer struct {
	quiet    time.Duration
	maxDelay time.Duration

	timer   *time.Timer
	firstAt time.Time
	fire    chan struct{}
}

func newDebouncer(quiet time.Duration) *debouncer {
	d := &debouncer{
		quiet:    quiet,
		maxDelay: 10 * quiet,
		fire:     make(chan struct{}, 1),
	}
	d.timer = time.NewTimer(time.Hour)
	if !d.timer.Stop() {
		<-d.timer.C
	}
	return d
}

// Notify records one change. Called from the watch loop goroutine only.
func (d *debouncer) Notify() {
	now := time.Now()
	if d.firstAt.IsZero() {
		d.firstAt = now
	}

	delay := d.quiet
	if elapsed := now.Sub(d.firstAt); elapsed+delay > d.maxDelay {
		delay = d.maxDelay - elapsed
		if delay < 0 {
			delay = 0
		}
	}

	if !d.timer.Stop() {
		select {
		case <-d.timer.C:
		default:
		}
	}
	d.timer.Reset(delay)
}

// C fires when the debounced rebuild should run.
func (d *debouncer) C() <-chan time.Time {
	return d.timer.C
}

// Reset clears burst state after a fire.
func (d *debouncer) Reset() {
	d.firstAt = time.Time{}
}
