// Package timer measures study time from wall-clock timestamps, so a
// paused or backgrounded client never drifts.
package timer

import (
	"time"

	"github.com/adanyl0v/studyboard/internal/stats"
)

// Timer is a stopwatch. Elapsed is now - start + accumulated while
// running and accumulated while paused.
type Timer struct {
	running     bool
	startedAt   time.Time
	accumulated time.Duration
}

func (t *Timer) Running() bool {
	return t.running
}

// Start is a no-op on a running timer.
func (t *Timer) Start(now time.Time) {
	if t.running {
		return
	}
	t.running = true
	t.startedAt = now
}

func (t *Timer) Resume(now time.Time) {
	t.Start(now)
}

func (t *Timer) Pause(now time.Time) {
	if !t.running {
		return
	}
	t.accumulated += max(0, now.Sub(t.startedAt))
	t.running = false
	t.startedAt = time.Time{}
}

func (t *Timer) Reset() {
	*t = Timer{}
}

func (t *Timer) Elapsed(now time.Time) time.Duration {
	if !t.running {
		return t.accumulated
	}
	return t.accumulated + max(0, now.Sub(t.startedAt))
}

// LapDraft is a finished session ready to be stored as a lap.
type LapDraft struct {
	Duration  string
	Elapsed   time.Duration
	CreatedAt time.Time
}

// Finish stops the timer and resets it. It reports false when less
// than a whole second was measured, in which case no lap is due.
func (t *Timer) Finish(now time.Time) (LapDraft, bool) {
	elapsed := t.Elapsed(now).Truncate(time.Second)
	t.Reset()
	if elapsed <= 0 {
		return LapDraft{}, false
	}
	return LapDraft{
		Duration:  stats.FormatDuration(elapsed),
		Elapsed:   elapsed,
		CreatedAt: now,
	}, true
}
