package morph

import (
	"context"
	"time"
)

// Clock paces the frame loop. Pause blocks for d or until ctx is done,
// whichever comes first, and returns ctx.Err() in the latter case.
type Clock interface {
	Pause(ctx context.Context, d time.Duration) error
}

// SleepClock waits in real time.
type SleepClock struct{}

// Pause implements Clock.
func (SleepClock) Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// NopClock returns immediately. It keeps tests free of real delays.
type NopClock struct{}

// Pause implements Clock.
func (NopClock) Pause(ctx context.Context, _ time.Duration) error { return ctx.Err() }
