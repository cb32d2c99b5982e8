package store

import (
	"context"
	"time"
)

// Latency holds the artificial delay applied before each store operation.
type Latency struct {
	List   time.Duration
	Get    time.Duration
	Create time.Duration
	Update time.Duration
	Delete time.Duration
	Count  time.Duration
}

// DefaultLatency returns the delays shared by most entity stores.
func DefaultLatency() Latency {
	return Latency{
		List:   400 * time.Millisecond,
		Get:    200 * time.Millisecond,
		Create: 300 * time.Millisecond,
		Update: 300 * time.Millisecond,
		Delete: 200 * time.Millisecond,
		Count:  150 * time.Millisecond,
	}
}

// Scale multiplies every delay by f. A factor of zero or less disables the
// delays entirely.
func (l Latency) Scale(f float64) Latency {
	if f <= 0 {
		return Latency{}
	}
	scale := func(d time.Duration) time.Duration {
		return time.Duration(float64(d) * f)
	}
	return Latency{
		List:   scale(l.List),
		Get:    scale(l.Get),
		Create: scale(l.Create),
		Update: scale(l.Update),
		Delete: scale(l.Delete),
		Count:  scale(l.Count),
	}
}

// Sleep waits for d or until ctx is done, whichever comes first. It returns
// the context error when the wait was cut short.
func Sleep(ctx context.Context, d time.Duration) error {
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
