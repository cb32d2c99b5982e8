package notification

import (
	"context"
	"time"

	"github.com/hms/hms/internal/platform/store"
)

// Repository is the data-access contract the notification service depends on.
type Repository interface {
	store.Collection[Notification]
	Count(ctx context.Context, match func(Notification) bool) (int, error)
}

// Latency returns the notification store's delays, which differ from the
// other collections.
func Latency() store.Latency {
	return store.Latency{
		List:   300 * time.Millisecond,
		Get:    200 * time.Millisecond,
		Create: 400 * time.Millisecond,
		Update: 300 * time.Millisecond,
		Delete: 250 * time.Millisecond,
		Count:  150 * time.Millisecond,
	}
}

// NewStore creates the in-memory notification collection seeded with
// fixtures.
func NewStore(seed []Notification, opts ...store.Option[Notification]) (*store.Store[Notification], error) {
	base := []store.Option[Notification]{
		store.WithLatency[Notification](Latency()),
		store.WithNormalizer(normalize),
		store.WithValidator(Notification.Validate),
	}
	return store.New("notification", seed, append(base, opts...)...)
}
