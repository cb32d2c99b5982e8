package billing

import (
	"github.com/hms/hms/internal/platform/store"
)

// Repository is the data-access contract the billing service depends on.
type Repository interface {
	store.Collection[Bill]
}

// NewStore creates the in-memory bill collection seeded with fixtures.
// Totals are recomputed from line items on every create and update.
func NewStore(seed []Bill, opts ...store.Option[Bill]) (*store.Store[Bill], error) {
	base := []store.Option[Bill]{
		store.WithNormalizer(normalize),
		store.WithValidator(Bill.Validate),
	}
	return store.New("bill", seed, append(base, opts...)...)
}
