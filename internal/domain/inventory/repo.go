package inventory

import (
	"github.com/hms/hms/internal/platform/store"
)

// Repository is the data-access contract the inventory service depends on.
type Repository interface {
	store.Collection[Medicine]
}

// NewStore creates the in-memory medicine collection seeded with fixtures.
func NewStore(seed []Medicine, opts ...store.Option[Medicine]) (*store.Store[Medicine], error) {
	base := []store.Option[Medicine]{
		store.WithValidator(Medicine.Validate),
	}
	return store.New("medicine", seed, append(base, opts...)...)
}
