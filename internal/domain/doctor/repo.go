package doctor

import (
	"github.com/hms/hms/internal/platform/store"
)

// Repository is the data-access contract the doctor service depends on.
type Repository interface {
	store.Collection[Doctor]
}

// NewStore creates the in-memory doctor collection seeded with fixtures.
// Missing schedule windows are filled with the default hours.
func NewStore(seed []Doctor, opts ...store.Option[Doctor]) (*store.Store[Doctor], error) {
	base := []store.Option[Doctor]{
		store.WithNormalizer(normalize),
		store.WithValidator(Doctor.Validate),
	}
	return store.New("doctor", seed, append(base, opts...)...)
}
