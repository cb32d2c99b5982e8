package appointment

import (
	"github.com/hms/hms/internal/platform/store"
)

// Repository is the data-access contract the appointment service depends on.
type Repository interface {
	store.Collection[Appointment]
}

// NewStore creates the in-memory appointment collection seeded with fixtures.
func NewStore(seed []Appointment, opts ...store.Option[Appointment]) (*store.Store[Appointment], error) {
	base := []store.Option[Appointment]{
		store.WithNormalizer(normalize),
		store.WithValidator(Appointment.Validate),
	}
	return store.New("appointment", seed, append(base, opts...)...)
}
