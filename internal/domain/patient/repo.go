package patient

import (
	"github.com/hms/hms/internal/platform/store"
)

// Repository is the data-access contract the patient service depends on.
type Repository interface {
	store.Collection[Patient]
}

// NewStore creates the in-memory patient collection seeded with fixtures.
func NewStore(seed []Patient, opts ...store.Option[Patient]) (*store.Store[Patient], error) {
	base := []store.Option[Patient]{
		store.WithValidator(Patient.Validate),
	}
	return store.New("patient", seed, append(base, opts...)...)
}
