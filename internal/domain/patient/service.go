package patient

import (
	"context"

	"github.com/hms/hms/internal/platform/store"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Patient, error) {
	return s.repo.List(ctx)
}

// Search lists the patients matching term. See Patient.Matches.
func (s *Service) Search(ctx context.Context, term string) ([]Patient, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Patient, 0, len(all))
	for _, p := range all {
		if p.Matches(term) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int) (Patient, error) {
	return s.repo.GetByID(ctx, id)
}

// Create registers a new patient. Medical history always starts empty.
func (s *Service) Create(ctx context.Context, p Patient) (Patient, error) {
	if err := p.Validate(); err != nil {
		return Patient{}, err
	}
	p.MedicalHistory = []string{}
	return s.repo.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, id int, patch store.Patch) (Patient, error) {
	return s.repo.Update(ctx, id, patch)
}

// Delete removes the patient. Appointments and bills that reference the
// patient are kept and resolve to an unknown patient afterwards.
func (s *Service) Delete(ctx context.Context, id int) (Patient, error) {
	return s.repo.Delete(ctx, id)
}
