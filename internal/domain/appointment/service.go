package appointment

import (
	"context"
	"time"

	"github.com/hms/hms/internal/platform/store"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Appointment, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int) (Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// Create books an appointment. The status defaults to pending.
func (s *Service) Create(ctx context.Context, a Appointment) (Appointment, error) {
	a = normalize(a)
	if err := a.Validate(); err != nil {
		return Appointment{}, err
	}
	return s.repo.Create(ctx, a)
}

func (s *Service) Update(ctx context.Context, id int, patch store.Patch) (Appointment, error) {
	return s.repo.Update(ctx, id, patch)
}

func (s *Service) Delete(ctx context.Context, id int) (Appointment, error) {
	return s.repo.Delete(ctx, id)
}

// Week returns the calendar of the Monday-based week containing t.
func (s *Service) Week(ctx context.Context, t time.Time) ([]WeekDay, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return Week(all, t), nil
}

// OnDate lists the appointments booked for date (YYYY-MM-DD) ordered by
// time slot.
func (s *Service) OnDate(ctx context.Context, date string) ([]Appointment, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []Appointment
	for _, a := range all {
		if a.Date == date {
			out = append(out, a)
		}
	}
	sortBySlot(out)
	return out, nil
}
