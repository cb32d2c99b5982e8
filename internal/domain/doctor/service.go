package doctor

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

func (s *Service) List(ctx context.Context) ([]Doctor, error) {
	return s.repo.List(ctx)
}

func (s *Service) Search(ctx context.Context, term string) ([]Doctor, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Doctor, 0, len(all))
	for _, d := range all {
		if d.Matches(term) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int) (Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, d Doctor) (Doctor, error) {
	if err := d.Validate(); err != nil {
		return Doctor{}, err
	}
	return s.repo.Create(ctx, d)
}

func (s *Service) Update(ctx context.Context, id int, patch store.Patch) (Doctor, error) {
	return s.repo.Update(ctx, id, patch)
}

func (s *Service) Delete(ctx context.Context, id int) (Doctor, error) {
	return s.repo.Delete(ctx, id)
}
