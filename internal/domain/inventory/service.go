package inventory

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

func (s *Service) List(ctx context.Context) ([]Medicine, error) {
	return s.repo.List(ctx)
}

func (s *Service) Search(ctx context.Context, term string) ([]Medicine, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Medicine, 0, len(all))
	for _, m := range all {
		if m.Matches(term) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int) (Medicine, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, m Medicine) (Medicine, error) {
	if err := m.Validate(); err != nil {
		return Medicine{}, err
	}
	return s.repo.Create(ctx, m)
}

func (s *Service) Update(ctx context.Context, id int, patch store.Patch) (Medicine, error) {
	return s.repo.Update(ctx, id, patch)
}

func (s *Service) Delete(ctx context.Context, id int) (Medicine, error) {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Summary(ctx context.Context) (StockSummary, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return StockSummary{}, err
	}
	return Summarize(all), nil
}

// LowStock lists medicines that are low or out of stock.
func (s *Service) LowStock(ctx context.Context) ([]Medicine, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return NeedsReorder(all), nil
}
