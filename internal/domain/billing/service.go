package billing

import (
	"context"
	"time"

	"github.com/hms/hms/internal/platform/store"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) List(ctx context.Context) ([]Bill, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int) (Bill, error) {
	return s.repo.GetByID(ctx, id)
}

// Create issues a bill. The date defaults to today and the status to
// pending; the total is computed from the items.
func (s *Service) Create(ctx context.Context, b Bill) (Bill, error) {
	if b.Date == "" {
		b.Date = s.now().Format(time.DateOnly)
	}
	b = normalize(b)
	if err := b.Validate(); err != nil {
		return Bill{}, err
	}
	return s.repo.Create(ctx, b)
}

func (s *Service) Update(ctx context.Context, id int, patch store.Patch) (Bill, error) {
	return s.repo.Update(ctx, id, patch)
}

func (s *Service) Delete(ctx context.Context, id int) (Bill, error) {
	return s.repo.Delete(ctx, id)
}

// Summary aggregates amounts over a set of bills.
type Summary struct {
	Count        int                `json:"count"`
	Billed       float64            `json:"billed"`
	Collected    float64            `json:"collected"`
	Outstanding  float64            `json:"outstanding"`
	ByStatus     map[string]float64 `json:"byStatus"`
	PendingBills int                `json:"pendingBills"`
}

// Summarize totals bills by status. Collected is the sum of paid amounts.
func Summarize(bills []Bill) Summary {
	sum := Summary{Count: len(bills), ByStatus: map[string]float64{}}
	for _, b := range bills {
		sum.Billed += b.TotalAmount
		sum.Collected += b.PaidAmount
		sum.Outstanding += b.Balance()
		sum.ByStatus[b.Status] = roundCents(sum.ByStatus[b.Status] + b.TotalAmount)
		if b.Status == StatusPending {
			sum.PendingBills++
		}
	}
	sum.Billed = roundCents(sum.Billed)
	sum.Collected = roundCents(sum.Collected)
	sum.Outstanding = roundCents(sum.Outstanding)
	return sum
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(all), nil
}
