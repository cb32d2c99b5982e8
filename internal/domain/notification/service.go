package notification

import (
	"cmp"
	"context"
	"encoding/json"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hms/hms/internal/platform/store"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List returns every notification, newest first.
func (s *Service) List(ctx context.Context) ([]Notification, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(all)
	return all, nil
}

// Search returns the notifications matching f, newest first.
func (s *Service) Search(ctx context.Context, f Filter) ([]Notification, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Notification, 0, len(all))
	for _, n := range all {
		if f.Match(n) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int) (Notification, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores n stamped with the current time and marked unread.
func (s *Service) Create(ctx context.Context, n Notification) (Notification, error) {
	n = normalize(n)
	if err := n.Validate(); err != nil {
		return Notification{}, err
	}
	n.Timestamp = s.now().UTC()
	n.Read = false
	return s.repo.Create(ctx, n)
}

func (s *Service) Update(ctx context.Context, id int, patch store.Patch) (Notification, error) {
	return s.repo.Update(ctx, id, patch)
}

func (s *Service) Delete(ctx context.Context, id int) (Notification, error) {
	return s.repo.Delete(ctx, id)
}

// MarkRead sets the read flag. Marking an already read notification is a
// no-op that still returns it.
func (s *Service) MarkRead(ctx context.Context, id int) (Notification, error) {
	return s.setRead(ctx, id, true)
}

func (s *Service) MarkUnread(ctx context.Context, id int) (Notification, error) {
	return s.setRead(ctx, id, false)
}

func (s *Service) setRead(ctx context.Context, id int, read bool) (Notification, error) {
	raw, _ := json.Marshal(read)
	return s.repo.Update(ctx, id, store.Patch{"read": raw})
}

// MarkAllRead marks every unread notification read with one update per
// record, issued concurrently. The batch is not atomic: on failure some
// records may already be read, and the first error is returned.
func (s *Service) MarkAllRead(ctx context.Context) ([]Notification, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, n := range all {
		if n.Read {
			continue
		}
		g.Go(func() error {
			updated, err := s.MarkRead(gctx, n.ID)
			if err != nil {
				return err
			}
			all[i] = updated
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortNewestFirst(all)
	return all, nil
}

func (s *Service) UnreadCount(ctx context.Context) (int, error) {
	return s.repo.Count(ctx, func(n Notification) bool { return !n.Read })
}

func sortNewestFirst(ns []Notification) {
	slices.SortStableFunc(ns, func(a, b Notification) int {
		return cmp.Compare(b.Timestamp.UnixNano(), a.Timestamp.UnixNano())
	})
}
