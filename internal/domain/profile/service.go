package profile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hms/hms/internal/platform/store"
)

// MinPasswordLength is the shortest accepted new password.
const MinPasswordLength = 6

// DefaultLatency is the delay before every profile operation.
const DefaultLatency = 300 * time.Millisecond

var (
	ErrIncorrectPassword = errors.New("current password is incorrect")
	ErrPasswordTooShort  = fmt.Errorf("new password must be at least %d characters", MinPasswordLength)
)

// Service owns the single user profile and its password hash.
type Service struct {
	mu       sync.RWMutex
	user     User
	hash     []byte
	latency  time.Duration
	now      func() time.Time
	observer func(ctx context.Context, u User)
}

// NewService creates the profile service from the fixture user and the
// initial plain-text password, which is hashed with bcrypt.
func NewService(user User, password string, latency time.Duration) (*Service, error) {
	if user.ID <= 0 {
		return nil, fmt.Errorf("profile fixture has invalid id %d", user.ID)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash profile password: %w", err)
	}
	return &Service{
		user:    user,
		hash:    hash,
		latency: latency,
		now:     time.Now,
	}, nil
}

// OnChange registers fn to be called after the profile is updated.
func (s *Service) OnChange(fn func(ctx context.Context, u User)) {
	s.observer = fn
}

func (s *Service) GetProfile(ctx context.Context) (User, error) {
	if err := store.Sleep(ctx, s.latency); err != nil {
		return User{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, nil
}

// UpdateProfile shallow-merges patch over the profile. The id must match the
// profile's, the identifier is never changed, and updatedAt is stamped.
func (s *Service) UpdateProfile(ctx context.Context, id int, patch store.Patch) (User, error) {
	if err := store.Sleep(ctx, s.latency); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	if id != s.user.ID {
		s.mu.Unlock()
		return User{}, fmt.Errorf("user %d: %w", id, store.ErrNotFound)
	}
	u, err := store.Merge(s.user, patch)
	if err != nil {
		s.mu.Unlock()
		return User{}, err
	}
	if err := u.Validate(); err != nil {
		s.mu.Unlock()
		return User{}, err
	}
	u.UpdatedAt = s.now().UTC()
	s.user = u
	s.mu.Unlock()

	if s.observer != nil {
		s.observer(ctx, u)
	}
	return u, nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, current, next string) error {
	if err := store.Sleep(ctx, s.latency); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := bcrypt.CompareHashAndPassword(s.hash, []byte(current)); err != nil {
		return ErrIncorrectPassword
	}
	if len(next) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	s.hash = hash
	s.user.UpdatedAt = s.now().UTC()
	return nil
}
