package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hms/hms/internal/platform/store"
)

var testNow = time.Date(2024, time.January, 20, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(User{ID: 1, FirstName: "Sarah", LastName: "Johnson", Email: "sarah@hospital.com", Position: "Administrator"}, "admin123", 0)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestNewService_InvalidID(t *testing.T) {
	if _, err := NewService(User{}, "admin123", 0); err == nil {
		t.Error("expected error for missing id")
	}
}

func TestService_UpdateProfile(t *testing.T) {
	svc := newTestService(t)
	patch, _ := store.NewPatch(map[string]any{"bio": "Runs the front office", "Id": 5})

	u, err := svc.UpdateProfile(context.Background(), 1, patch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != 1 || u.Bio != "Runs the front office" || u.FirstName != "Sarah" {
		t.Errorf("unexpected profile %+v", u)
	}
	if !u.UpdatedAt.Equal(testNow) {
		t.Errorf("expected updatedAt stamped, got %v", u.UpdatedAt)
	}
}

func TestService_UpdateProfile_WrongID(t *testing.T) {
	svc := newTestService(t)
	patch, _ := store.NewPatch(map[string]any{"bio": "x"})
	if _, err := svc.UpdateProfile(context.Background(), 2, patch); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestService_UpdateProfile_RequiredFields(t *testing.T) {
	svc := newTestService(t)
	for _, field := range []string{"firstName", "lastName", "email"} {
		patch, _ := store.NewPatch(map[string]any{field: "  "})
		if _, err := svc.UpdateProfile(context.Background(), 1, patch); err == nil {
			t.Errorf("expected error for blank %s", field)
		}
	}
	u, _ := svc.GetProfile(context.Background())
	if u.FirstName != "Sarah" {
		t.Errorf("rejected update was applied: %+v", u)
	}
}

func TestService_UpdateProfile_NotifiesObserver(t *testing.T) {
	svc := newTestService(t)
	var seen User
	svc.OnChange(func(_ context.Context, u User) { seen = u })
	patch, _ := store.NewPatch(map[string]any{"phone": "555-0100"})

	if _, err := svc.UpdateProfile(context.Background(), 1, patch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen.Phone != "555-0100" {
		t.Errorf("observer not called with updated profile: %+v", seen)
	}
}

func TestService_ChangePassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.ChangePassword(ctx, "wrong", "newpass1"); !errors.Is(err, ErrIncorrectPassword) {
		t.Errorf("expected ErrIncorrectPassword, got %v", err)
	}
	if err := svc.ChangePassword(ctx, "admin123", "short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("expected ErrPasswordTooShort, got %v", err)
	}
	if err := svc.ChangePassword(ctx, "admin123", "newpass1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.ChangePassword(ctx, "admin123", "another1"); !errors.Is(err, ErrIncorrectPassword) {
		t.Errorf("old password still accepted: %v", err)
	}
	if err := svc.ChangePassword(ctx, "newpass1", "another1"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
}

func TestUser_Names(t *testing.T) {
	u := User{FirstName: "sarah", LastName: "Johnson"}
	if u.FullName() != "sarah Johnson" || u.Initials() != "SJ" {
		t.Errorf("unexpected names %q %q", u.FullName(), u.Initials())
	}
}
