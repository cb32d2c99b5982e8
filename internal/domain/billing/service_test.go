package billing

import (
	"context"
	"testing"
	"time"

	"github.com/hms/hms/internal/platform/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	seed := []Bill{
		{ID: 1, PatientID: 1, Items: []LineItem{{Description: "Consultation", Quantity: 1, UnitPrice: 150}}, TotalAmount: 150, PaidAmount: 150, Status: StatusPaid, Date: "2024-01-10"},
		{ID: 2, PatientID: 2, Items: []LineItem{{Description: "Blood test", Quantity: 2, UnitPrice: 45}}, TotalAmount: 90, Status: StatusPending, Date: "2024-01-12"},
	}
	s, err := NewStore(seed, store.WithLatency[Bill](store.Latency{}))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	svc := NewService(s)
	svc.now = func() time.Time { return time.Date(2024, time.February, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestService_Create_ComputesTotal(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.Create(context.Background(), Bill{
		PatientID:   1,
		Items:       []LineItem{{Description: "Consultation", Quantity: 2, UnitPrice: 10}, {Description: "Bandage", Quantity: 1, UnitPrice: 5.5}},
		TotalAmount: 999,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.TotalAmount != 25.50 {
		t.Errorf("expected total 25.50, got %v", created.TotalAmount)
	}
	if created.Status != StatusPending || created.Date != "2024-02-01" {
		t.Errorf("expected defaults, got %+v", created)
	}
	if created.ID != 3 {
		t.Errorf("expected id 3, got %d", created.ID)
	}
}

func TestService_Update_RecomputesTotal(t *testing.T) {
	svc := newTestService(t)
	patch, _ := store.NewPatch(map[string]any{
		"items": []LineItem{{Description: "Blood test", Quantity: 3, UnitPrice: 45}},
	})
	updated, err := svc.Update(context.Background(), 2, patch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.TotalAmount != 135 {
		t.Errorf("expected total 135, got %v", updated.TotalAmount)
	}
}

func TestService_Update_RejectsEmptyItems(t *testing.T) {
	svc := newTestService(t)
	patch, _ := store.NewPatch(map[string]any{"items": []LineItem{}})
	if _, err := svc.Update(context.Background(), 2, patch); err == nil {
		t.Error("expected error for empty items")
	}
}

func TestService_Summary(t *testing.T) {
	svc := newTestService(t)
	sum, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Collected != 150 || sum.PendingBills != 1 || sum.Outstanding != 90 {
		t.Errorf("unexpected summary %+v", sum)
	}
}
