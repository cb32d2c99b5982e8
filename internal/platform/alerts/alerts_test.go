package alerts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/domain/appointment"
	"github.com/hms/hms/internal/domain/billing"
	"github.com/hms/hms/internal/domain/inventory"
	"github.com/hms/hms/internal/domain/notification"
	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/platform/store"
)

type recordingCreator struct {
	mu    sync.Mutex
	got   []notification.Notification
	fail  bool
	added chan struct{}
}

func newRecordingCreator() *recordingCreator {
	return &recordingCreator{added: make(chan struct{}, 16)}
}

func (r *recordingCreator) Create(_ context.Context, n notification.Notification) (notification.Notification, error) {
	defer func() { r.added <- struct{}{} }()
	if r.fail {
		return n, errors.New("store unavailable")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = len(r.got) + 1
	r.got = append(r.got, n)
	return n, nil
}

func (r *recordingCreator) notifications() []notification.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notification.Notification(nil), r.got...)
}

func TestTemplateEngine_Render(t *testing.T) {
	e := NewTemplateEngine()

	n, err := e.Render(StockLow, map[string]string{
		"name": "Paracetamol", "quantity": "12", "unit": "tablets", "minStock": "50",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if n.Type != notification.TypeAlert {
		t.Errorf("expected alert type, got %q", n.Type)
	}
	if n.Title != "Low stock: Paracetamol" {
		t.Errorf("unexpected title %q", n.Title)
	}
	if n.Message != "Paracetamol is down to 12 tablets (minimum 50)." {
		t.Errorf("unexpected message %q", n.Message)
	}
	if err := n.Validate(); err != nil {
		t.Errorf("rendered notification should validate: %v", err)
	}
}

func TestTemplateEngine_MissingPlaceholderKept(t *testing.T) {
	n, err := NewTemplateEngine().Render(PatientRegistered, nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if n.Message != "{{name}} has been added to the patient registry." {
		t.Errorf("unexpected message %q", n.Message)
	}
}

func TestTemplateEngine_UnknownTemplate(t *testing.T) {
	if _, err := NewTemplateEngine().Render("nope", nil); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestTemplateEngine_RegisterTemplate(t *testing.T) {
	e := NewTemplateEngine()
	e.RegisterTemplate(Template{ID: "maintenance", Type: notification.TypeSystem, Title: "Maintenance at {{time}}"})

	n, err := e.Render("maintenance", map[string]string{"time": "22:00"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if n.Title != "Maintenance at 22:00" {
		t.Errorf("unexpected title %q", n.Title)
	}
}

func TestAlerter_EnqueueDropsWhenFull(t *testing.T) {
	a := NewAlerter(newRecordingCreator(), nil, zerolog.Nop(), 1)

	if !a.Enqueue(Alert{Template: PatientRegistered}) {
		t.Fatal("first alert should be queued")
	}
	if a.Enqueue(Alert{Template: PatientRegistered}) {
		t.Fatal("second alert should be dropped")
	}
	if a.Dropped() != 1 {
		t.Fatalf("expected 1 dropped alert, got %d", a.Dropped())
	}
}

func TestAlerter_RunDeliversUntilCanceled(t *testing.T) {
	creator := newRecordingCreator()
	a := NewAlerter(creator, nil, zerolog.Nop(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	a.Enqueue(Alert{Template: PatientRegistered, Data: map[string]string{"name": "Ada Lovelace"}})
	a.Enqueue(Alert{Template: "unknown"})
	a.Enqueue(Alert{Template: StockOut, Data: map[string]string{"name": "Insulin"}})

	for i := 0; i < 2; i++ {
		select {
		case <-creator.added:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for delivery")
		}
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	got := creator.notifications()
	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	if got[0].Message != "Ada Lovelace has been added to the patient registry." {
		t.Errorf("unexpected message %q", got[0].Message)
	}
	if got[1].Title != "Out of stock: Insulin" {
		t.Errorf("unexpected title %q", got[1].Title)
	}
}

func TestAlerter_CreateFailureIsLogged(t *testing.T) {
	creator := newRecordingCreator()
	creator.fail = true
	a := NewAlerter(creator, nil, zerolog.Nop(), 0)

	a.deliver(context.Background(), Alert{Template: PatientRegistered})
	if len(creator.notifications()) != 0 {
		t.Fatal("failed create should not record a notification")
	}
}

func queued(a *Alerter) []Alert {
	var out []Alert
	for {
		select {
		case alert := <-a.queue:
			out = append(out, alert)
		default:
			return out
		}
	}
}

func TestObservers(t *testing.T) {
	ctx := context.Background()
	a := NewAlerter(newRecordingCreator(), nil, zerolog.Nop(), 0)

	a.Patients()(ctx, store.Change[patient.Patient]{Action: store.ActionCreated, Record: patient.Patient{Name: "Ada"}})
	a.Patients()(ctx, store.Change[patient.Patient]{Action: store.ActionUpdated, Record: patient.Patient{Name: "Ada"}})

	a.Appointments()(ctx, store.Change[appointment.Appointment]{Action: store.ActionCreated, Record: appointment.Appointment{ID: 3}})
	a.Appointments()(ctx, store.Change[appointment.Appointment]{Action: store.ActionUpdated,
		Record: appointment.Appointment{ID: 3, Status: appointment.StatusConfirmed}, Previous: appointment.Appointment{ID: 3, Status: appointment.StatusPending}})
	a.Appointments()(ctx, store.Change[appointment.Appointment]{Action: store.ActionUpdated,
		Record: appointment.Appointment{ID: 3, Status: appointment.StatusCancelled}, Previous: appointment.Appointment{ID: 3, Status: appointment.StatusConfirmed}})

	a.Medicines()(ctx, store.Change[inventory.Medicine]{Action: store.ActionUpdated,
		Record: inventory.Medicine{Quantity: 100, MinStock: 10}, Previous: inventory.Medicine{Quantity: 120, MinStock: 10}})
	a.Medicines()(ctx, store.Change[inventory.Medicine]{Action: store.ActionUpdated,
		Record: inventory.Medicine{Quantity: 5, MinStock: 10}, Previous: inventory.Medicine{Quantity: 100, MinStock: 10}})
	a.Medicines()(ctx, store.Change[inventory.Medicine]{Action: store.ActionCreated, Record: inventory.Medicine{Quantity: 0, MinStock: 10}})
	a.Medicines()(ctx, store.Change[inventory.Medicine]{Action: store.ActionDeleted, Record: inventory.Medicine{Quantity: 0}})

	a.Bills()(ctx, store.Change[billing.Bill]{Action: store.ActionUpdated,
		Record: billing.Bill{ID: 6, Status: billing.StatusPaid}, Previous: billing.Bill{ID: 6, Status: billing.StatusPending}})
	a.Bills()(ctx, store.Change[billing.Bill]{Action: store.ActionUpdated,
		Record:   billing.Bill{ID: 6, Status: billing.StatusOverdue, TotalAmount: 80, PaidAmount: 30},
		Previous: billing.Bill{ID: 6, Status: billing.StatusPending, TotalAmount: 80, PaidAmount: 30}})

	want := []string{PatientRegistered, AppointmentBooked, AppointmentCancelled, StockLow, StockOut, BillOverdue}
	got := queued(a)
	if len(got) != len(want) {
		t.Fatalf("expected %d alerts, got %d: %+v", len(want), len(got), got)
	}
	for i, alert := range got {
		if alert.Template != want[i] {
			t.Errorf("alert %d: expected %s, got %s", i, want[i], alert.Template)
		}
	}
	if got[5].Data["balance"] != "50.00" {
		t.Errorf("expected balance 50.00, got %q", got[5].Data["balance"])
	}
}

func TestObservers_OnlyStatusTransitionsAlert(t *testing.T) {
	ctx := context.Background()
	a := NewAlerter(newRecordingCreator(), nil, zerolog.Nop(), 0)

	cancelled := appointment.Appointment{ID: 4, Status: appointment.StatusCancelled}
	noted := cancelled
	noted.Notes = "patient called back"
	a.Appointments()(ctx, store.Change[appointment.Appointment]{Action: store.ActionUpdated, Record: noted, Previous: cancelled})

	overdue := billing.Bill{ID: 2, Status: billing.StatusOverdue, TotalAmount: 300}
	paidSome := overdue
	paidSome.PaidAmount = 100
	a.Bills()(ctx, store.Change[billing.Bill]{Action: store.ActionCreated, Record: overdue})
	a.Bills()(ctx, store.Change[billing.Bill]{Action: store.ActionUpdated, Record: paidSome, Previous: overdue})

	low := inventory.Medicine{Name: "Insulin", Quantity: 3, MinStock: 10}
	lower := low
	lower.Quantity = 2
	a.Medicines()(ctx, store.Change[inventory.Medicine]{Action: store.ActionUpdated, Record: lower, Previous: low})

	if got := queued(a); len(got) != 0 {
		t.Fatalf("expected no alerts, got %+v", got)
	}
}

func TestObservers_StoreUpdates(t *testing.T) {
	a := NewAlerter(newRecordingCreator(), nil, zerolog.Nop(), 0)
	s, err := store.New("appointment", []appointment.Appointment{{ID: 1, PatientID: 1, DoctorID: 1, Status: appointment.StatusConfirmed}},
		store.WithLatency[appointment.Appointment](store.Latency{}),
		store.WithObserver(a.Appointments()))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	cancel, _ := store.NewPatch(map[string]any{"status": appointment.StatusCancelled})
	if _, err := s.Update(ctx, 1, cancel); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	notes, _ := store.NewPatch(map[string]any{"notes": "rebook next week"})
	if _, err := s.Update(ctx, 1, notes); err != nil {
		t.Fatalf("notes: %v", err)
	}

	got := queued(a)
	if len(got) != 1 || got[0].Template != AppointmentCancelled {
		t.Fatalf("expected a single cancellation alert, got %+v", got)
	}
}
