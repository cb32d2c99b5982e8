package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/platform/store"
)

type flakySource struct {
	*patient.Service
	failList bool
}

func (f *flakySource) List(ctx context.Context) ([]patient.Patient, error) {
	if f.failList {
		return nil, errors.New("connection reset")
	}
	return f.Service.List(ctx)
}

func newPatientView(t *testing.T) (*View[patient.Patient], *flakySource) {
	t.Helper()
	s, err := patient.NewStore([]patient.Patient{
		{ID: 1, Name: "John Doe", Phone: "555-0101", Email: "john@example.com"},
		{ID: 2, Name: "Jane Wilson", Phone: "555-0102", Email: "jane@example.com"},
	}, store.WithLatency[patient.Patient](store.Latency{}))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	src := &flakySource{Service: patient.NewService(s)}
	v := NewView("patients", Source[patient.Patient](src), func(p patient.Patient, term string) bool { return p.Matches(term) })
	return v, src
}

func TestView_LoadLifecycle(t *testing.T) {
	v, src := newPatientView(t)
	if v.Phase() != PhaseIdle {
		t.Fatalf("expected idle, got %s", v.Phase())
	}

	src.failList = true
	if err := v.Load(context.Background()); err == nil {
		t.Fatal("expected load error")
	}
	if v.Phase() != PhaseErrored {
		t.Fatalf("expected errored, got %s", v.Phase())
	}
	if v.ErrorMessage() != "Failed to load patients" {
		t.Fatalf("unexpected message %q", v.ErrorMessage())
	}

	src.failList = false
	if err := v.Retry(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if v.Phase() != PhaseReady || v.ErrorMessage() != "" {
		t.Fatalf("expected ready with no message, got %s %q", v.Phase(), v.ErrorMessage())
	}
	if len(v.Records()) != 2 {
		t.Fatalf("expected 2 records, got %d", len(v.Records()))
	}
}

func TestView_LoadRelatedFailure(t *testing.T) {
	v, _ := newPatientView(t)
	v.related = []Loader{func(context.Context) error { return errors.New("doctors unavailable") }}

	if err := v.Load(context.Background()); err == nil {
		t.Fatal("expected related failure to fail the load")
	}
	if v.Phase() != PhaseErrored {
		t.Fatalf("expected errored, got %s", v.Phase())
	}
}

func TestView_Search(t *testing.T) {
	v, _ := newPatientView(t)
	if err := v.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	v.SetSearch("  JANE ")
	got := v.Visible()
	if len(got) != 1 || got[0].Name != "Jane Wilson" {
		t.Fatalf("expected only Jane, got %+v", got)
	}

	v.SetSearch("555-01")
	if len(v.Visible()) != 2 {
		t.Fatalf("expected phone search to match both, got %d", len(v.Visible()))
	}

	v.SetSearch("")
	if len(v.Visible()) != 2 {
		t.Fatal("empty search should show every record")
	}
}

func TestView_CreateAppends(t *testing.T) {
	v, _ := newPatientView(t)
	ctx := context.Background()
	if _, err := v.Submit(ctx, patient.Patient{Name: "x"}); err == nil {
		t.Fatal("submit without an open form should fail")
	}
	if err := v.OpenCreate(); err == nil {
		t.Fatal("open create before load should fail")
	}
	if err := v.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := v.OpenCreate(); err != nil {
		t.Fatalf("open create: %v", err)
	}
	created, err := v.Submit(ctx, patient.Patient{Name: "Bob Brown"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if created.ID != 3 {
		t.Fatalf("expected id 3, got %d", created.ID)
	}
	recs := v.Records()
	if len(recs) != 3 || recs[2].Name != "Bob Brown" {
		t.Fatalf("expected appended record, got %+v", recs)
	}
	if m, _ := v.Modal(); m != ModalClosed {
		t.Fatalf("expected modal closed, got %s", m)
	}
}

func TestView_SubmitFailureKeepsFormOpen(t *testing.T) {
	v, _ := newPatientView(t)
	ctx := context.Background()
	_ = v.Load(ctx)
	_ = v.OpenCreate()

	if _, err := v.Submit(ctx, patient.Patient{}); err == nil {
		t.Fatal("expected presence check to fail")
	}
	if m, _ := v.Modal(); m != ModalCreating {
		t.Fatalf("expected form to stay open, got %s", m)
	}
	if len(v.Records()) != 2 {
		t.Fatal("failed submit must not touch the snapshot")
	}
}

func TestView_EditReplaces(t *testing.T) {
	v, _ := newPatientView(t)
	ctx := context.Background()
	_ = v.Load(ctx)

	if err := v.OpenEdit(99); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := v.OpenEdit(2); err != nil {
		t.Fatalf("open edit: %v", err)
	}
	form, ok := v.Editing()
	if !ok || form.ID != 2 {
		t.Fatalf("expected editing record 2, got %+v", form)
	}
	form.Name = "Jane Smith"
	form.ID = 7

	saved, err := v.Submit(ctx, form)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if saved.ID != 2 || saved.Name != "Jane Smith" {
		t.Fatalf("unexpected saved record %+v", saved)
	}
	if v.Records()[1].Name != "Jane Smith" {
		t.Fatal("expected snapshot to hold the updated record")
	}
}

func TestView_Cancel(t *testing.T) {
	v, _ := newPatientView(t)
	_ = v.Load(context.Background())
	_ = v.OpenEdit(1)
	v.Cancel()
	if m, id := v.Modal(); m != ModalClosed || id != 0 {
		t.Fatalf("expected closed modal, got %s %d", m, id)
	}
	if _, ok := v.Editing(); ok {
		t.Fatal("no record should be under edit")
	}
}

func TestView_DeleteRequiresConfirmation(t *testing.T) {
	v, src := newPatientView(t)
	ctx := context.Background()
	_ = v.Load(ctx)

	deleted, err := v.Delete(ctx, 1, func() bool { return false })
	if err != nil || deleted {
		t.Fatalf("declined delete should be a no-op, got %v %v", deleted, err)
	}
	if _, err := src.Get(ctx, 1); err != nil {
		t.Fatalf("record should still exist: %v", err)
	}

	deleted, err = v.Delete(ctx, 1, func() bool { return true })
	if err != nil || !deleted {
		t.Fatalf("expected delete, got %v %v", deleted, err)
	}
	if len(v.Records()) != 1 {
		t.Fatalf("expected 1 record left, got %d", len(v.Records()))
	}
	if _, err := src.Get(ctx, 1); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := v.Delete(ctx, 1, nil); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for second delete, got %v", err)
	}
}

func TestView_StaleSnapshot(t *testing.T) {
	a, src := newPatientView(t)
	b := NewView("patients", Source[patient.Patient](src), nil)
	ctx := context.Background()
	_ = a.Load(ctx)
	_ = b.Load(ctx)

	_ = a.OpenCreate()
	if _, err := a.Submit(ctx, patient.Patient{Name: "New"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(b.Records()) != 2 {
		t.Fatal("other views keep their snapshot until reloaded")
	}
	_ = b.Load(ctx)
	if len(b.Records()) != 3 {
		t.Fatal("reload should pick up the new record")
	}
}

func TestView_Render(t *testing.T) {
	v, _ := newPatientView(t)
	_ = v.Load(context.Background())
	v.SetSearch("john")

	var buf bytes.Buffer
	err := v.Render(&buf, []Column[patient.Patient]{
		{Header: "ID", Value: func(p patient.Patient) string { return "#" }},
		{Header: "NAME", Value: func(p patient.Patient) string { return p.Name }},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "ID") || !strings.Contains(lines[1], "John Doe") {
		t.Fatalf("unexpected table %q", buf.String())
	}
}
