package console

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/domain/appointment"
	"github.com/hms/hms/internal/domain/billing"
	"github.com/hms/hms/internal/domain/directory"
	"github.com/hms/hms/internal/domain/doctor"
	"github.com/hms/hms/internal/domain/inventory"
	"github.com/hms/hms/internal/domain/notification"
	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/domain/profile"
	"github.com/hms/hms/internal/domain/reports"
	"github.com/hms/hms/internal/fixtures"
	"github.com/hms/hms/internal/platform/store"
)

func newServices(t *testing.T) Services {
	t.Helper()
	ds, err := fixtures.Default()
	if err != nil {
		t.Fatalf("fixtures: %v", err)
	}
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("setup: %v", err)
		}
	}

	ps, err := patient.NewStore(ds.Patients, store.WithLatency[patient.Patient](store.Latency{}))
	must(err)
	dcs, err := doctor.NewStore(ds.Doctors, store.WithLatency[doctor.Doctor](store.Latency{}))
	must(err)
	as, err := appointment.NewStore(ds.Appointments, store.WithLatency[appointment.Appointment](store.Latency{}))
	must(err)
	bs, err := billing.NewStore(ds.Bills, store.WithLatency[billing.Bill](store.Latency{}))
	must(err)
	ms, err := inventory.NewStore(ds.Medicines, store.WithLatency[inventory.Medicine](store.Latency{}))
	must(err)
	ns, err := notification.NewStore(ds.Notifications, store.WithLatency[notification.Notification](store.Latency{}))
	must(err)
	prof, err := profile.NewService(ds.User, "admin123", 0)
	must(err)

	svc := Services{
		Patients:      patient.NewService(ps),
		Doctors:       doctor.NewService(dcs),
		Appointments:  appointment.NewService(as),
		Bills:         billing.NewService(bs),
		Medicines:     inventory.NewService(ms),
		Notifications: notification.NewService(ns),
		Profile:       prof,
	}
	dir := directory.NewService(svc.Patients, svc.Doctors, svc.Appointments, svc.Bills)
	svc.Reports = reports.NewService(dir, svc.Medicines)
	return svc
}

func TestShell_NavigationOrder(t *testing.T) {
	shell := NewShell(newServices(t))
	want := []string{"Dashboard", "Patients", "Appointments", "Doctors", "Billing", "Inventory", "Reports", "Notifications", "Profile"}
	nav := shell.Navigation()
	if len(nav) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(nav))
	}
	for i, item := range nav {
		if item.Title != want[i] {
			t.Errorf("entry %d: expected %s, got %s", i, want[i], item.Title)
		}
		if _, err := shell.Page(item.Path); err != nil {
			t.Errorf("no page for %s: %v", item.Path, err)
		}
	}
	if nav[0].Path != "/" {
		t.Errorf("dashboard should live at /, got %s", nav[0].Path)
	}
	if _, err := shell.Page("settings"); err == nil {
		t.Error("expected unknown page error")
	}
}

func TestShell_Header(t *testing.T) {
	shell := NewShell(newServices(t))
	shell.SetSearch("john")

	h, err := shell.Header(context.Background())
	if err != nil {
		t.Fatalf("header: %v", err)
	}
	if h.Unread != 4 {
		t.Errorf("expected 4 unread notifications, got %d", h.Unread)
	}
	if h.ProfileName != "Sarah Mitchell" || h.Initials != "SM" {
		t.Errorf("unexpected profile %q %q", h.ProfileName, h.Initials)
	}
	if h.Search != "john" {
		t.Errorf("expected search to be kept, got %q", h.Search)
	}
}

func TestAppointmentsPage_SearchByResolvedNames(t *testing.T) {
	svc := newServices(t)
	page := NewAppointmentsPage(svc.Appointments, svc.Patients, svc.Doctors)
	if err := page.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	page.SetSearch("john")
	ids := map[int]bool{}
	for _, a := range page.Resolved() {
		ids[a.ID] = true
	}
	// John Doe (1, 9), Michael Johnson (5) and Dr. Robert Johnson (6).
	for _, id := range []int{1, 5, 6, 9} {
		if !ids[id] {
			t.Errorf("expected appointment %d to match", id)
		}
	}
	if ids[2] || len(ids) != 4 {
		t.Errorf("unexpected matches %v", ids)
	}

	page.SetSearch("jane")
	got := page.Resolved()
	if len(got) != 1 || got[0].Patient.Name != "Jane Wilson" || got[0].Doctor.Name != "Dr. Lisa Patel" {
		t.Fatalf("expected Jane's appointment, got %+v", got)
	}
}

func TestAppointmentsPage_IndexReusedUntilReload(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()
	page := NewAppointmentsPage(svc.Appointments, svc.Patients, svc.Doctors)
	if err := page.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	first := page.people.Index()
	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	if page.people.Index() != first {
		t.Fatal("rendering should reuse the loaded index")
	}
	if !strings.Contains(buf.String(), "Jane Wilson") || !strings.Contains(buf.String(), "Dr. Lisa Patel") {
		t.Fatalf("expected resolved names, got %q", buf.String())
	}

	if err := page.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if page.people.Index() == first {
		t.Fatal("reloading should rebuild the index")
	}
}

func TestAppointmentsPage_UnknownReference(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()
	if _, err := svc.Patients.Delete(ctx, 2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	page := NewAppointmentsPage(svc.Appointments, svc.Patients, svc.Doctors)
	_ = page.Load(ctx)

	page.SetSearch("asthma")
	got := page.Resolved()
	if len(got) != 1 {
		t.Fatalf("expected reason match, got %d", len(got))
	}
	if got[0].Patient.Resolved || got[0].Patient.Name != directory.UnknownPatient {
		t.Fatalf("expected unknown patient sentinel, got %+v", got[0].Patient)
	}

	page.SetSearch("unknown")
	if len(page.Resolved()) != 0 {
		t.Fatal("the unknown placeholder should never match a search")
	}
}

func TestBillingPage(t *testing.T) {
	svc := newServices(t)
	page := NewBillingPage(svc.Bills, svc.Patients)
	if err := page.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	page.SetSearch("wilson")
	got := page.Resolved()
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("expected bill 2, got %+v", got)
	}

	page.SetSearch("")
	sum := page.Summary()
	if sum.Count != 6 {
		t.Fatalf("expected 6 bills, got %d", sum.Count)
	}
}

func TestNotificationsPage_Filters(t *testing.T) {
	svc := newServices(t)
	page := NewNotificationsPage(svc.Notifications)
	ctx := context.Background()
	if err := page.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	page.SetType(notification.TypeAlert)
	if n := len(page.Visible()); n != 2 {
		t.Fatalf("expected 2 alerts, got %d", n)
	}
	page.SetReadFilter(notification.ReadOnly)
	if n := len(page.Visible()); n != 0 {
		t.Fatalf("expected no read alerts, got %d", n)
	}
	page.SetType("all")
	if n := len(page.Visible()); n != 2 {
		t.Fatalf("expected 2 read notifications, got %d", n)
	}

	if err := page.MarkRead(ctx, 1); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if err := page.MarkRead(ctx, 1); err != nil {
		t.Fatalf("mark read twice: %v", err)
	}
	if page.Unread() != 3 {
		t.Fatalf("expected 3 unread, got %d", page.Unread())
	}

	if err := page.MarkAllRead(ctx); err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	if page.Unread() != 0 {
		t.Fatalf("expected none unread, got %d", page.Unread())
	}
	if n, _ := svc.Notifications.UnreadCount(ctx); n != 0 {
		t.Fatalf("store still reports %d unread", n)
	}
}

func TestPages_Render(t *testing.T) {
	shell := NewShell(newServices(t))
	tests := map[string]string{
		"/":             "Total Patients",
		"patients":      "John Doe",
		"appointments":  "Dr. Sarah Smith",
		"doctors":       "Cardiology",
		"billing":       "$225.00",
		"inventory":     "Out of Stock",
		"reports":       "Revenue breakdown",
		"notifications": "Low Stock Alert",
		"profile":       "Hospital Administrator",
	}
	for key, want := range tests {
		t.Run(key, func(t *testing.T) {
			page, err := shell.Open(context.Background(), key)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			var buf bytes.Buffer
			if err := page.Render(&buf); err != nil {
				t.Fatalf("render: %v", err)
			}
			if !strings.Contains(buf.String(), want) {
				t.Fatalf("expected %q in\n%s", want, buf.String())
			}
		})
	}
}

func TestPages_RenderBeforeLoad(t *testing.T) {
	shell := NewShell(newServices(t))
	for _, key := range []string{"patients", "reports"} {
		page, _ := shell.Page(key)
		var buf bytes.Buffer
		_ = page.Render(&buf)
		if !strings.HasPrefix(buf.String(), "Loading") {
			t.Errorf("%s: expected loading placeholder, got %q", key, buf.String())
		}
	}
}

func TestHandler_Shell(t *testing.T) {
	e := echo.New()
	NewHandler(newServices(t)).RegisterRoutes(e.Group("/api/v1"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/shell?q=flu", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body shellResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Navigation) != 9 || body.Header.Unread != 4 || body.Header.Search != "flu" {
		t.Fatalf("unexpected shell %+v", body)
	}
}

func TestHandler_ShellSearchIsCleaned(t *testing.T) {
	e := echo.New()
	NewHandler(newServices(t)).RegisterRoutes(e.Group("/api/v1"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/shell?q=%20flu%07%20", nil))
	var body shellResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Header.Search != "flu" {
		t.Fatalf("expected cleaned search, got %q", body.Header.Search)
	}
}

func TestHandler_RenderPage(t *testing.T) {
	e := echo.New()
	NewHandler(newServices(t)).RegisterRoutes(e.Group("/api/v1"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/console/patients?q=wilson", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Jane Wilson") || strings.Contains(rec.Body.String(), "John Doe") {
		t.Fatalf("unexpected page %q", rec.Body.String())
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("expected text/plain, got %s", ct)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/console/settings", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown page, got %d", rec.Code)
	}
}
