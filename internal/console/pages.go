package console

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/hms/hms/internal/domain/appointment"
	"github.com/hms/hms/internal/domain/billing"
	"github.com/hms/hms/internal/domain/directory"
	"github.com/hms/hms/internal/domain/doctor"
	"github.com/hms/hms/internal/domain/inventory"
	"github.com/hms/hms/internal/domain/notification"
	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/platform/store"
)

// Page is one screen of the console.
type Page interface {
	Name() string
	Title() string
	Load(ctx context.Context) error
	SetSearch(term string)
	Render(w io.Writer) error
}

// TablePage is an entity page rendered as a table of its visible records.
type TablePage[T store.Record[T]] struct {
	*View[T]
	name    string
	title   string
	columns []Column[T]
}

func newTablePage[T store.Record[T]](name, title string, v *View[T], columns []Column[T]) *TablePage[T] {
	return &TablePage[T]{View: v, name: name, title: title, columns: columns}
}

func (p *TablePage[T]) Name() string  { return p.name }
func (p *TablePage[T]) Title() string { return p.title }

func (p *TablePage[T]) Render(w io.Writer) error {
	switch p.Phase() {
	case PhaseIdle, PhaseLoading:
		_, err := fmt.Fprintf(w, "Loading %s...\n", strings.ToLower(p.title))
		return err
	case PhaseErrored:
		_, err := fmt.Fprintln(w, p.ErrorMessage())
		return err
	}
	return p.View.Render(w, p.columns)
}

func money(v float64) string { return "$" + strconv.FormatFloat(v, 'f', 2, 64) }

func NewPatientsPage(src Source[patient.Patient]) *TablePage[patient.Patient] {
	v := NewView("patients", src, func(p patient.Patient, term string) bool { return p.Matches(term) })
	return newTablePage("patients", "Patients", v, []Column[patient.Patient]{
		{"ID", func(p patient.Patient) string { return strconv.Itoa(p.ID) }},
		{"NAME", func(p patient.Patient) string { return p.Name }},
		{"GENDER", func(p patient.Patient) string { return p.Gender }},
		{"BLOOD", func(p patient.Patient) string { return p.BloodGroup }},
		{"PHONE", func(p patient.Patient) string { return p.Phone }},
		{"EMAIL", func(p patient.Patient) string { return p.Email }},
	})
}

func NewDoctorsPage(src Source[doctor.Doctor]) *TablePage[doctor.Doctor] {
	v := NewView("doctors", src, func(d doctor.Doctor, term string) bool { return d.Matches(term) })
	return newTablePage("doctors", "Doctors", v, []Column[doctor.Doctor]{
		{"ID", func(d doctor.Doctor) string { return strconv.Itoa(d.ID) }},
		{"NAME", func(d doctor.Doctor) string { return d.Name }},
		{"SPECIALIZATION", func(d doctor.Doctor) string { return d.Specialization }},
		{"FEE", func(d doctor.Doctor) string { return money(d.ConsultationFee) }},
		{"DAYS", func(d doctor.Doctor) string { return strings.Join(d.Schedule.WorkingDays, ",") }},
	})
}

func NewInventoryPage(src Source[inventory.Medicine]) *TablePage[inventory.Medicine] {
	v := NewView("inventory", src, func(m inventory.Medicine, term string) bool { return m.Matches(term) })
	return newTablePage("inventory", "Inventory", v, []Column[inventory.Medicine]{
		{"ID", func(m inventory.Medicine) string { return strconv.Itoa(m.ID) }},
		{"NAME", func(m inventory.Medicine) string { return m.Name }},
		{"CATEGORY", func(m inventory.Medicine) string { return m.Category }},
		{"QUANTITY", func(m inventory.Medicine) string { return fmt.Sprintf("%d %s", m.Quantity, m.Unit) }},
		{"MIN", func(m inventory.Medicine) string { return strconv.Itoa(m.MinStock) }},
		{"STATUS", func(m inventory.Medicine) string { return m.Status().Label() }},
		{"EXPIRES", func(m inventory.Medicine) string { return m.ExpiryDate }},
	})
}

// people holds the patient and doctor lists a joined page resolves names
// against.
type people struct {
	patients directory.Lister[patient.Patient]
	doctors  directory.Lister[doctor.Doctor]

	mu          sync.RWMutex
	patientList []patient.Patient
	doctorList  []doctor.Doctor
	index       *directory.Index
}

func (pp *people) loaders(withDoctors bool) []Loader {
	loaders := []Loader{func(ctx context.Context) error {
		list, err := pp.patients.List(ctx)
		if err != nil {
			return err
		}
		pp.mu.Lock()
		pp.patientList, pp.index = list, nil
		pp.mu.Unlock()
		return nil
	}}
	if withDoctors {
		loaders = append(loaders, func(ctx context.Context) error {
			list, err := pp.doctors.List(ctx)
			if err != nil {
				return err
			}
			pp.mu.Lock()
			pp.doctorList, pp.index = list, nil
			pp.mu.Unlock()
			return nil
		})
	}
	return loaders
}

// Index returns the lookup built from the last loaded lists. It is rebuilt
// only after a loader replaces a list.
func (pp *people) Index() *directory.Index {
	pp.mu.RLock()
	idx := pp.index
	pp.mu.RUnlock()
	if idx != nil {
		return idx
	}

	pp.mu.Lock()
	defer pp.mu.Unlock()
	if pp.index == nil {
		pp.index = directory.NewIndex(pp.patientList, pp.doctorList)
	}
	return pp.index
}

// AppointmentsPage lists appointments with patient and doctor names
// resolved from lists loaded alongside them.
type AppointmentsPage struct {
	*TablePage[appointment.Appointment]
	people *people
}

func NewAppointmentsPage(src Source[appointment.Appointment], patients directory.Lister[patient.Patient], doctors directory.Lister[doctor.Doctor]) *AppointmentsPage {
	pp := &people{patients: patients, doctors: doctors}
	match := func(a appointment.Appointment, term string) bool { return pp.Index().Appointment(a).Matches(term) }
	v := NewView("appointments", src, match, pp.loaders(true)...)

	page := newTablePage("appointments", "Appointments", v, []Column[appointment.Appointment]{
		{"ID", func(a appointment.Appointment) string { return strconv.Itoa(a.ID) }},
		{"PATIENT", func(a appointment.Appointment) string { return pp.Index().Patient(a.PatientID).Name }},
		{"DOCTOR", func(a appointment.Appointment) string { return pp.Index().Doctor(a.DoctorID).Name }},
		{"DATE", func(a appointment.Appointment) string { return a.Date }},
		{"TIME", func(a appointment.Appointment) string { return a.TimeSlot }},
		{"STATUS", func(a appointment.Appointment) string { return a.Status }},
		{"REASON", func(a appointment.Appointment) string { return a.Reason }},
	})
	return &AppointmentsPage{TablePage: page, people: pp}
}

// Resolved returns the visible appointments joined with their patient and
// doctor.
func (p *AppointmentsPage) Resolved() []directory.Appointment {
	return p.people.Index().ResolveAppointments(p.Visible())
}

// BillingPage lists bills with the patient name resolved.
type BillingPage struct {
	*TablePage[billing.Bill]
	people *people
}

func NewBillingPage(src Source[billing.Bill], patients directory.Lister[patient.Patient]) *BillingPage {
	pp := &people{patients: patients}
	match := func(b billing.Bill, term string) bool { return pp.Index().Bill(b).Matches(term) }
	v := NewView("bills", src, match, pp.loaders(false)...)

	page := newTablePage("billing", "Billing", v, []Column[billing.Bill]{
		{"ID", func(b billing.Bill) string { return strconv.Itoa(b.ID) }},
		{"PATIENT", func(b billing.Bill) string { return pp.Index().Patient(b.PatientID).Name }},
		{"DATE", func(b billing.Bill) string { return b.Date }},
		{"TOTAL", func(b billing.Bill) string { return money(b.TotalAmount) }},
		{"PAID", func(b billing.Bill) string { return money(b.PaidAmount) }},
		{"BALANCE", func(b billing.Bill) string { return money(b.Balance()) }},
		{"STATUS", func(b billing.Bill) string { return b.Status }},
	})
	return &BillingPage{TablePage: page, people: pp}
}

// Resolved returns the visible bills joined with their patient.
func (p *BillingPage) Resolved() []directory.Bill {
	return p.people.Index().ResolveBills(p.Visible())
}

// Summary totals the visible bills.
func (p *BillingPage) Summary() billing.Summary {
	return billing.Summarize(p.Visible())
}

// NotificationSource is the notification service contract the page uses.
type NotificationSource interface {
	Source[notification.Notification]
	MarkRead(ctx context.Context, id int) (notification.Notification, error)
	MarkAllRead(ctx context.Context) ([]notification.Notification, error)
}

// NotificationsPage adds type and read-state filters to the search term.
type NotificationsPage struct {
	*TablePage[notification.Notification]
	src NotificationSource

	mu   sync.RWMutex
	typ  string
	read notification.ReadFilter
}

func NewNotificationsPage(src NotificationSource) *NotificationsPage {
	p := &NotificationsPage{src: src, read: notification.ReadAny}
	match := func(n notification.Notification, term string) bool {
		p.mu.RLock()
		f := notification.Filter{Term: term, Type: p.typ, Status: p.read}
		p.mu.RUnlock()
		return f.Match(n)
	}
	v := NewView("notifications", src, match)
	p.TablePage = newTablePage("notifications", "Notifications", v, []Column[notification.Notification]{
		{"ID", func(n notification.Notification) string { return strconv.Itoa(n.ID) }},
		{"", func(n notification.Notification) string {
			if n.Read {
				return ""
			}
			return "*"
		}},
		{"TYPE", func(n notification.Notification) string { return n.Type }},
		{"TITLE", func(n notification.Notification) string { return n.Title }},
		{"TIME", func(n notification.Notification) string { return n.Timestamp.Format("2006-01-02 15:04") }},
	})
	return p
}

// SetType restricts the list to one notification type; "" or "all" shows
// every type.
func (p *NotificationsPage) SetType(typ string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.typ = typ
}

func (p *NotificationsPage) SetReadFilter(f notification.ReadFilter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.read = f
}

// MarkRead marks id read and updates the snapshot.
func (p *NotificationsPage) MarkRead(ctx context.Context, id int) error {
	n, err := p.src.MarkRead(ctx, id)
	if err != nil {
		return err
	}
	p.replace(n)
	return nil
}

// MarkAllRead marks every notification read. On failure the snapshot is
// left as loaded even though some records may already be read in the store.
func (p *NotificationsPage) MarkAllRead(ctx context.Context) error {
	updated, err := p.src.MarkAllRead(ctx)
	for _, n := range updated {
		p.replace(n)
	}
	return err
}

// Unread counts unread notifications in the snapshot.
func (p *NotificationsPage) Unread() int {
	n := 0
	for _, rec := range p.Records() {
		if !rec.Read {
			n++
		}
	}
	return n
}

func (v *View[T]) replace(rec T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if i := v.indexOf(rec.RecordID()); i >= 0 {
		v.records[i] = rec
	}
}
