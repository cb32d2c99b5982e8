package console

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"sync"
	"text/tabwriter"

	"github.com/hms/hms/internal/domain/profile"
	"github.com/hms/hms/internal/domain/reports"
)

// DashboardSource supplies the dashboard tiles.
type DashboardSource interface {
	Dashboard(ctx context.Context) ([]reports.StatCard, error)
	Summary(ctx context.Context) (*reports.Summary, error)
}

// loadState is the phase bookkeeping shared by the non-table pages.
type loadState struct {
	mu     sync.RWMutex
	name   string
	phase  Phase
	errMsg string
}

func (s *loadState) begin() {
	s.mu.Lock()
	s.phase, s.errMsg = PhaseLoading, ""
	s.mu.Unlock()
}

func (s *loadState) finish(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.phase, s.errMsg = PhaseErrored, "Failed to load "+s.name
		return fmt.Errorf("load %s: %w", s.name, err)
	}
	s.phase = PhaseReady
	return nil
}

func (s *loadState) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.phase == "" {
		return PhaseIdle
	}
	return s.phase
}

func (s *loadState) ErrorMessage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// renderState writes the placeholder for a page that is not ready and
// reports whether it did.
func (s *loadState) renderState(w io.Writer) (bool, error) {
	switch s.Phase() {
	case PhaseIdle, PhaseLoading:
		_, err := fmt.Fprintf(w, "Loading %s...\n", s.name)
		return true, err
	case PhaseErrored:
		_, err := fmt.Fprintln(w, s.ErrorMessage())
		return true, err
	}
	return false, nil
}

// DashboardPage shows the four stat tiles and the recent appointments.
type DashboardPage struct {
	loadState
	src     DashboardSource
	cards   []reports.StatCard
	summary *reports.Summary
}

func NewDashboardPage(src DashboardSource) *DashboardPage {
	return &DashboardPage{loadState: loadState{name: "dashboard"}, src: src}
}

func (p *DashboardPage) Name() string     { return "dashboard" }
func (p *DashboardPage) Title() string    { return "Dashboard" }
func (p *DashboardPage) SetSearch(string) {}

func (p *DashboardPage) Cards() []reports.StatCard {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cards
}

func (p *DashboardPage) Load(ctx context.Context) error {
	p.begin()
	cards, err := p.src.Dashboard(ctx)
	var summary *reports.Summary
	if err == nil {
		summary, err = p.src.Summary(ctx)
	}
	if err == nil {
		p.mu.Lock()
		p.cards, p.summary = cards, summary
		p.mu.Unlock()
	}
	return p.finish(err)
}

func (p *DashboardPage) Render(w io.Writer) error {
	if done, err := p.renderState(w); done {
		return err
	}
	p.mu.RLock()
	cards, summary := p.cards, p.summary
	p.mu.RUnlock()

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range cards {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Title, c.Value, c.Change)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Recent appointments")
	return renderTable(w, recentColumns, summary.RecentAppointments)
}

var recentColumns = []Column[reports.RecentAppointment]{
	{"ID", func(a reports.RecentAppointment) string { return strconv.Itoa(a.ID) }},
	{"PATIENT", func(a reports.RecentAppointment) string { return a.PatientName }},
	{"DOCTOR", func(a reports.RecentAppointment) string { return a.DoctorName }},
	{"DATE", func(a reports.RecentAppointment) string { return a.Date }},
	{"TIME", func(a reports.RecentAppointment) string { return a.TimeSlot }},
	{"STATUS", func(a reports.RecentAppointment) string { return a.Status }},
}

// ReportsPage shows the aggregate report.
type ReportsPage struct {
	loadState
	src     DashboardSource
	summary *reports.Summary
}

func NewReportsPage(src DashboardSource) *ReportsPage {
	return &ReportsPage{loadState: loadState{name: "reports"}, src: src}
}

func (p *ReportsPage) Name() string     { return "reports" }
func (p *ReportsPage) Title() string    { return "Reports" }
func (p *ReportsPage) SetSearch(string) {}

func (p *ReportsPage) Summary() *reports.Summary {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.summary
}

func (p *ReportsPage) Load(ctx context.Context) error {
	p.begin()
	summary, err := p.src.Summary(ctx)
	if err == nil {
		p.mu.Lock()
		p.summary = summary
		p.mu.Unlock()
	}
	return p.finish(err)
}

func (p *ReportsPage) Render(w io.Writer) error {
	if done, err := p.renderState(w); done {
		return err
	}
	s := p.Summary()

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Patients\t%d\n", s.TotalPatients)
	fmt.Fprintf(tw, "Doctors\t%d\n", s.TotalDoctors)
	fmt.Fprintf(tw, "Appointments\t%d\n", s.TotalAppointments)
	fmt.Fprintf(tw, "Revenue\t%s\n", money(s.TotalRevenue))
	fmt.Fprintf(tw, "Outstanding\t%s\n", money(s.Outstanding))
	fmt.Fprintf(tw, "Pending bills\t%d\n", s.PendingBills)
	if err := tw.Flush(); err != nil {
		return err
	}

	statuses := make([]string, 0, len(s.AppointmentsByStatus))
	for st := range s.AppointmentsByStatus {
		statuses = append(statuses, st)
	}
	sort.Strings(statuses)
	fmt.Fprintln(w, "\nAppointments by status")
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, st := range statuses {
		fmt.Fprintf(tw, "%s\t%d\n", st, s.AppointmentsByStatus[st])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nRevenue breakdown")
	if err := renderTable(w, []Column[reports.RevenueShare]{
		{"CATEGORY", func(r reports.RevenueShare) string { return r.Category }},
		{"AMOUNT", func(r reports.RevenueShare) string { return money(r.Amount) }},
		{"SHARE", func(r reports.RevenueShare) string { return strconv.Itoa(r.Percentage) + "%" }},
	}, s.RevenueBreakdown); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nLow stock")
	return renderTable(w, []Column[reports.LowStockMedicine]{
		{"NAME", func(m reports.LowStockMedicine) string { return m.Name }},
		{"CATEGORY", func(m reports.LowStockMedicine) string { return m.Category }},
		{"QUANTITY", func(m reports.LowStockMedicine) string { return strconv.Itoa(m.Quantity) }},
		{"MIN", func(m reports.LowStockMedicine) string { return strconv.Itoa(m.MinStock) }},
		{"STATUS", func(m reports.LowStockMedicine) string { return m.Status }},
	}, s.LowStockMedicines)
}

// ProfileSource is the profile service contract the page uses.
type ProfileSource interface {
	GetProfile(ctx context.Context) (profile.User, error)
}

// ProfilePage shows the signed-in user's profile.
type ProfilePage struct {
	loadState
	src  ProfileSource
	user profile.User
}

func NewProfilePage(src ProfileSource) *ProfilePage {
	return &ProfilePage{loadState: loadState{name: "profile"}, src: src}
}

func (p *ProfilePage) Name() string     { return "profile" }
func (p *ProfilePage) Title() string    { return "Profile" }
func (p *ProfilePage) SetSearch(string) {}

func (p *ProfilePage) User() profile.User {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.user
}

func (p *ProfilePage) Load(ctx context.Context) error {
	p.begin()
	u, err := p.src.GetProfile(ctx)
	if err == nil {
		p.mu.Lock()
		p.user = u
		p.mu.Unlock()
	}
	return p.finish(err)
}

func (p *ProfilePage) Render(w io.Writer) error {
	if done, err := p.renderState(w); done {
		return err
	}
	u := p.User()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, row := range [][2]string{
		{"Name", u.FullName()},
		{"Position", u.Position},
		{"Department", u.Department},
		{"Email", u.Email},
		{"Phone", u.Phone},
		{"Joined", u.JoinDate},
		{"Bio", u.Bio},
	} {
		fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1])
	}
	return tw.Flush()
}
