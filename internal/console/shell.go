package console

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hms/hms/internal/domain/appointment"
	"github.com/hms/hms/internal/domain/billing"
	"github.com/hms/hms/internal/domain/doctor"
	"github.com/hms/hms/internal/domain/inventory"
	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/domain/profile"
)

// NavItem is one sidebar entry.
type NavItem struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Path  string `json:"path"`
}

// Navigation lists the pages in sidebar order.
var Navigation = []NavItem{
	{Name: "dashboard", Title: "Dashboard", Path: "/"},
	{Name: "patients", Title: "Patients", Path: "/patients"},
	{Name: "appointments", Title: "Appointments", Path: "/appointments"},
	{Name: "doctors", Title: "Doctors", Path: "/doctors"},
	{Name: "billing", Title: "Billing", Path: "/billing"},
	{Name: "inventory", Title: "Inventory", Path: "/inventory"},
	{Name: "reports", Title: "Reports", Path: "/reports"},
	{Name: "notifications", Title: "Notifications", Path: "/notifications"},
	{Name: "profile", Title: "Profile", Path: "/profile"},
}

// Header is the state of the bar above every page.
type Header struct {
	Search      string `json:"search"`
	Unread      int    `json:"unread"`
	ProfileName string `json:"profileName"`
	Initials    string `json:"initials"`
	Position    string `json:"position"`
}

// UnreadCounter reports the number of unread notifications.
type UnreadCounter interface {
	UnreadCount(ctx context.Context) (int, error)
}

// Services are the domain services the console pages read from.
type Services struct {
	Patients      *patient.Service
	Doctors       *doctor.Service
	Appointments  *appointment.Service
	Bills         *billing.Service
	Medicines     *inventory.Service
	Notifications interface {
		NotificationSource
		UnreadCounter
	}
	Profile ProfileSource
	Reports DashboardSource
}

// Shell owns one instance of every page and the header state.
type Shell struct {
	pages   map[string]Page
	unread  UnreadCounter
	profile ProfileSource

	mu     sync.RWMutex
	search string
}

// NewShell builds every page in Navigation from svc.
func NewShell(svc Services) *Shell {
	pages := []Page{
		NewDashboardPage(svc.Reports),
		NewPatientsPage(svc.Patients),
		NewAppointmentsPage(svc.Appointments, svc.Patients, svc.Doctors),
		NewDoctorsPage(svc.Doctors),
		NewBillingPage(svc.Bills, svc.Patients),
		NewInventoryPage(svc.Medicines),
		NewReportsPage(svc.Reports),
		NewNotificationsPage(svc.Notifications),
		NewProfilePage(svc.Profile),
	}
	s := &Shell{
		pages:   make(map[string]Page, len(pages)),
		unread:  svc.Notifications,
		profile: svc.Profile,
	}
	for _, p := range pages {
		s.pages[p.Name()] = p
	}
	return s
}

// Navigation returns the sidebar entries.
func (s *Shell) Navigation() []NavItem {
	return append([]NavItem(nil), Navigation...)
}

// Page looks a page up by name or path. "/" and "" select the dashboard.
func (s *Shell) Page(key string) (Page, error) {
	key = strings.Trim(strings.ToLower(key), "/")
	if key == "" {
		key = "dashboard"
	}
	p, ok := s.pages[key]
	if !ok {
		return nil, fmt.Errorf("unknown page %q", key)
	}
	return p, nil
}

// SetSearch stores the header search text and applies it to every page.
func (s *Shell) SetSearch(term string) {
	s.mu.Lock()
	s.search = term
	s.mu.Unlock()
	for _, p := range s.pages {
		p.SetSearch(term)
	}
}

// Open loads the page named key with the header search applied.
func (s *Shell) Open(ctx context.Context, key string) (Page, error) {
	p, err := s.Page(key)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	p.SetSearch(s.search)
	s.mu.RUnlock()
	return p, p.Load(ctx)
}

// Header reads the unread count and the profile in parallel.
func (s *Shell) Header(ctx context.Context) (Header, error) {
	s.mu.RLock()
	h := Header{Search: s.search}
	s.mu.RUnlock()

	var u profile.User
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		h.Unread, err = s.unread.UnreadCount(gctx)
		return err
	})
	g.Go(func() (err error) {
		u, err = s.profile.GetProfile(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Header{}, err
	}
	h.ProfileName = u.FullName()
	h.Initials = u.Initials()
	h.Position = u.Position
	return h, nil
}
