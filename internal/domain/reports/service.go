// Package reports aggregates the dashboard tiles and the reports page from
// the live collections.
package reports

import (
	"context"
	"math"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/hms/hms/internal/domain/appointment"
	"github.com/hms/hms/internal/domain/billing"
	"github.com/hms/hms/internal/domain/directory"
	"github.com/hms/hms/internal/domain/inventory"
)

// RecentLimit caps the recent appointments table.
const RecentLimit = 5

type Service struct {
	dir       *directory.Service
	medicines directory.Lister[inventory.Medicine]
	now       func() time.Time
	printer   *message.Printer
}

func NewService(dir *directory.Service, medicines directory.Lister[inventory.Medicine]) *Service {
	return &Service{
		dir:       dir,
		medicines: medicines,
		now:       time.Now,
		printer:   message.NewPrinter(language.English),
	}
}

type snapshot struct {
	*directory.Snapshot
	Medicines []inventory.Medicine
}

func (s *Service) load(ctx context.Context) (*snapshot, error) {
	snap := &snapshot{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Snapshot, err = s.dir.Load(gctx, true, true)
		return err
	})
	g.Go(func() (err error) {
		snap.Medicines, err = s.medicines.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// Dashboard returns the four dashboard tiles.
func (s *Service) Dashboard(ctx context.Context) ([]StatCard, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	today := now.Format(time.DateOnly)
	month := now.Format("2006-01")

	var todays, pendingToday int
	for _, a := range snap.Appointments {
		if a.Date != today {
			continue
		}
		todays++
		if a.Status == appointment.StatusPending {
			pendingToday++
		}
	}

	var monthRevenue float64
	for _, b := range snap.Bills {
		if strings.HasPrefix(b.Date, month) {
			monthRevenue += b.PaidAmount
		}
	}
	outstanding := billing.Summarize(snap.Bills).Outstanding
	reorder := inventory.NeedsReorder(snap.Medicines)

	cards := []StatCard{
		{
			Title:      "Total Patients",
			Value:      s.printer.Sprintf("%d", len(snap.Patients)),
			Icon:       "Users",
			Change:     s.printer.Sprintf("%d doctors on staff", len(snap.Doctors)),
			ChangeType: ChangeNeutral,
			Color:      "primary",
		},
		{
			Title:      "Today's Appointments",
			Value:      s.printer.Sprintf("%d", todays),
			Icon:       "Calendar",
			Change:     s.printer.Sprintf("%d pending confirmation", pendingToday),
			ChangeType: ChangeNeutral,
			Color:      "secondary",
		},
		{
			Title:      "Revenue (Month)",
			Value:      s.printer.Sprintf("$%.2f", monthRevenue),
			Icon:       "DollarSign",
			Change:     s.printer.Sprintf("$%.2f outstanding", outstanding),
			ChangeType: ChangePositive,
			Color:      "accent",
		},
		{
			Title:      "Low Stock Items",
			Value:      s.printer.Sprintf("%d", len(reorder)),
			Icon:       "AlertTriangle",
			Change:     "All items sufficiently stocked",
			ChangeType: ChangePositive,
			Color:      "warning",
		},
	}
	if outstanding > 0 {
		cards[2].ChangeType = ChangeNegative
	}
	if len(reorder) > 0 {
		cards[3].Change = "Requires immediate attention"
		cards[3].ChangeType = ChangeNegative
	}
	return cards, nil
}

// Summary returns the reports page aggregates.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	bills := billing.Summarize(snap.Bills)

	sum := &Summary{
		TotalPatients:        len(snap.Patients),
		TotalDoctors:         len(snap.Doctors),
		TotalAppointments:    len(snap.Appointments),
		TotalRevenue:         bills.Collected,
		Outstanding:          bills.Outstanding,
		PendingBills:         bills.PendingBills,
		AppointmentsByStatus: map[string]int{},
		RecentAppointments:   []RecentAppointment{},
		RevenueBreakdown:     revenueBreakdown(bills),
		LowStockMedicines:    []LowStockMedicine{},
	}
	for _, a := range snap.Appointments {
		sum.AppointmentsByStatus[a.Status]++
	}

	recent := slices.Clone(snap.Appointments)
	appointment.SortRecent(recent)
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	for _, a := range snap.Index().ResolveAppointments(recent) {
		sum.RecentAppointments = append(sum.RecentAppointments, RecentAppointment{
			ID:          a.ID,
			PatientName: a.Patient.Name,
			DoctorName:  a.Doctor.Name,
			Date:        a.Date,
			TimeSlot:    a.TimeSlot,
			Status:      a.Status,
		})
	}

	for _, m := range inventory.NeedsReorder(snap.Medicines) {
		sum.LowStockMedicines = append(sum.LowStockMedicines, LowStockMedicine{
			Name:     m.Name,
			Category: m.Category,
			Quantity: m.Quantity,
			MinStock: m.MinStock,
			Status:   string(m.Status()),
		})
	}
	return sum, nil
}

var breakdownOrder = []string{billing.StatusPaid, billing.StatusPending, billing.StatusOverdue}

func revenueBreakdown(sum billing.Summary) []RevenueShare {
	out := make([]RevenueShare, 0, len(breakdownOrder))
	for _, status := range breakdownOrder {
		amount := sum.ByStatus[status]
		pct := 0
		if sum.Billed > 0 {
			pct = int(math.Round(amount / sum.Billed * 100))
		}
		out = append(out, RevenueShare{Category: status, Amount: amount, Percentage: pct})
	}
	return out
}
