package directory

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/hms/hms/internal/domain/appointment"
	"github.com/hms/hms/internal/domain/billing"
	"github.com/hms/hms/internal/domain/doctor"
	"github.com/hms/hms/internal/domain/patient"
)

// Lister is satisfied by every entity service.
type Lister[T any] interface {
	List(ctx context.Context) ([]T, error)
}

// Service loads the collections a join needs concurrently.
type Service struct {
	patients     Lister[patient.Patient]
	doctors      Lister[doctor.Doctor]
	appointments Lister[appointment.Appointment]
	bills        Lister[billing.Bill]
}

func NewService(
	patients Lister[patient.Patient],
	doctors Lister[doctor.Doctor],
	appointments Lister[appointment.Appointment],
	bills Lister[billing.Bill],
) *Service {
	return &Service{patients: patients, doctors: doctors, appointments: appointments, bills: bills}
}

// Snapshot is one consistent-enough read of the joined collections. Each
// list is read independently; there is no cross-collection transaction.
type Snapshot struct {
	Patients     []patient.Patient
	Doctors      []doctor.Doctor
	Appointments []appointment.Appointment
	Bills        []billing.Bill
}

// Load reads the requested collections in parallel. The first failure
// cancels the rest.
func (s *Service) Load(ctx context.Context, appts, bills bool) (*Snapshot, error) {
	snap := &Snapshot{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Patients, err = s.patients.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Doctors, err = s.doctors.List(gctx)
		return err
	})
	if appts {
		g.Go(func() (err error) {
			snap.Appointments, err = s.appointments.List(gctx)
			return err
		})
	}
	if bills {
		g.Go(func() (err error) {
			snap.Bills, err = s.bills.List(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

func (snap *Snapshot) Index() *Index {
	return NewIndex(snap.Patients, snap.Doctors)
}

// Appointments returns every appointment resolved against the current
// patients and doctors.
func (s *Service) Appointments(ctx context.Context) ([]Appointment, error) {
	snap, err := s.Load(ctx, true, false)
	if err != nil {
		return nil, err
	}
	return snap.Index().ResolveAppointments(snap.Appointments), nil
}

// Bills returns every bill resolved against the current patients.
func (s *Service) Bills(ctx context.Context) ([]Bill, error) {
	snap, err := s.Load(ctx, false, true)
	if err != nil {
		return nil, err
	}
	return snap.Index().ResolveBills(snap.Bills), nil
}
