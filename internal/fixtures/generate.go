package fixtures

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/hms/hms/internal/domain/appointment"
	"github.com/hms/hms/internal/domain/billing"
	"github.com/hms/hms/internal/domain/doctor"
	"github.com/hms/hms/internal/domain/inventory"
	"github.com/hms/hms/internal/domain/notification"
	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/domain/profile"
)

// GenerateConfig controls the size of a synthetic dataset.
type GenerateConfig struct {
	Patients               int
	Doctors                int
	AppointmentsPerPatient int
	Medicines              int
	Notifications          int
	// Seed makes the output reproducible. Zero picks a time-based seed.
	Seed int64
	// Start is the first day appointments are booked on.
	Start time.Time
}

func DefaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		Patients:               50,
		Doctors:                8,
		AppointmentsPerPatient: 2,
		Medicines:              20,
		Notifications:          10,
		Start:                  time.Now().UTC(),
	}
}

var (
	firstNames = []string{
		"James", "Robert", "John", "Michael", "David", "William", "Richard",
		"Joseph", "Thomas", "Daniel", "Mary", "Patricia", "Jennifer", "Linda",
		"Elizabeth", "Susan", "Jessica", "Sarah", "Karen", "Emily", "Emma",
	}
	lastNames = []string{
		"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller",
		"Davis", "Rodriguez", "Martinez", "Wilson", "Anderson", "Taylor",
		"Thomas", "Moore", "Jackson", "Martin", "Lee", "Thompson", "White",
	}
	streets = []string{
		"Main St", "Oak Ave", "Pine Rd", "Elm St", "Maple Dr", "Cedar Ln",
		"Birch Blvd", "Walnut St", "Lake Rd", "Hill St",
	}
	conditions = []string{
		"Hypertension", "Type 2 Diabetes", "Asthma", "Migraine",
		"Hypothyroidism", "High cholesterol", "Arthritis", "Allergic rhinitis",
	}
	visitReasons = []string{
		"Routine checkup", "Follow-up visit", "Flu symptoms", "Chest pain",
		"Back pain", "Medication review", "Lab results review", "Skin rash",
	}
	medicineNames = []string{
		"Paracetamol", "Ibuprofen", "Amoxicillin", "Metformin", "Atorvastatin",
		"Omeprazole", "Lisinopril", "Salbutamol", "Cetirizine", "Insulin",
	}
)

// Generator produces synthetic but internally consistent datasets.
type Generator struct {
	rng *rand.Rand
	cfg GenerateConfig
}

func NewGenerator(cfg GenerateConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.Start.IsZero() {
		cfg.Start = time.Now().UTC()
	}
	return &Generator{rng: rand.New(rand.NewSource(seed)), cfg: cfg}
}

func (g *Generator) pick(pool []string) string {
	return pool[g.rng.Intn(len(pool))]
}

func (g *Generator) randomDate(minYear, maxYear int) string {
	y := minYear + g.rng.Intn(maxYear-minYear+1)
	m := 1 + g.rng.Intn(12)
	d := 1 + g.rng.Intn(28)
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
}

func (g *Generator) randomPhone() string {
	return fmt.Sprintf("+1 (555) %03d-%04d", g.rng.Intn(1000), g.rng.Intn(10000))
}

func (g *Generator) fullName() string {
	return g.pick(firstNames) + " " + g.pick(lastNames)
}

func emailFor(name, domain string) string {
	local := strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(name, "Dr. "), " ", "."))
	return local + "@" + domain
}

// Generate builds a dataset. Every reference in the result resolves.
func (g *Generator) Generate() *Dataset {
	ds := &Dataset{}
	start := g.cfg.Start

	for i := 1; i <= g.cfg.Patients; i++ {
		name := g.fullName()
		var history []string
		for range g.rng.Intn(3) {
			history = append(history, g.pick(conditions))
		}
		ds.Patients = append(ds.Patients, patient.Patient{
			ID:          i,
			Name:        name,
			DateOfBirth: g.randomDate(1940, 2015),
			Gender:      []string{"male", "female"}[g.rng.Intn(2)],
			Phone:       g.randomPhone(),
			Email:       emailFor(name, "email.com"),
			Address:     fmt.Sprintf("%d %s, Springfield", 100+g.rng.Intn(900), g.pick(streets)),
			BloodGroup:  g.pick(patient.BloodGroups),
			EmergencyContact: patient.EmergencyContact{
				Name:  g.fullName(),
				Phone: g.randomPhone(),
			},
			MedicalHistory: append([]string{}, history...),
		})
	}

	for i := 1; i <= g.cfg.Doctors; i++ {
		name := "Dr. " + g.fullName()
		ds.Doctors = append(ds.Doctors, doctor.Doctor{
			ID:              i,
			Name:            name,
			Specialization:  g.pick(doctor.Specializations),
			Email:           emailFor(name, "hospital.com"),
			Phone:           g.randomPhone(),
			ConsultationFee: float64(50 + 10*g.rng.Intn(16)),
			Schedule: doctor.Schedule{
				Morning:     doctor.DefaultMorning,
				Evening:     doctor.DefaultEvening,
				WorkingDays: append([]string{}, doctor.WeekDays[:5]...),
			},
		})
	}

	statuses := []string{appointment.StatusPending, appointment.StatusConfirmed, appointment.StatusCompleted, appointment.StatusCancelled}
	if g.cfg.Doctors > 0 {
		for _, p := range ds.Patients {
			for range g.cfg.AppointmentsPerPatient {
				d := ds.Doctors[g.rng.Intn(len(ds.Doctors))]
				a := appointment.Appointment{
					ID:        len(ds.Appointments) + 1,
					PatientID: p.ID,
					DoctorID:  d.ID,
					Date:      start.AddDate(0, 0, g.rng.Intn(14)-7).Format(time.DateOnly),
					TimeSlot:  g.pick(appointment.TimeSlots),
					Reason:    g.pick(visitReasons),
					Status:    statuses[g.rng.Intn(len(statuses))],
				}
				ds.Appointments = append(ds.Appointments, a)

				if a.Status != appointment.StatusCompleted {
					continue
				}
				items := []billing.LineItem{{Description: d.Specialization + " consultation", Quantity: 1, UnitPrice: d.ConsultationFee}}
				if g.rng.Intn(2) == 0 {
					items = append(items, billing.LineItem{Description: "Lab work", Quantity: 1, UnitPrice: float64(20 + g.rng.Intn(80))})
				}
				total := billing.Total(items)
				bill := billing.Bill{
					ID:            len(ds.Bills) + 1,
					PatientID:     p.ID,
					AppointmentID: &a.ID,
					Items:         items,
					TotalAmount:   total,
					Status:        billing.StatusPending,
					Date:          a.Date,
				}
				if g.rng.Intn(3) > 0 {
					bill.PaidAmount = total
					bill.Status = billing.StatusPaid
				}
				ds.Bills = append(ds.Bills, bill)
			}
		}
	}

	for i := 1; i <= g.cfg.Medicines; i++ {
		minStock := 10 * (1 + g.rng.Intn(5))
		ds.Medicines = append(ds.Medicines, inventory.Medicine{
			ID:         i,
			Name:       fmt.Sprintf("%s %dmg", g.pick(medicineNames), 50*(1+g.rng.Intn(10))),
			Category:   g.pick(inventory.Categories),
			Quantity:   g.rng.Intn(minStock * 5),
			Unit:       g.pick(inventory.Units),
			MinStock:   minStock,
			ExpiryDate: start.AddDate(0, g.rng.Intn(36), 0).Format(time.DateOnly),
		})
	}

	types := []string{notification.TypeAppointment, notification.TypePatient, notification.TypeSystem, notification.TypeAlert}
	for i := 1; i <= g.cfg.Notifications; i++ {
		typ := types[g.rng.Intn(len(types))]
		ds.Notifications = append(ds.Notifications, notification.Notification{
			ID:        i,
			Type:      typ,
			Title:     strings.ToUpper(typ[:1]) + typ[1:] + " update",
			Message:   fmt.Sprintf("Generated %s notification #%d", typ, i),
			Timestamp: start.Add(-time.Duration(g.rng.Intn(72*60)) * time.Minute).Truncate(time.Second),
			Read:      g.rng.Intn(2) == 0,
		})
	}

	ds.User = profile.User{
		ID:         1,
		FirstName:  g.pick(firstNames),
		LastName:   g.pick(lastNames),
		Position:   "Hospital Administrator",
		Department: "Administration",
		JoinDate:   g.randomDate(2010, 2022),
		UpdatedAt:  start.Truncate(time.Second),
	}
	ds.User.Email = emailFor(ds.User.FullName(), "hospital.com")
	return ds
}
