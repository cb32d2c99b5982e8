// Package directory joins records that refer to each other by identifier.
// References are never enforced, so a lookup miss resolves to an Unknown
// placeholder instead of failing.
package directory

import (
	"strings"

	"github.com/hms/hms/internal/domain/appointment"
	"github.com/hms/hms/internal/domain/billing"
	"github.com/hms/hms/internal/domain/doctor"
	"github.com/hms/hms/internal/domain/patient"
)

const (
	UnknownPatient = "Unknown Patient"
	UnknownDoctor  = "Unknown Doctor"
)

// Ref is the display form of a referenced record.
type Ref struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Resolved bool   `json:"resolved"`
}

// Unknown returns the placeholder for an unresolved reference.
func Unknown(id int, name string) Ref {
	return Ref{ID: id, Name: name}
}

// Index looks up patients and doctors by identifier.
type Index struct {
	patients map[int]patient.Patient
	doctors  map[int]doctor.Doctor
}

func NewIndex(patients []patient.Patient, doctors []doctor.Doctor) *Index {
	idx := &Index{
		patients: make(map[int]patient.Patient, len(patients)),
		doctors:  make(map[int]doctor.Doctor, len(doctors)),
	}
	for _, p := range patients {
		idx.patients[p.ID] = p
	}
	for _, d := range doctors {
		idx.doctors[d.ID] = d
	}
	return idx
}

func (idx *Index) Patient(id int) Ref {
	p, ok := idx.patients[id]
	if !ok {
		return Unknown(id, UnknownPatient)
	}
	return Ref{ID: id, Name: p.Name, Resolved: true}
}

func (idx *Index) Doctor(id int) Ref {
	d, ok := idx.doctors[id]
	if !ok {
		return Unknown(id, UnknownDoctor)
	}
	return Ref{ID: id, Name: d.Name, Resolved: true}
}

// Specialization returns the doctor's specialization, or "" when the doctor
// is unknown.
func (idx *Index) Specialization(id int) string {
	return idx.doctors[id].Specialization
}

// Appointment is an appointment with its patient and doctor resolved.
type Appointment struct {
	appointment.Appointment
	Patient Ref `json:"patient"`
	Doctor  Ref `json:"doctor"`
}

// Matches reports whether term occurs in the patient name, doctor name or
// reason, ignoring case. Unknown placeholders never match.
func (a Appointment) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return (a.Patient.Resolved && strings.Contains(strings.ToLower(a.Patient.Name), term)) ||
		(a.Doctor.Resolved && strings.Contains(strings.ToLower(a.Doctor.Name), term)) ||
		strings.Contains(strings.ToLower(a.Reason), term)
}

// Bill is a bill with its patient resolved.
type Bill struct {
	billing.Bill
	Patient Ref     `json:"patient"`
	Due     float64 `json:"balance"`
}

// Matches reports whether term occurs in the patient name, ignoring case, or
// in the bill id.
func (b Bill) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return (b.Patient.Resolved && strings.Contains(strings.ToLower(b.Patient.Name), term)) ||
		b.MatchesID(term)
}

// Appointment joins a single appointment with its patient and doctor.
func (idx *Index) Appointment(a appointment.Appointment) Appointment {
	return Appointment{
		Appointment: a,
		Patient:     idx.Patient(a.PatientID),
		Doctor:      idx.Doctor(a.DoctorID),
	}
}

// Bill joins a single bill with its patient.
func (idx *Index) Bill(b billing.Bill) Bill {
	return Bill{Bill: b, Patient: idx.Patient(b.PatientID), Due: b.Balance()}
}

func (idx *Index) ResolveAppointments(appts []appointment.Appointment) []Appointment {
	out := make([]Appointment, len(appts))
	for i, a := range appts {
		out[i] = idx.Appointment(a)
	}
	return out
}

func (idx *Index) ResolveBills(bills []billing.Bill) []Bill {
	out := make([]Bill, len(bills))
	for i, b := range bills {
		out[i] = idx.Bill(b)
	}
	return out
}
