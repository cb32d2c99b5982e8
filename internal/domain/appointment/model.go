package appointment

import (
	"fmt"
	"strings"
	"time"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

var validAppointmentStatuses = map[string]bool{
	StatusPending:   true,
	StatusConfirmed: true,
	StatusCompleted: true,
	StatusCancelled: true,
}

// TimeSlots lists the bookable consultation start times.
var TimeSlots = []string{
	"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
	"14:00", "14:30", "15:00", "15:30", "16:00", "16:30", "17:00",
}

// Appointment books a patient with a doctor at a date and time slot.
// PatientID and DoctorID are not checked against their collections.
type Appointment struct {
	ID        int    `json:"Id"`
	PatientID int    `json:"patientId"`
	DoctorID  int    `json:"doctorId"`
	Date      string `json:"date"`
	TimeSlot  string `json:"timeSlot"`
	Reason    string `json:"reason"`
	Notes     string `json:"notes"`
	Status    string `json:"status"`
}

func (a Appointment) RecordID() int { return a.ID }

func (a Appointment) WithID(id int) Appointment {
	a.ID = id
	return a
}

func (a Appointment) Clone() Appointment { return a }

func (a Appointment) Validate() error {
	if a.PatientID == 0 {
		return fmt.Errorf("patientId is required")
	}
	if a.DoctorID == 0 {
		return fmt.Errorf("doctorId is required")
	}
	if strings.TrimSpace(a.Date) == "" {
		return fmt.Errorf("date is required")
	}
	if strings.TrimSpace(a.TimeSlot) == "" {
		return fmt.Errorf("timeSlot is required")
	}
	if !validAppointmentStatuses[a.Status] {
		return fmt.Errorf("invalid appointment status: %s", a.Status)
	}
	return nil
}

// Day parses the appointment date. It reports false when the date is
// malformed.
func (a Appointment) Day() (time.Time, bool) {
	d, err := time.Parse(time.DateOnly, a.Date)
	return d, err == nil
}

func normalize(a Appointment) Appointment {
	if a.Status == "" {
		a.Status = StatusPending
	}
	return a
}

// WeekDay is one column of the weekly calendar.
type WeekDay struct {
	Date         string        `json:"date"`
	Weekday      string        `json:"weekday"`
	Appointments []Appointment `json:"appointments"`
}

// WeekStart returns the Monday starting the week that contains t.
func WeekStart(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

// Week groups appts into the seven days of the Monday-based week containing
// t, ordered by time slot within each day. Appointments outside that week or
// with malformed dates are skipped.
func Week(appts []Appointment, t time.Time) []WeekDay {
	start := WeekStart(t)
	days := make([]WeekDay, 7)
	index := make(map[string]int, 7)
	for i := range days {
		d := start.AddDate(0, 0, i)
		days[i] = WeekDay{
			Date:         d.Format(time.DateOnly),
			Weekday:      d.Weekday().String(),
			Appointments: []Appointment{},
		}
		index[days[i].Date] = i
	}
	for _, a := range appts {
		d, ok := a.Day()
		if !ok {
			continue
		}
		if i, ok := index[d.Format(time.DateOnly)]; ok {
			days[i].Appointments = append(days[i].Appointments, a)
		}
	}
	for i := range days {
		sortBySlot(days[i].Appointments)
	}
	return days
}
