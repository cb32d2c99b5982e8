package doctor

import (
	"fmt"
	"slices"
	"strings"
)

// Window is a daily consultation window in HH:MM.
type Window struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Schedule holds a doctor's consultation windows and working days.
type Schedule struct {
	Morning     Window   `json:"morning"`
	Evening     Window   `json:"evening"`
	WorkingDays []string `json:"workingDays"`
}

// Doctor is a member of the medical staff.
type Doctor struct {
	ID              int      `json:"Id"`
	Name            string   `json:"name"`
	Specialization  string   `json:"specialization"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	ConsultationFee float64  `json:"consultationFee"`
	Schedule        Schedule `json:"schedule"`
}

func (d Doctor) RecordID() int { return d.ID }

func (d Doctor) WithID(id int) Doctor {
	d.ID = id
	return d
}

func (d Doctor) Clone() Doctor {
	d.Schedule.WorkingDays = slices.Clone(d.Schedule.WorkingDays)
	return d
}

func (d Doctor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(d.Specialization) == "" {
		return fmt.Errorf("specialization is required")
	}
	return nil
}

// Matches reports whether term occurs in the doctor's name, specialization,
// phone or email, ignoring case.
func (d Doctor) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(d.Name), term) ||
		strings.Contains(strings.ToLower(d.Specialization), term) ||
		strings.Contains(d.Phone, term) ||
		strings.Contains(strings.ToLower(d.Email), term)
}

// WorksOn reports whether weekday (e.g. "Monday") is one of the doctor's
// working days.
func (d Doctor) WorksOn(weekday string) bool {
	return slices.ContainsFunc(d.Schedule.WorkingDays, func(day string) bool {
		return strings.EqualFold(day, weekday)
	})
}

// Default consultation windows for doctors created without a schedule.
var (
	DefaultMorning = Window{Start: "09:00", End: "12:00"}
	DefaultEvening = Window{Start: "14:00", End: "17:00"}
)

// Specializations lists the specializations offered by the hospital.
var Specializations = []string{
	"General Medicine", "Cardiology", "Neurology", "Orthopedics", "Pediatrics",
	"Gynecology", "Dermatology", "Psychiatry", "Emergency Medicine",
}

// WeekDays lists the selectable working days.
var WeekDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func normalize(d Doctor) Doctor {
	if d.Schedule.Morning == (Window{}) {
		d.Schedule.Morning = DefaultMorning
	}
	if d.Schedule.Evening == (Window{}) {
		d.Schedule.Evening = DefaultEvening
	}
	if d.Schedule.WorkingDays == nil {
		d.Schedule.WorkingDays = []string{}
	}
	return d
}
