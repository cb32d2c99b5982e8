package patient

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// EmergencyContact is the person to call on the patient's behalf.
type EmergencyContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Patient is a registered patient.
type Patient struct {
	ID               int              `json:"Id"`
	Name             string           `json:"name"`
	DateOfBirth      string           `json:"dateOfBirth"`
	Gender           string           `json:"gender"`
	Phone            string           `json:"phone"`
	Email            string           `json:"email"`
	Address          string           `json:"address"`
	BloodGroup       string           `json:"bloodGroup"`
	EmergencyContact EmergencyContact `json:"emergencyContact"`
	MedicalHistory   []string         `json:"medicalHistory"`
}

func (p Patient) RecordID() int { return p.ID }

func (p Patient) WithID(id int) Patient {
	p.ID = id
	return p
}

func (p Patient) Clone() Patient {
	p.MedicalHistory = slices.Clone(p.MedicalHistory)
	return p
}

// Validate checks the attributes a patient cannot be saved without.
func (p Patient) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// Matches reports whether term occurs in the patient's name, phone or email,
// ignoring case. An empty term matches every patient.
func (p Patient) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(p.Phone, term) ||
		strings.Contains(strings.ToLower(p.Email), term)
}

// Age returns the patient's age in whole years at now. It reports false when
// the date of birth is missing or malformed.
func (p Patient) Age(now time.Time) (int, bool) {
	dob, err := time.Parse(time.DateOnly, p.DateOfBirth)
	if err != nil {
		return 0, false
	}
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age, true
}

// BloodGroups lists the accepted blood group values.
var BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}
