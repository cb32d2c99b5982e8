package fixtures

import (
	"fmt"
)

// Problem is one integrity issue found in a dataset.
type Problem struct {
	Collection string `json:"collection"`
	ID         int    `json:"id"`
	Message    string `json:"message"`
	// Fatal problems prevent the stores from being seeded. The rest are
	// dangling references, which the console tolerates.
	Fatal bool `json:"fatal"`
}

func (p Problem) String() string {
	level := "warn"
	if p.Fatal {
		level = "error"
	}
	return fmt.Sprintf("%s: %s %d: %s", level, p.Collection, p.ID, p.Message)
}

// Check reports duplicate or non-positive identifiers and references to
// records that do not exist.
func (ds *Dataset) Check() []Problem {
	var problems []Problem
	add := func(collection string, id int, fatal bool, format string, args ...any) {
		problems = append(problems, Problem{Collection: collection, ID: id, Fatal: fatal, Message: fmt.Sprintf(format, args...)})
	}

	ids := func(collection string, list []int) map[int]bool {
		seen := make(map[int]bool, len(list))
		for _, id := range list {
			if id <= 0 {
				add(collection, id, true, "identifier must be positive")
			}
			if seen[id] {
				add(collection, id, true, "duplicate identifier")
			}
			seen[id] = true
		}
		return seen
	}

	patients := ids("patient", recordIDs(ds.Patients))
	doctors := ids("doctor", recordIDs(ds.Doctors))
	appts := ids("appointment", recordIDs(ds.Appointments))
	ids("bill", recordIDs(ds.Bills))
	ids("medicine", recordIDs(ds.Medicines))
	ids("notification", recordIDs(ds.Notifications))
	if ds.User.ID <= 0 {
		add("user", ds.User.ID, true, "identifier must be positive")
	}

	for _, a := range ds.Appointments {
		if !patients[a.PatientID] {
			add("appointment", a.ID, false, "references missing patient %d", a.PatientID)
		}
		if !doctors[a.DoctorID] {
			add("appointment", a.ID, false, "references missing doctor %d", a.DoctorID)
		}
	}
	for _, b := range ds.Bills {
		if !patients[b.PatientID] {
			add("bill", b.ID, false, "references missing patient %d", b.PatientID)
		}
		if b.AppointmentID != nil && !appts[*b.AppointmentID] {
			add("bill", b.ID, false, "references missing appointment %d", *b.AppointmentID)
		}
	}
	return problems
}

// HasFatal reports whether any problem prevents seeding.
func HasFatal(problems []Problem) bool {
	for _, p := range problems {
		if p.Fatal {
			return true
		}
	}
	return false
}

func recordIDs[T interface{ RecordID() int }](items []T) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.RecordID()
	}
	return out
}
