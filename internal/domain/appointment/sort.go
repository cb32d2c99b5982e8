package appointment

import (
	"cmp"
	"slices"
)

func sortBySlot(appts []Appointment) {
	slices.SortStableFunc(appts, func(a, b Appointment) int {
		return cmp.Compare(a.TimeSlot, b.TimeSlot)
	})
}

// SortRecent orders appts newest first by date and time slot.
func SortRecent(appts []Appointment) {
	slices.SortStableFunc(appts, func(a, b Appointment) int {
		if c := cmp.Compare(b.Date, a.Date); c != 0 {
			return c
		}
		return cmp.Compare(b.TimeSlot, a.TimeSlot)
	})
}
