package billing

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

const (
	StatusPending = "pending"
	StatusPaid    = "paid"
	StatusOverdue = "overdue"
)

var validBillStatuses = map[string]bool{
	StatusPending: true,
	StatusPaid:    true,
	StatusOverdue: true,
}

// LineItem is one charge on a bill.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

// Amount returns quantity times unit price.
func (li LineItem) Amount() float64 {
	return li.Quantity * li.UnitPrice
}

// Bill is an invoice issued to a patient, optionally for an appointment.
// TotalAmount is always derived from Items.
type Bill struct {
	ID            int        `json:"Id"`
	PatientID     int        `json:"patientId"`
	AppointmentID *int       `json:"appointmentId,omitempty"`
	Items         []LineItem `json:"items"`
	TotalAmount   float64    `json:"totalAmount"`
	PaidAmount    float64    `json:"paidAmount"`
	Status        string     `json:"status"`
	Date          string     `json:"date"`
}

func (b Bill) RecordID() int { return b.ID }

func (b Bill) WithID(id int) Bill {
	b.ID = id
	return b
}

func (b Bill) Clone() Bill {
	b.Items = slices.Clone(b.Items)
	if b.AppointmentID != nil {
		id := *b.AppointmentID
		b.AppointmentID = &id
	}
	return b
}

func (b Bill) Validate() error {
	if b.PatientID == 0 {
		return fmt.Errorf("patientId is required")
	}
	if len(b.Items) == 0 {
		return fmt.Errorf("at least one item is required")
	}
	if !validBillStatuses[b.Status] {
		return fmt.Errorf("invalid bill status: %s", b.Status)
	}
	return nil
}

// Balance returns the amount still owed.
func (b Bill) Balance() float64 {
	return roundCents(b.TotalAmount - b.PaidAmount)
}

// MatchesID reports whether term occurs in the decimal form of the bill id.
func (b Bill) MatchesID(term string) bool {
	term = strings.TrimSpace(term)
	return term != "" && strings.Contains(strconv.Itoa(b.ID), term)
}

// Total sums quantity times unit price over items, rounded to cents.
func Total(items []LineItem) float64 {
	var sum float64
	for _, li := range items {
		sum += li.Amount()
	}
	return roundCents(sum)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func normalize(b Bill) Bill {
	if b.Items == nil {
		b.Items = []LineItem{}
	}
	b.TotalAmount = Total(b.Items)
	if b.Status == "" {
		b.Status = StatusPending
	}
	return b
}
