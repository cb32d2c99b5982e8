package inventory

import (
	"fmt"
	"strings"
	"time"
)

// StockStatus classifies a medicine's quantity against its reorder level.
type StockStatus string

const (
	InStock    StockStatus = "in-stock"
	LowStock   StockStatus = "low-stock"
	OutOfStock StockStatus = "out-of-stock"
)

// Label returns the display label for the status.
func (s StockStatus) Label() string {
	switch s {
	case OutOfStock:
		return "Out of Stock"
	case LowStock:
		return "Low Stock"
	default:
		return "In Stock"
	}
}

// Medicine is a stocked pharmacy item. Quantity may go negative; nothing
// prevents it.
type Medicine struct {
	ID         int    `json:"Id"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	Quantity   int    `json:"quantity"`
	Unit       string `json:"unit"`
	MinStock   int    `json:"minStock"`
	ExpiryDate string `json:"expiryDate"`
}

func (m Medicine) RecordID() int { return m.ID }

func (m Medicine) WithID(id int) Medicine {
	m.ID = id
	return m
}

func (m Medicine) Clone() Medicine { return m }

func (m Medicine) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// Status returns out-of-stock at or below zero, low-stock at or below the
// minimum stock level, and in-stock otherwise.
func (m Medicine) Status() StockStatus {
	switch {
	case m.Quantity <= 0:
		return OutOfStock
	case m.Quantity <= m.MinStock:
		return LowStock
	default:
		return InStock
	}
}

// Matches reports whether term occurs in the name or category, ignoring case.
func (m Medicine) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(m.Name), term) ||
		strings.Contains(strings.ToLower(m.Category), term)
}

// Expired reports whether the expiry date is before now's date. Missing or
// malformed dates never expire.
func (m Medicine) Expired(now time.Time) bool {
	exp, err := time.Parse(time.DateOnly, m.ExpiryDate)
	if err != nil {
		return false
	}
	return exp.Before(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC))
}

// Categories lists the medicine categories.
var Categories = []string{
	"Tablets", "Capsules", "Syrups", "Injections", "Ointments", "Drops",
	"Inhalers", "Surgical Supplies", "Other",
}

// Units lists the stock units.
var Units = []string{"pieces", "bottles", "vials", "tubes", "boxes", "kg", "liters"}

// StockSummary counts medicines by stock status.
type StockSummary struct {
	Total      int `json:"total"`
	InStock    int `json:"inStock"`
	LowStock   int `json:"lowStock"`
	OutOfStock int `json:"outOfStock"`
}

func Summarize(meds []Medicine) StockSummary {
	sum := StockSummary{Total: len(meds)}
	for _, m := range meds {
		switch m.Status() {
		case OutOfStock:
			sum.OutOfStock++
		case LowStock:
			sum.LowStock++
		default:
			sum.InStock++
		}
	}
	return sum
}

// NeedsReorder returns the medicines that are low or out of stock, in input
// order.
func NeedsReorder(meds []Medicine) []Medicine {
	var out []Medicine
	for _, m := range meds {
		if m.Status() != InStock {
			out = append(out, m)
		}
	}
	return out
}
