package notification

import (
	"fmt"
	"strings"
	"time"
)

const (
	TypeAppointment = "appointment"
	TypePatient     = "patient"
	TypeSystem      = "system"
	TypeAlert       = "alert"
)

var validNotificationTypes = map[string]bool{
	TypeAppointment: true,
	TypePatient:     true,
	TypeSystem:      true,
	TypeAlert:       true,
}

// Notification is an in-app message shown in the header panel and on the
// notifications page.
type Notification struct {
	ID        int       `json:"Id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

func (n Notification) RecordID() int { return n.ID }

func (n Notification) WithID(id int) Notification {
	n.ID = id
	return n
}

func (n Notification) Clone() Notification { return n }

func (n Notification) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if !validNotificationTypes[n.Type] {
		return fmt.Errorf("invalid notification type: %s", n.Type)
	}
	return nil
}

// Matches reports whether term occurs in the title or message, ignoring case.
func (n Notification) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(n.Title), term) ||
		strings.Contains(strings.ToLower(n.Message), term)
}

// ReadFilter selects notifications by read state.
type ReadFilter string

const (
	ReadAny    ReadFilter = "all"
	ReadOnly   ReadFilter = "read"
	UnreadOnly ReadFilter = "unread"
)

// Filter narrows a notification list by search term, type and read state.
// An empty or "all" Type matches every type.
type Filter struct {
	Term   string
	Type   string
	Status ReadFilter
}

func (f Filter) Match(n Notification) bool {
	if !n.Matches(f.Term) {
		return false
	}
	if f.Type != "" && f.Type != "all" && n.Type != f.Type {
		return false
	}
	switch f.Status {
	case ReadOnly:
		return n.Read
	case UnreadOnly:
		return !n.Read
	}
	return true
}

func normalize(n Notification) Notification {
	if n.Type == "" {
		n.Type = TypeSystem
	}
	return n
}
