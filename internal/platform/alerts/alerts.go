// Package alerts turns committed record changes into in-app notifications.
// Store observers enqueue an Alert; a single worker renders it from a
// template and creates the notification.
package alerts

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/domain/appointment"
	"github.com/hms/hms/internal/domain/billing"
	"github.com/hms/hms/internal/domain/inventory"
	"github.com/hms/hms/internal/domain/notification"
	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/platform/store"
)

// Built-in template identifiers.
const (
	PatientRegistered    = "patient-registered"
	AppointmentBooked    = "appointment-booked"
	AppointmentCancelled = "appointment-cancelled"
	StockLow             = "stock-low"
	StockOut             = "stock-out"
	BillOverdue          = "bill-overdue"
)

// DefaultBuffer is the queue size used when none is given.
const DefaultBuffer = 64

// Template renders one kind of notification. Title and Message may contain
// {{key}} placeholders.
type Template struct {
	ID      string
	Type    string
	Title   string
	Message string
}

// TemplateEngine holds the templates alerts are rendered from.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]Template
}

// NewTemplateEngine creates an engine with the built-in templates registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{templates: make(map[string]Template)}
	for _, t := range []Template{
		{
			ID:      PatientRegistered,
			Type:    notification.TypePatient,
			Title:   "New patient registered",
			Message: "{{name}} has been added to the patient registry.",
		},
		{
			ID:      AppointmentBooked,
			Type:    notification.TypeAppointment,
			Title:   "New appointment",
			Message: "Appointment #{{id}} booked for {{date}} at {{time}}.",
		},
		{
			ID:      AppointmentCancelled,
			Type:    notification.TypeAppointment,
			Title:   "Appointment cancelled",
			Message: "Appointment #{{id}} on {{date}} at {{time}} was cancelled.",
		},
		{
			ID:      StockLow,
			Type:    notification.TypeAlert,
			Title:   "Low stock: {{name}}",
			Message: "{{name}} is down to {{quantity}} {{unit}} (minimum {{minStock}}).",
		},
		{
			ID:      StockOut,
			Type:    notification.TypeAlert,
			Title:   "Out of stock: {{name}}",
			Message: "{{name}} is out of stock.",
		},
		{
			ID:      BillOverdue,
			Type:    notification.TypeAlert,
			Title:   "Bill overdue",
			Message: "Bill #{{id}} has an outstanding balance of {{balance}}.",
		},
	} {
		e.templates[t.ID] = t
	}
	return e
}

// RegisterTemplate adds or replaces a template.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = t
}

// Render builds the notification for templateID. Placeholders without a
// value in data are left as-is.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (notification.Notification, error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return notification.Notification{}, fmt.Errorf("template %q not found", templateID)
	}

	title, msg := t.Title, t.Message
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		title = strings.ReplaceAll(title, placeholder, v)
		msg = strings.ReplaceAll(msg, placeholder, v)
	}
	return notification.Notification{Type: t.Type, Title: title, Message: msg}, nil
}

// Alert is a request to create a notification from a template.
type Alert struct {
	Template string
	Data     map[string]string
}

// Creator persists a rendered notification.
type Creator interface {
	Create(ctx context.Context, n notification.Notification) (notification.Notification, error)
}

// Alerter queues alerts and creates notifications from them on Run's
// goroutine.
type Alerter struct {
	creator   Creator
	templates *TemplateEngine
	queue     chan Alert
	logger    zerolog.Logger
	dropped   atomic.Int64
}

// NewAlerter creates an alerter with a queue of buffer alerts.
func NewAlerter(creator Creator, templates *TemplateEngine, logger zerolog.Logger, buffer int) *Alerter {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if templates == nil {
		templates = NewTemplateEngine()
	}
	return &Alerter{
		creator:   creator,
		templates: templates,
		queue:     make(chan Alert, buffer),
		logger:    logger.With().Str("component", "alerts").Logger(),
	}
}

// Enqueue adds a to the queue without blocking. It reports false when the
// queue is full and the alert was dropped.
func (a *Alerter) Enqueue(alert Alert) bool {
	select {
	case a.queue <- alert:
		return true
	default:
		a.dropped.Add(1)
		a.logger.Warn().Str("template", alert.Template).Msg("alert queue full, alert dropped")
		return false
	}
}

// Dropped returns the number of alerts discarded because the queue was full.
func (a *Alerter) Dropped() int64 { return a.dropped.Load() }

// Run creates notifications for queued alerts until ctx is done.
func (a *Alerter) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case alert := <-a.queue:
			a.deliver(ctx, alert)
		}
	}
}

func (a *Alerter) deliver(ctx context.Context, alert Alert) {
	n, err := a.templates.Render(alert.Template, alert.Data)
	if err != nil {
		a.logger.Error().Err(err).Msg("render alert")
		return
	}
	created, err := a.creator.Create(ctx, n)
	if err != nil {
		a.logger.Error().Err(err).Str("template", alert.Template).Msg("create notification")
		return
	}
	a.logger.Debug().Int("id", created.ID).Str("template", alert.Template).Msg("alert delivered")
}

// Patients alerts when a patient is registered.
func (a *Alerter) Patients() store.Observer[patient.Patient] {
	return func(_ context.Context, ch store.Change[patient.Patient]) {
		if ch.Action != store.ActionCreated {
			return
		}
		a.Enqueue(Alert{Template: PatientRegistered, Data: map[string]string{"name": ch.Record.Name}})
	}
}

// Appointments alerts when an appointment is booked or cancelled.
func (a *Alerter) Appointments() store.Observer[appointment.Appointment] {
	return func(_ context.Context, ch store.Change[appointment.Appointment]) {
		appt := ch.Record
		data := map[string]string{
			"id":   strconv.Itoa(appt.ID),
			"date": appt.Date,
			"time": appt.TimeSlot,
		}
		switch {
		case ch.Action == store.ActionCreated:
			a.Enqueue(Alert{Template: AppointmentBooked, Data: data})
		case ch.Action == store.ActionUpdated && appt.Status == appointment.StatusCancelled &&
			ch.Previous.Status != appointment.StatusCancelled:
			a.Enqueue(Alert{Template: AppointmentCancelled, Data: data})
		}
	}
}

// Medicines alerts when a medicine is created low or out of stock, or an
// update moves it into either status.
func (a *Alerter) Medicines() store.Observer[inventory.Medicine] {
	return func(_ context.Context, ch store.Change[inventory.Medicine]) {
		m := ch.Record
		switch ch.Action {
		case store.ActionDeleted:
			return
		case store.ActionUpdated:
			if ch.Previous.Status() == m.Status() {
				return
			}
		}
		data := map[string]string{
			"name":     m.Name,
			"quantity": strconv.Itoa(m.Quantity),
			"unit":     m.Unit,
			"minStock": strconv.Itoa(m.MinStock),
		}
		switch m.Status() {
		case inventory.OutOfStock:
			a.Enqueue(Alert{Template: StockOut, Data: data})
		case inventory.LowStock:
			a.Enqueue(Alert{Template: StockLow, Data: data})
		}
	}
}

// Bills alerts when an update moves a bill to overdue.
func (a *Alerter) Bills() store.Observer[billing.Bill] {
	return func(_ context.Context, ch store.Change[billing.Bill]) {
		if ch.Action != store.ActionUpdated || ch.Record.Status != billing.StatusOverdue ||
			ch.Previous.Status == billing.StatusOverdue {
			return
		}
		a.Enqueue(Alert{Template: BillOverdue, Data: map[string]string{
			"id":      strconv.Itoa(ch.Record.ID),
			"balance": strconv.FormatFloat(ch.Record.Balance(), 'f', 2, 64),
		}})
	}
}
