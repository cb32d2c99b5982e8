package appointment

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestHandler_ListAppointments_Filters(t *testing.T) {
	h, e := NewHandler(newTestService(t)), echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?status=pending", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListAppointments(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp struct {
		Data  []Appointment `json:"data"`
		Total int           `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 1 || resp.Data[0].ID != 2 {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestHandler_GetWeek(t *testing.T) {
	h, e := NewHandler(newTestService(t)), echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?date=2024-01-17", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.GetWeek(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var week []WeekDay
	if err := json.Unmarshal(rec.Body.Bytes(), &week); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(week) != 7 || len(week[0].Appointments) != 2 {
		t.Errorf("unexpected week %+v", week)
	}
}

func TestHandler_GetWeek_BadDate(t *testing.T) {
	h, e := NewHandler(newTestService(t)), echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?date=17/01/2024", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.GetWeek(c); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestHandler_CreateAppointment_BadRequest(t *testing.T) {
	h, e := NewHandler(newTestService(t)), echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"patientId":1,"date":"2024-01-15"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.CreateAppointment(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_ListTimeSlots(t *testing.T) {
	h, e := NewHandler(newTestService(t)), echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	if err := h.ListTimeSlots(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var slots []string
	if err := json.Unmarshal(rec.Body.Bytes(), &slots); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(slots) != len(TimeSlots) || slots[0] != TimeSlots[0] {
		t.Errorf("unexpected slots %v", slots)
	}
}
