package inventory

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestHandler_ListMedicines_StatusFilter(t *testing.T) {
	svc := newTestService(t, []Medicine{
		{ID: 1, Name: "Insulin", Category: "Injections", Quantity: 3, MinStock: 10},
		{ID: 2, Name: "Amoxicillin", Category: "Capsules", Quantity: 200, MinStock: 50},
	})
	h, e := NewHandler(svc), echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?status=low-stock", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListMedicines(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"total":1`) || !strings.Contains(body, `"stockStatus":"low-stock"`) {
		t.Errorf("unexpected body %s", body)
	}
}

func TestHandler_CreateMedicine(t *testing.T) {
	h, e := NewHandler(newTestService(t, nil)), echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Aspirin","category":"Tablets","quantity":10}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateMedicine(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"Id":1`) {
		t.Errorf("expected Id 1, got %s", rec.Body.String())
	}
}

func TestHandler_GetSummary(t *testing.T) {
	svc := newTestService(t, []Medicine{
		{ID: 1, Name: "Insulin", Category: "Injections", Quantity: 3, MinStock: 10},
		{ID: 2, Name: "Salbutamol", Category: "Inhalers", Quantity: 0, MinStock: 5},
		{ID: 3, Name: "Amoxicillin", Category: "Capsules", Quantity: 200, MinStock: 50},
	})
	h, e := NewHandler(svc), echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	if err := h.GetSummary(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := rec.Body.String()
	for _, want := range []string{`"total":3`, `"inStock":1`, `"lowStock":1`, `"outOfStock":1`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %s in %s", want, body)
		}
	}
}
