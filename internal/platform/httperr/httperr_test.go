package httperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/store"
)

func TestFrom(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("patient 9: %w", store.ErrNotFound), http.StatusNotFound},
		{"invalid patch", fmt.Errorf("decode: %w", store.ErrInvalidPatch), http.StatusBadRequest},
		{"canceled", context.Canceled, http.StatusServiceUnavailable},
		{"deadline", context.DeadlineExceeded, http.StatusServiceUnavailable},
		{"other", errors.New("name is required"), http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := From(tt.err, http.StatusUnprocessableEntity); got.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got.Code)
			}
		})
	}
}

func TestID(t *testing.T) {
	e := echo.New()
	for raw, want := range map[string]int{"7": 7, " 12 ": 12, "abc": 0, "": 0} {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues(raw)

		id, err := ID(c)
		if want == 0 {
			var he *echo.HTTPError
			if !errors.As(err, &he) || he.Code != http.StatusNotFound {
				t.Errorf("%q: expected 404, got %v", raw, err)
			}
			continue
		}
		if err != nil || id != want {
			t.Errorf("%q: expected %d, got %d (%v)", raw, want, id, err)
		}
	}
}

func TestPatch(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"name":"Jane","quantity":3}`)), httptest.NewRecorder())
	p, err := Patch(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p) != 2 || string(p["quantity"]) != "3" {
		t.Fatalf("unexpected patch %v", p)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`[1,2]`)), httptest.NewRecorder())
	if _, err := Patch(c); err == nil {
		t.Fatal("expected a non-object body to be rejected")
	}
}
