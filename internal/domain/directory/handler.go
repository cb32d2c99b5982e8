package directory

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/httperr"
	"github.com/hms/hms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/appointments/resolved", h.ListAppointments)
	api.GET("/bills/resolved", h.ListBills)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	all, err := h.svc.Appointments(c.Request().Context())
	if err != nil {
		return httperr.From(err, http.StatusInternalServerError)
	}
	q := c.QueryParam("q")
	items := make([]Appointment, 0, len(all))
	for _, a := range all {
		if a.Matches(q) {
			items = append(items, a)
		}
	}
	pg := pagination.FromContext(c)
	return c.JSON(http.StatusOK, pagination.NewResponse(pagination.Slice(items, pg), len(items), pg.Limit, pg.Offset))
}

func (h *Handler) ListBills(c echo.Context) error {
	all, err := h.svc.Bills(c.Request().Context())
	if err != nil {
		return httperr.From(err, http.StatusInternalServerError)
	}
	q := c.QueryParam("q")
	items := make([]Bill, 0, len(all))
	for _, b := range all {
		if b.Matches(q) {
			items = append(items, b)
		}
	}
	pg := pagination.FromContext(c)
	return c.JSON(http.StatusOK, pagination.NewResponse(pagination.Slice(items, pg), len(items), pg.Limit, pg.Offset))
}
