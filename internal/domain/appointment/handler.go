package appointment

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/httperr"
	"github.com/hms/hms/pkg/pagination"
)

type Handler struct {
	svc *Service
	now func() time.Time
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/appointments", h.ListAppointments)
	api.GET("/appointments/week", h.GetWeek)
	api.GET("/appointments/slots", h.ListTimeSlots)
	api.GET("/appointments/:id", h.GetAppointment)
	api.POST("/appointments", h.CreateAppointment)
	api.PUT("/appointments/:id", h.UpdateAppointment)
	api.DELETE("/appointments/:id", h.DeleteAppointment)
}

// ListAppointments supports exact filters on status, date, patientId and
// doctorId, and a case-insensitive q over the reason. Name search lives on
// the resolved listing.
func (h *Handler) ListAppointments(c echo.Context) error {
	all, err := h.svc.List(c.Request().Context())
	if err != nil {
		return httperr.From(err, http.StatusInternalServerError)
	}

	status := c.QueryParam("status")
	date := c.QueryParam("date")
	patientID, _ := strconv.Atoi(c.QueryParam("patientId"))
	doctorID, _ := strconv.Atoi(c.QueryParam("doctorId"))
	q := strings.ToLower(c.QueryParam("q"))

	items := make([]Appointment, 0, len(all))
	for _, a := range all {
		if status != "" && a.Status != status {
			continue
		}
		if date != "" && a.Date != date {
			continue
		}
		if patientID != 0 && a.PatientID != patientID {
			continue
		}
		if doctorID != 0 && a.DoctorID != doctorID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(a.Reason), q) {
			continue
		}
		items = append(items, a)
	}

	pg := pagination.FromContext(c)
	return c.JSON(http.StatusOK, pagination.NewResponse(pagination.Slice(items, pg), len(items), pg.Limit, pg.Offset))
}

func (h *Handler) GetWeek(c echo.Context) error {
	t := h.now()
	if raw := c.QueryParam("date"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		t = parsed
	}
	week, err := h.svc.Week(c.Request().Context(), t)
	if err != nil {
		return httperr.From(err, http.StatusInternalServerError)
	}
	return c.JSON(http.StatusOK, week)
}

func (h *Handler) ListTimeSlots(c echo.Context) error {
	return c.JSON(http.StatusOK, TimeSlots)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := httperr.ID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httperr.From(err, http.StatusInternalServerError)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.svc.Create(c.Request().Context(), a)
	if err != nil {
		return httperr.From(err, http.StatusBadRequest)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	id, err := httperr.ID(c)
	if err != nil {
		return err
	}
	patch, err := httperr.Patch(c)
	if err != nil {
		return err
	}
	updated, err := h.svc.Update(c.Request().Context(), id, patch)
	if err != nil {
		return httperr.From(err, http.StatusBadRequest)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	id, err := httperr.ID(c)
	if err != nil {
		return err
	}
	removed, err := h.svc.Delete(c.Request().Context(), id)
	if err != nil {
		return httperr.From(err, http.StatusInternalServerError)
	}
	return c.JSON(http.StatusOK, removed)
}
