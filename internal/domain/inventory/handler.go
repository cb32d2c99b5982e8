package inventory

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
	api.GET("/medicines", h.ListMedicines)
	api.GET("/medicines/summary", h.GetSummary)
	api.GET("/medicines/:id", h.GetMedicine)
	api.POST("/medicines", h.CreateMedicine)
	api.PUT("/medicines/:id", h.UpdateMedicine)
	api.DELETE("/medicines/:id", h.DeleteMedicine)
}

// MedicineView is a medicine with its derived stock status.
type MedicineView struct {
	Medicine
	StockStatus StockStatus `json:"stockStatus"`
}

// ListMedicines searches by name or category and optionally filters by
// stock status.
func (h *Handler) ListMedicines(c echo.Context) error {
	all, err := h.svc.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return httperr.From(err, http.StatusInternalServerError)
	}
	status := StockStatus(c.QueryParam("status"))

	items := make([]MedicineView, 0, len(all))
	for _, m := range all {
		if status != "" && m.Status() != status {
			continue
		}
		items = append(items, MedicineView{Medicine: m, StockStatus: m.Status()})
	}
	pg := pagination.FromContext(c)
	return c.JSON(http.StatusOK, pagination.NewResponse(pagination.Slice(items, pg), len(items), pg.Limit, pg.Offset))
}

func (h *Handler) GetSummary(c echo.Context) error {
	sum, err := h.svc.Summary(c.Request().Context())
	if err != nil {
		return httperr.From(err, http.StatusInternalServerError)
	}
	return c.JSON(http.StatusOK, sum)
}

func (h *Handler) GetMedicine(c echo.Context) error {
	id, err := httperr.ID(c)
	if err != nil {
		return err
	}
	m, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httperr.From(err, http.StatusInternalServerError)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) CreateMedicine(c echo.Context) error {
	var m Medicine
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.svc.Create(c.Request().Context(), m)
	if err != nil {
		return httperr.From(err, http.StatusBadRequest)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateMedicine(c echo.Context) error {
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

func (h *Handler) DeleteMedicine(c echo.Context) error {
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
