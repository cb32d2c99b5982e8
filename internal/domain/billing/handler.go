package billing

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
	api.GET("/bills", h.ListBills)
	api.GET("/bills/summary", h.GetSummary)
	api.GET("/bills/:id", h.GetBill)
	api.POST("/bills", h.CreateBill)
	api.PUT("/bills/:id", h.UpdateBill)
	api.DELETE("/bills/:id", h.DeleteBill)
}

// ListBills filters by exact status and by q against the bill id. Patient
// name search lives on the resolved listing.
func (h *Handler) ListBills(c echo.Context) error {
	all, err := h.svc.List(c.Request().Context())
	if err != nil {
		return httperr.From(err, http.StatusInternalServerError)
	}
	status := c.QueryParam("status")
	q := c.QueryParam("q")

	items := make([]Bill, 0, len(all))
	for _, b := range all {
		if status != "" && b.Status != status {
			continue
		}
		if q != "" && !b.MatchesID(q) {
			continue
		}
		items = append(items, b)
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

func (h *Handler) GetBill(c echo.Context) error {
	id, err := httperr.ID(c)
	if err != nil {
		return err
	}
	b, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httperr.From(err, http.StatusInternalServerError)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) CreateBill(c echo.Context) error {
	var b Bill
	if err := c.Bind(&b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.svc.Create(c.Request().Context(), b)
	if err != nil {
		return httperr.From(err, http.StatusBadRequest)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateBill(c echo.Context) error {
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

func (h *Handler) DeleteBill(c echo.Context) error {
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
