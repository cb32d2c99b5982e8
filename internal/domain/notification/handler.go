package notification

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
	api.GET("/notifications", h.ListNotifications)
	api.GET("/notifications/unread-count", h.UnreadCount)
	api.POST("/notifications/read-all", h.MarkAllRead)
	api.GET("/notifications/:id", h.GetNotification)
	api.POST("/notifications", h.CreateNotification)
	api.PUT("/notifications/:id", h.UpdateNotification)
	api.DELETE("/notifications/:id", h.DeleteNotification)
	api.POST("/notifications/:id/read", h.MarkRead)
	api.POST("/notifications/:id/unread", h.MarkUnread)
}

// ListNotifications accepts q, type and status (all, read, unread).
func (h *Handler) ListNotifications(c echo.Context) error {
	items, err := h.svc.Search(c.Request().Context(), Filter{
		Term:   c.QueryParam("q"),
		Type:   c.QueryParam("type"),
		Status: ReadFilter(c.QueryParam("status")),
	})
	if err != nil {
		return httperr.From(err, http.StatusInternalServerError)
	}
	pg := pagination.FromContext(c)
	return c.JSON(http.StatusOK, pagination.NewResponse(pagination.Slice(items, pg), len(items), pg.Limit, pg.Offset))
}

func (h *Handler) UnreadCount(c echo.Context) error {
	n, err := h.svc.UnreadCount(c.Request().Context())
	if err != nil {
		return httperr.From(err, http.StatusInternalServerError)
	}
	return c.JSON(http.StatusOK, map[string]int{"unread": n})
}

func (h *Handler) MarkAllRead(c echo.Context) error {
	items, err := h.svc.MarkAllRead(c.Request().Context())
	if err != nil {
		return httperr.From(err, http.StatusInternalServerError)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetNotification(c echo.Context) error {
	id, err := httperr.ID(c)
	if err != nil {
		return err
	}
	n, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httperr.From(err, http.StatusInternalServerError)
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) CreateNotification(c echo.Context) error {
	var n Notification
	if err := c.Bind(&n); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.svc.Create(c.Request().Context(), n)
	if err != nil {
		return httperr.From(err, http.StatusBadRequest)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateNotification(c echo.Context) error {
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

func (h *Handler) DeleteNotification(c echo.Context) error {
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

func (h *Handler) MarkRead(c echo.Context) error {
	id, err := httperr.ID(c)
	if err != nil {
		return err
	}
	n, err := h.svc.MarkRead(c.Request().Context(), id)
	if err != nil {
		return httperr.From(err, http.StatusInternalServerError)
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) MarkUnread(c echo.Context) error {
	id, err := httperr.ID(c)
	if err != nil {
		return err
	}
	n, err := h.svc.MarkUnread(c.Request().Context(), id)
	if err != nil {
		return httperr.From(err, http.StatusInternalServerError)
	}
	return c.JSON(http.StatusOK, n)
}
