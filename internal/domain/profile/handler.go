package profile

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/httperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/profile", h.GetProfile)
	api.PUT("/profile", h.UpdateProfile)
	api.PUT("/profile/:id", h.UpdateProfile)
	api.POST("/profile/password", h.ChangePassword)
}

func (h *Handler) GetProfile(c echo.Context) error {
	u, err := h.svc.GetProfile(c.Request().Context())
	if err != nil {
		return httperr.From(err, http.StatusInternalServerError)
	}
	return c.JSON(http.StatusOK, u)
}

// UpdateProfile targets the id in the path, or the current profile when the
// path has none.
func (h *Handler) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	var id int
	if c.Param("id") != "" {
		parsed, err := httperr.ID(c)
		if err != nil {
			return err
		}
		id = parsed
	} else {
		u, err := h.svc.GetProfile(ctx)
		if err != nil {
			return httperr.From(err, http.StatusInternalServerError)
		}
		id = u.ID
	}

	patch, err := httperr.Patch(c)
	if err != nil {
		return err
	}
	u, err := h.svc.UpdateProfile(ctx, id, patch)
	if err != nil {
		return httperr.From(err, http.StatusBadRequest)
	}
	return c.JSON(http.StatusOK, u)
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *Handler) ChangePassword(c echo.Context) error {
	var req passwordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	err := h.svc.ChangePassword(c.Request().Context(), req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, ErrIncorrectPassword):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case err != nil:
		return httperr.From(err, http.StatusBadRequest)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
