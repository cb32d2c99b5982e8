package console

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/httperr"
	"github.com/hms/hms/internal/platform/middleware"
)

// Handler serves the shell state and text renderings of the pages. Each
// request gets its own Shell so page state is never shared between callers.
type Handler struct {
	svc Services
}

func NewHandler(svc Services) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/shell", h.GetShell)
	api.GET("/console/:page", h.RenderPage)
}

type shellResponse struct {
	Navigation []NavItem `json:"navigation"`
	Header     Header    `json:"header"`
}

func (h *Handler) GetShell(c echo.Context) error {
	shell := NewShell(h.svc)
	shell.SetSearch(middleware.SanitizeString(c.QueryParam("q")))
	header, err := shell.Header(c.Request().Context())
	if err != nil {
		return httperr.From(err, http.StatusInternalServerError)
	}
	return c.JSON(http.StatusOK, shellResponse{Navigation: shell.Navigation(), Header: header})
}

// RenderPage loads a page and returns it as a plain-text table. A page that
// fails to load still renders its error message.
func (h *Handler) RenderPage(c echo.Context) error {
	shell := NewShell(h.svc)
	if _, err := shell.Page(c.Param("page")); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	shell.SetSearch(middleware.SanitizeString(c.QueryParam("q")))

	page, loadErr := shell.Open(c.Request().Context(), c.Param("page"))
	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return httperr.From(err, http.StatusInternalServerError)
	}
	status := http.StatusOK
	if loadErr != nil {
		status = httperr.From(loadErr, http.StatusInternalServerError).Code
	}
	return c.Blob(status, echo.MIMETextPlainCharsetUTF8, buf.Bytes())
}
