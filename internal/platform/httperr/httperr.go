// Package httperr maps store and service errors onto echo HTTP errors and
// decodes the request shapes shared by every entity handler.
package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/store"
)

// From converts err into an HTTP error. Not-found and malformed patches get
// their own status codes; anything else is reported with fallback.
func From(err error, fallback int) *echo.HTTPError {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrInvalidPatch):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "request cancelled")
	default:
		return echo.NewHTTPError(fallback, err.Error())
	}
}

// ID reads the ":id" path parameter. Input that is not an integer cannot name
// a record and is reported as 404.
func ID(c echo.Context) (int, error) {
	id, err := store.ParseID(c.Param("id"))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusNotFound, "record not found")
	}
	return id, nil
}

// Patch decodes the request body as a set of top-level attributes.
func Patch(c echo.Context) (store.Patch, error) {
	var p store.Patch
	if err := json.NewDecoder(c.Request().Body).Decode(&p); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body: "+err.Error())
	}
	return p, nil
}
