package http

import (
	"errors"
	"net/http"

	"credapp/internal/adapter/middleware"
	"credapp/internal/adapter/opener"
	"credapp/internal/domain/client"
	"credapp/internal/domain/credit"
	"credapp/internal/domain/creditrequest"
	"credapp/internal/domain/history"
	"credapp/internal/usecase/dataset"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

var badRequest = []error{
	client.ErrInvalidQuery,
	history.ErrInvalidSession,
	credit.ErrUnknownPolicy,
	dataset.ErrUnknownFormat,
	dataset.ErrMissingColumn,
	opener.ErrOutsideRoot,
	opener.ErrUnreadable,
	opener.ErrSourceDisabled,
}

// Map domain errors → HTTP codes
func respondError(c echo.Context, err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	if errors.Is(err, client.ErrNotFound) || errors.Is(err, creditrequest.ErrNotFound) {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	}
	var rowErr *dataset.RowError
	if errors.As(err, &rowErr) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		}
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func invalidBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
}

type sessionHeader struct {
	ID string `header:"Cr-Session-Id" validate:"required,session"`
}

// requireSession reads the Cr-Session-Id header, which history endpoints
// cannot do without.
func requireSession(c echo.Context) (string, error) {
	var h sessionHeader
	if err := (&echo.DefaultBinder{}).BindHeaders(c, &h); err != nil {
		return "", history.ErrInvalidSession
	}
	if err := c.Validate(&h); err != nil {
		return "", history.ErrInvalidSession
	}
	return h.ID, nil
}

// optionalSession returns the session header as sent; an empty value means
// the caller has no session.
func optionalSession(c echo.Context) string {
	return c.Request().Header.Get(middleware.HeaderSession)
}
