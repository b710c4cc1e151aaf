package http

import (
	"errors"
	"net/http"

	"registrar-workflow/internal/adapter/middleware"
	"registrar-workflow/internal/domain/apperr"

	"github.com/labstack/echo/v4"
)

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindIllegalTransition, apperr.KindConcurrentModification:
		return http.StatusConflict
	case apperr.KindPreconditionFailed:
		return http.StatusUnprocessableEntity
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps workflow errors to HTTP. Anything unclassified is a 500
// and its text stays in the server log.
func writeError(c echo.Context, err error) error {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
	resp := ErrorResponse{Error: ae.Message, Kind: string(ae.Kind)}
	if ae.Field != "" {
		resp.Details = []FieldError{{Field: ae.Field, Message: ae.Message}}
	}
	return c.JSON(statusFor(ae.Kind), resp)
}

// bindAndValidate binds the JSON body into req and runs the echo validator.
// It writes the 400/422 response itself and reports whether the caller may
// continue.
func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}

func missingActor(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing " + middleware.HeaderActorID})
}
