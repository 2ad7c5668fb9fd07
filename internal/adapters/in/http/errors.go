package http

import (
	"errors"
	"log/slog"
	"net/http"

	"parcellocker/internal/core/domain/model/credential"
	"parcellocker/internal/core/domain/model/locker"
	"parcellocker/internal/core/domain/model/parcel"
	"parcellocker/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// statusFor maps an application error to its HTTP status and public message.
// Unknown errors are 500s whose details stay in the log.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, credential.ErrCredentialInvalid):
		return http.StatusForbidden, "credential is invalid"
	case errors.Is(err, credential.ErrRateLimited):
		return http.StatusTooManyRequests, err.Error()
	case errors.Is(err, locker.ErrNotAvailable),
		errors.Is(err, locker.ErrLockerInUse),
		errors.Is(err, parcel.ErrInvalidTransition),
		errors.Is(err, credential.ErrCredentialClosed):
		return http.StatusConflict, err.Error()
	case errors.Is(err, locker.ErrStatusNotAllowed),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func (s *Server) fail(c echo.Context, err error) error {
	code, message := statusFor(err)
	if code == http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request().Context(), "request failed",
			slog.String("method", c.Request().Method),
			slog.String("path", c.Path()),
			slog.Any("error", err),
		)
	}
	return c.JSON(code, Error{Code: code, Message: message})
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: message})
}

func errNotFound(raw string) error {
	return errs.NewObjectNotFoundError("parcel", raw)
}
