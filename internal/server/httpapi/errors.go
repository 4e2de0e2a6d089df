package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/filehaven/filehaven/internal/common"
	"github.com/filehaven/filehaven/internal/dbx"
)

// errorHandler maps service errors onto JSON responses. Unclassified errors
// are logged with their request ID and returned as an opaque 500.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		_ = c.JSON(he.Code, echo.Map{"error": msg})
		return
	}

	status, msg := classify(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(c.Request().Context(), "request failed",
			"error", err,
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
		)
	}
	_ = c.JSON(status, echo.Map{"error": msg})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, common.ErrorInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, common.ErrorEmailTaken):
		return http.StatusConflict, "email already registered"
	case errors.Is(err, common.ErrorNameTaken):
		return http.StatusConflict, "name already in use"
	case errors.Is(err, common.ErrorCaptchaFailed):
		return http.StatusForbidden, "captcha verification failed"
	case errors.Is(err, dbx.ErrTooManyConflicts):
		return http.StatusServiceUnavailable, "temporarily overloaded, try again"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
