package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type passwordResetRequest struct {
	Email        string `json:"email"`
	CaptchaToken string `json:"captchaToken"`
}

// requestPasswordReset starts the reset flow. Like email verification, the
// response never reveals whether the email has an account.
func (s *Server) requestPasswordReset(c echo.Context) error {
	var req passwordResetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email is required")
	}

	if err := s.passwordResets.Request(c.Request().Context(), req.Email, req.CaptchaToken); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "sent"})
}

func (s *Server) checkPasswordReset(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token is required")
	}

	email, err := s.passwordResets.Check(c.Request().Context(), token)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"email": email})
}

type completeResetRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (s *Server) completePasswordReset(c echo.Context) error {
	var req completeResetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Token == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token and password are required")
	}

	if err := s.passwordResets.Complete(c.Request().Context(), req.Token, req.Password); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
