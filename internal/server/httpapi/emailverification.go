package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type verificationRequest struct {
	Email        string `json:"email"`
	CaptchaToken string `json:"captchaToken"`
}

// requestEmailVerification starts verification for an address. The response
// is the same whether or not the email already has an account.
func (s *Server) requestEmailVerification(c echo.Context) error {
	var req verificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email is required")
	}

	if err := s.verifications.Request(c.Request().Context(), req.Email, req.CaptchaToken); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "sent"})
}

// checkEmailVerification validates proof of email: ?token=... for the link
// flow, or ?email=...&code=... for the short-code flow.
func (s *Server) checkEmailVerification(c echo.Context) error {
	ctx := c.Request().Context()

	if token := c.QueryParam("token"); token != "" {
		email, err := s.verifications.CheckToken(ctx, token)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"email": email})
	}

	email, code := c.QueryParam("email"), c.QueryParam("code")
	if email == "" || code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token or email and code are required")
	}
	if err := s.verifications.CheckCode(ctx, email, code); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"email": email})
}

type issueCodeRequest struct {
	Token string `json:"token"`
}

// issueVerificationCode exchanges a verification token for a short code the
// user can type on another device.
func (s *Server) issueVerificationCode(c echo.Context) error {
	var req issueCodeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token is required")
	}

	code, email, err := s.verifications.IssueCode(c.Request().Context(), req.Token)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"code": code, "email": email})
}
