package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/filehaven/filehaven/internal/common"
)

type createUserRequest struct {
	Token    string `json:"token"`
	Email    string `json:"email"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// createUser registers an account. The request must prove control of the
// email: either a verification token, or the email plus its short code.
func (s *Server) createUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name and password are required")
	}

	ctx := c.Request().Context()

	var email string
	switch {
	case req.Token != "":
		verified, err := s.verifications.CheckToken(ctx, req.Token)
		if err != nil {
			return err
		}
		email = verified
	case req.Email != "" && req.Code != "":
		if err := s.verifications.CheckCode(ctx, req.Email, req.Code); err != nil {
			return err
		}
		email = req.Email
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "email verification proof is required")
	}

	user, err := s.users.Register(ctx, email, req.Name, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, userResponse{
		ID:    user.ID.String(),
		Email: user.Email,
		Name:  user.Name,
	})
}

func (s *Server) currentUser(c echo.Context) error {
	user := currentUserFrom(c)
	if user == nil {
		return common.ErrorUnauthorized
	}
	return c.JSON(http.StatusOK, userResponse{
		ID:    user.ID.String(),
		Email: user.Email,
		Name:  user.Name,
	})
}
