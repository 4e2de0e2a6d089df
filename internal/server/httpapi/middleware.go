package httpapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/filehaven/filehaven/internal/common"
	"github.com/filehaven/filehaven/internal/server/models"
)

const userContextKey = "filehaven.user"

// sessionAuth resolves the bearer token (Authorization header or the
// "token" cookie) to a user and stores it on the request context.
func (s *Server) sessionAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := bearerToken(c)
		if token == "" {
			return common.ErrorUnauthorized
		}

		user, err := s.sessions.Authenticate(c.Request().Context(), token)
		if err != nil {
			return err
		}

		c.Set(userContextKey, user)
		return next(c)
	}
}

func bearerToken(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		if after, found := strings.CutPrefix(h, "Bearer "); found {
			return after
		}
		return ""
	}
	if cookie, err := c.Cookie("token"); err == nil {
		return cookie.Value
	}
	return ""
}

func currentUserFrom(c echo.Context) *models.User {
	user, _ := c.Get(userContextKey).(*models.User)
	return user
}
