// Package httpapi exposes the public JSON API over echo.
package httpapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/filehaven/filehaven/internal/logging"
	"github.com/filehaven/filehaven/internal/server/config"
	"github.com/filehaven/filehaven/internal/server/services"
)

// Server is the HTTP front of the Filehaven backend.
type Server struct {
	echo   *echo.Echo
	addr   string
	logger logging.Logger

	users          *services.UserService
	sessions       *services.SessionService
	verifications  *services.EmailVerificationService
	passwordResets *services.PasswordResetService
	files          *services.FileService
}

func NewServer(cfg *config.Config, logger logging.Logger,
	users *services.UserService, sessions *services.SessionService,
	verifications *services.EmailVerificationService,
	passwordResets *services.PasswordResetService, files *services.FileService) *Server {

	s := &Server{
		echo:           echo.New(),
		addr:           cfg.EndpointAddrHTTP,
		logger:         logger.With("component", "httpapi"),
		users:          users,
		sessions:       sessions,
		verifications:  verifications,
		passwordResets: passwordResets,
		files:          files,
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.HTTPErrorHandler = s.errorHandler

	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.WebsiteOrigin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))
	s.echo.Use(s.requestLogger)

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	v1 := s.echo.Group("/v1")

	v1.POST("/email-verification", s.requestEmailVerification)
	v1.GET("/email-verification", s.checkEmailVerification)
	v1.POST("/email-verification/code", s.issueVerificationCode)

	v1.POST("/users", s.createUser)
	v1.POST("/sessions", s.signIn)

	v1.POST("/password-reset", s.requestPasswordReset)
	v1.GET("/password-reset", s.checkPasswordReset)
	v1.POST("/password-reset/password", s.completePasswordReset)

	auth := v1.Group("", s.sessionAuth)
	auth.GET("/users/current", s.currentUser)
	auth.DELETE("/sessions/current", s.signOut)
	auth.POST("/files", s.createFile)
	auth.GET("/files", s.listFiles)
	auth.GET("/files/:id/download", s.downloadFile)
	auth.POST("/files/:id/uploaded", s.markFileUploaded)
	auth.DELETE("/files/:id", s.deleteFile)
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		req, res := c.Request(), c.Response()
		s.logger.Info(req.Context(), "request",
			"method", req.Method,
			"path", req.URL.Path,
			"status", res.Status,
			"request_id", res.Header().Get(echo.HeaderXRequestID),
		)
		return err
	}
}

// Run starts the HTTP listener and blocks until it stops.
func (s *Server) Run() error {
	err := s.echo.Start(s.addr)
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
