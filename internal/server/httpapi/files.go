package httpapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/filehaven/filehaven/internal/common"
	"github.com/filehaven/filehaven/internal/ident"
	"github.com/filehaven/filehaven/internal/server/models"
)

type createFileRequest struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

type fileResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"contentType"`
	Uploaded    bool      `json:"uploaded"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toFileResponse(f *models.File) fileResponse {
	return fileResponse{
		ID:          f.ID.String(),
		Name:        f.Name,
		Size:        f.Size,
		ContentType: f.ContentType,
		Uploaded:    f.Uploaded,
		CreatedAt:   f.CreatedAt,
	}
}

// maxFileSize caps a single upload at 1 GiB.
const maxFileSize = 1 << 30

func (s *Server) createFile(c echo.Context) error {
	user := currentUserFrom(c)
	if user == nil {
		return common.ErrorUnauthorized
	}

	var req createFileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if req.Size <= 0 || req.Size > maxFileSize {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid file size")
	}

	file, uploadURL, err := s.files.Create(c.Request().Context(), user.ID, req.Name, req.Size, req.ContentType)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"file":      toFileResponse(file),
		"uploadUrl": uploadURL,
	})
}

func (s *Server) listFiles(c echo.Context) error {
	user := currentUserFrom(c)
	if user == nil {
		return common.ErrorUnauthorized
	}

	list, err := s.files.List(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	out := make([]fileResponse, 0, len(list))
	for _, f := range list {
		out = append(out, toFileResponse(f))
	}
	return c.JSON(http.StatusOK, echo.Map{"files": out})
}

func (s *Server) downloadFile(c echo.Context) error {
	user, id, err := s.fileRequest(c)
	if err != nil {
		return err
	}

	file, url, err := s.files.Download(c.Request().Context(), user.ID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"file":        toFileResponse(file),
		"downloadUrl": url,
	})
}

func (s *Server) markFileUploaded(c echo.Context) error {
	user, id, err := s.fileRequest(c)
	if err != nil {
		return err
	}
	if err := s.files.MarkUploaded(c.Request().Context(), user.ID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) deleteFile(c echo.Context) error {
	user, id, err := s.fileRequest(c)
	if err != nil {
		return err
	}
	if err := s.files.Delete(c.Request().Context(), user.ID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// fileRequest pulls the authenticated user and the :id path parameter.
func (s *Server) fileRequest(c echo.Context) (*models.User, ident.ID, error) {
	user := currentUserFrom(c)
	if user == nil {
		return nil, nil, common.ErrorUnauthorized
	}
	id, err := ident.Parse(c.Param("id"), ident.UserIDLength)
	if err != nil {
		return nil, nil, common.ErrorNotFound
	}
	return user, id, nil
}
