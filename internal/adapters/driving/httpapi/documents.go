package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

type queryRequest struct {
	Question string `json:"question"`
}

type answerResponse struct {
	Answer string `json:"Answer"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type documentsResponse struct {
	Message string `json:"message"`

	// Documents are [filename, uploadDate] pairs.
	Documents [][2]string `json:"documents"`
}

// embed ingests the multipart "files" field.
func (s *Server) embed(c echo.Context) error {
	form, err := c.Request().MultipartReader()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "multipart form with files is required")
	}

	var files []domain.FileUpload
	for {
		part, err := form.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("read upload: %v", err))
		}
		if part.FormName() != "files" || part.FileName() == "" {
			continue
		}
		content, err := io.ReadAll(part)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("read %s: %v", part.FileName(), err))
		}
		files = append(files, domain.FileUpload{Filename: part.FileName(), Content: content})
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no files uploaded", domain.ErrInvalidInput)
	}

	if _, err := s.services.Retrieval.Ingest(c.Request().Context(), files); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "file upload successful"})
}

// query answers a question over the stored documents.
func (s *Server) query(c echo.Context) error {
	var req queryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}

	answer, err := s.services.Retrieval.Answer(c.Request().Context(), req.Question)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, answerResponse{Answer: answer.Text})
}

// queryDummy returns the canned development answer without touching any backend.
func (s *Server) queryDummy(c echo.Context) error {
	var text string
	if s.services.Prompts != nil {
		text, _ = s.services.Prompts.Load(driven.PromptDummyAnswer)
	}
	return c.JSON(http.StatusOK, answerResponse{Answer: text})
}

func (s *Server) listDocuments(c echo.Context) error {
	docs, err := s.services.Retrieval.ListDocuments(c.Request().Context())
	if err != nil {
		return err
	}

	resp := documentsResponse{Message: "success", Documents: make([][2]string, len(docs))}
	for i, d := range docs {
		resp.Documents[i] = [2]string{d.Filename, d.UploadDate}
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) clear(c echo.Context) error {
	if err := s.services.Retrieval.ClearAll(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "success"})
}

func (s *Server) removeDocument(c echo.Context) error {
	filename := c.Param("filename")
	if unescaped, err := url.PathUnescape(filename); err == nil {
		filename = unescaped
	}

	if err := s.services.Retrieval.RemoveDocument(c.Request().Context(), filename); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "success"})
}
