package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"DocumentTonality/internal/domain"
)

type fieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type validationResponse struct {
	Detail []fieldError `json:"detail"`
}

// handleAnalyze runs the pipeline for one document and reports whether the
// callback accepted the result.
func (s *Server) handleAnalyze(c echo.Context) error {
	var req domain.WorkRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, validationResponse{
			Detail: []fieldError{{Field: "body", Msg: "invalid JSON: " + err.Error()}},
		})
	}
	req.DocumentKey = strings.TrimSpace(req.DocumentKey)
	req.CallbackURL = strings.TrimSpace(req.CallbackURL)

	if err := s.validate.Struct(req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, validationResponse{Detail: describe(err)})
	}

	if s.processor == nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "pipeline not configured"})
	}

	outcome := s.processor.Process(c.Request().Context(), req)
	if !outcome.Delivered {
		msg := "callback delivery failed"
		if outcome.Err != nil {
			msg = outcome.Err.Error()
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": msg})
	}
	return c.JSON(http.StatusCreated, map[string]string{"status": string(outcome.Status)})
}

func describe(err error) []fieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []fieldError{{Field: "body", Msg: err.Error()}}
	}

	details := make([]fieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, fieldError{Field: fe.Field(), Msg: message(fe)})
	}
	return details
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "http_url":
		return "must be an absolute http or https URL"
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
