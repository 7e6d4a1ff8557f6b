package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/cadence/internal/service"
)

const maxBodyBytes = 1 << 20

type extractRequest struct {
	Transcript string `json:"transcript" validate:"required"`
}

type addExpertiseRequest struct {
	Items []string `json:"items" validate:"required,min=1,max=50,dive,max=2000"`
}

type contentResponse struct {
	Content string `json:"content"`
}

type previewResponse struct {
	Prompt string `json:"prompt"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// submitFeedback handles POST /api/v1/feedback.
func (s *Server) submitFeedback(w http.ResponseWriter, r *http.Request) {
	var req service.FeedbackRequest
	userID, ok := s.decode(w, r, &req)
	if !ok {
		return
	}

	res, err := s.svc.SubmitFeedback(r.Context(), userID, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// createContent handles POST /api/v1/content.
func (s *Server) createContent(w http.ResponseWriter, r *http.Request) {
	var req service.ContentRequest
	userID, ok := s.decode(w, r, &req)
	if !ok {
		return
	}

	text, err := s.svc.CreateContent(r.Context(), userID, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contentResponse{Content: text})
}

// previewPrompt handles POST /api/v1/prompt/preview.
func (s *Server) previewPrompt(w http.ResponseWriter, r *http.Request) {
	var req service.ContentRequest
	userID, ok := s.decode(w, r, &req)
	if !ok {
		return
	}

	system, err := s.svc.PreviewPrompt(r.Context(), userID, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, previewResponse{Prompt: system})
}

// extractExpertise handles POST /api/v1/expertise/extract.
func (s *Server) extractExpertise(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if _, ok := s.decode(w, r, &req); !ok {
		return
	}

	res, err := s.svc.ExtractExpertise(r.Context(), req.Transcript)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// addExpertise handles POST /api/v1/expertise.
func (s *Server) addExpertise(w http.ResponseWriter, r *http.Request) {
	var req addExpertiseRequest
	userID, ok := s.decode(w, r, &req)
	if !ok {
		return
	}

	res, err := s.svc.AddExpertise(r.Context(), userID, req.Items)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// decode reads and validates the JSON body into dst and returns the caller's
// user ID. On failure the response has already been written.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) (uuid.UUID, bool) {
	id, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return id, false
	}

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return id, false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return id, false
	}
	return id, true
}

// fail maps a service error onto a status code.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, service.ErrProvider):
		s.logger.Error("provider failure", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, service.ErrNotConfigured):
		s.logger.Error("service not configured", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "Service is not configured")
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
	}
}

func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return fmt.Sprintf("invalid request: %s failed %s", ve[0].Field(), ve[0].Tag())
	}
	return "invalid request"
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
