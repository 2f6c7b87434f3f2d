package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/careerlens/careerlens-api/internal/advisor"
	"github.com/careerlens/careerlens-api/internal/assessment"
	"github.com/careerlens/careerlens-api/internal/catalog"
	"github.com/careerlens/careerlens-api/internal/storage"
)

// Response helpers

type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, resp apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

// respondWithMessage answers success with data and an informational message
func respondWithMessage(w http.ResponseWriter, data any, message string) {
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: data, Message: message})
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiResponse{Success: false, Message: message})
}

// respondServiceError maps a service error onto the HTTP taxonomy.
// fallback is the message for unexpected failures.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var (
		notFound   *catalog.NotFoundError
		invalid    *assessment.ValidationError
		providerEr *advisor.ProviderError
	)

	switch {
	case errors.As(err, &notFound):
		respondError(w, http.StatusNotFound, notFound.Error())
	case errors.Is(err, assessment.ErrNotFound):
		respondError(w, http.StatusNotFound, assessment.ErrNotFound.Error())
	case errors.As(err, &invalid):
		respondError(w, http.StatusBadRequest, invalid.Message)
	case errors.Is(err, storage.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, dbUnavailableMessage)
	case errors.As(err, &providerEr):
		slog.Error("advisor call failed", "op", providerEr.Op, "error", err, "request_id", requestID(r))
		respondError(w, http.StatusInternalServerError, providerEr.Message)
	default:
		slog.Error(fallback, "error", err, "path", r.URL.Path, "request_id", requestID(r))
		respondError(w, http.StatusInternalServerError, fallback)
	}
}

// decodeJSON reads the body into dst. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// bind decodes and validates a request body. Malformed JSON answers 400
// "Invalid JSON body"; a field of the wrong type or a failed validation
// answers 400 with message. Returns false after answering.
func (s *Server) bind(w http.ResponseWriter, r *http.Request, dst any, message string) bool {
	if err := decodeJSON(r, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			slog.Debug("request field has wrong type", "path", r.URL.Path, "field", typeErr.Field, "error", err)
			respondError(w, http.StatusBadRequest, message)
			return false
		}
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		slog.Debug("request validation failed", "path", r.URL.Path, "error", err)
		respondError(w, http.StatusBadRequest, message)
		return false
	}
	return true
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	database := "disconnected"
	if s.monitor != nil && s.monitor.Connected() {
		database = "connected"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"database":  database,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	statuses, ready := s.services.Report(r.Context())

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, apiResponse{
		Success: ready,
		Data: map[string]any{
			"ready":    ready,
			"services": statuses,
		},
	})
}
