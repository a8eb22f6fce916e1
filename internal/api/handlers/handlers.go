// Package handlers implements the HTTP API: dataset upload and validation,
// session history, reports, and service health.
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dataprobe/dataprobe/internal/loader"
	"github.com/dataprobe/dataprobe/internal/storage"
	"github.com/dataprobe/dataprobe/pkg/errors"
)

// Handlers bundles the API's dependencies.
type Handlers struct {
	logger    *logrus.Logger
	store     storage.SessionStore
	loader    *loader.Loader
	version   string
	startTime time.Time
}

// NewHandlers creates the handler set.
func NewHandlers(store storage.SessionStore, version string, logger *logrus.Logger) *Handlers {
	if logger == nil {
		logger = logrus.New()
	}

	return &Handlers{
		logger:    logger,
		store:     store,
		loader:    loader.NewLoader(logger),
		version:   version,
		startTime: time.Now(),
	}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.WithError(err).Error("Failed to encode response")
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := errorBody{Code: "INTERNAL_ERROR", Message: "Internal server error"}

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		status = appErr.HTTPStatus
		body = errorBody{Code: appErr.Code, Message: appErr.Message, Details: appErr.Details}
	} else if stderrors.Is(err, errors.ErrSessionNotFound) {
		status = http.StatusNotFound
		body = errorBody{Code: "SESSION_NOT_FOUND", Message: "Session not found"}
	}

	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).Error("Request failed")
	}

	h.writeJSON(w, status, map[string]errorBody{"error": body})
}

// NotFound handles unmatched routes.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusNotFound, map[string]errorBody{"error": {
		Code:    "NOT_FOUND",
		Message: "Route not found: " + r.URL.Path,
	}})
}
