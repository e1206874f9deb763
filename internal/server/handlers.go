package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/danielolaszy/sentry-relay/internal/config"
	"github.com/danielolaszy/sentry-relay/internal/issueid"
	"github.com/danielolaszy/sentry-relay/internal/logging"
	"github.com/danielolaszy/sentry-relay/internal/sentry"
	"github.com/danielolaszy/sentry-relay/pkg/models"
)

// maxRequestBody caps the size of accepted JSON bodies.
const maxRequestBody = 1 << 20

// Client-facing error details.
const (
	detailNotConfigured = "Sentry not configured. Please set configuration first using /config endpoint"
	detailUnauthorized  = "Unauthorized. Please check your Sentry authentication token."
	detailUpstream      = "Error fetching Sentry issue"
)

type handler struct {
	lookup  IssueLookup
	tokens  TokenStore
	version string
	now     func() time.Time
}

func (h *handler) setConfig(w http.ResponseWriter, r *http.Request) {
	var req models.ConfigRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if req.AuthToken == nil || *req.AuthToken == "" {
		writeError(w, http.StatusUnprocessableEntity, "field required: auth_token")
		return
	}

	h.tokens.Set(*req.AuthToken)
	logging.Info("sentry configuration updated", "token", logging.MaskSensitive(*req.AuthToken))

	writeJSON(w, http.StatusOK, map[string]string{"message": "Configuration updated successfully"})
}

func (h *handler) getConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"configured": h.tokens.Configured()})
}

func (h *handler) getIssue(w http.ResponseWriter, r *http.Request) {
	var req models.IssueRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if req.IssueIDOrURL == nil {
		writeError(w, http.StatusUnprocessableEntity, "field required: issue_id_or_url")
		return
	}

	resp, err := h.lookup.LookupIssue(r.Context(), *req.IssueIDOrURL)
	if err != nil {
		status, detail := classify(err)
		if status >= http.StatusInternalServerError {
			logging.Error("issue lookup failed",
				"request_id", GetRequestID(r.Context()),
				"input", *req.IssueIDOrURL,
				"error", err)
		}
		writeError(w, status, detail)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": h.now().UTC(),
		"version":   h.version,
	})
}

// classify maps a lookup error onto an HTTP status and client-facing detail.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, config.ErrNotConfigured):
		return http.StatusBadRequest, detailNotConfigured
	case errors.Is(err, issueid.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, sentry.ErrUnauthorized):
		return http.StatusUnauthorized, detailUnauthorized
	default:
		return http.StatusInternalServerError, fmt.Sprintf("%s: %v", detailUpstream, err)
	}
}

// decodeJSON decodes a single JSON object from the request body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// writeJSON writes a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Error("failed to encode JSON response", "error", err)
	}
}

// writeError writes a {"detail": message} error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"detail": message})
}
