// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/tomtom215/movierec/internal/connectivity"
	"github.com/tomtom215/movierec/internal/models"
	"github.com/tomtom215/movierec/internal/preferences"
	"github.com/tomtom215/movierec/internal/session"
	"github.com/tomtom215/movierec/internal/syncqueue"
	"github.com/tomtom215/movierec/internal/websocket"
)

// Handler holds the request handlers and their dependencies.
type Handler struct {
	service  *preferences.Service
	monitor  *connectivity.Monitor
	queue    *syncqueue.Queue
	hub      *websocket.Hub
	validate *validator.Validate
}

// NewHandler creates the API handler set.
func NewHandler(service *preferences.Service, monitor *connectivity.Monitor,
	queue *syncqueue.Queue, hub *websocket.Hub) *Handler {
	return &Handler{
		service:  service,
		monitor:  monitor,
		queue:    queue,
		hub:      hub,
		validate: validator.New(),
	}
}

// saveRequest is the body of POST /preferences.
type saveRequest struct {
	Preferences *models.PreferenceRecord `json:"preferences" validate:"required"`
	Partial     bool                     `json:"partial"`
}

// GetPreferences handles GET /api/v1/preferences.
// ?refresh=true bypasses the cache and re-reads the remote store.
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("refresh") == "true"
	WriteResult(w, h.service.LoadPreferences(r.Context(), force))
}

// SavePreferences handles POST /api/v1/preferences.
func (h *Handler) SavePreferences(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, models.CodeValidationError, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, models.CodeValidationError, "Missing preferences payload")
		return
	}
	WriteResult(w, h.service.SavePreferences(r.Context(), req.Preferences, req.Partial))
}

// DeletePreferences handles DELETE /api/v1/preferences.
func (h *Handler) DeletePreferences(w http.ResponseWriter, r *http.Request) {
	WriteResult(w, h.service.ClearPreferences(r.Context()))
}

// PostSync handles POST /api/v1/preferences/sync.
func (h *Handler) PostSync(w http.ResponseWriter, r *http.Request) {
	WriteResult(w, h.service.SyncPreferences(r.Context()))
}

// completedResponse is the body of GET /preferences/completed.
type completedResponse struct {
	Completed bool          `json:"completed"`
	Source    models.Source `json:"source,omitempty"`
}

// GetCompleted handles GET /api/v1/preferences/completed.
func (h *Handler) GetCompleted(w http.ResponseWriter, r *http.Request) {
	completed, source, err := h.service.HasCompletedQuestionnaire(r.Context())
	if err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			WriteError(w, models.CodeAuthError, "Authentication required")
			return
		}
		WriteError(w, models.CodeUnexpectedError, "Could not determine questionnaire state")
		return
	}
	writeJSON(w, http.StatusOK, completedResponse{Completed: completed, Source: source})
}

// syncStatusResponse is the body of GET /sync/status.
type syncStatusResponse struct {
	Status     *models.SyncStatus `json:"status"`
	Pending    int                `json:"pending"`
	Statistics syncqueue.Stats    `json:"statistics"`
}

// GetSyncStatus handles GET /api/v1/sync/status.
func (h *Handler) GetSyncStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.SyncStatus(r.Context())
	if err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			WriteError(w, models.CodeAuthError, "Authentication required")
			return
		}
		WriteError(w, models.CodeUnexpectedError, "Could not read sync status")
		return
	}
	writeJSON(w, http.StatusOK, syncStatusResponse{
		Status:     status,
		Pending:    h.queue.Len(),
		Statistics: h.queue.Stats(),
	})
}

// GetSyncQueue handles GET /api/v1/sync/queue.
func (h *Handler) GetSyncQueue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"operations": h.queue.Pending(),
	})
}

// PostSyncDrain handles POST /api/v1/sync/drain: an explicit "sync now".
func (h *Handler) PostSyncDrain(w http.ResponseWriter, r *http.Request) {
	pending := h.queue.Len()
	h.queue.Drain(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"drained":   pending,
		"remaining": h.queue.Len(),
	})
}

// connectivityResponse is the body of GET /connectivity.
type connectivityResponse struct {
	Online  bool                      `json:"online"`
	History []connectivity.Transition `json:"history"`
}

// GetConnectivity handles GET /api/v1/connectivity.
func (h *Handler) GetConnectivity(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, connectivityResponse{
		Online:  h.monitor.IsOnline(),
		History: h.monitor.History(),
	})
}

// PostConnectivityCheck handles POST /api/v1/connectivity/check: an
// immediate probe round, bypassing the periodic schedule.
func (h *Handler) PostConnectivityCheck(w http.ResponseWriter, r *http.Request) {
	online := h.monitor.PerformConnectivityCheck(r.Context())
	writeJSON(w, http.StatusOK, map[string]bool{"online": online})
}

// connectivitySignal is the body of POST /connectivity/signal.
type connectivitySignal struct {
	Signal string `json:"signal" validate:"required,oneof=online offline visible"`
}

// PostConnectivitySignal handles POST /api/v1/connectivity/signal. The
// UI forwards platform hints (network change, window focus) that the
// engine cannot observe on its own.
func (h *Handler) PostConnectivitySignal(w http.ResponseWriter, r *http.Request) {
	var req connectivitySignal
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, models.CodeValidationError, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, models.CodeValidationError, "Signal must be online, offline or visible")
		return
	}

	switch req.Signal {
	case "online":
		h.monitor.NotifyOnline()
	case "offline":
		h.monitor.NotifyOffline()
	case "visible":
		h.monitor.NotifyVisible()
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"accepted": req.Signal})
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"online":    h.monitor.IsOnline(),
		"pending":   h.queue.Len(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// WebSocket handles GET /api/v1/ws.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWS(h.hub, w, r)
}
