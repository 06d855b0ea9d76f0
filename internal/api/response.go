// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/movierec/internal/logging"
	"github.com/tomtom215/movierec/internal/models"
)

// Results from the preference service are returned to the UI verbatim:
// the Result shape (success, data, code, source, message, warning) is
// the API contract. Only the HTTP status is derived here.

// statusForCode maps a service error code to an HTTP status.
func statusForCode(code models.ErrorCode) int {
	switch code {
	case models.CodeAuthError, models.CodeNoUserID:
		return http.StatusUnauthorized
	case models.CodeValidationError:
		return http.StatusBadRequest
	case models.CodeNoDataFound:
		return http.StatusNotFound
	case models.CodeTimeoutError:
		return http.StatusGatewayTimeout
	case models.CodeNetworkError, models.CodeCloudSaveError, models.CodeCloudFetchError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteResult serializes a service result with the matching HTTP status.
func WriteResult(w http.ResponseWriter, result models.Result) {
	status := http.StatusOK
	if !result.Success {
		status = statusForCode(result.Code)
	}
	writeJSON(w, status, result)
}

// WriteError writes a failure result built from a code and message.
func WriteError(w http.ResponseWriter, code models.ErrorCode, message string) {
	WriteResult(w, models.Failure(code, message))
}

// writeJSON writes a JSON body with proper headers.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
