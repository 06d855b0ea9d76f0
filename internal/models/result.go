// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

package models

// ErrorCode classifies operation failures so the UI can distinguish
// "offline, saved locally" from "rejected by server" without parsing
// error strings. Codes, not exception types.
type ErrorCode string

const (
	CodeAuthError       ErrorCode = "AUTH_ERROR"
	CodeNoUserID        ErrorCode = "NO_USER_ID"
	CodeValidationError ErrorCode = "VALIDATION_ERROR"
	CodeNetworkError    ErrorCode = "NETWORK_ERROR"
	CodeTimeoutError    ErrorCode = "TIMEOUT_ERROR"
	CodeCloudSaveError  ErrorCode = "CLOUD_SAVE_ERROR"
	CodeCloudFetchError ErrorCode = "CLOUD_FETCH_ERROR"
	CodeLocalSaveError  ErrorCode = "LOCAL_SAVE_ERROR"
	CodeNoDataFound     ErrorCode = "NO_DATA_FOUND"
	CodeUnexpectedError ErrorCode = "UNEXPECTED_ERROR"
)

// Source identifies which store satisfied an operation.
type Source string

const (
	SourceCache Source = "cache"
	SourceCloud Source = "cloud"
	SourceLocal Source = "local"
)

// Result is the uniform contract returned by every preference operation.
// Message and Warning are presentation-ready strings so the UI can render a
// toast without knowing the underlying code. A save that reached local
// storage but not the cloud is a success with Source=local and a Warning.
type Result struct {
	Success bool              `json:"success"`
	Data    *PreferenceRecord `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Code    ErrorCode         `json:"code,omitempty"`
	Source  Source            `json:"source,omitempty"`
	Message string            `json:"message,omitempty"`
	Warning string            `json:"warning,omitempty"`
}

// Failure builds a failed result with the given code and message.
func Failure(code ErrorCode, msg string) Result {
	return Result{Success: false, Error: msg, Code: code}
}
