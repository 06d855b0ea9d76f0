// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

package preferences

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/movierec/internal/models"
)

func testClient(srv *httptest.Server) *HTTPCloudClient {
	return NewHTTPCloudClient(ClientConfig{BaseURL: srv.URL, Timeout: 2 * time.Second})
}

func TestFetchTopLevelShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		json.NewEncoder(w).Encode(models.PreferenceRecord{
			UserID:                 "user-1",
			GenreRatings:           map[string]int{"28": 5},
			QuestionnaireCompleted: true,
		})
	}))
	defer srv.Close()

	record, err := testClient(srv).Fetch(context.Background(), "tok")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if record.UserID != "user-1" || record.GenreRatings["28"] != 5 {
		t.Errorf("Unexpected record %+v", record)
	}
}

func TestFetchWrappedShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"preferences": models.PreferenceRecord{
				UserID:       "user-2",
				GenreRatings: map[string]int{"35": 4},
			},
		})
	}))
	defer srv.Close()

	record, err := testClient(srv).Fetch(context.Background(), "tok")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if record.UserID != "user-2" || record.GenreRatings["35"] != 4 {
		t.Errorf("Expected wrapped record to be unwrapped, got %+v", record)
	}
}

func TestFetchNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient(srv).Fetch(context.Background(), "tok")
	if !errors.Is(err, ErrNoRecord) {
		t.Errorf("Expected ErrNoRecord for 404, got %v", err)
	}
}

func TestFetchAuthRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := testClient(srv).Fetch(context.Background(), "expired")
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("Expected HTTPError, got %v", err)
	}
	if !httpErr.Auth() {
		t.Errorf("Expected Auth() for 401, got %+v", httpErr)
	}
}

func TestSaveSendsIdempotencyKey(t *testing.T) {
	var gotKey, gotAuth string
	var gotBody struct {
		Preferences models.PreferenceRecord `json:"preferences"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Idempotency-Key")
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	record := &models.PreferenceRecord{UserID: "user-1", GenreRatings: map[string]int{"18": 3}}
	if err := testClient(srv).Save(context.Background(), "tok", record, "key-123"); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if gotKey != "key-123" {
		t.Errorf("Idempotency-Key = %q, want key-123", gotKey)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBody.Preferences.GenreRatings["18"] != 3 {
		t.Errorf("Server saw body %+v", gotBody)
	}
}

func TestSaveServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := testClient(srv).Save(context.Background(), "tok", &models.PreferenceRecord{}, "")
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected HTTP 500 error, got %v", err)
	}
}

func TestBreakerOpensOnSustainedFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := testClient(srv)
	for i := 0; i < 10; i++ {
		client.Save(context.Background(), "tok", &models.PreferenceRecord{}, "")
	}

	// With every request failing, the breaker must eventually reject
	// without touching the server.
	err := client.Save(context.Background(), "tok", &models.PreferenceRecord{}, "")
	if err == nil {
		t.Fatal("Expected error from open breaker")
	}
}
