// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

package session

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/goccy/go-json"
)

// unsignedToken builds a structurally valid JWT with the given subject.
// The accessor never verifies signatures, so an empty one suffices.
func unsignedToken(t *testing.T, subject string) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	payload, err := json.Marshal(map[string]string{"sub": subject})
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}
	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + "."
}

func TestBearerAccessorExtractsSubject(t *testing.T) {
	accessor := NewBearerAccessor()
	token := unsignedToken(t, "user-123")
	ctx := ContextWithToken(context.Background(), token)

	sess, err := accessor.Current(ctx)
	if err != nil {
		t.Fatalf("Current() error: %v", err)
	}
	if sess.UserID != "user-123" {
		t.Errorf("UserID = %q, want user-123", sess.UserID)
	}
	if sess.Token != token {
		t.Error("Expected original token to be carried on the session")
	}
}

func TestBearerAccessorNoToken(t *testing.T) {
	accessor := NewBearerAccessor()

	_, err := accessor.Current(context.Background())
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Expected ErrNotAuthenticated, got %v", err)
	}
}

func TestBearerAccessorMalformedToken(t *testing.T) {
	accessor := NewBearerAccessor()
	ctx := ContextWithToken(context.Background(), "not-a-jwt")

	_, err := accessor.Current(ctx)
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Expected ErrNotAuthenticated for malformed token, got %v", err)
	}
}

func TestBearerAccessorMissingSubject(t *testing.T) {
	accessor := NewBearerAccessor()
	ctx := ContextWithToken(context.Background(), unsignedToken(t, ""))

	sess, err := accessor.Current(ctx)
	if err != nil {
		t.Fatalf("Current() error: %v", err)
	}
	// Token without a subject still yields a session; the preference
	// service rejects it with its own no-user-id error.
	if sess.UserID != "" {
		t.Errorf("UserID = %q, want empty", sess.UserID)
	}
}

func TestStaticAccessor(t *testing.T) {
	accessor := NewStaticAccessor("tok", "user-9")

	sess, err := accessor.Current(context.Background())
	if err != nil {
		t.Fatalf("Current() error: %v", err)
	}
	if sess.Token != "tok" || sess.UserID != "user-9" {
		t.Errorf("Unexpected session %+v", sess)
	}

	empty := NewStaticAccessor("", "")
	if _, err := empty.Current(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Expected ErrNotAuthenticated from empty static accessor, got %v", err)
	}
}
