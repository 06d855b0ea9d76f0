// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

package session

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the authenticated caller identity: the bearer token for the
// remote store plus the stable user identifier all local keys are
// namespaced by.
type Session struct {
	Token  string
	UserID string
}

// Accessor supplies the current session. Either field may be empty to
// signal "not authenticated"; callers must treat that as a hard stop,
// never as something to retry blindly.
type Accessor interface {
	Current(ctx context.Context) (*Session, error)
}

// ErrNotAuthenticated is returned when no session can be resolved.
var ErrNotAuthenticated = errors.New("session: not authenticated")

type tokenKeyType struct{}

var tokenKey tokenKeyType

// ContextWithToken attaches a request's bearer token to the context.
// The API layer calls this for every inbound request.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFromContext extracts the bearer token, if any.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}

// BearerAccessor resolves the session from the request-scoped bearer
// token. The identity provider already verified the token at the API
// gateway; here only the subject claim is extracted, unverified, to
// obtain the stable user identifier.
type BearerAccessor struct {
	parser *jwt.Parser
}

// NewBearerAccessor creates a bearer-token session accessor.
func NewBearerAccessor() *BearerAccessor {
	return &BearerAccessor{parser: jwt.NewParser()}
}

// Current resolves the session from the context's bearer token.
func (a *BearerAccessor) Current(ctx context.Context) (*Session, error) {
	token := TokenFromContext(ctx)
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := a.parser.ParseUnverified(token, &claims); err != nil {
		return nil, errors.Join(ErrNotAuthenticated, err)
	}
	if claims.Subject == "" {
		return &Session{Token: token}, nil
	}
	return &Session{Token: token, UserID: claims.Subject}, nil
}

// StaticAccessor returns a fixed session. Used by tests and single-user
// deployments configured with a long-lived token.
type StaticAccessor struct {
	session Session
}

// NewStaticAccessor creates an accessor always returning the given session.
func NewStaticAccessor(token, userID string) *StaticAccessor {
	return &StaticAccessor{session: Session{Token: token, UserID: userID}}
}

// Current returns the fixed session.
func (a *StaticAccessor) Current(ctx context.Context) (*Session, error) {
	if a.session.Token == "" && a.session.UserID == "" {
		return nil, ErrNotAuthenticated
	}
	s := a.session
	return &s, nil
}
