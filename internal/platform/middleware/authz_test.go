// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/accounts/internal/platform/ctxutil"
	"github.com/taibuivan/accounts/internal/platform/middleware"
	"github.com/taibuivan/accounts/internal/platform/sec"
)

type subject struct {
	role sec.UserRole
}

func (s subject) SubjectID() string         { return "user-1" }
func (s subject) SubjectJTI() string        { return "nonce-1" }
func (s subject) SubjectRole() sec.UserRole { return s.role }

func newTokens(t *testing.T) *sec.TokenService {
	t.Helper()
	tokens, err := sec.NewTokenService([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	return tokens
}

func issue(t *testing.T, tokens *sec.TokenService, role sec.UserRole, intent sec.Intent) string {
	t.Helper()
	token, err := tokens.Issue(subject{role: role}, intent)
	require.NoError(t, err)
	return token
}

/*
TestAuthenticate verifies that only access tokens populate the request identity
and that any other header leaves the request anonymous.
*/
func TestAuthenticate(t *testing.T) {
	tokens := newTokens(t)

	var seen *sec.Claims
	handler := middleware.Authenticate(tokens)(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetAuthUser(request.Context())
		writer.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name      string
		header    string
		status    int
		hasClaims bool
	}{
		{"anonymous", "", http.StatusNoContent, false},
		{"access_token", "Bearer " + issue(t, tokens, sec.RoleUser, sec.IntentAccess), http.StatusNoContent, true},
		{"refresh_token", "Bearer " + issue(t, tokens, sec.RoleUser, sec.IntentRefresh), http.StatusNoContent, false},
		{"reset_token", "Bearer " + issue(t, tokens, sec.RoleUser, sec.IntentPasswordReset), http.StatusNoContent, false},
		{"bad_scheme", "Token abc", http.StatusNoContent, false},
		{"garbage", "Bearer abc.def.ghi", http.StatusNoContent, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			request := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.status, recorder.Code)
			assert.Equal(t, tt.hasClaims, seen != nil)
		})
	}
}

/*
TestAuthenticate_Expired verifies that an expired access token passes public
routes as anonymous and is refused by protected ones.
*/
func TestAuthenticate_Expired(t *testing.T) {
	issuedAt := time.Now().Add(-time.Hour)
	past, err := sec.NewTokenService([]byte("0123456789abcdef0123456789abcdef"), sec.WithClock(func() time.Time { return issuedAt }))
	require.NoError(t, err)
	stale := "Bearer " + issue(t, past, sec.RoleUser, sec.IntentAccess)

	ok := http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusNoContent)
	})
	public := middleware.Authenticate(newTokens(t))(ok)
	protected := middleware.Authenticate(newTokens(t))(middleware.RequireAuth(ok))

	request := httptest.NewRequest(http.MethodPost, "/refresh", nil)
	request.Header.Set("Authorization", stale)
	recorder := httptest.NewRecorder()
	public.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	request = httptest.NewRequest(http.MethodGet, "/me", nil)
	request.Header.Set("Authorization", stale)
	recorder = httptest.NewRecorder()
	protected.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

/*
TestRequireRole verifies the role hierarchy gate.
*/
func TestRequireRole(t *testing.T) {
	tokens := newTokens(t)
	ok := http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) { writer.WriteHeader(http.StatusNoContent) })
	handler := middleware.Authenticate(tokens)(middleware.RequireRole(sec.RoleManager)(ok))

	tests := []struct {
		name   string
		role   sec.UserRole
		anon   bool
		status int
	}{
		{"anonymous", "", true, http.StatusUnauthorized},
		{"user", sec.RoleUser, false, http.StatusForbidden},
		{"manager", sec.RoleManager, false, http.StatusNoContent},
		{"super", sec.RoleSuper, false, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if !tt.anon {
				request.Header.Set("Authorization", "Bearer "+issue(t, tokens, tt.role, sec.IntentAccess))
			}
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)
			assert.Equal(t, tt.status, recorder.Code)
		})
	}
}

/*
TestRequireAuth verifies anonymous requests are refused.
*/
func TestRequireAuth(t *testing.T) {
	handler := middleware.RequireAuth(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusNoContent)
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
