package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lokomotiv_server_go/auth"
	"lokomotiv_server_go/logging"
	"lokomotiv_server_go/models"
	"lokomotiv_server_go/permission"
)

type fakeUsers struct {
	users map[int64]*models.User
	err   error
}

func (f *fakeUsers) GetUser(_ context.Context, _ models.Scope, id int64) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return u, nil
}

func TestJWTMiddleware(t *testing.T) {
	tokens := auth.NewTokenService("secret", time.Hour)
	org := int64(3)
	users := &fakeUsers{users: map[int64]*models.User{
		1: {ID: 1, Username: "ali", Role: models.RoleManager, OrganizationID: &org, IsActive: true},
		2: {ID: 2, Username: "vali", Role: models.RoleViewer, IsActive: false},
	}}

	var got *permission.Session
	h := JWTMiddleware(tokens, users, logging.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = permission.FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	token := func(id int64) string {
		tok, _, err := tokens.GenerateToken(id, "x")
		require.NoError(t, err)
		return tok
	}

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc", http.StatusUnauthorized},
		{"unknown user", "Bearer " + token(9), http.StatusUnauthorized},
		{"inactive user", "Bearer " + token(2), http.StatusUnauthorized},
		{"valid", "Bearer " + token(1), http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = nil
			req := httptest.NewRequest(http.MethodGet, "/api/locomotives", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status != http.StatusNoContent {
				assert.Nil(t, got)
				var body map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.NotEmpty(t, body["error"])
			}
		})
	}

	require.NotNil(t, got)
	assert.Equal(t, int64(1), got.UserID)
	assert.Equal(t, "ali", got.Username)
	assert.Equal(t, models.RoleManager, got.Role)
	assert.Equal(t, &org, got.OrganizationID)
}

func TestJWTMiddleware_StoreError(t *testing.T) {
	tokens := auth.NewTokenService("secret", time.Hour)
	h := JWTMiddleware(tokens, &fakeUsers{err: errors.New("db down")}, logging.Discard())(http.NotFoundHandler())

	tok, _, err := tokens.GenerateToken(1, "ali")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewJSON(&buf, "debug")

	h := chimw.RequestID(RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("nope"))
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/delays/7", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "DELETE", entry["method"])
	assert.Equal(t, "/api/delays/7", entry["path"])
	assert.Equal(t, float64(http.StatusNotFound), entry["status"])
	assert.Equal(t, float64(4), entry["bytes"])
	assert.NotEmpty(t, entry["request_id"])
}
