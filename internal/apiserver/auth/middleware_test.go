package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPublicRoute(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		path     string
		expected bool
	}{
		{"login", "POST", "/api/v1/auth/login", true},
		{"register", "POST", "/api/v1/auth/register", true},
		{"health", "GET", "/health", true},
		{"metrics", "GET", "/metrics", true},
		{"openapi", "GET", "/openapi.json", true},
		{"preflight", "OPTIONS", "/api/v1/campaigns", true},

		{"login via GET", "GET", "/api/v1/auth/login", false},
		{"healthz lookalike", "GET", "/healthz", false},
		{"me", "GET", "/api/v1/auth/me", false},
		{"users", "GET", "/api/v1/auth/users", false},
		{"campaigns", "GET", "/api/v1/campaigns", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isPublicRoute(tt.method, tt.path))
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Basic abc", "", false},
		{"Bearer ", "", false},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		token, ok := bearerToken(r)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.token, token, tt.header)
	}
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	env := newTestEnv(t)
	called := false
	h := Middleware(env.authn)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/campaigns", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
}

func TestMiddlewareInjectsIdentity(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "gina@example.com", "secret123", "")
	token := env.login(t, "gina@example.com", "secret123")

	var got *Identity
	h := Middleware(env.authn)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = IdentityFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/campaigns", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	if assert.NotNil(t, got) {
		assert.Equal(t, "gina@example.com", got.Email)
	}
}

func TestRequireRole(t *testing.T) {
	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }
	guarded := RequireRole("admin", "manager")(ok)

	rec := httptest.NewRecorder()
	guarded(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithIdentity(req.Context(), &Identity{Role: "viewer"}))
	rec = httptest.NewRecorder()
	guarded(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithIdentity(req.Context(), &Identity{Role: "manager"}))
	rec = httptest.NewRecorder()
	guarded(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
