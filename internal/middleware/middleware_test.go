package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"FCCMonitorAPI/internal/auth"
	"FCCMonitorAPI/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func identityHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Role", string(auth.RoleFromContext(r.Context())))
		w.Header().Set("X-Subject", auth.SubjectFromContext(r.Context()))
		w.WriteHeader(http.StatusOK)
	})
}

func signToken(t *testing.T, subject string, role auth.Role) string {
	t.Helper()
	claims := auth.Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return tok
}

func token(t *testing.T, role auth.Role) string {
	return signToken(t, "op-1", role)
}

func TestAuthenticate_Disabled(t *testing.T) {
	a := NewAuthenticator(testSecret, false, logger.Discard())
	rec := httptest.NewRecorder()

	a.Authenticate(identityHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/alarms", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "engineer", rec.Header().Get("X-Role"))
	assert.Equal(t, "anonymous", rec.Header().Get("X-Subject"))
}

func TestAuthenticate_BearerAndQueryToken(t *testing.T) {
	a := NewAuthenticator(testSecret, true, logger.Discard())
	h := a.Authenticate(identityHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/alarms", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, auth.RoleOperator))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "operator", rec.Header().Get("X-Role"))
	assert.Equal(t, "op-1", rec.Header().Get("X-Subject"))

	req = httptest.NewRequest(http.MethodGet, "/ws?access_token="+token(t, auth.RoleViewer), nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "viewer", rec.Header().Get("X-Role"))
}

func TestAuthenticate_Rejects(t *testing.T) {
	a := NewAuthenticator(testSecret, true, logger.Discard())
	h := a.Authenticate(identityHandler())

	for _, header := range []string{"", "Bearer nope", "Basic abc", "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/alarms", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
	}
}

func TestRequireRole(t *testing.T) {
	a := NewAuthenticator(testSecret, true, logger.Discard())
	h := a.Authenticate(RequireRole(auth.RoleOperator)(identityHandler()))

	cases := map[auth.Role]int{
		auth.RoleViewer:   http.StatusForbidden,
		auth.RoleOperator: http.StatusOK,
		auth.RoleEngineer: http.StatusOK,
	}
	for role, want := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/alarms/a1/acknowledge", nil)
		req.Header.Set("Authorization", "Bearer "+token(t, role))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, role)
	}

	rec := httptest.NewRecorder()
	RequireRole(auth.RoleViewer)(identityHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(2)(identityHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.9:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecovery(t *testing.T) {
	h := Recovery(logger.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"http://console.local"}, []string{"GET", "POST"})(identityHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/tags", nil)
	req.Header.Set("Origin", "http://console.local")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://console.local", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET,POST", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")

	req = httptest.NewRequest(http.MethodGet, "/api/v1/tags", nil)
	req.Header.Set("Origin", "http://evil.local")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLogger_PassesStatus(t *testing.T) {
	h := RequestLogger(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("x"))
	}))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
