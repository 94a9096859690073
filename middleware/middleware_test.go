package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := UserIDFromContext(r.Context())
		_, _ = w.Write([]byte(id))
	})
}

func request(token string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/reminders", nil)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

func TestAuthVerifiesSignature(t *testing.T) {
	h := NewAuthenticator("s3cret").Middleware(echoUser())

	token, err := GenerateTestJWT("user-1", "s3cret")
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, request(token))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())

	forged, err := GenerateTestJWT("user-1", "other")
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, request(forged))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Unauthorized"}`, rec.Body.String())
}

func TestAuthRejectsMissingToken(t *testing.T) {
	h := NewAuthenticator("").Middleware(echoUser())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, request(""))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, request("not-a-jwt"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthUnverifiedModeChecksExpiryAndSubject(t *testing.T) {
	h := NewAuthenticator("").Middleware(echoUser())

	ok, err := GenerateTestJWT("dev-user", "anything")
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, request(ok))
	assert.Equal(t, "dev-user", rec.Body.String())

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "dev-user",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte("x"))
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, request(expired))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{}).SignedString([]byte("x"))
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, request(noSub))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	called := false
	h := CORSMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/contacts", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.False(t, called)
}

func TestChainOrderAndLogging(t *testing.T) {
	var order []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := Chain(tag("a"), LoggingMiddleware, tag("b"))(mux)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
