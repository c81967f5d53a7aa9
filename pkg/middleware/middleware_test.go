package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablemaster/tablemaster/pkg/composables"
	"github.com/tablemaster/tablemaster/pkg/constants"
	"github.com/tablemaster/tablemaster/pkg/middleware"
)

func actorOptions() middleware.ActorOptions {
	return middleware.ActorOptions{
		UserIDHeader: "X-User-Id",
		EmailHeader:  "X-User-Email",
		NameHeader:   "X-User-Name",
		RoleHeader:   "X-User-Role",
		AdminRole:    "admin",
		AdminEmails:  []string{"Owner@Example.com"},
	}
}

func captureActor(t *testing.T, headers map[string]string) composables.Actor {
	t.Helper()
	var got composables.Actor
	h := middleware.WithActor(actorOptions())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := composables.UseActor(r.Context())
		require.NoError(t, err)
		got = actor
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	h.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestWithActor(t *testing.T) {
	anon := captureActor(t, nil)
	assert.False(t, anon.IsAuthenticated())

	server := captureActor(t, map[string]string{"X-User-Id": "u1", "X-User-Email": "sam@example.com", "X-User-Name": "Sam"})
	assert.True(t, server.IsAuthenticated())
	assert.False(t, server.IsAdmin())
	assert.Equal(t, "Sam", server.FullName)

	byRole := captureActor(t, map[string]string{"X-User-Id": "u2", "X-User-Role": "Admin"})
	assert.True(t, byRole.IsAdmin())

	byEmail := captureActor(t, map[string]string{"X-User-Id": "u3", "X-User-Email": "owner@example.com"})
	assert.True(t, byEmail.IsAdmin())

	spoofed := captureActor(t, map[string]string{"X-User-Role": "admin"})
	assert.False(t, spoofed.IsAdmin())
}

func TestWithLogger_SetsRequestIDAndRecoversPanics(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logrus.New()
	logger.SetOutput(buf)

	h := middleware.WithLogger(logger, middleware.DefaultLoggerOptions())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		composables.UseLogger(r.Context()).Info("inside handler")
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/changes/change-requests", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-Id"))
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "INTERNAL_SERVER_ERROR", body["code"])
	assert.Contains(t, buf.String(), "inside handler")
	assert.Contains(t, buf.String(), "panic recovered")
}

func TestProvide(t *testing.T) {
	var got any
	h := middleware.Provide(constants.AppKey, "app")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Context().Value(constants.AppKey)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "app", got)
}

func TestRateLimit(t *testing.T) {
	h := middleware.RateLimit(middleware.RateLimitConfig{RequestsPerPeriod: 2})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}

func TestCors_Preflight(t *testing.T) {
	h := middleware.Cors("http://localhost:3000")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodOptions, "/api/menu/items", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
