package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablemaster/tablemaster/internal/server"
	"github.com/tablemaster/tablemaster/modules"
	"github.com/tablemaster/tablemaster/pkg/application"
	"github.com/tablemaster/tablemaster/pkg/cache"
	"github.com/tablemaster/tablemaster/pkg/configuration"
	"github.com/tablemaster/tablemaster/pkg/httpapi"
	"github.com/tablemaster/tablemaster/pkg/recordstore"
)

func newHandler(t *testing.T) http.Handler {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	conf := &configuration.Configuration{
		StorageBackend:  configuration.StorageBackendMemory,
		RequestIDHeader: "X-Request-ID",
		RealIPHeader:    "X-Real-IP",
		CorsOrigins:     []string{"http://localhost:5173"},
		Identity: configuration.IdentityOptions{
			UserIDHeader:   "X-User-Id",
			EmailHeader:    "X-User-Email",
			RoleHeader:     "X-User-Role",
			AdminRole:      "admin",
			AdminEmailsRaw: "Owner@Example.com",
		},
	}
	app := application.New(&application.ApplicationOptions{Store: recordstore.NewMemoryStore(nil), Logger: logger})
	require.NoError(t, modules.Load(app, modules.BuiltInModules(conf, cache.NewMemoryCache(0), logger)...))

	srv, err := server.Default(&server.DefaultOptions{Logger: logger, Configuration: conf, Application: app})
	require.NoError(t, err)
	return srv.Router()
}

func TestDefault_UnknownRouteIsJSON(t *testing.T) {
	h := newHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var envelope httpapi.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "NOT_FOUND", envelope.Code)
}

func TestDefault_AdminByEmail(t *testing.T) {
	h := newHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/changes/access", nil)
	req.Header.Set("X-User-Id", "owner-1")
	req.Header.Set("X-User-Email", "owner@example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body["is_admin"])
	assert.True(t, body["has_edit_access"])
	assert.False(t, body["requires_approval"])
}
