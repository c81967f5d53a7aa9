package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablemaster/tablemaster/modules/changes/infrastructure/persistence"
	"github.com/tablemaster/tablemaster/modules/changes/presentation/controllers"
	"github.com/tablemaster/tablemaster/modules/changes/presentation/controllers/dtos"
	"github.com/tablemaster/tablemaster/modules/changes/services"
	"github.com/tablemaster/tablemaster/pkg/application"
	"github.com/tablemaster/tablemaster/pkg/composables"
	"github.com/tablemaster/tablemaster/pkg/httpapi"
	"github.com/tablemaster/tablemaster/pkg/middleware"
	"github.com/tablemaster/tablemaster/pkg/recordstore"
)

type caller map[string]string

var (
	anonymous = caller{}
	editor    = caller{"X-User-Id": "user-1", "X-User-Email": "server@example.com", "X-User-Name": "Sam Server"}
	admin     = caller{"X-User-Id": "admin-1", "X-User-Email": "admin@example.com", "X-User-Role": "admin"}
)

type harness struct {
	t      *testing.T
	router *mux.Router
	store  recordstore.Store
}

type slugLookup struct {
	store recordstore.Store
}

func (l slugLookup) CategoryIDBySlug(ctx context.Context, ref string) (string, bool, error) {
	coll, err := l.store.Collection(recordstore.MenuCategories)
	if err != nil {
		return "", false, err
	}
	rows, err := coll.List(ctx, recordstore.ListParams{})
	if err != nil {
		return "", false, err
	}
	for _, row := range rows {
		if strings.EqualFold(row.String("slug"), ref) {
			return row.ID(), true, nil
		}
	}
	return "", false, nil
}

func (l slugLookup) CategorySlugByID(ctx context.Context, id string) (string, bool, error) {
	coll, err := l.store.Collection(recordstore.MenuCategories)
	if err != nil {
		return "", false, err
	}
	row, err := coll.Get(ctx, id)
	if err != nil || row == nil {
		return "", false, err
	}
	return row.String("slug"), true, nil
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	store := recordstore.NewMemoryStore(nil)
	app := application.New(&application.ApplicationOptions{Store: store, Logger: logger})

	cats, err := store.Collection(recordstore.MenuCategories)
	require.NoError(t, err)
	_, err = cats.Insert(context.Background(), recordstore.Record{"slug": "appetizers", "name": "Appetizers"})
	require.NoError(t, err)

	committer := services.NewCommitter(store, slugLookup{store: store})
	tx := composables.NoopTransactor{}
	requests := services.NewChangeRequestService(
		persistence.NewMemoryChangeRequestRepository(nil), committer, tx, app.EventPublisher(),
	)
	app.RegisterServices(
		requests,
		services.NewAccessRequestService(persistence.NewMemoryAccessRequestRepository(nil), app.EventPublisher()),
		services.NewEditService(requests, committer, tx, app.EventPublisher()),
	)

	router := mux.NewRouter()
	router.Use(middleware.WithActor(middleware.ActorOptions{
		UserIDHeader: "X-User-Id",
		EmailHeader:  "X-User-Email",
		NameHeader:   "X-User-Name",
		RoleHeader:   "X-User-Role",
		AdminRole:    "admin",
	}))
	controllers.NewChangesAPIController(app).Register(router)
	return &harness{t: t, router: router, store: store}
}

func (h *harness) do(who caller, method, path, body string) *httptest.ResponseRecorder {
	h.t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range who {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func requireError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	envelope := decode[httpapi.ErrorEnvelope](t, rec)
	assert.Equal(t, code, envelope.Code)
}

const tunaTartare = `{"entity_type":"menu_item","action":"create",
	"after_data":{"name":"Tuna Tartare","category":"appetizers","price":18},"notes":"new starter"}`

func TestChangesAPI_Authorization(t *testing.T) {
	h := newHarness(t)

	requireError(t, h.do(anonymous, http.MethodGet, "/api/changes/change-requests", ""), http.StatusUnauthorized, "UNAUTHENTICATED")
	requireError(t, h.do(anonymous, http.MethodPost, "/api/changes/change-requests", tunaTartare), http.StatusUnauthorized, "UNAUTHENTICATED")
	requireError(t, h.do(editor, http.MethodGet, "/api/changes/change-requests", ""), http.StatusForbidden, "FORBIDDEN")
	requireError(t, h.do(editor, http.MethodPost, "/api/changes/change-requests/x:approve", ""), http.StatusForbidden, "FORBIDDEN")
	requireError(t, h.do(editor, http.MethodGet, "/api/changes/access-requests", ""), http.StatusForbidden, "FORBIDDEN")
}

func TestChangesAPI_SubmitListAndApprove(t *testing.T) {
	h := newHarness(t)

	rec := h.do(editor, http.MethodPost, "/api/changes/change-requests", tunaTartare)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[dtos.ChangeRequestResponse](t, rec)
	require.Equal(t, "pending", created.Status)
	require.Equal(t, "user-1", created.UserID)
	require.Nil(t, created.EntityID)

	rec = h.do(admin, http.MethodGet, "/api/changes/change-requests", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]dtos.ChangeRequestResponse](t, rec)
	require.Len(t, list, 1)
	item := list[0]
	assert.Equal(t, []string{"name: Tuna Tartare", "category: appetizers", "price: 18"}, item.Summary)
	assert.Equal(t, 0, item.More)
	require.NotNil(t, item.TargetName)
	assert.Equal(t, "Tuna Tartare", *item.TargetName)
	require.Len(t, item.Patch, 3)
	for _, op := range item.Patch {
		assert.Equal(t, "add", op.Type)
	}
	assert.JSONEq(t, `{"name":"Tuna Tartare","category":"appetizers","price":18}`, string(item.Preview))

	rec = h.do(admin, http.MethodPost, "/api/changes/change-requests/"+created.ID+":approve", `{"notes":"looks good"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	approved := decode[dtos.ChangeRequestResponse](t, rec)
	assert.Equal(t, "approved", approved.Status)
	assert.Equal(t, "looks good", *approved.DecisionNotes)
	require.NotNil(t, approved.EntityID)
	require.NotNil(t, approved.ReviewerID)
	assert.Equal(t, "admin-1", *approved.ReviewerID)
	require.NotNil(t, approved.ReviewedAt)

	items, err := h.store.Collection(recordstore.MenuItems)
	require.NoError(t, err)
	record, err := items.Get(context.Background(), *approved.EntityID)
	require.NoError(t, err)
	require.Equal(t, "Tuna Tartare", record["name"])

	requireError(t, h.do(admin, http.MethodPost, "/api/changes/change-requests/"+created.ID+":approve", ""),
		http.StatusConflict, "INVALID_STATUS_TRANSITION")
	requireError(t, h.do(admin, http.MethodPost, "/api/changes/change-requests/"+created.ID+":reject", ""),
		http.StatusConflict, "INVALID_STATUS_TRANSITION")

	rec = h.do(admin, http.MethodGet, "/api/changes/change-requests", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, decode[[]dtos.ChangeRequestResponse](t, rec))
}

func TestChangesAPI_SummaryIsCapped(t *testing.T) {
	h := newHarness(t)
	body := `{"entity_type":"table","action":"update","entity_id":"3f1b6a52-6f0c-4a53-9d43-7d2c61f0b001",
		"before_data":{"table_number":"1","section":"A","guest_count":2,"status":"available","notes":"","user_id":"u1","a":1},
		"after_data":{"table_number":"2","section":"B","guest_count":4,"status":"seated","notes":"vip","user_id":"u2","a":2}}`
	rec := h.do(editor, http.MethodPost, "/api/changes/change-requests", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decode[dtos.ChangeRequestResponse](t, rec)
	require.Len(t, resp.Summary, 5)
	assert.Equal(t, 1, resp.More) // user_id is bookkeeping and never listed
	assert.Equal(t, "table_number: 1 → 2", resp.Summary[0])
	assert.Nil(t, resp.TargetName)
	assert.JSONEq(t, `{"table_number":"2","section":"B","guest_count":4,"status":"seated","notes":"vip","user_id":"u2","a":2}`,
		string(resp.Preview))
}

func TestChangesAPI_Errors(t *testing.T) {
	h := newHarness(t)

	requireError(t, h.do(editor, http.MethodPost, "/api/changes/change-requests", `{"entity_type":`),
		http.StatusBadRequest, "INVALID_BODY")
	requireError(t, h.do(editor, http.MethodPost, "/api/changes/change-requests", `{"action":"create"}`),
		http.StatusUnprocessableEntity, "VALIDATION_ERROR")
	requireError(t, h.do(editor, http.MethodPost, "/api/changes/change-requests", `{"entity_type":"table","action":"create"}`),
		http.StatusUnprocessableEntity, "VALIDATION_ERROR")
	requireError(t, h.do(admin, http.MethodPost, "/api/changes/change-requests/missing:reject", ""),
		http.StatusNotFound, "CHANGE_REQUEST_NOT_FOUND")

	rec := h.do(editor, http.MethodPost, "/api/changes/change-requests", `{"entity_type":"guest","action":"create","after_data":{"name":"Pat"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[dtos.ChangeRequestResponse](t, rec)
	requireError(t, h.do(admin, http.MethodPost, "/api/changes/change-requests/"+created.ID+":approve", ""),
		http.StatusUnprocessableEntity, "UNSUPPORTED_ENTITY")

	rec = h.do(editor, http.MethodPost, "/api/changes/change-requests", `{"entity_type":"menu_item","action":"create","after_data":{"name":"Soup"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created = decode[dtos.ChangeRequestResponse](t, rec)
	requireError(t, h.do(admin, http.MethodPost, "/api/changes/change-requests/"+created.ID+":approve", ""),
		http.StatusUnprocessableEntity, "VALIDATION_ERROR")
}

func TestChangesAPI_AccessRequests(t *testing.T) {
	h := newHarness(t)

	rec := h.do(editor, http.MethodGet, "/api/changes/access-requests/me", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))

	rec = h.do(editor, http.MethodPost, "/api/changes/access-requests", `{"reason":"  closing shift lead "}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decode[dtos.AccessRequestResponse](t, rec)
	assert.Equal(t, "closing shift lead", *first.Reason)

	rec = h.do(editor, http.MethodPost, "/api/changes/access-requests", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, first.ID, decode[dtos.AccessRequestResponse](t, rec).ID)

	rec = h.do(editor, http.MethodGet, "/api/changes/access", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dtos.EditAccessResponse{RequiresApproval: true}, decode[dtos.EditAccessResponse](t, rec))

	rec = h.do(admin, http.MethodGet, "/api/changes/access-requests", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]dtos.AccessRequestResponse](t, rec), 1)

	requireError(t, h.do(admin, http.MethodPost, "/api/changes/access-requests/"+first.ID+":decide", `{"status":"pending"}`),
		http.StatusUnprocessableEntity, "VALIDATION_ERROR")

	rec = h.do(admin, http.MethodPost, "/api/changes/access-requests/"+first.ID+":decide", `{"status":"approved"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "approved", decode[dtos.AccessRequestResponse](t, rec).Status)

	requireError(t, h.do(admin, http.MethodPost, "/api/changes/access-requests/"+first.ID+":decide", `{"status":"rejected"}`),
		http.StatusConflict, "INVALID_STATUS_TRANSITION")
	requireError(t, h.do(admin, http.MethodPost, "/api/changes/access-requests/missing:decide", `{"status":"rejected"}`),
		http.StatusNotFound, "ACCESS_REQUEST_NOT_FOUND")

	rec = h.do(editor, http.MethodGet, "/api/changes/access", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dtos.EditAccessResponse{RequiresApproval: true, HasEditAccess: true}, decode[dtos.EditAccessResponse](t, rec))

	rec = h.do(admin, http.MethodGet, "/api/changes/access", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dtos.EditAccessResponse{IsAdmin: true, HasEditAccess: true}, decode[dtos.EditAccessResponse](t, rec))
}

func TestChangesAPI_ProposeEdit(t *testing.T) {
	h := newHarness(t)
	body := `{"entity_type":"table","action":"create","after_data":{"table_number":"12","section":"patio"}}`

	rec := h.do(admin, http.MethodPost, "/api/changes/edits", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	applied := decode[dtos.ProposalResponse](t, rec)
	assert.True(t, applied.Applied)
	assert.NotEmpty(t, applied.RecordID)

	rec = h.do(editor, http.MethodPost, "/api/changes/edits", body)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	queued := decode[dtos.ProposalResponse](t, rec)
	assert.False(t, queued.Applied)
	require.NotNil(t, queued.Request)
	assert.Equal(t, "pending", queued.Request.Status)
	assert.Equal(t, []string{"table_number: 12", "section: patio"}, queued.Request.Summary)
}
