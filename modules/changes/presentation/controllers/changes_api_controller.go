package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/tablemaster/tablemaster/modules/changes/domain/changerequest"
	"github.com/tablemaster/tablemaster/modules/changes/presentation/controllers/dtos"
	"github.com/tablemaster/tablemaster/modules/changes/presentation/mappers"
	"github.com/tablemaster/tablemaster/modules/changes/services"
	"github.com/tablemaster/tablemaster/pkg/application"
	"github.com/tablemaster/tablemaster/pkg/composables"
	"github.com/tablemaster/tablemaster/pkg/httpapi"
)

// ChangesAPIController serves the admin inbox and the edit entry points.
type ChangesAPIController struct {
	app       application.Application
	requests  *services.ChangeRequestService
	access    *services.AccessRequestService
	edits     *services.EditService
	apiPrefix string
}

func NewChangesAPIController(app application.Application) application.Controller {
	return &ChangesAPIController{
		app:       app,
		requests:  app.Service(services.ChangeRequestService{}).(*services.ChangeRequestService),
		access:    app.Service(services.AccessRequestService{}).(*services.AccessRequestService),
		edits:     app.Service(services.EditService{}).(*services.EditService),
		apiPrefix: "/api/changes",
	}
}

func (c *ChangesAPIController) Key() string {
	return c.apiPrefix
}

func (c *ChangesAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()

	api.HandleFunc("/access", c.GetEditAccess).Methods(http.MethodGet)
	api.HandleFunc("/edits", c.ProposeEdit).Methods(http.MethodPost)

	api.HandleFunc("/change-requests", c.ListChangeRequests).Methods(http.MethodGet)
	api.HandleFunc("/change-requests", c.CreateChangeRequest).Methods(http.MethodPost)
	api.HandleFunc("/change-requests/{id}", c.GetChangeRequest).Methods(http.MethodGet)
	api.HandleFunc("/change-requests/{id}:approve", c.ApproveChangeRequest).Methods(http.MethodPost)
	api.HandleFunc("/change-requests/{id}:reject", c.RejectChangeRequest).Methods(http.MethodPost)

	api.HandleFunc("/access-requests", c.ListAccessRequests).Methods(http.MethodGet)
	api.HandleFunc("/access-requests", c.CreateAccessRequest).Methods(http.MethodPost)
	api.HandleFunc("/access-requests/me", c.GetMyAccessRequest).Methods(http.MethodGet)
	api.HandleFunc("/access-requests/{id}:decide", c.DecideAccessRequest).Methods(http.MethodPost)
}

func (c *ChangesAPIController) GetEditAccess(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	hasAccess, err := c.access.HasEditAccess(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, dtos.EditAccessResponse{
		IsAdmin:          actor.IsAdmin(),
		RequiresApproval: !actor.IsAdmin(),
		HasEditAccess:    hasAccess,
	})
}

func (c *ChangesAPIController) ProposeEdit(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}
	var req dtos.ChangeRequestWriteRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}
	res, err := c.edits.Propose(r.Context(), submitParams(req))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if res.Applied {
		_ = httpapi.WriteJSON(w, http.StatusOK, dtos.ProposalResponse{Applied: true, RecordID: res.RecordID})
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusAccepted, dtos.ProposalResponse{
		Request: mappers.ChangeRequestToResponse(*res.Request, composables.UseLogger(r.Context())),
	})
}

func (c *ChangesAPIController) ListChangeRequests(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	pending, err := c.requests.ListPending(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.ChangeRequestsToResponses(pending, composables.UseLogger(r.Context())))
}

func (c *ChangesAPIController) CreateChangeRequest(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}
	var req dtos.ChangeRequestWriteRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}
	created, err := c.requests.Submit(r.Context(), submitParams(req))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, mappers.ChangeRequestToResponse(created, composables.UseLogger(r.Context())))
}

func (c *ChangesAPIController) GetChangeRequest(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	req, err := c.requests.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.ChangeRequestToResponse(req, composables.UseLogger(r.Context())))
}

func (c *ChangesAPIController) ApproveChangeRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	notes, ok := decodeDecision(w, r)
	if !ok {
		return
	}
	approved, err := c.requests.ApproveAndApply(r.Context(), mux.Vars(r)["id"], reviewerOf(actor), notes)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.ChangeRequestToResponse(approved, composables.UseLogger(r.Context())))
}

func (c *ChangesAPIController) RejectChangeRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	notes, ok := decodeDecision(w, r)
	if !ok {
		return
	}
	rejected, err := c.requests.Reject(r.Context(), mux.Vars(r)["id"], reviewerOf(actor), notes)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.ChangeRequestToResponse(rejected, composables.UseLogger(r.Context())))
}

func (c *ChangesAPIController) ListAccessRequests(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	pending, err := c.access.ListPending(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.AccessRequestsToResponses(pending))
}

// CreateAccessRequest returns the caller's pending request instead of stacking a new one.
func (c *ChangesAPIController) CreateAccessRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req dtos.AccessRequestWriteRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil && !errors.Is(err, httpapi.ErrEmptyBody) {
		writeDecodeError(w, r, err)
		return
	}

	latest, err := c.access.GetLatestForUser(r.Context(), actor.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if latest != nil && latest.IsPending() {
		_ = httpapi.WriteJSON(w, http.StatusOK, mappers.AccessRequestToResponse(*latest))
		return
	}

	created, err := c.access.Submit(r.Context(), req.Reason)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, mappers.AccessRequestToResponse(created))
}

func (c *ChangesAPIController) GetMyAccessRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	latest, err := c.access.GetLatestForUser(r.Context(), actor.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if latest == nil {
		_ = httpapi.WriteJSON(w, http.StatusOK, json.RawMessage("null"))
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.AccessRequestToResponse(*latest))
}

// DecideAccessRequest only decides pending requests; the service itself does not guard.
func (c *ChangesAPIController) DecideAccessRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	var req dtos.AccessDecisionRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	id := mux.Vars(r)["id"]
	current, err := c.access.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !current.IsPending() {
		writeServiceError(w, r, services.ErrInvalidStatusTransition)
		return
	}

	decided, err := c.access.Decide(r.Context(), id, changerequest.Status(req.Status), reviewerOf(actor))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.AccessRequestToResponse(decided))
}

func requireActor(w http.ResponseWriter, r *http.Request) (composables.Actor, bool) {
	actor, err := composables.UseActor(r.Context())
	if err != nil || !actor.IsAuthenticated() {
		writeServiceError(w, r, services.ErrUnauthenticated)
		return composables.Actor{}, false
	}
	return actor, true
}

func requireAdmin(w http.ResponseWriter, r *http.Request) (composables.Actor, bool) {
	actor, ok := requireActor(w, r)
	if !ok {
		return actor, false
	}
	if !actor.IsAdmin() {
		_ = httpapi.WriteAPIError(w, r, http.StatusForbidden, codeForbidden, "admin access required")
		return actor, false
	}
	return actor, true
}

// decodeDecision reads optional reviewer notes; an empty body is allowed.
func decodeDecision(w http.ResponseWriter, r *http.Request) (*string, bool) {
	var req dtos.DecisionRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		if errors.Is(err, httpapi.ErrEmptyBody) {
			return nil, true
		}
		writeDecodeError(w, r, err)
		return nil, false
	}
	return req.Notes, true
}

func reviewerOf(actor composables.Actor) changerequest.Reviewer {
	return changerequest.Reviewer{
		ID:    strings.TrimSpace(actor.ID),
		Email: strings.TrimSpace(actor.Email),
	}
}

func submitParams(req dtos.ChangeRequestWriteRequest) services.SubmitParams {
	return services.SubmitParams{
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		Action:     req.Action,
		Before:     req.BeforeData,
		After:      req.AfterData,
		Notes:      req.Notes,
	}
}
