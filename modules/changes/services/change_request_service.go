package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tablemaster/tablemaster/modules/changes/domain/changerequest"
	"github.com/tablemaster/tablemaster/modules/changes/domain/snapshot"
	"github.com/tablemaster/tablemaster/pkg/composables"
	"github.com/tablemaster/tablemaster/pkg/eventbus"
)

// SubmitParams captures a proposed mutation.
type SubmitParams struct {
	EntityType string
	EntityID   string
	Action     string
	Before     *snapshot.Object
	After      *snapshot.Object
	Notes      string
}

// ChangeRequestService runs the approval workflow for edits made by
// non-admin actors.
type ChangeRequestService struct {
	repo       changerequest.Repository
	committer  *Committer
	transactor composables.Transactor
	publisher  eventbus.EventBus
	now        func() time.Time
}

func NewChangeRequestService(
	repo changerequest.Repository,
	committer *Committer,
	transactor composables.Transactor,
	publisher eventbus.EventBus,
) *ChangeRequestService {
	return &ChangeRequestService{
		repo:       repo,
		committer:  committer,
		transactor: transactor,
		publisher:  publisher,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Submit records a pending change request on behalf of the current actor.
// The target entity is not touched.
func (s *ChangeRequestService) Submit(ctx context.Context, params SubmitParams) (changerequest.ChangeRequest, error) {
	actor, err := composables.UseActor(ctx)
	if err != nil || !actor.IsAuthenticated() {
		return changerequest.ChangeRequest{}, ErrUnauthenticated
	}

	req := &changerequest.ChangeRequest{
		RequestedBy: changerequest.Identity{
			ID:       strings.TrimSpace(actor.ID),
			Email:    actor.Email,
			FullName: actor.FullName,
		},
		EntityType:    changerequest.ParseEntityType(params.EntityType),
		EntityID:      optionalString(params.EntityID),
		Action:        changerequest.ParseAction(params.Action),
		Before:        params.Before.Clone(),
		After:         params.After.Clone(),
		DecisionNotes: optionalString(params.Notes),
		Status:        changerequest.StatusPending,
	}
	if err := validateSubmission(req); err != nil {
		return changerequest.ChangeRequest{}, err
	}

	if err := s.repo.Create(ctx, req); err != nil {
		return changerequest.ChangeRequest{}, err
	}
	s.publisher.Publish(ChangeRequestSubmittedEvent{Request: *req})
	return *req, nil
}

func validateSubmission(req *changerequest.ChangeRequest) error {
	if req.EntityType == "" {
		return &changerequest.ValidationError{Field: "entity_type", Message: "entity type is required"}
	}
	if !req.Action.IsValid() {
		return &changerequest.ValidationError{Field: "action", Message: "action must be one of create, update, delete, availability"}
	}
	switch req.Action {
	case changerequest.ActionCreate:
		if req.After == nil {
			return &changerequest.ValidationError{Field: "after_data", Message: "after_data is required for create"}
		}
		if req.Before != nil {
			return &changerequest.ValidationError{Field: "before_data", Message: "before_data must be empty for create"}
		}
	case changerequest.ActionDelete:
		if req.Before == nil {
			return &changerequest.ValidationError{Field: "before_data", Message: "before_data is required for delete"}
		}
		if req.After != nil {
			return &changerequest.ValidationError{Field: "after_data", Message: "after_data must be empty for delete"}
		}
	case changerequest.ActionUpdate, changerequest.ActionAvailability:
		if req.Before == nil || req.After == nil {
			return &changerequest.ValidationError{Field: "after_data", Message: "before_data and after_data are required for " + string(req.Action)}
		}
	}
	if req.Action != changerequest.ActionCreate && req.TargetID() == "" {
		return &changerequest.ValidationError{Field: "entity_id", Message: "missing entity id"}
	}
	return nil
}

// ListPending returns pending requests, oldest first.
func (s *ChangeRequestService) ListPending(ctx context.Context) ([]changerequest.ChangeRequest, error) {
	results, _, err := s.repo.List(ctx, changerequest.FindParams{
		Statuses: []changerequest.Status{changerequest.StatusPending},
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *ChangeRequestService) Get(ctx context.Context, id string) (changerequest.ChangeRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, changerequest.ErrNotFound) {
			return changerequest.ChangeRequest{}, ErrChangeRequestNotFound
		}
		return changerequest.ChangeRequest{}, err
	}
	return *req, nil
}

// Reject moves a pending request into the rejected state without touching the
// target entity.
func (s *ChangeRequestService) Reject(
	ctx context.Context,
	id string,
	reviewer changerequest.Reviewer,
	notes *string,
) (changerequest.ChangeRequest, error) {
	req, err := s.Get(ctx, id)
	if err != nil {
		return changerequest.ChangeRequest{}, err
	}
	if !req.IsPending() {
		return changerequest.ChangeRequest{}, ErrInvalidStatusTransition
	}
	params := s.decision(changerequest.StatusRejected, reviewer, notes)
	if err := s.updateStatus(ctx, id, params); err != nil {
		return changerequest.ChangeRequest{}, err
	}
	return s.decided(ctx, id, req.Status)
}

// ApproveAndApply writes the proposed mutation and then marks the request
// approved. Both happen in one unit of work; on any failure the request stays
// pending and the error is returned as is.
func (s *ChangeRequestService) ApproveAndApply(
	ctx context.Context,
	id string,
	reviewer changerequest.Reviewer,
	notes *string,
) (changerequest.ChangeRequest, error) {
	req, err := s.Get(ctx, id)
	if err != nil {
		return changerequest.ChangeRequest{}, err
	}
	if !req.IsPending() {
		return changerequest.ChangeRequest{}, ErrInvalidStatusTransition
	}

	var recordID string
	err = s.transactor.InTx(ctx, func(txCtx context.Context) error {
		var applyErr error
		recordID, applyErr = s.committer.Apply(txCtx, Mutation{
			EntityType: req.EntityType,
			Action:     req.Action,
			TargetID:   req.TargetID(),
			Before:     req.Before,
			After:      req.After,
		})
		if applyErr != nil {
			s.publisher.Publish(ChangeRequestApplyFailedEvent{Request: req, Err: applyErr})
			return applyErr
		}
		params := s.decision(changerequest.StatusApproved, reviewer, notes)
		if req.Action == changerequest.ActionCreate && recordID != "" {
			params.EntityID = changerequest.NewNullableValue(recordID)
		}
		return s.updateStatus(txCtx, id, params)
	})
	if err != nil {
		return changerequest.ChangeRequest{}, err
	}

	s.publisher.Publish(EntityChangedEvent{
		EntityType: req.EntityType,
		Action:     req.Action,
		RecordID:   recordID,
		ActorID:    reviewer.ID,
	})
	return s.decided(ctx, id, req.Status)
}

func (s *ChangeRequestService) decision(
	status changerequest.Status,
	reviewer changerequest.Reviewer,
	notes *string,
) changerequest.UpdateStatusParams {
	params := changerequest.UpdateStatusParams{
		Status:        status,
		ReviewerID:    nullableText(reviewer.ID),
		ReviewerEmail: nullableText(reviewer.Email),
		ReviewedAt:    changerequest.NewNullableValue(s.now()),
	}
	if notes != nil {
		params.DecisionNotes = nullableText(*notes)
	}
	return params
}

func (s *ChangeRequestService) updateStatus(ctx context.Context, id string, params changerequest.UpdateStatusParams) error {
	err := s.repo.UpdateStatus(ctx, id, params)
	switch {
	case errors.Is(err, changerequest.ErrNotPending):
		return ErrInvalidStatusTransition
	case errors.Is(err, changerequest.ErrNotFound):
		return ErrChangeRequestNotFound
	}
	return err
}

func (s *ChangeRequestService) decided(ctx context.Context, id string, previous changerequest.Status) (changerequest.ChangeRequest, error) {
	updated, err := s.Get(ctx, id)
	if err != nil {
		return changerequest.ChangeRequest{}, err
	}
	s.publisher.Publish(ChangeRequestDecidedEvent{
		PreviousStatus: previous,
		Request:        updated,
	})
	return updated, nil
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func nullableText(s string) changerequest.Nullable[string] {
	s = strings.TrimSpace(s)
	if s == "" {
		return changerequest.NewNullableNull[string]()
	}
	return changerequest.NewNullableValue(s)
}
