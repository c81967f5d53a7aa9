package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tablemaster/tablemaster/modules/changes/domain/accessrequest"
	"github.com/tablemaster/tablemaster/modules/changes/domain/changerequest"
	"github.com/tablemaster/tablemaster/pkg/composables"
	"github.com/tablemaster/tablemaster/pkg/eventbus"
)

// AccessRequestService handles requests for standing edit permission.
type AccessRequestService struct {
	repo      accessrequest.Repository
	publisher eventbus.EventBus
	now       func() time.Time
}

func NewAccessRequestService(repo accessrequest.Repository, publisher eventbus.EventBus) *AccessRequestService {
	return &AccessRequestService{
		repo:      repo,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Submit creates a pending request for the current actor. Callers check
// GetLatestForUser first to avoid stacking pending requests.
func (s *AccessRequestService) Submit(ctx context.Context, reason string) (accessrequest.AccessRequest, error) {
	actor, err := composables.UseActor(ctx)
	if err != nil || !actor.IsAuthenticated() {
		return accessrequest.AccessRequest{}, ErrUnauthenticated
	}
	req := &accessrequest.AccessRequest{
		RequestedBy: changerequest.Identity{
			ID:       strings.TrimSpace(actor.ID),
			Email:    actor.Email,
			FullName: actor.FullName,
		},
		Reason: optionalString(reason),
		Status: changerequest.StatusPending,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return accessrequest.AccessRequest{}, err
	}
	s.publisher.Publish(AccessRequestSubmittedEvent{Request: *req})
	return *req, nil
}

// ListPending returns pending requests, oldest first.
func (s *AccessRequestService) ListPending(ctx context.Context) ([]accessrequest.AccessRequest, error) {
	results, _, err := s.repo.List(ctx, accessrequest.FindParams{
		Statuses: []changerequest.Status{changerequest.StatusPending},
	})
	return results, err
}

func (s *AccessRequestService) Get(ctx context.Context, id string) (accessrequest.AccessRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, accessrequest.ErrNotFound) {
			return accessrequest.AccessRequest{}, ErrAccessRequestNotFound
		}
		return accessrequest.AccessRequest{}, err
	}
	return *req, nil
}

// Decide sets the request status and stamps the reviewer. A request that was
// already decided is not rejected here; callers guard against that.
func (s *AccessRequestService) Decide(
	ctx context.Context,
	id string,
	status changerequest.Status,
	reviewer changerequest.Reviewer,
) (accessrequest.AccessRequest, error) {
	if !status.IsDecision() {
		return accessrequest.AccessRequest{}, ErrInvalidDecision
	}
	req, err := s.Get(ctx, id)
	if err != nil {
		return accessrequest.AccessRequest{}, err
	}
	params := accessrequest.UpdateStatusParams{
		Status:        status,
		ReviewerID:    nullableText(reviewer.ID),
		ReviewerEmail: nullableText(reviewer.Email),
		ReviewedAt:    changerequest.NewNullableValue(s.now()),
	}
	if err := s.repo.UpdateStatus(ctx, id, params); err != nil {
		if errors.Is(err, accessrequest.ErrNotFound) {
			return accessrequest.AccessRequest{}, ErrAccessRequestNotFound
		}
		return accessrequest.AccessRequest{}, err
	}
	updated, err := s.Get(ctx, id)
	if err != nil {
		return accessrequest.AccessRequest{}, err
	}
	s.publisher.Publish(AccessRequestDecidedEvent{
		PreviousStatus: req.Status,
		Request:        updated,
	})
	return updated, nil
}

// GetLatestForUser returns the most recent request of userID, or nil when
// there is none.
func (s *AccessRequestService) GetLatestForUser(ctx context.Context, userID string) (*accessrequest.AccessRequest, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}
	results, _, err := s.repo.List(ctx, accessrequest.FindParams{
		UserID: userID,
		Newest: true,
		Limit:  1,
	})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// HasEditAccess reports whether actor may edit: admins always can, others once
// their latest access request was approved.
func (s *AccessRequestService) HasEditAccess(ctx context.Context, actor composables.Actor) (bool, error) {
	if actor.IsAdmin() {
		return true, nil
	}
	if !actor.IsAuthenticated() {
		return false, nil
	}
	latest, err := s.GetLatestForUser(ctx, actor.ID)
	if err != nil {
		return false, err
	}
	return latest != nil && latest.Status == changerequest.StatusApproved, nil
}
