package services

import (
	"context"

	"github.com/tablemaster/tablemaster/modules/changes/domain/changerequest"
	"github.com/tablemaster/tablemaster/pkg/composables"
	"github.com/tablemaster/tablemaster/pkg/eventbus"
)

// ProposalResult tells the caller whether the edit went live or awaits review.
type ProposalResult struct {
	Applied  bool
	RecordID string
	Request  *changerequest.ChangeRequest
}

// EditService is the entry point for edit surfaces. Admin edits are written
// immediately through the same commit path approvals use; everyone else
// gets a change request.
type EditService struct {
	requests   *ChangeRequestService
	committer  *Committer
	transactor composables.Transactor
	publisher  eventbus.EventBus
}

func NewEditService(
	requests *ChangeRequestService,
	committer *Committer,
	transactor composables.Transactor,
	publisher eventbus.EventBus,
) *EditService {
	return &EditService{
		requests:   requests,
		committer:  committer,
		transactor: transactor,
		publisher:  publisher,
	}
}

func (s *EditService) Propose(ctx context.Context, params SubmitParams) (ProposalResult, error) {
	actor, err := composables.UseActor(ctx)
	if err != nil || !actor.IsAuthenticated() {
		return ProposalResult{}, ErrUnauthenticated
	}
	if !actor.IsAdmin() {
		req, err := s.requests.Submit(ctx, params)
		if err != nil {
			return ProposalResult{}, err
		}
		return ProposalResult{Request: &req}, nil
	}

	draft := &changerequest.ChangeRequest{
		EntityType: changerequest.ParseEntityType(params.EntityType),
		EntityID:   optionalString(params.EntityID),
		Action:     changerequest.ParseAction(params.Action),
		Before:     params.Before,
		After:      params.After,
	}
	if err := validateSubmission(draft); err != nil {
		return ProposalResult{}, err
	}

	var recordID string
	err = s.transactor.InTx(ctx, func(txCtx context.Context) error {
		var applyErr error
		recordID, applyErr = s.committer.Apply(txCtx, Mutation{
			EntityType: draft.EntityType,
			Action:     draft.Action,
			TargetID:   draft.TargetID(),
			Before:     draft.Before,
			After:      draft.After,
		})
		return applyErr
	})
	if err != nil {
		return ProposalResult{}, err
	}
	s.publisher.Publish(EntityChangedEvent{
		EntityType: draft.EntityType,
		Action:     draft.Action,
		RecordID:   recordID,
		ActorID:    actor.ID,
	})
	return ProposalResult{Applied: true, RecordID: recordID}, nil
}
