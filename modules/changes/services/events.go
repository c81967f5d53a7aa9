package services

import (
	"github.com/tablemaster/tablemaster/modules/changes/domain/accessrequest"
	"github.com/tablemaster/tablemaster/modules/changes/domain/changerequest"
)

// ChangeRequestSubmittedEvent is published whenever a change request is created.
type ChangeRequestSubmittedEvent struct {
	Request changerequest.ChangeRequest
}

// ChangeRequestDecidedEvent is published after a request is approved or rejected.
type ChangeRequestDecidedEvent struct {
	PreviousStatus changerequest.Status
	Request        changerequest.ChangeRequest
}

// ChangeRequestApplyFailedEvent is published when an approval could not be written.
type ChangeRequestApplyFailedEvent struct {
	Request changerequest.ChangeRequest
	Err     error
}

// EntityChangedEvent is published after a mutation reached the record store,
// whether through an approval or a direct admin edit.
type EntityChangedEvent struct {
	EntityType changerequest.EntityType
	Action     changerequest.Action
	RecordID   string
	ActorID    string
}

type AccessRequestSubmittedEvent struct {
	Request accessrequest.AccessRequest
}

type AccessRequestDecidedEvent struct {
	PreviousStatus changerequest.Status
	Request        accessrequest.AccessRequest
}
