package services

import (
	"github.com/tablemaster/tablemaster/pkg/serrors"
)

var (
	// ErrUnauthenticated indicates the actor carries no identity.
	ErrUnauthenticated = serrors.NewError("UNAUTHENTICATED", "you must be signed in", "Errors.Unauthenticated")
	// ErrChangeRequestNotFound indicates the change request id does not resolve.
	ErrChangeRequestNotFound = serrors.NewError("CHANGE_REQUEST_NOT_FOUND", "change request not found", "Errors.ChangeRequestNotFound")
	// ErrAccessRequestNotFound indicates the access request id does not resolve.
	ErrAccessRequestNotFound = serrors.NewError("ACCESS_REQUEST_NOT_FOUND", "access request not found", "Errors.AccessRequestNotFound")
	// ErrInvalidStatusTransition indicates the request has already been decided.
	ErrInvalidStatusTransition = serrors.NewError("INVALID_STATUS_TRANSITION", "request has already been decided", "Errors.InvalidStatusTransition")
	// ErrInvalidDecision indicates a decision other than approved or rejected.
	ErrInvalidDecision = serrors.NewError("INVALID_DECISION", "status must be approved or rejected", "Errors.InvalidDecision")
)
