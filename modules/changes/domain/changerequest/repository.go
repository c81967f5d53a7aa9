package changerequest

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates that a change request does not exist.
var ErrNotFound = errors.New("change request not found")

// ErrNotPending is returned by UpdateStatus when the row was decided concurrently.
var ErrNotPending = errors.New("change request is no longer pending")

// FindParams defines filters for listing requests. Results are ordered by
// created_at ascending, ties broken by id.
type FindParams struct {
	Statuses   []Status
	EntityType EntityType
	UserID     string
	Limit      int
	Offset     int
}

// UpdateStatusParams describes a decision. EntityID is only set when an
// approved creation reports the id of the inserted record.
type UpdateStatusParams struct {
	Status        Status
	ReviewerID    Nullable[string]
	ReviewerEmail Nullable[string]
	DecisionNotes Nullable[string]
	ReviewedAt    Nullable[time.Time]
	EntityID      Nullable[string]
}

// Repository persists change requests. Implementations take the transaction
// from the context when one is present.
type Repository interface {
	Create(ctx context.Context, req *ChangeRequest) error
	GetByID(ctx context.Context, id string) (*ChangeRequest, error)
	List(ctx context.Context, params FindParams) ([]ChangeRequest, int64, error)
	// UpdateStatus only touches pending rows.
	UpdateStatus(ctx context.Context, id string, params UpdateStatusParams) error
}
