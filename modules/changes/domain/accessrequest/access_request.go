// Package accessrequest models requests for standing edit permission.
package accessrequest

import (
	"context"
	"errors"
	"time"

	"github.com/tablemaster/tablemaster/modules/changes/domain/changerequest"
)

// ErrNotFound indicates that an access request does not exist.
var ErrNotFound = errors.New("access request not found")

// AccessRequest asks for edit rights. Approval has no side effect by itself;
// edit access is derived from the latest request of a user.
type AccessRequest struct {
	ID            string
	RequestedBy   changerequest.Identity
	Reason        *string
	DecisionNotes *string
	Status        changerequest.Status
	Reviewer      *changerequest.Reviewer
	CreatedAt     time.Time
	ReviewedAt    *time.Time
}

func (r *AccessRequest) IsPending() bool {
	return r.Status == changerequest.StatusPending
}

// FindParams filters access requests. Results are ordered by created_at,
// ascending unless Newest is set; ties are broken by id.
type FindParams struct {
	Statuses []changerequest.Status
	UserID   string
	Newest   bool
	Limit    int
	Offset   int
}

type UpdateStatusParams struct {
	Status        changerequest.Status
	ReviewerID    changerequest.Nullable[string]
	ReviewerEmail changerequest.Nullable[string]
	DecisionNotes changerequest.Nullable[string]
	ReviewedAt    changerequest.Nullable[time.Time]
}

type Repository interface {
	Create(ctx context.Context, req *AccessRequest) error
	GetByID(ctx context.Context, id string) (*AccessRequest, error)
	List(ctx context.Context, params FindParams) ([]AccessRequest, int64, error)
	UpdateStatus(ctx context.Context, id string, params UpdateStatusParams) error
}
