package changerequest

import (
	"strings"
	"time"

	"github.com/tablemaster/tablemaster/modules/changes/domain/snapshot"
)

// EntityType names the kind of record a change request targets.
type EntityType string

const (
	EntityTable        EntityType = "table"
	EntityMenuItem     EntityType = "menu_item"
	EntityPrefixedMenu EntityType = "prefixed_menu"
)

func (t EntityType) IsValid() bool {
	switch t {
	case EntityTable, EntityMenuItem, EntityPrefixedMenu:
		return true
	}
	return false
}

// ParseEntityType normalizes case and surrounding whitespace.
func ParseEntityType(s string) EntityType {
	return EntityType(strings.ToLower(strings.TrimSpace(s)))
}

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	// ActionAvailability is an update restricted to the availability flag.
	ActionAvailability Action = "availability"
)

func (a Action) IsValid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionAvailability:
		return true
	}
	return false
}

func ParseAction(s string) Action {
	return Action(strings.ToLower(strings.TrimSpace(s)))
}

// Status is the lifecycle state shared by change and access requests.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsDecision reports whether s is a terminal status a reviewer may set.
func (s Status) IsDecision() bool {
	return s == StatusApproved || s == StatusRejected
}

// Identity references a user by the attributes captured at request time.
type Identity struct {
	ID       string
	Email    string
	FullName string
}

// Reviewer is the admin who decided a request.
type Reviewer struct {
	ID    string
	Email string
}

// ChangeRequest is a proposed mutation awaiting an admin decision. Once
// decided, only the review fields ever change.
type ChangeRequest struct {
	ID            string
	RequestedBy   Identity
	EntityType    EntityType
	EntityID      *string
	Action        Action
	Before        *snapshot.Object
	After         *snapshot.Object
	DecisionNotes *string
	Status        Status
	Reviewer      *Reviewer
	CreatedAt     time.Time
	ReviewedAt    *time.Time
}

func (r *ChangeRequest) IsPending() bool {
	return r.Status == StatusPending
}

// TargetID returns entity_id, falling back to the id carried in after.
func (r *ChangeRequest) TargetID() string {
	if r.EntityID != nil && strings.TrimSpace(*r.EntityID) != "" {
		return strings.TrimSpace(*r.EntityID)
	}
	if v, ok := r.After.Get("id"); ok && v != nil {
		if s := strings.TrimSpace(toString(v)); s != "" {
			return s
		}
	}
	return ""
}
