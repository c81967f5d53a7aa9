package dtos

import (
	"encoding/json"

	"github.com/wI2L/jsondiff"

	"github.com/tablemaster/tablemaster/modules/changes/domain/snapshot"
)

type ChangeRequestWriteRequest struct {
	EntityType string           `json:"entity_type" validate:"required"`
	EntityID   string           `json:"entity_id"`
	Action     string           `json:"action" validate:"required"`
	BeforeData *snapshot.Object `json:"before_data"`
	AfterData  *snapshot.Object `json:"after_data"`
	Notes      string           `json:"notes" validate:"max=2000"`
}

type DecisionRequest struct {
	Notes *string `json:"notes" validate:"omitempty,max=2000"`
}

type AccessRequestWriteRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

type AccessDecisionRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

type ChangeRequestResponse struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id"`
	Email         string           `json:"email"`
	FullName      string           `json:"full_name"`
	EntityType    string           `json:"entity_type"`
	EntityID      *string          `json:"entity_id"`
	Action        string           `json:"action"`
	BeforeData    *snapshot.Object `json:"before_data"`
	AfterData     *snapshot.Object `json:"after_data"`
	DecisionNotes *string          `json:"decision_notes"`
	Status        string           `json:"status"`
	ReviewerID    *string          `json:"reviewer_id"`
	ReviewerEmail *string          `json:"reviewer_email"`
	CreatedAt     string           `json:"created_at"`
	ReviewedAt    *string          `json:"reviewed_at"`

	// Review aids computed from the snapshots.
	Summary    []string        `json:"summary"`
	More       int             `json:"more"`
	TargetName *string         `json:"target_name"`
	Patch      jsondiff.Patch  `json:"patch"`
	Preview    json.RawMessage `json:"preview"`
}

type AccessRequestResponse struct {
	ID            string  `json:"id"`
	UserID        string  `json:"user_id"`
	Email         string  `json:"email"`
	FullName      string  `json:"full_name"`
	Reason        *string `json:"reason"`
	Status        string  `json:"status"`
	ReviewerID    *string `json:"reviewer_id"`
	ReviewerEmail *string `json:"reviewer_email"`
	DecisionNotes *string `json:"decision_notes"`
	CreatedAt     string  `json:"created_at"`
	ReviewedAt    *string `json:"reviewed_at"`
}

type ProposalResponse struct {
	Applied  bool                   `json:"applied"`
	RecordID string                 `json:"record_id,omitempty"`
	Request  *ChangeRequestResponse `json:"request,omitempty"`
}

type EditAccessResponse struct {
	IsAdmin          bool `json:"is_admin"`
	RequiresApproval bool `json:"requires_approval"`
	HasEditAccess    bool `json:"has_edit_access"`
}
