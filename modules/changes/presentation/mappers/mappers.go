package mappers

import (
	"encoding/json"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/sirupsen/logrus"
	"github.com/wI2L/jsondiff"

	"github.com/tablemaster/tablemaster/modules/changes/domain/accessrequest"
	"github.com/tablemaster/tablemaster/modules/changes/domain/changediff"
	"github.com/tablemaster/tablemaster/modules/changes/domain/changerequest"
	"github.com/tablemaster/tablemaster/modules/changes/domain/snapshot"
	"github.com/tablemaster/tablemaster/modules/changes/presentation/controllers/dtos"
)

// SummaryLines is how many summary lines a review card shows before "+N more".
const SummaryLines = 5

var emptyObject = []byte("{}")

func ChangeRequestToResponse(req changerequest.ChangeRequest, logger logrus.FieldLogger) *dtos.ChangeRequestResponse {
	resp := &dtos.ChangeRequestResponse{
		ID:            req.ID,
		UserID:        req.RequestedBy.ID,
		Email:         req.RequestedBy.Email,
		FullName:      req.RequestedBy.FullName,
		EntityType:    string(req.EntityType),
		EntityID:      req.EntityID,
		Action:        string(req.Action),
		BeforeData:    req.Before,
		AfterData:     req.After,
		DecisionNotes: req.DecisionNotes,
		Status:        string(req.Status),
		CreatedAt:     formatTime(req.CreatedAt),
		ReviewedAt:    formatTimePtr(req.ReviewedAt),
		TargetName:    targetName(req.Before, req.After),
	}
	if req.Reviewer != nil {
		resp.ReviewerID = optional(req.Reviewer.ID)
		resp.ReviewerEmail = optional(req.Reviewer.Email)
	}

	lines := changediff.Summarize(req.Before, req.After, string(req.Action))
	if len(lines) > SummaryLines {
		resp.More = len(lines) - SummaryLines
		lines = lines[:SummaryLines]
	}
	resp.Summary = lines

	patch, preview, err := reviewDocuments(req.Before, req.After)
	if err != nil {
		logger.WithError(err).WithField("change_request_id", req.ID).Warn("could not build change preview")
	}
	resp.Patch = patch
	resp.Preview = preview
	return resp
}

func ChangeRequestsToResponses(reqs []changerequest.ChangeRequest, logger logrus.FieldLogger) []*dtos.ChangeRequestResponse {
	out := make([]*dtos.ChangeRequestResponse, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, ChangeRequestToResponse(req, logger))
	}
	return out
}

// reviewDocuments returns the RFC 6902 operations turning before into after and
// the record as it would read after an update is applied. Deletions preview as null.
func reviewDocuments(before, after *snapshot.Object) (jsondiff.Patch, json.RawMessage, error) {
	source, err := marshalOrEmpty(before)
	if err != nil {
		return nil, nil, err
	}
	target, err := marshalOrEmpty(after)
	if err != nil {
		return nil, nil, err
	}
	patch, err := jsondiff.CompareJSON(source, target)
	if err != nil {
		return nil, nil, err
	}
	if after == nil {
		return patch, json.RawMessage("null"), nil
	}
	preview, err := jsonpatch.MergePatch(source, target)
	if err != nil {
		return patch, nil, err
	}
	return patch, preview, nil
}

func marshalOrEmpty(obj *snapshot.Object) ([]byte, error) {
	if obj == nil {
		return emptyObject, nil
	}
	return obj.MarshalJSON()
}

func targetName(before, after *snapshot.Object) *string {
	for _, obj := range []*snapshot.Object{after, before} {
		v, _ := obj.Get("name")
		switch t := v.(type) {
		case string:
			if t != "" {
				return &t
			}
		case json.Number:
			if s := t.String(); s != "0" {
				return &s
			}
		}
	}
	return nil
}

func AccessRequestToResponse(req accessrequest.AccessRequest) *dtos.AccessRequestResponse {
	resp := &dtos.AccessRequestResponse{
		ID:            req.ID,
		UserID:        req.RequestedBy.ID,
		Email:         req.RequestedBy.Email,
		FullName:      req.RequestedBy.FullName,
		Reason:        req.Reason,
		Status:        string(req.Status),
		DecisionNotes: req.DecisionNotes,
		CreatedAt:     formatTime(req.CreatedAt),
		ReviewedAt:    formatTimePtr(req.ReviewedAt),
	}
	if req.Reviewer != nil {
		resp.ReviewerID = optional(req.Reviewer.ID)
		resp.ReviewerEmail = optional(req.Reviewer.Email)
	}
	return resp
}

func AccessRequestsToResponses(reqs []accessrequest.AccessRequest) []*dtos.AccessRequestResponse {
	out := make([]*dtos.AccessRequestResponse, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, AccessRequestToResponse(req))
	}
	return out
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
