package persistence

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/tablemaster/tablemaster/modules/changes/domain/accessrequest"
	"github.com/tablemaster/tablemaster/modules/changes/domain/changerequest"
	"github.com/tablemaster/tablemaster/pkg/recordstore"
)

// Clock returns the creation timestamp for new in-memory rows.
type Clock func() time.Time

type memoryRow[T any] struct {
	seq int64
	val T
}

type memoryChangeRequestRepository struct {
	rows *recordstore.SafeMap[string, memoryRow[changerequest.ChangeRequest]]
	seq  atomic.Int64
	now  Clock
}

// NewMemoryChangeRequestRepository keeps change requests in process memory.
// A nil clock defaults to the UTC wall clock.
func NewMemoryChangeRequestRepository(now Clock) changerequest.Repository {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &memoryChangeRequestRepository{
		rows: recordstore.NewSafeMap[string, memoryRow[changerequest.ChangeRequest]](),
		now:  now,
	}
}

func (r *memoryChangeRequestRepository) Create(_ context.Context, req *changerequest.ChangeRequest) error {
	req.ID = uuid.NewString()
	req.CreatedAt = r.now()
	r.rows.Set(req.ID, memoryRow[changerequest.ChangeRequest]{seq: r.seq.Add(1), val: cloneChangeRequest(*req)})
	return nil
}

func (r *memoryChangeRequestRepository) GetByID(_ context.Context, id string) (*changerequest.ChangeRequest, error) {
	row, ok := r.rows.Get(id)
	if !ok {
		return nil, changerequest.ErrNotFound
	}
	req := cloneChangeRequest(row.val)
	return &req, nil
}

func (r *memoryChangeRequestRepository) List(_ context.Context, params changerequest.FindParams) ([]changerequest.ChangeRequest, int64, error) {
	var matched []memoryRow[changerequest.ChangeRequest]
	for _, row := range r.rows.Values() {
		req := row.val
		if len(params.Statuses) > 0 && !containsStatus(params.Statuses, req.Status) {
			continue
		}
		if params.EntityType != "" && req.EntityType != params.EntityType {
			continue
		}
		if params.UserID != "" && req.RequestedBy.ID != params.UserID {
			continue
		}
		matched = append(matched, row)
	}
	sortRows(matched, false, func(v changerequest.ChangeRequest) time.Time { return v.CreatedAt })

	total := int64(len(matched))
	matched = paginate(matched, params.Limit, params.Offset)
	out := make([]changerequest.ChangeRequest, len(matched))
	for i, row := range matched {
		out[i] = cloneChangeRequest(row.val)
	}
	return out, total, nil
}

func (r *memoryChangeRequestRepository) UpdateStatus(_ context.Context, id string, params changerequest.UpdateStatusParams) error {
	var pending bool
	_, ok := r.rows.Update(id, func(row memoryRow[changerequest.ChangeRequest]) memoryRow[changerequest.ChangeRequest] {
		if !row.val.IsPending() {
			return row
		}
		pending = true
		req := &row.val
		req.Status = params.Status
		req.Reviewer = applyReviewer(req.Reviewer, params.ReviewerID, params.ReviewerEmail)
		if !params.DecisionNotes.IsUnset() {
			req.DecisionNotes = params.DecisionNotes.Ptr()
		}
		if !params.ReviewedAt.IsUnset() {
			req.ReviewedAt = params.ReviewedAt.Ptr()
		}
		if !params.EntityID.IsUnset() {
			req.EntityID = params.EntityID.Ptr()
		}
		return row
	})
	if !ok {
		return changerequest.ErrNotFound
	}
	if !pending {
		return changerequest.ErrNotPending
	}
	return nil
}

type memoryAccessRequestRepository struct {
	rows *recordstore.SafeMap[string, memoryRow[accessrequest.AccessRequest]]
	seq  atomic.Int64
	now  Clock
}

// NewMemoryAccessRequestRepository keeps access requests in process memory.
func NewMemoryAccessRequestRepository(now Clock) accessrequest.Repository {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &memoryAccessRequestRepository{
		rows: recordstore.NewSafeMap[string, memoryRow[accessrequest.AccessRequest]](),
		now:  now,
	}
}

func (r *memoryAccessRequestRepository) Create(_ context.Context, req *accessrequest.AccessRequest) error {
	req.ID = uuid.NewString()
	req.CreatedAt = r.now()
	r.rows.Set(req.ID, memoryRow[accessrequest.AccessRequest]{seq: r.seq.Add(1), val: cloneAccessRequest(*req)})
	return nil
}

func (r *memoryAccessRequestRepository) GetByID(_ context.Context, id string) (*accessrequest.AccessRequest, error) {
	row, ok := r.rows.Get(id)
	if !ok {
		return nil, accessrequest.ErrNotFound
	}
	req := cloneAccessRequest(row.val)
	return &req, nil
}

func (r *memoryAccessRequestRepository) List(_ context.Context, params accessrequest.FindParams) ([]accessrequest.AccessRequest, int64, error) {
	var matched []memoryRow[accessrequest.AccessRequest]
	for _, row := range r.rows.Values() {
		if len(params.Statuses) > 0 && !containsStatus(params.Statuses, row.val.Status) {
			continue
		}
		if params.UserID != "" && row.val.RequestedBy.ID != params.UserID {
			continue
		}
		matched = append(matched, row)
	}
	sortRows(matched, params.Newest, func(v accessrequest.AccessRequest) time.Time { return v.CreatedAt })

	total := int64(len(matched))
	matched = paginate(matched, params.Limit, params.Offset)
	out := make([]accessrequest.AccessRequest, len(matched))
	for i, row := range matched {
		out[i] = cloneAccessRequest(row.val)
	}
	return out, total, nil
}

func (r *memoryAccessRequestRepository) UpdateStatus(_ context.Context, id string, params accessrequest.UpdateStatusParams) error {
	_, ok := r.rows.Update(id, func(row memoryRow[accessrequest.AccessRequest]) memoryRow[accessrequest.AccessRequest] {
		req := &row.val
		req.Status = params.Status
		req.Reviewer = applyReviewer(req.Reviewer, params.ReviewerID, params.ReviewerEmail)
		if !params.DecisionNotes.IsUnset() {
			req.DecisionNotes = params.DecisionNotes.Ptr()
		}
		if !params.ReviewedAt.IsUnset() {
			req.ReviewedAt = params.ReviewedAt.Ptr()
		}
		return row
	})
	if !ok {
		return accessrequest.ErrNotFound
	}
	return nil
}

func containsStatus(statuses []changerequest.Status, s changerequest.Status) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// sortRows orders by creation time, then by insertion sequence.
func sortRows[T any](rows []memoryRow[T], desc bool, createdAt func(T) time.Time) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := createdAt(rows[i].val), createdAt(rows[j].val)
		if !a.Equal(b) {
			if desc {
				return a.After(b)
			}
			return a.Before(b)
		}
		if desc {
			return rows[i].seq > rows[j].seq
		}
		return rows[i].seq < rows[j].seq
	})
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(rows) {
			return nil
		}
		rows = rows[offset:]
	}
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

func applyReviewer(current *changerequest.Reviewer, id, email changerequest.Nullable[string]) *changerequest.Reviewer {
	if id.IsUnset() && email.IsUnset() {
		return current
	}
	next := changerequest.Reviewer{}
	if current != nil {
		next = *current
	}
	if !id.IsUnset() {
		next.ID = id.Value
	}
	if !email.IsUnset() {
		next.Email = email.Value
	}
	if next.ID == "" && next.Email == "" {
		return nil
	}
	return &next
}

func cloneChangeRequest(req changerequest.ChangeRequest) changerequest.ChangeRequest {
	out := req
	out.Before = req.Before.Clone()
	out.After = req.After.Clone()
	out.EntityID = clonePtr(req.EntityID)
	out.DecisionNotes = clonePtr(req.DecisionNotes)
	out.Reviewer = clonePtr(req.Reviewer)
	out.ReviewedAt = clonePtr(req.ReviewedAt)
	return out
}

func cloneAccessRequest(req accessrequest.AccessRequest) accessrequest.AccessRequest {
	out := req
	out.Reason = clonePtr(req.Reason)
	out.DecisionNotes = clonePtr(req.DecisionNotes)
	out.Reviewer = clonePtr(req.Reviewer)
	out.ReviewedAt = clonePtr(req.ReviewedAt)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
