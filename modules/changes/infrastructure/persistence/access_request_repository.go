package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/tablemaster/tablemaster/modules/changes/domain/accessrequest"
	"github.com/tablemaster/tablemaster/modules/changes/domain/changerequest"
	"github.com/tablemaster/tablemaster/pkg/composables"
	"github.com/tablemaster/tablemaster/pkg/repo"
)

const accessRequestsTable = "edit_requests"

type pgAccessRequestRepository struct{}

// NewAccessRequestRepository constructs a Postgres-backed repository.
func NewAccessRequestRepository() accessrequest.Repository {
	return &pgAccessRequestRepository{}
}

func (r *pgAccessRequestRepository) Create(ctx context.Context, req *accessrequest.AccessRequest) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	fields := []string{"user_id", "email", "full_name", "reason", "status"}
	args := []interface{}{
		req.RequestedBy.ID,
		repoStringOrNull(req.RequestedBy.Email),
		repoStringOrNull(req.RequestedBy.FullName),
		repoStringPointer(req.Reason),
		string(req.Status),
	}
	query := repo.Insert(accessRequestsTable, fields, "id", "created_at")
	if err := tx.QueryRow(ctx, query, args...).Scan(&req.ID, &req.CreatedAt); err != nil {
		return errors.Wrap(err, "insert edit_requests")
	}
	req.CreatedAt = req.CreatedAt.UTC()
	return nil
}

func (r *pgAccessRequestRepository) GetByID(ctx context.Context, id string) (*accessrequest.AccessRequest, error) {
	if !isUUID(id) {
		return nil, accessrequest.ErrNotFound
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	query := repo.Join("SELECT", accessRequestColumns(), "FROM", accessRequestsTable, "WHERE id = $1")
	req, err := scanAccessRequest(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, accessrequest.ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

func (r *pgAccessRequestRepository) List(ctx context.Context, params accessrequest.FindParams) ([]accessrequest.AccessRequest, int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}

	conditions := []string{"1 = 1"}
	args := []interface{}{}
	if len(params.Statuses) > 0 {
		statuses := make([]string, len(params.Statuses))
		for i, s := range params.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, statuses)
		conditions = append(conditions, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if params.UserID != "" {
		args = append(args, params.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}

	order := "ORDER BY created_at ASC, id ASC"
	if params.Newest {
		order = "ORDER BY created_at DESC, id DESC"
	}
	selectQuery := repo.Join(
		"SELECT", accessRequestColumns(),
		"FROM", accessRequestsTable,
		repo.JoinWhere(conditions...),
		order,
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	rows, err := tx.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list access requests")
	}
	defer rows.Close()

	var results []accessrequest.AccessRequest
	for rows.Next() {
		req, err := scanAccessRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	countQuery := repo.Join("SELECT COUNT(1) FROM", accessRequestsTable, repo.JoinWhere(conditions...))
	var total int64
	if err := tx.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "count access requests")
	}
	return results, total, nil
}

func (r *pgAccessRequestRepository) UpdateStatus(ctx context.Context, id string, params accessrequest.UpdateStatusParams) error {
	if !isUUID(id) {
		return accessrequest.ErrNotFound
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	fields := []string{"status"}
	args := []interface{}{string(params.Status)}
	if !params.ReviewerID.IsUnset() {
		fields = append(fields, "reviewer_id")
		args = append(args, nullableStringArg(params.ReviewerID))
	}
	if !params.ReviewerEmail.IsUnset() {
		fields = append(fields, "reviewer_email")
		args = append(args, nullableStringArg(params.ReviewerEmail))
	}
	if !params.DecisionNotes.IsUnset() {
		fields = append(fields, "decision_notes")
		args = append(args, nullableStringArg(params.DecisionNotes))
	}
	if !params.ReviewedAt.IsUnset() {
		fields = append(fields, "reviewed_at")
		args = append(args, nullableTimeArg(params.ReviewedAt))
	}

	query := repo.Update(accessRequestsTable, fields, fmt.Sprintf("id = $%d", len(fields)+1))
	args = append(args, id)
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "update access request status")
	}
	if tag.RowsAffected() == 0 {
		return accessrequest.ErrNotFound
	}
	return nil
}

func accessRequestColumns() string {
	return strings.Join([]string{
		"id",
		"user_id",
		"email",
		"full_name",
		"reason",
		"status",
		"reviewer_id",
		"reviewer_email",
		"decision_notes",
		"created_at",
		"reviewed_at",
	}, ", ")
}

func scanAccessRequest(row pgx.Row) (*accessrequest.AccessRequest, error) {
	var (
		req           accessrequest.AccessRequest
		email         sql.NullString
		fullName      sql.NullString
		reason        sql.NullString
		status        string
		reviewerID    sql.NullString
		reviewerEmail sql.NullString
		notes         sql.NullString
		reviewedAt    sql.NullTime
	)
	err := row.Scan(
		&req.ID,
		&req.RequestedBy.ID,
		&email,
		&fullName,
		&reason,
		&status,
		&reviewerID,
		&reviewerEmail,
		&notes,
		&req.CreatedAt,
		&reviewedAt,
	)
	if err != nil {
		return nil, errors.Wrap(err, "scan access request")
	}
	req.RequestedBy.Email = email.String
	req.RequestedBy.FullName = fullName.String
	req.Reason = stringFromNull(reason)
	req.Status = changerequest.Status(status)
	req.Reviewer = reviewerFromNull(reviewerID, reviewerEmail)
	req.DecisionNotes = stringFromNull(notes)
	req.CreatedAt = req.CreatedAt.UTC()
	req.ReviewedAt = timeFromNull(reviewedAt)
	return &req, nil
}
