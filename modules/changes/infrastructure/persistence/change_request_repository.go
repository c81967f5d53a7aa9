package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/tablemaster/tablemaster/modules/changes/domain/changerequest"
	"github.com/tablemaster/tablemaster/modules/changes/domain/snapshot"
	"github.com/tablemaster/tablemaster/pkg/composables"
	"github.com/tablemaster/tablemaster/pkg/repo"
)

const changeRequestsTable = "change_requests"

type pgChangeRequestRepository struct{}

// NewChangeRequestRepository constructs a Postgres-backed repository.
func NewChangeRequestRepository() changerequest.Repository {
	return &pgChangeRequestRepository{}
}

func (r *pgChangeRequestRepository) Create(ctx context.Context, req *changerequest.ChangeRequest) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	before, err := snapshotArg(req.Before)
	if err != nil {
		return errors.Wrap(err, "encode before_data")
	}
	after, err := snapshotArg(req.After)
	if err != nil {
		return errors.Wrap(err, "encode after_data")
	}

	fields := []string{
		"user_id",
		"email",
		"full_name",
		"entity_type",
		"entity_id",
		"action",
		"before_data",
		"after_data",
		"decision_notes",
		"status",
	}
	args := []interface{}{
		req.RequestedBy.ID,
		repoStringOrNull(req.RequestedBy.Email),
		repoStringOrNull(req.RequestedBy.FullName),
		string(req.EntityType),
		repoStringPointer(req.EntityID),
		string(req.Action),
		before,
		after,
		repoStringPointer(req.DecisionNotes),
		string(req.Status),
	}

	query := repo.Insert(changeRequestsTable, fields, "id", "created_at")
	if err := tx.QueryRow(ctx, query, args...).Scan(&req.ID, &req.CreatedAt); err != nil {
		return errors.Wrap(err, "insert change_requests")
	}
	req.CreatedAt = req.CreatedAt.UTC()
	return nil
}

func (r *pgChangeRequestRepository) GetByID(ctx context.Context, id string) (*changerequest.ChangeRequest, error) {
	if !isUUID(id) {
		return nil, changerequest.ErrNotFound
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	query := repo.Join("SELECT", changeRequestColumns(), "FROM", changeRequestsTable, "WHERE id = $1")
	req, err := scanChangeRequest(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, changerequest.ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

func (r *pgChangeRequestRepository) List(ctx context.Context, params changerequest.FindParams) ([]changerequest.ChangeRequest, int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}

	where, args := buildChangeRequestFilters(params)
	selectQuery := repo.Join(
		"SELECT", changeRequestColumns(),
		"FROM", changeRequestsTable,
		repo.JoinWhere(where...),
		"ORDER BY created_at ASC, id ASC",
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)

	rows, err := tx.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list change requests")
	}
	defer rows.Close()

	var results []changerequest.ChangeRequest
	for rows.Next() {
		req, err := scanChangeRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	countQuery := repo.Join("SELECT COUNT(1) FROM", changeRequestsTable, repo.JoinWhere(where...))
	var total int64
	if err := tx.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "count change requests")
	}
	return results, total, nil
}

func (r *pgChangeRequestRepository) UpdateStatus(ctx context.Context, id string, params changerequest.UpdateStatusParams) error {
	if !isUUID(id) {
		return changerequest.ErrNotFound
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	fields := []string{"status"}
	args := []interface{}{string(params.Status)}
	addField := func(column string, value interface{}) {
		fields = append(fields, column)
		args = append(args, value)
	}

	if !params.ReviewerID.IsUnset() {
		addField("reviewer_id", nullableStringArg(params.ReviewerID))
	}
	if !params.ReviewerEmail.IsUnset() {
		addField("reviewer_email", nullableStringArg(params.ReviewerEmail))
	}
	if !params.DecisionNotes.IsUnset() {
		addField("decision_notes", nullableStringArg(params.DecisionNotes))
	}
	if !params.ReviewedAt.IsUnset() {
		addField("reviewed_at", nullableTimeArg(params.ReviewedAt))
	}
	if !params.EntityID.IsUnset() {
		addField("entity_id", nullableStringArg(params.EntityID))
	}

	query := repo.Update(
		changeRequestsTable,
		fields,
		fmt.Sprintf("id = $%d", len(fields)+1),
		fmt.Sprintf("status = '%s'", changerequest.StatusPending),
	)
	args = append(args, id)

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "update change request status")
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM change_requests WHERE id = $1)", id).Scan(&exists); err != nil {
			return errors.Wrap(err, "check change request")
		}
		if !exists {
			return changerequest.ErrNotFound
		}
		return changerequest.ErrNotPending
	}
	return nil
}

func changeRequestColumns() string {
	return strings.Join([]string{
		"id",
		"user_id",
		"email",
		"full_name",
		"entity_type",
		"entity_id",
		"action",
		"before_data",
		"after_data",
		"decision_notes",
		"status",
		"reviewer_id",
		"reviewer_email",
		"created_at",
		"reviewed_at",
	}, ", ")
}

func scanChangeRequest(row pgx.Row) (*changerequest.ChangeRequest, error) {
	var (
		req           changerequest.ChangeRequest
		email         sql.NullString
		fullName      sql.NullString
		entityType    string
		entityID      sql.NullString
		action        string
		before        []byte
		after         []byte
		notes         sql.NullString
		status        string
		reviewerID    sql.NullString
		reviewerEmail sql.NullString
		reviewedAt    sql.NullTime
	)

	err := row.Scan(
		&req.ID,
		&req.RequestedBy.ID,
		&email,
		&fullName,
		&entityType,
		&entityID,
		&action,
		&before,
		&after,
		&notes,
		&status,
		&reviewerID,
		&reviewerEmail,
		&req.CreatedAt,
		&reviewedAt,
	)
	if err != nil {
		return nil, errors.Wrap(err, "scan change request")
	}

	req.RequestedBy.Email = email.String
	req.RequestedBy.FullName = fullName.String
	req.EntityType = changerequest.EntityType(entityType)
	req.EntityID = stringFromNull(entityID)
	req.Action = changerequest.Action(action)
	req.DecisionNotes = stringFromNull(notes)
	req.Status = changerequest.Status(status)
	req.Reviewer = reviewerFromNull(reviewerID, reviewerEmail)
	req.CreatedAt = req.CreatedAt.UTC()
	req.ReviewedAt = timeFromNull(reviewedAt)

	if req.Before, err = snapshot.Parse(before); err != nil {
		return nil, errors.Wrap(err, "decode before_data")
	}
	if req.After, err = snapshot.Parse(after); err != nil {
		return nil, errors.Wrap(err, "decode after_data")
	}
	return &req, nil
}

func buildChangeRequestFilters(params changerequest.FindParams) ([]string, []interface{}) {
	conditions := []string{"1 = 1"}
	args := []interface{}{}

	addCondition := func(cond string, value interface{}) {
		conditions = append(conditions, fmt.Sprintf(cond, len(args)+1))
		args = append(args, value)
	}

	if len(params.Statuses) > 0 {
		statuses := make([]string, len(params.Statuses))
		for i, s := range params.Statuses {
			statuses[i] = string(s)
		}
		addCondition("status = ANY($%d)", statuses)
	}
	if params.EntityType != "" {
		addCondition("entity_type = $%d", string(params.EntityType))
	}
	if params.UserID != "" {
		addCondition("user_id = $%d", params.UserID)
	}
	return conditions, args
}
