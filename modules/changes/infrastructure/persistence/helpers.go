package persistence

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/tablemaster/tablemaster/modules/changes/domain/changerequest"
	"github.com/tablemaster/tablemaster/modules/changes/domain/snapshot"
)

func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func snapshotArg(obj *snapshot.Object) (interface{}, error) {
	if obj == nil {
		return nil, nil
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func repoStringOrNull(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

func repoStringPointer(value *string) interface{} {
	if value == nil {
		return nil
	}
	if *value == "" {
		return nil
	}
	return *value
}

func nullableStringArg(n changerequest.Nullable[string]) interface{} {
	if !n.Set || !n.Valid {
		return nil
	}
	return n.Value
}

func nullableTimeArg(n changerequest.Nullable[time.Time]) interface{} {
	if !n.Set || !n.Valid {
		return nil
	}
	return n.Value
}

func stringFromNull(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	v := value.String
	return &v
}

func timeFromNull(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	v := value.Time.UTC()
	return &v
}

func reviewerFromNull(id, email sql.NullString) *changerequest.Reviewer {
	if !id.Valid && !email.Valid {
		return nil
	}
	return &changerequest.Reviewer{ID: id.String, Email: email.String}
}
