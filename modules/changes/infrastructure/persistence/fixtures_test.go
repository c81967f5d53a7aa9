package persistence_test

import (
	"github.com/tablemaster/tablemaster/modules/changes/domain/accessrequest"
	"github.com/tablemaster/tablemaster/modules/changes/domain/changerequest"
	"github.com/tablemaster/tablemaster/modules/changes/domain/snapshot"
)

func newChangeRequest() *changerequest.ChangeRequest {
	after, err := snapshot.Parse([]byte(`{"name":"Tuna Tartare","category":"appetizers","price":18}`))
	if err != nil {
		panic(err)
	}
	return &changerequest.ChangeRequest{
		RequestedBy: changerequest.Identity{ID: "user-1", Email: "server@example.com", FullName: "Sam Server"},
		EntityType:  changerequest.EntityMenuItem,
		Action:      changerequest.ActionCreate,
		After:       after,
		Status:      changerequest.StatusPending,
	}
}

func newAccessRequest(userID string) *accessrequest.AccessRequest {
	reason := "closing shift lead"
	return &accessrequest.AccessRequest{
		RequestedBy: changerequest.Identity{ID: userID, Email: userID + "@example.com"},
		Reason:      &reason,
		Status:      changerequest.StatusPending,
	}
}
