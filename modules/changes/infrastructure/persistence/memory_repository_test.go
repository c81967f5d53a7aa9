package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tablemaster/tablemaster/modules/changes/domain/accessrequest"
	"github.com/tablemaster/tablemaster/modules/changes/domain/changerequest"
	"github.com/tablemaster/tablemaster/modules/changes/infrastructure/persistence"
)

func fixedClock(times ...time.Time) persistence.Clock {
	i := 0
	return func() time.Time {
		t := times[i%len(times)]
		i++
		return t
	}
}

func TestMemoryChangeRequestRepository_ListOrdersOldestFirst(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := persistence.NewMemoryChangeRequestRepository(fixedClock(
		base.Add(2*time.Minute), base, base, base.Add(time.Minute),
	))
	ctx := context.Background()

	var ids []string
	for i := 0; i < 4; i++ {
		req := newChangeRequest()
		require.NoError(t, repo.Create(ctx, req))
		ids = append(ids, req.ID)
	}

	list, total, err := repo.List(ctx, changerequest.FindParams{
		Statuses: []changerequest.Status{changerequest.StatusPending},
	})
	require.NoError(t, err)
	require.Equal(t, int64(4), total)
	got := make([]string, len(list))
	for i, req := range list {
		got[i] = req.ID
	}
	// Equal timestamps keep insertion order.
	require.Equal(t, []string{ids[1], ids[2], ids[3], ids[0]}, got)

	page, total, err := repo.List(ctx, changerequest.FindParams{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Equal(t, int64(4), total)
	require.Len(t, page, 2)
	require.Equal(t, ids[2], page[0].ID)
}

func TestMemoryChangeRequestRepository_UpdateStatusOnlyOnce(t *testing.T) {
	repo := persistence.NewMemoryChangeRequestRepository(nil)
	ctx := context.Background()
	req := newChangeRequest()
	require.NoError(t, repo.Create(ctx, req))

	now := time.Now().UTC()
	require.NoError(t, repo.UpdateStatus(ctx, req.ID, changerequest.UpdateStatusParams{
		Status:        changerequest.StatusApproved,
		ReviewerID:    changerequest.NewNullableValue("admin-1"),
		ReviewerEmail: changerequest.NewNullableValue("admin@example.com"),
		ReviewedAt:    changerequest.NewNullableValue(now),
		EntityID:      changerequest.NewNullableValue("new-id"),
	}))

	found, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, changerequest.StatusApproved, found.Status)
	require.Equal(t, &changerequest.Reviewer{ID: "admin-1", Email: "admin@example.com"}, found.Reviewer)
	require.Equal(t, "new-id", *found.EntityID)
	require.WithinDuration(t, now, *found.ReviewedAt, time.Second)

	err = repo.UpdateStatus(ctx, req.ID, changerequest.UpdateStatusParams{Status: changerequest.StatusRejected})
	require.ErrorIs(t, err, changerequest.ErrNotPending)

	err = repo.UpdateStatus(ctx, "missing", changerequest.UpdateStatusParams{Status: changerequest.StatusRejected})
	require.ErrorIs(t, err, changerequest.ErrNotFound)
}

func TestMemoryChangeRequestRepository_ReturnsCopies(t *testing.T) {
	repo := persistence.NewMemoryChangeRequestRepository(nil)
	ctx := context.Background()
	req := newChangeRequest()
	require.NoError(t, repo.Create(ctx, req))

	req.After.Set("price", 99)
	found, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	v, _ := found.After.Get("price")
	require.NotEqual(t, 99, v)

	found.After.Set("name", "mutated")
	again, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, "Tuna Tartare", again.After.String("name"))
}

func TestMemoryAccessRequestRepository_LatestForUser(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := persistence.NewMemoryAccessRequestRepository(fixedClock(base, base.Add(time.Hour), base.Add(2*time.Hour)))
	ctx := context.Background()

	first := newAccessRequest("user-1")
	other := newAccessRequest("user-2")
	second := newAccessRequest("user-1")
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, other))
	require.NoError(t, repo.Create(ctx, second))

	list, total, err := repo.List(ctx, accessrequest.FindParams{UserID: "user-1", Newest: true, Limit: 1})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, list, 1)
	require.Equal(t, second.ID, list[0].ID)
}

func TestMemoryAccessRequestRepository_UpdateStatusHasNoGuard(t *testing.T) {
	repo := persistence.NewMemoryAccessRequestRepository(nil)
	ctx := context.Background()
	req := newAccessRequest("user-1")
	require.NoError(t, repo.Create(ctx, req))

	require.NoError(t, repo.UpdateStatus(ctx, req.ID, accessrequest.UpdateStatusParams{Status: changerequest.StatusRejected}))
	require.NoError(t, repo.UpdateStatus(ctx, req.ID, accessrequest.UpdateStatusParams{Status: changerequest.StatusApproved}))

	found, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, changerequest.StatusApproved, found.Status)

	_, err = repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, accessrequest.ErrNotFound)
}
