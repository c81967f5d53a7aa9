package services

import (
	"context"
	"strings"

	"github.com/tablemaster/tablemaster/modules/changes/domain/changerequest"
	changeservices "github.com/tablemaster/tablemaster/modules/changes/services"
	"github.com/tablemaster/tablemaster/modules/floor/domain/table"
	"github.com/tablemaster/tablemaster/pkg/composables"
	"github.com/tablemaster/tablemaster/pkg/eventbus"
)

// TableFields is a partial table write. Nil fields keep their stored value.
type TableFields struct {
	TableNumber *string
	Section     *string
	GuestCount  *int
	Status      *string
	Notes       *string
}

type TableService struct {
	repo      table.Repository
	publisher eventbus.EventBus
}

func NewTableService(repo table.Repository, publisher eventbus.EventBus) *TableService {
	return &TableService{repo: repo, publisher: publisher}
}

func (s *TableService) List(ctx context.Context, params table.FindParams) ([]table.Table, error) {
	return s.repo.List(ctx, params)
}

func (s *TableService) ListBySection(ctx context.Context, section string) ([]table.Table, error) {
	return s.repo.List(ctx, table.FindParams{Section: section})
}

func (s *TableService) GetByID(ctx context.Context, id string) (*table.Table, error) {
	return s.repo.GetByID(ctx, id)
}

// Create opens a table for the current actor.
func (s *TableService) Create(ctx context.Context, fields TableFields) (*table.Table, error) {
	actor, err := signedIn(ctx)
	if err != nil {
		return nil, err
	}
	t := &table.Table{UserID: actor.ID}
	if err := s.apply(ctx, t, fields); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.changed(t.ID, changerequest.ActionCreate, actor)
	return t, nil
}

func (s *TableService) Update(ctx context.Context, id string, fields TableFields) (*table.Table, error) {
	actor, err := signedIn(ctx)
	if err != nil {
		return nil, err
	}
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, t, fields); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.changed(t.ID, changerequest.ActionUpdate, actor)
	return t, nil
}

func (s *TableService) Delete(ctx context.Context, id string) error {
	actor, err := signedIn(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(id, changerequest.ActionDelete, actor)
	return nil
}

// apply merges fields into t and enforces the table rules: a number is
// required and unique ignoring case, the guest count is never negative and
// the status defaults to available.
func (s *TableService) apply(ctx context.Context, t *table.Table, fields TableFields) error {
	if fields.TableNumber != nil {
		t.TableNumber = *fields.TableNumber
	}
	t.TableNumber = strings.TrimSpace(t.TableNumber)
	if t.TableNumber == "" {
		return table.ErrNumberRequired
	}
	existing, err := s.repo.List(ctx, table.FindParams{})
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID != t.ID && table.SameNumber(other.TableNumber, t.TableNumber) {
			return table.ErrDuplicateNumber
		}
	}

	if fields.Section != nil {
		t.Section = strings.TrimSpace(*fields.Section)
	}
	if fields.GuestCount != nil {
		t.GuestCount = *fields.GuestCount
	}
	if t.GuestCount < 0 {
		t.GuestCount = 0
	}
	if fields.Status != nil && strings.TrimSpace(*fields.Status) != "" {
		t.Status = strings.TrimSpace(*fields.Status)
	}
	if t.Status == "" {
		t.Status = table.StatusAvailable
	}
	if fields.Notes != nil {
		t.Notes = *fields.Notes
	}
	return nil
}

func (s *TableService) changed(id string, action changerequest.Action, actor composables.Actor) {
	s.publisher.Publish(changeservices.EntityChangedEvent{
		EntityType: changerequest.EntityTable,
		Action:     action,
		RecordID:   id,
		ActorID:    actor.ID,
	})
}

func signedIn(ctx context.Context) (composables.Actor, error) {
	actor, err := composables.UseActor(ctx)
	if err != nil || !actor.IsAuthenticated() {
		return composables.Actor{}, changeservices.ErrUnauthenticated
	}
	return actor, nil
}
