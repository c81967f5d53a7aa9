package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/tablemaster/tablemaster/modules/changes/domain/snapshot"
	"github.com/tablemaster/tablemaster/modules/changes/infrastructure/persistence"
	"github.com/tablemaster/tablemaster/modules/changes/services"
	"github.com/tablemaster/tablemaster/pkg/composables"
	"github.com/tablemaster/tablemaster/pkg/eventbus"
	"github.com/tablemaster/tablemaster/pkg/recordstore"
)

var (
	editor = composables.Actor{ID: "user-1", Email: "server@example.com", FullName: "Sam Server"}
	admin  = composables.Actor{ID: "admin-1", Email: "admin@example.com", FullName: "Alex Admin", Role: "admin", Admin: true}
)

type fixture struct {
	store      recordstore.Store
	bus        eventbus.EventBus
	requests   *services.ChangeRequestService
	access     *services.AccessRequestService
	edits      *services.EditService
	categories map[string]string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithStore(t, recordstore.NewMemoryStore(recordstore.DefaultSchemas))
}

// newFixtureWithStore seeds categories through base and writes entities through store.
func newFixtureWithStore(t *testing.T, store recordstore.Store) *fixture {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	bus := eventbus.NewEventPublisher(logger)

	f := &fixture{store: store, bus: bus, categories: map[string]string{}}
	cats, err := unwrapStore(store).Collection(recordstore.MenuCategories)
	require.NoError(t, err)
	for _, slug := range []string{"appetizers", "steaks", "desserts"} {
		rec, err := cats.Insert(context.Background(), recordstore.Record{"slug": slug, "name": strings.ToUpper(slug[:1]) + slug[1:]})
		require.NoError(t, err)
		f.categories[slug] = rec.ID()
	}

	committer := services.NewCommitter(store, storeCategories{store: unwrapStore(store)})
	tx := composables.NoopTransactor{}
	f.requests = services.NewChangeRequestService(persistence.NewMemoryChangeRequestRepository(nil), committer, tx, bus)
	f.access = services.NewAccessRequestService(persistence.NewMemoryAccessRequestRepository(nil), bus)
	f.edits = services.NewEditService(f.requests, committer, tx, bus)
	return f
}

func as(actor composables.Actor) context.Context {
	return composables.WithActor(context.Background(), actor)
}

func obj(t *testing.T, raw string) *snapshot.Object {
	t.Helper()
	o, err := snapshot.Parse([]byte(raw))
	require.NoError(t, err)
	return o
}

func (f *fixture) collection(t *testing.T, name string) recordstore.Collection {
	t.Helper()
	c, err := unwrapStore(f.store).Collection(name)
	require.NoError(t, err)
	return c
}

// storeCategories resolves categories straight from the record store.
type storeCategories struct {
	store recordstore.Store
}

func (c storeCategories) CategoryIDBySlug(ctx context.Context, ref string) (string, bool, error) {
	coll, err := c.store.Collection(recordstore.MenuCategories)
	if err != nil {
		return "", false, err
	}
	records, err := coll.List(ctx, recordstore.ListParams{})
	if err != nil {
		return "", false, err
	}
	for _, rec := range records {
		if strings.EqualFold(rec.String("slug"), ref) || strings.EqualFold(rec.String("name"), ref) {
			return rec.ID(), true, nil
		}
	}
	return "", false, nil
}

func (c storeCategories) CategorySlugByID(ctx context.Context, id string) (string, bool, error) {
	coll, err := c.store.Collection(recordstore.MenuCategories)
	if err != nil {
		return "", false, err
	}
	rec, err := coll.Get(ctx, id)
	if err != nil || rec == nil {
		return "", false, err
	}
	return rec.String("slug"), true, nil
}

// failingStore rejects every write to the wrapped store's collections.
type failingStore struct {
	recordstore.Store
	err error
}

func (s failingStore) Collection(name string) (recordstore.Collection, error) {
	c, err := s.Store.Collection(name)
	if err != nil {
		return nil, err
	}
	return failingCollection{Collection: c, err: s.err}, nil
}

type failingCollection struct {
	recordstore.Collection
	err error
}

func (c failingCollection) Insert(context.Context, recordstore.Record) (recordstore.Record, error) {
	return nil, &recordstore.WriteError{Collection: c.Name(), Op: "insert", Err: c.err}
}

func (c failingCollection) Update(context.Context, string, recordstore.Record) (recordstore.Record, error) {
	return nil, &recordstore.WriteError{Collection: c.Name(), Op: "update", Err: c.err}
}

func (c failingCollection) Delete(context.Context, string) error {
	return &recordstore.WriteError{Collection: c.Name(), Op: "delete", Err: c.err}
}

func unwrapStore(store recordstore.Store) recordstore.Store {
	if f, ok := store.(failingStore); ok {
		return f.Store
	}
	return store
}

var errDiskFull = errors.New("disk full")
