package recordstore

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

type memoryStore struct {
	schemas     map[string]Schema
	mu          sync.Mutex
	collections map[string]*memoryCollection
}

// NewMemoryStore keeps records in process memory. Values go through the same
// column allowlist and coercion as the Postgres store.
func NewMemoryStore(schemas map[string]Schema) Store {
	if schemas == nil {
		schemas = DefaultSchemas
	}
	return &memoryStore{
		schemas:     schemas,
		collections: make(map[string]*memoryCollection),
	}
}

func (s *memoryStore) Collection(name string) (Collection, error) {
	schema, ok := s.schemas[name]
	if !ok {
		return nil, errors.Wrap(ErrUnknownCollection, name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		c = &memoryCollection{
			name:    name,
			schema:  schema,
			storage: NewSafeMap[string, memoryRow](),
		}
		s.collections[name] = c
	}
	return c, nil
}

type memoryRow struct {
	seq    int64
	record Record
}

type memoryCollection struct {
	name    string
	schema  Schema
	seq     atomic.Int64
	storage *SafeMap[string, memoryRow]
}

func (c *memoryCollection) Name() string {
	return c.name
}

func (c *memoryCollection) values(payload Record) (Record, error) {
	fields, values, err := c.schema.writable(payload)
	if err != nil {
		return nil, err
	}
	out := make(Record, len(fields))
	for i, f := range fields {
		out[f] = normalize(values[i])
	}
	return out, nil
}

func (c *memoryCollection) Insert(_ context.Context, payload Record) (Record, error) {
	rec, err := c.values(payload)
	if err != nil {
		return nil, &WriteError{Collection: c.name, Op: "insert", Err: err}
	}
	id := payload.ID()
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now().UTC()
	rec["id"] = id
	rec["created_at"] = now
	rec["updated_at"] = now
	c.storage.Set(id, memoryRow{seq: c.seq.Add(1), record: rec})
	return clone(rec), nil
}

func (c *memoryCollection) Update(_ context.Context, id string, payload Record) (Record, error) {
	changes, err := c.values(payload)
	if err != nil {
		return nil, &WriteError{Collection: c.name, Op: "update", Err: err}
	}
	row, found := c.storage.Update(id, func(row memoryRow) memoryRow {
		next := clone(row.record)
		for k, v := range changes {
			next[k] = v
		}
		next["updated_at"] = time.Now().UTC()
		row.record = next
		return row
	})
	if !found {
		return nil, errors.Wrapf(ErrNotFound, "%s %s", c.name, id)
	}
	return clone(row.record), nil
}

func (c *memoryCollection) Delete(_ context.Context, id string) error {
	if !c.storage.Delete(id) {
		return errors.Wrapf(ErrNotFound, "%s %s", c.name, id)
	}
	return nil
}

func (c *memoryCollection) Get(_ context.Context, id string) (Record, error) {
	row, found := c.storage.Get(id)
	if !found {
		return nil, nil
	}
	return clone(row.record), nil
}

func (c *memoryCollection) List(_ context.Context, params ListParams) ([]Record, error) {
	filter := make(map[string]any, len(params.Filter))
	for k, v := range params.Filter {
		kind, ok := c.schema.Columns[k]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownField, "%s.%s", c.name, k)
		}
		if v == nil {
			filter[k] = nil
			continue
		}
		coerced, err := coerce(kind, v)
		if err != nil {
			return nil, errors.Wrapf(err, "filter %s", k)
		}
		filter[k] = normalize(coerced)
	}
	for _, o := range params.OrderBy {
		if _, ok := c.schema.Columns[o.Field]; !ok {
			return nil, errors.Wrapf(ErrUnknownField, "%s.%s", c.name, o.Field)
		}
	}

	rows := c.storage.Values()
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		if matches(row.record, filter) {
			out = append(out, clone(row.record))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		for _, o := range params.OrderBy {
			cmp := compareValues(out[i][o.Field], out[j][o.Field])
			if cmp == 0 {
				continue
			}
			if o.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	if params.Limit > 0 && len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, nil
}

func matches(rec Record, filter map[string]any) bool {
	for k, want := range filter {
		got := rec[k]
		if want == nil {
			if got != nil {
				return false
			}
			continue
		}
		if got == nil || compareValues(got, want) != 0 {
			return false
		}
	}
	return true
}

func clone(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}
