package services

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/tablemaster/tablemaster/modules/changes/domain/changerequest"
	"github.com/tablemaster/tablemaster/modules/changes/domain/snapshot"
	"github.com/tablemaster/tablemaster/pkg/composables"
	"github.com/tablemaster/tablemaster/pkg/recordstore"
)

const (
	steakCategorySlug = "steaks"
	defaultCut        = "Unspecified"
)

// Country codes steaks are usually sourced from. Other values are accepted.
var knownSteakCountries = map[string]struct{}{
	"CA": {}, "US": {}, "AU": {}, "JP": {}, "NZ": {}, "UY": {}, "AR": {}, "IE": {}, "GB": {},
}

// CategoryLookup resolves menu categories for commit-time normalization.
type CategoryLookup interface {
	// CategoryIDBySlug matches ref against category slugs and names, ignoring case.
	CategoryIDBySlug(ctx context.Context, ref string) (string, bool, error)
	CategorySlugByID(ctx context.Context, id string) (string, bool, error)
}

// Mutation is a write to apply to the record store.
type Mutation struct {
	EntityType changerequest.EntityType
	Action     changerequest.Action
	// TargetID identifies the record for update, availability and delete.
	TargetID string
	Before   *snapshot.Object
	After    *snapshot.Object
}

// Committer writes approved or privileged mutations to the record store.
type Committer struct {
	store      recordstore.Store
	categories CategoryLookup
}

func NewCommitter(store recordstore.Store, categories CategoryLookup) *Committer {
	return &Committer{store: store, categories: categories}
}

// Apply normalizes and writes m. For a creation it returns the id of the new record.
func (c *Committer) Apply(ctx context.Context, m Mutation) (string, error) {
	payload, err := changerequest.NewPayload(m.EntityType, m.After)
	if err != nil {
		return "", err
	}

	var collection string
	switch p := payload.(type) {
	case *changerequest.TablePayload:
		collection = recordstore.Tables
	case *changerequest.MenuItemPayload:
		collection = recordstore.MenuItems
		if m.Action != changerequest.ActionDelete {
			if err := c.normalizeMenuItem(ctx, p, m.Before, m.Action); err != nil {
				return "", err
			}
		}
	case *changerequest.PrefixedMenuPayload:
		collection = recordstore.PrefixedMenus
	default:
		return "", &changerequest.UnsupportedEntityError{EntityType: string(m.EntityType)}
	}

	coll, err := c.store.Collection(collection)
	if err != nil {
		return "", err
	}

	id := strings.TrimSpace(m.TargetID)
	if id == "" && m.Action != changerequest.ActionCreate {
		return "", &changerequest.ValidationError{Field: "entity_id", Message: "missing entity id"}
	}

	if p, ok := payload.(*changerequest.TablePayload); ok && m.Action != changerequest.ActionDelete {
		if err := checkTableNumber(ctx, coll, p.Fields(), id, m.Action); err != nil {
			return "", err
		}
	}

	record := recordstore.Record(payload.Fields().ToMap())
	switch m.Action {
	case changerequest.ActionCreate:
		created, err := coll.Insert(ctx, record)
		if err != nil {
			return "", err
		}
		return created.ID(), nil
	case changerequest.ActionUpdate, changerequest.ActionAvailability:
		if _, err := coll.Update(ctx, id, record); err != nil {
			return "", err
		}
		return id, nil
	case changerequest.ActionDelete:
		if err := coll.Delete(ctx, id); err != nil {
			return "", err
		}
		return id, nil
	}
	return "", &changerequest.ValidationError{Field: "action", Message: "unsupported action " + string(m.Action)}
}

// checkTableNumber trims table_number and rejects a number another table
// already uses, ignoring case. A creation must carry one.
func checkTableNumber(
	ctx context.Context,
	tables recordstore.Collection,
	fields *snapshot.Object,
	id string,
	action changerequest.Action,
) error {
	if !fields.Has("table_number") && action != changerequest.ActionCreate {
		return nil
	}
	number := strings.TrimSpace(stringValue(fields, "table_number"))
	if number == "" {
		return &changerequest.ValidationError{Field: "table_number", Message: "table number is required"}
	}
	fields.Set("table_number", number)

	records, err := tables.List(ctx, recordstore.ListParams{})
	if err != nil {
		return err
	}
	for _, rec := range records {
		if rec.ID() == id {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(rec.String("table_number")), number) {
			return &changerequest.ValidationError{Field: "table_number", Message: "table number " + number + " is already in use"}
		}
	}
	return nil
}

func (c *Committer) normalizeMenuItem(
	ctx context.Context,
	p *changerequest.MenuItemPayload,
	before *snapshot.Object,
	action changerequest.Action,
) error {
	fields := p.Fields()

	categoryID, err := c.resolveCategory(ctx, p, before)
	if err != nil {
		return err
	}
	slug, err := c.categorySlug(ctx, categoryID, p, before)
	if err != nil {
		return err
	}

	if strings.EqualFold(slug, steakCategorySlug) {
		normalizeSteak(ctx, fields, action)
	} else {
		clearSteakFields(fields)
	}

	fields.Delete("category_slug")
	fields.Delete("category_name")
	fields.Set("category_id", categoryID)
	if slug != "" {
		fields.Set("category", slug)
	}
	return nil
}

// resolveCategory picks the category the item ends up in. On an update whose
// after names a category that before does not, that name wins over a
// category_id copied along from before. Otherwise a category_id carried by
// after is used, then slug references in after, then the same in before.
func (c *Committer) resolveCategory(ctx context.Context, p *changerequest.MenuItemPayload, before *snapshot.Object) (string, error) {
	afterID := p.CategoryID()
	if before != nil {
		beforeID := strings.TrimSpace(stringValue(before, "category_id"))
		if edited := changedRefs(p.CategoryRefs(), changerequest.CategoryRefs(before)); len(edited) > 0 {
			if afterID != "" && afterID != beforeID {
				return afterID, nil
			}
			id, err := c.lookupRefs(ctx, edited)
			if err != nil || id != "" {
				return id, err
			}
			return "", &changerequest.ValidationError{Field: "category", Message: "unknown category " + edited[0]}
		}
	}
	if afterID != "" {
		return afterID, nil
	}
	if id, err := c.lookupRefs(ctx, p.CategoryRefs()); err != nil || id != "" {
		return id, err
	}
	if id := strings.TrimSpace(stringValue(before, "category_id")); id != "" {
		return id, nil
	}
	if id, err := c.lookupRefs(ctx, changerequest.CategoryRefs(before)); err != nil || id != "" {
		return id, err
	}
	return "", &changerequest.ValidationError{Field: "category", Message: "category is required"}
}

// changedRefs returns the references of after that before does not carry, ignoring case.
func changedRefs(after, before []string) []string {
	var out []string
	for _, ref := range after {
		known := false
		for _, b := range before {
			if strings.EqualFold(ref, b) {
				known = true
				break
			}
		}
		if !known {
			out = append(out, ref)
		}
	}
	return out
}

func (c *Committer) lookupRefs(ctx context.Context, refs []string) (string, error) {
	for _, ref := range refs {
		id, ok, err := c.categories.CategoryIDBySlug(ctx, ref)
		if err != nil {
			return "", err
		}
		if ok {
			return id, nil
		}
	}
	return "", nil
}

// categorySlug names the category the item ends up in. The stored category is
// authoritative; slug references cover categories the lookup cannot see.
func (c *Committer) categorySlug(ctx context.Context, categoryID string, p *changerequest.MenuItemPayload, before *snapshot.Object) (string, error) {
	slug, ok, err := c.categories.CategorySlugByID(ctx, categoryID)
	if err != nil {
		return "", err
	}
	if ok {
		return slug, nil
	}
	if refs := p.CategoryRefs(); len(refs) > 0 {
		return strings.ToLower(refs[0]), nil
	}
	if refs := changerequest.CategoryRefs(before); len(refs) > 0 {
		return strings.ToLower(refs[0]), nil
	}
	return "", nil
}

func normalizeSteak(ctx context.Context, fields *snapshot.Object, action changerequest.Action) {
	logger := composables.UseLogger(ctx)

	if fields.Has("country") {
		country := strings.ToUpper(strings.TrimSpace(stringValue(fields, "country")))
		if country == "" {
			fields.Set("country", nil)
		} else {
			if _, ok := knownSteakCountries[country]; !ok {
				logger.WithField("country", country).Info("steak country outside the usual sourcing list")
			}
			fields.Set("country", country)
		}
	}
	if fields.Has("origin") {
		fields.Set("origin", trimmedOrNil(stringValue(fields, "origin")))
	}
	if fields.Has("cut") || action == changerequest.ActionCreate {
		cut := strings.TrimSpace(stringValue(fields, "cut"))
		if cut == "" {
			cut = defaultCut
		}
		fields.Set("cut", cut)
	}
	for _, key := range []string{"weight_oz", "aging_days"} {
		if !fields.Has(key) {
			continue
		}
		v, _ := fields.Get(key)
		n, ok := numberOrNil(v)
		if !ok {
			logger.WithField("field", key).WithField("value", v).Warn("dropping non-numeric steak attribute")
		}
		fields.Set(key, n)
	}
}

func clearSteakFields(fields *snapshot.Object) {
	for _, key := range []string{"country", "origin", "weight_oz"} {
		fields.Set(key, nil)
	}
	for _, key := range []string{"cut", "aging_days", "notes"} {
		if fields.Has(key) {
			fields.Set(key, nil)
		}
	}
}

// numberOrNil converts v to a number. Empty strings and nulls become nil; ok
// is false only when a non-empty value could not be parsed.
func numberOrNil(v any) (any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, true
	case json.Number:
		if _, err := t.Float64(); err != nil {
			return nil, false
		}
		return t, true
	case float64, float32, int, int32, int64:
		return t, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, true
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return nil, false
		}
		return json.Number(s), true
	}
	return nil, false
}

func trimmedOrNil(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}

// stringValue reads key as text, rendering numbers by their literal.
func stringValue(obj *snapshot.Object, key string) string {
	v, _ := obj.Get(key)
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	}
	return ""
}
