package changerequest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tablemaster/tablemaster/modules/changes/domain/snapshot"
)

// Payload is the typed view of the snapshot an approved request writes. Each
// entity type has its own variant with an explicit field set.
type Payload interface {
	EntityType() EntityType
	// Fields returns the projected snapshot; callers may mutate it.
	Fields() *snapshot.Object
	isPayload()
}

var (
	tableFields = []string{
		"table_number", "section", "guest_count", "status", "notes", "user_id",
	}
	menuItemFields = []string{
		"name", "description", "category_id", "category", "category_slug", "category_name",
		"price", "currency", "allergens", "common_mods", "is_unavailable",
		"country", "origin", "cut", "weight_oz", "aging_days", "notes",
	}
	prefixedMenuFields = []string{
		"name", "description", "price", "courses", "is_active",
	}
)

type TablePayload struct {
	fields *snapshot.Object
}

func (*TablePayload) EntityType() EntityType     { return EntityTable }
func (p *TablePayload) Fields() *snapshot.Object { return p.fields }
func (*TablePayload) isPayload()                 {}

// MenuItemPayload also carries category_slug and category_name. They are
// reference fields used to resolve category_id and are never written.
type MenuItemPayload struct {
	fields *snapshot.Object
}

func (*MenuItemPayload) EntityType() EntityType     { return EntityMenuItem }
func (p *MenuItemPayload) Fields() *snapshot.Object { return p.fields }
func (*MenuItemPayload) isPayload()                 {}

// CategoryID returns the category_id carried by the payload, if any.
func (p *MenuItemPayload) CategoryID() string {
	v, _ := p.fields.Get("category_id")
	return strings.TrimSpace(toString(v))
}

// CategoryRefs returns the non-empty slug and name references in lookup order.
func (p *MenuItemPayload) CategoryRefs() []string {
	return CategoryRefs(p.fields)
}

type PrefixedMenuPayload struct {
	fields *snapshot.Object
}

func (*PrefixedMenuPayload) EntityType() EntityType     { return EntityPrefixedMenu }
func (p *PrefixedMenuPayload) Fields() *snapshot.Object { return p.fields }
func (*PrefixedMenuPayload) isPayload()                 {}

// NewPayload projects obj onto the field set of entityType. A nil obj yields an
// empty payload.
func NewPayload(entityType EntityType, obj *snapshot.Object) (Payload, error) {
	switch entityType {
	case EntityTable:
		return &TablePayload{fields: project(obj, tableFields)}, nil
	case EntityMenuItem:
		return &MenuItemPayload{fields: project(obj, menuItemFields)}, nil
	case EntityPrefixedMenu:
		return &PrefixedMenuPayload{fields: project(obj, prefixedMenuFields)}, nil
	}
	return nil, &UnsupportedEntityError{EntityType: string(entityType)}
}

func project(obj *snapshot.Object, allowed []string) *snapshot.Object {
	allow := make(map[string]struct{}, len(allowed))
	for _, k := range allowed {
		allow[k] = struct{}{}
	}
	out := snapshot.New()
	for _, k := range obj.Keys() {
		if _, ok := allow[k]; !ok {
			continue
		}
		v, _ := obj.Get(k)
		out.Set(k, v)
	}
	return out.Clone()
}

// CategoryRefs returns the category slug references of a menu item snapshot,
// checked in the order category, category_slug, category_name.
func CategoryRefs(obj *snapshot.Object) []string {
	var refs []string
	for _, k := range []string{"category", "category_slug", "category_name"} {
		if s := strings.TrimSpace(obj.String(k)); s != "" {
			refs = append(refs, s)
		}
	}
	return refs
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
