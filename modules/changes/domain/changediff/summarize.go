// Package changediff renders human-readable summaries of the difference between
// two entity snapshots, as shown to reviewers in the admin inbox.
package changediff

import (
	"strings"

	"github.com/tablemaster/tablemaster/modules/changes/domain/snapshot"
)

const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"

	// Placeholder for empty values.
	Empty = "—"

	NoChanges = "No field changes detected"
	Created   = "Created"

	maxCreateLines = 4
	maxArrayItems  = 3
)

var createExcluded = map[string]struct{}{
	"id":         {},
	"created_at": {},
	"updated_at": {},
	"user_id":    {},
	"email":      {},
	"full_name":  {},
	"entity_id":  {},
}

var updateExcluded = map[string]struct{}{
	"id":             {},
	"created_at":     {},
	"updated_at":     {},
	"user_id":        {},
	"email":          {},
	"full_name":      {},
	"entity_id":      {},
	"reviewer_id":    {},
	"reviewer_email": {},
}

// Summarize describes how after differs from before. A nil before with a
// non-nil after is a creation, the reverse a deletion. Lines follow key order.
func Summarize(before, after *snapshot.Object, action string) []string {
	switch {
	case before == nil && after != nil:
		return summarizeCreate(after)
	case before != nil && after == nil:
		return []string{"Deleted " + deletedLabel(before)}
	}
	return summarizeUpdate(before, after, action)
}

func summarizeCreate(after *snapshot.Object) []string {
	var lines []string
	for _, k := range ownKeys(after) {
		if _, skip := createExcluded[k]; skip {
			continue
		}
		v, _ := after.Get(k)
		lines = append(lines, k+": "+Format(v))
		if len(lines) == maxCreateLines {
			break
		}
	}
	if len(lines) == 0 {
		return []string{Created}
	}
	return lines
}

func deletedLabel(before *snapshot.Object) string {
	if v, _ := before.Get("name"); truthy(v) {
		return toJSString(v)
	}
	if v, _ := before.Get("id"); truthy(v) {
		return toJSString(v)
	}
	return "item"
}

func summarizeUpdate(before, after *snapshot.Object, action string) []string {
	var lines []string
	for _, k := range unionKeys(before, after) {
		if _, skip := updateExcluded[k]; skip {
			continue
		}
		// Fields dropped from after are left untouched by the write.
		if !after.Has(k) {
			continue
		}
		prev, _ := before.Get(k)
		next, _ := after.Get(k)
		if Same(prev, next) {
			continue
		}
		_, prevArr := prev.([]any)
		_, nextArr := next.([]any)
		if prevArr || nextArr {
			if desc, ok := describeArrayChange(prev, next); ok {
				lines = append(lines, k+": "+desc)
				continue
			}
		}
		lines = append(lines, k+": "+Format(prev)+" → "+Format(next))
	}
	if len(lines) == 0 && action == ActionUpdate {
		return []string{NoChanges}
	}
	return lines
}

func unionKeys(before, after *snapshot.Object) []string {
	var keys []string
	seen := make(map[string]struct{})
	for _, o := range []*snapshot.Object{before, after} {
		if o == nil {
			continue
		}
		for _, k := range ownKeys(o) {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	return keys
}

// Same reports whether two field values count as unchanged. Nullish values are
// equal to each other, arrays compare as sorted sets, everything else by its
// JSON text. Values that cannot be serialized never compare equal.
func Same(a, b any) bool {
	if isNullish(a) && isNullish(b) {
		return true
	}
	arrA, okA := a.([]any)
	arrB, okB := b.([]any)
	if okA && okB {
		if len(arrA) == 0 && len(arrB) == 0 {
			return true
		}
		sa, ok1 := stringify(sortDefault(uniq(arrA)))
		sb, ok2 := stringify(sortDefault(uniq(arrB)))
		return ok1 && ok2 && sa == sb
	}
	sa, ok1 := stringify(a)
	sb, ok2 := stringify(b)
	return ok1 && ok2 && sa == sb
}

// Format renders a single value for a summary line.
func Format(v any) string {
	if isNullish(v) {
		return Empty
	}
	switch t := v.(type) {
	case []any:
		items := uniq(t)
		head := items
		if len(head) > maxArrayItems {
			head = head[:maxArrayItems]
		}
		preview := joinValues(head, ", ")
		if len(items) > maxArrayItems {
			return preview + ", …"
		}
		if preview == "" {
			return Empty
		}
		return preview
	case *snapshot.Object:
		if name, _ := t.Get("name"); truthy(name) {
			return toJSString(name)
		}
		s, ok := stringify(t)
		if !ok {
			return "[object]"
		}
		return truncate(s, 60, 57)
	}
	return truncate(toJSString(v), 40, 37)
}

// describeArrayChange lists members added to and removed from an array field.
// Non-array sides count as empty. It reports false when membership is unchanged.
func describeArrayChange(prev, next any) (string, bool) {
	prevItems, _ := prev.([]any)
	nextItems, _ := next.([]any)
	prevSet := uniq(prevItems)
	nextSet := uniq(nextItems)

	added := difference(nextSet, prevSet)
	removed := difference(prevSet, nextSet)
	if len(added) == 0 && len(removed) == 0 {
		return "", false
	}
	var parts []string
	if len(added) > 0 {
		parts = append(parts, "+"+joinValues(head(added), ", "))
	}
	if len(removed) > 0 {
		parts = append(parts, "-"+joinValues(head(removed), ", "))
	}
	return strings.Join(parts, " "), true
}

func difference(from, other []any) []any {
	keys := make(map[string]struct{}, len(other))
	for i, item := range other {
		keys[setKey(item, -1-i)] = struct{}{}
	}
	var out []any
	for i, item := range from {
		if _, ok := keys[setKey(item, len(other)+i)]; !ok {
			out = append(out, item)
		}
	}
	return out
}

func head(items []any) []any {
	if len(items) > maxArrayItems {
		return items[:maxArrayItems]
	}
	return items
}
