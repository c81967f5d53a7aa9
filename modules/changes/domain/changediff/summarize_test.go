package changediff_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tablemaster/tablemaster/modules/changes/domain/changediff"
	"github.com/tablemaster/tablemaster/modules/changes/domain/snapshot"
)

func mustParse(t *testing.T, raw string) *snapshot.Object {
	t.Helper()
	obj, err := snapshot.Parse([]byte(raw))
	require.NoError(t, err)
	return obj
}

func TestSummarize_Create(t *testing.T) {
	after := mustParse(t, `{"id":"x","name":"Ribeye","price":42,"category":"steaks","country":"US","cut":"Ribeye"}`)
	require.Equal(t,
		[]string{"name: Ribeye", "price: 42", "category: steaks", "country: US"},
		changediff.Summarize(nil, after, changediff.ActionCreate),
	)
}

func TestSummarize_CreateWithOnlyManagedFields(t *testing.T) {
	after := mustParse(t, `{"id":"x","created_at":"2024-01-01","email":"a@b.c"}`)
	require.Equal(t, []string{"Created"}, changediff.Summarize(nil, after, changediff.ActionCreate))
}

func TestSummarize_CreateOrdersIndexKeysFirst(t *testing.T) {
	after := mustParse(t, `{"b":1,"2":"x","1":"y"}`)
	require.Equal(t, []string{"1: y", "2: x", "b: 1"}, changediff.Summarize(nil, after, changediff.ActionCreate))
}

func TestSummarize_Delete(t *testing.T) {
	testCases := []struct {
		name   string
		before string
		want   string
	}{
		{name: "by name", before: `{"id":"t1","name":"Table 4"}`, want: "Deleted Table 4"},
		{name: "empty name falls back to id", before: `{"id":"t1","name":""}`, want: "Deleted t1"},
		{name: "numeric id", before: `{"id":7}`, want: "Deleted 7"},
		{name: "nothing usable", before: `{"id":0}`, want: "Deleted item"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := changediff.Summarize(mustParse(t, tc.before), nil, changediff.ActionDelete)
			require.Equal(t, []string{tc.want}, got)
		})
	}
}

func TestSummarize_UpdateScalar(t *testing.T) {
	before := mustParse(t, `{"id":"1","name":"Ribeye","price":10,"notes":null,"updated_at":"a"}`)
	after := mustParse(t, `{"id":"1","name":"Ribeye","price":12,"notes":"dry aged","updated_at":"b"}`)
	require.Equal(t,
		[]string{"price: 10 → 12", "notes: — → dry aged"},
		changediff.Summarize(before, after, changediff.ActionUpdate),
	)
}

func TestSummarize_UpdateIgnoresFieldsMissingFromAfter(t *testing.T) {
	before := mustParse(t, `{"name":"A","price":10}`)
	after := mustParse(t, `{"price":10}`)
	require.Equal(t, []string{"No field changes detected"}, changediff.Summarize(before, after, changediff.ActionUpdate))
}

func TestSummarize_UpdateReportsNewFields(t *testing.T) {
	before := mustParse(t, `{"name":"A"}`)
	after := mustParse(t, `{"name":"A","seats":4}`)
	require.Equal(t, []string{"seats: — → 4"}, changediff.Summarize(before, after, changediff.ActionUpdate))
}

func TestSummarize_NoChangesOnlyForUpdate(t *testing.T) {
	obj := mustParse(t, `{"name":"A"}`)
	require.Equal(t, []string{"No field changes detected"}, changediff.Summarize(obj, obj.Clone(), changediff.ActionUpdate))
	require.Empty(t, changediff.Summarize(obj, obj.Clone(), changediff.ActionCreate))
	require.Equal(t, []string{"No field changes detected"}, changediff.Summarize(nil, nil, changediff.ActionUpdate))
}

func TestSummarize_Arrays(t *testing.T) {
	testCases := []struct {
		name   string
		before string
		after  string
		want   []string
	}{
		{
			name:   "added and removed",
			before: `{"allergens":["nuts","dairy"]}`,
			after:  `{"allergens":["dairy","gluten"]}`,
			want:   []string{"allergens: +gluten -nuts"},
		},
		{
			name:   "reordered with duplicates is unchanged",
			before: `{"allergens":["nuts","dairy"]}`,
			after:  `{"allergens":["dairy","nuts","dairy"]}`,
			want:   []string{"No field changes detected"},
		},
		{
			name:   "only first three members listed",
			before: `{"mods":[]}`,
			after:  `{"mods":["a","b","c","d"]}`,
			want:   []string{"mods: +a, b, c"},
		},
		{
			name:   "scalar replaced by array",
			before: `{"tags":"spicy"}`,
			after:  `{"tags":["spicy"]}`,
			want:   []string{"tags: +spicy"},
		},
		{
			name:   "null to empty array",
			before: `{"tags":null}`,
			after:  `{"tags":[]}`,
			want:   []string{"tags: — → —"},
		},
		{
			name:   "empty arrays are equal",
			before: `{"tags":[]}`,
			after:  `{"tags":[]}`,
			want:   []string{"No field changes detected"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := changediff.Summarize(mustParse(t, tc.before), mustParse(t, tc.after), changediff.ActionUpdate)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestSame(t *testing.T) {
	require.True(t, changediff.Same(nil, nil))
	require.True(t, changediff.Same([]any{"b", "a"}, []any{"a", "b", "a"}))
	require.False(t, changediff.Same("12", mustNumber(t, "12")))
	require.True(t, changediff.Same(mustNumber(t, "12.0"), mustNumber(t, "12")))
	require.False(t, changediff.Same(nil, ""))

	a := mustParse(t, `{"x":1,"y":2}`)
	b := mustParse(t, `{"y":2,"x":1}`)
	require.True(t, changediff.Same(a, a.Clone()))
	require.False(t, changediff.Same(a, b))
}

func mustNumber(t *testing.T, raw string) any {
	t.Helper()
	obj := mustParse(t, `{"n":`+raw+`}`)
	v, _ := obj.Get("n")
	return v
}

func TestFormat(t *testing.T) {
	long := strings.Repeat("a", 41)
	obj := mustParse(t, `{"label":"`+strings.Repeat("b", 60)+`"}`)
	objJSON := `{"label":"` + strings.Repeat("b", 60) + `"}`

	testCases := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil", in: nil, want: "—"},
		{name: "bool", in: true, want: "true"},
		{name: "number", in: mustNumber(t, "42.50"), want: "42.5"},
		{name: "short string", in: "Ribeye", want: "Ribeye"},
		{name: "exactly forty", in: strings.Repeat("a", 40), want: strings.Repeat("a", 40)},
		{name: "long string", in: long, want: strings.Repeat("a", 37) + "..."},
		{name: "array", in: []any{"a", "b", "a"}, want: "a, b"},
		{name: "long array", in: []any{"a", "b", "c", "d"}, want: "a, b, c, …"},
		{name: "empty array", in: []any{}, want: "—"},
		{name: "array of nulls", in: []any{nil}, want: "—"},
		{name: "named object", in: mustParse(t, `{"id":1,"name":"Steaks"}`), want: "Steaks"},
		{name: "small object", in: mustParse(t, `{"a":1}`), want: `{"a":1}`},
		{name: "long object", in: obj, want: objJSON[:57] + "..."},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, changediff.Format(tc.in))
		})
	}
}

func TestFormat_CountsUTF16Units(t *testing.T) {
	// Each emoji is two UTF-16 units, so 21 of them exceed the 40 unit limit.
	in := strings.Repeat("🥩", 21)
	require.Equal(t, strings.Repeat("🥩", 18)+"...", changediff.Format(in))
}
