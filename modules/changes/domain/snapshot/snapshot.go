// Package snapshot holds loosely shaped entity snapshots as insertion-ordered
// JSON objects. Key order is part of what a reviewer sees; Parse and
// MarshalJSON keep it, and the change_requests columns are plain json so a
// stored snapshot decodes in the order it was submitted.
package snapshot

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/go-faster/errors"
)

// Object is an ordered JSON object. Nested objects are *Object, arrays are []any,
// numbers are json.Number. A nil *Object stands for an absent snapshot.
type Object struct {
	keys   []string
	values map[string]any
}

func New() *Object {
	return &Object{values: make(map[string]any)}
}

// FromMap builds an Object from a plain map. Keys are sorted since maps carry no order.
func FromMap(m map[string]any) *Object {
	if m == nil {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	o := New()
	for _, k := range keys {
		o.Set(k, fromPlain(m[k]))
	}
	return o
}

func fromPlain(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return FromMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = fromPlain(item)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	default:
		return v
	}
}

// Parse decodes a JSON object. "null" and empty input yield a nil Object.
func Parse(data []byte) (*Object, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	o := New()
	if err := json.Unmarshal(data, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

func (o *Object) Has(key string) bool {
	if o == nil {
		return false
	}
	_, ok := o.values[key]
	return ok
}

func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// String returns the value under key when it is a string.
func (o *Object) String(key string) string {
	v, _ := o.Get(key)
	s, _ := v.(string)
	return s
}

// Set stores value under key, appending the key when new.
func (o *Object) Set(key string, value any) {
	if o.values == nil {
		o.values = make(map[string]any)
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

func (o *Object) Delete(key string) {
	if o == nil {
		return
	}
	if _, ok := o.values[key]; !ok {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Clone returns a deep copy.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	out := &Object{keys: make([]string, len(o.keys)), values: make(map[string]any, len(o.values))}
	copy(out.keys, o.keys)
	for k, v := range o.values {
		out.values[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case *Object:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// ToMap converts the object into plain maps and slices, e.g. for a record store write.
func (o *Object) ToMap() map[string]any {
	if o == nil {
		return nil
	}
	out := make(map[string]any, len(o.keys))
	for _, k := range o.keys {
		out[k] = toPlain(o.values[k])
	}
	return out
}

func toPlain(v any) any {
	switch t := v.(type) {
	case *Object:
		if t == nil {
			return nil
		}
		return t.ToMap()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = toPlain(item)
		}
		return out
	default:
		return v
	}
}

func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, errors.Wrapf(err, "encode field %s", k)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (o *Object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.Errorf("snapshot: expected a JSON object, got %v", tok)
	}
	o.keys = nil
	o.values = make(map[string]any)
	return decodeObject(dec, o)
}

// decodeObject reads members until the closing brace; the opening one is consumed.
func decodeObject(dec *json.Decoder, o *Object) error {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return errors.Errorf("snapshot: expected object key, got %v", tok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return err
		}
		o.Set(key, val)
	}
	_, err := dec.Token()
	return err
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		child := New()
		if err := decodeObject(dec, child); err != nil {
			return nil, err
		}
		return child, nil
	case '[':
		arr := []any{}
		for dec.More() {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	}
	return nil, errors.Errorf("snapshot: unexpected delimiter %v", delim)
}
