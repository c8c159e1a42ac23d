package csvparse

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Row is one record of parsed tabular data: an ordered mapping from column
// name to cell value. Column order is the order of the header line.
//
// The zero Row is empty and ready to use.
type Row struct {
	keys   []string
	values map[string]string
}

// NewRow builds a Row from alternating name, value pairs.
// A trailing name without a value gets the empty string.
func NewRow(pairs ...string) Row {
	var r Row
	for i := 0; i < len(pairs); i += 2 {
		v := ""
		if i+1 < len(pairs) {
			v = pairs[i+1]
		}
		r.Set(pairs[i], v)
	}
	return r
}

// Set assigns a value to a column. A column that already exists keeps its
// position and takes the new value.
func (r *Row) Set(name, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[name]; !ok {
		r.keys = append(r.keys, name)
	}
	r.values[name] = value
}

// Get returns the value of a column, or "" when the column is absent.
func (r Row) Get(name string) string {
	return r.values[name]
}

// Lookup returns the value of a column and whether the column exists.
func (r Row) Lookup(name string) (string, bool) {
	v, ok := r.values[name]
	return v, ok
}

// First returns the first non-empty value among the named columns.
func (r Row) First(names ...string) string {
	for _, n := range names {
		if v := r.values[n]; v != "" {
			return v
		}
	}
	return ""
}

// Keys returns the column names in header order.
func (r Row) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of columns.
func (r Row) Len() int {
	return len(r.keys)
}

// Equal reports whether both rows have the same columns, in the same order,
// with the same values.
func (r Row) Equal(other Row) bool {
	if len(r.keys) != len(other.keys) {
		return false
	}
	for i, k := range r.keys {
		if other.keys[i] != k || other.values[k] != r.values[k] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the row as a JSON object, preserving column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object of string values, preserving key order.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("row: expected object, got %v", tok)
	}

	*r = Row{values: make(map[string]string)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("row: expected string key, got %v", tok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("row: column %q: %w", key, err)
		}
		r.Set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// Table is the full parsed result: rows in source order.
type Table []Row

// Headers returns the column names of the first row, or nil for an empty table.
func (t Table) Headers() []string {
	if len(t) == 0 {
		return nil
	}
	return t[0].Keys()
}

// Column returns every value of one column, in row order.
func (t Table) Column(name string) []string {
	out := make([]string, len(t))
	for i, r := range t {
		out[i] = r.Get(name)
	}
	return out
}

// Equal reports whether both tables hold equal rows in the same order.
func (t Table) Equal(other Table) bool {
	if len(t) != len(other) {
		return false
	}
	for i := range t {
		if !t[i].Equal(other[i]) {
			return false
		}
	}
	return true
}
