package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Table names used by the game.
const (
	TableItem    = "Item"
	TableEquip   = "Equip"
	TableMonster = "Monster"
)

// ErrUnknownTable is returned when a reader is requested for a table that was
// not present in the loaded data.
var ErrUnknownTable = errors.New("unknown table")

// Lookup is read-only keyed access to one data table.
type Lookup interface {
	HasKey(id int) bool
	Raw(id int, column string) (any, bool)
}

// Row is one table row keyed by column name.
type Row map[string]any

// Table is an in-memory data table keyed by integer id.
type Table struct {
	Name string
	rows map[int]Row
}

// NewTable builds a table from rows. The map is owned by the table afterwards.
func NewTable(name string, rows map[int]Row) *Table {
	if rows == nil {
		rows = make(map[int]Row)
	}
	return &Table{Name: name, rows: rows}
}

// HasKey reports whether the table has a row with the given id.
func (t *Table) HasKey(id int) bool {
	if t == nil {
		return false
	}
	_, ok := t.rows[id]
	return ok
}

// Raw returns the untyped value stored at (id, column).
func (t *Table) Raw(id int, column string) (any, bool) {
	if t == nil {
		return nil, false
	}
	row, ok := t.rows[id]
	if !ok {
		return nil, false
	}
	v, ok := row[column]
	return v, ok
}

// Keys returns all row ids in ascending order.
func (t *Table) Keys() []int {
	if t == nil {
		return nil
	}
	keys := make([]int, 0, len(t.rows))
	for id := range t.rows {
		keys = append(keys, id)
	}
	sort.Ints(keys)
	return keys
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Value reads (id, column) from l converted to the type of def. Missing rows,
// missing columns and values that cannot be converted yield def.
func Value[T any](l Lookup, id int, column string, def T) T {
	if l == nil {
		return def
	}
	raw, ok := l.Raw(id, column)
	if !ok || raw == nil {
		return def
	}
	if v, ok := raw.(T); ok {
		return v
	}
	var out any
	switch any(def).(type) {
	case int:
		out, ok = toInt(raw)
	case float64:
		out, ok = toFloat(raw)
	case string:
		out, ok = fmt.Sprint(raw), true
	case bool:
		out, ok = toBool(raw)
	case []int:
		out, ok = toIntSlice(raw)
	default:
		ok = false
	}
	if !ok {
		return def
	}
	return out.(T)
}

func toInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case uint64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	}
	return 0, false
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

func toBool(raw any) (bool, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(v)
		return b, err == nil
	}
	return false, false
}

func toIntSlice(raw any) ([]int, bool) {
	list, ok := raw.([]any)
	if !ok {
		return nil, false
	}
	out := make([]int, 0, len(list))
	for _, e := range list {
		n, ok := toInt(e)
		if !ok {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

// Tables is the set of data tables loaded from one document.
type Tables struct {
	byName map[string]*Table
}

// NewTables groups already built tables.
func NewTables(tables ...*Table) *Tables {
	ts := &Tables{byName: make(map[string]*Table, len(tables))}
	for _, t := range tables {
		ts.byName[t.Name] = t
	}
	return ts
}

// Reader returns the named table.
func (ts *Tables) Reader(name string) (*Table, error) {
	if ts == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}
	t, ok := ts.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}
	return t, nil
}

// MustReader returns the named table or an empty one when it is missing.
func (ts *Tables) MustReader(name string) *Table {
	t, err := ts.Reader(name)
	if err != nil {
		return NewTable(name, nil)
	}
	return t
}

// Names returns the table names in sorted order.
func (ts *Tables) Names() []string {
	names := make([]string, 0, len(ts.byName))
	for n := range ts.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Parse decodes a YAML document of the form
//
//	Item:
//	  1001: {Name: Stone Axe, Type: Equip}
func Parse(data []byte) (*Tables, error) {
	var doc map[string]map[int]map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse tables: %w", err)
	}
	ts := &Tables{byName: make(map[string]*Table, len(doc))}
	for name, rows := range doc {
		t := NewTable(name, make(map[int]Row, len(rows)))
		for id, cols := range rows {
			if id <= 0 {
				return nil, fmt.Errorf("parse tables: %s: id %d must be positive", name, id)
			}
			t.rows[id] = Row(cols)
		}
		ts.byName[name] = t
	}
	return ts, nil
}

// LoadTables reads and parses a tables file.
func LoadTables(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tables: %w", err)
	}
	return Parse(data)
}
