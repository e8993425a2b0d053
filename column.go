package statadta

import (
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"
)

// column.go supplies the table/column/categorical abstraction: a table of
// typed columns with named access, row count, categorical columns backed
// by a code<->label pool, and per-column variable-label attachment. Each
// Column is a tagged variant (one populated data field per ColumnKind)
// rather than an interface{}-dispatched value.

// ColumnKind is the closed set of logical element types a Column can hold.
type ColumnKind int

const (
	KindInt8 ColumnKind = iota
	KindInt16
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindString      // bounded (fixed-length) text
	KindStrL        // variable-length text
	KindDate        // calendar date, day granularity
	KindDateTime    // calendar datetime, millisecond granularity
	KindCategorical // wraps a Categorical pool
)

func (k ColumnKind) String() string {
	switch k {
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	case KindStrL:
		return "strl"
	case KindDate:
		return "date"
	case KindDateTime:
		return "datetime"
	case KindCategorical:
		return "categorical"
	default:
		return fmt.Sprintf("ColumnKind(%d)", int(k))
	}
}

// Categorical is a small ordered pool of category labels plus a per-row
// code into that pool. Levels is sorted ascending by the dictionary code
// it was built from, never by order of first occurrence.
//
// When NumericLevels is non-nil, the categorical is "numeric-backed": the
// pool's natural representation is a number, not text. Levels[i] still
// holds the label text Stata stores for that level; NumericLevels[i]
// holds the originating numeric value, used on write to pick a native
// numeric storage type instead of always widening to i32.
type Categorical struct {
	Codes         []int32 // per-row index into Levels; meaningless where Missing[row]
	Missing       []bool
	Levels        []string
	NumericLevels []int64
}

// Len returns the number of rows represented by the categorical.
func (c *Categorical) Len() int { return len(c.Codes) }

// Text returns the label text for row i, or "" if the row is missing.
func (c *Categorical) Text(i int) string {
	if c.Missing[i] {
		return ""
	}
	return c.Levels[c.Codes[i]]
}

// Column is a single named, typed, possibly-missing-valued vector. Exactly
// one of the data fields below is populated, selected by Kind: a tagged
// variant rather than interface{} dispatch.
type Column struct {
	Name  string
	Kind  ColumnKind
	Label string // variable label

	// Format is the dta display format string. Populated on read;
	// chosen by the write-side table preparation pass on write.
	Format string

	// ValueLabelName is the name of the value-label set this column
	// referenced on read, or the synthesized name on write. Empty if
	// the column carries no value labels.
	ValueLabelName string

	Missing []bool

	Int8Data    []int8
	Int16Data   []int16
	Int32Data   []int32
	Int64Data   []int64
	Float32Data []float32
	Float64Data []float64
	StringData  []string     // KindString, KindStrL
	TimeData    []time.Time  // KindDate, KindDateTime
	Categorical *Categorical // KindCategorical

	// strlKeys holds the raw (v,o) heap references for a KindStrL column
	// between the data-section read (where they appear) and the <strls>
	// section read (where they resolve to text); see data_read.go's
	// resolveStrls. Empty once resolution has happened.
	strlKeys []strlKey
}

// Len returns the number of rows in the column.
func (c *Column) Len() int {
	switch c.Kind {
	case KindInt8:
		return len(c.Int8Data)
	case KindInt16:
		return len(c.Int16Data)
	case KindInt32:
		return len(c.Int32Data)
	case KindInt64:
		return len(c.Int64Data)
	case KindFloat32:
		return len(c.Float32Data)
	case KindFloat64:
		return len(c.Float64Data)
	case KindString, KindStrL:
		return len(c.StringData)
	case KindDate, KindDateTime:
		return len(c.TimeData)
	case KindCategorical:
		return c.Categorical.Len()
	default:
		return 0
	}
}

// Table is an ordered sequence of named, equal-length columns.
type Table struct {
	columns  []*Column
	rowCount int
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{}
}

// AddColumn appends c to the table. The first column fixes the table's row
// count; later columns must match it.
func (t *Table) AddColumn(c *Column) error {
	n := c.Len()
	if len(t.columns) == 0 {
		t.rowCount = n
	} else if n != t.rowCount {
		return errors.Errorf("column %q has %d rows, table has %d", c.Name, n, t.rowCount)
	}
	t.columns = append(t.columns, c)
	return nil
}

// Columns returns the table's columns in order.
func (t *Table) Columns() []*Column { return t.columns }

// Column returns the named column and true, or nil and false.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// ColumnNames returns the table's column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// RowCount returns the number of rows in the table, 0 for an empty table.
func (t *Table) RowCount() int { return t.rowCount }

// NewCategoricalFromText builds a text-backed Categorical from per-row
// strings and a missing mask, assigning pool positions in ascending
// lexical order of first-seen distinct values: used by callers (e.g. a
// CSV loader) constructing a table from scratch. Category order coming out
// of a decoded dta file instead follows the value-label dictionary's
// ascending integer codes (see data_read.go), not this constructor.
func NewCategoricalFromText(values []string, missing []bool) *Categorical {
	seen := make(map[string]int32)
	var levels []string
	codes := make([]int32, len(values))
	for i, v := range values {
		if missing != nil && missing[i] {
			continue
		}
		idx, ok := seen[v]
		if !ok {
			idx = int32(len(levels))
			levels = append(levels, v)
			seen[v] = idx
		}
		codes[i] = idx
	}
	sortedLevels := append([]string(nil), levels...)
	sort.Strings(sortedLevels)
	remap := make(map[int32]int32, len(levels))
	for newIdx, lv := range sortedLevels {
		remap[seen[lv]] = int32(newIdx)
	}
	for i := range codes {
		if missing == nil || !missing[i] {
			codes[i] = remap[codes[i]]
		}
	}
	m := missing
	if m == nil {
		m = make([]bool, len(values))
	}
	return &Categorical{Codes: codes, Missing: m, Levels: sortedLevels}
}
