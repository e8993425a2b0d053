package statadta

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildRoundTripTable(t *testing.T) *Table {
	t.Helper()
	table := NewTable()

	require.NoError(t, table.AddColumn(&Column{
		Name:    "id",
		Kind:    KindInt32,
		Missing: []bool{false, false, false},
		Int32Data: []int32{1, 2, 3},
	}))

	require.NoError(t, table.AddColumn(&Column{
		Name:        "score",
		Kind:        KindFloat64,
		Missing:     []bool{false, false, true},
		Float64Data: []float64{1.5, 2.5, 0},
	}))

	require.NoError(t, table.AddColumn(&Column{
		Name:       "name",
		Kind:       KindString,
		Missing:    []bool{false, false, false},
		StringData: []string{"alice", "bob", "carol"},
	}))

	dob := []time.Time{
		time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 6, 15, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, table.AddColumn(&Column{
		Name:     "dob",
		Kind:     KindDate,
		Missing:  []bool{false, false, false},
		TimeData: dob,
	}))

	require.NoError(t, table.AddColumn(&Column{
		Name:    "grp",
		Kind:    KindCategorical,
		Missing: []bool{false, false, false},
		Categorical: &Categorical{
			Codes:   []int32{0, 1, 0},
			Missing: []bool{false, false, false},
			Levels:  []string{"lo", "hi"},
		},
	}))

	return table
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/roundtrip.dta"

	table := buildRoundTripTable(t)
	require.NoError(t, Write(path, table, 0, false))

	got, err := Read(path, 0, false)
	require.NoError(t, err)

	require.Equal(t, 3, got.RowCount())

	id, ok := got.Column("id")
	require.True(t, ok)
	assert.Equal(t, KindInt32, id.Kind)
	assert.Equal(t, []int32{1, 2, 3}, id.Int32Data)

	score, ok := got.Column("score")
	require.True(t, ok)
	assert.Equal(t, []bool{false, false, true}, score.Missing)
	assert.Equal(t, 1.5, score.Float64Data[0])
	assert.Equal(t, 2.5, score.Float64Data[1])

	name, ok := got.Column("name")
	require.True(t, ok)
	assert.Equal(t, []string{"alice", "bob", "carol"}, name.StringData)

	dob, ok := got.Column("dob")
	require.True(t, ok)
	assert.Equal(t, KindDate, dob.Kind)
	assert.Equal(t, 2000, dob.TimeData[0].Year())
	assert.Equal(t, time.Month(1), dob.TimeData[0].Month())
	assert.Equal(t, 1, dob.TimeData[0].Day())
	assert.Equal(t, 2020, dob.TimeData[2].Year())
	assert.Equal(t, time.Month(6), dob.TimeData[2].Month())
	assert.Equal(t, 15, dob.TimeData[2].Day())

	grp, ok := got.Column("grp")
	require.True(t, ok)
	assert.Equal(t, KindCategorical, grp.Kind)
	assert.Equal(t, []string{"lo", "hi"}, grp.Categorical.Levels)
	assert.Equal(t, "lo", grp.Categorical.Text(0))
	assert.Equal(t, "hi", grp.Categorical.Text(1))
	assert.Equal(t, "lo", grp.Categorical.Text(2))
}

func TestWriteExcludesAllMissingColumn(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/excluded.dta"

	table := NewTable()
	require.NoError(t, table.AddColumn(&Column{
		Name:      "kept",
		Kind:      KindInt32,
		Missing:   []bool{false, false},
		Int32Data: []int32{1, 2},
	}))
	require.NoError(t, table.AddColumn(&Column{
		Name:    "blank",
		Kind:    KindInt32,
		Missing: []bool{true, true},
		Int32Data: []int32{0, 0},
	}))

	require.NoError(t, Write(path, table, 0, false))

	got, err := Read(path, 0, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"kept"}, got.ColumnNames())
}

func TestChunkSlabSize(t *testing.T) {
	assert.Equal(t, 100000, chunkSlabSize(1000000, 10))
	assert.Equal(t, 150000, chunkSlabSize(150000, 1))
	assert.Equal(t, 500000, chunkSlabSize(1000000, 2))
}

// TestChunkedDecodeMatchesWhole exercises the same decodeRows/appendColumn
// machinery decodeDataSection uses for large files, without needing an
// actual 100MB+ fixture: it decodes one logical stream in a single call
// and again in several smaller slabs, and checks the two give identical
// columns: chunking must never change the decoded result.
func TestChunkedDecodeMatchesWhole(t *testing.T) {
	types := []ColumnTypeT{StataInt32Type}
	formats := []string{"%8.0g"}

	rows := 37
	m := newMemSeeker()
	bw := newByteWriter(m)
	for i := 0; i < rows; i++ {
		require.NoError(t, bw.write(int32(i)))
	}

	if _, err := m.Seek(0, 0); err != nil {
		t.Fatal(err)
	}
	br := newByteReader(m)
	whole, err := decodeRows(br, types, formats, 118, rows)
	require.NoError(t, err)

	m2 := newMemSeeker()
	bw2 := newByteWriter(m2)
	for i := 0; i < rows; i++ {
		require.NoError(t, bw2.write(int32(i)))
	}
	if _, err := m2.Seek(0, 0); err != nil {
		t.Fatal(err)
	}
	br2 := newByteReader(m2)

	var chunked []*Column
	remaining := rows
	slab := 9
	for remaining > 0 {
		n := slab
		if n > remaining {
			n = remaining
		}
		part, err := decodeRows(br2, types, formats, 118, n)
		require.NoError(t, err)
		if chunked == nil {
			chunked = part
		} else {
			appendColumn(chunked[0], part[0])
		}
		remaining -= n
	}

	assert.Equal(t, whole[0].Int32Data, chunked[0].Int32Data)
}

func TestReadOpenFileError(t *testing.T) {
	_, err := Read("/nonexistent/path/does-not-exist.dta", 0, false)
	assert.Error(t, err)
}

// TestWriteReadInt8SentinelBoundary checks that 100 round-trips as a
// present value while a missing cell decodes back as missing, matching
// the i8 missing-value cutoff (values above 100 are reserved by Stata).
func TestWriteReadInt8SentinelBoundary(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/int8.dta"

	table := NewTable()
	require.NoError(t, table.AddColumn(&Column{
		Name:     "x",
		Kind:     KindInt8,
		Missing:  []bool{false, false, true, false},
		Int8Data: []int8{1, 2, 0, 100},
	}))

	require.NoError(t, Write(path, table, 0, false))

	got, err := Read(path, 0, false)
	require.NoError(t, err)

	x, ok := got.Column("x")
	require.True(t, ok)
	assert.Equal(t, KindInt8, x.Kind)
	assert.Equal(t, []bool{false, false, true, false}, x.Missing)
	assert.EqualValues(t, 1, x.Int8Data[0])
	assert.EqualValues(t, 2, x.Int8Data[1])
	assert.EqualValues(t, 100, x.Int8Data[3])
}

// TestReadCategoricalKeepOriginal checks that keepOriginal=true prefixes
// every level's text with its underlying code.
func TestReadCategoricalKeepOriginal(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/cat.dta"

	table := NewTable()
	require.NoError(t, table.AddColumn(&Column{
		Name:    "grp",
		Kind:    KindCategorical,
		Missing: []bool{false, false, false},
		Categorical: &Categorical{
			Codes:   []int32{0, 1, 0},
			Missing: []bool{false, false, false},
			Levels:  []string{"lo", "hi"},
		},
	}))

	require.NoError(t, Write(path, table, 0, false))

	plain, err := Read(path, 0, false)
	require.NoError(t, err)
	grp, ok := plain.Column("grp")
	require.True(t, ok)
	assert.Equal(t, "lo", grp.Categorical.Text(0))

	kept, err := Read(path, 0, true)
	require.NoError(t, err)
	grpKept, ok := kept.Column("grp")
	require.True(t, ok)
	assert.Equal(t, "0: lo", grpKept.Categorical.Text(0))
	assert.Equal(t, "1: hi", grpKept.Categorical.Text(1))
}

// TestWriteExcludesInt64OutOfRange checks that an i64 column holding a
// value outside the i32 storage range is dropped with a verbose reason,
// while an i64 column whose values fit is retained and downcast.
func TestWriteExcludesInt64OutOfRange(t *testing.T) {
	table := NewTable()
	require.NoError(t, table.AddColumn(&Column{
		Name:      "big",
		Kind:      KindInt64,
		Missing:   []bool{false},
		Int64Data: []int64{5000000000},
	}))
	require.NoError(t, table.AddColumn(&Column{
		Name:      "small",
		Kind:      KindInt64,
		Missing:   []bool{false},
		Int64Data: []int64{42},
	}))

	plans, excluded := prepareTable(table)

	require.Len(t, excluded, 1)
	assert.Equal(t, "big", excluded[0].Name)

	require.Len(t, plans, 1)
	assert.Equal(t, "small", plans[0].Column.Name)
	assert.Equal(t, StataInt32Type, plans[0].StorageType)
}
