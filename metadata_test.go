package statadta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataWriteReadRoundTrip(t *testing.T) {
	m := newMemSeeker()
	bw := newByteWriter(m)

	types := []ColumnTypeT{StataInt32Type, StataFloat64Type, ColumnTypeT(10)}
	names := []string{"age", "income", "name"}
	formats := []string{"%8.0g", "%11.1f", "%-10s"}
	valueLabelNames := []string{"", "", ""}
	varLabels := []string{"Age in years", "", "Full name"}

	require.NoError(t, writeMetadata(bw, types, names, formats, valueLabelNames, varLabels))

	if _, err := m.Seek(0, 0); err != nil {
		t.Fatal(err)
	}
	br := newByteReader(m)
	meta, err := readMetadata(br, 118, 3)
	require.NoError(t, err)

	assert.Equal(t, types, meta.VarTypes)
	assert.Equal(t, names, meta.Names)
	assert.Equal(t, formats, meta.Formats)
	assert.Equal(t, varLabels, meta.VarLabels)
}

func TestLegalizeNames(t *testing.T) {
	out := legalizeNames([]string{"1st", "valid_name", "bad name!", "valid_name"}, 32)
	assert.Equal(t, "_st", out[0])
	assert.Equal(t, "valid_name", out[1])
	assert.Equal(t, "bad_name_", out[2])
	assert.Equal(t, "valid_name_1", out[3])
}

func TestLegalizeNamesTruncates(t *testing.T) {
	long := "this_name_is_far_too_long_for_the_limit"
	out := legalizeNames([]string{long}, 10)
	assert.Len(t, out[0], 10)
}

func TestChooseFormat(t *testing.T) {
	assert.Equal(t, "%tc", chooseFormat(StataFloat64Type, false, true))
	assert.Equal(t, "%tdNN-DD-CCYY", chooseFormat(StataInt32Type, true, false))
	assert.Equal(t, "%-10s", chooseFormat(ColumnTypeT(10), false, false))
	assert.Equal(t, "%6.2f", chooseFormat(StataFloat32Type, false, false))
	assert.Equal(t, "%11.1f", chooseFormat(StataFloat64Type, false, false))
	assert.Equal(t, "%8.0g", chooseFormat(StataInt32Type, false, false))
}
