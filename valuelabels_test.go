package statadta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueLabelsWriteReadRoundTrip(t *testing.T) {
	m := newMemSeeker()
	bw := newByteWriter(m)

	sets := []valueLabelSet{
		{Name: "fmt1", Codes: []int32{0, 1, 2}, Labels: []string{"no", "yes", "maybe"}},
		{Name: "fmt2", Codes: []int32{5, 10}, Labels: []string{"low", "high"}},
	}
	require.NoError(t, writeValueLabels(bw, sets))

	if _, err := m.Seek(0, 0); err != nil {
		t.Fatal(err)
	}
	br := newByteReader(m)
	dict, err := readValueLabels(br, 118)
	require.NoError(t, err)

	require.Contains(t, dict, "fmt1")
	assert.Equal(t, "no", dict["fmt1"][0])
	assert.Equal(t, "yes", dict["fmt1"][1])
	assert.Equal(t, "maybe", dict["fmt1"][2])

	require.Contains(t, dict, "fmt2")
	assert.Equal(t, "low", dict["fmt2"][5])
	assert.Equal(t, "high", dict["fmt2"][10])
}

func TestValueLabelsEmpty(t *testing.T) {
	m := newMemSeeker()
	bw := newByteWriter(m)
	require.NoError(t, writeValueLabels(bw, nil))

	if _, err := m.Seek(0, 0); err != nil {
		t.Fatal(err)
	}
	br := newByteReader(m)
	dict, err := readValueLabels(br, 118)
	require.NoError(t, err)
	assert.Empty(t, dict)
}
