package statadta

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderWriteReadRoundTrip(t *testing.T) {
	m := newMemSeeker()
	bw := newByteWriter(m)

	now := time.Date(2026, 3, 5, 9, 41, 0, 0, time.UTC)
	mapPos, err := writeHeaderPlaceholder(bw, 3, 100, now)
	require.NoError(t, err)

	var offsets [nMapEntries]int64
	offsets[mapData] = 12345
	offsets[mapValueLabels] = 67890
	require.NoError(t, rewriteMap(bw, mapPos, offsets))

	if _, err := m.Seek(0, 0); err != nil {
		t.Fatal(err)
	}
	br := newByteReader(m)
	h, err := readHeader(br)
	require.NoError(t, err)

	assert.Equal(t, 118, h.Release)
	assert.True(t, h.LittleEndian)
	assert.Equal(t, 3, h.Nvar)
	assert.EqualValues(t, 100, h.Nobs)
	assert.Equal(t, "05 Mar 2026 09:41", h.Timestamp)
	assert.EqualValues(t, 12345, h.Map[mapData])
	assert.EqualValues(t, 67890, h.Map[mapValueLabels])
}

func TestReadHeaderRejectsUnsupportedRelease(t *testing.T) {
	m := newMemSeeker()
	bw := newByteWriter(m)

	require.NoError(t, bw.tag("<stata_dta>"))
	require.NoError(t, bw.tag("<header>"))
	require.NoError(t, bw.tag("<release>"))
	require.NoError(t, bw.writeString("116"))

	if _, err := m.Seek(0, 0); err != nil {
		t.Fatal(err)
	}
	br := newByteReader(m)
	_, err := readHeader(br)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedVersion))
}

func TestFormatStataTimestamp(t *testing.T) {
	ts := formatStataTimestamp(time.Date(2026, 1, 1, 0, 5, 0, 0, time.UTC))
	assert.Equal(t, "01 Jan 2026 00:05", ts)
}
