package statadta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByteWriterReaderRoundTrip(t *testing.T) {
	m := newMemSeeker()
	bw := newByteWriter(m)

	require.NoError(t, bw.write(int32(-7)))
	require.NoError(t, bw.write(uint16(42)))
	require.NoError(t, bw.write(float64(3.5)))
	require.NoError(t, bw.fixedString("hi", 5))

	if _, err := m.Seek(0, 0); err != nil {
		t.Fatal(err)
	}
	br := newByteReader(m)

	i, err := br.int32()
	require.NoError(t, err)
	assert.Equal(t, int32(-7), i)

	u, err := br.uint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(42), u)

	f, err := br.float64()
	require.NoError(t, err)
	assert.Equal(t, 3.5, f)

	s, err := br.fixedString(5)
	require.NoError(t, err)
	assert.Equal(t, "hi", s)
}

func TestPartitionNUL(t *testing.T) {
	assert.Equal(t, []byte("abc"), partitionNUL([]byte("abc\x00\x00")))
	assert.Equal(t, []byte("abc"), partitionNUL([]byte("abc")))
	assert.Equal(t, []byte{}, partitionNUL([]byte{0, 1, 2}))
}

func TestByteReaderSeekTell(t *testing.T) {
	m := newMemSeeker()
	bw := newByteWriter(m)
	require.NoError(t, bw.writeRaw([]byte("0123456789")))

	if _, err := m.Seek(0, 0); err != nil {
		t.Fatal(err)
	}
	br := newByteReader(m)

	require.NoError(t, br.skip(3))
	pos, err := br.tell()
	require.NoError(t, err)
	assert.EqualValues(t, 3, pos)

	b, err := br.raw(2)
	require.NoError(t, err)
	assert.Equal(t, "34", string(b))

	require.NoError(t, br.seek(0))
	b, err = br.raw(1)
	require.NoError(t, err)
	assert.Equal(t, "0", string(b))
}
