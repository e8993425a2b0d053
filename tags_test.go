package statadta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpectTag(t *testing.T) {
	m := newMemSeeker()
	bw := newByteWriter(m)
	require.NoError(t, bw.tag("<hello>"))

	if _, err := m.Seek(0, 0); err != nil {
		t.Fatal(err)
	}
	br := newByteReader(m)
	require.NoError(t, br.expectTag("<hello>"))
}

func TestExpectTagMismatch(t *testing.T) {
	m := newMemSeeker()
	bw := newByteWriter(m)
	require.NoError(t, bw.tag("<wrong>"))

	if _, err := m.Seek(0, 0); err != nil {
		t.Fatal(err)
	}
	br := newByteReader(m)
	err := br.expectTag("<hello>")
	assert.Error(t, err)
}

func TestPeekTagLeavesPositionUnchanged(t *testing.T) {
	m := newMemSeeker()
	bw := newByteWriter(m)
	require.NoError(t, bw.tag("<lbl>"))
	require.NoError(t, bw.writeString("rest"))

	if _, err := m.Seek(0, 0); err != nil {
		t.Fatal(err)
	}
	br := newByteReader(m)

	ok, err := br.peekTag("<lbl>")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = br.peekTag("<xyz>")
	require.NoError(t, err)
	assert.False(t, ok)

	// peekTag must not have consumed any bytes either time.
	require.NoError(t, br.expectTag("<lbl>"))
	rest, err := br.raw(4)
	require.NoError(t, err)
	assert.Equal(t, "rest", string(rest))
}
