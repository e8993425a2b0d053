package statadta

import "io"

// memSeeker is a minimal in-memory io.ReadWriteSeeker used by unit tests
// that need Seek support without touching the filesystem (the format's
// deferred offset map requires seeking back after the fact).
type memSeeker struct {
	buf []byte
	pos int64
}

func newMemSeeker() *memSeeker { return &memSeeker{} }

func (m *memSeeker) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[m.pos:end], p)
	m.pos = end
	return len(p), nil
}

func (m *memSeeker) Read(p []byte) (int, error) {
	if m.pos >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[m.pos:])
	m.pos += int64(n)
	return n, nil
}

func (m *memSeeker) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = m.pos + offset
	case io.SeekEnd:
		target = int64(len(m.buf)) + offset
	}
	m.pos = target
	return m.pos, nil
}
