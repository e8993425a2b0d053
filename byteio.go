package statadta

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// byteReader wraps an io.ReadSeeker with the typed little-endian reads the
// dta format needs: fixed-width integers and floats, fixed-length
// null-padded strings, and positional skip/tell/seek. All multi-byte
// values in releases 117/118 are little-endian; this module never reads
// big-endian files (see ErrUnsupportedEndian).
type byteReader struct {
	r io.ReadSeeker
}

func newByteReader(r io.ReadSeeker) *byteReader {
	return &byteReader{r: r}
}

func (b *byteReader) readFull(buf []byte) error {
	n, err := io.ReadFull(b.r, buf)
	if err != nil {
		return errors.Wrapf(err, "read %d bytes", len(buf))
	}
	if n != len(buf) {
		return formatErrorf("short read: wanted %d bytes, got %d", len(buf), n)
	}
	return nil
}

func (b *byteReader) int8() (int8, error) {
	var x int8
	err := binary.Read(b.r, binary.LittleEndian, &x)
	return x, errors.WithStack(err)
}

func (b *byteReader) uint8() (uint8, error) {
	var x uint8
	err := binary.Read(b.r, binary.LittleEndian, &x)
	return x, errors.WithStack(err)
}

func (b *byteReader) int16() (int16, error) {
	var x int16
	err := binary.Read(b.r, binary.LittleEndian, &x)
	return x, errors.WithStack(err)
}

func (b *byteReader) uint16() (uint16, error) {
	var x uint16
	err := binary.Read(b.r, binary.LittleEndian, &x)
	return x, errors.WithStack(err)
}

func (b *byteReader) int32() (int32, error) {
	var x int32
	err := binary.Read(b.r, binary.LittleEndian, &x)
	return x, errors.WithStack(err)
}

func (b *byteReader) uint32() (uint32, error) {
	var x uint32
	err := binary.Read(b.r, binary.LittleEndian, &x)
	return x, errors.WithStack(err)
}

func (b *byteReader) int64() (int64, error) {
	var x int64
	err := binary.Read(b.r, binary.LittleEndian, &x)
	return x, errors.WithStack(err)
}

func (b *byteReader) uint64() (uint64, error) {
	var x uint64
	err := binary.Read(b.r, binary.LittleEndian, &x)
	return x, errors.WithStack(err)
}

func (b *byteReader) float32() (float32, error) {
	var x float32
	err := binary.Read(b.r, binary.LittleEndian, &x)
	return x, errors.WithStack(err)
}

func (b *byteReader) float64() (float64, error) {
	var x float64
	err := binary.Read(b.r, binary.LittleEndian, &x)
	return x, errors.WithStack(err)
}

// fixedString reads n bytes and returns the prefix up to the first NUL
// byte (or the whole slice if no NUL is present).
func (b *byteReader) fixedString(n int) (string, error) {
	buf := make([]byte, n)
	if err := b.readFull(buf); err != nil {
		return "", err
	}
	return string(partitionNUL(buf)), nil
}

// raw reads n raw bytes without interpretation.
func (b *byteReader) raw(n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := b.readFull(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (b *byteReader) skip(n int64) error {
	_, err := b.r.Seek(n, io.SeekCurrent)
	return errors.WithStack(err)
}

func (b *byteReader) seek(pos int64) error {
	_, err := b.r.Seek(pos, io.SeekStart)
	return errors.WithStack(err)
}

func (b *byteReader) tell() (int64, error) {
	pos, err := b.r.Seek(0, io.SeekCurrent)
	return pos, errors.WithStack(err)
}

// partitionNUL returns the prefix of buf up to (not including) the first
// zero byte, or the whole slice if none is present.
func partitionNUL(buf []byte) []byte {
	for i, c := range buf {
		if c == 0 {
			return buf[:i]
		}
	}
	return buf
}

// byteWriter wraps an io.WriteSeeker with the typed little-endian writes
// the encoder needs, mirroring byteReader.
type byteWriter struct {
	w io.WriteSeeker
}

func newByteWriter(w io.WriteSeeker) *byteWriter {
	return &byteWriter{w: w}
}

func (b *byteWriter) write(v interface{}) error {
	return errors.WithStack(binary.Write(b.w, binary.LittleEndian, v))
}

func (b *byteWriter) writeRaw(buf []byte) error {
	n, err := b.w.Write(buf)
	if err != nil {
		return errors.WithStack(err)
	}
	if n != len(buf) {
		return formatErrorf("short write: wanted %d bytes, wrote %d", len(buf), n)
	}
	return nil
}

func (b *byteWriter) writeString(s string) error {
	return b.writeRaw([]byte(s))
}

// fixedString writes s null-padded (or truncated) to exactly n bytes.
func (b *byteWriter) fixedString(s string, n int) error {
	buf := make([]byte, n)
	copy(buf, s)
	return b.writeRaw(buf)
}

func (b *byteWriter) tell() (int64, error) {
	pos, err := b.w.Seek(0, io.SeekCurrent)
	return pos, errors.WithStack(err)
}

func (b *byteWriter) seek(pos int64) error {
	_, err := b.w.Seek(pos, io.SeekStart)
	return errors.WithStack(err)
}
