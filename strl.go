package statadta

import "encoding/binary"

// strl.go implements the variable-length string heap addressed by (v,o)
// pairs from the data body.

// strlKey identifies a single strL heap entry.
type strlKey struct {
	V uint32
	O uint64
}

// strlEntry is one heap payload: flag 130 is null-terminated text, 129 is
// binary-safe (kept as raw bytes, not decoded as text).
type strlEntry struct {
	Flag  uint8
	Text  string
	Bytes []byte
}

// hasStrlsSection peeks whether strL entries are present: only if the next
// six bytes spell "<strls". The stream position is left unchanged.
func hasStrlsSection(br *byteReader) (bool, error) {
	return br.peekTag("<strls")
}

// readStrls decodes every GSO record between <strls> and </strls>. Callers
// must have already confirmed the section is present via hasStrlsSection.
func readStrls(br *byteReader, release int) (map[strlKey]strlEntry, error) {
	if err := br.expectTag("<strls>"); err != nil {
		return nil, err
	}

	heap := make(map[strlKey]strlEntry)
	for {
		isGSO, err := br.peekTag("GSO")
		if err != nil {
			return nil, err
		}
		if !isGSO {
			break
		}
		if err := br.expectTag("GSO"); err != nil {
			return nil, err
		}

		v, err := br.uint32()
		if err != nil {
			return nil, err
		}
		var o uint64
		if release == 117 {
			o32, err := br.uint32()
			if err != nil {
				return nil, err
			}
			o = uint64(o32)
		} else {
			o, err = br.uint64()
			if err != nil {
				return nil, err
			}
		}
		flag, err := br.uint8()
		if err != nil {
			return nil, err
		}
		length, err := br.uint32()
		if err != nil {
			return nil, err
		}
		payload, err := br.raw(int(length))
		if err != nil {
			return nil, err
		}

		entry := strlEntry{Flag: flag}
		switch flag {
		case 130:
			entry.Text = string(partitionNUL(payload))
		case 129:
			entry.Bytes = append([]byte(nil), payload...)
		default:
			return nil, formatErrorf("unrecognized strL flag byte %d", flag)
		}
		heap[strlKey{V: v, O: o}] = entry
	}

	return heap, errNilOr(br.expectTag("</strls>"))
}

func errNilOr(err error) error { return err }

// writeStrls emits an empty strL section. This codec never produces strL
// payloads on write: the write-side table preparation pass (data_write.go)
// rejects any fixed-length string column that would require one rather
// than emitting strLs.
func writeStrls(bw *byteWriter) error {
	if err := bw.tag("<strls>"); err != nil {
		return err
	}
	return bw.tag("</strls>")
}

// parseStrlRef decodes the (v,o) pair stored in a data-body cell of
// storage type StataStrlType. Release 117 stores two plain int32 fields;
// release 118 packs both into a single 8-byte little-endian integer with v
// in the low 16 bits and o in the high 48.
func parseStrlRef(raw []byte, release int) strlKey {
	if release == 117 {
		v := binary.LittleEndian.Uint32(raw[0:4])
		o := binary.LittleEndian.Uint32(raw[4:8])
		return strlKey{V: v, O: uint64(o)}
	}
	packed := binary.LittleEndian.Uint64(raw)
	v := uint32(packed & 0xFFFF)
	o := packed >> 16
	return strlKey{V: v, O: o}
}
