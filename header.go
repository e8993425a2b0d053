package statadta

import (
	"fmt"
	"strconv"
	"time"
)

// header.go implements the 67-byte-ish XML-tagged envelope (release, byte
// order, variable/observation counts, dataset label,
// timestamp) followed by the 14x int64 offset map.

const nMapEntries = 14

// Indices into the 14-entry offset map. Write fills in the variable_types,
// data, strls, value_labels and end-of-file entries and leaves the others
// zero. readHeader loads all fourteen into header.Map, but Read walks the
// sections in file order and does not seek by any of them.
const (
	mapStataData = iota
	mapMap
	mapVariableTypes
	mapVarnames
	mapSortlist
	mapFormats
	mapValueLabelNames
	mapVariableLabels
	mapCharacteristics
	mapData
	mapStrls
	mapValueLabels
	mapStataDataClose
	mapEOF
)

// header holds the decoded contents of the <header> section plus the
// offset map that follows it.
type header struct {
	Release      int
	LittleEndian bool
	Nvar         int
	Nobs         int64
	DatasetLabel string
	Timestamp    string
	Map          [nMapEntries]int64
}

// readHeader parses the <stata_dta><header>...</header><map>...</map>
// preamble and leaves the stream positioned right after </map>, i.e. at
// the <variable_types> tag.
func readHeader(br *byteReader) (*header, error) {
	h := &header{}

	if err := br.expectTag("<stata_dta>"); err != nil {
		return nil, err
	}
	if err := br.expectTag("<header>"); err != nil {
		return nil, err
	}
	if err := br.expectTag("<release>"); err != nil {
		return nil, err
	}
	relBytes, err := br.raw(3)
	if err != nil {
		return nil, err
	}
	rel, err := strconv.Atoi(string(relBytes))
	if err != nil {
		return nil, formatErrorf("unparseable release %q", string(relBytes))
	}
	if rel != 117 && rel != 118 {
		return nil, unsupportedVersionErrorf("release %d (only 117 and 118 are supported)", rel)
	}
	h.Release = rel
	if err := br.expectTag("</release>"); err != nil {
		return nil, err
	}

	if err := br.expectTag("<byteorder>"); err != nil {
		return nil, err
	}
	order, err := br.raw(3)
	if err != nil {
		return nil, err
	}
	switch string(order) {
	case "LSF":
		h.LittleEndian = true
	case "MSF":
		return nil, ErrUnsupportedEndian
	default:
		return nil, formatErrorf("unrecognized byte order marker %q", string(order))
	}
	if err := br.expectTag("</byteorder>"); err != nil {
		return nil, err
	}

	if err := br.expectTag("<K>"); err != nil {
		return nil, err
	}
	nvar, err := br.uint16()
	if err != nil {
		return nil, err
	}
	h.Nvar = int(nvar)
	if err := br.expectTag("</K>"); err != nil {
		return nil, err
	}

	if err := br.expectTag("<N>"); err != nil {
		return nil, err
	}
	if rel == 117 {
		n, err := br.int32()
		if err != nil {
			return nil, err
		}
		h.Nobs = int64(n)
	} else {
		n, err := br.int64()
		if err != nil {
			return nil, err
		}
		h.Nobs = n
	}
	if err := br.expectTag("</N>"); err != nil {
		return nil, err
	}

	if err := br.expectTag("<label>"); err != nil {
		return nil, err
	}
	var labelLen int
	if rel == 117 {
		n, err := br.uint8()
		if err != nil {
			return nil, err
		}
		labelLen = int(n)
	} else {
		n, err := br.uint16()
		if err != nil {
			return nil, err
		}
		labelLen = int(n)
	}
	label, err := br.raw(labelLen)
	if err != nil {
		return nil, err
	}
	h.DatasetLabel = string(partitionNUL(label))
	if err := br.expectTag("</label>"); err != nil {
		return nil, err
	}

	if err := br.expectTag("<timestamp>"); err != nil {
		return nil, err
	}
	tsLen, err := br.uint8()
	if err != nil {
		return nil, err
	}
	ts, err := br.raw(int(tsLen))
	if err != nil {
		return nil, err
	}
	h.Timestamp = string(partitionNUL(ts))
	if err := br.expectTag("</timestamp>"); err != nil {
		return nil, err
	}
	if err := br.expectTag("</header>"); err != nil {
		return nil, err
	}

	if err := br.expectTag("<map>"); err != nil {
		return nil, err
	}
	for i := 0; i < nMapEntries; i++ {
		v, err := br.int64()
		if err != nil {
			return nil, err
		}
		h.Map[i] = v
	}
	if err := br.expectTag("</map>"); err != nil {
		return nil, err
	}

	return h, nil
}

// writeHeaderPlaceholder emits the header (always release 118, LSF, empty
// dataset label, current-time timestamp) and a zeroed offset map,
// returning the file position of the first map entry so the caller can
// seek back once the real offsets are known.
func writeHeaderPlaceholder(bw *byteWriter, nvar int, nobs int64, now time.Time) (mapPos int64, err error) {
	if err := bw.tag("<stata_dta>"); err != nil {
		return 0, err
	}
	if err := bw.tag("<header>"); err != nil {
		return 0, err
	}
	if err := bw.tag("<release>"); err != nil {
		return 0, err
	}
	if err := bw.writeString("118"); err != nil {
		return 0, err
	}
	if err := bw.tag("</release>"); err != nil {
		return 0, err
	}
	if err := bw.tag("<byteorder>"); err != nil {
		return 0, err
	}
	if err := bw.writeString("LSF"); err != nil {
		return 0, err
	}
	if err := bw.tag("</byteorder>"); err != nil {
		return 0, err
	}
	if err := bw.tag("<K>"); err != nil {
		return 0, err
	}
	if err := bw.write(uint16(nvar)); err != nil {
		return 0, err
	}
	if err := bw.tag("</K>"); err != nil {
		return 0, err
	}
	if err := bw.tag("<N>"); err != nil {
		return 0, err
	}
	if err := bw.write(nobs); err != nil {
		return 0, err
	}
	if err := bw.tag("</N>"); err != nil {
		return 0, err
	}
	if err := bw.tag("<label>"); err != nil {
		return 0, err
	}
	if err := bw.write(uint16(0)); err != nil {
		return 0, err
	}
	if err := bw.tag("</label>"); err != nil {
		return 0, err
	}
	if err := bw.tag("<timestamp>"); err != nil {
		return 0, err
	}
	stamp := formatStataTimestamp(now)
	if err := bw.write(uint8(len(stamp))); err != nil {
		return 0, err
	}
	if err := bw.writeString(stamp); err != nil {
		return 0, err
	}
	if err := bw.tag("</timestamp>"); err != nil {
		return 0, err
	}
	if err := bw.tag("</header>"); err != nil {
		return 0, err
	}

	if err := bw.tag("<map>"); err != nil {
		return 0, err
	}
	pos, err := bw.tell()
	if err != nil {
		return 0, err
	}
	zero := make([]int64, nMapEntries)
	for _, v := range zero {
		if err := bw.write(v); err != nil {
			return 0, err
		}
	}
	if err := bw.tag("</map>"); err != nil {
		return 0, err
	}
	return pos, nil
}

// rewriteMap seeks back to the map's recorded position and overwrites it
// with the final offsets, then restores the stream position to end.
func rewriteMap(bw *byteWriter, mapPos int64, offsets [nMapEntries]int64) error {
	end, err := bw.tell()
	if err != nil {
		return err
	}
	if err := bw.seek(mapPos); err != nil {
		return err
	}
	for _, v := range offsets {
		if err := bw.write(v); err != nil {
			return err
		}
	}
	return bw.seek(end)
}

// formatStataTimestamp renders t the way Stata's own writer does:
// "dd Mon yyyy HH:MM", e.g. "17 Jan 2026 09:41".
func formatStataTimestamp(t time.Time) string {
	months := [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun",
		"Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	return fmt.Sprintf("%02d %s %04d %02d:%02d", t.Day(), months[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}
