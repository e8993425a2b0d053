package statadta

import (
	"fmt"
	"sort"
	"time"
)

// data_read.go implements the data-section decode, missing-sentinel
// recognition, date/datetime conversion, categorical post-pass, and the
// chunked reader driver.

var stataEpoch = time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC)

// rowLayout precomputes the per-column byte width the data section needs;
// every column occupies bytesPerCell(type) bytes, row-major.
func rowLayout(types []ColumnTypeT) (rowWidth int, widths []int) {
	widths = make([]int, len(types))
	for i, t := range types {
		w := bytesPerCell(t)
		widths[i] = w
		rowWidth += w
	}
	return rowWidth, widths
}

// decodeRows reads n data-body rows into freshly allocated, purely
// primitive-typed columns (dates/datetimes already resolved, but value
// labels not yet applied; see applyCategoricalPostPass). Columns are
// returned in variable order with Format copied from formats and
// Name/Label/ValueLabelName unset; the caller fills those in from the
// metadata section.
func decodeRows(br *byteReader, types []ColumnTypeT, formats []string, release int, n int) ([]*Column, error) {
	nvar := len(types)
	cols := make([]*Column, nvar)

	for j, t := range types {
		c := &Column{Format: formats[j], Missing: make([]bool, n)}
		switch {
		case t >= 1 && t <= maxStrfLen:
			c.Kind = KindString
			c.StringData = make([]string, n)
		case t == StataStrlType:
			c.Kind = KindStrL
			c.StringData = make([]string, n)
			c.strlKeys = make([]strlKey, n)
		case isDatetimeFormat(formats[j]):
			c.Kind = KindDateTime
			c.TimeData = make([]time.Time, n)
		case isDateFormat(formats[j]):
			c.Kind = KindDate
			c.TimeData = make([]time.Time, n)
		case t == StataFloat64Type:
			c.Kind = KindFloat64
			c.Float64Data = make([]float64, n)
		case t == StataFloat32Type:
			c.Kind = KindFloat32
			c.Float32Data = make([]float32, n)
		case t == StataInt32Type:
			c.Kind = KindInt32
			c.Int32Data = make([]int32, n)
		case t == StataInt16Type:
			c.Kind = KindInt16
			c.Int16Data = make([]int16, n)
		case t == StataInt8Type:
			c.Kind = KindInt8
			c.Int8Data = make([]int8, n)
		default:
			return nil, fmt.Errorf("%w: code %d", ErrInvalidType, t)
		}
		cols[j] = c
	}

	for i := 0; i < n; i++ {
		for j, t := range types {
			c := cols[j]
			switch {
			case t >= 1 && t <= maxStrfLen:
				s, err := br.fixedString(int(t))
				if err != nil {
					return nil, err
				}
				c.StringData[i] = s
				if s == "" {
					c.Missing[i] = true
				}
			case t == StataStrlType:
				raw, err := br.raw(8)
				if err != nil {
					return nil, err
				}
				key := parseStrlRef(raw, release)
				if key.V == 0 && key.O == 0 {
					c.Missing[i] = true
					continue
				}
				c.strlKeys[i] = key
			case t == StataFloat64Type:
				x, err := br.float64()
				if err != nil {
					return nil, err
				}
				if x > missingThresholdF64 {
					c.Missing[i] = true
					continue
				}
				if err := storeNumericCell(c, formats[j], i, x); err != nil {
					return nil, err
				}
			case t == StataFloat32Type:
				x, err := br.float32()
				if err != nil {
					return nil, err
				}
				if x > missingThresholdF32 {
					c.Missing[i] = true
					continue
				}
				if err := storeNumericCell(c, formats[j], i, float64(x)); err != nil {
					return nil, err
				}
				if c.Kind == KindFloat32 {
					c.Float32Data[i] = x
				}
			case t == StataInt32Type:
				x, err := br.int32()
				if err != nil {
					return nil, err
				}
				if x > missingThresholdI32 {
					c.Missing[i] = true
					continue
				}
				if err := storeNumericCell(c, formats[j], i, float64(x)); err != nil {
					return nil, err
				}
				if c.Kind == KindInt32 {
					c.Int32Data[i] = x
				}
			case t == StataInt16Type:
				x, err := br.int16()
				if err != nil {
					return nil, err
				}
				if x > missingThresholdI16 {
					c.Missing[i] = true
					continue
				}
				if err := storeNumericCell(c, formats[j], i, float64(x)); err != nil {
					return nil, err
				}
				if c.Kind == KindInt16 {
					c.Int16Data[i] = x
				}
			case t == StataInt8Type:
				x, err := br.int8()
				if err != nil {
					return nil, err
				}
				if x > missingThresholdI8 {
					c.Missing[i] = true
					continue
				}
				c.Int8Data[i] = x
			}
		}
	}

	return cols, nil
}

// storeNumericCell stores a raw numeric cell that is not yet known missing
// into the column appropriate to its Kind, applying the date/datetime
// calendar conversion when the column's format calls for it. Sentinel
// recognition happens in the raw numeric domain before this is called.
func storeNumericCell(c *Column, format string, i int, x float64) error {
	switch c.Kind {
	case KindDate:
		c.TimeData[i] = stataEpoch.AddDate(0, 0, int(x))
	case KindDateTime:
		c.TimeData[i] = stataEpoch.Add(time.Duration(x) * time.Millisecond)
	case KindFloat64:
		c.Float64Data[i] = x
	case KindFloat32, KindInt32, KindInt16, KindInt8:
		// handled by the caller for types it owns directly; float64
		// callers always hit the KindFloat64 case above.
	default:
		return fmt.Errorf("unexpected kind %v for numeric cell", c.Kind)
	}
	return nil
}

// chunkSlabSize picks the row count per decode slab: rowCount divided
// evenly across chunks, floored at 100000 rows and capped at rowCount.
func chunkSlabSize(rowCount, chunks int) int {
	if chunks < 1 {
		chunks = 1
	}
	size := (rowCount + chunks - 1) / chunks
	if size < 100000 {
		size = 100000
	}
	if size > rowCount {
		size = rowCount
	}
	if size < 1 {
		size = 1
	}
	return size
}

// decodeDataSection reads the entire <data>...</data> body, using the
// chunked driver only when the body exceeds the memory threshold, and
// always returns a result equivalent to a single whole-body read: chunking
// is a memory strategy, not a semantic one.
func decodeDataSection(br *byteReader, types []ColumnTypeT, formats []string, release int, rowCount, chunks int) ([]*Column, error) {
	if err := br.expectTag("<data>"); err != nil {
		return nil, err
	}

	rowWidth, _ := rowLayout(types)
	var cols []*Column

	if int64(rowWidth)*int64(rowCount) < 100000000 {
		var err error
		cols, err = decodeRows(br, types, formats, release, rowCount)
		if err != nil {
			return nil, err
		}
	} else {
		slab := chunkSlabSize(rowCount, chunks)
		remaining := rowCount
		for remaining > 0 {
			n := slab
			if n > remaining {
				n = remaining
			}
			part, err := decodeRows(br, types, formats, release, n)
			if err != nil {
				return nil, err
			}
			if cols == nil {
				cols = part
			} else {
				for j := range cols {
					appendColumn(cols[j], part[j])
				}
			}
			remaining -= n
		}
		if cols == nil {
			cols, _ = decodeRows(br, types, formats, release, 0)
		}
	}

	if err := br.expectTag("</data>"); err != nil {
		return nil, err
	}
	return cols, nil
}

// resolveStrls fills in StringData for every KindStrL column from the heap
// read after the data section: the <strls> section follows <data> in the
// file, so strL cells can only be resolved to text once the whole file up
// to there has been scanned.
func resolveStrls(cols []*Column, heap map[strlKey]strlEntry) {
	for _, c := range cols {
		if c.Kind != KindStrL {
			continue
		}
		for i, key := range c.strlKeys {
			if c.Missing[i] {
				continue
			}
			entry, ok := heap[key]
			if !ok {
				log.Warnf("strL reference (%d,%d) in column %q not found in heap", key.V, key.O, c.Name)
				continue
			}
			if entry.Flag == 130 {
				c.StringData[i] = entry.Text
			} else {
				c.StringData[i] = string(entry.Bytes)
			}
		}
		c.strlKeys = nil
	}
}

// appendColumn concatenates src's rows onto dst in place. Both must share
// the same primitive Kind (true of anything produced by decodeRows, since
// categorical construction happens only after all chunks are merged).
func appendColumn(dst, src *Column) {
	dst.Missing = append(dst.Missing, src.Missing...)
	switch dst.Kind {
	case KindInt8:
		dst.Int8Data = append(dst.Int8Data, src.Int8Data...)
	case KindInt16:
		dst.Int16Data = append(dst.Int16Data, src.Int16Data...)
	case KindInt32:
		dst.Int32Data = append(dst.Int32Data, src.Int32Data...)
	case KindFloat32:
		dst.Float32Data = append(dst.Float32Data, src.Float32Data...)
	case KindFloat64:
		dst.Float64Data = append(dst.Float64Data, src.Float64Data...)
	case KindString:
		dst.StringData = append(dst.StringData, src.StringData...)
	case KindStrL:
		dst.StringData = append(dst.StringData, src.StringData...)
		dst.strlKeys = append(dst.strlKeys, src.strlKeys...)
	case KindDate, KindDateTime:
		dst.TimeData = append(dst.TimeData, src.TimeData...)
	}
}

// columnInt32 returns the column's numeric data converted to int32: integer
// kinds are widened, float kinds are truncated toward zero. Any other kind
// yields all zeros.
func columnInt32(c *Column) []int32 {
	n := c.Len()
	out := make([]int32, n)
	switch c.Kind {
	case KindInt8:
		for i, v := range c.Int8Data {
			out[i] = int32(v)
		}
	case KindInt16:
		for i, v := range c.Int16Data {
			out[i] = int32(v)
		}
	case KindInt32:
		copy(out, c.Int32Data)
	case KindFloat32:
		for i, v := range c.Float32Data {
			out[i] = int32(v)
		}
	case KindFloat64:
		for i, v := range c.Float64Data {
			out[i] = int32(v)
		}
	}
	return out
}

// applyCategoricalPostPass replaces every non-string column that references
// a known value-label set with a categorical column. Run once, after chunk
// concatenation, so the result never depends on chunk boundaries.
//
// Fixed-string and strL columns referencing a value-label set are left
// alone. For strL the reasoning is that strL cells
// are (v,o) heap pointers, not small integers a value-label dictionary can
// key on, so that case is treated as inapplicable to well-formed files;
// see DESIGN.md.
func applyCategoricalPostPass(cols []*Column, valueLabelNames []string, dict map[string]map[int32]string, keepOriginal bool) {
	for j, c := range cols {
		name := valueLabelNames[j]
		if name == "" || c.Kind == KindStrL || c.Kind == KindString {
			continue
		}
		labels, ok := dict[name]
		if !ok {
			continue
		}
		cols[j] = buildCategorical(c, labels, keepOriginal)
	}
}

// buildCategorical maps a decoded numeric column's present values through
// labels, producing category order equal to the ascending sort of the
// dictionary's own codes, with any data value absent from the dictionary
// appended afterward in ascending order of its own value.
func buildCategorical(c *Column, labels map[int32]string, keepOriginal bool) *Column {
	raw := columnInt32(c)
	n := len(raw)

	knownCodes := make([]int32, 0, len(labels))
	for k := range labels {
		knownCodes = append(knownCodes, k)
	}
	sort.Slice(knownCodes, func(i, j int) bool { return knownCodes[i] < knownCodes[j] })

	levelIndex := make(map[int32]int32, len(knownCodes))
	levels := make([]string, 0, len(knownCodes))
	for _, code := range knownCodes {
		text := labels[code]
		if keepOriginal {
			text = fmt.Sprintf("%d: %s", code, text)
		}
		levelIndex[code] = int32(len(levels))
		levels = append(levels, text)
	}

	var unknown []int32
	seenUnknown := make(map[int32]bool)
	for i, v := range raw {
		if c.Missing[i] {
			continue
		}
		if _, ok := levelIndex[v]; ok {
			continue
		}
		if !seenUnknown[v] {
			seenUnknown[v] = true
			unknown = append(unknown, v)
		}
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	for _, v := range unknown {
		levelIndex[v] = int32(len(levels))
		levels = append(levels, fmt.Sprintf("(%d)", v))
	}

	codes := make([]int32, n)
	for i, v := range raw {
		if !c.Missing[i] {
			codes[i] = levelIndex[v]
		}
	}

	return &Column{
		Name:           c.Name,
		Kind:           KindCategorical,
		Label:          c.Label,
		Format:         c.Format,
		ValueLabelName: c.ValueLabelName,
		Missing:        c.Missing,
		Categorical:    &Categorical{Codes: codes, Missing: c.Missing, Levels: levels},
	}
}
