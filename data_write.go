package statadta

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
)

// data_write.go implements write-side table preparation (the per-column
// storage-type decision tree, format choice, value-label extraction, and
// column exclusion) plus the row-major data-section encode.

// writeColumnPlan is the outcome of preparing one Column for output: its
// chosen storage type, display format, and (if any) the value-label set it
// will reference.
type writeColumnPlan struct {
	Column         *Column
	StorageType    ColumnTypeT
	Format         string
	ValueLabelName string
	Labels         *valueLabelSet
}

// prepareTable runs the write-side storage-type decision tree over every
// column in t, returning a plan for each retained column and a reason for
// every column it had to exclude.
func prepareTable(t *Table) ([]writeColumnPlan, []ColumnExcluded) {
	var plans []writeColumnPlan
	var excluded []ColumnExcluded

	for i, c := range t.Columns() {
		if allMissing(c) {
			excluded = append(excluded, ColumnExcluded{Name: c.Name, Reason: "column is entirely missing"})
			continue
		}

		plan, reason := planColumn(c, i)
		if reason != "" {
			excluded = append(excluded, ColumnExcluded{Name: c.Name, Reason: reason})
			continue
		}
		plans = append(plans, plan)
	}

	return plans, excluded
}

func allMissing(c *Column) bool {
	for _, m := range c.Missing {
		if !m {
			return false
		}
	}
	return len(c.Missing) > 0
}

func planColumn(c *Column, index int) (writeColumnPlan, string) {
	plan := writeColumnPlan{Column: c, Format: c.Format}

	switch c.Kind {
	case KindCategorical:
		cat := c.Categorical
		name := fmt.Sprintf("fmt%d", index+1)
		plan.ValueLabelName = name
		if cat.NumericLevels != nil {
			plan.StorageType = chooseNumericStorageType(cat.NumericLevels)
			codes := make([]int32, len(cat.NumericLevels))
			for i, v := range cat.NumericLevels {
				codes[i] = int32(v)
			}
			plan.Labels = &valueLabelSet{Name: name, Codes: codes, Labels: append([]string(nil), cat.Levels...)}
		} else {
			plan.StorageType = StataInt32Type
			codes := make([]int32, len(cat.Levels))
			for i := range cat.Levels {
				codes[i] = int32(i)
			}
			plan.Labels = &valueLabelSet{Name: name, Codes: codes, Labels: append([]string(nil), cat.Levels...)}
		}
		plan.Format = chooseFormat(plan.StorageType, false, false)

	case KindInt8:
		plan.StorageType = StataInt8Type
		plan.Format = chooseFormat(plan.StorageType, false, false)
	case KindInt16:
		plan.StorageType = StataInt16Type
		plan.Format = chooseFormat(plan.StorageType, false, false)
	case KindInt32:
		plan.StorageType = StataInt32Type
		plan.Format = chooseFormat(plan.StorageType, false, false)
	case KindInt64:
		if !fitsInt32Range(c.Int64Data, c.Missing) {
			return plan, "int64 column has a value outside the representable range"
		}
		plan.StorageType = StataInt32Type
		plan.Format = chooseFormat(plan.StorageType, false, false)
	case KindFloat32:
		plan.StorageType = StataFloat32Type
		plan.Format = chooseFormat(plan.StorageType, false, false)
	case KindFloat64:
		plan.StorageType = StataFloat64Type
		plan.Format = chooseFormat(plan.StorageType, false, false)
	case KindDate:
		plan.StorageType = StataInt32Type
		plan.Format = chooseFormat(plan.StorageType, true, false)
	case KindDateTime:
		plan.StorageType = StataFloat64Type
		plan.Format = chooseFormat(plan.StorageType, false, true)
	case KindString:
		width := maxByteLength(c.StringData, c.Missing)
		if width == 0 {
			width = 1
		}
		if width > maxStrfLen {
			return plan, "string column exceeds the maximum fixed-string width"
		}
		plan.StorageType = ColumnTypeT(width)
		plan.Format = chooseFormat(plan.StorageType, false, false)
	case KindStrL:
		return plan, "variable-length text output is not supported by this writer"
	default:
		return plan, "unsupported column kind"
	}

	return plan, ""
}

// fitsInt32Range reports whether every present value in values falls
// within the i32 storage type's representable range, excluding its
// sentinel.
func fitsInt32Range(values []int64, missing []bool) bool {
	for i, v := range values {
		if missing != nil && i < len(missing) && missing[i] {
			continue
		}
		if v < -2147483647 || v > 2147483620 {
			return false
		}
	}
	return true
}

func maxByteLength(values []string, missing []bool) int {
	max := 0
	for i, s := range values {
		if missing != nil && i < len(missing) && missing[i] {
			continue
		}
		if len(s) > max {
			max = len(s)
		}
	}
	return max
}

// chooseNumericStorageType picks the narrowest native integer storage type
// that can hold every value, widening to i32 for anything outside i16
// range.
func chooseNumericStorageType(values []int64) ColumnTypeT {
	var min, max int64
	for i, v := range values {
		if i == 0 || v < min {
			min = v
		}
		if i == 0 || v > max {
			max = v
		}
	}
	switch {
	case min >= -127 && max <= 100:
		return StataInt8Type
	case min >= -32767 && max <= 32740:
		return StataInt16Type
	default:
		return StataInt32Type
	}
}

// writeDataSection emits <data>...</data>: a row-major pass over every
// retained column, in plan order, assembled in groups of at most maxBuffer
// bytes and flushed to bw one group at a time. A group always holds at
// least one row, so when a row is wider than maxBuffer (or maxBuffer <= 0)
// each row is its own group. The bytes on the wire are
// identical regardless of maxBuffer; it only changes how many rows are
// held in memory between flushes.
func writeDataSection(bw *byteWriter, plans []writeColumnPlan, rowCount, maxBuffer int) error {
	if err := bw.tag("<data>"); err != nil {
		return err
	}

	rowWidth := 0
	for _, p := range plans {
		rowWidth += bytesPerCell(p.StorageType)
	}
	if rowWidth == 0 {
		rowWidth = 1
	}
	if maxBuffer <= 0 {
		maxBuffer = rowWidth
	}
	rowsPerGroup := maxBuffer / rowWidth
	if rowsPerGroup < 1 {
		rowsPerGroup = 1
	}

	var group bytes.Buffer
	rowsBuffered := 0
	for i := 0; i < rowCount; i++ {
		for _, p := range plans {
			if err := encodeCell(&group, p, i); err != nil {
				return err
			}
		}
		rowsBuffered++
		if rowsBuffered == rowsPerGroup {
			if err := bw.writeRaw(group.Bytes()); err != nil {
				return err
			}
			group.Reset()
			rowsBuffered = 0
		}
	}
	if rowsBuffered > 0 {
		if err := bw.writeRaw(group.Bytes()); err != nil {
			return err
		}
	}

	return bw.tag("</data>")
}

// encodeCell appends one cell's on-disk bytes to buf.
func encodeCell(buf *bytes.Buffer, p writeColumnPlan, row int) error {
	c := p.Column
	missing := row < len(c.Missing) && c.Missing[row]

	switch {
	case p.StorageType >= 1 && p.StorageType <= maxStrfLen:
		cell := make([]byte, int(p.StorageType))
		if !missing {
			copy(cell, c.StringData[row])
		}
		buf.Write(cell)
		return nil

	case p.StorageType == StataInt8Type:
		v := sentinelI8
		if !missing {
			v = categoricalOrInt8(c, row)
		}
		return binary.Write(buf, binary.LittleEndian, v)

	case p.StorageType == StataInt16Type:
		v := sentinelI16
		if !missing {
			v = categoricalOrInt16(c, row)
		}
		return binary.Write(buf, binary.LittleEndian, v)

	case p.StorageType == StataInt32Type:
		v := sentinelI32
		if !missing {
			v = categoricalOrInt32(c, row)
		}
		return binary.Write(buf, binary.LittleEndian, v)

	case p.StorageType == StataFloat32Type:
		v := sentinelF32
		if !missing {
			v = c.Float32Data[row]
		}
		return binary.Write(buf, binary.LittleEndian, v)

	case p.StorageType == StataFloat64Type:
		v := sentinelF64
		if !missing {
			v = categoricalOrFloat64(c, row)
		}
		return binary.Write(buf, binary.LittleEndian, v)
	}

	return formatErrorf("unhandled storage type %d during data write", p.StorageType)
}

func categoricalOrInt8(c *Column, row int) int8 {
	if c.Kind == KindCategorical {
		return int8(categoricalCode(c, row))
	}
	return c.Int8Data[row]
}

func categoricalOrInt16(c *Column, row int) int16 {
	if c.Kind == KindCategorical {
		return int16(categoricalCode(c, row))
	}
	return c.Int16Data[row]
}

func categoricalOrInt32(c *Column, row int) int32 {
	switch c.Kind {
	case KindCategorical:
		return categoricalCode(c, row)
	case KindDate:
		return epochDays(c.TimeData[row])
	case KindInt64:
		return int32(c.Int64Data[row])
	default:
		return c.Int32Data[row]
	}
}

func categoricalOrFloat64(c *Column, row int) float64 {
	if c.Kind == KindDateTime {
		return epochMillis(c.TimeData[row])
	}
	return c.Float64Data[row]
}

// categoricalCode returns the integer Stata code for a categorical cell:
// the originating numeric value for a numeric-backed categorical, or the
// 0-based pool index otherwise (matching the codes emitted into the
// column's value-label set in planColumn).
func categoricalCode(c *Column, row int) int32 {
	cat := c.Categorical
	idx := cat.Codes[row]
	if cat.NumericLevels != nil {
		return int32(cat.NumericLevels[idx])
	}
	return idx
}

func epochDays(t time.Time) int32 {
	return int32(t.UTC().Sub(stataEpoch) / (24 * time.Hour))
}

func epochMillis(t time.Time) float64 {
	return float64(t.UTC().Sub(stataEpoch) / time.Millisecond)
}
