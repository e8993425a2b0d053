package statadta

import "strings"

// ColumnTypeT is a Stata on-disk storage type code, as it appears in the
// <variable_types> section of a dta file.
type ColumnTypeT uint16

// Storage type codes used in release 117 and 118 dta files. Codes 1..2045
// denote a fixed-length string of that many bytes and are not named here.
const (
	StataStrlType    ColumnTypeT = 32768
	StataFloat64Type ColumnTypeT = 65526
	StataFloat32Type ColumnTypeT = 65527
	StataInt32Type   ColumnTypeT = 65528
	StataInt16Type   ColumnTypeT = 65529
	StataInt8Type    ColumnTypeT = 65530

	maxStrfLen = 2045
)

// Missing-value recognition thresholds (read side). A raw stored value
// strictly greater than the threshold decodes as missing.
const (
	missingThresholdI8  = 100
	missingThresholdI16 = 32740
	missingThresholdI32 = 2147483620
	missingThresholdF32 = 1.70141173e+38
	missingThresholdF64 = 8.9884656743e+307
)

// Canonical sentinel values emitted on write.
const (
	sentinelI8  int8    = 101
	sentinelI16 int16   = 32741
	sentinelI32 int32   = 2147483621
	sentinelF32 float32 = 1.702e+38
	sentinelF64 float64 = 8.989e+307
)

// bytesPerCell returns the number of bytes a single cell of the given
// storage type occupies in the data section. The widths are the same in
// releases 117 and 118; a strL reference is 8 bytes in both (see
// strlRefWidth).
func bytesPerCell(t ColumnTypeT) int {
	switch {
	case t >= 1 && t <= maxStrfLen:
		return int(t)
	case t == StataStrlType:
		return 8
	case t == StataFloat64Type:
		return 8
	case t == StataFloat32Type:
		return 4
	case t == StataInt32Type:
		return 4
	case t == StataInt16Type:
		return 2
	case t == StataInt8Type:
		return 1
	default:
		return -1
	}
}

// validStorageType reports whether t is a recognized storage type code.
func validStorageType(t ColumnTypeT) bool {
	return bytesPerCell(t) > 0
}

// isDateFormat reports whether a display format string denotes a calendar
// date column (days since 1960-01-01).
func isDateFormat(format string) bool {
	return format == "%d" || strings.HasPrefix(format, "%td")
}

// isDatetimeFormat reports whether a display format string denotes a
// calendar datetime column (milliseconds since 1960-01-01 00:00:00).
func isDatetimeFormat(format string) bool {
	return strings.HasPrefix(format, "%tc") || strings.HasPrefix(format, "%tC")
}

// strlRefWidth is the byte width of a strL (v,o) reference in the data
// section: 8 bytes in both release 117 and 118. Only the split of those
// bytes into v and o differs (see parseStrlRef).
func strlRefWidth(release int) int {
	if release == 117 {
		return 8
	}
	return 8 // release 118 also packs v,o into 8 bytes; see data_read.go
}

// release-dependent fixed field widths.
var (
	varNameLength      = map[int]int{117: 33, 118: 129}
	formatLength       = map[int]int{117: 49, 118: 57}
	valueLabelLength   = map[int]int{117: 33, 118: 129}
	variableLabelLen   = map[int]int{117: 81, 118: 321}
	datasetLabelWidth  = map[int]int{117: 1, 118: 2}
	observationCountSz = map[int]int{117: 4, 118: 8}
)
