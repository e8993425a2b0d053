package statadta

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors distinguishing the kinds of failure this codec can
// report. Callers match them with errors.Is; wrapped occurrences still
// compare equal through the standard unwrap chain.
var (
	// ErrFormat is returned when an expected section marker is missing or
	// a section's internal length accounting is inconsistent.
	ErrFormat = errors.New("dta: malformed file")

	// ErrUnsupportedVersion is returned when the release byte triple is
	// not 117 or 118.
	ErrUnsupportedVersion = errors.New("dta: unsupported format release")

	// ErrUnsupportedEndian is returned when the byte-order marker is MSF
	// (big-endian); this module only reads/writes LSF files.
	ErrUnsupportedEndian = errors.New("dta: unsupported byte order")

	// ErrInvalidType is returned when a variable-type code falls outside
	// the recognized storage type set.
	ErrInvalidType = errors.New("dta: invalid storage type")
)

// formatErrorf wraps ErrFormat with added context, keeping it comparable
// with errors.Is(err, ErrFormat).
func formatErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrFormat, format, args...)
}

// unsupportedVersionErrorf wraps the sentinel ErrUnsupportedVersion itself
// with added context, keeping it comparable with errors.Is(err,
// ErrUnsupportedVersion).
func unsupportedVersionErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrUnsupportedVersion, format, args...)
}

// ColumnExcluded describes a write-side column that could not be
// represented in the dta storage model and was dropped from the output
// file. It is not an error in the Go sense (write() still succeeds), but
// is reported through the verbose channel.
type ColumnExcluded struct {
	Name   string
	Reason string
}

func (c ColumnExcluded) String() string {
	return fmt.Sprintf("column %q excluded: %s", c.Name, c.Reason)
}
