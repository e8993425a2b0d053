package statadta

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// writer.go is the public write entry point: it runs write-side table
// preparation, then emits header/metadata/data/strls/value-labels in
// order, backfilling the offset map entries it records (see header.go)
// once the whole file has been written.

// Write encodes table to path as a release-118 dta file. path gets a
// ".dta" suffix appended if it doesn't already have one. maxBuffer caps
// how many bytes of row data are assembled in memory before being flushed
// to disk, except that at least one row is always assembled, so a row
// wider than maxBuffer (or any row when maxBuffer <= 0) is flushed on its
// own; verbose, when true, prints to stdout every column Write had to drop
// because it could not be represented in the dta storage model.
func Write(path string, table *Table, maxBuffer int, verbose bool) error {
	if !strings.HasSuffix(path, ".dta") {
		path += ".dta"
	}

	plans, excluded := prepareTable(table)
	if verbose {
		for _, e := range excluded {
			fmt.Fprintln(os.Stdout, e.String())
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "dta: create")
	}
	defer f.Close()

	bw := newByteWriter(f)

	nvar := len(plans)
	rowCount := table.RowCount()

	names := make([]string, nvar)
	formats := make([]string, nvar)
	types := make([]ColumnTypeT, nvar)
	valueLabelNames := make([]string, nvar)
	varLabels := make([]string, nvar)
	var labelSets []valueLabelSet
	for i, p := range plans {
		names[i] = p.Column.Name
		formats[i] = p.Format
		types[i] = p.StorageType
		valueLabelNames[i] = p.ValueLabelName
		varLabels[i] = p.Column.Label
		if p.Labels != nil {
			labelSets = append(labelSets, *p.Labels)
		}
	}
	names = legalizeNames(names, varNameLength[118])

	var offsets [nMapEntries]int64

	mapPos, err := writeHeaderPlaceholder(bw, nvar, int64(rowCount), time.Now())
	if err != nil {
		return err
	}

	offsets[mapVariableTypes], err = bw.tell()
	if err != nil {
		return err
	}
	if err := writeMetadata(bw, types, names, formats, valueLabelNames, varLabels); err != nil {
		return err
	}

	offsets[mapData], err = bw.tell()
	if err != nil {
		return err
	}
	if err := writeDataSection(bw, plans, rowCount, maxBuffer); err != nil {
		return err
	}

	offsets[mapStrls], err = bw.tell()
	if err != nil {
		return err
	}
	if err := writeStrls(bw); err != nil {
		return err
	}

	offsets[mapValueLabels], err = bw.tell()
	if err != nil {
		return err
	}
	if err := writeValueLabels(bw, labelSets); err != nil {
		return err
	}

	if err := bw.tag("</stata_dta>"); err != nil {
		return err
	}
	offsets[mapEOF], err = bw.tell()
	if err != nil {
		return err
	}

	return rewriteMap(bw, mapPos, offsets)
}
