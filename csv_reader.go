package statadta

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// CSVReader reads a delimited text file into a Table, sniffing each
// column's storage type from its first 100 data rows unless a type hint
// overrides it.
type CSVReader struct {
	// SkipRows is the number of rows to skip before the header (or first
	// data row if HasHeader is false).
	SkipRows int

	// HasHeader indicates the first non-skipped row holds column names.
	HasHeader bool

	// ColumnNames holds the column names in file order; populated from
	// the header unless set by the caller beforehand.
	ColumnNames []string

	// TypeHintsName overrides type sniffing by column name; values are
	// "int32", "float64", or "string".
	TypeHintsName map[string]string

	// TypeHintsPos overrides type sniffing by column position.
	TypeHintsPos []string

	dataTypes []string
	reader    io.ReadSeeker
}

// NewCSVReader returns a CSVReader reading from r.
func NewCSVReader(r io.ReadSeeker) *CSVReader {
	return &CSVReader{HasHeader: true, reader: r}
}

func (rdr *CSVReader) getColumnNames() error {
	if _, err := rdr.reader.Seek(0, io.SeekStart); err != nil {
		return errors.WithStack(err)
	}
	c := csv.NewReader(rdr.reader)

	for k := 0; k < rdr.SkipRows; k++ {
		if _, err := c.Read(); err != nil {
			return errors.Wrapf(err, "skip_rows=%d exceeds file length", rdr.SkipRows)
		}
	}

	line, err := c.Read()
	if err != nil {
		return errors.Wrap(err, "reached end of file before finding data")
	}

	if rdr.HasHeader {
		rdr.ColumnNames = line
		return nil
	}

	rdr.ColumnNames = make([]string, len(line))
	for k := range line {
		rdr.ColumnNames[k] = fmt.Sprintf("column%d", k+1)
	}
	return nil
}

func (rdr *CSVReader) seekData() (*csv.Reader, error) {
	if _, err := rdr.reader.Seek(0, io.SeekStart); err != nil {
		return nil, errors.WithStack(err)
	}
	c := csv.NewReader(rdr.reader)

	for k := 0; k < rdr.SkipRows; k++ {
		if _, err := c.Read(); err != nil {
			return nil, errors.WithStack(err)
		}
	}
	if rdr.HasHeader {
		if _, err := c.Read(); err != nil {
			return nil, errors.WithStack(err)
		}
	}
	return c, nil
}

func (rdr *CSVReader) sniffTypes() error {
	c, err := rdr.seekData()
	if err != nil {
		return err
	}

	var sample [][]string
	for len(sample) < 100 {
		line, err := c.Read()
		if err != nil {
			break
		}
		sample = append(sample, line)
	}

	rdr.dataTypes = make([]string, len(rdr.ColumnNames))
	for j := range rdr.ColumnNames {
		if t, ok := rdr.TypeHintsName[rdr.ColumnNames[j]]; ok {
			rdr.dataTypes[j] = t
			continue
		}
		if j < len(rdr.TypeHintsPos) && rdr.TypeHintsPos[j] != "" {
			rdr.dataTypes[j] = rdr.TypeHintsPos[j]
			continue
		}
		rdr.dataTypes[j] = sniffColumnType(sample, j)
	}
	return nil
}

// sniffColumnType classifies column j of sample as "int32" if every
// non-empty value parses as an integer fitting int32, "float64" if every
// non-empty value parses as a float, else "string".
func sniffColumnType(sample [][]string, j int) string {
	sawValue, allInt, allFloat := false, true, true
	for _, row := range sample {
		if j >= len(row) || row[j] == "" {
			continue
		}
		sawValue = true
		if _, err := strconv.ParseInt(row[j], 10, 32); err != nil {
			allInt = false
		}
		if _, err := strconv.ParseFloat(row[j], 64); err != nil {
			allFloat = false
		}
	}
	switch {
	case !sawValue:
		return "string"
	case allInt:
		return "int32"
	case allFloat:
		return "float64"
	default:
		return "string"
	}
}

func (rdr *CSVReader) init() error {
	if rdr.ColumnNames == nil {
		if err := rdr.getColumnNames(); err != nil {
			return err
		}
	}
	if rdr.dataTypes == nil {
		if err := rdr.sniffTypes(); err != nil {
			return err
		}
	}
	return nil
}

// Read reads up to maxRows data rows (the whole file if maxRows is
// negative) into a Table, one Column per CSV field.
func (rdr *CSVReader) Read(maxRows int) (*Table, error) {
	if err := rdr.init(); err != nil {
		return nil, err
	}

	c, err := rdr.seekData()
	if err != nil {
		return nil, err
	}

	ncol := len(rdr.ColumnNames)
	int32Data := make([][]int32, ncol)
	float64Data := make([][]float64, ncol)
	stringData := make([][]string, ncol)
	missing := make([][]bool, ncol)

	nread := 0
	for {
		line, err := c.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WithStack(err)
		}

		for j := 0; j < ncol; j++ {
			field := ""
			if j < len(line) {
				field = line[j]
			}
			isMissing := field == ""
			missing[j] = append(missing[j], isMissing)

			switch rdr.dataTypes[j] {
			case "int32":
				var v int64
				if !isMissing {
					v, _ = strconv.ParseInt(field, 10, 32)
				}
				int32Data[j] = append(int32Data[j], int32(v))
			case "float64":
				var v float64
				if !isMissing {
					v, _ = strconv.ParseFloat(field, 64)
				}
				float64Data[j] = append(float64Data[j], v)
			default:
				stringData[j] = append(stringData[j], field)
			}
		}

		nread++
		if maxRows >= 0 && nread >= maxRows {
			break
		}
	}

	t := NewTable()
	for j := 0; j < ncol; j++ {
		col := &Column{Name: rdr.ColumnNames[j], Missing: missing[j]}
		switch rdr.dataTypes[j] {
		case "int32":
			col.Kind = KindInt32
			col.Int32Data = int32Data[j]
		case "float64":
			col.Kind = KindFloat64
			col.Float64Data = float64Data[j]
		default:
			col.Kind = KindString
			col.StringData = stringData[j]
		}
		if err := t.AddColumn(col); err != nil {
			return nil, err
		}
	}

	return t, nil
}
