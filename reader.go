package statadta

import (
	"os"

	"github.com/pkg/errors"
)

// reader.go is the public read entry point: it wires together the header,
// metadata, value-label, strL, and data codecs into a single Table,
// releasing the underlying file on every exit path.

// DefaultChunks is the chunk count used when a caller passes 0 or a
// negative value to Read.
const DefaultChunks = 10

// Read decodes the dta file at path into a Table. chunks controls how many
// row-slabs the chunked driver targets when the file is large enough to
// trigger chunking (DefaultChunks if <= 0); it has no effect on small
// files and never changes the result. keepOriginal controls whether
// categorical columns built from a value-label set show "code: label"
// text instead of just "label".
func Read(path string, chunks int, keepOriginal bool) (*Table, error) {
	if chunks <= 0 {
		chunks = DefaultChunks
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "dta: open")
	}
	defer f.Close()

	br := newByteReader(f)

	h, err := readHeader(br)
	if err != nil {
		return nil, err
	}

	meta, err := readMetadata(br, h.Release, h.Nvar)
	if err != nil {
		return nil, err
	}

	cols, err := decodeDataSection(br, meta.VarTypes, meta.Formats, h.Release, int(h.Nobs), chunks)
	if err != nil {
		return nil, err
	}

	heap := map[strlKey]strlEntry{}
	hasStrls, err := hasStrlsSection(br)
	if err != nil {
		return nil, err
	}
	if hasStrls {
		heap, err = readStrls(br, h.Release)
		if err != nil {
			return nil, err
		}
	}
	resolveStrls(cols, heap)

	dict, err := readValueLabels(br, h.Release)
	if err != nil {
		return nil, err
	}

	if err := br.expectTag("</stata_dta>"); err != nil {
		return nil, err
	}

	for j, c := range cols {
		c.Name = meta.Names[j]
		c.Label = meta.VarLabels[j]
		c.Format = meta.Formats[j]
		c.ValueLabelName = meta.ValueLabelNames[j]
	}
	applyCategoricalPostPass(cols, meta.ValueLabelNames, dict, keepOriginal)

	t := NewTable()
	for _, c := range cols {
		if err := t.AddColumn(c); err != nil {
			return nil, err
		}
	}

	return t, nil
}
