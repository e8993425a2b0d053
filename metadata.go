package statadta

import (
	"fmt"
	"regexp"
)

// metadata.go implements variable names, sort list, display formats,
// value-label-set names, variable labels, and the (skipped) characteristics
// section.

type metadata struct {
	VarTypes        []ColumnTypeT
	Names           []string
	Formats         []string
	ValueLabelNames []string
	VarLabels       []string
}

func readMetadata(br *byteReader, release, nvar int) (*metadata, error) {
	m := &metadata{}

	if err := br.expectTag("<variable_types>"); err != nil {
		return nil, err
	}
	m.VarTypes = make([]ColumnTypeT, nvar)
	for i := range m.VarTypes {
		v, err := br.uint16()
		if err != nil {
			return nil, err
		}
		t := ColumnTypeT(v)
		if !validStorageType(t) {
			return nil, fmt.Errorf("%w: code %d for variable %d", ErrInvalidType, v, i)
		}
		m.VarTypes[i] = t
	}
	if err := br.expectTag("</variable_types>"); err != nil {
		return nil, err
	}

	nameWidth := varNameLength[release]
	if err := br.expectTag("<varnames>"); err != nil {
		return nil, err
	}
	m.Names = make([]string, nvar)
	for i := range m.Names {
		s, err := br.fixedString(nameWidth)
		if err != nil {
			return nil, err
		}
		m.Names[i] = s
	}
	if err := br.expectTag("</varnames>"); err != nil {
		return nil, err
	}

	if err := br.expectTag("<sortlist>"); err != nil {
		return nil, err
	}
	if err := br.skip(int64(2 * (nvar + 1))); err != nil {
		return nil, err
	}
	if err := br.expectTag("</sortlist>"); err != nil {
		return nil, err
	}

	fmtWidth := formatLength[release]
	if err := br.expectTag("<formats>"); err != nil {
		return nil, err
	}
	m.Formats = make([]string, nvar)
	for i := range m.Formats {
		s, err := br.fixedString(fmtWidth)
		if err != nil {
			return nil, err
		}
		m.Formats[i] = s
	}
	if err := br.expectTag("</formats>"); err != nil {
		return nil, err
	}

	vlWidth := valueLabelLength[release]
	if err := br.expectTag("<value_label_names>"); err != nil {
		return nil, err
	}
	m.ValueLabelNames = make([]string, nvar)
	for i := range m.ValueLabelNames {
		s, err := br.fixedString(vlWidth)
		if err != nil {
			return nil, err
		}
		m.ValueLabelNames[i] = s
	}
	if err := br.expectTag("</value_label_names>"); err != nil {
		return nil, err
	}

	labelWidth := variableLabelLen[release]
	if err := br.expectTag("<variable_labels>"); err != nil {
		return nil, err
	}
	m.VarLabels = make([]string, nvar)
	for i := range m.VarLabels {
		s, err := br.fixedString(labelWidth)
		if err != nil {
			return nil, err
		}
		m.VarLabels[i] = s
	}
	if err := br.expectTag("</variable_labels>"); err != nil {
		return nil, err
	}

	// Characteristics are not interpreted by this codec: scan past them
	// to the <data> opener.
	if err := br.expectTag("<characteristics>"); err != nil {
		return nil, err
	}
	if err := skipUntilTag(br, "</characteristics>"); err != nil {
		return nil, err
	}

	return m, nil
}

// skipUntilTag consumes bytes one at a time until it has just read tag,
// used for the characteristics section whose internal structure this
// codec does not interpret.
func skipUntilTag(br *byteReader, tag string) error {
	window := make([]byte, 0, len(tag))
	buf := make([]byte, 1)
	for {
		if err := br.readFull(buf); err != nil {
			return err
		}
		window = append(window, buf[0])
		if len(window) > len(tag) {
			window = window[1:]
		}
		if string(window) == tag {
			return nil
		}
	}
}

// writeMetadata emits the variable_types/varnames/sortlist/formats/
// value_label_names/variable_labels/characteristics sections for release
// 118 (the only release this module writes).
func writeMetadata(bw *byteWriter, types []ColumnTypeT, names, formats, valueLabelNames, varLabels []string) error {
	nvar := len(types)

	if err := bw.tag("<variable_types>"); err != nil {
		return err
	}
	for _, t := range types {
		if err := bw.write(uint16(t)); err != nil {
			return err
		}
	}
	if err := bw.tag("</variable_types>"); err != nil {
		return err
	}

	if err := bw.tag("<varnames>"); err != nil {
		return err
	}
	for _, n := range names {
		if err := bw.fixedString(n, varNameLength[118]); err != nil {
			return err
		}
	}
	if err := bw.tag("</varnames>"); err != nil {
		return err
	}

	if err := bw.tag("<sortlist>"); err != nil {
		return err
	}
	for i := 0; i < nvar+1; i++ {
		if err := bw.write(uint16(0)); err != nil {
			return err
		}
	}
	if err := bw.tag("</sortlist>"); err != nil {
		return err
	}

	if err := bw.tag("<formats>"); err != nil {
		return err
	}
	for _, f := range formats {
		if err := bw.fixedString(f, formatLength[118]); err != nil {
			return err
		}
	}
	if err := bw.tag("</formats>"); err != nil {
		return err
	}

	if err := bw.tag("<value_label_names>"); err != nil {
		return err
	}
	for _, n := range valueLabelNames {
		if err := bw.fixedString(n, valueLabelLength[118]); err != nil {
			return err
		}
	}
	if err := bw.tag("</value_label_names>"); err != nil {
		return err
	}

	if err := bw.tag("<variable_labels>"); err != nil {
		return err
	}
	for _, l := range varLabels {
		if err := bw.fixedString(l, variableLabelLen[118]); err != nil {
			return err
		}
	}
	if err := bw.tag("</variable_labels>"); err != nil {
		return err
	}

	if err := bw.tag("<characteristics>"); err != nil {
		return err
	}
	if err := bw.tag("</characteristics>"); err != nil {
		return err
	}

	return nil
}

var (
	legalFirstChar = regexp.MustCompile(`^[A-Za-z_]`)
	illegalChar    = regexp.MustCompile(`[^A-Za-z0-9_]`)
)

// legalizeNames rewrites names into a set of distinct, Stata-legal
// variable names: illegal characters become "_", an illegal first
// character is replaced, and collisions get a numeric suffix.
func legalizeNames(names []string, maxLen int) []string {
	seen := make(map[string]bool)
	out := make([]string, len(names))

	for i, n := range names {
		fixed := illegalChar.ReplaceAllString(n, "_")
		if !legalFirstChar.MatchString(fixed) {
			fixed = "_" + fixed[1:]
		}
		if len(fixed) == 0 {
			fixed = "_"
		}
		if len(fixed) > maxLen {
			fixed = fixed[:maxLen]
		}

		candidate := fixed
		suffix := 1
		for seen[candidate] {
			s := fmt.Sprintf("_%d", suffix)
			trunc := fixed
			if len(trunc)+len(s) > maxLen {
				trunc = trunc[:maxLen-len(s)]
			}
			candidate = trunc + s
			suffix++
		}
		seen[candidate] = true
		out[i] = candidate
	}

	return out
}

// chooseFormat picks the write-side display format for a storage type.
func chooseFormat(t ColumnTypeT, isDate, isDatetime bool) string {
	switch {
	case isDatetime:
		return "%tc"
	case isDate:
		return "%tdNN-DD-CCYY"
	case t >= 1 && t <= maxStrfLen:
		return fmt.Sprintf("%%-%ds", int(t))
	case t == StataFloat32Type:
		return "%6.2f"
	case t == StataFloat64Type:
		return "%11.1f"
	default:
		return "%8.0g"
	}
}
