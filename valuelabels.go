package statadta

// valuelabels.go implements the <value_labels> section: a sequence of
// named int32->text dictionaries referenced by column metadata.

// readValueLabels reads the <value_labels> open tag itself, then decodes
// every <lbl> record up to the matching close tag.
func readValueLabels(br *byteReader, release int) (map[string]map[int32]string, error) {
	if err := br.expectTag("<value_labels>"); err != nil {
		return nil, err
	}

	nameWidth := valueLabelLength[release]
	out := make(map[string]map[int32]string)

	for {
		isLbl, err := br.peekTag("<lbl>")
		if err != nil {
			return nil, err
		}
		if !isLbl {
			break
		}
		if err := br.expectTag("<lbl>"); err != nil {
			return nil, err
		}

		if _, err := br.int32(); err != nil { // record length, unused
			return nil, err
		}
		name, err := br.fixedString(nameWidth)
		if err != nil {
			return nil, err
		}
		if _, err := br.raw(3); err != nil { // padding
			return nil, err
		}
		n, err := br.int32()
		if err != nil {
			return nil, err
		}
		textLen, err := br.int32()
		if err != nil {
			return nil, err
		}

		offsets := make([]int32, n)
		for i := range offsets {
			v, err := br.int32()
			if err != nil {
				return nil, err
			}
			offsets[i] = v
		}
		values := make([]int32, n)
		for i := range values {
			v, err := br.int32()
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		text, err := br.raw(int(textLen))
		if err != nil {
			return nil, err
		}

		dict := make(map[int32]string, n)
		for i := int32(0); i < n; i++ {
			dict[values[i]] = string(partitionNUL(text[offsets[i]:]))
		}
		out[name] = dict

		if err := br.expectTag("</lbl>"); err != nil {
			return nil, err
		}
	}

	if err := br.expectTag("</value_labels>"); err != nil {
		return nil, err
	}
	return out, nil
}

// valueLabelSet is a single named dictionary staged for write, with its
// codes already sorted ascending.
type valueLabelSet struct {
	Name   string
	Codes  []int32
	Labels []string // Labels[i] corresponds to Codes[i]
}

// writeValueLabels emits the <value_labels> section containing one <lbl>
// record per set.
func writeValueLabels(bw *byteWriter, sets []valueLabelSet) error {
	if err := bw.tag("<value_labels>"); err != nil {
		return err
	}

	for _, set := range sets {
		n := len(set.Codes)
		offsets := make([]int32, n)
		var text []byte
		for i, lbl := range set.Labels {
			offsets[i] = int32(len(text))
			text = append(text, []byte(lbl)...)
			text = append(text, 0)
		}

		recordLen := int32(valueLabelLength[118] + 3 + 4 + 4 + 4*n + 4*n + len(text))

		if err := bw.tag("<lbl>"); err != nil {
			return err
		}
		if err := bw.write(recordLen); err != nil {
			return err
		}
		if err := bw.fixedString(set.Name, valueLabelLength[118]); err != nil {
			return err
		}
		if err := bw.writeRaw(make([]byte, 3)); err != nil {
			return err
		}
		if err := bw.write(int32(n)); err != nil {
			return err
		}
		if err := bw.write(int32(len(text))); err != nil {
			return err
		}
		for _, o := range offsets {
			if err := bw.write(o); err != nil {
				return err
			}
		}
		for _, c := range set.Codes {
			if err := bw.write(c); err != nil {
				return err
			}
		}
		if err := bw.writeRaw(text); err != nil {
			return err
		}
		if err := bw.tag("</lbl>"); err != nil {
			return err
		}
	}

	return bw.tag("</value_labels>")
}
