package statadta

// tags.go implements the literal XML-style marker scanner: open/close
// tags delimiting each section of a release 117/118 dta file are verified
// byte-for-byte, never parsed as XML.

// expectTag reads len(tag) bytes and fails with an ErrFormat error if they do
// not match tag exactly.
func (b *byteReader) expectTag(tag string) error {
	buf, err := b.raw(len(tag))
	if err != nil {
		return err
	}
	if string(buf) != tag {
		return formatErrorf("expected tag %q, got %q", tag, string(buf))
	}
	return nil
}

// peekTag reads len(tag) bytes, reports whether they match tag, and always
// rewinds the stream to its position before the call. Used to decide
// whether strL entries follow the <strls> opener.
func (b *byteReader) peekTag(tag string) (bool, error) {
	pos, err := b.tell()
	if err != nil {
		return false, err
	}
	buf, err := b.raw(len(tag))
	if err != nil {
		return false, err
	}
	if err := b.seek(pos); err != nil {
		return false, err
	}
	return string(buf) == tag, nil
}

// tag writes an open or close tag literally, e.g. "<header>" or "</header>".
func (b *byteWriter) tag(s string) error {
	return b.writeString(s)
}
