package ber

// Cursor is a read position over an immutable byte buffer. A Cursor is
// owned by a single decode call chain and passed down by pointer; every
// successful read advances it by exactly the bytes consumed. After a
// failed read the position is unspecified and the decode must be abandoned.
type Cursor struct {
	data    []byte
	pos     int
	lastTag int // position of the most recent ReadTag, -1 if none
}

// NewCursor creates a cursor positioned at the start of data.
func NewCursor(data []byte) *Cursor {
	return &Cursor{
		data:    data,
		pos:     0,
		lastTag: -1,
	}
}

// Pos returns the current read position.
func (c *Cursor) Pos() int {
	return c.pos
}

// Len returns the length of the underlying buffer.
func (c *Cursor) Len() int {
	return len(c.data)
}

// Remaining returns the number of bytes remaining to be read.
func (c *Cursor) Remaining() int {
	return len(c.data) - c.pos
}

// AtEnd reports whether the cursor has consumed the whole buffer.
func (c *Cursor) AtEnd() bool {
	return c.pos == len(c.data)
}

// Seek moves the cursor to pos, which must lie within the buffer.
func (c *Cursor) Seek(pos int) error {
	if pos < 0 || pos > len(c.data) {
		return NewDecodeError(c.pos, "seek out of range", ErrUnexpectedEOF)
	}
	c.pos = pos
	c.lastTag = -1
	return nil
}

// ReadTag returns the next byte verbatim as a tag.
func (c *Cursor) ReadTag() (Tag, error) {
	if c.pos >= len(c.data) {
		return 0, NewDecodeError(c.pos, "cannot read tag", ErrUnexpectedEOF)
	}
	c.lastTag = c.pos
	t := Tag(c.data[c.pos])
	c.pos++
	return t, nil
}

// PeekTag returns the next tag without consuming it.
func (c *Cursor) PeekTag() (Tag, error) {
	if c.pos >= len(c.data) {
		return 0, NewDecodeError(c.pos, "cannot peek tag", ErrUnexpectedEOF)
	}
	return Tag(c.data[c.pos]), nil
}

// UnreadTag pushes back the tag returned by the immediately preceding
// ReadTag call. Only one tag of lookahead is supported.
func (c *Cursor) UnreadTag() error {
	if c.lastTag < 0 {
		return NewDecodeError(c.pos, "unread without read", ErrNoUnread)
	}
	c.pos = c.lastTag
	c.lastTag = -1
	return nil
}

// ReadLength reads a definite length. The returned length never exceeds
// the number of bytes remaining after the length octets.
func (c *Cursor) ReadLength() (int, error) {
	c.lastTag = -1
	startOffset := c.pos

	length, n, err := parseLength(c.data[c.pos:])
	if err != nil {
		err.Offset += startOffset
		return 0, err
	}
	c.pos += n

	if length > c.Remaining() {
		return 0, NewDecodeError(startOffset, "length exceeds remaining data", ErrUnexpectedEOF)
	}
	return length, nil
}

// ParseLength decodes a length field at the start of b, returning the
// length and the number of octets the field occupied. Offsets in returned
// errors are relative to b.
func ParseLength(b []byte) (length, n int, err error) {
	length, n, de := parseLength(b)
	if de != nil {
		return 0, 0, de
	}
	return length, n, nil
}

func parseLength(b []byte) (int, int, *DecodeError) {
	if len(b) == 0 {
		return 0, 0, NewDecodeError(0, "cannot read length", ErrUnexpectedEOF)
	}

	first := b[0]

	// Short form: bit 8 is 0, bits 1-7 contain the length
	if first&LengthLongFormBit == 0 {
		return int(first), 1, nil
	}

	numBytes := int(first & 0x7F)
	if numBytes == 0 {
		return 0, 0, NewDecodeError(0, "indefinite length encoding", ErrIndefiniteLength)
	}
	if numBytes > MaxLengthOctets {
		return 0, 0, NewDecodeError(0, "too many length octets", ErrLengthTooLong)
	}
	if 1+numBytes > len(b) {
		return 0, 0, NewDecodeError(0, "truncated length encoding", ErrUnexpectedEOF)
	}

	var acc uint64
	for i := 1; i <= numBytes; i++ {
		acc = acc<<8 | uint64(b[i])
	}
	return int(acc), 1 + numBytes, nil
}

// ReadHeader reads a tag and its length.
func (c *Cursor) ReadHeader() (Tag, int, error) {
	tag, err := c.ReadTag()
	if err != nil {
		return 0, 0, err
	}
	length, err := c.ReadLength()
	if err != nil {
		return 0, 0, err
	}
	return tag, length, nil
}

// expectHeader reads a header and checks its tag.
func (c *Cursor) expectHeader(expected Tag) (int, error) {
	startOffset := c.pos

	// Read and verify tag
	tag, err := c.ReadTag()
	if err != nil {
		return 0, err
	}
	if tag != expected {
		return 0, &TagMismatchError{Offset: startOffset, Expected: expected, Actual: tag}
	}

	return c.ReadLength()
}

// readSingleOctet reads a primitive whose value must be exactly one byte wide.
func (c *Cursor) readSingleOctet(expected Tag, name string) (byte, error) {
	startOffset := c.pos

	length, err := c.expectHeader(expected)
	if err != nil {
		return 0, err
	}
	if length != 1 {
		return 0, NewDecodeError(startOffset, name+" must be a single octet", ErrInvalidLength)
	}

	v := c.data[c.pos]
	c.pos++
	return v, nil
}

// ReadInteger reads a single-octet INTEGER.
func (c *Cursor) ReadInteger() (byte, error) {
	return c.readSingleOctet(TagInteger, "integer")
}

// ReadEnumerated reads a single-octet ENUMERATED.
func (c *Cursor) ReadEnumerated() (byte, error) {
	return c.readSingleOctet(TagEnumerated, "enumerated")
}

// ReadBoolean reads a BOOLEAN. Any non-zero octet is true.
func (c *Cursor) ReadBoolean() (bool, error) {
	v, err := c.readSingleOctet(TagBoolean, "boolean")
	if err != nil {
		return false, err
	}
	return v != 0x00, nil
}

// ReadOctetString reads a universal OCTET STRING.
func (c *Cursor) ReadOctetString() ([]byte, error) {
	return c.ReadOctetStringWithTag(TagOctetString)
}

// ReadOctetStringWithTag reads a primitive string value carried under tag.
// The returned slice is a copy and does not alias the buffer.
func (c *Cursor) ReadOctetStringWithTag(tag Tag) ([]byte, error) {
	length, err := c.expectHeader(tag)
	if err != nil {
		return nil, err
	}
	return c.readBytes(length), nil
}

// readBytes consumes n bytes that ReadLength has already bounds-checked.
func (c *Cursor) readBytes(n int) []byte {
	value := make([]byte, n)
	copy(value, c.data[c.pos:c.pos+n])
	c.pos += n
	return value
}

// ReadValue consumes length bytes after a header read with ReadHeader.
func (c *Cursor) ReadValue(length int) ([]byte, error) {
	c.lastTag = -1
	if length < 0 || length > c.Remaining() {
		return nil, NewDecodeError(c.pos, "value exceeds remaining data", ErrUnexpectedEOF)
	}
	return c.readBytes(length), nil
}

// ReadConstructed reads the header of a constructed value and returns its
// content range together with the position just past it. The cursor is
// left at the start of the content, not advanced past it; callers either
// descend into the content or Seek to end.
func (c *Cursor) ReadConstructed(tag Tag) (inner []byte, end int, err error) {
	length, err := c.expectHeader(tag)
	if err != nil {
		return nil, 0, err
	}
	end = c.pos + length
	return c.data[c.pos:end:end], end, nil
}

// Skip advances the cursor by n bytes.
func (c *Cursor) Skip(n int) error {
	return c.Seek(c.pos + n)
}
