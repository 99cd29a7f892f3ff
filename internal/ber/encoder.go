package ber

import (
	"errors"
)

// Errors returned by the encoder
var (
	ErrLengthOverflow     = errors.New("ber: length value overflow")
	ErrNegativeLength     = errors.New("ber: negative length not allowed")
	ErrInvalidPlaceholder = errors.New("ber: invalid length placeholder position")
)

// Encoder appends BER values to a growing buffer. Constructed values are
// written with a placeholder length that EndConstructed patches once the
// content size is known.
type Encoder struct {
	buf []byte
}

// NewEncoder creates a new encoder with an optional initial capacity.
func NewEncoder(capacity int) *Encoder {
	if capacity <= 0 {
		capacity = 64
	}
	return &Encoder{
		buf: make([]byte, 0, capacity),
	}
}

// Bytes returns the encoded bytes.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Reset clears the encoder buffer for reuse.
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

// Len returns the current length of encoded data.
func (e *Encoder) Len() int {
	return len(e.buf)
}

// WriteTag appends a single tag byte.
func (e *Encoder) WriteTag(t Tag) {
	e.buf = append(e.buf, byte(t))
}

// WriteLength appends a definite length in the shortest form.
func (e *Encoder) WriteLength(length int) error {
	b, err := AppendLength(e.buf, length)
	if err != nil {
		return err
	}
	e.buf = b
	return nil
}

// AppendLength appends the encoding of length to dst. Lengths up to 127
// use the short form, larger ones use one to four big-endian octets.
func AppendLength(dst []byte, length int) ([]byte, error) {
	if length < 0 {
		return dst, ErrNegativeLength
	}

	// Short form: length fits in 7 bits (0-127)
	if length <= MaxShortFormLength {
		return append(dst, byte(length)), nil
	}
	if uint64(length) > MaxLength {
		return dst, ErrLengthOverflow
	}

	numBytes := lengthOctets(length)
	dst = append(dst, byte(LengthLongFormBit|numBytes))

	// Write length bytes in big-endian order
	for i := numBytes - 1; i >= 0; i-- {
		dst = append(dst, byte(length>>(i*8)))
	}
	return dst, nil
}

// lengthOctets returns how many octets are needed to hold length.
func lengthOctets(length int) int {
	n := 0
	for length > 0 {
		n++
		length >>= 8
	}
	return n
}

// WriteBoolean writes a BOOLEAN, encoding true as 0xFF.
func (e *Encoder) WriteBoolean(v bool) {
	e.buf = append(e.buf, byte(TagBoolean), 0x01)
	if v {
		e.buf = append(e.buf, 0xFF)
	} else {
		e.buf = append(e.buf, 0x00)
	}
}

// WriteInteger writes an INTEGER in minimal two's complement form.
func (e *Encoder) WriteInteger(v int64) {
	e.writeIntegerWithTag(TagInteger, v)
}

// WriteEnumerated writes an ENUMERATED. Enumerated values are encoded
// identically to integers.
func (e *Encoder) WriteEnumerated(v int64) {
	e.writeIntegerWithTag(TagEnumerated, v)
}

func (e *Encoder) writeIntegerWithTag(tag Tag, v int64) {
	encoded := encodeInteger(v)
	e.buf = append(e.buf, byte(tag), byte(len(encoded)))
	e.buf = append(e.buf, encoded...)
}

// encodeInteger encodes an int64 as a minimal two's complement byte slice.
func encodeInteger(v int64) []byte {
	n := 1
	for i := v; i > 127 || i < -128; i >>= 8 {
		n++
	}

	out := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}

// WriteOctetString writes a universal OCTET STRING.
func (e *Encoder) WriteOctetString(v []byte) error {
	return e.WriteOctetStringWithTag(TagOctetString, v)
}

// WriteOctetStringWithTag writes a primitive string value under tag.
func (e *Encoder) WriteOctetStringWithTag(tag Tag, v []byte) error {
	e.WriteTag(tag)
	if err := e.WriteLength(len(v)); err != nil {
		return err
	}
	e.buf = append(e.buf, v...)
	return nil
}

// WriteRaw writes raw bytes directly to the buffer.
func (e *Encoder) WriteRaw(data []byte) {
	e.buf = append(e.buf, data...)
}

// BeginConstructed writes tag and a one-byte placeholder length, and
// returns the placeholder's position for EndConstructed.
func (e *Encoder) BeginConstructed(tag Tag) int {
	e.buf = append(e.buf, byte(tag), 0x00)
	return len(e.buf) - 1
}

// EndConstructed patches the placeholder at pos with the length of
// everything written after it. Content longer than 127 bytes is shifted
// right to make room for a long form length. Nested values must be ended
// innermost first.
func (e *Encoder) EndConstructed(pos int) error {
	if pos < 0 || pos >= len(e.buf) {
		return ErrInvalidPlaceholder
	}

	contentStart := pos + 1
	contentLen := len(e.buf) - contentStart
	if contentLen <= MaxShortFormLength {
		e.buf[pos] = byte(contentLen)
		return nil
	}
	if uint64(contentLen) > MaxLength {
		return ErrLengthOverflow
	}

	extra := lengthOctets(contentLen)
	oldLen := len(e.buf)
	e.buf = append(e.buf, make([]byte, extra)...)
	copy(e.buf[contentStart+extra:], e.buf[contentStart:oldLen])

	e.buf[pos] = byte(LengthLongFormBit | extra)
	for i := 0; i < extra; i++ {
		e.buf[contentStart+i] = byte(contentLen >> ((extra - 1 - i) * 8))
	}
	return nil
}

// BeginSequence starts a universal SEQUENCE.
func (e *Encoder) BeginSequence() int {
	return e.BeginConstructed(TagSequence)
}

// EndSequence ends a SEQUENCE started with BeginSequence.
func (e *Encoder) EndSequence(pos int) error {
	return e.EndConstructed(pos)
}

// BeginSet starts a universal SET.
func (e *Encoder) BeginSet() int {
	return e.BeginConstructed(TagSet)
}

// EndSet ends a SET started with BeginSet.
func (e *Encoder) EndSet(pos int) error {
	return e.EndConstructed(pos)
}
