package ber

import (
	"bytes"
	"errors"
	"testing"
)

func TestCursor_ReadTag(t *testing.T) {
	c := NewCursor([]byte{0x30, 0xA4})

	tag, err := c.ReadTag()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tag != TagSequence {
		t.Errorf("expected tag %s, got %s", TagSequence, tag)
	}

	tag, err = c.ReadTag()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tag != 0xA4 {
		t.Errorf("expected tag 0xA4, got %s", tag)
	}

	if !c.AtEnd() {
		t.Error("expected cursor at end")
	}

	_, err = c.ReadTag()
	if !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestCursor_ReadLength(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected int
		consumed int
		wantErr  error
	}{
		{
			name:     "short form zero",
			data:     []byte{0x00},
			expected: 0,
			consumed: 1,
		},
		{
			name:     "short form 5",
			data:     append([]byte{0x05}, make([]byte, 5)...),
			expected: 5,
			consumed: 1,
		},
		{
			name:     "long form one octet",
			data:     append([]byte{0x81, 0x80}, make([]byte, 128)...),
			expected: 128,
			consumed: 2,
		},
		{
			name:     "long form two octets",
			data:     append([]byte{0x82, 0x01, 0x00}, make([]byte, 256)...),
			expected: 256,
			consumed: 3,
		},
		{
			name:    "indefinite length",
			data:    []byte{0x80},
			wantErr: ErrIndefiniteLength,
		},
		{
			name:    "five length octets",
			data:    []byte{0x85, 0x00, 0x00, 0x00, 0x00, 0x01},
			wantErr: ErrLengthTooLong,
		},
		{
			name:    "truncated length octets",
			data:    []byte{0x82, 0x01},
			wantErr: ErrUnexpectedEOF,
		},
		{
			name:    "length beyond remaining data",
			data:    []byte{0x05, 0x01, 0x02},
			wantErr: ErrUnexpectedEOF,
		},
		{
			name:    "empty",
			data:    []byte{},
			wantErr: ErrUnexpectedEOF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCursor(tt.data)
			length, err := c.ReadLength()

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if length != tt.expected {
				t.Errorf("expected length %d, got %d", tt.expected, length)
			}
			if c.Pos() != tt.consumed {
				t.Errorf("expected position %d, got %d", tt.consumed, c.Pos())
			}
		})
	}
}

func TestParseLength_ShortFormRoundTrip(t *testing.T) {
	for n := 0; n <= MaxShortFormLength; n++ {
		encoded, err := AppendLength(nil, n)
		if err != nil {
			t.Fatalf("AppendLength(%d): %v", n, err)
		}
		if len(encoded) != 1 {
			t.Fatalf("expected short form for %d, got % X", n, encoded)
		}
		got, used, err := ParseLength(encoded)
		if err != nil {
			t.Fatalf("ParseLength(% X): %v", encoded, err)
		}
		if got != n || used != 1 {
			t.Errorf("expected (%d, 1), got (%d, %d)", n, got, used)
		}
	}
}

func TestParseLength_LongFormRoundTrip(t *testing.T) {
	tests := []struct {
		length int
		octets int
	}{
		{128, 1},
		{255, 1},
		{256, 2},
		{65535, 2},
		{65536, 3},
		{1<<24 - 1, 3},
		{1 << 24, 4},
		{MaxLength, 4},
	}

	for _, tt := range tests {
		encoded, err := AppendLength(nil, tt.length)
		if err != nil {
			t.Fatalf("AppendLength(%d): %v", tt.length, err)
		}
		if len(encoded) != 1+tt.octets {
			t.Errorf("length %d: expected %d octets, got % X", tt.length, 1+tt.octets, encoded)
		}
		got, used, err := ParseLength(encoded)
		if err != nil {
			t.Fatalf("ParseLength(% X): %v", encoded, err)
		}
		if got != tt.length || used != len(encoded) {
			t.Errorf("expected (%d, %d), got (%d, %d)", tt.length, len(encoded), got, used)
		}
	}
}

func TestAppendLength_Overflow(t *testing.T) {
	if _, err := AppendLength(nil, MaxLength+1); !errors.Is(err, ErrLengthOverflow) {
		t.Errorf("expected ErrLengthOverflow, got %v", err)
	}
	if _, err := AppendLength(nil, -1); !errors.Is(err, ErrNegativeLength) {
		t.Errorf("expected ErrNegativeLength, got %v", err)
	}
}

func TestCursor_SingleOctetPrimitives(t *testing.T) {
	t.Run("integer", func(t *testing.T) {
		c := NewCursor([]byte{0x02, 0x01, 0x07})
		v, err := c.ReadInteger()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != 7 {
			t.Errorf("expected 7, got %d", v)
		}
	})

	t.Run("enumerated", func(t *testing.T) {
		c := NewCursor([]byte{0x0A, 0x01, 0x02})
		v, err := c.ReadEnumerated()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != 2 {
			t.Errorf("expected 2, got %d", v)
		}
	})

	t.Run("boolean true", func(t *testing.T) {
		c := NewCursor([]byte{0x01, 0x01, 0xFF})
		v, err := c.ReadBoolean()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !v {
			t.Error("expected true")
		}
	})

	t.Run("boolean false", func(t *testing.T) {
		c := NewCursor([]byte{0x01, 0x01, 0x00})
		v, err := c.ReadBoolean()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v {
			t.Error("expected false")
		}
	})

	t.Run("tag mismatch", func(t *testing.T) {
		c := NewCursor([]byte{0x04, 0x01, 0x07})
		_, err := c.ReadInteger()
		if !errors.Is(err, ErrTagMismatch) {
			t.Fatalf("expected ErrTagMismatch, got %v", err)
		}
		var tme *TagMismatchError
		if !errors.As(err, &tme) {
			t.Fatalf("expected *TagMismatchError, got %T", err)
		}
		if tme.Expected != TagInteger || tme.Actual != TagOctetString {
			t.Errorf("unexpected mismatch detail: %v", tme)
		}
	})

	t.Run("two octet integer rejected", func(t *testing.T) {
		c := NewCursor([]byte{0x02, 0x02, 0x01, 0x00})
		_, err := c.ReadInteger()
		if !errors.Is(err, ErrInvalidLength) {
			t.Errorf("expected ErrInvalidLength, got %v", err)
		}
	})

	t.Run("zero length integer rejected", func(t *testing.T) {
		c := NewCursor([]byte{0x02, 0x00})
		_, err := c.ReadInteger()
		if !errors.Is(err, ErrInvalidLength) {
			t.Errorf("expected ErrInvalidLength, got %v", err)
		}
	})

	t.Run("truncated value", func(t *testing.T) {
		c := NewCursor([]byte{0x02, 0x01})
		_, err := c.ReadInteger()
		if !errors.Is(err, ErrUnexpectedEOF) {
			t.Errorf("expected ErrUnexpectedEOF, got %v", err)
		}
	})
}

func TestCursor_ReadOctetString(t *testing.T) {
	data := []byte{0x04, 0x05, 'a', 'l', 'i', 'c', 'e', 0x80, 0x02, 'x', 'y'}
	c := NewCursor(data)

	v, err := c.ReadOctetString()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(v, []byte("alice")) {
		t.Errorf("expected %q, got %q", "alice", v)
	}

	// The value must not alias the input buffer.
	data[2] = 'X'
	if v[0] != 'a' {
		t.Error("octet string aliases the input buffer")
	}

	v, err = c.ReadOctetStringWithTag(ContextTag(0, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(v, []byte("xy")) {
		t.Errorf("expected %q, got %q", "xy", v)
	}
	if !c.AtEnd() {
		t.Errorf("expected cursor at end, position %d", c.Pos())
	}
}

func TestCursor_ReadOctetString_Truncated(t *testing.T) {
	c := NewCursor([]byte{0x04, 0x05, 'a', 'b'})
	_, err := c.ReadOctetString()
	if !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("expected ErrUnexpectedEOF, got %v", err)
	}
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DecodeError, got %T", err)
	}
	if de.Offset != 1 {
		t.Errorf("expected offset 1, got %d", de.Offset)
	}
}

func TestCursor_ReadConstructed(t *testing.T) {
	// SEQUENCE { INTEGER 1, OCTET STRING "ab" } followed by a trailing byte
	data := []byte{0x30, 0x07, 0x02, 0x01, 0x01, 0x04, 0x02, 'a', 'b', 0xEE}
	c := NewCursor(data)

	inner, end, err := c.ReadConstructed(TagSequence)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if end != 9 {
		t.Errorf("expected end 9, got %d", end)
	}
	if !bytes.Equal(inner, data[2:9]) {
		t.Errorf("unexpected inner range % X", inner)
	}
	if c.Pos() != 2 {
		t.Errorf("expected cursor at content start 2, got %d", c.Pos())
	}

	if err := c.Seek(end); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tag, err := c.ReadTag()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tag != 0xEE {
		t.Errorf("expected trailing tag 0xEE, got %s", tag)
	}
}

func TestCursor_ReadConstructed_Mismatch(t *testing.T) {
	c := NewCursor([]byte{0x31, 0x00})
	_, _, err := c.ReadConstructed(TagSequence)
	if !errors.Is(err, ErrTagMismatch) {
		t.Errorf("expected ErrTagMismatch, got %v", err)
	}
}

func TestCursor_PeekAndUnread(t *testing.T) {
	c := NewCursor([]byte{0x80, 0x01, 'a', 0x30})

	tag, err := c.PeekTag()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tag != 0x80 || c.Pos() != 0 {
		t.Errorf("peek changed state: tag %s, pos %d", tag, c.Pos())
	}

	if err := c.UnreadTag(); !errors.Is(err, ErrNoUnread) {
		t.Errorf("expected ErrNoUnread before any read, got %v", err)
	}

	tag, err = c.ReadTag()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.UnreadTag(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Pos() != 0 {
		t.Errorf("expected position 0 after unread, got %d", c.Pos())
	}
	if err := c.UnreadTag(); !errors.Is(err, ErrNoUnread) {
		t.Errorf("expected a second unread to fail, got %v", err)
	}

	if _, err := c.ReadOctetStringWithTag(tag); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.ReadTag(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.AtEnd() {
		t.Error("expected cursor at end")
	}
}

func TestCursor_HeaderAndValue(t *testing.T) {
	c := NewCursor([]byte{0x87, 0x03, 'u', 'i', 'd'})

	tag, length, err := c.ReadHeader()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tag != ContextTag(7, false) || length != 3 {
		t.Errorf("expected (0x87, 3), got (%s, %d)", tag, length)
	}

	v, err := c.ReadValue(length)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(v) != "uid" {
		t.Errorf("expected %q, got %q", "uid", v)
	}

	if _, err := c.ReadValue(1); !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestCursor_SeekOutOfRange(t *testing.T) {
	c := NewCursor([]byte{0x01, 0x02})
	if err := c.Seek(3); !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("expected ErrUnexpectedEOF, got %v", err)
	}
	if err := c.Skip(2); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !c.AtEnd() {
		t.Error("expected cursor at end")
	}
}

func TestTag_Helpers(t *testing.T) {
	tests := []struct {
		tag         Tag
		class       Tag
		constructed bool
		number      int
		str         string
	}{
		{TagSequence, ClassUniversal, true, 0x10, "0x30"},
		{ApplicationTag(0, true), ClassApplication, true, 0, "0x60"},
		{ApplicationTag(2, false), ClassApplication, false, 2, "0x42"},
		{ContextTag(3, true), ClassContextSpecific, true, 3, "0xA3"},
		{ContextTag(7, false), ClassContextSpecific, false, 7, "0x87"},
	}

	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			if tt.tag.Class() != tt.class {
				t.Errorf("expected class %s, got %s", tt.class, tt.tag.Class())
			}
			if tt.tag.IsConstructed() != tt.constructed {
				t.Errorf("expected constructed %v", tt.constructed)
			}
			if tt.tag.Number() != tt.number {
				t.Errorf("expected number %d, got %d", tt.number, tt.tag.Number())
			}
			if tt.tag.String() != tt.str {
				t.Errorf("expected %q, got %q", tt.str, tt.tag.String())
			}
		})
	}
}

func BenchmarkCursor_ReadOctetString(b *testing.B) {
	data := append([]byte{0x04, 0x81, 0xC8}, bytes.Repeat([]byte{'a'}, 200)...)
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		c := NewCursor(data)
		_, _ = c.ReadOctetString()
	}
}
