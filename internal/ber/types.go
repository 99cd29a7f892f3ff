// Package ber implements the subset of ASN.1 BER (Basic Encoding Rules)
// used by dirlite's request and response PDUs.
package ber

import "fmt"

// Tag is a single identifier octet. Multi-octet (high tag number) forms
// are not used by the protocol and are never produced or accepted.
type Tag byte

// Tag class constants (bits 7-8 of the tag byte)
const (
	ClassUniversal       Tag = 0x00 // 00xxxxxx
	ClassApplication     Tag = 0x40 // 01xxxxxx
	ClassContextSpecific Tag = 0x80 // 10xxxxxx
	ClassPrivate         Tag = 0xC0 // 11xxxxxx
)

// Constructed flag (bit 6 of the tag byte)
const (
	TypePrimitive   Tag = 0x00 // xx0xxxxx
	TypeConstructed Tag = 0x20 // xx1xxxxx
)

// Universal tags, with the constructed bit already applied where the
// protocol always uses the constructed form.
const (
	TagBoolean     Tag = 0x01
	TagInteger     Tag = 0x02
	TagOctetString Tag = 0x04
	TagEnumerated  Tag = 0x0A
	TagSequence    Tag = 0x30
	TagSet         Tag = 0x31
)

// Length encoding constants
const (
	// LengthLongFormBit indicates long form length encoding (bit 8 set)
	LengthLongFormBit = 0x80
	// MaxShortFormLength is the maximum length encodable in short form (0-127)
	MaxShortFormLength = 127
	// MaxLengthOctets is the largest number of long form length octets accepted.
	MaxLengthOctets = 4
	// MaxLength is the largest length representable in MaxLengthOctets octets.
	MaxLength = 1<<32 - 1
)

// Class returns the class bits of the tag.
func (t Tag) Class() Tag {
	return t & 0xC0
}

// IsConstructed reports whether the constructed bit is set.
func (t Tag) IsConstructed() bool {
	return t&TypeConstructed != 0
}

// Number returns the low five bits of the tag.
func (t Tag) Number() int {
	return int(t & 0x1F)
}

// String returns the tag as a hex byte, e.g. "0x30".
func (t Tag) String() string {
	return fmt.Sprintf("0x%02X", byte(t))
}

// ApplicationTag builds an application class tag.
func ApplicationTag(number int, constructed bool) Tag {
	return makeTag(ClassApplication, number, constructed)
}

// ContextTag builds a context-specific tag.
func ContextTag(number int, constructed bool) Tag {
	return makeTag(ClassContextSpecific, number, constructed)
}

func makeTag(class Tag, number int, constructed bool) Tag {
	t := class | Tag(number&0x1F)
	if constructed {
		t |= TypeConstructed
	}
	return t
}
