package ldap

import (
	"errors"
	"io"

	"github.com/KilimcininKorOglu/dirlite/internal/ber"
)

// Framing errors
var (
	// ErrInvalidPacket is returned when a stream does not start with a
	// SEQUENCE or carries a malformed length.
	ErrInvalidPacket = errors.New("ldap: invalid packet")

	// ErrPacketTooLarge is returned when a packet exceeds the size limit.
	ErrPacketTooLarge = errors.New("ldap: packet too large")
)

// ReadPacket reads one complete LDAPMessage (tag, length and content)
// from r. Packets whose content is larger than maxSize are rejected
// before the content is read; maxSize <= 0 means no limit.
func ReadPacket(r io.Reader, maxSize int) ([]byte, error) {
	// Tag plus the first length octet.
	header := make([]byte, 2, 2+ber.MaxLengthOctets)
	if _, err := io.ReadFull(r, header[:1]); err != nil {
		return nil, err
	}
	if ber.Tag(header[0]) != ber.TagSequence {
		return nil, ErrInvalidPacket
	}
	if _, err := io.ReadFull(r, header[1:2]); err != nil {
		return nil, unexpectedEOF(err)
	}

	// Long form: bits 1-7 contain the number of subsequent length bytes
	if header[1]&ber.LengthLongFormBit != 0 {
		numBytes := int(header[1] &^ ber.LengthLongFormBit)
		if numBytes == 0 || numBytes > ber.MaxLengthOctets {
			return nil, ErrInvalidPacket
		}
		header = header[:2+numBytes]
		if _, err := io.ReadFull(r, header[2:]); err != nil {
			return nil, unexpectedEOF(err)
		}
	}

	length, _, err := ber.ParseLength(header[1:])
	if err != nil {
		return nil, ErrInvalidPacket
	}
	if maxSize > 0 && length > maxSize {
		return nil, ErrPacketTooLarge
	}

	packet := make([]byte, len(header)+length)
	copy(packet, header)
	if _, err := io.ReadFull(r, packet[len(header):]); err != nil {
		return nil, unexpectedEOF(err)
	}
	return packet, nil
}

// unexpectedEOF maps a clean EOF inside a packet to io.ErrUnexpectedEOF.
func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
