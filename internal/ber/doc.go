// Package ber implements the subset of ASN.1 BER (Basic Encoding Rules)
// that dirlite speaks on the wire.
//
// Only single-octet tags and definite lengths are supported. A length is
// either a single short form octet (0-127) or a 0x80|N prefix followed by
// N big-endian octets, with N between 1 and 4. The indefinite form and
// wider lengths are rejected.
//
// # Decoding
//
// A Cursor walks an immutable buffer. Each read advances it past what was
// consumed:
//
//	c := ber.NewCursor(data)
//	_, end, err := c.ReadConstructed(ber.TagSequence)
//	if err != nil {
//	    // reject the PDU
//	}
//	id, err := c.ReadInteger()
//
// ReadConstructed leaves the cursor at the start of the content so the
// caller can descend into it while bounding nested reads by end.
//
// # Encoding
//
// Encoder appends to a buffer. Constructed values are written with a
// placeholder length that is patched, and widened to long form if needed,
// when the value is closed:
//
//	enc := ber.NewEncoder(256)
//	pos := enc.BeginSequence()
//	enc.WriteInteger(1)
//	enc.WriteOctetString([]byte("alice"))
//	if err := enc.EndSequence(pos); err != nil {
//	    // handle error
//	}
//	data := enc.Bytes()
package ber
