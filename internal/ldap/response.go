package ldap

import (
	"github.com/KilimcininKorOglu/dirlite/internal/ber"
)

// Result holds the LDAPResult fields shared by BindResponse and
// SearchResultDone.
// LDAPResult ::= SEQUENCE {
//
//	resultCode         ENUMERATED,
//	matchedDN          LDAPDN,
//	diagnosticMessage  LDAPString,
//	referral           [3] Referral OPTIONAL
//
// }
type Result struct {
	Code              ResultCode
	MatchedDN         string
	DiagnosticMessage string
}

// Attribute is one attribute of a search result entry. An empty Values
// list encodes an empty value set, as used for typesOnly searches.
type Attribute struct {
	Type   string
	Values [][]byte
}

// SearchResultEntry represents an LDAP SearchResultEntry
// SearchResultEntry ::= [APPLICATION 4] SEQUENCE {
//
//	objectName      LDAPDN,
//	attributes      PartialAttributeList
//
// }
type SearchResultEntry struct {
	ObjectName string
	Attributes []Attribute
}

// EncodeBindResponse encodes a complete BindResponse PDU.
func EncodeBindResponse(messageID int, result Result) ([]byte, error) {
	return encodeResultMessage(messageID, TagBindResponse, result)
}

// EncodeSearchResultDone encodes a complete SearchResultDone PDU.
func EncodeSearchResultDone(messageID int, result Result) ([]byte, error) {
	return encodeResultMessage(messageID, TagSearchResultDone, result)
}

func encodeResultMessage(messageID int, tag ber.Tag, result Result) ([]byte, error) {
	enc := ber.NewEncoder(32)

	seq := enc.BeginSequence()
	if err := writeSmallInteger(enc, ber.TagInteger, messageID); err != nil {
		return nil, err
	}

	pos := enc.BeginConstructed(tag)
	enc.WriteEnumerated(int64(result.Code))
	if err := enc.WriteOctetString([]byte(result.MatchedDN)); err != nil {
		return nil, err
	}
	if err := enc.WriteOctetString([]byte(result.DiagnosticMessage)); err != nil {
		return nil, err
	}
	if err := enc.EndConstructed(pos); err != nil {
		return nil, err
	}

	if err := enc.EndSequence(seq); err != nil {
		return nil, err
	}
	return enc.Bytes(), nil
}

// EncodeSearchResultEntry encodes a complete SearchResultEntry PDU.
// PartialAttributeList ::= SEQUENCE OF partialAttribute PartialAttribute
// PartialAttribute ::= SEQUENCE {
//
//	type       AttributeDescription,
//	vals       SET OF value AttributeValue
//
// }
func EncodeSearchResultEntry(messageID int, entry *SearchResultEntry) ([]byte, error) {
	enc := ber.NewEncoder(128)

	seq := enc.BeginSequence()
	if err := writeSmallInteger(enc, ber.TagInteger, messageID); err != nil {
		return nil, err
	}

	pos := enc.BeginConstructed(TagSearchResultEntry)
	if err := enc.WriteOctetString([]byte(entry.ObjectName)); err != nil {
		return nil, err
	}

	attrList := enc.BeginSequence()
	for _, attr := range entry.Attributes {
		attrSeq := enc.BeginSequence()
		if err := enc.WriteOctetString([]byte(attr.Type)); err != nil {
			return nil, err
		}
		vals := enc.BeginSet()
		for _, v := range attr.Values {
			if err := enc.WriteOctetString(v); err != nil {
				return nil, err
			}
		}
		if err := enc.EndSet(vals); err != nil {
			return nil, err
		}
		if err := enc.EndSequence(attrSeq); err != nil {
			return nil, err
		}
	}
	if err := enc.EndSequence(attrList); err != nil {
		return nil, err
	}

	if err := enc.EndConstructed(pos); err != nil {
		return nil, err
	}
	if err := enc.EndSequence(seq); err != nil {
		return nil, err
	}
	return enc.Bytes(), nil
}

// Response is a decoded response PDU. Exactly one of Result and Entry is
// set, depending on OpTag.
type Response struct {
	MessageID int
	OpTag     ber.Tag
	Result    *Result
	Entry     *SearchResultEntry
}

// DecodeResponse decodes a BindResponse, SearchResultEntry or
// SearchResultDone PDU.
func DecodeResponse(data []byte) (*Response, error) {
	if len(data) == 0 {
		return nil, ErrEmptyMessage
	}

	c := ber.NewCursor(data)
	if _, _, err := c.ReadConstructed(ber.TagSequence); err != nil {
		return nil, NewParseError(0, "expected SEQUENCE for LDAPMessage", err)
	}

	id, err := c.ReadInteger()
	if err != nil {
		return nil, NewParseError(c.Pos(), "failed to read messageID", err)
	}

	opStart := c.Pos()
	tag, length, err := c.ReadHeader()
	if err != nil {
		return nil, NewParseError(opStart, "failed to read protocolOp header", err)
	}
	opEnd := c.Pos() + length

	resp := &Response{
		MessageID: int(id),
		OpTag:     tag,
	}

	switch tag {
	case TagBindResponse, TagSearchResultDone:
		resp.Result, err = decodeResult(c)
	case TagSearchResultEntry:
		resp.Entry, err = decodeSearchResultEntry(c)
	default:
		return nil, NewParseError(opStart, "operation "+tag.String(), ErrUnsupportedOperation)
	}
	if err != nil {
		return nil, err
	}

	if c.Pos() > opEnd {
		return nil, NewParseError(c.Pos(), "response exceeds its declared length", ErrTrailingData)
	}
	return resp, nil
}

func decodeResult(c *ber.Cursor) (*Result, error) {
	code, err := c.ReadEnumerated()
	if err != nil {
		return nil, NewParseError(c.Pos(), "failed to read resultCode", err)
	}

	matchedDN, err := c.ReadOctetString()
	if err != nil {
		return nil, NewParseError(c.Pos(), "failed to read matchedDN", err)
	}

	diag, err := c.ReadOctetString()
	if err != nil {
		return nil, NewParseError(c.Pos(), "failed to read diagnosticMessage", err)
	}

	return &Result{
		Code:              ResultCode(code),
		MatchedDN:         string(matchedDN),
		DiagnosticMessage: string(diag),
	}, nil
}

func decodeSearchResultEntry(c *ber.Cursor) (*SearchResultEntry, error) {
	name, err := c.ReadOctetString()
	if err != nil {
		return nil, NewParseError(c.Pos(), "failed to read objectName", err)
	}
	entry := &SearchResultEntry{ObjectName: string(name)}

	_, listEnd, err := c.ReadConstructed(ber.TagSequence)
	if err != nil {
		return nil, NewParseError(c.Pos(), "expected SEQUENCE for attributes", err)
	}

	for c.Pos() < listEnd {
		if _, _, err := c.ReadConstructed(ber.TagSequence); err != nil {
			return nil, NewParseError(c.Pos(), "expected SEQUENCE for attribute", err)
		}

		attrType, err := c.ReadOctetString()
		if err != nil {
			return nil, NewParseError(c.Pos(), "failed to read attribute type", err)
		}
		attr := Attribute{Type: string(attrType)}

		_, setEnd, err := c.ReadConstructed(ber.TagSet)
		if err != nil {
			return nil, NewParseError(c.Pos(), "expected SET for attribute values", err)
		}
		for c.Pos() < setEnd {
			v, err := c.ReadOctetString()
			if err != nil {
				return nil, NewParseError(c.Pos(), "failed to read attribute value", err)
			}
			attr.Values = append(attr.Values, v)
		}

		entry.Attributes = append(entry.Attributes, attr)
	}

	return entry, nil
}
