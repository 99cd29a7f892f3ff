package ldap

import (
	"github.com/KilimcininKorOglu/dirlite/internal/ber"
	"github.com/KilimcininKorOglu/dirlite/internal/filter"
)

// Request is one of *BindRequest, *SearchRequest or *UnbindRequest.
type Request interface {
	// OperationTag returns the APPLICATION tag the request is sent under.
	OperationTag() ber.Tag
	isRequest()
}

// BindRequest represents an LDAP Bind Request. Credentials are not
// decoded; every bind succeeds.
// BindRequest ::= [APPLICATION 0] SEQUENCE {
//
//	version                 INTEGER (1 ..  127),
//	name                    LDAPDN,
//	authentication          AuthenticationChoice
//
// }
type BindRequest struct {
	Version int
	Name    string
}

// SearchRequest represents an LDAP Search Request
// SearchRequest ::= [APPLICATION 3] SEQUENCE {
//
//	baseObject      LDAPDN,
//	scope           ENUMERATED,
//	derefAliases    ENUMERATED,
//	sizeLimit       INTEGER (0 ..  maxInt),
//	timeLimit       INTEGER (0 ..  maxInt),
//	typesOnly       BOOLEAN,
//	filter          Filter,
//	attributes      AttributeSelection
//
// }
type SearchRequest struct {
	BaseObject   string
	Scope        SearchScope
	DerefAliases DerefAliases
	SizeLimit    int
	TimeLimit    int // seconds
	TypesOnly    bool
	Filter       *filter.Filter
	Attributes   []string
}

// UnbindRequest represents an LDAP Unbind Request. It has no content.
type UnbindRequest struct{}

func (*BindRequest) OperationTag() ber.Tag   { return TagBindRequest }
func (*SearchRequest) OperationTag() ber.Tag { return TagSearchRequest }
func (*UnbindRequest) OperationTag() ber.Tag { return TagUnbindRequest }

func (*BindRequest) isRequest()   {}
func (*SearchRequest) isRequest() {}
func (*UnbindRequest) isRequest() {}

// Message is a decoded request envelope.
// LDAPMessage ::= SEQUENCE {
//
//	messageID       MessageID,
//	protocolOp      CHOICE { ... },
//	controls        [0] Controls OPTIONAL
//
// }
//
// Controls are ignored.
type Message struct {
	MessageID int
	OpTag     ber.Tag
	Request   Request
}

// DecodeMessage decodes one request PDU. Message IDs and the integer
// fields of requests are single octets (0-255).
//
// If the envelope decodes but the operation does not, DecodeMessage
// returns the partial message (MessageID and OpTag set, Request nil)
// together with the error so the caller can answer with a protocol error.
func DecodeMessage(data []byte) (*Message, error) {
	if len(data) == 0 {
		return nil, ErrEmptyMessage
	}

	c := ber.NewCursor(data)

	_, end, err := c.ReadConstructed(ber.TagSequence)
	if err != nil {
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
	if opEnd > end {
		return nil, NewParseError(opStart, "protocolOp exceeds message", ber.ErrUnexpectedEOF)
	}

	msg := &Message{
		MessageID: int(id),
		OpTag:     tag,
	}

	var req Request
	switch tag {
	case TagBindRequest:
		req, err = decodeBindRequest(c, opEnd)
	case TagSearchRequest:
		req, err = decodeSearchRequest(c, opEnd)
	case TagUnbindRequest:
		req, err = &UnbindRequest{}, c.Seek(opEnd)
	default:
		return msg, NewParseError(opStart, "operation "+tag.String(), ErrUnsupportedOperation)
	}
	if err != nil {
		return msg, err
	}

	msg.Request = req
	return msg, nil
}

// decodeBindRequest decodes version and name and skips the credentials.
func decodeBindRequest(c *ber.Cursor, end int) (*BindRequest, error) {
	version, err := c.ReadInteger()
	if err != nil {
		return nil, NewParseError(c.Pos(), "failed to read bind version", err)
	}

	name, err := c.ReadOctetString()
	if err != nil {
		return nil, NewParseError(c.Pos(), "failed to read bind name", err)
	}

	if c.Pos() > end {
		return nil, NewParseError(c.Pos(), "bind fields exceed operation", ErrTrailingData)
	}
	if err := c.Seek(end); err != nil {
		return nil, err
	}

	return &BindRequest{
		Version: int(version),
		Name:    string(name),
	}, nil
}

// decodeSearchRequest decodes the fixed search fields, the filter and the
// optional attribute selection.
func decodeSearchRequest(c *ber.Cursor, end int) (*SearchRequest, error) {
	req := &SearchRequest{}

	base, err := c.ReadOctetString()
	if err != nil {
		return nil, NewParseError(c.Pos(), "failed to read baseObject", err)
	}
	req.BaseObject = string(base)

	scope, err := c.ReadEnumerated()
	if err != nil {
		return nil, NewParseError(c.Pos(), "failed to read scope", err)
	}
	if scope > byte(ScopeWholeSubtree) {
		return nil, NewParseError(c.Pos(), "scope out of range", ErrInvalidSearchScope)
	}
	req.Scope = SearchScope(scope)

	deref, err := c.ReadEnumerated()
	if err != nil {
		return nil, NewParseError(c.Pos(), "failed to read derefAliases", err)
	}
	if deref > byte(DerefAlways) {
		return nil, NewParseError(c.Pos(), "derefAliases out of range", ErrInvalidDerefAliases)
	}
	req.DerefAliases = DerefAliases(deref)

	sizeLimit, err := c.ReadInteger()
	if err != nil {
		return nil, NewParseError(c.Pos(), "failed to read sizeLimit", err)
	}
	req.SizeLimit = int(sizeLimit)

	timeLimit, err := c.ReadInteger()
	if err != nil {
		return nil, NewParseError(c.Pos(), "failed to read timeLimit", err)
	}
	req.TimeLimit = int(timeLimit)

	req.TypesOnly, err = c.ReadBoolean()
	if err != nil {
		return nil, NewParseError(c.Pos(), "failed to read typesOnly", err)
	}

	req.Filter, err = DecodeFilter(c)
	if err != nil {
		return nil, err
	}

	// AttributeSelection ::= SEQUENCE OF selector LDAPString
	if c.Pos() < end {
		_, attrEnd, err := c.ReadConstructed(ber.TagSequence)
		if err != nil {
			return nil, NewParseError(c.Pos(), "expected SEQUENCE for attributes", err)
		}
		for c.Pos() < attrEnd {
			attr, err := c.ReadOctetString()
			if err != nil {
				return nil, NewParseError(c.Pos(), "failed to read attribute selector", err)
			}
			req.Attributes = append(req.Attributes, string(attr))
		}
	}

	if c.Pos() != end {
		return nil, NewParseError(c.Pos(), "search request does not end at its declared length", ErrTrailingData)
	}

	return req, nil
}

// Encode returns the BER encoding of the message.
func (m *Message) Encode() ([]byte, error) {
	enc := ber.NewEncoder(128)

	seq := enc.BeginSequence()
	if err := writeSmallInteger(enc, ber.TagInteger, m.MessageID); err != nil {
		return nil, err
	}

	switch req := m.Request.(type) {
	case *BindRequest:
		if err := encodeBindRequest(enc, req); err != nil {
			return nil, err
		}
	case *SearchRequest:
		if err := encodeSearchRequest(enc, req); err != nil {
			return nil, err
		}
	case *UnbindRequest:
		enc.WriteTag(TagUnbindRequest)
		if err := enc.WriteLength(0); err != nil {
			return nil, err
		}
	default:
		return nil, ErrUnsupportedOperation
	}

	if err := enc.EndSequence(seq); err != nil {
		return nil, err
	}
	return enc.Bytes(), nil
}

func encodeBindRequest(enc *ber.Encoder, req *BindRequest) error {
	pos := enc.BeginConstructed(TagBindRequest)
	if err := writeSmallInteger(enc, ber.TagInteger, req.Version); err != nil {
		return err
	}
	if err := enc.WriteOctetString([]byte(req.Name)); err != nil {
		return err
	}
	// Anonymous simple authentication.
	if err := enc.WriteOctetStringWithTag(authSimpleTag, nil); err != nil {
		return err
	}
	return enc.EndConstructed(pos)
}

func encodeSearchRequest(enc *ber.Encoder, req *SearchRequest) error {
	pos := enc.BeginConstructed(TagSearchRequest)
	if err := enc.WriteOctetString([]byte(req.BaseObject)); err != nil {
		return err
	}
	if err := writeSmallInteger(enc, ber.TagEnumerated, int(req.Scope)); err != nil {
		return err
	}
	if err := writeSmallInteger(enc, ber.TagEnumerated, int(req.DerefAliases)); err != nil {
		return err
	}
	if err := writeSmallInteger(enc, ber.TagInteger, req.SizeLimit); err != nil {
		return err
	}
	if err := writeSmallInteger(enc, ber.TagInteger, req.TimeLimit); err != nil {
		return err
	}
	enc.WriteBoolean(req.TypesOnly)

	f := req.Filter
	if f == nil {
		f = filter.NewMatchAllFilter(filter.DefaultPresentAttribute)
	}
	if err := EncodeFilter(enc, f); err != nil {
		return err
	}

	attrs := enc.BeginSequence()
	for _, attr := range req.Attributes {
		if err := enc.WriteOctetString([]byte(attr)); err != nil {
			return err
		}
	}
	if err := enc.EndSequence(attrs); err != nil {
		return err
	}

	return enc.EndConstructed(pos)
}

// writeSmallInteger writes v as a single-octet primitive under tag, the
// only integer width the decoder accepts.
func writeSmallInteger(enc *ber.Encoder, tag ber.Tag, v int) error {
	if v < 0 || v > 0xFF {
		return ErrValueOutOfRange
	}
	enc.WriteTag(tag)
	enc.WriteRaw([]byte{0x01, byte(v)})
	return nil
}
