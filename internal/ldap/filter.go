package ldap

import (
	"github.com/KilimcininKorOglu/dirlite/internal/ber"
	"github.com/KilimcininKorOglu/dirlite/internal/filter"
)

// DecodeFilter decodes one filter at the cursor position.
// Per RFC 4511 Section 4.5.1:
// Filter ::= CHOICE {
//
//	and             [0] SET SIZE (1..MAX) OF filter Filter,
//	or              [1] SET SIZE (1..MAX) OF filter Filter,
//	not             [2] Filter,
//	equalityMatch   [3] AttributeValueAssertion,
//	substrings      [4] SubstringFilter,
//	present         [7] AttributeDescription,
//	...
//
// }
//
// Only the choices above are recognized. AND and OR may be empty. The
// cursor is left just past the filter on success.
func DecodeFilter(c *ber.Cursor) (*filter.Filter, error) {
	start := c.Pos()

	tag, length, err := c.ReadHeader()
	if err != nil {
		return nil, NewParseError(start, "failed to read filter header", err)
	}
	limit := c.Pos() + length

	var f *filter.Filter
	switch tag {
	case FilterTagPresent:
		attr, err := c.ReadValue(length)
		if err != nil {
			return nil, NewParseError(c.Pos(), "failed to read present attribute", err)
		}
		f = filter.NewMatchAllFilter(string(attr))

	case FilterTagEquality:
		f, err = decodeEqualityFilter(c)

	case FilterTagSubstrings:
		f, err = decodeSubstringFilter(c)

	case FilterTagAnd, FilterTagOr:
		var children []*filter.Filter
		children, err = decodeFilterList(c, limit)
		if err == nil {
			if tag == FilterTagAnd {
				f = filter.NewAndFilter(children...)
			} else {
				f = filter.NewOrFilter(children...)
			}
		}

	case FilterTagNot:
		var children []*filter.Filter
		children, err = decodeFilterList(c, limit)
		if err == nil {
			if len(children) != 1 {
				return nil, NewParseError(start, "NOT filter has wrong number of children", ErrNotArity)
			}
			f = filter.NewNotFilter(children[0])
		}

	default:
		return nil, NewParseError(start, "unsupported filter tag "+tag.String(), ErrUnknownFilter)
	}

	if err != nil {
		return nil, err
	}

	if c.Pos() != limit {
		return nil, NewParseError(c.Pos(), "filter does not end at its declared length", ErrInvalidFilter)
	}

	return f, nil
}

// decodeFilterList decodes child filters until the cursor reaches limit.
func decodeFilterList(c *ber.Cursor, limit int) ([]*filter.Filter, error) {
	children := make([]*filter.Filter, 0)
	for c.Pos() < limit {
		child, err := DecodeFilter(c)
		if err != nil {
			return nil, err
		}
		if c.Pos() > limit {
			return nil, NewParseError(c.Pos(), "child filter exceeds parent length", ErrInvalidFilter)
		}
		children = append(children, child)
	}
	return children, nil
}

// decodeEqualityFilter decodes an AttributeValueAssertion.
// AttributeValueAssertion ::= SEQUENCE {
//
//	attributeDesc   AttributeDescription,
//	assertionValue  AssertionValue
//
// }
func decodeEqualityFilter(c *ber.Cursor) (*filter.Filter, error) {
	attr, err := c.ReadOctetString()
	if err != nil {
		return nil, NewParseError(c.Pos(), "failed to read equality attribute", err)
	}

	value, err := c.ReadOctetString()
	if err != nil {
		return nil, NewParseError(c.Pos(), "failed to read equality value", err)
	}

	return filter.NewEqualityFilter(string(attr), value), nil
}

// decodeSubstringFilter decodes a SubstringFilter.
// SubstringFilter ::= SEQUENCE {
//
//	type           AttributeDescription,
//	substrings     SEQUENCE SIZE (1..MAX) OF substring CHOICE {
//	     initial [0] AssertionValue,  -- can occur at most once
//	     any     [1] AssertionValue,
//	     final   [2] AssertionValue } -- can occur at most once
//
// }
func decodeSubstringFilter(c *ber.Cursor) (*filter.Filter, error) {
	attr, err := c.ReadOctetString()
	if err != nil {
		return nil, NewParseError(c.Pos(), "failed to read substring attribute", err)
	}

	_, end, err := c.ReadConstructed(ber.TagSequence)
	if err != nil {
		return nil, NewParseError(c.Pos(), "expected SEQUENCE for substrings", err)
	}

	sf := &filter.SubstringFilter{}
	components := 0

loop:
	for c.Pos() < end {
		tag, err := c.ReadTag()
		if err != nil {
			return nil, NewParseError(c.Pos(), "failed to read substring component", err)
		}

		switch tag {
		case SubstringTagInitial, SubstringTagAny, SubstringTagFinal:
		default:
			if err := c.UnreadTag(); err != nil {
				return nil, err
			}
			break loop
		}

		length, err := c.ReadLength()
		if err != nil {
			return nil, NewParseError(c.Pos(), "failed to read substring component length", err)
		}
		if c.Pos()+length > end {
			return nil, NewParseError(c.Pos(), "substring component exceeds its sequence", ErrInvalidSubstringFilter)
		}
		value, err := c.ReadValue(length)
		if err != nil {
			return nil, NewParseError(c.Pos(), "failed to read substring component value", err)
		}

		switch tag {
		case SubstringTagInitial:
			if sf.Initial != nil {
				return nil, NewParseError(c.Pos(), "duplicate initial component", ErrInvalidSubstringFilter)
			}
			sf.Initial = value
		case SubstringTagAny:
			sf.Any = append(sf.Any, value)
		case SubstringTagFinal:
			if sf.Final != nil {
				return nil, NewParseError(c.Pos(), "duplicate final component", ErrInvalidSubstringFilter)
			}
			sf.Final = value
		}
		components++
	}

	if c.Pos() != end {
		return nil, NewParseError(c.Pos(), "unexpected element in substrings", ErrInvalidSubstringFilter)
	}
	if components == 0 {
		return nil, NewParseError(c.Pos(), "substring filter has no components", ErrInvalidSubstringFilter)
	}

	return filter.NewSubstringFilter(string(attr), sf), nil
}

// EncodeFilter appends the BER encoding of f to enc.
func EncodeFilter(enc *ber.Encoder, f *filter.Filter) error {
	if f == nil {
		return ErrInvalidFilter
	}

	switch f.Type {
	case filter.FilterMatchAll:
		attr := f.Attribute
		if attr == "" {
			attr = filter.DefaultPresentAttribute
		}
		return enc.WriteOctetStringWithTag(FilterTagPresent, []byte(attr))

	case filter.FilterEquality:
		pos := enc.BeginConstructed(FilterTagEquality)
		if err := enc.WriteOctetString([]byte(f.Attribute)); err != nil {
			return err
		}
		if err := enc.WriteOctetString(f.Value); err != nil {
			return err
		}
		return enc.EndConstructed(pos)

	case filter.FilterSubstring:
		return encodeSubstringFilter(enc, f)

	case filter.FilterAnd, filter.FilterOr:
		tag := FilterTagAnd
		if f.Type == filter.FilterOr {
			tag = FilterTagOr
		}
		pos := enc.BeginConstructed(tag)
		for _, child := range f.Children {
			if err := EncodeFilter(enc, child); err != nil {
				return err
			}
		}
		return enc.EndConstructed(pos)

	case filter.FilterNot:
		if f.Child == nil {
			return ErrNotArity
		}
		pos := enc.BeginConstructed(FilterTagNot)
		if err := EncodeFilter(enc, f.Child); err != nil {
			return err
		}
		return enc.EndConstructed(pos)

	default:
		return ErrUnknownFilter
	}
}

func encodeSubstringFilter(enc *ber.Encoder, f *filter.Filter) error {
	sf := f.Substring
	if sf == nil || (sf.Initial == nil && len(sf.Any) == 0 && sf.Final == nil) {
		return ErrInvalidSubstringFilter
	}

	pos := enc.BeginConstructed(FilterTagSubstrings)
	if err := enc.WriteOctetString([]byte(f.Attribute)); err != nil {
		return err
	}

	seq := enc.BeginSequence()
	if sf.Initial != nil {
		if err := enc.WriteOctetStringWithTag(SubstringTagInitial, sf.Initial); err != nil {
			return err
		}
	}
	for _, part := range sf.Any {
		if err := enc.WriteOctetStringWithTag(SubstringTagAny, part); err != nil {
			return err
		}
	}
	if sf.Final != nil {
		if err := enc.WriteOctetStringWithTag(SubstringTagFinal, sf.Final); err != nil {
			return err
		}
	}
	if err := enc.EndSequence(seq); err != nil {
		return err
	}

	return enc.EndConstructed(pos)
}
