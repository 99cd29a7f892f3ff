package ldap

import (
	"errors"
	"fmt"

	"github.com/KilimcininKorOglu/dirlite/internal/ber"
)

// LDAP protocol operation tags (APPLICATION class)
// Per RFC 4511 Section 4.2
const (
	TagBindRequest       ber.Tag = 0x60 // [APPLICATION 0] constructed
	TagBindResponse      ber.Tag = 0x61 // [APPLICATION 1] constructed
	TagUnbindRequest     ber.Tag = 0x42 // [APPLICATION 2] primitive
	TagSearchRequest     ber.Tag = 0x63 // [APPLICATION 3] constructed
	TagSearchResultEntry ber.Tag = 0x64 // [APPLICATION 4] constructed
	TagSearchResultDone  ber.Tag = 0x65 // [APPLICATION 5] constructed
)

// Filter tags (context-specific) per RFC 4511 Section 4.5.1
const (
	FilterTagAnd        ber.Tag = 0xA0 // [0] SET OF filter
	FilterTagOr         ber.Tag = 0xA1 // [1] SET OF filter
	FilterTagNot        ber.Tag = 0xA2 // [2] Filter
	FilterTagEquality   ber.Tag = 0xA3 // [3] AttributeValueAssertion
	FilterTagSubstrings ber.Tag = 0xA4 // [4] SubstringFilter
	FilterTagPresent    ber.Tag = 0x87 // [7] AttributeDescription
)

// Substring component tags (context-specific, primitive)
const (
	SubstringTagInitial ber.Tag = 0x80 // [0]
	SubstringTagAny     ber.Tag = 0x81 // [1]
	SubstringTagFinal   ber.Tag = 0x82 // [2]
)

// authSimpleTag is the [0] simple credentials choice of a BindRequest.
const authSimpleTag ber.Tag = 0x80

// OperationName returns a readable name for an operation tag.
func OperationName(tag ber.Tag) string {
	switch tag {
	case TagBindRequest:
		return "BindRequest"
	case TagBindResponse:
		return "BindResponse"
	case TagUnbindRequest:
		return "UnbindRequest"
	case TagSearchRequest:
		return "SearchRequest"
	case TagSearchResultEntry:
		return "SearchResultEntry"
	case TagSearchResultDone:
		return "SearchResultDone"
	default:
		return fmt.Sprintf("Unknown(%s)", tag)
	}
}

// ResultCode is an LDAP result code per RFC 4511 Section 4.1.9.
type ResultCode int

const (
	ResultSuccess           ResultCode = 0
	ResultProtocolError     ResultCode = 2
	ResultTimeLimitExceeded ResultCode = 3
	ResultSizeLimitExceeded ResultCode = 4
	ResultOther             ResultCode = 80
)

// String returns the string representation of the result code
func (r ResultCode) String() string {
	switch r {
	case ResultSuccess:
		return "Success"
	case ResultProtocolError:
		return "ProtocolError"
	case ResultTimeLimitExceeded:
		return "TimeLimitExceeded"
	case ResultSizeLimitExceeded:
		return "SizeLimitExceeded"
	case ResultOther:
		return "Other"
	default:
		return fmt.Sprintf("Unknown(%d)", r)
	}
}

// SearchScope represents the scope of an LDAP search operation
type SearchScope int

const (
	// ScopeBaseObject searches only the base object
	ScopeBaseObject SearchScope = 0
	// ScopeSingleLevel searches one level below the base object
	ScopeSingleLevel SearchScope = 1
	// ScopeWholeSubtree searches the entire subtree
	ScopeWholeSubtree SearchScope = 2
)

// String returns the string representation of the search scope
func (s SearchScope) String() string {
	switch s {
	case ScopeBaseObject:
		return "BaseObject"
	case ScopeSingleLevel:
		return "SingleLevel"
	case ScopeWholeSubtree:
		return "WholeSubtree"
	default:
		return "Unknown"
	}
}

// DerefAliases represents how aliases should be dereferenced during search
type DerefAliases int

const (
	DerefNever          DerefAliases = 0
	DerefInSearching    DerefAliases = 1
	DerefFindingBaseObj DerefAliases = 2
	DerefAlways         DerefAliases = 3
)

// String returns the string representation of the deref aliases setting
func (d DerefAliases) String() string {
	switch d {
	case DerefNever:
		return "NeverDerefAliases"
	case DerefInSearching:
		return "DerefInSearching"
	case DerefFindingBaseObj:
		return "DerefFindingBaseObj"
	case DerefAlways:
		return "DerefAlways"
	default:
		return "Unknown"
	}
}

// Errors for LDAP message parsing
var (
	// ErrEmptyMessage is returned when trying to parse empty data
	ErrEmptyMessage = errors.New("ldap: empty message data")

	// ErrUnsupportedOperation is returned for operation tags other than
	// Bind, Search and Unbind.
	ErrUnsupportedOperation = errors.New("ldap: unsupported operation")

	// ErrTrailingData is returned when a value does not end where its
	// length says it should.
	ErrTrailingData = errors.New("ldap: trailing data after value")

	// ErrInvalidFilter is returned when a filter is structurally malformed.
	ErrInvalidFilter = errors.New("ldap: invalid filter")

	// ErrUnknownFilter is returned for unrecognized filter types.
	ErrUnknownFilter = errors.New("ldap: unrecognized filter type")

	// ErrInvalidSubstringFilter is returned for a malformed substring list.
	ErrInvalidSubstringFilter = errors.New("ldap: invalid substring filter")

	// ErrNotArity is returned when a NOT filter does not hold exactly one child.
	ErrNotArity = errors.New("ldap: NOT filter requires exactly one child")

	// ErrInvalidSearchScope is returned for scope values outside 0-2.
	ErrInvalidSearchScope = errors.New("ldap: invalid search scope")

	// ErrInvalidDerefAliases is returned for deref values outside 0-3.
	ErrInvalidDerefAliases = errors.New("ldap: invalid deref aliases value")

	// ErrValueOutOfRange is returned when a value cannot be carried in a
	// single-octet field.
	ErrValueOutOfRange = errors.New("ldap: value out of single-octet range")
)

// ParseError provides detailed information about a parsing failure
type ParseError struct {
	Offset  int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ldap: parse error at offset %d: %s: %v", e.Offset, e.Message, e.Err)
	}
	return fmt.Sprintf("ldap: parse error at offset %d: %s", e.Offset, e.Message)
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(offset int, message string, err error) *ParseError {
	return &ParseError{
		Offset:  offset,
		Message: message,
		Err:     err,
	}
}
