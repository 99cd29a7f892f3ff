// Package filter provides search filter data structures and evaluation
// for the dirlite directory server.
package filter

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// FilterType represents the type of search filter operation.
type FilterType int

const (
	// FilterAnd represents an AND filter (&).
	FilterAnd FilterType = iota
	// FilterOr represents an OR filter (|).
	FilterOr
	// FilterNot represents a NOT filter (!).
	FilterNot
	// FilterEquality represents an equality filter (attr=value).
	FilterEquality
	// FilterSubstring represents a substring filter (attr=ini*any*fin).
	FilterSubstring
	// FilterMatchAll represents a presence filter (attr=*), which matches
	// every record regardless of the attribute it names.
	FilterMatchAll
)

// String returns the string representation of the FilterType.
func (ft FilterType) String() string {
	switch ft {
	case FilterAnd:
		return "AND"
	case FilterOr:
		return "OR"
	case FilterNot:
		return "NOT"
	case FilterEquality:
		return "EQUALITY"
	case FilterSubstring:
		return "SUBSTRING"
	case FilterMatchAll:
		return "MATCH_ALL"
	default:
		return "UNKNOWN"
	}
}

// Filter is a node of a search filter tree. Which fields are meaningful
// depends on Type. A tree is built once, by a decoder or by Parse, and is
// not modified afterwards.
type Filter struct {
	Type      FilterType
	Attribute string
	Value     []byte
	Children  []*Filter        // For AND/OR filters
	Child     *Filter          // For NOT filter
	Substring *SubstringFilter // For substring filters
}

// SubstringFilter holds the components of a substring filter. A nil
// Initial or Final means the component is absent.
type SubstringFilter struct {
	Initial []byte
	Any     [][]byte
	Final   []byte
}

// NewAndFilter creates a new AND filter with the given children.
func NewAndFilter(children ...*Filter) *Filter {
	return &Filter{
		Type:     FilterAnd,
		Children: children,
	}
}

// NewOrFilter creates a new OR filter with the given children.
func NewOrFilter(children ...*Filter) *Filter {
	return &Filter{
		Type:     FilterOr,
		Children: children,
	}
}

// NewNotFilter creates a new NOT filter with the given child.
func NewNotFilter(child *Filter) *Filter {
	return &Filter{
		Type:  FilterNot,
		Child: child,
	}
}

// NewEqualityFilter creates a new equality filter.
func NewEqualityFilter(attribute string, value []byte) *Filter {
	return &Filter{
		Type:      FilterEquality,
		Attribute: attribute,
		Value:     value,
	}
}

// NewSubstringFilter creates a new substring filter.
func NewSubstringFilter(attribute string, sf *SubstringFilter) *Filter {
	return &Filter{
		Type:      FilterSubstring,
		Attribute: attribute,
		Substring: sf,
	}
}

// NewMatchAllFilter creates a presence filter. The attribute is carried
// for re-encoding only.
func NewMatchAllFilter(attribute string) *Filter {
	return &Filter{
		Type:      FilterMatchAll,
		Attribute: attribute,
	}
}

// String renders the filter in the parenthesized text form accepted by Parse.
func (f *Filter) String() string {
	var sb strings.Builder
	f.writeTo(&sb)
	return sb.String()
}

func (f *Filter) writeTo(sb *strings.Builder) {
	if f == nil {
		sb.WriteString("()")
		return
	}

	sb.WriteByte('(')
	switch f.Type {
	case FilterAnd, FilterOr:
		if f.Type == FilterAnd {
			sb.WriteByte('&')
		} else {
			sb.WriteByte('|')
		}
		for _, child := range f.Children {
			child.writeTo(sb)
		}
	case FilterNot:
		sb.WriteByte('!')
		f.Child.writeTo(sb)
	case FilterEquality:
		sb.WriteString(f.Attribute)
		sb.WriteByte('=')
		sb.WriteString(escapeValue(f.Value))
	case FilterSubstring:
		sb.WriteString(f.Attribute)
		sb.WriteByte('=')
		if f.Substring != nil {
			sb.WriteString(escapeValue(f.Substring.Initial))
			sb.WriteByte('*')
			for _, part := range f.Substring.Any {
				sb.WriteString(escapeValue(part))
				sb.WriteByte('*')
			}
			sb.WriteString(escapeValue(f.Substring.Final))
		} else {
			sb.WriteByte('*')
		}
	case FilterMatchAll:
		attr := f.Attribute
		if attr == "" {
			attr = DefaultPresentAttribute
		}
		sb.WriteString(attr)
		sb.WriteString("=*")
	}
	sb.WriteByte(')')
}

// MarshalLogObject lets a filter be logged as a structured field.
func (f *Filter) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("type", f.Type.String())
	enc.AddString("expr", f.String())
	return nil
}

// DefaultPresentAttribute is the attribute named by a match-all filter
// that was built without one.
const DefaultPresentAttribute = "objectClass"
