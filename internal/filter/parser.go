package filter

import (
	"encoding/hex"
	"errors"
	"strings"
)

// Parser errors
var (
	ErrEmptyFilter         = errors.New("empty filter")
	ErrInvalidFilter       = errors.New("invalid filter syntax")
	ErrUnbalancedParens    = errors.New("unbalanced parentheses")
	ErrMissingAttribute    = errors.New("missing attribute name")
	ErrUnsupportedOperator = errors.New("unsupported filter operator")
	ErrInvalidEscape       = errors.New("invalid escape sequence")
)

// Parse parses a filter string into a Filter structure.
// Supports the subset of RFC 4515 syntax dirlite evaluates:
//   - (attr=value)     - equality
//   - (attr=*)         - presence (match all)
//   - (attr=ini*any*fin) - substring
//   - (&(f1)(f2)...)   - AND, possibly empty
//   - (|(f1)(f2)...)   - OR, possibly empty
//   - (!(filter))      - NOT
//
// Values may contain \XX hex escapes.
func Parse(filterStr string) (*Filter, error) {
	filterStr = strings.TrimSpace(filterStr)
	if filterStr == "" {
		return nil, ErrEmptyFilter
	}

	return parseFilter(filterStr)
}

func parseFilter(s string) (*Filter, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmptyFilter
	}

	// Must start and end with parentheses
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		// Try wrapping simple filters
		if !strings.Contains(s, "(") {
			s = "(" + s + ")"
		} else {
			return nil, ErrInvalidFilter
		}
	}

	// Remove outer parentheses
	inner := s[1 : len(s)-1]
	if inner == "" {
		return nil, ErrEmptyFilter
	}

	// Check for composite filters
	switch inner[0] {
	case '&':
		children, err := parseFilterList(inner[1:])
		if err != nil {
			return nil, err
		}
		return NewAndFilter(children...), nil
	case '|':
		children, err := parseFilterList(inner[1:])
		if err != nil {
			return nil, err
		}
		return NewOrFilter(children...), nil
	case '!':
		child, err := parseFilter(inner[1:])
		if err != nil {
			return nil, err
		}
		return NewNotFilter(child), nil
	default:
		return parseSimpleFilter(inner)
	}
}

func parseFilterList(s string) ([]*Filter, error) {
	var filters []*Filter
	s = strings.TrimSpace(s)

	for len(s) > 0 {
		if s[0] != '(' {
			return nil, ErrInvalidFilter
		}

		// Find matching closing paren
		depth := 0
		end := -1
		for i, c := range s {
			if c == '(' {
				depth++
			} else if c == ')' {
				depth--
				if depth == 0 {
					end = i
					break
				}
			}
		}

		if end == -1 {
			return nil, ErrUnbalancedParens
		}

		f, err := parseFilter(s[:end+1])
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)

		s = strings.TrimSpace(s[end+1:])
	}

	return filters, nil
}

func parseSimpleFilter(s string) (*Filter, error) {
	idx := strings.Index(s, "=")
	if idx < 0 {
		return nil, ErrInvalidFilter
	}
	if idx > 0 && strings.ContainsRune("<>~:", rune(s[idx-1])) {
		return nil, ErrUnsupportedOperator
	}

	attr := strings.TrimSpace(s[:idx])
	value := s[idx+1:]

	if attr == "" {
		return nil, ErrMissingAttribute
	}

	// Presence filter: (attr=*)
	if value == "*" {
		return NewMatchAllFilter(attr), nil
	}

	// Check for substring filter
	if strings.Contains(value, "*") {
		return parseSubstringFilter(attr, value)
	}

	v, err := unescapeValue(value)
	if err != nil {
		return nil, err
	}
	return NewEqualityFilter(attr, v), nil
}

func parseSubstringFilter(attr, value string) (*Filter, error) {
	parts := strings.Split(value, "*")
	sf := &SubstringFilter{}

	for i, part := range parts {
		if part == "" {
			continue
		}

		v, err := unescapeValue(part)
		if err != nil {
			return nil, err
		}

		switch i {
		case 0:
			sf.Initial = v
		case len(parts) - 1:
			sf.Final = v
		default:
			sf.Any = append(sf.Any, v)
		}
	}

	return NewSubstringFilter(attr, sf), nil
}

// unescapeValue decodes \XX hex escapes.
func unescapeValue(s string) ([]byte, error) {
	if !strings.Contains(s, "\\") {
		return []byte(s), nil
	}

	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			out = append(out, s[i])
			continue
		}
		if i+2 >= len(s) {
			return nil, ErrInvalidEscape
		}
		b, err := hex.DecodeString(s[i+1 : i+3])
		if err != nil {
			return nil, ErrInvalidEscape
		}
		out = append(out, b[0])
		i += 2
	}
	return out, nil
}
