package filter

// Record is anything a filter can be evaluated against. Attribute returns
// the value of the named attribute and false when the name is not one the
// record exposes. Names are matched literally.
type Record interface {
	Attribute(name string) ([]byte, bool)
}

// Matches tests whether a record matches a filter. It has no side effects
// and never fails: attributes the record does not expose simply do not
// match.
func Matches(filter *Filter, record Record) bool {
	if filter == nil || record == nil {
		return false
	}

	switch filter.Type {
	case FilterAnd:
		return evaluateAnd(filter, record)
	case FilterOr:
		return evaluateOr(filter, record)
	case FilterNot:
		return evaluateNot(filter, record)
	case FilterEquality:
		return evaluateEquality(filter.Attribute, filter.Value, record)
	case FilterSubstring:
		return evaluateSubstring(filter.Attribute, filter.Substring, record)
	case FilterMatchAll:
		return true
	default:
		return false
	}
}

// evaluateAnd returns true only if all children match.
func evaluateAnd(filter *Filter, record Record) bool {
	// Empty AND filter matches everything (vacuous truth)
	for _, child := range filter.Children {
		if !Matches(child, record) {
			return false
		}
	}
	return true
}

// evaluateOr returns true if any child matches.
func evaluateOr(filter *Filter, record Record) bool {
	for _, child := range filter.Children {
		if Matches(child, record) {
			return true
		}
	}
	return false
}

func evaluateNot(filter *Filter, record Record) bool {
	if filter.Child == nil {
		return false
	}
	return !Matches(filter.Child, record)
}

func evaluateEquality(attr string, value []byte, record Record) bool {
	v, ok := record.Attribute(attr)
	if !ok {
		return false
	}
	return matchEquality(v, value)
}

func evaluateSubstring(attr string, sf *SubstringFilter, record Record) bool {
	if sf == nil {
		return false
	}

	v, ok := record.Attribute(attr)
	if !ok {
		return false
	}
	return matchSubstring(v, sf.Initial, sf.Any, sf.Final)
}
