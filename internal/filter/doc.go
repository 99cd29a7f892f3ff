// Package filter provides search filter data structures and evaluation
// for the dirlite directory server.
//
// # Overview
//
// A Filter is an immutable tree of six node kinds:
//
//   - AND (&): true when every child matches; an empty AND is true
//   - OR (|): true when any child matches; an empty OR is false
//   - NOT (!): negation of its single child
//   - Equality (=): byte-exact comparison of one attribute
//   - Substring (*): ordered initial, any and final components
//   - Match-all (=*): always true
//
// # Filter Construction
//
// Filters are normally decoded from the wire by the ldap package. They can
// also be built programmatically or parsed from text:
//
//	f := filter.NewAndFilter(
//	    filter.NewEqualityFilter("uid", []byte("alice")),
//	    filter.NewSubstringFilter("mail", &filter.SubstringFilter{
//	        Final: []byte("@example.com"),
//	    }),
//	)
//
//	f, err := filter.Parse("(&(uid=alice)(mail=*@example.com))")
//
// # Evaluation
//
// Matches evaluates a filter against any value implementing Record.
// Attribute names are matched literally and values are compared byte for
// byte; there is no schema and no case folding.
//
//	if filter.Matches(f, record) {
//	    // include the record
//	}
package filter
