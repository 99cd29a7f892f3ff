package filter

import (
	"bytes"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, f *Filter)
	}{
		{
			name:  "equality",
			input: "(uid=alice)",
			check: func(t *testing.T, f *Filter) {
				if f.Type != FilterEquality || f.Attribute != "uid" || string(f.Value) != "alice" {
					t.Errorf("unexpected filter %+v", f)
				}
			},
		},
		{
			name:  "unwrapped equality",
			input: "cn=Alice Example",
			check: func(t *testing.T, f *Filter) {
				if f.Type != FilterEquality || string(f.Value) != "Alice Example" {
					t.Errorf("unexpected filter %+v", f)
				}
			},
		},
		{
			name:  "presence",
			input: "(objectClass=*)",
			check: func(t *testing.T, f *Filter) {
				if f.Type != FilterMatchAll || f.Attribute != "objectClass" {
					t.Errorf("unexpected filter %+v", f)
				}
			},
		},
		{
			name:  "substring",
			input: "(mail=alice*wonder*.com)",
			check: func(t *testing.T, f *Filter) {
				if f.Type != FilterSubstring {
					t.Fatalf("expected substring, got %s", f.Type)
				}
				sf := f.Substring
				if string(sf.Initial) != "alice" || len(sf.Any) != 1 || string(sf.Any[0]) != "wonder" || string(sf.Final) != ".com" {
					t.Errorf("unexpected components %+v", sf)
				}
			},
		},
		{
			name:  "substring without anchors",
			input: "(cn=*ice*)",
			check: func(t *testing.T, f *Filter) {
				sf := f.Substring
				if sf.Initial != nil || sf.Final != nil || len(sf.Any) != 1 {
					t.Errorf("unexpected components %+v", sf)
				}
			},
		},
		{
			name:  "escaped value",
			input: `(cn=a\2ab\28\29)`,
			check: func(t *testing.T, f *Filter) {
				if !bytes.Equal(f.Value, []byte("a*b()")) {
					t.Errorf("expected unescaped value, got %q", f.Value)
				}
			},
		},
		{
			name:  "and or not",
			input: "(&(uid=alice)(|(cn=A*)(!(mail=x))))",
			check: func(t *testing.T, f *Filter) {
				if f.Type != FilterAnd || len(f.Children) != 2 {
					t.Fatalf("unexpected filter %+v", f)
				}
				or := f.Children[1]
				if or.Type != FilterOr || len(or.Children) != 2 {
					t.Fatalf("unexpected or filter %+v", or)
				}
				if or.Children[1].Type != FilterNot || or.Children[1].Child == nil {
					t.Errorf("unexpected not filter %+v", or.Children[1])
				}
			},
		},
		{
			name:  "empty and",
			input: "(&)",
			check: func(t *testing.T, f *Filter) {
				if f.Type != FilterAnd || len(f.Children) != 0 {
					t.Errorf("unexpected filter %+v", f)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.input, err)
			}
			tt.check(t, f)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input   string
		wantErr error
	}{
		{"", ErrEmptyFilter},
		{"()", ErrEmptyFilter},
		{"(=alice)", ErrMissingAttribute},
		{"(uid>=a)", ErrUnsupportedOperator},
		{"(cn~=a)", ErrUnsupportedOperator},
		{"(&(uid=a)", ErrUnbalancedParens},
		{"(&uid=a)", ErrInvalidFilter},
		{"(uidalice)", ErrInvalidFilter},
		{`(cn=a\zz)`, ErrInvalidEscape},
		{`(cn=a\2)`, ErrInvalidEscape},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Parse(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestFilterStringRoundTrip(t *testing.T) {
	inputs := []string{
		"(uid=alice)",
		"(objectClass=*)",
		"(mail=alice*wonder*.com)",
		"(&(uid=alice)(|(cn=A*)(!(mail=x))))",
		"(&)",
		"(|)",
		`(cn=a\2ab)`,
	}

	for _, in := range inputs {
		f, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		if got := f.String(); got != in {
			t.Errorf("String() = %q, want %q", got, in)
		}
	}
}

func TestFilterMarshalLogObject(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	f := NewEqualityFilter("uid", []byte("alice"))
	log.Info("search", zap.Object("filter", f))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	obj, ok := fields["filter"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected object field, got %T", fields["filter"])
	}
	if obj["type"] != "EQUALITY" || obj["expr"] != "(uid=alice)" {
		t.Errorf("unexpected fields %v", obj)
	}
}
