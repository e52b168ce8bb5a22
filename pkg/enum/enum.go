// Package enum implements closed sets of named variants with stable integer
// codes and the resolver that maps loosely typed input onto them.
//
// A Table is declared once per enumerated type and never mutated:
//
//	var table = enum.NewTable("LinkAxis",
//	    enum.Variant[LinkAxis]{Value: LinkAxisIndependent, Name: "Independent"},
//	    enum.Variant[LinkAxis]{Value: LinkAxisLinkToGlobal, Name: "LinkToGlobal"},
//	)
//
// Input arrives as a Like, an explicit tagged union of the three accepted
// surface forms. Resolve checks them in a fixed order:
//
//  1. a canonical value is returned unchanged
//  2. an integer code is looked up in the code table
//  3. a name is matched exactly, then case-insensitively in declaration order
//
// Anything else fails with an ErrorTypeInvalidVariant error carrying the
// offending value and the type name.
//
// Code 0 is reserved and may not be assigned to any variant.
package enum

import (
	"fmt"
	"strings"

	"github.com/ajitpratap0/blueprint/pkg/errors"
)

// ReservedCode is never assigned to a variant.
const ReservedCode = 0

// Variant is one named member of a closed set.
type Variant[T ~uint8] struct {
	Value T
	Name  string
}

// Code returns the variant's stable wire code.
func (v Variant[T]) Code() uint8 {
	return uint8(v.Value)
}

// Table is the immutable variant table of one enumerated type. It is safe
// for concurrent use.
type Table[T ~uint8] struct {
	typeName string
	variants []Variant[T]
	byCode   [256]int8 // index into variants, -1 when unassigned
}

// NewTable builds a table from variants in declaration order. It panics on
// an empty type name, an empty or duplicate name, a duplicate code or the
// reserved code, since those are programming errors in the declaration.
func NewTable[T ~uint8](typeName string, variants ...Variant[T]) *Table[T] {
	if typeName == "" {
		panic("enum: empty type name")
	}
	if len(variants) == 0 || len(variants) > 127 {
		panic(fmt.Sprintf("enum: %s must declare between 1 and 127 variants", typeName))
	}

	t := &Table[T]{
		typeName: typeName,
		variants: make([]Variant[T], len(variants)),
	}
	for i := range t.byCode {
		t.byCode[i] = -1
	}

	names := make(map[string]struct{}, len(variants))
	for i, v := range variants {
		if v.Name == "" {
			panic(fmt.Sprintf("enum: %s variant with code %d has no name", typeName, v.Code()))
		}
		if v.Code() == ReservedCode {
			panic(fmt.Sprintf("enum: %s.%s uses reserved code 0", typeName, v.Name))
		}
		if t.byCode[v.Code()] >= 0 {
			panic(fmt.Sprintf("enum: %s.%s reuses code %d", typeName, v.Name, v.Code()))
		}
		if _, dup := names[v.Name]; dup {
			panic(fmt.Sprintf("enum: %s declares %q twice", typeName, v.Name))
		}
		names[v.Name] = struct{}{}
		t.byCode[v.Code()] = int8(i)
		t.variants[i] = v
	}

	return t
}

// TypeName returns the name used in diagnostics.
func (t *Table[T]) TypeName() string {
	return t.typeName
}

// Variants returns a copy of the declared variants in declaration order.
func (t *Table[T]) Variants() []Variant[T] {
	out := make([]Variant[T], len(t.variants))
	copy(out, t.variants)
	return out
}

// Names returns the declared variant names in declaration order.
func (t *Table[T]) Names() []string {
	out := make([]string, len(t.variants))
	for i, v := range t.variants {
		out[i] = v.Name
	}
	return out
}

// Len returns the number of declared variants.
func (t *Table[T]) Len() int {
	return len(t.variants)
}

// Lookup returns the variant with the given code.
func (t *Table[T]) Lookup(code int64) (Variant[T], bool) {
	if code < 0 || code > 255 {
		return Variant[T]{}, false
	}
	idx := t.byCode[code]
	if idx < 0 {
		return Variant[T]{}, false
	}
	return t.variants[idx], true
}

// Contains reports whether v is a declared variant.
func (t *Table[T]) Contains(v T) bool {
	return t.byCode[uint8(v)] >= 0
}

// NameOf returns the display name of v, or TypeName(<code>) when v is not
// declared.
func (t *Table[T]) NameOf(v T) string {
	if idx := t.byCode[uint8(v)]; idx >= 0 {
		return t.variants[idx].Name
	}
	return fmt.Sprintf("%s(%d)", t.typeName, uint8(v))
}

// Resolve maps a surface input form onto its canonical variant.
func (t *Table[T]) Resolve(like Like[T]) (T, error) {
	switch like.kind {
	case KindValue:
		if t.Contains(like.value) {
			return like.value, nil
		}
		return 0, t.invalid(uint8(like.value))
	case KindCode:
		if v, ok := t.Lookup(like.code); ok {
			return v.Value, nil
		}
		return 0, t.invalid(like.Raw())
	case KindName:
		if v, ok := t.matchName(like.name); ok {
			return v, nil
		}
		return 0, t.invalid(like.name)
	default:
		return 0, t.invalid(nil)
	}
}

// MustResolve is like Resolve but panics on failure. It is meant for
// package-level declarations with constant input.
func (t *Table[T]) MustResolve(like Like[T]) T {
	v, err := t.Resolve(like)
	if err != nil {
		panic(err)
	}
	return v
}

func (t *Table[T]) matchName(name string) (T, bool) {
	for _, v := range t.variants {
		if v.Name == name {
			return v.Value, true
		}
	}
	for _, v := range t.variants {
		if strings.EqualFold(v.Name, name) {
			return v.Value, true
		}
	}
	return 0, false
}

func (t *Table[T]) invalid(raw interface{}) *errors.Error {
	var msg string
	switch r := raw.(type) {
	case nil:
		msg = fmt.Sprintf("cannot convert empty input to %s", t.typeName)
	case string:
		msg = fmt.Sprintf("cannot convert %q to %s", r, t.typeName)
	default:
		msg = fmt.Sprintf("cannot convert %v to %s", r, t.typeName)
	}
	return errors.New(errors.ErrorTypeInvalidVariant, msg).
		WithDetail("type", t.typeName).
		WithDetail("value", raw)
}
