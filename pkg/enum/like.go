package enum

import (
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/ajitpratap0/blueprint/pkg/errors"
)

// Kind tags which surface form a Like holds.
type Kind uint8

const (
	// KindInvalid is the zero Like; it never resolves.
	KindInvalid Kind = iota
	// KindValue holds a canonical value.
	KindValue
	// KindCode holds an integer wire code.
	KindCode
	// KindName holds a variant name in any letter case.
	KindName
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindCode:
		return "code"
	case KindName:
		return "name"
	default:
		return "invalid"
	}
}

// Like is one of the accepted surface forms of a T.
type Like[T ~uint8] struct {
	kind  Kind
	value T
	code  int64
	name  string
	// raw keeps a numeric input that does not fit in code.
	raw interface{}
}

// Value wraps a canonical value.
func Value[T ~uint8](v T) Like[T] {
	return Like[T]{kind: KindValue, value: v}
}

// Code wraps an integer wire code.
func Code[T ~uint8](code int64) Like[T] {
	return Like[T]{kind: KindCode, code: code}
}

// Name wraps a variant name.
func Name[T ~uint8](name string) Like[T] {
	return Like[T]{kind: KindName, name: name}
}

// Kind returns the surface form held by l.
func (l Like[T]) Kind() Kind {
	return l.kind
}

// Raw returns the held input as an untyped value for diagnostics.
func (l Like[T]) Raw() interface{} {
	switch l.kind {
	case KindValue:
		return l.value
	case KindCode:
		if l.raw != nil {
			return l.raw
		}
		return l.code
	case KindName:
		return l.name
	default:
		return nil
	}
}

func (l Like[T]) String() string {
	switch l.kind {
	case KindValue:
		return strconv.FormatUint(uint64(l.value), 10)
	case KindCode:
		if l.raw != nil {
			return fmt.Sprint(l.raw)
		}
		return strconv.FormatInt(l.code, 10)
	case KindName:
		return l.name
	default:
		return "<invalid>"
	}
}

// ParseLike interprets text from a command line or a text encoding. Text
// that parses as a base-10 integer becomes a code; everything else is a
// name.
func ParseLike[T ~uint8](s string) Like[T] {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Code[T](n)
	}
	return Name[T](s)
}

// LikeFromAny converts a dynamically typed value, typically decoded from
// JSON or YAML, into a Like. Accepted inputs are T itself, *T, Like[T], any
// Go integer kind, integral floats and strings. Other types, including nil,
// fail with ErrorTypeTypeMismatch.
func LikeFromAny[T ~uint8](v interface{}) (Like[T], error) {
	switch x := v.(type) {
	case T:
		return Value(x), nil
	case *T:
		if x != nil {
			return Value(*x), nil
		}
	case Like[T]:
		return x, nil
	case string:
		return Name[T](x), nil
	case float64:
		return likeFromFloat[T](x)
	case float32:
		return likeFromFloat[T](float64(x))
	}

	if v != nil {
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return Code[T](rv.Int()), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			u := rv.Uint()
			if u > math.MaxInt64 {
				return outOfRange[T](v), nil
			}
			return Code[T](int64(u)), nil
		}
	}

	var zero T
	return Like[T]{}, errors.Newf(errors.ErrorTypeTypeMismatch,
		"cannot convert value of type %T to %T", v, zero).
		WithDetail("expected", fmt.Sprintf("%T | integer | string", zero)).
		WithDetail("actual", fmt.Sprintf("%T", v))
}

func likeFromFloat[T ~uint8](f float64) (Like[T], error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		var zero T
		return Like[T]{}, errors.Newf(errors.ErrorTypeTypeMismatch,
			"cannot convert non-integral number %v to %T", f, zero).
			WithDetail("expected", "integer").
			WithDetail("actual", "float")
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return outOfRange[T](f), nil
	}
	return Code[T](int64(f)), nil
}

// outOfRange is a code no table declares. It resolves to InvalidVariant
// reporting raw.
func outOfRange[T ~uint8](raw interface{}) Like[T] {
	return Like[T]{kind: KindCode, code: -1, raw: raw}
}
