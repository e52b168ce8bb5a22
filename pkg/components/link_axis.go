package components

import (
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/blueprint/pkg/enum"
	"github.com/ajitpratap0/blueprint/pkg/errors"
	"github.com/ajitpratap0/blueprint/pkg/json"
)

// LinkAxisComponentType is the fully qualified component name used to tag
// LinkAxis batches.
const LinkAxisComponentType = "rerun.blueprint.components.LinkAxis"

// LinkAxis describes how the horizontal/X/time axis is linked across
// multiple plots.
type LinkAxis uint8

const (
	// LinkAxisIndependent keeps the axis independent from all other plots.
	LinkAxisIndependent LinkAxis = 1

	// LinkAxisLinkToGlobal links to all other plots that also have this
	// option set.
	LinkAxisLinkToGlobal LinkAxis = 2
)

// LinkAxisLike is any accepted surface form of a LinkAxis.
type LinkAxisLike = enum.Like[LinkAxis]

var linkAxisTable = enum.NewTable("LinkAxis",
	enum.Variant[LinkAxis]{Value: LinkAxisIndependent, Name: "Independent"},
	enum.Variant[LinkAxis]{Value: LinkAxisLinkToGlobal, Name: "LinkToGlobal"},
)

// LinkAxisTable returns the variant table of LinkAxis.
func LinkAxisTable() *enum.Table[LinkAxis] {
	return linkAxisTable
}

// LinkAxisVariants returns all declared LinkAxis variants in declaration order.
func LinkAxisVariants() []LinkAxis {
	variants := linkAxisTable.Variants()
	out := make([]LinkAxis, len(variants))
	for i, v := range variants {
		out[i] = v.Value
	}
	return out
}

// LinkAxisValue wraps a canonical LinkAxis.
func LinkAxisValue(v LinkAxis) LinkAxisLike { return enum.Value(v) }

// LinkAxisFromCode wraps a wire code.
func LinkAxisFromCode(code int64) LinkAxisLike { return enum.Code[LinkAxis](code) }

// LinkAxisFromName wraps a variant name; matching is case-insensitive.
func LinkAxisFromName(name string) LinkAxisLike { return enum.Name[LinkAxis](name) }

// ResolveLinkAxis is the best-effort converter: a canonical value is
// returned as is, an integer is looked up by code and a string is matched
// by name, exactly first and then ignoring case.
func ResolveLinkAxis(like LinkAxisLike) (LinkAxis, error) {
	return linkAxisTable.Resolve(like)
}

// ParseLinkAxis resolves text such as "linktoglobal" or "2".
func ParseLinkAxis(s string) (LinkAxis, error) {
	return linkAxisTable.Resolve(enum.ParseLike[LinkAxis](s))
}

// Code returns the wire code of l.
func (l LinkAxis) Code() uint8 {
	return uint8(l)
}

// IsValid reports whether l is a declared variant.
func (l LinkAxis) IsValid() bool {
	return linkAxisTable.Contains(l)
}

// String returns the variant name.
func (l LinkAxis) String() string {
	return linkAxisTable.NameOf(l)
}

// MarshalText implements encoding.TextMarshaler.
func (l LinkAxis) MarshalText() ([]byte, error) {
	if !l.IsValid() {
		_, err := linkAxisTable.Resolve(enum.Value(l))
		return nil, err
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *LinkAxis) UnmarshalText(text []byte) error {
	v, err := ParseLinkAxis(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// MarshalJSON encodes l as its name.
func (l LinkAxis) MarshalJSON() ([]byte, error) {
	text, err := l.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON accepts a name string or an integer code.
func (l *LinkAxis) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "failed to decode LinkAxis")
	}
	if raw == nil {
		// null leaves the value untouched, like encoding/json
		return nil
	}

	like, err := enum.LikeFromAny[LinkAxis](raw)
	if err != nil {
		return err
	}
	v, err := ResolveLinkAxis(like)
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// UnmarshalYAML accepts a name or an integer code scalar.
func (l *LinkAxis) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.Newf(errors.ErrorTypeTypeMismatch,
			"LinkAxis must be a scalar (line %d)", node.Line).
			WithDetail("expected", "scalar").
			WithDetail("actual", node.Tag)
	}

	like := LinkAxisFromName(node.Value)
	if node.Tag == "!!int" {
		n, err := strconv.ParseInt(node.Value, 0, 64)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeData, "invalid LinkAxis code")
		}
		like = LinkAxisFromCode(n)
	}

	v, err := ResolveLinkAxis(like)
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// MarshalYAML encodes l as its name.
func (l LinkAxis) MarshalYAML() (interface{}, error) {
	text, err := l.MarshalText()
	if err != nil {
		return nil, err
	}
	return string(text), nil
}
