// Package components declares blueprint component enumerations and their
// surface conversions.
//
// Each component type has a closed variant table, a fully qualified
// component name that tags its batches, and a best-effort converter that
// accepts the canonical value, its integer code or its name in any letter
// case:
//
//	axis, err := components.ResolveLinkAxis(components.LinkAxisFromName("linktoglobal"))
//	// axis == components.LinkAxisLinkToGlobal, axis.Code() == 2
//
// Codes are stable wire values. Code 0 is reserved and is never assigned.
//
// LinkAxis values also implement encoding.TextMarshaler, json.Marshaler and
// yaml.Marshaler, writing the variant name. The matching unmarshalers accept
// either the name or the code, so configuration files may use both.
package components
