// Package blueprint encodes enumerated blueprint components into Arrow
// columnar arrays.
//
// A component value such as LinkAxis can arrive in several surface forms:
// the typed Go value, its small integer wire code, or its name in any case.
// The encoder canonicalizes each element to its code and packs a sequence of
// optional elements into one contiguous uint8 array, keeping nulls where
// they were.
//
// # Packages
//
//   - pkg/enum: closed variant tables and the tagged Like input form
//   - pkg/components: the LinkAxis component and its text, JSON and YAML forms
//   - pkg/columnar: the batch encoder, builder pooling and Arrow IPC files
//   - pkg/errors: structured errors (invalid_variant, type_mismatch, ...)
//   - pkg/config, pkg/logger, pkg/metrics: CLI configuration, zap logging
//     and prometheus collectors
//   - pkg/compression, pkg/json: whole-file compression and JSON output
//
// # Quick Start
//
//	enc := columnar.NewEncoder(components.LinkAxisTable(), components.LinkAxisComponentType)
//
//	arr, err := enc.Encode(columnar.Sequence(
//	    columnar.Some(components.LinkAxisFromName("independent")),
//	    columnar.Null[components.LinkAxisLike](),
//	    columnar.Some(components.LinkAxisFromCode(2)),
//	), arrow.PrimitiveTypes.Uint8)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer arr.Release()
//	// arr: [1, null, 2]
//
// # Command line
//
//	blueprint variants
//	blueprint resolve independent 2
//	blueprint encode Independent null LinkToGlobal --format ipc --out axes.arrow
//	blueprint inspect --in axes.arrow
package blueprint
