// Package columnar packs enumerated component values into Arrow columnar
// arrays.
//
// # Overview
//
// An Encoder is bound to one enum.Table and one component type identity.
// It accepts either a bare value or a sequence of optional values, resolves
// every present element through the table, and emits a single contiguous
// uint8 array whose length and null positions mirror the input exactly.
//
//	enc := columnar.NewEncoder(components.LinkAxisTable(), components.LinkAxisComponentType)
//
//	arr, err := enc.Encode(columnar.Sequence(
//	    columnar.Some(components.LinkAxisFromName("Independent")),
//	    columnar.Null[components.LinkAxisLike](),
//	    columnar.Some(components.LinkAxisFromName("LinkToGlobal")),
//	), arrow.PrimitiveTypes.Uint8)
//	// arr: [1, null, 2]
//	defer arr.Release()
//
// # Errors
//
// Encode fails with errors.ErrorTypeTypeMismatch when the declared element
// type is not uint8, and with errors.ErrorTypeInvalidVariant when an
// element names no variant. Failures are immediate: no partial array is
// returned and pooled builder memory is released.
//
// # Batches and persistence
//
// EncodeBatch tags the array with the component type. WriteIPC and ReadIPC
// store one batch as a single-column Arrow IPC stream, keeping the
// component type in the field metadata.
//
// # Concurrency
//
// Encoders are safe for concurrent use. Builders are pooled per allocator
// through BuilderPool.
package columnar
