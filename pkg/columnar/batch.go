package columnar

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/cespare/xxhash/v2"
)

// ComponentTypeKey is the field metadata key holding a batch's component type.
const ComponentTypeKey = "component_type"

// Batch is one encoded column tagged with the component type it carries.
// The component type is opaque here; it is passed through as given.
type Batch struct {
	componentType string
	arr           *array.Uint8
}

// NewBatch wraps arr, taking over the caller's reference to it.
func NewBatch(componentType string, arr *array.Uint8) *Batch {
	return &Batch{componentType: componentType, arr: arr}
}

// ComponentType returns the batch's wire identity.
func (b *Batch) ComponentType() string {
	return b.componentType
}

// Array returns the encoded codes. The batch keeps ownership.
func (b *Batch) Array() *array.Uint8 {
	return b.arr
}

// Len returns the number of elements, nulls included.
func (b *Batch) Len() int {
	return b.arr.Len()
}

// NullN returns the number of null elements.
func (b *Batch) NullN() int {
	return b.arr.NullN()
}

// Codes returns the elements as optional wire codes.
func (b *Batch) Codes() []Optional[uint8] {
	out := make([]Optional[uint8], b.arr.Len())
	for i := range out {
		if b.arr.IsValid(i) {
			out[i] = Some(b.arr.Value(i))
		}
	}
	return out
}

// Field describes the batch as a nullable uint8 Arrow field named after the
// component type, with the component type repeated in the field metadata.
func (b *Batch) Field() arrow.Field {
	return arrow.Field{
		Name:     b.componentType,
		Type:     b.arr.DataType(),
		Nullable: true,
		Metadata: arrow.NewMetadata([]string{ComponentTypeKey}, []string{b.componentType}),
	}
}

// Fingerprint returns a content hash over the component type, the null
// positions and the codes. Batches with equal fingerprints hold the same
// logical column.
func (b *Batch) Fingerprint() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(b.componentType)
	_, _ = d.Write([]byte{0})

	for i := 0; i < b.arr.Len(); i++ {
		if b.arr.IsNull(i) {
			_, _ = d.Write([]byte{0, 0})
			continue
		}
		_, _ = d.Write([]byte{1, b.arr.Value(i)})
	}
	return d.Sum64()
}

// Release releases the underlying array.
func (b *Batch) Release() {
	if b.arr != nil {
		b.arr.Release()
		b.arr = nil
	}
}
