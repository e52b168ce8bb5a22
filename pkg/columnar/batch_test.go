package columnar

import (
	"bytes"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/blueprint/pkg/components"
	"github.com/ajitpratap0/blueprint/pkg/errors"
	"github.com/ajitpratap0/blueprint/pkg/testutil"
)

func encodeBatch(t *testing.T, enc *Encoder[components.LinkAxis], elems ...Optional[axisLike]) *Batch {
	t.Helper()
	batch, err := enc.EncodeBatch(Sequence(elems...), arrow.PrimitiveTypes.Uint8)
	require.NoError(t, err)
	return batch
}

func TestBatchAccessors(t *testing.T) {
	enc, _ := newTestEncoder(t)
	batch := encodeBatch(t, enc,
		Some(components.LinkAxisFromCode(1)),
		Null[axisLike](),
		Some(components.LinkAxisFromCode(2)),
	)
	defer batch.Release()

	assert.Equal(t, 3, batch.Len())
	assert.Equal(t, 1, batch.NullN())
	assert.Equal(t, []Optional[uint8]{Some[uint8](1), Null[uint8](), Some[uint8](2)}, batch.Codes())

	field := batch.Field()
	assert.Equal(t, components.LinkAxisComponentType, field.Name)
	assert.True(t, field.Nullable)
	assert.True(t, arrow.TypeEqual(arrow.PrimitiveTypes.Uint8, field.Type))
	idx := field.Metadata.FindKey(ComponentTypeKey)
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, components.LinkAxisComponentType, field.Metadata.Values()[idx])
}

func TestBatchFingerprint(t *testing.T) {
	enc, _ := newTestEncoder(t)

	a := encodeBatch(t, enc, Some(components.LinkAxisFromName("independent")), Null[axisLike]())
	defer a.Release()
	b := encodeBatch(t, enc, Some(components.LinkAxisFromCode(1)), Null[axisLike]())
	defer b.Release()
	c := encodeBatch(t, enc, Null[axisLike](), Some(components.LinkAxisFromCode(1)))
	defer c.Release()

	assert.Equal(t, a.Fingerprint(), b.Fingerprint(), "same logical column")
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint(), "null positions matter")

	other := NewEncoder(components.LinkAxisTable(), "other.Component")
	d, err := other.EncodeBatch(Sequence(Some(components.LinkAxisFromCode(1)), Null[axisLike]()), nil)
	require.NoError(t, err)
	defer d.Release()
	assert.NotEqual(t, a.Fingerprint(), d.Fingerprint(), "component type matters")
}

func TestBatchReleaseTwice(t *testing.T) {
	enc, _ := newTestEncoder(t)
	batch := encodeBatch(t, enc, Some(components.LinkAxisFromCode(1)))
	batch.Release()
	assert.NotPanics(t, batch.Release)
}

func TestIPCRoundTrip(t *testing.T) {
	for _, compression := range []IPCCompression{"", IPCCompressionNone, IPCCompressionLZ4, IPCCompressionZstd} {
		t.Run(string(compression), func(t *testing.T) {
			enc, mem := newTestEncoder(t)
			batch := encodeBatch(t, enc,
				Some(components.LinkAxisFromName("Independent")),
				Null[axisLike](),
				Some(components.LinkAxisFromName("LinkToGlobal")),
				Null[axisLike](),
			)
			defer batch.Release()

			var buf bytes.Buffer
			require.NoError(t, WriteIPC(&buf, batch, IPCOptions{Compression: compression, Allocator: mem}))

			read, err := ReadIPC(&buf, IPCOptions{Allocator: mem})
			require.NoError(t, err)
			defer read.Release()

			assert.Equal(t, batch.ComponentType(), read.ComponentType())
			assert.True(t, array.Equal(batch.Array(), read.Array()))
			assert.Equal(t, batch.Fingerprint(), read.Fingerprint())
		})
	}
}

func TestIPCEmptyBatch(t *testing.T) {
	enc, mem := newTestEncoder(t)
	batch := encodeBatch(t, enc)
	defer batch.Release()

	var buf bytes.Buffer
	require.NoError(t, WriteIPC(&buf, batch, IPCOptions{Allocator: mem}))

	read, err := ReadIPC(&buf, IPCOptions{Allocator: mem})
	require.NoError(t, err)
	defer read.Release()
	assert.Equal(t, 0, read.Len())
}

func TestIPCInvalidCompression(t *testing.T) {
	enc, _ := newTestEncoder(t)
	batch := encodeBatch(t, enc, Some(components.LinkAxisFromCode(1)))
	defer batch.Release()

	err := WriteIPC(&bytes.Buffer{}, batch, IPCOptions{Compression: "brotli"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestReadIPCRejectsOtherColumns(t *testing.T) {
	mem := testutil.CheckedAllocator(t)

	schema := arrow.NewSchema([]arrow.Field{{Name: "x", Type: arrow.PrimitiveTypes.Int32}}, nil)
	b := array.NewInt32Builder(mem)
	b.Append(1)
	col := b.NewArray()
	b.Release()

	var buf bytes.Buffer
	require.NoError(t, writeRecord(&buf, schema, col, mem))
	col.Release()

	_, err := ReadIPC(&buf, IPCOptions{Allocator: mem})
	assert.True(t, errors.IsType(err, errors.ErrorTypeTypeMismatch))

	_, err = ReadIPC(bytes.NewReader([]byte("not arrow")), IPCOptions{Allocator: mem})
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
}
