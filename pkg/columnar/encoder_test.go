package columnar

import (
	"sync"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/blueprint/pkg/components"
	"github.com/ajitpratap0/blueprint/pkg/enum"
	"github.com/ajitpratap0/blueprint/pkg/errors"
	"github.com/ajitpratap0/blueprint/pkg/metrics"
	"github.com/ajitpratap0/blueprint/pkg/testutil"
)

type axisLike = components.LinkAxisLike

func newTestEncoder(t *testing.T) (*Encoder[components.LinkAxis], *memory.CheckedAllocator) {
	t.Helper()
	mem := testutil.CheckedAllocator(t)
	return NewEncoder(components.LinkAxisTable(), components.LinkAxisComponentType,
		WithAllocator(mem), WithLogger(testutil.TestLogger(t))), mem
}

// codes flattens an array into *uint8 so nulls can be compared directly.
func codes(arr *array.Uint8) []*uint8 {
	out := make([]*uint8, arr.Len())
	for i := range out {
		if arr.IsValid(i) {
			v := arr.Value(i)
			out[i] = &v
		}
	}
	return out
}

func u8(v uint8) *uint8 { return &v }

func TestEncodeScenarios(t *testing.T) {
	enc, _ := newTestEncoder(t)

	arr, err := enc.Encode(Sequence(
		Some(components.LinkAxisFromName("Independent")),
		Null[axisLike](),
		Some(components.LinkAxisFromName("LinkToGlobal")),
	), arrow.PrimitiveTypes.Uint8)
	require.NoError(t, err)
	defer arr.Release()

	assert.Equal(t, []*uint8{u8(1), nil, u8(2)}, codes(arr))
	assert.Equal(t, 1, arr.NullN())

	single, err := enc.Encode(Scalar(components.LinkAxisFromName("Independent")), arrow.PrimitiveTypes.Uint8)
	require.NoError(t, err)
	defer single.Release()
	assert.Equal(t, []*uint8{u8(1)}, codes(single))
}

func TestEncodeMixedForms(t *testing.T) {
	enc, _ := newTestEncoder(t)

	arr, err := enc.Encode(Values(
		components.LinkAxisValue(components.LinkAxisLinkToGlobal),
		components.LinkAxisFromCode(1),
		components.LinkAxisFromName("LINKTOGLOBAL"),
		components.LinkAxisFromName("independent"),
	), nil)
	require.NoError(t, err)
	defer arr.Release()

	assert.Equal(t, []*uint8{u8(2), u8(1), u8(2), u8(1)}, codes(arr))
	assert.True(t, arrow.TypeEqual(arrow.PrimitiveTypes.Uint8, arr.DataType()))
}

func TestEncodeEmpty(t *testing.T) {
	enc, _ := newTestEncoder(t)

	arr, err := enc.Encode(Sequence[axisLike](), arrow.PrimitiveTypes.Uint8)
	require.NoError(t, err)
	defer arr.Release()
	assert.Equal(t, 0, arr.Len())
}

func TestEncodeNullPreservation(t *testing.T) {
	enc, _ := newTestEncoder(t)

	var calls int
	enc.resolve = func(l enum.Like[components.LinkAxis]) (components.LinkAxis, error) {
		calls++
		return components.LinkAxisTable().Resolve(l)
	}

	nullAt := map[int]bool{0: true, 3: true, 4: true, 9: true}
	elems := make([]Optional[axisLike], 10)
	for i := range elems {
		if !nullAt[i] {
			elems[i] = Some(components.LinkAxisFromCode(int64(1 + i%2)))
		}
	}

	arr, err := enc.Encode(Sequence(elems...), arrow.PrimitiveTypes.Uint8)
	require.NoError(t, err)
	defer arr.Release()

	require.Equal(t, 10, arr.Len())
	for i := 0; i < arr.Len(); i++ {
		assert.Equal(t, nullAt[i], arr.IsNull(i), "position %d", i)
		if !nullAt[i] {
			assert.Equal(t, uint8(1+i%2), arr.Value(i))
		}
	}
	assert.Equal(t, 6, calls, "resolver is never invoked for nulls")
}

func TestEncodeAllNulls(t *testing.T) {
	enc, _ := newTestEncoder(t)

	arr, err := enc.Encode(Sequence(Null[axisLike](), Null[axisLike]()), arrow.PrimitiveTypes.Uint8)
	require.NoError(t, err)
	defer arr.Release()
	assert.Equal(t, []*uint8{nil, nil}, codes(arr))
}

func TestEncodeScalarSequenceEquivalence(t *testing.T) {
	enc, _ := newTestEncoder(t)

	for _, like := range []axisLike{
		components.LinkAxisValue(components.LinkAxisIndependent),
		components.LinkAxisFromCode(2),
		components.LinkAxisFromName("linktoglobal"),
	} {
		scalar, err := enc.Encode(Scalar(like), arrow.PrimitiveTypes.Uint8)
		require.NoError(t, err)
		seq, err := enc.Encode(Values(like), arrow.PrimitiveTypes.Uint8)
		require.NoError(t, err)

		assert.True(t, array.Equal(scalar, seq), "input %s", like)
		scalar.Release()
		seq.Release()
	}
}

func TestEncodeInvalidVariant(t *testing.T) {
	enc, _ := newTestEncoder(t)

	tests := []struct {
		name  string
		input ArrayLike[axisLike]
		index int
		raw   interface{}
	}{
		{"unknown code scalar", Scalar(components.LinkAxisFromCode(3)), 0, int64(3)},
		{"reserved code", Values(components.LinkAxisFromCode(0)), 0, int64(0)},
		{"unknown name after valid", Sequence(
			Some(components.LinkAxisFromName("Independent")),
			Null[axisLike](),
			Some(components.LinkAxisFromName("Sideways")),
		), 2, "Sideways"},
		{"undeclared value", Values(components.LinkAxisValue(components.LinkAxis(9))), 0, uint8(9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arr, err := enc.Encode(tt.input, arrow.PrimitiveTypes.Uint8)
			require.Error(t, err)
			assert.Nil(t, arr)
			assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidVariant))

			var e *errors.Error
			require.ErrorAs(t, err, &e)
			index, _ := e.Detail("index")
			assert.Equal(t, tt.index, index)
			raw, _ := e.Detail("value")
			assert.Equal(t, tt.raw, raw)
		})
	}
}

func TestEncodeTypeMismatch(t *testing.T) {
	enc, _ := newTestEncoder(t)

	var calls int
	enc.resolve = func(l enum.Like[components.LinkAxis]) (components.LinkAxis, error) {
		calls++
		return components.LinkAxisTable().Resolve(l)
	}

	for _, dt := range []arrow.DataType{
		arrow.PrimitiveTypes.Int8,
		arrow.PrimitiveTypes.Uint16,
		arrow.PrimitiveTypes.Int32,
		arrow.BinaryTypes.String,
		arrow.FixedWidthTypes.Boolean,
	} {
		t.Run(dt.String(), func(t *testing.T) {
			arr, err := enc.Encode(Scalar(components.LinkAxisFromCode(1)), dt)
			assert.Nil(t, arr)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeTypeMismatch))

			var e *errors.Error
			require.ErrorAs(t, err, &e)
			expected, _ := e.Detail("expected")
			assert.Equal(t, "uint8", expected)
			actual, _ := e.Detail("actual")
			assert.Equal(t, dt.String(), actual)
		})
	}
	assert.Zero(t, calls, "type check happens before any element is resolved")
}

func TestEncodeDeterministic(t *testing.T) {
	enc, _ := newTestEncoder(t)
	input := Sequence(
		Some(components.LinkAxisFromName("linktoglobal")),
		Null[axisLike](),
		Some(components.LinkAxisFromCode(1)),
	)

	first, err := enc.Encode(input, nil)
	require.NoError(t, err)
	defer first.Release()
	second, err := enc.Encode(input, nil)
	require.NoError(t, err)
	defer second.Release()

	assert.True(t, array.Equal(first, second))

	bad := Values(components.LinkAxisFromName("nope"))
	_, err1 := enc.Encode(bad, nil)
	_, err2 := enc.Encode(bad, nil)
	assert.Equal(t, err1.Error(), err2.Error())
}

func TestEncodeConcurrent(t *testing.T) {
	enc, _ := newTestEncoder(t)

	expected, err := enc.Encode(Sequence(
		Some(components.LinkAxisFromName("Independent")),
		Null[axisLike](),
		Some(components.LinkAxisFromCode(2)),
	), nil)
	require.NoError(t, err)
	defer expected.Release()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				arr, err := enc.Encode(Sequence(
					Some(components.LinkAxisFromName("independent")),
					Null[axisLike](),
					Some(components.LinkAxisFromName("LinkToGlobal")),
				), nil)
				if err != nil {
					t.Errorf("encode failed: %v", err)
					return
				}
				if !array.Equal(expected, arr) {
					t.Errorf("unexpected array %v", arr)
				}
				arr.Release()
			}
		}()
	}
	wg.Wait()
}

func TestEncodeAny(t *testing.T) {
	enc, _ := newTestEncoder(t)

	tests := []struct {
		name     string
		input    interface{}
		expected []*uint8
	}{
		{"scalar string", "Independent", []*uint8{u8(1)}},
		{"scalar int", 2, []*uint8{u8(2)}},
		{"scalar value", components.LinkAxisLinkToGlobal, []*uint8{u8(2)}},
		{"mixed slice", []interface{}{"Independent", nil, "linktoglobal", 1, float64(2)}, []*uint8{u8(1), nil, u8(2), u8(1), u8(2)}},
		{"string slice", []string{"independent"}, []*uint8{u8(1)}},
		{"pointer slice", []*components.LinkAxis{nil, func() *components.LinkAxis { v := components.LinkAxisIndependent; return &v }()}, []*uint8{nil, u8(1)}},
		{"array", [2]int{2, 1}, []*uint8{u8(2), u8(1)}},
		{"empty slice", []interface{}{}, []*uint8{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arr, err := enc.EncodeAny(tt.input, arrow.PrimitiveTypes.Uint8)
			require.NoError(t, err)
			defer arr.Release()
			assert.Equal(t, tt.expected, codes(arr))
		})
	}
}

func TestEncodeAnyErrors(t *testing.T) {
	enc, _ := newTestEncoder(t)

	_, err := enc.EncodeAny(nil, nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeTypeMismatch))

	_, err = enc.EncodeAny([]interface{}{"Independent", true}, nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeTypeMismatch))
	var e *errors.Error
	require.ErrorAs(t, err, &e)
	index, _ := e.Detail("index")
	assert.Equal(t, 1, index)

	_, err = enc.EncodeAny([]interface{}{"Independent", 3}, nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidVariant))
}

func TestEncodeBatch(t *testing.T) {
	enc, _ := newTestEncoder(t)
	assert.Equal(t, components.LinkAxisComponentType, enc.ComponentType())

	batch, err := enc.EncodeBatch(Values(components.LinkAxisFromCode(2)), nil)
	require.NoError(t, err)
	defer batch.Release()

	assert.Equal(t, components.LinkAxisComponentType, batch.ComponentType())
	assert.Equal(t, 1, batch.Len())
}

func TestEncoderPassesThroughComponentType(t *testing.T) {
	const identity = "  some.Opaque/identity v2 "
	enc := NewEncoder(components.LinkAxisTable(), identity)
	assert.Equal(t, identity, enc.ComponentType())

	batch, err := enc.EncodeBatch(Scalar(components.LinkAxisFromCode(1)), nil)
	require.NoError(t, err)
	defer batch.Release()
	assert.Equal(t, identity, batch.ComponentType())
	assert.Equal(t, identity, batch.Field().Name)
}

func TestDecode(t *testing.T) {
	enc, mem := newTestEncoder(t)

	arr, err := enc.Encode(Sequence(
		Some(components.LinkAxisFromCode(2)),
		Null[axisLike](),
		Some(components.LinkAxisFromCode(1)),
	), nil)
	require.NoError(t, err)
	defer arr.Release()

	decoded, err := enc.Decode(arr)
	require.NoError(t, err)
	assert.Equal(t, []Optional[components.LinkAxis]{
		Some(components.LinkAxisLinkToGlobal),
		Null[components.LinkAxis](),
		Some(components.LinkAxisIndependent),
	}, decoded)

	b := array.NewUint8Builder(mem)
	b.AppendValues([]uint8{1, 7}, nil)
	bad := b.NewUint8Array()
	b.Release()
	defer bad.Release()

	_, err = enc.Decode(bad)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidVariant))

	ib := array.NewInt32Builder(mem)
	ib.Append(1)
	wrong := ib.NewInt32Array()
	ib.Release()
	defer wrong.Release()

	_, err = enc.Decode(wrong)
	assert.True(t, errors.IsType(err, errors.ErrorTypeTypeMismatch))
}

func TestEncoderMetrics(t *testing.T) {
	promReg := prometheus.NewRegistry()
	reg := metrics.NewRegistry(promReg)
	collector := reg.Collector(components.LinkAxisComponentType)
	enc := NewEncoder(components.LinkAxisTable(), components.LinkAxisComponentType, WithMetrics(collector))

	arr, err := enc.Encode(Sequence(Some(components.LinkAxisFromCode(1)), Null[axisLike]()), nil)
	require.NoError(t, err)
	arr.Release()

	_, err = enc.Encode(Scalar(components.LinkAxisFromCode(5)), nil)
	require.Error(t, err)

	for _, name := range []string{
		"blueprint_encoder_values_total",
		"blueprint_encoder_nulls_total",
		"blueprint_encoder_errors_total",
		"blueprint_encoder_latency_seconds",
	} {
		count, err := promtestutil.GatherAndCount(promReg, name)
		require.NoError(t, err)
		assert.Equal(t, 1, count, name)
	}
}

func TestEncoderUsesPool(t *testing.T) {
	pool := NewBuilderPool(nil, nil)
	enc := NewEncoder(components.LinkAxisTable(), components.LinkAxisComponentType, WithBuilderPool(pool))
	assert.Same(t, pool, enc.Pool())

	for i := 0; i < 3; i++ {
		arr, err := enc.Encode(Scalar(components.LinkAxisFromCode(1)), nil)
		require.NoError(t, err)
		arr.Release()
	}

	hits, misses, _ := pool.GetStats()
	assert.Equal(t, int64(3), hits+misses)
}
