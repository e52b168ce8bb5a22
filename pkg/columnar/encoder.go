package columnar

import (
	stderrors "errors"
	"fmt"
	"reflect"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.uber.org/zap"

	"github.com/ajitpratap0/blueprint/pkg/enum"
	"github.com/ajitpratap0/blueprint/pkg/errors"
	"github.com/ajitpratap0/blueprint/pkg/metrics"
)

// Encoder packs values of one enumerated component type into Arrow uint8
// arrays. It holds no mutable state beyond its builder pool and is safe
// for concurrent use.
type Encoder[T ~uint8] struct {
	table         *enum.Table[T]
	componentType string
	dataType      arrow.DataType
	pool          *BuilderPool
	logger        *zap.Logger
	metrics       *metrics.Collector

	// resolve is table.Resolve; tests swap it to observe calls.
	resolve func(enum.Like[T]) (T, error)
}

// Option configures an Encoder.
type Option func(*encoderOptions)

type encoderOptions struct {
	allocator memory.Allocator
	pool      *BuilderPool
	logger    *zap.Logger
	metrics   *metrics.Collector
}

// WithAllocator sets the allocator output arrays are built with.
func WithAllocator(mem memory.Allocator) Option {
	return func(o *encoderOptions) { o.allocator = mem }
}

// WithBuilderPool shares a builder pool between encoders. It takes
// precedence over WithAllocator.
func WithBuilderPool(pool *BuilderPool) Option {
	return func(o *encoderOptions) { o.pool = pool }
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(o *encoderOptions) { o.logger = logger }
}

// WithMetrics records every encode call through collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(o *encoderOptions) { o.metrics = collector }
}

// NewEncoder creates an encoder for table. componentType is the wire
// identity that tags produced batches; it is carried through unmodified.
func NewEncoder[T ~uint8](table *enum.Table[T], componentType string, opts ...Option) *Encoder[T] {
	var o encoderOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.pool == nil {
		o.pool = NewBuilderPool(o.allocator, o.logger)
	}

	return &Encoder[T]{
		table:         table,
		componentType: componentType,
		dataType:      arrow.PrimitiveTypes.Uint8,
		pool:          o.pool,
		logger:        o.logger.With(zap.String("component_type", componentType)),
		metrics:       o.metrics,
		resolve:       table.Resolve,
	}
}

// ComponentType returns the wire identity of produced batches.
func (e *Encoder[T]) ComponentType() string {
	return e.componentType
}

// DataType returns the element type of produced arrays.
func (e *Encoder[T]) DataType() arrow.DataType {
	return e.dataType
}

// Table returns the variant table values are resolved against.
func (e *Encoder[T]) Table() *enum.Table[T] {
	return e.table
}

// Pool returns the encoder's builder pool.
func (e *Encoder[T]) Pool() *BuilderPool {
	return e.pool
}

// Encode resolves every element of input and packs the codes into a uint8
// array of the same length, with nulls at the same positions. Null
// elements never reach the resolver. dataType is the caller's declared
// element type; nil means the encoder's own. The first element that fails
// to resolve aborts the call and no array is returned. The caller owns
// the returned array and must Release it.
func (e *Encoder[T]) Encode(input ArrayLike[enum.Like[T]], dataType arrow.DataType) (*array.Uint8, error) {
	timer := metrics.NewTimer("encode")

	arr, err := e.encode(input, dataType)
	if err != nil {
		e.metrics.ObserveBatch(input.Len(), 0, timer.Stop(), err)
		return nil, err
	}

	e.metrics.ObserveBatch(arr.Len(), arr.NullN(), timer.Stop(), nil)
	return arr, nil
}

func (e *Encoder[T]) encode(input ArrayLike[enum.Like[T]], dataType arrow.DataType) (*array.Uint8, error) {
	if err := e.checkDataType(dataType); err != nil {
		e.logger.Debug("rejected declared data type",
			zap.Stringer("data_type", dataType))
		return nil, err
	}

	elems := input.Elements()
	b := e.pool.Get()
	defer e.pool.Put(b)
	b.Reserve(len(elems))

	for i, el := range elems {
		if !el.Valid {
			b.AppendNull()
			continue
		}

		v, err := e.resolve(el.Value)
		if err != nil {
			var structured *errors.Error
			if stderrors.As(err, &structured) {
				structured.WithDetail("index", i)
			}
			e.logger.Debug("failed to resolve element",
				zap.Int("index", i),
				zap.String("input", el.Value.String()),
				zap.String("error_type", string(errors.TypeOf(err))))
			return nil, err
		}
		b.Append(uint8(v))
	}

	return b.NewUint8Array(), nil
}

// EncodeBatch encodes input and tags the result with the encoder's
// component type.
func (e *Encoder[T]) EncodeBatch(input ArrayLike[enum.Like[T]], dataType arrow.DataType) (*Batch, error) {
	arr, err := e.Encode(input, dataType)
	if err != nil {
		return nil, err
	}
	return NewBatch(e.componentType, arr), nil
}

// EncodeAny encodes dynamically typed input, typically decoded from JSON or
// YAML. Slices and arrays are sequences whose nil elements are nulls;
// strings and every other value are bare scalars.
func (e *Encoder[T]) EncodeAny(input interface{}, dataType arrow.DataType) (*array.Uint8, error) {
	like, err := e.likeFromAny(input)
	if err != nil {
		e.metrics.ObserveBatch(0, 0, 0, err)
		return nil, err
	}
	return e.Encode(like, dataType)
}

func (e *Encoder[T]) likeFromAny(input interface{}) (ArrayLike[enum.Like[T]], error) {
	if input == nil {
		return ArrayLike[enum.Like[T]]{}, errors.New(errors.ErrorTypeTypeMismatch,
			"cannot encode nil input").
			WithDetail("expected", "scalar or sequence").
			WithDetail("actual", "nil")
	}

	rv := reflect.ValueOf(input)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		l, err := enum.LikeFromAny[T](input)
		if err != nil {
			return ArrayLike[enum.Like[T]]{}, err
		}
		return Scalar(l), nil
	}

	elems := make([]Optional[enum.Like[T]], rv.Len())
	for i := range elems {
		item := rv.Index(i)
		if isNil(item) {
			continue
		}
		l, err := enum.LikeFromAny[T](item.Interface())
		if err != nil {
			var structured *errors.Error
			if stderrors.As(err, &structured) {
				structured.WithDetail("index", i)
			}
			return ArrayLike[enum.Like[T]]{}, err
		}
		elems[i] = Some(l)
	}
	return Sequence(elems...), nil
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}

func (e *Encoder[T]) checkDataType(dataType arrow.DataType) error {
	if dataType == nil || arrow.TypeEqual(dataType, e.dataType) {
		return nil
	}
	return errors.New(errors.ErrorTypeTypeMismatch,
		fmt.Sprintf("%s requires %s elements, got %s", e.componentType, e.dataType, dataType)).
		WithDetail("expected", e.dataType.String()).
		WithDetail("actual", dataType.String())
}

// Decode maps a uint8 array produced by Encode back to variants. Nulls stay
// nulls; an undeclared code fails with ErrorTypeInvalidVariant.
func (e *Encoder[T]) Decode(arr arrow.Array) ([]Optional[T], error) {
	if err := e.checkDataType(arr.DataType()); err != nil {
		return nil, err
	}
	codes, ok := arr.(*array.Uint8)
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeTypeMismatch, "unexpected array implementation %T", arr).
			WithDetail("expected", "*array.Uint8").
			WithDetail("actual", fmt.Sprintf("%T", arr))
	}

	out := make([]Optional[T], codes.Len())
	for i := range out {
		if codes.IsNull(i) {
			continue
		}
		v, err := e.table.Resolve(enum.Code[T](int64(codes.Value(i))))
		if err != nil {
			var structured *errors.Error
			if stderrors.As(err, &structured) {
				structured.WithDetail("index", i)
			}
			return nil, err
		}
		out[i] = Some(v)
	}
	return out, nil
}
