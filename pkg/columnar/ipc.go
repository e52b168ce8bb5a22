package columnar

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/blueprint/pkg/errors"
)

// IPCCompression selects Arrow IPC body compression.
type IPCCompression string

const (
	// IPCCompressionNone writes uncompressed buffers
	IPCCompressionNone IPCCompression = "none"
	// IPCCompressionLZ4 writes LZ4 frame compressed buffers
	IPCCompressionLZ4 IPCCompression = "lz4"
	// IPCCompressionZstd writes zstd compressed buffers
	IPCCompressionZstd IPCCompression = "zstd"
)

// Validate checks that c is a known compression.
func (c IPCCompression) Validate() error {
	switch c {
	case "", IPCCompressionNone, IPCCompressionLZ4, IPCCompressionZstd:
		return nil
	default:
		return errors.Newf(errors.ErrorTypeConfig, "unsupported IPC compression %q", string(c)).
			WithDetail("supported", []string{"none", "lz4", "zstd"})
	}
}

// IPCOptions configures WriteIPC and ReadIPC.
type IPCOptions struct {
	Compression IPCCompression
	Allocator   memory.Allocator
}

func (o IPCOptions) allocator() memory.Allocator {
	if o.Allocator == nil {
		return memory.NewGoAllocator()
	}
	return o.Allocator
}

// WriteIPC writes batch to w as a single-column Arrow IPC stream.
func WriteIPC(w io.Writer, batch *Batch, opts IPCOptions) error {
	if err := opts.Compression.Validate(); err != nil {
		return err
	}

	schema := arrow.NewSchema([]arrow.Field{batch.Field()}, nil)
	var extra []ipc.Option
	switch opts.Compression {
	case IPCCompressionLZ4:
		extra = append(extra, ipc.WithLZ4())
	case IPCCompressionZstd:
		extra = append(extra, ipc.WithZstd())
	}

	if err := writeRecord(w, schema, batch.Array(), opts.allocator(), extra...); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write record batch").
			WithDetail("component_type", batch.ComponentType())
	}
	return nil
}

func writeRecord(w io.Writer, schema *arrow.Schema, col arrow.Array, mem memory.Allocator, extra ...ipc.Option) error {
	writer := ipc.NewWriter(w, append([]ipc.Option{ipc.WithSchema(schema), ipc.WithAllocator(mem)}, extra...)...)

	record := array.NewRecord(schema, []arrow.Array{col}, int64(col.Len()))
	defer record.Release()

	if err := writer.Write(record); err != nil {
		_ = writer.Close()
		return err
	}
	return writer.Close()
}

// ReadIPC reads a stream written by WriteIPC. Multiple record batches are
// concatenated into one batch. Compression is detected from the stream.
func ReadIPC(r io.Reader, opts IPCOptions) (*Batch, error) {
	mem := opts.allocator()

	reader, err := ipc.NewReader(r, ipc.WithAllocator(mem))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open IPC stream")
	}
	defer reader.Release()

	schema := reader.Schema()
	if len(schema.Fields()) != 1 {
		return nil, errors.Newf(errors.ErrorTypeData, "expected a single column, found %d", len(schema.Fields()))
	}
	field := schema.Field(0)
	if !arrow.TypeEqual(field.Type, arrow.PrimitiveTypes.Uint8) {
		return nil, errors.New(errors.ErrorTypeTypeMismatch,
			fmt.Sprintf("expected uint8 column, got %s", field.Type)).
			WithDetail("expected", arrow.PrimitiveTypes.Uint8.String()).
			WithDetail("actual", field.Type.String())
	}

	componentType := field.Name
	if idx := field.Metadata.FindKey(ComponentTypeKey); idx >= 0 {
		componentType = field.Metadata.Values()[idx]
	}

	var chunks []arrow.Array
	defer func() {
		for _, c := range chunks {
			c.Release()
		}
	}()

	for reader.Next() {
		col := reader.Record().Column(0)
		col.Retain()
		chunks = append(chunks, col)
	}
	if err := reader.Err(); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read record batch")
	}

	var merged arrow.Array
	switch len(chunks) {
	case 0:
		b := array.NewUint8Builder(mem)
		merged = b.NewArray()
		b.Release()
	case 1:
		merged = chunks[0]
		merged.Retain()
	default:
		merged, err = array.Concatenate(chunks, mem)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to concatenate record batches")
		}
	}

	return NewBatch(componentType, merged.(*array.Uint8)), nil
}
