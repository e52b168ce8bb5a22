package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/ajitpratap0/blueprint/pkg/columnar"
	"github.com/ajitpratap0/blueprint/pkg/components"
	"github.com/ajitpratap0/blueprint/pkg/compression"
	"github.com/ajitpratap0/blueprint/pkg/config"
	"github.com/ajitpratap0/blueprint/pkg/enum"
	"github.com/ajitpratap0/blueprint/pkg/errors"
	"github.com/ajitpratap0/blueprint/pkg/json"
	"github.com/ajitpratap0/blueprint/pkg/logger"
)

func fprintf(w io.Writer, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(w, format, args...)
}

func newVariantsCommand(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "variants",
		Short: "List LinkAxis variants and their codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table := components.LinkAxisTable()
			if asJSON {
				out := make([]resolved, 0, table.Len())
				for _, v := range table.Variants() {
					out = append(out, resolved{Name: v.Name, Code: v.Code()})
				}
				return json.MarshalToWriter(cmd.OutOrStdout(), out, "  ")
			}
			for _, v := range table.Variants() {
				fprintf(cmd.OutOrStdout(), "%d\t%s\n", v.Code(), v.Name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print variants as JSON")
	return cmd
}

type resolved struct {
	Input string `json:"input,omitempty"`
	Name  string `json:"name"`
	Code  uint8  `json:"code"`
}

func newResolveCommand(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "resolve <value>...",
		Short: "Resolve names or codes to LinkAxis variants",
		Long: `Resolve each argument to a LinkAxis variant. Integer arguments are codes,
anything else is a name matched exactly first and then ignoring case.

Example:
  blueprint resolve independent 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := make([]resolved, 0, len(args))
			for _, arg := range args {
				v, err := components.ParseLinkAxis(arg)
				if err != nil {
					a.log.Debug("resolve failed", zap.String("input", arg), zap.Error(err))
					return err
				}
				out = append(out, resolved{Input: arg, Name: v.String(), Code: v.Code()})
			}

			if asJSON {
				return json.MarshalToWriter(cmd.OutOrStdout(), out, "  ")
			}
			for _, r := range out {
				fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\n", r.Input, r.Name, r.Code)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	return cmd
}

// column is the JSON rendering of an encoded batch.
type column struct {
	ComponentType string    `json:"component_type"`
	Length        int       `json:"length"`
	NullCount     int       `json:"null_count"`
	Fingerprint   string    `json:"fingerprint"`
	Codes         []*uint8  `json:"codes"`
	Values        []*string `json:"values"`
}

func newColumn(batch *columnar.Batch, decoded []columnar.Optional[components.LinkAxis]) column {
	c := column{
		ComponentType: batch.ComponentType(),
		Length:        batch.Len(),
		NullCount:     batch.NullN(),
		Fingerprint:   fmt.Sprintf("%016x", batch.Fingerprint()),
		Codes:         make([]*uint8, len(decoded)),
		Values:        make([]*string, len(decoded)),
	}
	for i, elem := range decoded {
		if v, ok := elem.Get(); ok {
			code, name := v.Code(), v.String()
			c.Codes[i] = &code
			c.Values[i] = &name
		}
	}
	return c
}

const (
	flagNullToken        = "null-token"
	flagFormat           = "format"
	flagIPCCompression   = "ipc-compression"
	flagCompression      = "compression"
	flagCompressionLevel = "compression-level"
)

// applyEncodeFlags copies explicitly set output flags into cfg.
func applyEncodeFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	if changed(flagNullToken) {
		cfg.Encoder.NullToken, _ = flags.GetString(flagNullToken)
	}
	if changed(flagFormat) {
		cfg.Output.Format, _ = flags.GetString(flagFormat)
	}
	if changed(flagIPCCompression) {
		s, _ := flags.GetString(flagIPCCompression)
		cfg.Output.IPCCompression = columnar.IPCCompression(strings.ToLower(s))
	}
	if changed(flagCompression) {
		s, _ := flags.GetString(flagCompression)
		algorithm, err := compression.ParseAlgorithm(s)
		if err != nil {
			return err
		}
		cfg.Output.Compression = algorithm
	}
	if changed(flagCompressionLevel) {
		cfg.Output.CompressionLevel, _ = flags.GetInt(flagCompressionLevel)
	}
	return nil
}

func addCompressionFlags(cmd *cobra.Command) {
	cmd.Flags().String(flagCompression, string(compression.None), "Whole-file compression (none, gzip, snappy, lz4, zstd, s2, deflate)")
	cmd.Flags().Int(flagCompressionLevel, int(compression.Default), "Compression level (1-9)")
}

func newEncodeCommand(a *app) *cobra.Command {
	var in, out string

	cmd := &cobra.Command{
		Use:   "encode [value...]",
		Short: "Encode LinkAxis values into an Arrow uint8 column",
		Long: `Encode values into one column. Each argument is a name, an integer code or
the null token. Without arguments, --in names a JSON array file ("-" for
stdin) whose elements are names, codes or null.

Example:
  blueprint encode Independent null 2
  blueprint encode Independent LinkToGlobal --format ipc --ipc-compression zstd --out axes.arrow`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEncode(cmd, args, in, out)
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "JSON array input file, - for stdin")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	cmd.Flags().String(flagNullToken, "null", "Argument token that stands for a null element")
	cmd.Flags().String(flagFormat, config.FormatJSON, "Output format (json, ipc)")
	cmd.Flags().String(flagIPCCompression, string(columnar.IPCCompressionNone), "Arrow IPC body compression (none, lz4, zstd)")
	addCompressionFlags(cmd)
	return cmd
}

func (a *app) runEncode(cmd *cobra.Command, args []string, in, out string) error {
	if len(args) > 0 && in != "" {
		return errors.New(errors.ErrorTypeValidation, "values and --in are mutually exclusive")
	}
	if a.cfg.Output.Format == config.FormatIPC && out == "" && isTerminal(a.stdout) {
		return errors.New(errors.ErrorTypeValidation, "refusing to write Arrow IPC to a terminal, use --out")
	}

	enc := a.newEncoder()
	ctx := logger.ContextWithComponentType(cmd.Context(), enc.ComponentType())

	var (
		batch *columnar.Batch
		err   error
	)
	if in != "" {
		batch, err = a.encodeFile(enc, in)
	} else {
		batch, err = enc.EncodeBatch(a.parseArgs(args), nil)
	}
	if err != nil {
		return err
	}
	defer batch.Release()

	ctx = logger.ContextWithBatchID(ctx, ulid.Make().String())
	log := logger.WithContext(ctx)
	log.Info("encoded batch",
		zap.Int("length", batch.Len()),
		zap.Int("nulls", batch.NullN()),
		zap.Uint64("fingerprint", batch.Fingerprint()))

	payload := json.GetBuffer()
	defer json.PutBuffer(payload)

	switch a.cfg.Output.Format {
	case config.FormatIPC:
		err = columnar.WriteIPC(payload, batch, columnar.IPCOptions{
			Compression: a.cfg.Output.IPCCompression,
			Allocator:   enc.Pool().Allocator(),
		})
	default:
		var decoded []columnar.Optional[components.LinkAxis]
		decoded, err = enc.Decode(batch.Array())
		if err == nil {
			err = json.MarshalToWriter(payload, newColumn(batch, decoded), "  ")
		}
	}
	if err != nil {
		return err
	}

	if err := a.writeOutput(out, payload); err != nil {
		return err
	}
	log.Debug("wrote output",
		zap.String("path", out),
		zap.String("format", a.cfg.Output.Format),
		zap.String("compression", string(a.cfg.Output.Compression)))
	return nil
}

// parseArgs maps CLI arguments to encoder input. Integer text is a code.
func (a *app) parseArgs(args []string) columnar.ArrayLike[components.LinkAxisLike] {
	elems := make([]columnar.Optional[components.LinkAxisLike], len(args))
	for i, arg := range args {
		if arg == a.cfg.Encoder.NullToken {
			elems[i] = columnar.Null[components.LinkAxisLike]()
			continue
		}
		elems[i] = columnar.Some(enum.ParseLike[components.LinkAxis](arg))
	}
	return columnar.Sequence(elems...)
}

func (a *app) encodeFile(enc *columnar.Encoder[components.LinkAxis], path string) (*columnar.Batch, error) {
	r, closeFn, err := a.openInput(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	var values []interface{}
	if err := json.Decode(r, &values); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "input must be a JSON array").
			WithDetail("path", path)
	}

	arr, err := enc.EncodeAny(values, nil)
	if err != nil {
		return nil, err
	}
	return columnar.NewBatch(enc.ComponentType(), arr), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (a *app) openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return a.stdin, func() {}, nil
	}
	f, err := os.Open(path) //nolint:gosec // G304: path is user input by design of the CLI
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open input").
			WithDetail("path", path)
	}
	return f, func() { _ = f.Close() }, nil
}

// writeOutput compresses payload with the configured algorithm and writes
// it to path, or to stdout when path is empty.
func (a *app) writeOutput(path string, payload *bytes.Buffer) error {
	comp, err := compression.NewCompressor(a.cfg.Output.CompressionConfig())
	if err != nil {
		return err
	}

	if path == "" {
		return comp.CompressStream(a.stdout, payload)
	}

	f, err := os.Create(path) //nolint:gosec // G304: path is user input by design of the CLI
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create output").
			WithDetail("path", path)
	}
	if err := comp.CompressStream(f, payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close output").
			WithDetail("path", path)
	}
	return nil
}

func newInspectCommand(a *app) *cobra.Command {
	var in string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Decode an Arrow IPC file written by encode",
		Long: `Read an Arrow IPC file produced by "blueprint encode --format ipc" and print
the decoded column as JSON. --compression must match the whole-file
compression used when encoding; IPC body compression is detected.

Example:
  blueprint inspect --in axes.arrow`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInspect(cmd, in)
		},
	}

	cmd.Flags().StringVarP(&in, "in", "i", "", "Arrow IPC input file, - for stdin (required)")
	_ = cmd.MarkFlagRequired("in")
	addCompressionFlags(cmd)
	return cmd
}

func (a *app) runInspect(cmd *cobra.Command, in string) error {
	r, closeFn, err := a.openInput(in)
	if err != nil {
		return err
	}
	defer closeFn()

	comp, err := compression.NewCompressor(a.cfg.Output.CompressionConfig())
	if err != nil {
		return err
	}

	raw := json.GetBuffer()
	defer json.PutBuffer(raw)
	if err := comp.DecompressStream(raw, r); err != nil {
		return err
	}

	enc := a.newEncoder()
	batch, err := columnar.ReadIPC(raw, columnar.IPCOptions{Allocator: enc.Pool().Allocator()})
	if err != nil {
		return err
	}
	defer batch.Release()

	decoded, err := enc.Decode(batch.Array())
	if err != nil {
		return err
	}

	logger.WithContext(logger.ContextWithComponentType(cmd.Context(), batch.ComponentType())).
		Info("inspected batch", zap.Int("length", batch.Len()), zap.String("path", in))

	return json.MarshalToWriter(cmd.OutOrStdout(), newColumn(batch, decoded), "  ")
}
