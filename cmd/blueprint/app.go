package main

import (
	"io"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/blueprint/pkg/columnar"
	"github.com/ajitpratap0/blueprint/pkg/components"
	"github.com/ajitpratap0/blueprint/pkg/config"
	"github.com/ajitpratap0/blueprint/pkg/logger"
	"github.com/ajitpratap0/blueprint/pkg/metrics"
)

// app carries the state shared by all commands of one invocation.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configFile string
	overrides  overrides

	cfg      *config.Config
	log      *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Registry
	pool     *columnar.BuilderPool
}

// overrides holds root flags that win over the config file when set.
type overrides struct {
	componentType string
	logLevel      string
	logEncoding   string
	enableMetrics bool
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{stdin: stdin, stdout: stdout, stderr: stderr}
}

// setup loads configuration, applies flags and initializes logging and
// metrics. Flags only override the file when they were set explicitly.
func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.NewDefaultConfig()
	if a.configFile != "" {
		if err := config.Load(a.configFile, cfg); err != nil {
			return err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("component-type") {
		cfg.Encoder.ComponentType = a.overrides.componentType
	}
	if flags.Changed("log-level") {
		cfg.Observability.LogLevel = a.overrides.logLevel
	}
	if flags.Changed("log-encoding") {
		cfg.Observability.LogEncoding = a.overrides.logEncoding
	}
	if flags.Changed("enable-metrics") {
		cfg.Observability.EnableMetrics = a.overrides.enableMetrics
	}
	if err := applyEncodeFlags(cmd, cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	if err := logger.Init(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Development: cfg.Observability.Development,
		Encoding:    cfg.Observability.LogEncoding,
	}); err != nil {
		return err
	}
	a.log = logger.With(zap.String("component", "blueprint-cli"))

	if cfg.Observability.EnableMetrics {
		a.registry = prometheus.NewRegistry()
		a.metrics = metrics.NewRegistry(a.registry)
	}
	if cfg.Encoder.BuilderPool {
		a.pool = columnar.NewBuilderPool(nil, a.log)
	}

	a.log.Debug("configuration loaded",
		zap.String("config_file", a.configFile),
		zap.String("component_type", cfg.Encoder.ComponentType),
		zap.String("format", cfg.Output.Format),
		zap.String("compression", string(cfg.Output.Compression)))
	return nil
}

// teardown reports pool and metric state and flushes the logger.
func (a *app) teardown() error {
	if a.pool != nil {
		hits, misses, resets := a.pool.GetStats()
		a.log.Debug("builder pool stats",
			zap.Int64("hits", hits),
			zap.Int64("misses", misses),
			zap.Int64("resets", resets))
	}

	if a.registry != nil {
		families, err := a.registry.Gather()
		if err != nil {
			return err
		}
		for _, mf := range families {
			if _, err := expfmt.MetricFamilyToText(a.stderr, mf); err != nil {
				return err
			}
		}
	}

	_ = logger.Sync()
	return nil
}

// execute runs root and tears down whether or not the command failed. The
// command error takes precedence.
func (a *app) execute(root *cobra.Command) error {
	err := root.Execute()
	if terr := a.teardown(); err == nil {
		err = terr
	}
	return err
}

func (a *app) newEncoder() *columnar.Encoder[components.LinkAxis] {
	componentType := a.cfg.Encoder.ComponentType

	opts := []columnar.Option{columnar.WithLogger(a.log)}
	if a.pool != nil {
		opts = append(opts, columnar.WithBuilderPool(a.pool))
	}
	if a.metrics != nil {
		opts = append(opts, columnar.WithMetrics(a.metrics.Collector(componentType)))
	}
	return columnar.NewEncoder(components.LinkAxisTable(), componentType, opts...)
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "blueprint",
		Short: "Blueprint component encoder",
		Long: `blueprint resolves LinkAxis component values given by name or code and
packs them into Arrow uint8 columns.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configFile, "config", "c", "", "Path to YAML configuration file")
	pf.StringVar(&a.overrides.componentType, "component-type", components.LinkAxisComponentType, "Component type identity attached to encoded batches")
	pf.StringVar(&a.overrides.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	pf.StringVar(&a.overrides.logEncoding, "log-encoding", "console", "Log encoding (json, console)")
	pf.BoolVar(&a.overrides.enableMetrics, "enable-metrics", false, "Print encoder metrics to stderr on exit")

	root.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Run: func(cmd *cobra.Command, args []string) {
				out := cmd.OutOrStdout()
				fprintf(out, "blueprint v%s\n", version)
				fprintf(out, "Go version: %s\n", runtime.Version())
				fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
			},
		},
		newVariantsCommand(a),
		newResolveCommand(a),
		newEncodeCommand(a),
		newInspectCommand(a),
	)
	return root
}
