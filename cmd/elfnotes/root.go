package main

import (
	stderrors "errors"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/elf-notes/cache"
	"github.com/wippyai/elf-notes/image"
	"github.com/wippyai/elf-notes/internal/config"
	"github.com/wippyai/elf-notes/note"
	"github.com/wippyai/elf-notes/scan"
)

// app carries the state shared by every subcommand. It is filled by the root
// command's pre-run hook.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *image.Metrics
	store    *cache.Store

	configPath  string
	cacheDir    string
	verbose     bool
	strict      bool
	dumpMetrics bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "elfnotes",
		Short: "Inspect the note sections of ELF binaries",
		Long: `elfnotes decodes the SHT_NOTE sections and PT_NOTE segments of ELF files:
GNU ABI tags, build IDs and any other vendor notes they carry.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVar(&a.configPath, "config", "", "Config file (default "+config.DefaultPath()+")")
	flags.StringVar(&a.cacheDir, "cache-dir", "", "Cache decoded notes in this directory")
	flags.BoolVar(&a.strict, "strict", false, "Fail a file on its first malformed note region")
	flags.BoolVar(&a.dumpMetrics, "metrics", false, "Print collected metrics to stderr on exit")

	root.AddCommand(
		newListCmd(a),
		newAbiCmd(a),
		newBuildIDCmd(a),
		newBrowseCmd(a),
		newConfigCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	logger, err := newLogger(a.verbose)
	if err != nil {
		return err
	}
	a.logger = logger
	note.SetLogger(logger.Named("note"))

	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.registry = prometheus.NewRegistry()
	a.metrics = image.NewMetrics(a.registry)

	if cfg.CacheDir != "" {
		store, err := cache.Open(cfg.CacheDir)
		if err != nil {
			return err
		}
		a.store = store
	}

	logger.Debug("configured",
		zap.String("cache_dir", cfg.CacheDir),
		zap.Int("workers", cfg.Workers),
		zap.Bool("strict", cfg.Strict))
	return nil
}

// run wraps a subcommand body so the cache is closed and metrics are
// printed whether or not the body fails.
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		return stderrors.Join(err, a.teardown(cmd))
	}
}

func (a *app) teardown(cmd *cobra.Command) error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.dumpMetrics {
		errs = append(errs, writeMetrics(cmd.ErrOrStderr(), a.registry))
	}
	_ = a.logger.Sync()
	return stderrors.Join(errs...)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// annotationCreatesConfig marks commands that may run before the --config
// file exists because they write it.
const annotationCreatesConfig = "elfnotes/creates-config"

// loadConfig reads the explicit --config file, or the default one when it
// exists, then applies flags the user set.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	switch {
	case a.configPath != "":
		_, statErr := os.Stat(a.configPath)
		if os.IsNotExist(statErr) && cmd.Annotations[annotationCreatesConfig] == "true" {
			break
		}
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	default:
		if _, err := os.Stat(config.DefaultPath()); err == nil {
			loaded, err := config.Load(config.DefaultPath())
			if err != nil {
				return nil, err
			}
			cfg = loaded
		}
	}

	flags := cmd.Flags()
	if flags.Changed("cache-dir") {
		cfg.CacheDir = a.cacheDir
	}
	if flags.Changed("strict") {
		cfg.Strict = a.strict
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) scanOptions() scan.Options {
	opts := scan.DefaultOptions()
	opts.Logger = a.logger.Named("scan")
	opts.Workers = a.cfg.Workers
	opts.Cache = a.store
	opts.Image = a.imageOptions()
	return opts
}

func (a *app) imageOptions() image.Options {
	opts := image.DefaultOptions()
	opts.Logger = a.logger.Named("image")
	opts.Metrics = a.metrics
	opts.Strict = a.cfg.Strict
	return opts
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if err := writeFamily(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func writeFamily(w io.Writer, mf *dto.MetricFamily) error {
	_, err := expfmt.MetricFamilyToText(w, mf)
	return err
}
