package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fystack/wt-reader/internal/catalog"
	"github.com/fystack/wt-reader/internal/config"
	"github.com/fystack/wt-reader/internal/drivers"
	"github.com/fystack/wt-reader/internal/logger"
	"github.com/fystack/wt-reader/internal/printer"
	"github.com/fystack/wt-reader/internal/reader"
	"github.com/fystack/wt-reader/internal/store"
	"github.com/fystack/wt-reader/pkg/common/enum"
)

// errReported marks failures already written to the log.
var errReported = errors.New("reported")

type flags struct {
	configPath string
	engine     string
	format     string
	preview    int
	debug      bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(stderr, "Error: %v\n\n%s", err, cmd.UsageString())
		}
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "wt-reader <data_dir_path> [table_identifier] [limit]",
		Short:         "List tables and dump raw records from a WiredTiger data directory, read-only.",
		Args:          cobra.RangeArgs(1, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return dump(cfg, args, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "", "Path to an optional YAML config file.")
	fl.StringVar(&f.engine, "engine", string(enum.EngineWiredTiger), "Storage engine: wiredtiger, badger, pebble, bolt or memory.")
	fl.StringVar(&f.format, "format", string(enum.OutputText), "Output format: text or json.")
	fl.IntVar(&f.preview, "preview", 0, "Show the first N bytes of each value as hex (text output).")
	fl.BoolVar(&f.debug, "debug", false, "Enable debug logs.")
	return cmd
}

// loadConfig reads the config file, then applies flags the user set.
func loadConfig(cmd *cobra.Command, f flags) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, err
	}
	fl := cmd.Flags()
	if fl.Changed("engine") {
		cfg.Engine = enum.EngineType(f.engine)
	}
	if fl.Changed("format") {
		cfg.Output.Format = enum.OutputFormat(f.format)
	}
	if fl.Changed("preview") {
		cfg.Output.PreviewBytes = f.preview
	}
	if f.debug {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return *cfg, nil
}

func dump(cfg config.Config, args []string, stdout, stderr io.Writer) error {
	dataDir := args[0]
	var table string
	limit := reader.NoLimit
	if len(args) > 1 {
		table = args[1]
	}
	if len(args) > 2 {
		l, err := reader.ParseLimit(args[2])
		if err != nil {
			return err
		}
		limit = l
	}

	log := logger.New(logger.Options{
		Level:      logger.ParseLevel(cfg.Log.Level),
		Writer:     stderr,
		TimeFormat: cfg.Log.TimeFormat,
		NoColor:    cfg.Log.NoColor,
	})

	driver, err := drivers.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	h, err := store.Open(driver, dataDir,
		store.WithLogger(log),
		store.WithErrorPrefix(cfg.ErrorPrefix),
		store.WithRetry(cfg.Open.Retries+1, cfg.Open.RetryInterval),
	)
	if err != nil {
		log.Error("Connect to store failed", "engine", cfg.Engine, "path", dataDir, "err", err)
		return errReported
	}
	defer closeLogged(log, "store", h)

	sess, err := h.OpenSession()
	if err != nil {
		log.Error("Open session failed", "path", dataDir, "err", err)
		return errReported
	}
	defer closeLogged(log, "session", sess)
	log.Info("Connected to store and opened session", "engine", cfg.Engine, "path", dataDir)

	out := printer.New(stdout, cfg.Output.Format, cfg.Output.PreviewBytes)
	if err := out.Tables(catalog.ListTables(sess, log)); err != nil {
		return err
	}

	if table == "" {
		return nil
	}
	if err := out.Reading(table); err != nil {
		return err
	}
	return out.Records(table, reader.ReadTable(sess, table, limit, log))
}

func closeLogged(log *slog.Logger, what string, c io.Closer) {
	if err := c.Close(); err != nil {
		log.Warn("Close failed", "what", what, "err", err)
		return
	}
	log.Debug("Closed", "what", what)
}
