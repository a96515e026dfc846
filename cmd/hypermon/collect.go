package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/jbweber/hypermon/internal/config"
	"github.com/jbweber/hypermon/internal/inventory"
	"github.com/jbweber/hypermon/internal/libvirt"
	"github.com/jbweber/hypermon/internal/output"
)

// collectOptions holds the raw flag values.
type collectOptions struct {
	configPath    string
	uri           string
	output        string
	table         bool
	all           bool
	interfaces    bool
	addressSource string
	parallel      int
	timeout       time.Duration
	noHeaders     bool
	readWrite     bool
	verbose       int
}

// resolveConfig loads the config file, if any, and applies the flags that
// were set explicitly on top of it.
func resolveConfig(flags *pflag.FlagSet, opts *collectOptions) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.LoadFromFile(opts.configPath)
		if err != nil {
			return nil, &usageError{err: err}
		}
		cfg = loaded
	}

	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	if changed("connect") {
		cfg.URI = opts.uri
	}
	if changed("output") {
		cfg.Output = opts.output
	}
	if changed("table") && opts.table {
		cfg.Output = string(output.FormatTable)
	}
	if changed("all") {
		cfg.All = opts.all
	}
	if changed("interfaces") {
		cfg.Interfaces = opts.interfaces
	}
	if changed("address-source") {
		cfg.AddressSource = opts.addressSource
	}
	if changed("parallel") {
		cfg.Parallel = opts.parallel
	}
	if changed("timeout") {
		cfg.Timeout = opts.timeout
	}
	if changed("no-headers") {
		cfg.NoHeaders = opts.noHeaders
	}
	if changed("read-write") {
		readOnly := !opts.readWrite
		cfg.ReadOnly = &readOnly
	}

	if err := cfg.Validate(); err != nil {
		return nil, &usageError{err: err}
	}
	return cfg, nil
}

// logLevel maps the -v count to a slog level. Without -v only errors are
// logged.
func logLevel(verbose int) slog.Level {
	switch {
	case verbose >= 3:
		return slog.LevelDebug
	case verbose == 2:
		return slog.LevelInfo
	case verbose == 1:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

func newLogger(w io.Writer, verbose int) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel(verbose)}))
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// connect opens the hypervisor connection described by cfg, bounded by its
// timeout.
func connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*libvirt.Client, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	return libvirt.ConnectWithContext(ctx, libvirt.Options{
		URI:      cfg.URI,
		ReadOnly: cfg.IsReadOnly(),
		Timeout:  cfg.Timeout,
		Logger:   logger,
	})
}

func runCollect(cmd *cobra.Command, opts *collectOptions) error {
	cfg, err := resolveConfig(cmd.Flags(), opts)
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), opts.verbose)

	// Validated by resolveConfig
	source, _ := inventory.ParseAddressSource(cfg.AddressSource)

	formatter, err := output.NewFormatter(output.Options{
		Format:         output.Format(cfg.Output),
		NoHeaders:      cfg.NoHeaders,
		ShowInterfaces: cfg.Interfaces,
		Styled:         isTerminal(cmd.OutOrStdout()),
	})
	if err != nil {
		return &usageError{err: err}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			logger.Warn("failed to close libvirt connection", "error", closeErr)
		}
	}()

	records, err := inventory.Build(ctx, client.Libvirt(), inventory.Options{
		IncludeInactive: cfg.All,
		WantInterfaces:  cfg.Interfaces,
		AddressSource:   source,
		Parallel:        cfg.Parallel,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	// Render fully before writing so a failure never leaves partial output.
	result, err := formatter.FormatDomainList(records)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), result)
	return err
}
