package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jbweber/hypermon/internal/libvirt"
)

var (
	version = "dev"
	commit  = "unknown"
)

const (
	exitOK         = 0
	exitConnection = 1 // connection, usage and configuration errors
	exitInventory  = 2 // any other fatal inventory error
)

// usageError marks errors caused by flags or the config file.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCode(err)
	}
	return exitOK
}

func exitCode(err error) int {
	var uerr *usageError
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, libvirt.ErrConnect), errors.As(err, &uerr):
		return exitConnection
	default:
		return exitInventory
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &collectOptions{}

	cmd := &cobra.Command{
		Use:   "hypermon",
		Short: "Hypermon - libvirt domain inventory",
		Long: `Hypermon lists the domains of a libvirt host with their state, memory,
vCPU and CPU time, and optionally their network interfaces and traffic counters.

Output formats:
  -o json        JSON array (default)
  -o table       Human-readable table (also -t)
  -o yaml        One YAML document per domain
  -o prometheus  Prometheus text exposition format

The connection URI is required, either as -c/--connect or as uri in the
--config file. The connection is opened read-only unless --read-write is given.`,
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				return &usageError{err: err}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(cmd, opts)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	bindFlags(cmd, opts)
	cmd.AddCommand(newTestConnCmd(opts))

	return cmd
}

// bindFlags registers the command line flags. Connection flags are
// persistent so test-conn shares them.
func bindFlags(cmd *cobra.Command, opts *collectOptions) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	pf.StringVarP(&opts.uri, "connect", "c", "", "Libvirt connection URI, e.g. qemu:///system (required unless set in --config)")
	pf.DurationVar(&opts.timeout, "timeout", libvirt.DefaultTimeout, "Connection timeout")
	pf.BoolVar(&opts.readWrite, "read-write", false, "Open a read-write connection")
	pf.CountVarP(&opts.verbose, "verbose", "v", "Increase diagnostic output (-v warnings, -vv info, -vvv debug)")

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "json", "Output format (json, table, yaml, prometheus)")
	f.BoolVarP(&opts.table, "table", "t", false, "Output a table (same as -o table)")
	f.BoolVarP(&opts.all, "all", "a", false, "Include defined but inactive domains")
	f.BoolVarP(&opts.interfaces, "interfaces", "i", false, "Collect interface addresses and traffic counters")
	f.StringVar(&opts.addressSource, "address-source", "lease", "Interface data source (lease, agent, arp, definition)")
	f.IntVar(&opts.parallel, "parallel", 1, "Number of domains fetched concurrently")
	f.BoolVar(&opts.noHeaders, "no-headers", false, "Omit the header row in table output")
}
