package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newTestConnCmd(opts *collectOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "test-conn",
		Short: "Test libvirt connection",
		Long:  `Test connectivity to the libvirt daemon and display version information.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd.Flags(), opts)
			if err != nil {
				return err
			}
			logger := newLogger(cmd.ErrOrStderr(), opts.verbose)
			out := cmd.OutOrStdout()

			client, err := connect(context.Background(), cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := client.Close(); closeErr != nil {
					logger.Warn("failed to close libvirt connection", "error", closeErr)
				}
			}()

			_, _ = fmt.Fprintf(out, "✓ Connected to %s (read-only: %t)\n", client.URI().Redacted(), cfg.IsReadOnly())

			if err := client.Ping(); err != nil {
				return fmt.Errorf("connection test failed: %w", err)
			}

			version, err := client.Libvirt().ConnectGetLibVersion()
			if err != nil {
				return fmt.Errorf("failed to get libvirt version: %w", err)
			}

			// Format version (libvirt returns version as an integer like 8006000 for 8.6.0)
			major := version / 1000000
			minor := (version % 1000000) / 1000
			patch := version % 1000
			_, _ = fmt.Fprintf(out, "✓ Libvirt version: %d.%d.%d\n", major, minor, patch)

			hostname, err := client.Libvirt().ConnectGetHostname()
			if err != nil {
				return fmt.Errorf("failed to get hostname: %w", err)
			}
			_, _ = fmt.Fprintf(out, "✓ Hypervisor hostname: %s\n", hostname)

			return nil
		},
	}
}
