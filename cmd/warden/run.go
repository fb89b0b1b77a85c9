package main

import (
	"context"

	"github.com/spf13/cobra"

	"cloudspend-hq/warden/pkg/config"
)

// runFlags are command-line overrides applied on top of the loaded
// configuration.
type runFlags struct {
	listenAddress string
	logLevel      string
	simulate      bool
}

var runOpts runFlags

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the spend governor daemon",
	Long: `Run starts the HTTP server, the cycle scheduler, and all configured
backends, then blocks until a shutdown signal arrives.

Configuration is loaded from the file given by --config, with WARDEN_*
environment variables taking precedence over file values and command-line
flags taking precedence over both.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

func init() {
	runCmd.Flags().StringVar(&runOpts.listenAddress, "listen-address", "", "override server listen address")
	runCmd.Flags().StringVar(&runOpts.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runOpts.simulate, "simulate", false, "compute and log decisions without disabling services")

	rootCmd.AddCommand(runCmd)
}

func runServer(ctx context.Context) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return err
	}
	applyRunFlags(cfg)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	a.logger.Info("warden starting",
		"version", Version,
		"services", len(cfg.Governor.Services),
		"state_backend", cfg.State.Backend,
		"simulate", cfg.Governor.Simulate,
	)

	if err := a.scheduler.Start(ctx); err != nil {
		return err
	}
	defer a.scheduler.Stop()

	// Blocks until signal, context cancel, or listener failure.
	return a.server.Start(ctx)
}

// applyRunFlags applies command-line overrides. Flags win over both the
// config file and environment variables.
func applyRunFlags(cfg *config.Config) {
	if runOpts.listenAddress != "" {
		cfg.Server.ListenAddress = runOpts.listenAddress
	}
	if runOpts.logLevel != "" {
		cfg.Telemetry.Logging.Level = runOpts.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	if runOpts.simulate {
		cfg.Governor.Simulate = true
	}
}
