package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"cloudspend-hq/warden/pkg/config"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one check cycle and print the summary",
	Long: `Check runs a single budget check cycle against the configured services
and prints the cycle summary as JSON. Enforcement decisions are applied
exactly as they would be by the daemon; pass --simulate to inspect
decisions without disabling anything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(cmd.Context())
	},
}

var checkSimulate bool

func init() {
	checkCmd.Flags().BoolVar(&checkSimulate, "simulate", false, "compute and log decisions without disabling services")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(ctx context.Context) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return err
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	if checkSimulate {
		cfg.Governor.Simulate = true
	}
	// One-shot runs log human-readable output unless configured otherwise.
	if cfg.Telemetry.Logging.Format == config.DefaultLogFormat {
		cfg.Telemetry.Logging.Format = "console"
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	summary, err := a.governor.RunCycle(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
