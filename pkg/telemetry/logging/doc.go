// Package logging provides structured logging for Warden built on log/slog.
//
// # Usage
//
//	logger, err := logging.Setup(logging.Config{
//	    Level:  cfg.Telemetry.Logging.Level,
//	    Format: cfg.Telemetry.Logging.Format,
//	})
//	if err != nil {
//	    return err
//	}
//	logger.Info("governor started", "services", len(cfg.Governor.Services))
//
// Components derive scoped loggers from the process default:
//
//	log := slog.Default().With("component", "governor")
package logging
