package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"cloudspend-hq/warden/pkg/config"
	"cloudspend-hq/warden/pkg/control"
	"cloudspend-hq/warden/pkg/governor"
	"cloudspend-hq/warden/pkg/notify"
	"cloudspend-hq/warden/pkg/pricing"
	"cloudspend-hq/warden/pkg/scheduler"
	"cloudspend-hq/warden/pkg/server"
	"cloudspend-hq/warden/pkg/state"
	"cloudspend-hq/warden/pkg/telemetry/health"
	"cloudspend-hq/warden/pkg/telemetry/logging"
	"cloudspend-hq/warden/pkg/telemetry/metrics"
	"cloudspend-hq/warden/pkg/usage"
)

// app holds the wired component graph for one warden process.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	collector *metrics.Collector
	checker   *health.Checker
	store     *state.Store
	governor  *governor.Governor
	scheduler *scheduler.Scheduler
	server    *server.Server

	closers []func() error
}

// buildApp wires every component from configuration. The context bounds
// startup work (initial state load, object store probe) and the lifetime of
// the catalog watcher goroutine.
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logger, err := logging.Setup(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}

	if *cfg.Telemetry.Metrics.Enabled {
		a.collector = metrics.NewCollector("warden", prometheus.NewRegistry())
	}
	a.checker = health.New(0)

	if err := a.buildStore(ctx); err != nil {
		a.close()
		return nil, err
	}

	prices, err := a.buildPricing(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	usageSource := usage.NewMonitoringClient(cfg.Usage.Endpoint, cfg.Usage.Timeout)
	controller := control.NewHTTPController(
		cfg.Control.Endpoint,
		cfg.Control.Timeout,
		cfg.Control.MaxRetries,
		logger.With("component", "control"),
	)

	dispatcher := a.buildDispatcher()
	registry := governor.NewRegistry(cfg.Governor.Services)

	a.governor = governor.New(
		governor.Config{
			WarningThresholdPct:    cfg.Governor.WarningThresholdPct,
			CriticalThresholdPct:   cfg.Governor.CriticalThresholdPct,
			Simulate:               cfg.Governor.Simulate,
			AllowOverlappingCycles: cfg.Governor.AllowOverlappingCycles,
		},
		registry,
		a.store,
		prices,
		usageSource,
		controller,
		dispatcher,
		a.collector,
		logger.With("component", "governor"),
	)

	a.scheduler = scheduler.New(a.governor, cfg.Governor.Schedule, logger.With("component", "scheduler"))

	a.buildServer()
	return a, nil
}

// buildStore selects the persistence backend and loads (or creates) the
// state document.
func (a *app) buildStore(ctx context.Context) error {
	blob, err := a.buildBlob(ctx)
	if err != nil {
		return err
	}

	var opts []state.StoreOption
	if a.collector != nil {
		opts = append(opts, state.WithPersistFailureHook(a.collector.RecordPersistenceFailure))
	}

	store, err := state.NewStore(ctx, blob, a.cfg.State.Key, a.cfg.Governor.AuditLimit,
		a.logger.With("component", "state"), opts...)
	if err != nil {
		return fmt.Errorf("failed to load governor state: %w", err)
	}
	a.store = store

	a.checker.Register("state", func(ctx context.Context) error {
		_, err := blob.Read(ctx, a.cfg.State.Key)
		if errors.Is(err, state.ErrNotFound) {
			return nil
		}
		return err
	})
	return nil
}

func (a *app) buildBlob(ctx context.Context) (state.Blob, error) {
	switch a.cfg.State.Backend {
	case "file":
		return state.NewFileBlob(a.cfg.State.File.Dir)

	case "object":
		obj := a.cfg.State.Object
		return state.NewObjectBlob(ctx, state.ObjectBlobConfig{
			Endpoint:  obj.Endpoint,
			Bucket:    obj.Bucket,
			AccessKey: obj.AccessKey,
			SecretKey: obj.SecretKey,
			UseSSL:    *obj.UseSSL,
			Prefix:    obj.Prefix,
		})

	case "sqlite":
		blob, err := state.NewSQLiteBlob(a.cfg.State.SQLite.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, blob.Close)
		return blob, nil

	default:
		return nil, fmt.Errorf("unknown state backend %q", a.cfg.State.Backend)
	}
}

// buildPricing assembles the price resolution chain: live billing catalog,
// static catalog fallback, and the documented last-resort default price so
// unknown items still accrue spend.
func (a *app) buildPricing(ctx context.Context) (pricing.Resolver, error) {
	pcfg := a.cfg.Pricing
	log := a.logger.With("component", "pricing")

	catalog, catalogErr := pricing.NewCatalogResolver(pcfg.CatalogPath, log)
	if catalogErr == nil && *pcfg.WatchCatalog {
		go func() {
			if err := catalog.Watch(ctx); err != nil {
				log.Error("price catalog watcher exited", "error", err)
			}
		}()
	}

	var resolver pricing.Resolver
	switch pcfg.Source {
	case "billing":
		billing := pricing.NewBillingResolver(pcfg.Endpoint, pcfg.Currency, pcfg.Timeout, log)
		if catalogErr != nil {
			log.Warn("static price catalog unavailable, billing API only",
				"path", pcfg.CatalogPath,
				"error", catalogErr,
			)
			resolver = billing
		} else {
			resolver = pricing.NewFallbackResolver(billing, catalog)
		}

	case "catalog":
		if catalogErr != nil {
			return nil, fmt.Errorf("failed to load price catalog %q: %w", pcfg.CatalogPath, catalogErr)
		}
		resolver = catalog

	default:
		return nil, fmt.Errorf("unknown pricing source %q", pcfg.Source)
	}

	return pricing.WithDefault(resolver, pcfg.DefaultUnitPrice, pcfg.Currency), nil
}

// buildDispatcher constructs the alert dispatcher with every configured
// channel. A channel left unconfigured is simply absent; alerts still mark
// state so configuring a channel later does not replay old alerts.
func (a *app) buildDispatcher() *notify.Dispatcher {
	var channels []notify.Channel

	email := a.cfg.Notify.Email
	if email.Host != "" && email.From != "" && len(email.Recipients) > 0 {
		channels = append(channels, notify.NewEmailChannel(notify.EmailConfig{
			Host:       email.Host,
			Port:       email.Port,
			From:       email.From,
			Password:   email.Password,
			Recipients: email.Recipients,
		}))
	}

	event := a.cfg.Notify.Event
	if len(event.Brokers) > 0 && event.Topic != "" {
		ch := notify.NewEventChannel(event.Brokers, event.Topic)
		a.closers = append(a.closers, ch.Close)
		channels = append(channels, ch)
	}

	var opts []notify.DispatcherOption
	if a.collector != nil {
		opts = append(opts, notify.WithDeliveryHook(a.collector.RecordAlert))
	}

	return notify.NewDispatcher(a.store, channels, a.logger.With("component", "notify"), opts...)
}

func (a *app) buildServer() {
	var metricsHandler http.Handler
	if a.collector != nil {
		metricsHandler = a.collector.Handler()
	}
	a.server = server.New(
		&a.cfg.Server,
		a.governor,
		a.checker,
		metricsHandler,
		a.logger.With("component", "server"),
	)
}

// close releases backend resources in reverse construction order.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Error("failed to close component", "error", err)
		}
	}
}
