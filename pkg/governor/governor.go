package governor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cloudspend-hq/warden/pkg/control"
	"cloudspend-hq/warden/pkg/notify"
	"cloudspend-hq/warden/pkg/pricing"
	"cloudspend-hq/warden/pkg/state"
	"cloudspend-hq/warden/pkg/telemetry/metrics"
	"cloudspend-hq/warden/pkg/usage"
)

// Config holds the governor's enforcement parameters.
type Config struct {
	// WarningThresholdPct is the budget percentage that triggers a
	// WARNING alert.
	WarningThresholdPct float64

	// CriticalThresholdPct is the budget percentage that triggers a
	// disable and a CRITICAL alert.
	CriticalThresholdPct float64

	// Simulate computes and logs decisions without ever disabling a
	// service.
	Simulate bool

	// AllowOverlappingCycles drops the process-level cycle lock.
	// Decisions are idempotent so overlap is safe for state either way;
	// the lock avoids duplicate concurrent work against upstream APIs.
	AllowOverlappingCycles bool
}

// Governor runs the closed-loop budget enforcement: measure spend, compare
// against budgets, disable runaway services, alert, and record what it did.
type Governor struct {
	cfg        Config
	registry   *Registry
	store      *state.Store
	prices     pricing.Resolver
	usage      usage.Source
	controller control.Controller
	dispatcher *notify.Dispatcher
	collector  *metrics.Collector
	logger     *slog.Logger

	// cycleMu serializes check cycles unless overlap is allowed.
	cycleMu sync.Mutex

	// now is swappable in tests.
	now func() time.Time
}

// New creates a governor. collector may be nil when metrics are disabled.
func New(
	cfg Config,
	registry *Registry,
	store *state.Store,
	prices pricing.Resolver,
	usageSource usage.Source,
	controller control.Controller,
	dispatcher *notify.Dispatcher,
	collector *metrics.Collector,
	logger *slog.Logger,
) *Governor {
	if logger == nil {
		logger = slog.Default().With("component", "governor")
	}
	return &Governor{
		cfg:        cfg,
		registry:   registry,
		store:      store,
		prices:     prices,
		usage:      usageSource,
		controller: controller,
		dispatcher: dispatcher,
		collector:  collector,
		logger:     logger,
		now:        time.Now,
	}
}

// RunCycle runs one full check cycle across every registered service.
//
// A failure local to one metric or service never aborts the others: the
// cycle always completes and returns a Summary carrying per-item detail.
// The only error return is a context already cancelled before work starts.
func (g *Governor) RunCycle(ctx context.Context) (*Summary, error) {
	if !g.cfg.AllowOverlappingCycles {
		g.cycleMu.Lock()
		defer g.cycleMu.Unlock()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := g.now()
	summary := &Summary{StartedAt: start}

	if cs, ok := g.prices.(pricing.CycleStarter); ok {
		cs.BeginCycle()
	}

	g.handleRollover(ctx, start, summary)
	summary.BillingMonth = g.store.BillingMonth()

	window := usage.CurrentBillingWindow(start)
	for _, svc := range g.registry.Services() {
		result := g.checkService(ctx, &svc, window)
		summary.Services = append(summary.Services, result)

		if g.collector != nil {
			g.collector.RecordServiceCost(svc.Key, result.EffectiveCost, result.UsagePct)
		}
	}

	summary.Duration = g.now().Sub(start)

	outcome := "ok"
	if summary.Degraded() {
		outcome = "degraded"
	}
	if g.collector != nil {
		g.collector.RecordCycle(outcome, summary.Duration)
	}

	g.logger.Info("check cycle complete",
		"duration", summary.Duration,
		"services", len(summary.Services),
		"outcome", outcome,
	)
	return summary, nil
}

// handleRollover rolls the billing month over when needed and works off the
// pending re-enables: services a rollover cleared whose control-API enable
// has not been confirmed yet. A failed enable stays pending, surfaces in
// the summary, and is retried here every cycle until it succeeds.
func (g *Governor) handleRollover(ctx context.Context, now time.Time, summary *Summary) {
	if g.store.CheckRollover(ctx, now).Rolled {
		summary.RolledOver = true
	}

	for _, key := range g.store.PendingEnables() {
		svc, err := g.registry.ByKey(key)
		if err != nil {
			// Stale state for a service no longer configured; nothing
			// to re-enable.
			g.logger.Warn("pending re-enable for service not in registry", "service", key)
			g.store.SetDisabled(ctx, key, false)
			continue
		}
		if err := g.controller.Enable(ctx, svc.ResourceID); err != nil {
			summary.ReEnableErrors = append(summary.ReEnableErrors,
				fmt.Sprintf("%s: %v", key, err))
			g.store.AppendAudit(ctx, key, state.ActionRollover,
				fmt.Sprintf("re-enable failed, will retry: %v", err))
			g.logger.Error("failed to re-enable service after rollover",
				"service", key,
				"resource", svc.ResourceID,
				"error", err,
			)
			continue
		}
		// Confirmed: clears the pending flag.
		g.store.SetDisabled(ctx, key, false)
		summary.ReEnabled = append(summary.ReEnabled, key)
		g.store.AppendAudit(ctx, key, state.ActionRollover, "service re-enabled for new billing month")
		if g.collector != nil {
			g.collector.RecordEnforcementAction("enable", key)
		}
	}
}

// checkService computes one service's spend and enforces its budget.
func (g *Governor) checkService(ctx context.Context, svc *Service, window usage.Window) ServiceResult {
	result := ServiceResult{
		Key:        svc.Key,
		ResourceID: svc.ResourceID,
		Budget:     svc.MonthlyBudget,
	}

	rawCost, warnings := g.measureCost(ctx, svc, window)
	result.RawCost = rawCost
	result.DataQualityWarnings = warnings

	prev := g.store.Service(svc.Key)
	result.EffectiveCost = rawCost - prev.Baseline
	if result.EffectiveCost < 0 {
		result.EffectiveCost = 0
	}

	// The raw cost is recorded unconditionally so a later reset can fall
	// back to it.
	g.store.SetLastKnownCost(ctx, svc.Key, rawCost)

	result.UsagePct = result.EffectiveCost / svc.MonthlyBudget * 100

	switch {
	case result.UsagePct >= g.cfg.CriticalThresholdPct:
		g.enforceCritical(ctx, svc, prev, &result)
	case result.UsagePct >= g.cfg.WarningThresholdPct:
		result.Status = StatusWarned
		result.AlertDispatched = g.dispatcher.Notify(ctx, g.alert(svc, &result, notify.LevelWarning, "warning only"))
	default:
		result.Status = StatusOK
	}

	if len(warnings) > 0 && result.Status == StatusOK {
		result.Status = StatusDataQuality
	}

	g.logger.Info("service checked",
		"service", svc.Key,
		"raw_cost", result.RawCost,
		"effective_cost", result.EffectiveCost,
		"usage_pct", result.UsagePct,
		"status", result.Status,
	)
	return result
}

// measureCost sums usage x unit price over the service's metrics. A failed
// lookup contributes zero and is surfaced as a data-quality warning: the
// computed cost then understates real spend and must not pass silently.
func (g *Governor) measureCost(ctx context.Context, svc *Service, window usage.Window) (float64, []string) {
	var (
		total    float64
		warnings []string
	)
	for _, m := range svc.Metrics {
		quantity, err := g.usage.Query(ctx, m.Usage, window)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("usage query failed for %s: %v", m.Label, err))
			g.recordDataQuality(svc.Key, "usage")
			continue
		}

		price, err := g.prices.Resolve(ctx, m.Price)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("price lookup failed for %s: %v", m.Label, err))
			g.recordDataQuality(svc.Key, "price")
			continue
		}

		total += float64(quantity) * price.UnitPrice
	}
	return total, warnings
}

// enforceCritical handles a service at or over the critical threshold.
func (g *Governor) enforceCritical(ctx context.Context, svc *Service, prev state.ServiceState, result *ServiceResult) {
	if prev.Disabled {
		// Already disabled by a previous cycle; nothing to repeat. The
		// CRITICAL alert was sent when the disable happened.
		result.Status = StatusDisabled
		return
	}

	if g.cfg.Simulate {
		result.Status = StatusDisabled
		result.Simulated = true
		g.logger.Warn("simulate mode: service would be disabled",
			"service", svc.Key,
			"usage_pct", result.UsagePct,
		)
		if g.collector != nil {
			g.collector.RecordEnforcementAction("simulate_disable", svc.Key)
		}
		result.AlertDispatched = g.dispatcher.Notify(ctx,
			g.alert(svc, result, notify.LevelCritical, "would disable (simulate mode)"))
		return
	}

	// Claim the disable in the store first. SetDisabled is an atomic
	// test-and-set, so of any overlapping cycles exactly one reaches the
	// controller; the losers report the steady disabled state.
	if !g.store.SetDisabled(ctx, svc.Key, true) {
		result.Status = StatusDisabled
		return
	}

	if err := g.controller.Disable(ctx, svc.ResourceID); err != nil {
		// Disable failed: release the claim so a later cycle retries. The
		// CRITICAL alert is withheld so a later successful disable still
		// alerts.
		g.store.SetDisabled(ctx, svc.Key, false)
		result.Status = StatusWarned
		result.DisableError = err.Error()
		g.logger.Error("failed to disable service",
			"service", svc.Key,
			"resource", svc.ResourceID,
			"error", err,
		)
		result.AlertDispatched = g.dispatcher.Notify(ctx,
			g.alert(svc, result, notify.LevelWarning, "disable failed, service still enabled"))
		return
	}

	result.Status = StatusDisabled
	result.DisabledThisCycle = true
	g.store.AppendAudit(ctx, svc.Key, state.ActionDisable,
		fmt.Sprintf("budget exceeded: %.1f%% of %.2f", result.UsagePct, svc.MonthlyBudget))
	g.logger.Warn("service disabled",
		"service", svc.Key,
		"resource", svc.ResourceID,
		"usage_pct", result.UsagePct,
	)
	if g.collector != nil {
		g.collector.RecordEnforcementAction("disable", svc.Key)
	}
	result.AlertDispatched = g.dispatcher.Notify(ctx,
		g.alert(svc, result, notify.LevelCritical, "service disabled"))
}

func (g *Governor) alert(svc *Service, result *ServiceResult, level notify.Level, action string) notify.Alert {
	return notify.Alert{
		Level:         level,
		ServiceKey:    svc.Key,
		ResourceID:    svc.ResourceID,
		Budget:        svc.MonthlyBudget,
		EffectiveCost: result.EffectiveCost,
		UsagePct:      result.UsagePct,
		Action:        action,
		Timestamp:     g.now(),
	}
}

func (g *Governor) recordDataQuality(service, kind string) {
	if g.collector != nil {
		g.collector.RecordDataQualityWarning(service, kind)
	}
}
