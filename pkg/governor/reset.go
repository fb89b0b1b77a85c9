package governor

import (
	"context"
	"fmt"
	"sort"

	"cloudspend-hq/warden/pkg/pricing"
	"cloudspend-hq/warden/pkg/state"
	"cloudspend-hq/warden/pkg/usage"
)

// Reset moves a service's cost baseline to its current spend, clears its
// alert flags, and re-enables it. The intent is "give this service a fresh
// budget from here on".
//
// The baseline comes from a live re-query of current spend; if that fails,
// from the last cost a cycle observed; failing both, zero. Every step is
// attempted even when an earlier one fails, so a flaky control API cannot
// leave the baseline half-applied. The caller reads the result flags to
// see what actually happened.
func (g *Governor) Reset(ctx context.Context, serviceKey string) (*ResetResult, error) {
	svc, err := g.registry.ByKey(serviceKey)
	if err != nil {
		return nil, err
	}

	result := &ResetResult{ServiceKey: serviceKey}

	if cs, ok := g.prices.(pricing.CycleStarter); ok {
		cs.BeginCycle()
	}

	window := usage.CurrentBillingWindow(g.now())
	liveCost, warnings := g.measureCost(ctx, svc, window)
	switch {
	case len(warnings) == 0:
		result.Baseline = liveCost
		result.BaselineSource = "live"
	default:
		prev := g.store.Service(serviceKey)
		result.Baseline = prev.LastKnownCost
		result.BaselineSource = "last_known"
		if prev.LastKnownCost == 0 {
			result.BaselineSource = "zero"
		}
		g.logger.Warn("reset falling back from live re-query",
			"service", serviceKey,
			"baseline", result.Baseline,
			"source", result.BaselineSource,
			"warnings", warnings,
		)
	}

	g.store.SetBaseline(ctx, serviceKey, result.Baseline)
	g.store.ClearAlerts(ctx, serviceKey)
	result.AlertsCleared = true

	if err := g.controller.Enable(ctx, svc.ResourceID); err != nil {
		result.EnableError = err.Error()
		g.logger.Error("failed to re-enable service during reset",
			"service", serviceKey,
			"resource", svc.ResourceID,
			"error", err,
		)
	} else {
		result.APIEnabled = true
		g.store.SetDisabled(ctx, serviceKey, false)
	}

	g.store.AppendAudit(ctx, serviceKey, state.ActionReset,
		fmt.Sprintf("baseline set to %.2f (%s), api_enabled=%t", result.Baseline, result.BaselineSource, result.APIEnabled))
	if g.collector != nil {
		g.collector.RecordEnforcementAction("reset", serviceKey)
	}

	g.logger.Info("service reset",
		"service", serviceKey,
		"baseline", result.Baseline,
		"source", result.BaselineSource,
		"api_enabled", result.APIEnabled,
	)
	return result, nil
}

// Enable manually re-enables a service by its control API resource ID.
// Unlike Reset it leaves baselines and alert flags untouched.
func (g *Governor) Enable(ctx context.Context, resourceID string) error {
	if err := g.controller.Enable(ctx, resourceID); err != nil {
		return err
	}

	if svc, ok := g.registry.ByResourceID(resourceID); ok {
		g.store.SetDisabled(ctx, svc.Key, false)
		g.store.AppendAudit(ctx, svc.Key, state.ActionEnable, "manual enable")
		if g.collector != nil {
			g.collector.RecordEnforcementAction("enable", svc.Key)
		}
	}
	return nil
}

// ServiceStatus returns the live status view of one service.
func (g *Governor) ServiceStatus(ctx context.Context, serviceKey string) (*StatusView, error) {
	svc, err := g.registry.ByKey(serviceKey)
	if err != nil {
		return nil, err
	}
	view := g.statusView(ctx, svc)
	return &view, nil
}

// AllStatuses returns the live status view of every registered service.
func (g *Governor) AllStatuses(ctx context.Context) []StatusView {
	services := g.registry.Services()
	views := make([]StatusView, 0, len(services))
	for i := range services {
		views = append(views, g.statusView(ctx, &services[i]))
	}
	return views
}

func (g *Governor) statusView(ctx context.Context, svc *Service) StatusView {
	prev := g.store.Service(svc.Key)

	effective := prev.LastKnownCost - prev.Baseline
	if effective < 0 {
		effective = 0
	}

	view := StatusView{
		Key:           svc.Key,
		ResourceID:    svc.ResourceID,
		Budget:        svc.MonthlyBudget,
		EffectiveCost: effective,
		UsagePct:      effective / svc.MonthlyBudget * 100,
		Baseline:      prev.Baseline,
		Disabled:      prev.Disabled,
	}
	for level := range prev.AlertsSent {
		view.AlertsSent = append(view.AlertsSent, level)
	}
	sort.Strings(view.AlertsSent)

	apiState, err := g.controller.Status(ctx, svc.ResourceID)
	if err != nil {
		g.logger.Warn("control status lookup failed",
			"service", svc.Key,
			"error", err,
		)
	}
	view.APIState = string(apiState)
	return view
}
