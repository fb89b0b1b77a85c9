package notify

import (
	"context"
	"log/slog"

	"cloudspend-hq/warden/pkg/state"
)

// Dispatcher fans alerts out to the configured channels with per-month
// deduplication.
//
// At most one alert per (service, level) is sent per billing month. The
// dedup flag is set the moment the dispatcher decides to send: even if
// every channel fails delivery, the level counts as sent. Retrying a
// failed alert on the next cycle would turn a flaky SMTP server into an
// alert storm.
type Dispatcher struct {
	store    *state.Store
	channels []Channel
	logger   *slog.Logger

	// onDelivery is invoked per channel attempt (metrics).
	onDelivery func(level, channel, result string)
}

// DispatcherOption customizes a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDeliveryHook registers a callback invoked for every channel delivery
// attempt with result "sent" or "failed".
func WithDeliveryHook(hook func(level, channel, result string)) DispatcherOption {
	return func(d *Dispatcher) { d.onDelivery = hook }
}

// NewDispatcher creates a dispatcher over the given channels. An empty
// channel list is valid: alerts are then dedup-tracked but not delivered
// anywhere.
func NewDispatcher(store *state.Store, channels []Channel, logger *slog.Logger, opts ...DispatcherOption) *Dispatcher {
	if logger == nil {
		logger = slog.Default().With("component", "notify")
	}
	d := &Dispatcher{store: store, channels: channels, logger: logger}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Notify sends the alert unless one at the same level was already sent for
// the service this billing month. It reports whether the alert was
// dispatched (decided to send), regardless of delivery success.
func (d *Dispatcher) Notify(ctx context.Context, alert Alert) bool {
	// MarkAlertSent is an atomic test-and-set: of any number of concurrent
	// callers exactly one wins the month's slot. Marking before delivery
	// also means a failed delivery does not re-alert every cycle for the
	// rest of the month.
	if !d.store.MarkAlertSent(ctx, alert.ServiceKey, string(alert.Level)) {
		d.logger.Debug("alert suppressed, already sent this billing month",
			"service", alert.ServiceKey,
			"level", alert.Level,
		)
		return false
	}

	for _, ch := range d.channels {
		if err := ch.Send(ctx, alert); err != nil {
			d.logger.Error("alert delivery failed",
				"service", alert.ServiceKey,
				"level", alert.Level,
				"channel", ch.Name(),
				"error", err,
			)
			d.record(alert.Level, ch.Name(), "failed")
			continue
		}
		d.logger.Info("alert delivered",
			"service", alert.ServiceKey,
			"level", alert.Level,
			"channel", ch.Name(),
		)
		d.record(alert.Level, ch.Name(), "sent")
	}

	return true
}

func (d *Dispatcher) record(level Level, channel, result string) {
	if d.onDelivery != nil {
		d.onDelivery(string(level), channel, result)
	}
}
