package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Store owns the governor's persistent state: per-service baselines,
// last-known costs, alert dedup flags, the bounded audit trail, and the
// billing-month rollover marker.
//
// All mutation is serialized behind an internal mutex, and every mutation
// persists the whole document through the Blob backend. A failed write is
// non-fatal: the in-memory state stands, the failure is logged and counted,
// and the next mutation retries the write.
type Store struct {
	blob       Blob
	key        string
	auditLimit int
	logger     *slog.Logger

	// onPersistFailure is invoked for every failed blob write (metrics).
	onPersistFailure func()

	mu  sync.Mutex
	doc document
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithPersistFailureHook registers a callback invoked whenever a state
// write fails.
func WithPersistFailureHook(hook func()) StoreOption {
	return func(s *Store) { s.onPersistFailure = hook }
}

// NewStore loads the state document from the blob backend, or starts from
// an empty document when none exists. auditLimit bounds the audit trail to
// the most recent N entries.
func NewStore(ctx context.Context, blob Blob, key string, auditLimit int, logger *slog.Logger, opts ...StoreOption) (*Store, error) {
	if auditLimit <= 0 {
		auditLimit = 200
	}
	if logger == nil {
		logger = slog.Default().With("component", "state")
	}

	s := &Store{
		blob:       blob,
		key:        key,
		auditLimit: auditLimit,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := blob.Read(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
		s.doc = document{Services: make(map[string]*ServiceState)}
		s.logger.Info("no existing state document, starting fresh", "key", key)
	case err != nil:
		return nil, fmt.Errorf("failed to load state document %q: %w", key, err)
	default:
		if err := json.Unmarshal(data, &s.doc); err != nil {
			return nil, fmt.Errorf("failed to parse state document %q: %w", key, err)
		}
		if s.doc.Services == nil {
			s.doc.Services = make(map[string]*ServiceState)
		}
		s.logger.Info("state document loaded",
			"key", key,
			"billing_month", s.doc.BillingMonth,
			"services", len(s.doc.Services),
			"audit_entries", len(s.doc.Audit),
		)
	}

	return s, nil
}

// Service returns a copy of the persistent state for a service. A service
// never seen before yields the zero state.
func (s *Store) Service(key string) ServiceState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.serviceCopyLocked(key)
}

func (s *Store) serviceCopyLocked(key string) ServiceState {
	svc := s.doc.Services[key]
	if svc == nil {
		return ServiceState{}
	}
	out := *svc
	if svc.AlertsSent != nil {
		out.AlertsSent = make(map[string]bool, len(svc.AlertsSent))
		for level, sent := range svc.AlertsSent {
			out.AlertsSent[level] = sent
		}
	}
	return out
}

// serviceLocked returns the mutable state for key, creating it on first use.
func (s *Store) serviceLocked(key string) *ServiceState {
	svc := s.doc.Services[key]
	if svc == nil {
		svc = &ServiceState{}
		s.doc.Services[key] = svc
	}
	return svc
}

// SetLastKnownCost records the raw cost observed for a service.
func (s *Store) SetLastKnownCost(ctx context.Context, key string, cost float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.serviceLocked(key).LastKnownCost = cost
	s.persistLocked(ctx)
}

// SetBaseline records a new cost baseline for a service.
func (s *Store) SetBaseline(ctx context.Context, key string, baseline float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.serviceLocked(key).Baseline = baseline
	s.persistLocked(ctx)
}

// AlertSent reports whether an alert at level was already dispatched for
// the service this billing month.
func (s *Store) AlertSent(key, level string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	svc := s.doc.Services[key]
	return svc != nil && svc.AlertsSent[level]
}

// MarkAlertSent records that an alert at level was dispatched for the
// service and reports whether this call newly set the flag. The check and
// the set happen under one lock, so of any number of concurrent callers
// exactly one gets true. The flag stands for the rest of the billing month.
func (s *Store) MarkAlertSent(ctx context.Context, key, level string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	svc := s.serviceLocked(key)
	if svc.AlertsSent[level] {
		return false
	}
	if svc.AlertsSent == nil {
		svc.AlertsSent = make(map[string]bool)
	}
	svc.AlertsSent[level] = true
	s.persistLocked(ctx)
	return true
}

// ClearAlerts drops all alert dedup flags for a service (reset semantics).
func (s *Store) ClearAlerts(ctx context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.serviceLocked(key).AlertsSent = nil
	s.persistLocked(ctx)
}

// SetDisabled records whether the governor has the service disabled and
// reports whether this call changed the flag. The compare and the set
// happen under one lock, so concurrent cycles racing to disable the same
// service see exactly one true: callers claim the disable here before
// talking to the control API. Setting disabled=false also confirms any
// pending re-enable.
func (s *Store) SetDisabled(ctx context.Context, key string, disabled bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	svc := s.serviceLocked(key)
	flipped := svc.Disabled != disabled
	svc.Disabled = disabled
	cleared := false
	if !disabled && svc.PendingEnable {
		svc.PendingEnable = false
		cleared = true
	}
	if flipped || cleared {
		s.persistLocked(ctx)
	}
	return flipped
}

// PendingEnables lists, in sorted order, the services whose rollover
// re-enable has not been confirmed by the control API yet.
func (s *Store) PendingEnables() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []string
	for key, svc := range s.doc.Services {
		if svc.PendingEnable {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// AppendAudit appends an entry to the audit trail, evicting the oldest
// entries beyond the configured limit.
func (s *Store) AppendAudit(ctx context.Context, serviceKey string, action Action, details string) AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := newAuditEntry(serviceKey, action, details, time.Now())
	s.appendAuditLocked(entry)
	s.persistLocked(ctx)
	return entry
}

func (s *Store) appendAuditLocked(entry AuditEntry) {
	s.doc.Audit = append(s.doc.Audit, entry)
	if excess := len(s.doc.Audit) - s.auditLimit; excess > 0 {
		s.doc.Audit = append(s.doc.Audit[:0:0], s.doc.Audit[excess:]...)
	}
}

// Audit returns a copy of the audit trail, oldest first.
func (s *Store) Audit() []AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]AuditEntry, len(s.doc.Audit))
	copy(out, s.doc.Audit)
	return out
}

// BillingMonth returns the stored billing-month marker ("2006-01").
func (s *Store) BillingMonth() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.BillingMonth
}

// RolloverResult describes a billing-month rollover.
type RolloverResult struct {
	// Rolled is true when a rollover happened.
	Rolled bool

	// From and To are the previous and new billing-month markers.
	From, To string

	// Cleared lists every service whose state was cleared.
	Cleared []string

	// WasDisabled lists the cleared services that were disabled by the
	// governor and should be re-enabled for the fresh month.
	WasDisabled []string
}

// CheckRollover compares the stored billing-month marker against now's UTC
// calendar month. On mismatch it clears every service's baseline, alert
// flags, last-known cost and disabled flag, stamps the new marker, appends
// a rollover audit entry, and reports which services were cleared.
// Services the governor had disabled are marked pending-enable; the flag
// stands until a confirmed control-API enable, so a failed re-enable is
// retried on later cycles instead of being forgotten.
//
// Month boundaries are evaluated in UTC; a provider whose billing timezone
// differs rolls over up to a partial day apart from its books.
func (s *Store) CheckRollover(ctx context.Context, now time.Time) RolloverResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := monthKey(now)
	if s.doc.BillingMonth == current {
		return RolloverResult{To: current}
	}

	result := RolloverResult{
		Rolled: s.doc.BillingMonth != "",
		From:   s.doc.BillingMonth,
		To:     current,
	}

	for key, svc := range s.doc.Services {
		result.Cleared = append(result.Cleared, key)
		if svc.Disabled {
			result.WasDisabled = append(result.WasDisabled, key)
			svc.PendingEnable = true
		}
		svc.Baseline = 0
		svc.LastKnownCost = 0
		svc.AlertsSent = nil
		svc.Disabled = false
	}

	s.doc.BillingMonth = current
	if result.Rolled {
		s.appendAuditLocked(newAuditEntry("", ActionRollover,
			fmt.Sprintf("billing month rolled over from %s to %s, %d services cleared",
				result.From, result.To, len(result.Cleared)),
			time.Now()))
		s.logger.Info("billing month rollover",
			"from", result.From,
			"to", result.To,
			"cleared", len(result.Cleared),
			"re_enable", len(result.WasDisabled),
		)
	}
	s.persistLocked(ctx)

	return result
}

// persistLocked writes the document through the blob backend. Callers hold
// the mutex. Failure is logged and counted but never propagated: persisted
// state is an optimization over in-memory state, not a correctness gate.
func (s *Store) persistLocked(ctx context.Context) {
	data, err := json.Marshal(&s.doc)
	if err != nil {
		// Marshalling plain structs cannot realistically fail; treated
		// the same as a write failure if it ever does.
		s.recordPersistFailure("marshal", err)
		return
	}
	if err := s.blob.Write(ctx, s.key, data); err != nil {
		s.recordPersistFailure("write", err)
	}
}

func (s *Store) recordPersistFailure(stage string, err error) {
	s.logger.Error("state persistence failed, in-memory state stands",
		"key", s.key,
		"stage", stage,
		"error", err,
	)
	if s.onPersistFailure != nil {
		s.onPersistFailure()
	}
}
