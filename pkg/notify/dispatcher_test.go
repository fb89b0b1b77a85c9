package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"cloudspend-hq/warden/pkg/state"
)

type memoryBlob struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (b *memoryBlob) Read(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.data[key]
	if !ok {
		return nil, state.ErrNotFound
	}
	return data, nil
}

func (b *memoryBlob) Write(_ context.Context, key string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = data
	return nil
}

type fakeChannel struct {
	name  string
	err   error
	sent  []Alert
	mu    sync.Mutex
	calls int
}

func (c *fakeChannel) Name() string { return c.name }

func (c *fakeChannel) Send(_ context.Context, alert Alert) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, alert)
	return nil
}

func newTestStore(t *testing.T) *state.Store {
	t.Helper()
	s, err := state.NewStore(context.Background(), &memoryBlob{data: make(map[string][]byte)}, "k", 200, nil)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return s
}

func testAlert(level Level) Alert {
	return Alert{
		Level:         level,
		ServiceKey:    "vector_db",
		ResourceID:    "vectordb.example.com",
		Budget:        100,
		EffectiveCost: 85,
		UsagePct:      85,
		Action:        "warning only",
		Timestamp:     time.Now(),
	}
}

func TestDispatcher_SendsOncePerMonth(t *testing.T) {
	ctx := context.Background()
	ch := &fakeChannel{name: "email"}
	d := NewDispatcher(newTestStore(t), []Channel{ch}, nil)

	if !d.Notify(ctx, testAlert(LevelWarning)) {
		t.Fatal("first alert should be dispatched")
	}
	if d.Notify(ctx, testAlert(LevelWarning)) {
		t.Fatal("second alert at same level should be suppressed")
	}
	if len(ch.sent) != 1 {
		t.Errorf("expected exactly 1 delivery, got %d", len(ch.sent))
	}
}

func TestDispatcher_LevelsIndependent(t *testing.T) {
	ctx := context.Background()
	ch := &fakeChannel{name: "email"}
	d := NewDispatcher(newTestStore(t), []Channel{ch}, nil)

	d.Notify(ctx, testAlert(LevelWarning))
	if !d.Notify(ctx, testAlert(LevelCritical)) {
		t.Fatal("CRITICAL should not be suppressed by an earlier WARNING")
	}
	if len(ch.sent) != 2 {
		t.Errorf("expected 2 deliveries, got %d", len(ch.sent))
	}
}

func TestDispatcher_ChannelsIndependent(t *testing.T) {
	ctx := context.Background()
	failing := &fakeChannel{name: "email", err: errors.New("smtp down")}
	working := &fakeChannel{name: "event"}

	var results []string
	d := NewDispatcher(newTestStore(t), []Channel{failing, working}, nil,
		WithDeliveryHook(func(level, channel, result string) {
			results = append(results, channel+":"+result)
		}))

	if !d.Notify(ctx, testAlert(LevelCritical)) {
		t.Fatal("alert should be dispatched")
	}
	if len(working.sent) != 1 {
		t.Error("working channel should still deliver when the other fails")
	}
	if len(results) != 2 || results[0] != "email:failed" || results[1] != "event:sent" {
		t.Errorf("unexpected delivery results: %v", results)
	}
}

func TestDispatcher_FailedDeliveryStillCountsAsSent(t *testing.T) {
	ctx := context.Background()
	failing := &fakeChannel{name: "email", err: errors.New("smtp down")}
	d := NewDispatcher(newTestStore(t), []Channel{failing}, nil)

	if !d.Notify(ctx, testAlert(LevelWarning)) {
		t.Fatal("alert should be dispatched")
	}
	// No alert storm: the level is burned for the month even though
	// delivery failed.
	if d.Notify(ctx, testAlert(LevelWarning)) {
		t.Fatal("failed delivery must not re-arm the alert")
	}
	if failing.calls != 1 {
		t.Errorf("expected 1 delivery attempt, got %d", failing.calls)
	}
}

func TestDispatcher_ConcurrentNotifySendsOnce(t *testing.T) {
	ctx := context.Background()
	ch := &fakeChannel{name: "email"}
	d := NewDispatcher(newTestStore(t), []Channel{ch}, nil)

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		dispatched int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if d.Notify(ctx, testAlert(LevelCritical)) {
				mu.Lock()
				dispatched++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if dispatched != 1 {
		t.Errorf("expected exactly 1 winning dispatch, got %d", dispatched)
	}
	if ch.calls != 1 {
		t.Errorf("expected exactly 1 delivery attempt, got %d", ch.calls)
	}
}

func TestDispatcher_NoChannels(t *testing.T) {
	d := NewDispatcher(newTestStore(t), nil, nil)
	if !d.Notify(context.Background(), testAlert(LevelWarning)) {
		t.Fatal("dedup tracking should work with no channels configured")
	}
}

func TestBuildMessage(t *testing.T) {
	msg := buildMessage("warden@example.com", []string{"ops@example.com", "fin@example.com"}, testAlert(LevelCritical))

	for _, want := range []string{
		"Subject: [CRITICAL] Budget alert for vector_db",
		"To: ops@example.com, fin@example.com",
		"Content-Type: text/html",
		"85.0%",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}
