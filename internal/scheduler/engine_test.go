package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sandeepkv93/dayplan/internal/model"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type recordingAlerter struct {
	mu      sync.Mutex
	started []string
	stops   int
	err     error
}

func (r *recordingAlerter) Start(t model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, t.ID)
	return r.err
}

func (r *recordingAlerter) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stops++
	return nil
}

func staticSource(tasks ...model.Task) TaskSource {
	return TaskSourceFunc(func(context.Context) ([]model.Task, error) { return tasks, nil })
}

func TestEngineFiresDismissesAndRearmsNextDay(t *testing.T) {
	clock := &fakeClock{now: at(1, 8, 0, 0)}
	alerter := &recordingAlerter{}
	engine := NewEngine(staticSource(alarmTask("x", "08:00", 0)), Config{
		Interval: 10 * time.Millisecond,
		Buffer:   8,
		Enabled:  true,
		Now:      clock.Now,
		Alerter:  alerter,
	})
	engine.Start(context.Background())
	defer engine.Stop()

	fired := waitEvent(t, engine.C(), time.Second)
	if fired.Kind != EventFired || fired.TaskID != "x" {
		t.Fatalf("unexpected first event: %+v", fired)
	}
	if !engine.State().IsRinging() {
		t.Fatal("expected ringing state")
	}

	if err := engine.Dismiss(); err != nil {
		t.Fatalf("dismiss: %v", err)
	}
	cleared := waitEvent(t, engine.C(), time.Second)
	if cleared.Kind != EventCleared {
		t.Fatalf("expected cleared event, got %+v", cleared)
	}

	expectNoEvent(t, engine.C(), 80*time.Millisecond)

	clock.Set(at(2, 8, 0, 0))
	again := waitEvent(t, engine.C(), time.Second)
	if again.Kind != EventFired || again.Date != "2024-01-02" {
		t.Fatalf("expected next-day fire, got %+v", again)
	}

	alerter.mu.Lock()
	defer alerter.mu.Unlock()
	if len(alerter.started) != 2 || alerter.stops != 1 {
		t.Fatalf("unexpected alerter calls: started=%v stops=%d", alerter.started, alerter.stops)
	}
}

func TestEngineAlertFailureStillRings(t *testing.T) {
	clock := &fakeClock{now: at(1, 8, 0, 0)}
	engine := NewEngine(staticSource(alarmTask("x", "08:00", 0)), Config{
		Interval: 10 * time.Millisecond,
		Buffer:   4,
		Enabled:  true,
		Now:      clock.Now,
		Alerter:  &recordingAlerter{err: errors.New("audio blocked")},
	})
	engine.Start(context.Background())
	defer engine.Stop()

	ev := waitEvent(t, engine.C(), time.Second)
	if ev.Kind != EventFired || engine.State().Ringing != "x" {
		t.Fatalf("expected ringing despite alert failure, got %+v", ev)
	}
}

func TestEngineDisabledSwitch(t *testing.T) {
	clock := &fakeClock{now: at(1, 8, 0, 0)}
	engine := NewEngine(staticSource(alarmTask("x", "08:00", 0)), Config{
		Interval: 10 * time.Millisecond,
		Buffer:   4,
		Enabled:  false,
		Now:      clock.Now,
	})
	engine.Start(context.Background())
	defer engine.Stop()

	expectNoEvent(t, engine.C(), 60*time.Millisecond)

	if err := engine.SetEnabled(true); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if err := engine.Poke(); err != nil {
		t.Fatalf("poke: %v", err)
	}
	if ev := waitEvent(t, engine.C(), time.Second); ev.Kind != EventFired {
		t.Fatalf("expected fire after enabling, got %+v", ev)
	}
}

func TestEngineCountsDroppedEvents(t *testing.T) {
	clock := &fakeClock{now: at(1, 8, 0, 0)}
	engine := NewEngine(staticSource(alarmTask("x", "08:00", 0)), Config{
		Interval: 10 * time.Millisecond,
		Buffer:   1,
		Enabled:  true,
		Now:      clock.Now,
	})
	engine.Start(context.Background())
	defer engine.Stop()

	if err := engine.Dismiss(); err != nil {
		t.Fatalf("dismiss: %v", err)
	}
	deadline := time.Now().Add(time.Second)
	for engine.Dropped() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("expected the cleared event to be dropped with a full buffer")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestEngineSourceErrorSkipsTick(t *testing.T) {
	calls := 0
	var mu sync.Mutex
	source := TaskSourceFunc(func(context.Context) ([]model.Task, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return nil, errors.New("db locked")
	})
	engine := NewEngine(source, Config{Interval: 5 * time.Millisecond, Enabled: true})
	engine.Start(context.Background())
	time.Sleep(40 * time.Millisecond)
	engine.Stop()

	mu.Lock()
	defer mu.Unlock()
	if calls < 2 {
		t.Fatalf("expected repeated polling despite errors, got %d calls", calls)
	}
}

func TestEngineStopIsIdempotentAndRejectsRequests(t *testing.T) {
	engine := NewEngine(staticSource(), Config{Interval: time.Second})
	engine.Start(context.Background())
	engine.Stop()
	engine.Stop()

	if err := engine.Dismiss(); !errors.Is(err, ErrEngineStopped) {
		t.Fatalf("expected ErrEngineStopped, got %v", err)
	}
	if _, ok := <-engine.C(); ok {
		t.Fatal("expected closed event channel")
	}
}

func TestEngineStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	engine := NewEngine(staticSource(), Config{Interval: time.Second})
	engine.Start(ctx)
	cancel()

	select {
	case _, ok := <-engine.C():
		if ok {
			t.Fatal("unexpected event")
		}
	case <-time.After(time.Second):
		t.Fatal("engine did not stop on context cancel")
	}
}

func TestEngineRejectsRequestsAfterContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	engine := NewEngine(staticSource(), Config{Interval: time.Second})
	engine.Start(ctx)
	cancel()
	for range engine.C() {
	}

	done := make(chan error, 1)
	go func() {
		for i := 0; i < 20; i++ {
			if err := engine.Dismiss(); !errors.Is(err, ErrEngineStopped) {
				done <- err
				return
			}
		}
		done <- nil
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected ErrEngineStopped, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("requests blocked after the context was cancelled")
	}
	engine.Stop()
}

func waitEvent(t *testing.T, ch <-chan Event, timeout time.Duration) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for event")
		return Event{}
	}
}

func expectNoEvent(t *testing.T, ch <-chan Event, wait time.Duration) {
	t.Helper()
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event: %+v", ev)
	case <-time.After(wait):
	}
}
