package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestEngineStressConcurrentRequests(t *testing.T) {
	clock := &fakeClock{now: at(1, 8, 0, 0)}
	engine := NewEngine(staticSource(alarmTask("x", "08:00", 0), alarmTask("y", "09:00", 0)), Config{
		Interval: time.Millisecond,
		Buffer:   4096,
		Enabled:  true,
		Now:      clock.Now,
	})
	engine.Start(context.Background())

	const workers = 8
	const perWorker = 200
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				var err error
				switch (w + i) % 4 {
				case 0:
					err = engine.Snooze(0)
				case 1:
					err = engine.Dismiss()
				case 2:
					err = engine.Poke()
				default:
					err = engine.SetEnabled(true)
				}
				if err != nil {
					t.Errorf("request failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
	engine.Stop()

	ringing := ""
	fired := 0
	for ev := range engine.C() {
		switch ev.Kind {
		case EventFired:
			if ringing != "" {
				t.Fatalf("%s fired while %s was ringing", ev.TaskID, ringing)
			}
			if ev.TaskID != "x" {
				t.Fatalf("unexpected task fired: %s", ev.TaskID)
			}
			ringing = ev.TaskID
			fired++
		case EventCleared:
			if ringing != ev.TaskID {
				t.Fatalf("cleared %s while %q was ringing", ev.TaskID, ringing)
			}
			ringing = ""
		}
	}
	if fired == 0 {
		t.Fatal("expected at least one firing")
	}
	if engine.Dropped() != 0 {
		t.Fatalf("expected zero drops with a large buffer, got=%d", engine.Dropped())
	}
	if got := engine.State().IsRinging(); got != (ringing != "") {
		t.Fatalf("final state ringing=%v, events say %q", got, ringing)
	}
}
