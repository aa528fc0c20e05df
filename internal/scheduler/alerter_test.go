package scheduler

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sandeepkv93/dayplan/internal/model"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestBellAlerterLoopsUntilStopped(t *testing.T) {
	out := &lockedBuffer{}
	bell := NewBellAlerter(out, 5*time.Millisecond)
	if err := bell.Start(model.Task{ID: "x"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := bell.Start(model.Task{ID: "x"}); err != nil {
		t.Fatalf("second start: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if err := bell.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	rung := strings.Count(out.String(), "\a")
	if rung < 2 {
		t.Fatalf("expected repeated bell, got %d", rung)
	}
	time.Sleep(20 * time.Millisecond)
	if strings.Count(out.String(), "\a") != rung {
		t.Fatal("bell kept ringing after stop")
	}
	if err := bell.Stop(); err != nil {
		t.Fatalf("stop when idle: %v", err)
	}
}

func TestNotifyAlerterBuildsCommand(t *testing.T) {
	var got []string
	n := NotifyAlerter{run: func(name string, args ...string) error {
		got = append([]string{name}, args...)
		return nil
	}}
	if err := n.Start(model.Task{Name: "Gym", StartTime: "12:00", EndTime: "13:00"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(got) > 0 && !strings.Contains(strings.Join(got, " "), "Gym 12:00-13:00") {
		t.Fatalf("unexpected command: %v", got)
	}
}

func TestEscapeAppleScript(t *testing.T) {
	cases := map[string]string{
		`Gym`:      `Gym`,
		`say "hi"`: `say \"hi\"`,
		`C:\temp\`: `C:\\temp\\`,
		`a\"b`:     `a\\\"b`,
	}
	for in, want := range cases {
		if got := escapeAppleScript(in); got != want {
			t.Fatalf("escape %q = %q, want %q", in, got, want)
		}
	}
}

func TestMultiAlerterJoinsErrors(t *testing.T) {
	bad := &recordingAlerter{err: errors.New("no audio device")}
	good := &recordingAlerter{}
	m := MultiAlerter{bad, good}
	if err := m.Start(model.Task{ID: "x"}); err == nil || !strings.Contains(err.Error(), "no audio device") {
		t.Fatalf("expected joined error, got %v", err)
	}
	if len(good.started) != 1 {
		t.Fatal("healthy alerter must still be started")
	}
	if err := m.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
}
