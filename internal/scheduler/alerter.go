package scheduler

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/sandeepkv93/dayplan/internal/model"
)

// Alerter presents a ringing alarm. Failures are reported but never block the
// state transition; the alarm state is authoritative, the sound is not.
type Alerter interface {
	Start(task model.Task) error
	Stop() error
}

type NopAlerter struct{}

func (NopAlerter) Start(model.Task) error { return nil }
func (NopAlerter) Stop() error            { return nil }

// BellAlerter rings the terminal bell on w every period until stopped.
type BellAlerter struct {
	w      io.Writer
	period time.Duration

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func NewBellAlerter(w io.Writer, period time.Duration) *BellAlerter {
	if period <= 0 {
		period = 2 * time.Second
	}
	return &BellAlerter{w: w, period: period}
}

func (b *BellAlerter) Start(model.Task) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stop != nil {
		return nil
	}
	if _, err := io.WriteString(b.w, "\a"); err != nil {
		return fmt.Errorf("ring bell: %w", err)
	}
	b.stop = make(chan struct{})
	b.done = make(chan struct{})
	go b.ring(b.stop, b.done)
	return nil
}

func (b *BellAlerter) Stop() error {
	b.mu.Lock()
	stop, done := b.stop, b.done
	b.stop, b.done = nil, nil
	b.mu.Unlock()
	if stop == nil {
		return nil
	}
	close(stop)
	<-done
	return nil
}

func (b *BellAlerter) ring(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	t := time.NewTicker(b.period)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			_, _ = io.WriteString(b.w, "\a")
		}
	}
}

// NotifyAlerter raises a desktop notification through notify-send or
// osascript. Stop is a no-op; the notification daemon owns dismissal.
type NotifyAlerter struct {
	run func(name string, args ...string) error
}

func NewNotifyAlerter() NotifyAlerter {
	return NotifyAlerter{run: func(name string, args ...string) error {
		return exec.Command(name, args...).Run()
	}}
}

func (n NotifyAlerter) Start(task model.Task) error {
	title := "dayplan alarm"
	body := strings.TrimSpace(fmt.Sprintf("%s %s-%s", task.Name, task.StartTime, task.EndTime))
	switch runtime.GOOS {
	case "linux":
		return n.run("notify-send", "-u", "critical", title, body)
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s" sound name "Glass"`, escapeAppleScript(body), escapeAppleScript(title))
		return n.run("osascript", "-e", script)
	default:
		return nil
	}
}

func (NotifyAlerter) Stop() error { return nil }

// MultiAlerter fans out to every alerter and joins their errors.
type MultiAlerter []Alerter

func (m MultiAlerter) Start(task model.Task) error {
	var errs []error
	for _, a := range m {
		if err := a.Start(task); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiAlerter) Stop() error {
	var errs []error
	for _, a := range m {
		if err := a.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
