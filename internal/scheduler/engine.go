package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sandeepkv93/dayplan/internal/logger"
	"github.com/sandeepkv93/dayplan/internal/model"
)

// DefaultPollInterval is how often the engine re-evaluates alarms. Trigger
// comparison is minute-resolution, so anything under a minute is enough.
const DefaultPollInterval = 15 * time.Second

var ErrEngineStopped = errors.New("scheduler: engine stopped")

// TaskSource supplies the latest task snapshot on every tick.
type TaskSource interface {
	Tasks(ctx context.Context) ([]model.Task, error)
}

type TaskSourceFunc func(ctx context.Context) ([]model.Task, error)

func (f TaskSourceFunc) Tasks(ctx context.Context) ([]model.Task, error) { return f(ctx) }

type Config struct {
	Interval time.Duration
	Buffer   int
	Enabled  bool
	Now      func() time.Time
	Alerter  Alerter
	Logger   *logger.Logger
}

type requestKind int

const (
	reqDismiss requestKind = iota
	reqSnooze
	reqEnable
	reqTick
)

type request struct {
	kind    requestKind
	snooze  time.Duration
	enabled bool
}

// Engine polls a TaskSource and drives the alarm State on a single goroutine.
// Dismiss, Snooze and SetEnabled are requests served by that goroutine, so
// the ringing transition and the de-duplication marker always change
// together.
type Engine struct {
	mu       sync.Mutex
	source   TaskSource
	interval time.Duration
	now      func() time.Time
	alerter  Alerter
	log      *logger.Logger
	enabled  bool
	state    State
	snapshot State
	out      chan Event
	requests chan request
	stopCh   chan struct{}
	doneCh   chan struct{}
	started  bool
	stopped  bool
	dropped  uint64
}

func NewEngine(source TaskSource, cfg Config) *Engine {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 1
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Alerter == nil {
		cfg.Alerter = NopAlerter{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}
	return &Engine{
		source:   source,
		interval: cfg.Interval,
		now:      cfg.Now,
		alerter:  cfg.Alerter,
		log:      cfg.Logger,
		enabled:  cfg.Enabled,
		out:      make(chan Event, cfg.Buffer),
		requests: make(chan request, 8),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

func (e *Engine) C() <-chan Event {
	return e.out
}

func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	go e.loop(ctx)
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

func (e *Engine) Dismiss() error {
	return e.send(request{kind: reqDismiss})
}

func (e *Engine) Snooze(d time.Duration) error {
	return e.send(request{kind: reqSnooze, snooze: d})
}

// SetEnabled flips the global alarm switch.
func (e *Engine) SetEnabled(enabled bool) error {
	return e.send(request{kind: reqEnable, enabled: enabled})
}

// Poke asks for an immediate evaluation, e.g. after tasks were edited.
func (e *Engine) Poke() error {
	return e.send(request{kind: reqTick})
}

// State returns the alarm state as of the last processed tick or request.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot
}

func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

func (e *Engine) send(r request) error {
	e.mu.Lock()
	stopped := e.stopped
	e.mu.Unlock()
	if stopped {
		return ErrEngineStopped
	}
	// The loop may already have exited through its context.
	select {
	case <-e.doneCh:
		return ErrEngineStopped
	default:
	}
	select {
	case e.requests <- r:
		return nil
	case <-e.stopCh:
		return ErrEngineStopped
	case <-e.doneCh:
		return ErrEngineStopped
	}
}

func (e *Engine) loop(ctx context.Context) {
	defer close(e.doneCh)
	defer close(e.out)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.tick(ctx)
	for {
		select {
		case <-ticker.C:
			e.tick(ctx)
		case r := <-e.requests:
			e.handle(ctx, r)
		case <-ctx.Done():
			e.shutdown()
			return
		case <-e.stopCh:
			e.shutdown()
			return
		}
	}
}

func (e *Engine) tick(ctx context.Context) {
	tasks, err := e.source.Tasks(ctx)
	if err != nil {
		e.log.WarnContext(ctx, "alarm poll skipped", "error", err)
		return
	}
	next, events := Evaluate(tasks, e.now(), e.state, Options{Enabled: e.enabled})
	e.commit(next)
	for _, ev := range events {
		e.log.InfoContext(ctx, "alarm fired", "task", ev.TaskID, "trigger", ev.Trigger, "date", ev.Date, "snoozed", ev.Snoozed)
		if err := e.alerter.Start(findTask(tasks, ev.TaskID)); err != nil {
			e.log.WarnContext(ctx, "alarm alert failed", "task", ev.TaskID, "error", err)
		}
		e.emit(ev)
	}
}

func (e *Engine) handle(ctx context.Context, r request) {
	var events []Event
	next := e.state
	switch r.kind {
	case reqDismiss:
		next, events = Dismiss(e.state, e.now())
	case reqSnooze:
		next, events = SnoozeFor(e.state, e.now(), r.snooze)
	case reqEnable:
		e.enabled = r.enabled
		e.log.InfoContext(ctx, "alarms switched", "enabled", r.enabled)
		if !r.enabled {
			next, events = Dismiss(e.state, e.now())
			next.Pending = nil
		}
	case reqTick:
		e.tick(ctx)
		return
	}
	e.commit(next)
	for _, ev := range events {
		e.stopAlert(ctx)
		e.log.InfoContext(ctx, "alarm cleared", "task", ev.TaskID)
		e.emit(ev)
	}
}

func (e *Engine) commit(st State) {
	e.state = st
	e.mu.Lock()
	e.snapshot = st
	e.mu.Unlock()
}

func (e *Engine) emit(ev Event) {
	select {
	case e.out <- ev:
	default:
		atomic.AddUint64(&e.dropped, 1)
		e.log.Warn("alarm event dropped", "task", ev.TaskID, "kind", string(ev.Kind))
	}
}

func (e *Engine) stopAlert(ctx context.Context) {
	if err := e.alerter.Stop(); err != nil {
		e.log.WarnContext(ctx, "alarm alert stop failed", "error", err)
	}
}

func (e *Engine) shutdown() {
	if e.state.IsRinging() {
		e.stopAlert(context.Background())
	}
}

func findTask(tasks []model.Task, id string) model.Task {
	for _, t := range tasks {
		if t.ID == id {
			return t
		}
	}
	return model.Task{ID: id}
}
