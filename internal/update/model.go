package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/sandeepkv93/dayplan/internal/commands"
	"github.com/sandeepkv93/dayplan/internal/logger"
	"github.com/sandeepkv93/dayplan/internal/model"
	"github.com/sandeepkv93/dayplan/internal/scheduler"
	"github.com/sandeepkv93/dayplan/internal/storage"
	"github.com/sandeepkv93/dayplan/internal/timeline"
)

// Store is the persistence the TUI needs: the repository plus a full task
// snapshot for the alarm engine.
type Store interface {
	storage.Repository
	Tasks(ctx context.Context) ([]model.Task, error)
}

// Date strip window around today.
const (
	StripDaysBack    = 7
	StripDaysForward = 21
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	PrevDay     string
	NextDay     string
	Today       string
	Alarm       string
	AlarmSwitch string
	Subtask     string
	Dismiss     string
	Snooze      string
	NewTask     string
	Occurrences string
	Help        string
	Quit        string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

type Model struct {
	Today         string
	SelectedDate  string
	Now           time.Time
	Tasks         []model.Task
	DayTasks      []model.Task
	Items         []timeline.Item
	Summary       timeline.Summary
	ShowMode      commands.ShowSubject
	Cursor        int
	ActiveID      string
	ShowNext      bool
	Alarm         scheduler.State
	AlarmsEnabled bool
	AlarmLog      []scheduler.Event
	Scheduler     *scheduler.Engine
	Palette       CommandPaletteState
	HelpVisible   bool
	Notifications []Notification
	Status        StatusBar
	Keys          GlobalKeyMap
	Quitting      bool
	LastError     error

	store  Store
	cfg    RuntimeConfig
	log    *logger.Logger
	clock  func() time.Time
	width  int
	height int

	commandInput  textinput.Model
	helpModel     help.Model
	activeBar     progress.Model
	notesViewport viewport.Model
}

type Option func(*Model)

func WithScheduler(engine *scheduler.Engine) Option {
	return func(m *Model) { m.Scheduler = engine }
}

func WithLogger(l *logger.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.log = l
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.clock = now
		}
	}
}

func NewModel(store Store, cfg RuntimeConfig, opts ...Option) Model {
	m := Model{
		ShowMode:      commands.ShowAll,
		AlarmsEnabled: true,
		store:         store,
		cfg:           cfg,
		log:           logger.Discard(),
		clock:         time.Now,
		Keys: GlobalKeyMap{
			PrevDay:     "h",
			NextDay:     "l",
			Today:       "t",
			Alarm:       "a",
			AlarmSwitch: "A",
			Subtask:     "x",
			Dismiss:     "d",
			Snooze:      "s",
			NewTask:     "n",
			Occurrences: "o",
			Help:        "?",
			Quit:        "q",
		},
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.Now = m.clock()
	m.Today = model.DateString(m.Now)
	m.SelectedDate = m.Today
	m.initBubbleComponents()
	if store != nil {
		if enabled, err := storage.AlarmsEnabled(context.Background(), store); err == nil {
			m.AlarmsEnabled = enabled
		}
	}
	m.reload()
	return m
}
