package update

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/dayplan/internal/commands"
	"github.com/sandeepkv93/dayplan/internal/model"
	"github.com/sandeepkv93/dayplan/internal/storage"
	"github.com/sandeepkv93/dayplan/internal/timeline"
)

func (m Model) openPalette(prefill string) Model {
	m.Palette.Active = true
	m.Palette.Input = prefill
	m.commandInput.SetValue(prefill)
	m.commandInput.CursorEnd()
	m.commandInput.Focus()
	m.Status = StatusBar{Text: "command palette active"}
	return m
}

func (m Model) closePalette() Model {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
	return m
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m = m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		m = m.executePaletteCommand()
	default:
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		_ = cmd
		m.Palette.Input = m.commandInput.Value()
	}
	return m
}

// suggestNewTask opens the palette with an add command for the next free
// slot on the selected day.
func (m Model) suggestNewTask() Model {
	start, end := timeline.SuggestSlot(m.Tasks, m.SelectedDate, m.Now)
	return m.openPalette(fmt.Sprintf("add New task %s-%s", start, end))
}

func (m Model) executePaletteCommand() Model {
	raw := strings.TrimSpace(m.Palette.Input)
	m = m.closePalette()
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}

	ctx := context.Background()
	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			task := model.Task{
				ID:               storage.NewID(),
				Name:             a.Name,
				StartTime:        a.Start,
				EndTime:          a.End,
				Repeat:           a.Repeat,
				CreatedAt:        m.SelectedDate,
				AlarmEnabled:     a.AlarmEnabled,
				AlarmLeadMinutes: a.LeadMinutes,
			}
			clashes, err := timeline.Conflicts(m.Tasks, task, m.SelectedDate)
			if err != nil {
				return commands.Result{}, err
			}
			if err := m.store.CreateTask(ctx, task); err != nil {
				return commands.Result{}, err
			}
			m.reload()
			m.pokeScheduler()
			msg := fmt.Sprintf("added %s %s-%s", task.Name, task.StartTime, task.EndTime)
			if len(clashes) > 0 {
				names := make([]string, 0, len(clashes))
				for _, c := range clashes {
					names = append(names, c.Name)
				}
				msg += " (overlaps " + strings.Join(names, ", ") + ")"
			}
			return commands.Result{Message: msg}, nil
		},
		Remove: func(r commands.RemoveArgs) (commands.Result, error) {
			task, err := m.store.FindTask(ctx, r.Target)
			if err != nil {
				return commands.Result{}, lookupError(r.Target, err)
			}
			if err := m.store.DeleteTask(ctx, task.ID); err != nil {
				return commands.Result{}, err
			}
			m.reload()
			return commands.Result{Message: fmt.Sprintf("removed %s", task.Name)}, nil
		},
		Alarm: func(a commands.AlarmArgs) (commands.Result, error) {
			task, err := m.store.FindTask(ctx, a.Target)
			if err != nil {
				return commands.Result{}, lookupError(a.Target, err)
			}
			switch a.Action {
			case commands.AlarmOn:
				err = m.setTaskAlarm(task, true, task.AlarmLeadMinutes)
			case commands.AlarmOff:
				err = m.setTaskAlarm(task, false, task.AlarmLeadMinutes)
			case commands.AlarmLead:
				err = m.setTaskAlarm(task, true, a.LeadMinutes)
			}
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: m.Status.Text}, nil
		},
		Goto: func(g commands.GotoArgs) (commands.Result, error) {
			target := g.Date
			switch {
			case g.Today:
				target = m.Today
			case target == "":
				next, err := model.AddDays(m.SelectedDate, g.Offset)
				if err != nil {
					return commands.Result{}, err
				}
				target = next
			}
			m.selectDate(target)
			return commands.Result{Message: fmt.Sprintf("showing %s", target)}, nil
		},
		Snooze: func(s commands.SnoozeArgs) (commands.Result, error) {
			d, err := m.snoozeAlarm(s.Minutes)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("snoozed for %s", d)}, nil
		},
		Dismiss: func() (commands.Result, error) {
			if err := m.dismissAlarm(); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: "alarm dismissed"}, nil
		},
		Show: func(s commands.ShowArgs) (commands.Result, error) {
			switch s.Subject {
			case commands.ShowNext:
				m.ShowNext = !m.ShowNext
			default:
				m.ShowMode = s.Subject
				m.recompute()
			}
			return commands.Result{Message: fmt.Sprintf("show %s", s.Subject)}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Command Failed", err.Error(), "error")
		m.log.Warn("palette command failed", "input", raw, "error", err)
		return m
	}
	m.Status = StatusBar{Text: res.Message}
	m.notify("Command", res.Message, "info")
	return m
}

func lookupError(target string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no task matches %q", target)}
	case errors.Is(err, storage.ErrAmbiguous):
		return &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("%q matches more than one task", target)}
	default:
		return err
	}
}
