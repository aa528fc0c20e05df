package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/dayplan/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	var plain []string
	for _, kb := range m.bindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		Bindings: plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
	})
}

func (m Model) bindings() []KeyBinding {
	return []KeyBinding{
		{Key: "j/k", Action: "move selection"},
		{Key: m.Keys.PrevDay + "/" + m.Keys.NextDay, Action: "previous/next day"},
		{Key: m.Keys.Today, Action: "jump to today"},
		{Key: m.Keys.NewTask, Action: "add task in next free slot"},
		{Key: m.Keys.Alarm, Action: "toggle alarm for selected task"},
		{Key: m.Keys.AlarmSwitch, Action: "toggle all alarms"},
		{Key: m.Keys.Subtask, Action: "complete next subtask"},
		{Key: m.Keys.Occurrences, Action: "show upcoming occurrences"},
		{Key: m.Keys.Dismiss, Action: "dismiss ringing alarm"},
		{Key: m.Keys.Snooze, Action: "snooze ringing alarm"},
		{Key: "/", Action: "open command palette"},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: m.Keys.Quit, Action: "quit app"},
	}
}

func (m Model) helpBindings() []key.Binding {
	all := m.bindings()
	out := make([]key.Binding, 0, len(all))
	for _, kb := range all {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
