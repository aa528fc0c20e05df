package update

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
)

func (m *Model) initBubbleComponents() {
	m.commandInput = textinput.New()
	m.commandInput.Prompt = "command: /"
	m.commandInput.Placeholder = "add Gym 18:00-19:00 daily lead:10"
	m.commandInput.CharLimit = 200

	m.helpModel = help.New()
	m.helpModel.ShowAll = true

	m.activeBar = progress.New(progress.WithDefaultGradient(), progress.WithWidth(30), progress.WithoutPercentage())

	m.notesViewport = viewport.New(50, 8)
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	pane := width/2 - 8
	if pane < 20 {
		pane = 20
	}
	m.notesViewport.Width = pane
	m.activeBar.Width = pane - 4
	m.commandInput.Width = pane
	m.syncNotes()
}

// fail records err as the latest error and surfaces it on the status line.
func (m *Model) fail(err error) {
	if err == nil {
		return
	}
	m.LastError = err
	m.Status = StatusBar{Text: err.Error(), IsError: true}
	m.notify("Error", err.Error(), "error")
	if m.log != nil {
		m.log.Error("tui error", "error", err)
	}
}
