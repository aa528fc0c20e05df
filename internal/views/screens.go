package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	selectedDayStyle = lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)
	todayStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	dayStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Padding(0, 1)
	activeRowStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	gapRowStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	overlapRowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

type DayCell struct {
	Date     string
	Weekday  string
	Day      int
	Selected bool
	Today    bool
}

func RenderDateStrip(days []DayCell) string {
	cells := make([]string, 0, len(days))
	for _, d := range days {
		label := fmt.Sprintf("%s %02d", d.Weekday, d.Day)
		switch {
		case d.Selected:
			cells = append(cells, selectedDayStyle.Render(label))
		case d.Today:
			cells = append(cells, todayStyle.Render(label))
		default:
			cells = append(cells, dayStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

type TimelineRow struct {
	Kind     string
	TaskID   string
	Title    string
	Start    string
	End      string
	Duration string
	Repeat   string
	Alarm    string
	Subtasks string
	Cursor   bool
	Active   bool
}

type TimelinePanelData struct {
	Date     string
	Mode     string
	Rows     []TimelineRow
	Progress string
}

func RenderTimelinePanel(data TimelinePanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("timeline %s", data.Date))
	if data.Mode != "" && data.Mode != "all" {
		b.WriteString(fmt.Sprintf(" [%s]", data.Mode))
	}
	b.WriteString("\n")
	if len(data.Rows) == 0 {
		b.WriteString("\n(nothing planned; press n to add a task)")
		return b.String()
	}
	for _, row := range data.Rows {
		b.WriteString("\n")
		b.WriteString(renderTimelineRow(row))
		if row.Active && data.Progress != "" {
			b.WriteString("\n    " + data.Progress)
		}
	}
	return strings.TrimSpace(b.String())
}

func renderTimelineRow(row TimelineRow) string {
	switch row.Kind {
	case "gap":
		return gapRowStyle.Render(fmt.Sprintf("    %s-%s  free %s", row.Start, row.End, row.Duration))
	case "overlap":
		return overlapRowStyle.Render(fmt.Sprintf("    %s-%s  overlap %s", row.Start, row.End, row.Duration))
	}
	cursor := " "
	if row.Cursor {
		cursor = ">"
	}
	marker := " "
	if row.Active {
		marker = "*"
	}
	line := fmt.Sprintf("%s%s %s-%s  %s", cursor, marker, row.Start, row.End, row.Title)
	var tags []string
	if row.Repeat != "" && row.Repeat != "None" {
		tags = append(tags, strings.ToLower(row.Repeat))
	}
	if row.Alarm != "" {
		tags = append(tags, "alarm "+row.Alarm)
	}
	if row.Subtasks != "" {
		tags = append(tags, row.Subtasks)
	}
	if len(tags) > 0 {
		line += "  (" + strings.Join(tags, ", ") + ")"
	}
	if row.Active {
		return activeRowStyle.Render(line)
	}
	return line
}

type SubtaskLine struct {
	Text      string
	Completed bool
}

type TaskDetailData struct {
	ID       string
	Name     string
	Span     string
	Duration string
	Repeat   string
	Anchor   string
	Alarm    string
	Notes    string
	Subtasks []SubtaskLine
}

func RenderTaskDetail(data TaskDetailData) string {
	if strings.TrimSpace(data.ID) == "" {
		return "details:\n(no selection)"
	}
	var b strings.Builder
	b.WriteString("details:\n")
	b.WriteString(fmt.Sprintf("%s\n", data.Name))
	b.WriteString(fmt.Sprintf("id: %s\n", shortID(data.ID)))
	b.WriteString(fmt.Sprintf("when: %s (%s)\n", data.Span, data.Duration))
	b.WriteString(fmt.Sprintf("repeat: %s from %s\n", data.Repeat, data.Anchor))
	b.WriteString(fmt.Sprintf("alarm: %s\n", data.Alarm))
	if len(data.Subtasks) > 0 {
		b.WriteString("subtasks:\n")
		for _, s := range data.Subtasks {
			box := "[ ]"
			if s.Completed {
				box = "[x]"
			}
			b.WriteString(fmt.Sprintf("  %s %s\n", box, s.Text))
		}
	}
	if data.Notes != "" {
		b.WriteString("\n" + data.Notes)
	}
	return strings.TrimSpace(b.String())
}

type SummaryData struct {
	Tasks     int
	Scheduled string
	Free      string
	Overlaps  int
	Closing   string
}

func RenderSummaryPanel(data SummaryData) string {
	if data.Tasks == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nday:\n")
	b.WriteString(fmt.Sprintf("%d tasks, %s planned, %s free", data.Tasks, data.Scheduled, data.Free))
	if data.Overlaps > 0 {
		b.WriteString(fmt.Sprintf(", %d overlap(s)", data.Overlaps))
	}
	if data.Closing != "" {
		b.WriteString("\n" + data.Closing)
	}
	return b.String()
}

type OccurrencesData struct {
	TaskName string
	Dates    []string
}

func RenderOccurrencesPanel(data OccurrencesData) string {
	if data.TaskName == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("\nnext for %s:\n", data.TaskName))
	if len(data.Dates) == 0 {
		b.WriteString("  (no further occurrences)")
		return b.String()
	}
	for _, d := range data.Dates {
		b.WriteString("  - " + d + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

type AlarmOverlayData struct {
	Name        string
	Span        string
	Trigger     string
	Snoozed     bool
	SnoozeLabel string
}

func RenderAlarmOverlay(data AlarmOverlayData) string {
	if data.Name == "" {
		return ""
	}
	title := "ALARM"
	if data.Snoozed {
		title = "ALARM (snoozed)"
	}
	return fmt.Sprintf("%s  %s\n%s  trigger %s\n\n[d] Dismiss   [s] %s", title, data.Name, data.Span, data.Trigger, data.SnoozeLabel)
}

type HelpPanelData struct {
	Bindings []string
	HelpView string
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("\nhelp:\n%s\n%s", strings.Join(data.Bindings, "\n"), data.HelpView)
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
