package update

import (
	"fmt"

	"github.com/sandeepkv93/dayplan/internal/model"
)

// shiftDate moves the selected day by delta, staying inside the date strip.
func (m *Model) shiftDate(delta int) {
	next, err := model.AddDays(m.SelectedDate, delta)
	if err != nil {
		m.fail(err)
		return
	}
	if !m.inStrip(next) {
		m.Status = StatusBar{Text: fmt.Sprintf("%s is outside the date strip; use goto", next)}
		return
	}
	m.selectDate(next)
}

func (m *Model) selectDate(date string) {
	m.SelectedDate = date
	m.Cursor = 0
	m.recompute()
	m.Status = StatusBar{Text: fmt.Sprintf("showing %s", date)}
}

func (m Model) inStrip(date string) bool {
	first, err := model.AddDays(m.Today, -StripDaysBack)
	if err != nil {
		return false
	}
	last, err := model.AddDays(m.Today, StripDaysForward)
	if err != nil {
		return false
	}
	return date >= first && date <= last
}

// stripDates lists the dates shown in the strip, centred on the selected day
// and clamped to the window around today.
func (m Model) stripDates(width int) []string {
	if width <= 0 {
		width = 7
	}
	first, _ := model.AddDays(m.Today, -StripDaysBack)
	last, _ := model.AddDays(m.Today, StripDaysForward)
	start, err := model.AddDays(m.SelectedDate, -width/2)
	if err != nil {
		return nil
	}
	if start < first {
		start = first
	}
	if end, _ := model.AddDays(start, width-1); end > last {
		start, _ = model.AddDays(last, -(width - 1))
	}
	out := make([]string, 0, width)
	for i := 0; i < width; i++ {
		d, err := model.AddDays(start, i)
		if err != nil {
			break
		}
		out = append(out, d)
	}
	return out
}
