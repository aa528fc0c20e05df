package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandeepkv93/dayplan/internal/model"
)

type Type string

const (
	TypeAdd     Type = "add"
	TypeRemove  Type = "rm"
	TypeAlarm   Type = "alarm"
	TypeGoto    Type = "goto"
	TypeSnooze  Type = "snooze"
	TypeDismiss Type = "dismiss"
	TypeShow    Type = "show"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalid(format string, args ...any) *CommandError {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

type AddArgs struct {
	Name         string
	Start        string
	End          string
	Repeat       model.Repeat
	AlarmEnabled bool
	LeadMinutes  int
}

type RemoveArgs struct {
	Target string
}

type AlarmAction string

const (
	AlarmOn   AlarmAction = "on"
	AlarmOff  AlarmAction = "off"
	AlarmLead AlarmAction = "lead"
)

type AlarmArgs struct {
	Target      string
	Action      AlarmAction
	LeadMinutes int
}

// GotoArgs selects a day: Today, a relative Offset in days, or an absolute
// Date. Exactly one is set.
type GotoArgs struct {
	Today  bool
	Offset int
	Date   string
}

// SnoozeArgs carries the snooze length; zero means the configured default.
type SnoozeArgs struct {
	Minutes int
}

type ShowSubject string

const (
	ShowGaps ShowSubject = "gaps"
	ShowAll  ShowSubject = "all"
	ShowNext ShowSubject = "next"
)

type ShowArgs struct {
	Subject ShowSubject
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Remove *RemoveArgs
	Alarm  *AlarmArgs
	Goto   *GotoArgs
	Snooze *SnoozeArgs
	Show   *ShowArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeRemove, "remove", "delete":
		return parseRemove(input, args)
	case TypeAlarm:
		return parseAlarm(input, args)
	case TypeGoto, "go":
		return parseGoto(input, args)
	case TypeSnooze:
		return parseSnooze(input, args)
	case TypeDismiss, "stop":
		if len(args) > 0 {
			return Command{}, invalid("dismiss takes no arguments")
		}
		return Command{Type: TypeDismiss, Raw: input}, nil
	case TypeShow:
		return parseShow(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

// parseAdd reads `<name...> <HH:mm>-<HH:mm> [repeat] [lead:<min>|alarm]`.
func parseAdd(raw string, args []string) (Command, error) {
	span := -1
	for i, arg := range args {
		if _, _, ok := splitRange(arg); ok {
			span = i
			break
		}
	}
	if span < 0 {
		return Command{}, invalid("add requires a time range like 09:00-10:30")
	}
	name := strings.TrimSpace(strings.Join(args[:span], " "))
	if name == "" {
		return Command{}, invalid("add requires a name")
	}
	rawStart, rawEnd, _ := splitRange(args[span])
	start, err := model.NormalizeClock(rawStart)
	if err != nil {
		return Command{}, invalid("bad start time %q", rawStart)
	}
	end, err := model.NormalizeClock(rawEnd)
	if err != nil {
		return Command{}, invalid("bad end time %q", rawEnd)
	}

	out := AddArgs{Name: name, Start: start, End: end, Repeat: model.RepeatNone}
	for _, arg := range args[span+1:] {
		lower := strings.ToLower(arg)
		switch {
		case lower == "alarm":
			out.AlarmEnabled = true
		case strings.HasPrefix(lower, "lead:"):
			lead, err := strconv.Atoi(strings.TrimPrefix(lower, "lead:"))
			if err != nil || lead < 0 {
				return Command{}, invalid("lead must be a non-negative number of minutes")
			}
			out.AlarmEnabled = true
			out.LeadMinutes = lead
		default:
			repeat, err := model.ParseRepeat(lower)
			if err != nil {
				return Command{}, invalid("unknown repeat %q", arg)
			}
			out.Repeat = repeat
		}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &out}, nil
}

func splitRange(arg string) (string, string, bool) {
	start, end, ok := strings.Cut(arg, "-")
	if !ok || !strings.Contains(start, ":") || !strings.Contains(end, ":") {
		return "", "", false
	}
	return start, end, true
}

func parseRemove(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("rm requires exactly one task id")
	}
	return Command{Type: TypeRemove, Raw: raw, Remove: &RemoveArgs{Target: args[0]}}, nil
}

func parseAlarm(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, invalid("alarm requires a task id and on, off or lead <min>")
	}
	out := AlarmArgs{Target: args[0], Action: AlarmAction(strings.ToLower(args[1]))}
	switch out.Action {
	case AlarmOn, AlarmOff:
		if len(args) != 2 {
			return Command{}, invalid("alarm %s takes no further arguments", out.Action)
		}
	case AlarmLead:
		if len(args) != 3 {
			return Command{}, invalid("alarm lead requires minutes")
		}
		lead, err := strconv.Atoi(args[2])
		if err != nil || lead < 0 {
			return Command{}, invalid("lead must be a non-negative number of minutes")
		}
		out.LeadMinutes = lead
	default:
		return Command{}, invalid("unknown alarm action %q", args[1])
	}
	return Command{Type: TypeAlarm, Raw: raw, Alarm: &out}, nil
}

func parseGoto(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("goto requires today, +N, -N or YYYY-MM-DD")
	}
	target := strings.ToLower(args[0])
	switch {
	case target == "today":
		return Command{Type: TypeGoto, Raw: raw, Goto: &GotoArgs{Today: true}}, nil
	case strings.HasPrefix(target, "+") || strings.HasPrefix(target, "-"):
		n, err := strconv.Atoi(target)
		if err != nil {
			return Command{}, invalid("bad day offset %q", args[0])
		}
		return Command{Type: TypeGoto, Raw: raw, Goto: &GotoArgs{Offset: n}}, nil
	default:
		if _, err := model.ParseDate(target); err != nil {
			return Command{}, invalid("bad date %q", args[0])
		}
		return Command{Type: TypeGoto, Raw: raw, Goto: &GotoArgs{Date: target}}, nil
	}
}

func parseSnooze(raw string, args []string) (Command, error) {
	switch len(args) {
	case 0:
		return Command{Type: TypeSnooze, Raw: raw, Snooze: &SnoozeArgs{}}, nil
	case 1:
		mins, err := strconv.Atoi(strings.TrimSuffix(strings.ToLower(args[0]), "m"))
		if err != nil || mins <= 0 {
			return Command{}, invalid("snooze minutes must be a positive number")
		}
		return Command{Type: TypeSnooze, Raw: raw, Snooze: &SnoozeArgs{Minutes: mins}}, nil
	default:
		return Command{}, invalid("snooze takes at most one argument")
	}
}

func parseShow(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("show requires gaps, all or next")
	}
	subject := ShowSubject(strings.ToLower(args[0]))
	switch subject {
	case ShowGaps, ShowAll, ShowNext:
		return Command{Type: TypeShow, Raw: raw, Show: &ShowArgs{Subject: subject}}, nil
	default:
		return Command{}, invalid("unknown show subject %q", args[0])
	}
}
